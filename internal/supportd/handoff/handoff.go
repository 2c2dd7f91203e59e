// Package handoff moves a customer from the assistant to a human operator.
// Sessions, the waiting queue and operator presence all live in redis so the
// chat service and the dashboard share one view of the support floor.
package handoff

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/birmarket/supportd/internal/errors"
	"github.com/birmarket/supportd/internal/supportd/lang"
)

const (
	queueKey      = "birmarket:support_queue"
	sessionPrefix = "birmarket:session:"
	agentsKey     = "birmarket:agents:online"

	// NotifyChannel carries new-session notifications to operators.
	NotifyChannel = "birmarket:support_notifications"

	contextPreviewLimit = 1000
	queryPreviewLimit   = 100
)

// SessionChannel is the pub/sub channel for one session's live messages.
func SessionChannel(sessionID string) string {
	return "birmarket:chat:" + sessionID
}

type Handoff struct {
	client     *redis.Client
	sessionTTL time.Duration
	agentTTL   time.Duration
}

func New(client *redis.Client, sessionTTL, agentTTL time.Duration) *Handoff {
	return &Handoff{
		client:     client,
		sessionTTL: sessionTTL,
		agentTTL:   agentTTL,
	}
}

// CreateSession opens a waiting session and puts it in the operator queue.
// High-priority sessions jump to the head. Operators are notified over
// pub/sub; notification failure does not fail the handoff.
func (h *Handoff) CreateSession(ctx context.Context, query, contextStr string, contact Contact, metadata map[string]string) (*Session, error) {
	userID := contact.UserID
	if userID == "" {
		userID = "guest_" + uuid.New().String()[:8]
	}
	userName := contact.Name
	if userName == "" {
		userName = "Guest"
	}

	preview := contextStr
	if len(preview) > contextPreviewLimit {
		preview = preview[:contextPreviewLimit]
	}

	session := &Session{
		ID:             uuid.New().String(),
		UserID:         userID,
		UserPhone:      contact.Phone,
		UserName:       userName,
		UserEmail:      contact.Email,
		Status:         StatusWaiting,
		Query:          query,
		ContextPreview: preview,
		CreatedAt:      time.Now(),
		Language:       lang.Detect(query),
		Category:       DetectCategory(query),
		Priority:       DetectPriority(query),
		Messages: []Message{{
			Role:      RoleUser,
			Content:   query,
			Timestamp: time.Now(),
		}},
		Metadata: metadata,
	}

	key := sessionPrefix + session.ID
	pipe := h.client.TxPipeline()
	pipe.HSet(ctx, key, session.fields())
	if session.Priority == PriorityHigh {
		pipe.LPush(ctx, queueKey, session.ID)
	} else {
		pipe.RPush(ctx, queueKey, session.ID)
	}
	pipe.Expire(ctx, key, h.sessionTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, errors.SessionStoreFailed("create", err)
	}

	h.notifyOperators(ctx, session)

	log.Info().
		Str("session", session.ID).
		Str("user", session.UserName).
		Str("category", session.Category).
		Str("priority", session.Priority).
		Msg("handoff session created")

	return session, nil
}

// Session loads a session by id.
func (h *Handoff) Session(ctx context.Context, id string) (*Session, error) {
	data, err := h.client.HGetAll(ctx, sessionPrefix+id).Result()
	if err != nil {
		return nil, errors.SessionStoreFailed("get", err)
	}
	if len(data) == 0 {
		return nil, errors.SessionNotFound(id)
	}
	return sessionFromFields(data), nil
}

// Queue returns the waiting sessions in queue order. Ids whose session hash
// has expired are skipped.
func (h *Handoff) Queue(ctx context.Context) ([]*Session, error) {
	ids, err := h.client.LRange(ctx, queueKey, 0, -1).Result()
	if err != nil {
		return nil, errors.SessionStoreFailed("queue", err)
	}

	queue := make([]*Session, 0, len(ids))
	for _, id := range ids {
		session, err := h.Session(ctx, id)
		if err != nil {
			if errors.GetCode(err) == http.StatusNotFound {
				continue
			}
			return nil, err
		}
		queue = append(queue, session)
	}
	return queue, nil
}

// QueuePosition returns the 1-based position of a session in the queue,
// or 0 when it is not queued.
func (h *Handoff) QueuePosition(ctx context.Context, id string) (int, error) {
	ids, err := h.client.LRange(ctx, queueKey, 0, -1).Result()
	if err != nil {
		return 0, errors.SessionStoreFailed("queue position", err)
	}
	for i, queued := range ids {
		if queued == id {
			return i + 1, nil
		}
	}
	return 0, nil
}

// AssignAgent hands the session to an operator and removes it from the queue.
func (h *Handoff) AssignAgent(ctx context.Context, id, agentID, agentName string) error {
	key := sessionPrefix + id

	exists, err := h.client.Exists(ctx, key).Result()
	if err != nil {
		return errors.SessionStoreFailed("assign", err)
	}
	if exists == 0 {
		return errors.SessionNotFound(id)
	}

	pipe := h.client.TxPipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"status":      StatusAssigned,
		"agent_id":    agentID,
		"agent_name":  agentName,
		"assigned_at": time.Now().Format(time.RFC3339Nano),
	})
	pipe.LRem(ctx, queueKey, 0, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.SessionStoreFailed("assign", err)
	}

	log.Info().Str("session", id).Str("agent", agentName).Msg("agent assigned")
	return nil
}

// ActivateSession marks an assigned session as active.
func (h *Handoff) ActivateSession(ctx context.Context, id string) error {
	if err := h.client.HSet(ctx, sessionPrefix+id, "status", StatusActive).Err(); err != nil {
		return errors.SessionStoreFailed("activate", err)
	}
	return nil
}

// AddMessage appends a message to the session transcript and publishes it on
// the session channel for live listeners.
func (h *Handoff) AddMessage(ctx context.Context, id, role, content string) (*Message, error) {
	key := sessionPrefix + id

	exists, err := h.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.SessionStoreFailed("add message", err)
	}
	if exists == 0 {
		return nil, errors.SessionNotFound(id)
	}

	var messages []Message
	if raw, err := h.client.HGet(ctx, key, "messages").Result(); err == nil && raw != "" {
		if err := json.Unmarshal([]byte(raw), &messages); err != nil {
			log.Warn().Err(err).Str("session", id).Msg("resetting unreadable transcript")
			messages = nil
		}
	}

	message := Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
	messages = append(messages, message)

	data, err := json.Marshal(messages)
	if err != nil {
		return nil, errors.SessionStoreFailed("add message", err)
	}
	if err := h.client.HSet(ctx, key, "messages", string(data)).Err(); err != nil {
		return nil, errors.SessionStoreFailed("add message", err)
	}

	payload, _ := json.Marshal(message)
	if err := h.client.Publish(ctx, SessionChannel(id), payload).Err(); err != nil {
		log.Warn().Err(err).Str("session", id).Msg("message publish failed")
	}

	return &message, nil
}

// CloseSession ends a session and returns its final state for archiving.
// Rating 0 means the customer left none.
func (h *Handoff) CloseSession(ctx context.Context, id, resolution string, rating int) (*Session, error) {
	key := sessionPrefix + id

	update := map[string]interface{}{
		"status":     StatusClosed,
		"closed_at":  time.Now().Format(time.RFC3339Nano),
		"resolution": resolution,
	}
	if rating > 0 {
		update["rating"] = strconv.Itoa(rating)
	}

	exists, err := h.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, errors.SessionStoreFailed("close", err)
	}
	if exists == 0 {
		return nil, errors.SessionNotFound(id)
	}

	if err := h.client.HSet(ctx, key, update).Err(); err != nil {
		return nil, errors.SessionStoreFailed("close", err)
	}

	if _, err := h.AddMessage(ctx, id, RoleSystem, "Chat closed"); err != nil {
		return nil, err
	}

	if err := h.client.LRem(ctx, queueKey, 0, id).Err(); err != nil {
		return nil, errors.SessionStoreFailed("close", err)
	}

	log.Info().Str("session", id).Str("resolution", resolution).Msg("session closed")
	return h.Session(ctx, id)
}

// MarkAgentOnline registers operator presence. The whole presence hash
// expires after the agent TTL, so stale operators drop off together.
func (h *Handoff) MarkAgentOnline(ctx context.Context, agentID, agentName string) error {
	data, _ := json.Marshal(Agent{
		AgentID:  agentID,
		Name:     agentName,
		Status:   "online",
		LastSeen: time.Now(),
	})

	pipe := h.client.TxPipeline()
	pipe.HSet(ctx, agentsKey, agentID, data)
	pipe.Expire(ctx, agentsKey, h.agentTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.SessionStoreFailed("agent online", err)
	}
	return nil
}

// MarkAgentOffline removes operator presence.
func (h *Handoff) MarkAgentOffline(ctx context.Context, agentID string) error {
	if err := h.client.HDel(ctx, agentsKey, agentID).Err(); err != nil {
		return errors.SessionStoreFailed("agent offline", err)
	}
	return nil
}

// OnlineAgents lists operators currently marked online.
func (h *Handoff) OnlineAgents(ctx context.Context) ([]Agent, error) {
	data, err := h.client.HGetAll(ctx, agentsKey).Result()
	if err != nil {
		return nil, errors.SessionStoreFailed("agent list", err)
	}

	agents := make([]Agent, 0, len(data))
	for agentID, raw := range data {
		var agent Agent
		if err := json.Unmarshal([]byte(raw), &agent); err != nil {
			log.Warn().Err(err).Str("agent", agentID).Msg("dropping unreadable agent entry")
			continue
		}
		agent.AgentID = agentID
		agents = append(agents, agent)
	}
	return agents, nil
}

func (h *Handoff) notifyOperators(ctx context.Context, session *Session) {
	preview := session.Query
	if len(preview) > queryPreviewLimit {
		preview = preview[:queryPreviewLimit]
	}

	payload, _ := json.Marshal(Notification{
		Event:        "new_support_request",
		SessionID:    session.ID,
		UserName:     session.UserName,
		Language:     session.Language,
		Category:     session.Category,
		Priority:     session.Priority,
		QueryPreview: preview,
		Timestamp:    time.Now(),
	})

	if err := h.client.Publish(ctx, NotifyChannel, payload).Err(); err != nil {
		log.Warn().Err(err).Str("session", session.ID).Msg("operator notification failed")
	}
}
