package handoff

import (
	"encoding/json"
	"strconv"
	"time"
)

// fields flattens a session into the redis hash layout. Messages and
// metadata are nested JSON; timestamps are RFC3339; absent values stay "".
func (s *Session) fields() map[string]interface{} {
	messages, _ := json.Marshal(s.Messages)
	metadata, _ := json.Marshal(s.Metadata)

	f := map[string]interface{}{
		"session_id":      s.ID,
		"user_id":         s.UserID,
		"user_phone":      s.UserPhone,
		"user_name":       s.UserName,
		"user_email":      s.UserEmail,
		"status":          s.Status,
		"query":           s.Query,
		"context_preview": s.ContextPreview,
		"created_at":      s.CreatedAt.Format(time.RFC3339Nano),
		"language":        s.Language,
		"category":        s.Category,
		"priority":        s.Priority,
		"agent_id":        s.AgentID,
		"agent_name":      s.AgentName,
		"assigned_at":     formatTime(s.AssignedAt),
		"closed_at":       formatTime(s.ClosedAt),
		"resolution":      s.Resolution,
		"rating":          "",
		"messages":        string(messages),
		"metadata":        string(metadata),
	}
	if s.Rating > 0 {
		f["rating"] = strconv.Itoa(s.Rating)
	}
	return f
}

func sessionFromFields(data map[string]string) *Session {
	s := &Session{
		ID:             data["session_id"],
		UserID:         data["user_id"],
		UserPhone:      data["user_phone"],
		UserName:       data["user_name"],
		UserEmail:      data["user_email"],
		Status:         data["status"],
		Query:          data["query"],
		ContextPreview: data["context_preview"],
		CreatedAt:      parseTime(data["created_at"]),
		Language:       data["language"],
		Category:       data["category"],
		Priority:       data["priority"],
		AgentID:        data["agent_id"],
		AgentName:      data["agent_name"],
		AssignedAt:     parseTime(data["assigned_at"]),
		ClosedAt:       parseTime(data["closed_at"]),
		Resolution:     data["resolution"],
	}

	if raw := data["rating"]; raw != "" {
		if rating, err := strconv.Atoi(raw); err == nil {
			s.Rating = rating
		}
	}
	if raw := data["messages"]; raw != "" {
		json.Unmarshal([]byte(raw), &s.Messages)
	}
	if raw := data["metadata"]; raw != "" && raw != "null" {
		json.Unmarshal([]byte(raw), &s.Metadata)
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339Nano)
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
