package chat

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/birmarket/supportd/internal/errors"
	"github.com/birmarket/supportd/internal/supportd/cache"
	"github.com/birmarket/supportd/internal/supportd/handoff"
	"github.com/birmarket/supportd/internal/supportd/lang"
	"github.com/birmarket/supportd/internal/supportd/oms"
	"github.com/birmarket/supportd/internal/supportd/stats"
)

// Reply is the responder output for a single inbound message.
type Reply struct {
	Text      string `json:"text"`
	Source    string `json:"source"`
	Language  string `json:"language"`
	SessionID string `json:"session_id,omitempty"`
	QueuePos  int    `json:"queue_position,omitempty"`
}

const (
	SourceCache   = "cache"
	SourceOMS     = "oms"
	SourceFAQ     = "faq"
	SourceHandoff = "handoff"
)

// pendingAction is an order operation awaiting a yes/no from the customer.
type pendingAction struct {
	Intent     string
	OrderID    string
	Address    string
	ProductIDs []string
	Expires    time.Time
}

const pendingTTL = 5 * time.Minute

// Responder answers customer messages without a human operator: cached
// answers first, then order operations, then FAQ, and a handoff to the
// support queue when nothing else matches.
type Responder struct {
	orders  oms.Client
	cache   *cache.Cache
	handoff *handoff.Handoff
	stats   *stats.CostStats

	mu      sync.Mutex
	pending map[string]pendingAction
}

func NewResponder(orders oms.Client, c *cache.Cache, h *handoff.Handoff, st *stats.CostStats) *Responder {
	return &Responder{
		orders:  orders,
		cache:   c,
		handoff: h,
		stats:   st,
		pending: make(map[string]pendingAction),
	}
}

var addressPattern = regexp.MustCompile(`(?i)(?:на адрес|на|to|ünvan[ıa]?)\s+(.{5,})$`)

// Respond runs the full reply pipeline for one message.
func (r *Responder) Respond(ctx context.Context, userID, message string) (*Reply, error) {
	language := lang.Detect(message)

	if reply := r.resolveConfirmation(userID, message, language); reply != nil {
		return reply, nil
	}

	if entry, err := r.cache.Lookup(ctx, message); err != nil {
		log.Debug().Err(err).Msg("cache lookup failed")
	} else if entry != nil {
		r.stats.RecordCacheHit(entry.Tokens)
		r.stats.RecordCachedResponse()
		return &Reply{Text: entry.Response, Source: SourceCache, Language: entry.Language}, nil
	}

	intent, orderID := oms.DetectIntent(message)
	if orderID != "" {
		reply, err := r.handleOrderIntent(userID, intent, orderID, message, language)
		if err == nil {
			return reply, nil
		}
		if errors.GetType(err) != errors.ErrTypeOMS {
			return nil, err
		}
		// Unknown order falls through to the handoff path.
		log.Debug().Err(err).Str("order", orderID).Msg("order intent failed")
	}

	category := handoff.DetectCategory(message)
	if answer, ok := faqAnswer(category, language); ok {
		tokens := int64(len(answer)) / 4
		r.stats.RecordLLMCall(tokens)
		if err := r.cache.Store(ctx, message, answer, tokens); err != nil {
			log.Debug().Err(err).Msg("cache store failed")
		}
		return &Reply{Text: answer, Source: SourceFAQ, Language: language}, nil
	}

	return r.escalate(ctx, userID, message, language)
}

// resolveConfirmation consumes a pending yes/no if the message is one.
func (r *Responder) resolveConfirmation(userID, message, language string) *Reply {
	r.mu.Lock()
	action, ok := r.pending[userID]
	if ok {
		delete(r.pending, userID)
	}
	r.mu.Unlock()

	if !ok || time.Now().After(action.Expires) {
		return nil
	}

	// A message carrying a fresh order intent ("отмена заказа 67890")
	// supersedes the pending question instead of answering it.
	if intent, _ := oms.DetectIntent(message); intent != oms.IntentQuestion {
		return nil
	}

	isConfirmation, positive := oms.IsConfirmation(message)
	if !isConfirmation {
		// Not an answer; re-arm and let the pipeline handle the message.
		r.setPending(userID, action)
		return nil
	}

	if !positive {
		return &Reply{Text: localize(language, msgActionCancelled), Source: SourceOMS, Language: language}
	}
	return &Reply{Text: r.executePending(action, language), Source: SourceOMS, Language: language}
}

func (r *Responder) executePending(action pendingAction, language string) string {
	switch action.Intent {
	case oms.IntentCancelOrder:
		res, err := r.orders.CancelOrder(action.OrderID, "customer request")
		if err != nil {
			return localize(language, msgActionFailed)
		}
		return fmt.Sprintf(localize(language, msgOrderCancelled), action.OrderID, res.RefundAmount, res.RefundDays)
	case oms.IntentChangeAddress:
		if _, err := r.orders.ChangeAddress(action.OrderID, action.Address, ""); err != nil {
			return localize(language, msgActionFailed)
		}
		return fmt.Sprintf(localize(language, msgAddressChanged), action.OrderID, action.Address)
	case oms.IntentReturnItem:
		req, err := r.orders.CreateReturn(action.OrderID, action.ProductIDs, "customer request")
		if err != nil {
			return localize(language, msgActionFailed)
		}
		return fmt.Sprintf(localize(language, msgReturnCreated), req.ReturnID, req.RefundAmount) +
			" " + req.Instructions
	}
	return localize(language, msgActionFailed)
}

func (r *Responder) handleOrderIntent(userID, intent, orderID, message, language string) (*Reply, error) {
	switch intent {
	case oms.IntentCancelOrder:
		order, err := r.orders.Order(orderID)
		if err != nil {
			return nil, err
		}
		if !order.CanCancel {
			return &Reply{
				Text:     fmt.Sprintf(localize(language, msgCannotCancel), orderID, order.Status),
				Source:   SourceOMS,
				Language: language,
			}, nil
		}
		r.setPending(userID, pendingAction{Intent: oms.IntentCancelOrder, OrderID: orderID})
		return &Reply{
			Text:     fmt.Sprintf(localize(language, msgConfirmCancel), orderID, order.Total),
			Source:   SourceOMS,
			Language: language,
		}, nil

	case oms.IntentChangeAddress:
		order, err := r.orders.Order(orderID)
		if err != nil {
			return nil, err
		}
		if !order.CanChangeAddress {
			return &Reply{
				Text:     fmt.Sprintf(localize(language, msgCannotChangeAddress), orderID, order.Status),
				Source:   SourceOMS,
				Language: language,
			}, nil
		}
		m := addressPattern.FindStringSubmatch(message)
		if m == nil {
			return &Reply{Text: localize(language, msgAskAddress), Source: SourceOMS, Language: language}, nil
		}
		address := strings.TrimSpace(m[1])
		r.setPending(userID, pendingAction{Intent: oms.IntentChangeAddress, OrderID: orderID, Address: address})
		return &Reply{
			Text:     fmt.Sprintf(localize(language, msgConfirmAddress), orderID, address),
			Source:   SourceOMS,
			Language: language,
		}, nil

	case oms.IntentReturnItem:
		order, err := r.orders.Order(orderID)
		if err != nil {
			return nil, err
		}
		var names []string
		var productIDs []string
		for _, item := range order.Items {
			if item.CanReturn {
				names = append(names, item.Name)
				productIDs = append(productIDs, item.ProductID)
			}
		}
		if order.Status != oms.StatusDelivered || len(productIDs) == 0 {
			return &Reply{
				Text:     fmt.Sprintf(localize(language, msgCannotReturn), orderID),
				Source:   SourceOMS,
				Language: language,
			}, nil
		}
		r.setPending(userID, pendingAction{Intent: oms.IntentReturnItem, OrderID: orderID, ProductIDs: productIDs})
		return &Reply{
			Text:     fmt.Sprintf(localize(language, msgConfirmReturn), strings.Join(names, ", "), orderID),
			Source:   SourceOMS,
			Language: language,
		}, nil
	}

	// Track, status queries, or just an order number in the message.
	tracking, err := r.orders.TrackOrder(orderID)
	if err != nil {
		return nil, err
	}
	text := fmt.Sprintf(localize(language, msgOrderStatus), orderID, tracking.CurrentStatus)
	if !tracking.EstimatedDelivery.IsZero() && tracking.CurrentStatus != oms.StatusDelivered {
		text += fmt.Sprintf(localize(language, msgEstimatedDelivery), tracking.EstimatedDelivery.Format("2006-01-02"))
	}
	return &Reply{Text: text, Source: SourceOMS, Language: language}, nil
}

// escalate opens a support session and tells the customer their place in line.
func (r *Responder) escalate(ctx context.Context, userID, message, language string) (*Reply, error) {
	session, err := r.handoff.CreateSession(ctx, message, "", handoff.Contact{UserID: userID}, nil)
	if err != nil {
		return nil, err
	}

	pos, err := r.handoff.QueuePosition(ctx, session.ID)
	if err != nil {
		log.Debug().Err(err).Msg("queue position lookup failed")
		pos = 0
	}

	r.stats.RecordHandoff()
	return &Reply{
		Text:      fmt.Sprintf(localize(language, msgHandoff), pos),
		Source:    SourceHandoff,
		Language:  language,
		SessionID: session.ID,
		QueuePos:  pos,
	}, nil
}

func (r *Responder) setPending(userID string, action pendingAction) {
	action.Expires = time.Now().Add(pendingTTL)
	r.mu.Lock()
	r.pending[userID] = action
	r.mu.Unlock()
}
