package chat

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"

	"github.com/birmarket/supportd/internal/supportd/cache"
	"github.com/birmarket/supportd/internal/supportd/handoff"
	"github.com/birmarket/supportd/internal/supportd/oms"
	"github.com/birmarket/supportd/internal/supportd/stats"
)

type testConfig struct{}

func (testConfig) GetChatAddr() string { return "127.0.0.1:0" }

func newTestService(t *testing.T) (*Service, *stats.CostStats) {
	t.Helper()
	mr := miniredis.RunT(t)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	st := stats.New()
	h := handoff.New(rdb, 3*time.Hour, 5*time.Minute)
	c := cache.New(rdb, 0.7, 0)

	return NewService(testConfig{}, rdb, h, c, st, oms.NewMock()), st
}

func postChat(t *testing.T, s *Service, userID, message string) (*Reply, int) {
	t.Helper()

	body, _ := json.Marshal(map[string]string{"user_id": userID, "message": message})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/chat", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	s.GetRouter().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		return nil, w.Code
	}
	var reply Reply
	if err := json.Unmarshal(w.Body.Bytes(), &reply); err != nil {
		t.Fatalf("unmarshal reply: %v", err)
	}
	return &reply, w.Code
}

func TestChatFAQAndCache(t *testing.T) {
	s, st := newTestService(t)

	reply, code := postChat(t, s, "u1", "Сколько стоит доставка?")
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if reply.Source != SourceFAQ {
		t.Errorf("expected faq source, got %s", reply.Source)
	}
	if reply.Language != "ru" {
		t.Errorf("expected ru, got %s", reply.Language)
	}

	// Identical question again should come from the cache.
	reply, _ = postChat(t, s, "u2", "Сколько стоит доставка?")
	if reply.Source != SourceCache {
		t.Errorf("expected cache source, got %s", reply.Source)
	}

	r := st.Snapshot()
	if r.LLMCalls != 1 || r.CacheHits != 1 {
		t.Errorf("expected 1 llm call and 1 cache hit, got %d/%d", r.LLMCalls, r.CacheHits)
	}
}

func TestChatOrderStatus(t *testing.T) {
	s, _ := newTestService(t)

	reply, _ := postChat(t, s, "u1", "где мой заказ 12345")
	if reply.Source != SourceOMS {
		t.Fatalf("expected oms source, got %s", reply.Source)
	}
	if reply.Text == "" {
		t.Error("expected a status text")
	}
}

func TestChatCancelConfirmationFlow(t *testing.T) {
	s, _ := newTestService(t)

	reply, _ := postChat(t, s, "u1", "отмени заказ 12345")
	if reply.Source != SourceOMS {
		t.Fatalf("expected oms source, got %s", reply.Source)
	}

	// Same user confirms; the cancellation executes.
	reply, _ = postChat(t, s, "u1", "да")
	if reply.Source != SourceOMS {
		t.Fatalf("expected oms source, got %s", reply.Source)
	}

	// The order is no longer cancellable.
	reply, _ = postChat(t, s, "u1", "отмени заказ 12345")
	if reply.Source != SourceOMS {
		t.Fatalf("expected oms source, got %s", reply.Source)
	}
}

func TestChatDeclineKeepsOrder(t *testing.T) {
	s, _ := newTestService(t)

	postChat(t, s, "u1", "cancel order 11111")
	reply, _ := postChat(t, s, "u1", "no")
	if reply.Source != SourceOMS {
		t.Fatalf("expected oms source, got %s", reply.Source)
	}

	// Declined, so the order can still be cancelled.
	reply, _ = postChat(t, s, "u1", "cancel order 11111")
	if reply.Source != SourceOMS {
		t.Fatalf("expected oms source, got %s", reply.Source)
	}
}

func TestChatNewIntentSupersedesPending(t *testing.T) {
	s, _ := newTestService(t)

	postChat(t, s, "u1", "отмени заказ 12345")

	// A fresh cancel request about another order is a new question, not a
	// "no" to the pending one.
	reply, _ := postChat(t, s, "u1", "отмена заказа 67890")
	if reply.Source != SourceOMS {
		t.Fatalf("expected oms source, got %s", reply.Source)
	}
	if !strings.Contains(reply.Text, "67890") {
		t.Errorf("expected a reply about order 67890, got %q", reply.Text)
	}

	// The first order is untouched and can still be cancelled.
	reply, _ = postChat(t, s, "u1", "отмени заказ 12345")
	if reply.Source != SourceOMS {
		t.Fatalf("expected oms source, got %s", reply.Source)
	}
	if !strings.Contains(reply.Text, "12345") {
		t.Errorf("expected a confirmation prompt for order 12345, got %q", reply.Text)
	}
}

func TestChatHandoff(t *testing.T) {
	s, st := newTestService(t)

	reply, _ := postChat(t, s, "u1", "мне нужна помощь человека")
	if reply.Source != SourceHandoff {
		t.Fatalf("expected handoff source, got %s", reply.Source)
	}
	if reply.SessionID == "" {
		t.Error("expected a session id")
	}
	if reply.QueuePos != 1 {
		t.Errorf("expected queue position 1, got %d", reply.QueuePos)
	}
	if st.Snapshot().HandoffCount != 1 {
		t.Errorf("expected 1 handoff, got %d", st.Snapshot().HandoffCount)
	}

	// The session is reachable through the session API.
	req := httptest.NewRequest(http.MethodGet, "/api/v1/session/"+reply.SessionID, nil)
	w := httptest.NewRecorder()
	s.GetRouter().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var session handoff.Session
	if err := json.Unmarshal(w.Body.Bytes(), &session); err != nil {
		t.Fatalf("unmarshal session: %v", err)
	}
	if session.Status != handoff.StatusWaiting {
		t.Errorf("expected waiting status, got %s", session.Status)
	}
}

func TestChatUnknownOrderEscalates(t *testing.T) {
	s, _ := newTestService(t)

	reply, _ := postChat(t, s, "u1", "отмени заказ 99999")
	if reply.Source != SourceHandoff {
		t.Fatalf("expected handoff source, got %s", reply.Source)
	}
}

func TestSessionNotFound(t *testing.T) {
	s, _ := newTestService(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session/nope", nil)
	w := httptest.NewRecorder()
	s.GetRouter().ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestQueuePositionEndpoint(t *testing.T) {
	s, _ := newTestService(t)

	reply, _ := postChat(t, s, "u1", "мне нужна помощь человека")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/queue/position/"+reply.SessionID, nil)
	w := httptest.NewRecorder()
	s.GetRouter().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Position int  `json:"position"`
		Queued   bool `json:"queued"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Queued || resp.Position != 1 {
		t.Errorf("expected queued at position 1, got %+v", resp)
	}
}

func TestPostMessage(t *testing.T) {
	s, _ := newTestService(t)

	reply, _ := postChat(t, s, "u1", "мне нужна помощь человека")

	body, _ := json.Marshal(map[string]string{"role": handoff.RoleAgent, "content": "Hello, how can I help?"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/session/"+reply.SessionID+"/messages", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.GetRouter().ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/session/"+reply.SessionID+"/messages", nil)
	w = httptest.NewRecorder()
	s.GetRouter().ServeHTTP(w, req)

	var resp struct {
		Messages []handoff.Message `json:"messages"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(resp.Messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(resp.Messages))
	}
	if resp.Messages[1].Role != handoff.RoleAgent {
		t.Errorf("expected agent role, got %s", resp.Messages[1].Role)
	}
}
