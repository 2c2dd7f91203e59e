package dashboard

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/klauspost/compress/gzip"

	"github.com/birmarket/supportd/internal/supportd/cache"
	"github.com/birmarket/supportd/internal/supportd/handoff"
	"github.com/birmarket/supportd/internal/supportd/history"
	"github.com/birmarket/supportd/internal/supportd/stats"
)

type testConfig struct{}

func (testConfig) GetDashboardAddr() string { return "127.0.0.1:0" }

func newTestService(t *testing.T) (*Service, *handoff.Handoff) {
	t.Helper()
	mr := miniredis.RunT(t)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	hist, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	t.Cleanup(func() { hist.Close() })

	h := handoff.New(rdb, 3*time.Hour, 5*time.Minute)
	c := cache.New(rdb, 0.7, 0)

	return NewService(testConfig{}, rdb, h, stats.New(), c, hist), h
}

func doJSON(t *testing.T, s *Service, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	s.GetRouter().ServeHTTP(w, req)
	return w
}

func TestQueueEndpoint(t *testing.T) {
	s, h := newTestService(t)

	session, err := h.CreateSession(t.Context(), "где мой заказ", "", handoff.Contact{UserID: "u1", Name: "Ulvi"}, nil)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}

	w := doJSON(t, s, http.MethodGet, "/api/v1/queue", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp struct {
		Count    int                `json:"count"`
		Sessions []*handoff.Session `json:"sessions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 1 || resp.Sessions[0].ID != session.ID {
		t.Errorf("expected the created session in the queue, got %+v", resp)
	}
}

func TestAssignRemovesFromQueue(t *testing.T) {
	s, h := newTestService(t)

	session, _ := h.CreateSession(t.Context(), "вопрос", "", handoff.Contact{UserID: "u1"}, nil)

	w := doJSON(t, s, http.MethodPost, "/api/v1/session/"+session.ID+"/assign",
		map[string]string{"agent_id": "a1", "agent_name": "Aysel"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, s, http.MethodGet, "/api/v1/queue", nil)
	var resp struct {
		Count int `json:"count"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Count != 0 {
		t.Errorf("expected empty queue after assign, got %d", resp.Count)
	}

	w = doJSON(t, s, http.MethodGet, "/api/v1/session/"+session.ID, nil)
	var got handoff.Session
	json.Unmarshal(w.Body.Bytes(), &got)
	if got.Status != handoff.StatusAssigned || got.AgentID != "a1" {
		t.Errorf("expected assigned to a1, got %+v", got)
	}
}

func TestAssignUnknownSession(t *testing.T) {
	s, _ := newTestService(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/session/nope/assign",
		map[string]string{"agent_id": "a1"})
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestCloseArchivesSession(t *testing.T) {
	s, h := newTestService(t)

	session, _ := h.CreateSession(t.Context(), "не пришёл заказ", "", handoff.Contact{UserID: "u1", Name: "Rauf"}, nil)

	w := doJSON(t, s, http.MethodPost, "/api/v1/session/"+session.ID+"/close",
		map[string]interface{}{"resolution": handoff.ResolutionResolved, "rating": 5})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, s, http.MethodGet, "/api/v1/history", nil)
	var resp struct {
		Count    int              `json:"count"`
		Sessions []history.Record `json:"sessions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Count != 1 {
		t.Fatalf("expected 1 archived session, got %d", resp.Count)
	}
	record := resp.Sessions[0]
	if record.SessionID != session.ID || record.Rating != 5 {
		t.Errorf("unexpected archive record %+v", record)
	}

	w = doJSON(t, s, http.MethodGet, "/api/v1/history/"+session.ID, nil)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200 for archived record, got %d", w.Code)
	}
}

func TestTranscriptGzip(t *testing.T) {
	s, h := newTestService(t)

	session, _ := h.CreateSession(t.Context(), "вопрос по заказу", "", handoff.Contact{UserID: "u1"}, nil)
	if _, err := h.AddMessage(t.Context(), session.ID, handoff.RoleAgent, "Добрый день!"); err != nil {
		t.Fatalf("add message: %v", err)
	}

	w := doJSON(t, s, http.MethodGet, "/api/v1/session/"+session.ID+"/transcript?format=gzip", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/gzip" {
		t.Errorf("expected gzip content type, got %s", ct)
	}

	zr, err := gzip.NewReader(w.Body)
	if err != nil {
		t.Fatalf("gzip reader: %v", err)
	}
	data, err := io.ReadAll(zr)
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}

	var payload struct {
		SessionID string            `json:"session_id"`
		Messages  []handoff.Message `json:"messages"`
	}
	if err := json.Unmarshal(data, &payload); err != nil {
		t.Fatalf("unmarshal transcript: %v", err)
	}
	if payload.SessionID != session.ID || len(payload.Messages) != 2 {
		t.Errorf("unexpected transcript %+v", payload)
	}
}

func TestAgentPresenceEndpoints(t *testing.T) {
	s, _ := newTestService(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/agents/online",
		map[string]string{"agent_id": "a1", "name": "Aysel"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = doJSON(t, s, http.MethodGet, "/api/v1/agents", nil)
	var resp struct {
		Count  int             `json:"count"`
		Agents []handoff.Agent `json:"agents"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Count != 1 || resp.Agents[0].Name != "Aysel" {
		t.Errorf("expected Aysel online, got %+v", resp)
	}

	w = doJSON(t, s, http.MethodPost, "/api/v1/agents/offline", map[string]string{"agent_id": "a1"})
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = doJSON(t, s, http.MethodGet, "/api/v1/agents", nil)
	resp.Count = -1
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Count != 0 {
		t.Errorf("expected no agents online, got %d", resp.Count)
	}
}

func TestStatsEndpoint(t *testing.T) {
	s, h := newTestService(t)

	h.CreateSession(t.Context(), "вопрос", "", handoff.Contact{UserID: "u1"}, nil)

	w := doJSON(t, s, http.MethodGet, "/api/v1/stats", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		QueueLength  int `json:"queue_length"`
		AgentsOnline int `json:"agents_online"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.QueueLength != 1 {
		t.Errorf("expected queue length 1, got %d", resp.QueueLength)
	}
}
