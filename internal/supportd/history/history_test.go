package history

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/birmarket/supportd/internal/supportd/handoff"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleSession(id, category, resolution string, rating int) *handoff.Session {
	now := time.Now()
	return &handoff.Session{
		ID:         id,
		UserID:     "u1",
		UserName:   "Anar",
		Category:   category,
		Language:   "ru",
		Priority:   handoff.PriorityNormal,
		Resolution: resolution,
		Rating:     rating,
		AgentID:    "a1",
		AgentName:  "Leyla",
		CreatedAt:  now.Add(-time.Hour),
		ClosedAt:   now,
		Messages: []handoff.Message{
			{Role: handoff.RoleUser, Content: "где мой заказ", Timestamp: now.Add(-time.Hour)},
			{Role: handoff.RoleAgent, Content: "проверяю", Timestamp: now},
		},
	}
}

func TestArchiveAndGet(t *testing.T) {
	store := newTestStore(t)

	session := sampleSession("s1", handoff.CategoryOrder, handoff.ResolutionResolved, 5)
	if err := store.Archive(session); err != nil {
		t.Fatalf("Archive() failed: %v", err)
	}

	record, err := store.Get("s1")
	if err != nil {
		t.Fatalf("Get() failed: %v", err)
	}
	if record.UserName != "Anar" || record.MessageCount != 2 || record.Rating != 5 {
		t.Errorf("archived record mismatch: %+v", record)
	}
	if len(record.Transcript) != 2 {
		t.Errorf("transcript length = %d, want 2", len(record.Transcript))
	}

	if _, err := store.Get("missing"); err == nil {
		t.Errorf("Get() of a missing session should fail")
	}
}

func TestArchiveIdempotent(t *testing.T) {
	store := newTestStore(t)

	session := sampleSession("s1", handoff.CategoryOrder, handoff.ResolutionResolved, 4)
	if err := store.Archive(session); err != nil {
		t.Fatalf("Archive() failed: %v", err)
	}
	session.Resolution = handoff.ResolutionEscalated
	if err := store.Archive(session); err != nil {
		t.Fatalf("re-Archive() failed: %v", err)
	}

	records, err := store.List(Query{})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("re-archiving duplicated the row: %d records", len(records))
	}
	if records[0].Resolution != handoff.ResolutionEscalated {
		t.Errorf("re-archiving should replace the row: %+v", records[0])
	}
}

func TestListFilters(t *testing.T) {
	store := newTestStore(t)

	sessions := []*handoff.Session{
		sampleSession("s1", handoff.CategoryOrder, handoff.ResolutionResolved, 5),
		sampleSession("s2", handoff.CategoryDelivery, handoff.ResolutionResolved, 4),
		sampleSession("s3", handoff.CategoryOrder, handoff.ResolutionUnresolved, 0),
	}
	for _, s := range sessions {
		if err := store.Archive(s); err != nil {
			t.Fatalf("Archive() failed: %v", err)
		}
	}

	records, err := store.List(Query{Category: handoff.CategoryOrder})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(records) != 2 {
		t.Errorf("category filter returned %d records, want 2", len(records))
	}

	records, err = store.List(Query{Resolution: handoff.ResolutionResolved, Limit: 1})
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(records) != 1 {
		t.Errorf("limit not applied: %d records", len(records))
	}
}

func TestSummarize(t *testing.T) {
	store := newTestStore(t)

	for _, s := range []*handoff.Session{
		sampleSession("s1", handoff.CategoryOrder, handoff.ResolutionResolved, 5),
		sampleSession("s2", handoff.CategoryOrder, handoff.ResolutionResolved, 3),
		sampleSession("s3", handoff.CategoryDelivery, handoff.ResolutionUnresolved, 0),
	} {
		if err := store.Archive(s); err != nil {
			t.Fatalf("Archive() failed: %v", err)
		}
	}

	summary, err := store.Summarize()
	if err != nil {
		t.Fatalf("Summarize() failed: %v", err)
	}
	if summary.TotalClosed != 3 {
		t.Errorf("TotalClosed = %d, want 3", summary.TotalClosed)
	}
	if summary.ByCategory[handoff.CategoryOrder] != 2 {
		t.Errorf("ByCategory[order] = %d, want 2", summary.ByCategory[handoff.CategoryOrder])
	}
	if summary.ByResolution[handoff.ResolutionResolved] != 2 {
		t.Errorf("ByResolution[resolved] = %d, want 2", summary.ByResolution[handoff.ResolutionResolved])
	}
	// Unrated sessions stay out of the average.
	if summary.AvgRating != 4 {
		t.Errorf("AvgRating = %v, want 4", summary.AvgRating)
	}
}
