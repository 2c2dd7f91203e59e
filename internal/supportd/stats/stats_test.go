package stats

import (
	"sync"
	"testing"
)

func TestSnapshot(t *testing.T) {
	s := New()
	s.RecordLLMCall(300)
	s.RecordLLMCall(200)
	s.RecordCacheHit(250)
	s.RecordCacheHit(250)
	s.RecordHandoff()
	s.RecordCachedResponse()

	r := s.Snapshot()
	if r.TotalQueries != 4 {
		t.Errorf("TotalQueries = %d, want 4", r.TotalQueries)
	}
	if r.CacheHitRate != 50 {
		t.Errorf("CacheHitRate = %v, want 50", r.CacheHitRate)
	}
	if r.SpentTokens != 500 || r.SavedTokens != 500 {
		t.Errorf("tokens = %d spent / %d saved, want 500/500", r.SpentTokens, r.SavedTokens)
	}
	if r.PotentialTokens != 1000 || r.TokenSavings != 50 {
		t.Errorf("PotentialTokens = %d, TokenSavings = %v, want 1000, 50", r.PotentialTokens, r.TokenSavings)
	}
	if r.HandoffCount != 1 || r.CachedResponses != 1 {
		t.Errorf("HandoffCount = %d, CachedResponses = %d, want 1, 1", r.HandoffCount, r.CachedResponses)
	}
}

func TestSnapshotEmpty(t *testing.T) {
	r := New().Snapshot()
	if r.CacheHitRate != 0 || r.TokenSavings != 0 {
		t.Errorf("empty stats should not divide by zero: %+v", r)
	}
}

func TestConcurrentRecording(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.RecordLLMCall(10)
			s.RecordCacheHit(5)
		}()
	}
	wg.Wait()

	r := s.Snapshot()
	if r.TotalQueries != 100 {
		t.Errorf("TotalQueries = %d, want 100", r.TotalQueries)
	}
	if r.SpentTokens != 500 || r.SavedTokens != 250 {
		t.Errorf("tokens = %d/%d, want 500/250", r.SpentTokens, r.SavedTokens)
	}
}
