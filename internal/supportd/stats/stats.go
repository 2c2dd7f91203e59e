// Package stats tracks what the assistant costs and what the cache saves.
package stats

import (
	"sync/atomic"

	"github.com/rs/zerolog/log"
)

// CostStats holds the running counters for a supportd process.
type CostStats struct {
	llmCalls        atomic.Int64
	cacheHits       atomic.Int64
	spentTokens     atomic.Int64
	savedTokens     atomic.Int64
	handoffCount    atomic.Int64
	cachedResponses atomic.Int64
}

// Report is a point-in-time snapshot of the counters.
type Report struct {
	TotalQueries    int64   `json:"total_queries"`
	LLMCalls        int64   `json:"llm_calls"`
	CacheHits       int64   `json:"cache_hits"`
	CacheHitRate    float64 `json:"cache_hit_rate"`
	SpentTokens     int64   `json:"spent_tokens"`
	SavedTokens     int64   `json:"saved_tokens"`
	PotentialTokens int64   `json:"potential_tokens"`
	TokenSavings    float64 `json:"token_savings"`
	HandoffCount    int64   `json:"handoff_count"`
	CachedResponses int64   `json:"cached_responses"`
}

func New() *CostStats {
	return &CostStats{}
}

func (s *CostStats) RecordLLMCall(tokens int64) {
	s.llmCalls.Add(1)
	s.spentTokens.Add(tokens)
}

func (s *CostStats) RecordCacheHit(savedTokens int64) {
	s.cacheHits.Add(1)
	s.savedTokens.Add(savedTokens)
}

func (s *CostStats) RecordCachedResponse() {
	s.cachedResponses.Add(1)
}

func (s *CostStats) RecordHandoff() {
	s.handoffCount.Add(1)
}

// Snapshot computes the derived rates from the current counters.
func (s *CostStats) Snapshot() Report {
	r := Report{
		LLMCalls:        s.llmCalls.Load(),
		CacheHits:       s.cacheHits.Load(),
		SpentTokens:     s.spentTokens.Load(),
		SavedTokens:     s.savedTokens.Load(),
		HandoffCount:    s.handoffCount.Load(),
		CachedResponses: s.cachedResponses.Load(),
	}
	r.TotalQueries = r.LLMCalls + r.CacheHits
	r.PotentialTokens = r.SpentTokens + r.SavedTokens
	if r.TotalQueries > 0 {
		r.CacheHitRate = float64(r.CacheHits) / float64(r.TotalQueries) * 100
	}
	if r.PotentialTokens > 0 {
		r.TokenSavings = float64(r.SavedTokens) / float64(r.PotentialTokens) * 100
	}
	return r
}

// LogReport writes the cost report to the log.
func (s *CostStats) LogReport() {
	r := s.Snapshot()
	log.Info().
		Int64("total_queries", r.TotalQueries).
		Int64("llm_calls", r.LLMCalls).
		Int64("cache_hits", r.CacheHits).
		Float64("cache_hit_rate", r.CacheHitRate).
		Int64("spent_tokens", r.SpentTokens).
		Int64("saved_tokens", r.SavedTokens).
		Int64("potential_tokens", r.PotentialTokens).
		Float64("token_savings", r.TokenSavings).
		Int64("handoffs", r.HandoffCount).
		Msg("cost report")
}
