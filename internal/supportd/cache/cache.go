// Package cache is the semantic response cache. Answered queries are stored
// with a feature vector; later queries close enough in cosine similarity and
// matching in language reuse the stored response instead of a new LLM call.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cespare/xxhash"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/birmarket/supportd/internal/errors"
	"github.com/birmarket/supportd/internal/supportd/lang"
)

const (
	indexKey    = "birmarket:cache:index"
	entryPrefix = "birmarket:cache:entry:"
)

// Entry is one cached answer.
type Entry struct {
	Query    string    `json:"query"`
	Response string    `json:"response"`
	Tokens   int64     `json:"tokens"`
	Language string    `json:"language"`
	Vector   []float32 `json:"vector"`
	StoredAt time.Time `json:"stored_at"`
}

type Cache struct {
	client    *redis.Client
	threshold float64
	ttl       time.Duration
}

// New builds a cache over the shared redis client. Threshold is the minimum
// cosine similarity for a hit; ttl bounds how long entries stay usable
// (zero means no expiry).
func New(client *redis.Client, threshold float64, ttl time.Duration) *Cache {
	return &Cache{
		client:    client,
		threshold: threshold,
		ttl:       ttl,
	}
}

// Store caches a response keyed by the query's vector. Re-storing the same
// normalized query overwrites the previous entry.
func (c *Cache) Store(ctx context.Context, query, response string, tokens int64) error {
	entry := Entry{
		Query:    query,
		Response: response,
		Tokens:   tokens,
		Language: lang.Detect(query),
		Vector:   Vectorize(query),
		StoredAt: time.Now(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return errors.Wrap(err, errors.ErrTypeCache, "marshal cache entry", 500)
	}

	id := fmt.Sprintf("%x", xxhash.Sum64String(query))
	key := entryPrefix + id

	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, data, c.ttl)
	pipe.SAdd(ctx, indexKey, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return errors.RedisCommandFailed("cache store", err)
	}
	return nil
}

// Lookup finds the closest cached entry. It returns nil without error on a
// miss: similarity below threshold or a language mismatch both miss, matching
// how the original cache refused cross-language reuse.
func (c *Cache) Lookup(ctx context.Context, query string) (*Entry, error) {
	ids, err := c.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, errors.RedisCommandFailed("cache index read", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	queryVec := Vectorize(query)
	queryLang := lang.Detect(query)

	var best *Entry
	bestScore := 0.0

	for _, id := range ids {
		data, err := c.client.Get(ctx, entryPrefix+id).Bytes()
		if err == redis.Nil {
			// Entry expired out from under the index.
			c.client.SRem(ctx, indexKey, id)
			continue
		}
		if err != nil {
			return nil, errors.RedisCommandFailed("cache entry read", err)
		}

		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			log.Warn().Err(err).Str("entry", id).Msg("dropping unreadable cache entry")
			c.client.Del(ctx, entryPrefix+id)
			c.client.SRem(ctx, indexKey, id)
			continue
		}

		score := Cosine(queryVec, entry.Vector)
		if score > bestScore {
			bestScore = score
			e := entry
			best = &e
		}
	}

	if best == nil || bestScore < c.threshold || best.Language != queryLang {
		return nil, nil
	}
	return best, nil
}

// Size returns the number of indexed entries.
func (c *Cache) Size(ctx context.Context) (int64, error) {
	n, err := c.client.SCard(ctx, indexKey).Result()
	if err != nil {
		return 0, errors.RedisCommandFailed("cache index size", err)
	}
	return n, nil
}
