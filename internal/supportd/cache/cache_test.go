package cache

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
)

func newTestCache(t *testing.T, threshold float64) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return New(client, threshold, 0), mr
}

func TestVectorizeNormalized(t *testing.T) {
	vec := Vectorize("where is my order")
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if math.Abs(norm-1) > 1e-5 {
		t.Errorf("Vectorize() norm = %v, want 1", norm)
	}

	if got := Cosine(vec, vec); math.Abs(got-1) > 1e-5 {
		t.Errorf("Cosine(v, v) = %v, want 1", got)
	}
}

func TestVectorizeEmpty(t *testing.T) {
	vec := Vectorize("")
	for i, v := range vec {
		if v != 0 {
			t.Fatalf("Vectorize(\"\") bucket %d = %v, want 0", i, v)
		}
	}
}

func TestLookupExactQuery(t *testing.T) {
	c, _ := newTestCache(t, 0.7)
	ctx := context.Background()

	if err := c.Store(ctx, "where is my order", "It is on the way.", 120); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}

	entry, err := c.Lookup(ctx, "where is my order")
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if entry == nil {
		t.Fatalf("Lookup() missed an exact query")
	}
	if entry.Response != "It is on the way." || entry.Tokens != 120 {
		t.Errorf("Lookup() returned wrong entry: %+v", entry)
	}
}

func TestLookupSimilarQuery(t *testing.T) {
	c, _ := newTestCache(t, 0.5)
	ctx := context.Background()

	if err := c.Store(ctx, "where is my order now", "It is on the way.", 120); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}

	// Shares three of four tokens with the stored query.
	entry, err := c.Lookup(ctx, "where is my order")
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if entry == nil {
		t.Errorf("Lookup() missed a close query above the threshold")
	}
}

func TestLookupBelowThreshold(t *testing.T) {
	c, _ := newTestCache(t, 0.7)
	ctx := context.Background()

	if err := c.Store(ctx, "where is my order", "It is on the way.", 120); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}

	entry, err := c.Lookup(ctx, "how do bonus points work")
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if entry != nil {
		t.Errorf("Lookup() hit an unrelated query: %+v", entry)
	}
}

func TestLookupLanguageMismatch(t *testing.T) {
	c, _ := newTestCache(t, 0.1)
	ctx := context.Background()

	if err := c.Store(ctx, "где мой заказ 12345", "Уже в пути.", 90); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}

	// Token "12345" overlaps, but the query language differs.
	entry, err := c.Lookup(ctx, "track order 12345 status")
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if entry != nil {
		t.Errorf("Lookup() must not serve a response across languages: %+v", entry)
	}
}

func TestLookupEmptyCache(t *testing.T) {
	c, _ := newTestCache(t, 0.7)

	entry, err := c.Lookup(context.Background(), "anything")
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if entry != nil {
		t.Errorf("Lookup() on an empty cache returned %+v", entry)
	}
}

func TestExpiredEntryPrunedFromIndex(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	c := New(client, 0.7, time.Minute)
	ctx := context.Background()

	if err := c.Store(ctx, "where is my order", "It is on the way.", 120); err != nil {
		t.Fatalf("Store() failed: %v", err)
	}

	mr.FastForward(2 * time.Minute)

	entry, err := c.Lookup(ctx, "where is my order")
	if err != nil {
		t.Fatalf("Lookup() failed: %v", err)
	}
	if entry != nil {
		t.Errorf("Lookup() returned an expired entry: %+v", entry)
	}

	n, err := c.Size(ctx)
	if err != nil {
		t.Fatalf("Size() failed: %v", err)
	}
	if n != 0 {
		t.Errorf("index should be pruned after expiry, size = %d", n)
	}
}
