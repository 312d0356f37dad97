package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/curately/ResearchTools-Intelligence/internal/application/toolmining"
	"github.com/curately/ResearchTools-Intelligence/internal/infrastructure/monitoring/logging"
)

type fakeCmdable struct {
	store map[string][]byte
	ttls  map[string]time.Duration
}

func newFakeCmdable() *fakeCmdable {
	return &fakeCmdable{store: make(map[string][]byte), ttls: make(map[string]time.Duration)}
}

func (f *fakeCmdable) Get(_ context.Context, key string) *redis.StringCmd {
	data, ok := f.store[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(string(data), nil)
}

func (f *fakeCmdable) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.store[key] = value.([]byte)
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func testCache(f *fakeCmdable) *ResultCache {
	return &ResultCache{
		rdb:    f,
		prefix: "toolminer",
		ttl:    time.Hour,
		logger: logging.NewNopLogger(),
	}
}

func TestResultCache_RoundTrip(t *testing.T) {
	f := newFakeCmdable()
	c := testCache(f)
	ctx := context.Background()

	_, hit, err := c.Get(ctx, "PMID:1")
	require.NoError(t, err)
	assert.False(t, hit)

	result := &toolmining.PublicationResult{PublicationID: "PMID:1", TotalMentions: 3}
	require.NoError(t, c.Set(ctx, "PMID:1", result))
	assert.Equal(t, time.Hour, f.ttls["toolminer:result:PMID:1"])

	got, hit, err := c.Get(ctx, "PMID:1")
	require.NoError(t, err)
	require.True(t, hit)
	assert.Equal(t, result.PublicationID, got.PublicationID)
	assert.Equal(t, 3, got.TotalMentions)
}

func TestResultCache_CorruptEntryIsAMiss(t *testing.T) {
	f := newFakeCmdable()
	c := testCache(f)

	f.store["toolminer:result:PMID:2"] = []byte("{not json")

	_, hit, err := c.Get(context.Background(), "PMID:2")
	require.NoError(t, err)
	assert.False(t, hit)
}

func TestResultCache_KeysAreNamespaced(t *testing.T) {
	f := newFakeCmdable()
	c := testCache(f)

	require.NoError(t, c.Set(context.Background(), "PMID:3", &toolmining.PublicationResult{PublicationID: "PMID:3"}))

	data, ok := f.store["toolminer:result:PMID:3"]
	require.True(t, ok)

	var decoded toolmining.PublicationResult
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "PMID:3", string(decoded.PublicationID))
}
