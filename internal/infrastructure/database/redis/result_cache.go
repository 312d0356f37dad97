package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/curately/ResearchTools-Intelligence/internal/application/toolmining"
	"github.com/curately/ResearchTools-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/curately/ResearchTools-Intelligence/pkg/errors"
	commontypes "github.com/curately/ResearchTools-Intelligence/pkg/types/common"
)

// cmdable is the subset of go-redis used by the cache, extracted so tests
// can stub it.
type cmdable interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// ResultCache stores JSON-serialised publication results with a TTL.  A
// publication's text does not change, so results only expire to bound memory,
// never for correctness.
type ResultCache struct {
	rdb    cmdable
	prefix string
	ttl    time.Duration
	logger logging.Logger
}

// NewResultCache builds a ResultCache over client.
func NewResultCache(client *Client, logger logging.Logger) *ResultCache {
	return &ResultCache{
		rdb:    client.Raw(),
		prefix: client.cfg.KeyPrefix,
		ttl:    client.cfg.ResultTTL,
		logger: logger,
	}
}

func (c *ResultCache) key(id commontypes.PublicationID) string {
	return fmt.Sprintf("%s:result:%s", c.prefix, id)
}

// Get implements toolmining.ResultCache.  A missing key is a miss, not an
// error.
func (c *ResultCache) Get(ctx context.Context, id commontypes.PublicationID) (*toolmining.PublicationResult, bool, error) {
	data, err := c.rdb.Get(ctx, c.key(id)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeCacheError, "reading cached result")
	}

	var result toolmining.PublicationResult
	if err := json.Unmarshal(data, &result); err != nil {
		// A corrupt entry is treated as a miss; it will be overwritten.
		c.logger.Warn("discarding corrupt cache entry", logging.String("key", c.key(id)), logging.Err(err))
		return nil, false, nil
	}
	return &result, true, nil
}

// Set implements toolmining.ResultCache.
func (c *ResultCache) Set(ctx context.Context, id commontypes.PublicationID, result *toolmining.PublicationResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "serialising result")
	}
	if err := c.rdb.Set(ctx, c.key(id), data, c.ttl).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "storing cached result")
	}
	return nil
}

var _ toolmining.ResultCache = (*ResultCache)(nil)
