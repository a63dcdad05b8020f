// AngelaMos | 2026
// cache.go

package kpi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/carterperez-dev/icetruck/internal/metrics"
)

const (
	keyPrefix = "kpi:truck:"
	genSuffix = ":gen"
	cacheName = "truck_kpi"

	genTTL = 24 * time.Hour
)

var errStale = errors.New("kpi generation moved")

type TruckKPI struct {
	TotalAmount float64 `json:"total_amount"`
	Customers   int     `json:"customers"`
}

type Loader func(ctx context.Context) (TruckKPI, error)

// Cache is a read-through cache of per-truck KPIs. Redis failures are
// logged and fall through to the loader; they never fail a request.
type Cache struct {
	rdb     *redis.Client
	ttl     time.Duration
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewCache(
	rdb *redis.Client,
	ttl time.Duration,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{rdb: rdb, ttl: ttl, metrics: m, logger: logger}
}

func Key(truckID string) string {
	return keyPrefix + truckID
}

// GenKey names the counter Invalidate bumps. A loaded value is only stored
// when the counter still holds the value read before loading.
func GenKey(truckID string) string {
	return keyPrefix + truckID + genSuffix
}

func (c *Cache) Get(
	ctx context.Context,
	truckID string,
	load Loader,
) (TruckKPI, error) {
	if c == nil || c.rdb == nil || c.ttl <= 0 {
		return load(ctx)
	}

	raw, err := c.rdb.Get(ctx, Key(truckID)).Bytes()
	switch {
	case err == nil:
		var v TruckKPI
		if jsonErr := json.Unmarshal(raw, &v); jsonErr == nil {
			c.metrics.CacheHit(cacheName)
			return v, nil
		}
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "kpi cache read failed",
			"truck_id", truckID,
			"error", err,
		)
	}

	c.metrics.CacheMiss(cacheName)

	gen, genErr := c.generation(ctx, c.rdb, truckID)

	v, err := load(ctx)
	if err != nil {
		return TruckKPI{}, err
	}

	if genErr == nil {
		c.store(ctx, truckID, gen, v)
	}

	return v, nil
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func (c *Cache) generation(
	ctx context.Context,
	cmd getter,
	truckID string,
) (int64, error) {
	gen, err := cmd.Get(ctx, GenKey(truckID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// store writes v unless an invalidation ran since gen was read.
func (c *Cache) store(ctx context.Context, truckID string, gen int64, v TruckKPI) {
	body, err := json.Marshal(v)
	if err != nil {
		return
	}

	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := c.generation(ctx, tx, truckID)
		if err != nil {
			return err
		}
		if cur != gen {
			return errStale
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, Key(truckID), body, c.ttl)
			return nil
		})
		return err
	}, GenKey(truckID))

	switch {
	case err == nil:
	case errors.Is(err, errStale), errors.Is(err, redis.TxFailedErr):
		c.logger.DebugContext(ctx, "kpi cache write skipped, invalidated during load",
			"truck_id", truckID,
		)
	default:
		c.logger.WarnContext(ctx, "kpi cache write failed",
			"truck_id", truckID,
			"error", err,
		)
	}
}

// Invalidate drops cached KPIs for the given trucks and advances their
// generation so loads already in flight do not write back.
func (c *Cache) Invalidate(ctx context.Context, truckIDs ...string) {
	if c == nil || c.rdb == nil || len(truckIDs) == 0 {
		return
	}

	var ids []string
	for _, id := range truckIDs {
		if id != "" {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return
	}

	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.Incr(ctx, GenKey(id))
			pipe.Expire(ctx, GenKey(id), genTTL)
			pipe.Del(ctx, Key(id))
		}
		return nil
	})
	if err != nil {
		c.logger.WarnContext(ctx, "kpi cache invalidation failed",
			"truck_ids", ids,
			"error", fmt.Errorf("invalidate: %w", err),
		)
	}
}
