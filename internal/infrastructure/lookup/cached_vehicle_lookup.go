package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/MayureshM/rpp-workorder/internal/usecase/interfaces"
)

const vehicleCachePrefix = "pfvehicle:"

// CachedVehicleLookup is a read-through cache in front of another
// VehicleLookup. Cache failures degrade to the inner lookup; they are
// logged, never returned.
type CachedVehicleLookup struct {
	inner interfaces.VehicleLookup
	rdb   *redis.Client
	ttl   time.Duration
	log   *zap.Logger
}

var _ interfaces.VehicleLookup = (*CachedVehicleLookup)(nil)

func NewCachedVehicleLookup(inner interfaces.VehicleLookup, rdb *redis.Client, ttl time.Duration, log *zap.Logger) *CachedVehicleLookup {
	return &CachedVehicleLookup{inner: inner, rdb: rdb, ttl: ttl, log: log}
}

func (c *CachedVehicleLookup) Find(ctx context.Context, workOrderKey string) (interfaces.VehicleInfo, bool, error) {
	key := vehicleCachePrefix + workOrderKey

	cached, err := c.rdb.Get(ctx, key).Result()
	switch {
	case err == nil:
		var info interfaces.VehicleInfo
		if uerr := json.Unmarshal([]byte(cached), &info); uerr == nil {
			return info, true, nil
		}
		c.log.Warn("discarding undecodable cached vehicle", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.log.Warn("vehicle cache read failed", zap.String("key", key), zap.Error(err))
	}

	info, ok, err := c.inner.Find(ctx, workOrderKey)
	if err != nil || !ok {
		return info, ok, err
	}

	if body, merr := json.Marshal(info); merr == nil {
		if serr := c.rdb.Set(ctx, key, body, c.ttl).Err(); serr != nil {
			c.log.Warn("vehicle cache write failed", zap.String("key", key), zap.Error(serr))
		}
	}
	return info, true, nil
}
