// Package statecache keeps the last-known fix per device and a fast-path
// dedup marker per dispatched transition in Redis. The durable idempotency
// guarantee lives in Postgres; the cache only short-circuits hot retries.
package statecache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/rentride/geofence/module/core/domain"
)

const (
	lastFixTTL = 30 * time.Second
	dedupTTL   = 5 * time.Minute
)

type Cache struct {
	client *redis.Client
}

func New(client *redis.Client) *Cache {
	return &Cache{client: client}
}

func (c *Cache) SetLastFix(ctx context.Context, fix *domain.PositionFix) error {
	key := fmt.Sprintf("device:%s:state", fix.DeviceID)

	pipe := c.client.Pipeline()
	pipe.HSet(ctx, key, map[string]interface{}{
		"device_id":   fix.DeviceID,
		"lat":         fix.Lat,
		"lng":         fix.Lon,
		"accuracy_m":  fix.AccuracyM,
		"speed_kmh":   fix.SpeedKmh,
		"timestamp":   fix.Timestamp.Unix(),
		"received_at": fix.ReceivedAt.Unix(),
	})
	pipe.Expire(ctx, key, lastFixTTL)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis last-fix update: %w", err)
	}
	return nil
}

func (c *Cache) CheckAlertDedup(ctx context.Context, tr *domain.Transition) (bool, error) {
	count, err := c.client.Exists(ctx, dedupKey(tr)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return count > 0, nil
}

func (c *Cache) SetAlertDedup(ctx context.Context, tr *domain.Transition) error {
	return c.client.Set(ctx, dedupKey(tr), "1", dedupTTL).Err()
}

func dedupKey(tr *domain.Transition) string {
	return fmt.Sprintf("alert:%s:%s:%s:%d", tr.DeviceID, tr.GeofenceID, tr.Kind, tr.Fix.Timestamp.Unix())
}
