package fulfillment

import (
	"context"
	"time"

	"github.com/qtix/ticket-gateway/internal/logger"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// dedupTTL bounds how long a payment id is remembered. Providers redeliver
// webhooks within hours, not days; after the TTL the durable lookup still
// catches duplicates.
const dedupTTL = 48 * time.Hour

// RedisDeduper marks payment ids with SET NX. It fails open: any Redis
// error reports first-seen so the MySQL lookup remains the authority.
type RedisDeduper struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisDeduper(rdb *redis.Client) *RedisDeduper {
	return &RedisDeduper{rdb: rdb, prefix: "tixgw:payment:"}
}

func (d *RedisDeduper) FirstSeen(ctx context.Context, paymentID string) bool {
	ok, err := d.rdb.SetNX(ctx, d.prefix+paymentID, 1, dedupTTL).Result()
	if err != nil {
		logger.Log.Warn("dedup cache unavailable", zap.Error(err))
		return true
	}
	return ok
}
