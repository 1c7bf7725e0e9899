package inventory

import (
	"fmt"
	"strconv"
	"time"

	"jewelstock.GO/config"
)

const remainingKeyTTL = 10 * time.Minute

func remainingKey(lotID uint) string {
	return fmt.Sprintf("lot:%d:remaining", lotID)
}

// publishRemaining mirrors a lot's remaining quantity into Redis so read
// paths can answer stock lookups without hitting MySQL. Best effort: a
// missing or unreachable Redis never fails the ledger write.
func publishRemaining(lotID uint, remaining int64) {
	if config.RedisClient == nil {
		return
	}
	ctx := config.RedisCtx()
	_ = config.RedisClient.Set(ctx, remainingKey(lotID), remaining, remainingKeyTTL).Err()
}

// CachedRemaining returns the Redis-mirrored remaining quantity for a lot.
func CachedRemaining(lotID uint) (int64, bool) {
	if config.RedisClient == nil {
		return 0, false
	}
	ctx := config.RedisCtx()
	v, err := config.RedisClient.Get(ctx, remainingKey(lotID)).Result()
	if err != nil {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}
