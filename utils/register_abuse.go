package utils

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/atelierhub/atelier/config"
)

func regDayKey(ip string) string {
	return "reg:day:" + ip + ":" + time.Now().Format("20060102")
}

// RegistrationDailyLimitCheck allows up to N successful registrations per day
// per IP. Fails open on Redis errors.
func RegistrationDailyLimitCheck(ip string) bool {
	limit := config.Get().RegisterMaxPerIPPerDay
	if limit <= 0 {
		return true
	}
	cli := GetRedis()
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	n, err := cli.Get(ctx, regDayKey(ip)).Int()
	if err == redis.Nil {
		return true
	}
	if err != nil {
		return true
	}
	return n < limit
}

// RegistrationDailyIncrement bumps today's success counter for the IP.
func RegistrationDailyIncrement(ip string) {
	cli := GetRedis()
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	key := regDayKey(ip)
	if err := cli.Incr(ctx, key).Err(); err == nil {
		ttl := time.Until(time.Now().Truncate(24 * time.Hour).Add(24 * time.Hour))
		_ = cli.Expire(ctx, key, ttl).Err()
	}
}
