package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Ventana fija: el primer INCR abre la ventana. El TTL se repone si la clave
// quedó sin expiración para que un EXPIRE perdido no bloquee el email para siempre.
const redisCodeWindowScript = `
local current = redis.call("INCR", KEYS[1])
if redis.call("TTL", KEYS[1]) < 0 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisCodeRateLimiter struct {
	client  redisEvaler
	window  time.Duration
	max     int
	prefix  string
	timeout time.Duration
}

// NewRedisCodeRateLimiter comparte el conteo de emisiones entre instancias de la API.
func NewRedisCodeRateLimiter(client *redis.Client, window time.Duration, max int) CodeRateLimiter {
	if client == nil {
		return nil
	}
	return newRedisCodeRateLimiter(client, window, max)
}

func newRedisCodeRateLimiter(client redisEvaler, window time.Duration, max int) *redisCodeRateLimiter {
	if window < time.Second {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisCodeRateLimiter{
		client:  client,
		window:  window,
		max:     max,
		prefix:  "verify:rl:",
		timeout: 500 * time.Millisecond,
	}
}

func (l *redisCodeRateLimiter) Allow(ctx context.Context, email string) (bool, error) {
	key := strings.ToLower(strings.TrimSpace(email))
	if key == "" {
		return false, nil
	}
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	count, err := l.client.Eval(ctx, redisCodeWindowScript, []string{l.prefix + key}, int(l.window/time.Second)).Int()
	if err != nil {
		return false, fmt.Errorf("code rate limiter: %w", err)
	}
	return count <= l.max, nil
}
