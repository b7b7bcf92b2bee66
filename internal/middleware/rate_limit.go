package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	clientIDHeader  = "X-Client-ID"
	rateLimitPrefix = "hoard:rl:"
)

// RateLimit caps mutating requests per client and minute using a fixed Redis window. Clients
// are identified by X-Client-ID, falling back to the remote IP. Without Redis, or when Redis
// fails, requests pass.
func RateLimit(cache *redis.Client, maxPerMin int) fiber.Handler {
	if maxPerMin <= 0 {
		maxPerMin = 60
	}
	limit := strconv.Itoa(maxPerMin)
	return func(c *fiber.Ctx) error {
		if cache == nil {
			return c.Next()
		}
		switch c.Method() {
		case fiber.MethodGet, fiber.MethodHead, fiber.MethodOptions:
			return c.Next()
		}

		client := strings.TrimSpace(c.Get(clientIDHeader))
		if client == "" {
			client = c.IP()
		}
		window := time.Now().UTC().Truncate(time.Minute).Unix()
		key := rateLimitPrefix + client + ":" + strconv.FormatInt(window, 10)

		cnt, err := cache.Incr(c.UserContext(), key).Result()
		if err != nil {
			return c.Next()
		}
		if cnt == 1 {
			cache.Expire(c.UserContext(), key, time.Minute)
		}

		remaining := int64(maxPerMin) - cnt
		if remaining < 0 {
			remaining = 0
		}
		c.Set("X-RateLimit-Limit", limit)
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
		if cnt > int64(maxPerMin) {
			return fiber.NewError(http.StatusTooManyRequests, "rate limit exceeded, try again later")
		}
		return c.Next()
	}
}
