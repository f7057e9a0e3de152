package app

import (
	"strings"

	"github.com/charlesng35/teamforge/internal/cache"
)

// UseRedis reports whether logout markers and rate limit counters should live in
// Redis. Without an address the database-backed cache is used.
func (c CacheConfig) UseRedis() bool {
	return c.Redis.Enabled && strings.TrimSpace(c.Redis.Address) != ""
}

// RedisStoreConfig maps the redis section onto the cache package settings.
func (c CacheConfig) RedisStoreConfig() cache.RedisConfig {
	r := c.Redis
	return cache.RedisConfig{
		Address:  strings.TrimSpace(r.Address),
		Username: strings.TrimSpace(r.Username),
		Password: r.Password,
		DB:       r.DB,
		Timeout:  r.Timeout,
	}
}
