package config

import (
	"strings"

	"github.com/go-redis/redis/v8"
)

// NewRedisShards builds one client per address in REDIS_ADDRS (comma
// separated). Cart keys are routed across them by user id.
func NewRedisShards() []*redis.Client {
	addrs := GetEnvOrDefault("REDIS_ADDRS", "localhost:6379")

	var shards []*redis.Client
	for _, addr := range strings.Split(addrs, ",") {
		shards = append(shards, redis.NewClient(&redis.Options{
			Addr: strings.TrimSpace(addr),
		}))
	}
	return shards
}
