package config

import (
	"context"
	"crypto/tls"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// NewRedisClient builds a Redis client from the environment. REDIS_URL
// takes precedence (redis://... form); otherwise REDIS_HOST/REDIS_PORT
// plus optional REDIS_PASSWORD, REDIS_DB and REDIS_TLS are used. The
// client is pinged with a short timeout; on failure nil is returned and
// callers degrade by disabling idempotency caching and rate limiting.
func NewRedisClient() *redis.Client {
	var opts *redis.Options
	if url := os.Getenv("REDIS_URL"); url != "" {
		parsed, err := redis.ParseURL(url)
		if err != nil {
			log.Printf("redis: invalid REDIS_URL: %v", err)
			return nil
		}
		opts = parsed
	} else {
		host := os.Getenv("REDIS_HOST")
		port := os.Getenv("REDIS_PORT")
		addr := "localhost:6379"
		if host != "" && port != "" {
			addr = host + ":" + port
		}
		dbNum := 0
		if s := os.Getenv("REDIS_DB"); s != "" {
			if n, err := strconv.Atoi(s); err == nil {
				dbNum = n
			}
		}
		var tlsConf *tls.Config
		if v := os.Getenv("REDIS_TLS"); strings.EqualFold(v, "true") || v == "1" {
			tlsConf = &tls.Config{InsecureSkipVerify: true}
		}
		opts = &redis.Options{
			Addr:      addr,
			Password:  os.Getenv("REDIS_PASSWORD"),
			DB:        dbNum,
			TLSConfig: tlsConf,
		}
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis: ping failed, caching and rate limiting disabled: %v", err)
		return nil
	}
	return client
}
