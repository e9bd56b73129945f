/*
Package db stores the bot's state in redis: chat scenes, linked accounts,
portal sessions, notification subscriptions and journal snapshots.
*/
package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

// RedisConfig represents a configuration for redis connection
type RedisConfig struct {
	Addr     string `toml:"address" envconfig:"REDIS_ADDRESS"`
	Username string `toml:"username" envconfig:"REDIS_USERNAME"`
	Password string `toml:"password" envconfig:"REDIS_PASSWORD"`
	DB       int    `toml:"db" envconfig:"REDIS_DB"`
}

// DB wraps a redis connection
type DB struct {
	rdb     *redis.Client
	limiter *redis_rate.Limiter
}

// Open connects to the redis server and checks the connection
func Open(ctx context.Context, config RedisConfig) (*DB, error) {
	addrType := "tcp"
	if strings.HasPrefix(config.Addr, "/") { // for unix sockets
		addrType = "unix"
	}

	rdb := redis.NewClient(&redis.Options{
		Network:  addrType,
		Addr:     config.Addr,
		Username: config.Username,
		Password: config.Password,
		DB:       config.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("db: error connecting to %s: %w", config.Addr, err)
	}
	log.Infof("connected to redis at %s", config.Addr)
	return New(rdb), nil
}

// New wraps an existing redis client
func New(rdb *redis.Client) *DB {
	return &DB{
		rdb:     rdb,
		limiter: redis_rate.NewLimiter(rdb),
	}
}

// Limiter returns the rate limiter sharing the connection
func (db *DB) Limiter() *redis_rate.Limiter {
	return db.limiter
}

// Close closes the connection to redis server
func (db *DB) Close() error {
	return db.rdb.Close()
}
