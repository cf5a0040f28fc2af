package config

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultRedisPort    = 6379
	defaultRedisTimeout = 5 * time.Second
)

var ErrRedisHostEmpty = errors.New("redis host is empty")

// RedisClient backs the trainer detail cache when cache.driver is redis.
var RedisClient *redis.Client

// Addr returns host:port, filling in the default port.
func (c RedisConfig) Addr() string {
	port := c.Port
	if port == 0 {
		port = defaultRedisPort
	}
	return net.JoinHostPort(strings.TrimSpace(c.Host), strconv.Itoa(port))
}

func (c RedisConfig) options() (*redis.Options, error) {
	if strings.TrimSpace(c.Host) == "" {
		return nil, ErrRedisHostEmpty
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = defaultRedisTimeout
	}
	return &redis.Options{
		Addr:         c.Addr(),
		Password:     c.Password,
		DB:           c.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	}, nil
}

// NewRedisClient connects to the redis described by cfg and pings it once.
func NewRedisClient(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	opts, err := cfg.options()
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, opts.DialTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping failed (addr=%s db=%d): %w", opts.Addr, cfg.DB, err)
	}
	return client, nil
}

// InitRedis connects with AppConfig.Redis and installs the client as
// RedisClient.
func InitRedis(ctx context.Context) error {
	if AppConfig == nil {
		return errors.New("app config is not initialized")
	}

	client, err := NewRedisClient(ctx, AppConfig.Redis)
	if err != nil {
		return err
	}
	RedisClient = client
	EnsureLoggerInitialized().Info("redis connected", "addr", AppConfig.Redis.Addr(), "db", AppConfig.Redis.DB)
	return nil
}

func CloseRedis() error {
	if RedisClient == nil {
		return nil
	}
	err := RedisClient.Close()
	RedisClient = nil
	return err
}
