package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Client caches the public events listing as raw JSON. The cache is optional:
// when Redis is not configured the handlers simply skip it.
type Client struct {
	client *redis.Client
	ttl    time.Duration
}

type Config struct {
	Addr     string
	Password string
	TTLSec   int
}

func NewClient(cfg Config) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	ttl := time.Duration(cfg.TTLSec) * time.Second
	if ttl == 0 {
		ttl = 30 * time.Second
	}

	return &Client{client: rdb, ttl: ttl}, nil
}

func eventsListKey(from, size int) string {
	return fmt.Sprintf("events:list:%d:%d", from, size)
}

// GetEventsListRaw returns the cached listing as raw JSON to skip a decode/
// encode round trip on the hot path.
func (c *Client) GetEventsListRaw(ctx context.Context, from, size int) ([]byte, error) {
	data, err := c.client.Get(ctx, eventsListKey(from, size)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("cache miss")
		}
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}
	return data, nil
}

func (c *Client) SetEventsList(ctx context.Context, from, size int, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal cache value: %w", err)
	}
	return c.client.Set(ctx, eventsListKey(from, size), data, c.ttl).Err()
}

// InvalidateEventsLists drops every cached listing. Called when an event is
// published or canceled.
func (c *Client) InvalidateEventsLists(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "events:list:*", 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (c *Client) Close() error {
	return c.client.Close()
}
