package redisclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"balloon-studio/internal/models"

	"github.com/go-redis/redis/v8"
)

const (
	stockHashKey    = "stock:snapshot"
	intentSetKey    = "payment:intents"
	intentKeyFmt    = "payment:intent:%s"
	idemKeyFmt      = "idempotency:%s"
	intentRetention = 30 * 24 * time.Hour
)

type Client struct {
	rdb *redis.Client
}

// NewClient creates a new Redis client
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{rdb: rdb}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func stockField(color, size string) string {
	return strings.ToLower(color) + "|" + size
}

// PutStockRecord caches one stock record in the snapshot hash
func (c *Client) PutStockRecord(ctx context.Context, record *models.StockRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return c.rdb.HSet(ctx, stockHashKey, stockField(record.Color, record.Size), data).Err()
}

// SyncStockSnapshot replaces the whole cached snapshot
func (c *Client) SyncStockSnapshot(ctx context.Context, records []models.StockRecord) error {
	pipe := c.rdb.Pipeline()
	pipe.Del(ctx, stockHashKey)
	for i := range records {
		data, err := json.Marshal(&records[i])
		if err != nil {
			return err
		}
		pipe.HSet(ctx, stockHashKey, stockField(records[i].Color, records[i].Size), data)
	}
	_, err := pipe.Exec(ctx)
	return err
}

// GetStockSnapshot returns the cached stock records. An empty result means
// the cache is cold and the caller should fall back to the database.
func (c *Client) GetStockSnapshot(ctx context.Context) ([]models.StockRecord, error) {
	fields, err := c.rdb.HGetAll(ctx, stockHashKey).Result()
	if err != nil {
		return nil, err
	}

	records := make([]models.StockRecord, 0, len(fields))
	for _, raw := range fields {
		var record models.StockRecord
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			return nil, fmt.Errorf("corrupt stock snapshot entry: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

// SetIdempotencyKey stores an idempotency key with TTL
func (c *Client) SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	return c.rdb.Set(ctx, fmt.Sprintf(idemKeyFmt, key), value, ttl).Err()
}

// CheckIdempotencyKey checks if an idempotency key exists
func (c *Client) CheckIdempotencyKey(ctx context.Context, key string) (bool, error) {
	result, err := c.rdb.Exists(ctx, fmt.Sprintf(idemKeyFmt, key)).Result()
	if err != nil {
		return false, err
	}
	return result > 0, nil
}

// PutIntent stores a payment intent
func (c *Client) PutIntent(ctx context.Context, intent *models.PaymentIntent) error {
	data, err := json.Marshal(intent)
	if err != nil {
		return err
	}

	pipe := c.rdb.Pipeline()
	pipe.Set(ctx, fmt.Sprintf(intentKeyFmt, intent.ID), data, intentRetention)
	pipe.SAdd(ctx, intentSetKey, intent.ID)
	_, err = pipe.Exec(ctx)
	return err
}

// GetIntent retrieves a payment intent by ID, or nil when absent
func (c *Client) GetIntent(ctx context.Context, id string) (*models.PaymentIntent, error) {
	data, err := c.rdb.Get(ctx, fmt.Sprintf(intentKeyFmt, id)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var intent models.PaymentIntent
	if err := json.Unmarshal(data, &intent); err != nil {
		return nil, err
	}
	return &intent, nil
}

// ListIntents retrieves all stored payment intents
func (c *Client) ListIntents(ctx context.Context) ([]models.PaymentIntent, error) {
	ids, err := c.rdb.SMembers(ctx, intentSetKey).Result()
	if err != nil {
		return nil, err
	}

	intents := make([]models.PaymentIntent, 0, len(ids))
	for _, id := range ids {
		intent, err := c.GetIntent(ctx, id)
		if err != nil {
			return nil, err
		}
		if intent == nil {
			// Expired entry still referenced by the set.
			c.rdb.SRem(ctx, intentSetKey, id)
			continue
		}
		intents = append(intents, *intent)
	}
	return intents, nil
}
