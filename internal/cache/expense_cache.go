package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const ExpenseCacheTTL = 10 * time.Minute

type ExpenseCache struct {
	client *redis.Client
}

func NewExpenseCache(client *redis.Client) *ExpenseCache {
	return &ExpenseCache{client: client}
}

// Get returns the cached bytes for key, or nil on a cache miss.
func (c *ExpenseCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return nil, nil // Cache miss
	}
	if err != nil {
		return nil, err
	}
	return []byte(val), nil
}

// Set stores data under key with the package TTL.
func (c *ExpenseCache) Set(ctx context.Context, key string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, jsonData, ExpenseCacheTTL).Err()
}

// InvalidateUser drops every cached read for a user. Called after any write
// to that user's expenses or budgets.
func (c *ExpenseCache) InvalidateUser(ctx context.Context, userID int) error {
	pattern := fmt.Sprintf("expenses:user:%d:*", userID)
	iter := c.client.Scan(ctx, 0, pattern, 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// MonthlySummaryKey builds the cache key for a user's month total
func MonthlySummaryKey(userID, year, month int) string {
	return fmt.Sprintf("expenses:user:%d:summary:%04d-%02d", userID, year, month)
}

// CategorySummaryKey builds the cache key for a user's category totals
func CategorySummaryKey(userID int) string {
	return fmt.Sprintf("expenses:user:%d:categories", userID)
}
