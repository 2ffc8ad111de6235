package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/taskhive/backend/repository"
)

type suggestionCache struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// NewSuggestionCache creates a Redis-backed cache for model-generated advice.
// Prompts are hashed into the key so arbitrary user text never becomes key
// material.
func NewSuggestionCache(client *redislib.Client, ttl time.Duration) repository.SuggestionCache {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &suggestionCache{
		client: client,
		prefix: "suggestion:",
		ttl:    ttl,
	}
}

func (c *suggestionCache) Get(ctx context.Context, ownerID, prompt string) (string, bool, error) {
	result, err := c.client.Get(ctx, c.key(ownerID, prompt)).Result()
	if err != nil {
		if err == redislib.Nil {
			return "", false, nil
		}
		return "", false, err
	}
	return result, true, nil
}

func (c *suggestionCache) Set(ctx context.Context, ownerID, prompt, suggestion string) error {
	if suggestion == "" {
		return nil
	}
	return c.client.Set(ctx, c.key(ownerID, prompt), suggestion, c.ttl).Err()
}

func (c *suggestionCache) key(ownerID, prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return fmt.Sprintf("%s%s:%s", c.prefix, ownerID, hex.EncodeToString(sum[:8]))
}
