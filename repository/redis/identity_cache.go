package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/tasktracker/domain"
	"github.com/fastygo/tasktracker/repository"
)

type identityCache struct {
	client *redislib.Client
	prefix string
	ttl    time.Duration
}

// cachedIdentity is the cached projection of a user; the password hash is never cached.
type cachedIdentity struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// NewIdentityCache creates a Redis-backed cache of resolved identities keyed by
// username. instance is the store instance id; entries written for one
// database are invisible to another.
func NewIdentityCache(client *redislib.Client, instance string, ttl time.Duration) repository.IdentityCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	prefix := "identity:"
	if instance != "" {
		prefix = fmt.Sprintf("identity:%s:", instance)
	}
	return &identityCache{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (c *identityCache) Get(ctx context.Context, username string) (*domain.User, error) {
	result, err := c.client.Get(ctx, c.key(username)).Bytes()
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var entry cachedIdentity
	if err := json.Unmarshal(result, &entry); err != nil {
		return nil, err
	}
	if entry.ID == 0 || entry.Username != username {
		return nil, nil
	}
	return &domain.User{ID: entry.ID, Username: entry.Username}, nil
}

func (c *identityCache) Set(ctx context.Context, user *domain.User) error {
	if user == nil || user.ID == 0 || user.Username == "" {
		return domain.ErrInvalidPayload
	}
	payload, err := json.Marshal(cachedIdentity{ID: user.ID, Username: user.Username})
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(user.Username), payload, c.ttl).Err()
}

func (c *identityCache) key(username string) string {
	return fmt.Sprintf("%s%s", c.prefix, username)
}
