package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/accountd/accountd/internal/model"
)

// Cache key prefixes and TTLs.
const (
	accountIDKeyPrefix       = "account:id:"
	accountUsernameKeyPrefix = "account:username:"

	// DefaultAccountTTL is the TTL for cached account data.
	DefaultAccountTTL = 10 * time.Minute
)

// Common cache errors.
var (
	ErrCacheMiss = errors.New("cache miss")
)

// AccountCache stores accounts as Redis hashes keyed by ID, with a
// username pointer key resolving to the ID.
type AccountCache struct {
	cache *Cache
	ttl   time.Duration
}

// NewAccountCache creates an AccountCache. A non-positive ttl uses DefaultAccountTTL.
func NewAccountCache(c *Cache, ttl time.Duration) *AccountCache {
	if ttl <= 0 {
		ttl = DefaultAccountTTL
	}
	return &AccountCache{cache: c, ttl: ttl}
}

// GetAccountByID retrieves an account by ID.
// Returns ErrCacheMiss if not found.
func (a *AccountCache) GetAccountByID(ctx context.Context, id int64) (*model.Account, error) {
	result, err := a.cache.client.HGetAll(ctx, accountIDKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hgetall failed: %w", err)
	}

	if len(result) == 0 {
		return nil, ErrCacheMiss
	}

	cached := &model.CachedAccount{
		ID:       result["id"],
		Username: result["username"],
		Email:    result["email"],
		Password: result["password"],
	}

	return cached.ToAccount()
}

// GetAccountByUsername resolves the username pointer and loads the account hash.
// Returns ErrCacheMiss if either key is absent.
func (a *AccountCache) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	raw, err := a.cache.client.Get(ctx, accountUsernameKey(username)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid cached account id %q: %w", raw, err)
	}

	account, err := a.GetAccountByID(ctx, id)
	if err != nil {
		return nil, err
	}

	// The pointer may outlive a re-keyed hash.
	if account.Username != username {
		return nil, ErrCacheMiss
	}

	return account, nil
}

// SetAccount stores an account and its username pointer.
func (a *AccountCache) SetAccount(ctx context.Context, account *model.Account) error {
	cached := account.ToCachedAccount()
	idKey := accountIDKey(account.ID)

	fields := map[string]any{
		"id":       cached.ID,
		"username": cached.Username,
		"email":    cached.Email,
		"password": cached.Password,
	}

	pipe := a.cache.client.Pipeline()
	pipe.HSet(ctx, idKey, fields)
	pipe.Expire(ctx, idKey, a.ttl)
	pipe.Set(ctx, accountUsernameKey(account.Username), cached.ID, a.ttl)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache account: %w", err)
	}

	return nil
}

func accountIDKey(id int64) string {
	return accountIDKeyPrefix + strconv.FormatInt(id, 10)
}

func accountUsernameKey(username string) string {
	return accountUsernameKeyPrefix + username
}
