package testutil

import (
	"context"
	"sync"

	"github.com/accountd/accountd/internal/cache"
	"github.com/accountd/accountd/internal/model"
	"github.com/accountd/accountd/internal/repository"
)

// MemoryAccountStore is an in-memory account store with the same contract
// as the PostgreSQL repository: sequential IDs starting at 1 and a unique
// username index.
type MemoryAccountStore struct {
	mu         sync.Mutex
	nextID     int64
	byID       map[int64]model.Account
	byUsername map[string]int64

	// Err, when set, is returned by every call.
	Err error
}

// NewMemoryAccountStore creates an empty store.
func NewMemoryAccountStore() *MemoryAccountStore {
	return &MemoryAccountStore{
		byID:       make(map[int64]model.Account),
		byUsername: make(map[string]int64),
	}
}

// InsertAccount assigns the next ID and stores a copy of account.
func (s *MemoryAccountStore) InsertAccount(ctx context.Context, account *model.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.byUsername[account.Username]; ok {
		return repository.ErrUsernameTaken
	}

	s.nextID++
	account.ID = s.nextID
	s.byID[account.ID] = *account
	s.byUsername[account.Username] = account.ID
	return nil
}

// FindAccountByID returns a copy of the stored account.
func (s *MemoryAccountStore) FindAccountByID(ctx context.Context, id int64) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	account, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	return &account, nil
}

// FindAccountByUsername returns a copy of the stored account.
func (s *MemoryAccountStore) FindAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.Err != nil {
		return nil, s.Err
	}
	id, ok := s.byUsername[username]
	if !ok {
		return nil, repository.ErrAccountNotFound
	}
	account := s.byID[id]
	return &account, nil
}

// Len returns the number of stored accounts.
func (s *MemoryAccountStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// MemoryAccountCache is an in-memory AccountCache.
type MemoryAccountCache struct {
	mu       sync.Mutex
	accounts map[int64]model.Account

	// Err, when set, is returned by every call.
	Err error
}

// NewMemoryAccountCache creates an empty cache.
func NewMemoryAccountCache() *MemoryAccountCache {
	return &MemoryAccountCache{accounts: make(map[int64]model.Account)}
}

// GetAccountByID returns cache.ErrCacheMiss when absent.
func (c *MemoryAccountCache) GetAccountByID(ctx context.Context, id int64) (*model.Account, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return nil, c.Err
	}
	account, ok := c.accounts[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return &account, nil
}

// GetAccountByUsername returns cache.ErrCacheMiss when absent.
func (c *MemoryAccountCache) GetAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return nil, c.Err
	}
	for _, account := range c.accounts {
		if account.Username == username {
			return &account, nil
		}
	}
	return nil, cache.ErrCacheMiss
}

// SetAccount stores a copy of account.
func (c *MemoryAccountCache) SetAccount(ctx context.Context, account *model.Account) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.Err != nil {
		return c.Err
	}
	c.accounts[account.ID] = *account
	return nil
}

// Len returns the number of cached accounts.
func (c *MemoryAccountCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.accounts)
}
