// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/accountd/accountd/internal/cache"
	"github.com/accountd/accountd/internal/metrics"
	"github.com/accountd/accountd/internal/model"
	"github.com/accountd/accountd/internal/password"
	"github.com/accountd/accountd/internal/repository"
)

// Service errors.
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrUsernameTaken   = errors.New("username already exists")
)

// AccountStore is the persistence collaborator.
// InsertAccount assigns the account ID; the finders return
// repository.ErrAccountNotFound when nothing matches.
type AccountStore interface {
	InsertAccount(ctx context.Context, account *model.Account) error
	FindAccountByID(ctx context.Context, id int64) (*model.Account, error)
	FindAccountByUsername(ctx context.Context, username string) (*model.Account, error)
}

// AccountCache is an optional read-through cache in front of the store.
// Getters return cache.ErrCacheMiss when the entry is absent.
type AccountCache interface {
	GetAccountByID(ctx context.Context, id int64) (*model.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (*model.Account, error)
	SetAccount(ctx context.Context, account *model.Account) error
}

// AccountService handles account creation and lookup.
// It holds no per-request state and is safe for concurrent use.
type AccountService struct {
	store   AccountStore
	cache   AccountCache
	encoder password.Encoder
	metrics metrics.Recorder
	logger  *slog.Logger
}

// NewAccountService creates a new AccountService.
// accountCache may be nil to disable caching; nil encoder, recorder and logger
// fall back to plaintext, no-op and slog.Default respectively.
func NewAccountService(
	store AccountStore,
	accountCache AccountCache,
	encoder password.Encoder,
	recorder metrics.Recorder,
	logger *slog.Logger,
) *AccountService {
	if encoder == nil {
		encoder = password.Plaintext{}
	}
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		store:   store,
		cache:   accountCache,
		encoder: encoder,
		metrics: recorder,
		logger:  logger,
	}
}

// Create persists a new account built from req and returns it with its assigned ID.
func (s *AccountService) Create(ctx context.Context, req model.AccountCreationRequest) (*model.Account, error) {
	account := model.NewAccount(req)

	encoded, err := s.encoder.Encode(account.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to encode password: %w", err)
	}
	account.Password = encoded

	if err := s.store.InsertAccount(ctx, account); err != nil {
		if errors.Is(err, repository.ErrUsernameTaken) {
			s.metrics.IncAccountCreateConflict()
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	s.metrics.IncAccountCreated()
	s.cacheAccount(ctx, account)

	return account, nil
}

// GetByUsername returns the account with the exact username.
// Returns ErrAccountNotFound if there is none.
func (s *AccountService) GetByUsername(ctx context.Context, username string) (*model.Account, error) {
	if s.cache != nil {
		account, err := s.cache.GetAccountByUsername(ctx, username)
		if err == nil {
			s.metrics.IncCacheHit()
			s.metrics.IncAccountLookup(metrics.LookupByUsername, metrics.OutcomeFound)
			return account, nil
		}
		s.cacheMiss(ctx, err, "username", username)
	}

	account, err := s.store.FindAccountByUsername(ctx, username)
	return s.lookupResult(ctx, metrics.LookupByUsername, account, err)
}

// GetByID returns the account with the given ID.
// Returns ErrAccountNotFound if there is none.
func (s *AccountService) GetByID(ctx context.Context, id int64) (*model.Account, error) {
	if s.cache != nil {
		account, err := s.cache.GetAccountByID(ctx, id)
		if err == nil {
			s.metrics.IncCacheHit()
			s.metrics.IncAccountLookup(metrics.LookupByID, metrics.OutcomeFound)
			return account, nil
		}
		s.cacheMiss(ctx, err, "id", id)
	}

	account, err := s.store.FindAccountByID(ctx, id)
	return s.lookupResult(ctx, metrics.LookupByID, account, err)
}

// lookupResult maps a store lookup outcome and back-fills the cache on success.
func (s *AccountService) lookupResult(ctx context.Context, kind string, account *model.Account, err error) (*model.Account, error) {
	if err != nil {
		if errors.Is(err, repository.ErrAccountNotFound) {
			s.metrics.IncAccountLookup(kind, metrics.OutcomeNotFound)
			return nil, ErrAccountNotFound
		}
		s.metrics.IncAccountLookup(kind, metrics.OutcomeError)
		return nil, fmt.Errorf("failed to find account by %s: %w", kind, err)
	}

	s.metrics.IncAccountLookup(kind, metrics.OutcomeFound)
	s.cacheAccount(ctx, account)
	return account, nil
}

func (s *AccountService) cacheMiss(ctx context.Context, err error, key string, value any) {
	s.metrics.IncCacheMiss()
	if !errors.Is(err, cache.ErrCacheMiss) {
		s.logger.WarnContext(ctx, "account cache read failed",
			slog.String(key, fmt.Sprint(value)),
			slog.String("error", err.Error()),
		)
	}
}

// cacheAccount writes through to the cache. Failures are logged only;
// the store remains the source of truth.
func (s *AccountService) cacheAccount(ctx context.Context, account *model.Account) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetAccount(ctx, account); err != nil {
		s.logger.WarnContext(ctx, "account cache write failed",
			slog.Int64("account_id", account.ID),
			slog.String("error", err.Error()),
		)
	}
}
