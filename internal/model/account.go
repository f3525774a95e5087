// Package model defines domain entities for the application.
package model

import (
	"fmt"
	"strconv"
)

// Account represents a registered user.
// ID is assigned by the store on insert and never taken from the caller.
type Account struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AccountCreationRequest carries the caller-supplied fields of a new account.
type AccountCreationRequest struct {
	Username string
	Email    string
	Password string
}

// NewAccount builds an unsaved Account from a creation request.
func NewAccount(req AccountCreationRequest) *Account {
	return &Account{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
}

// CachedAccount is the Redis hash representation of an Account.
// All values are strings as stored by HSET.
type CachedAccount struct {
	ID       string
	Username string
	Email    string
	Password string
}

// ToCachedAccount converts an Account to its cache representation.
func (a *Account) ToCachedAccount() *CachedAccount {
	return &CachedAccount{
		ID:       strconv.FormatInt(a.ID, 10),
		Username: a.Username,
		Email:    a.Email,
		Password: a.Password,
	}
}

// ToAccount converts a cached hash back into an Account.
func (c *CachedAccount) ToAccount() (*Account, error) {
	id, err := strconv.ParseInt(c.ID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid cached account id %q: %w", c.ID, err)
	}
	return &Account{
		ID:       id,
		Username: c.Username,
		Email:    c.Email,
		Password: c.Password,
	}, nil
}
