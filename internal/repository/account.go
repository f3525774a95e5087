package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/accountd/accountd/internal/model"
)

// Common errors for account repository operations.
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrUsernameTaken   = errors.New("username already exists")
)

// uniqueViolation is the PostgreSQL SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// InsertAccount inserts a new account and sets its store-assigned ID.
// Any ID already present on the account is ignored.
func (r *Repository) InsertAccount(ctx context.Context, account *model.Account) error {
	query := `
		INSERT INTO accounts (username, email, password)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		account.Username,
		account.Email,
		account.Password,
	).Scan(&account.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrUsernameTaken
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}

	return nil
}

// FindAccountByID retrieves an account by its primary key.
func (r *Repository) FindAccountByID(ctx context.Context, id int64) (*model.Account, error) {
	query := `
		SELECT id, username, email, password
		FROM accounts
		WHERE id = $1
	`

	account, err := scanAccount(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account by ID: %w", err)
	}

	return account, nil
}

// FindAccountByUsername retrieves an account by exact username.
// Case sensitivity follows the column collation.
func (r *Repository) FindAccountByUsername(ctx context.Context, username string) (*model.Account, error) {
	query := `
		SELECT id, username, email, password
		FROM accounts
		WHERE username = $1
	`

	account, err := scanAccount(r.pool.QueryRow(ctx, query, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to find account by username: %w", err)
	}

	return account, nil
}

func scanAccount(row pgx.Row) (*model.Account, error) {
	var account model.Account
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.Password,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}
