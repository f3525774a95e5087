// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import "github.com/accountd/accountd/internal/model"

// CreateAccountRequest represents the request body for creating an account.
// An id in the body is not part of the contract and is ignored.
type CreateAccountRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ToModel converts the request into a creation request.
func (r CreateAccountRequest) ToModel() model.AccountCreationRequest {
	return model.AccountCreationRequest{
		Username: r.Username,
		Email:    r.Email,
		Password: r.Password,
	}
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// ToAccountResponse converts an Account model to AccountResponse DTO.
func ToAccountResponse(account *model.Account) *AccountResponse {
	return &AccountResponse{
		ID:       account.ID,
		Username: account.Username,
		Email:    account.Email,
		Password: account.Password,
	}
}
