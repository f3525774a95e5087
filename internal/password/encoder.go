package password

import (
	"errors"
	"fmt"
)

// Encoding names accepted by NewEncoder.
const (
	EncodingPlaintext = "plaintext"
	EncodingArgon2id  = "argon2id"
)

// ErrUnknownEncoding is returned by NewEncoder for unsupported names.
var ErrUnknownEncoding = errors.New("unknown password encoding")

// Encoder transforms a password before it is persisted.
type Encoder interface {
	Encode(password string) (string, error)
	Name() string
}

// Plaintext stores passwords exactly as received.
type Plaintext struct{}

// Encode returns the password unchanged.
func (Plaintext) Encode(password string) (string, error) { return password, nil }

// Name returns "plaintext".
func (Plaintext) Name() string { return EncodingPlaintext }

// Argon2id stores passwords as PHC-encoded Argon2id hashes.
type Argon2id struct{}

// Encode hashes the password.
func (Argon2id) Encode(password string) (string, error) { return HashArgon2id(password) }

// Name returns "argon2id".
func (Argon2id) Name() string { return EncodingArgon2id }

// NewEncoder returns the Encoder registered under name.
// An empty name selects Plaintext.
func NewEncoder(name string) (Encoder, error) {
	switch name {
	case "", EncodingPlaintext:
		return Plaintext{}, nil
	case EncodingArgon2id:
		return Argon2id{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEncoding, name)
	}
}
