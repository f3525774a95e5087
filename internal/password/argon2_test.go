package password

import (
	"strings"
	"testing"
)

func TestHashArgon2id_Format(t *testing.T) {
	t.Parallel()

	hash, err := HashArgon2id("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashArgon2id failed: %v", err)
	}

	if !strings.HasPrefix(hash, "$argon2id$v=") {
		t.Errorf("Hash should be in PHC format, got: %s", hash)
	}

	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		t.Fatalf("Hash should have 6 parts, got: %d", len(parts))
	}
	if parts[2] != "v=19" {
		t.Errorf("Expected v=19, got: %s", parts[2])
	}
	if parts[3] != "m=65536,t=3,p=4" {
		t.Errorf("Expected m=65536,t=3,p=4, got: %s", parts[3])
	}
}

func TestHashArgon2id_Uniqueness(t *testing.T) {
	t.Parallel()

	hash1, err := HashArgon2id("same")
	if err != nil {
		t.Fatalf("HashArgon2id failed: %v", err)
	}
	hash2, err := HashArgon2id("same")
	if err != nil {
		t.Fatalf("HashArgon2id failed: %v", err)
	}

	if hash1 == hash2 {
		t.Error("Same password should produce different hashes due to random salt")
	}

	match1, _ := VerifyArgon2id("same", hash1)
	match2, _ := VerifyArgon2id("same", hash2)
	if !match1 || !match2 {
		t.Error("Both hashes should verify correctly")
	}
}

func TestVerifyArgon2id_Incorrect(t *testing.T) {
	t.Parallel()

	hash, err := HashArgon2id("right")
	if err != nil {
		t.Fatalf("HashArgon2id failed: %v", err)
	}

	match, err := VerifyArgon2id("wrong", hash)
	if err != nil {
		t.Fatalf("VerifyArgon2id should not return error for wrong password: %v", err)
	}
	if match {
		t.Error("Wrong password should not match")
	}
}

func TestVerifyArgon2id_InvalidHashFormat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		hash    string
		wantErr error
	}{
		{"empty", "", ErrInvalidHash},
		{"plaintext", "p", ErrInvalidHash},
		{"wrong algorithm", "$bcrypt$v=19$m=65536,t=3,p=4$salt$hash", ErrInvalidHash},
		{"missing parts", "$argon2id$v=19$m=65536", ErrInvalidHash},
		{"wrong version", "$argon2id$v=18$m=65536,t=3,p=4$c29tZXNhbHRoZXJl$c29tZWhhc2hoZXJl", ErrIncompatibleVersion},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := VerifyArgon2id("password", tt.hash)
			if err != tt.wantErr {
				t.Errorf("VerifyArgon2id(%q) error = %v, want %v", tt.hash, err, tt.wantErr)
			}
		})
	}
}
