package account

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// CredentialVerifier decides how passwords are stored and compared.
type CredentialVerifier interface {
	// Prepare converts a new password into its stored form.
	Prepare(password string) (string, error)
	// Verify reports whether given matches the stored credential.
	Verify(stored, given string) bool
}

// PlaintextVerifier stores passwords as-is and compares them exactly.
// It matches how existing accounts were created and is the default.
type PlaintextVerifier struct{}

func (PlaintextVerifier) Prepare(password string) (string, error) {
	return password, nil
}

func (PlaintextVerifier) Verify(stored, given string) bool {
	return stored == given
}

// BcryptVerifier stores bcrypt hashes.
type BcryptVerifier struct {
	Cost int
}

func (v BcryptVerifier) Prepare(password string) (string, error) {
	cost := v.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (BcryptVerifier) Verify(stored, given string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(given)) == nil
}

// VerifierForMode returns the verifier for a configured password mode.
func VerifierForMode(mode string) (CredentialVerifier, error) {
	switch mode {
	case "", "plaintext":
		return PlaintextVerifier{}, nil
	case "bcrypt":
		return BcryptVerifier{}, nil
	default:
		return nil, fmt.Errorf("unknown password mode %q", mode)
	}
}
