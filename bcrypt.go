package authgate

import (
	"github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, passwordHashCost())
}

// HashPasswordWithCost hashes password with the given bcrypt cost
func HashPasswordWithCost(password string, cost int) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty", errors.CategoryBadInput).
			WithTextCode(TextCodeInvalidInput).
			WithCode(errors.CodeBadRequest)
	}

	if cost <= 0 {
		cost = passwordHashCost()
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", errors.New("password must be at most 72 bytes", errors.CategoryValidation).
				WithTextCode(TextCodeInvalidInput).
				WithCode(errors.CodeBadRequest).
				WithMetadata(map[string]any{"password": "must be at most 72 bytes"})
		}
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}
	return string(h), nil
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password. A mismatch or an unusable hash
// is reported as ErrInvalidCredentials.
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials.Clone()
	}
	return nil
}
