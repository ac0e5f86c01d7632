package photoflow

import (
	"golang.org/x/crypto/bcrypt"
)

const passwordHashCost = 14

// HashPassword generates the salted hash we persist in place of a password.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyPassword
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	return string(h), err
}

// ComparePasswordAndHash validates the given cleartext password against the
// stored hash. Callers translate a mismatch into their own opaque error so
// the response never reveals which check failed.
func ComparePasswordAndHash(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
