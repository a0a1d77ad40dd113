package account

import (
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword will generate a password hash
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), 14)
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext
// password matches the hashed password
func ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrMismatchedHashAndPassword
		}
		return err
	}
	return nil
}

// BcryptAuthenticator is the default PasswordAuthenticator, backed by the
// package bcrypt helpers.
type BcryptAuthenticator struct{}

// HashPassword implements PasswordAuthenticator.
func (BcryptAuthenticator) HashPassword(password string) (string, error) {
	return HashPassword(password)
}

// ComparePasswordAndHash implements PasswordAuthenticator.
func (BcryptAuthenticator) ComparePasswordAndHash(password, hash string) error {
	return ComparePasswordAndHash(password, hash)
}

var _ PasswordAuthenticator = BcryptAuthenticator{}

// RandomPasswordHash is a temporary password hash no cleartext will ever
// compare against
func RandomPasswordHash() string {
	pwd, err := RandomToken()
	if err != nil {
		return RandomPasswordHash()
	}

	h, err := HashPassword(pwd)
	if err != nil {
		return RandomPasswordHash()
	}

	return h
}
