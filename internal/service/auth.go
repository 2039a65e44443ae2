package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/dlclark/regexp2"
	"golang.org/x/crypto/bcrypt"
)

const passwordRegexPattern = `^(?=.*[A-Za-z])(?=.*\d).{8,}$`

var (
	ErrWrongCredentials = errors.New("wrong username or password")
	ErrWeakPassword     = errors.New("the admin password must be at least 8 characters and contain 1 letter and 1 number")
)

var passwordExp = regexp2.MustCompile(passwordRegexPattern, regexp2.None)

func CheckPasswordPolicy(password string) error {
	ok, err := passwordExp.MatchString(password)
	if err != nil {
		return fmt.Errorf("passwordExp.MatchString -> %w", err)
	}
	if !ok {
		return ErrWeakPassword
	}
	return nil
}

// AuthService guards the single admin account. The password only lives in
// memory as a bcrypt hash.
type AuthService struct {
	username string
	hash     []byte
}

func NewAuthService(username, password string) (*AuthService, error) {
	if err := CheckPasswordPolicy(password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("bcrypt.GenerateFromPassword -> %w", err)
	}

	return &AuthService{
		username: username,
		hash:     hash,
	}, nil
}

// Login returns the authenticated subject.
func (s *AuthService) Login(_ context.Context, username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(s.hash, []byte(password))
	if !userOK || passErr != nil {
		return "", ErrWrongCredentials
	}

	return s.username, nil
}
