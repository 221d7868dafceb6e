// Package auth gates the ledger behind one shared credential. There is
// a single account; a successful login mints a short-lived HS256
// session token carried in an HttpOnly cookie.
package auth

import (
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var ErrInvalidCredentials = errors.New("invalid_credentials")

type Service struct {
	username     string
	password     string
	passwordHash string
	jwt          *JWTManager
	sessionTTL   time.Duration
}

// NewService accepts either a bcrypt hash or, for local development, a
// plaintext password. The hash wins when both are set.
func NewService(username, password, passwordHash string, jwt *JWTManager, sessionTTL time.Duration) *Service {
	return &Service{
		username:     username,
		password:     password,
		passwordHash: passwordHash,
		jwt:          jwt,
		sessionTTL:   sessionTTL,
	}
}

func (s *Service) Login(username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", ErrInvalidCredentials
	}
	if subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) != 1 {
		return "", ErrInvalidCredentials
	}
	if !s.passwordMatches(password) {
		return "", ErrInvalidCredentials
	}
	return s.jwt.Mint(username, uuid.NewString(), s.sessionTTL)
}

func (s *Service) SessionTTL() time.Duration {
	return s.sessionTTL
}

func (s *Service) passwordMatches(password string) bool {
	if s.passwordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)) == nil
	}
	if s.password != "" {
		return subtle.ConstantTimeCompare([]byte(password), []byte(s.password)) == 1
	}
	return false
}
