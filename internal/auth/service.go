package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	bcryptCost     = 10
	minPasswordLen = 6
	// bcrypt ignores everything past 72 bytes
	maxPasswordLen = 72
)

type Service struct {
	Users  UserStore
	Tokens *Tokens
	// Admins are emails that register straight into the admin role.
	Admins []string
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (s *Service) Register(ctx context.Context, email, password string, username *string) (*Session, error) {
	email = normalizeEmail(email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if len(password) < minPasswordLen || len(password) > maxPasswordLen {
		return nil, fmt.Errorf("%w: password must be %d to %d characters", ErrInvalidInput, minPasswordLen, maxPasswordLen)
	}
	if username != nil {
		if trimmed := strings.TrimSpace(*username); trimmed == "" {
			username = nil
		} else {
			username = &trimmed
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.Users.CreateUser(ctx, email, username, string(hash), s.roleFor(email))
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"user_id": u.ID, "role": u.Role}).Info("user registered")
	return s.session(u)
}

// Login reports ErrInvalidCredentials for both unknown emails and wrong passwords.
func (s *Service) Login(ctx context.Context, email, password string) (*Session, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", ErrInvalidInput)
	}
	u, err := s.Users.UserByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.session(u)
}

func (s *Service) Me(ctx context.Context, userID int64) (*User, error) {
	return s.Users.UserByID(ctx, userID)
}

func (s *Service) roleFor(email string) string {
	for _, a := range s.Admins {
		if normalizeEmail(a) == email {
			return RoleAdmin
		}
	}
	return RoleCustomer
}

func (s *Service) session(u *User) (*Session, error) {
	tok, err := s.Tokens.Issue(u)
	if err != nil {
		return nil, err
	}
	return &Session{Token: tok, User: u}, nil
}
