package services

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/osintlab/osint-platform/internal/database"
	"github.com/osintlab/osint-platform/internal/models"
)

// Registration and login failures surfaced verbatim as API error details.
var (
	ErrUsernameTaken      = errors.New("Username already registered")
	ErrEmailTaken         = errors.New("Email already registered")
	ErrInvalidCredentials = errors.New("Incorrect username or password")
	ErrInactiveUser       = errors.New("Inactive user")
)

// AuthDatabase defines the user persistence operations the auth service needs.
type AuthDatabase interface {
	CreateUser(ctx context.Context, username, email, hashedPassword string, fullName *string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}

// TokenIssuer abstracts the JWT service for testing.
type TokenIssuer interface {
	GenerateToken(username string) (string, time.Time, error)
}

// AuthService implements username/password authentication.
// Passwords are hashed with bcrypt; successful logins receive a bearer
// token from the token issuer.
type AuthService struct {
	db     AuthDatabase
	tokens TokenIssuer
}

// NewAuthService creates a new authentication service.
func NewAuthService(db AuthDatabase, tokens TokenIssuer) *AuthService {
	return &AuthService{
		db:     db,
		tokens: tokens,
	}
}

// Register creates a new user account.
// Username and email must both be unused; the distinct error values let the
// handler tell the caller exactly which one collided.
func (s *AuthService) Register(ctx context.Context, username, email, password string, fullName *string) (*models.User, error) {
	if _, err := s.db.GetUserByUsername(ctx, username); err == nil {
		return nil, ErrUsernameTaken
	} else if !errors.Is(err, database.ErrUserNotFound) {
		return nil, err
	}

	if _, err := s.db.GetUserByEmail(ctx, email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, database.ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user, err := s.db.CreateUser(ctx, username, email, string(hash), fullName)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Login verifies credentials and issues a bearer token.
// A missing user and a wrong password produce the same error so the
// response doesn't reveal which usernames exist.
//
// Returns the user, the signed token and its expiry.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, string, time.Time, error) {
	user, err := s.db.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, database.ErrUserNotFound) {
			return nil, "", time.Time{}, ErrInvalidCredentials
		}
		return nil, "", time.Time{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		log.Debug().Str("username", username).Msg("Password verification failed")
		return nil, "", time.Time{}, ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, "", time.Time{}, ErrInactiveUser
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.Username)
	if err != nil {
		return nil, "", time.Time{}, err
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Str("username", user.Username).
		Msg("User logged in")

	return user, token, expiresAt, nil
}
