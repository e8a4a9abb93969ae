// Package services contains server-side business logic. This file implements
// UserService, which handles registration and login and issues access tokens.
package services

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"filedrop/internal/common"
	"filedrop/internal/server/auth"
	"filedrop/internal/server/config"
	"filedrop/internal/server/models"
	"filedrop/internal/server/repositories/repomanager"
)

// bcryptCost is the fixed work factor for password hashing.
const bcryptCost = 10

// UserService provides authentication-related operations:
//   - Register: create users and mint an access token
//   - Login: verify credentials and mint an access token
type UserService struct {
	db             *sql.DB
	repomanager    repomanager.RepositoryManager
	signer         *auth.Signer
	accessTokenTTL time.Duration
}

// NewUserService constructs a UserService using repositories and server config.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, signer *auth.Signer, cfg *config.Config) *UserService {
	return &UserService{
		db:             db,
		repomanager:    m,
		signer:         signer,
		accessTokenTTL: cfg.AccessTokenTTL,
	}
}

// Register creates a new user and returns a fresh access token. Empty fields
// fail with ErrValidation; a username or email collision with ErrDuplicateUser.
func (s *UserService) Register(ctx context.Context, username, password, email string) (string, *models.User, error) {
	if username == "" || password == "" || email == "" {
		return "", nil, common.ErrValidation
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", nil, common.ErrInternal
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.Create(ctx, &models.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateUser) {
			return "", nil, common.ErrDuplicateUser
		}
		return "", nil, common.ErrInternal
	}

	token, err := s.signer.IssueAccess(user.ID, user.Username, s.accessTokenTTL)
	if err != nil {
		return "", nil, common.ErrInternal
	}
	return token, user, nil
}

// Login verifies the supplied credentials and returns a fresh access token.
// A missing user and a wrong password are both reported as
// ErrInvalidCredentials so callers cannot probe for usernames.
func (s *UserService) Login(ctx context.Context, username, password string) (string, *models.User, error) {
	if username == "" || password == "" {
		return "", nil, common.ErrValidation
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", nil, common.ErrInvalidCredentials
		}
		return "", nil, common.ErrInternal
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, common.ErrInvalidCredentials
	}

	token, err := s.signer.IssueAccess(user.ID, user.Username, s.accessTokenTTL)
	if err != nil {
		return "", nil, common.ErrInternal
	}
	return token, user, nil
}
