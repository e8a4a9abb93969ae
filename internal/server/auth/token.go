// Package auth implements the signed-token service. One HMAC secret signs two
// structurally distinct claim shapes: access tokens proving user identity and
// share tokens authorizing fetches of a single file without login. The kind
// tag is checked after signature verification, so neither token can be
// replayed as the other.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"filedrop/internal/common"
)

const (
	kindAccess = "access"
	kindShare  = "share"
)

// AccessClaims prove the bearer's identity for authenticated calls.
type AccessClaims struct {
	jwt.RegisteredClaims
	Kind     string `json:"kind"`
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// ShareClaims authorize fetching exactly one file.
type ShareClaims struct {
	jwt.RegisteredClaims
	Kind   string `json:"kind"`
	FileID int64  `json:"file_id"`
}

// Signer issues and verifies tokens with a single process-wide secret.
// It is safe for concurrent use; signing is a pure function of secret+input.
type Signer struct {
	secret []byte
}

func NewSigner(secret []byte) *Signer {
	return &Signer{secret: secret}
}

// IssueAccess mints an access token for the given user, valid for ttl.
func (s *Signer) IssueAccess(userID int64, username string, ttl time.Duration) (string, error) {
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Kind:     kindAccess,
		UserID:   userID,
		Username: username,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// IssueShare mints a share token for the given file, valid for ttl.
func (s *Signer) IssueShare(fileID int64, ttl time.Duration) (string, error) {
	claims := ShareClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			// A fresh token id makes each issued token distinct even when
			// iat/exp land on the same second, so re-sharing always rotates
			// the stored token.
			ID:        uuid.NewString(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		Kind:   kindShare,
		FileID: fileID,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// VerifyAccess checks signature and expiry and returns the access claims.
// Share tokens, malformed tokens, and bad signatures all fail with
// common.ErrInvalidToken; expired tokens fail with common.ErrTokenExpired.
func (s *Signer) VerifyAccess(tokenString string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Kind != kindAccess || claims.UserID == 0 {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// VerifyShare checks signature and expiry and returns the share claims.
func (s *Signer) VerifyShare(tokenString string) (*ShareClaims, error) {
	claims := &ShareClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.Kind != kindShare || claims.FileID == 0 {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

func (s *Signer) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return common.ErrTokenExpired
		}
		return common.ErrInvalidToken
	}
	if !token.Valid {
		return common.ErrInvalidToken
	}
	return nil
}
