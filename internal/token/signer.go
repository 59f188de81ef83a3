// Package token signs and verifies the two JWT shapes the backend issues:
// short-lived confirmation-code tokens and longer-lived access credentials.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalid indicates a malformed, tampered, or expired token. Callers treat
// it as a verification failure, never as a server fault.
var ErrInvalid = errors.New("token: invalid or expired")

// Signer issues and verifies HS256 tokens with a shared secret.
type Signer struct {
	secret []byte
}

// NewSigner constructs a Signer.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret)}
}

type confirmationClaims struct {
	Code string `json:"code"`
	jwt.RegisteredClaims
}

// AccessClaims carries the identity embedded in an access credential.
type AccessClaims struct {
	AccountID int64  `json:"accountId"`
	Username  string `json:"username"`
	jwt.RegisteredClaims
}

// SignConfirmation wraps a confirmation code in a token expiring after ttl.
// Only the signed form is ever persisted; the raw code is recovered by
// verification.
func (s *Signer) SignConfirmation(code string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := confirmationClaims{
		Code: code,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// VerifyConfirmation returns the embedded code, or ErrInvalid when the token
// is malformed, the signature does not match, or the expiry has passed.
func (s *Signer) VerifyConfirmation(tokenString string) (string, error) {
	var claims confirmationClaims
	if err := s.parse(tokenString, &claims); err != nil {
		return "", err
	}
	if claims.Code == "" {
		return "", ErrInvalid
	}
	return claims.Code, nil
}

// SignAccess mints an access credential for the account.
func (s *Signer) SignAccess(accountID int64, username string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		AccountID: accountID,
		Username:  username,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

// VerifyAccess validates an access credential and returns its claims.
func (s *Signer) VerifyAccess(tokenString string) (AccessClaims, error) {
	var claims AccessClaims
	if err := s.parse(tokenString, &claims); err != nil {
		return AccessClaims{}, err
	}
	if claims.AccountID == 0 {
		return AccessClaims{}, ErrInvalid
	}
	return claims, nil
}

func (s *Signer) parse(tokenString string, claims jwt.Claims) error {
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalid
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return ErrInvalid
	}
	return nil
}
