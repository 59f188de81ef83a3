package auth

import (
	"fmt"
	"time"

	"github.com/ledgerkeep/ledgerkeep/internal/shared"
)

// Status tracks where an account sits in the confirmation-code cycle.
type Status string

const (
	// StatusPending means a confirmation code is outstanding.
	StatusPending Status = "PENDING"
	// StatusVerified means the account confirmed its last code.
	StatusVerified Status = "VERIFIED"
)

// Account is the persisted user account. PasswordHash and ConfirmationToken
// never leave the package; responses use PublicAccount.
type Account struct {
	ID                int64
	Email             string
	Username          string
	PasswordHash      string
	Status            Status
	ConfirmationToken *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// PublicAccount is the outward projection of an account. Sensitive fields are
// omitted by construction, not scrubbed at serialization time.
type PublicAccount struct {
	ID            int64  `json:"id"`
	Email         string `json:"email"`
	Username      string `json:"username"`
	AccountStatus string `json:"accountStatus"`
}

// Public returns the outward projection.
func (a Account) Public() PublicAccount {
	return PublicAccount{
		ID:            a.ID,
		Email:         a.Email,
		Username:      a.Username,
		AccountStatus: string(a.Status),
	}
}

var (
	// ErrAccountNotFound indicates the referenced account is absent.
	ErrAccountNotFound = fmt.Errorf("auth: account %w", shared.ErrNotFound)
	// ErrInvalidCredentials indicates a username/password mismatch.
	ErrInvalidCredentials = fmt.Errorf("auth: incorrect username or password: %w", shared.ErrAuthentication)
	// ErrCodeMismatch indicates a wrong, expired, or invalidated code.
	ErrCodeMismatch = fmt.Errorf("auth: incorrect confirmation code, please try again: %w", shared.ErrAuthentication)
	// ErrAlreadyVerified indicates finalize was called after a prior success.
	ErrAlreadyVerified = fmt.Errorf("auth: account already verified: %w", shared.ErrConflict)
	// ErrNoCodeOutstanding indicates finalize was called with no code issued.
	ErrNoCodeOutstanding = fmt.Errorf("auth: no confirmation code outstanding: %w", shared.ErrInvalidArgument)
	// ErrIdentityTaken indicates the email or username is already registered.
	ErrIdentityTaken = fmt.Errorf("auth: email or username already registered: %w", shared.ErrConflict)
)
