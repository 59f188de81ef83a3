package auth

import "context"

// RepositoryPort abstracts account persistence for the service.
type RepositoryPort interface {
	// CreateAccount inserts a new account and returns its id, or
	// ErrIdentityTaken when the email or username is already registered.
	CreateAccount(ctx context.Context, account Account) (int64, error)
	FindByID(ctx context.Context, id int64) (Account, error)
	FindByUsername(ctx context.Context, username string) (Account, error)
	// SetConfirmation stores a fresh signed code token and moves the account
	// to PENDING, replacing any outstanding code.
	SetConfirmation(ctx context.Context, id int64, signedToken string) error
	// MarkVerified transitions PENDING to VERIFIED and clears the stored code.
	// The write is conditional on both the status and the exact token the
	// caller compared, so a concurrent regenerate or repeat finalize makes it
	// return false instead of verifying against an invalidated code.
	MarkVerified(ctx context.Context, id int64, signedToken string) (bool, error)
}

// MailerPort delivers transactional mail. Delivery is fire-and-forget: state
// transitions never depend on it succeeding.
type MailerPort interface {
	Send(ctx context.Context, to, subject, body string) error
}
