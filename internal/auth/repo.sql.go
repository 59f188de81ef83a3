package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides PostgreSQL backed account persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const accountColumns = `id, email, username, password_hash, status, confirmation_token, created_at, updated_at`

func scanAccount(row pgx.Row) (Account, error) {
	var account Account
	err := row.Scan(&account.ID, &account.Email, &account.Username, &account.PasswordHash, &account.Status, &account.ConfirmationToken, &account.CreatedAt, &account.UpdatedAt)
	return account, err
}

// CreateAccount inserts a new account row.
func (r *Repository) CreateAccount(ctx context.Context, account Account) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO accounts (email, username, password_hash, status, confirmation_token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING id`,
		account.Email, account.Username, account.PasswordHash, string(account.Status), account.ConfirmationToken, account.CreatedAt,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrIdentityTaken
		}
		return 0, err
	}
	return id, nil
}

// FindByID fetches an account by id.
func (r *Repository) FindByID(ctx context.Context, id int64) (Account, error) {
	account, err := scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return account, nil
}

// FindByUsername fetches an account by its lowercased username.
func (r *Repository) FindByUsername(ctx context.Context, username string) (Account, error) {
	account, err := scanAccount(r.pool.QueryRow(ctx, `SELECT `+accountColumns+` FROM accounts WHERE username = $1`, username))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return account, nil
}

// SetConfirmation stores a fresh signed code and parks the account in PENDING.
func (r *Repository) SetConfirmation(ctx context.Context, id int64, signedToken string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts SET status = $2, confirmation_token = $3, updated_at = $4
		WHERE id = $1`,
		id, string(StatusPending), signedToken, time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// MarkVerified conditionally transitions PENDING to VERIFIED, clearing the
// stored code. The WHERE clause pins both the status and the token the caller
// compared, so finalize stays one-shot and a code invalidated by a concurrent
// regenerate can no longer verify the account.
func (r *Repository) MarkVerified(ctx context.Context, id int64, signedToken string) (bool, error) {
	tag, err := r.pool.Exec(ctx, `
		UPDATE accounts SET status = $2, confirmation_token = NULL, updated_at = $3
		WHERE id = $1 AND status = $4 AND confirmation_token = $5`,
		id, string(StatusVerified), time.Now().UTC(), string(StatusPending), signedToken,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
