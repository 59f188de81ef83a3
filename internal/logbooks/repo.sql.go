package logbooks

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists logbook entries in PostgreSQL. A unique index on
// (account_id, entry_date) enforces one entry per account per day.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const entryColumns = `id, account_id, entry_date, total_spent, created_at, updated_at`

func scanEntry(row pgx.Row) (Entry, error) {
	var entry Entry
	err := row.Scan(&entry.ID, &entry.AccountID, &entry.EntryDate, &entry.TotalSpent, &entry.CreatedAt, &entry.UpdatedAt)
	return entry, err
}

func (r *Repository) CreateEntry(ctx context.Context, entry Entry) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO logbook_entries (account_id, entry_date, total_spent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		entry.AccountID, entry.EntryDate, int64(entry.TotalSpent), entry.CreatedAt, entry.UpdatedAt,
	).Scan(&id)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, ErrEntryExists
		}
		return 0, err
	}
	return id, nil
}

func (r *Repository) ListEntries(ctx context.Context, accountID int64, from, to time.Time) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM logbook_entries WHERE account_id = $1`
	args := []any{accountID}
	if !from.IsZero() {
		args = append(args, from)
		query += ` AND entry_date >= $2`
	}
	if !to.IsZero() {
		args = append(args, to)
		if len(args) == 3 {
			query += ` AND entry_date <= $3`
		} else {
			query += ` AND entry_date <= $2`
		}
	}
	query += ` ORDER BY entry_date DESC`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

func (r *Repository) FindEntry(ctx context.Context, entryID int64) (Entry, error) {
	entry, err := scanEntry(r.pool.QueryRow(ctx, `SELECT `+entryColumns+` FROM logbook_entries WHERE id = $1`, entryID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Entry{}, ErrEntryNotFound
	}
	return entry, err
}

func (r *Repository) DeleteEntry(ctx context.Context, entryID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM logbook_entries WHERE id = $1`, entryID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
