package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/ledgerkeep/ledgerkeep/internal/money"
	"github.com/ledgerkeep/ledgerkeep/internal/platform/db"
)

// Repository persists items and parent totals in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type txRepo struct {
	tx pgx.Tx
}

// WithTx executes the callback inside a repeatable-read transaction.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		return fn(ctx, &txRepo{tx: tx})
	})
}

func parentTable(kind ParentKind) string {
	if kind == ParentLogbook {
		return "logbook_entries"
	}
	return "overview_groups"
}

func parentColumn(kind ParentKind) string {
	if kind == ParentLogbook {
		return "logbook_entry_id"
	}
	return "overview_group_id"
}

const itemColumns = `id, overview_group_id, logbook_entry_id, category, description, cost_cents, placement, created_at, updated_at`

func scanItem(row pgx.Row) (Item, error) {
	var (
		item       Item
		overviewID *int64
		logbookID  *int64
		costCents  *int64
	)
	err := row.Scan(&item.ID, &overviewID, &logbookID, &item.Category, &item.Description, &costCents, &item.Placement, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return Item{}, err
	}
	switch {
	case overviewID != nil:
		item.Parent = ParentRef{Kind: ParentOverview, ID: *overviewID}
	case logbookID != nil:
		item.Parent = ParentRef{Kind: ParentLogbook, ID: *logbookID}
	}
	if costCents != nil {
		cost := money.Cents(*costCents)
		item.Cost = &cost
	}
	return item, nil
}

// FindItem fetches one item by id.
func (r *Repository) FindItem(ctx context.Context, itemID int64) (Item, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, itemID)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Item{}, ErrItemNotFound
		}
		return Item{}, err
	}
	return item, nil
}

// ListByParent returns the parent's items ordered by placement.
func (r *Repository) ListByParent(ctx context.Context, parent ParentRef) ([]Item, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+parentTable(parent.Kind)+` WHERE id = $1)`, parent.ID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrParentNotFound
	}
	rows, err := r.pool.Query(ctx, `SELECT `+itemColumns+` FROM items WHERE `+parentColumn(parent.Kind)+` = $1 ORDER BY placement`, parent.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

// ParentOwner resolves the account owning the parent collection.
func (r *Repository) ParentOwner(ctx context.Context, parent ParentRef) (int64, error) {
	var ownerID int64
	err := r.pool.QueryRow(ctx, `SELECT account_id FROM `+parentTable(parent.Kind)+` WHERE id = $1`, parent.ID).Scan(&ownerID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrParentNotFound
		}
		return 0, err
	}
	return ownerID, nil
}

func collectItems(rows pgx.Rows) ([]Item, error) {
	var items []Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// LockParent takes the per-parent row lock that serializes collection
// mutations for the rest of the transaction.
func (r *txRepo) LockParent(ctx context.Context, parent ParentRef) error {
	var id int64
	err := r.tx.QueryRow(ctx, `SELECT id FROM `+parentTable(parent.Kind)+` WHERE id = $1 FOR UPDATE`, parent.ID).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrParentNotFound
		}
		return err
	}
	return nil
}

func (r *txRepo) ListForUpdate(ctx context.Context, parent ParentRef) ([]Item, error) {
	rows, err := r.tx.Query(ctx, `SELECT `+itemColumns+` FROM items WHERE `+parentColumn(parent.Kind)+` = $1 ORDER BY placement`, parent.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectItems(rows)
}

func (r *txRepo) InsertItem(ctx context.Context, item Item) (int64, error) {
	var overviewID, logbookID *int64
	switch item.Parent.Kind {
	case ParentOverview:
		overviewID = &item.Parent.ID
	case ParentLogbook:
		logbookID = &item.Parent.ID
	}
	var costCents *int64
	if item.Cost != nil {
		v := int64(*item.Cost)
		costCents = &v
	}
	var id int64
	err := r.tx.QueryRow(ctx, `
		INSERT INTO items (overview_group_id, logbook_entry_id, category, description, cost_cents, placement, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING id`,
		overviewID, logbookID, string(item.Category), item.Description, costCents, item.Placement, item.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, err
	}
	return id, nil
}

func (r *txRepo) UpdateItem(ctx context.Context, item Item) error {
	var costCents *int64
	if item.Cost != nil {
		v := int64(*item.Cost)
		costCents = &v
	}
	tag, err := r.tx.Exec(ctx, `
		UPDATE items SET category = $2, description = $3, cost_cents = $4, updated_at = $5
		WHERE id = $1`,
		item.ID, string(item.Category), item.Description, costCents, item.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *txRepo) UpdatePlacements(ctx context.Context, updates []PlacementUpdate) error {
	for _, update := range updates {
		if _, err := r.tx.Exec(ctx, `UPDATE items SET placement = $2, updated_at = $3 WHERE id = $1`, update.ItemID, update.Placement, time.Now().UTC()); err != nil {
			return err
		}
	}
	return nil
}

func (r *txRepo) DeleteItems(ctx context.Context, parent ParentRef, ids []int64) (int64, error) {
	tag, err := r.tx.Exec(ctx, `DELETE FROM items WHERE `+parentColumn(parent.Kind)+` = $1 AND id = ANY($2)`, parent.ID, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *txRepo) DeleteAll(ctx context.Context, parent ParentRef) error {
	_, err := r.tx.Exec(ctx, `DELETE FROM items WHERE `+parentColumn(parent.Kind)+` = $1`, parent.ID)
	return err
}

func (r *txRepo) SetParentTotal(ctx context.Context, parent ParentRef, total money.Cents) error {
	_, err := r.tx.Exec(ctx, `UPDATE `+parentTable(parent.Kind)+` SET total_spent = $2, updated_at = $3 WHERE id = $1`, parent.ID, int64(total), time.Now().UTC())
	return err
}
