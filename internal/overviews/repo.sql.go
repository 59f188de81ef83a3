package overviews

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists overview groups in PostgreSQL. Items hang off groups
// with ON DELETE CASCADE, so deleting a group drops its items too.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const groupColumns = `id, account_id, name, total_spent, created_at, updated_at`

func scanGroup(row pgx.Row) (Group, error) {
	var group Group
	err := row.Scan(&group.ID, &group.AccountID, &group.Name, &group.TotalSpent, &group.CreatedAt, &group.UpdatedAt)
	return group, err
}

func (r *Repository) CreateGroup(ctx context.Context, group Group) (int64, error) {
	var id int64
	err := r.pool.QueryRow(ctx, `
		INSERT INTO overview_groups (account_id, name, total_spent, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		group.AccountID, group.Name, int64(group.TotalSpent), group.CreatedAt, group.UpdatedAt,
	).Scan(&id)
	return id, err
}

func (r *Repository) ListGroups(ctx context.Context, accountID int64) ([]Group, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+groupColumns+` FROM overview_groups WHERE account_id = $1 ORDER BY created_at, id`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var groups []Group
	for rows.Next() {
		group, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		groups = append(groups, group)
	}
	return groups, rows.Err()
}

func (r *Repository) FindGroup(ctx context.Context, groupID int64) (Group, error) {
	group, err := scanGroup(r.pool.QueryRow(ctx, `SELECT `+groupColumns+` FROM overview_groups WHERE id = $1`, groupID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Group{}, ErrGroupNotFound
	}
	return group, err
}

func (r *Repository) RenameGroup(ctx context.Context, groupID int64, name string) error {
	tag, err := r.pool.Exec(ctx, `UPDATE overview_groups SET name = $2, updated_at = $3 WHERE id = $1`, groupID, name, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrGroupNotFound
	}
	return nil
}

func (r *Repository) DeleteGroup(ctx context.Context, groupID int64) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM overview_groups WHERE id = $1`, groupID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (r *Repository) SummaryRows(ctx context.Context, groupID int64) ([]CategoryBreakdown, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT category, COUNT(*), COALESCE(SUM(cost_cents), 0)
		FROM items
		WHERE overview_group_id = $1
		GROUP BY category
		ORDER BY category`, groupID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var breakdown []CategoryBreakdown
	for rows.Next() {
		var row CategoryBreakdown
		if err := rows.Scan(&row.Category, &row.Count, &row.Total); err != nil {
			return nil, err
		}
		breakdown = append(breakdown, row)
	}
	return breakdown, rows.Err()
}
