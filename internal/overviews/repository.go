package overviews

import "context"

// RepositoryPort is the persistence contract for overview groups.
type RepositoryPort interface {
	CreateGroup(ctx context.Context, group Group) (int64, error)
	ListGroups(ctx context.Context, accountID int64) ([]Group, error)
	FindGroup(ctx context.Context, groupID int64) (Group, error)
	RenameGroup(ctx context.Context, groupID int64, name string) error
	// DeleteGroup removes the group and cascades its items. Returns the
	// number of groups deleted.
	DeleteGroup(ctx context.Context, groupID int64) (int64, error)
	// SummaryRows aggregates the group's items per category.
	SummaryRows(ctx context.Context, groupID int64) ([]CategoryBreakdown, error)
}
