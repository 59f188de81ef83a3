package overviews

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/ledgerkeep/ledgerkeep/internal/ledger"
)

// Service manages overview groups and their cached summaries. It implements
// ledger.ChangeNotifier so item mutations invalidate the affected summary.
type Service struct {
	repo   RepositoryPort
	cache  *SummaryCache
	logger *slog.Logger
}

// NewService constructs a Service. cache may be nil.
func NewService(repo RepositoryPort, cache *SummaryCache, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, logger: logger}
}

// Create adds an empty group for the account.
func (s *Service) Create(ctx context.Context, accountID int64, name string) (Group, error) {
	now := time.Now().UTC()
	group := Group{
		AccountID: accountID,
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := s.repo.CreateGroup(ctx, group)
	if err != nil {
		return Group{}, err
	}
	group.ID = id
	return group, nil
}

// List returns all groups owned by the account.
func (s *Service) List(ctx context.Context, accountID int64) ([]Group, error) {
	return s.repo.ListGroups(ctx, accountID)
}

// Get returns one group. Foreign groups read as not-found.
func (s *Service) Get(ctx context.Context, accountID, groupID int64) (Group, error) {
	group, err := s.repo.FindGroup(ctx, groupID)
	if err != nil {
		return Group{}, err
	}
	if group.AccountID != accountID {
		return Group{}, ErrGroupNotFound
	}
	return group, nil
}

// Rename changes the group name.
func (s *Service) Rename(ctx context.Context, accountID, groupID int64, name string) (Group, error) {
	group, err := s.Get(ctx, accountID, groupID)
	if err != nil {
		return Group{}, err
	}
	group.Name = strings.TrimSpace(name)
	if err := s.repo.RenameGroup(ctx, groupID, group.Name); err != nil {
		return Group{}, err
	}
	return group, nil
}

// Delete removes the group and all its items, then drops the cached summary.
func (s *Service) Delete(ctx context.Context, accountID, groupID int64) error {
	if _, err := s.Get(ctx, accountID, groupID); err != nil {
		return err
	}
	deleted, err := s.repo.DeleteGroup(ctx, groupID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrGroupNotFound
	}
	s.bump(ctx, groupID)
	return nil
}

// Summary returns the aggregated view, served from cache when fresh.
func (s *Service) Summary(ctx context.Context, accountID, groupID int64) (Summary, error) {
	group, err := s.Get(ctx, accountID, groupID)
	if err != nil {
		return Summary{}, err
	}
	return s.cache.Fetch(ctx, groupID, func(ctx context.Context) (Summary, error) {
		rows, err := s.repo.SummaryRows(ctx, groupID)
		if err != nil {
			return Summary{}, err
		}
		summary := Summary{
			GroupID:    group.ID,
			Name:       group.Name,
			TotalSpent: group.TotalSpent,
			Categories: rows,
		}
		for _, row := range rows {
			summary.ItemCount += row.Count
		}
		return summary, nil
	})
}

// ParentChanged invalidates the cached summary after a committed item
// mutation. Non-overview parents are someone else's concern.
func (s *Service) ParentChanged(ctx context.Context, parent ledger.ParentRef) {
	if parent.Kind != ledger.ParentOverview {
		return
	}
	s.bump(ctx, parent.ID)
}

func (s *Service) bump(ctx context.Context, groupID int64) {
	if err := s.cache.Bump(ctx, groupID); err != nil {
		s.logger.Warn("bump summary cache", slog.Int64("group_id", groupID), slog.Any("error", err))
	}
}
