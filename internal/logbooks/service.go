package logbooks

import (
	"context"
	"time"
)

// Service manages logbook entries.
type Service struct {
	repo RepositoryPort
}

// NewService constructs a Service.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// Create opens the account's entry for the given day.
func (s *Service) Create(ctx context.Context, accountID int64, day time.Time) (Entry, error) {
	now := time.Now().UTC()
	entry := Entry{
		AccountID: accountID,
		EntryDate: day,
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := s.repo.CreateEntry(ctx, entry)
	if err != nil {
		return Entry{}, err
	}
	entry.ID = id
	return entry, nil
}

// List returns the account's entries inside the optional date window.
func (s *Service) List(ctx context.Context, accountID int64, from, to time.Time) ([]Entry, error) {
	return s.repo.ListEntries(ctx, accountID, from, to)
}

// Get returns one entry. Foreign entries read as not-found.
func (s *Service) Get(ctx context.Context, accountID, entryID int64) (Entry, error) {
	entry, err := s.repo.FindEntry(ctx, entryID)
	if err != nil {
		return Entry{}, err
	}
	if entry.AccountID != accountID {
		return Entry{}, ErrEntryNotFound
	}
	return entry, nil
}

// Delete removes the entry and all its items.
func (s *Service) Delete(ctx context.Context, accountID, entryID int64) error {
	if _, err := s.Get(ctx, accountID, entryID); err != nil {
		return err
	}
	deleted, err := s.repo.DeleteEntry(ctx, entryID)
	if err != nil {
		return err
	}
	if deleted == 0 {
		return ErrEntryNotFound
	}
	return nil
}
