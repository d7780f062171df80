package mocks

import (
	"context"
	"time"

	"github.com/rpggio/stepwise/internal/domain/account"
	"github.com/rpggio/stepwise/internal/domain/catalog"
	"github.com/rpggio/stepwise/internal/domain/journal"
	"github.com/rpggio/stepwise/internal/domain/progress"
	"github.com/stretchr/testify/mock"
)

// CatalogRepository is a mock for catalog.Repository.
type CatalogRepository struct {
	mock.Mock
}

func (m *CatalogRepository) Create(ctx context.Context, act *catalog.Activity) error {
	args := m.Called(ctx, act)
	return args.Error(0)
}

func (m *CatalogRepository) Get(ctx context.Context, id string) (*catalog.Activity, error) {
	args := m.Called(ctx, id)
	if act, ok := args.Get(0).(*catalog.Activity); ok {
		return act, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CatalogRepository) Update(ctx context.Context, act *catalog.Activity) error {
	args := m.Called(ctx, act)
	return args.Error(0)
}

func (m *CatalogRepository) List(ctx context.Context, opts catalog.ListOptions) ([]catalog.Activity, error) {
	args := m.Called(ctx, opts)
	if list, ok := args.Get(0).([]catalog.Activity); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CatalogRepository) ListByIDs(ctx context.Context, ids []string) ([]catalog.Activity, error) {
	args := m.Called(ctx, ids)
	if list, ok := args.Get(0).([]catalog.Activity); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *CatalogRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	args := m.Called(ctx, title)
	return args.Bool(0), args.Error(1)
}

// UserRepository is a mock for account.Repository.
type UserRepository struct {
	mock.Mock
}

func (m *UserRepository) Create(ctx context.Context, user *account.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) Get(ctx context.Context, id string) (*account.User, error) {
	args := m.Called(ctx, id)
	if user, ok := args.Get(0).(*account.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) GetByUsername(ctx context.Context, username string) (*account.User, error) {
	args := m.Called(ctx, username)
	if user, ok := args.Get(0).(*account.User); ok {
		return user, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserRepository) Update(ctx context.Context, user *account.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *UserRepository) UpdateStreak(ctx context.Context, id string, streak account.Streak, badges []string) error {
	args := m.Called(ctx, id, streak, badges)
	return args.Error(0)
}

func (m *UserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// UserActivityRepository is a mock for progress.Repository.
type UserActivityRepository struct {
	mock.Mock
}

func (m *UserActivityRepository) Create(ctx context.Context, ua *progress.UserActivity) error {
	args := m.Called(ctx, ua)
	return args.Error(0)
}

func (m *UserActivityRepository) Get(ctx context.Context, userID, id string) (*progress.UserActivity, error) {
	args := m.Called(ctx, userID, id)
	if ua, ok := args.Get(0).(*progress.UserActivity); ok {
		return ua, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserActivityRepository) GetByActivity(ctx context.Context, userID, activityID string) (*progress.UserActivity, error) {
	args := m.Called(ctx, userID, activityID)
	if ua, ok := args.Get(0).(*progress.UserActivity); ok {
		return ua, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserActivityRepository) Update(ctx context.Context, userID string, ua *progress.UserActivity, expectedRevision int64) error {
	args := m.Called(ctx, userID, ua, expectedRevision)
	return args.Error(0)
}

func (m *UserActivityRepository) Delete(ctx context.Context, userID, id string) error {
	args := m.Called(ctx, userID, id)
	return args.Error(0)
}

func (m *UserActivityRepository) List(ctx context.Context, userID string, opts progress.ListOptions) ([]progress.UserActivity, error) {
	args := m.Called(ctx, userID, opts)
	if list, ok := args.Get(0).([]progress.UserActivity); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *UserActivityRepository) CountCompleted(ctx context.Context, userID string, from, to *time.Time) (int, error) {
	args := m.Called(ctx, userID, from, to)
	return args.Int(0), args.Error(1)
}

func (m *UserActivityRepository) DeleteOrphans(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

// JournalRepository is a mock for journal.Repository.
type JournalRepository struct {
	mock.Mock
}

func (m *JournalRepository) Log(ctx context.Context, userID string, entry *journal.Entry) error {
	args := m.Called(ctx, userID, entry)
	return args.Error(0)
}

func (m *JournalRepository) List(ctx context.Context, userID string, opts journal.ListOptions) ([]journal.Entry, error) {
	args := m.Called(ctx, userID, opts)
	if list, ok := args.Get(0).([]journal.Entry); ok {
		return list, args.Error(1)
	}
	return nil, args.Error(1)
}
