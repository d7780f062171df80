package progress_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rpggio/stepwise/internal/domain/account"
	"github.com/rpggio/stepwise/internal/domain/catalog"
	"github.com/rpggio/stepwise/internal/domain/progress"
	"github.com/rpggio/stepwise/internal/repository"
	"github.com/rpggio/stepwise/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockedService struct {
	svc     *progress.Service
	repo    *mocks.UserActivityRepository
	catalog *mocks.CatalogRepository
	users   *mocks.UserRepository
}

func newMockedService(now time.Time) mockedService {
	repo := &mocks.UserActivityRepository{}
	catalogRepo := &mocks.CatalogRepository{}
	userRepo := &mocks.UserRepository{}
	svc := progress.NewService(
		repo,
		catalog.NewService(catalogRepo, nil),
		account.NewService(userRepo, nil, nil),
		nil,
		progress.WithClock(func() time.Time { return now }),
	)
	return mockedService{svc: svc, repo: repo, catalog: catalogRepo, users: userRepo}
}

func TestService_RemoveMissingIsNotFoundEveryTime(t *testing.T) {
	ctx := context.Background()
	m := newMockedService(time.Now())
	m.repo.On("Get", ctx, "user1", "ua-missing").Return((*progress.UserActivity)(nil), repository.ErrNotFound)

	for i := 0; i < 2; i++ {
		_, err := m.svc.Remove(ctx, "user1", "ua-missing")
		require.ErrorIs(t, err, progress.ErrUserActivityNotFound)
	}
	m.repo.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestService_AddUnknownActivity(t *testing.T) {
	ctx := context.Background()
	m := newMockedService(time.Now())
	m.catalog.On("Get", ctx, "nope").Return((*catalog.Activity)(nil), repository.ErrNotFound)

	_, err := m.svc.AddActivity(ctx, "user1", "nope")
	require.ErrorIs(t, err, catalog.ErrActivityNotFound)
}

func TestService_AddExistingActiveIsConflict(t *testing.T) {
	ctx := context.Background()
	m := newMockedService(time.Now())
	m.catalog.On("Get", ctx, "act1").Return(&catalog.Activity{ID: "act1"}, nil)
	m.repo.On("GetByActivity", ctx, "user1", "act1").Return(&progress.UserActivity{
		ID: "ua1", UserID: "user1", ActivityID: "act1", Status: progress.StatusSkipped, Revision: 4,
	}, nil)

	_, err := m.svc.AddActivity(ctx, "user1", "act1")
	require.ErrorIs(t, err, progress.ErrAlreadyInList)
	var conflict *progress.ConflictError
	require.ErrorAs(t, err, &conflict)
	require.Equal(t, progress.StatusSkipped, conflict.Status)
	m.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	m.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_StaleRevision(t *testing.T) {
	ctx := context.Background()
	m := newMockedService(time.Now())
	m.repo.On("Get", ctx, "user1", "ua1").Return(&progress.UserActivity{
		ID: "ua1", UserID: "user1", ActivityID: "act1", Status: progress.StatusAdded, Revision: 3,
	}, nil)
	m.repo.On("Update", ctx, "user1", mock.Anything, int64(3)).Return(repository.ErrConflict)

	_, err := m.svc.Skip(ctx, "user1", "ua1")
	require.ErrorIs(t, err, progress.ErrStaleRevision)
}

func TestService_StoreErrorsAreWrapped(t *testing.T) {
	ctx := context.Background()
	m := newMockedService(time.Now())
	storeErr := errors.New("disk full")
	m.repo.On("Get", ctx, "user1", "ua1").Return((*progress.UserActivity)(nil), storeErr)

	_, err := m.svc.Start(ctx, "user1", "ua1")
	require.ErrorIs(t, err, storeErr)
	require.NotErrorIs(t, err, progress.ErrUserActivityNotFound)
}

func TestService_StreakFailureDoesNotFailCompletion(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC)
	m := newMockedService(now)

	started := now.Add(-time.Hour)
	m.repo.On("Get", ctx, "user1", "ua1").Return(&progress.UserActivity{
		ID: "ua1", UserID: "user1", ActivityID: "act1", Status: progress.StatusInProgress, Revision: 2,
		Progress: progress.Progress{
			TotalSteps:     2,
			StartedAt:      &started,
			CompletedSteps: []progress.CompletedStep{{StepNumber: 1, CompletedAt: started}},
		},
	}, nil)
	m.repo.On("Update", ctx, "user1", mock.Anything, int64(2)).Return(nil)
	m.repo.On("CountCompleted", ctx, "user1", mock.Anything, mock.Anything).Return(0, errors.New("db locked"))

	ua, err := m.svc.ToggleStep(ctx, "user1", "ua1", 2)
	require.NoError(t, err)
	require.Equal(t, progress.StatusCompleted, ua.Status)
	require.Equal(t, int64(3), ua.Revision)
	m.users.AssertNotCalled(t, "UpdateStreak", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestService_ToggleGuards(t *testing.T) {
	ctx := context.Background()
	m := newMockedService(time.Now())
	started := time.Now()
	m.repo.On("Get", ctx, "user1", "added").Return(&progress.UserActivity{
		ID: "added", UserID: "user1", Status: progress.StatusAdded, Revision: 1,
	}, nil)
	m.repo.On("Get", ctx, "user1", "running").Return(&progress.UserActivity{
		ID: "running", UserID: "user1", Status: progress.StatusInProgress, Revision: 1,
		Progress: progress.Progress{TotalSteps: 3, StartedAt: &started},
	}, nil)

	_, err := m.svc.ToggleStep(ctx, "user1", "added", 1)
	require.ErrorIs(t, err, progress.ErrInvalidTransition)

	_, err = m.svc.ToggleStep(ctx, "user1", "running", 4)
	require.ErrorIs(t, err, progress.ErrStepNotFound)
	_, err = m.svc.ToggleStep(ctx, "user1", "running", 0)
	require.ErrorIs(t, err, progress.ErrStepNotFound)
}

func TestService_CompleteStepless(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 6, 10, 9, 0, 0, 0, time.UTC)
	m := newMockedService(now)
	started := now.Add(-time.Hour)

	m.repo.On("Get", ctx, "user1", "ua1").Return(&progress.UserActivity{
		ID: "ua1", UserID: "user1", Status: progress.StatusInProgress, Revision: 1,
		Progress: progress.Progress{StartedAt: &started},
	}, nil)
	m.repo.On("Get", ctx, "user1", "ua2").Return(&progress.UserActivity{
		ID: "ua2", UserID: "user1", Status: progress.StatusInProgress, Revision: 1,
		Progress: progress.Progress{StartedAt: &started, TotalSteps: 2},
	}, nil)
	m.repo.On("Update", ctx, "user1", mock.Anything, int64(1)).Return(nil)
	m.repo.On("CountCompleted", ctx, "user1", mock.Anything, mock.Anything).Return(0, nil)

	ua, err := m.svc.Complete(ctx, "user1", "ua1")
	require.NoError(t, err)
	require.Equal(t, progress.StatusCompleted, ua.Status)
	require.Equal(t, 100, ua.Progress.PercentComplete)
	require.NotNil(t, ua.CompletedAt)

	_, err = m.svc.Complete(ctx, "user1", "ua2")
	require.ErrorIs(t, err, progress.ErrInvalidTransition)
}

func TestService_ListRejectsUnknownStatus(t *testing.T) {
	m := newMockedService(time.Now())
	status := progress.Status("paused")

	_, err := m.svc.ListForUser(context.Background(), "user1", progress.ListOptions{Status: &status})
	require.ErrorIs(t, err, progress.ErrInvalidInput)
}
