package progress

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/stepwise/internal/domain/catalog"
	"github.com/rpggio/stepwise/internal/domain/journal"
	"github.com/rpggio/stepwise/internal/events"
	"github.com/rpggio/stepwise/internal/metrics"
	"github.com/rpggio/stepwise/internal/repository"
)

// Service applies lifecycle rules to user activities.
type Service struct {
	repo       Repository
	activities ActivityReader
	users      UserStore
	journal    JournalLogger
	publisher  events.Publisher
	now        func() time.Time
	logger     *slog.Logger
}

// NewService creates a new lifecycle service.
func NewService(repo Repository, activities ActivityReader, users UserStore, logger *slog.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Service{
		repo:       repo,
		activities: activities,
		users:      users,
		publisher:  events.NopPublisher{},
		now:        time.Now,
		logger:     logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddActivity puts an activity on the user's list. A completed record is
// reset in place; any other existing record is a conflict.
func (s *Service) AddActivity(ctx context.Context, userID, activityID string) (*AddResult, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	if strings.TrimSpace(activityID) == "" {
		return nil, catalog.ErrActivityNotFound
	}
	if _, err := s.activities.Get(ctx, activityID); err != nil {
		if errors.Is(err, catalog.ErrActivityNotFound) {
			return nil, catalog.ErrActivityNotFound
		}
		return nil, fmt.Errorf("getting activity: %w", err)
	}

	existing, err := s.repo.GetByActivity(ctx, userID, activityID)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		ua, createErr := s.create(ctx, userID, activityID)
		if createErr == nil {
			return &AddResult{UserActivity: ua}, nil
		}
		if !errors.Is(createErr, repository.ErrDuplicate) {
			return nil, createErr
		}
		// Lost a race with a concurrent add; fall through to the existing record.
		existing, err = s.repo.GetByActivity(ctx, userID, activityID)
		if err != nil {
			return nil, fmt.Errorf("getting user activity: %w", err)
		}
	case err != nil:
		return nil, fmt.Errorf("getting user activity: %w", err)
	}

	if existing.Status != StatusCompleted {
		return nil, &ConflictError{Status: existing.Status}
	}

	now := s.now()
	expected := existing.Revision
	applyReset(existing, now)
	if err := s.write(ctx, userID, existing, expected, now); err != nil {
		return nil, err
	}

	s.afterTransition(ctx, "reset", existing, journal.TypeActivityReset, events.TypeReset,
		"reset completed activity", "")
	return &AddResult{UserActivity: existing, IsReset: true}, nil
}

func (s *Service) create(ctx context.Context, userID, activityID string) (*UserActivity, error) {
	now := s.now()
	ua := &UserActivity{
		ID:         uuid.NewString(),
		UserID:     userID,
		ActivityID: activityID,
		Status:     StatusAdded,
		Progress:   Progress{CompletedSteps: []CompletedStep{}},
		CreatedAt:  now,
		UpdatedAt:  now,
		Revision:   1,
	}
	if err := s.repo.Create(ctx, ua); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, err
		}
		return nil, fmt.Errorf("creating user activity: %w", err)
	}

	s.afterTransition(ctx, "add", ua, journal.TypeActivityAdded, events.TypeAdded,
		"added activity", "")
	return ua, nil
}

// Start moves an added activity into progress.
func (s *Service) Start(ctx context.Context, userID, id string) (*UserActivity, error) {
	ua, expected, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !CanStart(ua.Status) {
		return nil, &TransitionError{Op: "start", From: ua.Status}
	}

	act, err := s.activities.Get(ctx, ua.ActivityID)
	if err != nil {
		if errors.Is(err, catalog.ErrActivityNotFound) {
			return nil, catalog.ErrActivityNotFound
		}
		return nil, fmt.Errorf("getting activity: %w", err)
	}

	now := s.now()
	if err := applyStart(ua, act.StepCount(), now); err != nil {
		return nil, err
	}
	if err := s.write(ctx, userID, ua, expected, now); err != nil {
		return nil, err
	}

	s.afterTransition(ctx, "start", ua, journal.TypeActivityStarted, events.TypeStarted,
		"started activity", fmt.Sprintf(`{"totalSteps":%d}`, ua.Progress.TotalSteps))
	return ua, nil
}

// ToggleStep ticks a step off, or un-ticks it if it was already done, and
// derives the resulting status. Completing the last step updates the streak.
func (s *Service) ToggleStep(ctx context.Context, userID, id string, stepNumber int) (*UserActivity, error) {
	ua, expected, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !CanToggle(ua) {
		return nil, &TransitionError{Op: "toggle a step of", From: ua.Status}
	}
	if stepNumber < 1 || stepNumber > ua.Progress.TotalSteps {
		return nil, ErrStepNotFound
	}

	now := s.now()
	completed := applyToggle(ua, stepNumber, now)
	if err := s.write(ctx, userID, ua, expected, now); err != nil {
		return nil, err
	}

	details := fmt.Sprintf(`{"stepNumber":%d,"done":%t,"percentComplete":%d}`,
		stepNumber, ua.HasCompletedStep(stepNumber), ua.Progress.PercentComplete)
	s.afterTransition(ctx, "toggle", ua, journal.TypeStepToggled, events.TypeToggled,
		fmt.Sprintf("toggled step %d", stepNumber), details)

	if completed {
		s.afterTransition(ctx, "complete", ua, journal.TypeActivityCompleted, events.TypeCompleted,
			"completed activity", "")
		s.recalculateStreak(ctx, userID)
	}
	return ua, nil
}

// Complete finishes an in-progress activity that has no steps to toggle.
func (s *Service) Complete(ctx context.Context, userID, id string) (*UserActivity, error) {
	ua, expected, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if ua.Status != StatusInProgress || ua.Progress.TotalSteps > 0 {
		return nil, &TransitionError{Op: "complete", From: ua.Status}
	}

	now := s.now()
	completedAt := now
	ua.Status = StatusCompleted
	ua.CompletedAt = &completedAt
	ua.Progress.PercentComplete = 100
	if err := s.write(ctx, userID, ua, expected, now); err != nil {
		return nil, err
	}

	s.afterTransition(ctx, "complete", ua, journal.TypeActivityCompleted, events.TypeCompleted,
		"completed activity", "")
	s.recalculateStreak(ctx, userID)
	return ua, nil
}

// Skip sets an added or in-progress activity aside. Progress is kept.
func (s *Service) Skip(ctx context.Context, userID, id string) (*UserActivity, error) {
	ua, expected, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !CanSkip(ua.Status) {
		return nil, &TransitionError{Op: "skip", From: ua.Status}
	}

	now := s.now()
	ua.Status = StatusSkipped
	if err := s.write(ctx, userID, ua, expected, now); err != nil {
		return nil, err
	}

	s.afterTransition(ctx, "skip", ua, journal.TypeActivitySkipped, events.TypeSkipped,
		"skipped activity", "")
	return ua, nil
}

// Resume returns a skipped activity to added. It must be started again.
func (s *Service) Resume(ctx context.Context, userID, id string) (*UserActivity, error) {
	ua, expected, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !CanResume(ua.Status) {
		return nil, &TransitionError{Op: "resume", From: ua.Status}
	}

	now := s.now()
	ua.Status = StatusAdded
	if err := s.write(ctx, userID, ua, expected, now); err != nil {
		return nil, err
	}

	s.afterTransition(ctx, "resume", ua, journal.TypeActivityResumed, events.TypeResumed,
		"resumed activity", "")
	return ua, nil
}

// Remove deletes the record from any status and returns its ID.
func (s *Service) Remove(ctx context.Context, userID, id string) (string, error) {
	ua, _, err := s.load(ctx, userID, id)
	if err != nil {
		return "", err
	}

	if err := s.repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrUserActivityNotFound
		}
		return "", fmt.Errorf("deleting user activity: %w", err)
	}
	ua.UpdatedAt = s.now()

	s.afterTransition(ctx, "remove", ua, journal.TypeActivityRemoved, events.TypeRemoved,
		"removed activity", fmt.Sprintf(`{"status":%q}`, ua.Status))
	return ua.ID, nil
}

// Get returns one of the user's activities with its catalog activity.
func (s *Service) Get(ctx context.Context, userID, id string) (*Entry, error) {
	ua, _, err := s.load(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	entry := &Entry{UserActivity: *ua}
	act, err := s.activities.Get(ctx, ua.ActivityID)
	switch {
	case err == nil:
		entry.Activity = act
	case !errors.Is(err, catalog.ErrActivityNotFound):
		return nil, fmt.Errorf("getting activity: %w", err)
	}
	return entry, nil
}

// ListForUser returns the user's activities, newest first, each with its
// catalog activity.
func (s *Service) ListForUser(ctx context.Context, userID string, opts ListOptions) ([]Entry, error) {
	if opts.Status != nil && !opts.Status.Valid() {
		return nil, ErrInvalidInput
	}

	uas, err := s.repo.List(ctx, userID, opts)
	if err != nil {
		return nil, fmt.Errorf("listing user activities: %w", err)
	}

	ids := make([]string, 0, len(uas))
	seen := make(map[string]bool, len(uas))
	for _, ua := range uas {
		if !seen[ua.ActivityID] {
			seen[ua.ActivityID] = true
			ids = append(ids, ua.ActivityID)
		}
	}
	acts, err := s.activities.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("getting activities: %w", err)
	}

	entries := make([]Entry, 0, len(uas))
	for _, ua := range uas {
		entries = append(entries, Entry{UserActivity: ua, Activity: acts[ua.ActivityID]})
	}
	return entries, nil
}

// Stats summarizes the user's completions and streak.
func (s *Service) Stats(ctx context.Context, userID string) (*Stats, error) {
	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	start, end := dayBounds(s.now())
	today, err := s.repo.CountCompleted(ctx, userID, &start, &end)
	if err != nil {
		return nil, fmt.Errorf("counting completions today: %w", err)
	}
	total, err := s.repo.CountCompleted(ctx, userID, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("counting completions: %w", err)
	}

	badges := user.Badges
	if badges == nil {
		badges = []string{}
	}
	return &Stats{
		CompletedToday: today,
		TotalCompleted: total,
		CurrentStreak:  user.Streak.Current,
		LongestStreak:  user.Streak.Longest,
		Badges:         badges,
	}, nil
}

// CleanupOrphans deletes user activities whose catalog activity no longer exists.
func (s *Service) CleanupOrphans(ctx context.Context) (int, error) {
	n, err := s.repo.DeleteOrphans(ctx)
	if err != nil {
		return 0, fmt.Errorf("deleting orphaned user activities: %w", err)
	}
	metrics.AddOrphansDeleted(n)
	if n > 0 {
		s.logger.Info("orphaned user activities removed", "count", n)
	}
	return n, nil
}

// recalculateStreak runs after a completion has been written. Failures are
// logged and never reach the caller.
func (s *Service) recalculateStreak(ctx context.Context, userID string) {
	if err := s.updateStreak(ctx, userID); err != nil {
		metrics.ObserveStreak("error")
		s.logger.Warn("streak update failed", "user_id", userID, "error", err)
	}
}

func (s *Service) updateStreak(ctx context.Context, userID string) error {
	now := s.now()
	start, end := dayBounds(now)
	today, err := s.repo.CountCompleted(ctx, userID, &start, &end)
	if err != nil {
		return fmt.Errorf("counting completions today: %w", err)
	}
	if today == 0 {
		metrics.ObserveStreak(string(StreakNoop))
		return nil
	}
	total, err := s.repo.CountCompleted(ctx, userID, nil, nil)
	if err != nil {
		return fmt.Errorf("counting completions: %w", err)
	}

	user, err := s.users.Get(ctx, userID)
	if err != nil {
		return fmt.Errorf("getting user: %w", err)
	}

	streak, badges, result := ApplyCompletion(user.Streak, user.Badges, today, total, now)
	if err := s.users.RecordStreak(ctx, userID, streak, badges); err != nil {
		return fmt.Errorf("recording streak: %w", err)
	}

	metrics.ObserveStreak(string(result))
	s.logger.Debug("streak recalculated", "user_id", userID, "result", result,
		"current", streak.Current, "longest", streak.Longest, "badges", len(badges))
	return nil
}

func (s *Service) load(ctx context.Context, userID, id string) (*UserActivity, int64, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(id) == "" {
		return nil, 0, ErrUserActivityNotFound
	}
	ua, err := s.repo.Get(ctx, userID, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, 0, ErrUserActivityNotFound
		}
		return nil, 0, fmt.Errorf("getting user activity: %w", err)
	}
	if ua.Progress.CompletedSteps == nil {
		ua.Progress.CompletedSteps = []CompletedStep{}
	}
	return ua, ua.Revision, nil
}

func (s *Service) write(ctx context.Context, userID string, ua *UserActivity, expected int64, now time.Time) error {
	ua.UpdatedAt = now
	ua.Revision = expected + 1
	if err := s.repo.Update(ctx, userID, ua, expected); err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrUserActivityNotFound
		case errors.Is(err, repository.ErrConflict):
			return ErrStaleRevision
		}
		return fmt.Errorf("updating user activity: %w", err)
	}
	return nil
}

func (s *Service) afterTransition(ctx context.Context, op string, ua *UserActivity, entryType journal.EntryType, eventType events.Type, summary, details string) {
	metrics.ObserveTransition(op, string(ua.Status))

	if s.journal != nil {
		err := s.journal.Log(ctx, ua.UserID, &journal.Entry{
			UserActivityID: ua.ID,
			ActivityID:     ua.ActivityID,
			Type:           entryType,
			Summary:        summary,
			Details:        details,
			CreatedAt:      ua.UpdatedAt,
		})
		if err != nil {
			s.logger.Warn("journal write failed", "user_id", ua.UserID, "user_activity_id", ua.ID, "error", err)
		}
	}

	// The event outlives the request that caused it.
	err := s.publisher.Publish(context.WithoutCancel(ctx), events.LifecycleEvent{
		Type:            eventType,
		UserID:          ua.UserID,
		UserActivityID:  ua.ID,
		ActivityID:      ua.ActivityID,
		Status:          string(ua.Status),
		PercentComplete: ua.Progress.PercentComplete,
		OccurredAt:      ua.UpdatedAt,
	})
	if err != nil {
		s.logger.Warn("event publish failed", "type", eventType, "user_id", ua.UserID, "error", err)
	}
}

func dayBounds(now time.Time) (time.Time, time.Time) {
	start := startOfDay(now)
	return start, start.AddDate(0, 0, 1)
}
