package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rpggio/stepwise/internal/domain/progress"
	"github.com/rpggio/stepwise/internal/repository"
)

// UserActivityRepository implements progress.Repository for SQLite
type UserActivityRepository struct {
	db *DB
}

// NewUserActivityRepository creates a new UserActivityRepository
func NewUserActivityRepository(db *DB) *UserActivityRepository {
	return &UserActivityRepository{db: db}
}

const userActivityColumns = `
	id, user_id, activity_id, status, current_step, completed_steps, total_steps,
	percent_complete, started_at, completed_at, created_at, updated_at, revision`

// Create inserts a new user activity. A second record for the same
// (user, activity) pair is rejected with ErrDuplicate.
func (r *UserActivityRepository) Create(ctx context.Context, ua *progress.UserActivity) error {
	steps, err := encodeCompletedSteps(ua.Progress.CompletedSteps)
	if err != nil {
		return err
	}

	query := `INSERT INTO user_activities (` + userActivityColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		ua.ID,
		ua.UserID,
		ua.ActivityID,
		ua.Status,
		ua.Progress.CurrentStep,
		steps,
		ua.Progress.TotalSteps,
		ua.Progress.PercentComplete,
		nullableTime(ua.Progress.StartedAt),
		nullableTime(ua.CompletedAt),
		utc(ua.CreatedAt),
		utc(ua.UpdatedAt),
		ua.Revision,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		if isForeignKeyViolation(err) {
			return repository.ErrForeignKeyViolation
		}
		return fmt.Errorf("failed to create user activity: %w", err)
	}
	return nil
}

// Get retrieves a user activity owned by userID
func (r *UserActivityRepository) Get(ctx context.Context, userID, id string) (*progress.UserActivity, error) {
	query := `SELECT ` + userActivityColumns + ` FROM user_activities WHERE id = ? AND user_id = ?`
	ua, err := scanUserActivity(r.db.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user activity: %w", err)
	}
	return ua, nil
}

// GetByActivity retrieves the user's record for a catalog activity
func (r *UserActivityRepository) GetByActivity(ctx context.Context, userID, activityID string) (*progress.UserActivity, error) {
	query := `SELECT ` + userActivityColumns + ` FROM user_activities WHERE user_id = ? AND activity_id = ?`
	ua, err := scanUserActivity(r.db.QueryRowContext(ctx, query, userID, activityID))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user activity: %w", err)
	}
	return ua, nil
}

// Update writes a user activity with optimistic concurrency control
func (r *UserActivityRepository) Update(ctx context.Context, userID string, ua *progress.UserActivity, expectedRevision int64) error {
	steps, err := encodeCompletedSteps(ua.Progress.CompletedSteps)
	if err != nil {
		return err
	}

	query := `
		UPDATE user_activities
		SET status = ?, current_step = ?, completed_steps = ?, total_steps = ?,
		    percent_complete = ?, started_at = ?, completed_at = ?,
		    created_at = ?, updated_at = ?, revision = ?
		WHERE id = ? AND user_id = ? AND revision = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		ua.Status,
		ua.Progress.CurrentStep,
		steps,
		ua.Progress.TotalSteps,
		ua.Progress.PercentComplete,
		nullableTime(ua.Progress.StartedAt),
		nullableTime(ua.CompletedAt),
		utc(ua.CreatedAt),
		utc(ua.UpdatedAt),
		ua.Revision,
		ua.ID,
		userID,
		expectedRevision,
	)
	if err != nil {
		return fmt.Errorf("failed to update user activity: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		var exists bool
		checkQuery := `SELECT EXISTS(SELECT 1 FROM user_activities WHERE id = ? AND user_id = ?)`
		err = r.db.QueryRowContext(ctx, checkQuery, ua.ID, userID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check user activity existence: %w", err)
		}
		if !exists {
			return repository.ErrNotFound
		}
		// Record exists but revision doesn't match
		return repository.ErrConflict
	}

	return nil
}

// Delete removes a user activity owned by userID
func (r *UserActivityRepository) Delete(ctx context.Context, userID, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM user_activities WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete user activity: %w", err)
	}
	return expectOneRow(result)
}

// List returns the user's activities, most recently updated first
func (r *UserActivityRepository) List(ctx context.Context, userID string, opts progress.ListOptions) ([]progress.UserActivity, error) {
	query := `SELECT ` + userActivityColumns + ` FROM user_activities WHERE user_id = ?`
	args := []any{userID}
	if opts.Status != nil {
		query += " AND status = ?"
		args = append(args, *opts.Status)
	}
	query += " ORDER BY updated_at DESC, id ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list user activities: %w", err)
	}
	defer rows.Close()

	uas := []progress.UserActivity{}
	for rows.Next() {
		ua, err := scanUserActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user activity: %w", err)
		}
		uas = append(uas, *ua)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating user activity rows: %w", err)
	}
	return uas, nil
}

// CountCompleted counts completed records with completed_at in [from, to)
func (r *UserActivityRepository) CountCompleted(ctx context.Context, userID string, from, to *time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM user_activities WHERE user_id = ? AND status = ? AND completed_at IS NOT NULL`
	args := []any{userID, progress.StatusCompleted}
	if from != nil {
		query += " AND completed_at >= ?"
		args = append(args, from.UTC())
	}
	if to != nil {
		query += " AND completed_at < ?"
		args = append(args, to.UTC())
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count completed activities: %w", err)
	}
	return count, nil
}

// DeleteOrphans removes user activities whose catalog activity is gone
func (r *UserActivityRepository) DeleteOrphans(ctx context.Context) (int, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM user_activities
		WHERE activity_id NOT IN (SELECT id FROM activities)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete orphaned user activities: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return int(rowsAffected), nil
}

func encodeCompletedSteps(steps []progress.CompletedStep) (string, error) {
	if steps == nil {
		steps = []progress.CompletedStep{}
	}
	normalized := make([]progress.CompletedStep, len(steps))
	for i, step := range steps {
		normalized[i] = progress.CompletedStep{StepNumber: step.StepNumber, CompletedAt: step.CompletedAt.UTC()}
	}
	return encodeJSON(normalized)
}

func scanUserActivity(row rowScanner) (*progress.UserActivity, error) {
	var ua progress.UserActivity
	var steps string
	var startedAt, completedAt sql.NullTime
	if err := row.Scan(
		&ua.ID,
		&ua.UserID,
		&ua.ActivityID,
		&ua.Status,
		&ua.Progress.CurrentStep,
		&steps,
		&ua.Progress.TotalSteps,
		&ua.Progress.PercentComplete,
		&startedAt,
		&completedAt,
		&ua.CreatedAt,
		&ua.UpdatedAt,
		&ua.Revision,
	); err != nil {
		return nil, err
	}

	ua.Progress.CompletedSteps = []progress.CompletedStep{}
	if err := decodeJSON(steps, &ua.Progress.CompletedSteps); err != nil {
		return nil, err
	}
	ua.Progress.StartedAt = timePtr(startedAt)
	ua.CompletedAt = timePtr(completedAt)
	ua.CreatedAt = ua.CreatedAt.UTC()
	ua.UpdatedAt = ua.UpdatedAt.UTC()
	return &ua, nil
}
