package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/stepwise/internal/domain/account"
	"github.com/rpggio/stepwise/internal/repository"
)

// UserRepository implements account.Repository for SQLite
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `
	id, name, username, password, role, preferences,
	streak_current, streak_longest, streak_last_activity_date, badges, created_at, updated_at`

// Create inserts a new user
func (r *UserRepository) Create(ctx context.Context, user *account.User) error {
	prefs, err := encodeJSON(user.Preferences)
	if err != nil {
		return err
	}
	badges, err := encodeJSON(nonNilStrings(user.Badges))
	if err != nil {
		return err
	}

	query := `INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Username,
		user.Password,
		user.Role,
		prefs,
		user.Streak.Current,
		user.Streak.Longest,
		nullableTime(user.Streak.LastActivityDate),
		badges,
		utc(user.CreatedAt),
		utc(user.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// Get retrieves a user by ID
func (r *UserRepository) Get(ctx context.Context, id string) (*account.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
}

// GetByUsername retrieves a user by username
func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*account.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg string) (*account.User, error) {
	var user account.User
	var prefs, badges string
	var lastActivity sql.NullTime
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
		&user.Name,
		&user.Username,
		&user.Password,
		&user.Role,
		&prefs,
		&user.Streak.Current,
		&user.Streak.Longest,
		&lastActivity,
		&badges,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.Preferences = account.DefaultPreferences()
	if err := decodeJSON(prefs, &user.Preferences); err != nil {
		return nil, err
	}
	user.Badges = []string{}
	if err := decodeJSON(badges, &user.Badges); err != nil {
		return nil, err
	}
	user.Streak.LastActivityDate = timePtr(lastActivity)
	user.CreatedAt = user.CreatedAt.UTC()
	user.UpdatedAt = user.UpdatedAt.UTC()
	return &user, nil
}

// Update writes profile fields, preferences and password
func (r *UserRepository) Update(ctx context.Context, user *account.User) error {
	prefs, err := encodeJSON(user.Preferences)
	if err != nil {
		return err
	}

	query := `
		UPDATE users
		SET name = ?, username = ?, password = ?, preferences = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		user.Name,
		user.Username,
		user.Password,
		prefs,
		utc(user.UpdatedAt),
		user.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	return expectOneRow(result)
}

// UpdateStreak writes the streak counters and badge set
func (r *UserRepository) UpdateStreak(ctx context.Context, id string, streak account.Streak, badges []string) error {
	encoded, err := encodeJSON(nonNilStrings(badges))
	if err != nil {
		return err
	}

	query := `
		UPDATE users
		SET streak_current = ?, streak_longest = ?, streak_last_activity_date = ?, badges = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		streak.Current,
		streak.Longest,
		nullableTime(streak.LastActivityDate),
		encoded,
		id,
	)
	if err != nil {
		return fmt.Errorf("failed to update streak: %w", err)
	}
	return expectOneRow(result)
}

// Delete removes a user; user activities and journal entries cascade
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return expectOneRow(result)
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
