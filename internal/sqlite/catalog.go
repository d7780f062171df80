package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/rpggio/stepwise/internal/domain/catalog"
	"github.com/rpggio/stepwise/internal/repository"
)

// CatalogRepository implements catalog.Repository for SQLite
type CatalogRepository struct {
	db *DB
}

// NewCatalogRepository creates a new CatalogRepository
func NewCatalogRepository(db *DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

const activityColumns = `
	id, title, description, category, difficulty, estimated_time,
	steps, tags, instructions, materials, benefits, is_active, created_at, updated_at`

type activityDocs struct {
	steps, tags, instructions, materials, benefits string
}

func encodeActivityDocs(act *catalog.Activity) (activityDocs, error) {
	var docs activityDocs
	var err error
	if docs.steps, err = encodeJSON(act.Steps); err != nil {
		return docs, err
	}
	if docs.tags, err = encodeJSON(act.Tags); err != nil {
		return docs, err
	}
	if docs.instructions, err = encodeJSON(act.Instructions); err != nil {
		return docs, err
	}
	if docs.materials, err = encodeJSON(act.Materials); err != nil {
		return docs, err
	}
	if docs.benefits, err = encodeJSON(act.Benefits); err != nil {
		return docs, err
	}
	return docs, nil
}

// Create inserts a new activity
func (r *CatalogRepository) Create(ctx context.Context, act *catalog.Activity) error {
	docs, err := encodeActivityDocs(act)
	if err != nil {
		return err
	}

	query := `INSERT INTO activities (` + activityColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		act.ID,
		act.Title,
		act.Description,
		act.Category,
		act.Difficulty,
		act.EstimatedTime,
		docs.steps,
		docs.tags,
		docs.instructions,
		docs.materials,
		docs.benefits,
		act.IsActive,
		utc(act.CreatedAt),
		utc(act.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

// Get retrieves an activity by ID
func (r *CatalogRepository) Get(ctx context.Context, id string) (*catalog.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id = ?`

	act, err := scanActivity(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return act, nil
}

// Update replaces every mutable field of an activity
func (r *CatalogRepository) Update(ctx context.Context, act *catalog.Activity) error {
	docs, err := encodeActivityDocs(act)
	if err != nil {
		return err
	}

	query := `
		UPDATE activities
		SET title = ?, description = ?, category = ?, difficulty = ?, estimated_time = ?,
		    steps = ?, tags = ?, instructions = ?, materials = ?, benefits = ?,
		    is_active = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		act.Title,
		act.Description,
		act.Category,
		act.Difficulty,
		act.EstimatedTime,
		docs.steps,
		docs.tags,
		docs.instructions,
		docs.materials,
		docs.benefits,
		act.IsActive,
		utc(act.UpdatedAt),
		act.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update activity: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// List returns activities matching the filters, newest first
func (r *CatalogRepository) List(ctx context.Context, opts catalog.ListOptions) ([]catalog.Activity, error) {
	query := `SELECT ` + activityColumns + ` FROM activities`

	var args []any
	var conditions []string
	if opts.Category != nil {
		conditions = append(conditions, "category = ?")
		args = append(args, *opts.Category)
	}
	if opts.Difficulty != nil {
		conditions = append(conditions, "difficulty = ?")
		args = append(args, *opts.Difficulty)
	}
	if opts.ActiveOnly {
		conditions = append(conditions, "is_active = 1")
	}
	if len(conditions) > 0 {
		query += " WHERE " + joinConditions(conditions)
	}
	query += " ORDER BY created_at DESC, title ASC"

	return r.query(ctx, query, args...)
}

// ListByIDs returns the activities with the given IDs. Unknown IDs are skipped.
func (r *CatalogRepository) ListByIDs(ctx context.Context, ids []string) ([]catalog.Activity, error) {
	if len(ids) == 0 {
		return []catalog.Activity{}, nil
	}
	query := `SELECT ` + activityColumns + ` FROM activities WHERE id IN (` + placeholders(len(ids)) + `)`
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return r.query(ctx, query, args...)
}

// ExistsByTitle reports whether an activity with the exact title exists
func (r *CatalogRepository) ExistsByTitle(ctx context.Context, title string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM activities WHERE title = ?)`, title).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check activity title: %w", err)
	}
	return exists, nil
}

func (r *CatalogRepository) query(ctx context.Context, query string, args ...any) ([]catalog.Activity, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	acts := []catalog.Activity{}
	for rows.Next() {
		act, err := scanActivity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		acts = append(acts, *act)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating activity rows: %w", err)
	}
	return acts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanActivity(row rowScanner) (*catalog.Activity, error) {
	var act catalog.Activity
	var docs activityDocs
	if err := row.Scan(
		&act.ID,
		&act.Title,
		&act.Description,
		&act.Category,
		&act.Difficulty,
		&act.EstimatedTime,
		&docs.steps,
		&docs.tags,
		&docs.instructions,
		&docs.materials,
		&docs.benefits,
		&act.IsActive,
		&act.CreatedAt,
		&act.UpdatedAt,
	); err != nil {
		return nil, err
	}

	act.Steps = []catalog.Step{}
	act.Tags = []string{}
	act.Instructions = []string{}
	act.Materials = []string{}
	act.Benefits = []string{}
	for _, doc := range []struct {
		raw string
		dst any
	}{
		{docs.steps, &act.Steps},
		{docs.tags, &act.Tags},
		{docs.instructions, &act.Instructions},
		{docs.materials, &act.Materials},
		{docs.benefits, &act.Benefits},
	} {
		if err := decodeJSON(doc.raw, doc.dst); err != nil {
			return nil, err
		}
	}
	act.CreatedAt = act.CreatedAt.UTC()
	act.UpdatedAt = act.UpdatedAt.UTC()
	return &act, nil
}
