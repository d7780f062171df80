package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rpggio/stepwise/internal/repository"
)

// Service handles catalog operations.
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new catalog service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Service{repo: repo, logger: logger}
}

// CreateRequest defines activity creation inputs.
type CreateRequest struct {
	Title         string
	Description   string
	Category      Category
	Difficulty    Difficulty
	EstimatedTime int
	Steps         []Step
	Tags          []string
	Instructions  []string
	Materials     []string
	Benefits      []string
}

// UpdateRequest carries a partial update; nil fields are left unchanged.
type UpdateRequest struct {
	Title         *string
	Description   *string
	Category      *Category
	Difficulty    *Difficulty
	EstimatedTime *int
	Steps         *[]Step
	Tags          *[]string
	Instructions  *[]string
	Materials     *[]string
	Benefits      *[]string
	IsActive      *bool
}

// Create validates and stores a new activity. Only admins may create.
func (s *Service) Create(ctx context.Context, actor Actor, req CreateRequest) (*Activity, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}
	return s.create(ctx, req)
}

func (s *Service) create(ctx context.Context, req CreateRequest) (*Activity, error) {
	now := time.Now()
	act := &Activity{
		ID:            uuid.NewString(),
		Title:         strings.TrimSpace(req.Title),
		Description:   strings.TrimSpace(req.Description),
		Category:      req.Category,
		Difficulty:    req.Difficulty,
		EstimatedTime: req.EstimatedTime,
		Steps:         normalizeSteps(req.Steps),
		Tags:          nonNil(req.Tags),
		Instructions:  nonNil(req.Instructions),
		Materials:     nonNil(req.Materials),
		Benefits:      nonNil(req.Benefits),
		IsActive:      true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := ValidateActivity(act); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, act); err != nil {
		return nil, fmt.Errorf("creating activity: %w", err)
	}

	s.logger.Info("activity created", "activity_id", act.ID, "title", act.Title, "steps", len(act.Steps))
	return act, nil
}

// Update applies a partial update to an existing activity. Only admins may update.
func (s *Service) Update(ctx context.Context, actor Actor, id string, req UpdateRequest) (*Activity, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, ErrUnauthorized
	}

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updated := *current
	if req.Title != nil {
		updated.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		updated.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		updated.Category = *req.Category
	}
	if req.Difficulty != nil {
		updated.Difficulty = *req.Difficulty
	}
	if req.EstimatedTime != nil {
		updated.EstimatedTime = *req.EstimatedTime
	}
	if req.Steps != nil {
		updated.Steps = normalizeSteps(*req.Steps)
	}
	if req.Tags != nil {
		updated.Tags = nonNil(*req.Tags)
	}
	if req.Instructions != nil {
		updated.Instructions = nonNil(*req.Instructions)
	}
	if req.Materials != nil {
		updated.Materials = nonNil(*req.Materials)
	}
	if req.Benefits != nil {
		updated.Benefits = nonNil(*req.Benefits)
	}
	if req.IsActive != nil {
		updated.IsActive = *req.IsActive
	}
	updated.UpdatedAt = time.Now()

	if err := ValidateActivity(&updated); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("updating activity: %w", err)
	}

	return &updated, nil
}

// Get fetches an activity by ID.
func (s *Service) Get(ctx context.Context, id string) (*Activity, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrActivityNotFound
	}
	act, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("getting activity: %w", err)
	}
	return act, nil
}

// List returns catalog activities, newest first.
func (s *Service) List(ctx context.Context, opts ListOptions) ([]Activity, error) {
	acts, err := s.repo.List(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("listing activities: %w", err)
	}
	return acts, nil
}

// GetMany fetches the activities with the given IDs, keyed by ID. Unknown IDs are absent.
func (s *Service) GetMany(ctx context.Context, ids []string) (map[string]*Activity, error) {
	found := make(map[string]*Activity, len(ids))
	if len(ids) == 0 {
		return found, nil
	}
	acts, err := s.repo.ListByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("listing activities by id: %w", err)
	}
	for i := range acts {
		found[acts[i].ID] = &acts[i]
	}
	return found, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
