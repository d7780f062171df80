package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/rpggio/stepwise/internal/domain/catalog"
	"github.com/rpggio/stepwise/internal/repository"
	"github.com/stretchr/testify/require"
)

func newActivity(id, title string, category catalog.Category, created time.Time) *catalog.Activity {
	video := "https://example.com/v"
	return &catalog.Activity{
		ID:            id,
		Title:         title,
		Description:   "Description of " + title,
		Category:      category,
		Difficulty:    catalog.DifficultyEasy,
		EstimatedTime: 15,
		Steps: []catalog.Step{
			{StepNumber: 1, Title: "One", Description: "First", Tips: []string{"breathe"}, VideoURL: &video, EstimatedDuration: 5},
			{StepNumber: 2, Title: "Two", Description: "Second", Tips: []string{"relax"}, EstimatedDuration: 10},
		},
		Tags:         []string{"calm"},
		Instructions: []string{"One", "Two"},
		Materials:    []string{},
		Benefits:     []string{"focus"},
		IsActive:     true,
		CreatedAt:    created,
		UpdatedAt:    created,
	}
}

func TestCatalogRepository_CreateGet(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewCatalogRepository(db)

	created := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	act := newActivity("a1", "Breathing", catalog.CategoryMindfulness, created)
	require.NoError(t, repo.Create(ctx, act))

	got, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	require.Equal(t, act.Title, got.Title)
	require.Equal(t, catalog.CategoryMindfulness, got.Category)
	require.Len(t, got.Steps, 2)
	require.NotNil(t, got.Steps[0].VideoURL)
	require.Nil(t, got.Steps[1].VideoURL)
	require.Equal(t, []string{"breathe"}, got.Steps[0].Tips)
	require.Equal(t, []string{}, got.Materials)
	require.True(t, got.IsActive)
	require.True(t, created.Equal(got.CreatedAt))

	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCatalogRepository_UpdateAndList(t *testing.T) {
	db := NewTestDB(t)
	ctx := context.Background()
	repo := NewCatalogRepository(db)

	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, repo.Create(ctx, newActivity("a1", "Breathing", catalog.CategoryMindfulness, base)))
	require.NoError(t, repo.Create(ctx, newActivity("a2", "Sketching", catalog.CategoryCreativity, base.Add(time.Hour))))

	act, err := repo.Get(ctx, "a1")
	require.NoError(t, err)
	act.IsActive = false
	act.UpdatedAt = base.Add(2 * time.Hour)
	require.NoError(t, repo.Update(ctx, act))

	all, err := repo.List(ctx, catalog.ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "a2", all[0].ID)

	active, err := repo.List(ctx, catalog.ListOptions{ActiveOnly: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "a2", active[0].ID)

	category := catalog.CategoryMindfulness
	filtered, err := repo.List(ctx, catalog.ListOptions{Category: &category})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, "a1", filtered[0].ID)

	byID, err := repo.ListByIDs(ctx, []string{"a2", "gone"})
	require.NoError(t, err)
	require.Len(t, byID, 1)

	exists, err := repo.ExistsByTitle(ctx, "Sketching")
	require.NoError(t, err)
	require.True(t, exists)

	missing := newActivity("zz", "Nope", catalog.CategoryFitness, base)
	require.ErrorIs(t, repo.Update(ctx, missing), repository.ErrNotFound)
}
