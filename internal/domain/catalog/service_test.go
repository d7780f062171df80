package catalog_test

import (
	"context"
	"testing"

	"github.com/rpggio/stepwise/internal/domain/catalog"
	"github.com/rpggio/stepwise/internal/repository"
	"github.com/rpggio/stepwise/internal/repository/mocks"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type actor bool

func (a actor) IsAdmin() bool { return bool(a) }

func validRequest() catalog.CreateRequest {
	return catalog.CreateRequest{
		Title:         "Morning Pages",
		Description:   "Write three pages longhand",
		Category:      catalog.CategoryCreativity,
		Difficulty:    catalog.DifficultyEasy,
		EstimatedTime: 20,
		Steps: []catalog.Step{
			{StepNumber: 7, Title: " Sit down ", Description: "Find a quiet spot", Tips: []string{"coffee helps"}},
			{StepNumber: 9, Title: "Write", Description: "Don't stop", Tips: []string{" no editing "}},
		},
	}
}

func TestCatalogService_CreateNormalizesSteps(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.CatalogRepository{}
	repo.On("Create", ctx, mock.Anything).Return(nil)

	svc := catalog.NewService(repo, nil)
	act, err := svc.Create(ctx, actor(true), validRequest())
	require.NoError(t, err)
	require.NotEmpty(t, act.ID)
	require.True(t, act.IsActive)
	require.Len(t, act.Steps, 2)
	require.Equal(t, 1, act.Steps[0].StepNumber)
	require.Equal(t, 2, act.Steps[1].StepNumber)
	require.Equal(t, "Sit down", act.Steps[0].Title)
	require.Equal(t, []string{"no editing"}, act.Steps[1].Tips)
	require.Equal(t, catalog.DefaultStepDuration, act.Steps[0].EstimatedDuration)
	require.Equal(t, []string{}, act.Tags)
}

func TestCatalogService_CreateRequiresAdmin(t *testing.T) {
	repo := &mocks.CatalogRepository{}
	svc := catalog.NewService(repo, nil)

	_, err := svc.Create(context.Background(), actor(false), validRequest())
	require.ErrorIs(t, err, catalog.ErrUnauthorized)

	_, err = svc.Create(context.Background(), nil, validRequest())
	require.ErrorIs(t, err, catalog.ErrUnauthorized)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestCatalogService_CreateValidation(t *testing.T) {
	cases := []struct {
		name      string
		mutate    func(*catalog.CreateRequest)
		field     string
		stepIndex int
	}{
		{"missing title", func(r *catalog.CreateRequest) { r.Title = "  " }, "title", 0},
		{"missing description", func(r *catalog.CreateRequest) { r.Description = "" }, "description", 0},
		{"bad category", func(r *catalog.CreateRequest) { r.Category = "Cooking" }, "category", 0},
		{"time out of range", func(r *catalog.CreateRequest) { r.EstimatedTime = 301 }, "estimatedTime", 0},
		{"no steps", func(r *catalog.CreateRequest) { r.Steps = nil }, "steps", 0},
		{"blank tip in step 2", func(r *catalog.CreateRequest) { r.Steps[1].Tips = []string{"ok", "   "} }, "tips", 2},
		{"no tips in step 1", func(r *catalog.CreateRequest) { r.Steps[0].Tips = nil }, "tips", 1},
		{"untitled step 2", func(r *catalog.CreateRequest) { r.Steps[1].Title = "" }, "title", 2},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &mocks.CatalogRepository{}
			svc := catalog.NewService(repo, nil)

			req := validRequest()
			tc.mutate(&req)
			_, err := svc.Create(context.Background(), actor(true), req)

			require.ErrorIs(t, err, catalog.ErrInvalidInput)
			var validationErr *catalog.ValidationError
			require.ErrorAs(t, err, &validationErr)
			require.Equal(t, tc.field, validationErr.Field)
			require.Equal(t, tc.stepIndex, validationErr.StepIndex)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestCatalogService_UpdatePartial(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.CatalogRepository{}
	svc := catalog.NewService(repo, nil)

	existing := &catalog.Activity{
		ID:            "a1",
		Title:         "Old",
		Description:   "Old description",
		Category:      catalog.CategoryLearning,
		Difficulty:    catalog.DifficultyHard,
		EstimatedTime: 60,
		Steps:         []catalog.Step{{StepNumber: 1, Title: "Read", Description: "A chapter", Tips: []string{"focus"}, EstimatedDuration: 30}},
		IsActive:      true,
	}
	repo.On("Get", ctx, "a1").Return(existing, nil)
	repo.On("Update", ctx, mock.Anything).Return(nil)

	title := "New"
	inactive := false
	act, err := svc.Update(ctx, actor(true), "a1", catalog.UpdateRequest{Title: &title, IsActive: &inactive})
	require.NoError(t, err)
	require.Equal(t, "New", act.Title)
	require.False(t, act.IsActive)
	require.Equal(t, catalog.DifficultyHard, act.Difficulty)
	require.Equal(t, "Old", existing.Title)

	badTime := 2
	_, err = svc.Update(ctx, actor(true), "a1", catalog.UpdateRequest{EstimatedTime: &badTime})
	require.ErrorIs(t, err, catalog.ErrInvalidInput)
}

func TestCatalogService_UpdateMissing(t *testing.T) {
	ctx := context.Background()
	repo := &mocks.CatalogRepository{}
	repo.On("Get", ctx, "missing").Return((*catalog.Activity)(nil), repository.ErrNotFound)

	svc := catalog.NewService(repo, nil)
	title := "x"
	_, err := svc.Update(ctx, actor(true), "missing", catalog.UpdateRequest{Title: &title})
	require.ErrorIs(t, err, catalog.ErrActivityNotFound)
}

func TestCatalogService_SeedSkipsExisting(t *testing.T) {
	ctx := context.Background()
	reqs, err := catalog.StarterCatalog()
	require.NoError(t, err)
	require.NotEmpty(t, reqs)

	repo := &mocks.CatalogRepository{}
	repo.On("ExistsByTitle", ctx, reqs[0].Title).Return(true, nil)
	for _, req := range reqs[1:] {
		repo.On("ExistsByTitle", ctx, req.Title).Return(false, nil)
	}
	repo.On("Create", ctx, mock.Anything).Return(nil)

	svc := catalog.NewService(repo, nil)
	created, err := svc.Seed(ctx, reqs)
	require.NoError(t, err)
	require.Equal(t, len(reqs)-1, created)
	repo.AssertNumberOfCalls(t, "Create", len(reqs)-1)
}

func TestParseSeed(t *testing.T) {
	reqs, err := catalog.ParseSeed([]byte(`
activities:
  - title: Sketch
    description: Draw something
    category: Creativity
    difficulty: Easy
    estimated_time: 10
    steps:
      - title: Pick
        description: Pick a subject
        tips: [anything works]
        video_url: https://example.com/sketch
`))
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	require.Equal(t, catalog.CategoryCreativity, reqs[0].Category)
	require.Equal(t, []string{"Pick"}, reqs[0].Instructions)
	require.NotNil(t, reqs[0].Steps[0].VideoURL)

	_, err = catalog.ParseSeed([]byte("activities: ["))
	require.Error(t, err)
}
