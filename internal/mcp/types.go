package mcp

import (
	"github.com/rpggio/stepwise/internal/domain/catalog"
	"github.com/rpggio/stepwise/internal/domain/progress"
)

type ListCatalogParams struct {
	Category   string `json:"category,omitempty" jsonschema:"filter by category, e.g. Mindfulness"`
	Difficulty string `json:"difficulty,omitempty" jsonschema:"filter by difficulty: Easy, Medium or Hard"`
}

type AddActivityParams struct {
	ActivityID string `json:"activity_id" jsonschema:"catalog activity id"`
}

type UserActivityParams struct {
	UserActivityID string `json:"user_activity_id" jsonschema:"id of the record in the user's list"`
}

type ToggleStepParams struct {
	UserActivityID string `json:"user_activity_id" jsonschema:"id of the record in the user's list"`
	StepNumber     int    `json:"step_number" jsonschema:"1-based step number"`
}

type ListMyActivitiesParams struct {
	Status string `json:"status,omitempty" jsonschema:"filter by status: added, in-progress, completed or skipped"`
}

type GetStatsParams struct{}

type ListCatalogResult struct {
	Activities []ActivitySummary `json:"activities"`
	Total      int               `json:"total"`
}

// ActivitySummary is a catalog entry without step bodies.
type ActivitySummary struct {
	ID            string             `json:"id"`
	Title         string             `json:"title"`
	Description   string             `json:"description"`
	Category      catalog.Category   `json:"category"`
	Difficulty    catalog.Difficulty `json:"difficulty"`
	EstimatedTime int                `json:"estimated_time"`
	StepCount     int                `json:"step_count"`
}

type AddActivityResult struct {
	UserActivity *progress.UserActivity `json:"user_activity"`
	IsReset      bool                   `json:"is_reset"`
}

type UserActivityResult struct {
	UserActivity    *progress.UserActivity `json:"user_activity"`
	PercentComplete int                    `json:"percent_complete"`
}

type RemoveActivityResult struct {
	DeletedID string `json:"deleted_id"`
}

type ListMyActivitiesResult struct {
	UserActivities []progress.Entry `json:"user_activities"`
}

type GetStatsResult struct {
	Stats *progress.Stats `json:"stats"`
}

func summarize(act catalog.Activity) ActivitySummary {
	return ActivitySummary{
		ID:            act.ID,
		Title:         act.Title,
		Description:   act.Description,
		Category:      act.Category,
		Difficulty:    act.Difficulty,
		EstimatedTime: act.EstimatedTime,
		StepCount:     act.StepCount(),
	}
}
