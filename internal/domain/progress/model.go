package progress

import (
	"time"

	"github.com/rpggio/stepwise/internal/domain/catalog"
)

// Status is the lifecycle state of a user's activity.
type Status string

const (
	StatusAdded      Status = "added"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusSkipped    Status = "skipped"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusAdded, StatusInProgress, StatusCompleted, StatusSkipped:
		return true
	}
	return false
}

// CompletedStep records when a step was ticked off.
type CompletedStep struct {
	StepNumber  int       `json:"stepNumber"`
	CompletedAt time.Time `json:"completedAt"`
}

// Progress is the step-level bookkeeping of a user activity.
type Progress struct {
	CurrentStep     int             `json:"currentStep"`
	CompletedSteps  []CompletedStep `json:"completedSteps"`
	TotalSteps      int             `json:"totalSteps"`
	PercentComplete int             `json:"percentComplete"`
	StartedAt       *time.Time      `json:"startedAt"`
}

// UserActivity tracks one user's relationship with one catalog activity.
type UserActivity struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	ActivityID  string     `json:"activityId"`
	Status      Status     `json:"status"`
	Progress    Progress   `json:"progress"`
	CompletedAt *time.Time `json:"completedAt"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	// Revision increments on every write and guards against lost updates.
	Revision int64 `json:"revision"`
}

// Started reports whether the activity was ever started.
func (ua *UserActivity) Started() bool {
	return ua.Progress.StartedAt != nil
}

// HasCompletedStep reports whether stepNumber is ticked off.
func (ua *UserActivity) HasCompletedStep(stepNumber int) bool {
	for _, step := range ua.Progress.CompletedSteps {
		if step.StepNumber == stepNumber {
			return true
		}
	}
	return false
}

// Entry is a user activity together with its catalog activity.
// Activity is nil when the catalog entry no longer exists.
type Entry struct {
	UserActivity
	Activity *catalog.Activity `json:"activity"`
}

// AddResult is the outcome of adding an activity to a user's list.
type AddResult struct {
	UserActivity *UserActivity `json:"userActivity"`
	IsReset      bool          `json:"isReset"`
}

// Stats summarizes a user's completions and streak.
type Stats struct {
	CompletedToday int      `json:"completedToday"`
	TotalCompleted int      `json:"totalCompleted"`
	CurrentStreak  int      `json:"currentStreak"`
	LongestStreak  int      `json:"longestStreak"`
	Badges         []string `json:"badges"`
}
