package journal

import "time"

// EntryType names a lifecycle event recorded in a user's journal.
type EntryType string

const (
	TypeActivityAdded     EntryType = "activity_added"
	TypeActivityReset     EntryType = "activity_reset"
	TypeActivityStarted   EntryType = "activity_started"
	TypeStepToggled       EntryType = "step_toggled"
	TypeActivityCompleted EntryType = "activity_completed"
	TypeActivitySkipped   EntryType = "activity_skipped"
	TypeActivityResumed   EntryType = "activity_resumed"
	TypeActivityRemoved   EntryType = "activity_removed"
)

// Valid reports whether t is a known entry type.
func (t EntryType) Valid() bool {
	switch t {
	case TypeActivityAdded, TypeActivityReset, TypeActivityStarted, TypeStepToggled,
		TypeActivityCompleted, TypeActivitySkipped, TypeActivityResumed, TypeActivityRemoved:
		return true
	}
	return false
}

// Entry is one row of a user's lifecycle history.
type Entry struct {
	ID             int64     `json:"id"`
	UserID         string    `json:"userId"`
	UserActivityID string    `json:"userActivityId"`
	ActivityID     string    `json:"activityId"`
	Type           EntryType `json:"type"`
	Summary        string    `json:"summary"`
	Details        string    `json:"details,omitempty"` // JSON string
	CreatedAt      time.Time `json:"createdAt"`
}
