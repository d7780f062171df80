package events

import (
	"context"
	"time"
)

// Type names a lifecycle transition.
type Type string

const (
	TypeAdded     Type = "activity.added"
	TypeReset     Type = "activity.reset"
	TypeStarted   Type = "activity.started"
	TypeToggled   Type = "activity.step_toggled"
	TypeCompleted Type = "activity.completed"
	TypeSkipped   Type = "activity.skipped"
	TypeResumed   Type = "activity.resumed"
	TypeRemoved   Type = "activity.removed"
)

// LifecycleEvent describes one successful user-activity transition.
type LifecycleEvent struct {
	Type            Type      `json:"type"`
	UserID          string    `json:"userId"`
	UserActivityID  string    `json:"userActivityId"`
	ActivityID      string    `json:"activityId"`
	Status          string    `json:"status"`
	PercentComplete int       `json:"percentComplete"`
	OccurredAt      time.Time `json:"occurredAt"`
}

// Publisher delivers lifecycle events downstream.
type Publisher interface {
	Publish(ctx context.Context, event LifecycleEvent) error
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, LifecycleEvent) error {
	return nil
}
