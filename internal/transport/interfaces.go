package transport

import (
	"context"

	"github.com/rpggio/stepwise/internal/domain/account"
	"github.com/rpggio/stepwise/internal/domain/catalog"
	"github.com/rpggio/stepwise/internal/domain/journal"
	"github.com/rpggio/stepwise/internal/domain/progress"
)

// AccountService defines account operations needed by the API.
type AccountService interface {
	Create(ctx context.Context, req account.SignupRequest) (*account.User, error)
	Authenticate(ctx context.Context, username, password string) (*account.User, error)
	Get(ctx context.Context, id string) (*account.User, error)
	UpdateProfile(ctx context.Context, userID string, update account.ProfileUpdate) (*account.User, error)
	UpdatePassword(ctx context.Context, userID, current, next string) error
	Delete(ctx context.Context, userID string) error
}

// CatalogService defines catalog operations needed by the API.
type CatalogService interface {
	Create(ctx context.Context, actor catalog.Actor, req catalog.CreateRequest) (*catalog.Activity, error)
	Update(ctx context.Context, actor catalog.Actor, id string, req catalog.UpdateRequest) (*catalog.Activity, error)
	Get(ctx context.Context, id string) (*catalog.Activity, error)
	List(ctx context.Context, opts catalog.ListOptions) ([]catalog.Activity, error)
}

// ProgressService defines lifecycle operations needed by the API.
type ProgressService interface {
	AddActivity(ctx context.Context, userID, activityID string) (*progress.AddResult, error)
	Start(ctx context.Context, userID, id string) (*progress.UserActivity, error)
	ToggleStep(ctx context.Context, userID, id string, stepNumber int) (*progress.UserActivity, error)
	Complete(ctx context.Context, userID, id string) (*progress.UserActivity, error)
	Skip(ctx context.Context, userID, id string) (*progress.UserActivity, error)
	Resume(ctx context.Context, userID, id string) (*progress.UserActivity, error)
	Remove(ctx context.Context, userID, id string) (string, error)
	Get(ctx context.Context, userID, id string) (*progress.Entry, error)
	ListForUser(ctx context.Context, userID string, opts progress.ListOptions) ([]progress.Entry, error)
	Stats(ctx context.Context, userID string) (*progress.Stats, error)
}

// JournalService defines history operations needed by the API.
type JournalService interface {
	List(ctx context.Context, userID string, opts journal.ListOptions) ([]journal.Entry, error)
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}
