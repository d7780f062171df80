package progress

import (
	"context"
	"time"

	"github.com/rpggio/stepwise/internal/domain/account"
	"github.com/rpggio/stepwise/internal/domain/catalog"
	"github.com/rpggio/stepwise/internal/domain/journal"
)

// Repository provides persistence for user activities. Every lookup is
// scoped to the owning user.
type Repository interface {
	Create(ctx context.Context, ua *UserActivity) error
	Get(ctx context.Context, userID, id string) (*UserActivity, error)
	GetByActivity(ctx context.Context, userID, activityID string) (*UserActivity, error)
	// Update writes ua only if the stored revision still equals expectedRevision.
	Update(ctx context.Context, userID string, ua *UserActivity, expectedRevision int64) error
	Delete(ctx context.Context, userID, id string) error
	List(ctx context.Context, userID string, opts ListOptions) ([]UserActivity, error)
	// CountCompleted counts completed records with completedAt in [from, to). Nil bounds are open.
	CountCompleted(ctx context.Context, userID string, from, to *time.Time) (int, error)
	DeleteOrphans(ctx context.Context) (int, error)
}

// ActivityReader reads the catalog.
type ActivityReader interface {
	Get(ctx context.Context, id string) (*catalog.Activity, error)
	GetMany(ctx context.Context, ids []string) (map[string]*catalog.Activity, error)
}

// UserStore reads users and persists streak side effects.
type UserStore interface {
	Get(ctx context.Context, id string) (*account.User, error)
	RecordStreak(ctx context.Context, userID string, streak account.Streak, badges []string) error
}

// JournalLogger records lifecycle history.
type JournalLogger interface {
	Log(ctx context.Context, userID string, entry *journal.Entry) error
}
