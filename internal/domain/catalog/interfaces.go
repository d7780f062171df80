package catalog

import "context"

// Repository provides persistence for catalog activities.
type Repository interface {
	Create(ctx context.Context, act *Activity) error
	Get(ctx context.Context, id string) (*Activity, error)
	Update(ctx context.Context, act *Activity) error
	List(ctx context.Context, opts ListOptions) ([]Activity, error)
	ListByIDs(ctx context.Context, ids []string) ([]Activity, error)
	ExistsByTitle(ctx context.Context, title string) (bool, error)
}

// Actor is the caller of an admin-only operation.
type Actor interface {
	IsAdmin() bool
}
