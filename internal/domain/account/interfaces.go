package account

import "context"

// Repository provides persistence for user accounts.
type Repository interface {
	Create(ctx context.Context, user *User) error
	Get(ctx context.Context, id string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, user *User) error
	UpdateStreak(ctx context.Context, id string, streak Streak, badges []string) error
	Delete(ctx context.Context, id string) error
}
