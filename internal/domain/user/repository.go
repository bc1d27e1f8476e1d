package user

import "context"

type Repository interface {
	Create(ctx context.Context, u *User) error
	Save(ctx context.Context, u *User) error
	GetByUsername(ctx context.Context, username string) (*User, error)
	// List returns every user ordered by username.
	List(ctx context.Context) ([]User, error)
	Count(ctx context.Context) (int64, error)
	CountByRole(ctx context.Context) (map[Role]int64, error)
}
