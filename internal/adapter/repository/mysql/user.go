package mysql

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"underwriting-backend/internal/domain/user"
)

type UserRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) *UserRepository { return &UserRepository{db: db} }

// Create needs gorm.Config.TranslateError so the unique index surfaces as ErrDuplicatedKey.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return user.ErrUsernameTaken
	}
	return err
}

func (r *UserRepository) Save(ctx context.Context, u *user.User) error {
	return r.db.WithContext(ctx).Save(u).Error
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	var out user.User
	err := r.db.WithContext(ctx).Where("username = ?", username).Take(&out).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, user.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *UserRepository) List(ctx context.Context) ([]user.User, error) {
	var out []user.User
	if err := r.db.WithContext(ctx).Order("username ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&user.User{}).Count(&n).Error
	return n, err
}

func (r *UserRepository) CountByRole(ctx context.Context) (map[user.Role]int64, error) {
	var rows []struct {
		Role user.Role
		N    int64
	}
	err := r.db.WithContext(ctx).Model(&user.User{}).
		Select("role, COUNT(*) AS n").
		Group("role").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[user.Role]int64, len(rows))
	for _, row := range rows {
		out[row.Role] = row.N
	}
	return out, nil
}
