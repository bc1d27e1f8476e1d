package user

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("user not found")
	ErrUsernameTaken = errors.New("username already exists")
)

type Role string

const (
	RoleCustomer    Role = "customer"
	RoleAnalyst     Role = "analyst"
	RoleUnderwriter Role = "underwriter"
	RoleAdmin       Role = "admin"
	RoleAuditor     Role = "auditor"
)

var Roles = []Role{RoleCustomer, RoleAnalyst, RoleUnderwriter, RoleAdmin, RoleAuditor}

func (r Role) Valid() bool {
	for _, v := range Roles {
		if r == v {
			return true
		}
	}
	return false
}

// Actor is the authenticated caller of a use case. ID is the username.
type Actor struct {
	Role Role
	ID   string
}

type User struct {
	ID           uint64    `gorm:"primaryKey;column:id" json:"-"`
	Username     string    `gorm:"size:64;uniqueIndex:ux_users_username" json:"username"`
	PasswordHash string    `gorm:"size:255" json:"-"`
	Role         Role      `gorm:"size:16;index:idx_users_role" json:"role"`
	Name         string    `gorm:"size:128" json:"name"`
	Email        string    `gorm:"size:255" json:"email"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }
