package user

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"underwriting-backend/internal/domain/apperr"
	domain "underwriting-backend/internal/domain/user"
)

var reUsername = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,64}$`)

const minPasswordLen = 8

// TokenIssuer signs access tokens for authenticated users.
type TokenIssuer interface {
	Issue(username string, role domain.Role) (string, time.Time, error)
}

type Usecase struct {
	users  domain.Repository
	tokens TokenIssuer
	cost   int
}

type Option func(*Usecase)

// WithBcryptCost overrides bcrypt.DefaultCost; tests use bcrypt.MinCost.
func WithBcryptCost(cost int) Option { return func(u *Usecase) { u.cost = cost } }

func NewUsecase(users domain.Repository, tokens TokenIssuer, opts ...Option) *Usecase {
	u := &Usecase{users: users, tokens: tokens, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type SignupInput struct {
	Username string
	Password string
	Name     string
	Email    string
}

type CreateInput struct {
	SignupInput
	Role domain.Role
}

type Session struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresAt   time.Time   `json:"expires_at"`
	User        domain.User `json:"user"`
}

// Signup registers a customer.
func (u *Usecase) Signup(ctx context.Context, in SignupInput) (*domain.User, error) {
	return u.create(ctx, in, domain.RoleCustomer)
}

// CreateUser lets an admin register a user with any role.
func (u *Usecase) CreateUser(ctx context.Context, actor domain.Actor, in CreateInput) (*domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperr.Forbidden("only admins can create users")
	}
	if !in.Role.Valid() {
		return nil, apperr.Validation("invalid role", apperr.FieldError{Field: "role", Message: "unknown role"})
	}
	return u.create(ctx, in.SignupInput, in.Role)
}

func (u *Usecase) create(ctx context.Context, in SignupInput, role domain.Role) (*domain.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	var fields []apperr.FieldError
	if !reUsername.MatchString(in.Username) {
		fields = append(fields, apperr.FieldError{Field: "username", Message: "must be 3-64 letters, digits, _ . or -"})
	}
	if len(in.Password) < minPasswordLen {
		fields = append(fields, apperr.FieldError{Field: "password", Message: fmt.Sprintf("must be at least %d characters", minPasswordLen)})
	}
	if len(fields) > 0 {
		return nil, apperr.Validation("invalid user", fields...)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), u.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, apperr.Validation("invalid user", apperr.FieldError{Field: "password", Message: "is too long"})
		}
		return nil, apperr.Internal("hash password", err)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		name = in.Username
	}
	usr := &domain.User{
		Username:     in.Username,
		PasswordHash: string(hash),
		Role:         role,
		Name:         name,
		Email:        strings.TrimSpace(in.Email),
	}
	if err := u.users.Create(ctx, usr); err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			return nil, apperr.InvalidState("username %s already exists", in.Username)
		}
		return nil, apperr.Internal("create user", err)
	}
	return usr, nil
}

// Login checks the password and issues an access token. Unknown users and
// wrong passwords are indistinguishable to the caller.
func (u *Usecase) Login(ctx context.Context, username, password string) (*Session, error) {
	usr, err := u.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperr.Forbidden("invalid credentials")
	}
	if err != nil {
		return nil, apperr.Internal("load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.Forbidden("invalid credentials")
	}
	tok, exp, err := u.tokens.Issue(usr.Username, usr.Role)
	if err != nil {
		return nil, apperr.Internal("issue token", err)
	}
	return &Session{AccessToken: tok, TokenType: "Bearer", ExpiresAt: exp, User: *usr}, nil
}

func (u *Usecase) ListUsers(ctx context.Context, actor domain.Actor) ([]domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperr.Forbidden("only admins can list users")
	}
	list, err := u.users.List(ctx)
	if err != nil {
		return nil, apperr.Internal("list users", err)
	}
	if list == nil {
		list = []domain.User{}
	}
	return list, nil
}

// ChangeRole reassigns a user's role. Admins cannot demote themselves.
func (u *Usecase) ChangeRole(ctx context.Context, actor domain.Actor, username string, role domain.Role) (*domain.User, error) {
	if actor.Role != domain.RoleAdmin {
		return nil, apperr.Forbidden("only admins can change roles")
	}
	if !role.Valid() {
		return nil, apperr.Validation("invalid role", apperr.FieldError{Field: "role", Message: "unknown role"})
	}
	usr, err := u.users.GetByUsername(ctx, username)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, apperr.NotFound("user %s not found", username)
	}
	if err != nil {
		return nil, apperr.Internal("load user", err)
	}
	if usr.Username == actor.ID && role != domain.RoleAdmin {
		return nil, apperr.InvalidState("admins cannot remove their own admin role")
	}
	usr.Role = role
	if err := u.users.Save(ctx, usr); err != nil {
		return nil, apperr.Internal("save user", err)
	}
	return usr, nil
}
