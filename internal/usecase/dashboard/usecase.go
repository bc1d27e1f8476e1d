package dashboard

import (
	"context"
	"time"

	"underwriting-backend/internal/domain/apperr"
	"underwriting-backend/internal/domain/application"
	"underwriting-backend/internal/domain/audit"
	"underwriting-backend/internal/domain/message"
	"underwriting-backend/internal/domain/uow"
	"underwriting-backend/internal/domain/user"
)

const (
	DefaultUnderwriterSLA = 24 * time.Hour

	DefaultAuditLimit = 100
	MaxAuditLimit     = 2000

	recentEventsLimit   = 20
	dashboardSampleSize = 200
	integritySampleSize = 500
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Usecase serves the read-only, role-scoped projections of the workflow.
type Usecase struct {
	apps   application.Repository
	msgs   message.Repository
	events audit.Repository
	users  user.Repository
	pinger Pinger
	sla    time.Duration
	now    func() time.Time
}

type Option func(*Usecase)

func WithPinger(p Pinger) Option { return func(u *Usecase) { u.pinger = p } }

// WithUnderwriterSLA sets how long an analyst-approved case may wait before it counts as a breach.
func WithUnderwriterSLA(d time.Duration) Option {
	return func(u *Usecase) {
		if d > 0 {
			u.sla = d
		}
	}
}

func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

func NewUsecase(repos uow.Repos, users user.Repository, opts ...Option) *Usecase {
	u := &Usecase{
		apps:   repos.Applications,
		msgs:   repos.Messages,
		events: repos.Audit,
		users:  users,
		sla:    DefaultUnderwriterSLA,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func requireRole(actor user.Actor, role user.Role) error {
	if actor.Role != role {
		return apperr.Forbidden("only %ss can access this view", role)
	}
	return nil
}
