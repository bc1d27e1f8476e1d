package dashboard

import (
	"context"

	"golang.org/x/sync/errgroup"

	"underwriting-backend/internal/domain/apperr"
	"underwriting-backend/internal/domain/application"
	"underwriting-backend/internal/domain/user"
)

// Admin returns users, status and role distributions and store health.
func (u *Usecase) Admin(ctx context.Context, actor user.Actor) (*AdminView, error) {
	if err := requireRole(actor, user.RoleAdmin); err != nil {
		return nil, err
	}

	out := &AdminView{
		ApplicationStats: make(map[application.Status]int64, len(application.Statuses)),
		UserStats:        make(map[user.Role]int64, len(user.Roles)),
	}
	var (
		byStatus map[application.Status]int64
		byRole   map[user.Role]int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Users, err = u.users.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		byStatus, err = u.apps.CountByStatus(gctx)
		return err
	})
	g.Go(func() (err error) {
		byRole, err = u.users.CountByRole(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.SystemStats.TotalAuditEvents, err = u.events.Count(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Internal("load admin dashboard", err)
	}

	// every known status and role is reported, zero or not
	for _, s := range application.Statuses {
		out.ApplicationStats[s] = byStatus[s]
	}
	for _, n := range byStatus {
		out.SystemStats.TotalApplications += n
	}
	for _, r := range user.Roles {
		out.UserStats[r] = byRole[r]
	}
	out.SystemStats.TotalUsers = int64(len(out.Users))
	if out.Users == nil {
		out.Users = []user.User{}
	}

	out.SystemHealth = SystemHealth{Status: "healthy", DatabaseConnected: true, Timestamp: u.now().UTC()}
	if u.pinger != nil {
		if err := u.pinger.Ping(ctx); err != nil {
			out.SystemHealth.Status = "degraded"
			out.SystemHealth.DatabaseConnected = false
			out.SystemHealth.DatabaseError = err.Error()
		}
	}
	return out, nil
}
