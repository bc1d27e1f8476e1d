package application

import (
	"context"

	"golang.org/x/sync/errgroup"

	"underwriting-backend/internal/domain/apperr"
	"underwriting-backend/internal/domain/user"
)

// GetDetails returns an application with its documents (metadata only),
// messages and audit trail. Customers only see their own applications.
func (u *Usecase) GetDetails(ctx context.Context, actor user.Actor, appID string) (*Details, error) {
	if !actor.Role.Valid() {
		return nil, apperr.Forbidden("unknown role %q", actor.Role)
	}
	a, err := u.apps.GetByApplicationID(ctx, appID)
	if err != nil {
		return nil, mapStoreErr(appID, err)
	}
	if actor.Role == user.RoleCustomer && a.CustomerID != actor.ID {
		return nil, apperr.Forbidden("application %s belongs to another customer", appID)
	}

	out := &Details{Application: a}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		docs, err := u.docs.ListByApplicationID(gctx, appID)
		out.Documents = docs
		return err
	})
	g.Go(func() error {
		msgs, err := u.msgs.ListByApplicationID(gctx, appID)
		out.Messages = msgs
		return err
	})
	g.Go(func() error {
		events, err := u.events.ListByApplicationID(gctx, appID)
		out.AuditEvents = events
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Internal("load application details", err)
	}
	for i := range out.Documents {
		out.Documents[i].Content = nil
	}
	return out, nil
}
