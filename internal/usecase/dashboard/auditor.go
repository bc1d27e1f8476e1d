package dashboard

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"underwriting-backend/internal/domain/apperr"
	"underwriting-backend/internal/domain/application"
	"underwriting-backend/internal/domain/audit"
	"underwriting-backend/internal/domain/user"
)

// Auditor returns ledger totals, the latest events and a compliance
// snapshot over recent samples.
func (u *Usecase) Auditor(ctx context.Context, actor user.Actor) (*AuditorView, error) {
	if err := requireRole(actor, user.RoleAuditor); err != nil {
		return nil, err
	}

	out := &AuditorView{}
	var (
		missingTrail []Issue
		fieldIssues  []Issue
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Stats.TotalUsers, err = u.users.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Stats.TotalApplications, err = u.apps.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.Stats.TotalAuditEvents, err = u.events.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		out.RecentEvents, err = u.events.List(gctx, audit.Filter{Limit: recentEventsLimit})
		return err
	})
	g.Go(func() (err error) {
		missingTrail, err = u.missingAuditTrail(gctx, dashboardSampleSize)
		return err
	})
	g.Go(func() (err error) {
		fieldIssues, err = u.eventsMissingFields(gctx, dashboardSampleSize)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, apperr.Internal("load auditor dashboard", err)
	}

	if out.RecentEvents == nil {
		out.RecentEvents = []audit.Event{}
	}
	out.Stats.MissingTrailSample = len(missingTrail)
	out.Compliance = Compliance{
		DataIntegrityOK:  len(missingTrail) == 0,
		RequiredFieldsOK: len(fieldIssues) == 0,
		TotalIssues:      len(fieldIssues),
	}
	return out, nil
}

// ListAuditEvents filters the ledger, newest first. A zero limit means
// DefaultAuditLimit.
func (u *Usecase) ListAuditEvents(ctx context.Context, actor user.Actor, f audit.Filter) ([]audit.Event, error) {
	if err := requireRole(actor, user.RoleAuditor); err != nil {
		return nil, err
	}
	if f.Limit == 0 {
		f.Limit = DefaultAuditLimit
	}
	if f.Limit < 1 || f.Limit > MaxAuditLimit {
		return nil, apperr.Validation("invalid limit",
			apperr.FieldError{Field: "limit", Message: "must be between 1 and 2000"})
	}
	events, err := u.events.List(ctx, f)
	if err != nil {
		return nil, apperr.Internal("list audit events", err)
	}
	if events == nil {
		events = []audit.Event{}
	}
	return events, nil
}

// ApplicationAudit returns one application's trail, oldest first.
func (u *Usecase) ApplicationAudit(ctx context.Context, actor user.Actor, appID string) ([]audit.Event, error) {
	if err := requireRole(actor, user.RoleAuditor); err != nil {
		return nil, err
	}
	if _, err := u.apps.GetByApplicationID(ctx, appID); err != nil {
		if errors.Is(err, application.ErrNotFound) {
			return nil, apperr.NotFound("application %s not found", appID)
		}
		return nil, apperr.Internal("load application", err)
	}
	events, err := u.events.ListByApplicationID(ctx, appID)
	if err != nil {
		return nil, apperr.Internal("load audit trail", err)
	}
	if events == nil {
		events = []audit.Event{}
	}
	return events, nil
}

// IntegrityCheck runs both ledger checks over the larger sample and lists
// every issue found.
func (u *Usecase) IntegrityCheck(ctx context.Context, actor user.Actor) (*IntegrityReport, error) {
	if err := requireRole(actor, user.RoleAuditor); err != nil {
		return nil, err
	}
	missing, err := u.missingAuditTrail(ctx, integritySampleSize)
	if err != nil {
		return nil, apperr.Internal("check audit trails", err)
	}
	fields, err := u.eventsMissingFields(ctx, integritySampleSize)
	if err != nil {
		return nil, apperr.Internal("check audit fields", err)
	}
	issues := append(missing, fields...)
	if issues == nil {
		issues = []Issue{}
	}
	return &IntegrityReport{Issues: issues, Count: len(issues)}, nil
}

// missingAuditTrail: recent applications without a single audit event.
func (u *Usecase) missingAuditTrail(ctx context.Context, sample int) ([]Issue, error) {
	apps, err := u.apps.List(ctx, application.Filter{Limit: sample, NewestFirst: true})
	if err != nil {
		return nil, err
	}
	if len(apps) == 0 {
		return nil, nil
	}
	ids := make([]string, len(apps))
	for i, a := range apps {
		ids[i] = a.ApplicationID
	}
	has, err := u.events.ApplicationIDsWithEvents(ctx, ids)
	if err != nil {
		return nil, err
	}
	var out []Issue
	for _, id := range ids {
		if !has[id] {
			out = append(out, Issue{Type: IssueMissingAuditTrail, ApplicationID: id})
		}
	}
	return out, nil
}

// eventsMissingFields: recent events lacking action, actor_role or created_at.
func (u *Usecase) eventsMissingFields(ctx context.Context, sample int) ([]Issue, error) {
	events, err := u.events.List(ctx, audit.Filter{Limit: sample})
	if err != nil {
		return nil, err
	}
	var out []Issue
	for _, e := range events {
		for _, f := range e.MissingFields() {
			out = append(out, Issue{Type: IssueMissingField, Field: f, EventID: e.EventID})
		}
	}
	return out, nil
}
