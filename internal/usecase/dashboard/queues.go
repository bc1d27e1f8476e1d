package dashboard

import (
	"context"
	"errors"

	"underwriting-backend/internal/domain/apperr"
	"underwriting-backend/internal/domain/application"
	"underwriting-backend/internal/domain/user"
)

// Customer returns the caller's draft, their other applications and the
// messages addressed to them.
func (u *Usecase) Customer(ctx context.Context, actor user.Actor) (*CustomerView, error) {
	if err := requireRole(actor, user.RoleCustomer); err != nil {
		return nil, err
	}
	out := &CustomerView{Applications: []application.Application{}}

	draft, err := u.apps.GetDraftByCustomerID(ctx, actor.ID)
	switch {
	case err == nil:
		out.Draft = draft
	case !errors.Is(err, application.ErrNotFound):
		return nil, apperr.Internal("load draft", err)
	}

	all, err := u.apps.List(ctx, application.Filter{CustomerID: actor.ID, NewestFirst: true})
	if err != nil {
		return nil, apperr.Internal("list applications", err)
	}
	ids := make([]string, 0, len(all))
	for _, a := range all {
		if a.Status == application.StatusDraft {
			continue
		}
		out.Applications = append(out.Applications, a)
		ids = append(ids, a.ApplicationID)
	}

	out.Messages, err = u.msgs.ListForRecipient(ctx, ids, user.RoleCustomer)
	if err != nil {
		return nil, apperr.Internal("list messages", err)
	}
	return out, nil
}

// Analyst returns submitted applications the analyst has not yet marked
// ready, plus the ready ones awaiting the analyst's approval.
func (u *Usecase) Analyst(ctx context.Context, actor user.Actor) (*AnalystView, error) {
	if err := requireRole(actor, user.RoleAnalyst); err != nil {
		return nil, err
	}
	notReady, ready := false, true
	queue, err := u.apps.List(ctx, application.Filter{
		Statuses:   []application.Status{application.StatusSubmitted},
		InputReady: &notReady,
	})
	if err != nil {
		return nil, apperr.Internal("list analyst queue", err)
	}
	readyList, err := u.apps.List(ctx, application.Filter{
		Statuses:   []application.Status{application.StatusSubmitted},
		InputReady: &ready,
	})
	if err != nil {
		return nil, apperr.Internal("list ready applications", err)
	}

	out := &AnalystView{
		Queue:            nonNil(queue),
		PendingReview:    len(queue),
		ReadyForApproval: nonNil(readyList),
	}
	for _, a := range queue {
		if len(a.VerificationData) == 0 {
			out.DataQualityIssues++
		}
	}
	return out, nil
}

// Underwriter returns every case awaiting a decision: analyst-approved and
// pended (under_review) applications, each once.
func (u *Usecase) Underwriter(ctx context.Context, actor user.Actor) (*UnderwriterView, error) {
	if err := requireRole(actor, user.RoleUnderwriter); err != nil {
		return nil, err
	}
	list, err := u.apps.List(ctx, application.Filter{
		Statuses: []application.Status{application.StatusAnalystApproved, application.StatusUnderReview},
	})
	if err != nil {
		return nil, apperr.Internal("list underwriter queue", err)
	}

	out := &UnderwriterView{CaseQueue: []application.Application{}}
	seen := make(map[string]bool, len(list))
	deadline := u.now().UTC().Add(-u.sla)
	for _, a := range list {
		if seen[a.ApplicationID] {
			continue
		}
		seen[a.ApplicationID] = true
		out.CaseQueue = append(out.CaseQueue, a)

		switch a.Status {
		case application.StatusUnderReview:
			out.UnderReview++
		case application.StatusAnalystApproved:
			if a.UpdatedAt.Before(deadline) {
				out.SLABreaches++
			}
		}
	}
	return out, nil
}

func nonNil(list []application.Application) []application.Application {
	if list == nil {
		return []application.Application{}
	}
	return list
}
