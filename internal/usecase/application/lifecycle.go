package application

import (
	"context"
	"errors"
	"sort"
	"strings"

	"gorm.io/datatypes"

	"underwriting-backend/internal/domain/apperr"
	domain "underwriting-backend/internal/domain/application"
	"underwriting-backend/internal/domain/audit"
	"underwriting-backend/internal/domain/message"
	"underwriting-backend/internal/domain/uow"
	"underwriting-backend/internal/domain/user"
	"underwriting-backend/pkg/id"
)

// Create opens a draft for a customer. A customer holds at most one draft.
func (u *Usecase) Create(ctx context.Context, actor user.Actor, data map[string]any) (*domain.Application, error) {
	if actor.Role != user.RoleCustomer {
		return nil, apperr.Forbidden("only customers can create applications")
	}
	existing, err := u.apps.GetDraftByCustomerID(ctx, actor.ID)
	switch {
	case err == nil:
		return nil, apperr.InvalidState("customer already has draft application %s", existing.ApplicationID)
	case !errors.Is(err, domain.ErrNotFound):
		return nil, apperr.Internal("lookup draft", err)
	}
	if data == nil {
		data = map[string]any{}
	}

	now := u.now().UTC()
	a := &domain.Application{
		ApplicationID: id.New("APP"),
		CustomerID:    actor.ID,
		Status:        domain.StatusDraft,
		Data:          datatypes.JSONMap(data),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	var event *audit.Event
	err = u.uow.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Applications.Create(ctx, a); err != nil {
			return apperr.Internal("create application", err)
		}
		event = u.newEvent(a.ApplicationID, actor, audit.ActionCreated, map[string]any{"status": string(a.Status)})
		if err := r.Audit.Create(ctx, event); err != nil {
			return apperr.Internal("record audit event", err)
		}
		return nil
	})
	if err != nil {
		u.metrics.IncTransition("create", resultLabel(err))
		return nil, err
	}
	u.metrics.IncTransition("create", "ok")
	u.publish(ctx, *event)
	return a, nil
}

// Update replaces the form data of the caller's draft.
func (u *Usecase) Update(ctx context.Context, actor user.Actor, appID string, data map[string]any) (*domain.Application, error) {
	return u.transition(ctx, actor, domain.ActionUpdate, appID, func(_ uow.Repos, a *domain.Application) (map[string]any, error) {
		if data == nil {
			data = map[string]any{}
		}
		a.Data = datatypes.JSONMap(data)
		return map[string]any{"fields": sortedKeys(data)}, nil
	})
}

// Submit moves a draft (or an application returned for more info) to submitted.
func (u *Usecase) Submit(ctx context.Context, actor user.Actor, appID string) (*domain.Application, error) {
	return u.transition(ctx, actor, domain.ActionSubmit, appID, func(_ uow.Repos, a *domain.Application) (map[string]any, error) {
		if missing := MissingRequired(a.Data); len(missing) > 0 {
			fields := make([]apperr.FieldError, 0, len(missing))
			for _, f := range missing {
				fields = append(fields, apperr.FieldError{Field: f, Message: "is required"})
			}
			return nil, apperr.Validation("missing required fields: "+strings.Join(missing, ", "), fields...)
		}
		return map[string]any{}, nil
	})
}

// MissingRequired lists required fields that are absent, null or blank.
func MissingRequired(data map[string]any) []string {
	var missing []string
	for _, f := range RequiredFields {
		v, ok := data[f]
		if !ok || v == nil {
			missing = append(missing, f)
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// RequestInfo returns a submitted application to the customer with a message.
func (u *Usecase) RequestInfo(ctx context.Context, actor user.Actor, appID, body string) (*message.Message, error) {
	body = strings.TrimSpace(body)
	var msg *message.Message
	_, err := u.transition(ctx, actor, domain.ActionRequestInfo, appID, func(r uow.Repos, a *domain.Application) (map[string]any, error) {
		if body == "" {
			return nil, apperr.Validation("message is required", apperr.FieldError{Field: "message", Message: "is required"})
		}
		msg = &message.Message{
			MessageID:     id.New("MSG"),
			ApplicationID: a.ApplicationID,
			FromRole:      user.RoleAnalyst,
			ToRole:        user.RoleCustomer,
			Body:          body,
			CreatedAt:     u.now().UTC(),
		}
		if err := r.Messages.Create(ctx, msg); err != nil {
			return nil, apperr.Internal("create message", err)
		}
		return map[string]any{"message": body}, nil
	})
	if err != nil {
		return nil, err
	}
	return msg, nil
}

// MarkReadyForScoring flips the analyst data-quality gate.
func (u *Usecase) MarkReadyForScoring(ctx context.Context, actor user.Actor, appID string, ready bool) (*domain.Application, error) {
	return u.transition(ctx, actor, domain.ActionMarkReady, appID, func(_ uow.Repos, a *domain.Application) (map[string]any, error) {
		a.InputReady = ready
		return map[string]any{"input_ready": ready}, nil
	})
}

// AnalystApprove hands a verified application to underwriting.
func (u *Usecase) AnalystApprove(ctx context.Context, actor user.Actor, appID string) (*domain.Application, error) {
	a, err := u.transition(ctx, actor, domain.ActionAnalystApprove, appID, func(_ uow.Repos, a *domain.Application) (map[string]any, error) {
		if len(a.VerificationData) == 0 {
			return nil, apperr.InvalidState("documents of %s must be verified before approval", a.ApplicationID)
		}
		a.AnalystID = actor.ID
		return map[string]any{"analyst_id": actor.ID}, nil
	})
	if err != nil {
		return nil, err
	}
	u.notify(ctx, a.ApplicationID, user.RoleAnalyst,
		"Your application "+a.ApplicationID+" passed analyst review and moved to underwriting.")
	return a, nil
}

// AnalystReject closes an application before underwriting.
func (u *Usecase) AnalystReject(ctx context.Context, actor user.Actor, appID, reason string) (*domain.Application, error) {
	reason = strings.TrimSpace(reason)
	a, err := u.transition(ctx, actor, domain.ActionAnalystReject, appID, func(_ uow.Repos, a *domain.Application) (map[string]any, error) {
		if reason == "" {
			return nil, apperr.Validation("reason is required", apperr.FieldError{Field: "reason", Message: "is required"})
		}
		a.AnalystID = actor.ID
		a.RejectionReason = reason
		return map[string]any{"reason": reason}, nil
	})
	if err != nil {
		return nil, err
	}
	u.notify(ctx, a.ApplicationID, user.RoleAnalyst, "Your application "+a.ApplicationID+" was rejected: "+reason)
	return a, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
