package application

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"gorm.io/datatypes"

	"underwriting-backend/internal/domain/apperr"
	domain "underwriting-backend/internal/domain/application"
	"underwriting-backend/internal/domain/audit"
	"underwriting-backend/internal/domain/document"
	"underwriting-backend/internal/domain/message"
	"underwriting-backend/internal/domain/payment"
	"underwriting-backend/internal/domain/risk"
	"underwriting-backend/internal/domain/uow"
	"underwriting-backend/internal/domain/user"
	"underwriting-backend/internal/infrastructure/metrics"
	"underwriting-backend/internal/usecase/verification"
	"underwriting-backend/pkg/id"
)

// BlobStore keeps large document payloads outside the database.
type BlobStore interface {
	Put(ctx context.Context, key string, content []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// AuditPublisher fans committed audit events out to other systems.
type AuditPublisher interface {
	Publish(ctx context.Context, events ...audit.Event) error
}

// Usecase is the application lifecycle manager. Every mutation runs in one
// unit of work together with its audit event; customer notifications and
// event fan-out happen after commit and never fail the call.
type Usecase struct {
	apps      domain.Repository
	docs      document.Repository
	msgs      message.Repository
	events    audit.Repository
	payments  payment.Repository
	uow       uow.UnitOfWork
	blobs     BlobStore
	extractor verification.Extractor
	publisher AuditPublisher
	engine    *risk.Engine
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Usecase)

func WithBlobStore(b BlobStore) Option { return func(u *Usecase) { u.blobs = b } }

func WithExtractor(e verification.Extractor) Option { return func(u *Usecase) { u.extractor = e } }

func WithPublisher(p AuditPublisher) Option { return func(u *Usecase) { u.publisher = p } }

func WithRiskEngine(e *risk.Engine) Option { return func(u *Usecase) { u.engine = e } }

func WithMetrics(m *metrics.Metrics) Option { return func(u *Usecase) { u.metrics = m } }

func WithLogger(l *slog.Logger) Option { return func(u *Usecase) { u.logger = l } }

func WithClock(now func() time.Time) Option { return func(u *Usecase) { u.now = now } }

// NewUsecase: pass the non-transactional repos (reads, post-commit writes) and a UoW for tx flows.
func NewUsecase(repos uow.Repos, tx uow.UnitOfWork, opts ...Option) *Usecase {
	u := &Usecase{
		apps:      repos.Applications,
		docs:      repos.Documents,
		msgs:      repos.Messages,
		events:    repos.Audit,
		payments:  repos.Payments,
		uow:       tx,
		extractor: verification.NewSimulatedExtractor(),
		engine:    risk.NewEngine(),
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

var auditActions = map[domain.Action]audit.Action{
	domain.ActionUpdate:          audit.ActionUpdated,
	domain.ActionSubmit:          audit.ActionSubmitted,
	domain.ActionRequestInfo:     audit.ActionRequestInfo,
	domain.ActionMarkReady:       audit.ActionMarkReady,
	domain.ActionVerifyDocuments: audit.ActionDocumentVerified,
	domain.ActionAnalystApprove:  audit.ActionAnalystApproved,
	domain.ActionAnalystReject:   audit.ActionAnalystRejected,
	domain.ActionApprove:         audit.ActionApproved,
	domain.ActionDecline:         audit.ActionDeclined,
	domain.ActionPend:            audit.ActionPended,
	domain.ActionPay:             audit.ActionPaid,
}

// mutation applies an action's side effects to the locked application and
// returns the audit payload. Status is moved by transition itself.
type mutation func(r uow.Repos, a *domain.Application) (map[string]any, error)

// transition enforces role, existence, ownership and source status before
// calling mutate, then persists the application and its audit event in the
// same unit of work.
func (u *Usecase) transition(ctx context.Context, actor user.Actor, action domain.Action, appID string, mutate mutation) (*domain.Application, error) {
	tr, ok := domain.Lookup(action)
	if !ok {
		return nil, apperr.Internal("unknown action "+string(action), nil)
	}
	if actor.Role != tr.Role {
		u.metrics.IncTransition(string(action), "forbidden")
		return nil, apperr.Forbidden("%s requires role %s", action, tr.Role)
	}
	if u.uow == nil {
		return nil, apperr.Internal("unit of work not configured", nil)
	}

	var (
		out   *domain.Application
		event *audit.Event
	)
	err := u.uow.WithinApplicationTx(ctx, appID, func(r uow.Repos, a *domain.Application) error {
		if err := u.guard(actor, tr, a); err != nil {
			return err
		}
		from := a.Status
		payload, err := mutate(r, a)
		if err != nil {
			return err
		}
		a.Status = tr.Target(from)
		a.Touch(u.now().UTC())
		if err := r.Applications.Save(ctx, a); err != nil {
			return apperr.Internal("save application", err)
		}
		if payload == nil {
			payload = map[string]any{}
		}
		if from != a.Status {
			payload["from"] = string(from)
			payload["to"] = string(a.Status)
		}
		event = u.newEvent(a.ApplicationID, actor, auditActions[action], payload)
		if err := r.Audit.Create(ctx, event); err != nil {
			return apperr.Internal("record audit event", err)
		}
		out = a
		return nil
	})
	if err != nil {
		err = mapStoreErr(appID, err)
		u.metrics.IncTransition(string(action), resultLabel(err))
		return nil, err
	}
	u.metrics.IncTransition(string(action), "ok")
	u.publish(ctx, *event)
	return out, nil
}

func (u *Usecase) guard(actor user.Actor, tr domain.Transition, a *domain.Application) error {
	if actor.Role == user.RoleCustomer && a.CustomerID != actor.ID {
		return apperr.Forbidden("application %s belongs to another customer", a.ApplicationID)
	}
	if !tr.Allows(a.Status) {
		return apperr.InvalidState("cannot %s application in status %s", tr.Action, a.Status)
	}
	return nil
}

func (u *Usecase) newEvent(appID string, actor user.Actor, action audit.Action, payload map[string]any) *audit.Event {
	return &audit.Event{
		EventID:       id.New("AUD"),
		ApplicationID: appID,
		ActorRole:     actor.Role,
		ActorID:       actor.ID,
		Action:        action,
		Payload:       datatypes.JSONMap(payload),
		CreatedAt:     u.now().UTC(),
	}
}

// notify sends a customer-facing message after commit. Failures are logged only.
func (u *Usecase) notify(ctx context.Context, appID string, from user.Role, body string) {
	if u.msgs == nil {
		return
	}
	m := &message.Message{
		MessageID:     id.New("MSG"),
		ApplicationID: appID,
		FromRole:      from,
		ToRole:        user.RoleCustomer,
		Body:          body,
		CreatedAt:     u.now().UTC(),
	}
	if err := u.msgs.Create(ctx, m); err != nil {
		u.metrics.IncSideEffectFailure("notify")
		u.logger.WarnContext(ctx, "customer notification failed",
			slog.String("application_id", appID), slog.Any("error", err))
	}
}

func (u *Usecase) publish(ctx context.Context, events ...audit.Event) {
	if u.publisher == nil || len(events) == 0 {
		return
	}
	if err := u.publisher.Publish(ctx, events...); err != nil {
		u.metrics.IncSideEffectFailure("publish_audit")
		u.logger.WarnContext(ctx, "audit fan-out failed",
			slog.Int("events", len(events)), slog.Any("error", err))
	}
}

// mapStoreErr turns repository sentinels into typed errors.
func mapStoreErr(appID string, err error) error {
	var ae *apperr.Error
	switch {
	case errors.As(err, &ae):
		return err
	case errors.Is(err, domain.ErrNotFound):
		return apperr.NotFound("application %s not found", appID)
	default:
		return apperr.Internal("store failure", err)
	}
}

func resultLabel(err error) string {
	switch apperr.KindOf(err) {
	case apperr.ErrNotFound:
		return "not_found"
	case apperr.ErrForbidden:
		return "forbidden"
	case apperr.ErrInvalidState:
		return "invalid_state"
	case apperr.ErrValidation:
		return "validation"
	}
	return "internal"
}

// toJSONMap flattens a struct into a JSON object for storage in a JSON column.
func toJSONMap(v any) (datatypes.JSONMap, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := datatypes.JSONMap{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, err
	}
	return out, nil
}
