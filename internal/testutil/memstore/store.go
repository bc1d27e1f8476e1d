package memstore

import (
	"context"
	"maps"
	"sync"
	"sync/atomic"

	"underwriting-backend/internal/domain/application"
	"underwriting-backend/internal/domain/audit"
	"underwriting-backend/internal/domain/document"
	"underwriting-backend/internal/domain/message"
	"underwriting-backend/internal/domain/payment"
	"underwriting-backend/internal/domain/uow"
	"underwriting-backend/internal/domain/user"
)

var _ uow.UnitOfWork = (*Store)(nil)

// Hooks inject failures and interleavings. Set them before the store is shared.
type Hooks struct {
	// AfterLock runs inside WithinApplicationTx once the application is read.
	AfterLock func(applicationID string)

	AuditCreateErr     error
	MessageCreateErr   error
	DocumentContentErr error
}

// Store is an in-memory document store with a UnitOfWork that stages writes
// and applies them on commit. It takes no row locks: two transactions on the
// same application both commit and the later write wins.
type Store struct {
	Hooks Hooks

	mu   sync.Mutex
	live *state
	seq  atomic.Uint64
}

type state struct {
	apps     map[string]application.Application
	docs     []document.Document
	msgs     []message.Message
	events   []audit.Event
	payments []payment.Payment
	methods  map[string]payment.Method
	users    map[string]user.User
}

func New() *Store {
	return &Store{live: &state{
		apps:    map[string]application.Application{},
		methods: map[string]payment.Method{},
		users:   map[string]user.User{},
	}}
}

func (s *state) clone() *state {
	c := &state{
		apps:     make(map[string]application.Application, len(s.apps)),
		docs:     append([]document.Document(nil), s.docs...),
		msgs:     append([]message.Message(nil), s.msgs...),
		events:   append([]audit.Event(nil), s.events...),
		payments: append([]payment.Payment(nil), s.payments...),
		methods:  maps.Clone(s.methods),
		users:    maps.Clone(s.users),
	}
	for k, v := range s.apps {
		c.apps[k] = cloneApp(v)
	}
	return c
}

// tx holds a private copy of the state plus the writes to replay on commit.
type tx struct {
	staged *state
	ops    []func(*state)
}

type scope struct {
	store *Store
	tx    *tx
}

func (sc *scope) read(fn func(s *state)) {
	if sc.tx != nil {
		fn(sc.tx.staged)
		return
	}
	sc.store.mu.Lock()
	defer sc.store.mu.Unlock()
	fn(sc.store.live)
}

func (sc *scope) write(op func(s *state)) {
	if sc.tx != nil {
		op(sc.tx.staged)
		sc.tx.ops = append(sc.tx.ops, op)
		return
	}
	sc.store.mu.Lock()
	defer sc.store.mu.Unlock()
	op(sc.store.live)
}

func (sc *scope) repos() uow.Repos {
	return uow.Repos{
		Applications: &apps{sc},
		Documents:    &docs{sc},
		Messages:     &msgs{sc},
		Audit:        &events{sc},
		Payments:     &payments{sc},
	}
}

// Repos returns repositories that write straight to the live state.
func (s *Store) Repos() uow.Repos { return (&scope{store: s}).repos() }

func (s *Store) Users() user.Repository { return &users{&scope{store: s}} }

func (s *Store) WithinTx(ctx context.Context, fn func(r uow.Repos) error) error {
	s.mu.Lock()
	t := &tx{staged: s.live.clone()}
	s.mu.Unlock()

	if err := fn((&scope{store: s, tx: t}).repos()); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range t.ops {
		op(s.live)
	}
	return nil
}

func (s *Store) WithinApplicationTx(ctx context.Context, applicationID string, fn func(r uow.Repos, a *application.Application) error) error {
	return s.WithinTx(ctx, func(r uow.Repos) error {
		a, err := r.Applications.GetByApplicationIDForUpdate(ctx, applicationID)
		if err != nil {
			return err
		}
		if s.Hooks.AfterLock != nil {
			s.Hooks.AfterLock(applicationID)
		}
		return fn(r, a)
	})
}

// Seed inserts applications as-is, bypassing the UnitOfWork.
func (s *Store) Seed(list ...application.Application) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range list {
		if a.ID == 0 {
			a.ID = s.seq.Add(1)
		}
		s.live.apps[a.ApplicationID] = cloneApp(a)
	}
}

// SeedEvents inserts audit events as-is.
func (s *Store) SeedEvents(list ...audit.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range list {
		if e.ID == 0 {
			e.ID = s.seq.Add(1)
		}
		s.live.events = append(s.live.events, e)
	}
}

// Events returns every committed audit event in insertion order.
func (s *Store) Events() []audit.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]audit.Event(nil), s.live.events...)
}

// Messages returns every committed message in insertion order.
func (s *Store) Messages() []message.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]message.Message(nil), s.live.msgs...)
}

// Application returns a copy of the committed application.
func (s *Store) Application(applicationID string) (application.Application, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.live.apps[applicationID]
	return cloneApp(a), ok
}

func cloneApp(a application.Application) application.Application {
	a.Data = maps.Clone(a.Data)
	a.VerificationData = maps.Clone(a.VerificationData)
	if a.RiskScore != nil {
		v := *a.RiskScore
		a.RiskScore = &v
	}
	if a.DecidedAt != nil {
		v := *a.DecidedAt
		a.DecidedAt = &v
	}
	if a.PaidAt != nil {
		v := *a.PaidAt
		a.PaidAt = &v
	}
	return a
}
