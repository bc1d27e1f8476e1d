package application

import (
	"context"
	"errors"
	"sync"
	"testing"

	"underwriting-backend/internal/domain/apperr"
	domain "underwriting-backend/internal/domain/application"
	"underwriting-backend/internal/domain/audit"
	"underwriting-backend/internal/domain/uow"
	"underwriting-backend/internal/testutil/applicationmock"
	"underwriting-backend/internal/testutil/memstore"
	"underwriting-backend/internal/testutil/uowmock"
)

// Without row locks both callers read draft, both pass the guard and both
// commit: two audit events, last write wins.
func TestConcurrentSubmit_WithoutRowLocks_LastWriteWins(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "APP-1", domain.StatusDraft)

	var barrier sync.WaitGroup
	barrier.Add(2)
	f.store.Hooks.AfterLock = func(string) {
		barrier.Done()
		barrier.Wait()
	}

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.uc.Submit(ctx, alice, "APP-1")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
	}
	evs := f.eventsFor("APP-1")
	if len(evs) != 2 || evs[0].Action != audit.ActionSubmitted || evs[1].Action != audit.ActionSubmitted {
		t.Fatalf("events = %+v, want two submitted events", evs)
	}
	if f.app(t, "APP-1").Status != domain.StatusSubmitted {
		t.Fatalf("status = %s", f.app(t, "APP-1").Status)
	}
}

// A sequential retry of the same transition sees the new status and fails.
func TestRepeatedTransition_FailsWithInvalidState(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.seed(t, "APP-1", domain.StatusDraft)

	_, err := f.uc.Submit(ctx, alice, "APP-1")
	wantNoErr(t, err)
	_, err = f.uc.Submit(ctx, alice, "APP-1")
	wantKind(t, err, apperr.ErrInvalidState)
	if len(f.eventsFor("APP-1")) != 1 {
		t.Fatalf("only the first submit is audited")
	}
}

func TestStoreErrors_AreTyped(t *testing.T) {
	ctx := context.Background()
	dbDown := errors.New("db down")

	tests := []struct {
		name string
		tx   func(context.Context, string, func(uow.Repos, *domain.Application) error) error
		want error
	}{
		{"not found sentinel", func(context.Context, string, func(uow.Repos, *domain.Application) error) error {
			return domain.ErrNotFound
		}, apperr.ErrNotFound},
		{"lock failure", func(context.Context, string, func(uow.Repos, *domain.Application) error) error {
			return dbDown
		}, apperr.ErrInternal},
		{"save failure", func(ctx context.Context, id string, fn func(uow.Repos, *domain.Application) error) error {
			apps := &applicationmock.Repo{SaveFn: func(context.Context, *domain.Application) error { return dbDown }}
			return fn(uow.Repos{Applications: apps, Audit: memstore.New().Repos().Audit},
				&domain.Application{ApplicationID: id, CustomerID: alice.ID, Status: domain.StatusDraft, Data: completeData()})
		}, apperr.ErrInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := uowmock.New().WithWithinApplicationTx(tt.tx)
			uc := NewUsecase(memstore.New().Repos(), m)
			_, err := uc.Submit(ctx, alice, "APP-1")
			wantKind(t, err, tt.want)
			if tt.want == apperr.ErrInternal && !errors.Is(err, dbDown) {
				t.Fatalf("cause lost: %v", err)
			}
		})
	}
}
