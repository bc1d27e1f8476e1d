package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"underwriting-backend/internal/domain/application"
	"underwriting-backend/internal/domain/audit"
	"underwriting-backend/internal/domain/uow"
)

func TestWithinTx_RollbackDropsStagedWrites(t *testing.T) {
	ctx := context.Background()
	s := New()
	boom := errors.New("boom")

	err := s.WithinTx(ctx, func(r uow.Repos) error {
		if err := r.Applications.Create(ctx, &application.Application{ApplicationID: "APP-1", Status: application.StatusDraft}); err != nil {
			t.Fatalf("create: %v", err)
		}
		if _, err := r.Applications.GetByApplicationID(ctx, "APP-1"); err != nil {
			t.Fatalf("tx should read its own write: %v", err)
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if _, ok := s.Application("APP-1"); ok {
		t.Fatalf("rolled back application must not be visible")
	}
}

func TestWithinApplicationTx_CommitAndNotFound(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Seed(application.Application{ApplicationID: "APP-1", Status: application.StatusDraft, Data: map[string]any{"age": 30}})

	err := s.WithinApplicationTx(ctx, "APP-1", func(r uow.Repos, a *application.Application) error {
		a.Status = application.StatusSubmitted
		a.Data["age"] = 31
		if err := r.Applications.Save(ctx, a); err != nil {
			return err
		}
		return r.Audit.Create(ctx, &audit.Event{EventID: "AUD-1", ApplicationID: "APP-1", Action: audit.ActionSubmitted, CreatedAt: time.Now()})
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	got, _ := s.Application("APP-1")
	if got.Status != application.StatusSubmitted || got.Data["age"] != 31 {
		t.Fatalf("committed app = %+v", got)
	}
	if len(s.Events()) != 1 {
		t.Fatalf("events = %d, want 1", len(s.Events()))
	}

	err = s.WithinApplicationTx(ctx, "APP-404", func(uow.Repos, *application.Application) error { return nil })
	if !errors.Is(err, application.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestReadsReturnCopies(t *testing.T) {
	ctx := context.Background()
	s := New()
	s.Seed(application.Application{ApplicationID: "APP-1", Data: map[string]any{"age": 30}})

	a, _ := s.Repos().Applications.GetByApplicationID(ctx, "APP-1")
	a.Data["age"] = 99
	got, _ := s.Application("APP-1")
	if got.Data["age"] != 30 {
		t.Fatalf("caller mutation leaked into store: %v", got.Data)
	}
}

func TestList_FilterAndOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	ready := true
	s.Seed(
		application.Application{ApplicationID: "A", Status: application.StatusSubmitted, CreatedAt: base},
		application.Application{ApplicationID: "B", Status: application.StatusSubmitted, InputReady: true, CreatedAt: base.Add(time.Hour)},
		application.Application{ApplicationID: "C", Status: application.StatusDraft, CreatedAt: base.Add(2 * time.Hour)},
	)

	list, _ := s.Repos().Applications.List(ctx, application.Filter{Statuses: []application.Status{application.StatusSubmitted}, NewestFirst: true})
	if len(list) != 2 || list[0].ApplicationID != "B" {
		t.Fatalf("list = %+v", list)
	}
	list, _ = s.Repos().Applications.List(ctx, application.Filter{InputReady: &ready})
	if len(list) != 1 || list[0].ApplicationID != "B" {
		t.Fatalf("input_ready list = %+v", list)
	}
}
