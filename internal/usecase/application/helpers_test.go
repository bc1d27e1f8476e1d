package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	domain "underwriting-backend/internal/domain/application"
	"underwriting-backend/internal/domain/audit"
	"underwriting-backend/internal/domain/user"
	"underwriting-backend/internal/testutil/blobmem"
	"underwriting-backend/internal/testutil/memstore"
)

var fixedNow = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

var (
	alice       = user.Actor{Role: user.RoleCustomer, ID: "alice"}
	bob         = user.Actor{Role: user.RoleCustomer, ID: "bob"}
	analyst     = user.Actor{Role: user.RoleAnalyst, ID: "ana"}
	underwriter = user.Actor{Role: user.RoleUnderwriter, ID: "uwe"}
	admin       = user.Actor{Role: user.RoleAdmin, ID: "root"}
	auditor     = user.Actor{Role: user.RoleAuditor, ID: "aud"}
)

type fixture struct {
	store *memstore.Store
	blobs *blobmem.Store
	pub   *recordingPublisher
	uc    *Usecase
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{store: memstore.New(), blobs: blobmem.New(), pub: &recordingPublisher{}}
	base := []Option{
		WithClock(func() time.Time { return fixedNow }),
		WithBlobStore(f.blobs),
		WithPublisher(f.pub),
	}
	f.uc = NewUsecase(f.store.Repos(), f.store, append(base, opts...)...)
	return f
}

func completeData() map[string]any {
	return map[string]any{
		"fullName":        "Alice Smith",
		"dateOfBirth":     "1990-01-01",
		"age":             35,
		"insuranceType":   "auto",
		"coverageNeeds":   100000,
		"assetValuation":  50000,
		"income":          80000,
		"debt":            10000,
		"vehicleMake":     "Toyota",
		"vehicleModel":    "Camry",
		"vehicleYear":     2020,
		"drivingHistory":  "clean",
		"annualMileage":   12000,
		"vehicleAge":      5,
		"creditScore":     720,
		"previousClaims":  0,
		"employmentYears": 6,
	}
}

// seed stores an application owned by alice in the given status.
func (f *fixture) seed(t *testing.T, appID string, status domain.Status, mutate ...func(*domain.Application)) {
	t.Helper()
	a := domain.Application{
		ApplicationID: appID,
		CustomerID:    alice.ID,
		Status:        status,
		Data:          completeData(),
		CreatedAt:     fixedNow.Add(-time.Hour),
		UpdatedAt:     fixedNow.Add(-time.Hour),
	}
	for _, m := range mutate {
		m(&a)
	}
	f.store.Seed(a)
}

func (f *fixture) app(t *testing.T, appID string) domain.Application {
	t.Helper()
	a, ok := f.store.Application(appID)
	if !ok {
		t.Fatalf("application %s not stored", appID)
	}
	return a
}

func (f *fixture) eventsFor(appID string) []audit.Event {
	var out []audit.Event
	for _, e := range f.store.Events() {
		if e.ApplicationID == appID {
			out = append(out, e)
		}
	}
	return out
}

func verified(a *domain.Application) {
	a.VerificationData = map[string]any{"summary": "ok"}
}

func wantKind(t *testing.T, err, kind error) {
	t.Helper()
	if !errors.Is(err, kind) {
		t.Fatalf("err = %v, want kind %v", err, kind)
	}
}

func wantNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []audit.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, events ...audit.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.events)
}
