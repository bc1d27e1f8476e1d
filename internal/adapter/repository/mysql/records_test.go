package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	"underwriting-backend/internal/domain/audit"
	"underwriting-backend/internal/domain/document"
	"underwriting-backend/internal/domain/message"
	"underwriting-backend/internal/domain/payment"
	"underwriting-backend/internal/domain/user"
	"underwriting-backend/pkg/id"
)

func makeDocument(appID string, at time.Time) *document.Document {
	return &document.Document{
		DocumentID:    id.NewID32(),
		ApplicationID: appID,
		Type:          document.TypeIDProof,
		Filename:      "id.pdf",
		ContentType:   "application/pdf",
		Size:          4,
		UploadedBy:    "alice",
		UploadedAt:    at,
	}
}

func TestDocumentRepository(t *testing.T) {
	repo := NewDocumentRepository(openTestDB(t))
	ctx := context.Background()

	older := makeDocument("APP-1", t0)
	newer := makeDocument("APP-1", t0.Add(time.Minute))
	other := makeDocument("APP-2", t0.Add(time.Hour))
	for _, d := range []*document.Document{newer, older, other} {
		if err := repo.Create(ctx, d); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	if err := repo.UpdateContent(ctx, older.DocumentID, []byte("%PDF"), ""); err != nil {
		t.Fatalf("UpdateContent: %v", err)
	}
	if err := repo.UpdateContent(ctx, "missing", nil, "k"); !errors.Is(err, document.ErrNotFound) {
		t.Fatalf("UpdateContent missing err = %v", err)
	}

	got, err := repo.GetByDocumentID(ctx, older.DocumentID)
	if err != nil {
		t.Fatalf("GetByDocumentID: %v", err)
	}
	if string(got.Content) != "%PDF" {
		t.Fatalf("content = %q", got.Content)
	}

	list, err := repo.ListByApplicationID(ctx, "APP-1")
	if err != nil {
		t.Fatalf("ListByApplicationID: %v", err)
	}
	if len(list) != 2 || list[0].DocumentID != older.DocumentID || list[1].DocumentID != newer.DocumentID {
		t.Fatalf("list order = %+v", list)
	}
	if list[0].Content != nil {
		t.Fatalf("list should carry metadata only")
	}

	latest, err := repo.LatestByApplicationID(ctx, "APP-1")
	if err != nil || latest.DocumentID != newer.DocumentID {
		t.Fatalf("LatestByApplicationID = %+v, %v", latest, err)
	}
	if _, err := repo.LatestByApplicationID(ctx, "APP-9"); !errors.Is(err, document.ErrNotFound) {
		t.Fatalf("LatestByApplicationID empty err = %v", err)
	}
}

func TestMessageRepository(t *testing.T) {
	repo := NewMessageRepository(openTestDB(t))
	ctx := context.Background()

	msgs := []*message.Message{
		{MessageID: id.NewID32(), ApplicationID: "APP-1", FromRole: user.RoleAnalyst, ToRole: user.RoleCustomer, Body: "second", CreatedAt: t0.Add(time.Minute)},
		{MessageID: id.NewID32(), ApplicationID: "APP-1", FromRole: user.RoleAnalyst, ToRole: user.RoleCustomer, Body: "first", CreatedAt: t0},
		{MessageID: id.NewID32(), ApplicationID: "APP-1", FromRole: user.RoleCustomer, ToRole: user.RoleAnalyst, Body: "reply", CreatedAt: t0.Add(2 * time.Minute)},
		{MessageID: id.NewID32(), ApplicationID: "APP-2", FromRole: user.RoleAnalyst, ToRole: user.RoleCustomer, Body: "other", CreatedAt: t0},
	}
	for _, m := range msgs {
		if err := repo.Create(ctx, m); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	all, err := repo.ListByApplicationID(ctx, "APP-1")
	if err != nil || len(all) != 3 || all[0].Body != "first" {
		t.Fatalf("ListByApplicationID = %+v, %v", all, err)
	}
	inbox, err := repo.ListForRecipient(ctx, []string{"APP-1"}, user.RoleCustomer)
	if err != nil || len(inbox) != 2 || inbox[0].Body != "first" || inbox[1].Body != "second" {
		t.Fatalf("ListForRecipient = %+v, %v", inbox, err)
	}
	if none, err := repo.ListForRecipient(ctx, nil, user.RoleCustomer); err != nil || len(none) != 0 {
		t.Fatalf("ListForRecipient(nil) = %+v, %v", none, err)
	}
}

func TestAuditRepository(t *testing.T) {
	repo := NewAuditRepository(openTestDB(t))
	ctx := context.Background()

	created := makeEvent("APP-1", audit.ActionCreated)
	submitted := makeEvent("APP-1", audit.ActionSubmitted)
	submitted.ActorRole = user.RoleCustomer
	submitted.CreatedAt = t0.Add(time.Minute)
	other := makeEvent("APP-2", audit.ActionCreated)
	other.CreatedAt = t0.Add(2 * time.Minute)
	for _, e := range []*audit.Event{created, submitted, other} {
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}

	trail, err := repo.ListByApplicationID(ctx, "APP-1")
	if err != nil || len(trail) != 2 || trail[0].Action != audit.ActionCreated {
		t.Fatalf("ListByApplicationID = %+v, %v", trail, err)
	}
	if trail[0].Payload["from"] != "submitted" {
		t.Fatalf("payload = %v", trail[0].Payload)
	}

	tests := []struct {
		name string
		f    audit.Filter
		want []string
	}{
		{"newest first", audit.Filter{}, []string{other.EventID, submitted.EventID, created.EventID}},
		{"action", audit.Filter{Action: audit.ActionCreated}, []string{other.EventID, created.EventID}},
		{"role", audit.Filter{ActorRole: user.RoleCustomer}, []string{submitted.EventID}},
		{"application", audit.Filter{ApplicationID: "APP-2"}, []string{other.EventID}},
		{"limit", audit.Filter{Limit: 2}, []string{other.EventID, submitted.EventID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.List(ctx, tt.f)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i].EventID != tt.want[i] {
					t.Fatalf("[%d] = %s, want %s", i, got[i].EventID, tt.want[i])
				}
			}
		})
	}

	with, err := repo.ApplicationIDsWithEvents(ctx, []string{"APP-1", "APP-3"})
	if err != nil {
		t.Fatalf("ApplicationIDsWithEvents: %v", err)
	}
	if !with["APP-1"] || with["APP-3"] || len(with) != 1 {
		t.Fatalf("ApplicationIDsWithEvents = %v", with)
	}
	if n, _ := repo.Count(ctx); n != 3 {
		t.Fatalf("Count = %d", n)
	}
}

func TestPaymentRepository(t *testing.T) {
	repo := NewPaymentRepository(openTestDB(t))
	ctx := context.Background()

	p := &payment.Payment{
		PaymentID:     "PMT-1A2B3C4D5E6F",
		ApplicationID: "APP-1",
		UserID:        "alice",
		Amount:        dec("500.00"),
		Currency:      payment.CurrencyUSD,
		Status:        payment.StatusSucceeded,
		MethodLast4:   "4242",
		CreatedAt:     t0,
	}
	if err := repo.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}
	dup := *p
	dup.ID = 0
	dup.PaymentID = "PMT-OTHER"
	if err := repo.Create(ctx, &dup); err == nil {
		t.Fatalf("expected unique violation for second payment on same application")
	}

	got, err := repo.GetByPaymentID(ctx, p.PaymentID)
	if err != nil || !got.Amount.Equal(dec("500")) {
		t.Fatalf("GetByPaymentID = %+v, %v", got, err)
	}
	if _, err := repo.GetByApplicationID(ctx, "APP-1"); err != nil {
		t.Fatalf("GetByApplicationID: %v", err)
	}
	if _, err := repo.GetByApplicationID(ctx, "APP-2"); !errors.Is(err, payment.ErrNotFound) {
		t.Fatalf("GetByApplicationID missing err = %v", err)
	}
}

func TestPaymentRepository_UpsertMethod(t *testing.T) {
	repo := NewPaymentRepository(openTestDB(t))
	ctx := context.Background()

	if _, err := repo.GetMethodByUserID(ctx, "alice"); !errors.Is(err, payment.ErrMethodNotFound) {
		t.Fatalf("GetMethodByUserID empty err = %v", err)
	}

	first := &payment.Method{UserID: "alice", Brand: "visa", Last4: "4242", ExpMonth: 12, ExpYear: 2030, Name: "Alice Smith"}
	if err := repo.UpsertMethod(ctx, first); err != nil {
		t.Fatalf("UpsertMethod: %v", err)
	}
	second := &payment.Method{UserID: "alice", Brand: "mastercard", Last4: "4444", ExpMonth: 1, ExpYear: 2031, Name: "Alice Smith"}
	if err := repo.UpsertMethod(ctx, second); err != nil {
		t.Fatalf("UpsertMethod replace: %v", err)
	}

	got, err := repo.GetMethodByUserID(ctx, "alice")
	if err != nil {
		t.Fatalf("GetMethodByUserID: %v", err)
	}
	if got.Brand != "mastercard" || got.Last4 != "4444" || got.ExpYear != 2031 {
		t.Fatalf("method = %+v", got)
	}
}

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()

	for _, u := range []*user.User{
		{Username: "zed", PasswordHash: "h", Role: user.RoleCustomer},
		{Username: "ana", PasswordHash: "h", Role: user.RoleAnalyst},
		{Username: "bob", PasswordHash: "h", Role: user.RoleCustomer},
	} {
		if err := repo.Create(ctx, u); err != nil {
			t.Fatalf("Create %s: %v", u.Username, err)
		}
	}
	if err := repo.Create(ctx, &user.User{Username: "bob", Role: user.RoleAdmin}); !errors.Is(err, user.ErrUsernameTaken) {
		t.Fatalf("duplicate Create err = %v", err)
	}

	bob, err := repo.GetByUsername(ctx, "bob")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	bob.Role = user.RoleUnderwriter
	if err := repo.Save(ctx, bob); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := repo.GetByUsername(ctx, "nobody"); !errors.Is(err, user.ErrNotFound) {
		t.Fatalf("GetByUsername missing err = %v", err)
	}

	list, err := repo.List(ctx)
	if err != nil || len(list) != 3 || list[0].Username != "ana" || list[2].Username != "zed" {
		t.Fatalf("List = %+v, %v", list, err)
	}
	by, err := repo.CountByRole(ctx)
	if err != nil {
		t.Fatalf("CountByRole: %v", err)
	}
	if by[user.RoleCustomer] != 1 || by[user.RoleUnderwriter] != 1 || by[user.RoleAnalyst] != 1 {
		t.Fatalf("CountByRole = %v", by)
	}
	if n, _ := repo.Count(ctx); n != 3 {
		t.Fatalf("Count = %d", n)
	}
}
