package memstore

import (
	"context"
	"errors"
	"slices"
	"sort"

	"underwriting-backend/internal/domain/application"
	"underwriting-backend/internal/domain/audit"
	"underwriting-backend/internal/domain/document"
	"underwriting-backend/internal/domain/message"
	"underwriting-backend/internal/domain/payment"
	"underwriting-backend/internal/domain/user"
)

var errDuplicate = errors.New("memstore: duplicate key")

// ---- applications ----

type apps struct{ *scope }

func (r *apps) Create(_ context.Context, a *application.Application) error {
	var err error
	r.read(func(s *state) {
		if _, ok := s.apps[a.ApplicationID]; ok {
			err = errDuplicate
		}
	})
	if err != nil {
		return err
	}
	if a.ID == 0 {
		a.ID = r.store.seq.Add(1)
	}
	c := cloneApp(*a)
	r.write(func(s *state) { s.apps[c.ApplicationID] = cloneApp(c) })
	return nil
}

func (r *apps) Save(_ context.Context, a *application.Application) error {
	c := cloneApp(*a)
	r.write(func(s *state) { s.apps[c.ApplicationID] = cloneApp(c) })
	return nil
}

func (r *apps) GetByApplicationID(_ context.Context, applicationID string) (*application.Application, error) {
	var (
		out application.Application
		ok  bool
	)
	r.read(func(s *state) {
		out, ok = s.apps[applicationID]
		out = cloneApp(out)
	})
	if !ok {
		return nil, application.ErrNotFound
	}
	return &out, nil
}

func (r *apps) GetByApplicationIDForUpdate(ctx context.Context, applicationID string) (*application.Application, error) {
	return r.GetByApplicationID(ctx, applicationID)
}

func (r *apps) GetDraftByCustomerID(ctx context.Context, customerID string) (*application.Application, error) {
	list, _ := r.List(ctx, application.Filter{
		Statuses:   []application.Status{application.StatusDraft},
		CustomerID: customerID,
		Limit:      1,
	})
	if len(list) == 0 {
		return nil, application.ErrNotFound
	}
	return &list[0], nil
}

func (r *apps) List(_ context.Context, f application.Filter) ([]application.Application, error) {
	var out []application.Application
	r.read(func(s *state) {
		for _, a := range s.apps {
			if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, a.Status) {
				continue
			}
			if f.InputReady != nil && a.InputReady != *f.InputReady {
				continue
			}
			if f.CustomerID != "" && a.CustomerID != f.CustomerID {
				continue
			}
			out = append(out, cloneApp(a))
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			if f.NewestFirst {
				return out[i].CreatedAt.After(out[j].CreatedAt)
			}
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		if f.NewestFirst {
			return out[i].ID > out[j].ID
		}
		return out[i].ID < out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *apps) CountByStatus(_ context.Context) (map[application.Status]int64, error) {
	out := map[application.Status]int64{}
	r.read(func(s *state) {
		for _, a := range s.apps {
			out[a.Status]++
		}
	})
	return out, nil
}

func (r *apps) Count(_ context.Context) (int64, error) {
	var n int64
	r.read(func(s *state) { n = int64(len(s.apps)) })
	return n, nil
}

// ---- documents ----

type docs struct{ *scope }

func (r *docs) Create(_ context.Context, d *document.Document) error {
	if d.ID == 0 {
		d.ID = r.store.seq.Add(1)
	}
	c := *d
	r.write(func(s *state) { s.docs = append(s.docs, c) })
	return nil
}

func (r *docs) UpdateContent(_ context.Context, documentID string, content []byte, blobKey string) error {
	if err := r.store.Hooks.DocumentContentErr; err != nil {
		return err
	}
	var found bool
	r.read(func(s *state) {
		found = slices.ContainsFunc(s.docs, func(d document.Document) bool { return d.DocumentID == documentID })
	})
	if !found {
		return document.ErrNotFound
	}
	b := slices.Clone(content)
	r.write(func(s *state) {
		for i := range s.docs {
			if s.docs[i].DocumentID == documentID {
				s.docs[i].Content = b
				s.docs[i].BlobKey = blobKey
			}
		}
	})
	return nil
}

func (r *docs) GetByDocumentID(_ context.Context, documentID string) (*document.Document, error) {
	var (
		out document.Document
		ok  bool
	)
	r.read(func(s *state) {
		for _, d := range s.docs {
			if d.DocumentID == documentID {
				out, ok = d, true
			}
		}
	})
	if !ok {
		return nil, document.ErrNotFound
	}
	return &out, nil
}

func (r *docs) ListByApplicationID(_ context.Context, applicationID string) ([]document.Document, error) {
	var out []document.Document
	r.read(func(s *state) {
		for _, d := range s.docs {
			if d.ApplicationID == applicationID {
				d.Content = nil
				out = append(out, d)
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	return out, nil
}

func (r *docs) LatestByApplicationID(_ context.Context, applicationID string) (*document.Document, error) {
	var (
		out document.Document
		ok  bool
	)
	r.read(func(s *state) {
		for _, d := range s.docs {
			if d.ApplicationID != applicationID {
				continue
			}
			if !ok || !d.UploadedAt.Before(out.UploadedAt) {
				out, ok = d, true
			}
		}
	})
	if !ok {
		return nil, document.ErrNotFound
	}
	return &out, nil
}

// ---- messages ----

type msgs struct{ *scope }

func (r *msgs) Create(_ context.Context, m *message.Message) error {
	if err := r.store.Hooks.MessageCreateErr; err != nil {
		return err
	}
	if m.ID == 0 {
		m.ID = r.store.seq.Add(1)
	}
	c := *m
	r.write(func(s *state) { s.msgs = append(s.msgs, c) })
	return nil
}

func (r *msgs) ListByApplicationID(_ context.Context, applicationID string) ([]message.Message, error) {
	return r.filter(func(m message.Message) bool { return m.ApplicationID == applicationID }), nil
}

func (r *msgs) ListForRecipient(_ context.Context, applicationIDs []string, to user.Role) ([]message.Message, error) {
	return r.filter(func(m message.Message) bool {
		return m.ToRole == to && slices.Contains(applicationIDs, m.ApplicationID)
	}), nil
}

func (r *msgs) filter(keep func(message.Message) bool) []message.Message {
	var out []message.Message
	r.read(func(s *state) {
		for _, m := range s.msgs {
			if keep(m) {
				out = append(out, m)
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// ---- audit ----

type events struct{ *scope }

func (r *events) Create(_ context.Context, e *audit.Event) error {
	if err := r.store.Hooks.AuditCreateErr; err != nil {
		return err
	}
	if e.ID == 0 {
		e.ID = r.store.seq.Add(1)
	}
	c := *e
	r.write(func(s *state) { s.events = append(s.events, c) })
	return nil
}

func (r *events) ListByApplicationID(_ context.Context, applicationID string) ([]audit.Event, error) {
	var out []audit.Event
	r.read(func(s *state) {
		for _, e := range s.events {
			if e.ApplicationID == applicationID {
				out = append(out, e)
			}
		}
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *events) List(_ context.Context, f audit.Filter) ([]audit.Event, error) {
	var out []audit.Event
	r.read(func(s *state) {
		for _, e := range s.events {
			if f.Action != "" && e.Action != f.Action {
				continue
			}
			if f.ActorRole != "" && e.ActorRole != f.ActorRole {
				continue
			}
			if f.ApplicationID != "" && e.ApplicationID != f.ApplicationID {
				continue
			}
			out = append(out, e)
		}
	})
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func (r *events) Count(_ context.Context) (int64, error) {
	var n int64
	r.read(func(s *state) { n = int64(len(s.events)) })
	return n, nil
}

func (r *events) ApplicationIDsWithEvents(_ context.Context, applicationIDs []string) (map[string]bool, error) {
	out := map[string]bool{}
	r.read(func(s *state) {
		for _, e := range s.events {
			if slices.Contains(applicationIDs, e.ApplicationID) {
				out[e.ApplicationID] = true
			}
		}
	})
	return out, nil
}

// ---- payments ----

type payments struct{ *scope }

func (r *payments) Create(_ context.Context, p *payment.Payment) error {
	var err error
	r.read(func(s *state) {
		if slices.ContainsFunc(s.payments, func(x payment.Payment) bool { return x.ApplicationID == p.ApplicationID }) {
			err = errDuplicate
		}
	})
	if err != nil {
		return err
	}
	if p.ID == 0 {
		p.ID = r.store.seq.Add(1)
	}
	c := *p
	r.write(func(s *state) { s.payments = append(s.payments, c) })
	return nil
}

func (r *payments) GetByPaymentID(_ context.Context, paymentID string) (*payment.Payment, error) {
	return r.find(func(p payment.Payment) bool { return p.PaymentID == paymentID })
}

func (r *payments) GetByApplicationID(_ context.Context, applicationID string) (*payment.Payment, error) {
	return r.find(func(p payment.Payment) bool { return p.ApplicationID == applicationID })
}

func (r *payments) find(match func(payment.Payment) bool) (*payment.Payment, error) {
	var (
		out payment.Payment
		ok  bool
	)
	r.read(func(s *state) {
		for _, p := range s.payments {
			if match(p) {
				out, ok = p, true
				return
			}
		}
	})
	if !ok {
		return nil, payment.ErrNotFound
	}
	return &out, nil
}

func (r *payments) UpsertMethod(_ context.Context, m *payment.Method) error {
	c := *m
	r.write(func(s *state) { s.methods[c.UserID] = c })
	return nil
}

func (r *payments) GetMethodByUserID(_ context.Context, userID string) (*payment.Method, error) {
	var (
		out payment.Method
		ok  bool
	)
	r.read(func(s *state) { out, ok = s.methods[userID] })
	if !ok {
		return nil, payment.ErrMethodNotFound
	}
	return &out, nil
}

// ---- users ----

type users struct{ *scope }

func (r *users) Create(_ context.Context, u *user.User) error {
	var err error
	r.read(func(s *state) {
		if _, ok := s.users[u.Username]; ok {
			err = user.ErrUsernameTaken
		}
	})
	if err != nil {
		return err
	}
	if u.ID == 0 {
		u.ID = r.store.seq.Add(1)
	}
	c := *u
	r.write(func(s *state) { s.users[c.Username] = c })
	return nil
}

func (r *users) Save(_ context.Context, u *user.User) error {
	c := *u
	r.write(func(s *state) { s.users[c.Username] = c })
	return nil
}

func (r *users) GetByUsername(_ context.Context, username string) (*user.User, error) {
	var (
		out user.User
		ok  bool
	)
	r.read(func(s *state) { out, ok = s.users[username] })
	if !ok {
		return nil, user.ErrNotFound
	}
	return &out, nil
}

func (r *users) List(_ context.Context) ([]user.User, error) {
	var out []user.User
	r.read(func(s *state) {
		for _, u := range s.users {
			out = append(out, u)
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *users) Count(_ context.Context) (int64, error) {
	var n int64
	r.read(func(s *state) { n = int64(len(s.users)) })
	return n, nil
}

func (r *users) CountByRole(_ context.Context) (map[user.Role]int64, error) {
	out := map[user.Role]int64{}
	r.read(func(s *state) {
		for _, u := range s.users {
			out[u.Role]++
		}
	})
	return out, nil
}
