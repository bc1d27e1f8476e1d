package application

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"underwriting-backend/internal/domain/apperr"
	domain "underwriting-backend/internal/domain/application"
	"underwriting-backend/internal/domain/audit"
	"underwriting-backend/internal/domain/payment"
	"underwriting-backend/internal/domain/uow"
	"underwriting-backend/internal/domain/user"
	"underwriting-backend/pkg/id"
)

var reLast4 = regexp.MustCompile(`^[0-9]{4}$`)

// Pay charges the saved method for an approved application and activates
// the policy. Paying twice returns the original receipt.
func (u *Usecase) Pay(ctx context.Context, actor user.Actor, appID string) (*PaymentResult, error) {
	tr, _ := domain.Lookup(domain.ActionPay)
	if actor.Role != tr.Role {
		return nil, apperr.Forbidden("payment requires role %s", tr.Role)
	}

	res := &PaymentResult{}
	var event *audit.Event
	err := u.uow.WithinApplicationTx(ctx, appID, func(r uow.Repos, a *domain.Application) error {
		if err := u.guard(actor, tr, a); err != nil {
			return err
		}
		if a.IsPaid() {
			p, err := r.Payments.GetByPaymentID(ctx, a.PaymentReceiptID)
			if err != nil {
				return apperr.Internal("load existing receipt", err)
			}
			res.Payment, res.PolicyNumber, res.AlreadyPaid = p, a.PolicyNumber, true
			return nil
		}

		var amount = a.FinalPremium
		if a.PremiumRecommended.Valid {
			amount = a.PremiumRecommended
		}
		if !amount.Valid {
			return apperr.InvalidState("payment is disabled: no premium on application %s", a.ApplicationID)
		}
		method, err := r.Payments.GetMethodByUserID(ctx, actor.ID)
		if errors.Is(err, payment.ErrMethodNotFound) {
			return apperr.Validation("no saved payment method, add one first")
		}
		if err != nil {
			return apperr.Internal("load payment method", err)
		}

		now := u.now().UTC()
		p := &payment.Payment{
			PaymentID:     id.New("PMT"),
			ApplicationID: a.ApplicationID,
			UserID:        actor.ID,
			Amount:        amount.Decimal.Round(2),
			Currency:      payment.CurrencyUSD,
			Status:        payment.StatusSucceeded,
			MethodLast4:   method.Last4,
			CreatedAt:     now,
		}
		if err := r.Payments.Create(ctx, p); err != nil {
			return apperr.Internal("create payment", err)
		}

		a.PaymentStatus = domain.PaymentStatusPaid
		a.PaymentReceiptID = p.PaymentID
		a.PolicyNumber = id.New("POL")
		a.PolicyStatus = domain.PolicyStatusActive
		a.PaidAt = &now
		a.Touch(now)
		if err := r.Applications.Save(ctx, a); err != nil {
			return apperr.Internal("save application", err)
		}
		event = u.newEvent(a.ApplicationID, actor, audit.ActionPaid, map[string]any{
			"receipt_id":    p.PaymentID,
			"amount":        p.Amount.StringFixed(2),
			"policy_number": a.PolicyNumber,
		})
		if err := r.Audit.Create(ctx, event); err != nil {
			return apperr.Internal("record audit event", err)
		}
		res.Payment, res.PolicyNumber = p, a.PolicyNumber
		return nil
	})
	if err != nil {
		err = mapStoreErr(appID, err)
		u.metrics.IncTransition(string(domain.ActionPay), resultLabel(err))
		return nil, err
	}
	if event != nil {
		u.metrics.IncTransition(string(domain.ActionPay), "ok")
		u.publish(ctx, *event)
	}
	return res, nil
}

// PaymentReceipt returns the stored receipt of the caller's paid application.
func (u *Usecase) PaymentReceipt(ctx context.Context, actor user.Actor, appID string) (*payment.Payment, error) {
	if actor.Role != user.RoleCustomer {
		return nil, apperr.Forbidden("receipts are available to customers only")
	}
	a, err := u.apps.GetByApplicationID(ctx, appID)
	if err != nil {
		return nil, mapStoreErr(appID, err)
	}
	if a.CustomerID != actor.ID {
		return nil, apperr.Forbidden("application %s belongs to another customer", appID)
	}
	if a.PaymentReceiptID == "" {
		return nil, apperr.NotFound("no receipt for application %s", appID)
	}
	p, err := u.payments.GetByPaymentID(ctx, a.PaymentReceiptID)
	if errors.Is(err, payment.ErrNotFound) {
		return nil, apperr.NotFound("receipt %s not found", a.PaymentReceiptID)
	}
	if err != nil {
		return nil, apperr.Internal("load receipt", err)
	}
	return p, nil
}

// SavePaymentMethod stores (or replaces) the caller's card summary.
func (u *Usecase) SavePaymentMethod(ctx context.Context, actor user.Actor, in MethodInput) (*payment.Method, error) {
	if actor.Role != user.RoleCustomer {
		return nil, apperr.Forbidden("payment methods are available to customers only")
	}
	var fields []apperr.FieldError
	if !reLast4.MatchString(in.Last4) {
		fields = append(fields, apperr.FieldError{Field: "last4", Message: "must be 4 digits"})
	}
	if in.ExpMonth < 1 || in.ExpMonth > 12 {
		fields = append(fields, apperr.FieldError{Field: "exp_month", Message: "must be between 1 and 12"})
	}
	if in.ExpYear < u.now().Year() {
		fields = append(fields, apperr.FieldError{Field: "exp_year", Message: "card is expired"})
	}
	if strings.TrimSpace(in.Name) == "" {
		fields = append(fields, apperr.FieldError{Field: "name", Message: "is required"})
	}
	if len(fields) > 0 {
		return nil, apperr.Validation("invalid payment method", fields...)
	}

	m := &payment.Method{
		UserID:   actor.ID,
		Brand:    strings.TrimSpace(in.Brand),
		Last4:    in.Last4,
		ExpMonth: in.ExpMonth,
		ExpYear:  in.ExpYear,
		Name:     strings.TrimSpace(in.Name),
	}
	if err := u.payments.UpsertMethod(ctx, m); err != nil {
		return nil, apperr.Internal("save payment method", err)
	}
	return m, nil
}

func (u *Usecase) PaymentMethod(ctx context.Context, actor user.Actor) (*payment.Method, error) {
	if actor.Role != user.RoleCustomer {
		return nil, apperr.Forbidden("payment methods are available to customers only")
	}
	m, err := u.payments.GetMethodByUserID(ctx, actor.ID)
	if errors.Is(err, payment.ErrMethodNotFound) {
		return nil, apperr.NotFound("no saved payment method")
	}
	if err != nil {
		return nil, apperr.Internal("load payment method", err)
	}
	return m, nil
}
