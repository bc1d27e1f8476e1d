package application

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"underwriting-backend/internal/domain/apperr"
	domain "underwriting-backend/internal/domain/application"
	"underwriting-backend/internal/domain/risk"
	"underwriting-backend/internal/domain/uow"
	"underwriting-backend/internal/domain/user"
)

var decisionActions = map[Decision]domain.Action{
	DecisionApprove: domain.ActionApprove,
	DecisionDecline: domain.ActionDecline,
	DecisionPend:    domain.ActionPend,
}

// MakeDecision records the underwriter's verdict. Every decision stores the
// current risk score; approve/decline with an amount set a ±10% premium band
// around it, approve without one takes the risk-based estimate.
func (u *Usecase) MakeDecision(ctx context.Context, actor user.Actor, in DecisionInput) (*domain.Application, error) {
	if actor.Role != user.RoleUnderwriter {
		return nil, apperr.Forbidden("decisions require role %s", user.RoleUnderwriter)
	}
	decision := Decision(strings.ToLower(strings.TrimSpace(string(in.Decision))))
	action, ok := decisionActions[decision]
	if !ok {
		return nil, apperr.Validation("invalid decision",
			apperr.FieldError{Field: "decision", Message: "must be one of approve, decline, pend"})
	}
	if in.PremiumAmount != nil && in.PremiumAmount.IsNegative() {
		return nil, apperr.Validation("invalid premium amount",
			apperr.FieldError{Field: "premium_amount", Message: "must be greater than or equal to 0"})
	}

	a, err := u.transition(ctx, actor, action, in.ApplicationID, func(_ uow.Repos, a *domain.Application) (map[string]any, error) {
		assessment := u.engine.Calculate(a.Data)
		score := assessment.Score
		a.RiskScore = &score
		a.UnderwriterID = actor.ID
		a.DecisionReason = strings.TrimSpace(in.Reason)
		u.metrics.ObserveRiskScore(risk.WeightedLine(assessment.Type), score)

		payload := map[string]any{
			"decision":   string(decision),
			"reason":     a.DecisionReason,
			"risk_score": score,
		}
		if decision == DecisionPend {
			return payload, nil
		}
		now := u.now().UTC()
		a.DecidedAt = &now

		hasAmount := in.PremiumAmount != nil && in.PremiumAmount.IsPositive()
		switch {
		case hasAmount:
			band := risk.BandAround(*in.PremiumAmount)
			a.SetPremiumRange(domain.PremiumRange{Min: band.Min, Max: band.Max})
			a.FinalPremium = decimal.NewNullDecimal(band.Recommended)
			payload["premium_amount"] = band.Recommended.String()
		case decision == DecisionApprove:
			est := risk.EstimatePremium(assessment.Type, score)
			a.SetPremiumRange(domain.PremiumRange{Min: est.Min, Max: est.Max, Recommended: &est.Recommended})
			a.FinalPremium = decimal.NewNullDecimal(est.Recommended)
			payload["premium_amount"] = est.Recommended.String()
		}
		return payload, nil
	})
	if err != nil {
		return nil, err
	}

	switch decision {
	case DecisionApprove:
		u.notify(ctx, a.ApplicationID, user.RoleUnderwriter,
			"Good news: application "+a.ApplicationID+" is approved. Final premium: "+a.FinalPremium.Decimal.StringFixed(2)+".")
	case DecisionDecline:
		u.notify(ctx, a.ApplicationID, user.RoleUnderwriter, "Application "+a.ApplicationID+" was declined: "+a.DecisionReason)
	case DecisionPend:
		u.notify(ctx, a.ApplicationID, user.RoleUnderwriter, "Application "+a.ApplicationID+" is under further underwriting review.")
	}
	return a, nil
}

// RiskAssessment scores an application for review without changing it.
func (u *Usecase) RiskAssessment(ctx context.Context, actor user.Actor, appID string) (*RiskView, error) {
	if actor.Role != user.RoleUnderwriter && actor.Role != user.RoleAnalyst {
		return nil, apperr.Forbidden("risk assessment requires underwriter or analyst role")
	}
	a, err := u.apps.GetByApplicationID(ctx, appID)
	if err != nil {
		return nil, mapStoreErr(appID, err)
	}
	assessment := u.engine.Calculate(a.Data)
	return &RiskView{
		ApplicationID: a.ApplicationID,
		Assessment:    assessment,
		Premium:       risk.EstimatePremium(assessment.Type, assessment.Score),
	}, nil
}
