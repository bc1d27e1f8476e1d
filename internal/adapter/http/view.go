package http

import (
	domain "underwriting-backend/internal/domain/application"
	appuc "underwriting-backend/internal/usecase/application"
)

// applicationView adds the premium band, which the entity keeps in
// separate nullable columns.
type applicationView struct {
	*domain.Application
	PremiumRange *domain.PremiumRange `json:"premium_range,omitempty"`
}

func viewOf(a *domain.Application) *applicationView {
	if a == nil {
		return nil
	}
	return &applicationView{Application: a, PremiumRange: a.PremiumRange()}
}

func viewsOf(list []domain.Application) []*applicationView {
	out := make([]*applicationView, 0, len(list))
	for i := range list {
		out = append(out, viewOf(&list[i]))
	}
	return out
}

type detailsView struct {
	*appuc.Details
	Application *applicationView `json:"application"`
}

func detailsOf(d *appuc.Details) *detailsView {
	return &detailsView{Details: d, Application: viewOf(d.Application)}
}

type verificationView struct {
	*appuc.VerificationResult
	Application *applicationView `json:"application"`
}
