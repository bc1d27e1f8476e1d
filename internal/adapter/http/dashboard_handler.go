package http

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"underwriting-backend/internal/domain/audit"
	"underwriting-backend/internal/domain/user"
	"underwriting-backend/internal/usecase/dashboard"
)

type DashboardHandler struct{ uc *dashboard.Usecase }

func NewDashboardHandler(uc *dashboard.Usecase) *DashboardHandler {
	return &DashboardHandler{uc: uc}
}

// Dashboard serves the caller's own role view.
func (h *DashboardHandler) Dashboard(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	ctx := c.Request().Context()
	var view any
	switch actor.Role {
	case user.RoleCustomer:
		view, err = h.uc.Customer(ctx, actor)
	case user.RoleAnalyst:
		view, err = h.uc.Analyst(ctx, actor)
	case user.RoleUnderwriter:
		view, err = h.uc.Underwriter(ctx, actor)
	case user.RoleAuditor:
		view, err = h.uc.Auditor(ctx, actor)
	case user.RoleAdmin:
		view, err = h.uc.Admin(ctx, actor)
	default:
		return c.JSON(http.StatusForbidden, ErrorResponse{Error: "unknown role"})
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// AuditEvents filters by ?action=&role=&application_id=&limit=.
func (h *DashboardHandler) AuditEvents(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	limit, err := queryInt(c, "limit")
	if err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "invalid limit",
			Details: []FieldError{{Field: "limit", Message: "must be an integer"}},
		})
	}
	events, err := h.uc.ListAuditEvents(c.Request().Context(), actor, audit.Filter{
		Action:        audit.Action(c.QueryParam("action")),
		ActorRole:     user.Role(c.QueryParam("role")),
		ApplicationID: c.QueryParam("application_id"),
		Limit:         limit,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"events": events, "count": len(events)})
}

func (h *DashboardHandler) ApplicationAudit(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	events, err := h.uc.ApplicationAudit(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"application_id": c.Param("id"), "events": events})
}

func (h *DashboardHandler) Integrity(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	report, err := h.uc.IntegrityCheck(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, report)
}
