package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"underwriting-backend/internal/domain/apperr"
	"underwriting-backend/internal/domain/document"
	appuc "underwriting-backend/internal/usecase/application"
)

// ApplicationHandler exposes the lifecycle manager to every role; the use
// case decides who may do what.
type ApplicationHandler struct{ uc *appuc.Usecase }

func NewApplicationHandler(uc *appuc.Usecase) *ApplicationHandler {
	return &ApplicationHandler{uc: uc}
}

type applicationDataReq struct {
	Data map[string]any `json:"data"`
}

func (h *ApplicationHandler) Create(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	var req applicationDataReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	a, err := h.uc.Create(c.Request().Context(), actor, req.Data)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, viewOf(a))
}

func (h *ApplicationHandler) Update(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	var req applicationDataReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	a, err := h.uc.Update(c.Request().Context(), actor, c.Param("id"), req.Data)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(a))
}

func (h *ApplicationHandler) Submit(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	a, err := h.uc.Submit(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(a))
}

func (h *ApplicationHandler) Details(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	d, err := h.uc.GetDetails(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, detailsOf(d))
}

type requestInfoReq struct {
	Message string `json:"message" validate:"required"`
}

func (h *ApplicationHandler) RequestInfo(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	var req requestInfoReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	m, err := h.uc.RequestInfo(c.Request().Context(), actor, c.Param("id"), req.Message)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, m)
}

type markReadyReq struct {
	Ready *bool `json:"ready"`
}

func (h *ApplicationHandler) MarkReady(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	var req markReadyReq
	if err := c.Bind(&req); err != nil {
		return badBody(c)
	}
	ready := true
	if req.Ready != nil {
		ready = *req.Ready
	}
	a, err := h.uc.MarkReadyForScoring(c.Request().Context(), actor, c.Param("id"), ready)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(a))
}

func (h *ApplicationHandler) Verify(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	res, err := h.uc.VerifyDocuments(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, verificationView{VerificationResult: res, Application: viewOf(res.Application)})
}

func (h *ApplicationHandler) AnalystApprove(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	a, err := h.uc.AnalystApprove(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(a))
}

type rejectReq struct {
	Reason string `json:"reason" validate:"required"`
}

func (h *ApplicationHandler) AnalystReject(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	var req rejectReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	a, err := h.uc.AnalystReject(c.Request().Context(), actor, c.Param("id"), req.Reason)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(a))
}

type decisionReq struct {
	Decision      string           `json:"decision" validate:"required,oneof=approve decline pend"`
	Reason        string           `json:"reason"`
	PremiumAmount *decimal.Decimal `json:"premium_amount" validate:"omitempty,money"`
}

func (h *ApplicationHandler) Decide(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	var req decisionReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	a, err := h.uc.MakeDecision(c.Request().Context(), actor, appuc.DecisionInput{
		ApplicationID: c.Param("id"),
		Decision:      appuc.Decision(req.Decision),
		Reason:        req.Reason,
		PremiumAmount: req.PremiumAmount,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, viewOf(a))
}

func (h *ApplicationHandler) Risk(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	v, err := h.uc.RiskAssessment(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, v)
}

// Upload takes multipart form field "file" plus optional "type".
func (h *ApplicationHandler) Upload(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
			Error:   "validation failed",
			Details: []FieldError{{Field: "file", Message: "is required"}},
		})
	}
	if fh.Size > appuc.MaxDocumentSize {
		return writeError(c, apperr.Validation("file too large", apperr.FieldError{Field: "file", Message: "must be at most 10MB"}))
	}
	f, err := fh.Open()
	if err != nil {
		return badBody(c)
	}
	defer f.Close()
	content, err := io.ReadAll(io.LimitReader(f, appuc.MaxDocumentSize+1))
	if err != nil {
		return badBody(c)
	}

	docID, err := h.uc.UploadDocument(c.Request().Context(), actor, appuc.UploadInput{
		ApplicationID: c.Param("id"),
		Type:          document.Type(c.FormValue("type")),
		Filename:      fh.Filename,
		ContentType:   fh.Header.Get(echo.HeaderContentType),
		Content:       content,
	})
	if err != nil {
		if docID != "" && errors.Is(err, apperr.ErrInternal) {
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: apperr.MessageOf(err), DocumentID: docID})
		}
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]string{"document_id": docID})
}

func (h *ApplicationHandler) Pay(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	res, err := h.uc.Pay(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	code := http.StatusCreated
	if res.AlreadyPaid {
		code = http.StatusOK
	}
	return c.JSON(code, res)
}

func (h *ApplicationHandler) Receipt(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	p, err := h.uc.PaymentReceipt(c.Request().Context(), actor, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}

type paymentMethodReq struct {
	Brand    string `json:"brand"`
	Last4    string `json:"last4" validate:"required,last4"`
	ExpMonth int    `json:"exp_month" validate:"gte=1,lte=12"`
	ExpYear  int    `json:"exp_year" validate:"required"`
	Name     string `json:"name" validate:"required"`
}

func (h *ApplicationHandler) SavePaymentMethod(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	var req paymentMethodReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	m, err := h.uc.SavePaymentMethod(c.Request().Context(), actor, appuc.MethodInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func (h *ApplicationHandler) PaymentMethod(c echo.Context) error {
	actor, ok, err := actorOf(c)
	if !ok {
		return err
	}
	m, err := h.uc.PaymentMethod(c.Request().Context(), actor)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, m)
}

func queryInt(c echo.Context, name string) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
