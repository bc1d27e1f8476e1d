package http

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"underwriting-backend/internal/adapter/middleware"
	"underwriting-backend/internal/infrastructure/metrics"
	appuc "underwriting-backend/internal/usecase/application"
	"underwriting-backend/internal/usecase/dashboard"
	useruc "underwriting-backend/internal/usecase/user"
)

type RouterDeps struct {
	Applications *appuc.Usecase
	Dashboards   *dashboard.Usecase
	Users        *useruc.Usecase
	Tokens       middleware.TokenParser
	DB           Pinger
	// Redis is optional; without it mutating routes run without replay protection.
	Redis          redis.Cmdable
	IdempotencyTTL time.Duration
	Metrics        *metrics.Metrics
	Logger         *slog.Logger
}

func NewRouter(d RouterDeps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()
	e.Use(echomw.Recover(), echomw.RequestID())
	if d.Logger != nil {
		e.Use(middleware.RequestLogger(d.Logger))
	}

	base := NewHandler(d.DB)
	e.GET("/health", base.Health)
	e.GET("/ready", base.Ready)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	users := NewUserHandler(d.Users)
	apps := NewApplicationHandler(d.Applications)
	dash := NewDashboardHandler(d.Dashboards)

	auth := middleware.JWTAuth(d.Tokens)
	var idem echo.MiddlewareFunc = func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	if d.Redis != nil {
		idem = middleware.Idempotency(d.Redis, d.IdempotencyTTL, d.Metrics)
	}

	a := e.Group("/auth")
	a.POST("/signup", users.Signup)
	a.POST("/login", users.Login)
	a.GET("/me", users.Me, auth)

	cu := e.Group("/customer", auth)
	cu.GET("/dashboard", dash.Dashboard)
	cu.POST("/applications", apps.Create, idem)
	cu.GET("/applications/:id", apps.Details)
	cu.PUT("/applications/:id", apps.Update)
	cu.POST("/applications/:id/submit", apps.Submit, idem)
	cu.POST("/applications/:id/documents", apps.Upload)
	cu.POST("/applications/:id/pay", apps.Pay, idem)
	cu.GET("/applications/:id/receipt", apps.Receipt)
	cu.GET("/payment-method", apps.PaymentMethod)
	cu.PUT("/payment-method", apps.SavePaymentMethod)

	an := e.Group("/analyst", auth)
	an.GET("/dashboard", dash.Dashboard)
	an.GET("/applications/:id", apps.Details)
	an.GET("/applications/:id/risk", apps.Risk)
	an.POST("/applications/:id/request-info", apps.RequestInfo)
	an.POST("/applications/:id/ready", apps.MarkReady)
	an.POST("/applications/:id/verify", apps.Verify)
	an.POST("/applications/:id/approve", apps.AnalystApprove)
	an.POST("/applications/:id/reject", apps.AnalystReject)
	an.POST("/applications/:id/documents", apps.Upload)

	uw := e.Group("/underwriter", auth)
	uw.GET("/dashboard", dash.Dashboard)
	uw.GET("/applications/:id", apps.Details)
	uw.GET("/applications/:id/risk", apps.Risk)
	uw.POST("/applications/:id/decision", apps.Decide, idem)

	au := e.Group("/auditor", auth)
	au.GET("/dashboard", dash.Dashboard)
	au.GET("/events", dash.AuditEvents)
	au.GET("/applications/:id/events", dash.ApplicationAudit)
	au.GET("/integrity", dash.Integrity)

	ad := e.Group("/admin", auth)
	ad.GET("/dashboard", dash.Dashboard)
	ad.GET("/users", users.List)
	ad.POST("/users", users.Create)
	ad.PUT("/users/:username/role", users.ChangeRole)
	ad.GET("/applications/:id", apps.Details)
	ad.POST("/applications/:id/documents", apps.Upload)

	return e
}
