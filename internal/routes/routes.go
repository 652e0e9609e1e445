package routes

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/congo-pay/bankcore/internal/account"
	"github.com/congo-pay/bankcore/internal/config"
	"github.com/congo-pay/bankcore/internal/consent"
	"github.com/congo-pay/bankcore/internal/handshake"
	"github.com/congo-pay/bankcore/internal/metrics"
	"github.com/congo-pay/bankcore/internal/middleware"
	"github.com/congo-pay/bankcore/internal/notification"
	"github.com/congo-pay/bankcore/internal/payment"
	"github.com/congo-pay/bankcore/internal/resilience"
	"github.com/congo-pay/bankcore/internal/vendor"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Logger *slog.Logger
	// Metrics receives the application collectors; a fresh registry is used when nil.
	Metrics *prometheus.Registry
	// Registry holds the accounts; a fresh registry is used when nil.
	Registry *account.Registry
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though config also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.Env)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.Env)
		}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if d.Metrics == nil {
		d.Metrics = prometheus.NewRegistry()
	}
	if d.Registry == nil {
		d.Registry = account.NewRegistry()
	}

	recorder, err := metrics.NewPrometheus("bankcore", d.Metrics)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	// Middlewares
	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
	}

	RegisterHealthRoutes(app, d)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Metrics, promhttp.HandlerOpts{})))

	// Services and handlers
	accountSvc := account.NewService(d.Registry, d.Logger, recorder)

	pipeline, grants, err := buildPipeline(d, recorder)
	if err != nil {
		return err
	}

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals(middleware.RequestIDHeader).(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	RegisterAccountRoutes(api, account.NewHandler(accountSvc))
	RegisterPaymentRoutes(api, payment.NewHandler(pipeline))
	RegisterConsentRoutes(api, consent.NewHandler(grants))

	return nil
}

// buildPipeline picks capability backends from the available infrastructure
// and guards each with a circuit breaker.
func buildPipeline(d Deps, recorder metrics.Recorder) (*payment.Pipeline, consent.Granter, error) {
	vendors, err := vendor.ParseList(d.Cfg.Vendors)
	if err != nil {
		return nil, nil, fmt.Errorf("parse VENDORS: %w", err)
	}
	memDir := vendor.NewMemoryDirectory(vendors...)

	var directory payment.VendorDirectory = memDir
	if d.DB != nil {
		directory = vendor.NewPostgresDirectory(d.DB, d.Logger)
	}

	var channel payment.SecureChannel
	if endpoints := memDir.Endpoints(); len(endpoints) > 0 || !d.Cfg.IsDev() {
		channel = handshake.NewTLSChannel(endpoints,
			handshake.WithTimeout(d.Cfg.CapabilityTimeout),
			handshake.WithLogger(d.Logger),
		)
	} else {
		d.Logger.Warn("no vendor endpoints configured, secure handshake is simulated")
		channel = handshake.Static{Outcome: payment.Ok()}
	}

	var grants interface {
		consent.Granter
		payment.ConsentService
	}
	if d.Cache != nil {
		grants = consent.NewRedisGrants(d.Cache, 0, d.Logger)
	} else {
		grants = consent.NewMemoryGrants()
	}

	breaker := resilience.Config{
		Timeout:     d.Cfg.CapabilityTimeout,
		MaxFailures: d.Cfg.BreakerMaxFailures,
		OpenTimeout: d.Cfg.BreakerOpenTimeout,
	}

	notifiers := notification.Fanout{notification.NewLoggerNotifier(d.Logger)}
	if d.Cache != nil {
		notifiers = append(notifiers, notification.NewRedisNotifier(d.Cache, d.Cfg.ConfirmationChannel))
	}

	pipeline, err := payment.NewPipeline(
		payment.NewValidator(),
		resilience.NewVendorDirectory(directory, breaker, d.Logger, recorder),
		resilience.NewSecureChannel(channel, breaker, d.Logger, recorder),
		resilience.NewConsentService(grants, breaker, d.Logger, recorder),
		payment.WithNotifier(notifiers),
		payment.WithLogger(d.Logger),
		payment.WithMetrics(recorder),
	)
	if err != nil {
		return nil, nil, err
	}
	return pipeline, grants, nil
}

// RegisterAccountRoutes wires ledger endpoints.
func RegisterAccountRoutes(r fiber.Router, h *account.Handler) {
	r.Post("/accounts", h.Create)
	r.Get("/accounts", h.List)
	r.Get("/accounts/:accountId", h.Get)
	r.Delete("/accounts/:accountId", h.Delete)
	r.Post("/accounts/:accountId/deposit", h.Deposit)
	r.Post("/accounts/:accountId/withdraw", h.Withdraw)
	r.Post("/accounts/:accountId/transfer", h.Transfer)
}

// RegisterPaymentRoutes wires payment endpoints.
func RegisterPaymentRoutes(r fiber.Router, h *payment.Handler) {
	r.Post("/payments", h.Process)
}

// RegisterConsentRoutes wires consent management endpoints.
func RegisterConsentRoutes(r fiber.Router, h *consent.Handler) {
	r.Put("/consents/:payerId", h.Grant)
	r.Delete("/consents/:payerId", h.Revoke)
}
