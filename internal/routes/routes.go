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
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"

	"github.com/congo-pay/hoard_token/internal/config"
	"github.com/congo-pay/hoard_token/internal/events"
	"github.com/congo-pay/hoard_token/internal/ledger"
	"github.com/congo-pay/hoard_token/internal/middleware"
	"github.com/congo-pay/hoard_token/internal/observability"
	"github.com/congo-pay/hoard_token/internal/token"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg    config.Config
	DB     *pgxpool.Pool
	Cache  *redis.Client
	Events *kafka.Writer
	Logger *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	// Enforce DB/Redis presence outside of dev, even though config also checks.
	if !d.Cfg.IsDev() {
		if d.DB == nil {
			return fmt.Errorf("database is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
		if d.Cache == nil {
			return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
		}
	}

	metrics := observability.NewMetrics(d.Cfg.MetricsNamespace)

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.Audit(d.Logger))
	if d.Cache != nil {
		app.Use(middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger))
		app.Use(middleware.RateLimit(d.Cache, d.Cfg.RateLimitPerMinute))
	}

	RegisterHealthRoutes(app, d)
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	var ledgerBackend ledger.Ledger
	if d.DB != nil {
		ledgerBackend = ledger.NewPostgresLedger(d.DB)
	} else {
		ledgerBackend = ledger.NewInMemory()
	}

	var publisher events.Publisher
	if d.Events != nil {
		publisher = events.NewKafkaPublisher(d.Events)
	} else {
		publisher = events.NewLoggerPublisher(d.Logger)
	}

	tokenSvc := token.NewService(ledgerBackend, publisher, metrics, d.Logger)
	tokenHandler := token.NewHandler(tokenSvc)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		reqID, _ := c.Locals("X-Request-ID").(string)
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": reqID,
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})
	RegisterTokenRoutes(api, tokenHandler)

	return nil
}
