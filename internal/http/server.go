package http

import (
	"context"
	"log"
	"net/http"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"
	echoMid "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/qtix/ticket-gateway/internal/audit"
	"github.com/qtix/ticket-gateway/internal/config"
	"github.com/qtix/ticket-gateway/internal/credential"
	"github.com/qtix/ticket-gateway/internal/event"
	"github.com/qtix/ticket-gateway/internal/mailer"
	"github.com/qtix/ticket-gateway/internal/metrics"
	"github.com/qtix/ticket-gateway/internal/repository"
	"github.com/qtix/ticket-gateway/internal/service/fulfillment"
	"github.com/redis/go-redis/v9"
)

type Server struct{ e *echo.Echo }

// NewServer wires the full pipeline. rds and chDB are optional (nil when
// the corresponding config section is disabled).
func NewServer(cfg config.Config, mysqlDB *sqlx.DB, rds *redis.Client, chDB *sqlx.DB) (*Server, error) {
	ticketsRepo := repository.NewTicketsRepository(mysqlDB)

	enc, err := credential.NewEncoder(
		cfg.Credential.Key,
		cfg.Credential.IV,
		cfg.Credential.Mode,
		cfg.Credential.QRSize,
	)
	if err != nil {
		return nil, err
	}

	mail, err := mailer.New(mailer.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
		Timeout:  cfg.Mail.Timeout,
		Currency: cfg.Mail.Currency,
	})
	if err != nil {
		return nil, err
	}

	var trail audit.Trail = audit.NewMemoryTrail(256)
	if chDB != nil {
		trail = audit.NewStoreTrail(repository.NewEventsRepository(chDB))
	}

	var dedup fulfillment.Deduper
	if rds != nil {
		dedup = fulfillment.NewRedisDeduper(rds)
	}

	svc := fulfillment.New(ticketsRepo, mail, enc, trail, dedup, cfg.Mail.Timeout)
	extractor := event.New(cfg.Webhook.TargetPageID)

	// echo
	e := echo.New()
	e.HideBanner = true
	e.Use(echoMid.Recover(), echoMid.Logger())

	metrics.MustRegister(prometheus.DefaultRegisterer)

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// health
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })

	// routes
	e.POST("/webhook", webhookHandler(cfg.Webhook.Secret, extractor, svc))
	e.GET("/webhook", livenessHandler())
	e.GET("/v1/events", listEventsHandler(trail))

	return &Server{e: e}, nil
}

func (s *Server) Start(addr string) error {
	log.Printf("http: listening on %s", addr)
	return s.e.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error { return s.e.Shutdown(ctx) }
