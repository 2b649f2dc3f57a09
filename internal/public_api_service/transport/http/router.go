package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chi_middleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	ledgerdomain "github.com/Code67TechSolutions/infobip-scripts/internal/ledger/domain"
	"github.com/Code67TechSolutions/infobip-scripts/internal/public_api_service/middleware"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig carries everything the public router needs.
type RouterConfig struct {
	Messaging *MessagingHandler
	History   *HistoryHandler
	Webhooks  *WebhookHandler
	JWTSecret string
	Database  Pinger
	Logger    *slog.Logger
}

// NewRouter builds the gateway's HTTP surface. Provider callbacks are mounted outside the
// authenticated group.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()
	r.Use(chi_middleware.RequestID)
	r.Use(chi_middleware.RealIP)
	r.Use(chi_middleware.Recoverer)
	r.Use(middleware.Metrics)
	r.Use(chi_middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler(cfg.Database, cfg.Logger))
	r.Handle("/metrics", promhttp.Handler())

	authMW := middleware.AuthMiddleware(cfg.JWTSecret, cfg.Logger)

	r.Route("/api/v1/infobip", func(api chi.Router) {
		api.Post("/sms/reports/outbound", cfg.Webhooks.handleReports(ledgerdomain.ChannelSMS))
		api.Post("/whatsapp/reports/outbound", cfg.Webhooks.handleReports(ledgerdomain.ChannelWhatsApp))
		api.Post("/whatsapp/messages/inbound", cfg.Webhooks.handleInbound(ledgerdomain.ChannelWhatsApp))
		api.Post("/email/reports/outbound", cfg.Webhooks.handleReports(ledgerdomain.ChannelEmail))

		api.Group(func(protected chi.Router) {
			protected.Use(authMW)

			protected.Post("/sms/send", cfg.Messaging.handleSendSMS)
			protected.Get("/sms/messages", cfg.History.handleMemberMessages(ledgerdomain.ChannelSMS, false))

			protected.Post("/whatsapp/send/template", cfg.Messaging.handleSendWhatsApp)
			protected.Post("/whatsapp/send/text", cfg.Messaging.handleSendWhatsApp)
			protected.Get("/whatsapp/messages", cfg.History.handleMemberMessages(ledgerdomain.ChannelWhatsApp, true))
			protected.Get("/whatsapp/history/outbound", cfg.History.handleOutboundAll(ledgerdomain.ChannelWhatsApp))
			protected.Get("/whatsapp/history/inbound", cfg.History.handleInboundAll(ledgerdomain.ChannelWhatsApp))
			protected.Get("/whatsapp/history/inbound/unregistered", cfg.History.handleInboundUnresolved(ledgerdomain.ChannelWhatsApp))
			protected.Get("/whatsapp/conversation", cfg.History.handleConversation(ledgerdomain.ChannelWhatsApp))
			protected.Get("/whatsapp/logs", cfg.History.handleLogs(ledgerdomain.ChannelWhatsApp))
			protected.Post("/whatsapp/members/backfill", cfg.History.handleBackfill(ledgerdomain.ChannelWhatsApp))

			protected.Post("/email/send/mail", cfg.Messaging.handleSendEmail)
			protected.Get("/email/messages", cfg.History.handleMemberMessages(ledgerdomain.ChannelEmail, false))

			protected.Post("/members/renewal-notification", cfg.Messaging.handleRenewalNotice)
		})
	})

	return r
}

func healthHandler(db Pinger, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := db.Ping(ctx); err != nil {
				logger.WarnContext(ctx, "Health check failed", "dependency", "postgres", "error", err)
				respondJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
