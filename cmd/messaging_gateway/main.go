package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	reportapp "github.com/Code67TechSolutions/infobip-scripts/internal/delivery_report_service/app"
	"github.com/Code67TechSolutions/infobip-scripts/internal/identity_service/adapters/cache"
	identityapp "github.com/Code67TechSolutions/infobip-scripts/internal/identity_service/app"
	identitydomain "github.com/Code67TechSolutions/infobip-scripts/internal/identity_service/domain"
	identitypg "github.com/Code67TechSolutions/infobip-scripts/internal/identity_service/repository/postgres"
	inboundapp "github.com/Code67TechSolutions/infobip-scripts/internal/inbound_processor_service/app"
	ledgerapp "github.com/Code67TechSolutions/infobip-scripts/internal/ledger/app"
	ledgerdomain "github.com/Code67TechSolutions/infobip-scripts/internal/ledger/domain"
	ledgerpg "github.com/Code67TechSolutions/infobip-scripts/internal/ledger/repository/postgres"
	outboundapp "github.com/Code67TechSolutions/infobip-scripts/internal/outbound_service/app"
	"github.com/Code67TechSolutions/infobip-scripts/internal/outbound_service/provider"
	"github.com/Code67TechSolutions/infobip-scripts/internal/platform/config"
	"github.com/Code67TechSolutions/infobip-scripts/internal/platform/database"
	"github.com/Code67TechSolutions/infobip-scripts/internal/platform/logger"
	"github.com/Code67TechSolutions/infobip-scripts/internal/platform/messagebroker"
	httptransport "github.com/Code67TechSolutions/infobip-scripts/internal/public_api_service/transport/http"
)

const (
	serviceName     = "messaging_gateway"
	shutdownTimeout = 15 * time.Second
)

func main() {
	mainCtx, mainCancel := context.WithCancel(context.Background())
	defer mainCancel()

	cfg, err := config.Load(serviceName)
	if err != nil {
		slog.Error("Failed to load configuration", "service", serviceName, "error", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.LogLevel).With("service", serviceName)
	appLogger.Info("Starting service...",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"postgres_dsn_present", cfg.PostgresDSN != "",
		"redis_enabled", cfg.RedisAddr != "",
	)

	dbPool, err := database.NewDBPool(mainCtx, cfg.PostgresDSN)
	if err != nil {
		appLogger.Error("Failed to initialize database connection pool", "error", err)
		os.Exit(1)
	}
	defer dbPool.Close()
	appLogger.Info("Database connection pool initialized")

	var publisher messagebroker.Publisher = messagebroker.NopPublisher{}
	natsClient, err := messagebroker.NewNatsClient(cfg.NATSUrl, serviceName, appLogger)
	if err != nil {
		appLogger.Warn("NATS unavailable, ledger events will not be published", "error", err)
	} else {
		defer natsClient.Close()
		publisher = natsClient
		appLogger.Info("NATS connection initialized")
	}

	// Ledger
	outboundRepo := ledgerpg.NewPgOutboundRepository(dbPool, appLogger)
	inboundRepo := ledgerpg.NewPgInboundRepository(dbPool, appLogger)
	conversationRepo := ledgerpg.NewPgConversationRepository(dbPool, appLogger)
	historySvc := ledgerapp.NewHistoryAppService(outboundRepo, inboundRepo, conversationRepo, appLogger)

	// Identity
	var members identitydomain.MemberDirectory = identitypg.NewPgMemberDirectory(dbPool, appLogger)
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		})
		defer redisClient.Close()
		if err := redisClient.Ping(mainCtx).Err(); err != nil {
			appLogger.Warn("Redis ping failed, member cache will fall back to postgres", "addr", cfg.RedisAddr, "error", err)
		}
		members = cache.NewCachedMemberDirectory(redisClient, members, cfg.MemberCacheTTL(), appLogger)
	}
	resolver := identityapp.NewResolver(members, appLogger)
	backfiller := identityapp.NewBackfiller(dbPool,
		func(db database.Querier) ledgerdomain.InboundRepository { return ledgerpg.NewPgInboundRepository(db, appLogger) },
		func(db database.Querier) identitydomain.MemberDirectory { return identitypg.NewPgMemberDirectory(db, appLogger) },
		appLogger,
	)

	// Outbound
	infobip := provider.NewInfobipClient(providerConfig(cfg), &http.Client{Timeout: cfg.ProviderTimeout()}, appLogger)
	messagingSvc := outboundapp.NewMessagingAppService(infobip, outboundRepo, appLogger)
	renewal := outboundapp.NewRenewalNotifier(messagingSvc, outboundapp.RenewalConfig{
		WhatsAppTemplate: cfg.RenewalWhatsAppTemplate,
		WhatsAppText:     cfg.RenewalWhatsAppText,
		EmailSubject:     cfg.RenewalEmailSubject,
		EmailText:        cfg.RenewalEmailText,
	}, appLogger)

	// Webhooks
	reconciler := reportapp.NewReportReconciler(outboundRepo, publisher, appLogger)
	intake := inboundapp.NewIntakeProcessor(inboundRepo, resolver, publisher, appLogger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Messaging: httptransport.NewMessagingHandler(messagingSvc, renewal, appLogger),
		History:   httptransport.NewHistoryHandler(historySvc, backfiller, appLogger),
		Webhooks:  httptransport.NewWebhookHandler(reconciler, intake, appLogger),
		JWTSecret: cfg.JWTSecret,
		Database:  dbPool,
		Logger:    appLogger,
	})

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)

	g, groupCtx := errgroup.WithContext(mainCtx)

	g.Go(func() error {
		appLogger.Info("HTTP server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
		if err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		appLogger.Info("gRPC health server listening", "addr", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("grpc server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-groupCtx.Done()
		healthServer.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			appLogger.Error("HTTP server shutdown failed", "error", err)
		}
		grpcServer.GracefulStop()
		return nil
	})

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		appLogger.Info("Received termination signal", "signal", sig.String())
	case <-groupCtx.Done():
		appLogger.Error("A critical component failed, initiating shutdown")
	}
	mainCancel()

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		appLogger.Error("Service stopped with error", "error", err)
		os.Exit(1)
	}
	appLogger.Info("Service shutdown complete.")
}

// providerConfig resolves notify paths against the public app URL once at startup.
func providerConfig(cfg *config.Config) provider.Config {
	return provider.Config{
		SMSURL:                cfg.InfobipSMSURL,
		SMSAPIKey:             cfg.InfobipSMSAPIKey,
		SMSSender:             cfg.InfobipSMSSender,
		WhatsAppURL:           cfg.InfobipWhatsAppURL,
		WhatsAppAPIKey:        cfg.InfobipWhatsAppAPIKey,
		WhatsAppServiceNumber: cfg.InfobipWhatsAppServiceNumber,
		WhatsAppNotifyURL:     cfg.AppURL + cfg.InfobipWhatsAppNotifyPath,
		WhatsAppLanguage:      cfg.InfobipWhatsAppLanguage,
		EmailURL:              cfg.InfobipEmailURL,
		EmailAPIKey:           cfg.InfobipEmailAPIKey,
		EmailFrom:             cfg.InfobipEmailFrom,
		EmailFromName:         cfg.InfobipEmailFromName,
		EmailNotifyURL:        cfg.AppURL + cfg.InfobipEmailNotifyPath,
	}
}
