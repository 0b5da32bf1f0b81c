// OrderBridge - Online Ordering and POS Integration
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/orderbridge

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/orderbridge/internal/api"
	"github.com/tomtom215/orderbridge/internal/audit"
	"github.com/tomtom215/orderbridge/internal/auth"
	"github.com/tomtom215/orderbridge/internal/authz"
	"github.com/tomtom215/orderbridge/internal/config"
	"github.com/tomtom215/orderbridge/internal/database"
	"github.com/tomtom215/orderbridge/internal/logging"
	"github.com/tomtom215/orderbridge/internal/posservice"
	"github.com/tomtom215/orderbridge/internal/retryqueue"
	"github.com/tomtom215/orderbridge/internal/supervisor"
	"github.com/tomtom215/orderbridge/internal/supervisor/services"
	"github.com/tomtom215/orderbridge/internal/webhook"
	ws "github.com/tomtom215/orderbridge/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=<tag>".
var version = "dev"

// Pending webhook rows whose last dispatch is older than redispatchMinAge
// are published again on this schedule.
const (
	redispatchInterval = 5 * time.Minute
	redispatchMinAge   = 2 * time.Minute
)

func main() {
	mintSubject := flag.String("mint-token", "", "print an admin API token for this subject and exit")
	mintRole := flag.String("role", auth.RoleAdmin, "role for -mint-token (admin or operator)")
	mintTTL := flag.Duration("ttl", 30*24*time.Hour, "lifetime for -mint-token")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		Caller:      cfg.Logging.Caller,
		Timestamp:   true,
		Version:     version,
		Environment: cfg.Server.Environment,
	})

	if *mintSubject != "" {
		if err := mintToken(cfg, *mintSubject, *mintRole, *mintTTL); err != nil {
			logging.Fatal().Err(err).Msg("Failed to mint token")
		}
		return
	}

	logging.Info().
		Str("environment", cfg.Server.Environment).
		Str("pos_vendor", cfg.POS.Vendor).
		Str("webhook_transport", cfg.Webhook.Transport).
		Str("auth_mode", cfg.Security.AuthMode).
		Msg("Starting OrderBridge")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("OrderBridge stopped with error")
	}
	logging.Info().Msg("OrderBridge stopped")
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(&cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer closeWithLog("database", db.Close)

	auditStore := audit.NewDuckDBStore(db.Conn())
	if err := auditStore.CreateTable(ctx); err != nil {
		return fmt.Errorf("init audit store: %w", err)
	}
	auditLogger := audit.NewLogger(auditStore, audit.DefaultConfig())
	defer closeWithLog("audit logger", auditLogger.Close)

	queue, err := retryqueue.Open(cfg.RetryQueue)
	if err != nil {
		return fmt.Errorf("open retry queue: %w", err)
	}
	defer closeWithLog("retry queue", queue.Close)

	hub := ws.NewHub()

	transport, err := webhook.NewTransport(ctx, cfg.Webhook)
	if err != nil {
		return fmt.Errorf("init webhook transport: %w", err)
	}
	defer closeWithLog("webhook transport", transport.Close)

	processor := webhook.NewProcessor(db, auditLogger, hub)
	eventRouter := webhook.NewEventRouter(cfg.Webhook, transport, processor)
	receiver := webhook.NewReceiver(db, webhook.NewDispatcher(transport.Publisher, cfg.Webhook.Topic))

	registry, closeProviders, err := buildRegistry(ctx, cfg, db, receiver)
	if err != nil {
		return err
	}
	defer closeProviders()

	svc := posservice.New(posservice.Deps{
		Registry:  registry,
		Orders:    db,
		Menus:     db,
		Locations: db,
		SyncLogs:  db,
		Queue:     queue,
		Auditor:   auditLogger,
		Notifier:  hub,
	})

	authMW, err := buildAuth(cfg, auditLogger)
	if err != nil {
		return err
	}
	enforcer, err := authz.NewEnforcer(authz.EnforcerConfig{
		PolicyPath: cfg.Security.AuthzPolicyPath,
		CacheTTL:   cfg.Security.AuthzCacheTTL,
	})
	if err != nil {
		return fmt.Errorf("init authorization: %w", err)
	}
	defer enforcer.Close()
	if cfg.Security.AuthzPolicyPath != "" {
		logging.Info().Str("path", cfg.Security.AuthzPolicyPath).Msg("Loaded authorization policy file")
	}

	router := api.NewRouter(api.RouterDeps{
		Handler:    api.NewHandler(svc, queue, db, auditLogger),
		Middleware: api.NewChiMiddleware(api.ChiMiddlewareConfigFrom(cfg.Security)),
		Auth:       authMW,
		Authz:      authz.NewMiddleware(enforcer, auditLogger),
		Webhook:    webhook.NewHandler(receiver, registry, cfg.POS.WebhookSecret, cfg.Webhook.MaxBodyBytes, auditLogger),
		OrderFeed:  ws.NewHandler(hub, cfg.Security.CORSOrigins),
	})
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       2 * time.Minute,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}

	tree.AddDataService(retryqueue.NewSweeper(queue, svc, cfg.RetryQueue.SweepInterval))
	tree.AddDataService(auditLogger)
	tree.AddMessagingService(eventRouter)
	tree.AddMessagingService(hub)
	tree.AddMessagingService(services.NewPeriodicService("webhook-redispatch", redispatchInterval, false,
		func(ctx context.Context) error {
			_, err := receiver.RedispatchPending(ctx, db, redispatchMinAge)
			return err
		}))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	// Rows accepted before a restart are replayed once the router consumes.
	go func() {
		select {
		case <-ctx.Done():
		case <-eventRouter.Ready():
			if _, err := receiver.RedispatchPending(ctx, db, 0); err != nil {
				logging.Error().Err(err).Msg("Startup webhook redispatch failed")
			}
		}
	}()

	err = tree.Serve(ctx)
	if report, rerr := tree.UnstoppedServiceReport(); rerr == nil && len(report) > 0 {
		for _, s := range report {
			logging.Warn().Str("service", s.Name).Msg("Service did not stop within shutdown timeout")
		}
	}
	if err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func buildAuth(cfg *config.Config, auditor auth.Auditor) (*auth.Middleware, error) {
	if cfg.Security.AuthMode != auth.ModeJWT {
		logging.Warn().Msg("Admin API authentication is disabled (AUTH_MODE=none)")
		return auth.NewMiddleware(auth.ModeNone, nil, auditor), nil
	}
	jwtManager, err := auth.NewJWTManager(cfg.Security.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("init jwt: %w", err)
	}
	logging.Info().Msg("Admin API JWT authentication enabled")
	return auth.NewMiddleware(auth.ModeJWT, jwtManager, auditor), nil
}

func mintToken(cfg *config.Config, subject, role string, ttl time.Duration) error {
	if role != auth.RoleAdmin && role != auth.RoleOperator {
		return fmt.Errorf("unknown role %q", role)
	}
	m, err := auth.NewJWTManager(cfg.Security.JWTSecret)
	if err != nil {
		return err
	}
	token, err := m.GenerateToken(subject, role, ttl)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(os.Stdout, token)
	return err
}

func closeWithLog(name string, fn func() error) {
	if err := fn(); err != nil {
		logging.Error().Err(err).Str("component", name).Msg("Close failed")
	}
}
