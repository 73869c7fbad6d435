package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/pgmeta/statext/internal/adapter/mcp"
	"github.com/pgmeta/statext/internal/adapter/postgres"
	"github.com/pgmeta/statext/internal/audit"
	"github.com/pgmeta/statext/internal/config"
	"github.com/pgmeta/statext/internal/core/domain"
	"github.com/pgmeta/statext/internal/core/port"
	"github.com/pgmeta/statext/internal/core/service"
	"github.com/pgmeta/statext/internal/policy"
	"github.com/pgmeta/statext/internal/telemetry"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Logs go to stderr — stdout is reserved for the MCP stdio transport.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	logger.Info("starting statext",
		slog.String("version", version),
		slog.String("log_level", cfg.LogLevel.String()),
		slog.String("ddl_timeout", cfg.DDLTimeout.String()),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Telemetry (optional). hooksTracer stays nil when disabled so the MCP
	// hooks skip span creation entirely.
	tracer := telemetry.NoopTracer()
	var hooksTracer trace.Tracer
	var inst port.Instrumentation = telemetry.NoopInstruments()
	if cfg.OTelEnabled {
		provider, err := telemetry.Init(ctx, "statext", version)
		if err != nil {
			return fmt.Errorf("initializing telemetry: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := provider.Shutdown(shutdownCtx); err != nil {
				logger.Error("telemetry shutdown", slog.String("error", err.Error()))
			}
		}()
		tracer = otel.Tracer("statext")
		hooksTracer = tracer
		inst = telemetry.NewInstruments()
		logger.Info("telemetry enabled")
	}

	pool, err := postgres.NewPool(ctx, cfg.DatabaseURL, postgres.PoolSettings{
		MaxConns:        cfg.PoolMaxConns,
		MinConns:        cfg.PoolMinConns,
		MaxConnLifetime: cfg.PoolMaxConnLifetime,
	})
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	logger.Info("database pool connected", slog.String("db.system", "postgresql"))

	if err := postgres.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrating catalog schema: %w", err)
	}

	// Adapters
	pgCatalog := postgres.NewCatalog(pool)
	var catalog port.CatalogStore = pgCatalog

	// Policy decorator (optional).
	if cfg.PolicyFile != "" {
		pol, err := policy.LoadFromFile(cfg.PolicyFile)
		if err != nil {
			return fmt.Errorf("loading policy: %w", err)
		}
		catalog = policy.NewGuardedCatalog(catalog, pol)
		logger.Info("policy loaded", slog.String("file", cfg.PolicyFile))
	}

	// Audit trail (optional).
	var auditor port.DDLAuditor = port.NoopAuditor{}
	if cfg.AuditLog != "" {
		fileAuditor, err := audit.NewFileAuditor(cfg.AuditLog)
		if err != nil {
			return fmt.Errorf("opening audit log: %w", err)
		}
		defer fileAuditor.Close()
		auditor = fileAuditor
		logger.Info("audit log enabled", slog.String("file", cfg.AuditLog))
	}

	user, err := pgCatalog.CurrentUser(ctx)
	if err != nil {
		return fmt.Errorf("resolving session user: %w", err)
	}
	sess := domain.Session{User: user}

	// Services
	statsSvc := service.NewStatisticsService(catalog, auditor, logger, tracer, inst, cfg.DDLTimeout)

	// MCP server with tool handlers.
	mcpServer := mcp.NewServer(version, statsSvc, sess, logger, hooksTracer, inst)

	// Run MCP over stdio (stdin/stdout).
	stdioServer := mcpserver.NewStdioServer(mcpServer)

	logger.Info("serving MCP over stdio", slog.String("session_user", user))
	if err := stdioServer.Listen(ctx, os.Stdin, os.Stdout); err != nil {
		return fmt.Errorf("stdio server: %w", err)
	}

	logger.Info("shutdown complete")
	return nil
}
