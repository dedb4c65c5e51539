// Package app wires the storefront components together.
package app

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/storefront/internal/catalog"
	"github.com/abgdnv/storefront/internal/catalog/source"
	"github.com/abgdnv/storefront/internal/checkout"
	"github.com/abgdnv/storefront/internal/config"
	"github.com/abgdnv/storefront/internal/notify"
	"github.com/abgdnv/storefront/internal/platform/messaging"
	"github.com/abgdnv/storefront/internal/platform/server"
	"github.com/abgdnv/storefront/internal/receipt"
	"github.com/abgdnv/storefront/internal/session"
	grpcImpl "github.com/abgdnv/storefront/internal/transport/grpc"
	"github.com/abgdnv/storefront/internal/transport/rest"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"google.golang.org/grpc"
)

// Infrastructure holds the optional external connections. Nil fields are disabled.
type Infrastructure struct {
	DbPool    *pgxpool.Pool
	Publisher messaging.Publisher
	Metrics   http.Handler
}

type Dependencies struct {
	Session     *session.Session
	Health      *grpcImpl.HealthReporter
	Metrics     http.Handler
	MetricsPath string
	Logger      *slog.Logger
}

func SetupDependencies(cfg *config.Config, infra Infrastructure, logger *slog.Logger) (*Dependencies, error) {
	src, err := newSource(cfg.Catalog, infra.DbPool)
	if err != nil {
		return nil, err
	}
	engine, err := catalog.NewQueryEngine(cfg.Catalog.PageSize, cfg.Catalog.Locale)
	if err != nil {
		return nil, err
	}

	notifiers := notify.Fanout{notify.NewLogNotifier(logger)}
	exporters := receipt.Fanout{receipt.NewFileExporter(cfg.Checkout.Receipts.Dir)}
	if infra.Publisher != nil {
		notifiers = append(notifiers, notify.NewPublishingNotifier(infra.Publisher))
		exporters = append(exporters, receipt.NewEventExporter(infra.Publisher))
	}

	s := session.New(session.Dependencies{
		Source:   src,
		Engine:   engine,
		Checkout: checkout.NewCoordinator(exporters, logger),
		Notifier: notifiers,
		Customer: cfg.Checkout.Customer,
		Logger:   logger,
	})

	return &Dependencies{
		Session:     s,
		Health:      grpcImpl.NewHealthReporter(s),
		Metrics:     infra.Metrics,
		MetricsPath: cfg.Telemetry.Metrics.Path,
		Logger:      logger,
	}, nil
}

// newSource picks the catalog source named by the configuration.
func newSource(cfg config.CatalogConfig, dbPool *pgxpool.Pool) (source.Source, error) {
	switch cfg.Source {
	case config.SourceHTTP:
		src := source.NewHTTPSource(cfg.URL, cfg.Timeout)
		if cfg.Breaker.Enabled() {
			return source.NewBreakerSource(src, "catalog-http", cfg.Breaker.ConsecutiveFailures, cfg.Breaker.OpenTimeout), nil
		}
		return src, nil
	case config.SourceFile:
		return source.NewFileSource(cfg.Path), nil
	case config.SourcePostgres:
		if dbPool == nil {
			return nil, fmt.Errorf("catalog source %q requires a database pool", cfg.Source)
		}
		return source.NewPgSource(dbPool), nil
	default:
		return nil, fmt.Errorf("unknown catalog source %q", cfg.Source)
	}
}

// SetupHttpHandler initializes the router and routes of the storefront.
// Used by tests to drive the whole stack without a listener.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	handler := rest.NewHandler(deps.Session, deps.Logger)
	handler.RegisterRoutes(mux)
	if deps.Metrics != nil {
		mux.Handle(deps.MetricsPath, deps.Metrics)
	}
}

// SetupHttpServer creates and configures the HTTP server of the storefront.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	mux := SetupHttpHandler(deps)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux, "storefront")
}

// SetupGrpcServer creates the gRPC server carrying the health service.
func SetupGrpcServer(deps *Dependencies, cfg *config.Config) *grpc.Server {
	opts := server.GRPCOptions{
		Reflection: cfg.GRPC.ReflectionEnabled,
		Telemetry:  cfg.Telemetry.Enabled,
	}
	return server.NewGRPCServer(opts, deps.Health.Register)
}
