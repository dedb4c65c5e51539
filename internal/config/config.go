// Package config holds the storefront application configuration.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/abgdnv/storefront/internal/checkout"
	"github.com/abgdnv/storefront/internal/platform/config"
	"github.com/abgdnv/storefront/internal/platform/config/configloader"
	"github.com/go-playground/validator/v10"
)

var _ configloader.Validator = (*Config)(nil)

// Catalog source kinds.
const (
	SourceHTTP     = "http"
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

type Config struct {
	HTTPServer config.HTTPConfig       `koanf:"server"`
	Catalog    CatalogConfig           `koanf:"catalog"`
	Checkout   CheckoutConfig          `koanf:"checkout"`
	Database   config.DatabaseConfig   `koanf:"database"`
	NATS       config.NATSConfig       `koanf:"nats"`
	Telemetry  config.TelemetryConfig  `koanf:"telemetry"`
	Log        config.LogConfig        `koanf:"log"`
	PProf      config.PProfConfig      `koanf:"pprof"`
	GRPC       config.GrpcServerConfig `koanf:"grpc"`
	Shutdown   config.ShutdownConfig   `koanf:"shutdown"`
}

// CatalogConfig selects where the catalog document comes from and how it is viewed.
type CatalogConfig struct {
	Source   string        `koanf:"source"`
	URL      string        `koanf:"url"`
	Path     string        `koanf:"path"`
	Timeout  time.Duration `koanf:"timeout"`
	PageSize int           `koanf:"pageSize"`
	Locale   string        `koanf:"locale"`
	// Breaker guards the http source only.
	Breaker config.CircuitBreakerConfig `koanf:"breaker"`
}

// CheckoutConfig holds the fixed customer printed on receipts and where receipts go.
type CheckoutConfig struct {
	Customer checkout.Customer `koanf:"customer"`
	Receipts struct {
		Dir string `koanf:"dir"`
	} `koanf:"receipts"`
}

func (c *CatalogConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Catalog ---\n")
	b.WriteString(fmt.Sprintf("  catalog.source: %s\n", c.Source))
	b.WriteString(fmt.Sprintf("  catalog.url: %s\n", c.URL))
	b.WriteString(fmt.Sprintf("  catalog.path: %s\n", c.Path))
	b.WriteString(fmt.Sprintf("  catalog.timeout: %s\n", c.Timeout))
	b.WriteString(fmt.Sprintf("  catalog.pageSize: %d\n", c.PageSize))
	b.WriteString(fmt.Sprintf("  catalog.locale: %s\n", c.Locale))
	b.WriteString(c.Breaker.String())
	return b.String()
}

func (c *CatalogConfig) Validate() error {
	switch c.Source {
	case SourceHTTP:
		if c.URL == "" {
			return fmt.Errorf("catalog URL is not configured")
		}
		if c.Timeout <= 0 {
			return fmt.Errorf("catalog fetch timeout must be greater than 0")
		}
		if err := c.Breaker.Validate(); err != nil {
			return err
		}
	case SourceFile:
		if c.Path == "" {
			return fmt.Errorf("catalog file path is not configured")
		}
	case SourcePostgres:
	default:
		return fmt.Errorf("unknown catalog source %q, expected one of %s, %s, %s", c.Source, SourceHTTP, SourceFile, SourcePostgres)
	}
	if c.PageSize < 0 {
		return fmt.Errorf("invalid catalog page size: %d", c.PageSize)
	}
	return nil
}

func (c *CheckoutConfig) String() string {
	var b strings.Builder
	b.WriteString("\n--- Checkout ---\n")
	b.WriteString(fmt.Sprintf("  checkout.customer.name: %s\n", c.Customer.Name))
	b.WriteString(fmt.Sprintf("  checkout.customer.email: %s\n", c.Customer.Email))
	b.WriteString(fmt.Sprintf("  checkout.receipts.dir: %s\n", c.Receipts.Dir))
	return b.String()
}

func (c *CheckoutConfig) Validate() error {
	if err := validator.New().Struct(c.Customer); err != nil {
		return fmt.Errorf("invalid checkout customer: %w", err)
	}
	if c.Receipts.Dir == "" {
		return fmt.Errorf("receipts directory is not configured")
	}
	return nil
}

func (c *Config) String() string {
	var b strings.Builder
	b.WriteString(c.HTTPServer.String())
	b.WriteString(c.Catalog.String())
	b.WriteString(c.Checkout.String())
	if c.Catalog.Source == SourcePostgres {
		b.WriteString(c.Database.String())
	}
	b.WriteString(c.NATS.String())
	b.WriteString(c.Telemetry.String())
	b.WriteString(c.GRPC.String())
	b.WriteString(c.Log.String())
	b.WriteString(c.PProf.String())
	b.WriteString(c.Shutdown.String())
	return b.String()
}

// Validate checks if the configuration values are valid.
// The database section is only checked when the catalog is read from PostgreSQL.
func (c *Config) Validate() error {
	if err := c.HTTPServer.Validate(); err != nil {
		return err
	}
	if err := c.Catalog.Validate(); err != nil {
		return err
	}
	if err := c.Checkout.Validate(); err != nil {
		return err
	}
	if c.Catalog.Source == SourcePostgres {
		if err := c.Database.Validate(); err != nil {
			return err
		}
	}
	if err := c.NATS.Validate(); err != nil {
		return err
	}
	if err := c.Telemetry.Validate(); err != nil {
		return err
	}
	if err := c.Log.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	if err := c.Shutdown.Validate(); err != nil {
		return err
	}
	if err := c.GRPC.Validate(); err != nil {
		return err
	}
	return nil
}
