package config

import (
	"fmt"
	"strings"
	"time"
)

// CircuitBreakerConfig guards an outbound dependency. Zero ConsecutiveFailures disables it.
type CircuitBreakerConfig struct {
	ConsecutiveFailures uint32        `koanf:"consecutivefailures"`
	OpenTimeout         time.Duration `koanf:"opentimeout"`
}

// String returns a string representation of the CircuitBreakerConfig.
func (c *CircuitBreakerConfig) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("  breaker.consecutivefailures: %d\n", c.ConsecutiveFailures))
	b.WriteString(fmt.Sprintf("  breaker.opentimeout: %v\n", c.OpenTimeout))
	return b.String()
}

func (c *CircuitBreakerConfig) Enabled() bool {
	return c.ConsecutiveFailures > 0
}

func (c *CircuitBreakerConfig) Validate() error {
	if c.Enabled() && c.OpenTimeout <= 0 {
		return fmt.Errorf("circuit breaker open timeout must be greater than 0")
	}
	return nil
}
