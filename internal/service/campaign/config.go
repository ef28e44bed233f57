package campaign

import "time"

// Config contains configuration for campaign dispatch.
type Config struct {
	// MaxProcessTime bounds how long a single orchestrator run processes
	// recipients; a run that exceeds it marks the campaign FAILED.
	MaxProcessTime time.Duration `json:"max_process_time"`

	// BatchSize is carried from configuration but not read by the dispatch
	// loop: the cursor streams one row at a time, and progress logging is
	// paced by ProgressLogInterval.
	BatchSize int `json:"batch_size"`

	// ProgressLogInterval is the minimum time between progress log lines.
	ProgressLogInterval time.Duration `json:"progress_log_interval"`

	// Circuit breaker settings guarding the provider adapter.
	EnableCircuitBreaker    bool          `json:"enable_circuit_breaker"`
	CircuitBreakerThreshold int           `json:"circuit_breaker_threshold"`
	CircuitBreakerCooldown  time.Duration `json:"circuit_breaker_cooldown"`

	// DefaultTimezone is used to evaluate quiet hours when a User has no
	// "timezone" attribute of its own.
	DefaultTimezone string `json:"default_timezone"`
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		MaxProcessTime:          50 * time.Second,
		BatchSize:               100,
		ProgressLogInterval:     5 * time.Second,
		EnableCircuitBreaker:    true,
		CircuitBreakerThreshold: 5,
		CircuitBreakerCooldown:  1 * time.Minute,
		DefaultTimezone:         "UTC",
	}
}
