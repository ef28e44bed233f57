package reconciler

import "time"

// Config controls the orphan-sweep cadence. Most receipts are reconciled
// synchronously as they arrive at the webhook handler; the sweep only picks
// up the ones left behind (a provider_sid that hadn't been recorded yet, or
// a transient write failure).
type Config struct {
	PollInterval time.Duration `json:"poll_interval"`
	BatchSize    int           `json:"batch_size"`
}

// DefaultConfig returns sensible defaults for production use.
func DefaultConfig() *Config {
	return &Config{
		PollInterval: 30 * time.Second,
		BatchSize:    100,
	}
}
