package providers

import "time"

// Config configures provider loading.
type Config struct {
	// Paths are glob patterns of provider scripts, .js or .ts.
	Paths []string `yaml:"paths,omitempty" toml:"paths,omitempty" json:"paths,omitempty"`

	// Timeout bounds one call into a provider (default: 5s).
	Timeout time.Duration `yaml:"timeout,omitempty" toml:"timeout,omitempty" json:"timeout,omitempty"`
}

// DefaultTimeout is the default execution timeout of one provider call.
const DefaultTimeout = 5 * time.Second

// GetTimeout returns the configured timeout or the default.
func (c *Config) GetTimeout() time.Duration {
	if c == nil || c.Timeout <= 0 {
		return DefaultTimeout
	}
	return c.Timeout
}
