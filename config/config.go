package config

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/c360/randstream/component"
	"github.com/c360/randstream/errors"
)

// ComponentConfigs holds component instance configurations.
// The map key is the instance name (e.g., "random-main"). A component is
// created only if its factory is registered and its entry is enabled.
type ComponentConfigs map[string]component.ComponentConfig

// Config represents the complete process configuration
type Config struct {
	Version    string           `json:"version,omitempty"`
	Platform   PlatformConfig   `json:"platform"`
	NATS       NATSConfig       `json:"nats"`
	Metrics    MetricsConfig    `json:"metrics"`
	Components ComponentConfigs `json:"components"`
}

// PlatformConfig defines platform identity
type PlatformConfig struct {
	Org        string `json:"org"`                   // Organization namespace (e.g., "c360")
	ID         string `json:"id"`                    // Platform identifier (e.g., "lab-1")
	InstanceID string `json:"instance_id,omitempty"` // e.g., "west-1", "dev-local"
}

// NATSConfig defines NATS connection settings
type NATSConfig struct {
	URLs          []string        `json:"urls,omitempty"`
	MaxReconnects int             `json:"max_reconnects,omitempty"`
	ReconnectWait time.Duration   `json:"reconnect_wait,omitempty"`
	Username      string          `json:"username,omitempty"`
	Password      string          `json:"password,omitempty"`
	Token         string          `json:"token,omitempty"`
	JetStream     JetStreamConfig `json:"jetstream"`
}

// JetStreamConfig for JetStream settings
type JetStreamConfig struct {
	Enabled bool   `json:"enabled"`
	Domain  string `json:"domain,omitempty"`
}

// MetricsConfig controls the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Port    int    `json:"port,omitempty"`
	Path    string `json:"path,omitempty"`
}

// UnmarshalJSON accepts reconnect_wait as a Go duration string or as
// nanoseconds.
func (n *NATSConfig) UnmarshalJSON(data []byte) error {
	type Alias NATSConfig
	aux := &struct {
		ReconnectWait any `json:"reconnect_wait"`
		*Alias
	}{
		Alias: (*Alias)(n),
	}

	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}

	switch v := aux.ReconnectWait.(type) {
	case nil:
	case string:
		d, err := time.ParseDuration(v)
		if err != nil {
			return errors.WrapInvalid(err, "NATSConfig", "UnmarshalJSON", "reconnect_wait parsing")
		}
		n.ReconnectWait = d
	case float64:
		n.ReconnectWait = time.Duration(v)
	default:
		return errors.WrapInvalid(
			fmt.Errorf("reconnect_wait has unsupported type %T", v),
			"NATSConfig", "UnmarshalJSON", "reconnect_wait parsing")
	}

	return nil
}

// Validate checks the config and normalizes the org to lowercase
func (c *Config) Validate() error {
	if c.Platform.Org == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "platform.org is required")
	}

	c.Platform.Org = strings.ToLower(c.Platform.Org)

	if !isValidNATSSubjectPart(c.Platform.Org) {
		return errors.WrapInvalid(
			fmt.Errorf("platform.org '%s' must be alphanumeric with dots, dashes, underscores", c.Platform.Org),
			"Config", "Validate", "platform.org check")
	}

	if c.Platform.ID == "" {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "platform.id is required")
	}

	if len(c.NATS.URLs) == 0 {
		return errors.WrapInvalid(errors.ErrMissingConfig, "Config", "Validate", "nats.urls is required")
	}
	for _, url := range c.NATS.URLs {
		if strings.TrimSpace(url) == "" {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", "empty nats url")
		}
	}
	if c.NATS.ReconnectWait < 0 {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate", "negative nats.reconnect_wait")
	}

	if c.Metrics.Enabled && (c.Metrics.Port < 1 || c.Metrics.Port > 65535) {
		return errors.WrapInvalid(
			fmt.Errorf("metrics.port %d outside 1-65535", c.Metrics.Port),
			"Config", "Validate", "metrics.port check")
	}
	if c.Metrics.Path != "" && !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.WrapInvalid(
			fmt.Errorf("metrics.path %q must start with /", c.Metrics.Path),
			"Config", "Validate", "metrics.path check")
	}

	for instanceName, cfg := range c.Components {
		if err := component.ValidateComponentName(instanceName); err != nil {
			return errors.Wrap(err, "Config", "Validate", fmt.Sprintf("component instance %q", instanceName))
		}
		if err := cfg.Validate(); err != nil {
			return errors.Wrap(err, "Config", "Validate", fmt.Sprintf("component %s", instanceName))
		}
	}

	return nil
}

func isValidNATSSubjectPart(s string) bool {
	if len(s) == 0 {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '.' && r != '-' && r != '_' {
			return false
		}
	}
	return true
}

// Clone creates a deep copy of the configuration
func (c *Config) Clone() *Config {
	if c == nil {
		return &Config{}
	}

	data, err := json.Marshal(c)
	if err != nil {
		copied := *c
		return &copied
	}

	var clone Config
	if err := json.Unmarshal(data, &clone); err != nil {
		copied := *c
		return &copied
	}
	return &clone
}

// GetOrg returns the organization from platform config
func (c *Config) GetOrg() string {
	return c.Platform.Org
}

// GetPlatform returns the platform identifier (prefer instance_id over id)
func (c *Config) GetPlatform() string {
	if c.Platform.InstanceID != "" {
		return c.Platform.InstanceID
	}
	return c.Platform.ID
}

// PlatformMeta returns the identity handed to components
func (c *Config) PlatformMeta() component.PlatformMeta {
	return component.PlatformMeta{Org: c.GetOrg(), Platform: c.GetPlatform()}
}

// EnabledComponents returns the enabled component instances sorted by name
func (c *Config) EnabledComponents() []string {
	names := make([]string, 0, len(c.Components))
	for name, cfg := range c.Components {
		if cfg.Enabled {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

// String returns an indented JSON representation with secrets redacted
func (c *Config) String() string {
	redacted := c.Clone()
	if redacted.NATS.Password != "" {
		redacted.NATS.Password = "***"
	}
	if redacted.NATS.Token != "" {
		redacted.NATS.Token = "***"
	}
	data, _ := json.MarshalIndent(redacted, "", "  ")
	return string(data)
}
