package config

import (
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/chrissnell/analemma/pkg/ephemeris"
	"github.com/chrissnell/analemma/pkg/eot"
)

// ErrInvalidConfig is returned when a loaded configuration fails validation
var ErrInvalidConfig = errors.New("invalid configuration")

// Defaults applied to any field left empty
const (
	DefaultListenAddr     = "0.0.0.0"
	DefaultHTTPPort       = 8080
	DefaultCacheCapacity  = 2
	DefaultWarmSchedule   = "5 0 * * *"
	DefaultWarmYearsAhead = 1
	DefaultLogMaxSizeMB   = 50
	DefaultLogMaxBackups  = 3
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetServerConfig() (*ServerData, error)
	GetCacheConfig() (*CacheData, error)

	IsReadOnly() bool
	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Server    ServerData    `json:"server"`
	Ephemeris EphemerisData `json:"ephemeris"`
	Cache     CacheData     `json:"cache"`
	Log       LogData       `json:"log"`
}

// ServerData holds the REST listener settings
type ServerData struct {
	ListenAddr string `json:"listen_addr,omitempty"`
	HTTPPort   int    `json:"http_port,omitempty"`
}

// EphemerisData selects the position backend
type EphemerisData struct {
	Backend string `json:"backend,omitempty"`
}

// CacheData sizes the year series cache and schedules its warmer
type CacheData struct {
	Capacity       int    `json:"capacity,omitempty"`
	WarmSchedule   string `json:"warm_schedule,omitempty"`
	WarmYearsAhead int    `json:"warm_years_ahead"`
}

// LogData configures logging. An empty File logs to stderr only.
type LogData struct {
	Debug      bool   `json:"debug,omitempty"`
	File       string `json:"file,omitempty"`
	MaxSizeMB  int    `json:"max_size_mb,omitempty"`
	MaxBackups int    `json:"max_backups,omitempty"`
}

// Address returns host:port for the REST listener
func (s ServerData) Address() string {
	return fmt.Sprintf("%s:%d", s.ListenAddr, s.HTTPPort)
}

// ApplyDefaults fills in every unset field
func (c *ConfigData) ApplyDefaults() {
	if c.Server.ListenAddr == "" {
		c.Server.ListenAddr = DefaultListenAddr
	}
	if c.Server.HTTPPort == 0 {
		c.Server.HTTPPort = DefaultHTTPPort
	}
	if c.Ephemeris.Backend == "" {
		c.Ephemeris.Backend = ephemeris.BackendMeeus
	}
	if c.Cache.Capacity == 0 {
		c.Cache.Capacity = DefaultCacheCapacity
	}
	if c.Cache.WarmSchedule == "" {
		c.Cache.WarmSchedule = DefaultWarmSchedule
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = DefaultLogMaxSizeMB
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = DefaultLogMaxBackups
	}
}

// Validate checks the configuration after defaults have been applied
func (c *ConfigData) Validate() error {
	if c.Server.HTTPPort < 1 || c.Server.HTTPPort > 65535 {
		return fmt.Errorf("%w: http_port %d out of range", ErrInvalidConfig, c.Server.HTTPPort)
	}

	switch c.Ephemeris.Backend {
	case ephemeris.BackendMeeus, ephemeris.BackendAnalytic:
	default:
		return fmt.Errorf("%w: unknown ephemeris backend %q", ErrInvalidConfig, c.Ephemeris.Backend)
	}

	if c.Cache.Capacity < 1 || c.Cache.Capacity > eot.MaxCapacity {
		return fmt.Errorf("%w: cache capacity must be between 1 and %d", ErrInvalidConfig, eot.MaxCapacity)
	}
	if c.Cache.WarmYearsAhead < 0 || c.Cache.WarmYearsAhead >= c.Cache.Capacity {
		return fmt.Errorf("%w: warm_years_ahead must be between 0 and %d", ErrInvalidConfig, c.Cache.Capacity-1)
	}
	if _, err := cron.ParseStandard(c.Cache.WarmSchedule); err != nil {
		return fmt.Errorf("%w: warm_schedule: %v", ErrInvalidConfig, err)
	}

	if c.Log.MaxSizeMB < 0 || c.Log.MaxBackups < 0 {
		return fmt.Errorf("%w: log rotation limits must not be negative", ErrInvalidConfig)
	}
	return nil
}
