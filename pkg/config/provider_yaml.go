package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from the YAML file, applies
// defaults and validates the result.
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	config, err := parseYAML(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", y.filename, err)
	}

	y.config = config
	return config, nil
}

func parseYAML(data []byte) (*ConfigData, error) {
	var yamlConfig ConfigYAML
	if err := yaml.Unmarshal(data, &yamlConfig); err != nil {
		return nil, err
	}

	// Convert to our internal format
	config := &ConfigData{
		Server: ServerData{
			ListenAddr: yamlConfig.Server.ListenAddr,
			HTTPPort:   yamlConfig.Server.HTTPPort,
		},
		Ephemeris: EphemerisData{
			Backend: yamlConfig.Ephemeris.Backend,
		},
		Cache: CacheData{
			Capacity:     yamlConfig.Cache.Capacity,
			WarmSchedule: yamlConfig.Cache.WarmSchedule,
		},
		Log: LogData{
			Debug:      yamlConfig.Log.Debug,
			File:       yamlConfig.Log.File,
			MaxSizeMB:  yamlConfig.Log.MaxSizeMB,
			MaxBackups: yamlConfig.Log.MaxBackups,
		},
	}

	config.ApplyDefaults()

	// zero is a meaningful value here, so only a missing key gets the default
	if yamlConfig.Cache.WarmYearsAhead != nil {
		config.Cache.WarmYearsAhead = *yamlConfig.Cache.WarmYearsAhead
	} else {
		config.Cache.WarmYearsAhead = min(DefaultWarmYearsAhead, config.Cache.Capacity-1)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// GetServerConfig returns the REST listener configuration
func (y *YAMLProvider) GetServerConfig() (*ServerData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return &y.config.Server, nil
}

// GetCacheConfig returns the cache configuration
func (y *YAMLProvider) GetCacheConfig() (*CacheData, error) {
	if y.config == nil {
		_, err := y.LoadConfig()
		if err != nil {
			return nil, err
		}
	}
	return &y.config.Cache, nil
}

// IsReadOnly returns true since YAML files are read-only through this interface
func (y *YAMLProvider) IsReadOnly() bool {
	return true
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with the file's key names
type ConfigYAML struct {
	Server    ServerYAML    `yaml:"server"`
	Ephemeris EphemerisYAML `yaml:"ephemeris"`
	Cache     CacheYAML     `yaml:"cache"`
	Log       LogYAML       `yaml:"log"`
}

type ServerYAML struct {
	ListenAddr string `yaml:"listen_addr,omitempty"`
	HTTPPort   int    `yaml:"http_port,omitempty"`
}

type EphemerisYAML struct {
	Backend string `yaml:"backend,omitempty"`
}

type CacheYAML struct {
	Capacity       int    `yaml:"capacity,omitempty"`
	WarmSchedule   string `yaml:"warm_schedule,omitempty"`
	WarmYearsAhead *int   `yaml:"warm_years_ahead,omitempty"`
}

type LogYAML struct {
	Debug      bool   `yaml:"debug,omitempty"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max_size_mb,omitempty"`
	MaxBackups int    `yaml:"max_backups,omitempty"`
}
