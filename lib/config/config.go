// Copyright 2026 The Nightjar Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment represents the deployment environment.
type Environment string

const (
	// Development is for local development machines.
	Development Environment = "development"
	// Staging is for pre-production testing.
	Staging Environment = "staging"
	// Production is for production deployments.
	Production Environment = "production"
)

// Environment variables consulted by this package.
const (
	EnvConfig           = "NIGHTJAR_CONFIG"
	EnvDataStoreExec    = "DATA_STORE_EXEC"
	EnvDiscoveryMapExec = "DISCOVERY_MAP_EXEC"
	EnvTempDir          = "NJ_TEMP_DIR"
)

// Config is the master configuration for Nightjar.
type Config struct {
	// Environment identifies the deployment type (development, staging, production).
	Environment Environment `yaml:"environment"`

	// Paths configures directory locations.
	Paths PathsConfig `yaml:"paths"`

	// DataStore configures the data-store extension point.
	DataStore ExtensionConfig `yaml:"data_store"`

	// DiscoveryMap configures the discovery-map extension point.
	DiscoveryMap ExtensionConfig `yaml:"discovery_map"`

	// S3 configures the S3 data-store backend.
	S3 S3Config `yaml:"s3"`

	// Local configures the local-file backends.
	Local LocalConfig `yaml:"local"`

	// EnvironmentOverrides contains per-environment overrides.
	// These are applied after the base config is loaded.
	Development *ConfigOverrides `yaml:"development,omitempty"`
	Staging     *ConfigOverrides `yaml:"staging,omitempty"`
	Production  *ConfigOverrides `yaml:"production,omitempty"`
}

// ConfigOverrides contains fields that can be overridden per environment.
type ConfigOverrides struct {
	Paths        *PathsConfig     `yaml:"paths,omitempty"`
	DataStore    *ExtensionConfig `yaml:"data_store,omitempty"`
	DiscoveryMap *ExtensionConfig `yaml:"discovery_map,omitempty"`
	S3           *S3Config        `yaml:"s3,omitempty"`
	Local        *LocalConfig     `yaml:"local,omitempty"`
}

// PathsConfig configures directory locations.
type PathsConfig struct {
	// Temp holds extension-point cache and exchange files.
	Temp string `yaml:"temp"`
}

// ExtensionConfig configures one extension point.
type ExtensionConfig struct {
	// Command is the shell-quoted command line of the executable.
	Command string `yaml:"command"`

	// MaxRetries bounds attempts while the extension point asks for a
	// retry. Default: 5
	MaxRetries int `yaml:"max_retries"`

	// MaxWait caps the sleep between attempts. Default: 60s
	MaxWait string `yaml:"max_wait"`
}

// Wait returns MaxWait as a duration. Validate reports values that do
// not parse; Wait treats them as zero.
func (e ExtensionConfig) Wait() time.Duration {
	wait, _ := time.ParseDuration(e.MaxWait)
	return wait
}

// S3Config configures the S3 data-store backend.
type S3Config struct {
	Bucket   string `yaml:"bucket"`
	BasePath string `yaml:"base_path"`

	// Region and Profile default to the AWS SDK's own resolution.
	Region  string `yaml:"region"`
	Profile string `yaml:"profile"`

	// Endpoint selects an S3-compatible store.
	Endpoint string `yaml:"endpoint"`

	// AccessKeyID and SecretAccessKey, when both set, replace the AWS
	// credential chain with static credentials.
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`

	// MaxDocumentMB bounds document size. Default: 4, minimum 2.
	MaxDocumentMB int `yaml:"max_document_mb"`

	// GraceWindow protects uploads in progress from collection.
	// Default: 24h
	GraceWindow string `yaml:"grace_window"`
}

// LocalConfig configures the local-file backends.
type LocalConfig struct {
	TemplatesFile     string `yaml:"templates_file"`
	ConfigurationFile string `yaml:"configuration_file"`
	DiscoveryMapFile  string `yaml:"discovery_map_file"`

	// DiscoveryDir is searched by the local discovery-map extension point.
	DiscoveryDir string `yaml:"discovery_dir"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Environment: Development,
		Paths: PathsConfig{
			Temp: filepath.Join(os.TempDir(), "nightjar"),
		},
		DataStore: ExtensionConfig{
			MaxRetries: 5,
			MaxWait:    "60s",
		},
		DiscoveryMap: ExtensionConfig{
			MaxRetries: 5,
			MaxWait:    "60s",
		},
		S3: S3Config{
			BasePath:      "nightjar-datastore",
			MaxDocumentMB: 4,
			GraceWindow:   "24h",
		},
		Local: LocalConfig{
			TemplatesFile:     "/usr/share/nightjar/data-store/templates.json",
			ConfigurationFile: "/usr/share/nightjar/data-store/configurations.json",
			DiscoveryMapFile:  "/usr/share/nightjar/data-store/discovery-map.json",
			DiscoveryDir:      "/usr/share/nightjar/discovery-map",
		},
	}
}

// Resolve loads path, or the file named by NIGHTJAR_CONFIG when path
// is empty. With neither it returns [Default]. lookup is usually
// os.LookupEnv.
func Resolve(path string, lookup func(string) (string, bool)) (*Config, error) {
	if path == "" {
		path, _ = lookup(EnvConfig)
	}
	if path == "" {
		cfg := Default()
		cfg.expandVariables()
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	// Apply environment-specific overrides (development/staging/production sections in the file).
	cfg.applyEnvironmentOverrides()

	// Expand ${HOME} and similar variables in paths for portability.
	cfg.expandVariables()

	return cfg, nil
}

// loadFile loads a single configuration file, merging into the current config.
func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// ApplyEnvironment replaces the extension commands and temp directory
// with DATA_STORE_EXEC, DISCOVERY_MAP_EXEC and NJ_TEMP_DIR when those
// are set and non-empty.
func (c *Config) ApplyEnvironment(lookup func(string) (string, bool)) {
	if value, ok := lookup(EnvDataStoreExec); ok && value != "" {
		c.DataStore.Command = value
	}
	if value, ok := lookup(EnvDiscoveryMapExec); ok && value != "" {
		c.DiscoveryMap.Command = value
	}
	if value, ok := lookup(EnvTempDir); ok && value != "" {
		c.Paths.Temp = value
	}
}

// applyEnvironmentOverrides applies the environment-specific overrides.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *ConfigOverrides

	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}

	if overrides == nil {
		return
	}

	if overrides.Paths != nil && overrides.Paths.Temp != "" {
		c.Paths.Temp = overrides.Paths.Temp
	}
	if overrides.DataStore != nil {
		c.DataStore.merge(*overrides.DataStore)
	}
	if overrides.DiscoveryMap != nil {
		c.DiscoveryMap.merge(*overrides.DiscoveryMap)
	}

	if overrides.S3 != nil {
		if overrides.S3.Bucket != "" {
			c.S3.Bucket = overrides.S3.Bucket
		}
		if overrides.S3.BasePath != "" {
			c.S3.BasePath = overrides.S3.BasePath
		}
		if overrides.S3.Region != "" {
			c.S3.Region = overrides.S3.Region
		}
		if overrides.S3.Profile != "" {
			c.S3.Profile = overrides.S3.Profile
		}
		if overrides.S3.Endpoint != "" {
			c.S3.Endpoint = overrides.S3.Endpoint
		}
		if overrides.S3.AccessKeyID != "" {
			c.S3.AccessKeyID = overrides.S3.AccessKeyID
			c.S3.SecretAccessKey = overrides.S3.SecretAccessKey
		}
		if overrides.S3.MaxDocumentMB != 0 {
			c.S3.MaxDocumentMB = overrides.S3.MaxDocumentMB
		}
		if overrides.S3.GraceWindow != "" {
			c.S3.GraceWindow = overrides.S3.GraceWindow
		}
	}

	if overrides.Local != nil {
		if overrides.Local.TemplatesFile != "" {
			c.Local.TemplatesFile = overrides.Local.TemplatesFile
		}
		if overrides.Local.ConfigurationFile != "" {
			c.Local.ConfigurationFile = overrides.Local.ConfigurationFile
		}
		if overrides.Local.DiscoveryMapFile != "" {
			c.Local.DiscoveryMapFile = overrides.Local.DiscoveryMapFile
		}
		if overrides.Local.DiscoveryDir != "" {
			c.Local.DiscoveryDir = overrides.Local.DiscoveryDir
		}
	}
}

func (e *ExtensionConfig) merge(override ExtensionConfig) {
	if override.Command != "" {
		e.Command = override.Command
	}
	if override.MaxRetries != 0 {
		e.MaxRetries = override.MaxRetries
	}
	if override.MaxWait != "" {
		e.MaxWait = override.MaxWait
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} patterns in paths.
func (c *Config) expandVariables() {
	vars := map[string]string{
		"NIGHTJAR_TEMP": c.Paths.Temp,
		"HOME":          os.Getenv("HOME"),
	}

	c.Paths.Temp = expandVars(c.Paths.Temp, vars)
	vars["NIGHTJAR_TEMP"] = c.Paths.Temp // Update for dependent paths.

	c.Local.TemplatesFile = expandVars(c.Local.TemplatesFile, vars)
	c.Local.ConfigurationFile = expandVars(c.Local.ConfigurationFile, vars)
	c.Local.DiscoveryMapFile = expandVars(c.Local.DiscoveryMapFile, vars)
	c.Local.DiscoveryDir = expandVars(c.Local.DiscoveryDir, vars)
}

// expandVars expands ${VAR} and ${VAR:-default} patterns.
var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string, vars map[string]string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		name := parts[1]
		defaultValue := ""
		if len(parts) >= 3 {
			defaultValue = parts[2]
		}

		// Check provided vars first, then environment.
		if value, ok := vars[name]; ok && value != "" {
			return value
		}
		if value := os.Getenv(name); value != "" {
			return value
		}
		return defaultValue
	})
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	var errs []error

	if c.Environment != Development && c.Environment != Staging && c.Environment != Production {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Paths.Temp == "" {
		errs = append(errs, fmt.Errorf("paths.temp is required"))
	}

	errs = append(errs, c.DataStore.validate("data_store")...)
	errs = append(errs, c.DiscoveryMap.validate("discovery_map")...)

	if c.S3.MaxDocumentMB < 2 {
		errs = append(errs, fmt.Errorf("s3.max_document_mb must be at least 2, got %d", c.S3.MaxDocumentMB))
	}
	if window, err := time.ParseDuration(c.S3.GraceWindow); err != nil {
		errs = append(errs, fmt.Errorf("s3.grace_window: %w", err))
	} else if window <= 0 {
		errs = append(errs, fmt.Errorf("s3.grace_window must be positive, got %s", c.S3.GraceWindow))
	}

	return errors.Join(errs...)
}

func (e ExtensionConfig) validate(section string) []error {
	var errs []error
	if e.MaxRetries < 1 {
		errs = append(errs, fmt.Errorf("%s.max_retries must be at least 1, got %d", section, e.MaxRetries))
	}
	if wait, err := time.ParseDuration(e.MaxWait); err != nil {
		errs = append(errs, fmt.Errorf("%s.max_wait: %w", section, err))
	} else if wait < 0 {
		errs = append(errs, fmt.Errorf("%s.max_wait must not be negative, got %s", section, e.MaxWait))
	}
	return errs
}

// EnsurePaths creates the temp directory if it doesn't exist.
func (c *Config) EnsurePaths() error {
	if c.Paths.Temp == "" {
		return nil
	}
	if err := os.MkdirAll(c.Paths.Temp, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", c.Paths.Temp, err)
	}
	return nil
}
