package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/raysh454/thamos/internal/model"
	"github.com/raysh454/thamos/internal/webclient"
)

// DefaultConfigFile is looked up in the working directory when no path is given.
const DefaultConfigFile = ".thoth.yaml"

// ErrRuntimeEnvironmentNotFound is returned when a named runtime environment is not configured.
var ErrRuntimeEnvironmentNotFound = errors.New("runtime environment not found")

// RecommendationTypes lists the recommendation types accepted by the service.
var RecommendationTypes = []string{"latest", "stable", "testing", "security", "performance"}

// TransportConfig selects how requests reach the service.
type TransportConfig struct {
	Backend string        `mapstructure:"backend" yaml:"backend,omitempty"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout,omitempty"`
	Retries uint          `mapstructure:"retries" yaml:"retries,omitempty"`
}

// Config is the client configuration, usually read from .thoth.yaml.
// It is treated as read-only once loaded.
type Config struct {
	Host      string `mapstructure:"host" yaml:"host,omitempty"`
	TLSVerify bool   `mapstructure:"tls_verify" yaml:"tls_verify"`

	RecommendationType string `mapstructure:"recommendation_type" yaml:"recommendation_type,omitempty"`
	RequirementsFormat string `mapstructure:"requirements_format" yaml:"requirements_format,omitempty"`

	RuntimeEnvironments []model.RuntimeEnvironment `mapstructure:"runtime_environments" yaml:"runtime_environments,omitempty"`

	// Progress enables the progress indicator while waiting for analyses.
	Progress bool `mapstructure:"progress" yaml:"progress"`

	Transport TransportConfig `mapstructure:"transport" yaml:"transport,omitempty"`

	// StorageRoot holds the local analysis history.
	StorageRoot string `mapstructure:"storage_root" yaml:"storage_root,omitempty"`
}

// DefaultConfig returns a Config populated with defaults.
func DefaultConfig() *Config {
	return &Config{
		TLSVerify:          true,
		RecommendationType: "stable",
		RequirementsFormat: model.RequirementsFormatPipenv,
		Progress:           true,
		Transport: TransportConfig{
			Backend: string(webclient.ClientNetHTTP),
			Timeout: 30 * time.Second,
		},
		StorageRoot: "~/.config/thamos",
	}
}

// InitConfig returns the configuration written by "thamos config --init": the
// defaults plus one runtime environment describing this machine.
func InitConfig(host string) *Config {
	cfg := DefaultConfig()
	cfg.Host = host
	cfg.RuntimeEnvironments = []model.RuntimeEnvironment{{
		Name:               "default",
		OperatingSystem:    &model.OperatingSystem{Name: "rhel", Version: "8"},
		PythonVersion:      "3.8",
		Platform:           fmt.Sprintf("%s-%s", runtime.GOOS, platformArch(runtime.GOARCH)),
		RecommendationType: cfg.RecommendationType,
	}}
	return cfg
}

func platformArch(goarch string) string {
	switch goarch {
	case "amd64":
		return "x86_64"
	case "arm64":
		return "aarch64"
	default:
		return goarch
	}
}

var envBindings = map[string][]string{
	"host":                {"THAMOS_HOST"},
	"tls_verify":          {"THAMOS_TLS_VERIFY"},
	"recommendation_type": {"THAMOS_RECOMMENDATION_TYPE"},
	"requirements_format": {"THAMOS_REQUIREMENTS_FORMAT"},
	"storage_root":        {"THAMOS_STORAGE_ROOT"},
	"transport.backend":   {"THAMOS_TRANSPORT"},
	"transport.timeout":   {"THAMOS_TIMEOUT"},
	"transport.retries":   {"THAMOS_RETRIES"},
}

// Load reads the config from filePath, falling back to defaults and environment
// variables when the file does not exist. Environment variables override values
// from the file. An empty filePath means DefaultConfigFile.
func Load(filePath string) (*Config, error) {
	if filePath == "" {
		filePath = DefaultConfigFile
	}

	v := viper.New()
	v.SetConfigFile(filePath)
	v.SetConfigType("yaml")

	def := DefaultConfig()
	v.SetDefault("tls_verify", def.TLSVerify)
	v.SetDefault("recommendation_type", def.RecommendationType)
	v.SetDefault("requirements_format", def.RequirementsFormat)
	v.SetDefault("progress", def.Progress)
	v.SetDefault("transport.backend", def.Transport.Backend)
	v.SetDefault("transport.timeout", def.Transport.Timeout)
	v.SetDefault("transport.retries", def.Transport.Retries)
	v.SetDefault("storage_root", def.StorageRoot)

	if err := bindEnvs(v); err != nil {
		return nil, err
	}

	if _, err := os.Stat(filePath); !errors.Is(err, fs.ErrNotExist) {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", filePath, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config %s: %w", filePath, err)
	}

	if raw := os.Getenv("THAMOS_NO_PROGRESSBAR"); raw != "" {
		noProgress, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid THAMOS_NO_PROGRESSBAR %q: %w", raw, err)
		}
		if noProgress {
			cfg.Progress = false
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func bindEnvs(v *viper.Viper) error {
	for key, envs := range envBindings {
		inputs := slices.Insert(slices.Clone(envs), 0, key)
		if err := v.BindEnv(inputs...); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks values that would otherwise only fail on the server.
func (c *Config) Validate() error {
	if c.RecommendationType != "" && !slices.Contains(RecommendationTypes, strings.ToLower(c.RecommendationType)) {
		return fmt.Errorf("invalid recommendation_type %q: expected one of %v", c.RecommendationType, RecommendationTypes)
	}
	seen := map[string]bool{}
	for i, env := range c.RuntimeEnvironments {
		if env.Name == "" {
			return fmt.Errorf("runtime_environments[%d]: missing name", i)
		}
		if seen[env.Name] {
			return fmt.Errorf("runtime_environments[%d]: duplicate name %q", i, env.Name)
		}
		seen[env.Name] = true
		if env.RecommendationType != "" && !slices.Contains(RecommendationTypes, strings.ToLower(env.RecommendationType)) {
			return fmt.Errorf("runtime_environments[%d]: invalid recommendation_type %q", i, env.RecommendationType)
		}
	}
	if c.Transport.Timeout < 0 {
		return fmt.Errorf("transport.timeout must not be negative")
	}
	return nil
}

// RuntimeEnvironment returns the configured entry called name. An empty name
// selects the first entry; nil is returned when none is configured.
func (c *Config) RuntimeEnvironment(name string) (*model.RuntimeEnvironment, error) {
	if name == "" {
		if len(c.RuntimeEnvironments) == 0 {
			return nil, nil
		}
		env := c.RuntimeEnvironments[0]
		return &env, nil
	}
	for i := range c.RuntimeEnvironments {
		if c.RuntimeEnvironments[i].Name == name {
			env := c.RuntimeEnvironments[i]
			return &env, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrRuntimeEnvironmentNotFound, name)
}

// WebClientConfig maps the transport section onto the webclient factory options.
func (c *Config) WebClientConfig() webclient.Config {
	wc := webclient.DefaultConfig()
	if c.Transport.Backend != "" {
		wc.Client = webclient.Client(c.Transport.Backend)
	}
	if c.Transport.Timeout > 0 {
		wc.Timeout = c.Transport.Timeout
	}
	wc.Retries = c.Transport.Retries
	wc.VerifyTLS = c.TLSVerify
	return wc
}

// Save writes c as YAML to filePath.
func (c *Config) Save(filePath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return fmt.Errorf("write config %s: %w", filePath, err)
	}
	return nil
}

// ExpandPath resolves a leading "~" to the user's home directory.
func ExpandPath(p string) (string, error) {
	if len(p) > 0 && p[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, p[1:]), nil
	}
	return p, nil
}
