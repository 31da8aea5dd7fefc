package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/PratikDhanave/appstack-bridge/internal/plugin"
)

// Config contains runtime configuration required by the service.
type Config struct {
	// DBURL selects the Postgres journal. Empty means in-memory.
	DBURL string `yaml:"db_url"`
	// Tenants maps tenant -> API key as written in the file; APIKeys is
	// the inverted lookup the middleware uses.
	Tenants map[string]string `yaml:"tenants"`
	APIKeys map[string]string `yaml:"-"` // apiKey -> tenantID

	ListenAddr  string        `yaml:"listen_addr"`
	LogLevel    string        `yaml:"log_level"`
	LogFormat   string        `yaml:"log_format"`
	CallTimeout time.Duration `yaml:"call_timeout"`
	Workers     int           `yaml:"workers"`
	IOSVersion  string        `yaml:"ios_version"`
	Platforms   []string      `yaml:"platforms"`
}

func defaults() Config {
	return Config{
		ListenAddr: ":8080",
		LogLevel:   "info",
		LogFormat:  "json",
		Workers:    8,
		IOSVersion: "17.0",
		Platforms:  []string{plugin.PlatformAndroid, plugin.PlatformIOS, plugin.PlatformIOSLegacy},
	}
}

// Load reads BRIDGE_CONFIG (optional YAML file) and then environment
// variables, which take precedence over the file.
// API_KEYS format: "tenant1:key1,tenant2:key2"
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := defaults()

	if path := strings.TrimSpace(getenv("BRIDGE_CONFIG")); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, errors.Wrap(err, "read BRIDGE_CONFIG")
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, errors.Wrapf(err, "parse %s", path)
		}
	}

	var result *multierror.Error

	if v := strings.TrimSpace(getenv("DB_URL")); v != "" {
		cfg.DBURL = v
	}
	if v := strings.TrimSpace(getenv("LISTEN_ADDR")); v != "" {
		cfg.ListenAddr = v
	}
	if v := strings.TrimSpace(getenv("LOG_LEVEL")); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(getenv("LOG_FORMAT")); v != "" {
		cfg.LogFormat = v
	}
	if v := strings.TrimSpace(getenv("IOS_VERSION")); v != "" {
		cfg.IOSVersion = v
	}
	if v := strings.TrimSpace(getenv("CALL_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			result = multierror.Append(result, errors.Errorf("CALL_TIMEOUT %q is not a duration", v))
		}
		cfg.CallTimeout = d
	}
	if v := strings.TrimSpace(getenv("WORKERS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			result = multierror.Append(result, errors.Errorf("WORKERS %q is not an integer", v))
		}
		cfg.Workers = n
	}
	if v := strings.TrimSpace(getenv("PLATFORMS")); v != "" {
		cfg.Platforms = splitList(v)
	}

	if raw := strings.TrimSpace(getenv("API_KEYS")); raw != "" {
		tenants, err := parseAPIKeys(raw)
		if err != nil {
			result = multierror.Append(result, err)
		}
		cfg.Tenants = tenants
	}

	cfg.APIKeys = map[string]string{}
	for tenant, key := range cfg.Tenants {
		if tenant == "" || key == "" {
			result = multierror.Append(result, errors.New("tenants must have non-empty names and keys"))
			continue
		}
		cfg.APIKeys[key] = tenant
	}

	// Local dev fallback so the service runs out-of-the-box.
	if len(cfg.APIKeys) == 0 {
		cfg.APIKeys["tenant-key-123"] = "tenant1"
	}

	if err := cfg.validate(); err != nil {
		result = multierror.Append(result, err)
	}

	if err := result.ErrorOrNil(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var result *multierror.Error

	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		result = multierror.Append(result, errors.Errorf("log level %q is invalid", c.LogLevel))
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		result = multierror.Append(result, errors.Errorf(`log format %q must be "json" or "console"`, c.LogFormat))
	}
	if c.CallTimeout < 0 {
		result = multierror.Append(result, errors.New("call timeout must not be negative"))
	}
	if c.Workers <= 0 {
		result = multierror.Append(result, errors.New("workers must be positive"))
	}
	if _, err := semver.NewVersion(c.IOSVersion); err != nil {
		result = multierror.Append(result, errors.Errorf("ios version %q is invalid", c.IOSVersion))
	}
	if len(c.Platforms) == 0 {
		result = multierror.Append(result, errors.New("at least one platform is required"))
	}
	for _, p := range c.Platforms {
		switch p {
		case plugin.PlatformAndroid, plugin.PlatformIOS, plugin.PlatformIOSLegacy:
		default:
			result = multierror.Append(result, errors.Errorf("unknown platform %q", p))
		}
	}

	return result.ErrorOrNil()
}

func parseAPIKeys(raw string) (map[string]string, error) {
	tenants := map[string]string{}
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		parts := strings.SplitN(p, ":", 2)
		if len(parts) != 2 {
			return nil, errors.New(`API_KEYS must be "tenant:key,tenant:key"`)
		}
		tenant := strings.TrimSpace(parts[0])
		key := strings.TrimSpace(parts[1])
		if tenant == "" || key == "" {
			return nil, errors.New(`API_KEYS must be "tenant:key,tenant:key"`)
		}
		tenants[tenant] = key
	}
	return tenants, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
