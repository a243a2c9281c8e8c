package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the root configuration for standup, stored in
// ~/.standup/config.json. The file supports single-line // comments for
// documentation purposes. Every key can be overridden from the environment
// with the STANDUP_ prefix, e.g. STANDUP_API_BASE_URL.
type Config struct {
	API      APIConfig    `mapstructure:"api"`
	Auth     AuthConfig   `mapstructure:"auth"`
	Sync     SyncConfig   `mapstructure:"sync"`
	Search   SearchConfig `mapstructure:"search"`
	Log      LogConfig    `mapstructure:"log"`
	Timezone string       `mapstructure:"timezone"`
}

// APIConfig points at the standup service.
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// AuthConfig holds the OAuth2 device code settings. Without the two URLs
// only static tokens (standup login --token) are available.
type AuthConfig struct {
	ClientID      string   `mapstructure:"client_id"`
	DeviceAuthURL string   `mapstructure:"device_auth_url"`
	TokenURL      string   `mapstructure:"token_url"`
	Scopes        []string `mapstructure:"scopes"`
}

// SyncConfig tunes how responses are applied.
type SyncConfig struct {
	// StalePolicy is "discard-stale" or "last-write-wins".
	StalePolicy string `mapstructure:"stale_policy"`
	// RefetchAfterWrite lists the operations that re-read the collection
	// after succeeding.
	RefetchAfterWrite []string `mapstructure:"refetch_after_write"`
}

type SearchConfig struct {
	HistorySize int `mapstructure:"history_size"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

const (
	DefaultBaseURL     = "http://localhost:8080"
	DefaultTimeout     = 15 * time.Second
	DefaultStalePolicy = "discard-stale"
	DefaultHistorySize = 20
	DefaultLogLevel    = "info"

	envPrefix = "STANDUP"
)

// defaults registers every key so environment overrides apply to it.
func defaults(v *viper.Viper, base string) {
	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.timeout", DefaultTimeout)
	v.SetDefault("auth.client_id", "standup-cli")
	v.SetDefault("auth.device_auth_url", "")
	v.SetDefault("auth.token_url", "")
	v.SetDefault("auth.scopes", []string{})
	v.SetDefault("sync.stale_policy", DefaultStalePolicy)
	v.SetDefault("sync.refetch_after_write", []string{"toggleHighlight"})
	v.SetDefault("search.history_size", DefaultHistorySize)
	v.SetDefault("log.level", DefaultLogLevel)
	v.SetDefault("log.path", filepath.Join(base, "standup.log"))
	v.SetDefault("timezone", "")
}

// configTemplate is the annotated config written on first run.
// Lines whose trimmed content starts with // are stripped before JSON parsing,
// allowing human-readable documentation inside the file.
const configTemplate = `// standup configuration – ~/.standup/config.json
//
// All settings are optional. Any key can also be set from the environment
// (or a .env file next to this one) with the STANDUP_ prefix, for example
// STANDUP_API_BASE_URL or STANDUP_LOG_LEVEL.
{
  // ── Remote service ───────────────────────────────────────────────────────
  "api": {
    // Root URL of the standup service. "standup devserver" listens on
    // http://localhost:8080 by default.
    "base_url": "http://localhost:8080",

    // Per-request timeout, e.g. "15s" or "1m".
    "timeout": "15s"
  },

  // ── Authentication ───────────────────────────────────────────────────────
  "auth": {
    // OAuth2 client ID used for the device code flow.
    "client_id": "standup-cli",

    // Leave both URLs empty to use a static token: standup login --token <t>
    "device_auth_url": "",
    "token_url": "",
    "scopes": []
  },

  // ── Synchronisation ──────────────────────────────────────────────────────
  "sync": {
    // What to do with a response that arrives after a newer request of the
    // same kind was issued:
    // • "discard-stale"   – ignore it (default)
    // • "last-write-wins" – apply it anyway
    "stale_policy": "discard-stale",

    // Operations that re-read the list after succeeding. Valid names:
    // create, update, delete, toggleHighlight. [] disables refetching.
    "refetch_after_write": ["toggleHighlight"]
  },

  // ── Search ───────────────────────────────────────────────────────────────
  "search": {
    // Number of recent queries kept for: standup search --recent
    "history_size": 20
  },

  // ── Logging ──────────────────────────────────────────────────────────────
  "log": {
    // debug, info, warn or error
    "level": "info",
    // Empty means ~/.standup/standup.log
    "path": ""
  },

  // IANA timezone used to resolve "today", e.g. "Europe/Berlin".
  // Leave empty to use the local timezone.
  "timezone": ""
}
`

// FilePath returns the config location under base.
func FilePath(base string) string {
	return filepath.Join(base, "config.json")
}

// stripLineComments removes lines whose leading non-whitespace content starts
// with //. Only full-line comments are handled; inline comments are not stripped.
func stripLineComments(data []byte) []byte {
	var out []byte
	for _, line := range bytes.Split(data, []byte("\n")) {
		if bytes.HasPrefix(bytes.TrimLeft(line, " \t"), []byte("//")) {
			continue
		}
		out = append(out, line...)
		out = append(out, '\n')
	}
	return out
}

// Load reads the config at path, creating it with annotated defaults on
// first run. A .env file in base or the working directory is loaded into
// the environment first; variables already set win.
func Load(base, path string) (Config, error) {
	if err := loadDotEnv(filepath.Join(base, ".env"), ".env"); err != nil {
		return Config{}, err
	}

	v := viper.New()
	v.SetConfigType("json")
	defaults(v, base)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// First run: write the annotated template so users can discover options.
		if writeErr := writeDefault(path); writeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not create config file %s: %v\n", path, writeErr)
		}
	case err != nil:
		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	default:
		if err := v.ReadConfig(bytes.NewReader(stripLineComments(data))); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w\nTip: delete the file to regenerate defaults", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if cfg.Log.Path == "" {
		cfg.Log.Path = filepath.Join(base, "standup.log")
	}
	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = DefaultTimeout
	}
	if cfg.Search.HistorySize <= 0 {
		cfg.Search.HistorySize = DefaultHistorySize
	}
	return cfg, nil
}

func loadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("loading %s: %w", p, err)
		}
	}
	return nil
}

// writeDefault creates the config directory and writes the annotated default
// config template.
func writeDefault(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing default config: %w", err)
	}
	return nil
}
