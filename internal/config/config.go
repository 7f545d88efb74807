package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/jask/baydesk/internal/geometry"
)

// Config holds application configuration. It is resolved once by Load and
// passed down explicitly; nothing reads the environment after startup.
type Config struct {
	API      APIConfig      `mapstructure:"api"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Database DatabaseConfig `mapstructure:"database"`
	Log      LogConfig      `mapstructure:"log"`
	DevAPI   DevAPIConfig   `mapstructure:"devapi"`
	UI       UIConfig       `mapstructure:"ui"`
}

// APIConfig holds REST backend settings.
type APIConfig struct {
	// Environment selects an entry of Environments.
	Environment  string            `mapstructure:"environment"`
	Environments map[string]string `mapstructure:"environments"`
	// BaseURL overrides the environment table. After Load it holds the
	// resolved URL whichever way it was chosen.
	BaseURL        string        `mapstructure:"base_url"`
	Timeout        time.Duration `mapstructure:"timeout"`
	TokenEnv       string        `mapstructure:"token_env"`
	Token          string        `mapstructure:"token"`
	KeyringAccount string        `mapstructure:"keyring_account"`
}

// CatalogConfig picks where models and SKUs come from.
type CatalogConfig struct {
	Source string `mapstructure:"source"` // remote | local
}

// DatabaseConfig holds sqlite settings for the local catalog.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// DevAPIConfig holds settings for the development backend.
type DevAPIConfig struct {
	Addr  string `mapstructure:"addr"`
	Token string `mapstructure:"token"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	PageSize int           `mapstructure:"page_size"`
	Dialogs  DialogsConfig `mapstructure:"dialogs"`
}

// DialogsConfig holds panel geometry for each dialog of the SKU cascade.
type DialogsConfig struct {
	SKUForm      geometry.Config `mapstructure:"sku_form"`
	ModelBrowser geometry.Config `mapstructure:"model_browser"`
	ModelForm    geometry.Config `mapstructure:"model_form"`
}

const (
	SourceRemote = "remote"
	SourceLocal  = "local"
)

// Load reads configuration from file and env. Env var overrides use prefix BAYDESK_.
func Load() (Config, error) {
	c, err := LoadRaw()
	if err != nil {
		return Config{}, err
	}
	if err := c.resolve(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadRaw reads file and env like Load but skips validation and base URL
// resolution. Token management uses it so a broken api section cannot lock
// the user out of fixing credentials.
func LoadRaw() (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	if cfgPath := os.Getenv("BAYDESK_CONFIG"); cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(homeDir(), ".config", "baydesk"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("BAYDESK")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// a missing default config file is fine; a broken or missing explicit one is not
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	home := homeDir()
	v.SetDefault("api.environment", "development")
	v.SetDefault("api.environments", map[string]string{
		"development": "http://localhost:8787/api",
		"staging":     "https://staging.baydesk.internal/api",
		"production":  "https://baydesk.internal/api",
	})
	v.SetDefault("api.base_url", "")
	v.SetDefault("api.timeout", "15s")
	v.SetDefault("api.token_env", "BAYDESK_TOKEN")
	v.SetDefault("api.token", "")
	v.SetDefault("api.keyring_account", "default")
	v.SetDefault("catalog.source", SourceRemote)
	v.SetDefault("database.path", filepath.Join(home, ".local", "share", "baydesk", "baydesk.db"))
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", filepath.Join(home, ".local", "state", "baydesk", "baydesk.log"))
	v.SetDefault("devapi.addr", "127.0.0.1:8787")
	v.SetDefault("devapi.token", "")
	v.SetDefault("ui.page_size", 20)

	setDialogDefaults(v, "ui.dialogs.sku_form", DefaultDialogs().SKUForm)
	setDialogDefaults(v, "ui.dialogs.model_browser", DefaultDialogs().ModelBrowser)
	setDialogDefaults(v, "ui.dialogs.model_form", DefaultDialogs().ModelForm)
}

func setDialogDefaults(v *viper.Viper, prefix string, g geometry.Config) {
	v.SetDefault(prefix+".default_width", g.DefaultWidth)
	v.SetDefault(prefix+".default_height", g.DefaultHeight)
	v.SetDefault(prefix+".default_x", g.DefaultX)
	v.SetDefault(prefix+".default_y", g.DefaultY)
	v.SetDefault(prefix+".min_width", g.MinWidth)
	v.SetDefault(prefix+".min_height", g.MinHeight)
	v.SetDefault(prefix+".max_width", g.MaxWidth)
	v.SetDefault(prefix+".max_height", g.MaxHeight)
}

// DefaultDialogs returns the built-in panel geometry. Each level of the
// cascade starts a little further down and right than its parent.
func DefaultDialogs() DialogsConfig {
	return DialogsConfig{
		SKUForm: geometry.Config{
			DefaultWidth: 56, DefaultHeight: 16, DefaultX: 2, DefaultY: 1,
			MinWidth: 40, MinHeight: 12, MaxWidth: 100, MaxHeight: 30,
		},
		ModelBrowser: geometry.Config{
			DefaultWidth: 60, DefaultHeight: 18, DefaultX: 8, DefaultY: 3,
			MinWidth: 36, MinHeight: 10, MaxWidth: 120, MaxHeight: 40,
		},
		ModelForm: geometry.Config{
			DefaultWidth: 50, DefaultHeight: 14, DefaultX: 14, DefaultY: 5,
			MinWidth: 36, MinHeight: 12, MaxWidth: 90, MaxHeight: 24,
		},
	}
}

// resolve validates the loaded values and settles the API base URL.
func (c *Config) resolve() error {
	base, err := c.API.ResolveBaseURL()
	if err != nil {
		return err
	}
	c.API.BaseURL = base
	c.API.Environment = strings.ToLower(strings.TrimSpace(c.API.Environment))

	switch c.Catalog.Source = strings.ToLower(strings.TrimSpace(c.Catalog.Source)); c.Catalog.Source {
	case SourceRemote, SourceLocal:
	default:
		return fmt.Errorf("config: catalog.source %q must be %q or %q", c.Catalog.Source, SourceRemote, SourceLocal)
	}
	if c.UI.PageSize <= 0 {
		c.UI.PageSize = 20
	}
	for name, g := range map[string]geometry.Config{
		"sku_form":      c.UI.Dialogs.SKUForm,
		"model_browser": c.UI.Dialogs.ModelBrowser,
		"model_form":    c.UI.Dialogs.ModelForm,
	} {
		if err := g.Validate(); err != nil {
			return fmt.Errorf("config: ui.dialogs.%s: %w", name, err)
		}
	}
	return nil
}

// ResolveBaseURL applies the precedence explicit base_url > environments[environment].
// The result must be an absolute http(s) URL without a trailing slash.
func (a APIConfig) ResolveBaseURL() (string, error) {
	raw := strings.TrimSpace(a.BaseURL)
	source := "api.base_url"
	if raw == "" {
		env := strings.ToLower(strings.TrimSpace(a.Environment))
		raw = strings.TrimSpace(a.Environments[env])
		source = "api.environments." + env
		if raw == "" {
			known := make([]string, 0, len(a.Environments))
			for k := range a.Environments {
				known = append(known, k)
			}
			sort.Strings(known)
			return "", fmt.Errorf("config: no base url for environment %q (known: %s)", env, strings.Join(known, ", "))
		}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("config: %s: %w", source, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("config: %s %q must be an absolute http(s) url", source, raw)
	}
	return strings.TrimRight(u.String(), "/"), nil
}

// Save writes the provided config to disk, creating the config directory if
// needed. Tokens are never written; they live in the keyring or env.
func Save(cfg Config) error {
	path := os.Getenv("BAYDESK_CONFIG")
	if path == "" {
		path = filepath.Join(homeDir(), ".config", "baydesk", "config.toml")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}

	v := viper.New()
	v.SetConfigType("toml")
	v.Set("api.environment", cfg.API.Environment)
	v.Set("api.environments", cfg.API.Environments)
	v.Set("api.timeout", cfg.API.Timeout.String())
	v.Set("api.token_env", cfg.API.TokenEnv)
	v.Set("api.keyring_account", cfg.API.KeyringAccount)
	v.Set("catalog.source", cfg.Catalog.Source)
	v.Set("database.path", cfg.Database.Path)
	v.Set("log.level", cfg.Log.Level)
	v.Set("log.format", cfg.Log.Format)
	v.Set("log.file", cfg.Log.File)
	v.Set("ui.page_size", cfg.UI.PageSize)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func homeDir() string {
	if h, err := os.UserHomeDir(); err == nil {
		return h
	}
	return os.Getenv("HOME")
}
