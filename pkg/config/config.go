// Package config loads the stackgrid configuration file.
//
// The file is TOML with one table per concern:
//
//	[grid]
//	cols = 12
//	row_height = 150
//	margin = [10, 10]
//	compact_type = "vertical"
//	resize_handles = ["se"]
//
//	[dropping_item]
//	id = "__dropping-elem__"
//	w = 1
//	h = 1
//
//	[server]
//	addr = ":8080"
//	shutdown_timeout = "10s"
//
//	[cache]
//	backend = "file"   # none, file or redis
//	redis_url = "redis://localhost:6379/0"
//
//	[log]
//	level = "info"
//	format = "text"    # text, json or logfmt
//
// Unset values are filled from [Default]. The file location is resolved by
// [Resolve]: an explicit path, then $STACKGRID_CONFIG, then
// $XDG_CONFIG_HOME/stackgrid/stackgrid.toml (~/.config when XDG_CONFIG_HOME
// is unset). A missing file at the default location is not an error.
package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/stackgrid/pkg/errors"
	"github.com/matzehuels/stackgrid/pkg/grid"
	"github.com/matzehuels/stackgrid/pkg/pipeline"
)

const (
	// EnvPath names the environment variable holding the config path.
	EnvPath = "STACKGRID_CONFIG"

	// FileName is the config file name inside the config directory.
	FileName = "stackgrid.toml"

	appName = "stackgrid"
)

// Cache backends.
const (
	BackendNone  = "none"
	BackendFile  = "file"
	BackendRedis = "redis"
)

// Log formats.
const (
	FormatText   = "text"
	FormatJSON   = "json"
	FormatLogfmt = "logfmt"
)

// Config is the decoded configuration file.
type Config struct {
	Grid         pipeline.Options `toml:"grid"`
	DroppingItem DroppingItem     `toml:"dropping_item"`
	Server       Server           `toml:"server"`
	Cache        Cache            `toml:"cache"`
	Log          Log              `toml:"log"`

	// Path is the file the config was read from, empty for defaults.
	Path string `toml:"-"`
}

// DroppingItem configures the placeholder of external drops.
type DroppingItem struct {
	ID string `toml:"id"`
	W  int    `toml:"w"`
	H  int    `toml:"h"`
}

// Server configures the HTTP API.
type Server struct {
	Addr            string        `toml:"addr"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
}

// Cache configures result caching.
type Cache struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"`
	RedisURL string `toml:"redis_url"`
	Prefix   string `toml:"prefix"`
}

// Log configures the logger.
type Log struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Default returns the built-in configuration.
func Default() *Config {
	var opts pipeline.Options
	opts.SetDefaults()
	return &Config{
		Grid: opts,
		DroppingItem: DroppingItem{
			ID: pipeline.DefaultDroppingItem.I,
			W:  pipeline.DefaultDroppingItem.W,
			H:  pipeline.DefaultDroppingItem.H,
		},
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Cache: Cache{
			Backend: BackendFile,
			Prefix:  "stackgrid:",
		},
		Log: Log{
			Level:  "info",
			Format: FormatText,
		},
	}
}

// Resolve returns the config path to read and whether it was requested
// explicitly (by flag or environment).
func Resolve(flagPath string) (string, bool) {
	if flagPath != "" {
		return flagPath, true
	}
	if env := os.Getenv(EnvPath); env != "" {
		return env, true
	}
	dir, err := Dir()
	if err != nil {
		return "", false
	}
	return filepath.Join(dir, FileName), false
}

// Dir returns the config directory using XDG standard (~/.config/stackgrid/).
func Dir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// Load reads the config at the path chosen by [Resolve], fills unset values
// from [Default] and validates the result.
func Load(flagPath string) (*Config, error) {
	path, explicit := Resolve(flagPath)
	if path == "" {
		return finish(&Config{})
	}
	cfg, err := LoadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, errors.ErrCodeFileNotFound) {
			return finish(&Config{})
		}
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads and validates the config file at path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config file %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	cfg, err := Parse(string(data))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "config %s", path)
	}
	cfg.Path = path
	return cfg, nil
}

// Parse decodes TOML text. Unknown keys are rejected.
func Parse(text string) (*Config, error) {
	var cfg Config
	md, err := toml.Decode(text, &cfg)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "decode")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown keys: %s", strings.Join(keys, ", "))
	}
	return finish(&cfg)
}

// finish merges defaults into cfg and validates it.
func finish(cfg *Config) (*Config, error) {
	if err := mergo.Merge(cfg, Default(), mergo.WithoutDereference); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "merge defaults")
	}
	cfg.Grid.DroppingItem = &grid.Item{I: cfg.DroppingItem.ID, W: cfg.DroppingItem.W, H: cfg.DroppingItem.H}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Grid.ValidateAndSetDefaults(); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case BackendNone, BackendFile:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "cache.redis_url is required for the redis backend")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig,
			"invalid cache.backend: %q (must be one of: none, file, redis)", c.Cache.Backend)
	}
	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "log.level")
	}
	if _, ok := formatters[c.Log.Format]; !ok {
		return errors.New(errors.ErrCodeInvalidConfig,
			"invalid log.format: %q (must be one of: text, json, logfmt)", c.Log.Format)
	}
	for name, d := range map[string]time.Duration{
		"server.read_timeout":     c.Server.ReadTimeout,
		"server.write_timeout":    c.Server.WriteTimeout,
		"server.shutdown_timeout": c.Server.ShutdownTimeout,
	} {
		if d < 0 {
			return errors.New(errors.ErrCodeInvalidConfig, "%s cannot be negative", name)
		}
	}
	return nil
}

var formatters = map[string]log.Formatter{
	FormatText:   log.TextFormatter,
	FormatJSON:   log.JSONFormatter,
	FormatLogfmt: log.LogfmtFormatter,
}

// LogLevel returns the configured level.
func (c *Config) LogLevel() log.Level {
	lvl, err := log.ParseLevel(c.Log.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// LogFormatter returns the configured formatter.
func (c *Config) LogFormatter() log.Formatter {
	return formatters[c.Log.Format]
}
