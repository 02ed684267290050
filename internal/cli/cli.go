package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackgrid/pkg/cache"
	"github.com/matzehuels/stackgrid/pkg/config"
	"github.com/matzehuels/stackgrid/pkg/errors"
	"github.com/matzehuels/stackgrid/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "stackgrid"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// Verbose forces debug logging regardless of the config file.
	Verbose bool

	// Config is loaded before any subcommand runs.
	Config *config.Config

	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), c.Config.Cache.Prefix)
	return pipeline.NewRunner(store, keyer, c.Logger), nil
}

// newCache opens the configured cache backend.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.Config.Cache.Backend {
	case config.BackendNone:
		return cache.NewNullCache(), nil
	case config.BackendRedis:
		spinner := newSpinnerWithContext(ctx, "Connecting to redis...")
		spinner.Start()
		store, err := cache.NewRedisCache(ctx, c.Config.Cache.RedisURL)
		spinner.Stop()
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidConfig, err, "connect to redis")
		}
		return store, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		c.Logger.Warn("cache disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if c.Config != nil && c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/stackgrid/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// gridFlags are the per-command overrides of the [grid] config section.
type gridFlags struct {
	cols             int
	rowHeight        float64
	maxRows          int
	width            float64
	compactType      string
	allowOverlap     bool
	preventCollision bool
	bounded          bool
}

func addGridFlags(cmd *cobra.Command, f *gridFlags) {
	cmd.Flags().IntVar(&f.cols, "cols", 0, "number of columns (default from config)")
	cmd.Flags().Float64Var(&f.rowHeight, "row-height", 0, "row height in pixels")
	cmd.Flags().IntVar(&f.maxRows, "max-rows", 0, "maximum number of rows (0 = unbounded)")
	cmd.Flags().Float64Var(&f.width, "width", 0, "container width in pixels")
	cmd.Flags().StringVarP(&f.compactType, "compact", "c", "", "compaction: vertical, horizontal, none")
	cmd.Flags().BoolVar(&f.allowOverlap, "allow-overlap", false, "allow items to overlap")
	cmd.Flags().BoolVar(&f.preventCollision, "prevent-collision", false, "reject moves onto other items")
	cmd.Flags().BoolVar(&f.bounded, "bounded", false, "keep dragged items inside the grid")
}

// options returns the configured grid options with the flags the user set
// applied on top.
func (c *CLI) options(cmd *cobra.Command, f *gridFlags) (pipeline.Options, error) {
	opts := c.Config.Grid.Clone()
	changed := cmd.Flags().Changed
	if changed("cols") {
		opts.Cols = f.cols
	}
	if changed("row-height") {
		opts.RowHeight = f.rowHeight
	}
	if changed("max-rows") {
		opts.MaxRows = f.maxRows
	}
	if changed("width") {
		opts.ContainerWidth = f.width
	}
	if changed("compact") {
		opts.CompactType = f.compactType
		opts.VerticalCompact = nil
	}
	if changed("allow-overlap") {
		opts.AllowOverlap = f.allowOverlap
	}
	if changed("prevent-collision") {
		opts.PreventCollision = f.preventCollision
	}
	if changed("bounded") {
		opts.IsBounded = f.bounded
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}
