package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/stackgrid/pkg/buildinfo"
	"github.com/matzehuels/stackgrid/pkg/config"
)

// RootCommand creates the root cobra command with all subcommands registered.
//
// The root command loads the config file before any subcommand runs:
// --config, then $STACKGRID_CONFIG, then the XDG default location. The
// config's log level and format are applied to the CLI logger unless
// Verbose is set, and the logger is attached to the command context.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Stackgrid packs rectangles on a column grid",
		Long: `Stackgrid is a layout engine for dashboard-style grids. It compacts items,
resolves drags and resizes with collision cascades, and keeps a layout in sync
with a declared set of elements.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := c.loadConfig(); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/stackgrid/stackgrid.toml)")

	// Register all subcommands
	root.AddCommand(c.compactCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.resizeCommand())
	root.AddCommand(c.syncCommand())
	root.AddCommand(c.calcXYCommand())
	root.AddCommand(c.positionCommand())
	root.AddCommand(c.checkCommand())
	root.AddCommand(c.replayCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and applies its log settings.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg

	level := cfg.LogLevel()
	if c.Verbose {
		level = LogDebug
	}
	c.Logger.SetLevel(level)
	c.Logger.SetFormatter(cfg.LogFormatter())
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	return nil
}
