// Package commands implements the docrender subcommands.
package commands

import (
	"io"
	"log/slog"
	"os"

	"git.home.luguber.info/inful/docrender/internal/config"
	"github.com/alecthomas/kong"
)

// Global carries state shared between the root command and subcommands.
type Global struct {
	Logger *slog.Logger
	Stdout io.Writer
}

func (g *Global) stdout() io.Writer {
	if g.Stdout != nil {
		return g.Stdout
	}
	return os.Stdout
}

// CLI is the root command with its global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"docrender.yaml" type:"path"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Render  RenderCmd  `cmd:"" help:"Render the configured project once"`
	Watch   WatchCmd   `cmd:"" help:"Render, then re-render whenever theme or project files change"`
	Options OptionsCmd `cmd:"" help:"List the settings understood by the renderer, plugins and theme"`
	Plugins PluginsCmd `cmd:"" help:"List built-in plugins and whether they are enabled"`
	History HistoryCmd `cmd:"" help:"Show recent renders recorded by the journal plugin"`
	Init    InitCmd    `cmd:"" help:"Write an example configuration file"`
}

// AfterApply installs a bootstrap logger until the configuration is loaded.
// nolint:unparam // kong hook signature
func (c *CLI) AfterApply(g *Global) error {
	level := slog.LevelInfo
	if c.Verbose {
		level = slog.LevelDebug
	}
	g.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(g.Logger)
	return nil
}

// loadConfig loads the configuration and replaces the bootstrap logger with one built
// from the logging section.
func (c *CLI) loadConfig(g *Global) (*config.Config, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, err
	}
	g.Logger = cfg.Logging.NewLogger(os.Stderr, c.Verbose)
	slog.SetDefault(g.Logger)
	return cfg, nil
}
