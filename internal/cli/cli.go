// Package cli implements the postergen command-line interface.
//
// This package provides commands for generating posters from an Excel
// workbook, composing and rendering plans as separate steps, inspecting
// workbook contents, serving the pipeline over HTTP, and managing the
// artifact cache. The CLI is built using cobra and supports verbose
// logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - generate: Run the full workbook → poster pipeline
//   - compose: Produce draw plans without rendering
//   - render: Render previously composed plan files
//   - inspect: Validate and list workbook records
//   - serve: Expose the pipeline over HTTP
//   - cache: Manage the artifact cache
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. Loggers
// are passed through context.Context for structured progress tracking.
package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/projectday/postergen/pkg/buildinfo"
	"github.com/projectday/postergen/pkg/cache"
	"github.com/projectday/postergen/pkg/config"
	"github.com/projectday/postergen/pkg/pipeline"
	"github.com/projectday/postergen/pkg/render"
)

// appName is the application name used for directories and display.
const appName = "postergen"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: log.NewWithOptions(w, log.Options{
			ReportTimestamp: true,
			TimeFormat:      "15:04:05.00",
			Level:           level,
		}),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Postergen renders project-day posters from an Excel workbook",
		Long:         `Postergen reads project records from an Excel workbook, lays each one out as an A1 poster (image band, title, problem/solution/product sections, team block), and renders the results as PDF, SVG, or PNG.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())

	root.AddCommand(c.generateCommand())
	root.AddCommand(c.composeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// newRunner creates a pipeline runner honoring the configured cache backend.
func (c *CLI) newRunner(cmd *cobra.Command, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	store, err := c.newCache(cmd, cfg, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(store, nil, c.Logger)
}

// newCache selects the cache backend from config: "file" (default),
// "redis", or "none". A backend that fails to initialize degrades to no
// caching rather than aborting the run.
func (c *CLI) newCache(cmd *cobra.Command, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache || cfg.Cache.Backend == "none" {
		return cache.NewNullCache(), nil
	}

	if cfg.Cache.Backend == "redis" {
		rc, err := cache.NewRedisCache(cmd.Context(), cfg.Cache.RedisAddr, "", 0)
		if err != nil {
			c.Logger.Warn("redis unavailable, caching disabled", "addr", cfg.Cache.RedisAddr, "err", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	}

	dir := cfg.Cache.Dir
	if dir == "" {
		var err error
		dir, err = cacheDir()
		if err != nil {
			return cache.NewNullCache(), nil
		}
	}
	return cache.NewFileCache(dir)
}

// cacheDir returns the cache directory using XDG standard (~/.cache/postergen/).
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

// loadConfig reads the config file when given, otherwise returns defaults.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	return cfg, cfg.Validate()
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{render.FormatPDF}
	}
	return strings.Split(s, ",")
}

// parseRecords parses a comma-separated record id filter.
func parseRecords(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
