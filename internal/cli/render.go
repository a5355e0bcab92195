package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/projectday/postergen/pkg/assets"
	"github.com/projectday/postergen/pkg/fonts"
	"github.com/projectday/postergen/pkg/render"
)

// renderCommand creates the render command for executing plan files.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		configPath string
		fontsDir   string
		outputDir  string
		formatsStr string
		scale      float64
	)

	cmd := &cobra.Command{
		Use:   "render [plan.json...]",
		Short: "Render composed plan files to poster artifacts",
		Long: `Render composed plan files to poster artifacts.

Takes plan JSON files produced by 'compose' and executes them into SVG,
PNG, or PDF output. The plan already contains every draw instruction,
so this step needs no workbook or layout configuration — only fonts,
which are resolved from the registry by the names recorded in the plan.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(formatsStr)
			for _, f := range formats {
				if !render.ValidFormat(f) {
					return fmt.Errorf("invalid format: %s (must be 'svg', 'png', 'pdf', or 'json')", f)
				}
			}

			registry, err := c.buildRegistry(configPath, fontsDir)
			if err != nil {
				return err
			}
			return c.runRender(args, formats, outputDir, scale, registry)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "layout config file, used only for custom font files")
	cmd.Flags().StringVar(&fontsDir, "fonts-dir", "", "directory with bundled font files")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "output directory (default: alongside each plan)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): pdf (default), svg, png (comma-separated)")
	cmd.Flags().Float64Var(&scale, "scale", 2.0, "raster scale for png output")

	return cmd
}

// buildRegistry creates a font registry with the builtins plus any font
// files named in the config.
func (c *CLI) buildRegistry(configPath, fontsDir string) (*fonts.Registry, error) {
	registry, err := fonts.NewRegistry()
	if err != nil {
		return nil, err
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	resolver := &assets.Resolver{FontsDir: fontsDir}
	for name, file := range cfg.Fonts.Files {
		path, err := resolver.FindFont(file)
		if err != nil {
			c.Logger.Warn("font file not found, using builtin fallback", "font", name, "file", file)
			continue
		}
		if err := registry.LoadFile(name, path); err != nil {
			c.Logger.Warn("font file unreadable, using builtin fallback", "font", name, "err", err)
		}
	}
	return registry, nil
}

func (c *CLI) runRender(plans, formats []string, outputDir string, scale float64, registry *fonts.Registry) error {
	rendered := 0
	for _, planPath := range plans {
		plan, err := render.ImportPlan(planPath)
		if err != nil {
			return fmt.Errorf("load plan %s: %w", planPath, err)
		}

		dir := outputDir
		if dir == "" {
			dir = filepath.Dir(planPath)
		} else if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}

		for _, format := range formats {
			data, err := render.Render(plan, format, render.Options{Registry: registry, PNGScale: scale})
			if err != nil {
				return fmt.Errorf("render %s as %s: %w", planPath, format, err)
			}
			outPath := filepath.Join(dir, plan.OutputName+"."+format)
			if err := os.WriteFile(outPath, data, 0644); err != nil {
				return err
			}
			printFile(outPath)
			rendered++
		}
	}

	printSuccess("Rendered %d artifacts", rendered)
	return nil
}
