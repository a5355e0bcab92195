package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/projectday/postergen/pkg/pipeline"
	"github.com/projectday/postergen/pkg/render"
)

// composeCommand creates the compose command: workbook in, plan files out.
func (c *CLI) composeCommand() *cobra.Command {
	var (
		configPath string
		imagesDir  string
		fontsDir   string
		outputDir  string
		recordsStr string
		noCache    bool
		refresh    bool
	)

	cmd := &cobra.Command{
		Use:   "compose [workbook.xlsx]",
		Short: "Compose draw plans without rendering",
		Long: `Compose draw plans without rendering.

The compose command runs the layout stage only and writes one plan JSON
file per record. A plan contains every draw instruction with fully
resolved geometry; feed it to 'render' to produce the actual artifacts.
Splitting the stages is useful for inspecting layout decisions or for
rendering the same plans at several raster scales.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			runner, err := c.newRunner(cmd, cfg, noCache)
			if err != nil {
				return fmt.Errorf("initialize runner: %w", err)
			}
			defer runner.Close()

			result, err := runner.Execute(cmd.Context(), pipeline.Options{
				Workbook:  args[0],
				ImagesDir: imagesDir,
				FontsDir:  fontsDir,
				OutputDir: outputDir,
				Formats:   []string{render.FormatJSON},
				Records:   parseRecords(recordsStr),
				Refresh:   refresh,
				Config:    cfg,
				Logger:    c.Logger,
			})
			if err != nil {
				return err
			}
			return reportRun(result, []string{render.FormatJSON})
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "layout config file (TOML or JSON)")
	cmd.Flags().StringVarP(&imagesDir, "images", "i", "images", "directory with project images")
	cmd.Flags().StringVar(&fontsDir, "fonts-dir", "", "directory with bundled font files")
	cmd.Flags().StringVarP(&outputDir, "output", "o", "plans", "output directory for plan files")
	cmd.Flags().StringVarP(&recordsStr, "records", "r", "", "only these project ids (comma-separated)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&refresh, "refresh", false, "recompute even when cached")

	return cmd
}
