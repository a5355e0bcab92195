package cli

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/projectday/postergen/pkg/errors"
	"github.com/projectday/postergen/pkg/observability"
	"github.com/projectday/postergen/pkg/pipeline"
)

// generateOpts holds the command-line flags for the generate command.
type generateOpts struct {
	configPath  string
	imagesDir   string
	fontsDir    string
	outputDir   string
	formatsStr  string
	recordsStr  string
	workers     int
	scale       float64
	noCache     bool
	refresh     bool
	interactive bool
}

// generateCommand creates the generate command, the full workbook →
// poster pipeline.
func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate [workbook.xlsx]",
		Short: "Generate posters for every record in a workbook",
		Long: `Generate posters for every record in a workbook.

Each workbook row becomes one poster: the project image fills the top
band, the title and the problem/solution/product sections fill the text
column, and the team block sits at the bottom. Text that does not fit
its region is shrunk and, at the minimum size, truncated with an
ellipsis; the run reports a warning for every truncation.

A record that fails (missing fields, unreadable row) is reported and
skipped; the rest of the workbook still renders.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "layout config file (TOML or JSON)")
	cmd.Flags().StringVarP(&opts.imagesDir, "images", "i", "images", "directory with project images")
	cmd.Flags().StringVar(&opts.fontsDir, "fonts-dir", "", "directory with bundled font files")
	cmd.Flags().StringVarP(&opts.outputDir, "output", "o", "", "output directory (default from config)")
	cmd.Flags().StringVarP(&opts.formatsStr, "format", "f", "", "output format(s): pdf (default), svg, png, json (comma-separated)")
	cmd.Flags().StringVarP(&opts.recordsStr, "records", "r", "", "only these project ids (comma-separated)")
	cmd.Flags().IntVar(&opts.workers, "workers", pipeline.DefaultWorkers, "concurrent poster workers")
	cmd.Flags().Float64Var(&opts.scale, "scale", pipeline.DefaultPNGScale, "raster scale for png output")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "recompute even when cached")
	cmd.Flags().BoolVar(&opts.interactive, "interactive", false, "show per-record progress UI")

	return cmd
}

func (c *CLI) runGenerate(cmd *cobra.Command, workbook string, opts generateOpts) error {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(cmd, cfg, opts.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	runOpts := pipeline.Options{
		Workbook:  workbook,
		ImagesDir: opts.imagesDir,
		FontsDir:  opts.fontsDir,
		OutputDir: opts.outputDir,
		Formats:   parseFormats(opts.formatsStr),
		Records:   parseRecords(opts.recordsStr),
		Workers:   opts.workers,
		PNGScale:  opts.scale,
		Refresh:   opts.refresh,
		Config:    cfg,
		Logger:    c.Logger,
	}

	result, err := c.executeRun(cmd.Context(), runner, runOpts, opts.interactive)
	if err != nil {
		return err
	}
	return reportRun(result, runOpts.Formats)
}

// executeRun runs the pipeline, with either a spinner or the
// interactive progress UI.
func (c *CLI) executeRun(ctx context.Context, runner *pipeline.Runner, opts pipeline.Options, interactive bool) (*pipeline.Result, error) {
	if !interactive {
		tracker := newProgress(c.Logger)
		spinner := newSpinnerWithContext(ctx, "Generating posters...")
		spinner.Start()
		result, err := runner.Execute(ctx, opts)
		if err != nil {
			spinner.StopWithError("Generation failed")
			return nil, err
		}
		spinner.Stop()
		tracker.done(fmt.Sprintf("Generated %d posters", result.Stats.Succeeded))
		return result, nil
	}

	program := tea.NewProgram(NewRunProgressModel(0))
	observability.SetPipelineHooks(&teaPipelineHooks{send: program.Send})
	defer observability.Reset()

	var (
		result *pipeline.Result
		runErr error
	)
	go func() {
		result, runErr = runner.Execute(ctx, opts)
		program.Send(runDoneMsg{})
	}()

	final, err := program.Run()
	if err != nil {
		return nil, err
	}
	if m, ok := final.(RunProgressModel); ok && m.Aborted {
		return nil, context.Canceled
	}
	return result, runErr
}

// reportRun prints the per-poster outcome and a summary.
func reportRun(result *pipeline.Result, formats []string) error {
	for _, p := range result.Posters {
		if p.Err != nil {
			printError("%s (row %d): %s", p.RecordID, p.Row, errors.UserMessage(p.Err))
			continue
		}

		cached := len(formats) > 0
		for _, f := range formats {
			if !p.CacheHits[f] {
				cached = false
			}
		}
		printPosterLine(p.RecordID, p.Title, cached)
		for _, f := range formats {
			printFile(p.Artifacts[f])
		}
		for _, w := range p.Warnings {
			printWarning("%s: %s", w.Subject, w.Message)
		}
	}

	if result.Stats.Failed > 0 {
		printInfo("%d of %d posters failed", result.Stats.Failed, result.Stats.Records)
		return errors.New(errors.ErrCodeInvalidRecord, "%d records failed", result.Stats.Failed)
	}
	printSuccess("Generated %d posters", result.Stats.Succeeded)
	return nil
}
