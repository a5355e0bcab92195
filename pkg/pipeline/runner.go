package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/projectday/postergen/pkg/assets"
	"github.com/projectday/postergen/pkg/cache"
	"github.com/projectday/postergen/pkg/compose"
	"github.com/projectday/postergen/pkg/config"
	"github.com/projectday/postergen/pkg/errors"
	"github.com/projectday/postergen/pkg/fonts"
	"github.com/projectday/postergen/pkg/observability"
	"github.com/projectday/postergen/pkg/record"
	"github.com/projectday/postergen/pkg/render"
)

// Runner executes the poster pipeline with caching. It is stateless apart
// from the cache, the font registry, and the logger; one Runner serves
// concurrent runs safely.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
	Fonts  *fonts.Registry
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// selects the default keyer, and a nil logger selects the default logger.
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) (*Runner, error) {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if logger == nil {
		logger = log.Default()
	}
	reg, err := fonts.NewRegistry()
	if err != nil {
		return nil, err
	}
	return &Runner{Cache: c, Keyer: keyer, Logger: logger, Fonts: reg}, nil
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies this run in logs and hooks.
	RunID string

	// Posters holds one entry per processed record, in workbook order.
	Posters []PosterResult

	// Stats contains timing and outcome counts.
	Stats Stats
}

// PosterResult is the outcome for a single record.
type PosterResult struct {
	RecordID   string
	Title      string
	Row        int
	OutputName string

	// Warnings carries the non-fatal layout problems from composition.
	Warnings []compose.Warning

	// Artifacts maps format to the written file path.
	Artifacts map[string]string

	// CacheHits maps format to whether the artifact came from cache.
	CacheHits map[string]bool

	// Err is set when this record failed. Other records are unaffected.
	Err error
}

// Stats contains pipeline execution statistics.
type Stats struct {
	ReadTime   time.Duration
	RenderTime time.Duration
	Records    int
	Succeeded  int
	Failed     int
}

// cachedPlan bundles a plan with its warnings for plan-stage caching.
type cachedPlan struct {
	Plan     *compose.Plan     `json:"plan"`
	Warnings []compose.Warning `json:"warnings,omitempty"`
}

// Execute runs the complete read → compose → render pipeline.
//
// Record failures do not abort the run: each failed record carries its
// error in the corresponding PosterResult; Execute returns an error only
// when the run as a whole cannot proceed (unreadable workbook, unwritable
// output directory, invalid options).
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	hooks := observability.Pipeline()

	result := &Result{RunID: uuid.NewString()}

	readStart := time.Now()
	hooks.OnReadStart(ctx, opts.Workbook)
	records, err := record.ReadWorkbook(opts.Workbook, opts.Config.Columns)
	result.Stats.ReadTime = time.Since(readStart)
	hooks.OnReadComplete(ctx, opts.Workbook, len(records), result.Stats.ReadTime, err)
	if err != nil {
		return nil, err
	}

	selected := records[:0:0]
	for _, rec := range records {
		if opts.wantsRecord(rec.ID) {
			selected = append(selected, rec)
		}
	}
	logger.Info("read workbook", "records", len(records), "selected", len(selected), "duration", result.Stats.ReadTime)

	resolver := &assets.Resolver{ImagesDir: opts.ImagesDir, FontsDir: opts.FontsDir}
	r.loadConfiguredFonts(opts.Config, resolver, logger)
	composer := compose.New(opts.Config, r.Fonts, resolver, r.resolveFontSet(opts.Config, logger))

	if err := os.MkdirAll(opts.OutputDir, 0755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "creating output directory %s", opts.OutputDir)
	}

	configHash := cache.HashJSON(opts.Config)
	renderStart := time.Now()

	result.Posters = make([]PosterResult, len(selected))
	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				result.Posters[i] = r.processRecord(ctx, composer, resolver, opts, configHash, selected[i])
			}
		}()
	}
	for i := range selected {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	result.Stats.RenderTime = time.Since(renderStart)
	result.Stats.Records = len(selected)
	for _, p := range result.Posters {
		if p.Err != nil {
			result.Stats.Failed++
		} else {
			result.Stats.Succeeded++
		}
	}

	logger.Info("run complete",
		"run_id", result.RunID,
		"succeeded", result.Stats.Succeeded,
		"failed", result.Stats.Failed,
		"duration", result.Stats.RenderTime)
	return result, nil
}

// processRecord composes and renders one record. All failures are
// captured in the returned PosterResult.
func (r *Runner) processRecord(ctx context.Context, composer *compose.Composer, resolver *assets.Resolver, opts Options, configHash string, rec record.Record) PosterResult {
	res := PosterResult{
		RecordID:  rec.ID,
		Title:     rec.Name,
		Row:       rec.Row,
		Artifacts: make(map[string]string),
		CacheHits: make(map[string]bool),
	}

	if problems := rec.Validate(); len(problems) > 0 {
		res.Err = errors.New(errors.ErrCodeInvalidRecord, "row %d: %s", rec.Row, problems[0])
		return res
	}

	plan, warnings, err := r.composeRecord(ctx, composer, resolver, opts, configHash, rec)
	if err != nil {
		res.Err = err
		return res
	}
	res.Warnings = warnings
	res.OutputName = plan.OutputName

	planHash := cache.HashJSON(plan)
	for _, format := range opts.Formats {
		data, hit, err := r.renderFormat(ctx, plan, planHash, format, opts)
		if err != nil {
			res.Err = errors.Wrap(errors.ErrCodeRender, err, "record %s: rendering %s", rec.ID, format)
			return res
		}
		res.CacheHits[format] = hit

		outPath := filepath.Join(opts.OutputDir, plan.OutputName+"."+format)
		if err := writeAtomic(outPath, data); err != nil {
			res.Err = err
			return res
		}
		res.Artifacts[format] = outPath
	}
	return res
}

// composeRecord produces the plan for one record, consulting the plan
// cache first.
func (r *Runner) composeRecord(ctx context.Context, composer *compose.Composer, resolver *assets.Resolver, opts Options, configHash string, rec record.Record) (*compose.Plan, []compose.Warning, error) {
	hooks := observability.Pipeline()
	cacheHooks := observability.Cache()

	// Image resolution feeds the cache key: a replaced photo must
	// invalidate the cached plan.
	imagePath := ""
	imageHash := ""
	if p, err := resolver.FindImage(rec.ID, rec.ImageFile); err == nil {
		imagePath = p
		if data, err := os.ReadFile(p); err == nil {
			imageHash = cache.Hash(data)
		}
	}

	key := r.Keyer.PlanKey(cache.HashJSON(rec), cache.PlanKeyOpts{ConfigHash: configHash, ImageHash: imageHash})
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var cached cachedPlan
			if err := json.Unmarshal(data, &cached); err == nil && cached.Plan != nil {
				cacheHooks.OnCacheHit(ctx, "plan")
				return cached.Plan, cached.Warnings, nil
			}
		}
		cacheHooks.OnCacheMiss(ctx, "plan")
	}

	// Logo paths may be relative to the images dir; unresolvable ones
	// pass through so the composer can attach its warning.
	logos := make([]string, 0, len(opts.Config.Logos.Paths))
	for _, p := range opts.Config.Logos.Paths {
		if resolved, err := resolver.ResolveLogo(p); err == nil {
			logos = append(logos, resolved)
		} else {
			logos = append(logos, p)
		}
	}

	start := time.Now()
	hooks.OnComposeStart(ctx, rec.ID)
	plan, warnings := composer.Compose(rec, imagePath, logos)
	hooks.OnComposeComplete(ctx, rec.ID, len(warnings), time.Since(start), nil)

	if data, err := json.Marshal(cachedPlan{Plan: plan, Warnings: warnings}); err == nil {
		if err := r.Cache.Set(ctx, key, data, r.cacheTTL(opts)); err == nil {
			cacheHooks.OnCacheSet(ctx, "plan", len(data))
		}
	}
	return plan, warnings, nil
}

// renderFormat renders one format for a plan, consulting the artifact
// cache first. PDF output depends on an external converter, so cache
// hits matter most there.
func (r *Runner) renderFormat(ctx context.Context, plan *compose.Plan, planHash, format string, opts Options) ([]byte, bool, error) {
	hooks := observability.Pipeline()
	cacheHooks := observability.Cache()

	key := r.Keyer.ArtifactKey(planHash, cache.ArtifactKeyOpts{Format: format, Scale: opts.PNGScale})
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			cacheHooks.OnCacheHit(ctx, "artifact")
			return data, true, nil
		}
		cacheHooks.OnCacheMiss(ctx, "artifact")
	}

	start := time.Now()
	hooks.OnRenderStart(ctx, plan.RecordID, format)
	data, err := render.Render(plan, format, render.Options{Registry: r.Fonts, PNGScale: opts.PNGScale})
	hooks.OnRenderComplete(ctx, plan.RecordID, format, len(data), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if err := r.Cache.Set(ctx, key, data, r.cacheTTL(opts)); err == nil {
		cacheHooks.OnCacheSet(ctx, "artifact", len(data))
	}
	return data, false, nil
}

// loadConfiguredFonts registers font files named in the config, looking
// in the bundled fonts dir first and the system font paths second.
func (r *Runner) loadConfiguredFonts(cfg config.Config, resolver *assets.Resolver, logger *log.Logger) {
	for name, file := range cfg.Fonts.Files {
		path, err := resolver.FindFont(file)
		if err != nil {
			logger.Warn("font file not found, using builtin fallback", "font", name, "file", file)
			continue
		}
		if err := r.Fonts.LoadFile(name, path); err != nil {
			logger.Warn("font file unreadable, using builtin fallback", "font", name, "path", path, "err", err)
		}
	}
}

// resolveFontSet maps the configured font names onto registered fonts,
// falling back to the Go builtins.
func (r *Runner) resolveFontSet(cfg config.Config, logger *log.Logger) compose.FontSet {
	resolve := func(requested, fallback string) string {
		name, err := r.Fonts.Resolve(requested, fallback)
		if err != nil {
			return fallback
		}
		if name != requested {
			logger.Debug("font not registered, substituting", "requested", requested, "using", name)
		}
		return name
	}
	return compose.FontSet{
		Title:   resolve(cfg.Fonts.TitleFont, fonts.GoBold),
		Heading: resolve(cfg.Fonts.HeadingFont, fonts.GoBold),
		Body:    resolve(cfg.Fonts.BodyFont, fonts.GoRegular),
	}
}

func (r *Runner) cacheTTL(opts Options) time.Duration {
	return time.Duration(opts.Config.Cache.TTLHours) * time.Hour
}

// writeAtomic writes data via a temp file and rename so a crashed run
// never leaves a truncated artifact behind.
func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "writing %s", tmp)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return errors.Wrap(errors.ErrCodeInvalidPath, err, "renaming %s", tmp)
	}
	return nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
