package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"github.com/projectday/postergen/pkg/buildinfo"
	apperrors "github.com/projectday/postergen/pkg/errors"
	"github.com/projectday/postergen/pkg/pipeline"
)

// serveCommand creates the serve command, exposing the pipeline over HTTP.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr       string
		configPath string
		noCache    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the poster pipeline over HTTP",
		Long: `Serve the poster pipeline over HTTP.

Endpoints:
  GET  /api/health    liveness and version info
  POST /api/generate  run the pipeline; body is the run options JSON

The server shares one runner, so the artifact cache is shared across
requests. With the redis cache backend several instances can share it.`,
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

			return c.serve(cmd.Context(), addr, runner)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "layout config file (TOML or JSON)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

// generateResponse is the JSON shape returned by /api/generate.
type generateResponse struct {
	RunID   string           `json:"run_id"`
	Posters []posterResponse `json:"posters"`
	Stats   pipeline.Stats   `json:"stats"`
}

type posterResponse struct {
	RecordID  string            `json:"record_id"`
	Title     string            `json:"title"`
	Row       int               `json:"row"`
	Artifacts map[string]string `json:"artifacts,omitempty"`
	Warnings  []string          `json:"warnings,omitempty"`
	Error     string            `json:"error,omitempty"`
}

func (c *CLI) serve(ctx context.Context, addr string, runner *pipeline.Runner) error {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(10 * time.Minute))

	r.Get("/api/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"version": buildinfo.Version,
		})
	})

	r.Post("/api/generate", func(w http.ResponseWriter, req *http.Request) {
		var opts pipeline.Options
		if err := json.NewDecoder(req.Body).Decode(&opts); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
			return
		}
		opts.Logger = c.Logger

		result, err := runner.Execute(req.Context(), opts)
		if err != nil {
			status := http.StatusInternalServerError
			switch apperrors.GetCode(err) {
			case apperrors.ErrCodeInvalidConfig, apperrors.ErrCodeInvalidFormat, apperrors.ErrCodeInvalidWorkbook:
				status = http.StatusBadRequest
			}
			writeJSON(w, status, map[string]string{"error": apperrors.UserMessage(err)})
			return
		}
		writeJSON(w, http.StatusOK, toGenerateResponse(result))
	})

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.Logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func toGenerateResponse(result *pipeline.Result) generateResponse {
	resp := generateResponse{
		RunID: result.RunID,
		Stats: result.Stats,
	}
	for _, p := range result.Posters {
		pr := posterResponse{
			RecordID:  p.RecordID,
			Title:     p.Title,
			Row:       p.Row,
			Artifacts: p.Artifacts,
		}
		for _, w := range p.Warnings {
			pr.Warnings = append(pr.Warnings, fmt.Sprintf("%s: %s", w.Subject, w.Message))
		}
		if p.Err != nil {
			pr.Error = apperrors.UserMessage(p.Err)
		}
		resp.Posters = append(resp.Posters, pr)
	}
	return resp
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
