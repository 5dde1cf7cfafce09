package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/khanglvm/orbit/internal/httpapi"
	"github.com/khanglvm/orbit/internal/interview"
	"github.com/khanglvm/orbit/internal/matching"
	"github.com/khanglvm/orbit/internal/seed"
)

// NewServeCmd creates the 'serve' command for running the HTTP API.
func NewServeCmd() *cobra.Command {
	var seedDefaults bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the interview HTTP API",
		Long: `Start the orbit HTTP API.

Endpoints:
  POST /session/start        start a session and get the first question
  POST /response             submit an answer and get the next question
  GET  /session/:id/result   match report for a completed session
  GET  /health               liveness probe
  GET  /metrics              Prometheus metrics

The server shuts down gracefully on SIGINT/SIGTERM.`,
		Example: `  # Listen on the default address
  orbit serve

  # Custom address, seeding the built-in catalog first
  orbit serve --addr 127.0.0.1:9000 --seed`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, seedDefaults)
		},
	}

	cmd.Flags().String("addr", "", "listen address (default 0.0.0.0:8000)")
	cmd.Flags().BoolVar(&seedDefaults, "seed", false, "insert the built-in questions and archetypes before serving")

	return cmd
}

// runServe starts the HTTP server with signal handling.
// Implements graceful shutdown on SIGINT/SIGTERM/SIGQUIT.
func runServe(cmd *cobra.Command, seedDefaults bool) error {
	rt, err := loadRuntime(cmd, map[string]string{"http.addr": "addr"})
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx, stop := signal.NotifyContext(contextOrBackground(cmd), os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	if seedDefaults {
		qs, as, err := seed.Defaults()
		if err != nil {
			return err
		}
		if _, err := seed.Run(ctx, rt.store, qs, as, rt.logger); err != nil {
			return fmt.Errorf("failed to seed catalog: %w", err)
		}
	}

	svc, reg, err := newService(rt)
	if err != nil {
		return err
	}

	server := httpapi.NewServer(svc, httpapi.ServerConfig{
		Addr:        rt.cfg.HTTP.Addr,
		CORSOrigins: rt.cfg.HTTP.CORSOrigins,
		Debug:       rt.cfg.Debug,
	}, reg, rt.logger)

	if err := server.Run(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	rt.logger.Info("shutdown complete")
	return nil
}

// newService wires the interview service from configuration and returns
// the registry its metrics are exported from.
func newService(rt *runtime) (*interview.Service, *prometheus.Registry, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	engine := matching.NewEngine()
	engine.Threshold = rt.cfg.Matching.ClosenessThreshold

	svc, err := interview.NewService(rt.store,
		interview.WithEngine(engine),
		interview.WithLogger(rt.logger),
		interview.WithMetrics(interview.NewMetrics(reg)),
		interview.WithLimits(rt.cfg.Interview.TimeLimit, rt.cfg.Interview.QuestionLimit),
		interview.WithTopN(rt.cfg.Matching.TopN),
		interview.WithReportCacheSize(rt.cfg.ReportCache.Size),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create interview service: %w", err)
	}

	rt.logger.Info("interview service ready",
		zap.Duration("time_limit", rt.cfg.Interview.TimeLimit),
		zap.Int("question_limit", rt.cfg.Interview.QuestionLimit),
		zap.Int("top_n", rt.cfg.Matching.TopN),
	)
	return svc, reg, nil
}

// contextOrBackground returns cmd's context, which is nil when the command
// runs outside Execute.
func contextOrBackground(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
