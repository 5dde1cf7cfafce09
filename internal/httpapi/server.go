/*
Package httpapi exposes the interview service over HTTP.

Routes:

	POST /session/start          start a session, returns the first question
	POST /response               submit an answer, returns the next question or done
	GET  /session/:id/result     match report for a completed session
	GET  /                       service banner
	GET  /health                 liveness probe
	GET  /metrics                Prometheus metrics
*/
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/khanglvm/orbit/internal/interview"
)

const shutdownTimeout = 10 * time.Second

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Addr         string
	CORSOrigins  []string
	Debug        bool
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server serves the interview API.
type Server struct {
	svc        *interview.Service
	logger     *zap.Logger
	gatherer   prometheus.Gatherer
	engine     *gin.Engine
	httpServer *http.Server
}

// NewServer builds the router. A nil gatherer disables /metrics.
func NewServer(svc *interview.Service, cfg ServerConfig, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(requestLogger(logger))
	engine.Use(gin.Recovery())

	if len(cfg.CORSOrigins) > 0 {
		corsConfig := cors.DefaultConfig()
		corsConfig.AllowOrigins = cfg.CORSOrigins
		corsConfig.AllowCredentials = true
		corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
		corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Requested-With", requestIDHeader}
		engine.Use(cors.New(corsConfig))
	}

	s := &Server{
		svc:      svc,
		logger:   logger,
		gatherer: gatherer,
		engine:   engine,
	}

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      engine,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	s.engine.GET("/", s.handleRoot)
	s.engine.GET("/health", s.handleHealth)

	if s.gatherer != nil {
		s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	session := s.engine.Group("/session")
	{
		session.POST("/start", s.handleStartSession)
		session.GET("/:id/result", s.handleResult)
	}

	s.engine.POST("/response", s.handleSubmitResponse)
}

// Handler returns the router for embedding or testing.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("http server listening", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to start HTTP server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		s.logger.Info("http server shutting down")
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shut down HTTP server: %w", err)
		}
		return nil
	})

	return g.Wait()
}
