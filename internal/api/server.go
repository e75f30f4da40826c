package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/healthhive/healthhive/internal/domain"
	"github.com/healthhive/healthhive/internal/service"
)

// Server represents the HTTP server
type Server struct {
	cfg      *domain.Config
	analysis *service.AnalysisService
	summary  *service.SummaryService
	catalog  domain.ReferenceCatalog
	reports  domain.ReportStore
	labTests domain.LabTestStore
	log      *logrus.Logger

	router  *gin.Engine
	server  *http.Server
	limiter *clientLimiter

	// healthCheck probes the backing store; nil means no probe is wired.
	healthCheck func(ctx context.Context) error
}

// Deps bundles the collaborators the server routes to. ReportStore and
// LabTestStore may be nil; the corresponding endpoints then return 404.
type Deps struct {
	Analysis    *service.AnalysisService
	Summary     *service.SummaryService
	Catalog     domain.ReferenceCatalog
	Reports     domain.ReportStore
	LabTests    domain.LabTestStore
	HealthCheck func(ctx context.Context) error
}

// NewServer creates a new HTTP server instance
func NewServer(cfg *domain.Config, deps Deps, logger *logrus.Logger) *Server {
	// Set Gin mode based on environment
	if cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(requestIDMiddleware())
	router.Use(requestLogger(logger))

	server := &Server{
		cfg:         cfg,
		analysis:    deps.Analysis,
		summary:     deps.Summary,
		catalog:     deps.Catalog,
		reports:     deps.Reports,
		labTests:    deps.LabTests,
		log:         logger,
		router:      router,
		limiter:     newClientLimiter(cfg.Server.AnalyzeRateLimit, cfg.Server.AnalyzeRateBurst),
		healthCheck: deps.HealthCheck,
	}

	server.setupRoutes()

	return server
}

// Start starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Start(ctx context.Context) error {
	cfg := s.cfg.Server
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", addr).Info("HTTP server listening")
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return s.server.Shutdown(shutdownCtx)
}

// Handler exposes the router; used by tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// setupRoutes configures the API routes
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		lab := v1.Group("/lab")
		{
			lab.POST("/analyze", s.limiter.middleware(), s.handleAnalyze)
			lab.POST("/evaluate", s.limiter.middleware(), s.handleEvaluate)
			lab.GET("/reports/:id", s.handleGetReport)
			lab.GET("/references/:panel", s.handleGetReferences)
			lab.GET("/tests", s.handleListLabTests)
			lab.POST("/bookings", s.handleCreateBooking)
		}

		patients := v1.Group("/patients")
		{
			patients.GET("/:patientID/reports", s.handleGetPatientReports)
			patients.GET("/:patientID/bookings", s.handleGetPatientBookings)
		}
	}
}

// corsMiddleware adds CORS headers to responses
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, X-API-Key")
		c.Header("Access-Control-Expose-Headers", "Content-Length")
		c.Header("Access-Control-Allow-Credentials", "true")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// requestIDMiddleware adds a unique request ID to each request
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
	}
}

// requestLogger logs one structured line per request.
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.WithFields(logrus.Fields{
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
			"request_id": c.GetString("request_id"),
		}).Info("request handled")
	}
}

// generateRequestID generates a simple request ID
func generateRequestID() string {
	return fmt.Sprintf("%d", time.Now().UnixNano())
}
