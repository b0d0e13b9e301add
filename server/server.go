// Package server exposes the analysis pipeline over HTTP: spreadsheet
// uploads become in-memory sessions that can be analyzed, searched and
// rendered into downloadable reports.
package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"farmalytics/analysis"
	"farmalytics/docs"
	"farmalytics/internal/config"
	"farmalytics/report"
	"farmalytics/server/middleware"
)

// Server ties the HTTP layer to the session store and report generator.
type Server struct {
	config     *config.Config
	sessions   *SessionStore
	reports    *report.Generator
	keywords   analysis.KeywordTable
	httpServer *http.Server
}

// New builds a server from the configuration. The keyword table is loaded
// from cfg.KeywordsFile when set, defaults otherwise.
func New(cfg *config.Config) (*Server, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	keywords := analysis.DefaultKeywords()
	if cfg.KeywordsFile != "" {
		kt, err := analysis.LoadKeywordTable(cfg.KeywordsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load keywords file: %w", err)
		}
		keywords = kt
		log.Printf("Keyword table loaded from %s", cfg.KeywordsFile)
	}

	gen, err := report.NewGenerator(cfg.ReportsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare reports directory: %w", err)
	}

	return &Server{
		config:   cfg,
		sessions: NewSessionStore(cfg.MaxSessions),
		reports:  gen,
		keywords: keywords,
	}, nil
}

// Router builds the gin engine with all middleware and routes attached.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	router.Use(middleware.GinRecovery())
	router.Use(middleware.GinRequestID())
	router.Use(middleware.GinLogger())
	router.Use(middleware.GinCORS())
	router.Use(middleware.GinGzip())
	router.MaxMultipartMemory = int64(s.config.MaxUploadMB) << 20

	api := router.Group("/api")
	api.Use(middleware.GinRateLimit(s.config.RateLimitPerSec, s.config.RateLimitBurst))
	{
		api.GET("/health", s.handleHealth)

		api.POST("/datasets", s.handleUpload)
		api.GET("/datasets", s.handleListDatasets)
		api.GET("/datasets/:id", s.handleGetDataset)
		api.DELETE("/datasets/:id", s.handleDeleteDataset)

		api.GET("/datasets/:id/analysis", s.handleAnalysis)
		api.GET("/datasets/:id/report", s.handleReport)
		api.GET("/datasets/:id/products", s.handleProductSearch)
	}

	docs.SwaggerInfo.Host = "localhost:" + s.config.Port
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	return router
}

// Start runs the HTTP server until Shutdown is called or it fails.
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         ":" + s.config.Port,
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * time.Minute, // report downloads can be large
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("Server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("HTTP server failed: %w", err)
	}
	return nil
}

// Shutdown stops the server gracefully, letting in-flight requests finish.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	log.Printf("Server shutting down")
	return s.httpServer.Shutdown(ctx)
}
