// file: internal/server/server.go
// version: 2.0.0
// guid: 4c5d6e7f-8a9b-0c1d-2e3f-4a5b6c7d8e9f

package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jdfalk/petmatch/internal/config"
	"github.com/jdfalk/petmatch/internal/database"
	"github.com/jdfalk/petmatch/internal/metrics"
	"github.com/jdfalk/petmatch/internal/models"
	"github.com/jdfalk/petmatch/internal/realtime"
	"github.com/jdfalk/petmatch/internal/server/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Server represents the HTTP server
type Server struct {
	httpServer *http.Server
	router     *gin.Engine
	reports    *ReportService
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port         string
	Host         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	// WatchDir, when set, is a drop folder whose YAML/JSON files are imported
	WatchDir string
}

// NewServer creates a new server instance backed by database.GlobalStore
func NewServer() *Server {
	router := gin.New()

	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	if config.AppConfig.RateLimitPerMinute > 0 {
		router.Use(middleware.NewIPRateLimiter(config.AppConfig.RateLimitPerMinute, config.AppConfig.RateLimitBurst).Middleware())
	}
	router.Use(middleware.MaxRequestBodySize(config.AppConfig.MaxRequestBytes, config.AppConfig.MaxRequestBytes*8))

	metrics.Register()
	RegisterBindingValidators()

	server := &Server{
		router:  router,
		reports: NewReportService(database.GlobalStore, realtime.GlobalHub, config.AppConfig.MatchCacheTTL),
	}

	server.setupRoutes()

	return server
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the HTTP server and blocks until SIGINT or SIGTERM
func (s *Server) Start(cfg ServerConfig) error {
	s.httpServer = &http.Server{
		Addr:           fmt.Sprintf("%s:%s", cfg.Host, cfg.Port),
		Handler:        s.router,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	go func() {
		log.Printf("Starting server on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	bgCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()
	if cfg.WatchDir != "" {
		w, err := s.startDropFolder(bgCtx, cfg.WatchDir)
		if err != nil {
			log.Printf("[ERROR] Drop folder disabled: %v", err)
		} else {
			defer w.Stop()
		}
	}

	// Heartbeat: push periodic system.status events via SSE while running
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	stopHeartbeat := make(chan struct{})
	go s.heartbeat(5*time.Second, stopHeartbeat)

	<-quit
	close(stopHeartbeat)
	stopBackground()

	log.Println("Shutting down server...")

	if realtime.GlobalHub != nil {
		realtime.GlobalHub.Broadcast(&realtime.Event{
			Type:      "system.shutdown",
			Timestamp: time.Now(),
			Data: map[string]any{
				"message": "Server is shutting down",
			},
		})
		// Give clients a moment to receive the event
		time.Sleep(500 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Println("Server exited")
	return nil
}

func (s *Server) heartbeat(every time.Duration, stop <-chan struct{}) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			counts, err := reportCounts()
			if err != nil {
				log.Printf("[DEBUG] Heartbeat: failed to count reports: %v", err)
			}
			if purged := s.reports.matches.PurgeExpired(); purged > 0 {
				log.Printf("[DEBUG] Heartbeat: purged %d expired match entries", purged)
			}
			if realtime.GlobalHub != nil {
				realtime.GlobalHub.SendSystemStatus(map[string]any{
					"reports":    counts,
					"goroutines": runtime.NumGoroutine(),
					"timestamp":  time.Now().Unix(),
				})
			}
		case <-stop:
			return
		}
	}
}

// setupRoutes configures all the routes
func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint (standard path)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Health check endpoint (both paths for compatibility)
	s.router.GET("/api/health", s.healthCheck)
	s.router.GET("/api/v1/health", s.healthCheck)

	// Real-time events (SSE)
	s.router.GET("/api/events", s.handleEvents)

	// Redirect /api/* to /api/v1/*
	s.router.Use(func(c *gin.Context) {
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/") &&
			!strings.HasPrefix(path, "/api/v1/") &&
			!strings.HasPrefix(path, "/api/health") &&
			!strings.HasPrefix(path, "/api/events") {
			newPath := strings.Replace(path, "/api/", "/api/v1/", 1)
			if c.Request.URL.RawQuery != "" {
				newPath += "?" + c.Request.URL.RawQuery
			}
			// 308 keeps the method and body of POST requests
			c.Redirect(http.StatusPermanentRedirect, newPath)
			c.Abort()
			return
		}
		c.Next()
	})

	api := s.router.Group("/api/v1")
	{
		api.POST("/reports", s.createReport)
		api.POST("/reports/import", s.importReports)
		api.GET("/reports", s.listReports)
		api.GET("/reports/search", s.searchReports)
		api.GET("/reports/:id", s.getReport)
		api.DELETE("/reports/:id", s.deleteReport)
		api.GET("/reports/:id/matches", s.getReportMatches)
		api.GET("/reports/:id/history", s.getReportHistory)

		api.POST("/match", s.matchReport)
	}

	s.setupStaticFiles()
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Header("Access-Control-Allow-Methods", "POST, OPTIONS, GET, DELETE")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// reportCounts counts stored reports per kind and refreshes the gauges
func reportCounts() (map[string]int, error) {
	counts := map[string]int{}
	if database.GlobalStore == nil {
		return counts, ErrStoreUnavailable
	}
	for _, kind := range []models.ReportKind{models.KindLost, models.KindFound} {
		n, err := database.GlobalStore.CountReports(kind)
		if err != nil {
			return counts, err
		}
		counts[string(kind)] = n
		metrics.SetReports(string(kind), n)
	}
	return counts, nil
}

func (s *Server) healthCheck(c *gin.Context) {
	counts, err := reportCounts()
	resp := HealthResponse{
		Status:       "ok",
		Timestamp:    time.Now().Unix(),
		Version:      Version,
		DatabaseType: config.AppConfig.DatabaseType,
		Reports:      counts,
	}
	if realtime.GlobalHub != nil {
		resp.SSEClients = realtime.GlobalHub.GetClientCount()
	}
	if err != nil {
		// status carries the degradation; the code stays 200
		resp.Status = "degraded"
		resp.Error = err.Error()
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleEvents(c *gin.Context) {
	if realtime.GlobalHub == nil {
		RespondWithServiceUnavailable(c, "event hub not initialized")
		return
	}
	realtime.GlobalHub.HandleSSE(c)
}

// respondServiceError maps service errors onto HTTP responses
func (s *Server) respondServiceError(c *gin.Context, ol *OperationLogger, err error) {
	var ve ValidationError
	switch {
	case errors.As(err, &ve):
		LogValidationError(ol.handler, ve.Field, ve.Message, ol.requestID)
		RespondWithValidationError(c, ve)
		ol.LogError(http.StatusBadRequest, err)
	case errors.Is(err, database.ErrReportNotFound):
		RespondWithNotFound(c, "report", c.Param("id"))
		ol.LogError(http.StatusNotFound, err)
	case errors.Is(err, ErrStoreUnavailable):
		RespondWithServiceUnavailable(c, err.Error())
		ol.LogError(http.StatusServiceUnavailable, err)
	default:
		RespondWithInternalError(c, err.Error())
		ol.LogError(http.StatusInternalServerError, err)
	}
}

// reportRequest is the body of POST /reports
type reportRequest struct {
	Kind        string     `json:"kind" binding:"required"`
	Name        string     `json:"name"`
	Species     string     `json:"species" binding:"required"`
	Breed       string     `json:"breed" binding:"required"`
	Location    string     `json:"location" binding:"required,pet_location"`
	Age         models.Age `json:"age"`
	Description string     `json:"description" binding:"required"`
	Date        string     `json:"date" binding:"required,iso_date"`
	Coordinates string     `json:"coordinates"`
	ImageURL    string     `json:"image_url"`
}

func (r reportRequest) toReport() *models.Report {
	return &models.Report{
		Kind:        models.ReportKind(r.Kind),
		Name:        strings.TrimSpace(r.Name),
		Date:        r.Date,
		Coordinates: r.Coordinates,
		ImageURL:    r.ImageURL,
		ReportedAnimal: models.ReportedAnimal{
			Species:     r.Species,
			Breed:       r.Breed,
			Location:    r.Location,
			Age:         r.Age,
			Description: r.Description,
		},
	}
}

func (s *Server) createReport(c *gin.Context) {
	ol := operationLogger(c, "createReport")

	var req reportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if fe, ok := bindingFieldError(err); ok {
			metrics.IncReportRejected(fe.Field)
		}
		HandleBindError(c, err)
		ol.LogError(c.Writer.Status(), err)
		return
	}

	result, err := s.reports.Submit(c.Request.Context(), req.toReport())
	if err != nil {
		s.respondServiceError(c, ol, err)
		return
	}

	ol.SetResourceID(result.Report.ID)
	ol.AddDetail("matches", len(result.Matches))
	RespondWithCreated(c, result)
	ol.LogSuccess(http.StatusCreated)
}

func (s *Server) importReports(c *gin.Context) {
	ol := operationLogger(c, "importReports")

	var reports []models.Report
	if err := c.ShouldBindJSON(&reports); err != nil {
		HandleBindError(c, err)
		ol.LogError(c.Writer.Status(), err)
		return
	}
	if s.reports.store == nil {
		s.respondServiceError(c, ol, ErrStoreUnavailable)
		return
	}

	resp := NewBulkResponse(s.reports.SubmitBatch(c.Request.Context(), reports, nil))
	ol.AddDetail("succeeded", resp.Succeeded)
	ol.AddDetail("failed", resp.Failed)
	c.JSON(http.StatusOK, resp)
	ol.LogSuccess(http.StatusOK)
}

func (s *Server) listReports(c *gin.Context) {
	ol := operationLogger(c, "listReports")

	var kind models.ReportKind
	if raw := ParseQueryString(c, "kind"); raw != "" && !strings.EqualFold(raw, "all") {
		k, err := models.ParseReportKind(raw)
		if err != nil {
			s.respondServiceError(c, ol, ValidationError{
				Field:   "kind",
				Message: "kind must be one of: [all lost found]",
				Code:    "KIND_INVALID_VALUE",
			})
			return
		}
		kind = k
	}

	page := ParsePaginationParams(c)
	reports, total, err := s.reports.List(c.Request.Context(), kind, page.Limit, page.Offset)
	if err != nil {
		s.respondServiceError(c, ol, err)
		return
	}

	c.JSON(http.StatusOK, NewListResponseWithTotal(reports, len(reports), page.Limit, page.Offset, total))
	ol.LogSuccess(http.StatusOK)
}

func (s *Server) searchReports(c *gin.Context) {
	ol := operationLogger(c, "searchReports")

	query := ParseQueryString(c, "q")
	if query == "" {
		s.respondServiceError(c, ol, ValidationError{Field: "q", Message: "q is required", Code: "Q_REQUIRED"})
		return
	}
	limit := ParseQueryInt(c, "limit", 20)

	reports, err := s.reports.Search(c.Request.Context(), query, limit)
	if err != nil {
		s.respondServiceError(c, ol, err)
		return
	}

	c.JSON(http.StatusOK, NewListResponseWithTotal(reports, len(reports), limit, 0, len(reports)))
	ol.LogSuccess(http.StatusOK)
}

func (s *Server) getReport(c *gin.Context) {
	ol := operationLogger(c, "getReport")

	report, err := s.reports.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondServiceError(c, ol, err)
		return
	}

	RespondWithOK(c, report)
	ol.LogSuccess(http.StatusOK)
}

func (s *Server) deleteReport(c *gin.Context) {
	ol := operationLogger(c, "deleteReport")

	id := c.Param("id")
	if err := s.reports.Delete(c.Request.Context(), id); err != nil {
		s.respondServiceError(c, ol, err)
		return
	}

	c.JSON(http.StatusOK, DeleteResponse{Deleted: true, ID: id})
	ol.LogSuccess(http.StatusOK)
}

func (s *Server) getReportMatches(c *gin.Context) {
	ol := operationLogger(c, "getReportMatches")

	matches, err := s.reports.Matches(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondServiceError(c, ol, err)
		return
	}

	c.JSON(http.StatusOK, NewListResponseWithTotal(matches, len(matches), 0, 0, len(matches)))
	ol.LogSuccess(http.StatusOK)
}

func (s *Server) getReportHistory(c *gin.Context) {
	ol := operationLogger(c, "getReportHistory")

	records, err := s.reports.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		s.respondServiceError(c, ol, err)
		return
	}

	c.JSON(http.StatusOK, NewListResponseWithTotal(records, len(records), 0, 0, len(records)))
	ol.LogSuccess(http.StatusOK)
}

// matchRequest is the body of POST /match
type matchRequest struct {
	Report     models.ReportedAnimal   `json:"report"`
	References []models.ReportedAnimal `json:"references"`
}

func (s *Server) matchReport(c *gin.Context) {
	ol := operationLogger(c, "matchReport")

	var req matchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		HandleBindError(c, err)
		ol.LogError(c.Writer.Status(), err)
		return
	}

	results := MatchStateless(req.Report, req.References)
	ol.AddDetail("references", len(req.References))
	ol.AddDetail("matches", len(results))
	c.JSON(http.StatusOK, NewListResponseWithTotal(results, len(results), 0, 0, len(req.References)))
	ol.LogSuccess(http.StatusOK)
}

// GetDefaultServerConfig returns default server configuration, taking host
// and port from config.AppConfig when set
func GetDefaultServerConfig() ServerConfig {
	cfg := ServerConfig{
		Port:         "8080",
		Host:         "localhost",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0, // SSE streams stay open
		IdleTimeout:  60 * time.Second,
	}
	if config.AppConfig.Port != "" {
		cfg.Port = config.AppConfig.Port
	}
	if config.AppConfig.Host != "" {
		cfg.Host = config.AppConfig.Host
	}
	cfg.WatchDir = config.AppConfig.WatchDir
	return cfg
}
