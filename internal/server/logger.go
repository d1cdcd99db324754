// file: internal/server/logger.go
// version: 2.0.0
// guid: 1d2e3f4a-5b6c-7d8e-9f0a-1b2c3d4e5f6a

package server

import (
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	ulid "github.com/oklog/ulid/v2"
)

// RequestIDHeader carries a caller-supplied request id through the logs
const RequestIDHeader = "X-Request-ID"

// requestID returns the caller's request id or mints a fresh ULID
func requestID(c *gin.Context) string {
	if id := c.GetHeader(RequestIDHeader); id != "" {
		return id
	}
	return ulid.Make().String()
}

// OperationLogger tracks the lifecycle of a handler operation
type OperationLogger struct {
	handler    string
	method     string
	path       string
	startTime  time.Time
	requestID  string
	resourceID string
	details    map[string]any
}

// NewOperationLogger creates a new operation logger
func NewOperationLogger(handler, method, path, requestID string) *OperationLogger {
	return &OperationLogger{
		handler:   handler,
		method:    method,
		path:      path,
		startTime: time.Now(),
		requestID: requestID,
		details:   make(map[string]any),
	}
}

// operationLogger builds an OperationLogger for the current request and logs its start
func operationLogger(c *gin.Context, handler string) *OperationLogger {
	ol := NewOperationLogger(handler, c.Request.Method, c.FullPath(), requestID(c))
	if id := c.Param("id"); id != "" {
		ol.SetResourceID(id)
	}
	ol.LogStart()
	return ol
}

// SetResourceID sets the resource ID being operated on
func (ol *OperationLogger) SetResourceID(id string) {
	ol.resourceID = id
}

// AddDetail adds a contextual detail to the operation log
func (ol *OperationLogger) AddDetail(key string, value any) {
	ol.details[key] = value
}

func (ol *OperationLogger) suffix() string {
	s := ""
	if ol.resourceID != "" {
		s = fmt.Sprintf(" (resource: %s)", ol.resourceID)
	}
	if len(ol.details) > 0 {
		s = fmt.Sprintf("%s %v", s, ol.details)
	}
	return s
}

// LogStart logs the start of the operation
func (ol *OperationLogger) LogStart() {
	log.Printf("[INFO] [START] %s %s%s [request-id: %s]", ol.method, ol.path, ol.suffix(), ol.requestID)
}

// LogSuccess logs the successful completion of the operation
func (ol *OperationLogger) LogSuccess(statusCode int) {
	log.Printf("[INFO] [SUCCESS] %s %s (%d) in %v%s [request-id: %s]",
		ol.method, ol.path, statusCode, time.Since(ol.startTime), ol.suffix(), ol.requestID)
}

// LogError logs an error that occurred during the operation
func (ol *OperationLogger) LogError(statusCode int, err error) {
	log.Printf("[ERROR] [FAILED] %s %s (%d) in %v: %v%s [request-id: %s]",
		ol.method, ol.path, statusCode, time.Since(ol.startTime), err, ol.suffix(), ol.requestID)
}

// LogWarning logs a warning message
func (ol *OperationLogger) LogWarning(message string) {
	log.Printf("[WARN] %s: %s [request-id: %s]", ol.handler, message, ol.requestID)
}

// ServiceLogger provides logging for service layer operations
type ServiceLogger struct {
	serviceName string
	requestID   string
}

// NewServiceLogger creates a new service logger
func NewServiceLogger(serviceName, requestID string) *ServiceLogger {
	return &ServiceLogger{
		serviceName: serviceName,
		requestID:   requestID,
	}
}

// LogOperation logs the execution of a service operation
func (sl *ServiceLogger) LogOperation(operation string, details map[string]any) {
	detailStr := ""
	if len(details) > 0 {
		detailStr = fmt.Sprintf(" %v", details)
	}
	log.Printf("[SERVICE] %s.%s%s [request-id: %s]",
		sl.serviceName, operation, detailStr, sl.requestID)
}

// LogError logs an error from the service
func (sl *ServiceLogger) LogError(operation string, err error) {
	log.Printf("[SERVICE-ERROR] %s.%s: %v [request-id: %s]",
		sl.serviceName, operation, err, sl.requestID)
}

// LogDatabaseOperation logs a database operation with its performance
func LogDatabaseOperation(operation string, table string, duration time.Duration, rowsAffected int, err error) {
	if err != nil {
		log.Printf("[DB-ERROR] %s on %s failed in %v: %v", operation, table, duration, err)
		return
	}
	log.Printf("[DB] %s on %s completed in %v (%d rows)", operation, table, duration, rowsAffected)
}

// LogServiceCacheHit logs a service cache hit
func LogServiceCacheHit(serviceName string, key string) {
	log.Printf("[CACHE-HIT] %s: %s", serviceName, key)
}

// LogServiceCacheMiss logs a service cache miss
func LogServiceCacheMiss(serviceName string, key string) {
	log.Printf("[CACHE-MISS] %s: %s", serviceName, key)
}

// LogValidationError logs a validation error with context
func LogValidationError(handler string, field string, reason string, requestID string) {
	log.Printf("[VALIDATION-ERROR] %s field %q: %s [request-id: %s]",
		handler, field, reason, requestID)
}
