// file: internal/server/static.go
// version: 2.0.0
// guid: 2b3c4d5e-6f7a-8b9c-0d1e-2f3a4b5c6d7e

package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// setupStaticFiles serves the API overview page and the fallback handlers
func (s *Server) setupStaticFiles() {
	s.router.GET("/", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(indexHTML))
	})

	s.router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			RespondWithNotFound(c, "endpoint", "")
			return
		}
		c.Redirect(http.StatusFound, "/")
	})
}

const indexHTML = `<!DOCTYPE html>
<html>
<head>
    <title>Pet Match</title>
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; background-color: #f5f5f5; }
        .container { max-width: 800px; margin: 0 auto; background: white; padding: 40px; border-radius: 8px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
        h1 { color: #333; }
        .api-list { background: #f8f9fa; padding: 20px; border-radius: 4px; margin: 20px 0; }
        .api-endpoint { font-family: 'Courier New', monospace; background: #e9ecef; padding: 4px 8px; margin: 2px 0; border-radius: 3px; display: block; }
        .method { color: #007bff; font-weight: bold; }
    </style>
</head>
<body>
    <div class="container">
        <h1>Pet Match API Server</h1>
        <p>Lost and found pet reports, matched by species, breed, location, age and description.</p>

        <h2>Available API Endpoints:</h2>
        <div class="api-list">
            <h3>Health &amp; System:</h3>
            <code class="api-endpoint"><span class="method">GET</span> /api/health - Health check</code>
            <code class="api-endpoint"><span class="method">GET</span> /api/events - Server-sent events</code>
            <code class="api-endpoint"><span class="method">GET</span> /metrics - Prometheus metrics</code>

            <h3>Reports:</h3>
            <code class="api-endpoint"><span class="method">POST</span> /api/v1/reports - Submit a lost or found report</code>
            <code class="api-endpoint"><span class="method">POST</span> /api/v1/reports/import - Submit many reports</code>
            <code class="api-endpoint"><span class="method">GET</span> /api/v1/reports?kind=all|lost|found - List reports</code>
            <code class="api-endpoint"><span class="method">GET</span> /api/v1/reports/search?q= - Search reports</code>
            <code class="api-endpoint"><span class="method">GET</span> /api/v1/reports/:id - Get a report</code>
            <code class="api-endpoint"><span class="method">DELETE</span> /api/v1/reports/:id - Delete a report</code>
            <code class="api-endpoint"><span class="method">GET</span> /api/v1/reports/:id/matches - Current potential matches</code>
            <code class="api-endpoint"><span class="method">GET</span> /api/v1/reports/:id/history - Matches recorded at submission</code>

            <h3>Matching:</h3>
            <code class="api-endpoint"><span class="method">POST</span> /api/v1/match - Score a report against supplied references</code>
        </div>
    </div>
</body>
</html>
`
