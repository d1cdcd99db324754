// file: internal/server/response_types.go
// version: 2.0.0
// guid: 7f8a9b0c-1d2e-3f4a-5b6c-7d8e9f0a1b2c

package server

// ListResponse provides a consistent format for paginated list responses
type ListResponse struct {
	Items  any `json:"items"`
	Count  int `json:"count"`
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// DeleteResponse provides a consistent format for deletion responses
type DeleteResponse struct {
	Deleted bool   `json:"deleted"`
	ID      string `json:"id"`
}

// BulkResponse provides a consistent format for bulk operation responses
type BulkResponse struct {
	Total     int        `json:"total"`
	Succeeded int        `json:"succeeded"`
	Failed    int        `json:"failed"`
	Results   []BulkItem `json:"results"`
}

// BulkItem represents a single item in a bulk operation response
type BulkItem struct {
	ID      string `json:"id,omitempty"`
	Status  string `json:"status"` // "success", "failed"
	Error   string `json:"error,omitempty"`
	Matches int    `json:"matches,omitempty"`
}

// HealthResponse is returned by the health endpoints
type HealthResponse struct {
	Status       string         `json:"status"` // "ok", "degraded"
	Timestamp    int64          `json:"timestamp"`
	Version      string         `json:"version"`
	DatabaseType string         `json:"database_type"`
	Reports      map[string]int `json:"reports"`
	SSEClients   int            `json:"sse_clients"`
	Error        string         `json:"error,omitempty"`
}

// PaginationParams holds common pagination parameters
type PaginationParams struct {
	Limit  int
	Offset int
}

// NewListResponseWithTotal creates a new ListResponse with a distinct total
func NewListResponseWithTotal(items any, count int, limit int, offset int, total int) *ListResponse {
	return &ListResponse{
		Items:  items,
		Count:  count,
		Limit:  limit,
		Offset: offset,
		Total:  total,
	}
}

// NewBulkResponse creates a new BulkResponse
func NewBulkResponse(results []BulkItem) *BulkResponse {
	succeeded := 0
	failed := 0
	for _, item := range results {
		switch item.Status {
		case "success":
			succeeded++
		case "failed":
			failed++
		}
	}
	return &BulkResponse{
		Total:     len(results),
		Succeeded: succeeded,
		Failed:    failed,
		Results:   results,
	}
}
