// file: internal/server/error_handler_test.go
// version: 2.0.0
// guid: 6e7f8a9b-0c1d-2e3f-4a5b-6c7d8e9f0a1b

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestRespondWithErrors(t *testing.T) {
	tests := []struct {
		name    string
		respond func(c *gin.Context)
		status  int
		code    string
		message string
	}{
		{"bad request", func(c *gin.Context) { RespondWithBadRequest(c, "nope") }, http.StatusBadRequest, "BAD_REQUEST", "nope"},
		{"not found", func(c *gin.Context) { RespondWithNotFound(c, "report", "abc") }, http.StatusNotFound, "NOT_FOUND", "report not found: abc"},
		{"not found no id", func(c *gin.Context) { RespondWithNotFound(c, "endpoint", "") }, http.StatusNotFound, "NOT_FOUND", "endpoint not found"},
		{"internal", func(c *gin.Context) { RespondWithInternalError(c, "boom") }, http.StatusInternalServerError, "INTERNAL_ERROR", "boom"},
		{"unavailable", func(c *gin.Context) { RespondWithServiceUnavailable(c, "no store") }, http.StatusServiceUnavailable, "UNAVAILABLE", "no store"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, w := testContext("/api/v1/reports")
			tt.respond(c)
			assert.Equal(t, tt.status, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, tt.code, resp.Code)
			assert.Equal(t, tt.message, resp.Error)
			assert.Equal(t, tt.status, resp.Status)
		})
	}
}

func TestRespondWithValidationError(t *testing.T) {
	c, w := testContext("/api/v1/reports")
	RespondWithValidationError(c, ValidationError{Field: "breed", Message: "breed is required", Code: "BREED_REQUIRED"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeError(t, w)
	assert.Equal(t, "validation error: breed is required", resp.Error)
	assert.Equal(t, "breed", resp.Field)
	assert.Equal(t, "BREED_REQUIRED", resp.Code)

	c, w = testContext("/api/v1/reports")
	RespondWithValidationError(c, ValidationError{Field: "x", Message: "bad"})
	assert.Equal(t, "VALIDATION_ERROR", decodeError(t, w).Code)
}

func TestRespondWithSuccessVariants(t *testing.T) {
	c, w := testContext("/")
	RespondWithCreated(c, gin.H{"id": "1"})
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"data":{"id":"1"}}`, w.Body.String())

	c, w = testContext("/")
	RespondWithOK(c, []int{1, 2})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[1,2]}`, w.Body.String())

	c, w = testContext("/")
	RespondWithNoContent(c)
	c.Writer.WriteHeaderNow()
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.String())
}

func TestHandleBindError(t *testing.T) {
	c, _ := testContext("/")
	assert.False(t, HandleBindError(c, nil))

	c, w := testContext("/")
	wrapped := fmt.Errorf("submit: %w", ValidationError{Field: "age", Message: "age is required", Code: "AGE_REQUIRED"})
	require.True(t, HandleBindError(c, wrapped))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "age", decodeError(t, w).Field)

	RegisterBindingValidators()
	type body struct {
		Species string `json:"species" binding:"required"`
	}
	c, w = testContext("/")
	require.True(t, HandleBindError(c, binding.Validator.ValidateStruct(body{})))
	resp := decodeError(t, w)
	assert.Equal(t, "species", resp.Field)
	assert.Equal(t, "SPECIES_INVALID", resp.Code)
	assert.Equal(t, "validation error: species is required", resp.Error)

	c, w = testContext("/")
	require.True(t, HandleBindError(c, &http.MaxBytesError{Limit: 10}))
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	assert.Equal(t, "TOO_LARGE", decodeError(t, w).Code)

	c, w = testContext("/")
	require.True(t, HandleBindError(c, errors.New("unexpected EOF")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid request: unexpected EOF", decodeError(t, w).Error)
}

func TestParseQueryInt(t *testing.T) {
	c, _ := testContext("/?limit=25&bad=abc")
	assert.Equal(t, 25, ParseQueryInt(c, "limit", 5))
	assert.Equal(t, 5, ParseQueryInt(c, "bad", 5))
	assert.Equal(t, 7, ParseQueryInt(c, "missing", 7))
}

func TestParseQueryString(t *testing.T) {
	c, _ := testContext("/?q=%20beagle%20")
	assert.Equal(t, "beagle", ParseQueryString(c, "q"))
	assert.Empty(t, ParseQueryString(c, "missing"))
}

func TestParsePaginationParams(t *testing.T) {
	tests := []struct {
		query  string
		limit  int
		offset int
	}{
		{"", 50, 0},
		{"limit=10&offset=20", 10, 20},
		{"limit=0&offset=-3", 50, 0},
		{"limit=5000", 1000, 0},
		{"limit=x&offset=y", 50, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := testContext("/?" + tt.query)
			p := ParsePaginationParams(c)
			assert.Equal(t, tt.limit, p.Limit)
			assert.Equal(t, tt.offset, p.Offset)
		})
	}
}
