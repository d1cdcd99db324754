// file: internal/server/response_types_test.go
// version: 2.0.0
// guid: 8a9b0c1d-2e3f-4a5b-6c7d-8e9f0a1b2c3e

package server

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewListResponseWithTotal(t *testing.T) {
	resp := NewListResponseWithTotal([]string{"a", "b"}, 2, 10, 20, 0)
	data, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"items":["a","b"],"count":2,"limit":10,"offset":20,"total":0}`, string(data))
}

func TestNewBulkResponse(t *testing.T) {
	resp := NewBulkResponse([]BulkItem{
		{ID: "1", Status: "success", Matches: 2},
		{Status: "failed", Error: "date: bad"},
		{ID: "3", Status: "success"},
	})
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 2, resp.Succeeded)
	assert.Equal(t, 1, resp.Failed)

	empty := NewBulkResponse(nil)
	assert.Zero(t, empty.Total)
	assert.Zero(t, empty.Succeeded)
}

func TestBulkItemJSONOmitsEmpty(t *testing.T) {
	data, err := json.Marshal(BulkItem{Status: "failed", Error: "x"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"failed","error":"x"}`, string(data))
}
