package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorResponseShape(t *testing.T) {
	rr := httptest.NewRecorder()

	writeErrorResponse(rr, http.StatusConflict, "already running")

	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "already running", body["error"])
	assert.Equal(t, "error", body["status"])
}

func TestWriteInternalServerErrorDefaultMessage(t *testing.T) {
	rr := httptest.NewRecorder()

	writeInternalServerErrorResponse(rr, "")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "Internal Server Error", body["error"])
}

func TestParseLimit(t *testing.T) {
	tests := []struct {
		name     string
		query    string
		expected int
	}{
		{"missing", "", 50},
		{"valid", "limit=10", 10},
		{"zero", "limit=0", 50},
		{"negative", "limit=-3", 50},
		{"garbage", "limit=abc", 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/predictions/recent?"+tt.query, nil)
			assert.Equal(t, tt.expected, parseLimit(r, 50))
		})
	}
}
