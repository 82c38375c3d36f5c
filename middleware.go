package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aquasentinel/aquasentinel-go/utils"
)

type contextKey string

const requestIDKey contextKey = "request_id"

// loggingMiddleware logs HTTP requests and responses
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		// Wrap the response writer to capture the status code
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		requestID := fmt.Sprintf("%d", time.Now().UnixNano())
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		r = r.WithContext(ctx)

		utils.GetLogger().Info("HTTP Request",
			utils.String("method", r.Method),
			utils.String("path", r.URL.Path),
			utils.String("remote_addr", r.RemoteAddr),
			utils.RequestID(requestID),
			utils.Component("http"))

		next.ServeHTTP(rw, r)

		duration := time.Since(start)
		utils.GetLogger().Info("HTTP Response",
			utils.String("method", r.Method),
			utils.String("path", r.URL.Path),
			utils.Int("status", rw.statusCode),
			utils.Float("duration_ms", duration.Seconds()*1000),
			utils.RequestID(requestID),
			utils.Component("http"))
	})
}

// errorRecoveryMiddleware recovers from panics and logs errors
func (s *Server) errorRecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				utils.GetLogger().Error("Panic recovered",
					fmt.Errorf("panic: %v", err),
					utils.String("method", r.Method),
					utils.String("path", r.URL.Path),
					utils.Component("http"))

				s.metrics.RecordError()
				writeInternalServerErrorResponse(w, "")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
