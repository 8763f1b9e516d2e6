package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/domiot-io/drivers/internal/devices"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check (no auth required)
		r.Get("/health", s.handleHealth)

		// Protected routes (pass-through when no JWT secret is set)
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/stats", s.handleStats)

			// Device endpoints
			r.Route("/devices", func(r chi.Router) {
				r.Get("/", s.handleListDevices)

				r.Route("/{kind}/{index}", func(r chi.Router) {
					r.Get("/data", s.handleReadDevice)
					r.Post("/data", s.handleWriteDevice)
					r.Get("/log", s.handleDeviceLog)
					r.Get("/history", s.handleDeviceHistory)
				})

				// vintx6 attribute endpoints, the HTTP counterpart of
				// the MQTT controller bridge.
				r.Route("/vintx6/{index}", func(r chi.Router) {
					r.Get("/input_states", s.handleVintGetInputs)
					r.Put("/input_states", s.handleVintSetInputs)
					r.Put("/connected", s.handleVintSetConnected)
					r.Get("/output_states", s.handleVintGetOutputs)
				})

				// Video playback status
				r.Get("/video/{index}/status", s.handleVideoStatus)
			})

			// WebSocket device streaming
			r.Get("/ws", s.handleWebSocket)
		})
	})

	return r
}

// handleHealth returns the server health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}

// handleStats returns daemon statistics.
func (s *Server) handleStats(w http.ResponseWriter, _ *http.Request) {
	counts := make(map[string]int)
	for _, kind := range devices.Kinds() {
		counts[string(kind)] = s.table.Count(kind)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"devices":           counts,
		"websocket_clients": s.hub.ClientCount(),
		"version":           s.version,
	})
}
