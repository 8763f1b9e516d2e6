package api

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/domiot-io/drivers/internal/devices"
	"github.com/domiot-io/drivers/internal/history"
	"github.com/domiot-io/drivers/internal/vint"
)

// maxReadTimeout caps the blocking-read timeout a client may request,
// so a request cannot pin a handler goroutine indefinitely.
const maxReadTimeout = 60 * time.Second

// handleListDevices returns every device instance.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"devices": s.table.List(),
	})
}

// deviceParams extracts and validates the {kind}/{index} route params.
func deviceParams(r *http.Request) (devices.Kind, int, error) {
	kind, err := devices.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		return "", 0, err
	}
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return "", 0, devices.ErrInvalidInstance
	}
	return kind, index, nil
}

// handleReadDevice performs one read on a device instance.
//
// Query parameters:
//   - mode=nonblock: return 204 instead of waiting when no new state
//     is available
//   - timeout=<seconds>: maximum wait for a blocking read (capped at
//     60s, default 30s)
//
// The payload is returned verbatim as text/plain.
func (s *Server) handleReadDevice(w http.ResponseWriter, r *http.Request) {
	kind, index, err := deviceParams(r)
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	mode := devices.Blocking
	if r.URL.Query().Get("mode") == "nonblock" {
		mode = devices.NonBlocking
	}

	timeout := 30 * time.Second
	if v := r.URL.Query().Get("timeout"); v != "" {
		secs, err := strconv.Atoi(v)
		if err != nil || secs < 1 {
			writeBadRequest(w, "timeout must be a positive integer")
			return
		}
		timeout = time.Duration(secs) * time.Second
		if timeout > maxReadTimeout {
			timeout = maxReadTimeout
		}
	}

	conn, err := s.table.Open(kind, index, mode)
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	defer conn.Close() //nolint:errcheck // session teardown

	ctx, cancel := context.WithTimeout(r.Context(), timeout)
	defer cancel()

	payload, err := conn.Read(ctx)
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(payload) //nolint:errcheck // best-effort response write
}

// handleWriteDevice submits the request body as a device write.
func (s *Server) handleWriteDevice(w http.ResponseWriter, r *http.Request) {
	kind, index, err := deviceParams(r)
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "reading request body failed")
		return
	}

	conn, err := s.table.Open(kind, index, devices.Blocking)
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	defer conn.Close() //nolint:errcheck // session teardown

	n, err := conn.Write(payload)
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"written": n,
	})
}

// handleDeviceLog returns the in-memory ring log of a device,
// newest first. Only output hubs and displays keep a ring log.
func (s *Server) handleDeviceLog(w http.ResponseWriter, r *http.Request) {
	kind, index, err := deviceParams(r)
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	var entries []history.Entry
	switch kind {
	case devices.KindOutputHub:
		h, err := s.table.OutputHub(index)
		if err != nil {
			writeDeviceError(w, err)
			return
		}
		entries = h.Log()
	case devices.KindDisplay:
		d, err := s.table.Display(index)
		if err != nil {
			writeDeviceError(w, err)
			return
		}
		entries = d.Log()
	default:
		writeNotFound(w, "device kind has no write log")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
	})
}

// handleDeviceHistory returns archived writes from the persistent
// store, newest first.
//
// Query parameters:
//   - limit=<n>: maximum entries to return
func (s *Server) handleDeviceHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		writeNotFound(w, "write archive is disabled")
		return
	}

	kind, index, err := deviceParams(r)
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	if index < 0 || index >= s.table.Count(kind) {
		writeDeviceError(w, devices.ErrInvalidInstance)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 1 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
	}

	device := string(kind) + "-" + strconv.Itoa(index)
	entries, err := s.history.Recent(r.Context(), device, limit)
	if err != nil {
		s.logger.Error("archive query failed", "device", device, "error", err)
		writeInternalError(w, "archive query failed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"entries": entries,
	})
}

// handleVintGetInputs returns the current input states of a vintx6 hub.
func (s *Server) handleVintGetInputs(w http.ResponseWriter, r *http.Request) {
	h, err := s.vintFromRequest(r)
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"input_states": h.InputStates(),
		"connected":    h.Connected(),
	})
}

// handleVintSetInputs feeds externally produced input states into a
// vintx6 hub. Blocked readers wake if the states changed.
func (s *Server) handleVintSetInputs(w http.ResponseWriter, r *http.Request) {
	h, err := s.vintFromRequest(r)
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "reading request body failed")
		return
	}

	h.FeedInputs(payload)
	writeJSON(w, http.StatusOK, map[string]any{
		"input_states": h.InputStates(),
	})
}

// handleVintSetConnected sets the external-producer flag of a vintx6
// hub. Accepts "1"/"true" and "0"/"false".
func (s *Server) handleVintSetConnected(w http.ResponseWriter, r *http.Request) {
	h, err := s.vintFromRequest(r)
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	payload, err := io.ReadAll(r.Body)
	if err != nil {
		writeBadRequest(w, "reading request body failed")
		return
	}

	var connected bool
	switch strings.ToLower(strings.TrimSpace(string(payload))) {
	case "1", "true":
		connected = true
	case "0", "false":
		connected = false
	default:
		writeBadRequest(w, "body must be one of: 1, 0, true, false")
		return
	}

	h.SetConnected(connected)
	writeJSON(w, http.StatusOK, map[string]any{
		"connected": connected,
	})
}

// handleVintGetOutputs returns the last accepted output states of a
// vintx6 hub.
func (s *Server) handleVintGetOutputs(w http.ResponseWriter, r *http.Request) {
	h, err := s.vintFromRequest(r)
	if err != nil {
		writeDeviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"output_states": h.OutputStates(),
	})
}

// handleVideoStatus returns the playback state of a video device.
func (s *Server) handleVideoStatus(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		writeDeviceError(w, devices.ErrInvalidInstance)
		return
	}
	p, err := s.table.Video(index)
	if err != nil {
		writeDeviceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"state":       p.State().String(),
		"src":         p.Src(),
		"loaded":      p.Loaded(),
		"loop":        p.Loop(),
		"ended":       p.Ended(),
		"position_ms": p.PositionMS(),
		"duration_ms": p.DurationMS(),
		"text":        p.Text(),
	})
}

// vintFromRequest resolves the vintx6 hub addressed by the request.
func (s *Server) vintFromRequest(r *http.Request) (*vint.Hub, error) {
	index, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil {
		return nil, devices.ErrInvalidInstance
	}
	return s.table.Vint(index)
}
