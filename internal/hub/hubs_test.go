package hub

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/domiot-io/drivers/internal/infrastructure/config"
	"github.com/domiot-io/drivers/internal/infrastructure/logging"
)

// testLogger returns a quiet logger for tests.
func testLogger() *logging.Logger {
	return logging.New(config.LoggingConfig{
		Level:  "error",
		Format: "text",
		Output: "stderr",
	}, "test")
}

// recordingTelemetry captures channel state samples.
type recordingTelemetry struct {
	devices []string
	states  []string
}

func (r *recordingTelemetry) WriteChannelStates(device string, states string) {
	r.devices = append(r.devices, device)
	r.states = append(r.states, states)
}

func TestInputHub_SetChannelsNotifiesOnChange(t *testing.T) {
	h := NewInputHub(0, time.Hour, 0, testLogger())
	defer h.Close()

	r, err := h.Watchers().Register(true)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	defer r.Close()

	// First-read bias: a fresh reader is ready before any change.
	if err := r.TryWait(); err != nil {
		t.Fatalf("first TryWait() = %v, want nil", err)
	}

	h.SetChannels([]byte("111"))

	if err := r.TryWait(); err != nil {
		t.Fatalf("TryWait() after change = %v, want nil", err)
	}

	line := string(h.State().Line())
	if line != "111000000000000000000000\n" {
		t.Errorf("Line() = %q", line)
	}

	// Re-applying the same states must not notify.
	h.SetChannels([]byte("111"))
	if err := r.TryWait(); err == nil {
		t.Error("TryWait() after no-op change = nil, want ErrWouldBlock")
	}
}

func TestInputHub_RandomizeTimer(t *testing.T) {
	h := NewInputHub(1, 10*time.Millisecond, 0, testLogger())
	defer h.Close()

	r, err := h.Watchers().Register(false)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	defer r.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h.Start(ctx)

	// Within a generous window at least one randomisation changes
	// some of the 24 channels.
	waitCtx, waitCancel := context.WithTimeout(ctx, 2*time.Second)
	defer waitCancel()
	if err := r.Wait(waitCtx); err != nil {
		t.Fatalf("Wait() = %v, want nil (timer should have fired)", err)
	}
}

func TestInputHub_TelemetryOnChange(t *testing.T) {
	h := NewInputHub(2, time.Hour, 0, testLogger())
	defer h.Close()

	rec := &recordingTelemetry{}
	h.SetTelemetry(rec)

	h.SetChannels([]byte("101"))

	if len(rec.states) != 1 {
		t.Fatalf("telemetry samples = %d, want 1", len(rec.states))
	}
	if rec.devices[0] != "ihubx24-2" {
		t.Errorf("telemetry device = %q, want ihubx24-2", rec.devices[0])
	}
	if !strings.HasPrefix(rec.states[0], "101") {
		t.Errorf("telemetry states = %q, want prefix 101", rec.states[0])
	}
}

func TestOutputHub_WriteFiltersAndLogs(t *testing.T) {
	h := NewOutputHub(0, testLogger())
	defer h.Close()

	payload := []byte("10x1\n1!")
	n, err := h.Write(payload)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != len(payload) {
		t.Errorf("Write() consumed %d bytes, want %d", n, len(payload))
	}

	want := "101100000000000000000000"
	if got := string(h.State().Snapshot()); got != want {
		t.Errorf("Snapshot() = %q, want %q", got, want)
	}

	log := h.Log()
	if len(log) != 1 {
		t.Fatalf("Log() length = %d, want 1", len(log))
	}
	if log[0].Text != want {
		t.Errorf("Log()[0].Text = %q, want %q", log[0].Text, want)
	}
}

func TestOutputHub_LogNewestFirstAndBounded(t *testing.T) {
	h := NewOutputHub(1, testLogger())
	defer h.Close()

	// Ring keeps only the most recent 30 writes.
	for i := 0; i < ringSize+5; i++ {
		bits := "0"
		if i%2 == 1 {
			bits = "1"
		}
		if _, err := h.Write([]byte(bits)); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
	}

	log := h.Log()
	if len(log) != ringSize {
		t.Fatalf("Log() length = %d, want %d", len(log), ringSize)
	}

	// Newest entry reflects the last write (i=34, odd, so '1' leading).
	if !strings.HasPrefix(log[0].Text, "0") {
		t.Errorf("Log()[0].Text = %q, want leading 0 from final write", log[0].Text)
	}
}

func TestOutputHub_EveryWriteLogged(t *testing.T) {
	h := NewOutputHub(2, testLogger())
	defer h.Close()

	// Identical writes do not change state but are still logged.
	h.Write([]byte("11")) //nolint:errcheck // Write never fails
	h.Write([]byte("11")) //nolint:errcheck // Write never fails

	if got := len(h.Log()); got != 2 {
		t.Errorf("Log() length = %d, want 2", got)
	}
}

func TestOutputHub_TelemetryOnlyOnChange(t *testing.T) {
	h := NewOutputHub(3, testLogger())
	defer h.Close()

	rec := &recordingTelemetry{}
	h.SetTelemetry(rec)

	h.Write([]byte("11")) //nolint:errcheck // Write never fails
	h.Write([]byte("11")) //nolint:errcheck // Write never fails

	if len(rec.states) != 1 {
		t.Errorf("telemetry samples = %d, want 1 (unchanged write skipped)", len(rec.states))
	}
}

func TestIOHub_WriteAndRead(t *testing.T) {
	h := NewIOHub(0, testLogger())
	defer h.Close()

	n, err := h.Write([]byte("110"))
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != 3 {
		t.Errorf("Write() consumed %d bytes, want 3", n)
	}

	line := string(h.State().Line())
	if line != "110000000000000000000000\n" {
		t.Errorf("Line() = %q", line)
	}
}
