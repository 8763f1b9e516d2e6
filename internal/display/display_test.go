package display

import (
	"strings"
	"testing"

	"github.com/domiot-io/drivers/internal/infrastructure/config"
	"github.com/domiot-io/drivers/internal/infrastructure/logging"
)

func testLogger() *logging.Logger {
	return logging.New(config.LoggingConfig{
		Level:  "error",
		Format: "text",
		Output: "stderr",
	}, "test")
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		max   int
		want  string
	}{
		{
			name:  "plain text",
			input: "AISLE 7: Paper Towels",
			max:   MaxTextLen,
			want:  "AISLE 7: Paper Towels",
		},
		{
			name:  "newlines become spaces",
			input: "LINE1\nLINE2\rLINE3",
			max:   MaxTextLen,
			want:  "LINE1 LINE2 LINE3",
		},
		{
			name:  "non-printables dropped",
			input: "AB\x00C\x07D\x1b",
			max:   MaxTextLen,
			want:  "ABCD",
		},
		{
			name:  "capped at max",
			input: strings.Repeat("x", 200),
			max:   120,
			want:  strings.Repeat("x", 120),
		},
		{
			name:  "trailing spaces trimmed",
			input: "HELLO   \n\n",
			max:   MaxTextLen,
			want:  "HELLO",
		},
		{
			name:  "empty input",
			input: "",
			max:   MaxTextLen,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Sanitize([]byte(tt.input), tt.max)
			if got != tt.want {
				t.Errorf("Sanitize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestDisplay_WriteStoresText(t *testing.T) {
	d := New(0, testLogger())
	defer d.Close()

	payload := []byte("CHECKOUT 3 OPEN\n")
	n, err := d.Write(payload)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if n != len(payload) {
		t.Errorf("Write() consumed %d bytes, want %d", n, len(payload))
	}

	if got := d.Text(); got != "CHECKOUT 3 OPEN" {
		t.Errorf("Text() = %q, want %q", got, "CHECKOUT 3 OPEN")
	}
}

func TestDisplay_LogNewestFirst(t *testing.T) {
	d := New(1, testLogger())
	defer d.Close()

	d.Write([]byte("first"))  //nolint:errcheck // Write never fails
	d.Write([]byte("second")) //nolint:errcheck // Write never fails

	log := d.Log()
	if len(log) != 2 {
		t.Fatalf("Log() length = %d, want 2", len(log))
	}
	if log[0].Text != "second" || log[1].Text != "first" {
		t.Errorf("Log() = [%q, %q], want [second, first]", log[0].Text, log[1].Text)
	}
}

func TestDisplay_LogBounded(t *testing.T) {
	d := New(2, testLogger())
	defer d.Close()

	for i := 0; i < ringSize+10; i++ {
		d.Write([]byte("entry")) //nolint:errcheck // Write never fails
	}

	if got := len(d.Log()); got != ringSize {
		t.Errorf("Log() length = %d, want %d", got, ringSize)
	}
}
