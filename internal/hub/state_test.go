package hub

import (
	"bytes"
	"testing"
)

func TestFilterBits(t *testing.T) {
	tests := []struct {
		name  string
		input string
		width int
		want  string
	}{
		{
			name:  "clean digits",
			input: "1010",
			width: 24,
			want:  "1010",
		},
		{
			name:  "newline and carriage return skipped",
			input: "10\r\n01",
			width: 24,
			want:  "1001",
		},
		{
			name:  "garbage dropped",
			input: "1a0b1 x1",
			width: 24,
			want:  "1011",
		},
		{
			name:  "excess digits ignored",
			input: "111",
			width: 2,
			want:  "11",
		},
		{
			name:  "empty input",
			input: "",
			width: 24,
			want:  "",
		},
		{
			name:  "only garbage",
			input: "abc def!",
			width: 24,
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FilterBits([]byte(tt.input), tt.width)
			if string(got) != tt.want {
				t.Errorf("FilterBits(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.want)
			}
		})
	}
}

func TestState_UpdateFullReplace(t *testing.T) {
	s := NewState(8)

	changed := s.Update([]byte("11111111"))
	if !changed {
		t.Error("Update() to all ones reported no change")
	}
	if got := string(s.Snapshot()); got != "11111111" {
		t.Errorf("Snapshot() = %q, want 11111111", got)
	}

	// Shorter payload resets unspecified trailing channels to '0'.
	changed = s.Update([]byte("101"))
	if !changed {
		t.Error("Update() with partial payload reported no change")
	}
	if got := string(s.Snapshot()); got != "10100000" {
		t.Errorf("Snapshot() = %q, want 10100000", got)
	}
}

func TestState_UpdateDetectsNoChange(t *testing.T) {
	s := NewState(4)

	if changed := s.Update([]byte("0000")); changed {
		t.Error("Update() with identical states reported change")
	}

	s.Update([]byte("1100"))
	if changed := s.Update([]byte("1100")); changed {
		t.Error("repeated Update() reported change")
	}
}

func TestState_Line(t *testing.T) {
	s := NewState(4)
	s.Update([]byte("1010"))

	line := s.Line()
	if !bytes.Equal(line, []byte("1010\n")) {
		t.Errorf("Line() = %q, want %q", line, "1010\n")
	}
	if len(line) != s.Width()+1 {
		t.Errorf("Line() length = %d, want %d", len(line), s.Width()+1)
	}
}

func TestState_SnapshotReturnsCopy(t *testing.T) {
	s := NewState(4)
	snap := s.Snapshot()
	snap[0] = '1'

	if got := string(s.Snapshot()); got != "0000" {
		t.Errorf("state mutated through snapshot: %q", got)
	}
}
