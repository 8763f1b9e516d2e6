package devices

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/domiot-io/drivers/internal/infrastructure/config"
	"github.com/domiot-io/drivers/internal/infrastructure/logging"
	"github.com/domiot-io/drivers/internal/vint"
	"github.com/domiot-io/drivers/internal/watch"
)

func testLogger() *logging.Logger {
	return logging.New(config.LoggingConfig{
		Level:  "error",
		Format: "text",
		Output: "stderr",
	}, "test")
}

func testConfig() Config {
	return Config{
		InputHubs:           2,
		OutputHubs:          2,
		IOHubs:              1,
		Displays:            1,
		VintHubs:            1,
		Videos:              1,
		InputUpdateInterval: time.Hour,
		PlayDuration:        time.Second,
		TickInterval:        10 * time.Millisecond,
	}
}

func newTestTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := NewTable(testConfig(), Deps{Logger: testLogger()})
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	t.Cleanup(func() {
		tbl.Close() //nolint:errcheck // Test cleanup
	})
	return tbl
}

func TestNewTable_ValidatesCounts(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"zero input hubs", func(c *Config) { c.InputHubs = 0 }},
		{"too many displays", func(c *Config) { c.Displays = 11 }},
		{"negative videos", func(c *Config) { c.Videos = -1 }},
		{"zero tick interval", func(c *Config) { c.TickInterval = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			tt.mutate(&cfg)
			if _, err := NewTable(cfg, Deps{Logger: testLogger()}); err == nil {
				t.Error("NewTable() expected error, got nil")
			}
		})
	}
}

func TestTable_List(t *testing.T) {
	tbl := newTestTable(t)

	list := tbl.List()
	if len(list) != 8 {
		t.Fatalf("List() length = %d, want 8", len(list))
	}
	if list[0].Name != "ihubx24-0" {
		t.Errorf("List()[0].Name = %q, want ihubx24-0", list[0].Name)
	}
	if list[len(list)-1].Name != "video-0" {
		t.Errorf("last entry = %q, want video-0", list[len(list)-1].Name)
	}
}

func TestParseKind(t *testing.T) {
	for _, k := range Kinds() {
		got, err := ParseKind(string(k))
		if err != nil || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k, got, err)
		}
	}
	if _, err := ParseKind("teleporter"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("ParseKind(teleporter) error = %v, want ErrUnknownKind", err)
	}
}

func TestOpen_InvalidInstance(t *testing.T) {
	tbl := newTestTable(t)

	if _, err := tbl.Open(KindInputHub, 5, Blocking); !errors.Is(err, ErrInvalidInstance) {
		t.Errorf("Open(ihubx24, 5) error = %v, want ErrInvalidInstance", err)
	}
	if _, err := tbl.Open(KindDisplay, -1, Blocking); !errors.Is(err, ErrInvalidInstance) {
		t.Errorf("Open(lcd, -1) error = %v, want ErrInvalidInstance", err)
	}
}

func TestOpen_InputHubFirstRead(t *testing.T) {
	tbl := newTestTable(t)

	conn, err := tbl.Open(KindInputHub, 0, Blocking)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer conn.Close()

	if !conn.Ready() {
		t.Error("Ready() = false on a fresh input hub session")
	}

	// First read returns the initial states without blocking.
	line, err := conn.Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(line) != 25 || line[24] != '\n' {
		t.Errorf("Read() = %q, want 24 bits plus newline", line)
	}

	// Writes are rejected.
	if _, err := conn.Write([]byte("111")); !errors.Is(err, ErrReadOnly) {
		t.Errorf("Write() error = %v, want ErrReadOnly", err)
	}
}

func TestOpen_InputHubNonBlocking(t *testing.T) {
	tbl := newTestTable(t)

	conn, err := tbl.Open(KindInputHub, 0, NonBlocking)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer conn.Close()

	// Consume the first-read bias, then the next read would block.
	if _, err := conn.Read(context.Background()); err != nil {
		t.Fatalf("first Read() error = %v", err)
	}
	if _, err := conn.Read(context.Background()); !errors.Is(err, watch.ErrWouldBlock) {
		t.Errorf("second Read() error = %v, want ErrWouldBlock", err)
	}
}

func TestOpen_InputHubBlockingWakesOnChange(t *testing.T) {
	tbl := newTestTable(t)

	conn, err := tbl.Open(KindInputHub, 1, Blocking)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer conn.Close()

	if _, err := conn.Read(context.Background()); err != nil {
		t.Fatalf("first Read() error = %v", err)
	}

	h, err := tbl.InputHub(1)
	if err != nil {
		t.Fatalf("InputHub() error = %v", err)
	}
	go func() {
		time.Sleep(20 * time.Millisecond)
		h.SetChannels([]byte("111111111111111111111111"))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	line, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("blocking Read() error = %v", err)
	}
	if !strings.HasPrefix(string(line), "1111") {
		t.Errorf("Read() = %q, want the updated states", line)
	}
}

func TestOpen_OutputHubIsWriteOnly(t *testing.T) {
	tbl := newTestTable(t)

	conn, err := tbl.Open(KindOutputHub, 0, Blocking)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer conn.Close()

	if _, err := conn.Read(context.Background()); !errors.Is(err, ErrWriteOnly) {
		t.Errorf("Read() error = %v, want ErrWriteOnly", err)
	}
	if _, err := conn.Write([]byte("101\n")); err != nil {
		t.Errorf("Write() error = %v", err)
	}
}

func TestOpen_IOHubDeliversStatesOnce(t *testing.T) {
	tbl := newTestTable(t)

	conn, err := tbl.Open(KindIOHub, 0, Blocking)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("110")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	line, err := conn.Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !strings.HasPrefix(string(line), "110") {
		t.Errorf("Read() = %q, want written states", line)
	}

	if _, err := conn.Read(context.Background()); !errors.Is(err, io.EOF) {
		t.Errorf("second Read() error = %v, want io.EOF", err)
	}
}

func TestOpen_VintGatesWrites(t *testing.T) {
	tbl := newTestTable(t)

	conn, err := tbl.Open(KindVint, 0, Blocking)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("101010")); !errors.Is(err, vint.ErrNotConnected) {
		t.Errorf("Write() error = %v, want ErrNotConnected", err)
	}
	if _, err := conn.Read(context.Background()); !errors.Is(err, vint.ErrNotConnected) {
		t.Errorf("Read() error = %v, want ErrNotConnected", err)
	}

	h, err := tbl.Vint(0)
	if err != nil {
		t.Fatalf("Vint() error = %v", err)
	}
	h.SetConnected(true)
	if _, err := conn.Write([]byte("101010")); err != nil {
		t.Errorf("Write() after connect error = %v", err)
	}
}

func TestOpen_VideoSessionResetsEnded(t *testing.T) {
	tbl, err := NewTable(Config{
		InputHubs:           1,
		OutputHubs:          1,
		IOHubs:              1,
		Displays:            1,
		VintHubs:            1,
		Videos:              1,
		InputUpdateInterval: time.Hour,
		PlayDuration:        50 * time.Millisecond,
		TickInterval:        10 * time.Millisecond,
	}, Deps{Logger: testLogger()})
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	defer tbl.Close()

	p, err := tbl.Video(0)
	if err != nil {
		t.Fatalf("Video() error = %v", err)
	}

	p.Write([]byte("SET SRC=/media/a.mp4\n")) //nolint:errcheck // Write never fails
	p.Write([]byte("LOAD\n"))                 //nolint:errcheck // Write never fails
	p.Write([]byte("PLAY\n"))                 //nolint:errcheck // Write never fails

	deadline := time.Now().Add(2 * time.Second)
	for !p.Ended() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !p.Ended() {
		t.Fatal("playback never ended")
	}

	// Opening a reader session clears the ended flag and rewinds.
	conn, err := tbl.Open(KindVideo, 0, Blocking)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer conn.Close()

	if p.Ended() {
		t.Error("Ended() = true after opening a reader session")
	}
	if got := p.PositionMS(); got != 0 {
		t.Errorf("PositionMS() = %d, want 0 after session open", got)
	}
}

func TestOpen_VideoReadDeliversPosition(t *testing.T) {
	tbl := newTestTable(t)

	conn, err := tbl.Open(KindVideo, 0, Blocking)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte("SET SRC=/media/a.mp4\n")); err != nil {
		t.Fatalf("Write(SET SRC) error = %v", err)
	}
	if _, err := conn.Write([]byte("LOAD\n")); err != nil {
		t.Fatalf("Write(LOAD) error = %v", err)
	}
	if _, err := conn.Write([]byte("PLAY\n")); err != nil {
		t.Fatalf("Write(PLAY) error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	line, err := conn.Read(ctx)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !strings.HasPrefix(string(line), "CURRENT_TIME=") {
		t.Errorf("Read() = %q, want a CURRENT_TIME line", line)
	}
}

func TestTable_ReaderLimit(t *testing.T) {
	cfg := testConfig()
	cfg.MaxReaders = 1
	tbl, err := NewTable(cfg, Deps{Logger: testLogger()})
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	defer tbl.Close()

	first, err := tbl.Open(KindInputHub, 0, Blocking)
	if err != nil {
		t.Fatalf("first Open() error = %v", err)
	}
	defer first.Close()

	if _, err := tbl.Open(KindInputHub, 0, Blocking); !errors.Is(err, watch.ErrTooManyReaders) {
		t.Errorf("second Open() error = %v, want ErrTooManyReaders", err)
	}
}
