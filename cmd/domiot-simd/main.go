// DOMIoT Simulation Daemon
//
// This is the main entry point for the DOMIoT device simulation daemon.
// It hosts a fixed table of simulated I/O endpoints — digital input and
// output hubs, an LCD display, externally-fed vintx6 hubs, and a video
// playback sink — and exposes them over an HTTP/WebSocket API, with an
// optional MQTT bridge feeding the vintx6 hubs.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/domiot-io/drivers/internal/api"
	"github.com/domiot-io/drivers/internal/bridges/vintmqtt"
	"github.com/domiot-io/drivers/internal/devices"
	"github.com/domiot-io/drivers/internal/history"
	"github.com/domiot-io/drivers/internal/infrastructure/config"
	"github.com/domiot-io/drivers/internal/infrastructure/database"
	"github.com/domiot-io/drivers/internal/infrastructure/influxdb"
	"github.com/domiot-io/drivers/internal/infrastructure/logging"
	"github.com/domiot-io/drivers/internal/infrastructure/mqtt"
	"github.com/domiot-io/drivers/internal/vint"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "configs/config.yaml"

// pruneInterval is how often the write archive retention pass runs.
const pruneInterval = time.Hour

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Returning an error allows main to handle exit codes consistently.
//
// Parameters:
//   - ctx: Context for cancellation and shutdown signals
//
// Returns:
//   - error: nil on clean shutdown, or error describing failure
func run(ctx context.Context) error {
	// Use default logger until config is loaded
	log := logging.Default()
	log.Info("starting DOMIoT simulation daemon",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	// Load configuration
	configPath := getConfigPath()
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log.Info("configuration loaded", "path", configPath)

	// Reinitialise logger with config settings
	log = logging.New(cfg.Logging, version)
	log.Info("logger initialised",
		"level", cfg.Logging.Level,
		"format", cfg.Logging.Format,
	)

	// Open the write archive (optional)
	var archive *history.Store
	if cfg.History.Enabled {
		db, dbErr := database.Open(database.Config{
			Path:        cfg.History.Path,
			WALMode:     cfg.History.WALMode,
			BusyTimeout: cfg.History.BusyTimeout,
		})
		if dbErr != nil {
			return fmt.Errorf("opening archive database: %w", dbErr)
		}
		defer func() {
			log.Info("closing archive database")
			if closeErr := db.Close(); closeErr != nil {
				log.Error("error closing archive database", "error", closeErr)
			}
		}()

		archive = history.NewStore(db.DB)
		if initErr := archive.Init(ctx); initErr != nil {
			return fmt.Errorf("initialising write archive: %w", initErr)
		}
		log.Info("write archive ready", "path", cfg.History.Path)

		if cfg.History.RetentionHours > 0 {
			retention := time.Duration(cfg.History.RetentionHours) * time.Hour
			go pruneLoop(ctx, archive, retention, log)
		}
	} else {
		log.Info("write archive disabled")
	}

	// Connect to InfluxDB (optional)
	var influxClient *influxdb.Client
	if cfg.InfluxDB.Enabled {
		influxClient, err = influxdb.Connect(cfg.InfluxDB)
		if err != nil {
			return fmt.Errorf("connecting to InfluxDB: %w", err)
		}
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)

		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
	} else {
		log.Info("InfluxDB disabled")
	}

	// Build the device table
	tableDeps := devices.Deps{Logger: log}
	if archive != nil {
		tableDeps.Archive = archive
	}
	if influxClient != nil {
		tableDeps.Telemetry = influxClient
	}

	table, err := devices.NewTable(devices.Config{
		InputHubs:           cfg.Devices.InputHubs,
		OutputHubs:          cfg.Devices.OutputHubs,
		IOHubs:              cfg.Devices.IOHubs,
		Displays:            cfg.Devices.Displays,
		VintHubs:            cfg.Devices.VintHubs,
		Videos:              cfg.Devices.Videos,
		InputUpdateInterval: cfg.GetInputUpdateInterval(),
		PlayDuration:        cfg.GetPlayDuration(),
		TickInterval:        cfg.GetTickInterval(),
		MaxReaders:          cfg.Devices.MaxReaders,
	}, tableDeps)
	if err != nil {
		return fmt.Errorf("building device table: %w", err)
	}
	defer func() {
		log.Info("closing device table")
		if closeErr := table.Close(); closeErr != nil {
			log.Error("error closing device table", "error", closeErr)
		}
	}()

	table.Start(ctx)
	log.Info("device table started", "devices", len(table.List()))

	// Connect the MQTT controller bridge (optional)
	var mqttClient *mqtt.Client
	if cfg.MQTT.Enabled {
		mqttClient, err = mqtt.Connect(cfg.MQTT)
		if err != nil {
			return fmt.Errorf("connecting to MQTT: %w", err)
		}
		defer func() {
			log.Info("disconnecting from MQTT")
			if closeErr := mqttClient.Close(); closeErr != nil {
				log.Error("error closing MQTT", "error", closeErr)
			}
		}()
		log.Info("MQTT connected",
			"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
			"client_id", cfg.MQTT.Broker.ClientID,
		)

		mqttClient.SetOnConnect(func() {
			log.Info("MQTT reconnected")
		})
		mqttClient.SetOnDisconnect(func(err error) {
			log.Warn("MQTT disconnected", "error", err)
		})

		bridge, bridgeErr := startVintBridge(cfg, table, mqttClient, log)
		if bridgeErr != nil {
			return fmt.Errorf("starting vintx6 bridge: %w", bridgeErr)
		}
		defer func() {
			log.Info("stopping vintx6 bridge")
			bridge.Stop()
		}()
	} else {
		log.Info("MQTT bridge disabled")
	}

	// Start the HTTP API
	apiServer, err := api.New(api.Deps{
		Config:   cfg.API,
		WS:       cfg.WebSocket,
		Security: cfg.Security,
		Logger:   log,
		Table:    table,
		History:  archive,
		Version:  version,
	})
	if err != nil {
		return fmt.Errorf("creating API server: %w", err)
	}
	if err := apiServer.Start(ctx); err != nil {
		return fmt.Errorf("starting API server: %w", err)
	}
	defer func() {
		log.Info("stopping API server")
		if closeErr := apiServer.Close(); closeErr != nil {
			log.Error("error closing API server", "error", closeErr)
		}
	}()

	// Verify all connections are healthy
	if err := healthCheck(ctx, apiServer, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	log.Info("all health checks passed")

	log.Info("initialisation complete, waiting for shutdown signal")

	// Wait for shutdown signal
	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")

	// Deferred Close() calls run in reverse order:
	// 1. API server
	// 2. vintx6 bridge / MQTT (if enabled)
	// 3. Device table
	// 4. InfluxDB (if enabled)
	// 5. Archive database (if enabled)

	log.Info("DOMIoT simulation daemon stopped")
	return nil
}

// getConfigPath returns the configuration file path.
// Uses DOMIOT_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("DOMIOT_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// pruneLoop periodically removes archived writes older than the
// retention window. It exits when the context is cancelled.
func pruneLoop(ctx context.Context, archive *history.Store, retention time.Duration, log *logging.Logger) {
	ticker := time.NewTicker(pruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := archive.Prune(ctx, retention)
			if err != nil {
				log.Error("archive prune failed", "error", err)
				continue
			}
			if removed > 0 {
				log.Info("archive pruned", "removed", removed)
			}
		}
	}
}

// startVintBridge wires every vintx6 hub to the MQTT controller topics.
//
// Parameters:
//   - cfg: Application configuration
//   - table: Device table holding the vintx6 hubs
//   - mqttClient: Connected MQTT client
//   - log: Logger instance
//
// Returns:
//   - *vintmqtt.Bridge: Running bridge
//   - error: If any subscription fails
func startVintBridge(cfg *config.Config, table *devices.Table, mqttClient *mqtt.Client, log *logging.Logger) (*vintmqtt.Bridge, error) {
	hubs := make([]*vint.Hub, 0, table.Count(devices.KindVint))
	for i := 0; i < table.Count(devices.KindVint); i++ {
		hub, err := table.Vint(i)
		if err != nil {
			return nil, fmt.Errorf("resolving vintx6 hub %d: %w", i, err)
		}
		hubs = append(hubs, hub)
	}

	qos := byte(cfg.MQTT.QoS) //nolint:gosec // QoS validated to 0..2 by config
	bridge := vintmqtt.New(mqttClient, hubs, qos, log)
	if err := bridge.Start(); err != nil {
		return nil, fmt.Errorf("starting bridge: %w", err)
	}
	log.Info("vintx6 bridge started", "hubs", len(hubs))

	return bridge, nil
}

// healthCheck verifies all infrastructure connections are healthy.
//
// Parameters:
//   - ctx: Context for timeout/cancellation
//   - apiServer: API server to check
//   - mqttClient: MQTT client to check (may be nil if disabled)
//   - influxClient: InfluxDB client to check (may be nil if disabled)
//
// Returns:
//   - error: First health check failure, or nil if all healthy
func healthCheck(ctx context.Context, apiServer *api.Server, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := apiServer.HealthCheck(ctx); err != nil {
		return fmt.Errorf("api: %w", err)
	}

	if mqttClient != nil {
		if err := mqttClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("mqtt: %w", err)
		}
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
