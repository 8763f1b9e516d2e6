// Package influxdb provides InfluxDB connectivity for the DOMIoT
// simulation daemon.
//
// It wraps the official influxdb-client-go v2 library with daemon
// patterns for connection management, metric writing, and health
// monitoring.
//
// # Purpose
//
// This package handles time-series data storage for:
//   - Hub channel-state changes
//   - Video playback position samples
//
// # Usage
//
//	cfg := config.InfluxDBConfig{
//	    URL:    "http://localhost:8086",
//	    Token:  "your-token",
//	    Org:    "domiot",
//	    Bucket: "metrics",
//	}
//
//	client, err := influxdb.Connect(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	// Record a channel-state change
//	client.WriteChannelStates("ihubx24-0", "101010101010101010101010")
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are logged via a callback.
// Connection and health check errors are returned directly.
//
// # Performance
//
// Writes are batched according to config.yaml settings (batch_size, flush_interval).
// This keeps the playback tick path free of network round-trips.
package influxdb
