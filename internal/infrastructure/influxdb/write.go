package influxdb

import (
	"strings"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// WriteChannelStates records a hub channel-state change.
//
// The write is non-blocking; data is batched and sent asynchronously.
// Besides the raw state string, the number of active channels is
// recorded so dashboards can graph activity without parsing bits.
//
// Parameters:
//   - device: Device instance name (e.g., "ihubx24-0")
//   - states: The full channel state string ('0'/'1' per channel)
//
// Example:
//
//	client.WriteChannelStates("ohubx24-0", "101100000000000000000000")
func (c *Client) WriteChannelStates(device string, states string) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"channel_states",
		map[string]string{
			"device": device,
		},
		map[string]interface{}{
			"states": states,
			"active": strings.Count(states, "1"),
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePlaybackPosition records a video playback position sample.
//
// Called from the playback tick, so it must stay non-blocking.
//
// Parameters:
//   - device: Device instance name (e.g., "video-0")
//   - positionMS: Current playback position in milliseconds
func (c *Client) WritePlaybackPosition(device string, positionMS int64) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(
		"playback_position",
		map[string]string{
			"device": device,
		},
		map[string]interface{}{
			"position_ms": positionMS,
		},
		time.Now(),
	)

	c.writeAPI.WritePoint(point)
}

// WritePoint writes a custom point with full control over tags and fields.
//
// Use this for custom measurements that don't fit the helper methods.
//
// Parameters:
//   - measurement: The measurement name (table)
//   - tags: Key-value pairs for indexing (low cardinality)
//   - fields: Key-value pairs for the actual data
//
// Example:
//
//	client.WritePoint("daemon_stats",
//	    map[string]string{"host": "simd-01"},
//	    map[string]interface{}{"reader_sessions": 12})
func (c *Client) WritePoint(measurement string, tags map[string]string, fields map[string]interface{}) {
	if !c.IsConnected() {
		return
	}

	point := write.NewPoint(measurement, tags, fields, time.Now())
	c.writeAPI.WritePoint(point)
}
