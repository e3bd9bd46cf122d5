package influxdb

import (
	"strconv"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// Measurement names.
const (
	MeasurementOnline = "endpoint_online"
	MeasurementSync   = "hdmi_sync"
	MeasurementEvent  = "endpoint_event"
)

// WriteOnlineStatus records an endpoint's online state.
func (c *Client) WriteOnlineStatus(endpointID string, online bool, at time.Time) {
	c.WritePointWithTime(MeasurementOnline,
		map[string]string{"endpoint_id": endpointID},
		map[string]interface{}{"online": online},
		at)
}

// WriteSyncState records the sync state of one HDMI input.
func (c *Client) WriteSyncState(endpointID string, input int, syncDetected bool, at time.Time) {
	c.WritePointWithTime(MeasurementSync,
		map[string]string{
			"endpoint_id": endpointID,
			"input":       strconv.Itoa(input),
		},
		map[string]interface{}{"sync_detected": syncDetected},
		at)
}

// WriteEvent counts one driver event.
func (c *Client) WriteEvent(endpointID, kind, name string, at time.Time) {
	c.WritePointWithTime(MeasurementEvent,
		map[string]string{
			"endpoint_id": endpointID,
			"kind":        kind,
			"name":        name,
		},
		map[string]interface{}{"count": 1},
		at)
}

// WritePointWithTime writes a custom point. Dropped when disconnected.
func (c *Client) WritePointWithTime(measurement string, tags map[string]string, fields map[string]interface{}, timestamp time.Time) {
	if !c.IsConnected() {
		return
	}
	c.writer.WritePoint(write.NewPoint(measurement, tags, fields, timestamp))
}
