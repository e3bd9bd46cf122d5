// Package influxdb provides InfluxDB connectivity for NVX fleet telemetry.
//
// It wraps the official influxdb-client-go v2 library with connection
// management, batched non-blocking writes and health monitoring.
//
// # Measurements
//
//   - endpoint_online: tag endpoint_id, field online (bool)
//   - hdmi_sync: tags endpoint_id and input, field sync_detected (bool)
//   - endpoint_event: tags endpoint_id, kind and name, field count (int)
//
// # Usage
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	client.WriteOnlineStatus("0x13", true, time.Now())
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
//
// # Error Handling
//
// Write errors surface asynchronously through SetOnError. Connection and
// health check errors are returned directly.
package influxdb
