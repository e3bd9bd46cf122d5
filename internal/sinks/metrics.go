package sinks

import (
	"time"

	"github.com/nerrad567/nvx-fleet/internal/events"
)

// MetricsWriter is the telemetry surface MetricsSink uses.
// *influxdb.Client satisfies it.
type MetricsWriter interface {
	WriteOnlineStatus(endpointID string, online bool, at time.Time)
	WriteSyncState(endpointID string, input int, syncDetected bool, at time.Time)
	WriteEvent(endpointID, kind, name string, at time.Time)
}

// MetricsSink counts every record and writes online and sync state points.
type MetricsSink struct {
	w MetricsWriter
}

func NewMetricsSink(w MetricsWriter) *MetricsSink {
	return &MetricsSink{w: w}
}

func (s *MetricsSink) Handle(rec events.Record) {
	id := rec.SourceID.String()
	s.w.WriteEvent(id, string(rec.Kind), rec.Name, rec.Timestamp)

	switch p := rec.Payload.(type) {
	case events.OnlineStatusPayload:
		s.w.WriteOnlineStatus(id, p.Online, rec.Timestamp)
	case events.StreamChangePayload:
		s.w.WriteSyncState(id, rec.Input, p.SyncDetected, rec.Timestamp)
	}
}
