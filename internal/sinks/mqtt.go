package sinks

import (
	"encoding/json"
	"fmt"

	"github.com/nerrad567/nvx-fleet/internal/events"
	"github.com/nerrad567/nvx-fleet/internal/infrastructure/mqtt"
)

// Publisher is the MQTT operation MQTTSink needs. *mqtt.Client satisfies it.
type Publisher interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
}

// MQTTSink republishes records as JSON on nvxfleet/core/event/{id}.
type MQTTSink struct {
	pub    Publisher
	logger Logger
}

func NewMQTTSink(pub Publisher, logger Logger) *MQTTSink {
	return &MQTTSink{pub: pub, logger: orNoop(logger)}
}

const mqttSinkQoS = 1

func (s *MQTTSink) Handle(rec events.Record) {
	payload, err := json.Marshal(rec)
	if err != nil {
		s.logger.Error("failed to marshal event record", "record", rec.ID, "error", err)
		return
	}

	topic := mqtt.Topics{}.CoreEvent(fmt.Sprintf("%02X", uint8(rec.SourceID)))
	if err := s.pub.Publish(topic, payload, mqttSinkQoS, false); err != nil {
		s.logger.Warn("failed to publish event record", "topic", topic, "error", err)
	}
}
