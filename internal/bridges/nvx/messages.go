package nvx

import (
	"encoding/json"
	"fmt"
	"time"
)

// Event types published by the gateway agent.
const (
	EventTypeBase      = "base"
	EventTypeName      = "name"
	EventTypeIP        = "ip"
	EventTypeOnline    = "online"
	EventTypeStream    = "stream"
	EventTypeMulticast = "multicast"
)

// Commands sent to the gateway agent.
const (
	CommandRegister            = "register"
	CommandSetName             = "set_name"
	CommandSetMulticastAddress = "set_multicast_address"
)

// EventMessage is one device event relayed by the gateway.
// Topic: nvxfleet/device/{id}/event
type EventMessage struct {
	Type         string `json:"type"`
	EventID      int    `json:"event_id,omitempty"`
	Name         string `json:"name,omitempty"`
	IP           string `json:"ip,omitempty"`
	Connected    bool   `json:"connected,omitempty"`
	Online       bool   `json:"online,omitempty"`
	Input        int    `json:"input,omitempty"`
	SyncDetected bool   `json:"sync_detected,omitempty"`
	Address      string `json:"address,omitempty"`
}

// CommandMessage is sent to the gateway for one device.
// Topic: nvxfleet/device/{id}/command
type CommandMessage struct {
	Command   string    `json:"command"`
	DeviceID  string    `json:"device_id"`
	Model     string    `json:"model,omitempty"`
	Name      string    `json:"name,omitempty"`
	Address   string    `json:"address,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ParseEventMessage decodes and checks an event payload.
func ParseEventMessage(payload []byte) (EventMessage, error) {
	var msg EventMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return EventMessage{}, fmt.Errorf("%w: %w", ErrInvalidEvent, err)
	}

	switch msg.Type {
	case EventTypeBase, EventTypeName, EventTypeIP, EventTypeOnline, EventTypeMulticast:
	case EventTypeStream:
		if msg.Input < 1 {
			return EventMessage{}, fmt.Errorf("%w: stream event without input", ErrInvalidEvent)
		}
	case "":
		return EventMessage{}, fmt.Errorf("%w: missing type", ErrInvalidEvent)
	default:
		return EventMessage{}, fmt.Errorf("%w: unknown type %q", ErrInvalidEvent, msg.Type)
	}
	return msg, nil
}
