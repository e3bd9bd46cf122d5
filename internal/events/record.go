package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/nvx-fleet/internal/endpoint"
)

// Kind identifies the driver event family a Record came from.
type Kind string

const (
	KindBase               Kind = "base"
	KindNameChange         Kind = "name_change"
	KindIPInfoChange       Kind = "ip_info_change"
	KindOnlineStatusChange Kind = "online_status_change"
	KindStreamChange       Kind = "stream_change"
)

// Record is one translated driver event.
type Record struct {
	ID        uuid.UUID   `json:"id"`
	SourceID  endpoint.ID `json:"source_id"`
	Kind      Kind        `json:"kind"`
	Name      string      `json:"name"`
	Input     int         `json:"input,omitempty"`
	Payload   any         `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// BasePayload is the payload of KindBase records.
type BasePayload struct {
	EventID int `json:"event_id"`
}

// NameChangePayload is the payload of KindNameChange records.
type NameChangePayload struct {
	EventID int    `json:"event_id"`
	Name    string `json:"name"`
}

// IPInfoPayload is the payload of KindIPInfoChange records.
type IPInfoPayload struct {
	IPAddress string `json:"ip_address"`
	Connected bool   `json:"connected"`
}

// OnlineStatusPayload is the payload of KindOnlineStatusChange records.
type OnlineStatusPayload struct {
	Online bool `json:"online"`
}

// StreamChangePayload is the payload of KindStreamChange records.
// SyncDetected is read from the endpoint when the event is translated.
type StreamChangePayload struct {
	EventID      int  `json:"event_id"`
	SyncDetected bool `json:"sync_detected"`
}
