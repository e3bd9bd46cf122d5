package endpoint

import (
	"fmt"
	"strconv"
	"strings"
)

// ID is an endpoint's fleet-scoped 8-bit address.
type ID uint8

// String formats the id the way it is printed on device labels, e.g. "0x13".
func (id ID) String() string {
	return fmt.Sprintf("0x%02X", uint8(id))
}

// MarshalText implements encoding.TextMarshaler.
func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *ID) UnmarshalText(text []byte) error {
	parsed, err := ParseID(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

// ParseID parses "0x13", "0X13" or decimal "19" into an ID.
func ParseID(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty", ErrInvalidID)
	}
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return ID(v), nil
}

// Kind distinguishes encoders from decoders.
type Kind string

const (
	KindEncoder Kind = "encoder"
	KindDecoder Kind = "decoder"
)

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k == KindEncoder || k == KindDecoder
}

// RegistrationState is an endpoint's position in its registration lifecycle.
type RegistrationState string

const (
	StateUnregistered RegistrationState = "unregistered"
	StateRegistered   RegistrationState = "registered"
	StateFailed       RegistrationState = "failed"
)

// Config describes one endpoint in the fleet list.
type Config struct {
	ID    ID
	Kind  Kind
	Model string

	// Name is a log label. The device's own name comes from the driver.
	Name string

	// MulticastAddress is the initial stream address for encoders.
	MulticastAddress string

	// HDMIInputs overrides the model's input count when > 0.
	HDMIInputs int
}

// Validate checks a single config in isolation. Cross-config rules such as
// id uniqueness belong to the registry.
func (c Config) Validate() error {
	if !c.Kind.Valid() {
		return fmt.Errorf("%w: endpoint %s: unknown kind %q", ErrInvalidConfig, c.ID, c.Kind)
	}
	if c.HDMIInputs < 0 {
		return fmt.Errorf("%w: endpoint %s: negative input count %d", ErrInvalidConfig, c.ID, c.HDMIInputs)
	}
	if c.Kind == KindDecoder && c.MulticastAddress != "" {
		return fmt.Errorf("%w: endpoint %s: decoders have no multicast address", ErrInvalidConfig, c.ID)
	}
	return nil
}

// InputPort is the current state of one physical HDMI input.
type InputPort struct {
	Index        int  `json:"index"`
	SyncDetected bool `json:"sync_detected"`
}

// Snapshot is a point-in-time read of an endpoint's cached state.
type Snapshot struct {
	ID               ID                `json:"id"`
	Kind             Kind              `json:"kind"`
	Model            string            `json:"model"`
	State            RegistrationState `json:"registration_state"`
	Online           bool              `json:"online"`
	IPAddress        string            `json:"ip_address,omitempty"`
	Name             string            `json:"name"`
	MulticastAddress string            `json:"multicast_address,omitempty"`
}

// Result is the outcome of one endpoint's registration.
type Result struct {
	ID    ID
	State RegistrationState
	Err   error
}

// OK reports whether registration succeeded.
func (r Result) OK() bool {
	return r.State == StateRegistered
}

func (r Result) String() string {
	if r.OK() {
		return fmt.Sprintf("%s: success", r.ID)
	}
	return fmt.Sprintf("%s: failure: %v", r.ID, r.Err)
}
