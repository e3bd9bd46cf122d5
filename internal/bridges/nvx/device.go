package nvx

import (
	"fmt"
	"sync"

	"github.com/nerrad567/nvx-fleet/internal/endpoint"
	"github.com/nerrad567/nvx-fleet/internal/infrastructure/mqtt"
)

// Device is the driver for one NVX endpoint. It implements
// endpoint.HDMIDriver; decoders report zero inputs.
type Device struct {
	bridge  *Bridge
	id      endpoint.ID
	topicID string
	model   Model
	cfg     endpoint.Config

	mu         sync.RWMutex
	registered bool
	online     bool
	ip         string
	name       string
	multicast  string
	sync       []bool

	baseHandlers   []func(endpoint.BaseEventArgs)
	nameHandlers   []func(endpoint.NameChangeArgs)
	ipHandlers     []func(endpoint.IPInformationArgs)
	onlineHandlers []func(endpoint.OnlineStatusArgs)
	streamHandlers map[int][]func(endpoint.StreamChangeArgs)
}

func newDevice(b *Bridge, cfg endpoint.Config, model Model, inputs int) *Device {
	return &Device{
		bridge:         b,
		id:             cfg.ID,
		topicID:        fmt.Sprintf("%02X", uint8(cfg.ID)),
		model:          model,
		cfg:            cfg,
		sync:           make([]bool, inputs),
		streamHandlers: make(map[int][]func(endpoint.StreamChangeArgs)),
	}
}

func (d *Device) eventTopic() string {
	return mqtt.Topics{}.DeviceEvent(d.topicID)
}

func (d *Device) isRegistered() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.registered
}

// Model returns the catalog entry the device was built from.
func (d *Device) Model() Model {
	return d.model
}

// Register subscribes to the device's event topic and asks the gateway to
// bind it. There is no retry.
func (d *Device) Register() error {
	if !d.bridge.mqtt.IsConnected() {
		return ErrNotConnected
	}

	if err := d.bridge.mqtt.Subscribe(d.eventTopic(), d.bridge.qos, d.handleMessage); err != nil {
		return fmt.Errorf("subscribing to %s: %w", d.eventTopic(), err)
	}

	cmd := CommandMessage{
		Command: CommandRegister,
		Model:   d.model.Name,
		Name:    d.cfg.Name,
		Address: d.cfg.MulticastAddress,
	}
	if err := d.bridge.sendCommand(d, cmd, true); err != nil {
		return err
	}

	d.mu.Lock()
	d.registered = true
	d.mu.Unlock()
	return nil
}

func (d *Device) IsOnline() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.online
}

func (d *Device) IPAddress() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.ip
}

func (d *Device) NameFeedback() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.name
}

// SetName asks the device to take name. The cached feedback changes when
// the device reports it.
func (d *Device) SetName(name string) error {
	return d.bridge.sendCommand(d, CommandMessage{Command: CommandSetName, Name: name}, false)
}

func (d *Device) MulticastAddressFeedback() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.multicast
}

func (d *Device) SetMulticastAddress(addr string) error {
	return d.bridge.sendCommand(d, CommandMessage{Command: CommandSetMulticastAddress, Address: addr}, false)
}

func (d *Device) InputCount() int {
	return len(d.sync)
}

// SyncDetected reports the last sync state of input (1-based). Out of
// range inputs report false.
func (d *Device) SyncDetected(input int) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if input < 1 || input > len(d.sync) {
		return false
	}
	return d.sync[input-1]
}

func (d *Device) OnBaseEvent(fn func(endpoint.BaseEventArgs)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.baseHandlers = append(d.baseHandlers, fn)
}

func (d *Device) OnNameChange(fn func(endpoint.NameChangeArgs)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nameHandlers = append(d.nameHandlers, fn)
}

func (d *Device) OnIPInformationChange(fn func(endpoint.IPInformationArgs)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ipHandlers = append(d.ipHandlers, fn)
}

func (d *Device) OnOnlineStatusChange(fn func(endpoint.OnlineStatusArgs)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onlineHandlers = append(d.onlineHandlers, fn)
}

func (d *Device) OnStreamChange(input int, fn func(endpoint.StreamChangeArgs)) error {
	if input < 1 || input > len(d.sync) {
		return fmt.Errorf("%w: input %d on %s", endpoint.ErrNoSuchInput, input, d.id)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.streamHandlers[input] = append(d.streamHandlers[input], fn)
	return nil
}

// handleMessage applies one gateway event to the cache, then invokes the
// matching handlers without holding the lock.
func (d *Device) handleMessage(_ string, payload []byte) error {
	msg, err := ParseEventMessage(payload)
	if err != nil {
		return fmt.Errorf("endpoint %s: %w", d.id, err)
	}

	d.mu.Lock()
	switch msg.Type {
	case EventTypeBase:
		handlers := append([]func(endpoint.BaseEventArgs){}, d.baseHandlers...)
		d.mu.Unlock()
		for _, fn := range handlers {
			fn(endpoint.BaseEventArgs{EventID: msg.EventID})
		}

	case EventTypeMulticast:
		d.multicast = msg.Address
		handlers := append([]func(endpoint.BaseEventArgs){}, d.baseHandlers...)
		d.mu.Unlock()
		for _, fn := range handlers {
			fn(endpoint.BaseEventArgs{EventID: endpoint.EventIDMulticastAddress})
		}

	case EventTypeName:
		d.name = msg.Name
		handlers := append([]func(endpoint.NameChangeArgs){}, d.nameHandlers...)
		d.mu.Unlock()
		eventID := msg.EventID
		if eventID == 0 {
			eventID = endpoint.EventIDName
		}
		for _, fn := range handlers {
			fn(endpoint.NameChangeArgs{EventID: eventID, Name: msg.Name})
		}

	case EventTypeIP:
		d.ip = msg.IP
		handlers := append([]func(endpoint.IPInformationArgs){}, d.ipHandlers...)
		d.mu.Unlock()
		for _, fn := range handlers {
			fn(endpoint.IPInformationArgs{IPAddress: msg.IP, Connected: msg.Connected})
		}

	case EventTypeOnline:
		d.online = msg.Online
		handlers := append([]func(endpoint.OnlineStatusArgs){}, d.onlineHandlers...)
		d.mu.Unlock()
		for _, fn := range handlers {
			fn(endpoint.OnlineStatusArgs{Online: msg.Online})
		}

	case EventTypeStream:
		if msg.Input > len(d.sync) {
			d.mu.Unlock()
			return fmt.Errorf("%w: endpoint %s has no input %d", ErrInvalidEvent, d.id, msg.Input)
		}
		d.sync[msg.Input-1] = msg.SyncDetected
		handlers := append([]func(endpoint.StreamChangeArgs){}, d.streamHandlers[msg.Input]...)
		d.mu.Unlock()
		eventID := msg.EventID
		if eventID == 0 {
			eventID = endpoint.EventIDSyncDetected
		}
		for _, fn := range handlers {
			fn(endpoint.StreamChangeArgs{EventID: eventID})
		}

	default:
		d.mu.Unlock()
	}
	return nil
}
