package nvx

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/nerrad567/nvx-fleet/internal/endpoint"
	"github.com/nerrad567/nvx-fleet/internal/infrastructure/mqtt"
)

// MQTTClient is the subset of the MQTT client the bridge uses.
// *mqtt.Client satisfies it; tests use a mock.
type MQTTClient interface {
	// Publish sends a message and waits for broker acknowledgement.
	Publish(topic string, payload []byte, qos byte, retained bool) error

	// PublishAsync sends a message without waiting.
	PublishAsync(topic string, payload []byte, qos byte, retained bool) error

	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
	IsConnected() bool
}

// Logger interface for optional logging.
type Logger interface {
	Debug(msg string, keysAndValues ...any)
	Info(msg string, keysAndValues ...any)
	Warn(msg string, keysAndValues ...any)
	Error(msg string, keysAndValues ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// BridgeOptions holds configuration for creating a bridge.
type BridgeOptions struct {
	// MQTTClient is the broker connection. Required.
	MQTTClient MQTTClient

	// QoS for subscriptions and commands. Default 1.
	QoS byte

	// Logger is optional.
	Logger Logger

	// Clock stamps outgoing commands. Default time.Now.
	Clock func() time.Time
}

// Bridge builds and tracks NVX device drivers sharing one MQTT connection.
//
// Thread Safety: All methods are safe for concurrent use.
type Bridge struct {
	mqtt   MQTTClient
	qos    byte
	logger Logger
	now    func() time.Time

	mu      sync.RWMutex
	devices map[endpoint.ID]*Device
}

// NewBridge creates a bridge. Devices are added through NewDriver.
func NewBridge(opts BridgeOptions) (*Bridge, error) {
	if opts.MQTTClient == nil {
		return nil, fmt.Errorf("MQTT client is required")
	}

	b := &Bridge{
		mqtt:    opts.MQTTClient,
		qos:     opts.QoS,
		logger:  opts.Logger,
		now:     opts.Clock,
		devices: make(map[endpoint.ID]*Device),
	}
	if b.qos == 0 {
		b.qos = 1
	}
	if b.logger == nil {
		b.logger = noopLogger{}
	}
	if b.now == nil {
		b.now = time.Now
	}
	return b, nil
}

// NewDriver builds the driver for one configured endpoint. Its signature
// matches endpoint.DriverFactory.
func (b *Bridge) NewDriver(cfg endpoint.Config) (endpoint.Driver, error) {
	model, ok := LookupModel(cfg.Model)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownModel, cfg.Model)
	}
	if model.Kind != cfg.Kind {
		return nil, fmt.Errorf("%w: %s is an %s, configured as %s", ErrModelMismatch, model.Name, model.Kind, cfg.Kind)
	}

	inputs := model.HDMIInputs
	if cfg.HDMIInputs > 0 {
		inputs = cfg.HDMIInputs
	}

	d := newDevice(b, cfg, model, inputs)

	b.mu.Lock()
	b.devices[cfg.ID] = d
	b.mu.Unlock()

	return d, nil
}

// Device returns the driver built for id.
func (b *Bridge) Device(id endpoint.ID) (*Device, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	d, ok := b.devices[id]
	return d, ok
}

// Close unsubscribes every registered device's event topic.
func (b *Bridge) Close() {
	b.mu.RLock()
	devices := make([]*Device, 0, len(b.devices))
	for _, d := range b.devices {
		devices = append(devices, d)
	}
	b.mu.RUnlock()

	for _, d := range devices {
		if !d.isRegistered() {
			continue
		}
		if err := b.mqtt.Unsubscribe(d.eventTopic()); err != nil {
			b.logger.Warn("failed to unsubscribe device events", "endpoint", d.id, "error", err)
		}
	}
}

// sendCommand publishes cmd for a device. Registration waits for the
// broker; other commands are sent asynchronously since they may be issued
// from an MQTT handler.
func (b *Bridge) sendCommand(d *Device, cmd CommandMessage, wait bool) error {
	if !b.mqtt.IsConnected() {
		return ErrNotConnected
	}

	cmd.DeviceID = d.topicID
	cmd.Timestamp = b.now().UTC()
	payload, err := json.Marshal(cmd)
	if err != nil {
		return fmt.Errorf("marshalling %s command: %w", cmd.Command, err)
	}

	topic := mqtt.Topics{}.DeviceCommand(d.topicID)
	if wait {
		err = b.mqtt.Publish(topic, payload, b.qos, false)
	} else {
		err = b.mqtt.PublishAsync(topic, payload, b.qos, false)
	}
	if err != nil {
		return fmt.Errorf("publishing %s command: %w", cmd.Command, err)
	}

	b.logger.Debug("sent device command", "endpoint", d.id, "command", cmd.Command)
	return nil
}
