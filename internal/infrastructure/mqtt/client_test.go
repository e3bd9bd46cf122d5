package mqtt

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nerrad567/nvx-fleet/internal/infrastructure/config"
)

// testConfig returns an MQTT configuration pointing at a local broker.
func testConfig() config.MQTTConfig {
	return config.MQTTConfig{
		Broker: config.MQTTBrokerConfig{
			Host:     "127.0.0.1",
			Port:     1883,
			ClientID: "nvxfleet-test",
		},
		QoS: 1,
		Reconnect: config.MQTTReconnectConfig{
			InitialDelay: 1,
			MaxDelay:     5,
		},
	}
}

// newDisconnectedClient builds a Client that never dialled a broker.
func newDisconnectedClient() *Client {
	return &Client{
		cfg:           testConfig(),
		subscriptions: make(map[string]subscription),
	}
}

// fakeMessage implements pahomqtt.Message.
type fakeMessage struct {
	topic   string
	payload []byte
}

func (m fakeMessage) Duplicate() bool   { return false }
func (m fakeMessage) Qos() byte         { return 1 }
func (m fakeMessage) Retained() bool    { return false }
func (m fakeMessage) Topic() string     { return m.topic }
func (m fakeMessage) MessageID() uint16 { return 1 }
func (m fakeMessage) Payload() []byte   { return m.payload }
func (m fakeMessage) Ack()              {}

// captureLogger records log calls.
type captureLogger struct {
	mu     sync.Mutex
	errors []string
	warns  []string
}

func (l *captureLogger) Error(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.errors = append(l.errors, msg)
}

func (l *captureLogger) Warn(msg string, _ ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
}

func TestTopicBuilders(t *testing.T) {
	topics := Topics{}

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"DeviceEvent", topics.DeviceEvent("13"), "nvxfleet/device/13/event"},
		{"DeviceCommand", topics.DeviceCommand("13"), "nvxfleet/device/13/command"},
		{"AllDeviceEvents", topics.AllDeviceEvents(), "nvxfleet/device/+/event"},
		{"CoreEvent", topics.CoreEvent("0A"), "nvxfleet/core/event/0A"},
		{"AllCoreEvents", topics.AllCoreEvents(), "nvxfleet/core/event/+"},
		{"SystemStatus", topics.SystemStatus(), "nvxfleet/system/status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %q, want %q", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestPublish_Validation(t *testing.T) {
	c := newDisconnectedClient()

	tests := []struct {
		name    string
		topic   string
		payload []byte
		qos     byte
		wantErr error
	}{
		{"empty topic", "", []byte("x"), 1, ErrInvalidTopic},
		{"invalid qos", "nvxfleet/test", []byte("x"), 3, ErrInvalidQoS},
		{"oversized payload", "nvxfleet/test", make([]byte, maxPayloadSize+1), 1, ErrPublishFailed},
		{"disconnected", "nvxfleet/test", []byte("x"), 1, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.Publish(tt.topic, tt.payload, tt.qos, false); !errors.Is(err, tt.wantErr) {
				t.Errorf("Publish() error = %v, want %v", err, tt.wantErr)
			}
			if err := c.PublishAsync(tt.topic, tt.payload, tt.qos, false); !errors.Is(err, tt.wantErr) {
				t.Errorf("PublishAsync() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSubscribe_Validation(t *testing.T) {
	c := newDisconnectedClient()
	noop := func(string, []byte) error { return nil }

	tests := []struct {
		name    string
		topic   string
		qos     byte
		handler MessageHandler
		wantErr error
	}{
		{"empty topic", "", 1, noop, ErrInvalidTopic},
		{"invalid qos", "nvxfleet/#", 5, noop, ErrInvalidQoS},
		{"nil handler", "nvxfleet/#", 1, nil, ErrSubscribeFailed},
		{"disconnected", "nvxfleet/#", 1, noop, ErrNotConnected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := c.Subscribe(tt.topic, tt.qos, tt.handler); !errors.Is(err, tt.wantErr) {
				t.Errorf("Subscribe() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if c.SubscriptionCount() != 0 {
		t.Errorf("SubscriptionCount() = %d after failed subscribes, want 0", c.SubscriptionCount())
	}
	if err := c.Unsubscribe(""); !errors.Is(err, ErrInvalidTopic) {
		t.Errorf("Unsubscribe(\"\") error = %v, want ErrInvalidTopic", err)
	}
}

func TestWrapHandler(t *testing.T) {
	t.Run("delivers topic and payload", func(t *testing.T) {
		c := newDisconnectedClient()
		var gotTopic, gotPayload string
		h := c.wrapHandler(func(topic string, payload []byte) error {
			gotTopic, gotPayload = topic, string(payload)
			return nil
		})

		h(nil, fakeMessage{topic: "nvxfleet/device/13/event", payload: []byte(`{"type":"online"}`)})

		if gotTopic != "nvxfleet/device/13/event" || gotPayload != `{"type":"online"}` {
			t.Errorf("handler got (%q, %q)", gotTopic, gotPayload)
		}
	})

	t.Run("recovers panic", func(t *testing.T) {
		c := newDisconnectedClient()
		logger := &captureLogger{}
		c.SetLogger(logger)
		h := c.wrapHandler(func(string, []byte) error { panic("boom") })

		h(nil, fakeMessage{topic: "nvxfleet/device/13/event"})

		if len(logger.errors) != 1 {
			t.Errorf("logged %d errors, want 1", len(logger.errors))
		}
	})

	t.Run("logs handler error", func(t *testing.T) {
		c := newDisconnectedClient()
		logger := &captureLogger{}
		c.SetLogger(logger)
		h := c.wrapHandler(func(string, []byte) error { return errors.New("bad payload") })

		h(nil, fakeMessage{topic: "nvxfleet/device/13/event"})

		if len(logger.warns) != 1 {
			t.Errorf("logged %d warnings, want 1", len(logger.warns))
		}
	})

	t.Run("no logger is safe", func(t *testing.T) {
		c := newDisconnectedClient()
		h := c.wrapHandler(func(string, []byte) error { panic("boom") })
		h(nil, fakeMessage{topic: "x"})
	})
}

func TestBuildClientOptions(t *testing.T) {
	cfg := testConfig()
	cfg.Auth.Username = "fleet"
	cfg.Auth.Password = "secret"

	opts := buildClientOptions(cfg)
	if len(opts.Servers) != 1 || opts.Servers[0].String() != "tcp://127.0.0.1:1883" {
		t.Errorf("Servers = %v, want [tcp://127.0.0.1:1883]", opts.Servers)
	}
	if opts.ClientID != "nvxfleet-test" {
		t.Errorf("ClientID = %q", opts.ClientID)
	}
	if opts.Username != "fleet" || opts.Password != "secret" {
		t.Error("credentials not applied")
	}
	if opts.TLSConfig != nil && opts.TLSConfig.MinVersion != 0 {
		t.Error("TLS configured without TLS enabled")
	}

	cfg.Broker.TLS = true
	opts = buildClientOptions(cfg)
	if got := opts.Servers[0].Scheme; got != "ssl" {
		t.Errorf("TLS scheme = %q, want ssl", got)
	}
	if opts.TLSConfig == nil || opts.TLSConfig.MinVersion != tlsMinVersion {
		t.Error("TLS minimum version not set")
	}
}

func TestConfigureLWT(t *testing.T) {
	opts := buildClientOptions(testConfig())
	configureLWT(opts, "nvxfleet-test")

	if !opts.WillEnabled || opts.WillTopic != (Topics{}).SystemStatus() || !opts.WillRetained {
		t.Errorf("will = enabled:%v topic:%q retained:%v", opts.WillEnabled, opts.WillTopic, opts.WillRetained)
	}
	if !strings.Contains(string(opts.WillPayload), "unexpected_disconnect") {
		t.Errorf("will payload = %s", opts.WillPayload)
	}
}

func TestBuildStatusPayload(t *testing.T) {
	now := time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)
	data := buildStatusPayload("online", "nvxfleet-core", "", now)

	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("json.Unmarshal() error = %v", err)
	}
	if got["status"] != "online" || got["client_id"] != "nvxfleet-core" {
		t.Errorf("payload = %v", got)
	}
	if got["timestamp"] != "2026-10-18T09:30:00Z" {
		t.Errorf("timestamp = %v", got["timestamp"])
	}
	if _, ok := got["reason"]; ok {
		t.Error("empty reason should be omitted")
	}
}

func TestHealthCheck_Disconnected(t *testing.T) {
	c := newDisconnectedClient()
	if err := c.HealthCheck(context.Background()); !errors.Is(err, ErrNotConnected) {
		t.Errorf("HealthCheck() error = %v, want ErrNotConnected", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := c.HealthCheck(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("HealthCheck(cancelled) error = %v, want context.Canceled", err)
	}
}

func TestClose_NeverConnected(t *testing.T) {
	if err := newDisconnectedClient().Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	var nilClient *Client
	if err := nilClient.Close(); err != nil {
		t.Errorf("nil Close() error = %v", err)
	}
}

func TestConnect_BrokerRefused(t *testing.T) {
	if testing.Short() {
		t.Skip("dials a closed port")
	}
	cfg := testConfig()
	cfg.Broker.Port = 19999

	if _, err := Connect(cfg); !errors.Is(err, ErrConnectionFailed) {
		t.Errorf("Connect() error = %v, want ErrConnectionFailed", err)
	}
}
