// Package mqtt provides the MQTT client used by the NVX fleet supervisor.
//
// MQTT is the transport between the supervisor and the gateway agent that
// relays NVX device state, and the bus on which translated endpoint events
// are republished:
//
//	NVX gateway agent ↔ broker ↔ nvxfleet
//
// The client wraps paho.mqtt.golang with auto-reconnect, subscription
// restoration after reconnect, a retained system status topic with a Last
// Will for crash detection, and panic recovery around message handlers.
//
// Usage:
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.DeviceEvent("13"), 1,
//	    func(topic string, payload []byte) error {
//	        return handle(payload)
//	    })
//
// Use TLS (cfg.Broker.TLS) outside a lab network.
package mqtt
