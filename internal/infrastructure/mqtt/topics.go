package mqtt

import "fmt"

// Topic roots.
const (
	TopicPrefix       = "nvxfleet"
	TopicPrefixDevice = TopicPrefix + "/device"
	TopicPrefixCore   = TopicPrefix + "/core"
	TopicPrefixSystem = TopicPrefix + "/system"
)

// Topics builds fleet topic names.
//
//	mqtt.Topics{}.DeviceEvent("13")  // nvxfleet/device/13/event
//	mqtt.Topics{}.CoreEvent("13")    // nvxfleet/core/event/13
type Topics struct{}

// DeviceEvent is where the gateway agent publishes one device's events.
func (Topics) DeviceEvent(deviceID string) string {
	return fmt.Sprintf("%s/%s/event", TopicPrefixDevice, deviceID)
}

// DeviceCommand is where the supervisor sends commands for one device.
func (Topics) DeviceCommand(deviceID string) string {
	return fmt.Sprintf("%s/%s/command", TopicPrefixDevice, deviceID)
}

// AllDeviceEvents matches every device event topic.
func (Topics) AllDeviceEvents() string {
	return TopicPrefixDevice + "/+/event"
}

// CoreEvent is where translated endpoint events are republished.
func (Topics) CoreEvent(deviceID string) string {
	return fmt.Sprintf("%s/event/%s", TopicPrefixCore, deviceID)
}

// AllCoreEvents matches every republished endpoint event.
func (Topics) AllCoreEvents() string {
	return TopicPrefixCore + "/event/+"
}

// SystemStatus carries the supervisor's retained online/offline status.
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}
