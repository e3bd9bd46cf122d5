package endpoint

import "fmt"

// Device event identifiers raised by NVX drivers on base and stream events.
const (
	EventIDOnline           = 1
	EventIDName             = 2
	EventIDIPAddress        = 3
	EventIDMulticastAddress = 4
	EventIDSyncDetected     = 5
	EventIDResolution       = 6
	EventIDInterlaced       = 7
	EventIDFramesPerSecond  = 8
	EventIDHdcpSupport      = 9
	EventIDHdcpState        = 10
	EventIDAudioFormat      = 11
	EventIDAudioChannels    = 12
	EventIDColorSpace       = 13
	EventIDStreamStatus     = 14
	EventIDStreamLocation   = 15
	EventIDDeviceMode       = 16
	EventIDVideoSource      = 17
	EventIDAudioSource      = 18
	EventIDFirmwareVersion  = 19
	EventIDSerialNumber     = 20
)

var eventNames = map[int]string{
	EventIDOnline:           "Online",
	EventIDName:             "Name",
	EventIDIPAddress:        "IpAddress",
	EventIDMulticastAddress: "MulticastAddress",
	EventIDSyncDetected:     "SyncDetected",
	EventIDResolution:       "Resolution",
	EventIDInterlaced:       "Interlaced",
	EventIDFramesPerSecond:  "FramesPerSecond",
	EventIDHdcpSupport:      "HdcpSupport",
	EventIDHdcpState:        "HdcpState",
	EventIDAudioFormat:      "AudioFormat",
	EventIDAudioChannels:    "AudioChannels",
	EventIDColorSpace:       "ColorSpace",
	EventIDStreamStatus:     "StreamStatus",
	EventIDStreamLocation:   "StreamLocation",
	EventIDDeviceMode:       "DeviceMode",
	EventIDVideoSource:      "VideoSource",
	EventIDAudioSource:      "AudioSource",
	EventIDFirmwareVersion:  "FirmwareVersion",
	EventIDSerialNumber:     "SerialNumber",
}

// EventName resolves a driver event id to its symbolic name.
// Unknown ids resolve to "Unknown(n)".
func EventName(id int) string {
	if name, ok := eventNames[id]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", id)
}
