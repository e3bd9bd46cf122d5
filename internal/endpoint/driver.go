package endpoint

// Driver is the device-driver collaborator behind an Endpoint.
//
// Implementations cache hardware state and raise events from their own
// goroutine, one at a time per device. Handlers registered through the On*
// methods must return quickly.
type Driver interface {
	// Register binds the driver to its physical device.
	Register() error

	IsOnline() bool
	IPAddress() string

	NameFeedback() string
	SetName(name string) error
	MulticastAddressFeedback() string
	SetMulticastAddress(addr string) error

	OnBaseEvent(fn func(BaseEventArgs))
	OnNameChange(fn func(NameChangeArgs))
	OnIPInformationChange(fn func(IPInformationArgs))
	OnOnlineStatusChange(fn func(OnlineStatusArgs))
}

// HDMIDriver is implemented by drivers for devices with physical HDMI
// inputs. Inputs are numbered from 1.
type HDMIDriver interface {
	Driver

	InputCount() int
	SyncDetected(input int) bool
	OnStreamChange(input int, fn func(StreamChangeArgs)) error
}

// DriverFactory constructs the driver for one configured endpoint.
type DriverFactory func(cfg Config) (Driver, error)

// BaseEventArgs carries a generic device event.
type BaseEventArgs struct {
	EventID int
}

// NameChangeArgs carries a device name change.
type NameChangeArgs struct {
	EventID int
	Name    string
}

// IPInformationArgs carries a network information change.
type IPInformationArgs struct {
	IPAddress string
	Connected bool
}

// OnlineStatusArgs carries an online/offline transition.
type OnlineStatusArgs struct {
	Online bool
}

// StreamChangeArgs carries a change on one HDMI input stream.
type StreamChangeArgs struct {
	EventID int
}
