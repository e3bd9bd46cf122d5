// Package endpointtest provides an in-memory endpoint.HDMIDriver for tests.
package endpointtest

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nerrad567/nvx-fleet/internal/endpoint"
)

// Driver is a scriptable in-memory device. Tests change its state through
// the Raise methods, which update the cache and then invoke handlers
// synchronously on the calling goroutine.
type Driver struct {
	mu sync.Mutex

	// RegisterErr is returned by Register when set.
	RegisterErr error
	// RegisterPanic makes Register panic with this value when non-nil.
	RegisterPanic any
	// SetErr is returned by SetName and SetMulticastAddress when set.
	SetErr error
	// DuringRegister runs inside Register before it returns, standing in
	// for events a real driver raises while binding.
	DuringRegister func()

	registerCalls int
	online        bool
	ip            string
	name          string
	multicast     string
	syncs         []bool

	setNames      []string
	setMulticasts []string

	base   []func(endpoint.BaseEventArgs)
	names  []func(endpoint.NameChangeArgs)
	ips    []func(endpoint.IPInformationArgs)
	onl    []func(endpoint.OnlineStatusArgs)
	stream map[int][]func(endpoint.StreamChangeArgs)
}

// NewDriver creates a driver with the given number of HDMI inputs, all
// without sync.
func NewDriver(inputs int) *Driver {
	return &Driver{
		syncs:  make([]bool, inputs),
		stream: make(map[int][]func(endpoint.StreamChangeArgs)),
	}
}

func (d *Driver) Register() error {
	d.mu.Lock()
	d.registerCalls++
	p, err, during := d.RegisterPanic, d.RegisterErr, d.DuringRegister
	d.mu.Unlock()
	if during != nil {
		during()
	}
	if p != nil {
		panic(p)
	}
	return err
}

// RegisterCalls returns how many times Register was invoked.
func (d *Driver) RegisterCalls() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.registerCalls
}

func (d *Driver) IsOnline() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.online
}

func (d *Driver) IPAddress() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ip
}

func (d *Driver) NameFeedback() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.name
}

func (d *Driver) SetName(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.SetErr != nil {
		return d.SetErr
	}
	d.setNames = append(d.setNames, name)
	return nil
}

func (d *Driver) MulticastAddressFeedback() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.multicast
}

func (d *Driver) SetMulticastAddress(addr string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.SetErr != nil {
		return d.SetErr
	}
	d.setMulticasts = append(d.setMulticasts, addr)
	return nil
}

// SetNameCalls returns the values written through SetName.
func (d *Driver) SetNameCalls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.setNames...)
}

// SetMulticastCalls returns the values written through SetMulticastAddress.
func (d *Driver) SetMulticastCalls() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.setMulticasts...)
}

func (d *Driver) InputCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.syncs)
}

func (d *Driver) SyncDetected(input int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if input < 1 || input > len(d.syncs) {
		return false
	}
	return d.syncs[input-1]
}

func (d *Driver) OnBaseEvent(fn func(endpoint.BaseEventArgs)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.base = append(d.base, fn)
}

func (d *Driver) OnNameChange(fn func(endpoint.NameChangeArgs)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.names = append(d.names, fn)
}

func (d *Driver) OnIPInformationChange(fn func(endpoint.IPInformationArgs)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ips = append(d.ips, fn)
}

func (d *Driver) OnOnlineStatusChange(fn func(endpoint.OnlineStatusArgs)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onl = append(d.onl, fn)
}

func (d *Driver) OnStreamChange(input int, fn func(endpoint.StreamChangeArgs)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if input < 1 || input > len(d.syncs) {
		return fmt.Errorf("input %d out of range", input)
	}
	d.stream[input] = append(d.stream[input], fn)
	return nil
}

// SetState seeds the cached identity and connectivity without raising events.
func (d *Driver) SetState(online bool, ip, name, multicast string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.online, d.ip, d.name, d.multicast = online, ip, name, multicast
}

// RaiseBase raises a base event.
func (d *Driver) RaiseBase(eventID int) {
	d.mu.Lock()
	hs := append([]func(endpoint.BaseEventArgs){}, d.base...)
	d.mu.Unlock()
	for _, h := range hs {
		h(endpoint.BaseEventArgs{EventID: eventID})
	}
}

// RaiseNameChange updates the name feedback and raises a name change.
func (d *Driver) RaiseNameChange(name string) {
	d.mu.Lock()
	d.name = name
	hs := append([]func(endpoint.NameChangeArgs){}, d.names...)
	d.mu.Unlock()
	for _, h := range hs {
		h(endpoint.NameChangeArgs{EventID: endpoint.EventIDName, Name: name})
	}
}

// RaiseIPInformation updates the IP address and raises an IP change.
func (d *Driver) RaiseIPInformation(ip string, connected bool) {
	d.mu.Lock()
	d.ip = ip
	hs := append([]func(endpoint.IPInformationArgs){}, d.ips...)
	d.mu.Unlock()
	for _, h := range hs {
		h(endpoint.IPInformationArgs{IPAddress: ip, Connected: connected})
	}
}

// RaiseOnline updates the online flag and raises an online status change.
func (d *Driver) RaiseOnline(online bool) {
	d.mu.Lock()
	d.online = online
	hs := append([]func(endpoint.OnlineStatusArgs){}, d.onl...)
	d.mu.Unlock()
	for _, h := range hs {
		h(endpoint.OnlineStatusArgs{Online: online})
	}
}

// RaiseStream updates one input's sync flag and raises a stream change.
func (d *Driver) RaiseStream(input int, sync bool) {
	d.mu.Lock()
	if input >= 1 && input <= len(d.syncs) {
		d.syncs[input-1] = sync
	}
	hs := append([]func(endpoint.StreamChangeArgs){}, d.stream[input]...)
	d.mu.Unlock()
	for _, h := range hs {
		h(endpoint.StreamChangeArgs{EventID: endpoint.EventIDSyncDetected})
	}
}

// Fleet builds Drivers through its Factory and keeps them by id so tests
// can raise events on a registered fleet.
type Fleet struct {
	mu      sync.Mutex
	drivers map[endpoint.ID]*Driver

	// RegisterErrs makes the driver for an id fail registration.
	RegisterErrs map[endpoint.ID]error
	// FactoryErrs makes driver construction fail for an id.
	FactoryErrs map[endpoint.ID]error
}

// ErrFactory is a ready-made construction failure.
var ErrFactory = errors.New("endpointtest: driver construction failed")

// NewFleet creates an empty fake fleet.
func NewFleet() *Fleet {
	return &Fleet{
		drivers:      make(map[endpoint.ID]*Driver),
		RegisterErrs: make(map[endpoint.ID]error),
		FactoryErrs:  make(map[endpoint.ID]error),
	}
}

// Factory implements endpoint.DriverFactory. Each driver gets
// cfg.HDMIInputs inputs.
func (f *Fleet) Factory(cfg endpoint.Config) (endpoint.Driver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.FactoryErrs[cfg.ID]; err != nil {
		return nil, err
	}
	d := NewDriver(cfg.HDMIInputs)
	d.RegisterErr = f.RegisterErrs[cfg.ID]
	d.multicast = cfg.MulticastAddress
	f.drivers[cfg.ID] = d
	return d, nil
}

// Driver returns the driver built for id, or nil.
func (f *Fleet) Driver(id endpoint.ID) *Driver {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.drivers[id]
}
