package endpoint

import (
	"context"
	"fmt"
	"sync"

	"github.com/looplab/fsm"
)

// Lifecycle events.
const (
	eventBind = "bind"
	eventFail = "fail"
)

// Endpoint is the handle for one device in the fleet.
//
// All methods are safe for concurrent use. Cached state lives in the driver.
type Endpoint struct {
	cfg    Config
	driver Driver
	hdmi   HDMIDriver // nil without HDMI capability

	mu        sync.Mutex // serialises Register
	lifecycle *fsm.FSM
	result    *Result

	pendingMu sync.Mutex // guards binding and held
	binding   bool
	held      []func(error)
}

// New wraps a driver in an Endpoint. The HDMI capability is present when the
// driver implements HDMIDriver and reports at least one input.
func New(cfg Config, driver Driver) (*Endpoint, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if driver == nil {
		return nil, fmt.Errorf("%w: endpoint %s: nil driver", ErrInvalidConfig, cfg.ID)
	}

	e := &Endpoint{
		cfg:    cfg,
		driver: driver,
		lifecycle: fsm.NewFSM(
			string(StateUnregistered),
			fsm.Events{
				{Name: eventBind, Src: []string{string(StateUnregistered)}, Dst: string(StateRegistered)},
				{Name: eventFail, Src: []string{string(StateUnregistered)}, Dst: string(StateFailed)},
			},
			fsm.Callbacks{},
		),
	}
	if hd, ok := driver.(HDMIDriver); ok && hd.InputCount() > 0 {
		e.hdmi = hd
	}
	return e, nil
}

// ID returns the endpoint's address.
func (e *Endpoint) ID() ID { return e.cfg.ID }

// Kind returns encoder or decoder.
func (e *Endpoint) Kind() Kind { return e.cfg.Kind }

// Model returns the configured device model.
func (e *Endpoint) Model() string { return e.cfg.Model }

// Label returns the configured log label, falling back to the id.
func (e *Endpoint) Label() string {
	if e.cfg.Name != "" {
		return e.cfg.Name
	}
	return e.cfg.ID.String()
}

// State returns the current registration state.
func (e *Endpoint) State() RegistrationState {
	return RegistrationState(e.lifecycle.Current())
}

// Register binds the endpoint to its physical device.
//
// A driver error or panic yields a Failed result; Register itself never
// panics. The first outcome is recorded and returned on every later call.
func (e *Endpoint) Register() Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.result != nil {
		return *e.result
	}

	e.pendingMu.Lock()
	e.binding = true
	e.pendingMu.Unlock()

	event := eventBind
	err := e.bind()
	if err != nil {
		event = eventFail
		err = fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}
	ferr := e.lifecycle.Event(context.Background(), event)

	e.pendingMu.Lock()
	e.binding = false
	held := e.held
	e.held = nil
	e.pendingMu.Unlock()
	e.releaseHeld(held)

	if ferr != nil {
		// Only reachable if the lifecycle was driven outside Register.
		return Result{ID: e.cfg.ID, State: e.State(), Err: ferr}
	}

	res := Result{ID: e.cfg.ID, State: e.State(), Err: err}
	e.result = &res
	return res
}

// releaseHeld answers reaffirm requests that arrived while the driver was
// binding.
func (e *Endpoint) releaseHeld(held []func(error)) {
	for _, done := range held {
		var err error
		if state := e.State(); state == StateRegistered {
			err = e.Reaffirm()
		} else {
			err = fmt.Errorf("%w: %s is %s", ErrNotRegistered, e.cfg.ID, state)
		}
		if done != nil {
			done(err)
		}
	}
}

func (e *Endpoint) bind() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("driver panic: %v", r)
		}
	}()
	return e.driver.Register()
}

// HasHDMI reports whether the endpoint carries the HDMI input capability.
func (e *Endpoint) HasHDMI() bool { return e.hdmi != nil }

// InputCount returns the number of HDMI inputs, 0 without the capability.
func (e *Endpoint) InputCount() int {
	if e.hdmi == nil {
		return 0
	}
	return e.hdmi.InputCount()
}

// CurrentSyncState returns whether the given 1-based input detects a signal.
func (e *Endpoint) CurrentSyncState(input int) (bool, error) {
	if err := e.checkInput(input); err != nil {
		return false, err
	}
	return e.hdmi.SyncDetected(input), nil
}

// HDMIInputs returns the state of every input in index order.
// The result is empty without the HDMI capability.
func (e *Endpoint) HDMIInputs() []InputPort {
	n := e.InputCount()
	ports := make([]InputPort, 0, n)
	for i := 1; i <= n; i++ {
		ports = append(ports, InputPort{Index: i, SyncDetected: e.hdmi.SyncDetected(i)})
	}
	return ports
}

// Snapshot reads the driver's cached state.
func (e *Endpoint) Snapshot() Snapshot {
	s := Snapshot{
		ID:        e.cfg.ID,
		Kind:      e.cfg.Kind,
		Model:     e.cfg.Model,
		State:     e.State(),
		Online:    e.driver.IsOnline(),
		IPAddress: e.driver.IPAddress(),
		Name:      e.driver.NameFeedback(),
	}
	if e.cfg.Kind == KindEncoder {
		s.MulticastAddress = e.driver.MulticastAddressFeedback()
	}
	return s
}

// Reaffirm writes the current feedback values back into the control
// properties: the name always, the multicast address for encoders.
// Empty feedback values are left alone.
func (e *Endpoint) Reaffirm() error {
	if name := e.driver.NameFeedback(); name != "" {
		if err := e.driver.SetName(name); err != nil {
			return fmt.Errorf("reaffirming name on %s: %w", e.cfg.ID, err)
		}
	}
	if e.cfg.Kind != KindEncoder {
		return nil
	}
	if addr := e.driver.MulticastAddressFeedback(); addr != "" {
		if err := e.driver.SetMulticastAddress(addr); err != nil {
			return fmt.Errorf("reaffirming multicast address on %s: %w", e.cfg.ID, err)
		}
	}
	return nil
}

// ReaffirmRegistered runs Reaffirm once the endpoint is Registered.
//
// Drivers may raise events from inside Register. A request made while
// Register is in flight is held and answered through done when binding
// completes, and ReaffirmRegistered returns ErrReaffirmHeld. Otherwise the
// outcome is returned directly and done is not called.
func (e *Endpoint) ReaffirmRegistered(done func(error)) error {
	e.pendingMu.Lock()
	if e.binding {
		e.held = append(e.held, done)
		e.pendingMu.Unlock()
		return ErrReaffirmHeld
	}
	state := e.State()
	e.pendingMu.Unlock()

	if state != StateRegistered {
		return fmt.Errorf("%w: %s is %s", ErrNotRegistered, e.cfg.ID, state)
	}
	return e.Reaffirm()
}

// OnBaseEvent subscribes fn to the driver's base events.
func (e *Endpoint) OnBaseEvent(fn func(BaseEventArgs)) { e.driver.OnBaseEvent(fn) }

// OnNameChange subscribes fn to name changes.
func (e *Endpoint) OnNameChange(fn func(NameChangeArgs)) { e.driver.OnNameChange(fn) }

// OnIPInformationChange subscribes fn to network information changes.
func (e *Endpoint) OnIPInformationChange(fn func(IPInformationArgs)) {
	e.driver.OnIPInformationChange(fn)
}

// OnOnlineStatusChange subscribes fn to online transitions.
func (e *Endpoint) OnOnlineStatusChange(fn func(OnlineStatusArgs)) {
	e.driver.OnOnlineStatusChange(fn)
}

// OnStreamChange subscribes fn to stream changes on one input.
func (e *Endpoint) OnStreamChange(input int, fn func(StreamChangeArgs)) error {
	if err := e.checkInput(input); err != nil {
		return err
	}
	return e.hdmi.OnStreamChange(input, fn)
}

func (e *Endpoint) checkInput(input int) error {
	if e.hdmi == nil {
		return fmt.Errorf("%w: endpoint %s has no HDMI inputs", ErrNoSuchInput, e.cfg.ID)
	}
	if n := e.hdmi.InputCount(); input < 1 || input > n {
		return fmt.Errorf("%w: endpoint %s input %d (has %d)", ErrNoSuchInput, e.cfg.ID, input, n)
	}
	return nil
}
