package events

import (
	"fmt"
	"iter"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/nerrad567/nvx-fleet/internal/endpoint"
)

// Logger defines the logging interface used by the Dispatcher.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Handler observes dispatched Records.
type Handler func(Record)

// Source is the fleet the Dispatcher attaches to.
type Source interface {
	All() iter.Seq[*endpoint.Endpoint]
	Find(id endpoint.ID) (*endpoint.Endpoint, bool)
}

// Reaffirmer writes an endpoint's configuration back after it reconnects.
type Reaffirmer interface {
	ReaffirmConfiguration(id endpoint.ID) error
}

// Options configures a Dispatcher. Zero values select defaults.
type Options struct {
	Logger     Logger
	Reaffirmer Reaffirmer
	Clock      func() time.Time
	NewID      func() uuid.UUID
}

// Dispatcher fans translated driver events out to observers.
type Dispatcher struct {
	logger     Logger
	reaffirmer Reaffirmer
	clock      func() time.Time
	newID      func() uuid.UUID

	mu       sync.Mutex
	subs     []*Subscription // copy-on-write; never mutated in place
	attached bool
}

// Subscription is the handle returned by OnEvent.
type Subscription struct {
	d        *Dispatcher
	handler  Handler
	released atomic.Bool
}

// NewDispatcher creates a Dispatcher with no observers.
func NewDispatcher(opts Options) *Dispatcher {
	d := &Dispatcher{
		logger:     opts.Logger,
		reaffirmer: opts.Reaffirmer,
		clock:      opts.Clock,
		newID:      opts.NewID,
	}
	if d.logger == nil {
		d.logger = noopLogger{}
	}
	if d.clock == nil {
		d.clock = func() time.Time { return time.Now().UTC() }
	}
	if d.newID == nil {
		d.newID = uuid.New
	}
	return d
}

// OnEvent registers an observer. Observers receive each Record in the order
// they subscribed.
func (d *Dispatcher) OnEvent(h Handler) *Subscription {
	s := &Subscription{d: d, handler: h}

	d.mu.Lock()
	defer d.mu.Unlock()
	subs := make([]*Subscription, len(d.subs), len(d.subs)+1)
	copy(subs, d.subs)
	d.subs = append(subs, s)
	return s
}

// Release stops delivery to the observer. It may be called from any
// goroutine, including from inside the observer, and more than once.
// A dispatch already in progress skips the observer from then on.
func (s *Subscription) Release() {
	if !s.released.CompareAndSwap(false, true) {
		return
	}
	s.d.remove(s)
}

func (d *Dispatcher) remove(s *Subscription) {
	d.mu.Lock()
	defer d.mu.Unlock()
	subs := make([]*Subscription, 0, len(d.subs))
	for _, cur := range d.subs {
		if cur != s {
			subs = append(subs, cur)
		}
	}
	d.subs = subs
}

// ObserverCount returns the number of active observers.
func (d *Dispatcher) ObserverCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.subs)
}

// Attach subscribes to the driver events of every endpoint in src. It may
// be called once.
func (d *Dispatcher) Attach(src Source) error {
	d.mu.Lock()
	if d.attached {
		d.mu.Unlock()
		return ErrAlreadyAttached
	}
	d.attached = true
	d.mu.Unlock()

	for ep := range src.All() {
		if err := d.attachEndpoint(src, ep); err != nil {
			return err
		}
	}
	return nil
}

func (d *Dispatcher) attachEndpoint(src Source, ep *endpoint.Endpoint) error {
	id := ep.ID()

	ep.OnBaseEvent(func(a endpoint.BaseEventArgs) {
		d.emit(id, KindBase, endpoint.EventName(a.EventID), 0, BasePayload{EventID: a.EventID})
	})
	ep.OnNameChange(func(a endpoint.NameChangeArgs) {
		d.emit(id, KindNameChange, endpoint.EventName(a.EventID), 0,
			NameChangePayload{EventID: a.EventID, Name: a.Name})
	})
	ep.OnIPInformationChange(func(a endpoint.IPInformationArgs) {
		d.emit(id, KindIPInfoChange, endpoint.EventName(endpoint.EventIDIPAddress), 0,
			IPInfoPayload{IPAddress: a.IPAddress, Connected: a.Connected})
	})
	ep.OnOnlineStatusChange(func(a endpoint.OnlineStatusArgs) {
		if a.Online {
			d.reaffirm(id)
		}
		d.emit(id, KindOnlineStatusChange, endpoint.EventName(endpoint.EventIDOnline), 0,
			OnlineStatusPayload{Online: a.Online})
	})

	for input := 1; input <= ep.InputCount(); input++ {
		err := ep.OnStreamChange(input, func(a endpoint.StreamChangeArgs) {
			var synced bool
			if cur, ok := src.Find(id); ok {
				synced, _ = cur.CurrentSyncState(input)
			}
			d.emit(id, KindStreamChange, endpoint.EventName(a.EventID), input,
				StreamChangePayload{EventID: a.EventID, SyncDetected: synced})
		})
		if err != nil {
			return fmt.Errorf("attaching stream handler for %s input %d: %w", id, input, err)
		}
	}

	d.logger.Debug("dispatcher attached to endpoint",
		"endpoint", id.String(), "hdmi_inputs", ep.InputCount())
	return nil
}

func (d *Dispatcher) reaffirm(id endpoint.ID) {
	if d.reaffirmer == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("reaffirm panicked", "endpoint", id.String(), "panic", fmt.Sprint(r))
		}
	}()
	if err := d.reaffirmer.ReaffirmConfiguration(id); err != nil {
		d.logger.Warn("reaffirming configuration failed", "endpoint", id.String(), "error", err)
	}
}

func (d *Dispatcher) emit(id endpoint.ID, kind Kind, name string, input int, payload any) {
	d.dispatch(Record{
		ID:        d.newID(),
		SourceID:  id,
		Kind:      kind,
		Name:      name,
		Input:     input,
		Payload:   payload,
		Timestamp: d.clock(),
	})
}

func (d *Dispatcher) dispatch(rec Record) {
	d.mu.Lock()
	subs := d.subs
	d.mu.Unlock()

	for _, s := range subs {
		if s.released.Load() {
			continue
		}
		d.deliver(s, rec)
	}
}

func (d *Dispatcher) deliver(s *Subscription, rec Record) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("event observer panicked",
				"endpoint", rec.SourceID.String(), "kind", string(rec.Kind), "panic", fmt.Sprint(r))
		}
	}()
	s.handler(rec)
}
