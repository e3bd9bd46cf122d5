package fleet

import (
	"fmt"
	"iter"
	"sync"

	"github.com/nerrad567/nvx-fleet/internal/endpoint"
)

// Logger defines the logging interface used by the Registry.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// noopLogger is a logger that does nothing.
type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Registry is the exclusive owner of the fleet's endpoints.
//
// All public methods are thread-safe.
type Registry struct {
	factory endpoint.DriverFactory
	logger  Logger

	mu     sync.RWMutex
	byID   map[endpoint.ID]*endpoint.Endpoint
	order  []*endpoint.Endpoint // registration order
	sealed bool
}

// NewRegistry creates an empty registry that builds drivers with factory.
func NewRegistry(factory endpoint.DriverFactory) *Registry {
	return &Registry{
		factory: factory,
		logger:  noopLogger{},
		byID:    make(map[endpoint.ID]*endpoint.Endpoint),
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// AddAll constructs one endpoint per config, in order.
//
// The whole list is validated before anything is added: a duplicate id
// (within the list or against endpoints already present), an invalid
// config, or a driver construction failure returns an error wrapping
// ErrConfiguration and leaves the registry unchanged.
func (r *Registry) AddAll(configs []endpoint.Config) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return ErrRegistrySealed
	}

	seen := make(map[endpoint.ID]struct{}, len(configs))
	for i, cfg := range configs {
		if _, dup := seen[cfg.ID]; dup {
			return fmt.Errorf("%w: entry %d: %w: %s", ErrConfiguration, i, ErrDuplicateID, cfg.ID)
		}
		if _, dup := r.byID[cfg.ID]; dup {
			return fmt.Errorf("%w: entry %d: %w: %s", ErrConfiguration, i, ErrDuplicateID, cfg.ID)
		}
		seen[cfg.ID] = struct{}{}

		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("%w: entry %d: %w", ErrConfiguration, i, err)
		}
	}

	built := make([]*endpoint.Endpoint, 0, len(configs))
	for _, cfg := range configs {
		driver, err := r.factory(cfg)
		if err != nil {
			return fmt.Errorf("%w: building driver for %s: %w", ErrConfiguration, cfg.ID, err)
		}
		ep, err := endpoint.New(cfg, driver)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrConfiguration, err)
		}
		built = append(built, ep)
	}

	for _, ep := range built {
		r.byID[ep.ID()] = ep
		r.order = append(r.order, ep)
	}

	r.logger.Info("fleet endpoints loaded", "count", len(built))
	return nil
}

// RegisterAll registers every endpoint sequentially in registration order
// and returns one result per endpoint. Failures are logged and do not stop
// the remaining registrations. The registry is sealed afterwards.
func (r *Registry) RegisterAll() []endpoint.Result {
	r.mu.Lock()
	r.sealed = true
	eps := append([]*endpoint.Endpoint(nil), r.order...)
	r.mu.Unlock()

	results := make([]endpoint.Result, 0, len(eps))
	for _, ep := range eps {
		res := ep.Register()
		if res.OK() {
			r.logger.Info("endpoint registered",
				"endpoint", ep.ID().String(), "model", ep.Model(), "label", ep.Label())
		} else {
			r.logger.Error("endpoint registration failed",
				"endpoint", ep.ID().String(), "model", ep.Model(), "error", res.Err)
		}
		results = append(results, res)
	}
	return results
}

// Find returns the endpoint with the given id.
func (r *Registry) Find(id endpoint.ID) (*endpoint.Endpoint, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ep, ok := r.byID[id]
	return ep, ok
}

// All yields every endpoint in registration order. Each iteration reads a
// fresh view of the registry, so the sequence can be ranged over repeatedly.
func (r *Registry) All() iter.Seq[*endpoint.Endpoint] {
	return func(yield func(*endpoint.Endpoint) bool) {
		r.mu.RLock()
		eps := append([]*endpoint.Endpoint(nil), r.order...)
		r.mu.RUnlock()

		for _, ep := range eps {
			if !yield(ep) {
				return
			}
		}
	}
}

// Len returns the number of endpoints.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Sealed reports whether RegisterAll has run.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}

// Stats summarises the fleet by registration state and kind.
type Stats struct {
	Total        int `json:"total"`
	Registered   int `json:"registered"`
	Failed       int `json:"failed"`
	Unregistered int `json:"unregistered"`
	Encoders     int `json:"encoders"`
	Decoders     int `json:"decoders"`
	Online       int `json:"online"`
}

// Stats returns current fleet counts.
func (r *Registry) Stats() Stats {
	var s Stats
	for ep := range r.All() {
		s.Total++
		switch ep.State() {
		case endpoint.StateRegistered:
			s.Registered++
		case endpoint.StateFailed:
			s.Failed++
		default:
			s.Unregistered++
		}
		switch ep.Kind() {
		case endpoint.KindEncoder:
			s.Encoders++
		case endpoint.KindDecoder:
			s.Decoders++
		}
		if ep.Snapshot().Online {
			s.Online++
		}
	}
	return s
}
