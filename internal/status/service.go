package status

import (
	"errors"
	"fmt"
	"iter"
	"strings"

	"github.com/nerrad567/nvx-fleet/internal/endpoint"
)

// Logger defines the logging interface used by the Service.
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

// Source is the fleet the Service reads from.
type Source interface {
	All() iter.Seq[*endpoint.Endpoint]
	Find(id endpoint.ID) (*endpoint.Endpoint, bool)
}

// SyncKind tags the shape of a SyncStatus answer.
type SyncKind string

const (
	SyncAll      SyncKind = "all"
	SyncSingle   SyncKind = "single"
	SyncNotFound SyncKind = "not_found"
)

// SyncEntry is the sync state of one HDMI input.
type SyncEntry struct {
	ID           endpoint.ID `json:"id"`
	Input        int         `json:"input"`
	SyncDetected bool        `json:"sync_detected"`
}

// SyncStatus is the answer to a sync-status query. Entries is non-nil for
// SyncAll and SyncSingle, nil for SyncNotFound.
type SyncStatus struct {
	Kind    SyncKind     `json:"kind"`
	ID      *endpoint.ID `json:"id,omitempty"`
	Entries []SyncEntry  `json:"entries"`
}

// Identity is an endpoint's name and stream address.
type Identity struct {
	ID               endpoint.ID `json:"id"`
	Name             string      `json:"name"`
	MulticastAddress string      `json:"multicast_address,omitempty"`
}

// Service answers status queries.
//
// All methods are safe for concurrent use once the fleet is sealed.
type Service struct {
	src    Source
	logger Logger
}

// NewService creates a Service over src.
func NewService(src Source) *Service {
	return &Service{src: src, logger: noopLogger{}}
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(logger Logger) {
	s.logger = logger
}

// SyncStatus reports HDMI sync state. A nil id covers every endpoint with
// HDMI inputs in registration order.
func (s *Service) SyncStatus(id *endpoint.ID) SyncStatus {
	if id == nil {
		entries := []SyncEntry{}
		for ep := range s.src.All() {
			entries = appendInputs(entries, ep)
		}
		return SyncStatus{Kind: SyncAll, Entries: entries}
	}

	want := *id
	ep, ok := s.src.Find(want)
	if !ok {
		return SyncStatus{Kind: SyncNotFound, ID: &want}
	}
	return SyncStatus{Kind: SyncSingle, ID: &want, Entries: appendInputs([]SyncEntry{}, ep)}
}

func appendInputs(entries []SyncEntry, ep *endpoint.Endpoint) []SyncEntry {
	for _, in := range ep.HDMIInputs() {
		entries = append(entries, SyncEntry{ID: ep.ID(), Input: in.Index, SyncDetected: in.SyncDetected})
	}
	return entries
}

// Query runs SyncStatus from a single console-style parameter: empty for
// all endpoints, otherwise an id such as "0x13" or "19".
func (s *Service) Query(param string) (SyncStatus, error) {
	param = strings.TrimSpace(param)
	if param == "" {
		return s.SyncStatus(nil), nil
	}
	id, err := endpoint.ParseID(param)
	if err != nil {
		return SyncStatus{}, err
	}
	return s.SyncStatus(&id), nil
}

// IdentitySummary returns the endpoint's name and multicast address.
func (s *Service) IdentitySummary(id endpoint.ID) (Identity, bool) {
	ep, ok := s.src.Find(id)
	if !ok {
		return Identity{}, false
	}
	snap := ep.Snapshot()
	return Identity{ID: id, Name: snap.Name, MulticastAddress: snap.MulticastAddress}, true
}

// Snapshot returns one endpoint's cached state.
func (s *Service) Snapshot(id endpoint.ID) (endpoint.Snapshot, bool) {
	ep, ok := s.src.Find(id)
	if !ok {
		return endpoint.Snapshot{}, false
	}
	return ep.Snapshot(), true
}

// Snapshots returns every endpoint's cached state in registration order.
func (s *Service) Snapshots() []endpoint.Snapshot {
	snaps := []endpoint.Snapshot{}
	for ep := range s.src.All() {
		snaps = append(snaps, ep.Snapshot())
	}
	return snaps
}

// Inputs returns the endpoint's HDMI input states, empty without inputs.
func (s *Service) Inputs(id endpoint.ID) ([]endpoint.InputPort, bool) {
	ep, ok := s.src.Find(id)
	if !ok {
		return nil, false
	}
	return ep.HDMIInputs(), true
}

// ReaffirmConfiguration writes the endpoint's name, and for encoders its
// multicast address, back from feedback into the control properties.
// A request that arrives while the endpoint is still registering is applied
// when registration succeeds.
func (s *Service) ReaffirmConfiguration(id endpoint.ID) error {
	ep, ok := s.src.Find(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrEndpointNotFound, id)
	}

	err := ep.ReaffirmRegistered(func(err error) {
		if err != nil {
			s.logger.Warn("held reaffirm failed", "endpoint", id.String(), "error", err)
			return
		}
		s.logger.Info("endpoint configuration reaffirmed", "endpoint", id.String(), "held", true)
	})
	switch {
	case errors.Is(err, endpoint.ErrReaffirmHeld):
		s.logger.Debug("reaffirm held until registration completes", "endpoint", id.String())
		return nil
	case err != nil:
		return err
	}
	s.logger.Info("endpoint configuration reaffirmed", "endpoint", id.String())
	return nil
}
