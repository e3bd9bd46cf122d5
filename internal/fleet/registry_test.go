package fleet

import (
	"errors"
	"testing"

	"github.com/nerrad567/nvx-fleet/internal/endpoint"
	"github.com/nerrad567/nvx-fleet/internal/endpoint/endpointtest"
)

func testConfigs() []endpoint.Config {
	return []endpoint.Config{
		{ID: 0x10, Kind: endpoint.KindDecoder, Model: "DM-NVX-D30"},
		{ID: 0x13, Kind: endpoint.KindEncoder, Model: "DM-NVX-350", HDMIInputs: 2},
	}
}

func newTestRegistry(t *testing.T, fake *endpointtest.Fleet, cfgs []endpoint.Config) *Registry {
	t.Helper()
	reg := NewRegistry(fake.Factory)
	if err := reg.AddAll(cfgs); err != nil {
		t.Fatalf("AddAll() error = %v", err)
	}
	return reg
}

func TestRegisterAll_OneResultPerEndpointInOrder(t *testing.T) {
	cfgs := []endpoint.Config{
		{ID: 0x30, Kind: endpoint.KindEncoder, Model: "DM-NVX-E30", HDMIInputs: 1},
		{ID: 0x10, Kind: endpoint.KindDecoder, Model: "DM-NVX-D30"},
		{ID: 0x21, Kind: endpoint.KindDecoder, Model: "DM-NVX-D20"},
		{ID: 0x13, Kind: endpoint.KindEncoder, Model: "DM-NVX-350", HDMIInputs: 2},
	}
	reg := newTestRegistry(t, endpointtest.NewFleet(), cfgs)

	results := reg.RegisterAll()
	if len(results) != len(cfgs) {
		t.Fatalf("RegisterAll() returned %d results, want %d", len(results), len(cfgs))
	}
	for i, res := range results {
		if res.ID != cfgs[i].ID {
			t.Errorf("results[%d].ID = %s, want %s", i, res.ID, cfgs[i].ID)
		}
		if !res.OK() {
			t.Errorf("results[%d] = %v, want success", i, res)
		}
	}
}

func TestRegisterAll_FailureIsolated(t *testing.T) {
	fake := endpointtest.NewFleet()
	fake.RegisterErrs[0x13] = errors.New("no response from device")
	reg := newTestRegistry(t, fake, testConfigs())

	results := reg.RegisterAll()
	if len(results) != 2 {
		t.Fatalf("RegisterAll() returned %d results, want 2", len(results))
	}

	if results[0].ID != 0x10 || !results[0].OK() {
		t.Errorf("results[0] = %v, want 0x10 success", results[0])
	}
	if results[1].ID != 0x13 || results[1].State != endpoint.StateFailed {
		t.Errorf("results[1] = %v, want 0x13 failed", results[1])
	}

	// A failed endpoint stays in the registry.
	ep, ok := reg.Find(0x13)
	if !ok {
		t.Fatal("Find(0x13) missing after failed registration")
	}
	if ep.State() != endpoint.StateFailed {
		t.Errorf("State() = %q, want failed", ep.State())
	}
}

func TestRegisterAll_FailureInMiddle(t *testing.T) {
	fake := endpointtest.NewFleet()
	fake.RegisterErrs[0x11] = errors.New("timeout")
	cfgs := []endpoint.Config{
		{ID: 0x10, Kind: endpoint.KindDecoder, Model: "DM-NVX-D30"},
		{ID: 0x11, Kind: endpoint.KindDecoder, Model: "DM-NVX-D30"},
		{ID: 0x12, Kind: endpoint.KindDecoder, Model: "DM-NVX-D30"},
	}
	reg := newTestRegistry(t, fake, cfgs)

	results := reg.RegisterAll()
	want := []bool{true, false, true}
	for i, res := range results {
		if res.OK() != want[i] {
			t.Errorf("results[%d].OK() = %v, want %v", i, res.OK(), want[i])
		}
	}
}

func TestFind(t *testing.T) {
	reg := newTestRegistry(t, endpointtest.NewFleet(), testConfigs())
	reg.RegisterAll()

	for _, cfg := range testConfigs() {
		ep, ok := reg.Find(cfg.ID)
		if !ok {
			t.Errorf("Find(%s) not found", cfg.ID)
			continue
		}
		if ep.ID() != cfg.ID {
			t.Errorf("Find(%s).ID() = %s", cfg.ID, ep.ID())
		}
	}

	if ep, ok := reg.Find(0x99); ok || ep != nil {
		t.Errorf("Find(0x99) = %v, %v; want nil, false", ep, ok)
	}
}

func TestAddAll_DuplicateID(t *testing.T) {
	reg := NewRegistry(endpointtest.NewFleet().Factory)
	cfgs := append(testConfigs(), endpoint.Config{ID: 0x10, Kind: endpoint.KindEncoder, Model: "DM-NVX-E30"})

	err := reg.AddAll(cfgs)
	if !errors.Is(err, ErrConfiguration) {
		t.Fatalf("AddAll() error = %v, want ErrConfiguration", err)
	}
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("AddAll() error = %v, want ErrDuplicateID", err)
	}
	if reg.Len() != 0 {
		t.Errorf("Len() = %d after failed AddAll, want 0", reg.Len())
	}
}

func TestAddAll_DuplicateAcrossCalls(t *testing.T) {
	reg := newTestRegistry(t, endpointtest.NewFleet(), testConfigs())

	err := reg.AddAll([]endpoint.Config{{ID: 0x13, Kind: endpoint.KindEncoder, Model: "DM-NVX-E30"}})
	if !errors.Is(err, ErrDuplicateID) {
		t.Errorf("AddAll() error = %v, want ErrDuplicateID", err)
	}
	if reg.Len() != 2 {
		t.Errorf("Len() = %d, want 2", reg.Len())
	}
}

func TestAddAll_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  endpoint.Config
	}{
		{"unknown kind", endpoint.Config{ID: 0x20, Kind: "matrix", Model: "X"}},
		{"negative inputs", endpoint.Config{ID: 0x20, Kind: endpoint.KindEncoder, Model: "X", HDMIInputs: -2}},
		{"decoder multicast", endpoint.Config{ID: 0x20, Kind: endpoint.KindDecoder, Model: "X", MulticastAddress: "239.1.1.1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := NewRegistry(endpointtest.NewFleet().Factory)
			err := reg.AddAll(append(testConfigs(), tt.cfg))
			if !errors.Is(err, ErrConfiguration) {
				t.Fatalf("AddAll() error = %v, want ErrConfiguration", err)
			}
			if !errors.Is(err, endpoint.ErrInvalidConfig) {
				t.Errorf("AddAll() error = %v, want endpoint.ErrInvalidConfig", err)
			}
			if reg.Len() != 0 {
				t.Errorf("Len() = %d, want 0", reg.Len())
			}
		})
	}
}

func TestAddAll_FactoryError(t *testing.T) {
	fake := endpointtest.NewFleet()
	fake.FactoryErrs[0x13] = endpointtest.ErrFactory
	reg := NewRegistry(fake.Factory)

	err := reg.AddAll(testConfigs())
	if !errors.Is(err, ErrConfiguration) || !errors.Is(err, endpointtest.ErrFactory) {
		t.Errorf("AddAll() error = %v, want ErrConfiguration wrapping ErrFactory", err)
	}
	if reg.Len() != 0 {
		t.Errorf("Len() = %d, want 0", reg.Len())
	}
}

func TestAddAll_SealedAfterRegisterAll(t *testing.T) {
	reg := newTestRegistry(t, endpointtest.NewFleet(), testConfigs())
	reg.RegisterAll()

	if !reg.Sealed() {
		t.Error("Sealed() = false after RegisterAll")
	}
	err := reg.AddAll([]endpoint.Config{{ID: 0x40, Kind: endpoint.KindDecoder, Model: "DM-NVX-D20"}})
	if !errors.Is(err, ErrRegistrySealed) {
		t.Errorf("AddAll() error = %v, want ErrRegistrySealed", err)
	}
}

func TestAll_OrderAndRestart(t *testing.T) {
	cfgs := []endpoint.Config{
		{ID: 0x13, Kind: endpoint.KindEncoder, Model: "DM-NVX-350", HDMIInputs: 2},
		{ID: 0x02, Kind: endpoint.KindDecoder, Model: "DM-NVX-D30"},
		{ID: 0x10, Kind: endpoint.KindDecoder, Model: "DM-NVX-D30"},
	}
	reg := newTestRegistry(t, endpointtest.NewFleet(), cfgs)

	for pass := range 2 {
		var got []endpoint.ID
		for ep := range reg.All() {
			got = append(got, ep.ID())
		}
		if len(got) != len(cfgs) {
			t.Fatalf("pass %d: All() yielded %d endpoints, want %d", pass, len(got), len(cfgs))
		}
		for i := range cfgs {
			if got[i] != cfgs[i].ID {
				t.Errorf("pass %d: All()[%d] = %s, want %s", pass, i, got[i], cfgs[i].ID)
			}
		}
	}

	// Early break stops the sequence.
	count := 0
	for range reg.All() {
		count++
		break
	}
	if count != 1 {
		t.Errorf("break after first element yielded %d, want 1", count)
	}
}

func TestStats(t *testing.T) {
	fake := endpointtest.NewFleet()
	fake.RegisterErrs[0x13] = errors.New("refused")
	reg := newTestRegistry(t, fake, testConfigs())

	before := reg.Stats()
	if before.Unregistered != 2 || before.Total != 2 {
		t.Errorf("Stats() before = %+v, want 2 unregistered", before)
	}

	reg.RegisterAll()
	fake.Driver(0x10).RaiseOnline(true)

	s := reg.Stats()
	want := Stats{Total: 2, Registered: 1, Failed: 1, Encoders: 1, Decoders: 1, Online: 1}
	if s != want {
		t.Errorf("Stats() = %+v, want %+v", s, want)
	}
}
