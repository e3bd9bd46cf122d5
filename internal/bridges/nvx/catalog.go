package nvx

import (
	"strings"

	"github.com/nerrad567/nvx-fleet/internal/endpoint"
)

// Model describes one supported device class.
type Model struct {
	Name       string
	Kind       endpoint.Kind
	HDMIInputs int
}

var catalog = map[string]Model{
	"DM-NVX-E30": {Name: "DM-NVX-E30", Kind: endpoint.KindEncoder, HDMIInputs: 1},
	"DM-NVX-E20": {Name: "DM-NVX-E20", Kind: endpoint.KindEncoder, HDMIInputs: 1},
	"DM-NVX-350": {Name: "DM-NVX-350", Kind: endpoint.KindEncoder, HDMIInputs: 2},
	"DM-NVX-352": {Name: "DM-NVX-352", Kind: endpoint.KindEncoder, HDMIInputs: 2},
	"DM-NVX-D30": {Name: "DM-NVX-D30", Kind: endpoint.KindDecoder},
	"DM-NVX-D20": {Name: "DM-NVX-D20", Kind: endpoint.KindDecoder},
}

// LookupModel finds a catalog entry, ignoring case.
func LookupModel(name string) (Model, bool) {
	m, ok := catalog[strings.ToUpper(strings.TrimSpace(name))]
	return m, ok
}
