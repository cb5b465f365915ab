package importer

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alexanderramin/drip/internal/domain"
)

// CampaignFile is the JSON shape used by campaign export and import.
type CampaignFile struct {
	Campaign CampaignImport `json:"campaign"`
	Nodes    []NodeImport   `json:"nodes"`
	Edges    []EdgeImport   `json:"edges"`
}

type CampaignImport struct {
	Name string `json:"name"`
}

type NodeImport struct {
	ID    string           `json:"id"`
	Kind  string           `json:"kind"`
	X     float64          `json:"x"`
	Y     float64          `json:"y"`
	Attrs domain.NodeAttrs `json:"attrs"`
}

type EdgeImport struct {
	Source string `json:"source"`
	Port   string `json:"port,omitempty"`
	Target string `json:"target"`
}

// LoadCampaignFile reads and parses a campaign JSON file.
func LoadCampaignFile(path string) (*CampaignFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCampaignFile(data)
}

func ParseCampaignFile(data []byte) (*CampaignFile, error) {
	var f CampaignFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing campaign file: %w", err)
	}
	return &f, nil
}

// FromGraph builds the export form of a stored campaign graph.
func FromGraph(c *domain.Campaign, nodes []domain.Node, edges []domain.Edge) *CampaignFile {
	f := &CampaignFile{
		Campaign: CampaignImport{Name: c.Name},
		Nodes:    make([]NodeImport, 0, len(nodes)),
		Edges:    make([]EdgeImport, 0, len(edges)),
	}
	for _, n := range nodes {
		f.Nodes = append(f.Nodes, NodeImport{
			ID:    n.ID,
			Kind:  string(n.Kind),
			X:     n.Position.X,
			Y:     n.Position.Y,
			Attrs: n.Attrs,
		})
	}
	for _, e := range edges {
		f.Edges = append(f.Edges, EdgeImport{Source: e.Source, Port: string(e.SourcePort), Target: e.Target})
	}
	return f
}
