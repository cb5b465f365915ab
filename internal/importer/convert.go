package importer

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/drip/internal/domain"
	"github.com/alexanderramin/drip/internal/editor"
	"github.com/google/uuid"
)

// Converted is a campaign graph ready for persistence.
type Converted struct {
	Campaign *domain.Campaign
	Nodes    []domain.Node
	Edges    []domain.Edge
}

// Convert turns a validated file into a new campaign. Edges are replayed
// through an editor session, so handle limits apply exactly as they do for
// interactive connects. Call ValidateCampaignFile first.
func Convert(f *CampaignFile) (*Converted, error) {
	now := time.Now().UTC()
	c := &domain.Campaign{
		ID:        uuid.New().String(),
		Name:      f.Campaign.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	nodes := make([]domain.Node, 0, len(f.Nodes))
	for _, n := range f.Nodes {
		nodes = append(nodes, domain.Node{
			ID:         n.ID,
			CampaignID: c.ID,
			Kind:       domain.NodeKind(n.Kind),
			Position:   domain.Position{X: n.X, Y: n.Y},
			Attrs:      n.Attrs,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}
	c.NextSeq = nextSeqAfter(nodes)

	sess := editor.NewSession(c, nodes, nil, editor.WithClock(func() time.Time { return now }))
	for i, e := range f.Edges {
		if _, err := sess.Connect(e.Source, domain.Port(e.Port), e.Target); err != nil {
			return nil, fmt.Errorf("edges[%d]: %w", i, err)
		}
	}

	return &Converted{Campaign: c, Nodes: sess.Nodes(), Edges: sess.Edges()}, nil
}

// nextSeqAfter returns one past the largest numeric id suffix in use.
func nextSeqAfter(nodes []domain.Node) int {
	next := 1
	for _, n := range nodes {
		i := strings.LastIndexByte(n.ID, '-')
		if i < 0 {
			continue
		}
		if seq, err := strconv.Atoi(n.ID[i+1:]); err == nil && seq >= next {
			next = seq + 1
		}
	}
	return next
}
