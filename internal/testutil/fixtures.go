package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/alexanderramin/drip/internal/domain"
	"github.com/google/uuid"
)

var testNameCounter atomic.Int64

// Campaign options
type CampaignOption func(*domain.Campaign)

func WithNextSeq(n int) CampaignOption {
	return func(c *domain.Campaign) {
		c.NextSeq = n
	}
}

// NewTestCampaign returns an unsaved campaign. Names get a numeric suffix so
// tests can create several without tripping the unique constraint.
func NewTestCampaign(name string, opts ...CampaignOption) *domain.Campaign {
	now := time.Now().UTC()
	c := &domain.Campaign{
		ID:        uuid.New().String(),
		Name:      fmt.Sprintf("%s %02d", name, testNameCounter.Add(1)),
		NextSeq:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Node options
type NodeOption func(*domain.Node)

func WithPosition(x, y float64) NodeOption {
	return func(n *domain.Node) {
		n.Position = domain.Position{X: x, Y: y}
	}
}

func WithDelay(amount int, unit domain.DelayUnit) NodeOption {
	return func(n *domain.Node) {
		n.Attrs.Amount = amount
		n.Attrs.Unit = unit
	}
}

func WithTemplate(templateID string) NodeOption {
	return func(n *domain.Node) {
		n.Attrs.TemplateID = templateID
	}
}

func WithSubject(subject, content string) NodeOption {
	return func(n *domain.Node) {
		n.Attrs.Subject = subject
		n.Attrs.Content = content
	}
}

func WithPredicate(p domain.Predicate) NodeOption {
	return func(n *domain.Node) {
		n.Attrs.Predicate = p
	}
}

func NewTestNode(campaignID, id string, kind domain.NodeKind, opts ...NodeOption) *domain.Node {
	now := time.Now().UTC()
	n := &domain.Node{
		ID:         id,
		CampaignID: campaignID,
		Kind:       kind,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func NewTestEdge(campaignID, source string, port domain.Port, target string) *domain.Edge {
	return &domain.Edge{
		ID:         domain.EdgeID(source, port, target),
		CampaignID: campaignID,
		Source:     source,
		Target:     target,
		SourcePort: port,
		CreatedAt:  time.Now().UTC(),
	}
}

func NewTestPublication(campaignID string, plan string, createdAt time.Time) *domain.Publication {
	return &domain.Publication{
		ID:         uuid.New().String(),
		CampaignID: campaignID,
		EmailCount: 1,
		PlanJSON:   []byte(plan),
		CreatedAt:  createdAt,
	}
}
