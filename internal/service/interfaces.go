package service

import (
	"context"

	"github.com/alexanderramin/drip/internal/domain"
	"github.com/alexanderramin/drip/internal/editor"
	"github.com/alexanderramin/drip/internal/flow"
	"github.com/alexanderramin/drip/internal/importer"
)

type CampaignService interface {
	// Create stores a new campaign seeded with the protected trigger.
	Create(ctx context.Context, name string) (*domain.Campaign, error)
	// Resolve looks a campaign up by id, then by name.
	Resolve(ctx context.Context, ref string) (*domain.Campaign, error)
	List(ctx context.Context) ([]*domain.Campaign, error)
	Rename(ctx context.Context, ref, name string) (*domain.Campaign, error)
	Delete(ctx context.Context, ref string) error
	Export(ctx context.Context, ref string) (*importer.CampaignFile, error)
	Import(ctx context.Context, f *importer.CampaignFile) (*ImportResult, error)
	ImportFile(ctx context.Context, path string) (*ImportResult, error)
}

// EditorService applies editor gestures to a stored campaign. Each call
// loads the graph, runs one editor operation and persists the settled graph
// in a single transaction.
type EditorService interface {
	Graph(ctx context.Context, campaignID string) (*Graph, error)
	AddNode(ctx context.Context, campaignID string, kind domain.NodeKind, pos domain.Position) (*domain.Node, error)
	ConfigureNode(ctx context.Context, campaignID, nodeID string, attrs domain.NodeAttrs) (*domain.Node, error)
	MoveNode(ctx context.Context, campaignID, nodeID string, pos domain.Position) error
	// UpdateNode applies the set fields of u in one transaction.
	UpdateNode(ctx context.Context, campaignID, nodeID string, u NodeUpdate) (*domain.Node, error)
	Connect(ctx context.Context, campaignID, source string, port domain.Port, target string) (*domain.Edge, error)
	Delete(ctx context.Context, campaignID string, d editor.Delta) (*editor.Change, error)
	Layout(ctx context.Context, campaignID string) ([]domain.Node, error)
	Publish(ctx context.Context, campaignID string) (*PublishResult, error)
	Publications(ctx context.Context, campaignID string, limit int) ([]*domain.Publication, error)
	// DeliveredPlan reads back the plan the sink last received for a campaign.
	DeliveredPlan(ctx context.Context, campaignID string) ([]byte, error)
}

// PlanSink receives every successfully compiled plan. Fetch returns the
// last plan delivered for a campaign, or ErrPlanNotDelivered.
type PlanSink interface {
	Deliver(ctx context.Context, campaignID string, plan []byte) error
	Fetch(ctx context.Context, campaignID string) ([]byte, error)
	Channel() string
}

// NodeUpdate carries the optional parts of a node edit. Nil fields are left
// untouched.
type NodeUpdate struct {
	Attrs    *domain.NodeAttrs
	Position *domain.Position
}

func (u NodeUpdate) Empty() bool { return u.Attrs == nil && u.Position == nil }

// Graph is a recolored snapshot of a campaign.
type Graph struct {
	Campaign    *domain.Campaign
	Nodes       []domain.Node
	Edges       []domain.Edge
	Unreachable []string
}

type PublishResult struct {
	Publication *domain.Publication
	Plan        *flow.Plan
}

type ImportResult struct {
	Campaign  *domain.Campaign
	NodeCount int
	EdgeCount int
}
