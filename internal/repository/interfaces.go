package repository

import (
	"context"

	"github.com/alexanderramin/drip/internal/domain"
)

type CampaignRepo interface {
	Create(ctx context.Context, c *domain.Campaign) error
	GetByID(ctx context.Context, id string) (*domain.Campaign, error)
	GetByName(ctx context.Context, name string) (*domain.Campaign, error)
	List(ctx context.Context) ([]*domain.Campaign, error)
	Update(ctx context.Context, c *domain.Campaign) error
	Delete(ctx context.Context, id string) error
}

// NodeRepo stores the nodes of a campaign graph. List order is insertion
// order, which the compiler relies on for "first edge" semantics.
type NodeRepo interface {
	Upsert(ctx context.Context, n *domain.Node) error
	ListByCampaign(ctx context.Context, campaignID string) ([]domain.Node, error)
	Delete(ctx context.Context, campaignID, id string) error
}

type EdgeRepo interface {
	Upsert(ctx context.Context, e *domain.Edge) error
	ListByCampaign(ctx context.Context, campaignID string) ([]domain.Edge, error)
	Delete(ctx context.Context, campaignID, id string) error
}

type PublicationRepo interface {
	Create(ctx context.Context, p *domain.Publication) error
	ListByCampaign(ctx context.Context, campaignID string, limit int) ([]*domain.Publication, error)
	Latest(ctx context.Context, campaignID string) (*domain.Publication, error)
}
