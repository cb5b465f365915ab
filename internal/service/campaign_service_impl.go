package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/drip/internal/db"
	"github.com/alexanderramin/drip/internal/domain"
	"github.com/alexanderramin/drip/internal/importer"
	"github.com/alexanderramin/drip/internal/repository"
	"github.com/google/uuid"
)

type campaignService struct {
	campaigns repository.CampaignRepo
	uow       db.UnitOfWork
	observer  UseCaseObserver
}

func NewCampaignService(campaigns repository.CampaignRepo, uow db.UnitOfWork, observers ...UseCaseObserver) CampaignService {
	return &campaignService{
		campaigns: campaigns,
		uow:       uow,
		observer:  useCaseObserverOrNoop(observers),
	}
}

func (s *campaignService) Create(ctx context.Context, name string) (c *domain.Campaign, err error) {
	t := track(s.observer, "create-campaign", "")
	defer t.finish(ctx, &err)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	now := time.Now().UTC()
	c = &domain.Campaign{
		ID:        uuid.New().String(),
		Name:      name,
		NextSeq:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
	t.event.Campaign = c.ID

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txCampaigns := repository.NewSQLiteCampaignRepo(tx)
		if err := ensureNameFree(ctx, txCampaigns, name, ""); err != nil {
			return err
		}
		if err := txCampaigns.Create(ctx, c); err != nil {
			return err
		}
		return repository.NewSQLiteNodeRepo(tx).Upsert(ctx, domain.NewTriggerNode(c.ID, now))
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func ensureNameFree(ctx context.Context, campaigns repository.CampaignRepo, name, selfID string) error {
	existing, err := campaigns.GetByName(ctx, name)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return nil
	case err != nil:
		return err
	case existing.ID == selfID:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrCampaignExists, name)
	}
}

func (s *campaignService) Resolve(ctx context.Context, ref string) (*domain.Campaign, error) {
	c, err := s.campaigns.GetByID(ctx, ref)
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	c, err = s.campaigns.GetByName(ctx, ref)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("campaign %q: %w", ref, repository.ErrNotFound)
	}
	return c, err
}

func (s *campaignService) List(ctx context.Context) ([]*domain.Campaign, error) {
	return s.campaigns.List(ctx)
}

func (s *campaignService) Rename(ctx context.Context, ref, name string) (c *domain.Campaign, err error) {
	t := track(s.observer, "rename-campaign", "")
	defer t.finish(ctx, &err)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}
	c, err = s.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}
	t.event.Campaign = c.ID

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txCampaigns := repository.NewSQLiteCampaignRepo(tx)
		if err := ensureNameFree(ctx, txCampaigns, name, c.ID); err != nil {
			return err
		}
		c.Name = name
		c.UpdatedAt = time.Now().UTC()
		return txCampaigns.Update(ctx, c)
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func (s *campaignService) Delete(ctx context.Context, ref string) (err error) {
	t := track(s.observer, "delete-campaign", "")
	defer t.finish(ctx, &err)

	c, err := s.Resolve(ctx, ref)
	if err != nil {
		return err
	}
	t.event.Campaign = c.ID
	return s.campaigns.Delete(ctx, c.ID)
}

func (s *campaignService) Export(ctx context.Context, ref string) (*importer.CampaignFile, error) {
	c, err := s.Resolve(ctx, ref)
	if err != nil {
		return nil, err
	}

	var f *importer.CampaignFile
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		nodes, err := repository.NewSQLiteNodeRepo(tx).ListByCampaign(ctx, c.ID)
		if err != nil {
			return err
		}
		edges, err := repository.NewSQLiteEdgeRepo(tx).ListByCampaign(ctx, c.ID)
		if err != nil {
			return err
		}
		f = importer.FromGraph(c, nodes, edges)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (s *campaignService) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	f, err := importer.LoadCampaignFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading import file: %w", err)
	}
	return s.Import(ctx, f)
}

// Import validates the file, rebuilds the graph through an editor session
// and stores it as a new campaign in one transaction.
func (s *campaignService) Import(ctx context.Context, f *importer.CampaignFile) (res *ImportResult, err error) {
	t := track(s.observer, "import-campaign", "")
	defer t.finish(ctx, &err)

	if errs := importer.ValidateCampaignFile(f); len(errs) > 0 {
		return nil, formatValidationErrors(errs)
	}
	converted, err := importer.Convert(f)
	if err != nil {
		return nil, fmt.Errorf("converting campaign file: %w", err)
	}
	t.event.Campaign = converted.Campaign.ID

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		txCampaigns := repository.NewSQLiteCampaignRepo(tx)
		txNodes := repository.NewSQLiteNodeRepo(tx)
		txEdges := repository.NewSQLiteEdgeRepo(tx)

		if err := ensureNameFree(ctx, txCampaigns, converted.Campaign.Name, ""); err != nil {
			return err
		}
		if err := txCampaigns.Create(ctx, converted.Campaign); err != nil {
			return fmt.Errorf("creating campaign: %w", err)
		}
		for i := range converted.Nodes {
			if err := txNodes.Upsert(ctx, &converted.Nodes[i]); err != nil {
				return fmt.Errorf("creating node %q: %w", converted.Nodes[i].ID, err)
			}
		}
		for i := range converted.Edges {
			if err := txEdges.Upsert(ctx, &converted.Edges[i]); err != nil {
				return fmt.Errorf("creating edge %q: %w", converted.Edges[i].ID, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.set("node_count", len(converted.Nodes))
	t.set("edge_count", len(converted.Edges))
	return &ImportResult{
		Campaign:  converted.Campaign,
		NodeCount: len(converted.Nodes),
		EdgeCount: len(converted.Edges),
	}, nil
}

func formatValidationErrors(errs []error) error {
	var b strings.Builder
	for _, e := range errs {
		b.WriteString("\n  - ")
		b.WriteString(e.Error())
	}
	return fmt.Errorf("%w (%d errors):%s", ErrInvalidImport, len(errs), b.String())
}
