package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexanderramin/drip/internal/db"
	"github.com/alexanderramin/drip/internal/domain"
	"github.com/alexanderramin/drip/internal/editor"
	"github.com/alexanderramin/drip/internal/flow"
	"github.com/alexanderramin/drip/internal/layout"
	"github.com/alexanderramin/drip/internal/repository"
	"github.com/google/uuid"
)

// EditorConfig carries the collaborators of the editor service. Zero values
// fall back to the dot layout, a default compiler and no sink.
type EditorConfig struct {
	// NewLayouter builds a fresh layouter for each layout request.
	NewLayouter func() layout.Layouter
	Compiler    *flow.Compiler
	Sink        PlanSink
	Now         func() time.Time
}

type editorService struct {
	uow         db.UnitOfWork
	newLayouter func() layout.Layouter
	compiler    *flow.Compiler
	sink        PlanSink
	now         func() time.Time
	observer    UseCaseObserver
}

func NewEditorService(uow db.UnitOfWork, cfg EditorConfig, observers ...UseCaseObserver) EditorService {
	s := &editorService{
		uow:         uow,
		newLayouter: cfg.NewLayouter,
		compiler:    cfg.Compiler,
		sink:        cfg.Sink,
		now:         cfg.Now,
		observer:    useCaseObserverOrNoop(observers),
	}
	if s.newLayouter == nil {
		s.newLayouter = func() layout.Layouter { return layout.New(layout.DefaultEngine) }
	}
	if s.compiler == nil {
		s.compiler = flow.NewCompiler()
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

// txRepos groups the repositories bound to one transaction.
type txRepos struct {
	campaigns    *repository.SQLiteCampaignRepo
	nodes        *repository.SQLiteNodeRepo
	edges        *repository.SQLiteEdgeRepo
	publications *repository.SQLitePublicationRepo
}

func reposFor(tx db.DBTX) txRepos {
	return txRepos{
		campaigns:    repository.NewSQLiteCampaignRepo(tx),
		nodes:        repository.NewSQLiteNodeRepo(tx),
		edges:        repository.NewSQLiteEdgeRepo(tx),
		publications: repository.NewSQLitePublicationRepo(tx),
	}
}

func (s *editorService) open(ctx context.Context, r txRepos, campaignID string) (*domain.Campaign, *editor.Session, error) {
	c, err := r.campaigns.GetByID(ctx, campaignID)
	if err != nil {
		return nil, nil, err
	}
	nodes, err := r.nodes.ListByCampaign(ctx, c.ID)
	if err != nil {
		return nil, nil, err
	}
	edges, err := r.edges.ListByCampaign(ctx, c.ID)
	if err != nil {
		return nil, nil, err
	}
	return c, editor.NewSession(c, nodes, edges, editor.WithClock(s.now)), nil
}

// edit runs fn against a session over the stored graph and writes the
// outcome back in the same transaction.
func (s *editorService) edit(ctx context.Context, campaignID string, fn func(sess *editor.Session) (editor.Change, error)) error {
	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := reposFor(tx)
		c, sess, err := s.open(ctx, r, campaignID)
		if err != nil {
			return err
		}
		change, err := fn(sess)
		if err != nil {
			return err
		}
		return s.persist(ctx, r, c, sess, change)
	})
}

func (s *editorService) persist(ctx context.Context, r txRepos, c *domain.Campaign, sess *editor.Session, change editor.Change) error {
	for _, id := range change.RemovedEdges {
		if err := r.edges.Delete(ctx, c.ID, id); err != nil {
			return err
		}
	}
	for _, id := range change.RemovedNodes {
		if err := r.nodes.Delete(ctx, c.ID, id); err != nil {
			return err
		}
	}
	for _, n := range sess.Nodes() {
		if err := r.nodes.Upsert(ctx, &n); err != nil {
			return err
		}
	}
	for _, e := range sess.Edges() {
		if err := r.edges.Upsert(ctx, &e); err != nil {
			return err
		}
	}
	c.NextSeq = sess.NextSeq()
	c.UpdatedAt = s.now()
	return r.campaigns.Update(ctx, c)
}

func (s *editorService) Graph(ctx context.Context, campaignID string) (g *Graph, err error) {
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		c, sess, err := s.open(ctx, reposFor(tx), campaignID)
		if err != nil {
			return err
		}
		g = &Graph{Campaign: c, Nodes: sess.Nodes(), Edges: sess.Edges(), Unreachable: sess.Unreachable()}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return g, nil
}

func (s *editorService) AddNode(ctx context.Context, campaignID string, kind domain.NodeKind, pos domain.Position) (node *domain.Node, err error) {
	t := track(s.observer, "add-node", campaignID)
	t.set("kind", string(kind))
	defer t.finish(ctx, &err)

	err = s.edit(ctx, campaignID, func(sess *editor.Session) (editor.Change, error) {
		n, err := sess.Drop(kind, pos)
		if err != nil {
			return editor.Change{}, err
		}
		node = &n
		return editor.Change{}, nil
	})
	if err != nil {
		return nil, err
	}
	t.set("node_id", node.ID)
	return node, nil
}

func (s *editorService) ConfigureNode(ctx context.Context, campaignID, nodeID string, attrs domain.NodeAttrs) (node *domain.Node, err error) {
	t := track(s.observer, "configure-node", campaignID)
	t.set("node_id", nodeID)
	defer t.finish(ctx, &err)

	err = s.edit(ctx, campaignID, func(sess *editor.Session) (editor.Change, error) {
		n, err := sess.Configure(nodeID, attrs)
		if err != nil {
			return editor.Change{}, err
		}
		node = &n
		return editor.Change{}, nil
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

func (s *editorService) MoveNode(ctx context.Context, campaignID, nodeID string, pos domain.Position) (err error) {
	t := track(s.observer, "move-node", campaignID)
	t.set("node_id", nodeID)
	defer t.finish(ctx, &err)

	return s.edit(ctx, campaignID, func(sess *editor.Session) (editor.Change, error) {
		return editor.Change{}, sess.Move(nodeID, pos)
	})
}

func (s *editorService) UpdateNode(ctx context.Context, campaignID, nodeID string, u NodeUpdate) (node *domain.Node, err error) {
	t := track(s.observer, "update-node", campaignID)
	t.set("node_id", nodeID)
	defer t.finish(ctx, &err)

	if u.Empty() {
		return nil, ErrEmptyUpdate
	}
	err = s.edit(ctx, campaignID, func(sess *editor.Session) (editor.Change, error) {
		if u.Attrs != nil {
			if _, err := sess.Configure(nodeID, *u.Attrs); err != nil {
				return editor.Change{}, err
			}
		}
		if u.Position != nil {
			if err := sess.Move(nodeID, *u.Position); err != nil {
				return editor.Change{}, err
			}
		}
		n, _ := sess.Node(nodeID)
		node = &n
		return editor.Change{}, nil
	})
	if err != nil {
		return nil, err
	}
	return node, nil
}

func (s *editorService) Connect(ctx context.Context, campaignID, source string, port domain.Port, target string) (edge *domain.Edge, err error) {
	t := track(s.observer, "connect", campaignID)
	t.set("source", source)
	t.set("target", target)
	defer t.finish(ctx, &err)

	err = s.edit(ctx, campaignID, func(sess *editor.Session) (editor.Change, error) {
		e, err := sess.Connect(source, port, target)
		if err != nil {
			return editor.Change{}, err
		}
		edge = &e
		return editor.Change{}, nil
	})
	if err != nil {
		return nil, err
	}
	return edge, nil
}

func (s *editorService) Delete(ctx context.Context, campaignID string, d editor.Delta) (change *editor.Change, err error) {
	t := track(s.observer, "delete", campaignID)
	defer t.finish(ctx, &err)

	err = s.edit(ctx, campaignID, func(sess *editor.Session) (editor.Change, error) {
		ch, err := sess.Apply(d)
		if err != nil {
			return editor.Change{}, err
		}
		change = &ch
		return ch, nil
	})
	if err != nil {
		return nil, err
	}
	t.set("removed_nodes", len(change.RemovedNodes))
	t.set("removed_edges", len(change.RemovedEdges))
	return change, nil
}

func (s *editorService) Layout(ctx context.Context, campaignID string) (moved []domain.Node, err error) {
	t := track(s.observer, "layout", campaignID)
	defer t.finish(ctx, &err)

	err = s.edit(ctx, campaignID, func(sess *editor.Session) (editor.Change, error) {
		moved, err = sess.Layout(ctx, s.newLayouter())
		return editor.Change{}, err
	})
	if err != nil {
		return nil, err
	}
	t.set("moved", len(moved))
	return moved, nil
}

// Publish compiles the campaign, records the publication and then hands the
// plan to the sink when one is configured. Delivery runs last inside the
// transaction: a failed insert never reaches the sink, and a sink failure
// rolls the publication back.
func (s *editorService) Publish(ctx context.Context, campaignID string) (res *PublishResult, err error) {
	t := track(s.observer, "publish", campaignID)
	defer t.finish(ctx, &err)

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		r := reposFor(tx)
		c, sess, err := s.open(ctx, r, campaignID)
		if err != nil {
			return err
		}
		plan, err := sess.Publish(s.compiler)
		if err != nil {
			return err
		}
		data, err := json.Marshal(plan)
		if err != nil {
			return fmt.Errorf("encoding plan: %w", err)
		}

		pub := &domain.Publication{
			ID:         uuid.New().String(),
			CampaignID: c.ID,
			EmailCount: len(plan.Emails),
			PlanJSON:   data,
			CreatedAt:  s.now(),
		}
		if s.sink != nil {
			pub.Channel = s.sink.Channel()
		}
		if err := r.publications.Create(ctx, pub); err != nil {
			return err
		}
		if s.sink != nil {
			if err := s.sink.Deliver(ctx, c.ID, data); err != nil {
				return fmt.Errorf("delivering plan: %w", err)
			}
		}
		res = &PublishResult{Publication: pub, Plan: plan}
		return nil
	})
	if err != nil {
		return nil, err
	}
	t.set("email_count", res.Publication.EmailCount)
	return res, nil
}

func (s *editorService) Publications(ctx context.Context, campaignID string, limit int) (pubs []*domain.Publication, err error) {
	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		pubs, err = repository.NewSQLitePublicationRepo(tx).ListByCampaign(ctx, campaignID, limit)
		return err
	})
	return pubs, err
}

func (s *editorService) DeliveredPlan(ctx context.Context, campaignID string) ([]byte, error) {
	if s.sink == nil {
		return nil, ErrNoSink
	}
	return s.sink.Fetch(ctx, campaignID)
}
