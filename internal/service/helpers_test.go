package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/alexanderramin/drip/internal/db"
	"github.com/alexanderramin/drip/internal/domain"
	"github.com/alexanderramin/drip/internal/layout"
	"github.com/alexanderramin/drip/internal/repository"
	"github.com/alexanderramin/drip/internal/testutil"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.events = append(o.events, e)
}

func (o *recordingObserver) last() UseCaseEvent {
	return o.events[len(o.events)-1]
}

type recordingSink struct {
	channel    string
	err        error
	deliveries map[string][]byte
}

func newRecordingSink() *recordingSink {
	return &recordingSink{channel: "test:plans", deliveries: map[string][]byte{}}
}

func (s *recordingSink) Deliver(_ context.Context, campaignID string, plan []byte) error {
	if s.err != nil {
		return s.err
	}
	s.deliveries[campaignID] = plan
	return nil
}

func (s *recordingSink) Fetch(_ context.Context, campaignID string) ([]byte, error) {
	plan, ok := s.deliveries[campaignID]
	if !ok {
		return nil, ErrPlanNotDelivered
	}
	return plan, nil
}

func (s *recordingSink) Channel() string { return s.channel }

// fixedLayouter places every known box at a preset position.
type fixedLayouter map[string]domain.Position

func (f fixedLayouter) Layout(_ context.Context, boxes []layout.Box, _ []layout.Link) (map[string]domain.Position, error) {
	out := make(map[string]domain.Position, len(boxes))
	for _, b := range boxes {
		if p, ok := f[b.ID]; ok {
			out[b.ID] = p
		}
	}
	return out, nil
}

type failingLayouter struct{}

func (failingLayouter) Layout(context.Context, []layout.Box, []layout.Link) (map[string]domain.Position, error) {
	return nil, errors.New("layout engine crashed")
}

type testEnv struct {
	db        *sql.DB
	uow       db.UnitOfWork
	campaigns CampaignService
	editor    EditorService
	sink      *recordingSink
	observer  *recordingObserver
}

func newTestEnv(t *testing.T, cfg EditorConfig) *testEnv {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	obs := &recordingObserver{}
	env := &testEnv{
		db:       database,
		uow:      uow,
		observer: obs,
		sink:     newRecordingSink(),
	}
	if cfg.Sink == nil {
		cfg.Sink = env.sink
	}
	env.campaigns = NewCampaignService(repository.NewSQLiteCampaignRepo(database), uow, obs)
	env.editor = NewEditorService(uow, cfg, obs)
	return env
}

func (e *testEnv) createCampaign(t *testing.T, name string) *domain.Campaign {
	t.Helper()
	c, err := e.campaigns.Create(context.Background(), name)
	require.NoError(t, err)
	return c
}

// buildChain stores start -> delay-1 -> email-2 and returns the campaign.
func (e *testEnv) buildChain(t *testing.T) *domain.Campaign {
	t.Helper()
	ctx := context.Background()
	c := e.createCampaign(t, "Welcome series")

	d, err := e.editor.AddNode(ctx, c.ID, domain.NodeDelay, domain.Position{X: 0, Y: 100})
	require.NoError(t, err)
	em, err := e.editor.AddNode(ctx, c.ID, domain.NodeEmail, domain.Position{X: 0, Y: 200})
	require.NoError(t, err)
	_, err = e.editor.ConfigureNode(ctx, c.ID, em.ID, domain.NodeAttrs{TemplateID: "email1", Subject: "Welcome"})
	require.NoError(t, err)

	_, err = e.editor.Connect(ctx, c.ID, domain.TriggerNodeID, domain.PortNone, d.ID)
	require.NoError(t, err)
	_, err = e.editor.Connect(ctx, c.ID, d.ID, domain.PortNone, em.ID)
	require.NoError(t, err)
	return c
}

func nodeByID(nodes []domain.Node, id string) (domain.Node, bool) {
	for _, n := range nodes {
		if n.ID == id {
			return n, true
		}
	}
	return domain.Node{}, false
}
