package editor

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/drip/internal/domain"
	"github.com/alexanderramin/drip/internal/flow"
	"github.com/alexanderramin/drip/internal/layout"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	c := &domain.Campaign{ID: "camp-1", Name: "Onboarding", NextSeq: 1}
	return NewSession(c, nil, nil, WithClock(func() time.Time { return fixedNow }))
}

func mustDrop(t *testing.T, s *Session, kind domain.NodeKind) domain.Node {
	t.Helper()
	n, err := s.Drop(kind, domain.Position{X: 10, Y: 10})
	require.NoError(t, err)
	return n
}

func mustConnect(t *testing.T, s *Session, source string, port domain.Port, target string) {
	t.Helper()
	_, err := s.Connect(source, port, target)
	require.NoError(t, err)
}

func stateOf(t *testing.T, s *Session, id string) domain.VisualState {
	t.Helper()
	n, ok := s.Node(id)
	require.True(t, ok, "node %s", id)
	return n.State
}

func TestNewSession_SeedsTrigger(t *testing.T) {
	s := newTestSession(t)

	nodes := s.Nodes()
	require.Len(t, nodes, 1)
	assert.Equal(t, domain.TriggerNodeID, nodes[0].ID)
	assert.Equal(t, domain.NodeTrigger, nodes[0].Kind)
	assert.Equal(t, domain.Position{}, nodes[0].Position)
	assert.Equal(t, domain.TriggerLabel, nodes[0].Attrs.Label)
	assert.Equal(t, domain.StateConnected, nodes[0].State)
}

func TestNewSession_KeepsExistingGraphAndRecolors(t *testing.T) {
	c := &domain.Campaign{ID: "camp-1", NextSeq: 5}
	nodes := []domain.Node{
		{ID: "start", Kind: domain.NodeTrigger},
		{ID: "email-1", Kind: domain.NodeEmail},
		{ID: "email-2", Kind: domain.NodeEmail},
	}
	edges := []domain.Edge{{ID: "start:email-1", Source: "start", Target: "email-1"}}

	s := NewSession(c, nodes, edges)
	assert.Len(t, s.Nodes(), 3)
	assert.Equal(t, 5, s.NextSeq())
	assert.Equal(t, domain.StateConnected, stateOf(t, s, "email-1"))
	assert.Equal(t, domain.StateDisconnected, stateOf(t, s, "email-2"))

	// The caller's slices are not aliased.
	assert.Equal(t, domain.StateUnknown, nodes[1].State)
}

func TestDrop_MintsSequentialIDs(t *testing.T) {
	s := newTestSession(t)

	d := mustDrop(t, s, domain.NodeDelay)
	e := mustDrop(t, s, domain.NodeEmail)
	c := mustDrop(t, s, domain.NodeCondition)

	assert.Equal(t, "delay-1", d.ID)
	assert.Equal(t, "email-2", e.ID)
	assert.Equal(t, "condition-3", c.ID)
	assert.Equal(t, 4, s.NextSeq())
	assert.Equal(t, domain.PredicateOpened, c.Attrs.Predicate)
	assert.Equal(t, "camp-1", e.CampaignID)
	assert.Equal(t, fixedNow, e.CreatedAt)
}

func TestDrop_NewNodeIsDisconnected(t *testing.T) {
	s := newTestSession(t)
	n := mustDrop(t, s, domain.NodeEmail)
	assert.Equal(t, domain.StateDisconnected, n.State)
}

func TestDrop_SkipsTakenIDs(t *testing.T) {
	c := &domain.Campaign{ID: "camp-1", NextSeq: 1}
	s := NewSession(c, []domain.Node{{ID: "email-1", Kind: domain.NodeEmail}}, nil)

	n, err := s.Drop(domain.NodeEmail, domain.Position{})
	require.NoError(t, err)
	assert.Equal(t, "email-2", n.ID)
}

func TestDrop_RejectsTriggerAndUnknownKinds(t *testing.T) {
	s := newTestSession(t)

	_, err := s.Drop(domain.NodeTrigger, domain.Position{})
	assert.ErrorIs(t, err, ErrNotDroppable)

	_, err = s.Drop(domain.NodeKind("webhook"), domain.Position{})
	assert.ErrorIs(t, err, ErrNotDroppable)
	assert.Len(t, s.Nodes(), 1)
}

func TestDropAt_ConvertsScreenPoint(t *testing.T) {
	s := newTestSession(t)
	n, err := s.DropAt(domain.NodeDelay, domain.Position{X: 300, Y: 200}, domain.Viewport{X: 100, Y: 50, Zoom: 2})
	require.NoError(t, err)
	assert.Equal(t, domain.Position{X: 100, Y: 75}, n.Position)
}

func TestConfigure(t *testing.T) {
	s := newTestSession(t)
	d := mustDrop(t, s, domain.NodeDelay)

	got, err := s.Configure(d.ID, domain.NodeAttrs{Amount: 3, Unit: domain.UnitDays})
	require.NoError(t, err)
	assert.Equal(t, 72, got.DelayHours())

	_, err = s.Configure(d.ID, domain.NodeAttrs{Amount: 61, Unit: domain.UnitDays})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidAttrs)
	assert.Contains(t, err.Error(), "delay amount must be between 1 and 60")

	// A failed configure leaves the old attrs in place.
	n, _ := s.Node(d.ID)
	assert.Equal(t, 3, n.Attrs.Amount)
}

func TestConfigure_Errors(t *testing.T) {
	s := newTestSession(t)

	_, err := s.Configure("missing", domain.NodeAttrs{})
	assert.ErrorIs(t, err, ErrNodeNotFound)

	_, err = s.Configure(domain.TriggerNodeID, domain.NodeAttrs{Label: "x"})
	assert.ErrorIs(t, err, ErrProtectedNode)
}

func TestMove(t *testing.T) {
	s := newTestSession(t)
	n := mustDrop(t, s, domain.NodeEmail)

	require.NoError(t, s.Move(n.ID, domain.Position{X: 5, Y: 6}))
	got, _ := s.Node(n.ID)
	assert.Equal(t, domain.Position{X: 5, Y: 6}, got.Position)
	assert.ErrorIs(t, s.Move("missing", domain.Position{}), ErrNodeNotFound)
}

func TestConnect_RecolorsDownstream(t *testing.T) {
	s := newTestSession(t)
	d := mustDrop(t, s, domain.NodeDelay)
	e := mustDrop(t, s, domain.NodeEmail)
	mustConnect(t, s, d.ID, domain.PortNone, e.ID)

	assert.Equal(t, domain.StateDisconnected, stateOf(t, s, e.ID))

	edge, err := s.Connect(domain.TriggerNodeID, domain.PortNone, d.ID)
	require.NoError(t, err)
	assert.Equal(t, "start:delay-1", edge.ID)
	assert.Equal(t, domain.StateConnected, edge.State)
	assert.Equal(t, domain.StateConnected, stateOf(t, s, d.ID))
	assert.Equal(t, domain.StateConnected, stateOf(t, s, e.ID))
}

func TestConnect_RuleViolation(t *testing.T) {
	s := newTestSession(t)
	e := mustDrop(t, s, domain.NodeEmail)
	c := mustDrop(t, s, domain.NodeCondition)

	_, err := s.Connect(e.ID, domain.PortNone, c.ID)
	require.ErrorIs(t, err, flow.ErrInvalidConnection)

	var connErr *flow.ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.Equal(t, domain.NodeEmail, connErr.Source)
	assert.Empty(t, s.Edges(), "no partial edge")
}

func TestConnect_HandleRules(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T, s *Session)
		source  string
		port    domain.Port
		target  string
		wantErr error
	}{
		{
			name:    "unknown source",
			source:  "ghost",
			target:  "email-2",
			wantErr: ErrNodeNotFound,
		},
		{
			name:    "unknown target",
			source:  "delay-1",
			target:  "ghost",
			wantErr: ErrNodeNotFound,
		},
		{
			name:    "self loop",
			source:  "delay-1",
			target:  "delay-1",
			wantErr: ErrSelfLoop,
		},
		{
			name:    "condition without port",
			source:  "condition-3",
			target:  "email-2",
			wantErr: ErrInvalidPort,
		},
		{
			name:    "port on a delay",
			source:  "delay-1",
			port:    domain.PortYes,
			target:  "email-2",
			wantErr: ErrInvalidPort,
		},
		{
			name: "duplicate edge",
			setup: func(t *testing.T, s *Session) {
				mustConnect(t, s, "delay-1", domain.PortNone, "email-2")
			},
			source:  "delay-1",
			target:  "email-2",
			wantErr: ErrDuplicateEdge,
		},
		{
			name: "source handle taken",
			setup: func(t *testing.T, s *Session) {
				mustConnect(t, s, "delay-1", domain.PortNone, "email-2")
			},
			source:  "delay-1",
			target:  "email-4",
			wantErr: ErrPortOccupied,
		},
		{
			name: "target already has an incoming edge",
			setup: func(t *testing.T, s *Session) {
				mustConnect(t, s, "delay-1", domain.PortNone, "email-2")
			},
			source:  "condition-3",
			port:    domain.PortNo,
			target:  "email-2",
			wantErr: ErrPortOccupied,
		},
		{
			name: "yes handle taken",
			setup: func(t *testing.T, s *Session) {
				mustConnect(t, s, "condition-3", domain.PortYes, "email-2")
			},
			source:  "condition-3",
			port:    domain.PortYes,
			target:  "email-4",
			wantErr: ErrPortOccupied,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestSession(t)
			mustDrop(t, s, domain.NodeDelay)     // delay-1
			mustDrop(t, s, domain.NodeEmail)     // email-2
			mustDrop(t, s, domain.NodeCondition) // condition-3
			mustDrop(t, s, domain.NodeEmail)     // email-4
			if tt.setup != nil {
				tt.setup(t, s)
			}
			before := len(s.Edges())

			_, err := s.Connect(tt.source, tt.port, tt.target)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Len(t, s.Edges(), before)
		})
	}
}

func TestConnect_ConditionUsesBothHandles(t *testing.T) {
	s := newTestSession(t)
	mustDrop(t, s, domain.NodeCondition) // condition-1
	mustDrop(t, s, domain.NodeEmail)     // email-2
	mustDrop(t, s, domain.NodeDelay)     // delay-3

	mustConnect(t, s, "condition-1", domain.PortYes, "email-2")
	mustConnect(t, s, "condition-1", domain.PortNo, "delay-3")

	ids := []string{}
	for _, e := range s.Edges() {
		ids = append(ids, e.ID)
	}
	assert.Equal(t, []string{"condition-1:yes:email-2", "condition-1:no:delay-3"}, ids)
}

type stubLayouter struct {
	positions map[string]domain.Position
	err       error
	boxes     []layout.Box
}

func (l *stubLayouter) Layout(_ context.Context, boxes []layout.Box, _ []layout.Link) (map[string]domain.Position, error) {
	l.boxes = boxes
	return l.positions, l.err
}

func TestLayout_AppliesPositions(t *testing.T) {
	s := newTestSession(t)
	e := mustDrop(t, s, domain.NodeEmail)

	l := &stubLayouter{positions: map[string]domain.Position{
		domain.TriggerNodeID: {X: 0, Y: 0},
		e.ID:                 {X: 45, Y: 80},
	}}
	moved, err := s.Layout(context.Background(), l)
	require.NoError(t, err)

	require.Len(t, moved, 1)
	assert.Equal(t, e.ID, moved[0].ID)
	got, _ := s.Node(e.ID)
	assert.Equal(t, domain.Position{X: 45, Y: 80}, got.Position)
	assert.Equal(t, []layout.Box{{ID: "start", Width: 90, Height: 30}, {ID: e.ID, Width: 180, Height: 60}}, l.boxes)
}

func TestLayout_Error(t *testing.T) {
	s := newTestSession(t)
	_, err := s.Layout(context.Background(), &stubLayouter{err: errors.New("dot crashed")})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dot crashed")
}

func TestLayout_WithGraphviz(t *testing.T) {
	s := newTestSession(t)
	e := mustDrop(t, s, domain.NodeEmail)
	mustConnect(t, s, domain.TriggerNodeID, domain.PortNone, e.ID)

	_, err := s.Layout(context.Background(), layout.New(layout.DefaultEngine))
	require.NoError(t, err)

	trigger, _ := s.Node(domain.TriggerNodeID)
	email, _ := s.Node(e.ID)
	assert.Less(t, trigger.Position.Y, email.Position.Y)
}

func TestPublish(t *testing.T) {
	s := newTestSession(t)
	e := mustDrop(t, s, domain.NodeEmail)

	_, err := s.Publish(flow.NewCompiler())
	assert.ErrorIs(t, err, flow.ErrDisconnectedGraph)
	assert.Equal(t, []string{e.ID}, s.Unreachable())

	mustConnect(t, s, domain.TriggerNodeID, domain.PortNone, e.ID)
	plan, err := s.Publish(flow.NewCompiler())
	require.NoError(t, err)
	require.Len(t, plan.Emails, 1)
	assert.Equal(t, e.ID, plan.Emails[0].NodeID())
	assert.Empty(t, s.Unreachable())
}
