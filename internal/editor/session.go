// Package editor holds the in-memory editing session of one campaign graph.
// Every structural change goes through the connection rules and ends with
// a recolor, so node and edge states always match the current graph.
package editor

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/drip/internal/domain"
	"github.com/alexanderramin/drip/internal/flow"
	"github.com/alexanderramin/drip/internal/layout"
)

// Session is a single-writer editing session. It is not safe for
// concurrent use.
type Session struct {
	campaignID string
	nodes      []domain.Node
	edges      []domain.Edge
	nextSeq    int
	now        func() time.Time
}

type SessionOption func(*Session)

// WithClock overrides the timestamp source for created and updated rows.
func WithClock(now func() time.Time) SessionOption {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// NewSession opens a session over a copy of the campaign's graph. A graph
// without a trigger gets one seeded at the origin.
func NewSession(c *domain.Campaign, nodes []domain.Node, edges []domain.Edge, opts ...SessionOption) *Session {
	s := &Session{
		campaignID: c.ID,
		nodes:      append([]domain.Node(nil), nodes...),
		edges:      append([]domain.Edge(nil), edges...),
		nextSeq:    c.NextSeq,
		now:        func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.nextSeq < 1 {
		s.nextSeq = 1
	}
	if s.indexOf(domain.TriggerNodeID) < 0 {
		trigger := domain.NewTriggerNode(c.ID, s.now())
		s.nodes = append([]domain.Node{*trigger}, s.nodes...)
	}
	s.recolor()
	return s
}

func (s *Session) CampaignID() string { return s.campaignID }

// NextSeq is the suffix the next dropped node will get.
func (s *Session) NextSeq() int { return s.nextSeq }

func (s *Session) Nodes() []domain.Node {
	return append([]domain.Node(nil), s.nodes...)
}

func (s *Session) Edges() []domain.Edge {
	return append([]domain.Edge(nil), s.edges...)
}

func (s *Session) Node(id string) (domain.Node, bool) {
	if i := s.indexOf(id); i >= 0 {
		return s.nodes[i], true
	}
	return domain.Node{}, false
}

// Unreachable lists nodes with no path from the trigger.
func (s *Session) Unreachable() []string {
	return flow.Unreachable(s.nodes, s.edges)
}

// Drop adds a node of kind at a logical canvas position. Its id is minted
// from the campaign sequence as "<kind>-<n>".
func (s *Session) Drop(kind domain.NodeKind, pos domain.Position) (domain.Node, error) {
	if !kind.Droppable() {
		return domain.Node{}, fmt.Errorf("%w: %q", ErrNotDroppable, kind)
	}

	id := s.mintID(kind)
	now := s.now()
	n := domain.Node{
		ID:         id,
		CampaignID: s.campaignID,
		Kind:       kind,
		Position:   pos,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if kind == domain.NodeCondition {
		n.Attrs.Predicate = domain.PredicateOpened
	}
	s.nodes = append(s.nodes, n)
	s.recolor()

	created, _ := s.Node(id)
	return created, nil
}

// DropAt converts a screen point under the given viewport before dropping.
func (s *Session) DropAt(kind domain.NodeKind, screen domain.Position, vp domain.Viewport) (domain.Node, error) {
	return s.Drop(kind, vp.ToLogical(screen))
}

func (s *Session) mintID(kind domain.NodeKind) string {
	for {
		id := fmt.Sprintf("%s-%d", kind, s.nextSeq)
		s.nextSeq++
		if s.indexOf(id) < 0 {
			return id
		}
	}
}

// Configure replaces a node's kind-specific attributes.
func (s *Session) Configure(id string, attrs domain.NodeAttrs) (domain.Node, error) {
	i := s.indexOf(id)
	if i < 0 {
		return domain.Node{}, fmt.Errorf("configuring %s: %w", id, ErrNodeNotFound)
	}
	if s.nodes[i].Kind == domain.NodeTrigger {
		return domain.Node{}, fmt.Errorf("configuring %s: %w", id, ErrProtectedNode)
	}

	candidate := s.nodes[i]
	candidate.Attrs = attrs
	if err := candidate.ValidateAttrs(); err != nil {
		return domain.Node{}, fmt.Errorf("configuring %s: %w: %w", id, ErrInvalidAttrs, err)
	}
	candidate.UpdatedAt = s.now()
	s.nodes[i] = candidate
	return candidate, nil
}

// Move repositions a node. Moving never changes connectivity.
func (s *Session) Move(id string, pos domain.Position) error {
	i := s.indexOf(id)
	if i < 0 {
		return fmt.Errorf("moving %s: %w", id, ErrNodeNotFound)
	}
	s.nodes[i].Position = pos
	s.nodes[i].UpdatedAt = s.now()
	return nil
}

// Connect adds the edge source[port] -> target. The kind pair must be in the
// connection table, condition sources must use the yes or no handle, and
// every handle holds at most one connection: one edge per source port and
// one incoming edge per target.
func (s *Session) Connect(source string, port domain.Port, target string) (domain.Edge, error) {
	src, ok := s.Node(source)
	if !ok {
		return domain.Edge{}, fmt.Errorf("connecting from %s: %w", source, ErrNodeNotFound)
	}
	dst, ok := s.Node(target)
	if !ok {
		return domain.Edge{}, fmt.Errorf("connecting to %s: %w", target, ErrNodeNotFound)
	}
	if source == target {
		return domain.Edge{}, ErrSelfLoop
	}
	if err := checkPort(src.Kind, port); err != nil {
		return domain.Edge{}, err
	}
	if err := flow.ValidateConnection(src.Kind, dst.Kind); err != nil {
		return domain.Edge{}, err
	}

	id := domain.EdgeID(source, port, target)
	for _, e := range s.edges {
		if e.Source == source && e.SourcePort == port && e.Target == target {
			return domain.Edge{}, fmt.Errorf("%w: %s", ErrDuplicateEdge, id)
		}
	}
	for _, e := range s.edges {
		switch {
		case e.Source == source && e.SourcePort == port:
			return domain.Edge{}, fmt.Errorf("%w: %s", ErrPortOccupied, handleName(source, port))
		case e.Target == target:
			return domain.Edge{}, fmt.Errorf("%w: %s already has an incoming connection", ErrPortOccupied, target)
		}
	}

	s.edges = append(s.edges, domain.Edge{
		ID:         id,
		CampaignID: s.campaignID,
		Source:     source,
		Target:     target,
		SourcePort: port,
		CreatedAt:  s.now(),
	})
	s.recolor()
	return s.edges[len(s.edges)-1], nil
}

func checkPort(kind domain.NodeKind, port domain.Port) error {
	if kind == domain.NodeCondition {
		if port != domain.PortYes && port != domain.PortNo {
			return fmt.Errorf("%w: a condition connects from its yes or no handle", ErrInvalidPort)
		}
		return nil
	}
	if port != domain.PortNone {
		return fmt.Errorf("%w: only condition nodes have %q handles", ErrInvalidPort, port)
	}
	return nil
}

func handleName(source string, port domain.Port) string {
	if port == domain.PortNone {
		return source
	}
	return source + "." + string(port)
}

// Layout recolors the graph, then moves every node to the position the
// layouter computes. It returns the nodes whose position changed.
func (s *Session) Layout(ctx context.Context, l layout.Layouter) ([]domain.Node, error) {
	s.recolor()
	positions, err := l.Layout(ctx, layout.BoxesFor(s.nodes), layout.LinksFor(s.edges))
	if err != nil {
		return nil, fmt.Errorf("laying out campaign %s: %w", s.campaignID, err)
	}

	now := s.now()
	var moved []domain.Node
	for i := range s.nodes {
		pos, ok := positions[s.nodes[i].ID]
		if !ok || pos == s.nodes[i].Position {
			continue
		}
		s.nodes[i].Position = pos
		s.nodes[i].UpdatedAt = now
		moved = append(moved, s.nodes[i])
	}
	return moved, nil
}

// Publish compiles the current graph.
func (s *Session) Publish(c *flow.Compiler) (*flow.Plan, error) {
	return c.Compile(s.Nodes(), s.Edges())
}

func (s *Session) recolor() {
	s.nodes, s.edges = flow.Recolor(s.nodes, s.edges)
}

func (s *Session) indexOf(id string) int {
	for i := range s.nodes {
		if s.nodes[i].ID == id {
			return i
		}
	}
	return -1
}
