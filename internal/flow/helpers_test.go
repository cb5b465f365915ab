package flow

import (
	"fmt"

	"github.com/alexanderramin/drip/internal/domain"
)

// graphBuilder assembles node/edge slices for tests.
type graphBuilder struct {
	nodes []domain.Node
	edges []domain.Edge
}

func newGraph() *graphBuilder {
	return &graphBuilder{nodes: []domain.Node{{ID: domain.TriggerNodeID, Kind: domain.NodeTrigger}}}
}

func (g *graphBuilder) node(id string, kind domain.NodeKind, attrs ...domain.NodeAttrs) *graphBuilder {
	n := domain.Node{ID: id, Kind: kind}
	if len(attrs) > 0 {
		n.Attrs = attrs[0]
	}
	g.nodes = append(g.nodes, n)
	return g
}

func (g *graphBuilder) delay(id string, amount int, unit domain.DelayUnit) *graphBuilder {
	return g.node(id, domain.NodeDelay, domain.NodeAttrs{Amount: amount, Unit: unit})
}

func (g *graphBuilder) email(id string) *graphBuilder {
	return g.node(id, domain.NodeEmail, domain.NodeAttrs{TemplateID: "email1"})
}

func (g *graphBuilder) condition(id string) *graphBuilder {
	return g.node(id, domain.NodeCondition, domain.NodeAttrs{Predicate: domain.PredicateOpened})
}

func (g *graphBuilder) edge(source, target string) *graphBuilder {
	return g.port(source, domain.PortNone, target)
}

func (g *graphBuilder) port(source string, port domain.Port, target string) *graphBuilder {
	g.edges = append(g.edges, domain.Edge{
		ID:         domain.EdgeID(source, port, target),
		Source:     source,
		Target:     target,
		SourcePort: port,
	})
	return g
}

// sequentialIDs returns a deterministic id generator: p1, p2, ...
func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s%d", prefix, n)
	}
}
