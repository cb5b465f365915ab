package editor

import (
	"fmt"

	"github.com/alexanderramin/drip/internal/domain"
)

// Delta is one deletion gesture: the nodes and edges selected together.
type Delta struct {
	RemoveNodes []string `json:"remove_nodes"`
	RemoveEdges []string `json:"remove_edges"`
}

func (d Delta) Empty() bool {
	return len(d.RemoveNodes) == 0 && len(d.RemoveEdges) == 0
}

// Change reports what Apply removed. RemovedEdges includes the edges that
// were dropped because one of their endpoints went away.
type Change struct {
	RemovedNodes []string
	RemovedEdges []string
}

// Apply removes the delta's nodes and edges as one step and recolors once.
// The trigger is filtered out of the delta rather than rejected. Unknown
// ids fail the whole delta and leave the session untouched.
func (s *Session) Apply(d Delta) (Change, error) {
	dropNodes := make(map[string]bool, len(d.RemoveNodes))
	for _, id := range d.RemoveNodes {
		if id == domain.TriggerNodeID {
			continue
		}
		if s.indexOf(id) < 0 {
			return Change{}, fmt.Errorf("removing node %s: %w", id, ErrNodeNotFound)
		}
		dropNodes[id] = true
	}

	dropEdges := make(map[string]bool, len(d.RemoveEdges))
	for _, id := range d.RemoveEdges {
		if !s.hasEdge(id) {
			return Change{}, fmt.Errorf("removing edge %s: %w", id, ErrEdgeNotFound)
		}
		dropEdges[id] = true
	}

	var change Change
	nodes := s.nodes[:0:0]
	for _, n := range s.nodes {
		if dropNodes[n.ID] {
			change.RemovedNodes = append(change.RemovedNodes, n.ID)
			continue
		}
		nodes = append(nodes, n)
	}
	edges := s.edges[:0:0]
	for _, e := range s.edges {
		if dropEdges[e.ID] || dropNodes[e.Source] || dropNodes[e.Target] {
			change.RemovedEdges = append(change.RemovedEdges, e.ID)
			continue
		}
		edges = append(edges, e)
	}

	s.nodes, s.edges = nodes, edges
	s.recolor()
	return change, nil
}

func (s *Session) hasEdge(id string) bool {
	for _, e := range s.edges {
		if e.ID == id {
			return true
		}
	}
	return false
}
