package flow

import "github.com/alexanderramin/drip/internal/domain"

// ReachSet holds the node ids reachable from the trigger.
type ReachSet map[string]bool

// Has reports whether id is reachable. The trigger is always reachable.
func (r ReachSet) Has(id string) bool {
	return id == domain.TriggerNodeID || r[id]
}

// Reachable runs a single forward breadth-first walk from the trigger over
// the edges and returns every node it visits. Each node is expanded once,
// so cycles terminate and nodes that only loop among themselves stay out.
func Reachable(edges []domain.Edge) ReachSet {
	adj := make(map[string][]string, len(edges))
	for _, e := range edges {
		adj[e.Source] = append(adj[e.Source], e.Target)
	}

	seen := ReachSet{domain.TriggerNodeID: true}
	queue := []string{domain.TriggerNodeID}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, next := range adj[id] {
			if seen[next] {
				continue
			}
			seen[next] = true
			queue = append(queue, next)
		}
	}
	return seen
}

// IsReachableFromStart reports whether a directed path leads from the
// trigger to nodeID. Callers checking many nodes should build the set once
// with Reachable instead.
func IsReachableFromStart(nodeID string, edges []domain.Edge) bool {
	if nodeID == domain.TriggerNodeID {
		return true
	}
	return Reachable(edges).Has(nodeID)
}

// Unreachable returns the ids of nodes the trigger cannot reach, in input order.
func Unreachable(nodes []domain.Node, edges []domain.Edge) []string {
	reach := Reachable(edges)
	var out []string
	for _, n := range nodes {
		if !reach.Has(n.ID) {
			out = append(out, n.ID)
		}
	}
	return out
}
