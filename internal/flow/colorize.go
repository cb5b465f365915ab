package flow

import "github.com/alexanderramin/drip/internal/domain"

// Recolor assigns the connected/disconnected presentation state to every
// node and edge. It returns copies and changes nothing but State.
func Recolor(nodes []domain.Node, edges []domain.Edge) ([]domain.Node, []domain.Edge) {
	reach := Reachable(edges)

	outNodes := make([]domain.Node, len(nodes))
	for i, n := range nodes {
		n.State = stateOf(n.Kind == domain.NodeTrigger || reach.Has(n.ID))
		outNodes[i] = n
	}

	outEdges := make([]domain.Edge, len(edges))
	for i, e := range edges {
		e.State = stateOf(reach.Has(e.Source) || reach.Has(e.Target))
		outEdges[i] = e
	}
	return outNodes, outEdges
}

func stateOf(connected bool) domain.VisualState {
	if connected {
		return domain.StateConnected
	}
	return domain.StateDisconnected
}
