package importer

import (
	"fmt"

	"github.com/alexanderramin/drip/internal/domain"
	"github.com/alexanderramin/drip/internal/flow"
)

var validPorts = map[string]bool{"": true, "yes": true, "no": true}

// ValidateCampaignFile checks a campaign file before conversion and returns
// every problem found rather than stopping at the first.
func ValidateCampaignFile(f *CampaignFile) []error {
	var errs []error

	if f.Campaign.Name == "" {
		errs = append(errs, fmt.Errorf("campaign.name is required"))
	}

	kinds := make(map[string]domain.NodeKind, len(f.Nodes))
	errs = append(errs, validateNodes(f.Nodes, kinds)...)
	errs = append(errs, validateEdges(f.Edges, kinds)...)

	return errs
}

func validateNodes(nodes []NodeImport, kinds map[string]domain.NodeKind) []error {
	var errs []error
	triggers := 0

	for i, n := range nodes {
		prefix := fmt.Sprintf("nodes[%d]", i)
		kind := domain.NodeKind(n.Kind)

		if n.ID == "" {
			errs = append(errs, fmt.Errorf("%s.id is required", prefix))
		} else if !domain.ValidNodeID(n.ID) {
			errs = append(errs, fmt.Errorf("%s.id: invalid id %q (no whitespace or %q)", prefix, n.ID, domain.EdgeIDSeparator))
		} else if _, dup := kinds[n.ID]; dup {
			errs = append(errs, fmt.Errorf("%s.id: duplicate id %q", prefix, n.ID))
		} else {
			kinds[n.ID] = kind
		}

		if n.Kind == "" {
			errs = append(errs, fmt.Errorf("%s.kind is required", prefix))
			continue
		}
		if !kind.Valid() {
			errs = append(errs, fmt.Errorf("%s.kind: invalid value %q", prefix, n.Kind))
			continue
		}

		if kind == domain.NodeTrigger {
			triggers++
			if n.ID != domain.TriggerNodeID {
				errs = append(errs, fmt.Errorf("%s: the trigger must have id %q", prefix, domain.TriggerNodeID))
			}
		} else if n.ID == domain.TriggerNodeID {
			errs = append(errs, fmt.Errorf("%s: id %q is reserved for the trigger", prefix, domain.TriggerNodeID))
		}

		node := domain.Node{ID: n.ID, Kind: kind, Attrs: n.Attrs}
		if err := node.ValidateAttrs(); err != nil {
			errs = append(errs, fmt.Errorf("%s.attrs: %w", prefix, err))
		}
	}

	if triggers > 1 {
		errs = append(errs, fmt.Errorf("nodes: found %d triggers, at most one is allowed", triggers))
	}
	return errs
}

func validateEdges(edges []EdgeImport, kinds map[string]domain.NodeKind) []error {
	var errs []error

	for i, e := range edges {
		prefix := fmt.Sprintf("edges[%d]", i)

		src, okSrc := kinds[e.Source]
		if !okSrc {
			errs = append(errs, fmt.Errorf("%s.source: node %q not found", prefix, e.Source))
		}
		dst, okDst := kinds[e.Target]
		if !okDst {
			errs = append(errs, fmt.Errorf("%s.target: node %q not found", prefix, e.Target))
		}
		if !validPorts[e.Port] {
			errs = append(errs, fmt.Errorf("%s.port: invalid value %q (yes|no)", prefix, e.Port))
		} else if okSrc {
			if src == domain.NodeCondition && e.Port == "" {
				errs = append(errs, fmt.Errorf("%s.port: a condition edge needs port yes or no", prefix))
			} else if src != domain.NodeCondition && e.Port != "" {
				errs = append(errs, fmt.Errorf("%s.port: only condition edges carry a port", prefix))
			}
		}
		if okSrc && okDst && src.Valid() && dst.Valid() {
			if err := flow.ValidateConnection(src, dst); err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", prefix, err))
			}
		}
	}
	return errs
}
