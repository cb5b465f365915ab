package flow

import "github.com/alexanderramin/drip/internal/domain"

// connectionRules is the single source of truth for which node kinds may be
// joined by an edge. Nothing may target the trigger, which keeps its
// in-degree at zero.
var connectionRules = map[domain.NodeKind][]domain.NodeKind{
	domain.NodeTrigger:   {domain.NodeDelay, domain.NodeEmail},
	domain.NodeDelay:     {domain.NodeEmail, domain.NodeCondition, domain.NodeDelay},
	domain.NodeEmail:     {domain.NodeDelay},
	domain.NodeCondition: {domain.NodeDelay, domain.NodeEmail},
}

// AllowedTargets returns the kinds a node of the given kind may connect to.
func AllowedTargets(source domain.NodeKind) []domain.NodeKind {
	allowed := connectionRules[source]
	out := make([]domain.NodeKind, len(allowed))
	copy(out, allowed)
	return out
}

// ValidateConnection decides whether an edge from a source kind to a target
// kind is legal. The answer depends on the two kinds only. A rejection is a
// *ConnectionError naming the violated rule.
func ValidateConnection(source, target domain.NodeKind) error {
	allowed := connectionRules[source]
	for _, k := range allowed {
		if k == target {
			return nil
		}
	}
	return &ConnectionError{Source: source, Target: target, Allowed: AllowedTargets(source)}
}
