package domain

type NodeKind string

const (
	NodeTrigger   NodeKind = "trigger"
	NodeDelay     NodeKind = "delay"
	NodeEmail     NodeKind = "email"
	NodeCondition NodeKind = "condition"
)

// NodeKinds is the closed set of kinds, in palette order.
var NodeKinds = []NodeKind{NodeTrigger, NodeDelay, NodeEmail, NodeCondition}

// Valid reports whether k is one of the known node kinds.
func (k NodeKind) Valid() bool {
	switch k {
	case NodeTrigger, NodeDelay, NodeEmail, NodeCondition:
		return true
	}
	return false
}

// Droppable reports whether users may place nodes of this kind. The trigger
// is seeded once per campaign and never dropped.
func (k NodeKind) Droppable() bool {
	return k.Valid() && k != NodeTrigger
}

// Port discriminates the outputs of multi-output nodes.
type Port string

const (
	PortNone Port = ""
	PortYes  Port = "yes"
	PortNo   Port = "no"
)

type DelayUnit string

const (
	UnitMinutes DelayUnit = "minutes"
	UnitHours   DelayUnit = "hours"
	UnitDays    DelayUnit = "days"
)

// ValidDelayUnits is the canonical set of accepted delay unit strings.
var ValidDelayUnits = map[string]bool{
	"minutes": true, "hours": true, "days": true,
}

type Predicate string

const (
	PredicateOpened  Predicate = "opened"
	PredicateClicked Predicate = "clicked"
)

// ValidPredicates is the canonical set of accepted condition predicates.
var ValidPredicates = map[string]bool{
	"opened": true, "clicked": true,
}

// ValidTemplates lists the email templates the palette offers.
var ValidTemplates = map[string]bool{
	"email1": true, "email2": true, "email3": true,
}

// VisualState is the presentation state assigned by the colorizer.
type VisualState string

const (
	StateUnknown      VisualState = ""
	StateConnected    VisualState = "connected"
	StateDisconnected VisualState = "disconnected"
)
