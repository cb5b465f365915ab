package domain

import (
	"fmt"
	"time"
)

// TriggerNodeID is the fixed id of the root node every campaign is seeded with.
const TriggerNodeID = "start"

// TriggerLabel is the display label of the seeded trigger.
const TriggerLabel = "User is added"

// DefaultDelayHours applies to delay nodes that were never configured.
const DefaultDelayHours = 24

// MaxDelayAmount bounds the delay amount the palette offers.
const MaxDelayAmount = 60

type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Viewport is the pan/zoom transform of the canvas at the time of an event.
type Viewport struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Zoom float64 `json:"zoom"`
}

// ToLogical converts a canvas-relative screen point to logical coordinates.
func (v Viewport) ToLogical(screen Position) Position {
	zoom := v.Zoom
	if zoom == 0 {
		zoom = 1
	}
	return Position{
		X: (screen.X - v.X) / zoom,
		Y: (screen.Y - v.Y) / zoom,
	}
}

// NodeAttrs is the kind-specific payload of a node. Only the fields that
// belong to the node's kind are meaningful.
type NodeAttrs struct {
	Label string `json:"label,omitempty"`

	// delay
	Amount int       `json:"amount,omitempty"`
	Unit   DelayUnit `json:"unit,omitempty"`

	// email
	TemplateID string `json:"template_id,omitempty"`
	Subject    string `json:"subject,omitempty"`
	Content    string `json:"content,omitempty"`

	// condition
	Predicate Predicate `json:"predicate,omitempty"`
}

type Node struct {
	ID         string
	CampaignID string
	Kind       NodeKind
	Position   Position
	Attrs      NodeAttrs
	State      VisualState
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// DelayHours returns the whole hours a delay node waits. Unconfigured delays
// wait DefaultDelayHours; minutes round up so a non-zero wait never collapses
// to zero.
func (n *Node) DelayHours() int {
	if n.Attrs.Amount <= 0 {
		return DefaultDelayHours
	}
	switch n.Attrs.Unit {
	case UnitMinutes:
		return (n.Attrs.Amount + 59) / 60
	case UnitDays:
		return n.Attrs.Amount * 24
	default:
		return n.Attrs.Amount
	}
}

// PredicateOrDefault returns the condition predicate, defaulting to "opened".
func (n *Node) PredicateOrDefault() Predicate {
	if n.Attrs.Predicate == "" {
		return PredicateOpened
	}
	return n.Attrs.Predicate
}

// ValidateAttrs checks the payload against the node's kind.
func (n *Node) ValidateAttrs() error {
	a := n.Attrs
	switch n.Kind {
	case NodeDelay:
		if a.Amount < 0 || a.Amount > MaxDelayAmount {
			return fmt.Errorf("delay amount must be between 1 and %d", MaxDelayAmount)
		}
		if a.Unit != "" && !ValidDelayUnits[string(a.Unit)] {
			return fmt.Errorf("invalid delay unit %q (minutes|hours|days)", a.Unit)
		}
	case NodeEmail:
		if a.TemplateID != "" && !ValidTemplates[a.TemplateID] {
			return fmt.Errorf("invalid email template %q", a.TemplateID)
		}
	case NodeCondition:
		if a.Predicate != "" && !ValidPredicates[string(a.Predicate)] {
			return fmt.Errorf("invalid condition predicate %q (opened|clicked)", a.Predicate)
		}
	case NodeTrigger:
	default:
		return fmt.Errorf("invalid node kind %q", n.Kind)
	}
	return nil
}

// NewTriggerNode returns the protected root node seeded at the origin.
func NewTriggerNode(campaignID string, now time.Time) *Node {
	return &Node{
		ID:         TriggerNodeID,
		CampaignID: campaignID,
		Kind:       NodeTrigger,
		Position:   Position{X: 0, Y: 0},
		Attrs:      NodeAttrs{Label: TriggerLabel},
		State:      StateConnected,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
