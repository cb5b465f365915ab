package flow

import "github.com/alexanderramin/drip/internal/domain"

type Branch string

const (
	BranchNone  Branch = ""
	BranchTrue  Branch = "true"
	BranchFalse Branch = "false"
)

// Plan is the published execution plan consumed by a downstream engine.
type Plan struct {
	Emails []*PlanEntry `json:"emails"`
}

// PlanEntry is one email step of a plan. An entry continues either through
// NextID or through Condition, never both.
type PlanEntry struct {
	ID         string     `json:"id"`
	Subject    string     `json:"subject"`
	Content    string     `json:"content"`
	TemplateID string     `json:"template_id,omitempty"`
	DelayHours int        `json:"delay_hours"`
	ParentID   *string    `json:"parent_email_id"`
	Branch     Branch     `json:"branch,omitempty"`
	NextID     *string    `json:"next_email_id,omitempty"`
	Condition  *Condition `json:"condition,omitempty"`

	nodeID string
}

// NodeID returns the id of the email node the entry was compiled from.
func (e *PlanEntry) NodeID() string { return e.nodeID }

type Condition struct {
	Type        domain.Predicate `json:"type"`
	TrueBranch  BranchRef        `json:"true_branch"`
	FalseBranch BranchRef        `json:"false_branch"`
}

// BranchRef points at the first entry of a branch; a nil EmailID means the
// branch ends the flow.
type BranchRef struct {
	EmailID *string `json:"email_id"`
}

// Entry returns the entry with the given id, or nil.
func (p *Plan) Entry(id string) *PlanEntry {
	for _, e := range p.Emails {
		if e.ID == id {
			return e
		}
	}
	return nil
}
