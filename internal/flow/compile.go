package flow

import (
	"fmt"
	"log/slog"

	"github.com/alexanderramin/drip/internal/domain"
	"github.com/google/uuid"
)

// Compiler turns a campaign graph into a Plan. Entry ids are minted per
// compile, so compiling the same graph twice yields plans that match up to
// id relabeling.
type Compiler struct {
	newID  func() string
	logger *slog.Logger
}

type CompilerOption func(*Compiler)

// WithIDGenerator overrides the entry id source (uuid by default).
func WithIDGenerator(fn func() string) CompilerOption {
	return func(c *Compiler) {
		if fn != nil {
			c.newID = fn
		}
	}
}

// WithLogger sets the logger that receives compile warnings.
func WithLogger(l *slog.Logger) CompilerOption {
	return func(c *Compiler) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{
		newID:  func() string { return uuid.New().String() },
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Compile checks the publish preconditions and walks the graph from the
// trigger's outgoing edge, emitting one entry per email in pre-order.
func (c *Compiler) Compile(nodes []domain.Node, edges []domain.Edge) (*Plan, error) {
	if ids := Unreachable(nodes, edges); len(ids) > 0 {
		return nil, &DisconnectedError{NodeIDs: ids}
	}

	index := make(map[string]*domain.Node, len(nodes))
	hasEmail := false
	for i := range nodes {
		index[nodes[i].ID] = &nodes[i]
		if nodes[i].Kind == domain.NodeEmail {
			hasEmail = true
		}
	}
	if !hasEmail {
		return nil, ErrMissingEmail
	}

	run := &compileRun{
		compiler: c,
		nodes:    index,
		edges:    edges,
		onPath:   map[string]bool{domain.TriggerNodeID: true},
	}
	plan := &Plan{Emails: []*PlanEntry{}}

	first := run.next(domain.TriggerNodeID)
	if first == nil {
		c.logger.Warn("no node connected to the start node")
		return plan, nil
	}
	if _, err := run.follow(first, nil, 0, BranchNone); err != nil {
		return nil, err
	}
	plan.Emails = run.entries
	return plan, nil
}

// compileRun is the mutable state of a single Compile call.
type compileRun struct {
	compiler *Compiler
	nodes    map[string]*domain.Node
	edges    []domain.Edge
	entries  []*PlanEntry
	onPath   map[string]bool // nodes on the chain being followed
}

// next returns the target of the first edge leaving id.
func (r *compileRun) next(id string) *domain.Node {
	for _, e := range r.edges {
		if e.Source == id {
			return r.nodes[e.Target]
		}
	}
	return nil
}

// branch returns the target of the first edge leaving id on port.
func (r *compileRun) branch(id string, port domain.Port) *domain.Node {
	for _, e := range r.edges {
		if e.Source == id && e.SourcePort == port {
			return r.nodes[e.Target]
		}
	}
	return nil
}

// follow compiles the chain starting at node. parent is the entry whose
// chain led here and delay the hours accumulated since it. It returns the id
// of the first entry the chain produced, or nil.
func (r *compileRun) follow(node *domain.Node, parent *PlanEntry, delay int, branch Branch) (*string, error) {
	if node == nil {
		return nil, nil
	}
	if r.onPath[node.ID] {
		return nil, fmt.Errorf("%w (at %s)", ErrCyclicFlow, node.ID)
	}
	r.onPath[node.ID] = true
	defer delete(r.onPath, node.ID)

	switch node.Kind {
	case domain.NodeDelay:
		return r.follow(r.next(node.ID), parent, delay+node.DelayHours(), branch)
	case domain.NodeEmail:
		return r.emit(node, parent, delay, branch)
	case domain.NodeCondition:
		return nil, r.attachCondition(node, parent, delay)
	case domain.NodeTrigger:
		return nil, fmt.Errorf("%w (at %s)", ErrCyclicFlow, node.ID)
	default:
		r.compiler.logger.Warn("unexpected node type", "node_id", node.ID, "kind", string(node.Kind))
		return nil, nil
	}
}

func (r *compileRun) emit(node *domain.Node, parent *PlanEntry, delay int, branch Branch) (*string, error) {
	entry := &PlanEntry{
		ID:         r.compiler.newID(),
		TemplateID: node.Attrs.TemplateID,
		DelayHours: delay,
		Branch:     branch,
		nodeID:     node.ID,
	}
	if parent != nil {
		parentID := parent.ID
		entry.ParentID = &parentID
	}
	entry.Subject = node.Attrs.Subject
	if entry.Subject == "" {
		entry.Subject = "Email " + entry.ID
		if node.Attrs.TemplateID != "" {
			entry.Subject = "Email " + node.Attrs.TemplateID
		}
	}
	entry.Content = node.Attrs.Content
	if entry.Content == "" {
		entry.Content = fmt.Sprintf("Content for email %s...", entry.ID)
	}
	r.entries = append(r.entries, entry)

	// The delay accumulator restarts for the chain after this email.
	nextID, err := r.follow(r.next(node.ID), entry, 0, branch)
	if err != nil {
		return nil, err
	}
	if entry.Condition == nil {
		entry.NextID = nextID
	}
	return &entry.ID, nil
}

// attachCondition hangs a condition and its two branches off the entry whose
// chain reached it.
func (r *compileRun) attachCondition(node *domain.Node, owner *PlanEntry, delay int) error {
	if owner == nil || owner.Condition != nil {
		return fmt.Errorf("%w (at %s)", ErrConditionWithoutEmail, node.ID)
	}
	cond := &Condition{Type: node.PredicateOrDefault()}
	owner.Condition = cond
	owner.NextID = nil

	var err error
	cond.TrueBranch.EmailID, err = r.follow(r.branch(node.ID, domain.PortYes), owner, delay, BranchTrue)
	if err != nil {
		return err
	}
	cond.FalseBranch.EmailID, err = r.follow(r.branch(node.ID, domain.PortNo), owner, delay, BranchFalse)
	return err
}
