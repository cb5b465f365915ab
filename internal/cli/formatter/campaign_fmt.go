package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/drip/internal/domain"
	"github.com/alexanderramin/drip/internal/flow"
)

func FormatCampaignList(campaigns []*domain.Campaign) string {
	return formatCampaignListAt(campaigns, time.Now())
}

func formatCampaignListAt(campaigns []*domain.Campaign, now time.Time) string {
	rows := make([][]string, 0, len(campaigns))
	for _, c := range campaigns {
		rows = append(rows, []string{
			Bold(c.Name),
			Dim(ShortID(c.ID)),
			RelativeTimeFrom(c.UpdatedAt, now),
		})
	}
	return RenderTable([]string{"NAME", "ID", "UPDATED"}, rows)
}

// NodeSummary describes a node's configuration in a few words.
func NodeSummary(n domain.Node) string {
	switch n.Kind {
	case domain.NodeTrigger:
		return orDefault(n.Attrs.Label, domain.TriggerLabel)
	case domain.NodeDelay:
		if n.Attrs.Amount <= 0 {
			return fmt.Sprintf("wait %s (default)", Hours(domain.DefaultDelayHours))
		}
		unit := n.Attrs.Unit
		if unit == "" {
			unit = domain.UnitHours
		}
		return fmt.Sprintf("wait %d %s", n.Attrs.Amount, unit)
	case domain.NodeEmail:
		tmpl := orDefault(n.Attrs.TemplateID, "no template")
		if n.Attrs.Subject != "" {
			return fmt.Sprintf("%s · %q", tmpl, n.Attrs.Subject)
		}
		return tmpl
	case domain.NodeCondition:
		return "if " + string(n.PredicateOrDefault())
	default:
		return string(n.Kind)
	}
}

// FormatNodeTable lists nodes with their kind, state and configuration.
func FormatNodeTable(nodes []domain.Node) string {
	rows := make([][]string, 0, len(nodes))
	for _, n := range nodes {
		rows = append(rows, []string{
			Bold(n.ID),
			KindStyle(n.Kind).Render(string(n.Kind)),
			StateIndicator(n.State),
			NodeSummary(n),
			Dim(fmt.Sprintf("(%.0f, %.0f)", n.Position.X, n.Position.Y)),
		})
	}
	return RenderTable([]string{"NODE", "KIND", "STATE", "CONFIG", "POS"}, rows)
}

func FormatEdgeTable(edges []domain.Edge) string {
	rows := make([][]string, 0, len(edges))
	for _, e := range edges {
		port := "-"
		if e.SourcePort != domain.PortNone {
			port = string(e.SourcePort)
		}
		rows = append(rows, []string{Dim(e.ID), e.Source, port, e.Target, StateIndicator(e.State)})
	}
	return RenderTable([]string{"EDGE", "FROM", "PORT", "TO", "STATE"}, rows)
}

// FormatGraphStatus renders the full status view of a campaign: the flow
// tree, then the node and edge tables, then a publish readiness line.
func FormatGraphStatus(c *domain.Campaign, nodes []domain.Node, edges []domain.Edge, unreachable []string) string {
	var b strings.Builder
	b.WriteString(Header(c.Name) + "\n")
	b.WriteString(Dim(fmt.Sprintf("%d nodes · %d edges · id %s", len(nodes), len(edges), c.ID)) + "\n\n")
	b.WriteString(FormatFlowTree(nodes, edges))
	b.WriteString("\n")
	b.WriteString(FormatNodeTable(nodes))
	if len(edges) > 0 {
		b.WriteString("\n")
		b.WriteString(FormatEdgeTable(edges))
	}
	b.WriteString("\n")
	if len(unreachable) > 0 {
		b.WriteString(StyleRed.Render(fmt.Sprintf("Not connected to start: %s", strings.Join(unreachable, ", "))) + "\n")
	} else {
		b.WriteString(StyleGreen.Render("Every node is connected to start.") + "\n")
	}
	return b.String()
}

// FormatFlowTree walks the graph from the trigger and renders it as a tree.
// Nodes the walk never reaches are listed after it as separate roots.
func FormatFlowTree(nodes []domain.Node, edges []domain.Edge) string {
	index := make(map[string]domain.Node, len(nodes))
	for _, n := range nodes {
		index[n.ID] = n
	}
	out := make(map[string][]domain.Edge)
	for _, e := range edges {
		out[e.Source] = append(out[e.Source], e)
	}

	var items []TreeItem
	seen := make(map[string]bool)
	var walk func(id string, level int, last bool, branch string)
	walk = func(id string, level int, last bool, branch string) {
		n, ok := index[id]
		if !ok {
			return
		}
		item := TreeItem{
			Label:  n.ID,
			Kind:   n.Kind,
			State:  n.State,
			Branch: branch,
			Level:  level,
			IsLast: last,
			Detail: NodeSummary(n),
		}
		if seen[id] {
			item.Label = "↺ " + n.ID
			item.Detail = "loops back"
			items = append(items, item)
			return
		}
		seen[id] = true
		items = append(items, item)

		children := out[id]
		for i, e := range children {
			walk(e.Target, level+1, i == len(children)-1, string(e.SourcePort))
		}
	}

	walk(domain.TriggerNodeID, 0, true, "")
	for _, n := range nodes {
		if !seen[n.ID] {
			walk(n.ID, 0, true, "")
		}
	}
	return RenderTree(items)
}

// FormatPlan lists the entries of a compiled plan in emission order.
func FormatPlan(p *flow.Plan) string {
	short := func(id *string) string {
		if id == nil {
			return "-"
		}
		return ShortID(*id)
	}

	rows := make([][]string, 0, len(p.Emails))
	for _, e := range p.Emails {
		next := short(e.NextID)
		if e.Condition != nil {
			next = fmt.Sprintf("if %s ? %s : %s", e.Condition.Type,
				short(e.Condition.TrueBranch.EmailID), short(e.Condition.FalseBranch.EmailID))
		}
		branch := string(e.Branch)
		if branch == "" {
			branch = "-"
		}
		rows = append(rows, []string{
			Bold(ShortID(e.ID)),
			e.Subject,
			Hours(e.DelayHours),
			short(e.ParentID),
			branch,
			next,
		})
	}
	return RenderTable([]string{"EMAIL", "SUBJECT", "AFTER", "PARENT", "BRANCH", "THEN"}, rows)
}

func FormatPublicationList(pubs []*domain.Publication) string {
	return formatPublicationListAt(pubs, time.Now())
}

func formatPublicationListAt(pubs []*domain.Publication, now time.Time) string {
	rows := make([][]string, 0, len(pubs))
	for _, p := range pubs {
		channel := p.Channel
		if channel == "" {
			channel = Dim("local")
		}
		rows = append(rows, []string{
			Dim(ShortID(p.ID)),
			fmt.Sprintf("%d", p.EmailCount),
			channel,
			RelativeTimeFrom(p.CreatedAt, now),
		})
	}
	return RenderTable([]string{"PUBLICATION", "EMAILS", "CHANNEL", "WHEN"}, rows)
}
