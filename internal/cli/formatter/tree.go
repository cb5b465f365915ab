package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/drip/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// TreeItem is one line of a flow tree.
type TreeItem struct {
	Label  string
	Kind   domain.NodeKind
	State  domain.VisualState
	Branch string // "yes" or "no" for lines hanging off a condition
	Level  int
	IsLast bool
	Detail string
}

const (
	treeBranch = "├─ "
	treeCorner = "└─ "
	treePipe   = "│  "
	treeSpace  = "   "
)

// RenderTree draws items with box-drawing connectors. Disconnected nodes are
// rendered red and details are right-aligned as badges.
func RenderTree(items []TreeItem) string {
	if len(items) == 0 {
		return ""
	}

	contents := make([]string, len(items))
	width := 0
	// open[l] reports whether the ancestor at level l still has siblings below.
	var open []bool
	for idx, item := range items {
		var prefix strings.Builder
		for l := 1; l < item.Level; l++ {
			if l < len(open) && open[l] {
				prefix.WriteString(treePipe)
			} else {
				prefix.WriteString(treeSpace)
			}
		}
		if item.Level > 0 {
			if item.IsLast {
				prefix.WriteString(treeCorner)
			} else {
				prefix.WriteString(treeBranch)
			}
		}
		for len(open) <= item.Level {
			open = append(open, false)
		}
		open[item.Level] = !item.IsLast

		label := KindStyle(item.Kind).Render(item.Label)
		if item.State == domain.StateDisconnected {
			label = StyleRed.Render(item.Label)
		}
		if item.Branch != "" {
			label = Dim(item.Branch+": ") + label
		}
		contents[idx] = prefix.String() + label
		width = max(width, lipgloss.Width(contents[idx]))
	}

	var b strings.Builder
	for idx, item := range items {
		b.WriteString(contents[idx])
		if item.Detail != "" {
			pad := width - lipgloss.Width(contents[idx])
			b.WriteString(strings.Repeat(" ", pad) + "  " + StyleDim.Render(fmt.Sprintf("[ %s ]", item.Detail)))
		}
		b.WriteString("\n")
	}
	return b.String()
}
