package layout

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/alexanderramin/drip/internal/domain"
	"github.com/goccy/go-graphviz"
)

// pointsPerInch converts Graphviz inch attributes to canvas units.
const pointsPerInch = 72.0

// The Graphviz runtime is a single wasm instance shared by the process.
var engineMu sync.Mutex

// Graphviz lays boxes out with an in-process Graphviz program.
type Graphviz struct {
	Engine  graphviz.Layout
	NodeSep float64
	RankSep float64
}

func NewGraphviz(engine string) *Graphviz {
	prog, ok := engines[engine]
	if !ok {
		prog = graphviz.DOT
	}
	return &Graphviz{Engine: prog, NodeSep: NodeSep, RankSep: RankSep}
}

func (g *Graphviz) Layout(ctx context.Context, boxes []Box, links []Link) (map[string]domain.Position, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(boxes) == 0 {
		return map[string]domain.Position{}, nil
	}

	engineMu.Lock()
	defer engineMu.Unlock()

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("graphviz: starting runtime: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(g.Engine)

	graph, err := gv.Graph()
	if err != nil {
		return nil, fmt.Errorf("graphviz: opening graph: %w", err)
	}
	defer graph.Close()
	graph.SetRankDir(graphviz.TBRank).
		SetNodeSeparator(g.NodeSep / pointsPerInch).
		SetRankSeparator(g.RankSep / pointsPerInch)

	nodes := make(map[string]*graphviz.Node, len(boxes))
	for _, b := range boxes {
		n, err := graph.CreateNodeByName(b.ID)
		if err != nil {
			return nil, fmt.Errorf("graphviz: adding node %s: %w", b.ID, err)
		}
		n.SetShape(graphviz.BoxShape).
			SetFixedSize(true).
			SetWidth(b.Width / pointsPerInch).
			SetHeight(b.Height / pointsPerInch).
			SetLabel("")
		nodes[b.ID] = n
	}
	for i, l := range links {
		src, okS := nodes[l.Source]
		dst, okT := nodes[l.Target]
		if !okS || !okT {
			continue
		}
		if _, err := graph.CreateEdgeByName(fmt.Sprintf("l%d", i), src, dst); err != nil {
			return nil, fmt.Errorf("graphviz: adding link %s -> %s: %w", l.Source, l.Target, err)
		}
	}

	var out bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.XDOT, &out); err != nil {
		return nil, fmt.Errorf("graphviz: running %s: %w", g.Engine, err)
	}
	return readPositions(out.Bytes(), boxes)
}

// readPositions parses the laid-out graph. Graphviz reports node centres in
// points with the origin at the bottom left; they are flipped against the
// bounding box and shifted to top-left canvas positions.
func readPositions(laidOut []byte, boxes []Box) (map[string]domain.Position, error) {
	graph, err := graphviz.ParseBytes(laidOut)
	if err != nil {
		return nil, fmt.Errorf("graphviz: reading layout: %w", err)
	}
	defer graph.Close()

	bb, err := parseFloats(graph.GetStr("bb"), 4)
	if err != nil {
		return nil, fmt.Errorf("graphviz: bounding box: %w", err)
	}
	top := bb[3]

	positions := make(map[string]domain.Position, len(boxes))
	for _, b := range boxes {
		n, err := graph.NodeByName(b.ID)
		if err != nil || n == nil {
			continue
		}
		pos, err := parseFloats(n.GetStr("pos"), 2)
		if err != nil {
			return nil, fmt.Errorf("graphviz: position of %s: %w", b.ID, err)
		}
		positions[b.ID] = toCanvas(pos[0], pos[1], top, b)
	}
	return positions, nil
}

func toCanvas(cx, cy, top float64, b Box) domain.Position {
	return domain.Position{X: cx - b.Width/2, Y: (top - cy) - b.Height/2}
}

// parseFloats reads a comma-separated Graphviz point or rectangle.
func parseFloats(s string, want int) ([]float64, error) {
	parts := strings.Split(strings.TrimSuffix(s, "!"), ",")
	if len(parts) != want {
		return nil, fmt.Errorf("want %d values, got %q", want, s)
	}
	out := make([]float64, want)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("parsing %q: %w", s, err)
		}
		out[i] = v
	}
	return out, nil
}
