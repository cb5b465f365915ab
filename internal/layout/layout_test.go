package layout

import (
	"context"
	"testing"

	"github.com/alexanderramin/drip/internal/domain"
	"github.com/goccy/go-graphviz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSizeOf(t *testing.T) {
	tests := []struct {
		kind domain.NodeKind
		w, h float64
	}{
		{domain.NodeTrigger, 90, 30},
		{domain.NodeEmail, 180, 60},
		{domain.NodeDelay, 120, 60},
		{domain.NodeCondition, 60, 60},
		{domain.NodeKind("webhook"), 172, 56},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			w, h := SizeOf(tt.kind)
			assert.Equal(t, tt.w, w)
			assert.Equal(t, tt.h, h)
		})
	}
}

func TestBoxesAndLinksFor(t *testing.T) {
	nodes := []domain.Node{
		{ID: "start", Kind: domain.NodeTrigger},
		{ID: "email-1", Kind: domain.NodeEmail},
	}
	edges := []domain.Edge{{ID: "start:email-1", Source: "start", Target: "email-1"}}

	assert.Equal(t, []Box{{ID: "start", Width: 90, Height: 30}, {ID: "email-1", Width: 180, Height: 60}}, BoxesFor(nodes))
	assert.Equal(t, []Link{{Source: "start", Target: "email-1"}}, LinksFor(edges))
}

func TestEngines(t *testing.T) {
	assert.Equal(t, []string{"circo", "dot", "fdp", "neato", "osage", "twopi"}, Engines())
	assert.True(t, ValidEngine("dot"))
	assert.False(t, ValidEngine("force"))
	assert.False(t, ValidEngine(""))
}

func TestNew_PicksEngine(t *testing.T) {
	g, ok := New("neato").(*Graphviz)
	require.True(t, ok)
	assert.Equal(t, graphviz.NEATO, g.Engine)

	g, ok = New("").(*Graphviz)
	require.True(t, ok)
	assert.Equal(t, graphviz.DOT, g.Engine)
	assert.Equal(t, graphviz.DOT, NewGraphviz("force").Engine)
}

func TestNew_ReturnsFreshValues(t *testing.T) {
	a := New(DefaultEngine)
	b := New(DefaultEngine)
	assert.NotSame(t, a, b)
}

func TestGraphviz_Chain(t *testing.T) {
	boxes := []Box{{ID: "start", Width: 90, Height: 30}, {ID: "email-1", Width: 180, Height: 60}}
	links := []Link{{Source: "start", Target: "email-1"}}

	pos, err := NewGraphviz(DefaultEngine).Layout(context.Background(), boxes, links)
	require.NoError(t, err)
	require.Len(t, pos, 2)

	// Centres line up on one column; the child sits one rank below.
	assert.InDelta(t, pos["start"].X+45, pos["email-1"].X+90, 1)
	assert.GreaterOrEqual(t, pos["email-1"].Y-(pos["start"].Y+30), RankSep-1)
}

func TestGraphviz_BranchesShareRank(t *testing.T) {
	boxes := []Box{
		{ID: "cond", Width: 60, Height: 60},
		{ID: "yes", Width: 100, Height: 60},
		{ID: "no", Width: 100, Height: 40},
	}
	links := []Link{{Source: "cond", Target: "yes"}, {Source: "cond", Target: "no"}}

	pos, err := NewGraphviz(DefaultEngine).Layout(context.Background(), boxes, links)
	require.NoError(t, err)

	assert.Less(t, pos["cond"].Y, pos["yes"].Y)
	assert.InDelta(t, pos["yes"].Y+30, pos["no"].Y+20, 1, "branch centres share a rank")
	assert.GreaterOrEqual(t, absDiff(pos["yes"].X, pos["no"].X), 100+NodeSep-1)
}

func TestGraphviz_SurvivesCycles(t *testing.T) {
	boxes := []Box{{ID: "a", Width: 10, Height: 10}, {ID: "b", Width: 10, Height: 10}}
	links := []Link{{Source: "a", Target: "b"}, {Source: "b", Target: "a"}, {Source: "a", Target: "a"}}

	pos, err := NewGraphviz(DefaultEngine).Layout(context.Background(), boxes, links)
	require.NoError(t, err)
	require.Len(t, pos, 2)
	assert.NotEqual(t, pos["a"].Y, pos["b"].Y)
}

func TestGraphviz_IgnoresUnknownLinks(t *testing.T) {
	boxes := []Box{{ID: "a", Width: 10, Height: 10}}
	pos, err := NewGraphviz(DefaultEngine).Layout(context.Background(), boxes, []Link{{Source: "a", Target: "ghost"}})
	require.NoError(t, err)
	require.Len(t, pos, 1)
	assert.NotContains(t, pos, "ghost")
}

func TestGraphviz_EmptyGraph(t *testing.T) {
	pos, err := NewGraphviz(DefaultEngine).Layout(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, pos)
}

func TestGraphviz_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewGraphviz(DefaultEngine).Layout(ctx, []Box{{ID: "a"}}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestToCanvas(t *testing.T) {
	// A 90x30 box centred at (45, 129) in a 160pt tall drawing.
	assert.Equal(t, domain.Position{X: 0, Y: 16}, toCanvas(45, 129, 160, Box{Width: 90, Height: 30}))
}

func TestParseFloats(t *testing.T) {
	got, err := parseFloats("27,18", 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{27, 18}, got)

	got, err = parseFloats("0,0,198, 161.5", 4)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 198, 161.5}, got)

	got, err = parseFloats("1.5,2!", 2)
	require.NoError(t, err)
	assert.Equal(t, []float64{1.5, 2}, got)

	_, err = parseFloats("", 2)
	assert.Error(t, err)
	_, err = parseFloats("1,x", 2)
	assert.Error(t, err)
}

func absDiff(a, b float64) float64 {
	if a > b {
		return a - b
	}
	return b - a
}
