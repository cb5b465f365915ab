// Package layout positions campaign nodes top to bottom. Layouters only
// compute coordinates; they never touch kinds, attrs or edges.
package layout

import (
	"context"
	"sort"

	"github.com/alexanderramin/drip/internal/domain"
	"github.com/goccy/go-graphviz"
)

// Spacing between neighbouring boxes and between ranks, in canvas units.
const (
	NodeSep = 50.0
	RankSep = 50.0
)

// DefaultEngine is the Graphviz program used when none is configured.
const DefaultEngine = "dot"

var engines = map[string]graphviz.Layout{
	"dot":   graphviz.DOT,
	"neato": graphviz.NEATO,
	"fdp":   graphviz.FDP,
	"circo": graphviz.CIRCO,
	"twopi": graphviz.TWOPI,
	"osage": graphviz.OSAGE,
}

// ValidEngine reports whether name is a layout program New accepts.
func ValidEngine(name string) bool {
	_, ok := engines[name]
	return ok
}

// Engines lists the accepted layout programs in name order.
func Engines() []string {
	names := make([]string, 0, len(engines))
	for name := range engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Box is a node reduced to what a layout needs.
type Box struct {
	ID     string
	Width  float64
	Height float64
}

// Link is a directed edge between two boxes.
type Link struct {
	Source string
	Target string
}

// Layouter returns the top-left position of every box. Positions are keyed
// by box id; boxes missing from the result keep their old position.
type Layouter interface {
	Layout(ctx context.Context, boxes []Box, links []Link) (map[string]domain.Position, error)
}

var kindSizes = map[domain.NodeKind][2]float64{
	domain.NodeTrigger:   {90, 30},
	domain.NodeEmail:     {180, 60},
	domain.NodeDelay:     {120, 60},
	domain.NodeCondition: {60, 60},
}

// SizeOf returns the rendered width and height of a node kind.
func SizeOf(kind domain.NodeKind) (w, h float64) {
	if s, ok := kindSizes[kind]; ok {
		return s[0], s[1]
	}
	return 172, 56
}

func BoxesFor(nodes []domain.Node) []Box {
	boxes := make([]Box, 0, len(nodes))
	for _, n := range nodes {
		w, h := SizeOf(n.Kind)
		boxes = append(boxes, Box{ID: n.ID, Width: w, Height: h})
	}
	return boxes
}

func LinksFor(edges []domain.Edge) []Link {
	links := make([]Link, 0, len(edges))
	for _, e := range edges {
		links = append(links, Link{Source: e.Source, Target: e.Target})
	}
	return links
}

// New builds a fresh layouter for one request. An unknown or empty engine
// falls back to dot.
func New(engine string) Layouter {
	return NewGraphviz(engine)
}
