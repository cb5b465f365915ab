package api

import (
	"encoding/json"
	"time"

	"github.com/alexanderramin/drip/internal/domain"
	"github.com/alexanderramin/drip/internal/service"
)

type campaignDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	NextSeq   int       `json:"next_seq"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type nodeDTO struct {
	ID       string             `json:"id"`
	Kind     domain.NodeKind    `json:"kind"`
	Position domain.Position    `json:"position"`
	Attrs    domain.NodeAttrs   `json:"attrs"`
	State    domain.VisualState `json:"state"`
}

type edgeDTO struct {
	ID         string             `json:"id"`
	Source     string             `json:"source"`
	Target     string             `json:"target"`
	SourcePort domain.Port        `json:"source_port,omitempty"`
	State      domain.VisualState `json:"state"`
}

type graphDTO struct {
	Campaign    campaignDTO `json:"campaign"`
	Nodes       []nodeDTO   `json:"nodes"`
	Edges       []edgeDTO   `json:"edges"`
	Unreachable []string    `json:"unreachable"`
}

type publicationDTO struct {
	ID         string          `json:"id"`
	EmailCount int             `json:"email_count"`
	Channel    string          `json:"channel,omitempty"`
	Plan       json.RawMessage `json:"plan"`
	CreatedAt  time.Time       `json:"created_at"`
}

type nameReq struct {
	Name string `json:"name"`
}

// addNodeReq carries either a logical position or a screen point with the
// viewport it was captured under.
type addNodeReq struct {
	Kind     domain.NodeKind  `json:"kind"`
	Position *domain.Position `json:"position"`
	Screen   *domain.Position `json:"screen"`
	Viewport *domain.Viewport `json:"viewport"`
}

type updateNodeReq struct {
	Attrs    *domain.NodeAttrs `json:"attrs"`
	Position *domain.Position  `json:"position"`
}

type connectReq struct {
	Source string      `json:"source"`
	Port   domain.Port `json:"port"`
	Target string      `json:"target"`
}

func toCampaignDTO(c *domain.Campaign) campaignDTO {
	return campaignDTO{ID: c.ID, Name: c.Name, NextSeq: c.NextSeq, CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt}
}

func toNodeDTO(n domain.Node) nodeDTO {
	return nodeDTO{ID: n.ID, Kind: n.Kind, Position: n.Position, Attrs: n.Attrs, State: n.State}
}

func toNodeDTOs(nodes []domain.Node) []nodeDTO {
	out := make([]nodeDTO, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, toNodeDTO(n))
	}
	return out
}

func toEdgeDTO(e domain.Edge) edgeDTO {
	return edgeDTO{ID: e.ID, Source: e.Source, Target: e.Target, SourcePort: e.SourcePort, State: e.State}
}

func toGraphDTO(g *service.Graph) graphDTO {
	edges := make([]edgeDTO, 0, len(g.Edges))
	for _, e := range g.Edges {
		edges = append(edges, toEdgeDTO(e))
	}
	unreachable := g.Unreachable
	if unreachable == nil {
		unreachable = []string{}
	}
	return graphDTO{
		Campaign:    toCampaignDTO(g.Campaign),
		Nodes:       toNodeDTOs(g.Nodes),
		Edges:       edges,
		Unreachable: unreachable,
	}
}

func toPublicationDTO(p *domain.Publication) publicationDTO {
	return publicationDTO{ID: p.ID, EmailCount: p.EmailCount, Channel: p.Channel, Plan: p.PlanJSON, CreatedAt: p.CreatedAt}
}
