package domain

import (
	"encoding/json"
	"time"
)

// Campaign is a named draft automation graph.
type Campaign struct {
	ID        string
	Name      string
	NextSeq   int // next suffix for minted node ids
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Publication records one successful publish of a campaign.
type Publication struct {
	ID         string
	CampaignID string
	EmailCount int
	PlanJSON   json.RawMessage
	Channel    string // pub/sub channel the plan was broadcast on, if any
	CreatedAt  time.Time
}
