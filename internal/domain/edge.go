package domain

import (
	"strings"
	"time"
	"unicode"
)

// EdgeIDSeparator joins the parts of an edge id. Node ids never contain it.
const EdgeIDSeparator = ":"

type Edge struct {
	ID         string
	CampaignID string
	Source     string
	Target     string
	SourcePort Port
	State      VisualState
	CreatedAt  time.Time
}

// EdgeID derives the id of the edge between two node handles, as
// "source:target" or "source:port:target". At most one edge can exist per
// (source, port, target) triple, and distinct triples never share an id.
func EdgeID(source string, port Port, target string) string {
	if port == PortNone {
		return source + EdgeIDSeparator + target
	}
	return source + EdgeIDSeparator + string(port) + EdgeIDSeparator + target
}

// ValidNodeID reports whether id can name a node: non-empty, without
// whitespace and without the edge id separator.
func ValidNodeID(id string) bool {
	if id == "" || strings.Contains(id, EdgeIDSeparator) {
		return false
	}
	return strings.IndexFunc(id, unicode.IsSpace) < 0
}
