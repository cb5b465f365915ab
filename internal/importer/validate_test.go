package importer

import (
	"strings"
	"testing"

	"github.com/alexanderramin/drip/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validMinimalFile() *CampaignFile {
	return &CampaignFile{
		Campaign: CampaignImport{Name: "Welcome"},
		Nodes: []NodeImport{
			{ID: "start", Kind: "trigger"},
			{ID: "email-1", Kind: "email", Attrs: domain.NodeAttrs{TemplateID: "email1"}},
		},
		Edges: []EdgeImport{{Source: "start", Target: "email-1"}},
	}
}

func TestValidateCampaignFile_ValidMinimal(t *testing.T) {
	assert.Empty(t, ValidateCampaignFile(validMinimalFile()))
}

func TestValidateCampaignFile_ValidWithCondition(t *testing.T) {
	f := validMinimalFile()
	f.Nodes = append(f.Nodes,
		NodeImport{ID: "delay-2", Kind: "delay", Attrs: domain.NodeAttrs{Amount: 2, Unit: domain.UnitDays}},
		NodeImport{ID: "condition-3", Kind: "condition", Attrs: domain.NodeAttrs{Predicate: domain.PredicateClicked}},
		NodeImport{ID: "email-4", Kind: "email"},
	)
	f.Edges = append(f.Edges,
		EdgeImport{Source: "email-1", Target: "delay-2"},
		EdgeImport{Source: "delay-2", Target: "condition-3"},
		EdgeImport{Source: "condition-3", Port: "yes", Target: "email-4"},
	)
	assert.Empty(t, ValidateCampaignFile(f))
}

func TestValidateCampaignFile_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *CampaignFile)
		wantMsg string
	}{
		{"missing name", func(f *CampaignFile) { f.Campaign.Name = "" }, "campaign.name is required"},
		{"missing id", func(f *CampaignFile) { f.Nodes[1].ID = "" }, "nodes[1].id is required"},
		{"separator in id", func(f *CampaignFile) { f.Nodes[1].ID = "email:1" }, `nodes[1].id: invalid id "email:1"`},
		{"duplicate id", func(f *CampaignFile) { f.Nodes[1].ID = "start" }, `nodes[1].id: duplicate id "start"`},
		{"missing kind", func(f *CampaignFile) { f.Nodes[1].Kind = "" }, "nodes[1].kind is required"},
		{"invalid kind", func(f *CampaignFile) { f.Nodes[1].Kind = "sms" }, `nodes[1].kind: invalid value "sms"`},
		{"trigger id", func(f *CampaignFile) { f.Nodes[0].ID = "root" }, `nodes[0]: the trigger must have id "start"`},
		{"reserved id", func(f *CampaignFile) {
			f.Nodes[0].ID = "root"
			f.Nodes[1].ID = "start"
		}, `nodes[1]: id "start" is reserved for the trigger`},
		{"bad attrs", func(f *CampaignFile) { f.Nodes[1].Attrs.TemplateID = "email9" }, `nodes[1].attrs: invalid email template "email9"`},
		{"unknown source", func(f *CampaignFile) { f.Edges[0].Source = "ghost" }, `edges[0].source: node "ghost" not found`},
		{"unknown target", func(f *CampaignFile) { f.Edges[0].Target = "ghost" }, `edges[0].target: node "ghost" not found`},
		{"bad port", func(f *CampaignFile) { f.Edges[0].Port = "maybe" }, `edges[0].port: invalid value "maybe"`},
		{"port on trigger edge", func(f *CampaignFile) { f.Edges[0].Port = "yes" }, "edges[0].port: only condition edges carry a port"},
		{"rule violation", func(f *CampaignFile) {
			f.Nodes = append(f.Nodes, NodeImport{ID: "condition-2", Kind: "condition"})
			f.Edges = append(f.Edges, EdgeImport{Source: "email-1", Target: "condition-2"})
		}, `edges[1]: an "email" node can only connect to a "delay" node`},
		{"condition without port", func(f *CampaignFile) {
			f.Nodes = append(f.Nodes, NodeImport{ID: "condition-2", Kind: "condition"}, NodeImport{ID: "email-3", Kind: "email"})
			f.Edges = append(f.Edges, EdgeImport{Source: "condition-2", Target: "email-3"})
		}, "edges[1].port: a condition edge needs port yes or no"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validMinimalFile()
			tt.mutate(f)
			errs := ValidateCampaignFile(f)
			require.NotEmpty(t, errs)

			found := false
			for _, err := range errs {
				if strings.Contains(err.Error(), tt.wantMsg) {
					found = true
				}
			}
			assert.True(t, found, "expected %q in %v", tt.wantMsg, errs)
		})
	}
}

func TestValidateCampaignFile_CollectsAllErrors(t *testing.T) {
	f := &CampaignFile{
		Nodes: []NodeImport{{ID: "", Kind: "sms"}},
		Edges: []EdgeImport{{Source: "a", Target: "b"}},
	}
	errs := ValidateCampaignFile(f)
	assert.Len(t, errs, 5)
}

func TestValidateCampaignFile_TwoTriggers(t *testing.T) {
	f := validMinimalFile()
	f.Nodes = append(f.Nodes, NodeImport{ID: "start", Kind: "trigger"})
	errs := ValidateCampaignFile(f)
	require.NotEmpty(t, errs)
	assert.Contains(t, errs[len(errs)-1].Error(), "found 2 triggers")
}
