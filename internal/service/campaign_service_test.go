package service

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/drip/internal/domain"
	"github.com/alexanderramin/drip/internal/importer"
	"github.com/alexanderramin/drip/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCampaignService_CreateSeedsTrigger(t *testing.T) {
	env := newTestEnv(t, EditorConfig{})
	ctx := context.Background()

	c, err := env.campaigns.Create(ctx, "  Welcome series ")
	require.NoError(t, err)
	assert.Equal(t, "Welcome series", c.Name)
	assert.Equal(t, 1, c.NextSeq)

	g, err := env.editor.Graph(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, g.Nodes, 1)
	trigger := g.Nodes[0]
	assert.Equal(t, domain.TriggerNodeID, trigger.ID)
	assert.Equal(t, domain.NodeTrigger, trigger.Kind)
	assert.Equal(t, domain.TriggerLabel, trigger.Attrs.Label)
	assert.Equal(t, domain.Position{}, trigger.Position)
	assert.Equal(t, domain.StateConnected, trigger.State)
}

func TestCampaignService_CreateValidatesName(t *testing.T) {
	env := newTestEnv(t, EditorConfig{})
	ctx := context.Background()

	_, err := env.campaigns.Create(ctx, "   ")
	assert.ErrorIs(t, err, ErrNameRequired)

	env.createCampaign(t, "Onboarding")
	_, err = env.campaigns.Create(ctx, "Onboarding")
	assert.ErrorIs(t, err, ErrCampaignExists)
}

func TestCampaignService_Resolve(t *testing.T) {
	env := newTestEnv(t, EditorConfig{})
	ctx := context.Background()
	c := env.createCampaign(t, "Onboarding")

	byID, err := env.campaigns.Resolve(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, byID.ID)

	byName, err := env.campaigns.Resolve(ctx, "Onboarding")
	require.NoError(t, err)
	assert.Equal(t, c.ID, byName.ID)

	_, err = env.campaigns.Resolve(ctx, "Nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Contains(t, err.Error(), `"Nope"`)
}

func TestCampaignService_Rename(t *testing.T) {
	env := newTestEnv(t, EditorConfig{})
	ctx := context.Background()
	c := env.createCampaign(t, "Onboarding")
	env.createCampaign(t, "Winback")

	renamed, err := env.campaigns.Rename(ctx, "Onboarding", "Onboarding v2")
	require.NoError(t, err)
	assert.Equal(t, c.ID, renamed.ID)

	_, err = env.campaigns.Resolve(ctx, "Onboarding v2")
	require.NoError(t, err)

	_, err = env.campaigns.Rename(ctx, c.ID, "Winback")
	assert.ErrorIs(t, err, ErrCampaignExists)

	// Renaming to the current name is a no-op, not a clash.
	_, err = env.campaigns.Rename(ctx, c.ID, "Onboarding v2")
	assert.NoError(t, err)
}

func TestCampaignService_DeleteCascades(t *testing.T) {
	env := newTestEnv(t, EditorConfig{})
	ctx := context.Background()
	c := env.buildChain(t)
	_, err := env.editor.Publish(ctx, c.ID)
	require.NoError(t, err)

	require.NoError(t, env.campaigns.Delete(ctx, c.Name))

	_, err = env.campaigns.Resolve(ctx, c.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	var count int
	require.NoError(t, env.db.QueryRow(`SELECT COUNT(*) FROM nodes WHERE campaign_id = ?`, c.ID).Scan(&count))
	assert.Zero(t, count)
	require.NoError(t, env.db.QueryRow(`SELECT COUNT(*) FROM publications WHERE campaign_id = ?`, c.ID).Scan(&count))
	assert.Zero(t, count)

	list, err := env.campaigns.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCampaignService_ExportImportRoundTrip(t *testing.T) {
	env := newTestEnv(t, EditorConfig{})
	ctx := context.Background()
	c := env.buildChain(t)

	f, err := env.campaigns.Export(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Name, f.Campaign.Name)
	assert.Len(t, f.Nodes, 3)
	assert.Len(t, f.Edges, 2)

	data, err := json.Marshal(f)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "welcome.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	// Free the name so the import does not clash.
	require.NoError(t, env.campaigns.Delete(ctx, c.ID))

	res, err := env.campaigns.ImportFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, 3, res.NodeCount)
	assert.Equal(t, 2, res.EdgeCount)
	assert.NotEqual(t, c.ID, res.Campaign.ID)
	assert.Equal(t, 3, res.Campaign.NextSeq)

	g, err := env.editor.Graph(ctx, res.Campaign.ID)
	require.NoError(t, err)
	assert.Empty(t, g.Unreachable)
	email, ok := nodeByID(g.Nodes, "email-2")
	require.True(t, ok)
	assert.Equal(t, "Welcome", email.Attrs.Subject)

	pub, err := env.editor.Publish(ctx, res.Campaign.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, pub.Publication.EmailCount)
}

func TestCampaignService_ImportValidation(t *testing.T) {
	env := newTestEnv(t, EditorConfig{})
	f := &importer.CampaignFile{
		Nodes: []importer.NodeImport{
			{ID: "start", Kind: "trigger"},
			{ID: "email-1", Kind: "email"},
			{ID: "condition-2", Kind: "condition"},
		},
		Edges: []importer.EdgeImport{
			{Source: "start", Target: "email-1"},
			{Source: "email-1", Target: "condition-2"},
		},
	}

	_, err := env.campaigns.Import(context.Background(), f)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidImport)
	assert.Contains(t, err.Error(), "import validation failed (2 errors)")
	assert.Contains(t, err.Error(), "campaign.name is required")
	assert.Contains(t, err.Error(), `edges[1]: an "email" node can only connect to a "delay" node`)

	list, err := env.campaigns.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCampaignService_ImportNameClash(t *testing.T) {
	env := newTestEnv(t, EditorConfig{})
	env.createCampaign(t, "Onboarding")

	f := &importer.CampaignFile{
		Campaign: importer.CampaignImport{Name: "Onboarding"},
		Nodes:    []importer.NodeImport{{ID: "start", Kind: "trigger"}},
	}
	_, err := env.campaigns.Import(context.Background(), f)
	assert.ErrorIs(t, err, ErrCampaignExists)
}

func TestCampaignService_ImportMissingFile(t *testing.T) {
	env := newTestEnv(t, EditorConfig{})
	_, err := env.campaigns.ImportFile(context.Background(), filepath.Join(t.TempDir(), "absent.json"))
	assert.ErrorContains(t, err, "loading import file")
}
