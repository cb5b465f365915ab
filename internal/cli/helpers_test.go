package cli

import (
	"bytes"
	"testing"

	"github.com/alexanderramin/drip/internal/repository"
	"github.com/alexanderramin/drip/internal/service"
	"github.com/alexanderramin/drip/internal/testutil"
	"github.com/stretchr/testify/require"
)

// testApp wires an App over an in-memory store.
func testApp(t *testing.T) *App {
	t.Helper()
	return testAppWith(t, service.EditorConfig{})
}

func testAppWith(t *testing.T, cfg service.EditorConfig) *App {
	t.Helper()
	database := testutil.NewTestDB(t)
	uow := testutil.NewTestUoW(database)
	return &App{
		Campaigns: service.NewCampaignService(repository.NewSQLiteCampaignRepo(database), uow),
		Editor:    service.NewEditorService(uow, cfg),
	}
}

// executeCmd runs the command tree with args and returns its output.
func executeCmd(t *testing.T, app *App, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd(app)
	var buf bytes.Buffer
	root.SetOut(&buf)
	root.SetErr(&buf)
	root.SetArgs(args)
	err := root.Execute()
	return buf.String(), err
}

func mustExecute(t *testing.T, app *App, args ...string) string {
	t.Helper()
	out, err := executeCmd(t, app, args...)
	require.NoError(t, err, "drip %v\n%s", args, out)
	return out
}

// seedChain creates "Welcome" holding start -> delay-1 -> email-2.
func seedChain(t *testing.T, app *App) {
	t.Helper()
	mustExecute(t, app, "campaign", "create", "Welcome")
	mustExecute(t, app, "-c", "Welcome", "node", "add", "delay")
	mustExecute(t, app, "-c", "Welcome", "node", "add", "email")
	mustExecute(t, app, "-c", "Welcome", "node", "configure", "2", "--template", "email1", "--subject", "Hello there")
	mustExecute(t, app, "-c", "Welcome", "connect", "start", "1")
	mustExecute(t, app, "-c", "Welcome", "connect", "1", "2")
}
