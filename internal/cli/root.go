package cli

import (
	"context"

	"github.com/alexanderramin/drip/internal/service"
	"github.com/spf13/cobra"
)

// App holds the services and process hooks CLI commands depend on.
type App struct {
	Campaigns service.CampaignService
	Editor    service.EditorService

	// Serve runs the HTTP API on addr until ctx is cancelled. A nil Serve
	// makes the serve command report that the API is unavailable.
	Serve func(ctx context.Context, addr string) error
	Addr  string

	// IsInteractive reports whether prompts may be shown. Nil means never.
	IsInteractive func() bool

	// HistoryPath is where the shell keeps its history. Empty keeps it in
	// memory only.
	HistoryPath string
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// NewRootCmd creates the top-level "drip" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "drip",
		Short:         "Drip campaign flow editor",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringP(campaignFlag, "c", "", "Campaign name or ID")

	root.AddCommand(
		newCampaignCmd(app),
		newNodeCmd(app),
		newConnectCmd(app),
		newDeleteCmd(app),
		newLayoutCmd(app),
		newStatusCmd(app),
		newPublishCmd(app),
		newPublicationsCmd(app),
		newServeCmd(app),
		newShellCmd(app),
	)

	return root
}
