package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/alexanderramin/drip/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newCampaignCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "campaign",
		Aliases: []string{"campaigns"},
		Short:   "Manage campaigns",
	}

	cmd.AddCommand(
		newCampaignCreateCmd(app),
		newCampaignListCmd(app),
		newCampaignShowCmd(app),
		newCampaignRenameCmd(app),
		newCampaignRemoveCmd(app),
		newCampaignExportCmd(app),
		newCampaignImportCmd(app),
	)

	return cmd
}

func newCampaignCreateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "create <name>",
		Short: "Create a campaign seeded with its start node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Campaigns.Create(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created campaign %s %s\n", formatter.Bold(c.Name), formatter.Dim("["+formatter.ShortID(c.ID)+"]"))
			return nil
		},
	}
}

func newCampaignListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List campaigns",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			campaigns, err := app.Campaigns.List(cmd.Context())
			if err != nil {
				return err
			}
			if len(campaigns) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("No campaigns yet. Create one with 'campaign create <name>'."))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatCampaignList(campaigns))
			return nil
		},
	}
}

func newCampaignShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <name|id>",
		Short: "Show a campaign's flow",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Campaigns.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printStatus(cmd, app, c.ID)
		},
	}
}

func newCampaignRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <name|id> <new-name>",
		Short: "Rename a campaign",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Campaigns.Rename(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed campaign to %s\n", formatter.Bold(c.Name))
			return nil
		},
	}
}

func newCampaignRemoveCmd(app *App) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:     "remove <name|id>",
		Aliases: []string{"rm"},
		Short:   "Delete a campaign and its publication history",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := app.Campaigns.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !force {
				ok, err := confirm(app, fmt.Sprintf("Delete campaign %q?", c.Name))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Cancelled."))
					return nil
				}
			}
			if err := app.Campaigns.Delete(cmd.Context(), c.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted campaign %s\n", formatter.Bold(c.Name))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Delete without confirmation")
	return cmd
}

func newCampaignExportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export <name|id>",
		Short: "Write a campaign as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := app.Campaigns.Export(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			data, err := json.MarshalIndent(f, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding campaign: %w", err)
			}
			data = append(data, '\n')

			if out == "" || out == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", formatter.Bold(f.Campaign.Name), out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func newCampaignImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Create a campaign from a JSON export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := app.Campaigns.ImportFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s: %d nodes, %d edges\n",
				formatter.Bold(res.Campaign.Name), res.NodeCount, res.EdgeCount)
			return nil
		},
	}
}
