package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/drip/internal/cli/formatter"
	"github.com/alexanderramin/drip/internal/editor"
	"github.com/alexanderramin/drip/internal/service"
	"github.com/spf13/cobra"
)

func newConnectCmd(app *App) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "connect <source> <target>",
		Short: "Draw an edge between two nodes",
		Long: `Draw an edge from source to target. Edges leaving a condition must
name the branch with --port yes or --port no.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := parsePort(port)
			if err != nil {
				return err
			}
			c, err := resolveCampaign(cmd, app)
			if err != nil {
				return err
			}
			g, err := app.Editor.Graph(cmd.Context(), c.ID)
			if err != nil {
				return err
			}
			src, err := resolveNode(g.Nodes, args[0])
			if err != nil {
				return err
			}
			dst, err := resolveNode(g.Nodes, args[1])
			if err != nil {
				return err
			}

			e, err := app.Editor.Connect(cmd.Context(), c.ID, src.ID, p, dst.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Connected %s → %s %s\n", e.Source, e.Target, formatter.StateIndicator(e.State))
			return nil
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Condition branch (yes|no)")
	return cmd
}

func newDeleteCmd(app *App) *cobra.Command {
	var nodes, edges []string

	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Remove nodes and edges in one step",
		Long: `Remove the given nodes and edges together. Edges attached to a removed
node go with it. The start node cannot be removed.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(nodes) == 0 && len(edges) == 0 {
				return fmt.Errorf("nothing to delete; pass --node or --edge")
			}
			c, err := resolveCampaign(cmd, app)
			if err != nil {
				return err
			}
			if len(nodes) > 0 {
				g, err := app.Editor.Graph(cmd.Context(), c.ID)
				if err != nil {
					return err
				}
				for i, ref := range nodes {
					n, err := resolveNode(g.Nodes, ref)
					if err != nil {
						return err
					}
					nodes[i] = n.ID
				}
			}

			change, err := app.Editor.Delete(cmd.Context(), c.ID, editor.Delta{RemoveNodes: nodes, RemoveEdges: edges})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Removed %d nodes and %d edges\n", len(change.RemovedNodes), len(change.RemovedEdges))
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&nodes, "node", "n", nil, "Node to remove (repeatable)")
	cmd.Flags().StringSliceVarP(&edges, "edge", "e", nil, "Edge to remove (repeatable)")
	return cmd
}

func newLayoutCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "layout",
		Short: "Arrange the flow top to bottom",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolveCampaign(cmd, app)
			if err != nil {
				return err
			}
			moved, err := app.Editor.Layout(cmd.Context(), c.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Laid out %d nodes\n", len(moved))
			return nil
		},
	}
}

func newStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show the flow and which nodes are connected",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolveCampaign(cmd, app)
			if err != nil {
				return err
			}
			return printStatus(cmd, app, c.ID)
		},
	}
}

func printStatus(cmd *cobra.Command, app *App, campaignID string) error {
	g, err := app.Editor.Graph(cmd.Context(), campaignID)
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatter.FormatGraphStatus(g.Campaign, g.Nodes, g.Edges, g.Unreachable))
	return nil
}

func newPublishCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Compile the flow into an execution plan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolveCampaign(cmd, app)
			if err != nil {
				return err
			}
			res, err := app.Editor.Publish(cmd.Context(), c.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(res.Plan)
			}
			fmt.Fprint(out, formatter.FormatPlan(res.Plan))
			msg := fmt.Sprintf("Published %d emails", res.Publication.EmailCount)
			if res.Publication.Channel != "" {
				msg += " to " + res.Publication.Channel
			}
			fmt.Fprintln(out, formatter.StyleGreen.Render(msg))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the plan as JSON")
	return cmd
}

func newPublicationsCmd(app *App) *cobra.Command {
	var (
		limit     int
		delivered bool
	)

	cmd := &cobra.Command{
		Use:   "publications",
		Short: "List past publishes, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolveCampaign(cmd, app)
			if err != nil {
				return err
			}
			if delivered {
				return printDeliveredPlan(cmd, app, c.ID)
			}
			pubs, err := app.Editor.Publications(cmd.Context(), c.ID, limit)
			if err != nil {
				return err
			}
			if len(pubs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("Not published yet."))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPublicationList(pubs))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 10, "Number of publications to show (0 for all)")
	cmd.Flags().BoolVar(&delivered, "delivered", false, "Print the plan the execution engine last received")
	return cmd
}

func printDeliveredPlan(cmd *cobra.Command, app *App, campaignID string) error {
	plan, err := app.Editor.DeliveredPlan(cmd.Context(), campaignID)
	switch {
	case errors.Is(err, service.ErrNoSink):
		return fmt.Errorf("no plan sink configured; set REDIS_ADDR to deliver plans")
	case errors.Is(err, service.ErrPlanNotDelivered):
		fmt.Fprintln(cmd.OutOrStdout(), formatter.Dim("No plan delivered yet."))
		return nil
	case err != nil:
		return err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, plan, "", "  "); err != nil {
		return fmt.Errorf("decoding delivered plan: %w", err)
	}
	out.WriteByte('\n')
	_, err = out.WriteTo(cmd.OutOrStdout())
	return err
}

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the editor HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Serve == nil {
				return fmt.Errorf("the HTTP API is not available in this build")
			}
			if addr == "" {
				addr = app.Addr
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", addr)
			return app.Serve(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from DRIP_ADDR)")
	return cmd
}
