package cli

import (
	"errors"
	"fmt"

	"github.com/alexanderramin/drip/internal/cli/formatter"
	"github.com/alexanderramin/drip/internal/domain"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// nodeSpacing is the vertical gap used when a node is added without a
// position.
const nodeSpacing = 120

func newNodeCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "node",
		Aliases: []string{"nodes"},
		Short:   "Add, configure and move nodes",
	}

	cmd.AddCommand(
		newNodeAddCmd(app),
		newNodeListCmd(app),
		newNodeConfigureCmd(app),
		newNodeMoveCmd(app),
	)

	return cmd
}

func newNodeAddCmd(app *App) *cobra.Command {
	var x, y float64

	cmd := &cobra.Command{
		Use:       "add <delay|email|condition>",
		Short:     "Drop a new node onto the canvas",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"delay", "email", "condition"},
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, err := parseKind(args[0])
			if err != nil {
				return err
			}
			c, err := resolveCampaign(cmd, app)
			if err != nil {
				return err
			}

			pos := domain.Position{X: x, Y: y}
			if !cmd.Flags().Changed("x") && !cmd.Flags().Changed("y") {
				g, err := app.Editor.Graph(cmd.Context(), c.ID)
				if err != nil {
					return err
				}
				pos = belowLowest(g.Nodes)
			}

			n, err := app.Editor.AddNode(cmd.Context(), c.ID, kind, pos)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s at (%.0f, %.0f) %s\n",
				formatter.KindStyle(n.Kind).Render(n.ID), n.Position.X, n.Position.Y, formatter.StateIndicator(n.State))
			return nil
		},
	}

	cmd.Flags().Float64Var(&x, "x", 0, "Canvas X position")
	cmd.Flags().Float64Var(&y, "y", 0, "Canvas Y position")
	return cmd
}

func belowLowest(nodes []domain.Node) domain.Position {
	var pos domain.Position
	for i, n := range nodes {
		if i == 0 || n.Position.Y+nodeSpacing > pos.Y {
			pos = domain.Position{X: n.Position.X, Y: n.Position.Y + nodeSpacing}
		}
	}
	return pos
}

func newNodeListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List the campaign's nodes",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolveCampaign(cmd, app)
			if err != nil {
				return err
			}
			g, err := app.Editor.Graph(cmd.Context(), c.ID)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatNodeTable(g.Nodes))
			return nil
		},
	}
}

type attrFlags struct {
	label, unit, template, subject, content, predicate string
	amount                                             int
}

func (f *attrFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.label, "label", "", "Display label")
	fs.IntVar(&f.amount, "amount", 0, fmt.Sprintf("Delay amount (1-%d)", domain.MaxDelayAmount))
	fs.StringVar(&f.unit, "unit", "", "Delay unit (minutes|hours|days)")
	fs.StringVar(&f.template, "template", "", "Email template (email1|email2|email3)")
	fs.StringVar(&f.subject, "subject", "", "Email subject")
	fs.StringVar(&f.content, "content", "", "Email body")
	fs.StringVar(&f.predicate, "predicate", "", "Condition predicate (opened|clicked)")
}

// merge overlays the flags the user passed onto attrs and reports whether
// any were passed.
func (f *attrFlags) merge(fs *pflag.FlagSet, attrs domain.NodeAttrs) (domain.NodeAttrs, bool) {
	set := fs.Changed
	changed := false
	if set("label") {
		attrs.Label, changed = f.label, true
	}
	if set("amount") {
		attrs.Amount, changed = f.amount, true
	}
	if set("unit") {
		attrs.Unit, changed = domain.DelayUnit(f.unit), true
	}
	if set("template") {
		attrs.TemplateID, changed = f.template, true
	}
	if set("subject") {
		attrs.Subject, changed = f.subject, true
	}
	if set("content") {
		attrs.Content, changed = f.content, true
	}
	if set("predicate") {
		attrs.Predicate, changed = domain.Predicate(f.predicate), true
	}
	return attrs, changed
}

func newNodeConfigureCmd(app *App) *cobra.Command {
	var flags attrFlags

	cmd := &cobra.Command{
		Use:   "configure <node>",
		Short: "Edit a node's settings",
		Long: `Edit a node's settings. Flags that are not passed keep their current
value. Without flags an interactive form is shown.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolveCampaign(cmd, app)
			if err != nil {
				return err
			}
			g, err := app.Editor.Graph(cmd.Context(), c.ID)
			if err != nil {
				return err
			}
			node, err := resolveNode(g.Nodes, args[0])
			if err != nil {
				return err
			}

			attrs, changed := flags.merge(cmd.Flags(), node.Attrs)
			if !changed {
				if !app.interactive() {
					return errors.New("nothing to change; pass at least one setting flag")
				}
				form, values := attrsForm(node.Kind, node.Attrs)
				if err := form.Run(); err != nil {
					return err
				}
				attrs = values.apply(node.Kind)
			}

			updated, err := app.Editor.ConfigureNode(cmd.Context(), c.ID, node.ID, attrs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configured %s: %s\n",
				formatter.KindStyle(updated.Kind).Render(updated.ID), formatter.NodeSummary(*updated))
			return nil
		},
	}

	flags.register(cmd.Flags())
	return cmd
}

func newNodeMoveCmd(app *App) *cobra.Command {
	var x, y float64

	cmd := &cobra.Command{
		Use:   "move <node>",
		Short: "Reposition a node",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := resolveCampaign(cmd, app)
			if err != nil {
				return err
			}
			g, err := app.Editor.Graph(cmd.Context(), c.ID)
			if err != nil {
				return err
			}
			node, err := resolveNode(g.Nodes, args[0])
			if err != nil {
				return err
			}
			if err := app.Editor.MoveNode(cmd.Context(), c.ID, node.ID, domain.Position{X: x, Y: y}); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Moved %s to (%.0f, %.0f)\n", node.ID, x, y)
			return nil
		},
	}

	cmd.Flags().Float64Var(&x, "x", 0, "Canvas X position")
	cmd.Flags().Float64Var(&y, "y", 0, "Canvas Y position")
	_ = cmd.MarkFlagRequired("x")
	_ = cmd.MarkFlagRequired("y")
	return cmd
}
