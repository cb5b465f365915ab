package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/alexanderramin/drip/internal/domain"
	"github.com/spf13/cobra"
)

const campaignFlag = "campaign"

var errNoCampaign = errors.New("campaign is required (pass --campaign or run 'use <name>' in the shell)")

// resolveCampaign loads the campaign named by the --campaign flag.
func resolveCampaign(cmd *cobra.Command, app *App) (*domain.Campaign, error) {
	ref, err := cmd.Flags().GetString(campaignFlag)
	if err != nil {
		return nil, err
	}
	if ref == "" {
		return nil, errNoCampaign
	}
	return app.Campaigns.Resolve(cmd.Context(), ref)
}

// resolveNode finds a node in the campaign graph. A bare number n matches
// the single node whose id ends in "-n", so "3" finds "email-3".
func resolveNode(nodes []domain.Node, ref string) (domain.Node, error) {
	for _, n := range nodes {
		if n.ID == ref {
			return n, nil
		}
	}
	if seq, err := strconv.Atoi(ref); err == nil && seq > 0 {
		suffix := "-" + ref
		var match []domain.Node
		for _, n := range nodes {
			if len(n.ID) > len(suffix) && n.ID[len(n.ID)-len(suffix):] == suffix {
				match = append(match, n)
			}
		}
		if len(match) == 1 {
			return match[0], nil
		}
	}
	return domain.Node{}, fmt.Errorf("node %q not found", ref)
}

func parseKind(s string) (domain.NodeKind, error) {
	k := domain.NodeKind(s)
	if !k.Droppable() {
		return "", fmt.Errorf("invalid node kind %q (delay|email|condition)", s)
	}
	return k, nil
}

func parsePort(s string) (domain.Port, error) {
	switch domain.Port(s) {
	case domain.PortNone, domain.PortYes, domain.PortNo:
		return domain.Port(s), nil
	}
	return "", fmt.Errorf("invalid port %q (yes|no)", s)
}
