// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package artifact

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luxfi/honor/cmd/honorctl/node"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "artifact",
		Short: "Manages the artifact tree",
	}
	c.AddCommand(
		proposeCommand(),
		validateCommand(),
		vouchCommand(),
		showCommand(),
		settleCommand(),
	)
	return c
}

func proposeCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "propose",
		Short: "Proposes a child artifact",
		RunE:  proposeFunc,
	}
	AddProposeFlags(c.Flags())
	return c
}

func proposeFunc(c *cobra.Command, args []string) error {
	config, err := ParseProposeFlags(c.Flags(), args)
	if err != nil {
		return err
	}
	return node.With(c, func(n *node.Node) error {
		parent, err := n.Artifact(config.Parent)
		if err != nil {
			return err
		}
		id, err := n.Engine.ProposeArtifact(config.Caller, parent, config.Builder, config.Label)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "proposed artifact %s\n", id)
		return nil
	})
}

func validateCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "validate",
		Short: "Validates and seeds a proposed child artifact",
		RunE:  validateFunc,
	}
	AddEdgeFlags(c.Flags())
	return c
}

func validateFunc(c *cobra.Command, args []string) error {
	config, err := ParseEdgeFlags(c.Flags(), args)
	if err != nil {
		return err
	}
	return node.With(c, func(n *node.Node) error {
		parent, err := n.Artifact(config.Parent)
		if err != nil {
			return err
		}
		if err := n.Engine.ValidateArtifact(config.Caller, parent, config.Child); err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "validated artifact %s\n", config.Child)
		return nil
	})
}

func vouchCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "vouch",
		Short: "Spends parent units to back a child artifact",
		RunE:  vouchFunc,
	}
	AddVouchFlags(c.Flags())
	return c
}

func vouchFunc(c *cobra.Command, args []string) error {
	config, err := ParseVouchFlags(c.Flags(), args)
	if err != nil {
		return err
	}
	return node.With(c, func(n *node.Node) error {
		parent, err := n.Artifact(config.Parent)
		if err != nil {
			return err
		}
		result, err := n.Engine.Vouch(config.Caller, parent, config.Child, config.Amount)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "released %s honor, minted %s units\n", result.Released, result.Minted)
		return nil
	})
}

func showCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "show",
		Short: "Prints an artifact",
		RunE:  showFunc,
	}
	AddShowFlags(c.Flags())
	return c
}

func showFunc(c *cobra.Command, args []string) error {
	config, err := ParseShowFlags(c.Flags(), args)
	if err != nil {
		return err
	}
	return node.With(c, func(n *node.Node) error {
		id := node.RootAlias
		if config.Artifact != nil {
			id = *config.Artifact
		}
		id, err := n.Artifact(id)
		if err != nil {
			return err
		}
		a, err := n.Engine.Artifact(id)
		if err != nil {
			return err
		}
		pending, err := n.Engine.PendingAccrual(id)
		if err != nil {
			return err
		}

		w := c.OutOrStdout()
		fmt.Fprintf(w, "artifact   %s\n", a.ID)
		fmt.Fprintf(w, "label      %s\n", a.Label)
		fmt.Fprintf(w, "parent     %s\n", a.Parent)
		fmt.Fprintf(w, "builder    %s\n", a.Builder)
		fmt.Fprintf(w, "validated  %t\n", a.Validated)
		fmt.Fprintf(w, "collateral %s\n", &a.Collateral)
		fmt.Fprintf(w, "supply     %s\n", &a.Supply)
		fmt.Fprintf(w, "pending    %s\n", pending)
		fmt.Fprintf(w, "children   %d\n", len(a.Children))
		for _, child := range a.Children {
			fmt.Fprintf(w, "  %s\n", child)
		}
		if config.Holder == nil {
			return nil
		}
		units, err := n.Engine.BalanceOfArtifact(id, *config.Holder)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "holding    %s %s\n", *config.Holder, units)
		return nil
	})
}

func settleCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "settle",
		Short: "Credits the pending builder accrual of an artifact",
		RunE:  settleFunc,
	}
	AddShowFlags(c.Flags())
	return c
}

func settleFunc(c *cobra.Command, args []string) error {
	config, err := ParseShowFlags(c.Flags(), args)
	if err != nil {
		return err
	}
	return node.With(c, func(n *node.Node) error {
		id := node.RootAlias
		if config.Artifact != nil {
			id = *config.Artifact
		}
		id, err := n.Artifact(id)
		if err != nil {
			return err
		}
		accrual, err := n.Engine.SettleAccrual(id)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "settled %s units to the builder of %s\n", accrual, id)
		return nil
	})
}
