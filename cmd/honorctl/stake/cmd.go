// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package stake

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luxfi/honor/cmd/honorctl/node"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "stake",
		Short: "Manages stakes of the external asset",
	}
	c.AddCommand(
		depositCommand(),
		withdrawCommand(),
		fundCommand(),
		showCommand(),
	)
	return c
}

func depositCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "deposit",
		Short: "Sends external asset to the Geras pool and stakes it behind an artifact",
		RunE:  depositFunc,
	}
	AddStakeFlags(c.Flags(), "Raw external asset to stake (required)")
	return c
}

func depositFunc(c *cobra.Command, args []string) error {
	config, err := ParseStakeFlags(c.Flags(), args)
	if err != nil {
		return err
	}
	return node.With(c, func(n *node.Node) error {
		ctx := c.Context()
		artifact, err := n.Artifact(config.Artifact)
		if err != nil {
			return err
		}
		pool := n.Engine.Config().GerasPool
		if err := n.Asset.Transfer(ctx, config.Staker, pool, config.Amount); err != nil {
			return err
		}
		virtual, err := n.Engine.StakeAsset(ctx, config.Staker, artifact)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "staked %s virtual units behind %s\n", virtual, artifact)
		return nil
	})
}

func withdrawCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "withdraw",
		Short: "Returns staked external asset",
		RunE:  withdrawFunc,
	}
	AddStakeFlags(c.Flags(), "Virtual units to withdraw (required)")
	return c
}

func withdrawFunc(c *cobra.Command, args []string) error {
	config, err := ParseStakeFlags(c.Flags(), args)
	if err != nil {
		return err
	}
	return node.With(c, func(n *node.Node) error {
		artifact, err := n.Artifact(config.Artifact)
		if err != nil {
			return err
		}
		raw, err := n.Engine.UnstakeAsset(c.Context(), config.Staker, artifact, config.Amount)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "returned %s raw asset to %s\n", raw, config.Staker)
		return nil
	})
}

func fundCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "fund",
		Short: "Adds external asset to the reserve backing Geras redemptions",
		RunE:  fundFunc,
	}
	AddFundFlags(c.Flags())
	return c
}

func fundFunc(c *cobra.Command, args []string) error {
	config, err := ParseFundFlags(c.Flags(), args)
	if err != nil {
		return err
	}
	return node.With(c, func(n *node.Node) error {
		ctx := c.Context()
		pool := n.Engine.Config().GerasPool
		if err := n.Asset.Transfer(ctx, config.From, pool, config.Amount); err != nil {
			return err
		}
		added, err := n.Engine.FundReserve(ctx)
		if err != nil {
			return err
		}
		reserve, err := n.Engine.Reserve()
		if err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "added %s virtual units, reserve %s\n", added, reserve)
		return nil
	})
}

func showCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "show",
		Short: "Prints the stakes of an account, or the pool totals",
		RunE:  showFunc,
	}
	c.Flags().String(StakerKey, "", "Staker to inspect")
	return c
}

func showFunc(c *cobra.Command, args []string) error {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		return err
	}
	staker, err := node.GetOptionalAccount(flags, StakerKey)
	if err != nil {
		return err
	}
	return node.With(c, func(n *node.Node) error {
		w := c.OutOrStdout()
		if staker == nil {
			total, err := n.Engine.TotalVirtualStaked()
			if err != nil {
				return err
			}
			reserve, err := n.Engine.Reserve()
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "total virtual staked %s\nreserve %s\n", total, reserve)
			return nil
		}

		stakes, err := n.Engine.Stakes(*staker)
		if err != nil {
			return err
		}
		for _, s := range stakes {
			fmt.Fprintf(w, "%s raw %s virtual %s updated %d\n", s.Artifact, &s.Raw, &s.Virtual, s.LastUpdated)
		}
		return nil
	})
}
