// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package flow

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/luxfi/honor/cmd/honorctl/node"
	"github.com/luxfi/honor/rewardflow"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "flow",
		Short: "Manages the reward-flow graph",
	}
	c.AddCommand(
		createCommand(),
		allocateCommand(),
		payForwardCommand(),
		redeemCommand(),
		showCommand(),
	)
	return c
}

func createCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "create",
		Short: "Attaches a reward flow to an artifact",
		RunE:  createFunc,
	}
	AddCreateFlags(c.Flags())
	return c
}

func createFunc(c *cobra.Command, args []string) error {
	config, err := ParseCreateFlags(c.Flags(), args)
	if err != nil {
		return err
	}
	return node.With(c, func(n *node.Node) error {
		artifact, err := n.Artifact(config.Artifact)
		if err != nil {
			return err
		}
		pool := n.Engine.Config().GerasPool
		if config.Pool != nil {
			pool = *config.Pool
		}
		flow, err := n.Engine.CreateRewardFlow(artifact, pool)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "created flow %s for %s\n", flow.Address, flow.Artifact)
		return nil
	})
}

func allocateCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "allocate",
		Short: "Sets the weight of an edge of the reward-flow graph",
		RunE:  allocateFunc,
	}
	AddAllocateFlags(c.Flags())
	return c
}

func allocateFunc(c *cobra.Command, args []string) error {
	config, err := ParseAllocateFlags(c.Flags(), args)
	if err != nil {
		return err
	}
	return node.With(c, func(n *node.Node) error {
		source, err := n.Artifact(config.Source)
		if err != nil {
			return err
		}
		target, err := n.Artifact(config.Target)
		if err != nil {
			return err
		}
		if err := n.Engine.SubmitAllocation(source, target, config.Weight); err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "allocated %d from %s to %s\n", config.Weight, source, target)
		return nil
	})
}

func payForwardCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "pay-forward",
		Short: "Splits the balance of a flow along its allocations",
		RunE:  payForwardFunc,
	}
	AddPayForwardFlags(c.Flags())
	return c
}

func payForwardFunc(c *cobra.Command, args []string) error {
	config, err := ParsePayForwardFlags(c.Flags(), args)
	if err != nil {
		return err
	}
	return node.With(c, func(n *node.Node) error {
		artifact, err := n.Artifact(config.Artifact)
		if err != nil {
			return err
		}
		w := c.OutOrStdout()
		if !config.Propagate {
			result, err := n.Engine.PayForward(artifact)
			if err != nil {
				return err
			}
			PrintResult(w, result)
			return nil
		}

		results, err := n.Engine.Propagate(artifact)
		if err != nil {
			return err
		}
		for _, result := range results {
			PrintResult(w, result)
		}
		return nil
	})
}

// PrintResult writes a human readable summary of [result] to [w].
func PrintResult(w io.Writer, result *rewardflow.PayForwardResult) {
	fmt.Fprintf(w, "%s paid forward %s, retained %s\n", result.Artifact, result.Balance, result.Retained)
	for _, transfer := range result.Transfers {
		fmt.Fprintf(w, "  -> %s %s\n", transfer.Target, transfer.Amount)
	}
}

func redeemCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "redeem",
		Short: "Redeems a Geras claim for external asset",
		RunE:  redeemFunc,
	}
	AddRedeemFlags(c.Flags())
	return c
}

func redeemFunc(c *cobra.Command, args []string) error {
	config, err := ParseRedeemFlags(c.Flags(), args)
	if err != nil {
		return err
	}
	return node.With(c, func(n *node.Node) error {
		artifact, err := n.Artifact(config.Artifact)
		if err != nil {
			return err
		}
		raw, err := n.Engine.RedeemReward(c.Context(), config.Caller, artifact, config.Amount)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "redeemed %s geras for %s raw asset\n", config.Amount, raw)
		return nil
	})
}

func showCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "show",
		Short: "Prints a reward flow",
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
		artifact, err := n.Artifact(config.Artifact)
		if err != nil {
			return err
		}
		flow, err := n.Engine.RewardFlow(artifact)
		if err != nil {
			return err
		}
		balance, err := n.Engine.FlowBalance(artifact)
		if err != nil {
			return err
		}

		w := c.OutOrStdout()
		fmt.Fprintf(w, "artifact %s\n", flow.Artifact)
		fmt.Fprintf(w, "address  %s\n", flow.Address)
		fmt.Fprintf(w, "pool     %s\n", flow.Pool)
		fmt.Fprintf(w, "balance  %s\n", balance)
		fmt.Fprintf(w, "weight   %d\n", flow.TotalWeight)
		for _, allocation := range flow.Allocations {
			fmt.Fprintf(w, "  -> %s %d\n", allocation.Target, allocation.Weight)
		}
		if config.Account == nil {
			return nil
		}
		claim, err := n.Engine.RewardClaimOf(artifact, *config.Account)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "claim    %s %s\n", *config.Account, claim)
		return nil
	})
}
