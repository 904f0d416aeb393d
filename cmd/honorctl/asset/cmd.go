// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package asset drives the local rebasing token that stands in for the
// external staking asset.
package asset

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luxfi/honor/cmd/honorctl/node"
)

const (
	ToKey          = "to"
	AmountKey      = "amount"
	NumeratorKey   = "numerator"
	DenominatorKey = "denominator"
)

func Command() *cobra.Command {
	c := &cobra.Command{
		Use:   "asset",
		Short: "Manages the local external asset",
	}
	c.AddCommand(
		mintCommand(),
		rebaseCommand(),
	)
	return c
}

func mintCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "mint",
		Short: "Credits raw external asset to an account",
		RunE:  mintFunc,
	}
	flags := c.Flags()
	flags.String(ToKey, "", "Recipient (required)")
	flags.String(AmountKey, "", "Raw amount to credit (required)")
	return c
}

func mintFunc(c *cobra.Command, args []string) error {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		return err
	}
	to, err := node.GetAccount(flags, ToKey)
	if err != nil {
		return err
	}
	amount, err := node.GetAmount(flags, AmountKey)
	if err != nil {
		return err
	}
	return node.With(c, func(n *node.Node) error {
		if err := n.Asset.Mint(to, amount); err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "minted %s raw asset to %s\n", amount, to)
		return nil
	})
}

func rebaseCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "rebase",
		Short: "Scales every raw balance by numerator/denominator",
		RunE:  rebaseFunc,
	}
	flags := c.Flags()
	flags.Uint64(NumeratorKey, 1, "Rebase numerator")
	flags.Uint64(DenominatorKey, 1, "Rebase denominator")
	return c
}

func rebaseFunc(c *cobra.Command, args []string) error {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		return err
	}
	numerator, err := flags.GetUint64(NumeratorKey)
	if err != nil {
		return err
	}
	denominator, err := flags.GetUint64(DenominatorKey)
	if err != nil {
		return err
	}
	return node.With(c, func(n *node.Node) error {
		if err := n.Asset.Rebase(numerator, denominator); err != nil {
			return err
		}
		factor, err := n.Asset.RebaseFactor(c.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "rebase factor %s\n", factor)
		return nil
	})
}
