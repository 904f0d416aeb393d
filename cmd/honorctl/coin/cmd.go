// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package coin

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luxfi/honor/cmd/honorctl/node"
)

func SendCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "send",
		Short: "Transfers Honor between accounts",
		RunE:  sendFunc,
	}
	AddSendFlags(c.Flags())
	return c
}

func sendFunc(c *cobra.Command, args []string) error {
	config, err := ParseSendFlags(c.Flags(), args)
	if err != nil {
		return err
	}
	return node.With(c, func(n *node.Node) error {
		if err := n.Engine.SendCoin(config.From, config.To, config.Amount); err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "sent %s honor from %s to %s\n", config.Amount, config.From, config.To)
		return nil
	})
}

func BalanceCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "balance",
		Short: "Prints the Honor and Geras balances of an account",
		RunE:  balanceFunc,
	}
	AddBalanceFlags(c.Flags())
	return c
}

func balanceFunc(c *cobra.Command, args []string) error {
	account, err := ParseBalanceFlags(c.Flags(), args)
	if err != nil {
		return err
	}
	return node.With(c, func(n *node.Node) error {
		honor, err := n.Engine.BalanceOf(account)
		if err != nil {
			return err
		}
		geras, err := n.Engine.GerasBalanceOf(account)
		if err != nil {
			return err
		}
		raw, err := n.Asset.BalanceOf(c.Context(), account)
		if err != nil {
			return err
		}
		w := c.OutOrStdout()
		fmt.Fprintf(w, "honor %s\n", honor)
		fmt.Fprintf(w, "geras %s\n", geras)
		fmt.Fprintf(w, "asset %s\n", raw)
		return nil
	})
}
