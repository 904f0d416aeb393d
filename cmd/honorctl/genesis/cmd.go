// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luxfi/honor/cmd/honorctl/node"
)

func Command() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Creates the engine database and writes the genesis state",
		Args:  cobra.NoArgs,
		RunE:  initFunc,
	}
}

func initFunc(c *cobra.Command, _ []string) error {
	return node.With(c, func(n *node.Node) error {
		root, err := n.Engine.RootArtifact()
		if err != nil {
			return err
		}
		supply, err := n.Engine.HonorSupply()
		if err != nil {
			return err
		}
		cfg := n.Engine.Config()
		fmt.Fprintf(c.OutOrStdout(), "root artifact %s\nhonor supply %s\ngenesis holder %s\n", root, supply, cfg.GenesisHolder)
		return nil
	})
}
