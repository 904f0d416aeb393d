// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package emission

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/spf13/cobra"

	"github.com/luxfi/honor/cmd/honorctl/node"
)

const (
	ArtifactKey = "artifact"
	StakerKey   = "staker"
)

func DistributeCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "distribute",
		Short: "Mints the Geras emission owed to reward flows",
		RunE:  distributeFunc,
	}
	c.Flags().String(ArtifactKey, "", "Only distribute to the flow of this artifact")
	return c
}

func distributeFunc(c *cobra.Command, args []string) error {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		return err
	}
	artifact, err := node.GetOptionalAccount(flags, ArtifactKey)
	if err != nil {
		return err
	}
	return node.With(c, func(n *node.Node) error {
		w := c.OutOrStdout()
		if artifact != nil {
			id, err := n.Artifact(*artifact)
			if err != nil {
				return err
			}
			reward, err := n.Engine.DistributeGeras(id)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s %s\n", id, reward)
			return nil
		}

		emissions, err := n.Engine.DistributeAll()
		if err != nil {
			return err
		}
		for _, emission := range emissions {
			fmt.Fprintf(w, "%s %s\n", emission.Artifact, emission.Amount)
		}
		return nil
	})
}

func MintCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "mint",
		Short: "Mints the Honor earned by stakes",
		RunE:  mintFunc,
	}
	c.Flags().String(StakerKey, "", "Only mint to this staker")
	return c
}

func mintFunc(c *cobra.Command, args []string) error {
	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		return err
	}
	staker, err := node.GetOptionalAccount(flags, StakerKey)
	if err != nil {
		return err
	}
	return node.With(c, func(n *node.Node) error {
		var minted *uint256.Int
		if staker != nil {
			minted, err = n.Engine.MintToStaker(*staker)
		} else {
			minted, err = n.Engine.MintToStakers()
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(c.OutOrStdout(), "minted %s honor\n", minted)
		return nil
	})
}
