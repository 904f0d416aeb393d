// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luxfi/honor/cmd/honorctl/artifact"
	"github.com/luxfi/honor/cmd/honorctl/asset"
	"github.com/luxfi/honor/cmd/honorctl/coin"
	"github.com/luxfi/honor/cmd/honorctl/emission"
	"github.com/luxfi/honor/cmd/honorctl/flow"
	"github.com/luxfi/honor/cmd/honorctl/genesis"
	"github.com/luxfi/honor/cmd/honorctl/node"
	"github.com/luxfi/honor/cmd/honorctl/run"
	"github.com/luxfi/honor/cmd/honorctl/stake"
)

func main() {
	cmd := &cobra.Command{
		Use:          "honorctl",
		Short:        "Operates a local Honor accounting engine",
		SilenceUsage: true,
	}
	node.AddFlags(cmd.PersistentFlags())
	cmd.AddCommand(
		genesis.Command(),
		artifact.Command(),
		coin.SendCommand(),
		coin.BalanceCommand(),
		stake.Command(),
		emission.DistributeCommand(),
		emission.MintCommand(),
		flow.Command(),
		asset.Command(),
		run.Command(),
	)
	ctx := context.Background()
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "command failed %v\n", err)
		os.Exit(1)
	}
}
