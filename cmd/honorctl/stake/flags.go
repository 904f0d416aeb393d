// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package stake

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/spf13/pflag"

	"github.com/luxfi/honor/cmd/honorctl/node"
)

const (
	StakerKey   = "staker"
	ArtifactKey = "artifact"
	AmountKey   = "amount"
	FromKey     = "from"
)

func AddStakeFlags(flags *pflag.FlagSet, amountUsage string) {
	flags.String(StakerKey, "", "Staker (required)")
	flags.String(ArtifactKey, "", "Artifact the stake backs (required)")
	flags.String(AmountKey, "", amountUsage)
}

type StakeConfig struct {
	Staker   ids.ShortID
	Artifact ids.ShortID
	Amount   *uint256.Int
}

func ParseStakeFlags(flags *pflag.FlagSet, args []string) (*StakeConfig, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	staker, err := node.GetAccount(flags, StakerKey)
	if err != nil {
		return nil, err
	}

	artifact, err := node.GetAccount(flags, ArtifactKey)
	if err != nil {
		return nil, err
	}

	amount, err := node.GetAmount(flags, AmountKey)
	if err != nil {
		return nil, err
	}

	return &StakeConfig{
		Staker:   staker,
		Artifact: artifact,
		Amount:   amount,
	}, nil
}

func AddFundFlags(flags *pflag.FlagSet) {
	flags.String(FromKey, "", "Account sending the external asset (required)")
	flags.String(AmountKey, "", "Raw external asset to add to the reserve (required)")
}

type FundConfig struct {
	From   ids.ShortID
	Amount *uint256.Int
}

func ParseFundFlags(flags *pflag.FlagSet, args []string) (*FundConfig, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	from, err := node.GetAccount(flags, FromKey)
	if err != nil {
		return nil, err
	}

	amount, err := node.GetAmount(flags, AmountKey)
	if err != nil {
		return nil, err
	}

	return &FundConfig{
		From:   from,
		Amount: amount,
	}, nil
}
