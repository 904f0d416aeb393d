// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package flow

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/spf13/pflag"

	"github.com/luxfi/honor/cmd/honorctl/node"
)

const (
	ArtifactKey  = "artifact"
	PoolKey      = "pool"
	SourceKey    = "source"
	TargetKey    = "target"
	WeightKey    = "weight"
	PropagateKey = "propagate"
	CallerKey    = "caller"
	AmountKey    = "amount"
	AccountKey   = "account"
)

func AddCreateFlags(flags *pflag.FlagSet) {
	flags.String(ArtifactKey, "", "Artifact to attach the flow to (required)")
	flags.String(PoolKey, "", "Geras pool feeding the flow (defaults to the configured pool)")
}

type CreateConfig struct {
	Artifact ids.ShortID
	// Pool is nil for the configured pool.
	Pool *ids.ShortID
}

func ParseCreateFlags(flags *pflag.FlagSet, args []string) (*CreateConfig, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	artifact, err := node.GetAccount(flags, ArtifactKey)
	if err != nil {
		return nil, err
	}

	pool, err := node.GetOptionalAccount(flags, PoolKey)
	if err != nil {
		return nil, err
	}

	return &CreateConfig{
		Artifact: artifact,
		Pool:     pool,
	}, nil
}

func AddAllocateFlags(flags *pflag.FlagSet) {
	flags.String(SourceKey, "", "Artifact whose flow pays forward (required)")
	flags.String(TargetKey, "", "Artifact whose flow receives (required)")
	flags.Uint32(WeightKey, 0, "Share of the source balance, over the allocation denominator. 0 removes the edge")
}

type AllocateConfig struct {
	Source ids.ShortID
	Target ids.ShortID
	Weight uint32
}

func ParseAllocateFlags(flags *pflag.FlagSet, args []string) (*AllocateConfig, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	source, err := node.GetAccount(flags, SourceKey)
	if err != nil {
		return nil, err
	}

	target, err := node.GetAccount(flags, TargetKey)
	if err != nil {
		return nil, err
	}

	weight, err := flags.GetUint32(WeightKey)
	if err != nil {
		return nil, err
	}

	return &AllocateConfig{
		Source: source,
		Target: target,
		Weight: weight,
	}, nil
}

func AddPayForwardFlags(flags *pflag.FlagSet) {
	flags.String(ArtifactKey, "", "Artifact whose flow pays forward (required)")
	flags.Bool(PropagateKey, false, "Also pay forward every flow reachable from the artifact")
}

type PayForwardConfig struct {
	Artifact  ids.ShortID
	Propagate bool
}

func ParsePayForwardFlags(flags *pflag.FlagSet, args []string) (*PayForwardConfig, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	artifact, err := node.GetAccount(flags, ArtifactKey)
	if err != nil {
		return nil, err
	}

	propagate, err := flags.GetBool(PropagateKey)
	if err != nil {
		return nil, err
	}

	return &PayForwardConfig{
		Artifact:  artifact,
		Propagate: propagate,
	}, nil
}

func AddRedeemFlags(flags *pflag.FlagSet) {
	flags.String(CallerKey, "", "Account redeeming its claim (required)")
	flags.String(ArtifactKey, "", "Artifact the claim is on (required)")
	flags.String(AmountKey, "", "Geras to redeem (required)")
}

type RedeemConfig struct {
	Caller   ids.ShortID
	Artifact ids.ShortID
	Amount   *uint256.Int
}

func ParseRedeemFlags(flags *pflag.FlagSet, args []string) (*RedeemConfig, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	caller, err := node.GetAccount(flags, CallerKey)
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

	return &RedeemConfig{
		Caller:   caller,
		Artifact: artifact,
		Amount:   amount,
	}, nil
}

func AddShowFlags(flags *pflag.FlagSet) {
	flags.String(ArtifactKey, "", "Artifact whose flow to print (required)")
	flags.String(AccountKey, "", "Also report the claim of this account")
}

type ShowConfig struct {
	Artifact ids.ShortID
	Account  *ids.ShortID
}

func ParseShowFlags(flags *pflag.FlagSet, args []string) (*ShowConfig, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	artifact, err := node.GetAccount(flags, ArtifactKey)
	if err != nil {
		return nil, err
	}

	account, err := node.GetOptionalAccount(flags, AccountKey)
	if err != nil {
		return nil, err
	}

	return &ShowConfig{
		Artifact: artifact,
		Account:  account,
	}, nil
}
