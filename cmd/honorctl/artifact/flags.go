// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package artifact

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/spf13/pflag"

	"github.com/luxfi/honor/cmd/honorctl/node"
)

const (
	CallerKey   = "caller"
	ParentKey   = "parent"
	ChildKey    = "child"
	BuilderKey  = "builder"
	LabelKey    = "label"
	AmountKey   = "amount"
	ArtifactKey = "artifact"
	HolderKey   = "holder"
)

func AddProposeFlags(flags *pflag.FlagSet) {
	flags.String(CallerKey, "", "Account holding the parent units that seed the proposal (required)")
	flags.String(ParentKey, "", "Parent artifact (required)")
	flags.String(BuilderKey, "", "Builder of the new artifact (defaults to the caller)")
	flags.String(LabelKey, "", "Label of the new artifact")
}

type ProposeConfig struct {
	Caller  ids.ShortID
	Parent  ids.ShortID
	Builder ids.ShortID
	Label   string
}

func ParseProposeFlags(flags *pflag.FlagSet, args []string) (*ProposeConfig, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	caller, err := node.GetAccount(flags, CallerKey)
	if err != nil {
		return nil, err
	}

	parent, err := node.GetAccount(flags, ParentKey)
	if err != nil {
		return nil, err
	}

	builder := caller
	if flags.Changed(BuilderKey) {
		builder, err = node.GetAccount(flags, BuilderKey)
		if err != nil {
			return nil, err
		}
	}

	label, err := flags.GetString(LabelKey)
	if err != nil {
		return nil, err
	}

	return &ProposeConfig{
		Caller:  caller,
		Parent:  parent,
		Builder: builder,
		Label:   label,
	}, nil
}

func AddEdgeFlags(flags *pflag.FlagSet) {
	flags.String(CallerKey, "", "Builder of the parent artifact (required)")
	flags.String(ParentKey, "", "Parent artifact (required)")
	flags.String(ChildKey, "", "Child artifact (required)")
}

type EdgeConfig struct {
	Caller ids.ShortID
	Parent ids.ShortID
	Child  ids.ShortID
}

func ParseEdgeFlags(flags *pflag.FlagSet, args []string) (*EdgeConfig, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	caller, err := node.GetAccount(flags, CallerKey)
	if err != nil {
		return nil, err
	}

	parent, err := node.GetAccount(flags, ParentKey)
	if err != nil {
		return nil, err
	}

	child, err := node.GetAccount(flags, ChildKey)
	if err != nil {
		return nil, err
	}

	return &EdgeConfig{
		Caller: caller,
		Parent: parent,
		Child:  child,
	}, nil
}

func AddVouchFlags(flags *pflag.FlagSet) {
	flags.String(CallerKey, "", "Account spending parent units (required)")
	flags.String(ParentKey, "", "Parent artifact (required)")
	flags.String(ChildKey, "", "Child artifact (required)")
	flags.String(AmountKey, "", "Parent units to vouch with (required)")
}

type VouchConfig struct {
	EdgeConfig
	Amount *uint256.Int
}

func ParseVouchFlags(flags *pflag.FlagSet, args []string) (*VouchConfig, error) {
	edge, err := ParseEdgeFlags(flags, args)
	if err != nil {
		return nil, err
	}

	amount, err := node.GetAmount(flags, AmountKey)
	if err != nil {
		return nil, err
	}

	return &VouchConfig{
		EdgeConfig: *edge,
		Amount:     amount,
	}, nil
}

func AddShowFlags(flags *pflag.FlagSet) {
	flags.String(ArtifactKey, "", "Artifact to inspect (defaults to the root)")
	flags.String(HolderKey, "", "Also report the units held by this account")
}

type ShowConfig struct {
	// Artifact is nil for the root artifact.
	Artifact *ids.ShortID
	// Holder is nil when no holder was asked for.
	Holder *ids.ShortID
}

func ParseShowFlags(flags *pflag.FlagSet, args []string) (*ShowConfig, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	var cfg ShowConfig
	if flags.Changed(ArtifactKey) {
		artifact, err := node.GetAccount(flags, ArtifactKey)
		if err != nil {
			return nil, err
		}
		cfg.Artifact = &artifact
	}
	if flags.Changed(HolderKey) {
		holder, err := node.GetAccount(flags, HolderKey)
		if err != nil {
			return nil, err
		}
		cfg.Holder = &holder
	}
	return &cfg, nil
}
