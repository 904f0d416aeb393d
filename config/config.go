// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"

	"github.com/luxfi/honor/utils/units"
)

var (
	errZeroGenesisSupply = errors.New("genesis supply must be positive")
	errZeroCurveScale    = errors.New("curve scale must be positive")
	errZeroProposalSeed  = errors.New("proposal seed must be positive")
	errZeroDenominator   = errors.New("allocation denominator must be positive")
	errAccrualTooHigh    = errors.New("builder accrual exceeds 100% a year")

	// DefaultGerasPool custodies staked assets unless configured otherwise.
	DefaultGerasPool = ids.ShortID{'g', 'e', 'r', 'a', 's'}

	DefaultConfig = Config{
		GenesisSupply:         *units.Whole(10_000),
		RootLabel:             "root",
		CurveScale:            *uint256.NewInt(units.Honor),
		ProposalSeed:          *uint256.NewInt(units.Honor),
		RequireValidation:     false,
		BuilderAccrualBps:     100,
		AllocationDenominator: 1024,
		EmissionRate:          32,
		StakerHonorRate:       *uint256.NewInt(units.Honor),
		GerasPool:             DefaultGerasPool,
	}
)

// Config holds the economic parameters of an engine. They are fixed at
// genesis.
type Config struct {
	// GenesisSupply is the Honor backing the root artifact.
	GenesisSupply uint256.Int `json:"genesis-supply"`
	// GenesisHolder receives the root units minted at genesis.
	GenesisHolder ids.ShortID `json:"genesis-holder"`
	RootBuilder   ids.ShortID `json:"root-builder"`
	RootLabel     string      `json:"root-label"`
	CurveScale    uint256.Int `json:"curve-scale"`
	// ProposalSeed is the number of parent units a proposer burns to seed a
	// new artifact.
	ProposalSeed      uint256.Int `json:"proposal-seed"`
	RequireValidation bool        `json:"require-validation"`
	// BuilderAccrualBps is the yearly builder accrual in basis points of an
	// artifact's supply.
	BuilderAccrualBps     uint64 `json:"builder-accrual-bps"`
	AllocationDenominator uint32 `json:"allocation-denominator"`
	// EmissionRate is the yearly Geras emission per staked unit, over the
	// allocation denominator.
	EmissionRate uint64 `json:"emission-rate"`
	// StakerHonorRate is the yearly Honor minted per staked unit, scaled by
	// 1e18.
	StakerHonorRate uint256.Int `json:"staker-honor-rate"`
	GerasPool       ids.ShortID `json:"geras-pool"`
}

// GetConfig returns a Config. The input is unmarshalled onto the default
// values.
func GetConfig(b []byte) (*Config, error) {
	c := DefaultConfig

	// if bytes are empty keep default values
	if len(b) == 0 {
		return &c, nil
	}

	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	return &c, c.Verify()
}

func (c *Config) Verify() error {
	switch {
	case c.GenesisSupply.IsZero():
		return errZeroGenesisSupply
	case c.CurveScale.IsZero():
		return errZeroCurveScale
	case c.ProposalSeed.IsZero():
		return errZeroProposalSeed
	case c.AllocationDenominator == 0:
		return errZeroDenominator
	case c.BuilderAccrualBps > 10_000:
		return fmt.Errorf("%w: %d bps", errAccrualTooHigh, c.BuilderAccrualBps)
	default:
		return nil
	}
}
