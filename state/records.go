// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
)

// Token selects one of the two internal ledgers.
type Token byte

const (
	Honor Token = iota
	Geras
)

func (t Token) String() string {
	switch t {
	case Honor:
		return "honor"
	case Geras:
		return "geras"
	default:
		return "unknown"
	}
}

// Globals holds the engine-wide singletons written at genesis.
type Globals struct {
	Root               ids.ShortID `serialize:"true"`
	Nonce              uint64      `serialize:"true"`
	GenesisTime        uint64      `serialize:"true"`
	LastDistribution   uint64      `serialize:"true"`
	TotalVirtualStaked uint256.Int `serialize:"true"`
	// PoolVirtual is the virtual amount of the external asset the pool has
	// accounted for, staked or held in the redemption reserve.
	PoolVirtual uint256.Int `serialize:"true"`
	// PendingOutflow is the raw amount committed to payouts that have not
	// left the pool yet.
	PendingOutflow uint256.Int `serialize:"true"`
}

// Artifact is a node of the contribution tree.
type Artifact struct {
	ID        ids.ShortID `serialize:"true"`
	Parent    ids.ShortID `serialize:"true"`
	Builder   ids.ShortID `serialize:"true"`
	Label     string      `serialize:"true"`
	CreatedAt uint64      `serialize:"true"`

	// Collateral is the Honor the artifact accounts for internally.
	Collateral uint256.Int `serialize:"true"`
	// Supply is the sum of every holding in this artifact.
	Supply      uint256.Int `serialize:"true"`
	LastAccrual uint64      `serialize:"true"`
	Validated   bool        `serialize:"true"`

	// RewardPerUnit is the Geras claimable per unit held, scaled by 1e18.
	RewardPerUnit uint256.Int `serialize:"true"`
	// RewardPool is the Geras escrowed for holders and not yet redeemed.
	RewardPool uint256.Int   `serialize:"true"`
	Children   []ids.ShortID `serialize:"true"`
}

func (a *Artifact) IsRoot() bool {
	return a.ID == a.Parent
}

// Claim is a holder's settled reward claim on an artifact. Debt is the part
// of Holding * RewardPerUnit that has already been settled into Amount.
type Claim struct {
	Amount uint256.Int `serialize:"true"`
	Debt   uint256.Int `serialize:"true"`
}

// Stake is the external asset a staker has committed to an artifact.
type Stake struct {
	Staker      ids.ShortID `serialize:"true"`
	Artifact    ids.ShortID `serialize:"true"`
	Raw         uint256.Int `serialize:"true"`
	Virtual     uint256.Int `serialize:"true"`
	LastUpdated uint64      `serialize:"true"`
}

// Allocation is a weighted edge of the reward-flow graph.
type Allocation struct {
	Target ids.ShortID `serialize:"true"`
	Weight uint32      `serialize:"true"`
}

// Flow is the reward-flow node attached to an artifact.
type Flow struct {
	Artifact    ids.ShortID  `serialize:"true"`
	Address     ids.ShortID  `serialize:"true"`
	Pool        ids.ShortID  `serialize:"true"`
	CreatedAt   uint64       `serialize:"true"`
	Allocations []Allocation `serialize:"true"`
	TotalWeight uint32       `serialize:"true"`
}
