// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package geras

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"

	"github.com/luxfi/honor/asset"
	"github.com/luxfi/honor/state"
	"github.com/luxfi/honor/utils/math"
)

// Target is a reward flow receiving emission for the stake behind Artifact.
type Target struct {
	Artifact ids.ShortID
	Address  ids.ShortID
}

// Emission is the Geras minted into one flow.
type Emission struct {
	Target
	Amount *uint256.Int
}

// Distribute mints the emission owed to [target] since the last distribution
// and restarts the distribution clock.
func (g *Geras) Distribute(now uint64, target Target) (*uint256.Int, error) {
	emissions, err := g.DistributeAll(now, []Target{target})
	if err != nil {
		return nil, err
	}
	return emissions[0].Amount, nil
}

// DistributeAll mints emission to every target over one shared window ending
// at [now].
func (g *Geras) DistributeAll(now uint64, targets []Target) ([]Emission, error) {
	globals, err := g.chain.GetGlobals()
	if err != nil {
		return nil, err
	}
	var elapsed uint64
	if now > globals.LastDistribution {
		elapsed = now - globals.LastDistribution
		globals.LastDistribution = now
		if err := g.chain.PutGlobals(globals); err != nil {
			return nil, err
		}
	}

	emissions := make([]Emission, len(targets))
	for i, target := range targets {
		weight, err := g.chain.GetArtifactStake(target.Artifact)
		if err != nil {
			return nil, err
		}
		amount, err := g.emission(&globals.TotalVirtualStaked, weight, elapsed)
		if err != nil {
			return nil, err
		}
		if !amount.IsZero() {
			if err := g.rewards.Mint(target.Address, amount); err != nil {
				return nil, err
			}
		}
		emissions[i] = Emission{
			Target: target,
			Amount: amount,
		}
	}
	return emissions, nil
}

// emission is total * rate * weight * elapsed / (denominator * total * year).
func (g *Geras) emission(total, weight *uint256.Int, elapsed uint64) (*uint256.Int, error) {
	if total.IsZero() || weight.IsZero() || elapsed == 0 {
		return new(uint256.Int), nil
	}
	perYear, err := math.Mul256(total, uint256.NewInt(g.config.EmissionRate))
	if err != nil {
		return nil, err
	}
	stakeTime, err := math.Mul256(weight, uint256.NewInt(elapsed))
	if err != nil {
		return nil, err
	}
	denominator, err := math.Mul256(total, uint256.NewInt(g.config.Denominator))
	if err != nil {
		return nil, err
	}
	denominator, err = math.Mul256(denominator, secondsPerYear)
	if err != nil {
		return nil, err
	}
	return math.MulDiv(perYear, stakeTime, denominator)
}

// MintToStaker mints the Honor every stake of [staker] earned since it was
// last updated. It returns the total Honor minted.
func (g *Geras) MintToStaker(now uint64, staker ids.ShortID) (*uint256.Int, error) {
	stakes, err := g.chain.GetStakes(staker)
	if err != nil {
		return nil, err
	}
	if len(stakes) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoStake, staker)
	}
	return g.mintStakes(now, stakes)
}

// MintToStakers runs MintToStaker for every staker.
func (g *Geras) MintToStakers(now uint64) (*uint256.Int, error) {
	stakes, err := g.chain.GetAllStakes()
	if err != nil {
		return nil, err
	}
	return g.mintStakes(now, stakes)
}

func (g *Geras) mintStakes(now uint64, stakes []*state.Stake) (*uint256.Int, error) {
	total := new(uint256.Int)
	for _, stake := range stakes {
		a, err := g.registry.Get(stake.Artifact)
		if err != nil {
			return nil, err
		}
		minted, err := g.mintStake(now, a, stake)
		if err != nil {
			return nil, err
		}
		if err := g.chain.PutStake(stake); err != nil {
			return nil, err
		}
		total.Add(total, minted)
	}
	return total, nil
}

// mintStake mints the Honor [stake] earned since its last update into [a] and
// credits the resulting units to the staker. The caller persists [stake].
func (g *Geras) mintStake(now uint64, a *state.Artifact, stake *state.Stake) (*uint256.Int, error) {
	if now <= stake.LastUpdated {
		return new(uint256.Int), nil
	}
	elapsed := uint256.NewInt(now - stake.LastUpdated)
	stake.LastUpdated = now

	rate, err := math.Mul256(g.config.StakerHonorRate, elapsed)
	if err != nil {
		return nil, err
	}
	denominator := new(uint256.Int).Mul(asset.Precision, secondsPerYear)
	amount, err := math.MulDiv(&stake.Virtual, rate, denominator)
	if err != nil {
		return nil, err
	}
	if amount.IsZero() {
		return amount, nil
	}
	if _, err := g.registry.Settle(a, now); err != nil {
		return nil, err
	}
	if _, err := g.ledger.MintInto(a, stake.Staker, amount); err != nil {
		return nil, err
	}
	return amount, nil
}
