// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package artifact

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"

	"github.com/luxfi/honor/state"
	"github.com/luxfi/honor/utils/math"
)

// AddRewards escrows [amount] Geras for the holders of [a], pro rata to their
// holdings. With no holders the builder's claim receives it.
func (r *Registry) AddRewards(a *state.Artifact, amount *uint256.Int) error {
	if amount.IsZero() {
		return nil
	}
	pool, err := math.Add256(&a.RewardPool, amount)
	if err != nil {
		return fmt.Errorf("reward pool of %s: %w", a.ID, err)
	}
	a.RewardPool.Set(pool)

	if a.Supply.IsZero() {
		claim, err := r.chain.GetClaim(a.ID, a.Builder)
		if err != nil {
			return err
		}
		claim.Amount.Add(&claim.Amount, amount)
		if err := r.chain.PutClaim(a.ID, a.Builder, claim); err != nil {
			return err
		}
		return r.chain.PutArtifact(a)
	}

	perUnit, err := math.MulDiv(amount, RewardScale, &a.Supply)
	if err != nil {
		return err
	}
	rewardPerUnit, err := math.Add256(&a.RewardPerUnit, perUnit)
	if err != nil {
		return fmt.Errorf("reward per unit of %s: %w", a.ID, err)
	}
	a.RewardPerUnit.Set(rewardPerUnit)
	return r.chain.PutArtifact(a)
}

// ClaimOf returns the Geras [holder] could redeem from [a] right now.
func (r *Registry) ClaimOf(a *state.Artifact, holder ids.ShortID) (*uint256.Int, error) {
	holding, err := r.chain.GetHolding(a.ID, holder)
	if err != nil {
		return nil, err
	}
	claim, err := r.chain.GetClaim(a.ID, holder)
	if err != nil {
		return nil, err
	}
	pending, err := pendingReward(holding, &a.RewardPerUnit, claim)
	if err != nil {
		return nil, err
	}
	return pending.Add(pending, &claim.Amount), nil
}

// RedeemClaim removes [amount] from [holder]'s claim on [a] and from the
// artifact's reward pool.
func (r *Registry) RedeemClaim(a *state.Artifact, holder ids.ShortID, amount *uint256.Int) error {
	if _, err := r.settleClaim(a, holder); err != nil {
		return err
	}
	claim, err := r.chain.GetClaim(a.ID, holder)
	if err != nil {
		return err
	}
	if claim.Amount.Lt(amount) {
		return fmt.Errorf("%w: %s can redeem %s from %s, requested %s", ErrInsufficientClaim, holder, &claim.Amount, a.ID, amount)
	}
	pool, err := math.Sub256(&a.RewardPool, amount)
	if err != nil {
		return fmt.Errorf("%w: reward pool of %s holds %s", ErrInsufficientClaim, a.ID, &a.RewardPool)
	}
	claim.Amount.Sub(&claim.Amount, amount)
	a.RewardPool.Set(pool)
	if err := r.chain.PutClaim(a.ID, holder, claim); err != nil {
		return err
	}
	return r.chain.PutArtifact(a)
}

// RestoreClaim reverts a RedeemClaim whose payout failed.
func (r *Registry) RestoreClaim(a *state.Artifact, holder ids.ShortID, amount *uint256.Int) error {
	claim, err := r.chain.GetClaim(a.ID, holder)
	if err != nil {
		return err
	}
	claimAmount, err := math.Add256(&claim.Amount, amount)
	if err != nil {
		return err
	}
	pool, err := math.Add256(&a.RewardPool, amount)
	if err != nil {
		return err
	}
	claim.Amount.Set(claimAmount)
	a.RewardPool.Set(pool)
	if err := r.chain.PutClaim(a.ID, holder, claim); err != nil {
		return err
	}
	return r.chain.PutArtifact(a)
}

// settleClaim folds the reward [holder] earned since its last settlement into
// its claim and returns its current holding.
func (r *Registry) settleClaim(a *state.Artifact, holder ids.ShortID) (*uint256.Int, error) {
	holding, err := r.chain.GetHolding(a.ID, holder)
	if err != nil {
		return nil, err
	}
	claim, err := r.chain.GetClaim(a.ID, holder)
	if err != nil {
		return nil, err
	}
	pending, err := pendingReward(holding, &a.RewardPerUnit, claim)
	if err != nil {
		return nil, err
	}
	if pending.IsZero() {
		return holding, nil
	}
	claim.Amount.Add(&claim.Amount, pending)
	claim.Debt.Add(&claim.Debt, pending)
	return holding, r.chain.PutClaim(a.ID, holder, claim)
}

func pendingReward(holding, rewardPerUnit *uint256.Int, claim *state.Claim) (*uint256.Int, error) {
	earned, err := accumulated(holding, rewardPerUnit)
	if err != nil {
		return nil, err
	}
	if earned.Lt(&claim.Debt) {
		return new(uint256.Int), nil
	}
	return earned.Sub(earned, &claim.Debt), nil
}

func accumulated(holding, rewardPerUnit *uint256.Int) (*uint256.Int, error) {
	return math.MulDiv(holding, rewardPerUnit, RewardScale)
}
