// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/honor/rewardflow"
	"github.com/luxfi/honor/state"
)

// CreateRewardFlow attaches a reward flow to [artifactID], fed from [pool].
func (e *Engine) CreateRewardFlow(artifactID, pool ids.ShortID) (*state.Flow, error) {
	var flow *state.Flow
	err := e.update("createFlow", func(now uint64) error {
		var err error
		flow, err = e.flows.Create(now, artifactID, pool)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("created reward flow",
		log.Stringer("artifact", artifactID),
		log.Stringer("address", flow.Address),
	)
	return flow, nil
}

// SubmitAllocation sets the weight of the edge [source] -> [target].
func (e *Engine) SubmitAllocation(source, target ids.ShortID, weight uint32) error {
	return e.update("allocate", func(uint64) error {
		return e.flows.SubmitAllocation(source, target, weight)
	})
}

// PayForward splits the balance of the flow of [artifactID] along its
// allocations.
func (e *Engine) PayForward(artifactID ids.ShortID) (*rewardflow.PayForwardResult, error) {
	var result *rewardflow.PayForwardResult
	err := e.update("payForward", func(uint64) error {
		var err error
		result, err = e.flows.PayForward(artifactID)
		return err
	})
	return result, err
}

// Propagate pays forward every flow reachable from [artifactID].
func (e *Engine) Propagate(artifactID ids.ShortID) ([]*rewardflow.PayForwardResult, error) {
	var results []*rewardflow.PayForwardResult
	err := e.update("propagate", func(uint64) error {
		var err error
		results, err = e.flows.Propagate(artifactID)
		return err
	})
	return results, err
}

// RedeemReward pays [amount] of [caller]'s Geras claim on [artifactID] out of
// the pool reserve, in the external asset. The claim is spent before the
// transfer and restored if the transfer fails.
func (e *Engine) RedeemReward(ctx context.Context, caller, artifactID ids.ShortID, amount *uint256.Int) (*uint256.Int, error) {
	e.lock.Lock()
	var raw *uint256.Int
	err := e.execute("redeem", func(uint64) error {
		if err := e.flows.Redeem(artifactID, caller, amount); err != nil {
			return err
		}
		var err error
		raw, err = e.geras.DrawReserve(ctx, amount)
		return err
	})
	e.lock.Unlock()
	if err != nil {
		return nil, err
	}

	if err := e.asset.Transfer(ctx, e.config.GerasPool, caller, raw); err != nil {
		e.log.Warn("redemption transfer failed",
			log.Stringer("caller", caller),
			log.Stringer("artifact", artifactID),
			log.Stringer("amount", raw),
			log.Err(err),
		)
		restoreErr := e.update("restoreRedeem", func(uint64) error {
			if err := e.geras.SettleOutflow(raw); err != nil {
				return err
			}
			if err := e.geras.RefillReserve(amount); err != nil {
				return err
			}
			return e.flows.Restore(artifactID, caller, amount)
		})
		if restoreErr != nil {
			e.log.Error("failed to restore redeemed claim",
				log.Stringer("caller", caller),
				log.Stringer("artifact", artifactID),
				log.Err(restoreErr),
			)
		}
		return nil, fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	if err := e.settleOutflow(raw); err != nil {
		return nil, err
	}
	e.log.Debug("redeemed reward",
		log.Stringer("caller", caller),
		log.Stringer("artifact", artifactID),
		log.Stringer("geras", amount),
		log.Stringer("raw", raw),
	)
	return raw, nil
}

// RewardClaimOf returns the Geras [account] can redeem from [artifactID].
func (e *Engine) RewardClaimOf(artifactID, account ids.ShortID) (*uint256.Int, error) {
	return view(e, func() (*uint256.Int, error) {
		return e.flows.ClaimOf(artifactID, account)
	})
}

// FlowBalance returns the Geras waiting in the flow of [artifactID].
func (e *Engine) FlowBalance(artifactID ids.ShortID) (*uint256.Int, error) {
	return view(e, func() (*uint256.Int, error) {
		return e.flows.Balance(artifactID)
	})
}

// RewardFlow returns the flow record of [artifactID].
func (e *Engine) RewardFlow(artifactID ids.ShortID) (*state.Flow, error) {
	return view(e, func() (*state.Flow, error) {
		return e.flows.Get(artifactID)
	})
}

// GerasBalanceOf returns the Geras held by [account].
func (e *Engine) GerasBalanceOf(account ids.ShortID) (*uint256.Int, error) {
	return view(e, func() (*uint256.Int, error) {
		return e.geras.Rewards().BalanceOf(account)
	})
}
