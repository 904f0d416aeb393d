// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"context"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/honor/geras"
	"github.com/luxfi/honor/state"
)

// StakeAsset attributes the external asset sent to the Geras pool since the
// last stake to [caller]'s stake in [artifactID]. It returns the virtual
// units added.
func (e *Engine) StakeAsset(ctx context.Context, caller, artifactID ids.ShortID) (*uint256.Int, error) {
	var deposit *uint256.Int
	err := e.update("stake", func(now uint64) error {
		var err error
		_, deposit, err = e.geras.Stake(ctx, now, caller, artifactID)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.log.Info("staked",
		log.Stringer("staker", caller),
		log.Stringer("artifact", artifactID),
		log.Stringer("virtual", deposit),
	)
	return deposit, e.refreshAll()
}

// UnstakeAsset returns [virtual] units of [caller]'s stake in [artifactID]
// from the pool. The stake is reduced before the transfer and restored if the
// transfer fails.
func (e *Engine) UnstakeAsset(ctx context.Context, caller, artifactID ids.ShortID, virtual *uint256.Int) (*uint256.Int, error) {
	e.lock.Lock()
	var raw *uint256.Int
	err := e.execute("unstake", func(now uint64) error {
		var err error
		raw, err = e.geras.Unstake(ctx, now, caller, artifactID, virtual)
		return err
	})
	e.lock.Unlock()
	if err != nil {
		return nil, err
	}

	if err := e.asset.Transfer(ctx, e.config.GerasPool, caller, raw); err != nil {
		e.log.Warn("unstake transfer failed",
			log.Stringer("staker", caller),
			log.Stringer("artifact", artifactID),
			log.Stringer("amount", raw),
			log.Err(err),
		)
		restoreErr := e.update("restoreStake", func(uint64) error {
			if err := e.geras.SettleOutflow(raw); err != nil {
				return err
			}
			return e.geras.RestoreStake(ctx, caller, artifactID, virtual)
		})
		if restoreErr != nil {
			e.log.Error("failed to restore stake",
				log.Stringer("staker", caller),
				log.Stringer("artifact", artifactID),
				log.Err(restoreErr),
			)
		}
		return nil, fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	if err := e.settleOutflow(raw); err != nil {
		return nil, err
	}
	e.log.Info("unstaked",
		log.Stringer("staker", caller),
		log.Stringer("artifact", artifactID),
		log.Stringer("raw", raw),
	)
	return raw, e.refreshAll()
}

// settleOutflow clears a payout that has left the pool.
func (e *Engine) settleOutflow(raw *uint256.Int) error {
	err := e.update("settleOutflow", func(uint64) error {
		return e.geras.SettleOutflow(raw)
	})
	if err != nil {
		e.log.Error("failed to settle payout",
			log.Stringer("amount", raw),
			log.Err(err),
		)
	}
	return err
}

// PendingOutflow returns the raw external asset committed to payouts that
// have not left the pool yet.
func (e *Engine) PendingOutflow() (*uint256.Int, error) {
	return view(e, e.geras.PendingOutflow)
}

// FundReserve sweeps external asset sent to the Geras pool into the reserve
// backing redemptions.
func (e *Engine) FundReserve(ctx context.Context) (*uint256.Int, error) {
	var added *uint256.Int
	err := e.update("fundReserve", func(uint64) error {
		var err error
		added, err = e.geras.FundReserve(ctx)
		return err
	})
	return added, err
}

// Reserve returns the virtual units available to redemptions.
func (e *Engine) Reserve() (*uint256.Int, error) {
	return view(e, e.geras.Reserve)
}

// DistributeGeras mints the emission owed to the flow of [artifactID].
func (e *Engine) DistributeGeras(artifactID ids.ShortID) (*uint256.Int, error) {
	var reward *uint256.Int
	err := e.update("distribute", func(now uint64) error {
		flow, err := e.flows.Get(artifactID)
		if err != nil {
			return err
		}
		reward, err = e.geras.Distribute(now, geras.Target{
			Artifact: flow.Artifact,
			Address:  flow.Address,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	e.metrics.AddGerasEmitted(reward)
	return reward, nil
}

// DistributeAll mints the emission owed to every flow over one window.
func (e *Engine) DistributeAll() ([]geras.Emission, error) {
	var emissions []geras.Emission
	err := e.update("distributeAll", func(now uint64) error {
		flows, err := e.flows.Flows()
		if err != nil {
			return err
		}
		targets := make([]geras.Target, len(flows))
		for i, flow := range flows {
			targets[i] = geras.Target{
				Artifact: flow.Artifact,
				Address:  flow.Address,
			}
		}
		emissions, err = e.geras.DistributeAll(now, targets)
		return err
	})
	if err != nil {
		return nil, err
	}
	for _, emission := range emissions {
		e.metrics.AddGerasEmitted(emission.Amount)
	}
	return emissions, nil
}

// MintToStaker mints the Honor earned by every stake of [staker].
func (e *Engine) MintToStaker(staker ids.ShortID) (*uint256.Int, error) {
	var minted *uint256.Int
	err := e.update("mintToStaker", func(now uint64) error {
		var err error
		minted, err = e.geras.MintToStaker(now, staker)
		return err
	})
	if err != nil {
		return nil, err
	}
	return minted, e.refreshAll()
}

// MintToStakers mints the Honor earned by every stake.
func (e *Engine) MintToStakers() (*uint256.Int, error) {
	var minted *uint256.Int
	err := e.update("mintToStakers", func(now uint64) error {
		var err error
		minted, err = e.geras.MintToStakers(now)
		return err
	})
	if err != nil {
		return nil, err
	}
	return minted, e.refreshAll()
}

func (e *Engine) TotalVirtualStaked() (*uint256.Int, error) {
	return view(e, e.geras.TotalVirtualStaked)
}

// StakedAsset returns the virtual units staked behind [artifactID].
func (e *Engine) StakedAsset(artifactID ids.ShortID) (*uint256.Int, error) {
	return view(e, func() (*uint256.Int, error) {
		return e.geras.StakedAsset(artifactID)
	})
}

// Stakes returns every stake of [staker].
func (e *Engine) Stakes(staker ids.ShortID) ([]*state.Stake, error) {
	return view(e, func() ([]*state.Stake, error) {
		return e.geras.Stakes(staker)
	})
}

// LastUpdated returns when [staker] last had Honor emission settled.
func (e *Engine) LastUpdated(staker ids.ShortID) (uint64, error) {
	return view(e, func() (uint64, error) {
		return e.geras.LastUpdated(staker)
	})
}

func (e *Engine) refreshAll() error {
	e.lock.Lock()
	defer e.lock.Unlock()

	if err := e.refreshSupply(); err != nil {
		return err
	}
	return e.refreshStake()
}
