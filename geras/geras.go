// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package geras turns staked external asset into two streams: Geras emission
// into reward flows, weighted by the stake behind each artifact, and Honor
// minted into the staked artifact on behalf of each staker.
package geras

import (
	"context"
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/ids"

	"github.com/luxfi/honor/artifact"
	"github.com/luxfi/honor/asset"
	"github.com/luxfi/honor/honor"
	"github.com/luxfi/honor/state"
	"github.com/luxfi/honor/token"
	"github.com/luxfi/honor/utils/math"
	"github.com/luxfi/honor/utils/units"
)

var (
	ErrInvalidAmount       = honor.ErrInvalidAmount
	ErrInsufficientBalance = token.ErrInsufficientBalance
	ErrNoStake             = errors.New("no stake")
	ErrInsufficientReserve = errors.New("insufficient reward reserve")

	secondsPerYear = uint256.NewInt(units.SecondsPerYear)
)

type Config struct {
	// Pool is the account that custodies the staked external asset.
	Pool ids.ShortID
	// EmissionRate is the Geras emitted per year per unit of allocation
	// weight, over Denominator.
	EmissionRate uint64
	Denominator  uint64
	// StakerHonorRate is the Honor minted per virtual unit staked per year,
	// scaled by asset.Precision.
	StakerHonorRate *uint256.Int
}

// Geras keeps the stake table and the emission clock.
type Geras struct {
	config   Config
	chain    state.Chain
	registry *artifact.Registry
	ledger   *honor.Ledger
	rewards  *token.Token
	asset    asset.Asset
}

func New(
	config Config,
	chain state.Chain,
	registry *artifact.Registry,
	ledger *honor.Ledger,
	ext asset.Asset,
) *Geras {
	return &Geras{
		config:   config,
		chain:    chain,
		registry: registry,
		ledger:   ledger,
		rewards:  token.New(chain, state.Geras),
		asset:    ext,
	}
}

func (g *Geras) Pool() ids.ShortID {
	return g.config.Pool
}

// Rewards is the Geras ledger.
func (g *Geras) Rewards() *token.Token {
	return g.rewards
}

// Stake attributes the pool's unaccounted external asset to [staker]'s stake
// in [artifactID] and returns the virtual units added.
func (g *Geras) Stake(ctx context.Context, now uint64, staker, artifactID ids.ShortID) (*state.Stake, *uint256.Int, error) {
	a, err := g.registry.Get(artifactID)
	if err != nil {
		return nil, nil, err
	}
	globals, err := g.chain.GetGlobals()
	if err != nil {
		return nil, nil, err
	}
	factor, poolVirtual, err := g.poolVirtual(ctx, globals)
	if err != nil {
		return nil, nil, err
	}
	if !poolVirtual.Gt(&globals.PoolVirtual) {
		return nil, nil, fmt.Errorf("%w: pool %s holds nothing new to stake", ErrInvalidAmount, g.config.Pool)
	}
	deposit := new(uint256.Int).Sub(poolVirtual, &globals.PoolVirtual)
	rawDeposit, err := asset.ToRaw(deposit, factor)
	if err != nil {
		return nil, nil, err
	}

	stake, err := g.chain.GetStake(staker, artifactID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		stake = &state.Stake{
			Staker:      staker,
			Artifact:    artifactID,
			LastUpdated: now,
		}
	case err != nil:
		return nil, nil, err
	default:
		// emission up to now accrues at the old stake size
		if _, err := g.mintStake(now, a, stake); err != nil {
			return nil, nil, err
		}
	}

	if globals.TotalVirtualStaked.IsZero() {
		globals.LastDistribution = now
	}
	totalStaked, err := math.Add256(&globals.TotalVirtualStaked, deposit)
	if err != nil {
		return nil, nil, err
	}
	globals.TotalVirtualStaked.Set(totalStaked)
	globals.PoolVirtual.Set(poolVirtual)
	if err := g.chain.PutGlobals(globals); err != nil {
		return nil, nil, err
	}

	weight, err := g.chain.GetArtifactStake(artifactID)
	if err != nil {
		return nil, nil, err
	}
	if err := g.chain.SetArtifactStake(artifactID, weight.Add(weight, deposit)); err != nil {
		return nil, nil, err
	}

	stake.Virtual.Add(&stake.Virtual, deposit)
	stake.Raw.Add(&stake.Raw, rawDeposit)
	return stake, deposit, g.chain.PutStake(stake)
}

// Unstake removes [virtual] units from [staker]'s stake in [artifactID] and
// returns the raw amount owed to the staker. The caller pays it out.
func (g *Geras) Unstake(ctx context.Context, now uint64, staker, artifactID ids.ShortID, virtual *uint256.Int) (*uint256.Int, error) {
	if virtual == nil || virtual.IsZero() {
		return nil, ErrInvalidAmount
	}
	stake, err := g.chain.GetStake(staker, artifactID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s in %s", ErrNoStake, staker, artifactID)
	}
	if err != nil {
		return nil, err
	}
	if stake.Virtual.Lt(virtual) {
		return nil, fmt.Errorf("%w: %s staked %s in %s, unstaking %s", ErrInsufficientBalance, staker, &stake.Virtual, artifactID, virtual)
	}
	a, err := g.registry.Get(artifactID)
	if err != nil {
		return nil, err
	}
	if _, err := g.mintStake(now, a, stake); err != nil {
		return nil, err
	}

	factor, err := g.asset.RebaseFactor(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := asset.ToRaw(virtual, factor)
	if err != nil {
		return nil, err
	}

	principal, err := math.MulDiv(&stake.Raw, virtual, &stake.Virtual)
	if err != nil {
		return nil, err
	}
	stake.Raw.Sub(&stake.Raw, principal)
	stake.Virtual.Sub(&stake.Virtual, virtual)
	if err := g.chain.PutStake(stake); err != nil {
		return nil, err
	}

	weight, err := g.chain.GetArtifactStake(artifactID)
	if err != nil {
		return nil, err
	}
	if err := g.chain.SetArtifactStake(artifactID, weight.Sub(weight, virtual)); err != nil {
		return nil, err
	}

	globals, err := g.chain.GetGlobals()
	if err != nil {
		return nil, err
	}
	globals.TotalVirtualStaked.Sub(&globals.TotalVirtualStaked, virtual)
	globals.PoolVirtual.Sub(&globals.PoolVirtual, virtual)
	if err := addOutflow(globals, raw); err != nil {
		return nil, err
	}
	return raw, g.chain.PutGlobals(globals)
}

// RestoreStake reverts an Unstake whose payout failed. Emission minted by the
// Unstake is kept.
func (g *Geras) RestoreStake(ctx context.Context, staker, artifactID ids.ShortID, virtual *uint256.Int) error {
	stake, err := g.chain.GetStake(staker, artifactID)
	if err != nil {
		return err
	}
	factor, err := g.asset.RebaseFactor(ctx)
	if err != nil {
		return err
	}
	raw, err := asset.ToRaw(virtual, factor)
	if err != nil {
		return err
	}
	stake.Virtual.Add(&stake.Virtual, virtual)
	stake.Raw.Add(&stake.Raw, raw)
	if err := g.chain.PutStake(stake); err != nil {
		return err
	}

	weight, err := g.chain.GetArtifactStake(artifactID)
	if err != nil {
		return err
	}
	if err := g.chain.SetArtifactStake(artifactID, weight.Add(weight, virtual)); err != nil {
		return err
	}

	globals, err := g.chain.GetGlobals()
	if err != nil {
		return err
	}
	globals.TotalVirtualStaked.Add(&globals.TotalVirtualStaked, virtual)
	globals.PoolVirtual.Add(&globals.PoolVirtual, virtual)
	return g.chain.PutGlobals(globals)
}

// FundReserve sweeps the pool's unaccounted external asset into the reserve
// that backs Geras redemptions. It returns the virtual units added.
func (g *Geras) FundReserve(ctx context.Context) (*uint256.Int, error) {
	globals, err := g.chain.GetGlobals()
	if err != nil {
		return nil, err
	}
	_, poolVirtual, err := g.poolVirtual(ctx, globals)
	if err != nil {
		return nil, err
	}
	if !poolVirtual.Gt(&globals.PoolVirtual) {
		return new(uint256.Int), nil
	}
	added := new(uint256.Int).Sub(poolVirtual, &globals.PoolVirtual)
	globals.PoolVirtual.Set(poolVirtual)
	return added, g.chain.PutGlobals(globals)
}

// Reserve returns the virtual units held by the pool that back no stake.
func (g *Geras) Reserve() (*uint256.Int, error) {
	globals, err := g.chain.GetGlobals()
	if err != nil {
		return nil, err
	}
	reserve, err := math.Sub256(&globals.PoolVirtual, &globals.TotalVirtualStaked)
	if err != nil {
		return nil, fmt.Errorf("pool accounts for %s, %s staked: %w", &globals.PoolVirtual, &globals.TotalVirtualStaked, err)
	}
	return reserve, nil
}

// DrawReserve takes [amount] Geras worth of virtual units out of the reserve
// and returns the raw amount to pay out.
func (g *Geras) DrawReserve(ctx context.Context, amount *uint256.Int) (*uint256.Int, error) {
	reserve, err := g.Reserve()
	if err != nil {
		return nil, err
	}
	if reserve.Lt(amount) {
		return nil, fmt.Errorf("%w: %s available, %s requested", ErrInsufficientReserve, reserve, amount)
	}
	factor, err := g.asset.RebaseFactor(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := asset.ToRaw(amount, factor)
	if err != nil {
		return nil, err
	}
	globals, err := g.chain.GetGlobals()
	if err != nil {
		return nil, err
	}
	globals.PoolVirtual.Sub(&globals.PoolVirtual, amount)
	if err := addOutflow(globals, raw); err != nil {
		return nil, err
	}
	return raw, g.chain.PutGlobals(globals)
}

// SettleOutflow clears [raw] from the pending payouts once the transfer out of
// the pool has either landed or been reverted.
func (g *Geras) SettleOutflow(raw *uint256.Int) error {
	globals, err := g.chain.GetGlobals()
	if err != nil {
		return err
	}
	pending, err := math.Sub256(&globals.PendingOutflow, raw)
	if err != nil {
		return fmt.Errorf("settling %s of %s pending: %w", raw, &globals.PendingOutflow, err)
	}
	globals.PendingOutflow.Set(pending)
	return g.chain.PutGlobals(globals)
}

// PendingOutflow returns the raw amount of payouts still in flight.
func (g *Geras) PendingOutflow() (*uint256.Int, error) {
	globals, err := g.chain.GetGlobals()
	if err != nil {
		return nil, err
	}
	return globals.PendingOutflow.Clone(), nil
}

func addOutflow(globals *state.Globals, raw *uint256.Int) error {
	pending, err := math.Add256(&globals.PendingOutflow, raw)
	if err != nil {
		return err
	}
	globals.PendingOutflow.Set(pending)
	return nil
}

// RefillReserve reverts a DrawReserve whose payout failed.
func (g *Geras) RefillReserve(amount *uint256.Int) error {
	globals, err := g.chain.GetGlobals()
	if err != nil {
		return err
	}
	poolVirtual, err := math.Add256(&globals.PoolVirtual, amount)
	if err != nil {
		return err
	}
	globals.PoolVirtual.Set(poolVirtual)
	return g.chain.PutGlobals(globals)
}

func (g *Geras) TotalVirtualStaked() (*uint256.Int, error) {
	globals, err := g.chain.GetGlobals()
	if err != nil {
		return nil, err
	}
	return globals.TotalVirtualStaked.Clone(), nil
}

// StakedAsset returns the virtual units staked behind [artifactID].
func (g *Geras) StakedAsset(artifactID ids.ShortID) (*uint256.Int, error) {
	return g.chain.GetArtifactStake(artifactID)
}

func (g *Geras) Stakes(staker ids.ShortID) ([]*state.Stake, error) {
	return g.chain.GetStakes(staker)
}

// LastUpdated returns the most recent emission time of any of [staker]'s
// stakes, or ErrNoStake.
func (g *Geras) LastUpdated(staker ids.ShortID) (uint64, error) {
	stakes, err := g.chain.GetStakes(staker)
	if err != nil {
		return 0, err
	}
	if len(stakes) == 0 {
		return 0, fmt.Errorf("%w: %s", ErrNoStake, staker)
	}
	var last uint64
	for _, stake := range stakes {
		last = max(last, stake.LastUpdated)
	}
	return last, nil
}

// poolVirtual values the pool's holdings net of pending payouts.
func (g *Geras) poolVirtual(ctx context.Context, globals *state.Globals) (*uint256.Int, *uint256.Int, error) {
	factor, err := g.asset.RebaseFactor(ctx)
	if err != nil {
		return nil, nil, err
	}
	raw, err := g.asset.BalanceOf(ctx, g.config.Pool)
	if err != nil {
		return nil, nil, err
	}
	available := new(uint256.Int)
	if !raw.Lt(&globals.PendingOutflow) {
		available.Sub(raw, &globals.PendingOutflow)
	}
	virtual, err := asset.ToVirtual(available, factor)
	if err != nil {
		return nil, nil, err
	}
	return factor, virtual, nil
}
