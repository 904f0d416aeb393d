// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package geras

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/honor/artifact"
	"github.com/luxfi/honor/asset"
	"github.com/luxfi/honor/curve"
	"github.com/luxfi/honor/honor"
	"github.com/luxfi/honor/state"
	"github.com/luxfi/honor/utils/math"
	"github.com/luxfi/honor/utils/units"
)

const start uint64 = 1_700_000_000

var (
	pool     = ids.ShortID{0xee}
	holder   = ids.ShortID{0x01}
	staker   = ids.ShortID{0x02}
	flowAddr = ids.ShortID{0xf0}
)

type fixture struct {
	geras    *Geras
	registry *artifact.Registry
	ledger   *honor.Ledger
	ext      *asset.Rebasing
	root     *state.Artifact
}

func newFixture(t *testing.T) *fixture {
	require := require.New(t)

	chain := state.New(memdb.New())
	registry := artifact.NewRegistry(chain, 0)
	c, err := curve.New(uint256.NewInt(units.Honor))
	require.NoError(err)
	ledger := honor.NewLedger(chain, registry, c)
	root, err := ledger.Genesis(start, holder, holder, "root", units.Whole(10_000))
	require.NoError(err)

	ext := asset.NewRebasing(memdb.New())
	g := New(
		Config{
			Pool:            pool,
			EmissionRate:    32,
			Denominator:     1024,
			StakerHonorRate: uint256.NewInt(units.Honor),
		},
		chain,
		registry,
		ledger,
		ext,
	)
	return &fixture{
		geras:    g,
		registry: registry,
		ledger:   ledger,
		ext:      ext,
		root:     root,
	}
}

func (f *fixture) stake(t *testing.T, now uint64, who, artifactID ids.ShortID, raw uint64) *uint256.Int {
	require.NoError(t, f.ext.Mint(pool, uint256.NewInt(raw)))
	_, deposit, err := f.geras.Stake(context.Background(), now, who, artifactID)
	require.NoError(t, err)
	return deposit
}

func TestDistributeEmission(t *testing.T) {
	require := require.New(t)

	f := newFixture(t)
	deposit := f.stake(t, start, staker, f.root.ID, 1_000_000_000_000_000)
	require.Equal(uint64(1_000_000_000_000_000), deposit.Uint64())

	target := Target{Artifact: f.root.ID, Address: flowAddr}
	reward, err := f.geras.Distribute(start+360_000, target)
	require.NoError(err)
	require.Equal(uint64(356_735_159_817), reward.Uint64())

	balance, err := f.geras.Rewards().BalanceOf(flowAddr)
	require.NoError(err)
	require.Equal(reward, balance)

	// the window was consumed
	reward, err = f.geras.Distribute(start+360_000, target)
	require.NoError(err)
	require.True(reward.IsZero())
}

func TestDistributeWithoutStake(t *testing.T) {
	require := require.New(t)

	f := newFixture(t)
	reward, err := f.geras.Distribute(start+units.SecondsPerYear, Target{Artifact: f.root.ID, Address: flowAddr})
	require.NoError(err)
	require.True(reward.IsZero())
}

func TestDistributeAllSharesWindow(t *testing.T) {
	require := require.New(t)

	f := newFixture(t)
	child, err := f.registry.Propose(start, f.root.ID, holder, "child")
	require.NoError(err)

	f.stake(t, start, staker, f.root.ID, 3_000_000)
	f.stake(t, start, staker, child.ID, 1_000_000)

	emissions, err := f.geras.DistributeAll(start+units.SecondsPerYear, []Target{
		{Artifact: f.root.ID, Address: ids.ShortID{0xf1}},
		{Artifact: child.ID, Address: ids.ShortID{0xf2}},
	})
	require.NoError(err)
	require.Len(emissions, 2)
	// 32/1024 of the stake per year
	require.Equal(uint64(93_750), emissions[0].Amount.Uint64())
	require.Equal(uint64(31_250), emissions[1].Amount.Uint64())
}

func TestStakeRequiresNewDeposit(t *testing.T) {
	require := require.New(t)

	f := newFixture(t)
	_, _, err := f.geras.Stake(context.Background(), start, staker, f.root.ID)
	require.ErrorIs(err, ErrInvalidAmount)

	f.stake(t, start, staker, f.root.ID, 1_000)

	// a rebase grows raw balances but not virtual units
	require.NoError(f.ext.Rebase(2, 1))
	_, _, err = f.geras.Stake(context.Background(), start, staker, f.root.ID)
	require.ErrorIs(err, ErrInvalidAmount)

	_, _, err = f.geras.Stake(context.Background(), start, staker, ids.GenerateTestShortID())
	require.ErrorIs(err, artifact.ErrUnknownArtifact)
}

func TestStakeTotals(t *testing.T) {
	require := require.New(t)

	f := newFixture(t)
	f.stake(t, start, staker, f.root.ID, 1_000)
	f.stake(t, start+10, holder, f.root.ID, 500)
	f.stake(t, start+20, staker, f.root.ID, 250)

	total, err := f.geras.TotalVirtualStaked()
	require.NoError(err)
	require.Equal(uint64(1_750), total.Uint64())

	staked, err := f.geras.StakedAsset(f.root.ID)
	require.NoError(err)
	require.Equal(uint64(1_750), staked.Uint64())

	stakes, err := f.geras.Stakes(staker)
	require.NoError(err)
	require.Len(stakes, 1)
	require.Equal(uint64(1_250), stakes[0].Virtual.Uint64())

	last, err := f.geras.LastUpdated(staker)
	require.NoError(err)
	require.Equal(start+20, last)

	_, err = f.geras.LastUpdated(ids.GenerateTestShortID())
	require.ErrorIs(err, ErrNoStake)
}

func TestUnstakeAfterRebase(t *testing.T) {
	require := require.New(t)

	f := newFixture(t)
	f.stake(t, start, staker, f.root.ID, 1_000)
	require.NoError(f.ext.Rebase(2, 1))

	ctx := context.Background()
	_, err := f.geras.Unstake(ctx, start, staker, f.root.ID, uint256.NewInt(1_001))
	require.ErrorIs(err, ErrInsufficientBalance)

	_, err = f.geras.Unstake(ctx, start, holder, f.root.ID, uint256.NewInt(1))
	require.ErrorIs(err, ErrNoStake)

	_, err = f.geras.Unstake(ctx, start, staker, f.root.ID, uint256.NewInt(0))
	require.ErrorIs(err, ErrInvalidAmount)

	raw, err := f.geras.Unstake(ctx, start, staker, f.root.ID, uint256.NewInt(400))
	require.NoError(err)
	require.Equal(uint64(800), raw.Uint64())

	total, err := f.geras.TotalVirtualStaked()
	require.NoError(err)
	require.Equal(uint64(600), total.Uint64())

	require.NoError(f.geras.RestoreStake(ctx, staker, f.root.ID, uint256.NewInt(400)))
	total, err = f.geras.TotalVirtualStaked()
	require.NoError(err)
	require.Equal(uint64(1_000), total.Uint64())
}

func TestMintToStaker(t *testing.T) {
	require := require.New(t)

	f := newFixture(t)
	f.stake(t, start, staker, f.root.ID, 1_000_000_000_000_000)

	before, err := f.ledger.TotalSupply()
	require.NoError(err)

	minted, err := f.geras.MintToStaker(start+units.SecondsPerYear, staker)
	require.NoError(err)
	require.Equal(uint64(1_000_000_000_000_000), minted.Uint64())

	after, err := f.ledger.TotalSupply()
	require.NoError(err)
	require.Equal(new(uint256.Int).Add(before, minted), after)
	require.NoError(f.ledger.CheckCollateral(f.root))

	holding, err := f.registry.HoldingOf(f.root.ID, staker)
	require.NoError(err)
	require.False(holding.IsZero())

	last, err := f.geras.LastUpdated(staker)
	require.NoError(err)
	require.Equal(start+units.SecondsPerYear, last)

	// nothing more is owed at the same time
	minted, err = f.geras.MintToStakers(start + units.SecondsPerYear)
	require.NoError(err)
	require.True(minted.IsZero())

	_, err = f.geras.MintToStaker(start, holder)
	require.ErrorIs(err, ErrNoStake)
}

func TestReserve(t *testing.T) {
	require := require.New(t)

	ctx := context.Background()
	f := newFixture(t)
	f.stake(t, start, staker, f.root.ID, 1_000)

	reserve, err := f.geras.Reserve()
	require.NoError(err)
	require.True(reserve.IsZero())

	_, err = f.geras.DrawReserve(ctx, uint256.NewInt(1))
	require.ErrorIs(err, ErrInsufficientReserve)

	require.NoError(f.ext.Mint(pool, uint256.NewInt(300)))
	added, err := f.geras.FundReserve(ctx)
	require.NoError(err)
	require.Equal(uint64(300), added.Uint64())

	added, err = f.geras.FundReserve(ctx)
	require.NoError(err)
	require.True(added.IsZero())

	raw, err := f.geras.DrawReserve(ctx, uint256.NewInt(100))
	require.NoError(err)
	require.Equal(uint64(100), raw.Uint64())

	reserve, err = f.geras.Reserve()
	require.NoError(err)
	require.Equal(uint64(200), reserve.Uint64())

	require.NoError(f.geras.RefillReserve(uint256.NewInt(100)))
	reserve, err = f.geras.Reserve()
	require.NoError(err)
	require.Equal(uint64(300), reserve.Uint64())
}

func TestPendingOutflowIsNotSwept(t *testing.T) {
	require := require.New(t)

	ctx := context.Background()
	f := newFixture(t)
	f.stake(t, start, staker, f.root.ID, 1_000)

	raw, err := f.geras.Unstake(ctx, start, staker, f.root.ID, uint256.NewInt(400))
	require.NoError(err)
	pending, err := f.geras.PendingOutflow()
	require.NoError(err)
	require.Equal(raw, pending)

	// the payout is still in the pool but already owed
	_, _, err = f.geras.Stake(ctx, start, holder, f.root.ID)
	require.ErrorIs(err, ErrInvalidAmount)
	added, err := f.geras.FundReserve(ctx)
	require.NoError(err)
	require.True(added.IsZero())

	require.NoError(f.ext.Transfer(ctx, pool, staker, raw))
	require.NoError(f.geras.SettleOutflow(raw))
	pending, err = f.geras.PendingOutflow()
	require.NoError(err)
	require.True(pending.IsZero())

	_, _, err = f.geras.Stake(ctx, start, holder, f.root.ID)
	require.ErrorIs(err, ErrInvalidAmount)

	deposit := f.stake(t, start, holder, f.root.ID, 50)
	require.Equal(uint64(50), deposit.Uint64())

	require.ErrorIs(f.geras.SettleOutflow(uint256.NewInt(1)), math.ErrUnderflow)
}
