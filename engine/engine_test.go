// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"context"
	"testing"
	"time"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/honor/artifact"
	"github.com/luxfi/honor/asset"
	"github.com/luxfi/honor/config"
	"github.com/luxfi/honor/geras"
	"github.com/luxfi/honor/honor"
	"github.com/luxfi/honor/metrics"
	"github.com/luxfi/honor/rewardflow"
	"github.com/luxfi/honor/utils/timer/mockable"
	"github.com/luxfi/honor/utils/units"
)

var (
	genesisTime = time.Unix(1_700_000_000, 0)

	holder   = ids.ShortID{0x01}
	builderX = ids.ShortID{0x02}
	alice    = ids.ShortID{0x03}
	staker   = ids.ShortID{0x04}
	pool     = config.DefaultGerasPool
)

type testEngine struct {
	*Engine
	db    database.Database
	clock *mockable.Clock
	ext   *asset.Rebasing
}

// smallConfig is the economy used by the curve scenarios: 10000 Honor on a
// curve of scale 100 with a seed of 10 units.
func smallConfig() *config.Config {
	c := config.DefaultConfig
	c.GenesisSupply = *uint256.NewInt(10_000)
	c.GenesisHolder = holder
	c.RootBuilder = holder
	c.CurveScale = *uint256.NewInt(100)
	c.ProposalSeed = *uint256.NewInt(10)
	c.BuilderAccrualBps = 0
	return &c
}

func newTestEngine(t *testing.T, cfg *config.Config) *testEngine {
	clock := &mockable.Clock{}
	clock.Set(genesisTime)
	db := memdb.New()
	ext := asset.NewRebasing(memdb.New())

	e, err := New(cfg, db, ext, clock, log.NewNoOpLogger(), metrics.Noop)
	require.NoError(t, err)
	return &testEngine{
		Engine: e,
		db:     db,
		clock:  clock,
		ext:    ext,
	}
}

func (e *testEngine) honorBalance(t *testing.T, addr ids.ShortID) uint64 {
	balance, err := e.BalanceOf(addr)
	require.NoError(t, err)
	return balance.Uint64()
}

func (e *testEngine) root(t *testing.T) ids.ShortID {
	root, err := e.RootArtifact()
	require.NoError(t, err)
	return root
}

func (e *testEngine) requireLedgerMatches(t *testing.T, artifactID ids.ShortID) {
	internal, err := e.InternalHonorBalanceOfArtifact(artifactID)
	require.NoError(t, err)
	balance, err := e.BalanceOf(artifactID)
	require.NoError(t, err)
	require.Equal(t, internal, balance)
}

func TestGenesis(t *testing.T) {
	require := require.New(t)

	e := newTestEngine(t, smallConfig())
	root := e.root(t)
	require.Equal(uint64(10_000), e.honorBalance(t, root))

	rootUnits, err := e.BalanceOfArtifact(root, holder)
	require.NoError(err)
	require.Equal(uint64(1_000), rootUnits.Uint64())

	builder, err := e.ArtifactBuilder(root)
	require.NoError(err)
	require.Equal(holder, builder)

	a, err := e.Artifact(root)
	require.NoError(err)
	require.True(a.IsRoot())
	require.Equal(uint64(genesisTime.Unix()), a.CreatedAt)

	supply, err := e.HonorSupply()
	require.NoError(err)
	require.Equal(uint64(10_000), supply.Uint64())
}

func TestReopenKeepsGenesis(t *testing.T) {
	require := require.New(t)

	e := newTestEngine(t, smallConfig())
	root := e.root(t)
	child, err := e.ProposeArtifact(holder, root, builderX, "new artifact")
	require.NoError(err)
	require.NoError(e.Close())

	reopened, err := New(smallConfig(), e.db, e.ext, e.clock, log.NewNoOpLogger(), metrics.Noop)
	require.NoError(err)

	reopenedRoot, err := reopened.RootArtifact()
	require.NoError(err)
	require.Equal(root, reopenedRoot)

	balance, err := reopened.BalanceOf(child)
	require.NoError(err)
	require.Equal(uint64(199), balance.Uint64())
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.AllocationDenominator = 0
	_, err := New(cfg, memdb.New(), asset.NewRebasing(memdb.New()), &mockable.Clock{}, log.NewNoOpLogger(), metrics.Noop)
	require.Error(t, err)
}

func TestProposeThenVouch(t *testing.T) {
	require := require.New(t)

	e := newTestEngine(t, smallConfig())
	root := e.root(t)

	child, err := e.ProposeArtifact(holder, root, builderX, "new artifact")
	require.NoError(err)
	require.Equal(uint64(9_801), e.honorBalance(t, root))
	require.Equal(uint64(199), e.honorBalance(t, child))

	builder, err := e.ArtifactBuilder(child)
	require.NoError(err)
	require.Equal(builderX, builder)

	proposerUnits, err := e.BalanceOfArtifact(child, holder)
	require.NoError(err)
	require.Equal(uint64(141), proposerUnits.Uint64())

	result, err := e.Vouch(holder, root, child, uint256.NewInt(10))
	require.NoError(err)
	require.Equal(uint64(197), result.Released.Uint64())
	require.Equal(uint64(9_801-197), e.honorBalance(t, root))
	require.Equal(uint64(199+197), e.honorBalance(t, child))

	e.requireLedgerMatches(t, root)
	e.requireLedgerMatches(t, child)
}

func TestProposeRejectsUnknownParent(t *testing.T) {
	e := newTestEngine(t, smallConfig())
	_, err := e.ProposeArtifact(holder, ids.GenerateTestShortID(), builderX, "orphan")
	require.ErrorIs(t, err, artifact.ErrUnknownParent)
}

func TestFailedOperationIsRolledBack(t *testing.T) {
	require := require.New(t)

	e := newTestEngine(t, smallConfig())
	root := e.root(t)

	// alice holds no root units, so the seed fails after the child was written
	_, err := e.ProposeArtifact(alice, root, builderX, "unfunded")
	require.ErrorIs(err, honor.ErrInsufficientBalance)

	a, err := e.Artifact(root)
	require.NoError(err)
	require.Empty(a.Children)

	// the nonce was rolled back too, so the next proposal reuses the address
	child, err := e.ProposeArtifact(holder, root, builderX, "funded")
	require.NoError(err)
	a, err = e.Artifact(root)
	require.NoError(err)
	require.Equal([]ids.ShortID{child}, a.Children)
	require.Equal(uint64(10_000-199), e.honorBalance(t, root))
}

func TestRequireValidation(t *testing.T) {
	require := require.New(t)

	cfg := smallConfig()
	cfg.RequireValidation = true
	e := newTestEngine(t, cfg)
	root := e.root(t)

	child, err := e.ProposeArtifact(holder, root, builderX, "pending")
	require.NoError(err)
	require.Zero(e.honorBalance(t, child))

	_, err = e.Vouch(holder, root, child, uint256.NewInt(10))
	require.ErrorIs(err, artifact.ErrNotValidated)

	require.NoError(e.ValidateArtifact(holder, root, child))
	require.Equal(uint64(199), e.honorBalance(t, child))

	err = e.ValidateArtifact(holder, root, child)
	require.ErrorIs(err, artifact.ErrAlreadyValidated)

	result, err := e.Vouch(holder, root, child, uint256.NewInt(10))
	require.NoError(err)
	require.Equal(uint64(197), result.Released.Uint64())
}

func TestSendCoin(t *testing.T) {
	require := require.New(t)

	e := newTestEngine(t, smallConfig())
	err := e.SendCoin(holder, alice, uint256.NewInt(10))
	require.ErrorIs(err, honor.ErrInsufficientBalance)

	err = e.SendCoin(holder, e.root(t), uint256.NewInt(0))
	require.ErrorIs(err, honor.ErrArtifactAccount)
}

func TestBuilderAccrual(t *testing.T) {
	require := require.New(t)

	cfg := smallConfig()
	cfg.BuilderAccrualBps = 10_000
	e := newTestEngine(t, cfg)
	root := e.root(t)

	e.clock.Advance(time.Duration(units.SecondsPerYear/10) * time.Second)
	pending, err := e.PendingAccrual(root)
	require.NoError(err)
	require.Equal(uint64(100), pending.Uint64())

	accrual, err := e.SettleAccrual(root)
	require.NoError(err)
	require.Equal(uint64(100), accrual.Uint64())

	// settling again at the same instant is a no-op
	accrual, err = e.SettleAccrual(root)
	require.NoError(err)
	require.True(accrual.IsZero())

	a, err := e.Artifact(root)
	require.NoError(err)
	require.Equal(uint64(1_100), a.Supply.Uint64())
	e.requireLedgerMatches(t, root)
}

func TestGerasEmission(t *testing.T) {
	require := require.New(t)

	cfg := config.DefaultConfig
	cfg.GenesisHolder = holder
	e := newTestEngine(t, &cfg)
	root := e.root(t)

	_, err := e.CreateRewardFlow(root, pool)
	require.NoError(err)

	require.NoError(e.ext.Mint(pool, uint256.NewInt(1_000_000_000_000_000)))
	deposit, err := e.StakeAsset(context.Background(), staker, root)
	require.NoError(err)
	require.Equal(uint64(1_000_000_000_000_000), deposit.Uint64())

	e.clock.Advance(360_000 * time.Second)
	reward, err := e.DistributeGeras(root)
	require.NoError(err)
	require.Equal(uint64(356_735_159_817), reward.Uint64())

	balance, err := e.FlowBalance(root)
	require.NoError(err)
	require.Equal(reward, balance)

	// same instant, nothing more
	reward, err = e.DistributeGeras(root)
	require.NoError(err)
	require.True(reward.IsZero())

	total, err := e.TotalVirtualStaked()
	require.NoError(err)
	require.Equal(deposit, total)

	staked, err := e.StakedAsset(root)
	require.NoError(err)
	require.Equal(deposit, staked)
}

func TestRewardFlowEndToEnd(t *testing.T) {
	require := require.New(t)

	ctx := context.Background()
	cfg := smallConfig()
	// keep every root unit with the genesis holder
	cfg.RequireValidation = true
	e := newTestEngine(t, cfg)
	root := e.root(t)

	child, err := e.ProposeArtifact(holder, root, builderX, "new artifact")
	require.NoError(err)

	_, err = e.CreateRewardFlow(root, pool)
	require.NoError(err)
	_, err = e.CreateRewardFlow(child, pool)
	require.NoError(err)
	_, err = e.CreateRewardFlow(ids.GenerateTestShortID(), pool)
	require.ErrorIs(err, rewardflow.ErrUnverifiedArtifact)

	require.ErrorIs(e.SubmitAllocation(root, root, 128), rewardflow.ErrSelfAllocation)
	require.NoError(e.SubmitAllocation(root, child, 128))

	require.NoError(e.ext.Mint(pool, uint256.NewInt(1_024_000)))
	_, err = e.StakeAsset(ctx, staker, root)
	require.NoError(err)

	e.clock.Advance(time.Duration(units.SecondsPerYear) * time.Second)
	emissions, err := e.DistributeAll()
	require.NoError(err)
	require.Len(emissions, 2)

	var rootEmission uint64
	for _, emission := range emissions {
		if emission.Artifact == root {
			rootEmission = emission.Amount.Uint64()
		} else {
			require.True(emission.Amount.IsZero())
		}
	}
	require.Equal(uint64(32_000), rootEmission)

	results, err := e.Propagate(root)
	require.NoError(err)
	require.Len(results, 2)
	require.Equal(uint64(4_000), results[0].Transfers[0].Amount.Uint64())
	require.Equal(uint64(28_000), results[0].Retained.Uint64())

	claim, err := e.RewardClaimOf(root, holder)
	require.NoError(err)
	require.Equal(uint64(28_000), claim.Uint64())

	// nobody holds the unseeded child, so its builder collects
	claim, err = e.RewardClaimOf(child, builderX)
	require.NoError(err)
	require.Equal(uint64(4_000), claim.Uint64())

	// redemptions are backed by the reserve only
	_, err = e.RedeemReward(ctx, holder, root, uint256.NewInt(1_000))
	require.ErrorIs(err, geras.ErrInsufficientReserve)

	require.NoError(e.ext.Mint(pool, uint256.NewInt(50_000)))
	added, err := e.FundReserve(ctx)
	require.NoError(err)
	require.Equal(uint64(50_000), added.Uint64())

	_, err = e.RedeemReward(ctx, holder, root, uint256.NewInt(28_001))
	require.ErrorIs(err, rewardflow.ErrInsufficientClaim)

	raw, err := e.RedeemReward(ctx, holder, root, uint256.NewInt(28_000))
	require.NoError(err)
	require.Equal(uint64(28_000), raw.Uint64())

	paid, err := e.ext.BalanceOf(ctx, holder)
	require.NoError(err)
	require.Equal(uint64(28_000), paid.Uint64())

	reserve, err := e.Reserve()
	require.NoError(err)
	require.Equal(uint64(22_000), reserve.Uint64())
}

func TestMintToStakers(t *testing.T) {
	require := require.New(t)

	cfg := config.DefaultConfig
	cfg.GenesisHolder = holder
	cfg.BuilderAccrualBps = 0
	e := newTestEngine(t, &cfg)
	root := e.root(t)

	require.NoError(e.ext.Mint(pool, units.Whole(5)))
	_, err := e.StakeAsset(context.Background(), staker, root)
	require.NoError(err)

	e.clock.Advance(time.Duration(units.SecondsPerYear) * time.Second)
	minted, err := e.MintToStaker(staker)
	require.NoError(err)
	require.Equal(units.Whole(5), minted)

	supply, err := e.HonorSupply()
	require.NoError(err)
	require.Equal(new(uint256.Int).Add(units.Whole(10_000), units.Whole(5)), supply)
	e.requireLedgerMatches(t, root)

	stakerUnits, err := e.BalanceOfArtifact(root, staker)
	require.NoError(err)
	require.False(stakerUnits.IsZero())

	last, err := e.LastUpdated(staker)
	require.NoError(err)
	require.Equal(e.clock.Unix(), last)

	minted, err = e.MintToStakers()
	require.NoError(err)
	require.True(minted.IsZero())
}

func TestUnstake(t *testing.T) {
	require := require.New(t)

	ctx := context.Background()
	e := newTestEngine(t, smallConfig())
	root := e.root(t)

	require.NoError(e.ext.Mint(pool, uint256.NewInt(1_000)))
	_, err := e.StakeAsset(ctx, staker, root)
	require.NoError(err)
	require.NoError(e.ext.Rebase(3, 2))

	raw, err := e.UnstakeAsset(ctx, staker, root, uint256.NewInt(1_000))
	require.NoError(err)
	require.Equal(uint64(1_500), raw.Uint64())

	paid, err := e.ext.BalanceOf(ctx, staker)
	require.NoError(err)
	require.Equal(uint64(1_500), paid.Uint64())

	total, err := e.TotalVirtualStaked()
	require.NoError(err)
	require.True(total.IsZero())
}
