// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package artifact

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/honor/state"
)

func claimOf(t *testing.T, r *Registry, a *state.Artifact, holder ids.ShortID) uint64 {
	claim, err := r.ClaimOf(a, holder)
	require.NoError(t, err)
	return claim.Uint64()
}

func TestRewardsSplitProRata(t *testing.T) {
	require := require.New(t)

	r, root := newRegistry(t, 0)
	require.NoError(r.Credit(root, alice, uint256.NewInt(300)))
	require.NoError(r.Credit(root, bob, uint256.NewInt(100)))

	require.NoError(r.AddRewards(root, uint256.NewInt(1_000)))
	require.Equal(uint64(750), claimOf(t, r, root, alice))
	require.Equal(uint64(250), claimOf(t, r, root, bob))

	// units acquired after a distribution earn nothing from it
	require.NoError(r.Credit(root, bob, uint256.NewInt(200)))
	require.Equal(uint64(250), claimOf(t, r, root, bob))

	require.NoError(r.AddRewards(root, uint256.NewInt(600)))
	require.Equal(uint64(1_050), claimOf(t, r, root, alice))
	require.Equal(uint64(550), claimOf(t, r, root, bob))
	require.Equal(uint64(1_600), root.RewardPool.Uint64())
}

func TestRewardsWithoutHoldersGoToBuilder(t *testing.T) {
	require := require.New(t)

	r, root := newRegistry(t, 0)
	require.NoError(r.AddRewards(root, uint256.NewInt(42)))
	require.Equal(uint64(42), claimOf(t, r, root, builder))
	require.True(root.RewardPerUnit.IsZero())
}

func TestRedeemClaim(t *testing.T) {
	require := require.New(t)

	r, root := newRegistry(t, 0)
	require.NoError(r.Credit(root, alice, uint256.NewInt(10)))
	require.NoError(r.AddRewards(root, uint256.NewInt(100)))

	err := r.RedeemClaim(root, alice, uint256.NewInt(101))
	require.ErrorIs(err, ErrInsufficientClaim)

	require.NoError(r.RedeemClaim(root, alice, uint256.NewInt(60)))
	require.Equal(uint64(40), claimOf(t, r, root, alice))
	require.Equal(uint64(40), root.RewardPool.Uint64())

	err = r.RedeemClaim(root, bob, uint256.NewInt(1))
	require.ErrorIs(err, ErrInsufficientClaim)

	require.NoError(r.RestoreClaim(root, alice, uint256.NewInt(60)))
	require.Equal(uint64(100), claimOf(t, r, root, alice))
	require.Equal(uint64(100), root.RewardPool.Uint64())
}

func TestClaimsNeverExceedPool(t *testing.T) {
	require := require.New(t)

	r, root := newRegistry(t, 0)
	require.NoError(r.Credit(root, alice, uint256.NewInt(3)))
	require.NoError(r.Credit(root, bob, uint256.NewInt(3)))
	require.NoError(r.Credit(root, builder, uint256.NewInt(3)))

	for i := 0; i < 10; i++ {
		require.NoError(r.AddRewards(root, uint256.NewInt(7)))
	}
	total := claimOf(t, r, root, alice) + claimOf(t, r, root, bob) + claimOf(t, r, root, builder)
	require.LessOrEqual(total, root.RewardPool.Uint64())
}
