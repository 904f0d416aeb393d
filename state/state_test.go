// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"
)

func TestGlobalsRoundTrip(t *testing.T) {
	require := require.New(t)

	s := New(memdb.New())
	_, err := s.GetGlobals()
	require.ErrorIs(err, database.ErrNotFound)

	g := &Globals{
		Root:        ids.GenerateTestShortID(),
		Nonce:       7,
		GenesisTime: 1_000,
	}
	g.TotalVirtualStaked.SetUint64(55)
	require.NoError(s.PutGlobals(g))

	got, err := s.GetGlobals()
	require.NoError(err)
	require.Equal(g, got)
}

func TestBalancesAreZeroWhenAbsent(t *testing.T) {
	require := require.New(t)

	s := New(memdb.New())
	addr := ids.GenerateTestShortID()

	balance, err := s.GetBalance(Honor, addr)
	require.NoError(err)
	require.True(balance.IsZero())

	require.NoError(s.SetBalance(Honor, addr, uint256.NewInt(10)))
	require.NoError(s.SetTotalSupply(Honor, uint256.NewInt(10)))

	// ledgers are independent
	balance, err = s.GetBalance(Geras, addr)
	require.NoError(err)
	require.True(balance.IsZero())

	balance, err = s.GetBalance(Honor, addr)
	require.NoError(err)
	require.Equal(uint64(10), balance.Uint64())

	supply, err := s.GetTotalSupply(Honor)
	require.NoError(err)
	require.Equal(uint64(10), supply.Uint64())

	require.NoError(s.SetBalance(Honor, addr, uint256.NewInt(0)))
	balance, err = s.GetBalance(Honor, addr)
	require.NoError(err)
	require.True(balance.IsZero())
}

func TestArtifactRoundTrip(t *testing.T) {
	require := require.New(t)

	s := New(memdb.New())
	a := &Artifact{
		ID:        ids.GenerateTestShortID(),
		Builder:   ids.GenerateTestShortID(),
		Label:     "new artifact",
		CreatedAt: 10,
		Validated: true,
		Children:  []ids.ShortID{ids.GenerateTestShortID()},
	}
	a.Parent = a.ID
	a.Collateral.SetUint64(10_000)
	a.Supply.SetUint64(1_000)
	require.True(a.IsRoot())

	has, err := s.HasArtifact(a.ID)
	require.NoError(err)
	require.False(has)

	require.NoError(s.PutArtifact(a))

	has, err = s.HasArtifact(a.ID)
	require.NoError(err)
	require.True(has)

	got, err := s.GetArtifact(a.ID)
	require.NoError(err)
	require.Equal(a, got)

	_, err = s.GetArtifact(ids.GenerateTestShortID())
	require.ErrorIs(err, database.ErrNotFound)
}

func TestClaims(t *testing.T) {
	require := require.New(t)

	s := New(memdb.New())
	artifact := ids.GenerateTestShortID()
	holder := ids.GenerateTestShortID()

	c, err := s.GetClaim(artifact, holder)
	require.NoError(err)
	require.True(c.Amount.IsZero())

	c.Amount.SetUint64(3)
	c.Debt.SetUint64(4)
	require.NoError(s.PutClaim(artifact, holder, c))

	got, err := s.GetClaim(artifact, holder)
	require.NoError(err)
	require.Equal(c, got)

	require.NoError(s.PutClaim(artifact, holder, &Claim{}))
	got, err = s.GetClaim(artifact, holder)
	require.NoError(err)
	require.Equal(&Claim{}, got)
}

func TestStakesByStaker(t *testing.T) {
	require := require.New(t)

	s := New(memdb.New())
	alice := ids.ShortID{1}
	bob := ids.ShortID{2}
	artifactA := ids.ShortID{3}
	artifactB := ids.ShortID{4}

	for _, stake := range []*Stake{
		{Staker: alice, Artifact: artifactB, LastUpdated: 1},
		{Staker: bob, Artifact: artifactA, LastUpdated: 2},
		{Staker: alice, Artifact: artifactA, LastUpdated: 3},
	} {
		require.NoError(s.PutStake(stake))
	}

	stakes, err := s.GetStakes(alice)
	require.NoError(err)
	require.Len(stakes, 2)
	require.Equal(artifactA, stakes[0].Artifact)
	require.Equal(artifactB, stakes[1].Artifact)

	all, err := s.GetAllStakes()
	require.NoError(err)
	require.Len(all, 3)

	_, err = s.GetStake(bob, artifactB)
	require.ErrorIs(err, database.ErrNotFound)
}

func TestFlows(t *testing.T) {
	require := require.New(t)

	s := New(memdb.New())
	f := &Flow{
		Artifact: ids.ShortID{9},
		Address:  ids.ShortID{10},
		Pool:     ids.ShortID{11},
		Allocations: []Allocation{
			{Target: ids.ShortID{12}, Weight: 128},
		},
		TotalWeight: 128,
	}
	require.NoError(s.PutFlow(f))

	got, err := s.GetFlow(f.Artifact)
	require.NoError(err)
	require.Equal(f, got)

	flows, err := s.GetFlows()
	require.NoError(err)
	require.Equal([]*Flow{f}, flows)
}

func TestAbortDropsWrites(t *testing.T) {
	require := require.New(t)

	base := memdb.New()
	s := New(base)
	addr := ids.GenerateTestShortID()

	require.NoError(s.SetBalance(Honor, addr, uint256.NewInt(1)))
	require.NoError(s.Commit())

	require.NoError(s.SetBalance(Honor, addr, uint256.NewInt(2)))
	s.Abort()

	balance, err := s.GetBalance(Honor, addr)
	require.NoError(err)
	require.Equal(uint64(1), balance.Uint64())

	// committed writes reach the base database
	reopened := New(base)
	balance, err = reopened.GetBalance(Honor, addr)
	require.NoError(err)
	require.Equal(uint64(1), balance.Uint64())
}

func TestAbortDropsCachedArtifacts(t *testing.T) {
	require := require.New(t)

	s := New(memdb.New())
	a := &Artifact{ID: ids.GenerateTestShortID()}
	a.Supply.SetUint64(1)
	require.NoError(s.PutArtifact(a))
	require.NoError(s.Commit())

	a.Supply.SetUint64(2)
	require.NoError(s.PutArtifact(a))
	got, err := s.GetArtifact(a.ID)
	require.NoError(err)
	require.Equal(uint64(2), got.Supply.Uint64())

	// mutating a returned record does not reach the cache
	got.Supply.SetUint64(3)
	got, err = s.GetArtifact(a.ID)
	require.NoError(err)
	require.Equal(uint64(2), got.Supply.Uint64())

	s.Abort()
	got, err = s.GetArtifact(a.ID)
	require.NoError(err)
	require.Equal(uint64(1), got.Supply.Uint64())
}
