// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package token

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"

	"github.com/luxfi/honor/state"
)

func balanceOf(t *testing.T, tok *Token, addr ids.ShortID) uint64 {
	balance, err := tok.BalanceOf(addr)
	require.NoError(t, err)
	return balance.Uint64()
}

func TestMintTransferBurn(t *testing.T) {
	require := require.New(t)

	s := state.New(memdb.New())
	honor := New(s, state.Honor)
	geras := New(s, state.Geras)

	alice := ids.GenerateTestShortID()
	bob := ids.GenerateTestShortID()

	require.NoError(honor.Mint(alice, uint256.NewInt(100)))
	require.Equal(uint64(100), balanceOf(t, honor, alice))
	require.Zero(balanceOf(t, geras, alice))

	require.NoError(honor.Transfer(alice, bob, uint256.NewInt(40)))
	require.Equal(uint64(60), balanceOf(t, honor, alice))
	require.Equal(uint64(40), balanceOf(t, honor, bob))

	require.NoError(honor.Burn(bob, uint256.NewInt(15)))
	require.Equal(uint64(25), balanceOf(t, honor, bob))

	supply, err := honor.TotalSupply()
	require.NoError(err)
	require.Equal(uint64(85), supply.Uint64())
}

func TestTransferInsufficientBalance(t *testing.T) {
	tests := []struct {
		name   string
		from   ids.ShortID
		to     ids.ShortID
		amount uint64
	}{
		{
			name:   "more than held",
			from:   ids.ShortID{1},
			to:     ids.ShortID{2},
			amount: 11,
		},
		{
			name:   "self transfer still checks balance",
			from:   ids.ShortID{1},
			to:     ids.ShortID{1},
			amount: 11,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			require := require.New(t)

			s := state.New(memdb.New())
			honor := New(s, state.Honor)
			require.NoError(honor.Mint(ids.ShortID{1}, uint256.NewInt(10)))

			err := honor.Transfer(test.from, test.to, uint256.NewInt(test.amount))
			require.ErrorIs(err, ErrInsufficientBalance)
			require.Equal(uint64(10), balanceOf(t, honor, ids.ShortID{1}))
		})
	}
}

func TestBurnInsufficientBalance(t *testing.T) {
	require := require.New(t)

	s := state.New(memdb.New())
	geras := New(s, state.Geras)
	require.NoError(geras.Mint(ids.ShortID{1}, uint256.NewInt(5)))

	err := geras.Burn(ids.ShortID{1}, uint256.NewInt(6))
	require.ErrorIs(err, ErrInsufficientBalance)
}

func TestSelfTransferKeepsBalance(t *testing.T) {
	require := require.New(t)

	s := state.New(memdb.New())
	honor := New(s, state.Honor)
	require.NoError(honor.Mint(ids.ShortID{1}, uint256.NewInt(10)))
	require.NoError(honor.Transfer(ids.ShortID{1}, ids.ShortID{1}, uint256.NewInt(10)))
	require.Equal(uint64(10), balanceOf(t, honor, ids.ShortID{1}))
}
