// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package asset

import (
	"context"
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/database/memdb"
	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"
)

func TestVirtualConversions(t *testing.T) {
	require := require.New(t)

	doubled := new(uint256.Int).Mul(Precision, uint256.NewInt(2))

	virtual, err := ToVirtual(uint256.NewInt(1_000), doubled)
	require.NoError(err)
	require.Equal(uint64(500), virtual.Uint64())

	raw, err := ToRaw(virtual, doubled)
	require.NoError(err)
	require.Equal(uint64(1_000), raw.Uint64())

	_, err = ToVirtual(uint256.NewInt(1), new(uint256.Int))
	require.ErrorIs(err, ErrInvalidFactor)
	_, err = ToRaw(uint256.NewInt(1), new(uint256.Int))
	require.ErrorIs(err, ErrInvalidFactor)
}

func TestRebasingMintTransfer(t *testing.T) {
	require := require.New(t)

	ctx := context.Background()
	token := NewRebasing(memdb.New())
	alice := ids.GenerateTestShortID()
	bob := ids.GenerateTestShortID()

	factor, err := token.RebaseFactor(ctx)
	require.NoError(err)
	require.Equal(Precision, factor)

	require.NoError(token.Mint(alice, uint256.NewInt(1_000)))
	require.NoError(token.Transfer(ctx, alice, bob, uint256.NewInt(400)))

	balance, err := token.BalanceOf(ctx, alice)
	require.NoError(err)
	require.Equal(uint64(600), balance.Uint64())

	balance, err = token.BalanceOf(ctx, bob)
	require.NoError(err)
	require.Equal(uint64(400), balance.Uint64())

	err = token.Transfer(ctx, bob, alice, uint256.NewInt(401))
	require.ErrorIs(err, ErrInsufficientBalance)
}

func TestRebasingRebase(t *testing.T) {
	require := require.New(t)

	ctx := context.Background()
	token := NewRebasing(memdb.New())
	alice := ids.GenerateTestShortID()

	require.NoError(token.Mint(alice, uint256.NewInt(1_000)))
	require.NoError(token.Rebase(3, 2))

	balance, err := token.BalanceOf(ctx, alice)
	require.NoError(err)
	require.Equal(uint64(1_500), balance.Uint64())

	factor, err := token.RebaseFactor(ctx)
	require.NoError(err)
	virtual, err := ToVirtual(balance, factor)
	require.NoError(err)
	require.Equal(uint64(1_000), virtual.Uint64())

	require.ErrorIs(token.Rebase(0, 1), ErrInvalidFactor)
}
