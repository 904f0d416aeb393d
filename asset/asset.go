// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package asset describes the external, possibly rebasing, asset that backs
// Geras staking.
package asset

import (
	"context"
	"errors"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"

	"github.com/luxfi/honor/utils/math"
)

//go:generate mockgen -package=${GOPACKAGE}mock -destination=${GOPACKAGE}mock/asset.go -mock_names=Asset=Asset . Asset

var (
	ErrInsufficientBalance = errors.New("insufficient asset balance")
	ErrInvalidFactor       = errors.New("rebase factor must be positive")

	// Precision is the fixed point of rebase factors. A factor of Precision
	// means one raw unit is worth one virtual unit.
	Precision = uint256.NewInt(1_000_000_000_000_000_000)
)

// Asset is an external token whose raw balances may rebase over time.
type Asset interface {
	BalanceOf(ctx context.Context, account ids.ShortID) (*uint256.Int, error)
	// RebaseFactor returns raw units per virtual unit, scaled by Precision.
	RebaseFactor(ctx context.Context) (*uint256.Int, error)
	Transfer(ctx context.Context, from, to ids.ShortID, amount *uint256.Int) error
}

// ToVirtual converts a raw amount into rebase-independent virtual units.
func ToVirtual(raw, factor *uint256.Int) (*uint256.Int, error) {
	if factor.IsZero() {
		return nil, ErrInvalidFactor
	}
	return math.MulDiv(raw, Precision, factor)
}

// ToRaw converts virtual units back into the raw amount at [factor].
func ToRaw(virtual, factor *uint256.Int) (*uint256.Int, error) {
	if factor.IsZero() {
		return nil, ErrInvalidFactor
	}
	return math.MulDiv(virtual, factor, Precision)
}
