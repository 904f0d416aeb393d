// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package curve implements the quadratic bonding curve that prices artifact
// units in Honor. Collateral C and supply S are related by C = S^2 / Scale,
// so S = isqrt(C * Scale). All functions round down.
package curve

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
)

var (
	ErrMathDomain = errors.New("math domain error")
	ErrZeroScale  = errors.New("curve scale must be positive")
)

// Curve is immutable after construction and safe for concurrent use.
type Curve struct {
	scale uint256.Int
}

func New(scale *uint256.Int) (*Curve, error) {
	if scale == nil || scale.IsZero() {
		return nil, ErrZeroScale
	}
	c := &Curve{}
	c.scale.Set(scale)
	return c, nil
}

func (c *Curve) Scale() *uint256.Int {
	return c.scale.Clone()
}

// SupplyForCollateral returns isqrt(collateral * Scale).
func (c *Curve) SupplyForCollateral(collateral *uint256.Int) (*uint256.Int, error) {
	product, overflow := new(uint256.Int).MulOverflow(collateral, &c.scale)
	if overflow {
		return nil, fmt.Errorf("%w: collateral %s at scale %s", ErrMathDomain, collateral, &c.scale)
	}
	return product.Sqrt(product), nil
}

// CostForSupplyDelta returns (supply+delta)^2 - supply^2, the unscaled
// collateral cost of moving the supply by [delta].
func CostForSupplyDelta(supply, delta *uint256.Int) (*uint256.Int, error) {
	next, overflow := new(uint256.Int).AddOverflow(supply, delta)
	if overflow {
		return nil, fmt.Errorf("%w: supply %s + %s", ErrMathDomain, supply, delta)
	}
	cost, overflow := new(uint256.Int).MulOverflow(next, next)
	if overflow {
		return nil, fmt.Errorf("%w: supply %s squared", ErrMathDomain, next)
	}
	current := new(uint256.Int).Mul(supply, supply)
	return cost.Sub(cost, current), nil
}

// CollateralForSupplyDelta returns CostForSupplyDelta(supply, delta) / Scale.
func (c *Curve) CollateralForSupplyDelta(supply, delta *uint256.Int) (*uint256.Int, error) {
	cost, err := CostForSupplyDelta(supply, delta)
	if err != nil {
		return nil, err
	}
	return cost.Div(cost, &c.scale), nil
}

// Deposit returns the units minted when [amount] collateral is added to a
// curve backed by [collateral] with [supply] units outstanding. Units minted
// by builder accrual dilute the curve, so the minted amount is scaled by
// supply / isqrt(collateral * Scale).
func (c *Curve) Deposit(collateral, supply, amount *uint256.Int) (*uint256.Int, error) {
	after, overflow := new(uint256.Int).AddOverflow(collateral, amount)
	if overflow {
		return nil, fmt.Errorf("%w: collateral %s + %s", ErrMathDomain, collateral, amount)
	}
	before, err := c.SupplyForCollateral(collateral)
	if err != nil {
		return nil, err
	}
	minted, err := c.SupplyForCollateral(after)
	if err != nil {
		return nil, err
	}
	minted.Sub(minted, before)
	if supply.IsZero() || before.IsZero() || supply.Eq(before) {
		return minted, nil
	}
	diluted, overflow := new(uint256.Int).MulDivOverflow(minted, supply, before)
	if overflow {
		return nil, fmt.Errorf("%w: diluting %s by %s/%s", ErrMathDomain, minted, supply, before)
	}
	return diluted, nil
}

// Release returns the collateral freed by burning [burn] of the [supply]
// units outstanding against [collateral]:
//
//	collateral * (supply^2 - (supply-burn)^2) / supply^2
//
// Burning the whole supply frees all collateral. The result never exceeds
// [collateral].
func (c *Curve) Release(collateral, supply, burn *uint256.Int) (*uint256.Int, error) {
	if burn.Gt(supply) {
		return nil, fmt.Errorf("%w: burning %s of supply %s", ErrMathDomain, burn, supply)
	}
	if burn.IsZero() {
		return new(uint256.Int), nil
	}
	if burn.Eq(supply) {
		return collateral.Clone(), nil
	}
	remaining := new(uint256.Int).Sub(supply, burn)
	cost, err := CostForSupplyDelta(remaining, burn)
	if err != nil {
		return nil, err
	}
	squared := new(uint256.Int).Mul(supply, supply)
	released, overflow := new(uint256.Int).MulDivOverflow(collateral, cost, squared)
	if overflow {
		return nil, fmt.Errorf("%w: releasing %s of %s", ErrMathDomain, burn, collateral)
	}
	return released, nil
}
