// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package token implements the fungible ledgers the engine keeps for its
// internal currencies.
package token

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"

	"github.com/luxfi/honor/state"
	"github.com/luxfi/honor/utils/math"
)

var ErrInsufficientBalance = errors.New("insufficient balance")

// Token is a balance ledger with a tracked total supply.
type Token struct {
	chain state.Chain
	kind  state.Token
}

func New(chain state.Chain, kind state.Token) *Token {
	return &Token{
		chain: chain,
		kind:  kind,
	}
}

func (t *Token) Kind() state.Token {
	return t.kind
}

func (t *Token) BalanceOf(addr ids.ShortID) (*uint256.Int, error) {
	return t.chain.GetBalance(t.kind, addr)
}

func (t *Token) TotalSupply() (*uint256.Int, error) {
	return t.chain.GetTotalSupply(t.kind)
}

// Transfer moves [amount] from [from] to [to].
func (t *Token) Transfer(from, to ids.ShortID, amount *uint256.Int) error {
	fromBalance, err := t.chain.GetBalance(t.kind, from)
	if err != nil {
		return err
	}
	if fromBalance.Lt(amount) {
		return fmt.Errorf("%w: %s %s has %s, needs %s", ErrInsufficientBalance, t.kind, from, fromBalance, amount)
	}
	if from == to || amount.IsZero() {
		return nil
	}
	toBalance, err := t.chain.GetBalance(t.kind, to)
	if err != nil {
		return err
	}
	newToBalance, err := math.Add256(toBalance, amount)
	if err != nil {
		return fmt.Errorf("%s balance of %s: %w", t.kind, to, err)
	}
	if err := t.chain.SetBalance(t.kind, from, fromBalance.Sub(fromBalance, amount)); err != nil {
		return err
	}
	return t.chain.SetBalance(t.kind, to, newToBalance)
}

// Mint creates [amount] at [to].
func (t *Token) Mint(to ids.ShortID, amount *uint256.Int) error {
	supply, err := t.chain.GetTotalSupply(t.kind)
	if err != nil {
		return err
	}
	newSupply, err := math.Add256(supply, amount)
	if err != nil {
		return fmt.Errorf("%s supply: %w", t.kind, err)
	}
	balance, err := t.chain.GetBalance(t.kind, to)
	if err != nil {
		return err
	}
	// balance <= supply, so this cannot overflow
	balance.Add(balance, amount)
	if err := t.chain.SetBalance(t.kind, to, balance); err != nil {
		return err
	}
	return t.chain.SetTotalSupply(t.kind, newSupply)
}

// Burn destroys [amount] held by [from].
func (t *Token) Burn(from ids.ShortID, amount *uint256.Int) error {
	balance, err := t.chain.GetBalance(t.kind, from)
	if err != nil {
		return err
	}
	if balance.Lt(amount) {
		return fmt.Errorf("%w: %s %s has %s, burning %s", ErrInsufficientBalance, t.kind, from, balance, amount)
	}
	supply, err := t.chain.GetTotalSupply(t.kind)
	if err != nil {
		return err
	}
	newSupply, err := math.Sub256(supply, amount)
	if err != nil {
		return fmt.Errorf("%s supply: %w", t.kind, err)
	}
	if err := t.chain.SetBalance(t.kind, from, balance.Sub(balance, amount)); err != nil {
		return err
	}
	return t.chain.SetTotalSupply(t.kind, newSupply)
}
