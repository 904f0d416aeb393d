// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package honor moves Honor through the artifact tree. Vouching burns units
// of a parent artifact, releases the matching Honor along the bonding curve
// and deposits it into a child, minting child units for the voucher.
package honor

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"

	"github.com/luxfi/honor/artifact"
	"github.com/luxfi/honor/curve"
	"github.com/luxfi/honor/state"
	"github.com/luxfi/honor/token"
)

var (
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrLedgerMismatch      = errors.New("artifact collateral does not match its Honor balance")
	ErrArtifactAccount     = errors.New("artifact balances only move by vouching")
	ErrInsufficientBalance = token.ErrInsufficientBalance
)

// VouchResult reports the effect of a vouch.
type VouchResult struct {
	// Released is the Honor moved from the parent into the child.
	Released *uint256.Int
	// Minted is the number of child units credited to the voucher.
	Minted *uint256.Int
}

type Ledger struct {
	registry *artifact.Registry
	curve    *curve.Curve
	honor    *token.Token
}

func NewLedger(chain state.Chain, registry *artifact.Registry, c *curve.Curve) *Ledger {
	return &Ledger{
		registry: registry,
		curve:    c,
		honor:    token.New(chain, state.Honor),
	}
}

func (l *Ledger) Token() *token.Token {
	return l.honor
}

func (l *Ledger) BalanceOf(addr ids.ShortID) (*uint256.Int, error) {
	return l.honor.BalanceOf(addr)
}

func (l *Ledger) TotalSupply() (*uint256.Int, error) {
	return l.honor.TotalSupply()
}

// Genesis creates the root artifact backed by [supply] Honor and credits its
// curve supply to [holder].
func (l *Ledger) Genesis(now uint64, holder, builder ids.ShortID, label string, supply *uint256.Int) (*state.Artifact, error) {
	root, err := l.registry.CreateRoot(now, builder, label)
	if err != nil {
		return nil, err
	}
	if _, err := l.MintInto(root, holder, supply); err != nil {
		return nil, err
	}
	return root, nil
}

// Vouch burns [amount] of [caller]'s units in [parentID] and deposits the
// released Honor into [childID]. The child must already be validated.
func (l *Ledger) Vouch(now uint64, caller, parentID, childID ids.ShortID, amount *uint256.Int) (*VouchResult, error) {
	parent, child, err := l.registry.CheckChild(parentID, childID)
	if err != nil {
		return nil, err
	}
	if !child.Validated {
		return nil, fmt.Errorf("%w: %s", artifact.ErrNotValidated, childID)
	}
	return l.vouch(now, caller, parent, child, amount)
}

// Seed performs the first vouch into a freshly proposed child, whether or not
// it has been validated yet.
func (l *Ledger) Seed(now uint64, caller ids.ShortID, parent, child *state.Artifact, amount *uint256.Int) (*VouchResult, error) {
	return l.vouch(now, caller, parent, child, amount)
}

func (l *Ledger) vouch(now uint64, caller ids.ShortID, parent, child *state.Artifact, amount *uint256.Int) (*VouchResult, error) {
	if amount == nil || amount.IsZero() {
		return nil, ErrInvalidAmount
	}
	if _, err := l.registry.Settle(parent, now); err != nil {
		return nil, err
	}
	if _, err := l.registry.Settle(child, now); err != nil {
		return nil, err
	}

	holding, err := l.registry.HoldingOf(parent.ID, caller)
	if err != nil {
		return nil, err
	}
	if holding.Lt(amount) {
		return nil, fmt.Errorf("%w: %s holds %s units of %s, vouching %s", ErrInsufficientBalance, caller, holding, parent.ID, amount)
	}

	released, err := l.curve.Release(&parent.Collateral, &parent.Supply, amount)
	if err != nil {
		return nil, err
	}
	if released.IsZero() {
		return nil, fmt.Errorf("%w: %s units of %s release no Honor", ErrInvalidAmount, amount, parent.ID)
	}
	if err := l.registry.Debit(parent, caller, amount); err != nil {
		return nil, err
	}
	if err := l.honor.Transfer(parent.ID, child.ID, released); err != nil {
		return nil, err
	}
	parent.Collateral.Sub(&parent.Collateral, released)
	if err := l.registry.Put(parent); err != nil {
		return nil, err
	}

	minted, err := l.deposit(child, caller, released)
	if err != nil {
		return nil, err
	}
	if err := l.CheckCollateral(parent); err != nil {
		return nil, err
	}
	if err := l.CheckCollateral(child); err != nil {
		return nil, err
	}
	return &VouchResult{
		Released: released,
		Minted:   minted,
	}, nil
}

// MintInto mints [amount] fresh Honor into [a] and deposits it through the
// curve on behalf of [holder].
func (l *Ledger) MintInto(a *state.Artifact, holder ids.ShortID, amount *uint256.Int) (*uint256.Int, error) {
	if amount == nil || amount.IsZero() {
		return nil, ErrInvalidAmount
	}
	if err := l.honor.Mint(a.ID, amount); err != nil {
		return nil, err
	}
	minted, err := l.deposit(a, holder, amount)
	if err != nil {
		return nil, err
	}
	return minted, l.CheckCollateral(a)
}

// deposit accounts [amount] Honor, already held by [a], as collateral and
// credits the resulting units to [holder].
func (l *Ledger) deposit(a *state.Artifact, holder ids.ShortID, amount *uint256.Int) (*uint256.Int, error) {
	minted, err := l.curve.Deposit(&a.Collateral, &a.Supply, amount)
	if err != nil {
		return nil, err
	}
	a.Collateral.Add(&a.Collateral, amount)
	return minted, l.registry.Credit(a, holder, minted)
}

// SendCoin transfers Honor between two accounts. Neither may be an artifact.
func (l *Ledger) SendCoin(from, to ids.ShortID, amount *uint256.Int) error {
	if amount == nil {
		return ErrInvalidAmount
	}
	for _, addr := range []ids.ShortID{from, to} {
		registered, err := l.registry.IsRegistered(addr)
		if err != nil {
			return err
		}
		if registered {
			return fmt.Errorf("%w: %s", ErrArtifactAccount, addr)
		}
	}
	return l.honor.Transfer(from, to, amount)
}

// CheckCollateral verifies that [a] accounts for exactly the Honor it holds.
func (l *Ledger) CheckCollateral(a *state.Artifact) error {
	balance, err := l.honor.BalanceOf(a.ID)
	if err != nil {
		return err
	}
	if !balance.Eq(&a.Collateral) {
		return fmt.Errorf("%w: %s accounts %s, holds %s", ErrLedgerMismatch, a.ID, &a.Collateral, balance)
	}
	return nil
}
