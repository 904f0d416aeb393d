// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package asset

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/database/prefixdb"
	"github.com/luxfi/ids"

	"github.com/luxfi/honor/utils/math"
)

var (
	_ Asset = (*Rebasing)(nil)

	sharesPrefix = []byte("shares")
	factorKey    = []byte("factor")
)

// Rebasing is a database-backed rebasing token. Accounts own shares, and the
// raw balance of an account is shares * factor / Precision, so a rebase
// changes every raw balance at once.
type Rebasing struct {
	lock     sync.Mutex
	db       database.Database
	sharesDB database.Database
}

func NewRebasing(db database.Database) *Rebasing {
	return &Rebasing{
		db:       db,
		sharesDB: prefixdb.New(sharesPrefix, db),
	}
}

func (r *Rebasing) BalanceOf(_ context.Context, account ids.ShortID) (*uint256.Int, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	factor, err := r.factor()
	if err != nil {
		return nil, err
	}
	shares, err := r.shares(account)
	if err != nil {
		return nil, err
	}
	return ToRaw(shares, factor)
}

func (r *Rebasing) RebaseFactor(context.Context) (*uint256.Int, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	return r.factor()
}

func (r *Rebasing) Transfer(_ context.Context, from, to ids.ShortID, amount *uint256.Int) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	factor, err := r.factor()
	if err != nil {
		return err
	}
	// round the shares up so the recipient never receives less than [amount]
	shares, overflow := new(uint256.Int).MulDivOverflow(amount, Precision, factor)
	if overflow {
		return math.ErrOverflow
	}
	raw, err := ToRaw(shares, factor)
	if err != nil {
		return err
	}
	if raw.Lt(amount) {
		shares.AddUint64(shares, 1)
	}

	fromShares, err := r.shares(from)
	if err != nil {
		return err
	}
	if fromShares.Lt(shares) {
		return fmt.Errorf("%w: %s", ErrInsufficientBalance, from)
	}
	if from == to {
		return nil
	}
	toShares, err := r.shares(to)
	if err != nil {
		return err
	}
	newToShares, err := math.Add256(toShares, shares)
	if err != nil {
		return err
	}
	if err := r.putShares(from, fromShares.Sub(fromShares, shares)); err != nil {
		return err
	}
	return r.putShares(to, newToShares)
}

// Mint credits [amount] raw units to [to] at the current factor.
func (r *Rebasing) Mint(to ids.ShortID, amount *uint256.Int) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	factor, err := r.factor()
	if err != nil {
		return err
	}
	shares, err := ToVirtual(amount, factor)
	if err != nil {
		return err
	}
	current, err := r.shares(to)
	if err != nil {
		return err
	}
	newShares, err := math.Add256(current, shares)
	if err != nil {
		return err
	}
	return r.putShares(to, newShares)
}

// Rebase multiplies the factor by [numerator]/[denominator].
func (r *Rebasing) Rebase(numerator, denominator uint64) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	factor, err := r.factor()
	if err != nil {
		return err
	}
	newFactor, err := math.MulDiv(factor, uint256.NewInt(numerator), uint256.NewInt(denominator))
	if err != nil {
		return err
	}
	if newFactor.IsZero() {
		return ErrInvalidFactor
	}
	b := newFactor.Bytes32()
	return r.db.Put(factorKey, b[:])
}

func (r *Rebasing) factor() (*uint256.Int, error) {
	b, err := r.db.Get(factorKey)
	if errors.Is(err, database.ErrNotFound) {
		return Precision.Clone(), nil
	}
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(b), nil
}

func (r *Rebasing) shares(account ids.ShortID) (*uint256.Int, error) {
	b, err := r.sharesDB.Get(account[:])
	if errors.Is(err, database.ErrNotFound) {
		return new(uint256.Int), nil
	}
	if err != nil {
		return nil, err
	}
	return new(uint256.Int).SetBytes(b), nil
}

func (r *Rebasing) putShares(account ids.ShortID, shares *uint256.Int) error {
	if shares.IsZero() {
		return r.sharesDB.Delete(account[:])
	}
	b := shares.Bytes32()
	return r.sharesDB.Put(account[:], b[:])
}
