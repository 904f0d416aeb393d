// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package artifact maintains the contribution tree: artifact records, the
// units each holder owns in them, builder accrual and the per-holder reward
// claims funded by the reward-flow graph.
package artifact

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/ids"

	"github.com/luxfi/honor/state"
	"github.com/luxfi/honor/utils/math"
	"github.com/luxfi/honor/utils/units"
)

const BpsDenominator uint64 = 10_000

var (
	ErrUnknownArtifact   = errors.New("unknown artifact")
	ErrUnknownParent     = errors.New("unknown parent artifact")
	ErrNotChild          = errors.New("artifact is not a child of parent")
	ErrNotValidated      = errors.New("artifact is not validated")
	ErrAlreadyValidated  = errors.New("artifact already validated")
	ErrInsufficientUnits = errors.New("insufficient units")
	ErrInsufficientClaim = errors.New("insufficient reward claim")

	// RewardScale is the fixed point of Artifact.RewardPerUnit.
	RewardScale = uint256.NewInt(1_000_000_000_000_000_000)

	accrualDenominator = new(uint256.Int).Mul(
		uint256.NewInt(BpsDenominator),
		uint256.NewInt(units.SecondsPerYear),
	)
)

// Registry reads and mutates artifacts stored in a state.Chain. Every mutator
// persists the artifact it was handed, so callers may keep using the pointer.
type Registry struct {
	chain      state.Chain
	accrualBps uint64
}

func NewRegistry(chain state.Chain, accrualBps uint64) *Registry {
	return &Registry{
		chain:      chain,
		accrualBps: accrualBps,
	}
}

// Get returns the artifact at [id] or ErrUnknownArtifact.
func (r *Registry) Get(id ids.ShortID) (*state.Artifact, error) {
	a, err := r.chain.GetArtifact(id)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownArtifact, id)
	}
	return a, err
}

func (r *Registry) IsRegistered(id ids.ShortID) (bool, error) {
	return r.chain.HasArtifact(id)
}

func (r *Registry) BuilderOf(id ids.ShortID) (ids.ShortID, error) {
	a, err := r.Get(id)
	if err != nil {
		return ids.ShortEmpty, err
	}
	return a.Builder, nil
}

func (r *Registry) Children(id ids.ShortID) ([]ids.ShortID, error) {
	a, err := r.Get(id)
	if err != nil {
		return nil, err
	}
	return a.Children, nil
}

// CreateRoot writes the root artifact, whose parent is itself.
func (r *Registry) CreateRoot(now uint64, builder ids.ShortID, label string) (*state.Artifact, error) {
	g, err := r.chain.GetGlobals()
	switch {
	case errors.Is(err, database.ErrNotFound):
		g = &state.Globals{GenesisTime: now}
	case err != nil:
		return nil, err
	}
	id := deriveAddress(ids.ShortEmpty, g.Nonce)
	root := &state.Artifact{
		ID:          id,
		Parent:      id,
		Builder:     builder,
		Label:       label,
		CreatedAt:   now,
		LastAccrual: now,
		Validated:   true,
	}
	g.Root = id
	g.Nonce++
	if err := r.chain.PutGlobals(g); err != nil {
		return nil, err
	}
	return root, r.chain.PutArtifact(root)
}

// Propose registers an empty child of [parentID]. The child has no supply and
// no collateral until it is seeded.
func (r *Registry) Propose(now uint64, parentID, builder ids.ShortID, label string) (*state.Artifact, error) {
	parent, err := r.chain.GetArtifact(parentID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownParent, parentID)
	}
	if err != nil {
		return nil, err
	}

	g, err := r.chain.GetGlobals()
	if err != nil {
		return nil, err
	}
	var id ids.ShortID
	for {
		id = deriveAddress(parentID, g.Nonce)
		g.Nonce++
		exists, err := r.chain.HasArtifact(id)
		if err != nil {
			return nil, err
		}
		if !exists {
			break
		}
	}
	if err := r.chain.PutGlobals(g); err != nil {
		return nil, err
	}

	child := &state.Artifact{
		ID:          id,
		Parent:      parentID,
		Builder:     builder,
		Label:       label,
		CreatedAt:   now,
		LastAccrual: now,
	}
	if err := r.chain.PutArtifact(child); err != nil {
		return nil, err
	}
	parent.Children = append(parent.Children, id)
	return child, r.chain.PutArtifact(parent)
}

// CheckChild returns the pair ([parentID], [childID]) after verifying that the
// child hangs directly below the parent.
func (r *Registry) CheckChild(parentID, childID ids.ShortID) (*state.Artifact, *state.Artifact, error) {
	parent, err := r.Get(parentID)
	if err != nil {
		return nil, nil, err
	}
	child, err := r.Get(childID)
	if err != nil {
		return nil, nil, err
	}
	if child.IsRoot() || child.Parent != parentID {
		return nil, nil, fmt.Errorf("%w: %s below %s", ErrNotChild, childID, parentID)
	}
	return parent, child, nil
}

// MarkValidated flags [child] as accepted by its parent.
func (r *Registry) MarkValidated(child *state.Artifact) error {
	if child.Validated {
		return fmt.Errorf("%w: %s", ErrAlreadyValidated, child.ID)
	}
	child.Validated = true
	return r.chain.PutArtifact(child)
}

// Put persists [a] as is.
func (r *Registry) Put(a *state.Artifact) error {
	return r.chain.PutArtifact(a)
}

func (r *Registry) HoldingOf(artifactID, holder ids.ShortID) (*uint256.Int, error) {
	return r.chain.GetHolding(artifactID, holder)
}

// PendingAccrual returns the builder accrual [a] would settle at [now].
func (r *Registry) PendingAccrual(a *state.Artifact, now uint64) (*uint256.Int, error) {
	if now <= a.LastAccrual || r.accrualBps == 0 || a.Supply.IsZero() {
		return new(uint256.Int), nil
	}
	elapsed := uint256.NewInt(now - a.LastAccrual)
	rate, err := math.Mul256(elapsed, uint256.NewInt(r.accrualBps))
	if err != nil {
		return nil, err
	}
	accrual, err := math.MulDiv(&a.Supply, rate, accrualDenominator)
	if err != nil {
		return nil, err
	}
	return math.Min256(accrual, &a.Supply), nil
}

// Settle credits the pending builder accrual of [a] and moves its accrual
// clock to [now]. Calling it twice at the same [now] is a no-op.
func (r *Registry) Settle(a *state.Artifact, now uint64) (*uint256.Int, error) {
	accrual, err := r.PendingAccrual(a, now)
	if err != nil {
		return nil, err
	}
	if now <= a.LastAccrual {
		return accrual, nil
	}
	a.LastAccrual = now
	if accrual.IsZero() {
		return accrual, r.chain.PutArtifact(a)
	}
	return accrual, r.Credit(a, a.Builder, accrual)
}

// Credit adds [amount] units to [holder]'s holding in [a].
func (r *Registry) Credit(a *state.Artifact, holder ids.ShortID, amount *uint256.Int) error {
	holding, err := r.settleClaim(a, holder)
	if err != nil {
		return err
	}
	newSupply, err := math.Add256(&a.Supply, amount)
	if err != nil {
		return fmt.Errorf("supply of %s: %w", a.ID, err)
	}
	// holding <= supply
	holding.Add(holding, amount)
	a.Supply.Set(newSupply)
	return r.putHolding(a, holder, holding)
}

// Debit removes [amount] units from [holder]'s holding in [a].
func (r *Registry) Debit(a *state.Artifact, holder ids.ShortID, amount *uint256.Int) error {
	holding, err := r.settleClaim(a, holder)
	if err != nil {
		return err
	}
	if holding.Lt(amount) {
		return fmt.Errorf("%w: %s holds %s of %s, needs %s", ErrInsufficientUnits, holder, holding, a.ID, amount)
	}
	holding.Sub(holding, amount)
	a.Supply.Sub(&a.Supply, amount)
	return r.putHolding(a, holder, holding)
}

func (r *Registry) putHolding(a *state.Artifact, holder ids.ShortID, holding *uint256.Int) error {
	if err := r.chain.SetHolding(a.ID, holder, holding); err != nil {
		return err
	}
	claim, err := r.chain.GetClaim(a.ID, holder)
	if err != nil {
		return err
	}
	debt, err := accumulated(holding, &a.RewardPerUnit)
	if err != nil {
		return err
	}
	claim.Debt.Set(debt)
	if err := r.chain.PutClaim(a.ID, holder, claim); err != nil {
		return err
	}
	return r.chain.PutArtifact(a)
}

func deriveAddress(parent ids.ShortID, nonce uint64) ids.ShortID {
	var seed ids.ID
	copy(seed[:], parent[:])
	derived := seed.Prefix(nonce)

	var addr ids.ShortID
	copy(addr[:], derived[:])
	return addr
}
