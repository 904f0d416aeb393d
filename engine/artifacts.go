// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package engine

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/honor/honor"
	"github.com/luxfi/honor/state"
)

// RootArtifact returns the address of the root of the artifact tree.
func (e *Engine) RootArtifact() (ids.ShortID, error) {
	return view(e, func() (ids.ShortID, error) {
		g, err := e.state.GetGlobals()
		if err != nil {
			return ids.ShortEmpty, err
		}
		return g.Root, nil
	})
}

// ProposeArtifact registers a child of [parent] built by [builder]. Unless
// validation is required, [caller] seeds it immediately by burning the
// proposal seed from its holding in [parent].
func (e *Engine) ProposeArtifact(caller, parent, builder ids.ShortID, label string) (ids.ShortID, error) {
	var id ids.ShortID
	err := e.update("propose", func(now uint64) error {
		child, err := e.registry.Propose(now, parent, builder, label)
		if err != nil {
			return err
		}
		id = child.ID
		if e.config.RequireValidation {
			return nil
		}
		p, err := e.registry.Get(parent)
		if err != nil {
			return err
		}
		if err := e.seed(now, caller, p, child); err != nil {
			return err
		}
		return e.registry.MarkValidated(child)
	})
	if err != nil {
		return ids.ShortEmpty, err
	}
	e.log.Info("proposed artifact",
		log.Stringer("artifact", id),
		log.Stringer("parent", parent),
		log.Stringer("builder", builder),
		log.String("label", label),
	)
	return id, nil
}

// ValidateArtifact accepts a pending child of [parent]. [caller] seeds it by
// burning the proposal seed from its holding in [parent].
func (e *Engine) ValidateArtifact(caller, parent, child ids.ShortID) error {
	err := e.update("validate", func(now uint64) error {
		p, c, err := e.registry.CheckChild(parent, child)
		if err != nil {
			return err
		}
		if err := e.registry.MarkValidated(c); err != nil {
			return err
		}
		return e.seed(now, caller, p, c)
	})
	if err != nil {
		return err
	}
	e.log.Info("validated artifact",
		log.Stringer("artifact", child),
		log.Stringer("parent", parent),
	)
	return nil
}

func (e *Engine) seed(now uint64, caller ids.ShortID, parent, child *state.Artifact) error {
	_, err := e.ledger.Seed(now, caller, parent, child, &e.config.ProposalSeed)
	return err
}

// Vouch burns [amount] of [caller]'s units in [parent] and deposits the
// released Honor into [child].
func (e *Engine) Vouch(caller, parent, child ids.ShortID, amount *uint256.Int) (*honor.VouchResult, error) {
	var result *honor.VouchResult
	err := e.update("vouch", func(now uint64) error {
		var err error
		result, err = e.ledger.Vouch(now, caller, parent, child, amount)
		return err
	})
	if err != nil {
		return nil, err
	}
	e.log.Debug("vouched",
		log.Stringer("caller", caller),
		log.Stringer("parent", parent),
		log.Stringer("child", child),
		log.Stringer("released", result.Released),
		log.Stringer("minted", result.Minted),
	)
	return result, nil
}

// SendCoin transfers Honor between two user accounts.
func (e *Engine) SendCoin(from, to ids.ShortID, amount *uint256.Int) error {
	return e.update("send", func(uint64) error {
		return e.ledger.SendCoin(from, to, amount)
	})
}

// BalanceOf returns the Honor held by [account].
func (e *Engine) BalanceOf(account ids.ShortID) (*uint256.Int, error) {
	return view(e, func() (*uint256.Int, error) {
		return e.ledger.BalanceOf(account)
	})
}

// HonorSupply returns the total Honor supply.
func (e *Engine) HonorSupply() (*uint256.Int, error) {
	return view(e, e.ledger.TotalSupply)
}

// BalanceOfArtifact returns the units [holder] owns in [artifactID].
func (e *Engine) BalanceOfArtifact(artifactID, holder ids.ShortID) (*uint256.Int, error) {
	return view(e, func() (*uint256.Int, error) {
		if _, err := e.registry.Get(artifactID); err != nil {
			return nil, err
		}
		return e.registry.HoldingOf(artifactID, holder)
	})
}

// InternalHonorBalanceOfArtifact returns the Honor [artifactID] accounts for.
func (e *Engine) InternalHonorBalanceOfArtifact(artifactID ids.ShortID) (*uint256.Int, error) {
	return view(e, func() (*uint256.Int, error) {
		a, err := e.registry.Get(artifactID)
		if err != nil {
			return nil, err
		}
		return a.Collateral.Clone(), nil
	})
}

func (e *Engine) ArtifactBuilder(artifactID ids.ShortID) (ids.ShortID, error) {
	return view(e, func() (ids.ShortID, error) {
		return e.registry.BuilderOf(artifactID)
	})
}

// Artifact returns a copy of the record of [artifactID].
func (e *Engine) Artifact(artifactID ids.ShortID) (*state.Artifact, error) {
	return view(e, func() (*state.Artifact, error) {
		return e.registry.Get(artifactID)
	})
}

// PendingAccrual returns the builder accrual [artifactID] would settle now.
func (e *Engine) PendingAccrual(artifactID ids.ShortID) (*uint256.Int, error) {
	return view(e, func() (*uint256.Int, error) {
		a, err := e.registry.Get(artifactID)
		if err != nil {
			return nil, err
		}
		return e.registry.PendingAccrual(a, e.clock.Unix())
	})
}

// SettleAccrual credits the pending builder accrual of [artifactID].
func (e *Engine) SettleAccrual(artifactID ids.ShortID) (*uint256.Int, error) {
	var accrual *uint256.Int
	err := e.update("settle", func(now uint64) error {
		a, err := e.registry.Get(artifactID)
		if err != nil {
			return err
		}
		accrual, err = e.registry.Settle(a, now)
		return err
	})
	return accrual, err
}
