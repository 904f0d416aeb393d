// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rewardflow

import (
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/luxfi/math/set"

	"github.com/luxfi/honor/utils/math"
)

// PayForward empties the flow of [artifactID]. Every allocation receives
// balance * weight / denominator, and the remainder is escrowed for the
// artifact's holders.
func (g *Graph) PayForward(artifactID ids.ShortID) (*PayForwardResult, error) {
	flow, err := g.Get(artifactID)
	if err != nil {
		return nil, err
	}
	balance, err := g.rewards.BalanceOf(flow.Address)
	if err != nil {
		return nil, err
	}
	result := &PayForwardResult{
		Artifact: artifactID,
		Balance:  balance,
		Retained: new(uint256.Int),
	}
	if balance.IsZero() {
		return result, nil
	}
	if err := g.rewards.Burn(flow.Address, balance); err != nil {
		return nil, err
	}

	denominator := uint256.NewInt(uint64(g.denominator))
	remainder := balance.Clone()
	for _, allocation := range flow.Allocations {
		share, err := math.MulDiv(balance, uint256.NewInt(uint64(allocation.Weight)), denominator)
		if err != nil {
			return nil, err
		}
		if share.IsZero() {
			continue
		}
		if err := g.rewards.Mint(Address(allocation.Target), share); err != nil {
			return nil, err
		}
		remainder.Sub(remainder, share)
		result.Transfers = append(result.Transfers, Transfer{
			Target: allocation.Target,
			Amount: share,
		})
	}

	if !remainder.IsZero() {
		a, err := g.registry.Get(artifactID)
		if err != nil {
			return nil, err
		}
		if err := g.rewards.Mint(artifactID, remainder); err != nil {
			return nil, err
		}
		if err := g.registry.AddRewards(a, remainder); err != nil {
			return nil, err
		}
	}
	result.Retained = remainder
	return result, nil
}

// Propagate pays forward the flow of [artifactID] and then, breadth first,
// every flow reachable from it. Each flow is paid at most once.
func (g *Graph) Propagate(artifactID ids.ShortID) ([]*PayForwardResult, error) {
	var (
		queue   = []ids.ShortID{artifactID}
		visited = set.NewSet[ids.ShortID](1)
		results []*PayForwardResult
	)
	visited.Add(artifactID)
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		result, err := g.PayForward(next)
		if err != nil {
			return nil, err
		}
		results = append(results, result)

		flow, err := g.Get(next)
		if err != nil {
			return nil, err
		}
		for _, allocation := range flow.Allocations {
			if visited.Contains(allocation.Target) {
				continue
			}
			visited.Add(allocation.Target)
			queue = append(queue, allocation.Target)
		}
	}
	return results, nil
}

// ClaimOf returns the Geras [account] can redeem from [artifactID].
func (g *Graph) ClaimOf(artifactID, account ids.ShortID) (*uint256.Int, error) {
	a, err := g.registry.Get(artifactID)
	if err != nil {
		return nil, err
	}
	return g.registry.ClaimOf(a, account)
}

// Redeem burns [amount] of [account]'s claim on [artifactID] out of the
// artifact's escrow. Paying the account is left to the caller.
func (g *Graph) Redeem(artifactID, account ids.ShortID, amount *uint256.Int) error {
	if amount == nil || amount.IsZero() {
		return ErrInvalidAmount
	}
	a, err := g.registry.Get(artifactID)
	if err != nil {
		return err
	}
	if err := g.registry.RedeemClaim(a, account, amount); err != nil {
		return err
	}
	if err := g.rewards.Burn(artifactID, amount); err != nil {
		return fmt.Errorf("escrow of %s: %w", artifactID, err)
	}
	return nil
}

// Restore reverts a Redeem whose payout failed.
func (g *Graph) Restore(artifactID, account ids.ShortID, amount *uint256.Int) error {
	a, err := g.registry.Get(artifactID)
	if err != nil {
		return err
	}
	if err := g.rewards.Mint(artifactID, amount); err != nil {
		return err
	}
	return g.registry.RestoreClaim(a, account, amount)
}
