// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package rewardflow routes Geras through a weighted graph attached to the
// artifact tree. Each artifact may own one flow. A flow forwards its balance
// along its allocations and escrows the rest for the artifact's holders.
package rewardflow

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/database"
	"github.com/luxfi/ids"

	"github.com/luxfi/honor/artifact"
	"github.com/luxfi/honor/state"
	"github.com/luxfi/honor/token"
	"github.com/luxfi/honor/utils/math"
)

// flowAddressPrefix separates flow addresses from artifact addresses derived
// from the same artifact.
const flowAddressPrefix uint64 = 0x666c6f77

var (
	ErrUnverifiedArtifact = errors.New("unverified artifact")
	ErrFlowExists         = errors.New("reward flow already exists")
	ErrUnknownFlow        = errors.New("unknown reward flow")
	ErrUnknownRewardPool  = errors.New("unknown reward pool")
	ErrSelfAllocation     = errors.New("flow cannot allocate to itself")
	ErrWeightOverflow     = errors.New("allocation weights exceed denominator")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInsufficientClaim  = artifact.ErrInsufficientClaim
)

// Transfer is one edge payment made by PayForward.
type Transfer struct {
	Target ids.ShortID
	Amount *uint256.Int
}

// PayForwardResult describes how a flow balance was split.
type PayForwardResult struct {
	Artifact  ids.ShortID
	Balance   *uint256.Int
	Transfers []Transfer
	// Retained is escrowed for the holders of the flow's artifact.
	Retained *uint256.Int
}

type Graph struct {
	chain       state.Chain
	registry    *artifact.Registry
	rewards     *token.Token
	pool        ids.ShortID
	denominator uint32
}

func New(
	chain state.Chain,
	registry *artifact.Registry,
	rewards *token.Token,
	pool ids.ShortID,
	denominator uint32,
) *Graph {
	return &Graph{
		chain:       chain,
		registry:    registry,
		rewards:     rewards,
		pool:        pool,
		denominator: denominator,
	}
}

// Address returns the Geras account that holds the balance of the flow of
// [artifactID].
func Address(artifactID ids.ShortID) ids.ShortID {
	var seed ids.ID
	copy(seed[:], artifactID[:])
	derived := seed.Prefix(flowAddressPrefix)

	var addr ids.ShortID
	copy(addr[:], derived[:])
	return addr
}

// Create attaches a flow to a registered artifact. [pool] must be the Geras
// pool the graph streams from.
func (g *Graph) Create(now uint64, artifactID, pool ids.ShortID) (*state.Flow, error) {
	if pool != g.pool {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRewardPool, pool)
	}
	registered, err := g.registry.IsRegistered(artifactID)
	if err != nil {
		return nil, err
	}
	if !registered {
		return nil, fmt.Errorf("%w: %s", ErrUnverifiedArtifact, artifactID)
	}
	_, err = g.chain.GetFlow(artifactID)
	switch {
	case err == nil:
		return nil, fmt.Errorf("%w: %s", ErrFlowExists, artifactID)
	case !errors.Is(err, database.ErrNotFound):
		return nil, err
	}

	flow := &state.Flow{
		Artifact:  artifactID,
		Address:   Address(artifactID),
		Pool:      pool,
		CreatedAt: now,
	}
	return flow, g.chain.PutFlow(flow)
}

// Get returns the flow of [artifactID] or ErrUnknownFlow.
func (g *Graph) Get(artifactID ids.ShortID) (*state.Flow, error) {
	flow, err := g.chain.GetFlow(artifactID)
	if errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFlow, artifactID)
	}
	return flow, err
}

func (g *Graph) Flows() ([]*state.Flow, error) {
	return g.chain.GetFlows()
}

// Balance returns the Geras waiting in the flow of [artifactID].
func (g *Graph) Balance(artifactID ids.ShortID) (*uint256.Int, error) {
	flow, err := g.Get(artifactID)
	if err != nil {
		return nil, err
	}
	return g.rewards.BalanceOf(flow.Address)
}

// SubmitAllocation sets the weight of the edge [source] -> [target]. A zero
// weight removes the edge.
func (g *Graph) SubmitAllocation(source, target ids.ShortID, weight uint32) error {
	if source == target {
		return fmt.Errorf("%w: %s", ErrSelfAllocation, source)
	}
	flow, err := g.Get(source)
	if err != nil {
		return err
	}
	if _, err := g.Get(target); err != nil {
		return err
	}

	var (
		allocations = make([]state.Allocation, 0, len(flow.Allocations)+1)
		total       uint32
		found       bool
	)
	for _, allocation := range flow.Allocations {
		if allocation.Target == target {
			found = true
			allocation.Weight = weight
		}
		if allocation.Weight == 0 {
			continue
		}
		allocations = append(allocations, allocation)
		total, err = math.Add(total, allocation.Weight)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrWeightOverflow, err)
		}
	}
	if !found && weight > 0 {
		allocations = append(allocations, state.Allocation{
			Target: target,
			Weight: weight,
		})
		total, err = math.Add(total, weight)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrWeightOverflow, err)
		}
	}
	if total > g.denominator {
		return fmt.Errorf("%w: %d > %d", ErrWeightOverflow, total, g.denominator)
	}

	flow.Allocations = allocations
	flow.TotalWeight = total
	return g.chain.PutFlow(flow)
}
