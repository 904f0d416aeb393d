// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package run

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/luxfi/log"

	"github.com/luxfi/honor/cmd/honorctl/flow"
	"github.com/luxfi/honor/cmd/honorctl/node"
)

var (
	errUnexpectedSuccess = errors.New("step succeeded but was expected to fail")
	errCheckFailed       = errors.New("check failed")
)

// Runner executes scenarios against a node.
type Runner struct {
	node  *node.Node
	out   io.Writer
	names map[string]ids.ShortID
}

func NewRunner(n *node.Node, out io.Writer) *Runner {
	return &Runner{
		node:  n,
		out:   out,
		names: make(map[string]ids.ShortID),
	}
}

// Run executes every step of [s] in order and stops at the first step that
// does not behave as scripted.
func (r *Runner) Run(ctx context.Context, s *Scenario) error {
	for i := range s.Steps {
		step := &s.Steps[i]
		err := r.step(ctx, step)
		switch {
		case step.Error == "" && err != nil:
			return fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		case step.Error != "" && err == nil:
			return fmt.Errorf("step %d (%s): %w", i, step.Op, errUnexpectedSuccess)
		case step.Error != "" && !strings.Contains(err.Error(), step.Error):
			return fmt.Errorf("step %d (%s): expected error %q: %w", i, step.Op, step.Error, err)
		case err != nil:
			fmt.Fprintf(r.out, "%d %s: failed as expected: %v\n", i, step.Op, err)
		}
		r.node.Log.Debug("ran scenario step",
			log.Int("step", i),
			log.String("op", step.Op),
		)
	}
	return nil
}

// Name returns the account bound to [name] by a propose step.
func (r *Runner) Name(name string) (ids.ShortID, bool) {
	id, ok := r.names[name]
	return id, ok
}

func (r *Runner) step(ctx context.Context, s *Step) error {
	e := r.node.Engine
	switch s.Op {
	case OpPropose:
		caller, parent, err := r.pair(s.Caller, s.Parent)
		if err != nil {
			return err
		}
		builder := caller
		if s.Builder != "" {
			if builder, err = r.resolve(s.Builder); err != nil {
				return err
			}
		}
		id, err := e.ProposeArtifact(caller, parent, builder, s.Label)
		if err != nil {
			return err
		}
		if s.As != "" {
			r.names[s.As] = id
		}
		r.printf("proposed %s %s", s.Label, id)
		return nil

	case OpValidate, OpVouch:
		caller, parent, err := r.pair(s.Caller, s.Parent)
		if err != nil {
			return err
		}
		child, err := r.resolve(s.Child)
		if err != nil {
			return err
		}
		if s.Op == OpValidate {
			return e.ValidateArtifact(caller, parent, child)
		}
		amount, err := node.ParseAmount(s.Amount)
		if err != nil {
			return err
		}
		result, err := e.Vouch(caller, parent, child, amount)
		if err != nil {
			return err
		}
		r.printf("vouch released %s minted %s", result.Released, result.Minted)
		return nil

	case OpSend:
		from, to, err := r.pair(s.From, s.To)
		if err != nil {
			return err
		}
		amount, err := node.ParseAmount(s.Amount)
		if err != nil {
			return err
		}
		return e.SendCoin(from, to, amount)

	case OpSettle:
		artifact, err := r.resolve(s.Artifact)
		if err != nil {
			return err
		}
		accrual, err := e.SettleAccrual(artifact)
		if err != nil {
			return err
		}
		r.printf("settled %s", accrual)
		return nil

	case OpAssetMint:
		to, err := r.resolve(s.To)
		if err != nil {
			return err
		}
		amount, err := node.ParseAmount(s.Amount)
		if err != nil {
			return err
		}
		return r.node.Asset.Mint(to, amount)

	case OpRebase:
		return r.node.Asset.Rebase(s.Numerator, s.Denominator)

	case OpStake:
		caller, artifact, err := r.pair(s.Caller, s.Artifact)
		if err != nil {
			return err
		}
		amount, err := node.ParseAmount(s.Amount)
		if err != nil {
			return err
		}
		if err := r.node.Asset.Transfer(ctx, caller, e.Config().GerasPool, amount); err != nil {
			return err
		}
		virtual, err := e.StakeAsset(ctx, caller, artifact)
		if err != nil {
			return err
		}
		r.printf("staked %s virtual", virtual)
		return nil

	case OpUnstake:
		caller, artifact, err := r.pair(s.Caller, s.Artifact)
		if err != nil {
			return err
		}
		amount, err := node.ParseAmount(s.Amount)
		if err != nil {
			return err
		}
		raw, err := e.UnstakeAsset(ctx, caller, artifact, amount)
		if err != nil {
			return err
		}
		r.printf("unstaked %s raw", raw)
		return nil

	case OpFund:
		from, err := r.resolve(s.From)
		if err != nil {
			return err
		}
		amount, err := node.ParseAmount(s.Amount)
		if err != nil {
			return err
		}
		if err := r.node.Asset.Transfer(ctx, from, e.Config().GerasPool, amount); err != nil {
			return err
		}
		added, err := e.FundReserve(ctx)
		if err != nil {
			return err
		}
		r.printf("funded %s virtual", added)
		return nil

	case OpDistribute:
		if s.Artifact == "" {
			emissions, err := e.DistributeAll()
			if err != nil {
				return err
			}
			for _, emission := range emissions {
				r.printf("emitted %s to %s", emission.Amount, emission.Artifact)
			}
			return nil
		}
		artifact, err := r.resolve(s.Artifact)
		if err != nil {
			return err
		}
		reward, err := e.DistributeGeras(artifact)
		if err != nil {
			return err
		}
		r.printf("emitted %s to %s", reward, artifact)
		return nil

	case OpMint:
		var (
			minted *uint256.Int
			err    error
		)
		if s.Account == "" {
			minted, err = e.MintToStakers()
		} else {
			var staker ids.ShortID
			if staker, err = r.resolve(s.Account); err != nil {
				return err
			}
			minted, err = e.MintToStaker(staker)
		}
		if err != nil {
			return err
		}
		r.printf("minted %s honor", minted)
		return nil

	case OpCreateFlow:
		artifact, err := r.resolve(s.Artifact)
		if err != nil {
			return err
		}
		_, err = e.CreateRewardFlow(artifact, e.Config().GerasPool)
		return err

	case OpAllocate:
		source, target, err := r.pair(s.Artifact, s.Target)
		if err != nil {
			return err
		}
		return e.SubmitAllocation(source, target, s.Weight)

	case OpPayForward:
		artifact, err := r.resolve(s.Artifact)
		if err != nil {
			return err
		}
		if !s.Propagate {
			result, err := e.PayForward(artifact)
			if err != nil {
				return err
			}
			flow.PrintResult(r.out, result)
			return nil
		}
		results, err := e.Propagate(artifact)
		if err != nil {
			return err
		}
		for _, result := range results {
			flow.PrintResult(r.out, result)
		}
		return nil

	case OpRedeem:
		caller, artifact, err := r.pair(s.Caller, s.Artifact)
		if err != nil {
			return err
		}
		amount, err := node.ParseAmount(s.Amount)
		if err != nil {
			return err
		}
		raw, err := e.RedeemReward(ctx, caller, artifact, amount)
		if err != nil {
			return err
		}
		r.printf("redeemed %s raw", raw)
		return nil

	case OpAdvance:
		r.node.Clock.Advance(time.Duration(s.Seconds) * time.Second)
		return nil

	case OpCheck:
		return r.check(ctx, s)

	default:
		return fmt.Errorf("%w %q", errUnknownOp, s.Op)
	}
}

func (r *Runner) check(ctx context.Context, s *Step) error {
	expected, err := node.ParseAmount(s.Expect)
	if err != nil {
		return err
	}

	var actual *uint256.Int
	e := r.node.Engine
	switch s.Check {
	case CheckSupply:
		actual, err = e.HonorSupply()
	case CheckHonor, CheckGeras, CheckAsset:
		account, err := r.resolve(s.Account)
		if err != nil {
			return err
		}
		switch s.Check {
		case CheckHonor:
			actual, err = e.BalanceOf(account)
		case CheckGeras:
			actual, err = e.GerasBalanceOf(account)
		default:
			actual, err = r.node.Asset.BalanceOf(ctx, account)
		}
		if err != nil {
			return err
		}
	case CheckUnits, CheckClaim:
		account, artifact, err := r.pair(s.Account, s.Artifact)
		if err != nil {
			return err
		}
		if s.Check == CheckUnits {
			actual, err = e.BalanceOfArtifact(artifact, account)
		} else {
			actual, err = e.RewardClaimOf(artifact, account)
		}
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w %q", errUnknownCheck, s.Check)
	}
	if err != nil {
		return err
	}
	if !actual.Eq(expected) {
		return fmt.Errorf("%w: %s is %s, expected %s", errCheckFailed, s.Check, actual, expected)
	}
	r.printf("%s %s ok", s.Check, actual)
	return nil
}

func (r *Runner) resolve(name string) (ids.ShortID, error) {
	if id, ok := r.names[name]; ok {
		return id, nil
	}
	id, err := node.ParseAccount(name)
	if err != nil {
		return ids.ShortID{}, err
	}
	return r.node.Artifact(id)
}

func (r *Runner) pair(a, b string) (ids.ShortID, ids.ShortID, error) {
	first, err := r.resolve(a)
	if err != nil {
		return ids.ShortID{}, ids.ShortID{}, err
	}
	second, err := r.resolve(b)
	if err != nil {
		return ids.ShortID{}, ids.ShortID{}, err
	}
	return first, second, nil
}

func (r *Runner) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format+"\n", args...)
}
