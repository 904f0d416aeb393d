// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package run

import (
	"bytes"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

const (
	OpPropose    = "propose"
	OpValidate   = "validate"
	OpVouch      = "vouch"
	OpSend       = "send"
	OpSettle     = "settle"
	OpAssetMint  = "asset-mint"
	OpRebase     = "rebase"
	OpStake      = "stake"
	OpUnstake    = "unstake"
	OpFund       = "fund"
	OpDistribute = "distribute"
	OpMint       = "mint"
	OpCreateFlow = "create-flow"
	OpAllocate   = "allocate"
	OpPayForward = "pay-forward"
	OpRedeem     = "redeem"
	OpAdvance    = "advance"
	OpCheck      = "check"
)

// Values a check step can read.
const (
	CheckHonor  = "honor"
	CheckGeras  = "geras"
	CheckAsset  = "asset"
	CheckUnits  = "units"
	CheckClaim  = "claim"
	CheckSupply = "supply"
)

var (
	errNoSteps      = errors.New("scenario has no steps")
	errUnknownOp    = errors.New("unknown op")
	errUnknownCheck = errors.New("unknown check")
	errMissingField = errors.New("missing field")
	errDuplicateAs  = errors.New("name bound twice")
	errMisplacedAs  = errors.New("only propose steps bind names")
)

// Scenario is a scripted sequence of engine operations.
type Scenario struct {
	// Start fakes the clock at this unix time when the engine is opened.
	// Zero keeps the wall clock.
	Start uint64 `yaml:"start"`
	Steps []Step `yaml:"steps"`
}

// Step is one operation. Only the fields its op reads are used. Accounts and
// artifacts are cb58 short IDs, names bound by an earlier step's As, "root",
// or short literal names.
type Step struct {
	Op string `yaml:"op"`

	Caller   string `yaml:"caller"`
	Parent   string `yaml:"parent"`
	Child    string `yaml:"child"`
	Builder  string `yaml:"builder"`
	Label    string `yaml:"label"`
	Artifact string `yaml:"artifact"`
	Target   string `yaml:"target"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
	Account  string `yaml:"account"`
	Amount   string `yaml:"amount"`
	Weight   uint32 `yaml:"weight"`

	Numerator   uint64 `yaml:"numerator"`
	Denominator uint64 `yaml:"denominator"`
	Seconds     uint64 `yaml:"seconds"`
	Propagate   bool   `yaml:"propagate"`

	// Check names the value a check step compares against Expect.
	Check  string `yaml:"check"`
	Expect string `yaml:"expect"`

	// As binds the artifact created by a propose step to a name.
	As string `yaml:"as"`
	// Error makes the step pass only if it fails with an error containing
	// this text.
	Error string `yaml:"error"`
}

// Parse decodes and checks a scenario. Unknown fields are rejected.
func Parse(b []byte) (*Scenario, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	var s Scenario
	if err := dec.Decode(&s); err != nil {
		return nil, err
	}
	return &s, s.Verify()
}

func (s *Scenario) Verify() error {
	if len(s.Steps) == 0 {
		return errNoSteps
	}
	names := make(map[string]struct{})
	for i, step := range s.Steps {
		if err := step.verify(); err != nil {
			return fmt.Errorf("step %d (%s): %w", i, step.Op, err)
		}
		if step.As == "" {
			continue
		}
		if _, ok := names[step.As]; ok {
			return fmt.Errorf("step %d: %w: %q", i, errDuplicateAs, step.As)
		}
		names[step.As] = struct{}{}
	}
	return nil
}

func (s *Step) verify() error {
	var required map[string]string
	switch s.Op {
	case OpPropose:
		required = map[string]string{"caller": s.Caller, "parent": s.Parent}
	case OpValidate:
		required = map[string]string{"caller": s.Caller, "parent": s.Parent, "child": s.Child}
	case OpVouch:
		required = map[string]string{"caller": s.Caller, "parent": s.Parent, "child": s.Child, "amount": s.Amount}
	case OpSend:
		required = map[string]string{"from": s.From, "to": s.To, "amount": s.Amount}
	case OpSettle, OpCreateFlow, OpPayForward:
		required = map[string]string{"artifact": s.Artifact}
	case OpAssetMint:
		required = map[string]string{"to": s.To, "amount": s.Amount}
	case OpStake, OpUnstake:
		required = map[string]string{"caller": s.Caller, "artifact": s.Artifact, "amount": s.Amount}
	case OpFund:
		required = map[string]string{"from": s.From, "amount": s.Amount}
	case OpAllocate:
		required = map[string]string{"artifact": s.Artifact, "target": s.Target}
	case OpRedeem:
		required = map[string]string{"caller": s.Caller, "artifact": s.Artifact, "amount": s.Amount}
	case OpRebase:
		if s.Denominator == 0 {
			return fmt.Errorf("%w: denominator", errMissingField)
		}
	case OpDistribute, OpMint, OpAdvance:
	case OpCheck:
		switch s.Check {
		case CheckHonor, CheckGeras, CheckAsset:
			required = map[string]string{"account": s.Account, "expect": s.Expect}
		case CheckUnits, CheckClaim:
			required = map[string]string{"account": s.Account, "artifact": s.Artifact, "expect": s.Expect}
		case CheckSupply:
			required = map[string]string{"expect": s.Expect}
		default:
			return fmt.Errorf("%w %q", errUnknownCheck, s.Check)
		}
	default:
		return fmt.Errorf("%w %q", errUnknownOp, s.Op)
	}
	for field, value := range required {
		if value == "" {
			return fmt.Errorf("%w: %s", errMissingField, field)
		}
	}
	if s.As != "" && s.Op != OpPropose {
		return errMisplacedAs
	}
	return nil
}
