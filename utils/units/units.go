// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package units

import "github.com/holiman/uint256"

// Denominations of Honor and Geras. Both use 18 decimals.
const (
	Wei        uint64 = 1
	GWei       uint64 = 1_000_000_000 * Wei
	MilliHonor uint64 = 1_000_000 * GWei
	Honor      uint64 = 1000 * MilliHonor
)

// Time constants used by every accrual and emission formula.
const (
	SecondsPerHour uint64 = 60 * 60
	SecondsPerDay  uint64 = 24 * SecondsPerHour
	SecondsPerYear uint64 = 365 * SecondsPerDay
)

// Whole returns [n] whole Honor in base units.
func Whole(n uint64) *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(n), uint256.NewInt(Honor))
}
