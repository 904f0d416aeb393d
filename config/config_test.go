// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/stretchr/testify/require"
)

func TestGetConfig(t *testing.T) {
	t.Run("default values from empty json", func(t *testing.T) {
		require := require.New(t)
		c, err := GetConfig([]byte(`{}`))
		require.NoError(err)
		require.Equal(&DefaultConfig, c)
	})

	t.Run("default values from empty bytes", func(t *testing.T) {
		require := require.New(t)
		c, err := GetConfig(nil)
		require.NoError(err)
		require.Equal(&DefaultConfig, c)
	})

	t.Run("mix default and extracted values from json", func(t *testing.T) {
		require := require.New(t)
		c, err := GetConfig([]byte(`{"curve-scale":"100","require-validation":true,"emission-rate":64}`))
		require.NoError(err)

		expected := DefaultConfig
		expected.CurveScale = *uint256.NewInt(100)
		expected.RequireValidation = true
		expected.EmissionRate = 64
		require.Equal(&expected, c)

		// the defaults are left untouched
		require.Equal(uint64(1_000_000_000_000_000_000), DefaultConfig.CurveScale.Uint64())
	})

	t.Run("addresses", func(t *testing.T) {
		require := require.New(t)
		holder := ids.GenerateTestShortID()
		c, err := GetConfig([]byte(`{"genesis-holder":"` + holder.String() + `"}`))
		require.NoError(err)
		require.Equal(holder, c.GenesisHolder)
	})

	t.Run("malformed json", func(t *testing.T) {
		_, err := GetConfig([]byte(`{"curve-scale":`))
		require.Error(t, err)
	})
}

func TestVerify(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*Config)
		expectedErr error
	}{
		{
			name:   "default",
			modify: func(*Config) {},
		},
		{
			name:        "zero genesis supply",
			modify:      func(c *Config) { c.GenesisSupply.Clear() },
			expectedErr: errZeroGenesisSupply,
		},
		{
			name:        "zero curve scale",
			modify:      func(c *Config) { c.CurveScale.Clear() },
			expectedErr: errZeroCurveScale,
		},
		{
			name:        "zero proposal seed",
			modify:      func(c *Config) { c.ProposalSeed.Clear() },
			expectedErr: errZeroProposalSeed,
		},
		{
			name:        "zero denominator",
			modify:      func(c *Config) { c.AllocationDenominator = 0 },
			expectedErr: errZeroDenominator,
		},
		{
			name:        "accrual above 100%",
			modify:      func(c *Config) { c.BuilderAccrualBps = 10_001 },
			expectedErr: errAccrualTooHigh,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := DefaultConfig
			test.modify(&c)
			require.ErrorIs(t, c.Verify(), test.expectedErr)
		})
	}
}
