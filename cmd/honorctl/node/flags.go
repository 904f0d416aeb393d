// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package node

import (
	"errors"
	"fmt"

	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/spf13/pflag"
)

const (
	DataDirKey = "data-dir"
	ConfigKey  = "config"
	NowKey     = "now"
)

var errEmptyAccount = errors.New("empty account")

// AddFlags registers the flags shared by every honorctl command.
func AddFlags(flags *pflag.FlagSet) {
	flags.String(DataDirKey, ".honor", "Directory holding the engine database")
	flags.String(ConfigKey, "", "JSON file with the engine parameters")
	flags.Uint64(NowKey, 0, "Unix time to execute at (defaults to the wall clock)")
}

type Config struct {
	DataDir    string
	ConfigFile string
	Now        uint64
}

func ParseFlags(flags *pflag.FlagSet) (*Config, error) {
	dataDir, err := flags.GetString(DataDirKey)
	if err != nil {
		return nil, err
	}

	configFile, err := flags.GetString(ConfigKey)
	if err != nil {
		return nil, err
	}

	now, err := flags.GetUint64(NowKey)
	if err != nil {
		return nil, err
	}

	return &Config{
		DataDir:    dataDir,
		ConfigFile: configFile,
		Now:        now,
	}, nil
}

// ParseAccount accepts either a cb58 short ID or a name of at most 20 bytes,
// which is used verbatim as the address bytes.
func ParseAccount(s string) (ids.ShortID, error) {
	if s == "" {
		return ids.ShortID{}, errEmptyAccount
	}
	if id, err := ids.ShortFromString(s); err == nil {
		return id, nil
	}
	var id ids.ShortID
	if len(s) > len(id) {
		return ids.ShortID{}, fmt.Errorf("invalid account %q", s)
	}
	copy(id[:], s)
	return id, nil
}

// ParseAmount parses a base-10 amount.
func ParseAmount(s string) (*uint256.Int, error) {
	amount, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return amount, nil
}

// GetAccount reads the account flag [key].
func GetAccount(flags *pflag.FlagSet, key string) (ids.ShortID, error) {
	s, err := flags.GetString(key)
	if err != nil {
		return ids.ShortID{}, err
	}
	id, err := ParseAccount(s)
	if err != nil {
		return ids.ShortID{}, fmt.Errorf("--%s: %w", key, err)
	}
	return id, nil
}

// GetAmount reads the amount flag [key].
func GetAmount(flags *pflag.FlagSet, key string) (*uint256.Int, error) {
	s, err := flags.GetString(key)
	if err != nil {
		return nil, err
	}
	return ParseAmount(s)
}

// GetOptionalAccount reads the account flag [key], returning nil if it was
// not set.
func GetOptionalAccount(flags *pflag.FlagSet, key string) (*ids.ShortID, error) {
	if !flags.Changed(key) {
		return nil, nil
	}
	id, err := GetAccount(flags, key)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
