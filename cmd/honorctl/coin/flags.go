// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package coin

import (
	"github.com/holiman/uint256"
	"github.com/luxfi/ids"
	"github.com/spf13/pflag"

	"github.com/luxfi/honor/cmd/honorctl/node"
)

const (
	FromKey    = "from"
	ToKey      = "to"
	AmountKey  = "amount"
	AccountKey = "account"
)

func AddSendFlags(flags *pflag.FlagSet) {
	flags.String(FromKey, "", "Sender (required)")
	flags.String(ToKey, "", "Recipient (required)")
	flags.String(AmountKey, "", "Honor to send (required)")
}

type SendConfig struct {
	From   ids.ShortID
	To     ids.ShortID
	Amount *uint256.Int
}

func ParseSendFlags(flags *pflag.FlagSet, args []string) (*SendConfig, error) {
	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	from, err := node.GetAccount(flags, FromKey)
	if err != nil {
		return nil, err
	}

	to, err := node.GetAccount(flags, ToKey)
	if err != nil {
		return nil, err
	}

	amount, err := node.GetAmount(flags, AmountKey)
	if err != nil {
		return nil, err
	}

	return &SendConfig{
		From:   from,
		To:     to,
		Amount: amount,
	}, nil
}

func AddBalanceFlags(flags *pflag.FlagSet) {
	flags.String(AccountKey, "", "Account to query (required)")
}

func ParseBalanceFlags(flags *pflag.FlagSet, args []string) (ids.ShortID, error) {
	if err := flags.Parse(args); err != nil {
		return ids.ShortID{}, err
	}
	return node.GetAccount(flags, AccountKey)
}
