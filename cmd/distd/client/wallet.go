package client

import (
	"strings"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/x/cash"
	"github.com/pkg/errors"
)

// WalletResponse is a response on a query for a wallet
type WalletResponse struct {
	Address weave.Address
	Wallet  cash.Set
	Height  int64
}

// GetWallet will return a wallet given an address
// If non wallet is present, it will return (nil, nil)
// Error codes are used when the query failed on the server
func (dc *DistClient) GetWallet(addr weave.Address) (*WalletResponse, error) {
	if err := addr.Validate(); err != nil {
		return nil, errors.WithMessage(err, "invalid address")
	}
	resp, err := dc.AbciQuery("/wallets", addr)
	if err != nil {
		return nil, err
	}
	if len(resp.Models) == 0 {
		return nil, nil
	}
	model := resp.Models[0]
	acct := bucketKeyToAddr(model.Key)
	if !addr.Equals(acct) {
		return nil, errors.Errorf("mismatch, queried %s, returned %s", addr, acct)
	}
	out := WalletResponse{
		Address: acct,
		Height:  resp.Height,
	}
	if err := out.Wallet.Unmarshal(model.Value); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindCoinByTicker returns the coin of given ticker, ignoring the case.
func FindCoinByTicker(coins coin.Coins, ticker string) (*coin.Coin, bool) {
	for _, c := range coins {
		if strings.EqualFold(ticker, c.Ticker) {
			return c, true
		}
	}
	return nil, false
}
