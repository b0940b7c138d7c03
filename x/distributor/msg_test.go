package distributor

import (
	"testing"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/weavetest"
	"github.com/iov-one/weave/weavetest/assert"
)

func TestValidateMessages(t *testing.T) {
	addr := weavetest.NewCondition().Address()

	cases := map[string]struct {
		Msg        weave.Msg
		WantErrors map[string]*errors.Error
	}{
		"valid deposit": {
			Msg: &DepositMsg{
				Metadata:  &weave.Metadata{Schema: 1},
				Depositor: addr,
				Funds:     []*coin.Coin{coin.NewCoinp(1, 0, "LUNA")},
			},
			WantErrors: map[string]*errors.Error{
				"Metadata":  nil,
				"Depositor": nil,
				"Funds":     nil,
			},
		},
		"deposit of a zero coin": {
			Msg: &DepositMsg{
				Metadata:  &weave.Metadata{Schema: 1},
				Depositor: addr,
				Funds:     []*coin.Coin{coin.NewCoinp(0, 0, "LUNA")},
			},
			WantErrors: map[string]*errors.Error{
				"Funds": errors.ErrAmount,
			},
		},
		"deposit without metadata": {
			Msg: &DepositMsg{
				Depositor: addr,
				Funds:     []*coin.Coin{coin.NewCoinp(1, 0, "LUNA")},
			},
			WantErrors: map[string]*errors.Error{
				"Metadata": errors.ErrMetadata,
			},
		},
		"valid withdraw of everything": {
			Msg: &WithdrawMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Owner:    addr,
				Ticker:   "UST",
			},
			WantErrors: map[string]*errors.Error{
				"Owner":  nil,
				"Ticker": nil,
				"Amount": nil,
			},
		},
		"withdraw amount ticker mismatch": {
			Msg: &WithdrawMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Owner:    addr,
				Ticker:   "UST",
				Amount:   coin.NewCoinp(1, 0, "LUNA"),
			},
			WantErrors: map[string]*errors.Error{
				"Amount": errors.ErrCurrency,
			},
		},
		"withdraw of a zero amount": {
			Msg: &WithdrawMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Owner:    addr,
				Ticker:   "UST",
				Amount:   coin.NewCoinp(0, 0, "UST"),
			},
			WantErrors: map[string]*errors.Error{
				"Amount": errors.ErrAmount,
			},
		},
		"distribute without owner": {
			Msg: &DistributeMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Ticker:   "LUNA",
			},
			WantErrors: map[string]*errors.Error{
				"Owner":  nil,
				"Ticker": nil,
			},
		},
		"distribute of an invalid ticker": {
			Msg: &DistributeMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Ticker:   "x",
			},
			WantErrors: map[string]*errors.Error{
				"Ticker": errors.ErrCurrency,
			},
		},
		"burn the bottom": {
			Msg: &BurnTheBottomMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Ticker:   "LUNA",
			},
			WantErrors: map[string]*errors.Error{
				"Metadata": nil,
				"Ticker":   nil,
			},
		},
		"update that freezes the configuration": {
			Msg: &UpdateConfigMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Admin:    &AddressPatch{},
			},
			WantErrors: map[string]*errors.Error{
				"Admin": nil,
			},
		},
		"update with duplicated weights": {
			Msg: &UpdateConfigMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Weights: &WeightsPatch{
					Entries: []ProtocolWeight{
						{Protocol: "curve", Weight: weave.Fraction{Numerator: 1, Denominator: 2}},
						{Protocol: "curve", Weight: weave.Fraction{Numerator: 1, Denominator: 2}},
					},
				},
			},
			WantErrors: map[string]*errors.Error{
				"Weights": errors.ErrDuplicate,
			},
		},
		"update with an invalid whitelist": {
			Msg: &UpdateConfigMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Whitelist: &WhitelistPatch{
					Entries: []WhitelistEntry{{Address: addr}},
				},
			},
			WantErrors: map[string]*errors.Error{
				"Whitelist": errors.ErrEmpty,
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.Msg.Validate()
			for field, wantErr := range tc.WantErrors {
				assert.FieldError(t, err, field, wantErr)
			}
		})
	}
}
