package client

import (
	"github.com/iov-one/distributor/cmd/distd/app"
	"github.com/iov-one/distributor/x/distributor"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/x/cash"
	"github.com/iov-one/weave/x/sigs"
)

// Tx is all the interfaces we need rolled into one
type Tx interface {
	weave.Tx
	sigs.SignedTx
	AppendSignature(sig *sigs.StdSignature)
}

type distTx struct {
	*app.Tx
}

var _ Tx = distTx{}

func (t distTx) AppendSignature(sig *sigs.StdSignature) {
	t.Tx.Signatures = append(t.Tx.Signatures, sig)
}

// BuildSendTx will create an unsigned tx to move tokens
func BuildSendTx(src, dest weave.Address, amount coin.Coin, memo string) Tx {
	return distTx{&app.Tx{
		Sum: &app.Tx_CashSendMsg{CashSendMsg: &cash.SendMsg{
			Metadata:    &weave.Metadata{Schema: 1},
			Source:      src,
			Destination: dest,
			Amount:      &amount,
			Memo:        memo,
		}},
	}}
}

// BuildDepositTx will create an unsigned tx crediting the depositor ledger
// entry with given funds.
func BuildDepositTx(depositor weave.Address, funds coin.Coin) Tx {
	return distTx{&app.Tx{
		Sum: &app.Tx_DistributorDepositMsg{DistributorDepositMsg: &distributor.DepositMsg{
			Metadata:  &weave.Metadata{Schema: 1},
			Depositor: depositor,
			Funds:     []*coin.Coin{&funds},
		}},
	}}
}

// BuildWithdrawTx will create an unsigned tx returning deposited funds to
// the owner. A nil amount withdraws the whole balance.
func BuildWithdrawTx(owner weave.Address, ticker string, amount *coin.Coin) Tx {
	return distTx{&app.Tx{
		Sum: &app.Tx_DistributorWithdrawMsg{DistributorWithdrawMsg: &distributor.WithdrawMsg{
			Metadata: &weave.Metadata{Schema: 1},
			Owner:    owner,
			Ticker:   ticker,
			Amount:   amount,
		}},
	}}
}

// BuildDistributeTx will create an unsigned tx splitting the owner ledger
// entry, or the contract balance when the owner is empty.
func BuildDistributeTx(owner weave.Address, ticker string) Tx {
	return distTx{&app.Tx{
		Sum: &app.Tx_DistributorDistributeMsg{DistributorDistributeMsg: &distributor.DistributeMsg{
			Metadata: &weave.Metadata{Schema: 1},
			Owner:    owner,
			Ticker:   ticker,
		}},
	}}
}

// BuildBurnTheBottomTx will create an unsigned tx burning the contract
// balance that is not backed by any ledger entry.
func BuildBurnTheBottomTx(ticker string) Tx {
	return distTx{&app.Tx{
		Sum: &app.Tx_DistributorBurnTheBottomMsg{DistributorBurnTheBottomMsg: &distributor.BurnTheBottomMsg{
			Metadata: &weave.Metadata{Schema: 1},
			Ticker:   ticker,
		}},
	}}
}

// SignTx modifies the tx in-place, adding signatures
func SignTx(tx Tx, signer *PrivateKey, chainID string, nonce int64) error {
	sig, err := sigs.SignTx(signer, tx, chainID, nonce)
	if err != nil {
		return err
	}
	tx.AppendSignature(sig)
	return nil
}

// ParseTx will load a serialize tx into a format we can read
func ParseTx(data []byte) (*app.Tx, error) {
	var tx app.Tx
	if err := tx.Unmarshal(data); err != nil {
		return nil, err
	}
	return &tx, nil
}
