package distributor

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/x/cash"
)

// ContractAddress is the account holding all funds managed by this
// extension.
var ContractAddress = weave.NewCondition("distributor", "contract", nil).Address()

// TaxController computes the tax deducted from every outgoing transfer.
type TaxController interface {
	// Tax returns the part of given amount that is deducted as the tax.
	Tax(db weave.ReadOnlyKVStore, amount coin.Coin) (coin.Coin, error)
	// Collector returns the address that receives the deducted tax.
	Collector(db weave.ReadOnlyKVStore) (weave.Address, error)
}

// NoTax is a TaxController that never deducts anything.
type NoTax struct{}

var _ TaxController = NoTax{}

func (NoTax) Tax(db weave.ReadOnlyKVStore, amount coin.Coin) (coin.Coin, error) {
	return zeroCoin(amount.Ticker), nil
}

func (NoTax) Collector(weave.ReadOnlyKVStore) (weave.Address, error) {
	return nil, nil
}

// distributionPlan returns the ordered list of transfers that split given
// amount according to the configuration. The burn transfer comes first,
// followed by the developer transfer and the whitelisted protocols in the
// whitelist order.
// Shares are truncated independently. Zero value transfers are not included.
// If any whitelisted protocol has no weight declared, no plan is returned.
func distributionPlan(conf *Configuration, amount coin.Coin) ([]Transfer, error) {
	burn, err := mulFraction(amount, conf.PercentToBurn)
	if err != nil {
		return nil, errors.Wrap(err, "burn share")
	}
	distribute, err := mulFraction(amount, conf.PercentToDistribute)
	if err != nil {
		return nil, errors.Wrap(err, "distribute share")
	}

	plan := make([]Transfer, 0, len(conf.Whitelist)+2)
	plan = appendTransfer(plan, Transfer{
		Recipient: conf.BurnAddress,
		Amount:    burn,
		Kind:      TransferKindBurn,
	})
	if len(conf.DeveloperAddress) != 0 {
		developer, err := mulFraction(amount, conf.PercentToDeveloper)
		if err != nil {
			return nil, errors.Wrap(err, "developer share")
		}
		plan = appendTransfer(plan, Transfer{
			Recipient: conf.DeveloperAddress,
			Amount:    developer,
			Kind:      TransferKindDeveloper,
		})
	}

	weights := conf.weightIndex()
	for _, e := range conf.Whitelist {
		w, ok := weights[e.Protocol]
		if !ok {
			return nil, errors.Wrapf(ErrMissingProtocol, "protocol %q", e.Protocol)
		}
		payout, err := mulFraction(distribute, w)
		if err != nil {
			return nil, errors.Wrapf(err, "protocol %q share", e.Protocol)
		}
		plan = appendTransfer(plan, Transfer{
			Recipient: e.Address,
			Amount:    payout,
			Kind:      TransferKindProtocol,
			Protocol:  e.Protocol,
		})
	}
	return plan, nil
}

func appendTransfer(plan []Transfer, t Transfer) []Transfer {
	if !t.Amount.IsPositive() {
		return plan
	}
	return append(plan, t)
}

// sum returns the total value of all transfers.
func sum(plan []Transfer, ticker string) (coin.Coin, error) {
	total := zeroCoin(ticker)
	for _, t := range plan {
		var err error
		if total, err = total.Add(t.Amount); err != nil {
			return coin.Coin{}, err
		}
	}
	return total, nil
}

// payout executes given transfers in order, moving funds from the contract
// account. Tax is deducted from each transfer and sent to the tax collector.
// Returned transfers declare the amount that reached the recipient.
//
// A failure can leave some transfers executed. Callers must discard the
// store changes if an error is returned.
func payout(db weave.KVStore, ctrl cash.Controller, tax TaxController, plan []Transfer) ([]Transfer, error) {
	done := make([]Transfer, 0, len(plan))
	for i, t := range plan {
		deducted, err := tax.Tax(db, t.Amount)
		if err != nil {
			return nil, errors.Wrapf(err, "transfer %d tax", i)
		}
		net, err := subtract(t.Amount, deducted)
		if err != nil {
			return nil, errors.Wrapf(err, "transfer %d net of tax", i)
		}
		if deducted.IsPositive() {
			collector, err := tax.Collector(db)
			if err != nil {
				return nil, errors.Wrap(err, "tax collector")
			}
			if err := ctrl.MoveCoins(db, ContractAddress, collector, deducted); err != nil {
				return nil, errors.Wrapf(err, "transfer %d tax", i)
			}
		}
		if net.IsPositive() {
			if err := ctrl.MoveCoins(db, ContractAddress, t.Recipient, net); err != nil {
				return nil, errors.Wrapf(err, "transfer %d to %s", i, t.Recipient)
			}
		}
		t.Amount = net
		done = append(done, t)
	}
	return done, nil
}

// contractBalance returns the contract account balance of given ticker.
func contractBalance(db weave.KVStore, ctrl cash.Controller, ticker string) (coin.Coin, error) {
	coins, err := ctrl.Balance(db, ContractAddress)
	switch {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		return zeroCoin(ticker), nil
	default:
		return coin.Coin{}, errors.Wrap(err, "contract balance")
	}
	for _, c := range coins {
		if c.Ticker == ticker {
			return *c, nil
		}
	}
	return zeroCoin(ticker), nil
}
