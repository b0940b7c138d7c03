package transfertax

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
)

// Controller computes the tax of a transfer according to the current
// configuration.
type Controller struct{}

// NewController returns a controller that reads its configuration from the
// gconf store.
func NewController() Controller {
	return Controller{}
}

// Tax returns the part of given amount that is deducted as the tax. Zero is
// returned when the extension is not configured.
func (Controller) Tax(db weave.ReadOnlyKVStore, amount coin.Coin) (coin.Coin, error) {
	conf, err := loadConf(db)
	switch {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		return coin.NewCoin(0, 0, amount.Ticker), nil
	default:
		return coin.Coin{}, err
	}
	return ComputeTax(amount, conf.Rate, conf.Caps)
}

// NetOfTax returns the amount that is left after deducting the tax.
func (c Controller) NetOfTax(db weave.ReadOnlyKVStore, amount coin.Coin) (coin.Coin, error) {
	tax, err := c.Tax(db, amount)
	if err != nil {
		return coin.Coin{}, err
	}
	return amount.Subtract(tax)
}

// Collector returns the address that receives the deducted tax.
func (Controller) Collector(db weave.ReadOnlyKVStore) (weave.Address, error) {
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	return conf.Collector, nil
}

var (
	fracUnit = uint256.NewInt(uint64(coin.FracUnit))
	maxWhole = uint256.NewInt(uint64(coin.MaxInt))
)

// ComputeTax returns amount - floor(amount / (1 + rate)), limited by the cap
// declared for the amount ticker.
func ComputeTax(amount coin.Coin, rate weave.Fraction, caps []coin.Coin) (coin.Coin, error) {
	if rate.Denominator == 0 {
		return coin.Coin{}, errors.Wrap(errors.ErrInput, "zero denominator")
	}
	if amount.Whole < 0 || amount.Fractional < 0 {
		return coin.Coin{}, errors.Wrapf(errors.ErrAmount, "negative amount %s", amount)
	}

	// amount / (1 + n/d) = amount * d / (d + n)
	units := uint256.NewInt(uint64(amount.Whole))
	units.Mul(units, fracUnit)
	units.Add(units, uint256.NewInt(uint64(amount.Fractional)))

	d := uint256.NewInt(uint64(rate.Denominator))
	net := new(uint256.Int).Mul(units, d)
	net.Div(net, new(uint256.Int).Add(d, uint256.NewInt(uint64(rate.Numerator))))
	tax := new(uint256.Int).Sub(units, net)

	whole := new(uint256.Int).Div(tax, fracUnit)
	if whole.Gt(maxWhole) {
		return coin.Coin{}, errors.Wrapf(errors.ErrOverflow, "%s tax", amount.Ticker)
	}
	frac := new(uint256.Int).Mod(tax, fracUnit)
	res := coin.NewCoin(int64(whole.Uint64()), int64(frac.Uint64()), amount.Ticker)

	for _, c := range caps {
		if c.Ticker == amount.Ticker && res.Compare(c) > 0 {
			return c, nil
		}
	}
	return res, nil
}
