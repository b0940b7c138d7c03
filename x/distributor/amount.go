package distributor

import (
	"github.com/holiman/uint256"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
)

var (
	fracUnit = uint256.NewInt(uint64(coin.FracUnit))
	maxWhole = uint256.NewInt(uint64(coin.MaxInt))
)

// mulFraction returns floor(c * f). Multiplication is done before the
// division, using the smallest coin unit, so no precision is lost before the
// final truncation.
func mulFraction(c coin.Coin, f weave.Fraction) (coin.Coin, error) {
	if f.Denominator == 0 {
		return coin.Coin{}, errors.Wrap(errors.ErrInput, "zero denominator")
	}
	units, err := toUnits(c)
	if err != nil {
		return coin.Coin{}, err
	}
	res := new(uint256.Int).Mul(units, uint256.NewInt(uint64(f.Numerator)))
	res.Div(res, uint256.NewInt(uint64(f.Denominator)))
	return fromUnits(res, c.Ticker)
}

// toUnits returns the total amount of the smallest units represented by given
// coin. Negative coins are rejected.
func toUnits(c coin.Coin) (*uint256.Int, error) {
	if c.Whole < 0 || c.Fractional < 0 {
		return nil, errors.Wrapf(errors.ErrAmount, "negative amount %s", c)
	}
	u := uint256.NewInt(uint64(c.Whole))
	u.Mul(u, fracUnit)
	u.Add(u, uint256.NewInt(uint64(c.Fractional)))
	return u, nil
}

func fromUnits(u *uint256.Int, ticker string) (coin.Coin, error) {
	whole := new(uint256.Int).Div(u, fracUnit)
	if whole.Gt(maxWhole) {
		return coin.Coin{}, errors.Wrapf(errors.ErrOverflow, "%s amount", ticker)
	}
	frac := new(uint256.Int).Mod(u, fracUnit)
	return coin.NewCoin(int64(whole.Uint64()), int64(frac.Uint64()), ticker), nil
}

// subtract returns a - b. Unlike coin.Coin.Subtract this function fails
// instead of returning a negative value.
func subtract(a, b coin.Coin) (coin.Coin, error) {
	if !a.SameType(b) {
		return coin.Coin{}, errors.Wrapf(errors.ErrCurrency, "%s and %s", a.Ticker, b.Ticker)
	}
	if a.Compare(b) < 0 {
		return coin.Coin{}, errors.Wrapf(ErrUnderflow, "%s - %s", a, b)
	}
	return a.Subtract(b)
}

// isUnitFraction returns an error if given fraction is not within the [0, 1]
// range.
func isUnitFraction(f weave.Fraction) error {
	if f.Denominator == 0 {
		return errors.Wrap(errors.ErrInput, "zero denominator")
	}
	if f.Numerator > f.Denominator {
		return errors.Wrapf(errors.ErrInput, "%d/%d is greater than one", f.Numerator, f.Denominator)
	}
	return nil
}

func zeroCoin(ticker string) coin.Coin {
	return coin.NewCoin(0, 0, ticker)
}
