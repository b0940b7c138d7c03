package distributor

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/shopspring/decimal"
)

// percentPrecision is the maximal number of decimal places a percentage can
// be declared with. 10^9 must fit the fraction denominator.
const percentPrecision = 9

var one = decimal.New(1, 0)

// ParsePercent returns the fraction represented by a decimal string within
// the [0, 1] range, for example "0.5" or "0.2222".
func ParsePercent(raw string) (weave.Fraction, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return weave.Fraction{}, errors.Wrapf(errors.ErrInput, "invalid decimal %q", raw)
	}
	if d.IsNegative() || d.GreaterThan(one) {
		return weave.Fraction{}, errors.Wrapf(errors.ErrInput, "%s is not within [0, 1]", raw)
	}
	scaled := d.Shift(percentPrecision)
	if !scaled.Equal(scaled.Truncate(0)) {
		return weave.Fraction{}, errors.Wrapf(errors.ErrInput, "%s has more than %d decimal places", raw, percentPrecision)
	}
	f := weave.Fraction{
		Numerator:   uint32(scaled.IntPart()),
		Denominator: uint32(one.Shift(percentPrecision).IntPart()),
	}
	if f.Numerator == 0 {
		return weave.Fraction{Numerator: 0, Denominator: 1}, nil
	}
	return f.Normalize(), nil
}

// FormatPercent returns the decimal representation of given fraction.
func FormatPercent(f weave.Fraction) string {
	if f.Denominator == 0 {
		return "0"
	}
	n := decimal.New(int64(f.Numerator), 0)
	return n.DivRound(decimal.New(int64(f.Denominator), 0), percentPrecision).String()
}
