package transfertax

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
)

func init() {
	migration.MustRegister(1, &Configuration{}, migration.NoModification)
}

const packageName = "transfertax"

var _ gconf.OwnedConfig = (*Configuration)(nil)

func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", c.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", c.Owner.Validate())
	errs = errors.AppendField(errs, "Collector", c.Collector.Validate())
	errs = errors.AppendField(errs, "Rate", validateRate(c.Rate))
	errs = errors.AppendField(errs, "Caps", validateCaps(c.Caps))
	return errs
}

func validateRate(r weave.Fraction) error {
	if r.Denominator == 0 {
		return errors.Wrap(errors.ErrInput, "zero denominator")
	}
	if r.Numerator > r.Denominator {
		return errors.Wrap(errors.ErrInput, "rate greater than one")
	}
	return nil
}

func validateCaps(caps []coin.Coin) error {
	seen := make(map[string]struct{}, len(caps))
	for i, c := range caps {
		if err := c.Validate(); err != nil {
			return errors.Wrapf(err, "cap %d", i)
		}
		if !c.IsNonNegative() {
			return errors.Wrapf(errors.ErrAmount, "negative %s cap", c.Ticker)
		}
		if _, ok := seen[c.Ticker]; ok {
			return errors.Wrapf(errors.ErrDuplicate, "ticker %q", c.Ticker)
		}
		seen[c.Ticker] = struct{}{}
	}
	return nil
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, packageName, &conf); err != nil {
		return nil, errors.Wrap(err, "gconf")
	}
	return &conf, nil
}
