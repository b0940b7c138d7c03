package distributor

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
)

func init() {
	migration.MustRegister(1, &Configuration{}, migration.NoModification)
}

const packageName = "distributor"

// Split percentages are not configurable. They depend only on whether the
// developer address is declared.
var (
	burnWithoutDeveloper       = weave.Fraction{Numerator: 7778, Denominator: 10000}
	distributeWithoutDeveloper = weave.Fraction{Numerator: 2222, Denominator: 10000}

	burnWithDeveloper       = weave.Fraction{Numerator: 70, Denominator: 100}
	distributeWithDeveloper = weave.Fraction{Numerator: 10, Denominator: 100}
	developerWithDeveloper  = weave.Fraction{Numerator: 20, Denominator: 100}
)

// DefaultAcceptedTickers is used when no deposit allow-list is provided.
var DefaultAcceptedTickers = []string{"LUNA", "UST"}

// DefaultBurnThresholds returns the burn the bottom thresholds used when
// none are provided.
func DefaultBurnThresholds() []coin.Coin {
	return []coin.Coin{
		coin.NewCoin(1, 0, "LUNA"),
		coin.NewCoin(1, 0, "UST"),
	}
}

var _ orm.Model = (*Configuration)(nil)

// Validate ensures each value is in its expected range. It does not check
// that the split percentages sum to one. Anything not distributed remains on
// the contract account.
func (c *Configuration) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", c.Metadata.Validate())
	if len(c.Admin) != 0 {
		errs = errors.AppendField(errs, "Admin", c.Admin.Validate())
	}
	if len(c.BurnAddress) == 0 {
		errs = errors.AppendField(errs, "BurnAddress", errors.ErrEmpty)
	} else {
		errs = errors.AppendField(errs, "BurnAddress", c.BurnAddress.Validate())
	}
	if len(c.DeveloperAddress) != 0 {
		errs = errors.AppendField(errs, "DeveloperAddress", c.DeveloperAddress.Validate())
	}
	errs = errors.AppendField(errs, "Whitelist", validateWhitelist(c.Whitelist))
	errs = errors.AppendField(errs, "Weights", validateWeights(c.Weights))
	errs = errors.AppendField(errs, "PercentToBurn", isUnitFraction(c.PercentToBurn))
	errs = errors.AppendField(errs, "PercentToDistribute", isUnitFraction(c.PercentToDistribute))
	if c.PercentToDeveloper.Numerator != 0 {
		errs = errors.AppendField(errs, "PercentToDeveloper", isUnitFraction(c.PercentToDeveloper))
	}
	for i, t := range c.AcceptedTickers {
		if !coin.IsCC(t) {
			errs = errors.AppendField(errs, "AcceptedTickers",
				errors.Wrapf(errors.ErrCurrency, "ticker %d: %q", i, t))
		}
	}
	errs = errors.AppendField(errs, "BurnThresholds", validateThresholds(c.BurnThresholds))
	if _, ok := Source_name[int32(c.Source)]; !ok {
		errs = errors.AppendField(errs, "Source", errors.Wrapf(errors.ErrInput, "unknown source %d", c.Source))
	}
	return errs
}

func validateWhitelist(whitelist []WhitelistEntry) error {
	for i, e := range whitelist {
		if err := e.Address.Validate(); err != nil {
			return errors.Wrapf(err, "entry %d address", i)
		}
		if e.Protocol == "" {
			return errors.Wrapf(errors.ErrEmpty, "entry %d protocol", i)
		}
	}
	return nil
}

func validateWeights(weights []ProtocolWeight) error {
	seen := make(map[string]struct{}, len(weights))
	for i, w := range weights {
		if w.Protocol == "" {
			return errors.Wrapf(errors.ErrEmpty, "weight %d protocol", i)
		}
		if _, ok := seen[w.Protocol]; ok {
			return errors.Wrapf(errors.ErrDuplicate, "protocol %q", w.Protocol)
		}
		seen[w.Protocol] = struct{}{}
		if err := isUnitFraction(w.Weight); err != nil {
			return errors.Wrapf(err, "protocol %q", w.Protocol)
		}
	}
	return nil
}

func validateThresholds(thresholds []coin.Coin) error {
	seen := make(map[string]struct{}, len(thresholds))
	for _, t := range thresholds {
		if err := t.Validate(); err != nil {
			return errors.Wrap(err, t.Ticker)
		}
		if !t.IsNonNegative() {
			return errors.Wrapf(errors.ErrAmount, "negative %s threshold", t.Ticker)
		}
		if _, ok := seen[t.Ticker]; ok {
			return errors.Wrapf(errors.ErrDuplicate, "ticker %q", t.Ticker)
		}
		seen[t.Ticker] = struct{}{}
	}
	return nil
}

// adminState is the decoded representation of the configuration admin field.
type adminState interface {
	isAdminState()
}

// activeAdmin is the only address allowed to update the configuration.
type activeAdmin struct {
	address weave.Address
}

// frozenAdmin is a terminal state. Configuration cannot be updated anymore.
type frozenAdmin struct{}

func (activeAdmin) isAdminState() {}
func (frozenAdmin) isAdminState() {}

func (c *Configuration) adminState() adminState {
	if len(c.Admin) == 0 {
		return frozenAdmin{}
	}
	return activeAdmin{address: c.Admin}
}

// weightIndex returns the weights declared per protocol name.
func (c *Configuration) weightIndex() map[string]weave.Fraction {
	idx := make(map[string]weave.Fraction, len(c.Weights))
	for _, w := range c.Weights {
		idx[w.Protocol] = w.Weight
	}
	return idx
}

// accepts returns true if deposits of given ticker are allowed.
func (c *Configuration) accepts(ticker string) bool {
	for _, t := range c.AcceptedTickers {
		if t == ticker {
			return true
		}
	}
	return false
}

// burnThreshold returns the minimal balance that must be reached before
// burning the bottom. Zero is returned for tickers without a threshold.
func (c *Configuration) burnThreshold(ticker string) coin.Coin {
	for _, t := range c.BurnThresholds {
		if t.Ticker == ticker {
			return t
		}
	}
	return zeroCoin(ticker)
}

// applySplit sets the split percentages that are fixed for given developer
// address presence.
func (c *Configuration) applySplit() {
	if len(c.DeveloperAddress) == 0 {
		c.PercentToBurn = burnWithoutDeveloper
		c.PercentToDistribute = distributeWithoutDeveloper
		c.PercentToDeveloper = weave.Fraction{}
		return
	}
	c.PercentToBurn = burnWithDeveloper
	c.PercentToDistribute = distributeWithDeveloper
	c.PercentToDeveloper = developerWithDeveloper
}

func loadConf(db gconf.ReadStore) (*Configuration, error) {
	var conf Configuration
	if err := gconf.Load(db, packageName, &conf); err != nil {
		return nil, errors.Wrap(err, "load configuration")
	}
	return &conf, nil
}

func saveConf(db gconf.Store, conf *Configuration) error {
	if err := gconf.Save(db, packageName, conf); err != nil {
		return errors.Wrap(err, "save configuration")
	}
	return nil
}
