package distributor

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
)

func init() {
	migration.MustRegister(1, &DepositMsg{}, migration.NoModification)
	migration.MustRegister(1, &WithdrawMsg{}, migration.NoModification)
	migration.MustRegister(1, &DistributeMsg{}, migration.NoModification)
	migration.MustRegister(1, &BurnTheBottomMsg{}, migration.NoModification)
	migration.MustRegister(1, &UpdateConfigMsg{}, migration.NoModification)
}

var _ weave.Msg = (*DepositMsg)(nil)

func (DepositMsg) Path() string {
	return "distributor/deposit"
}

// Validate does not check the number of deposited coins nor their tickers.
// Both are business rules enforced by the handler.
func (m *DepositMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Depositor", m.Depositor.Validate())
	for i, c := range m.Funds {
		if c == nil || !c.IsPositive() {
			errs = errors.AppendField(errs, "Funds",
				errors.Wrapf(errors.ErrAmount, "coin %d must be greater than zero", i))
		}
	}
	return errs
}

var _ weave.Msg = (*WithdrawMsg)(nil)

func (WithdrawMsg) Path() string {
	return "distributor/withdraw"
}

func (m *WithdrawMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	if !coin.IsCC(m.Ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.ErrCurrency)
	}
	if m.Amount != nil {
		if err := positive(m.Amount); err != nil {
			errs = errors.AppendField(errs, "Amount", err)
		} else if m.Amount.Ticker != m.Ticker {
			errs = errors.AppendField(errs, "Amount", errors.Wrap(errors.ErrCurrency, "ticker mismatch"))
		}
	}
	return errs
}

var _ weave.Msg = (*DistributeMsg)(nil)

func (DistributeMsg) Path() string {
	return "distributor/distribute"
}

func (m *DistributeMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if len(m.Owner) != 0 {
		errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	}
	if !coin.IsCC(m.Ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.ErrCurrency)
	}
	return errs
}

var _ weave.Msg = (*BurnTheBottomMsg)(nil)

func (BurnTheBottomMsg) Path() string {
	return "distributor/burn_the_bottom"
}

func (m *BurnTheBottomMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if !coin.IsCC(m.Ticker) {
		errs = errors.AppendField(errs, "Ticker", errors.ErrCurrency)
	}
	return errs
}

var _ weave.Msg = (*UpdateConfigMsg)(nil)

func (UpdateConfigMsg) Path() string {
	return "distributor/update_config"
}

func (m *UpdateConfigMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	// An empty admin address is a valid value that freezes the
	// configuration.
	if m.Admin != nil && len(m.Admin.Address) != 0 {
		errs = errors.AppendField(errs, "Admin", m.Admin.Address.Validate())
	}
	if len(m.BurnAddress) != 0 {
		errs = errors.AppendField(errs, "BurnAddress", m.BurnAddress.Validate())
	}
	if len(m.DeveloperAddress) != 0 {
		errs = errors.AppendField(errs, "DeveloperAddress", m.DeveloperAddress.Validate())
	}
	if m.Whitelist != nil {
		errs = errors.AppendField(errs, "Whitelist", validateWhitelist(m.Whitelist.Entries))
	}
	if m.Weights != nil {
		errs = errors.AppendField(errs, "Weights", validateWeights(m.Weights.Entries))
	}
	return errs
}

func positive(c *coin.Coin) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if !c.IsPositive() {
		return errors.Wrapf(errors.ErrAmount, "%s must be greater than zero", c)
	}
	return nil
}
