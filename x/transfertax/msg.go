package transfertax

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
)

func init() {
	migration.MustRegister(1, &UpdateConfigurationMsg{}, migration.NoModification)
}

var _ weave.Msg = (*UpdateConfigurationMsg)(nil)

func (m *UpdateConfigurationMsg) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if m.Patch == nil {
		return errors.AppendField(errs, "Patch", errors.ErrEmpty)
	}
	c := m.Patch
	if len(c.Owner) != 0 {
		errs = errors.AppendField(errs, "Patch.Owner", c.Owner.Validate())
	}
	if len(c.Collector) != 0 {
		errs = errors.AppendField(errs, "Patch.Collector", c.Collector.Validate())
	}
	if c.Rate.Numerator != 0 || c.Rate.Denominator != 0 {
		errs = errors.AppendField(errs, "Patch.Rate", validateRate(c.Rate))
	}
	errs = errors.AppendField(errs, "Patch.Caps", validateCaps(c.Caps))
	return errs
}

func (*UpdateConfigurationMsg) Path() string {
	return "transfertax/update_configuration"
}
