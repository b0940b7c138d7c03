package distributor

import "github.com/iov-one/weave/errors"

var (
	// ErrInvalidAddress is returned when an address cannot be parsed.
	ErrInvalidAddress = errors.Register(4001, "invalid address")

	// ErrNoBalance is returned when an operation requires a non zero
	// balance of the requested ticker.
	ErrNoBalance = errors.Register(4002, "zero balance")

	// ErrDepositMoreThanOne is returned when a deposit does not carry
	// exactly one coin.
	ErrDepositMoreThanOne = errors.Register(4003, "deposit must carry exactly one coin")

	// ErrUnsupportedDenom is returned when a deposit ticker is not accepted.
	ErrUnsupportedDenom = errors.Register(4004, "unsupported denomination")

	// ErrMissingProtocol is returned when a whitelisted protocol has no
	// weight declared.
	ErrMissingProtocol = errors.Register(4005, "no such protocol")

	// ErrConfigNotUpdatable is returned for any update of a frozen
	// configuration.
	ErrConfigNotUpdatable = errors.Register(4006, "configuration cannot be updated")

	// ErrUnderflow is returned when a subtraction would result in a
	// negative value.
	ErrUnderflow = errors.Register(4007, "value underflow")
)
