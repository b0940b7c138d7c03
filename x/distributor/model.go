package distributor

import (
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/orm"
)

func init() {
	migration.MustRegister(1, &Deposit{}, migration.NoModification)
	migration.MustRegister(1, &Reserve{}, migration.NoModification)
}

var _ orm.Model = (*Deposit)(nil)

func (m *Deposit) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	errs = errors.AppendField(errs, "Owner", m.Owner.Validate())
	if err := m.Amount.Validate(); err != nil {
		errs = errors.AppendField(errs, "Amount", err)
	} else if !m.Amount.IsNonNegative() {
		errs = errors.AppendField(errs, "Amount", errors.Wrap(errors.ErrAmount, "must not be negative"))
	}
	return errs
}

// NewDepositBucket returns a bucket for the ledger entries. Each entry is
// stored under the key created by the DepositKey function.
func NewDepositBucket() orm.ModelBucket {
	b := orm.NewModelBucket("deposit", &Deposit{},
		orm.WithNativeIndex("owner", depositOwner),
	)
	return migration.NewModelBucket(packageName, b)
}

func depositOwner(o orm.Object) ([][]byte, error) {
	d, ok := o.Value().(*Deposit)
	if !ok {
		return nil, errors.Wrap(errors.ErrType, "not a Deposit")
	}
	return [][]byte{d.Owner}, nil
}

// DepositKey returns the ledger entry key for given owner and ticker.
func DepositKey(owner weave.Address, ticker string) []byte {
	key := make([]byte, 0, len(owner)+len(ticker))
	key = append(key, owner...)
	return append(key, ticker...)
}

var _ orm.Model = (*Reserve)(nil)

func (m *Reserve) Validate() error {
	var errs error
	errs = errors.AppendField(errs, "Metadata", m.Metadata.Validate())
	if err := m.Amount.Validate(); err != nil {
		errs = errors.AppendField(errs, "Amount", err)
	} else if !m.Amount.IsNonNegative() {
		errs = errors.AppendField(errs, "Amount", errors.Wrap(errors.ErrAmount, "must not be negative"))
	}
	return errs
}

// NewReserveBucket returns a bucket for the per ticker ledger totals. Each
// total is stored under the ticker as the key.
func NewReserveBucket() orm.ModelBucket {
	b := orm.NewModelBucket("reserve", &Reserve{})
	return migration.NewModelBucket(packageName, b)
}

// ledger tracks deposited funds per owner and ticker. Each change is
// reflected in the per ticker reserve, so that the reserve is always the sum
// of all ledger entries of that ticker.
type ledger struct {
	deposits orm.ModelBucket
	reserves orm.ModelBucket
}

func newLedger() *ledger {
	return &ledger{
		deposits: NewDepositBucket(),
		reserves: NewReserveBucket(),
	}
}

// Balance returns the ledger entry value. A missing entry is a zero value.
func (l *ledger) Balance(db weave.ReadOnlyKVStore, owner weave.Address, ticker string) (coin.Coin, error) {
	var d Deposit
	switch err := l.deposits.One(db, DepositKey(owner, ticker), &d); {
	case err == nil:
		return d.Amount, nil
	case errors.ErrNotFound.Is(err):
		return zeroCoin(ticker), nil
	default:
		return coin.Coin{}, errors.Wrap(err, "load deposit")
	}
}

// Reserved returns the sum of all ledger entries of given ticker.
func (l *ledger) Reserved(db weave.ReadOnlyKVStore, ticker string) (coin.Coin, error) {
	var r Reserve
	switch err := l.reserves.One(db, []byte(ticker), &r); {
	case err == nil:
		return r.Amount, nil
	case errors.ErrNotFound.Is(err):
		return zeroCoin(ticker), nil
	default:
		return coin.Coin{}, errors.Wrap(err, "load reserve")
	}
}

// Credit adds given amount to the owner ledger entry and returns the new
// entry value.
func (l *ledger) Credit(db weave.KVStore, owner weave.Address, amount coin.Coin) (coin.Coin, error) {
	balance, err := l.Balance(db, owner, amount.Ticker)
	if err != nil {
		return coin.Coin{}, err
	}
	balance, err = balance.Add(amount)
	if err != nil {
		return coin.Coin{}, errors.Wrap(err, "ledger entry")
	}
	reserved, err := l.Reserved(db, amount.Ticker)
	if err != nil {
		return coin.Coin{}, err
	}
	reserved, err = reserved.Add(amount)
	if err != nil {
		return coin.Coin{}, errors.Wrap(err, "reserve")
	}
	if err := l.put(db, owner, balance, reserved); err != nil {
		return coin.Coin{}, err
	}
	return balance, nil
}

// Debit subtracts given amount from the owner ledger entry and returns the
// new entry value. It fails if the entry is smaller than the amount.
func (l *ledger) Debit(db weave.KVStore, owner weave.Address, amount coin.Coin) (coin.Coin, error) {
	balance, err := l.Balance(db, owner, amount.Ticker)
	if err != nil {
		return coin.Coin{}, err
	}
	balance, err = subtract(balance, amount)
	if err != nil {
		return coin.Coin{}, errors.Wrap(err, "ledger entry")
	}
	reserved, err := l.Reserved(db, amount.Ticker)
	if err != nil {
		return coin.Coin{}, err
	}
	reserved, err = subtract(reserved, amount)
	if err != nil {
		return coin.Coin{}, errors.Wrap(err, "reserve")
	}
	if err := l.put(db, owner, balance, reserved); err != nil {
		return coin.Coin{}, err
	}
	return balance, nil
}

func (l *ledger) put(db weave.KVStore, owner weave.Address, balance, reserved coin.Coin) error {
	deposit := Deposit{
		Metadata: &weave.Metadata{Schema: 1},
		Owner:    owner,
		Amount:   balance,
	}
	if _, err := l.deposits.Put(db, DepositKey(owner, balance.Ticker), &deposit); err != nil {
		return errors.Wrap(err, "store deposit")
	}
	reserve := Reserve{
		Metadata: &weave.Metadata{Schema: 1},
		Amount:   reserved,
	}
	if _, err := l.reserves.Put(db, []byte(reserved.Ticker), &reserve); err != nil {
		return errors.Wrap(err, "store reserve")
	}
	return nil
}
