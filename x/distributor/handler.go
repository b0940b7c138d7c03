package distributor

import (
	"fmt"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/x"
	"github.com/iov-one/weave/x/cash"
)

// RegisterQuery registers the ledger buckets and the configuration query.
func RegisterQuery(qr weave.QueryRouter) {
	NewDepositBucket().Register("deposits", qr)
	NewReserveBucket().Register("reserves", qr)
	qr.Register("/distributorconf", configQuery{})
}

// RegisterRoutes registers all message handlers. Tax controller is optional
// and when not provided, no tax is deducted from the outgoing transfers.
func RegisterRoutes(r weave.Registry, auth x.Authenticator, cashctrl cash.Controller, tax TaxController) {
	r = migration.SchemaMigratingRegistry(packageName, r)

	if tax == nil {
		tax = NoTax{}
	}
	l := newLedger()

	r.Handle(&DepositMsg{}, &depositHandler{
		auth:     auth,
		ledger:   l,
		cashctrl: cashctrl,
	})
	r.Handle(&WithdrawMsg{}, &withdrawHandler{
		auth:     auth,
		ledger:   l,
		cashctrl: cashctrl,
		tax:      tax,
	})
	r.Handle(&DistributeMsg{}, &distributeHandler{
		auth:     auth,
		ledger:   l,
		cashctrl: cashctrl,
		tax:      tax,
	})
	r.Handle(&BurnTheBottomMsg{}, &burnTheBottomHandler{
		ledger:   l,
		cashctrl: cashctrl,
		tax:      tax,
	})
	r.Handle(&UpdateConfigMsg{}, &updateConfigHandler{
		auth: auth,
	})
}

type depositHandler struct {
	auth     x.Authenticator
	ledger   *ledger
	cashctrl cash.Controller
}

func (h *depositHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: 0}, nil
}

func (h *depositHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, funds, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := h.cashctrl.MoveCoins(db, msg.Depositor, ContractAddress, funds); err != nil {
		return nil, errors.Wrap(err, "deposit funds")
	}
	balance, err := h.ledger.Credit(db, msg.Depositor, funds)
	if err != nil {
		return nil, errors.Wrap(err, "credit ledger")
	}
	return &weave.DeliverResult{
		Data: DepositKey(msg.Depositor, funds.Ticker),
		Log:  fmt.Sprintf("deposited %s, balance %s", funds, balance),
	}, nil
}

func (h *depositHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*DepositMsg, coin.Coin, error) {
	var msg DepositMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, coin.Coin{}, errors.Wrap(err, "load msg")
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, coin.Coin{}, err
	}
	if conf.Source != SourceLedger {
		return nil, coin.Coin{}, errors.Wrap(errors.ErrState, "deposits are disabled")
	}
	if !h.auth.HasAddress(ctx, msg.Depositor) {
		return nil, coin.Coin{}, errors.Wrap(errors.ErrUnauthorized, "depositor signature is required")
	}
	if len(msg.Funds) != 1 {
		return nil, coin.Coin{}, errors.Wrapf(ErrDepositMoreThanOne, "got %d coins", len(msg.Funds))
	}
	funds := *msg.Funds[0]
	if !conf.accepts(funds.Ticker) {
		return nil, coin.Coin{}, errors.Wrapf(ErrUnsupportedDenom, "ticker %q", funds.Ticker)
	}
	if err := funds.Validate(); err != nil {
		return nil, coin.Coin{}, errors.Wrap(err, "funds")
	}
	if err := hasFunds(db, h.cashctrl, msg.Depositor, funds); err != nil {
		return nil, coin.Coin{}, err
	}
	return &msg, funds, nil
}

// hasFunds returns no error if given wallet contains at least given amount of
// funds.
func hasFunds(db weave.KVStore, ctrl cash.Controller, wallet weave.Address, funds coin.Coin) error {
	coins, err := ctrl.Balance(db, wallet)
	if err != nil && !errors.ErrNotFound.Is(err) {
		return errors.Wrap(err, "depositor balance")
	}
	for _, c := range coins {
		if c.Ticker == funds.Ticker && c.Compare(funds) >= 0 {
			return nil
		}
	}
	return errors.Wrap(errors.ErrAmount, "not enough funds on depositor account")
}

type withdrawHandler struct {
	auth     x.Authenticator
	ledger   *ledger
	cashctrl cash.Controller
	tax      TaxController
}

func (h *withdrawHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: 0}, nil
}

func (h *withdrawHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	msg, amount, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if _, err := h.ledger.Debit(db, msg.Owner, amount); err != nil {
		return nil, errors.Wrap(err, "debit ledger")
	}
	plan := []Transfer{
		{Recipient: msg.Owner, Amount: amount, Kind: TransferKindWithdraw},
	}
	done, err := payout(db, h.cashctrl, h.tax, plan)
	if err != nil {
		return nil, err
	}
	return transfersResult(done, fmt.Sprintf("withdrawn %s", amount))
}

// validate returns the withdraw message and the amount that is to be
// withdrawn.
func (h *withdrawHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*WithdrawMsg, coin.Coin, error) {
	var msg WithdrawMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, coin.Coin{}, errors.Wrap(err, "load msg")
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, coin.Coin{}, err
	}
	if conf.Source != SourceLedger {
		return nil, coin.Coin{}, errors.Wrap(errors.ErrState, "withdrawals are disabled")
	}
	if !h.auth.HasAddress(ctx, msg.Owner) {
		return nil, coin.Coin{}, errors.Wrap(errors.ErrUnauthorized, "owner signature is required")
	}
	balance, err := h.ledger.Balance(db, msg.Owner, msg.Ticker)
	if err != nil {
		return nil, coin.Coin{}, err
	}
	if !balance.IsPositive() {
		return nil, coin.Coin{}, errors.Wrapf(ErrNoBalance, "no %s deposited", msg.Ticker)
	}
	if msg.Amount == nil {
		return &msg, balance, nil
	}
	if balance.Compare(*msg.Amount) < 0 {
		return nil, coin.Coin{}, errors.Wrapf(ErrUnderflow, "cannot withdraw %s from %s", msg.Amount, balance)
	}
	return &msg, *msg.Amount, nil
}

type distributeHandler struct {
	auth     x.Authenticator
	ledger   *ledger
	cashctrl cash.Controller
	tax      TaxController
}

func (h *distributeHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: 0}, nil
}

func (h *distributeHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	d, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	// Ledger entry is consumed as a whole. Truncated remainder stays on
	// the contract account, unreserved.
	if d.owner != nil {
		if _, err := h.ledger.Debit(db, d.owner, d.amount); err != nil {
			return nil, errors.Wrap(err, "debit ledger")
		}
	}
	done, err := payout(db, h.cashctrl, h.tax, d.plan)
	if err != nil {
		return nil, err
	}
	paid, err := sum(d.plan, d.amount.Ticker)
	if err != nil {
		return nil, errors.Wrap(err, "distributed total")
	}
	weave.GetLogger(ctx).Debug("distribution",
		"source", d.amount.String(),
		"paid", paid.String(),
		"transfers", len(done))
	return transfersResult(done, fmt.Sprintf("distributed %s of %s", paid, d.amount))
}

type distribution struct {
	// owner of the distributed ledger entry. Nil when the contract
	// balance is distributed.
	owner  weave.Address
	amount coin.Coin
	plan   []Transfer
}

func (h *distributeHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*distribution, error) {
	var msg DistributeMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}

	var d distribution
	switch conf.Source {
	case SourceLedger:
		if len(msg.Owner) == 0 {
			return nil, errors.Wrap(errors.ErrEmpty, "owner is required")
		}
		if !h.auth.HasAddress(ctx, msg.Owner) {
			return nil, errors.Wrap(errors.ErrUnauthorized, "owner signature is required")
		}
		d.owner = msg.Owner
		d.amount, err = h.ledger.Balance(db, msg.Owner, msg.Ticker)
	case SourceContract:
		d.amount, err = contractBalance(db, h.cashctrl, msg.Ticker)
	default:
		return nil, errors.Wrapf(errors.ErrState, "unknown source %s", conf.Source)
	}
	if err != nil {
		return nil, err
	}
	if !d.amount.IsPositive() {
		return nil, errors.Wrapf(ErrNoBalance, "no %s to distribute", msg.Ticker)
	}

	d.plan, err = distributionPlan(conf, d.amount)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

type burnTheBottomHandler struct {
	ledger   *ledger
	cashctrl cash.Controller
	tax      TaxController
}

func (h *burnTheBottomHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: 0}, nil
}

func (h *burnTheBottomHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	plan, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if len(plan) == 0 {
		return transfersResult(nil, "below threshold")
	}
	done, err := payout(db, h.cashctrl, h.tax, plan)
	if err != nil {
		return nil, err
	}
	return transfersResult(done, fmt.Sprintf("burned %s", plan[0].Amount))
}

// validate returns the burn transfer plan. An empty plan is returned when the
// burnable balance is below the threshold.
func (h *burnTheBottomHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) ([]Transfer, error) {
	var msg BurnTheBottomMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	balance, err := contractBalance(db, h.cashctrl, msg.Ticker)
	if err != nil {
		return nil, err
	}
	// Deposited funds are never burned.
	reserved, err := h.ledger.Reserved(db, msg.Ticker)
	if err != nil {
		return nil, err
	}
	burnable, err := subtract(balance, reserved)
	if err != nil {
		return nil, errors.Wrap(err, "burnable balance")
	}
	if !burnable.IsPositive() || burnable.Compare(conf.burnThreshold(msg.Ticker)) < 0 {
		return nil, nil
	}
	plan := []Transfer{
		{Recipient: conf.BurnAddress, Amount: burnable, Kind: TransferKindBurn},
	}
	return plan, nil
}

type updateConfigHandler struct {
	auth x.Authenticator
}

func (h *updateConfigHandler) Check(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &weave.CheckResult{GasAllocated: 0}, nil
}

func (h *updateConfigHandler) Deliver(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*weave.DeliverResult, error) {
	conf, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := saveConf(db, conf); err != nil {
		return nil, err
	}
	if _, ok := conf.adminState().(frozenAdmin); ok {
		return &weave.DeliverResult{Log: "configuration frozen"}, nil
	}
	return &weave.DeliverResult{}, nil
}

// validate returns the patched configuration.
func (h *updateConfigHandler) validate(ctx weave.Context, db weave.KVStore, tx weave.Tx) (*Configuration, error) {
	var msg UpdateConfigMsg
	if err := weave.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	switch admin := conf.adminState().(type) {
	case frozenAdmin:
		return nil, errors.Wrap(ErrConfigNotUpdatable, "admin was removed")
	case activeAdmin:
		if !h.auth.HasAddress(ctx, admin.address) {
			return nil, errors.Wrap(errors.ErrUnauthorized, "admin signature is required")
		}
	}

	if msg.Admin != nil {
		conf.Admin = msg.Admin.Address
	}
	if len(msg.BurnAddress) != 0 {
		conf.BurnAddress = msg.BurnAddress
	}
	if len(msg.DeveloperAddress) != 0 {
		hadDeveloper := len(conf.DeveloperAddress) != 0
		conf.DeveloperAddress = msg.DeveloperAddress
		if !hadDeveloper {
			conf.applySplit()
		}
	}
	if msg.Whitelist != nil {
		conf.Whitelist = msg.Whitelist.Entries
	}
	if msg.Weights != nil {
		conf.Weights = msg.Weights.Entries
	}
	if err := conf.Validate(); err != nil {
		return nil, errors.Wrap(err, "patched configuration")
	}
	return conf, nil
}

func transfersResult(done []Transfer, log string) (*weave.DeliverResult, error) {
	list := TransferList{Transfers: done}
	raw, err := list.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "marshal transfers")
	}
	return &weave.DeliverResult{Data: raw, Log: log}, nil
}

var _ weave.QueryHandler = configQuery{}

// configQuery returns the current configuration.
type configQuery struct{}

func (configQuery) Query(db weave.ReadOnlyKVStore, mod string, data []byte) ([]weave.Model, error) {
	conf, err := loadConf(db)
	if err != nil {
		return nil, err
	}
	raw, err := conf.Marshal()
	if err != nil {
		return nil, errors.Wrap(err, "marshal configuration")
	}
	return []weave.Model{weave.Pair([]byte(packageName), raw)}, nil
}
