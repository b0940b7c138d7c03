package distributor

import (
	"context"
	"testing"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/app"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/store"
	"github.com/iov-one/weave/weavetest"
	"github.com/iov-one/weave/weavetest/assert"
	"github.com/iov-one/weave/x/cash"
)

func TestUseCases(t *testing.T) {
	type Request struct {
		Conditions  []weave.Condition
		Tx          weave.Tx
		BlockHeight int64
		WantErr     *errors.Error
		// WantDeliverErr overrides WantErr for the deliver call when
		// set. Check does not execute transfers.
		WantDeliverErr *errors.Error
		// WantTransfers is compared with the transfers declared by the
		// result. It is not checked when nil.
		WantTransfers []Transfer
	}

	type AccountBalance struct {
		Wallet weave.Address
		Amount coin.Coin
	}

	var (
		adminCond = weavetest.NewCondition()
		aliceCond = weavetest.NewCondition()
		bobCond   = weavetest.NewCondition()

		burn       = weavetest.NewCondition().Address()
		developer  = weavetest.NewCondition().Address()
		terraswap  = weavetest.NewCondition().Address()
		curve      = weavetest.NewCondition().Address()
		multichain = weavetest.NewCondition().Address()
		collector  = weavetest.NewCondition().Address()
	)

	meta := &weave.Metadata{Schema: 1}

	deposit := func(owner weave.Address, c coin.Coin) weave.Tx {
		return &weavetest.Tx{Msg: &DepositMsg{
			Metadata:  meta,
			Depositor: owner,
			Funds:     []*coin.Coin{&c},
		}}
	}

	cases := map[string]struct {
		// Conf modifies the default configuration before it is saved.
		Conf func(*Configuration)
		// Tax is passed to the routes. No tax is deducted when nil.
		Tax       TaxController
		Funds     []AccountBalance
		Requests  []Request
		AfterTest func(t *testing.T, db weave.KVStore)
	}{
		"deposit is credited to the ledger": {
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(10, 0, "LUNA")},
			},
			Requests: []Request{
				{
					Conditions: []weave.Condition{aliceCond},
					Tx:         deposit(aliceCond.Address(), coin.NewCoin(0, 100000000, "LUNA")),
				},
				{
					Conditions: []weave.Condition{aliceCond},
					Tx:         deposit(aliceCond.Address(), coin.NewCoin(1, 0, "LUNA")),
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertFunds(t, db, aliceCond.Address(), coin.NewCoin(8, 900000000, "LUNA"))
				assertFunds(t, db, ContractAddress, coin.NewCoin(1, 100000000, "LUNA"))
				assertLedger(t, db, aliceCond.Address(), coin.NewCoin(1, 100000000, "LUNA"))
				assertReserve(t, db, coin.NewCoin(1, 100000000, "LUNA"))
			},
		},
		"deposit requires the depositor signature": {
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(10, 0, "LUNA")},
			},
			Requests: []Request{
				{
					Conditions: []weave.Condition{bobCond},
					Tx:         deposit(aliceCond.Address(), coin.NewCoin(1, 0, "LUNA")),
					WantErr:    errors.ErrUnauthorized,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertFunds(t, db, aliceCond.Address(), coin.NewCoin(10, 0, "LUNA"))
			},
		},
		"deposit of more than one coin is rejected": {
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(10, 0, "LUNA")},
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(10, 0, "UST")},
			},
			Requests: []Request{
				{
					Conditions: []weave.Condition{aliceCond},
					Tx: &weavetest.Tx{Msg: &DepositMsg{
						Metadata:  meta,
						Depositor: aliceCond.Address(),
						Funds: []*coin.Coin{
							coin.NewCoinp(1, 0, "LUNA"),
							coin.NewCoinp(1, 0, "UST"),
						},
					}},
					WantErr: ErrDepositMoreThanOne,
				},
			},
		},
		"deposit of an unsupported ticker is rejected": {
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(10, 0, "KRW")},
			},
			Requests: []Request{
				{
					Conditions: []weave.Condition{aliceCond},
					Tx:         deposit(aliceCond.Address(), coin.NewCoin(1, 0, "KRW")),
					WantErr:    ErrUnsupportedDenom,
				},
			},
		},
		"deposit requires enough funds": {
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(1, 0, "LUNA")},
			},
			Requests: []Request{
				{
					Conditions: []weave.Condition{aliceCond},
					Tx:         deposit(aliceCond.Address(), coin.NewCoin(2, 0, "LUNA")),
					WantErr:    errors.ErrAmount,
				},
			},
		},
		"deposits are disabled when distributing the contract balance": {
			Conf: func(c *Configuration) { c.Source = SourceContract },
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(10, 0, "LUNA")},
			},
			Requests: []Request{
				{
					Conditions: []weave.Condition{aliceCond},
					Tx:         deposit(aliceCond.Address(), coin.NewCoin(1, 0, "LUNA")),
					WantErr:    errors.ErrState,
				},
			},
		},
		"withdraw returns the whole deposit": {
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(10, 0, "UST")},
			},
			Requests: []Request{
				{
					Conditions: []weave.Condition{aliceCond},
					Tx:         deposit(aliceCond.Address(), coin.NewCoin(3, 0, "UST")),
				},
				{
					Conditions: []weave.Condition{aliceCond},
					Tx: &weavetest.Tx{Msg: &WithdrawMsg{
						Metadata: meta,
						Owner:    aliceCond.Address(),
						Ticker:   "UST",
					}},
					WantTransfers: []Transfer{
						{Recipient: aliceCond.Address(), Amount: coin.NewCoin(3, 0, "UST"), Kind: TransferKindWithdraw},
					},
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertFunds(t, db, aliceCond.Address(), coin.NewCoin(10, 0, "UST"))
				assertNoFunds(t, db, ContractAddress)
				assertLedger(t, db, aliceCond.Address(), coin.NewCoin(0, 0, "UST"))
				assertReserve(t, db, coin.NewCoin(0, 0, "UST"))
			},
		},
		"withdraw of a part of the deposit": {
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(10, 0, "UST")},
			},
			Requests: []Request{
				{
					Conditions: []weave.Condition{aliceCond},
					Tx:         deposit(aliceCond.Address(), coin.NewCoin(3, 0, "UST")),
				},
				{
					Conditions: []weave.Condition{aliceCond},
					Tx: &weavetest.Tx{Msg: &WithdrawMsg{
						Metadata: meta,
						Owner:    aliceCond.Address(),
						Ticker:   "UST",
						Amount:   coin.NewCoinp(4, 0, "UST"),
					}},
					WantErr: ErrUnderflow,
				},
				{
					Conditions: []weave.Condition{aliceCond},
					Tx: &weavetest.Tx{Msg: &WithdrawMsg{
						Metadata: meta,
						Owner:    aliceCond.Address(),
						Ticker:   "UST",
						Amount:   coin.NewCoinp(1, 0, "UST"),
					}},
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertFunds(t, db, aliceCond.Address(), coin.NewCoin(8, 0, "UST"))
				assertFunds(t, db, ContractAddress, coin.NewCoin(2, 0, "UST"))
				assertLedger(t, db, aliceCond.Address(), coin.NewCoin(2, 0, "UST"))
			},
		},
		"withdraw requires a deposit": {
			Requests: []Request{
				{
					Conditions: []weave.Condition{aliceCond},
					Tx: &weavetest.Tx{Msg: &WithdrawMsg{
						Metadata: meta,
						Owner:    aliceCond.Address(),
						Ticker:   "UST",
					}},
					WantErr: ErrNoBalance,
				},
			},
		},
		"withdraw requires the owner signature": {
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(10, 0, "UST")},
			},
			Requests: []Request{
				{
					Conditions: []weave.Condition{aliceCond},
					Tx:         deposit(aliceCond.Address(), coin.NewCoin(3, 0, "UST")),
				},
				{
					Conditions: []weave.Condition{bobCond},
					Tx: &weavetest.Tx{Msg: &WithdrawMsg{
						Metadata: meta,
						Owner:    aliceCond.Address(),
						Ticker:   "UST",
					}},
					WantErr: errors.ErrUnauthorized,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertLedger(t, db, aliceCond.Address(), coin.NewCoin(3, 0, "UST"))
			},
		},
		"distribute splits the ledger entry": {
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(1, 0, "LUNA")},
			},
			Requests: []Request{
				{
					Conditions: []weave.Condition{aliceCond},
					Tx:         deposit(aliceCond.Address(), coin.NewCoin(0, 100000000, "LUNA")),
				},
				{
					Conditions: []weave.Condition{aliceCond},
					Tx: &weavetest.Tx{Msg: &DistributeMsg{
						Metadata: meta,
						Owner:    aliceCond.Address(),
						Ticker:   "LUNA",
					}},
					WantTransfers: []Transfer{
						{Recipient: burn, Amount: coin.NewCoin(0, 77780000, "LUNA"), Kind: TransferKindBurn},
						{Recipient: terraswap, Amount: coin.NewCoin(0, 11110000, "LUNA"), Kind: TransferKindProtocol, Protocol: "terraswap"},
						{Recipient: curve, Amount: coin.NewCoin(0, 6666000, "LUNA"), Kind: TransferKindProtocol, Protocol: "curve"},
						{Recipient: multichain, Amount: coin.NewCoin(0, 4444000, "LUNA"), Kind: TransferKindProtocol, Protocol: "multichain"},
					},
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertFunds(t, db, burn, coin.NewCoin(0, 77780000, "LUNA"))
				assertFunds(t, db, terraswap, coin.NewCoin(0, 11110000, "LUNA"))
				assertFunds(t, db, curve, coin.NewCoin(0, 6666000, "LUNA"))
				assertFunds(t, db, multichain, coin.NewCoin(0, 4444000, "LUNA"))
				assertFunds(t, db, aliceCond.Address(), coin.NewCoin(0, 900000000, "LUNA"))
				assertNoFunds(t, db, ContractAddress)
				assertLedger(t, db, aliceCond.Address(), coin.NewCoin(0, 0, "LUNA"))
				assertReserve(t, db, coin.NewCoin(0, 0, "LUNA"))
			},
		},
		"distribute leaves the undeclared part on the contract": {
			Conf: func(c *Configuration) {
				c.PercentToBurn = weave.Fraction{Numerator: 1, Denominator: 2}
				c.PercentToDistribute = weave.Fraction{Numerator: 1, Denominator: 4}
			},
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(1, 0, "LUNA")},
			},
			Requests: []Request{
				{
					Conditions: []weave.Condition{aliceCond},
					Tx:         deposit(aliceCond.Address(), coin.NewCoin(1, 0, "LUNA")),
				},
				{
					Conditions: []weave.Condition{aliceCond},
					Tx: &weavetest.Tx{Msg: &DistributeMsg{
						Metadata: meta,
						Owner:    aliceCond.Address(),
						Ticker:   "LUNA",
					}},
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertFunds(t, db, burn, coin.NewCoin(0, 500000000, "LUNA"))
				assertFunds(t, db, terraswap, coin.NewCoin(0, 125000000, "LUNA"))
				assertFunds(t, db, curve, coin.NewCoin(0, 75000000, "LUNA"))
				assertFunds(t, db, multichain, coin.NewCoin(0, 50000000, "LUNA"))
				assertFunds(t, db, ContractAddress, coin.NewCoin(0, 250000000, "LUNA"))
				assertLedger(t, db, aliceCond.Address(), coin.NewCoin(0, 0, "LUNA"))
				assertReserve(t, db, coin.NewCoin(0, 0, "LUNA"))
			},
		},
		"distribute with a developer declared": {
			Conf: func(c *Configuration) {
				c.DeveloperAddress = developer
				c.applySplit()
			},
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(0, 100000000, "LUNA")},
			},
			Requests: []Request{
				{
					Conditions: []weave.Condition{aliceCond},
					Tx:         deposit(aliceCond.Address(), coin.NewCoin(0, 100000000, "LUNA")),
				},
				{
					Conditions: []weave.Condition{aliceCond},
					Tx: &weavetest.Tx{Msg: &DistributeMsg{
						Metadata: meta,
						Owner:    aliceCond.Address(),
						Ticker:   "LUNA",
					}},
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertFunds(t, db, burn, coin.NewCoin(0, 70000000, "LUNA"))
				assertFunds(t, db, developer, coin.NewCoin(0, 20000000, "LUNA"))
				assertFunds(t, db, terraswap, coin.NewCoin(0, 5000000, "LUNA"))
				assertFunds(t, db, curve, coin.NewCoin(0, 3000000, "LUNA"))
				assertFunds(t, db, multichain, coin.NewCoin(0, 2000000, "LUNA"))
			},
		},
		"distribute requires the owner signature": {
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(1, 0, "LUNA")},
			},
			Requests: []Request{
				{
					Conditions: []weave.Condition{aliceCond},
					Tx:         deposit(aliceCond.Address(), coin.NewCoin(1, 0, "LUNA")),
				},
				{
					Conditions: []weave.Condition{bobCond},
					Tx: &weavetest.Tx{Msg: &DistributeMsg{
						Metadata: meta,
						Owner:    aliceCond.Address(),
						Ticker:   "LUNA",
					}},
					WantErr: errors.ErrUnauthorized,
				},
			},
		},
		"distribute requires a deposit": {
			Requests: []Request{
				{
					Conditions: []weave.Condition{aliceCond},
					Tx: &weavetest.Tx{Msg: &DistributeMsg{
						Metadata: meta,
						Owner:    aliceCond.Address(),
						Ticker:   "LUNA",
					}},
					WantErr: ErrNoBalance,
				},
			},
		},
		"distribute with a missing protocol weight changes nothing": {
			Conf: func(c *Configuration) {
				c.Weights = c.Weights[:2]
			},
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(1, 0, "LUNA")},
			},
			Requests: []Request{
				{
					Conditions: []weave.Condition{aliceCond},
					Tx:         deposit(aliceCond.Address(), coin.NewCoin(1, 0, "LUNA")),
				},
				{
					Conditions: []weave.Condition{aliceCond},
					Tx: &weavetest.Tx{Msg: &DistributeMsg{
						Metadata: meta,
						Owner:    aliceCond.Address(),
						Ticker:   "LUNA",
					}},
					WantErr: ErrMissingProtocol,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertNoFunds(t, db, burn)
				assertFunds(t, db, ContractAddress, coin.NewCoin(1, 0, "LUNA"))
				assertLedger(t, db, aliceCond.Address(), coin.NewCoin(1, 0, "LUNA"))
			},
		},
		"anyone can distribute the contract balance": {
			Conf: func(c *Configuration) { c.Source = SourceContract },
			Funds: []AccountBalance{
				{Wallet: ContractAddress, Amount: coin.NewCoin(1, 0, "LUNA")},
			},
			Requests: []Request{
				{
					Conditions: []weave.Condition{bobCond},
					Tx: &weavetest.Tx{Msg: &DistributeMsg{
						Metadata: meta,
						Ticker:   "LUNA",
					}},
				},
				{
					Conditions: []weave.Condition{bobCond},
					Tx: &weavetest.Tx{Msg: &DistributeMsg{
						Metadata: meta,
						Ticker:   "LUNA",
					}},
					WantErr: ErrNoBalance,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertFunds(t, db, burn, coin.NewCoin(0, 777800000, "LUNA"))
				assertFunds(t, db, terraswap, coin.NewCoin(0, 111100000, "LUNA"))
				assertFunds(t, db, curve, coin.NewCoin(0, 66660000, "LUNA"))
				assertFunds(t, db, multichain, coin.NewCoin(0, 44440000, "LUNA"))
				assertNoFunds(t, db, ContractAddress)
			},
		},
		"burn the bottom keeps deposited funds": {
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(1, 0, "LUNA")},
				{Wallet: ContractAddress, Amount: coin.NewCoin(2, 0, "LUNA")},
			},
			Requests: []Request{
				{
					Conditions: []weave.Condition{aliceCond},
					Tx:         deposit(aliceCond.Address(), coin.NewCoin(1, 0, "LUNA")),
				},
				{
					Conditions: []weave.Condition{bobCond},
					Tx: &weavetest.Tx{Msg: &BurnTheBottomMsg{
						Metadata: meta,
						Ticker:   "LUNA",
					}},
					WantTransfers: []Transfer{
						{Recipient: burn, Amount: coin.NewCoin(2, 0, "LUNA"), Kind: TransferKindBurn},
					},
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertFunds(t, db, burn, coin.NewCoin(2, 0, "LUNA"))
				assertFunds(t, db, ContractAddress, coin.NewCoin(1, 0, "LUNA"))
				assertLedger(t, db, aliceCond.Address(), coin.NewCoin(1, 0, "LUNA"))
			},
		},
		"distribute deducts the tax from every transfer": {
			Tax: &fixedTax{
				amount:    coin.NewCoin(0, 1000000, "LUNA"),
				collector: collector,
			},
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(1, 0, "LUNA")},
			},
			Requests: []Request{
				{
					Conditions: []weave.Condition{aliceCond},
					Tx:         deposit(aliceCond.Address(), coin.NewCoin(1, 0, "LUNA")),
				},
				{
					Conditions: []weave.Condition{aliceCond},
					Tx: &weavetest.Tx{Msg: &DistributeMsg{
						Metadata: meta,
						Owner:    aliceCond.Address(),
						Ticker:   "LUNA",
					}},
					WantTransfers: []Transfer{
						{Recipient: burn, Amount: coin.NewCoin(0, 776800000, "LUNA"), Kind: TransferKindBurn},
						{Recipient: terraswap, Amount: coin.NewCoin(0, 110100000, "LUNA"), Kind: TransferKindProtocol, Protocol: "terraswap"},
						{Recipient: curve, Amount: coin.NewCoin(0, 65660000, "LUNA"), Kind: TransferKindProtocol, Protocol: "curve"},
						{Recipient: multichain, Amount: coin.NewCoin(0, 43440000, "LUNA"), Kind: TransferKindProtocol, Protocol: "multichain"},
					},
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertFunds(t, db, burn, coin.NewCoin(0, 776800000, "LUNA"))
				assertFunds(t, db, terraswap, coin.NewCoin(0, 110100000, "LUNA"))
				assertFunds(t, db, curve, coin.NewCoin(0, 65660000, "LUNA"))
				assertFunds(t, db, multichain, coin.NewCoin(0, 43440000, "LUNA"))
				assertFunds(t, db, collector, coin.NewCoin(0, 4000000, "LUNA"))
				assertNoFunds(t, db, ContractAddress)
				assertLedger(t, db, aliceCond.Address(), coin.NewCoin(0, 0, "LUNA"))
			},
		},
		"a tax failure stops the withdraw": {
			Tax: failingTax{},
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(10, 0, "UST")},
			},
			Requests: []Request{
				{
					Conditions: []weave.Condition{aliceCond},
					Tx:         deposit(aliceCond.Address(), coin.NewCoin(3, 0, "UST")),
				},
				{
					Conditions: []weave.Condition{aliceCond},
					Tx: &weavetest.Tx{Msg: &WithdrawMsg{
						Metadata: meta,
						Owner:    aliceCond.Address(),
						Ticker:   "UST",
					}},
					WantDeliverErr: errors.ErrState,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertFunds(t, db, aliceCond.Address(), coin.NewCoin(7, 0, "UST"))
				assertFunds(t, db, ContractAddress, coin.NewCoin(3, 0, "UST"))
				assertLedger(t, db, aliceCond.Address(), coin.NewCoin(3, 0, "UST"))
				assertReserve(t, db, coin.NewCoin(3, 0, "UST"))
			},
		},
		"a tax failure stops the distribution": {
			Tax: failingTax{},
			Funds: []AccountBalance{
				{Wallet: aliceCond.Address(), Amount: coin.NewCoin(1, 0, "LUNA")},
			},
			Requests: []Request{
				{
					Conditions: []weave.Condition{aliceCond},
					Tx:         deposit(aliceCond.Address(), coin.NewCoin(1, 0, "LUNA")),
				},
				{
					Conditions: []weave.Condition{aliceCond},
					Tx: &weavetest.Tx{Msg: &DistributeMsg{
						Metadata: meta,
						Owner:    aliceCond.Address(),
						Ticker:   "LUNA",
					}},
					WantDeliverErr: errors.ErrState,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertNoFunds(t, db, burn)
				assertNoFunds(t, db, terraswap)
				assertFunds(t, db, ContractAddress, coin.NewCoin(1, 0, "LUNA"))
				assertLedger(t, db, aliceCond.Address(), coin.NewCoin(1, 0, "LUNA"))
				assertReserve(t, db, coin.NewCoin(1, 0, "LUNA"))
			},
		},
		"burn the bottom at the threshold burns the whole balance": {
			Funds: []AccountBalance{
				{Wallet: ContractAddress, Amount: coin.NewCoin(1, 0, "LUNA")},
			},
			Requests: []Request{
				{
					Conditions: []weave.Condition{bobCond},
					Tx: &weavetest.Tx{Msg: &BurnTheBottomMsg{
						Metadata: meta,
						Ticker:   "LUNA",
					}},
					WantTransfers: []Transfer{
						{Recipient: burn, Amount: coin.NewCoin(1, 0, "LUNA"), Kind: TransferKindBurn},
					},
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertFunds(t, db, burn, coin.NewCoin(1, 0, "LUNA"))
				assertNoFunds(t, db, ContractAddress)
			},
		},
		"burn the bottom below the threshold does nothing": {
			Funds: []AccountBalance{
				{Wallet: ContractAddress, Amount: coin.NewCoin(0, 500000000, "LUNA")},
			},
			Requests: []Request{
				{
					Conditions: []weave.Condition{bobCond},
					Tx: &weavetest.Tx{Msg: &BurnTheBottomMsg{
						Metadata: meta,
						Ticker:   "LUNA",
					}},
					WantTransfers: []Transfer{},
				},
				{
					Conditions: []weave.Condition{bobCond},
					Tx: &weavetest.Tx{Msg: &BurnTheBottomMsg{
						Metadata: meta,
						Ticker:   "UST",
					}},
					WantTransfers: []Transfer{},
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				assertNoFunds(t, db, burn)
				assertFunds(t, db, ContractAddress, coin.NewCoin(0, 500000000, "LUNA"))
			},
		},
		"admin can update the configuration": {
			Requests: []Request{
				{
					Conditions: []weave.Condition{adminCond},
					Tx: &weavetest.Tx{Msg: &UpdateConfigMsg{
						Metadata: meta,
						Whitelist: &WhitelistPatch{
							Entries: []WhitelistEntry{
								{Address: curve, Protocol: "curve"},
							},
						},
						Weights: &WeightsPatch{
							Entries: []ProtocolWeight{
								{Protocol: "curve", Weight: weave.Fraction{Numerator: 1, Denominator: 1}},
							},
						},
					}},
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				conf, err := loadConf(db)
				if err != nil {
					t.Fatalf("cannot load configuration: %s", err)
				}
				assert.Equal(t, []WhitelistEntry{{Address: curve, Protocol: "curve"}}, conf.Whitelist)
				assert.Equal(t, 1, len(conf.Weights))
				assert.Equal(t, adminCond.Address(), conf.Admin)
				assert.Equal(t, burn, conf.BurnAddress)
			},
		},
		"only the admin can update the configuration": {
			Requests: []Request{
				{
					Conditions: []weave.Condition{aliceCond},
					Tx: &weavetest.Tx{Msg: &UpdateConfigMsg{
						Metadata:    meta,
						BurnAddress: aliceCond.Address(),
					}},
					WantErr: errors.ErrUnauthorized,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				conf, err := loadConf(db)
				if err != nil {
					t.Fatalf("cannot load configuration: %s", err)
				}
				assert.Equal(t, burn, conf.BurnAddress)
			},
		},
		"declaring a developer changes the split": {
			Requests: []Request{
				{
					Conditions: []weave.Condition{adminCond},
					Tx: &weavetest.Tx{Msg: &UpdateConfigMsg{
						Metadata:         meta,
						DeveloperAddress: developer,
					}},
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				conf, err := loadConf(db)
				if err != nil {
					t.Fatalf("cannot load configuration: %s", err)
				}
				assert.Equal(t, developer, conf.DeveloperAddress)
				assert.Equal(t, burnWithDeveloper, conf.PercentToBurn)
				assert.Equal(t, distributeWithDeveloper, conf.PercentToDistribute)
				assert.Equal(t, developerWithDeveloper, conf.PercentToDeveloper)
			},
		},
		"removing the admin freezes the configuration": {
			Requests: []Request{
				{
					Conditions: []weave.Condition{adminCond},
					Tx: &weavetest.Tx{Msg: &UpdateConfigMsg{
						Metadata: meta,
						Admin:    &AddressPatch{},
					}},
				},
				{
					Conditions: []weave.Condition{adminCond},
					Tx: &weavetest.Tx{Msg: &UpdateConfigMsg{
						Metadata:    meta,
						BurnAddress: aliceCond.Address(),
					}},
					WantErr: ErrConfigNotUpdatable,
				},
				{
					Conditions: []weave.Condition{adminCond},
					Tx: &weavetest.Tx{Msg: &UpdateConfigMsg{
						Metadata: meta,
						Admin:    &AddressPatch{Address: adminCond.Address()},
					}},
					WantErr: ErrConfigNotUpdatable,
				},
			},
			AfterTest: func(t *testing.T, db weave.KVStore) {
				conf, err := loadConf(db)
				if err != nil {
					t.Fatalf("cannot load configuration: %s", err)
				}
				if len(conf.Admin) != 0 {
					t.Fatalf("unexpected admin: %s", conf.Admin)
				}
				assert.Equal(t, burn, conf.BurnAddress)
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			migration.MustInitPkg(db, packageName, "cash")

			rt := app.NewRouter()
			auth := &weavetest.CtxAuth{Key: "auth"}
			ctrl := cash.NewController(cash.NewBucket())
			RegisterRoutes(rt, auth, ctrl, tc.Tax)

			for _, b := range tc.Funds {
				if err := ctrl.CoinMint(db, b.Wallet, b.Amount); err != nil {
					t.Fatalf("cannot mint coins for %q: %s", b.Wallet, err)
				}
			}

			config := Configuration{
				Metadata:    &weave.Metadata{Schema: 1},
				Admin:       adminCond.Address(),
				BurnAddress: burn,
				Whitelist: []WhitelistEntry{
					{Address: terraswap, Protocol: "terraswap"},
					{Address: curve, Protocol: "curve"},
					{Address: multichain, Protocol: "multichain"},
				},
				Weights: []ProtocolWeight{
					{Protocol: "terraswap", Weight: weave.Fraction{Numerator: 1, Denominator: 2}},
					{Protocol: "curve", Weight: weave.Fraction{Numerator: 3, Denominator: 10}},
					{Protocol: "multichain", Weight: weave.Fraction{Numerator: 1, Denominator: 5}},
				},
				AcceptedTickers: DefaultAcceptedTickers,
				BurnThresholds:  DefaultBurnThresholds(),
			}
			config.applySplit()
			if tc.Conf != nil {
				tc.Conf(&config)
			}
			if err := gconf.Save(db, packageName, &config); err != nil {
				t.Fatalf("cannot save configuration: %s", err)
			}

			for i, req := range tc.Requests {
				ctx := weave.WithHeight(context.Background(), req.BlockHeight)
				ctx = weave.WithChainID(ctx, "testchain-123")
				ctx = auth.SetConditions(ctx, req.Conditions...)

				cache := db.CacheWrap()
				if _, err := rt.Check(ctx, cache, req.Tx); !req.WantErr.Is(err) {
					t.Fatalf("unexpected %d check error: want %q, got %+v", i, req.WantErr, err)
				}
				cache.Discard()

				cache = db.CacheWrap()
				wantErr := req.WantErr
				if req.WantDeliverErr != nil {
					wantErr = req.WantDeliverErr
				}
				res, err := rt.Deliver(ctx, cache, req.Tx)
				if !wantErr.Is(err) {
					t.Fatalf("unexpected %d deliver error: want %q, got %+v", i, wantErr, err)
				}
				if err != nil {
					cache.Discard()
					continue
				}
				if err := cache.Write(); err != nil {
					t.Fatalf("cannot write cache: %s", err)
				}
				if req.WantTransfers != nil {
					var list TransferList
					if err := list.Unmarshal(res.Data); err != nil {
						t.Fatalf("cannot unmarshal %d result: %s", i, err)
					}
					if len(req.WantTransfers) == 0 && len(list.Transfers) == 0 {
						continue
					}
					assert.Equal(t, req.WantTransfers, list.Transfers)
				}
			}

			if tc.AfterTest != nil {
				tc.AfterTest(t, db)
			}
		})
	}
}

func assertFunds(t testing.TB, db weave.KVStore, wallet weave.Address, funds coin.Coin) {
	t.Helper()

	ctrl := cash.NewController(cash.NewBucket())
	coins, err := ctrl.Balance(db, wallet)
	if err != nil {
		t.Fatalf("balance: %s", err)
	}
	if len(coins) != 1 {
		t.Fatalf("want %q funds, found %d coins: %q", funds, len(coins), coins)
	}
	if !coins[0].Equals(funds) {
		t.Fatalf("unexpected funds found: %q", coins[0])
	}
}

func assertNoFunds(t testing.TB, db weave.KVStore, wallet weave.Address) {
	t.Helper()

	ctrl := cash.NewController(cash.NewBucket())
	switch coins, err := ctrl.Balance(db, wallet); {
	case errors.ErrNotFound.Is(err):
		// All good.
	case err != nil:
		t.Fatalf("balance: %s", err)
	case len(coins) != 0:
		t.Fatalf("want no funds, found %q", coins)
	}
}

func assertLedger(t testing.TB, db weave.KVStore, owner weave.Address, want coin.Coin) {
	t.Helper()

	got, err := newLedger().Balance(db, owner, want.Ticker)
	if err != nil {
		t.Fatalf("ledger balance: %s", err)
	}
	if !got.Equals(want) {
		t.Fatalf("want %s deposited, got %s", want, got)
	}
}

func assertReserve(t testing.TB, db weave.KVStore, want coin.Coin) {
	t.Helper()

	got, err := newLedger().Reserved(db, want.Ticker)
	if err != nil {
		t.Fatalf("reserve: %s", err)
	}
	if !got.Equals(want) {
		t.Fatalf("want %s reserved, got %s", want, got)
	}
}

// failingTax cannot compute the tax of any transfer.
type failingTax struct{}

func (failingTax) Tax(weave.ReadOnlyKVStore, coin.Coin) (coin.Coin, error) {
	return coin.Coin{}, errors.Wrap(errors.ErrState, "tax configuration is broken")
}

func (failingTax) Collector(weave.ReadOnlyKVStore) (weave.Address, error) {
	return nil, errors.Wrap(errors.ErrState, "tax configuration is broken")
}
