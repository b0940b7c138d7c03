package app_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/iov-one/distributor/cmd/distd/app"
	"github.com/iov-one/distributor/x/distributor"
	"github.com/iov-one/weave"
	weaveApp "github.com/iov-one/weave/app"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/crypto"
	"github.com/iov-one/weave/x/cash"
	"github.com/iov-one/weave/x/sigs"
	"github.com/stretchr/testify/require"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

const appState = `
{
  "cash": [
    {
      "address": %[1]q,
      "coins": [{"whole": 1000, "ticker": "LUNA"}]
    }
  ],
  "initialize_schema": [
    {"pkg": "cash", "ver": 1},
    {"pkg": "sigs", "ver": 1},
    {"pkg": "multisig", "ver": 1},
    {"pkg": "msgfee", "ver": 1},
    {"pkg": "distributor", "ver": 1},
    {"pkg": "transfertax", "ver": 1}
  ],
  "conf": {
    "cash": {
      "metadata": {"schema": 1},
      "owner": %[1]q,
      "collector_address": %[1]q,
      "minimal_fee": {"ticker": "LUNA"}
    },
    "migration": {
      "metadata": {"schema": 1},
      "admin": %[1]q
    }
  },
  "distributor": {
    "admin": %[1]q,
    "burn_address": %[2]q,
    "whitelist": [{"address": %[3]q, "protocol": "terraswap"}],
    "weight_per_protocol": [{"protocol": "terraswap", "weight": "1"}],
    "accepted_tickers": ["LUNA", "UST"]
  }
}`

type fixture struct {
	chainID  string
	key      *crypto.PrivateKey
	burn     weave.Address
	protocol weave.Address
	app      weaveApp.BaseApp
	height   int64
	nonce    int64
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		chainID:  "test-distd",
		key:      crypto.GenPrivKeyEd25519(),
		burn:     crypto.GenPrivKeyEd25519().PublicKey().Address(),
		protocol: crypto.GenPrivKeyEd25519().PublicKey().Address(),
		height:   1,
	}

	state := fmt.Sprintf(appState, f.key.PublicKey().Address().String(), f.burn.String(), f.protocol.String())
	f.app = startChain(t, f.chainID, []byte(state))
	return f
}

// startChain initializes a new in memory application with given genesis state
// and commits the first block.
func startChain(t *testing.T, chainID string, state []byte) weaveApp.BaseApp {
	t.Helper()

	myApp, err := app.Application("test-distd", app.Stack(), app.TxDecoder, "", true)
	require.NoError(t, err)
	myApp = app.DecorateApp(myApp, log.NewNopLogger())

	myApp.InitChain(abci.RequestInitChain{AppStateBytes: state, ChainId: chainID})
	myApp.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: 1, Time: time.Now()}})
	myApp.EndBlock(abci.RequestEndBlock{})
	cres := myApp.Commit()
	require.NotEmpty(t, cres.Data, "first block must not be empty")
	return myApp
}

func (f *fixture) owner() weave.Address {
	return f.key.PublicKey().Address()
}

// commit signs the transaction with the fixture key and submits it in a new
// block. Returned is the deliver response.
func (f *fixture) commit(t *testing.T, tx *app.Tx) abci.ResponseDeliverTx {
	t.Helper()

	sig, err := sigs.SignTx(f.key, tx, f.chainID, f.nonce)
	require.NoError(t, err)
	tx.Signatures = append(tx.Signatures, sig)

	raw, err := tx.Marshal()
	require.NoError(t, err)

	f.height++
	f.app.BeginBlock(abci.RequestBeginBlock{Header: abci.Header{Height: f.height, Time: time.Now()}})
	chres := f.app.CheckTx(raw)
	require.Equal(t, uint32(0), chres.Code, chres.Log)
	dres := f.app.DeliverTx(raw)
	require.Equal(t, uint32(0), dres.Code, dres.Log)
	f.app.EndBlock(abci.RequestEndBlock{})
	f.app.Commit()

	f.nonce++
	return dres
}

func (f *fixture) query(t *testing.T, path string, key []byte, dest weave.Persistent) {
	t.Helper()
	res := f.app.Query(abci.RequestQuery{Path: path, Data: key})
	require.Equal(t, uint32(0), res.Code, res.Log)
	require.NotEmpty(t, res.Value, "no result for %s", path)
	require.NoError(t, weaveApp.UnmarshalOneResult(res.Value, dest))
}

func (f *fixture) balance(t *testing.T, addr weave.Address) coin.Coins {
	t.Helper()
	var set cash.Set
	f.query(t, "/wallets", addr, &set)
	return set.Coins
}

func TestDepositWithdrawAndDistribute(t *testing.T) {
	f := newFixture(t)

	f.commit(t, &app.Tx{
		Sum: &app.Tx_DistributorDepositMsg{DistributorDepositMsg: &distributor.DepositMsg{
			Metadata:  &weave.Metadata{Schema: 1},
			Depositor: f.owner(),
			Funds:     []*coin.Coin{coin.NewCoinp(300, 0, "LUNA")},
		}},
	})

	var deposit distributor.Deposit
	f.query(t, "/deposits", distributor.DepositKey(f.owner(), "LUNA"), &deposit)
	require.Equal(t, coin.NewCoin(300, 0, "LUNA"), deposit.Amount)
	require.Equal(t, coin.Coins{coin.NewCoinp(300, 0, "LUNA")}, f.balance(t, distributor.ContractAddress))
	require.Equal(t, coin.Coins{coin.NewCoinp(700, 0, "LUNA")}, f.balance(t, f.owner()))

	f.commit(t, &app.Tx{
		Sum: &app.Tx_DistributorWithdrawMsg{DistributorWithdrawMsg: &distributor.WithdrawMsg{
			Metadata: &weave.Metadata{Schema: 1},
			Owner:    f.owner(),
			Ticker:   "LUNA",
			Amount:   coin.NewCoinp(200, 0, "LUNA"),
		}},
	})
	require.Equal(t, coin.Coins{coin.NewCoinp(900, 0, "LUNA")}, f.balance(t, f.owner()))

	dres := f.commit(t, &app.Tx{
		Sum: &app.Tx_DistributorDistributeMsg{DistributorDistributeMsg: &distributor.DistributeMsg{
			Metadata: &weave.Metadata{Schema: 1},
			Owner:    f.owner(),
			Ticker:   "LUNA",
		}},
	})

	var done distributor.TransferList
	require.NoError(t, done.Unmarshal(dres.Data))
	require.Len(t, done.Transfers, 2)

	require.Equal(t, coin.Coins{coin.NewCoinp(77, 780000000, "LUNA")}, f.balance(t, f.burn))
	require.Equal(t, coin.Coins{coin.NewCoinp(22, 220000000, "LUNA")}, f.balance(t, f.protocol))

	var reserve distributor.Reserve
	f.query(t, "/reserves", []byte("LUNA"), &reserve)
	require.True(t, reserve.Amount.IsZero(), "reserve must be empty, got %s", reserve.Amount)
}

func TestConfigurationQuery(t *testing.T) {
	f := newFixture(t)

	var conf distributor.Configuration
	f.query(t, "/distributorconf", nil, &conf)
	require.Equal(t, f.owner(), conf.Admin)
	require.Equal(t, f.burn, conf.BurnAddress)
	require.Equal(t, []string{"LUNA", "UST"}, conf.AcceptedTickers)
}

func TestGenInitOptions(t *testing.T) {
	addr := crypto.GenPrivKeyEd25519().PublicKey().Address()

	raw, err := app.GenInitOptions([]string{"UST", addr.String()})
	require.NoError(t, err)
	require.Contains(t, string(raw), addr.String())
	require.Contains(t, string(raw), `"ticker": "UST"`)

	_, err = app.GenInitOptions([]string{"not a ticker"})
	require.Error(t, err)
}

func TestGeneratedGenesisStartsChain(t *testing.T) {
	addr := crypto.GenPrivKeyEd25519().PublicKey().Address()
	raw, err := app.GenInitOptions([]string{"LUNA", addr.String()})
	require.NoError(t, err)

	f := &fixture{app: startChain(t, "test-genesis", raw)}

	var conf distributor.Configuration
	f.query(t, "/distributorconf", nil, &conf)
	require.Equal(t, addr, conf.Admin)
	require.Equal(t, addr, conf.BurnAddress)

	require.Equal(t, coin.Coins{
		coin.NewCoinp(123456789, 0, "LUNA"),
		coin.NewCoinp(123456789, 0, "UST"),
	}, f.balance(t, addr))
}
