package client

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/iov-one/distributor/cmd/distd/app"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/commands/server"
	abci "github.com/tendermint/tendermint/abci/types"
	cfg "github.com/tendermint/tendermint/config"
	"github.com/tendermint/tendermint/libs/log"
	nm "github.com/tendermint/tendermint/node"
	rpctest "github.com/tendermint/tendermint/rpc/test"
	tm "github.com/tendermint/tendermint/types"
)

// configuration for genesis
var initBalance = coin.Coin{
	Whole:  100200300,
	Ticker: "LUNA",
}

// adjust this to get debug output
var logger = log.NewNopLogger()

// useful values for test cases
var node *nm.Node
var faucet *PrivateKey
var burn = GenPrivateKey().PublicKey().Address()

func getChainID() string {
	return rpctest.GetConfig().ChainID()
}

func TestMain(m *testing.M) {
	faucet = GenPrivateKey()

	config := rpctest.GetConfig()
	config.Moniker = "SetInTestMain"

	distd, err := initApp(config, faucet.PublicKey().Address())
	if err != nil {
		panic(err)
	}

	// run the app inside a tendermint instance
	node = rpctest.StartTendermint(distd)
	time.Sleep(100 * time.Millisecond) // time to setup app context
	code := m.Run()

	node.Stop()
	node.Wait()
	os.Exit(code)
}

func initApp(config *cfg.Config, addr weave.Address) (abci.Application, error) {
	opts := &server.Options{
		MinFee: coin.Coin{},
		Home:   config.RootDir,
		Logger: logger,
		Debug:  false,
	}
	distd, err := app.GenerateApp(opts)
	if err != nil {
		return nil, err
	}
	err = initGenesis(config.GenesisFile(), addr)
	return distd, err
}

const appState = `
{
  "cash": [
    {
      "address": %[1]q,
      "coins": [{"whole": %[3]d, "ticker": %[4]q}]
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
      "minimal_fee": {"ticker": %[4]q}
    },
    "migration": {
      "metadata": {"schema": 1},
      "admin": %[1]q
    }
  },
  "distributor": {
    "admin": %[1]q,
    "burn_address": %[2]q,
    "accepted_tickers": [%[4]q]
  }
}`

func initGenesis(filename string, addr weave.Address) error {
	doc, err := tm.GenesisDocFromFile(filename)
	if err != nil {
		return err
	}
	doc.AppState = []byte(fmt.Sprintf(appState, addr.String(), burn.String(), initBalance.Whole, initBalance.Ticker))
	return doc.SaveAs(filename)
}
