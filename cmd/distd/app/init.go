package app

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/iov-one/distributor/x/distributor"
	"github.com/iov-one/distributor/x/transfertax"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/app"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/commands/server"
	"github.com/iov-one/weave/crypto"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/x/cash"
	"github.com/iov-one/weave/x/msgfee"
	"github.com/iov-one/weave/x/multisig"
	abci "github.com/tendermint/tendermint/abci/types"
	"github.com/tendermint/tendermint/libs/log"
)

const appName = "distd"

// GenInitOptions will produce some basic options for one rich
// account, to use for dev mode. The generated account is the admin of every
// configurable extension and the burn address of the distributor.
//
// Optional arguments are the fee ticker and the hex address of the rich
// account.
func GenInitOptions(args []string) (json.RawMessage, error) {
	ticker := "LUNA"
	if len(args) > 0 {
		ticker = args[0]
		if !coin.IsCC(ticker) {
			return nil, errors.Wrapf(errors.ErrCurrency, "invalid ticker %s", ticker)
		}
	}

	var addr weave.Address
	if len(args) > 1 {
		a, err := weave.ParseAddress(args[1])
		if err != nil {
			return nil, errors.Wrap(err, "rich account address")
		}
		addr = a
	} else {
		// if no address provided, auto-generate one
		// and print out the generated keys
		a, keys, err := GenerateCoinKey()
		if err != nil {
			return nil, err
		}
		addr = a
		fmt.Println(keys)
	}
	return genesis(addr, ticker)
}

func genesis(addr weave.Address, ticker string) (json.RawMessage, error) {
	opts := fmt.Sprintf(`
{
  "cash": [
    {
      "address": %[1]q,
      "coins": [
        {"whole": 123456789, "ticker": %[2]q},
        {"whole": 123456789, "ticker": "UST"}
      ]
    }
  ],
  "multisig": [],
  "msgfee": [],
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
      "minimal_fee": {"ticker": %[2]q}
    },
    "migration": {
      "metadata": {"schema": 1},
      "admin": %[1]q
    },
    "msgfee": {
      "metadata": {"schema": 1},
      "owner": %[1]q,
      "fee_admin": %[1]q
    },
    "transfertax": {
      "owner": %[1]q,
      "collector": %[1]q,
      "rate": "0/1",
      "caps": []
    }
  },
  "distributor": {
    "admin": %[1]q,
    "burn_address": %[1]q,
    "whitelist": [],
    "weight_per_protocol": [],
    "accepted_tickers": ["LUNA", "UST"],
    "source": "ledger"
  }
}`, addr.String(), ticker)
	return []byte(opts), nil
}

// GenerateApp is used to create a stub for server/start.go command
func GenerateApp(options *server.Options) (abci.Application, error) {
	// db goes in a subdir, but "" -> "" for memdb
	var dbPath string
	if options.Home != "" {
		dbPath = filepath.Join(options.Home, "distd.db")
	}

	application, err := Application(appName, Stack(), TxDecoder, dbPath, options.Debug)
	if err != nil {
		return nil, err
	}
	return DecorateApp(application, options.Logger), nil
}

// DecorateApp adds initializers and Logger to an Application
func DecorateApp(application app.BaseApp, logger log.Logger) app.BaseApp {
	application.WithInit(app.ChainInitializers(
		&migration.Initializer{},
		&multisig.Initializer{},
		&cash.Initializer{},
		&msgfee.Initializer{},
		&distributor.Initializer{},
		&transfertax.Initializer{},
	))
	application.WithLogger(logger)
	return application
}

// InlineApp will take a previously prepared CommitStore and return a complete Application
func InlineApp(kv weave.CommitKVStore, logger log.Logger, debug bool) abci.Application {
	ctx := context.Background()
	store := app.NewStoreApp(appName, kv, QueryRouter(), ctx)
	base := app.NewBaseApp(store, TxDecoder, Stack(), nil, debug)
	return DecorateApp(base, logger)
}

type output struct {
	Pubkey *crypto.PublicKey  `json:"pub_key"`
	Secret *crypto.PrivateKey `json:"secret"`
}

// GenerateCoinKey returns the address of a public key,
// along with a json representation of the keys.
// You can give coins to this address and
// import the keys in the client to use them
func GenerateCoinKey() (weave.Address, string, error) {
	privKey := crypto.GenPrivKeyEd25519()
	pubKey := privKey.PublicKey()
	addr := pubKey.Address()

	out := output{Pubkey: pubKey, Secret: privKey}
	keys, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, "", err
	}
	return addr, string(keys), nil
}
