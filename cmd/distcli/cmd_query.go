package main

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/iov-one/distributor/cmd/distd/client"
	"github.com/iov-one/distributor/x/distributor"
	"github.com/iov-one/distributor/x/transfertax"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/x/cash"
)

func cmdQuery(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Execute a ABCI query and print JSON encoded result.
`)
		fl.PrintDefaults()
	}
	var (
		tmAddrFl      = fl.String("tm", env("DISTCLI_TM_ADDR", defaultTmAddr), tmAddrUsage)
		pathFl        = fl.String("path", "", "Path to be queried. Must be one of the supported.")
		dataFl        = fl.String("data", "", "Individual query data. Format depends on the queried entity. Use 'address/ticker' for deposits.")
		prefixQueryFl = fl.Bool("prefix", false, "If true, use prefix queries instead of the exact match with provided data.")
	)
	fl.Parse(args)

	conf, ok := queries[*pathFl]
	if !ok {
		paths := make([]string, 0, len(queries))
		for p := range queries {
			paths = append(paths, p)
		}
		sort.Strings(paths)
		return fmt.Errorf("available query paths:\n\t- %s", strings.Join(paths, "\n\t- "))
	}

	var data []byte
	if len(*dataFl) != 0 {
		if conf.encID == nil {
			return fmt.Errorf("query %q does not accept data", *pathFl)
		}
		var err error
		if data, err = conf.encID(*dataFl); err != nil {
			return fmt.Errorf("can not encode data: %s", err)
		}
	}
	queryPath := *pathFl
	if conf.encID != nil && (*prefixQueryFl || *dataFl == "") {
		queryPath += "?" + weave.PrefixQueryMod
	}

	distClient := client.NewClient(client.NewHTTPConnection(*tmAddrFl))
	resp, err := distClient.AbciQuery(queryPath, data)
	if err != nil {
		return fmt.Errorf("failed to run query: %s", err)
	}

	result, err := decodeModels(conf.newObj, conf.decKey, resp.Models)
	if err != nil {
		return err
	}
	pretty, err := json.MarshalIndent(result, "", "\t")
	if err != nil {
		return fmt.Errorf("cannot JSON serialize: %s", err)
	}
	_, err = output.Write(pretty)
	return err
}

func decodeModels(newObj func() model, decKey func([]byte) (string, error), models []weave.Model) ([]keyval, error) {
	result := make([]keyval, 0, len(models))
	for i, m := range models {
		obj := newObj()
		if err := obj.Unmarshal(m.Value); err != nil {
			return nil, fmt.Errorf("failed to unmarshal model %d: %s", i, err)
		}
		key, err := decKey(m.Key)
		if err != nil {
			return nil, fmt.Errorf("cannot decode %x key: %s", m.Key, err)
		}
		result = append(result, keyval{Key: key, Value: obj})
	}
	return result, nil
}

type keyval struct {
	Key   string
	Value model
}

// queries contains a mapping of query path to that query specifics. Each query
// returns a custom model type and may use different ID encoding pattern.
var queries = map[string]struct {
	// newObj returns a new instance of the model that the result of the
	// ABCI query should be extracted into.
	newObj func() model
	// decKey is used to decode key value returned by the ABCI query and
	// transform it into human readable form.
	decKey func([]byte) (string, error)
	// encID is used to parse input format of the ID and encode it into
	// form that will be passed to the ABCI query. Nil for singleton
	// queries that take no data.
	encID func(string) ([]byte, error)
}{
	"/deposits": {
		newObj: func() model { return &distributor.Deposit{} },
		decKey: depositKey,
		encID:  depositID,
	},
	"/deposits/owner": {
		newObj: func() model { return &distributor.Deposit{} },
		decKey: depositKey,
		encID:  addressID,
	},
	"/reserves": {
		newObj: func() model { return &distributor.Reserve{} },
		decKey: stringKey,
		encID:  stringID,
	},
	"/wallets": {
		newObj: func() model { return &cash.Set{} },
		decKey: rawKey,
		encID:  addressID,
	},
	"/distributorconf": {
		newObj: func() model { return &distributor.Configuration{} },
		decKey: stringKey,
	},
	"/transfertaxconf": {
		newObj: func() model { return &transfertax.Configuration{} },
		decKey: stringKey,
	},
}

// model is an entity used by weave to store data. This interface is
// implemented by any protobuf message.
type model interface {
	Unmarshal([]byte) error
}

func addressID(s string) ([]byte, error) {
	return weave.ParseAddress(s)
}

func stringID(s string) ([]byte, error) {
	return []byte(s), nil
}

// depositID expects `address/ticker` pair. Ticker can be omitted to match all
// entries of the owner with a prefix query.
func depositID(s string) ([]byte, error) {
	tokens := strings.SplitN(s, "/", 2)
	owner, err := weave.ParseAddress(tokens[0])
	if err != nil {
		return nil, fmt.Errorf("cannot decode address: %s", err)
	}
	var ticker string
	if len(tokens) == 2 {
		ticker = tokens[1]
	}
	return distributor.DepositKey(owner, ticker), nil
}

func depositKey(raw []byte) (string, error) {
	// Skip the prefix, being the characters before : (including separator)
	key := raw[bytes.Index(raw, []byte(":"))+1:]
	if len(key) <= weave.AddressLength {
		return "", errors.New("deposit key too short")
	}
	owner := weave.Address(key[:weave.AddressLength])
	return fmt.Sprintf("%s/%s", owner, key[weave.AddressLength:]), nil
}

func stringKey(raw []byte) (string, error) {
	return string(raw[bytes.Index(raw, []byte(":"))+1:]), nil
}

func rawKey(raw []byte) (string, error) {
	return hex.EncodeToString(raw), nil
}
