package distributor

import (
	"strings"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
)

// Initializer fulfils the Initializer interface to load data from the genesis
// file
type Initializer struct{}

var _ weave.Initializer = (*Initializer)(nil)

// genesisConf is the genesis representation of the configuration. Addresses
// are declared using any format supported by weave.ParseAddress and weights
// are decimal strings.
type genesisConf struct {
	Admin            string `json:"admin"`
	BurnAddress      string `json:"burn_address"`
	DeveloperAddress string `json:"developer_address"`
	Whitelist        []struct {
		Address  string `json:"address"`
		Protocol string `json:"protocol"`
	} `json:"whitelist"`
	WeightPerProtocol []struct {
		Protocol string `json:"protocol"`
		Weight   string `json:"weight"`
	} `json:"weight_per_protocol"`
	AcceptedTickers []string    `json:"accepted_tickers"`
	BurnThresholds  []coin.Coin `json:"burn_thresholds"`
	Source          string      `json:"source"`
}

// FromGenesis will parse the distributor configuration from genesis and save
// it to the database. Missing configuration is not an error.
func (*Initializer) FromGenesis(opts weave.Options, params weave.GenesisParams, db weave.KVStore) error {
	var raw *genesisConf
	if err := opts.ReadOptions(packageName, &raw); err != nil {
		return errors.Wrap(err, "cannot read distributor configuration")
	}
	if raw == nil {
		return nil
	}
	conf, err := raw.configuration()
	if err != nil {
		return err
	}
	return saveConf(db, conf)
}

func (g *genesisConf) configuration() (*Configuration, error) {
	conf := Configuration{
		Metadata:        &weave.Metadata{Schema: 1},
		AcceptedTickers: g.AcceptedTickers,
		BurnThresholds:  g.BurnThresholds,
	}

	var err error
	if g.Admin != "" {
		if conf.Admin, err = parseAddress("admin", g.Admin); err != nil {
			return nil, err
		}
	}
	if conf.BurnAddress, err = parseAddress("burn_address", g.BurnAddress); err != nil {
		return nil, err
	}
	if g.DeveloperAddress != "" {
		if conf.DeveloperAddress, err = parseAddress("developer_address", g.DeveloperAddress); err != nil {
			return nil, err
		}
	}
	for i, e := range g.Whitelist {
		addr, err := parseAddress("whitelist", e.Address)
		if err != nil {
			return nil, errors.Wrapf(err, "entry %d", i)
		}
		conf.Whitelist = append(conf.Whitelist, WhitelistEntry{Address: addr, Protocol: e.Protocol})
	}
	for _, w := range g.WeightPerProtocol {
		weight, err := ParsePercent(w.Weight)
		if err != nil {
			return nil, errors.Wrapf(err, "protocol %q weight", w.Protocol)
		}
		conf.Weights = append(conf.Weights, ProtocolWeight{Protocol: w.Protocol, Weight: weight})
	}

	if len(conf.AcceptedTickers) == 0 {
		conf.AcceptedTickers = DefaultAcceptedTickers
	}
	if len(conf.BurnThresholds) == 0 {
		conf.BurnThresholds = DefaultBurnThresholds()
	}
	if conf.Source, err = parseSource(g.Source); err != nil {
		return nil, err
	}
	conf.applySplit()

	if err := conf.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid distributor configuration")
	}
	return &conf, nil
}

func parseAddress(field, raw string) (weave.Address, error) {
	addr, err := weave.ParseAddress(raw)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidAddress, "%s: %q", field, raw)
	}
	return addr, nil
}

func parseSource(raw string) (Source, error) {
	switch strings.ToLower(raw) {
	case "", "ledger":
		return SourceLedger, nil
	case "contract":
		return SourceContract, nil
	default:
		return 0, errors.Wrapf(errors.ErrInput, "unknown source %q", raw)
	}
}
