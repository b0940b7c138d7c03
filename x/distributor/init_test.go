package distributor

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/store"
	"github.com/iov-one/weave/weavetest"
	"github.com/iov-one/weave/weavetest/assert"
)

func TestGenesisInitializer(t *testing.T) {
	var (
		admin     = weavetest.NewCondition().Address()
		burn      = weavetest.NewCondition().Address()
		developer = weavetest.NewCondition().Address()
		terraswap = weavetest.NewCondition().Address()
	)

	cases := map[string]struct {
		Genesis   string
		WantErr   *errors.Error
		AfterTest func(t *testing.T, db weave.KVStore)
	}{
		"missing configuration is not an error": {
			Genesis: `{}`,
			AfterTest: func(t *testing.T, db weave.KVStore) {
				if _, err := loadConf(db); !errors.ErrNotFound.Is(err) {
					t.Fatalf("want not found error, got %+v", err)
				}
			},
		},
		"configuration without developer": {
			Genesis: `{"distributor": {
				"admin": "` + admin.String() + `",
				"burn_address": "` + burn.String() + `",
				"whitelist": [{"address": "` + terraswap.String() + `", "protocol": "terraswap"}],
				"weight_per_protocol": [{"protocol": "terraswap", "weight": "0.5"}]
			}}`,
			AfterTest: func(t *testing.T, db weave.KVStore) {
				conf, err := loadConf(db)
				if err != nil {
					t.Fatalf("cannot load configuration: %s", err)
				}
				assert.Equal(t, admin, conf.Admin)
				assert.Equal(t, burn, conf.BurnAddress)
				assert.Equal(t, []WhitelistEntry{{Address: terraswap, Protocol: "terraswap"}}, conf.Whitelist)
				assert.Equal(t, []ProtocolWeight{
					{Protocol: "terraswap", Weight: weave.Fraction{Numerator: 1, Denominator: 2}},
				}, conf.Weights)
				assert.Equal(t, burnWithoutDeveloper, conf.PercentToBurn)
				assert.Equal(t, distributeWithoutDeveloper, conf.PercentToDistribute)
				assert.Equal(t, DefaultAcceptedTickers, conf.AcceptedTickers)
				assert.Equal(t, DefaultBurnThresholds(), conf.BurnThresholds)
				assert.Equal(t, SourceLedger, conf.Source)
			},
		},
		"configuration with developer distributing the contract balance": {
			Genesis: `{"distributor": {
				"burn_address": "` + burn.String() + `",
				"developer_address": "` + developer.String() + `",
				"accepted_tickers": ["UST"],
				"burn_thresholds": [{"whole": 5, "ticker": "UST"}],
				"source": "contract"
			}}`,
			AfterTest: func(t *testing.T, db weave.KVStore) {
				conf, err := loadConf(db)
				if err != nil {
					t.Fatalf("cannot load configuration: %s", err)
				}
				if len(conf.Admin) != 0 {
					t.Fatalf("unexpected admin: %s", conf.Admin)
				}
				assert.Equal(t, developer, conf.DeveloperAddress)
				assert.Equal(t, developerWithDeveloper, conf.PercentToDeveloper)
				assert.Equal(t, []string{"UST"}, conf.AcceptedTickers)
				assert.Equal(t, []coin.Coin{coin.NewCoin(5, 0, "UST")}, conf.BurnThresholds)
				assert.Equal(t, SourceContract, conf.Source)
			},
		},
		"invalid burn address": {
			Genesis: `{"distributor": {"burn_address": "not an address"}}`,
			WantErr: ErrInvalidAddress,
		},
		"invalid whitelist address": {
			Genesis: `{"distributor": {
				"burn_address": "` + burn.String() + `",
				"whitelist": [{"address": "0xZZ", "protocol": "terraswap"}]
			}}`,
			WantErr: ErrInvalidAddress,
		},
		"invalid weight": {
			Genesis: `{"distributor": {
				"burn_address": "` + burn.String() + `",
				"weight_per_protocol": [{"protocol": "terraswap", "weight": "1.5"}]
			}}`,
			WantErr: errors.ErrInput,
		},
		"unknown source": {
			Genesis: `{"distributor": {
				"burn_address": "` + burn.String() + `",
				"source": "treasury"
			}}`,
			WantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var opts weave.Options
			if err := json.Unmarshal([]byte(tc.Genesis), &opts); err != nil {
				t.Fatalf("cannot unmarshal genesis: %s", err)
			}

			db := store.MemStore()
			migration.MustInitPkg(db, packageName)

			var ini Initializer
			if err := ini.FromGenesis(opts, weave.GenesisParams{}, db); !tc.WantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.AfterTest != nil {
				tc.AfterTest(t, db)
			}
		})
	}
}
