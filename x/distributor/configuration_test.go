package distributor

import (
	"testing"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/gconf"
	"github.com/iov-one/weave/migration"
	"github.com/iov-one/weave/store"
	"github.com/iov-one/weave/weavetest"
	"github.com/iov-one/weave/weavetest/assert"
)

func TestConfigurationValidate(t *testing.T) {
	addr := weavetest.NewCondition().Address()

	valid := func() Configuration {
		conf := Configuration{
			Metadata:    &weave.Metadata{Schema: 1},
			Admin:       addr,
			BurnAddress: addr,
			Whitelist: []WhitelistEntry{
				{Address: addr, Protocol: "terraswap"},
			},
			Weights: []ProtocolWeight{
				{Protocol: "terraswap", Weight: weave.Fraction{Numerator: 1, Denominator: 2}},
			},
			AcceptedTickers: DefaultAcceptedTickers,
			BurnThresholds:  DefaultBurnThresholds(),
		}
		conf.applySplit()
		return conf
	}

	cases := map[string]struct {
		Conf       func() Configuration
		WantErrors map[string]*errors.Error
	}{
		"valid configuration": {
			Conf: valid,
			WantErrors: map[string]*errors.Error{
				"Metadata":    nil,
				"Admin":       nil,
				"BurnAddress": nil,
				"Whitelist":   nil,
				"Weights":     nil,
				"Source":      nil,
			},
		},
		"frozen configuration is valid": {
			Conf: func() Configuration {
				c := valid()
				c.Admin = nil
				return c
			},
			WantErrors: map[string]*errors.Error{
				"Admin": nil,
			},
		},
		"percentages summing below one are accepted": {
			Conf: func() Configuration {
				c := valid()
				c.PercentToBurn = weave.Fraction{Numerator: 1, Denominator: 10}
				c.PercentToDistribute = weave.Fraction{Numerator: 1, Denominator: 10}
				return c
			},
			WantErrors: map[string]*errors.Error{
				"PercentToBurn":       nil,
				"PercentToDistribute": nil,
			},
		},
		"burn address is required": {
			Conf: func() Configuration {
				c := valid()
				c.BurnAddress = nil
				return c
			},
			WantErrors: map[string]*errors.Error{
				"BurnAddress": errors.ErrEmpty,
			},
		},
		"percentage above one": {
			Conf: func() Configuration {
				c := valid()
				c.PercentToBurn = weave.Fraction{Numerator: 3, Denominator: 2}
				return c
			},
			WantErrors: map[string]*errors.Error{
				"PercentToBurn":       errors.ErrInput,
				"PercentToDistribute": nil,
			},
		},
		"duplicated protocol weight": {
			Conf: func() Configuration {
				c := valid()
				c.Weights = append(c.Weights, c.Weights[0])
				return c
			},
			WantErrors: map[string]*errors.Error{
				"Weights": errors.ErrDuplicate,
			},
		},
		"whitelist entry without protocol": {
			Conf: func() Configuration {
				c := valid()
				c.Whitelist = []WhitelistEntry{{Address: addr}}
				return c
			},
			WantErrors: map[string]*errors.Error{
				"Whitelist": errors.ErrEmpty,
			},
		},
		"invalid accepted ticker": {
			Conf: func() Configuration {
				c := valid()
				c.AcceptedTickers = []string{"luna"}
				return c
			},
			WantErrors: map[string]*errors.Error{
				"AcceptedTickers": errors.ErrCurrency,
			},
		},
		"negative burn threshold": {
			Conf: func() Configuration {
				c := valid()
				c.BurnThresholds = []coin.Coin{coin.NewCoin(-1, 0, "LUNA")}
				return c
			},
			WantErrors: map[string]*errors.Error{
				"BurnThresholds": errors.ErrAmount,
			},
		},
		"unknown source": {
			Conf: func() Configuration {
				c := valid()
				c.Source = Source(7)
				return c
			},
			WantErrors: map[string]*errors.Error{
				"Source": errors.ErrInput,
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			conf := tc.Conf()
			err := conf.Validate()
			for field, wantErr := range tc.WantErrors {
				assert.FieldError(t, err, field, wantErr)
			}
		})
	}
}

func TestApplySplit(t *testing.T) {
	var conf Configuration
	conf.applySplit()
	assert.Equal(t, burnWithoutDeveloper, conf.PercentToBurn)
	assert.Equal(t, distributeWithoutDeveloper, conf.PercentToDistribute)
	assert.Equal(t, weave.Fraction{}, conf.PercentToDeveloper)

	conf.DeveloperAddress = weavetest.NewCondition().Address()
	conf.applySplit()
	assert.Equal(t, burnWithDeveloper, conf.PercentToBurn)
	assert.Equal(t, distributeWithDeveloper, conf.PercentToDistribute)
	assert.Equal(t, developerWithDeveloper, conf.PercentToDeveloper)
}

func TestAdminState(t *testing.T) {
	addr := weavetest.NewCondition().Address()

	conf := Configuration{Admin: addr}
	switch s := conf.adminState().(type) {
	case activeAdmin:
		assert.Equal(t, addr, s.address)
	default:
		t.Fatalf("unexpected admin state: %T", s)
	}

	conf.Admin = nil
	if _, ok := conf.adminState().(frozenAdmin); !ok {
		t.Fatal("configuration without an admin must be frozen")
	}
}

func TestBurnThreshold(t *testing.T) {
	conf := Configuration{BurnThresholds: DefaultBurnThresholds()}
	assert.Equal(t, coin.NewCoin(1, 0, "LUNA"), conf.burnThreshold("LUNA"))
	assert.Equal(t, coin.NewCoin(0, 0, "KRW"), conf.burnThreshold("KRW"))
}

func TestConfigQuery(t *testing.T) {
	db := store.MemStore()
	migration.MustInitPkg(db, packageName)

	if _, err := (configQuery{}).Query(db, "", nil); !errors.ErrNotFound.Is(err) {
		t.Fatalf("want not found error, got %+v", err)
	}

	addr := weavetest.NewCondition().Address()
	conf := Configuration{
		Metadata:    &weave.Metadata{Schema: 1},
		BurnAddress: addr,
		Source:      SourceContract,
	}
	conf.applySplit()
	if err := gconf.Save(db, packageName, &conf); err != nil {
		t.Fatalf("cannot save configuration: %s", err)
	}

	models, err := (configQuery{}).Query(db, "", nil)
	if err != nil {
		t.Fatalf("query: %s", err)
	}
	if len(models) != 1 {
		t.Fatalf("want one model, got %d", len(models))
	}
	var got Configuration
	if err := got.Unmarshal(models[0].Value); err != nil {
		t.Fatalf("cannot unmarshal configuration: %s", err)
	}
	assert.Equal(t, conf.BurnAddress, got.BurnAddress)
	assert.Equal(t, SourceContract, got.Source)
	assert.Equal(t, burnWithoutDeveloper, got.PercentToBurn)
}
