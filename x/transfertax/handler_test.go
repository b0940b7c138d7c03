package transfertax

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
)

func TestUpdateConfiguration(t *testing.T) {
	owner := weavetest.NewCondition()
	collector := weavetest.NewCondition().Address()
	newCollector := weavetest.NewCondition().Address()

	cases := map[string]struct {
		Conditions []weave.Condition
		Patch      *Configuration
		WantErr    *errors.Error
		WantConf   Configuration
	}{
		"owner can change the rate": {
			Conditions: []weave.Condition{owner},
			Patch: &Configuration{
				Metadata: &weave.Metadata{Schema: 1},
				Rate:     weave.Fraction{Numerator: 2, Denominator: 100},
			},
			WantConf: Configuration{
				Metadata:  &weave.Metadata{Schema: 1},
				Owner:     owner.Address(),
				Collector: collector,
				Rate:      weave.Fraction{Numerator: 2, Denominator: 100},
				Caps:      []coin.Coin{coin.NewCoin(1, 0, "UST")},
			},
		},
		"owner can change the collector and caps": {
			Conditions: []weave.Condition{owner},
			Patch: &Configuration{
				Metadata:  &weave.Metadata{Schema: 1},
				Collector: newCollector,
				Caps:      []coin.Coin{coin.NewCoin(2, 0, "LUNA")},
			},
			WantConf: Configuration{
				Metadata:  &weave.Metadata{Schema: 1},
				Owner:     owner.Address(),
				Collector: newCollector,
				Rate:      weave.Fraction{Numerator: 1, Denominator: 100},
				Caps:      []coin.Coin{coin.NewCoin(2, 0, "LUNA")},
			},
		},
		"only the owner can change the configuration": {
			Conditions: []weave.Condition{weavetest.NewCondition()},
			Patch: &Configuration{
				Metadata: &weave.Metadata{Schema: 1},
				Rate:     weave.Fraction{Numerator: 2, Denominator: 100},
			},
			WantErr: errors.ErrUnauthorized,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			db := store.MemStore()
			migration.MustInitPkg(db, packageName)

			rt := app.NewRouter()
			auth := &weavetest.CtxAuth{Key: "auth"}
			RegisterRoutes(rt, auth)

			conf := Configuration{
				Metadata:  &weave.Metadata{Schema: 1},
				Owner:     owner.Address(),
				Collector: collector,
				Rate:      weave.Fraction{Numerator: 1, Denominator: 100},
				Caps:      []coin.Coin{coin.NewCoin(1, 0, "UST")},
			}
			if err := gconf.Save(db, packageName, &conf); err != nil {
				t.Fatalf("cannot save configuration: %s", err)
			}

			ctx := auth.SetConditions(context.Background(), tc.Conditions...)
			tx := &weavetest.Tx{Msg: &UpdateConfigurationMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Patch:    tc.Patch,
			}}
			if _, err := rt.Deliver(ctx, db, tx); !tc.WantErr.Is(err) {
				t.Fatalf("unexpected deliver error: %+v", err)
			}
			if tc.WantErr != nil {
				return
			}

			got, err := loadConf(db)
			if err != nil {
				t.Fatalf("cannot load configuration: %s", err)
			}
			assert.Equal(t, &tc.WantConf, got)
		})
	}
}

func TestConfigurationQuery(t *testing.T) {
	db := store.MemStore()
	qr := weave.NewQueryRouter()
	RegisterQuery(qr)

	h := qr.Handler("/transfertaxconf")
	if h == nil {
		t.Fatal("query handler not registered")
	}
	if models, err := h.Query(db, "", nil); err != nil || len(models) != 0 {
		t.Fatalf("want no result, got %d models and %+v error", len(models), err)
	}

	conf := Configuration{
		Metadata:  &weave.Metadata{Schema: 1},
		Owner:     weavetest.NewCondition().Address(),
		Collector: weavetest.NewCondition().Address(),
		Rate:      weave.Fraction{Numerator: 1, Denominator: 100},
	}
	if err := gconf.Save(db, packageName, &conf); err != nil {
		t.Fatalf("cannot save configuration: %s", err)
	}
	models, err := h.Query(db, "", nil)
	if err != nil {
		t.Fatalf("query: %s", err)
	}
	if len(models) != 1 {
		t.Fatalf("want one model, got %d", len(models))
	}
	var got Configuration
	if err := got.Unmarshal(models[0].Value); err != nil {
		t.Fatalf("cannot unmarshal: %s", err)
	}
	assert.Equal(t, conf.Collector, got.Collector)
}
