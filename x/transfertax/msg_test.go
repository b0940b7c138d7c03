package transfertax

import (
	"testing"

	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/errors"
	"github.com/iov-one/weave/weavetest"
	"github.com/iov-one/weave/weavetest/assert"
)

func TestUpdateConfigurationMsgValidate(t *testing.T) {
	cases := map[string]struct {
		Msg        *UpdateConfigurationMsg
		WantErrors map[string]*errors.Error
	}{
		"valid patch": {
			Msg: &UpdateConfigurationMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Patch: &Configuration{
					Collector: weavetest.NewCondition().Address(),
					Rate:      weave.Fraction{Numerator: 1, Denominator: 200},
				},
			},
			WantErrors: map[string]*errors.Error{
				"Metadata":        nil,
				"Patch.Collector": nil,
				"Patch.Rate":      nil,
				"Patch.Caps":      nil,
			},
		},
		"missing patch": {
			Msg: &UpdateConfigurationMsg{
				Metadata: &weave.Metadata{Schema: 1},
			},
			WantErrors: map[string]*errors.Error{
				"Patch": errors.ErrEmpty,
			},
		},
		"zero denominator rate": {
			Msg: &UpdateConfigurationMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Patch: &Configuration{
					Rate: weave.Fraction{Numerator: 1},
				},
			},
			WantErrors: map[string]*errors.Error{
				"Patch.Rate": errors.ErrInput,
			},
		},
		"rate greater than one": {
			Msg: &UpdateConfigurationMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Patch: &Configuration{
					Rate: weave.Fraction{Numerator: 3, Denominator: 2},
				},
			},
			WantErrors: map[string]*errors.Error{
				"Patch.Rate": errors.ErrInput,
			},
		},
		"duplicated cap": {
			Msg: &UpdateConfigurationMsg{
				Metadata: &weave.Metadata{Schema: 1},
				Patch: &Configuration{
					Caps: []coin.Coin{
						coin.NewCoin(1, 0, "UST"),
						coin.NewCoin(2, 0, "UST"),
					},
				},
			},
			WantErrors: map[string]*errors.Error{
				"Patch.Caps": errors.ErrDuplicate,
			},
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := tc.Msg.Validate()
			for field, wantErr := range tc.WantErrors {
				assert.FieldError(t, err, field, wantErr)
			}
		})
	}
}
