package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/distributor/cmd/distd/app"
	"github.com/iov-one/distributor/x/transfertax"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
)

func cmdUpdateTax(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction for configuring the tax charged on every payout of the
distributor contract. Transaction must be signed by the current configuration
owner. Only provided values are changed.
`)
		fl.PrintDefaults()
	}
	var (
		ownerFl     = flAddress(fl, "owner", "", "Address of the new configuration owner. Leave empty to not change.")
		collectorFl = flAddress(fl, "collector", "", "Address that receives collected tax. Leave empty to not change.")
		rateFl      = flFraction(fl, "rate", "", "Tax rate in the numerator/denominator form, for example 1/200.")
		capFl       = flCoin(fl, "cap", "", "Optional maximal tax charged per payout in the currency of the cap.")
	)
	fl.Parse(args)

	patch := transfertax.Configuration{
		Metadata:  &weave.Metadata{Schema: 1},
		Owner:     *ownerFl,
		Collector: *collectorFl,
		Rate:      *rateFl,
	}
	if capFl.Ticker != "" {
		patch.Caps = []coin.Coin{*capFl}
	}
	msg := transfertax.UpdateConfigurationMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Patch:    &patch,
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}

	tx := &app.Tx{
		Sum: &app.Tx_TransfertaxUpdateConfigurationMsg{TransfertaxUpdateConfigurationMsg: &msg},
	}
	_, err := writeTx(output, tx)
	return err
}
