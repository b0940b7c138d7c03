package main

import (
	"errors"
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/distributor/cmd/distd/app"
	"github.com/iov-one/distributor/x/distributor"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
)

func cmdDeposit(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction that moves funds from the depositor wallet to the
distributor contract and credits the depositor ledger entry.
`)
		fl.PrintDefaults()
	}
	var (
		depositorFl = flAddress(fl, "depositor", "", "Address of the depositor. Funds are taken from this account.")
		amountFl    = flCoin(fl, "amount", "", "Funds to be deposited, for example \"12.5 LUNA\".")
	)
	fl.Parse(args)

	if len(*depositorFl) == 0 {
		flagDie("the -depositor argument is required")
	}

	msg := distributor.DepositMsg{
		Metadata:  &weave.Metadata{Schema: 1},
		Depositor: *depositorFl,
		Funds:     []*coin.Coin{amountFl},
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}

	tx := &app.Tx{
		Sum: &app.Tx_DistributorDepositMsg{DistributorDepositMsg: &msg},
	}
	_, err := writeTx(output, tx)
	return err
}

func cmdWithdraw(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction that returns deposited funds to the owner. When no amount
is given, the whole balance of the owner ledger entry is withdrawn.
`)
		fl.PrintDefaults()
	}
	var (
		ownerFl  = flAddress(fl, "owner", "", "Address of the ledger entry owner.")
		tickerFl = fl.String("ticker", "", "Ticker of the withdrawn currency.")
		amountFl = flCoin(fl, "amount", "", "Optional amount to withdraw. Ticker must match the -ticker value if both are provided.")
	)
	fl.Parse(args)

	if len(*ownerFl) == 0 {
		flagDie("the -owner argument is required")
	}

	msg := distributor.WithdrawMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Owner:    *ownerFl,
		Ticker:   *tickerFl,
	}
	if amountFl.Ticker != "" {
		if msg.Ticker == "" {
			msg.Ticker = amountFl.Ticker
		}
		msg.Amount = amountFl
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}

	tx := &app.Tx{
		Sum: &app.Tx_DistributorWithdrawMsg{DistributorWithdrawMsg: &msg},
	}
	_, err := writeTx(output, tx)
	return err
}

func cmdDistribute(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction that splits funds between the burn address, the developer
and whitelisted protocols.

In the ledger mode the whole balance of the owner entry is split. In the
contract mode the owner must not be provided and the contract balance that is
not reserved by the ledger is split.
`)
		fl.PrintDefaults()
	}
	var (
		ownerFl  = flAddress(fl, "owner", "", "Address of the ledger entry owner. Leave empty in the contract mode.")
		tickerFl = fl.String("ticker", "", "Ticker of the distributed currency.")
	)
	fl.Parse(args)

	msg := distributor.DistributeMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Owner:    *ownerFl,
		Ticker:   *tickerFl,
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}

	tx := &app.Tx{
		Sum: &app.Tx_DistributorDistributeMsg{DistributorDistributeMsg: &msg},
	}
	_, err := writeTx(output, tx)
	return err
}

func cmdBurnTheBottom(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction that burns the part of the contract balance that is not
reserved by any ledger entry.
`)
		fl.PrintDefaults()
	}
	var (
		tickerFl = fl.String("ticker", "", "Ticker of the burned currency.")
	)
	fl.Parse(args)

	msg := distributor.BurnTheBottomMsg{
		Metadata: &weave.Metadata{Schema: 1},
		Ticker:   *tickerFl,
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}

	tx := &app.Tx{
		Sum: &app.Tx_DistributorBurnTheBottomMsg{DistributorBurnTheBottomMsg: &msg},
	}
	_, err := writeTx(output, tx)
	return err
}

func cmdUpdateConfig(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction that updates the distributor configuration. Only provided
values are changed.

Use with-whitelist-entry and with-weight commands to declare a new whitelist
or a new set of protocol weights. Both lists are replaced as a whole.
`)
		fl.PrintDefaults()
	}
	var (
		adminFl          = flAddress(fl, "admin", "", "A new administrator address.")
		freezeFl         = fl.Bool("freeze", false, "If set, the administrator is removed and the configuration cannot be changed anymore.")
		burnFl           = flAddress(fl, "burn", "", "A new burn address.")
		developerFl      = flAddress(fl, "developer", "", "A new developer address.")
		clearWhitelistFl = fl.Bool("clear-whitelist", false, "If set, the whitelist is emptied.")
		clearWeightsFl   = fl.Bool("clear-weights", false, "If set, all protocol weights are removed.")
	)
	fl.Parse(args)

	if *freezeFl && len(*adminFl) != 0 {
		flagDie("-freeze and -admin cannot be used together")
	}

	msg := distributor.UpdateConfigMsg{
		Metadata:         &weave.Metadata{Schema: 1},
		BurnAddress:      *burnFl,
		DeveloperAddress: *developerFl,
	}
	switch {
	case *freezeFl:
		msg.Admin = &distributor.AddressPatch{}
	case len(*adminFl) != 0:
		msg.Admin = &distributor.AddressPatch{Address: *adminFl}
	}
	if *clearWhitelistFl {
		msg.Whitelist = &distributor.WhitelistPatch{}
	}
	if *clearWeightsFl {
		msg.Weights = &distributor.WeightsPatch{}
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}

	tx := &app.Tx{
		Sum: &app.Tx_DistributorUpdateConfigMsg{DistributorUpdateConfigMsg: &msg},
	}
	_, err := writeTx(output, tx)
	return err
}

func cmdWithWhitelistEntry(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read an update-config transaction from the input and append a whitelist entry
to it. The whitelist declared by the transaction replaces the current one.
`)
		fl.PrintDefaults()
	}
	var (
		addressFl  = flAddress(fl, "address", "", "Address of the whitelisted protocol.")
		protocolFl = fl.String("protocol", "", "Name of the protocol that the address belongs to.")
	)
	fl.Parse(args)

	tx, _, err := readTx(input)
	if err != nil {
		return fmt.Errorf("cannot read input transaction: %s", err)
	}
	msg, err := updateConfigMsg(tx)
	if err != nil {
		return err
	}
	if msg.Whitelist == nil {
		msg.Whitelist = &distributor.WhitelistPatch{}
	}
	msg.Whitelist.Entries = append(msg.Whitelist.Entries, distributor.WhitelistEntry{
		Address:  *addressFl,
		Protocol: *protocolFl,
	})
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}

	_, err = writeTx(output, tx)
	return err
}

func cmdWithWeight(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read an update-config transaction from the input and append a protocol weight
to it. The weights declared by the transaction replace the current ones.
`)
		fl.PrintDefaults()
	}
	var (
		protocolFl = fl.String("protocol", "", "Name of the protocol.")
		weightFl   = flPercent(fl, "weight", "", "Share of the distributed part that the protocol receives, for example \"0.25\".")
	)
	fl.Parse(args)

	tx, _, err := readTx(input)
	if err != nil {
		return fmt.Errorf("cannot read input transaction: %s", err)
	}
	msg, err := updateConfigMsg(tx)
	if err != nil {
		return err
	}
	if msg.Weights == nil {
		msg.Weights = &distributor.WeightsPatch{}
	}
	msg.Weights.Entries = append(msg.Weights.Entries, distributor.ProtocolWeight{
		Protocol: *protocolFl,
		Weight:   *weightFl,
	})
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}

	_, err = writeTx(output, tx)
	return err
}

func updateConfigMsg(tx *app.Tx) (*distributor.UpdateConfigMsg, error) {
	sum, ok := tx.Sum.(*app.Tx_DistributorUpdateConfigMsg)
	if !ok {
		return nil, errors.New("input transaction must contain an update-config message")
	}
	return sum.DistributorUpdateConfigMsg, nil
}
