package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/distributor/cmd/distd/app"
	"github.com/iov-one/distributor/cmd/distd/client"
	"github.com/iov-one/weave"
	"github.com/iov-one/weave/coin"
	"github.com/iov-one/weave/x/cash"
)

func cmdSendTokens(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Create a transaction for transferring funds from the source account to the
destination account.
`)
		fl.PrintDefaults()
	}
	var (
		srcFl    = flAddress(fl, "src", "", "A source account address that the funds are sent from.")
		dstFl    = flAddress(fl, "dst", "", "A destination account address that the funds are sent to.")
		amountFl = flCoin(fl, "amount", "1 LUNA", "An amount that is to be transferred between the source to the destination accounts.")
		memoFl   = fl.String("memo", "", "A short message attached to the transfer operation.")
	)
	fl.Parse(args)

	msg := cash.SendMsg{
		Metadata:    &weave.Metadata{Schema: 1},
		Source:      *srcFl,
		Destination: *dstFl,
		Amount:      amountFl,
		Memo:        *memoFl,
	}
	if err := msg.Validate(); err != nil {
		return fmt.Errorf("given data produce an invalid message: %s", err)
	}

	tx := &app.Tx{
		Sum: &app.Tx_CashSendMsg{CashSendMsg: &msg},
	}
	_, err := writeTx(output, tx)
	return err
}

func cmdWithFee(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Modify given transaction and attach a fee as specified to it. If a transaction
already has a fee set, overwrite it with a new value.
`)
		fl.PrintDefaults()
	}
	var (
		payerFl  = flAddress(fl, "payer", "", "Optional address of a payer. If not provided the main signer will be used.")
		amountFl = flCoin(fl, "amount", "1 LUNA", "Fee value that should be attached to the transaction.")
	)
	fl.Parse(args)

	if coin.IsEmpty(amountFl) {
		flagDie("fee value must be provided and greater than zero.")
	}
	if !amountFl.IsPositive() {
		flagDie("fee value must be greater than zero.")
	}

	tx, _, err := readTx(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction: %s", err)
	}
	tx.Fee(*payerFl, *amountFl)

	_, err = writeTx(output, tx)
	return err
}

func cmdBalance(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Print the wallet balance of given account. When a ticker is provided, only
the funds in that currency are printed.
`)
		fl.PrintDefaults()
	}
	var (
		tmAddrFl  = fl.String("tm", env("DISTCLI_TM_ADDR", defaultTmAddr), tmAddrUsage)
		addressFl = flAddress(fl, "address", "", "Address of the account.")
		tickerFl  = fl.String("ticker", "", "Optional ticker of the currency.")
	)
	fl.Parse(args)

	if len(*addressFl) == 0 {
		flagDie("the -address argument is required")
	}

	distClient := client.NewClient(client.NewHTTPConnection(*tmAddrFl))
	resp, err := distClient.GetWallet(*addressFl)
	if err != nil {
		return fmt.Errorf("cannot fetch wallet: %s", err)
	}
	return printBalance(output, resp, *tickerFl)
}

func printBalance(output io.Writer, resp *client.WalletResponse, ticker string) error {
	if resp == nil {
		_, err := fmt.Fprintln(output, "empty")
		return err
	}
	if ticker != "" {
		c, ok := client.FindCoinByTicker(resp.Wallet.Coins, ticker)
		if !ok {
			c = &coin.Coin{Ticker: ticker}
		}
		_, err := fmt.Fprintln(output, c)
		return err
	}
	for _, c := range resp.Wallet.Coins {
		if _, err := fmt.Fprintln(output, c); err != nil {
			return err
		}
	}
	return nil
}
