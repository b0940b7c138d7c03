package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/iov-one/distributor/cmd/distd/app"
)

func cmdTransactionView(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Decode and display every transaction read from the input. Before signing you
should check what kind of operation you are authorizing.

By default each transaction is printed as JSON. Use -summary to print one line
per transaction instead: the message path, the fee and the number of
signatures.
`)
		fl.PrintDefaults()
	}
	var (
		summaryFl = fl.Bool("summary", false, "Print a single line per transaction.")
	)
	fl.Parse(args)

	txs, err := readTxs(input)
	if err != nil {
		return fmt.Errorf("cannot read transactions: %s", err)
	}
	if len(txs) == 0 {
		return errors.New("no input data")
	}

	if *summaryFl {
		for i, tx := range txs {
			line, err := txSummary(tx)
			if err != nil {
				return fmt.Errorf("transaction %d: %s", i, err)
			}
			if _, err := fmt.Fprintln(output, line); err != nil {
				return err
			}
		}
		return nil
	}

	views := make([]string, 0, len(txs))
	for i, tx := range txs {
		// Protobuf compiler is exposing all attributes as JSON as
		// well. This will produce a beautiful summary.
		pretty, err := json.MarshalIndent(tx, "", "\t")
		if err != nil {
			return fmt.Errorf("cannot JSON serialize transaction %d: %s", i, err)
		}
		views = append(views, string(pretty))
	}
	_, err = io.WriteString(output, strings.Join(views, "\n"))
	return err
}

// txSummary returns a short, single line description of given transaction.
func txSummary(tx *app.Tx) (string, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return "", err
	}
	fee := "none"
	if tx.Fees != nil && tx.Fees.Fees != nil {
		fee = tx.Fees.Fees.String()
	}
	return fmt.Sprintf("%s fee=%s signatures=%d", msg.Path(), fee, len(tx.Signatures)), nil
}
