package main

import (
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/iov-one/distributor/cmd/distd/client"
	"github.com/iov-one/distributor/x/distributor"
	"github.com/iov-one/weave"
)

func cmdSubmitTransaction(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Read binary serialized transaction from standard input and submit it.

For distributor transactions the list of executed transfers is written out.

Make sure to collect enough signatures before submitting the transaction.
`)
		fl.PrintDefaults()
	}
	var (
		tmAddrFl = fl.String("tm", env("DISTCLI_TM_ADDR", defaultTmAddr), tmAddrUsage)
	)
	fl.Parse(args)

	tx, _, err := readTx(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction from input: %s", err)
	}

	distClient := client.NewClient(client.NewHTTPConnection(*tmAddrFl))

	resp := distClient.BroadcastTx(tx)
	if err := resp.IsError(); err != nil {
		return fmt.Errorf("cannot broadcast transaction: %s", err)
	}

	response, err := extractResponse(tx, resp.Response.DeliverTx.Data, formatters)
	if err != nil {
		return fmt.Errorf("cannot extract response: %s", err)
	}
	if response != "" {
		fmt.Fprintln(output, response)
	}
	return nil
}

// extractResponse parse given raw response data bytes according to what is
// expected considering the submitted transaction. It returns a human readable
// representation of given response. It can return no data (and no error) if
// response does not contain anything worth showing to the user or response is
// not supported.
func extractResponse(tx weave.Tx, respData []byte, fmts map[string]func([]byte) (string, error)) (string, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return "", fmt.Errorf("cannot extract message from transaction: %s", err)
	}
	format, ok := fmts[msg.Path()]
	if !ok {
		// If no formatter is registered, we do not print the result.
		return "", nil
	}
	pretty, err := format(respData)
	if err != nil {
		return "", fmt.Errorf("cannot format result data %x: %s", respData, err)
	}
	return pretty, nil
}

// formatters contains a mapping of a message path to response parser. Response
// parse function accepts a raw bytes of serialized response and must return a
// human representation of that data.
var formatters = map[string]func([]byte) (string, error){
	distributor.DepositMsg{}.Path(): func(data []byte) (string, error) {
		return fmt.Sprintf("Ledger entry key: %x", data), nil
	},
	distributor.WithdrawMsg{}.Path():      formatTransfers,
	distributor.DistributeMsg{}.Path():    formatTransfers,
	distributor.BurnTheBottomMsg{}.Path(): formatTransfers,
}

func formatTransfers(data []byte) (string, error) {
	var list distributor.TransferList
	if err := list.Unmarshal(data); err != nil {
		return "", err
	}
	if len(list.Transfers) == 0 {
		return "No transfers", nil
	}
	lines := make([]string, 0, len(list.Transfers))
	for _, t := range list.Transfers {
		kind := strings.ToLower(strings.TrimPrefix(t.Kind.String(), "TRANSFER_KIND_"))
		line := fmt.Sprintf("%-9s %s -> %s", kind, t.Amount, t.Recipient)
		if t.Protocol != "" {
			line += " (" + t.Protocol + ")"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}
