package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/iov-one/distributor/cmd/distd/client"
	"github.com/iov-one/weave/x/sigs"
)

func cmdSignTransaction(input io.Reader, output io.Writer, args []string) error {
	fl := flag.NewFlagSet("", flag.ExitOnError)
	fl.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), `
Sign given transaction. This is decoding a transaction data from standard
input, adds a signature and writes back to standard output signed transaction
content.

The chain ID and the signer sequence are fetched from the node.
`)
		fl.PrintDefaults()
	}
	var (
		tmAddrFl  = fl.String("tm", env("DISTCLI_TM_ADDR", defaultTmAddr), tmAddrUsage)
		keyPathFl = fl.String("key", defaultKeyPath(), keyPathUsage)
	)
	fl.Parse(args)

	key, err := client.LoadPrivateKey(*keyPathFl)
	if err != nil {
		return fmt.Errorf("cannot load private key: %s", err)
	}

	tx, _, err := readTx(input)
	if err != nil {
		return fmt.Errorf("cannot read transaction: %s", err)
	}

	distClient := client.NewClient(client.NewHTTPConnection(*tmAddrFl))
	chainID, err := distClient.ChainID()
	if err != nil {
		return fmt.Errorf("cannot fetch chain ID: %s", err)
	}
	seq, err := client.NewNonce(distClient, key.PublicKey().Address()).Next()
	if err != nil {
		return fmt.Errorf("cannot get the next sequence number: %s", err)
	}
	sig, err := sigs.SignTx(key, tx, chainID, seq)
	if err != nil {
		return fmt.Errorf("cannot sign transaction: %s", err)
	}
	tx.Signatures = append(tx.Signatures, sig)

	_, err = writeTx(output, tx)
	return err
}
