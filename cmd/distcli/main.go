package main

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// commands is a register of all available commands that can be executed by
// this program. The name is used to match with the first argument given.
//
// A command function is an independent runable that is taking input and output
// being stdin and stdout. Given args are the command line arguments, without
// the program name and the command name, that should be parsed using the flag
// package. A command function is expected to read and write only to provided
// input and output. In a special case of an invalid argument a message to
// os.Stderr and os.Exit(2) call are allowed.
//
// Commands that create a transaction write it to the output. Commands that
// modify a transaction read it from the input. A unix pipe is used to
// construct a pipeline:
//
//   $ distcli distribute -ticker LUNA \
//       | distcli with-fee -amount "0.01 LUNA" \
//       | distcli sign \
//       | distcli submit
//
var commands = map[string]func(input io.Reader, output io.Writer, args []string) error{
	"balance":              cmdBalance,
	"burn-the-bottom":      cmdBurnTheBottom,
	"deposit":              cmdDeposit,
	"distribute":           cmdDistribute,
	"keyaddr":              cmdKeyaddr,
	"keygen":               cmdKeygen,
	"query":                cmdQuery,
	"send-tokens":          cmdSendTokens,
	"sign":                 cmdSignTransaction,
	"submit":               cmdSubmitTransaction,
	"update-config":        cmdUpdateConfig,
	"update-tax":           cmdUpdateTax,
	"version":              cmdVersion,
	"view":                 cmdTransactionView,
	"with-fee":             cmdWithFee,
	"with-weight":          cmdWithWeight,
	"with-whitelist-entry": cmdWithWhitelistEntry,
	"withdraw":             cmdWithdraw,
}

func main() {
	if len(os.Args) == 1 {
		fmt.Fprintf(os.Stderr, "%s is a command line client for the distributor application.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage: %s <command> [<flags>]\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		fmt.Fprintf(os.Stderr, "Run '%s <command> -help' to learn more about each command.\n", os.Args[0])
		os.Exit(2)
	}
	run, ok := commands[os.Args[1]]
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown command %q\n", os.Args[1])
		fmt.Fprintf(os.Stderr, "\nAvailable commands are:\n\t%s\n", strings.Join(availableCmds(), "\n\t"))
		os.Exit(2)
	}

	if err := run(os.Stdin, os.Stdout, os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func availableCmds() []string {
	available := make([]string, 0, len(commands))
	for name := range commands {
		available = append(available, name)
	}
	sort.Strings(available)
	return available
}

func cmdVersion(in io.Reader, out io.Writer, args []string) error {
	fmt.Fprintln(out, gitHash)
	return nil
}

// gitHash is set during the compilation time.
var gitHash string = "dev"
