package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/beancount/beanbuff"
)

type fmtCmd struct {
	input string
}

func (*fmtCmd) Name() string { return "fmt" }
func (*fmtCmd) Synopsis() string {
	return "validates and formats a transaction table into a canonical form"
}
func (*fmtCmd) Usage() string {
	return `bb fmt [-i <table>]

  Validates and formats a transaction table. This command reads all rows,
  validates them, sorts them by time, and writes them back in a canonical
  JSONL format.

Usage Examples:
# Rewrites the default transaction table in place.
$ bb fmt

`
}

func (p *fmtCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.input, "i", "", "Transaction table to format. Defaults to the configured table.")
}

func (p *fmtCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	input := cfg.Transactions
	if p.input != "" {
		input = p.input
	}

	txs, err := readTable(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot read %q: %v\n", input, err)
		return subcommands.ExitFailure
	}

	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid transaction %q: %v\n", tx.TransactionID, err)
			return subcommands.ExitFailure
		}
	}
	beanbuff.SortTransactions(txs)

	if err := writeTable(input, txs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot write %q: %v\n", input, err)
		return subcommands.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "Formatted %d transactions in %q.\n", len(txs), input)
	return subcommands.ExitSuccess
}
