package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/beancount/beanbuff"
	"github.com/beancount/beanbuff/renderer"
)

type txCmd struct {
	input      string
	account    string
	underlying string
	chain      string
	head       int
	tail       int
}

func (*txCmd) Name() string     { return "tx" }
func (*txCmd) Synopsis() string { return "list transactions from a table" }
func (*txCmd) Usage() string {
	return `bb tx [-i <table>] [-a <account>] [-u <underlying>] [-chain <id>] [-head <n>] [-tail <n>]

  Lists transactions from a table, with options for filtering and limiting
  the output.
`
}

func (p *txCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.input, "i", "", "Transaction table to list. Defaults to the configured output.")
	f.StringVar(&p.account, "a", "", "Show only transactions of this account.")
	f.StringVar(&p.underlying, "u", "", "Show only transactions on this underlying.")
	f.StringVar(&p.chain, "chain", "", "Show only transactions of this chain.")
	f.IntVar(&p.head, "head", 0, "Show only the first N transactions.")
	f.IntVar(&p.tail, "tail", 0, "Show only the last N transactions.")
}

func (p *txCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if p.head > 0 && p.tail > 0 {
		fmt.Fprintln(os.Stderr, "Error: -head and -tail flags cannot be used together.")
		return subcommands.ExitUsageError
	}

	cfg, err := LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	input := cfg.Output
	if p.input != "" {
		input = p.input
	}

	txs, err := readTable(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot read %q: %v\n", input, err)
		return subcommands.ExitFailure
	}

	var selected []beanbuff.Transaction
	for _, tx := range txs {
		if p.account != "" && tx.Account != p.account {
			continue
		}
		if p.underlying != "" && tx.Underlying != p.underlying {
			continue
		}
		if p.chain != "" && tx.ChainID != p.chain {
			continue
		}
		selected = append(selected, tx)
	}

	if p.head > 0 && len(selected) > p.head {
		selected = selected[:p.head]
	}
	if p.tail > 0 && len(selected) > p.tail {
		selected = selected[len(selected)-p.tail:]
	}

	printMarkdown(renderer.Transactions(selected))

	return subcommands.ExitSuccess
}
