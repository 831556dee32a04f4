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

type chainsCmd struct {
	input  string
	status string
}

func (*chainsCmd) Name() string     { return "chains" }
func (*chainsCmd) Synopsis() string { return "summarize the chains of an annotated table" }
func (*chainsCmd) Usage() string {
	return `bb chains [-i <table>] [-status active|closed]

  Summarizes each chain of an annotated table: time span, number of orders,
  net cost, commissions and fees, and whether the position is still open.
`
}

func (p *chainsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.input, "i", "", "Annotated table to summarize. Defaults to the configured output.")
	f.StringVar(&p.status, "status", "", "Show only chains with this status (active or closed).")
}

func (p *chainsCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
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

	summaries := beanbuff.BuildChainSummaries(txs)
	if p.status != "" {
		status := beanbuff.ChainStatus(p.status)
		if status != beanbuff.ChainActive && status != beanbuff.ChainClosed {
			fmt.Fprintf(os.Stderr, "Error: unknown status %q.\n", p.status)
			return subcommands.ExitUsageError
		}
		var filtered []beanbuff.ChainSummary
		for _, s := range summaries {
			if s.Status == status {
				filtered = append(filtered, s)
			}
		}
		summaries = filtered
	}

	printMarkdown(renderer.ChainSummaries(summaries))

	return subcommands.ExitSuccess
}
