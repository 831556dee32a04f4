package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/google/subcommands"

	"github.com/beancount/beanbuff"
)

type processCmd struct {
	input  string
	output string
	now    string
	grace  int
	shards int
}

func (*processCmd) Name() string     { return "process" }
func (*processCmd) Synopsis() string { return "match transactions and group them into chains" }
func (*processCmd) Usage() string {
	return `bb process [-i <transactions>] [-o <output>] [-now <datetime>] [-grace <days>] [-shards <n>]

  Reads the normalized transaction table, matches opening and closing rows
  against FIFO lot inventories, synthesizes closing rows for positions still
  open at the run timestamp, groups related rows into chains, and writes the
  annotated table back out.
`
}

func (p *processCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.input, "i", "", "Transaction table to process. Defaults to the configured table.")
	f.StringVar(&p.output, "o", "", "Destination of the annotated table. Defaults to the configured output.")
	f.StringVar(&p.now, "now", "", "Run timestamp (YYYY-MM-DDTHH:MM:SS). Defaults to the current time.")
	f.IntVar(&p.grace, "grace", -1, "Expiration grace window in days.")
	f.IntVar(&p.shards, "shards", 0, "Match instruments in parallel with this many workers.")
}

func (p *processCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	if p.now != "" {
		cfg.Now = p.now
	}
	if p.grace >= 0 {
		cfg.GraceDays = p.grace
	}
	if p.shards > 0 {
		cfg.Shards = p.shards
	}

	input := cfg.Transactions
	if p.input != "" {
		input = p.input
	}
	output := cfg.Output
	if p.output != "" {
		output = p.output
	}

	txs, err := readTable(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot read %q: %v\n", input, err)
		return subcommands.ExitFailure
	}

	opts, err := cfg.MatchOptions()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitUsageError
	}

	start := time.Now()
	matched, err := beanbuff.Match(txs, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	chained, err := beanbuff.Chains(matched, beanbuff.DefaultChainOptions())
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}

	if err := writeTable(output, chained); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot write %q: %v\n", output, err)
		return subcommands.ExitFailure
	}

	fmt.Fprintf(os.Stderr, "Processed %d transactions (%d after synthesis) in %s.\n",
		len(txs), len(chained), time.Since(start).Round(time.Millisecond))
	return subcommands.ExitSuccess
}
