package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"github.com/beancount/beanbuff"
)

type importCmd struct {
	profile string
	output  string
	appendTo bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import broker files into the transaction table" }
func (*importCmd) Usage() string {
	return `bb import [-profile <name>] [-o <table>] [-append] <file>...

  Converts broker export files into normalized transaction rows. CSV files
  with the canonical header import directly; JSON files need a named import
  profile from the configuration describing where each field lives.
`
}

func (p *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&p.profile, "profile", "", "Import profile for JSON files.")
	f.StringVar(&p.output, "o", "", "Destination table. Defaults to the configured table.")
	f.BoolVar(&p.appendTo, "append", false, "Append to the destination instead of replacing it.")
}

func (p *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if f.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "Error: no file to import.")
		return subcommands.ExitUsageError
	}

	cfg, err := LoadConfig(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return subcommands.ExitFailure
	}
	output := cfg.Transactions
	if p.output != "" {
		output = p.output
	}

	var txs []beanbuff.Transaction
	if p.appendTo {
		existing, err := readTable(output)
		if err != nil && !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Error: cannot read %q: %v\n", output, err)
			return subcommands.ExitFailure
		}
		txs = existing
	}

	for _, name := range f.Args() {
		imported, err := p.importFile(cfg, name)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot import %q: %v\n", name, err)
			return subcommands.ExitFailure
		}
		fmt.Fprintf(os.Stderr, "Imported %d transactions from %q.\n", len(imported), name)
		txs = append(txs, imported...)
	}

	beanbuff.SortTransactions(txs)
	if err := writeTable(output, txs); err != nil {
		fmt.Fprintf(os.Stderr, "Error: cannot write %q: %v\n", output, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}

func (p *importCmd) importFile(cfg Config, name string) ([]beanbuff.Transaction, error) {
	if p.profile == "" {
		return readTable(name)
	}
	profile, ok := cfg.Profiles[p.profile]
	if !ok {
		return nil, fmt.Errorf("unknown import profile %q", p.profile)
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return profile.Import(f)
}
