package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/beancount/beanbuff"
)

// Config is the tool configuration, read from a TOML file and overridable
// by per-command flags. The engine itself reads no environment state; all
// tuning funnels through here.
type Config struct {
	// Transactions is the default normalized transaction table.
	Transactions string `toml:"transactions"`

	// Output is the default destination of the annotated table.
	Output string `toml:"output"`

	// Now pins the run timestamp (engine datetime format). Empty means the
	// current wall clock, taken once per run.
	Now string `toml:"now"`

	// GraceDays is the expiration grace window, in days.
	GraceDays int `toml:"grace_days"`

	// Shards enables parallel matching when greater than 1.
	Shards int `toml:"shards"`

	// Profiles maps profile names to import field mappings.
	Profiles map[string]beanbuff.ImportProfile `toml:"profiles"`
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Transactions: "transactions.jsonl",
		Output:       "annotated.jsonl",
		GraceDays:    2,
	}
}

// LoadConfig reads the configuration file, merging it on top of the
// defaults. A missing file is not an error: the defaults apply.
func LoadConfig(path string) (Config, error) {
	cfg := Defaults()
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("cannot read config %q: %w", path, err)
	}
	return cfg, nil
}

// MatchOptions resolves the matching options of one run.
func (cfg Config) MatchOptions() (beanbuff.MatchOptions, error) {
	opts := beanbuff.MatchOptions{
		Now:    time.Now(),
		Grace:  time.Duration(cfg.GraceDays) * 24 * time.Hour,
		Shards: cfg.Shards,
	}
	if cfg.Now != "" {
		now, err := time.Parse(beanbuff.DatetimeFormat, cfg.Now)
		if err != nil {
			return opts, fmt.Errorf("invalid now timestamp %q: %w", cfg.Now, err)
		}
		opts.Now = now
	}
	return opts, nil
}

// readTable loads a transaction table, choosing the codec by extension.
func readTable(path string) ([]beanbuff.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return beanbuff.ImportCSV(f)
	}
	return beanbuff.DecodeTransactions(f)
}

// writeTable stores a transaction table, choosing the codec by extension.
func writeTable(path string, txs []beanbuff.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return beanbuff.ExportCSV(f, txs)
	}
	return beanbuff.EncodeTransactions(f, txs)
}
