package cmd

import (
	"flag"

	"github.com/google/subcommands"
)

// Register the subcommands.
func Register(c *subcommands.Commander) {
	c.Register(&processCmd{}, "engine")
	c.Register(&fmtCmd{}, "engine")

	c.Register(&txCmd{}, "reports")
	c.Register(&chainsCmd{}, "reports")

	c.Register(&importCmd{}, "import")

	c.Register(&topicCmd{}, "help")
	c.Register(&assistCmd{}, "help")
}

var configFile = flag.String("config", "bb.toml", "Path to the TOML configuration file")
