// Package beanbuff pairs up and groups the trading activity of a brokerage
// account. It consumes a normalized log of transactions (trades and contract
// expirations) produced by broker-specific importers, and annotates every row
// with two derived identifiers that downstream reporting depends on:
//
//   - Match id: transactions that fill against each other under a FIFO
//     cost-basis discipline share a match id. Positions still open at the
//     requested "now" are closed virtually with synthetic Mark rows (or
//     synthetic Expire rows for contracts past their expiration date).
//   - Chain id: transactions that belong to the same trading episode on one
//     underlying share a chain id. Episodes are linked by shared order
//     placement, by matching relationship, or by uninterrupted time overlap
//     of a non-flat position.
//
// The engine is a pure batch transform: it owns all of its state (per
// instrument lot inventories, the chain connectivity structure) for the
// duration of one run, takes "now" as an explicit parameter, and produces
// byte-identical match and chain ids on repeated runs over the same input.
//
// This package serves as the foundational logic for the `bb` command-line
// tool, which reads and writes transaction tables in JSONL and CSV form.
package beanbuff
