// Package renderer formats annotated transaction tables and chain reports
// as markdown, for terminal rendering by the bb tool.
package renderer

import (
	"fmt"
	"strings"

	money "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	"github.com/beancount/beanbuff"
)

// Transactions renders the transaction table as a markdown table.
func Transactions(txs []beanbuff.Transaction) string {
	r := newTableRenderer(
		"Datetime", "Id", "Type", "Symbol", "Instruction", "Quantity",
		"Price", "Cost", "Match", "Chain")
	for _, tx := range txs {
		r.row(
			tx.DateTime.Format(beanbuff.DatetimeFormat),
			tx.TransactionID,
			string(tx.RowType),
			tx.Symbol(),
			string(tx.Instruction),
			tx.Quantity.String(),
			displayUSD(tx.Price),
			displayUSD(tx.Cost),
			tx.MatchID,
			tx.ChainID,
		)
	}
	return r.String()
}

// ChainSummaries renders one line per chain with its aggregates.
func ChainSummaries(summaries []beanbuff.ChainSummary) string {
	r := newTableRenderer(
		"Chain", "Account", "Underlying", "First", "Last", "Txns", "Orders",
		"Net Cost", "Commission", "Fees", "Status")
	for _, s := range summaries {
		r.row(
			s.ChainID,
			s.Account,
			s.Underlying,
			s.First.Format(beanbuff.DateFormat),
			s.Last.Format(beanbuff.DateFormat),
			fmt.Sprintf("%d", s.Txns),
			fmt.Sprintf("%d", s.Orders),
			displayUSD(s.NetCost),
			displayUSD(s.Commission),
			displayUSD(s.Fees),
			string(s.Status),
		)
	}
	return r.String()
}

// displayUSD formats a decimal cash amount with the USD formatter.
func displayUSD(d decimal.Decimal) string {
	if d.IsZero() {
		return "-"
	}
	cents := d.Shift(2).Round(0).IntPart()
	return money.New(cents, money.USD).Display()
}

// tableRenderer accumulates a markdown table.
type tableRenderer struct {
	strings.Builder
	columns int
}

func newTableRenderer(headers ...string) *tableRenderer {
	r := &tableRenderer{columns: len(headers)}
	r.row(headers...)
	separators := make([]string, len(headers))
	for i := range separators {
		separators[i] = "---"
	}
	r.row(separators...)
	return r
}

func (r *tableRenderer) row(cells ...string) {
	r.WriteString("| ")
	r.WriteString(strings.Join(cells, " | "))
	r.WriteString(" |\n")
}
