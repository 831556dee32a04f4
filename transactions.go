package beanbuff

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// RowType is a typed string identifying the kind of a transaction row.
type RowType string

// Row types of the normalized transaction log.
const (
	RowTrade  RowType = "Trade"  // a user or broker trade execution
	RowExpire RowType = "Expire" // a contract expiration notice
	RowMark   RowType = "Mark"   // a synthetic mark-to-market closing row
)

// Instruction is the direction of a transaction.
type Instruction string

const (
	Buy  Instruction = "BUY"
	Sell Instruction = "SELL"
)

// Sign returns +1 for a buy, -1 for a sell, 0 when unresolved.
func (i Instruction) Sign() int {
	switch i {
	case Buy:
		return 1
	case Sell:
		return -1
	}
	return 0
}

// Effect describes whether a transaction opens or closes a position.
type Effect string

const (
	Opening Effect = "OPENING"
	Closing Effect = "CLOSING"
)

// Transaction is one row of the normalized transaction log. Importers
// produce rows with the identity, instrument and cash fields resolved,
// except that an Expire row may arrive without Quantity and Instruction;
// the matching pass fills those in. MatchID and ChainID are appended by the
// engine.
type Transaction struct {
	Account       string    `json:"account"`
	TransactionID string    `json:"transaction_id"`
	DateTime      time.Time `json:"datetime"`
	RowType       RowType   `json:"rowtype"`

	// OrderID is present only for user-placed orders; legs of one order
	// placement share it.
	OrderID string `json:"order_id,omitempty"`

	Instrument

	Instruction Instruction     `json:"instruction,omitempty"`
	Effect      Effect          `json:"effect,omitempty"`
	Quantity    decimal.Decimal `json:"quantity"` // non-negative magnitude; sign carried by Instruction
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"` // signed cash effect
	Commissions decimal.Decimal `json:"commissions"`
	Fees        decimal.Decimal `json:"fees"`
	Description string          `json:"description,omitempty"`

	MatchID string `json:"match_id,omitempty"`
	ChainID string `json:"chain_id,omitempty"`
}

// Key returns the instrument key of the inventory this transaction affects.
func (t Transaction) Key() InstrumentKey { return t.Instrument.Key(t.Account) }

// SignedQuantity returns the quantity signed by the instruction.
func (t Transaction) SignedQuantity() decimal.Decimal {
	if t.Instruction == Sell {
		return t.Quantity.Neg()
	}
	return t.Quantity
}

// Validate checks the structural fields every imported row must carry.
func (t Transaction) Validate() error {
	var problems []string
	if t.Account == "" {
		problems = append(problems, "account is missing")
	}
	if t.TransactionID == "" {
		problems = append(problems, "transaction id is missing")
	}
	if t.DateTime.IsZero() {
		problems = append(problems, "datetime is missing")
	}
	switch t.RowType {
	case RowTrade, RowExpire, RowMark:
	default:
		problems = append(problems, fmt.Sprintf("unknown row type %q", t.RowType))
	}
	if t.Underlying == "" {
		problems = append(problems, "underlying is missing")
	}
	if t.Quantity.IsNegative() {
		problems = append(problems, "quantity must be a non-negative magnitude")
	}
	if t.RowType == RowTrade && t.Instruction != Buy && t.Instruction != Sell {
		problems = append(problems, fmt.Sprintf("invalid instruction %q for a trade", t.Instruction))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid transaction %s: %s", t.TransactionID, strings.Join(problems, "; "))
	}
	return nil
}

// SortTransactions stably orders rows by datetime, ties broken by transaction
// id so that repeated runs on the same input process rows identically.
func SortTransactions(txs []Transaction) {
	sort.SliceStable(txs, func(i, j int) bool {
		if !txs[i].DateTime.Equal(txs[j].DateTime) {
			return txs[i].DateTime.Before(txs[j].DateTime)
		}
		return txs[i].TransactionID < txs[j].TransactionID
	})
}
