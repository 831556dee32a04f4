package beanbuff

import (
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
)

// DefaultGrace is the margin allowed for receiving an expiration notice
// before one is synthesized for a contract past its expiration date.
const DefaultGrace = 48 * time.Hour

// MatchOptions configures one matching run.
type MatchOptions struct {
	// Now is the timestamp used to date synthetic Mark rows and to decide
	// whether an open contract is past expiration. It is the only notion of
	// "current time" in the engine and must be supplied explicitly.
	Now time.Time

	// Grace is the expiration grace window; DefaultGrace when zero.
	Grace time.Duration

	// Shards enables parallel per-key matching when greater than 1.
	// Inventories of distinct keys never interact, so partitions can be
	// processed concurrently; the output is byte-identical to a serial run.
	Shards int
}

// Match streams the transaction table through one FIFO inventory per
// instrument key and stamps every row with its match id. Expire rows get
// their Quantity and Instruction resolved from the inventory. For every
// inventory left non-flat at the end of the run, one synthetic closing row
// is appended: an Expire row when the contract expired before Now minus the
// grace window, a Mark row dated Now otherwise.
//
// The input must already be in time order; rows sharing a timestamp are
// re-ordered by transaction id before matching. The returned table
// preserves the input row order, with synthetic rows appended in
// deterministic key order.
func Match(txs []Transaction, opts MatchOptions) ([]Transaction, error) {
	if opts.Now.IsZero() {
		return nil, Structuralf("matching requires an explicit now timestamp")
	}
	if opts.Grace == 0 {
		opts.Grace = DefaultGrace
	}

	for _, tx := range txs {
		if err := tx.Validate(); err != nil {
			return nil, Validationf("%s", err)
		}
	}

	out := make([]Transaction, len(txs))
	copy(out, txs)

	// Partition row indexes by instrument key, preserving input order.
	partitions := make(map[InstrumentKey][]int)
	for i, tx := range out {
		key := tx.Key()
		partitions[key] = append(partitions[key], i)
	}
	keys := sortedKeys(partitions)

	invs := make(map[InstrumentKey]*FifoInventory, len(keys))
	for _, key := range keys {
		invs[key] = &FifoInventory{}
	}

	if opts.Shards > 1 {
		var g errgroup.Group
		g.SetLimit(opts.Shards)
		for _, key := range keys {
			g.Go(func() error {
				return matchPartition(out, partitions[key], invs[key])
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for _, key := range keys {
			if err := matchPartition(out, partitions[key], invs[key]); err != nil {
				return nil, err
			}
		}
	}

	out = append(out, closingTransactions(keys, invs, opts)...)
	return out, nil
}

// matchPartition feeds one instrument key's rows, in time order, through its
// inventory, writing resolved rows back into out. The indexes slice is
// owned by the caller; only rows it names are touched.
func matchPartition(out []Transaction, indexes []int, inv *FifoInventory) error {
	// Monotonicity precheck: the input contract is a table already sorted
	// by time, and matching silently corrupts FIFO order on unsorted input,
	// so this is enforced rather than assumed.
	for i := 1; i < len(indexes); i++ {
		if out[indexes[i]].DateTime.Before(out[indexes[i-1]].DateTime) {
			return Structuralf("partition %s is not sorted by time (row %s)",
				out[indexes[i]].Key(), out[indexes[i]].TransactionID)
		}
	}

	// Same-timestamp rows are re-ordered by transaction id so that repeated
	// runs process them identically.
	ordered := make([]int, len(indexes))
	copy(ordered, indexes)
	sort.SliceStable(ordered, func(a, b int) bool {
		ta, tb := out[ordered[a]], out[ordered[b]]
		if !ta.DateTime.Equal(tb.DateTime) {
			return ta.DateTime.Before(tb.DateTime)
		}
		return ta.TransactionID < tb.TransactionID
	})

	for _, i := range ordered {
		tx := out[i]
		switch tx.RowType {
		case RowTrade:
			basis := tx.Price.Mul(decimal.NewFromInt(tx.Multiplier))
			_, _, matchID := inv.Match(tx.SignedQuantity(), basis, tx.TransactionID)
			out[i].MatchID = matchID

		case RowExpire:
			closed, _, matchID := inv.Expire(tx.TransactionID)
			if closed.IsZero() {
				// Usually means the opening transaction was missing or
				// unparsed upstream; worth surfacing, not an error.
				log.Printf("expiration %s for %s with no open position", tx.TransactionID, tx.Key())
			}
			if !tx.Quantity.IsZero() && !tx.Quantity.Equal(closed.Abs()) {
				return Validationf("expiration %s quantity %s disagrees with matched position %s",
					tx.TransactionID, tx.Quantity, closed.Abs())
			}
			out[i].Quantity = closed.Abs()
			if tx.Instruction == "" {
				if closed.IsPositive() {
					out[i].Instruction = Sell
				} else if closed.IsNegative() {
					out[i].Instruction = Buy
				}
			}
			out[i].MatchID = matchID

		default:
			return Validationf("unexpected input row type %q for %s", tx.RowType, tx.TransactionID)
		}
	}
	return nil
}

// closingTransactions synthesizes one closing row per inventory left
// non-flat, in deterministic key order. Synthetic ids are numbered from one
// per kind, distinct from any real transaction id.
func closingTransactions(keys []InstrumentKey, invs map[InstrumentKey]*FifoInventory, opts MatchOptions) []Transaction {
	var rows []Transaction
	markID, expireID := 0, 0
	now := opts.Now.Truncate(time.Second)
	// Allow for some margin in receiving the expiration notice.
	cutoff := DateOf(opts.Now.Add(-opts.Grace))

	for _, key := range keys {
		quantity, basis, matchID := invs[key].Position()
		if quantity.IsZero() {
			continue
		}

		var rowType RowType
		var transactionID, description string
		if !key.Expiration.IsZero() && key.Expiration.Before(cutoff) {
			// Some transaction logs omit expiration notices; synthesize
			// them for contracts already past expiration.
			expireID++
			transactionID = fmt.Sprintf("^expire%06d", expireID)
			rowType = RowExpire
			description = "Synthetic expiration of option"
		} else {
			markID++
			transactionID = fmt.Sprintf("^mark%06d", markID)
			rowType = RowMark
			description = "Mark-to-market of open position"
		}

		instruction := Sell
		cost := basis
		if quantity.IsNegative() {
			instruction = Buy
			cost = basis.Neg()
		}

		var strike decimal.Decimal
		if key.Strike != "" {
			strike, _ = decimal.NewFromString(key.Strike)
		}
		rows = append(rows, Transaction{
			Account:       key.Account,
			TransactionID: transactionID,
			DateTime:      now,
			RowType:       rowType,
			Instrument: Instrument{
				Underlying: key.Underlying,
				ExpCode:    key.ExpCode,
				Expiration: key.Expiration,
				PutCall:    key.PutCall,
				Strike:     strike,
				Multiplier: key.Multiplier,
			},
			Instruction: instruction,
			Effect:      Closing,
			Quantity:    quantity.Abs(),
			Price:       decimal.Zero,
			Cost:        cost,
			Description: description,
			MatchID:     matchID,
		})
	}
	return rows
}

// sortedKeys returns the partition keys in their canonical order.
func sortedKeys(partitions map[InstrumentKey][]int) []InstrumentKey {
	keys := make([]InstrumentKey, 0, len(partitions))
	for key := range partitions {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].compare(keys[j]) < 0 })
	return keys
}
