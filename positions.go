package beanbuff

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ChainStatus reports whether a chain still holds an open position.
type ChainStatus string

const (
	// ChainActive marks chains whose final rows are synthetic marks, i.e.
	// the position was still open as of the run's "now".
	ChainActive ChainStatus = "active"
	// ChainClosed marks chains fully closed by real activity.
	ChainClosed ChainStatus = "closed"
)

// ChainSummary aggregates one chain of the annotated transaction table for
// reporting.
type ChainSummary struct {
	ChainID    string
	Account    string
	Underlying string
	First      time.Time // earliest member datetime
	Last       time.Time // latest member datetime
	Txns       int       // number of member transactions
	Orders     int       // number of distinct order ids
	NetCost    decimal.Decimal
	Commission decimal.Decimal
	Fees       decimal.Decimal
	Status     ChainStatus
}

// BuildChainSummaries aggregates a chained transaction table into one
// summary per chain, ordered by first activity then chain id.
func BuildChainSummaries(txs []Transaction) []ChainSummary {
	index := make(map[string]int)
	var summaries []ChainSummary
	orders := make(map[string]map[string]struct{})

	for _, tx := range txs {
		i, ok := index[tx.ChainID]
		if !ok {
			i = len(summaries)
			index[tx.ChainID] = i
			summaries = append(summaries, ChainSummary{
				ChainID:    tx.ChainID,
				Account:    tx.Account,
				Underlying: tx.Underlying,
				First:      tx.DateTime,
				Last:       tx.DateTime,
				Status:     ChainClosed,
			})
			orders[tx.ChainID] = make(map[string]struct{})
		}
		s := &summaries[i]
		if tx.DateTime.Before(s.First) {
			s.First = tx.DateTime
		}
		if tx.DateTime.After(s.Last) {
			s.Last = tx.DateTime
		}
		s.Txns++
		if tx.OrderID != "" {
			orders[tx.ChainID][tx.OrderID] = struct{}{}
		}
		s.NetCost = s.NetCost.Add(tx.Cost)
		s.Commission = s.Commission.Add(tx.Commissions)
		s.Fees = s.Fees.Add(tx.Fees)
		if tx.RowType == RowMark {
			s.Status = ChainActive
		}
	}

	for i := range summaries {
		summaries[i].Orders = len(orders[summaries[i].ChainID])
	}
	sort.Slice(summaries, func(i, j int) bool {
		if !summaries[i].First.Equal(summaries[j].First) {
			return summaries[i].First.Before(summaries[j].First)
		}
		return summaries[i].ChainID < summaries[j].ChainID
	})
	return summaries
}
