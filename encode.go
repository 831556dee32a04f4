package beanbuff

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	decimal.MarshalJSONWithoutQuotes = true
}

// jsonTransaction is the wire form of one row: the embedded time.Time is
// flattened to the engine's datetime format, without a zone (broker logs
// carry exchange-local timestamps).
type jsonTransaction struct {
	Account       string          `json:"account"`
	TransactionID string          `json:"transaction_id"`
	DateTime      string          `json:"datetime"`
	RowType       RowType         `json:"rowtype"`
	OrderID       string          `json:"order_id,omitempty"`
	Underlying    string          `json:"underlying"`
	ExpCode       string          `json:"expcode,omitempty"`
	Expiration    Date            `json:"expiration,omitempty"`
	PutCall       string          `json:"putcall,omitempty"`
	Strike        decimal.Decimal `json:"strike"`
	Multiplier    int64           `json:"multiplier"`
	Instruction   Instruction     `json:"instruction,omitempty"`
	Effect        Effect          `json:"effect,omitempty"`
	Quantity      decimal.Decimal `json:"quantity"`
	Price         decimal.Decimal `json:"price"`
	Cost          decimal.Decimal `json:"cost"`
	Commissions   decimal.Decimal `json:"commissions"`
	Fees          decimal.Decimal `json:"fees"`
	Description   string          `json:"description,omitempty"`
	MatchID       string          `json:"match_id,omitempty"`
	ChainID       string          `json:"chain_id,omitempty"`
}

func toJSON(t Transaction) jsonTransaction {
	return jsonTransaction{
		Account:       t.Account,
		TransactionID: t.TransactionID,
		DateTime:      t.DateTime.Format(DatetimeFormat),
		RowType:       t.RowType,
		OrderID:       t.OrderID,
		Underlying:    t.Underlying,
		ExpCode:       t.ExpCode,
		Expiration:    t.Expiration,
		PutCall:       t.PutCall,
		Strike:        t.Strike,
		Multiplier:    t.Multiplier,
		Instruction:   t.Instruction,
		Effect:        t.Effect,
		Quantity:      t.Quantity,
		Price:         t.Price,
		Cost:          t.Cost,
		Commissions:   t.Commissions,
		Fees:          t.Fees,
		Description:   t.Description,
		MatchID:       t.MatchID,
		ChainID:       t.ChainID,
	}
}

func (j jsonTransaction) transaction() (Transaction, error) {
	dt, err := time.Parse(DatetimeFormat, j.DateTime)
	if err != nil {
		return Transaction{}, fmt.Errorf("invalid datetime %q: %w", j.DateTime, err)
	}
	return Transaction{
		Account:       j.Account,
		TransactionID: j.TransactionID,
		DateTime:      dt,
		RowType:       j.RowType,
		OrderID:       j.OrderID,
		Instrument: Instrument{
			Underlying: j.Underlying,
			ExpCode:    j.ExpCode,
			Expiration: j.Expiration,
			PutCall:    j.PutCall,
			Strike:     j.Strike,
			Multiplier: j.Multiplier,
		},
		Instruction: j.Instruction,
		Effect:      j.Effect,
		Quantity:    j.Quantity,
		Price:       j.Price,
		Cost:        j.Cost,
		Commissions: j.Commissions,
		Fees:        j.Fees,
		Description: j.Description,
		MatchID:     j.MatchID,
		ChainID:     j.ChainID,
	}, nil
}

// DecodeTransactions decodes a transaction table from a stream of JSONL
// data, one row per line. Empty lines are skipped.
func DecodeTransactions(r io.Reader) ([]Transaction, error) {
	var txs []Transaction
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}
		var j jsonTransaction
		if err := json.Unmarshal(line, &j); err != nil {
			return nil, fmt.Errorf("cannot parse transaction line %q: %w", string(line), err)
		}
		tx, err := j.transaction()
		if err != nil {
			return nil, fmt.Errorf("cannot parse transaction line %q: %w", string(line), err)
		}
		txs = append(txs, tx)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return txs, nil
}

// EncodeTransactions writes a transaction table as JSONL, one row per line.
func EncodeTransactions(w io.Writer, txs []Transaction) error {
	bw := bufio.NewWriter(w)
	for _, tx := range txs {
		data, err := json.Marshal(toJSON(tx))
		if err != nil {
			return fmt.Errorf("cannot encode transaction %s: %w", tx.TransactionID, err)
		}
		if _, err := bw.Write(data); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}
