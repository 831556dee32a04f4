package beanbuff

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/shopspring/decimal"
)

// This file contains functions to handle the import/export formats. The CSV
// form mirrors the JSONL schema column for column; it should remain human
// readable and easy to diff.

// csvHeader is the canonical column order of the CSV form.
var csvHeader = []string{
	"account", "transaction_id", "datetime", "rowtype", "order_id",
	"underlying", "expcode", "expiration", "putcall", "strike", "multiplier",
	"instruction", "effect", "quantity", "price", "cost", "commissions",
	"fees", "description", "match_id", "chain_id",
}

// ExportCSV writes the transaction table in the canonical CSV form.
func ExportCSV(w io.Writer, txs []Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, t := range txs {
		expiration := ""
		if !t.Expiration.IsZero() {
			expiration = t.Expiration.String()
		}
		strike := ""
		if !t.Strike.IsZero() {
			strike = t.Strike.String()
		}
		record := []string{
			t.Account, t.TransactionID, t.DateTime.Format(DatetimeFormat),
			string(t.RowType), t.OrderID,
			t.Underlying, t.ExpCode, expiration, t.PutCall, strike,
			strconv.FormatInt(t.Multiplier, 10),
			string(t.Instruction), string(t.Effect),
			t.Quantity.String(), t.Price.String(), t.Cost.String(),
			t.Commissions.String(), t.Fees.String(),
			t.Description, t.MatchID, t.ChainID,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportCSV reads a transaction table in the canonical CSV form. Columns
// are matched by header name, so tables missing the appended match_id and
// chain_id columns import cleanly.
func ImportCSV(r io.Reader) ([]Transaction, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("cannot read CSV header: %w", err)
	}
	column := make(map[string]int, len(header))
	for i, name := range header {
		column[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{"account", "transaction_id", "datetime", "rowtype", "underlying"} {
		if _, ok := column[required]; !ok {
			return nil, fmt.Errorf("CSV is missing required column %q", required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := column[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var txs []Transaction
	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("cannot read CSV line %d: %w", line, err)
		}
		tx, err := transactionFromFields(func(name string) string { return field(record, name) })
		if err != nil {
			return nil, fmt.Errorf("CSV line %d: %w", line, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}

// transactionFromFields assembles a row from named string fields, shared by
// the CSV reader and the import profiles.
func transactionFromFields(field func(string) string) (Transaction, error) {
	var tx Transaction
	var err error

	tx.Account = field("account")
	tx.TransactionID = field("transaction_id")
	if s := field("datetime"); s != "" {
		tx.DateTime, err = time.Parse(DatetimeFormat, s)
		if err != nil {
			return tx, fmt.Errorf("invalid datetime %q: %w", s, err)
		}
	}
	tx.RowType = RowType(field("rowtype"))
	tx.OrderID = field("order_id")
	tx.Underlying = field("underlying")
	tx.ExpCode = field("expcode")
	tx.Expiration, err = ParseDate(field("expiration"))
	if err != nil {
		return tx, err
	}
	tx.PutCall = field("putcall")
	decimals := []struct {
		name string
		dst  *decimal.Decimal
	}{
		{"strike", &tx.Strike},
		{"quantity", &tx.Quantity},
		{"price", &tx.Price},
		{"cost", &tx.Cost},
		{"commissions", &tx.Commissions},
		{"fees", &tx.Fees},
	}
	for _, d := range decimals {
		if s := field(d.name); s != "" {
			*d.dst, err = decimal.NewFromString(s)
			if err != nil {
				return tx, fmt.Errorf("invalid %s %q: %w", d.name, s, err)
			}
		}
	}
	if s := field("multiplier"); s != "" {
		tx.Multiplier, err = strconv.ParseInt(s, 10, 64)
		if err != nil {
			return tx, fmt.Errorf("invalid multiplier %q: %w", s, err)
		}
	}
	if tx.Multiplier == 0 {
		tx.Multiplier = 1
	}
	tx.Instruction = Instruction(strings.ToUpper(field("instruction")))
	tx.Effect = Effect(strings.ToUpper(field("effect")))
	tx.Description = field("description")
	tx.MatchID = field("match_id")
	tx.ChainID = field("chain_id")
	return tx, nil
}

// ImportProfile maps an arbitrary normalized JSON export onto the
// transaction schema. Rows lists a jsonpath selecting the row objects in
// the document; Fields maps every transaction column name to a jsonpath
// evaluated against each row object. Profiles are typically declared in the
// tool's TOML configuration.
type ImportProfile struct {
	Rows   string            `toml:"rows"`
	Fields map[string]string `toml:"fields"`
}

// Import reads a JSON document and extracts a transaction table according
// to the profile.
func (p ImportProfile) Import(r io.Reader) ([]Transaction, error) {
	var document any
	if err := json.NewDecoder(r).Decode(&document); err != nil {
		return nil, fmt.Errorf("cannot parse JSON document: %w", err)
	}

	rowsPath := p.Rows
	if rowsPath == "" {
		rowsPath = "$[*]"
	}
	jrows, err := jsonpath.Get(rowsPath, document)
	if err != nil {
		return nil, fmt.Errorf("cannot select rows with %q: %w", rowsPath, err)
	}
	rows, ok := jrows.([]any)
	if !ok {
		// jsonpath is never clear about whether it returns a list or a
		// single answer: wrap a single row object.
		rows = []any{jrows}
	}

	var txs []Transaction
	for i, row := range rows {
		field := func(name string) string {
			path, ok := p.Fields[name]
			if !ok {
				return ""
			}
			jval, err := jsonpath.Get(path, row)
			if err != nil {
				return ""
			}
			if jlist, ok := jval.([]any); ok && len(jlist) > 0 {
				jval = jlist[0]
			}
			switch v := jval.(type) {
			case string:
				return v
			case float64:
				return strconv.FormatFloat(v, 'f', -1, 64)
			case bool:
				return strconv.FormatBool(v)
			default:
				return ""
			}
		}
		tx, err := transactionFromFields(field)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		txs = append(txs, tx)
	}
	return txs, nil
}
