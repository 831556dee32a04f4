package beanbuff

import (
	"bytes"
	"strings"
	"testing"
)

func TestCSVRoundTrip(t *testing.T) {
	txs := []Transaction{
		withOrder(trade("A", "2021-03-01 09:00", option("AAPL", "C", 150, "2021-07-16"), Buy, 2, 1.25), "ord-1"),
		trade("B", "2021-03-01 10:00", equity("GOOG"), Sell, 1, 2000),
	}
	txs[1].MatchID = MatchID("B")
	txs[1].ChainID = ChainID("B")

	var buf bytes.Buffer
	if err := ExportCSV(&buf, txs); err != nil {
		t.Fatal(err)
	}
	decoded, err := ImportCSV(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(decoded) != 2 {
		t.Fatalf("decoded %d rows, want 2", len(decoded))
	}
	got, want := decoded[0], txs[0]
	if got.TransactionID != want.TransactionID ||
		got.OrderID != want.OrderID ||
		!got.DateTime.Equal(want.DateTime) ||
		got.Key() != want.Key() ||
		!got.Quantity.Equal(want.Quantity) ||
		!got.Cost.Equal(want.Cost) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
	if decoded[1].MatchID != txs[1].MatchID || decoded[1].ChainID != txs[1].ChainID {
		t.Errorf("annotation columns lost in round trip")
	}
}

func TestImportCSV_WithoutAnnotationColumns(t *testing.T) {
	input := strings.Join([]string{
		"account,transaction_id,datetime,rowtype,underlying,multiplier,instruction,quantity,price,cost",
		"x1234,A,2021-03-01T09:00:00,Trade,AAPL,1,BUY,2,10,-20",
	}, "\n")
	txs, err := ImportCSV(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 1 {
		t.Fatalf("decoded %d rows, want 1", len(txs))
	}
	if txs[0].MatchID != "" || txs[0].ChainID != "" {
		t.Errorf("annotations on an unannotated table: %+v", txs[0])
	}
	if err := txs[0].Validate(); err != nil {
		t.Errorf("imported row does not validate: %v", err)
	}
}

func TestImportCSV_MissingColumn(t *testing.T) {
	input := "account,datetime\nx1234,2021-03-01T09:00:00\n"
	if _, err := ImportCSV(strings.NewReader(input)); err == nil {
		t.Fatal("accepted a table without the required columns")
	}
}

func TestImportProfile(t *testing.T) {
	profile := ImportProfile{
		Rows: "$.activity[*]",
		Fields: map[string]string{
			"account":        "$.acct",
			"transaction_id": "$.id",
			"datetime":       "$.executed_at",
			"rowtype":        "$.kind",
			"underlying":     "$.symbol",
			"instruction":    "$.side",
			"quantity":       "$.qty",
			"price":          "$.px",
			"cost":           "$.net",
		},
	}
	document := `{
	  "activity": [
	    {"acct": "x1234", "id": "A", "executed_at": "2021-03-01T09:00:00",
	     "kind": "Trade", "symbol": "AAPL", "side": "buy",
	     "qty": 2, "px": 10, "net": -20}
	  ]
	}`

	txs, err := profile.Import(strings.NewReader(document))
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 1 {
		t.Fatalf("imported %d rows, want 1", len(txs))
	}
	tx := txs[0]
	if tx.Account != "x1234" || tx.TransactionID != "A" || tx.Underlying != "AAPL" {
		t.Errorf("imported row %+v", tx)
	}
	if tx.Instruction != Buy {
		t.Errorf("instruction %q, want BUY (case folded)", tx.Instruction)
	}
	if !tx.Quantity.Equal(d(2)) || !tx.Cost.Equal(d(-20)) {
		t.Errorf("quantity %s cost %s", tx.Quantity, tx.Cost)
	}
	if tx.Multiplier != 1 {
		t.Errorf("multiplier %d, want defaulted to 1", tx.Multiplier)
	}
	if err := tx.Validate(); err != nil {
		t.Errorf("imported row does not validate: %v", err)
	}
}
