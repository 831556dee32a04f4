package beanbuff

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestEncodeDecodeTransactions(t *testing.T) {
	txs := []Transaction{
		withOrder(trade("A", "2021-03-01 09:00", option("AAPL", "C", 150, "2021-07-16"), Buy, 2, 1.25), "ord-1"),
		trade("B", "2021-03-01 10:00", equity("GOOG"), Sell, 1, 2000),
	}
	txs[0].Commissions = d(-1.3)
	txs[0].Fees = d(-0.42)
	txs[0].Description = "Bought 2 AAPL 07/16/21 Call 150 @ 1.25"
	txs[1].MatchID = MatchID("B")
	txs[1].ChainID = ChainID("B")

	var buf bytes.Buffer
	if err := EncodeTransactions(&buf, txs); err != nil {
		t.Fatal(err)
	}

	decoded, err := DecodeTransactions(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(txsComparable(decoded), txsComparable(txs)) {
		t.Errorf("round trip mismatch:\ngot  %v\nwant %v", decoded, txs)
	}
}

func TestDecodeTransactions_SkipsEmptyLines(t *testing.T) {
	input := `{"account":"x1234","transaction_id":"A","datetime":"2021-03-01T09:00:00","rowtype":"Trade","underlying":"AAPL","strike":0,"multiplier":1,"instruction":"BUY","quantity":2,"price":10,"cost":-20,"commissions":0,"fees":0}

`
	txs, err := DecodeTransactions(strings.NewReader(input))
	if err != nil {
		t.Fatal(err)
	}
	if len(txs) != 1 || txs[0].TransactionID != "A" {
		t.Fatalf("decoded %v", txs)
	}
}

func TestDecodeTransactions_BadDatetime(t *testing.T) {
	input := `{"account":"x1234","transaction_id":"A","datetime":"yesterday","rowtype":"Trade","underlying":"AAPL"}`
	if _, err := DecodeTransactions(strings.NewReader(input)); err == nil {
		t.Fatal("accepted an invalid datetime")
	}
}

// txsComparable renders rows to their wire form, where decimals compare by
// value rather than internal representation.
func txsComparable(txs []Transaction) []string {
	var buf bytes.Buffer
	if err := EncodeTransactions(&buf, txs); err != nil {
		panic(err)
	}
	return strings.Split(strings.TrimSpace(buf.String()), "\n")
}
