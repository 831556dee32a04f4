package beanbuff

import (
	"testing"
)

func TestBuildChainSummaries(t *testing.T) {
	matched, err := Match([]Transaction{
		withOrder(trade("A", "2021-03-01 09:00", equity("AAPL"), Buy, 2, 10), "ord-1"),
		withOrder(trade("B", "2021-03-01 10:00", equity("AAPL"), Sell, 2, 12), "ord-2"),
		trade("C", "2021-03-02 09:00", equity("GOOG"), Buy, 1, 2000),
	}, MatchOptions{Now: at("2021-03-02 11:00")})
	if err != nil {
		t.Fatal(err)
	}
	chained, err := Chains(matched, DefaultChainOptions())
	if err != nil {
		t.Fatal(err)
	}

	summaries := BuildChainSummaries(chained)
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}

	aapl := summaries[0]
	if aapl.Underlying != "AAPL" {
		t.Fatalf("first summary is %s, want AAPL (ordered by first activity)", aapl.Underlying)
	}
	if aapl.Txns != 2 || aapl.Orders != 2 {
		t.Errorf("AAPL txns=%d orders=%d, want 2 and 2", aapl.Txns, aapl.Orders)
	}
	if aapl.Status != ChainClosed {
		t.Errorf("AAPL status %q, want closed", aapl.Status)
	}
	// Bought 2 @ 10 (-20), sold 2 @ 12 (+24).
	if !aapl.NetCost.Equal(d(4)) {
		t.Errorf("AAPL net cost %s, want 4", aapl.NetCost)
	}

	goog := summaries[1]
	if goog.Underlying != "GOOG" {
		t.Fatalf("second summary is %s, want GOOG", goog.Underlying)
	}
	if goog.Status != ChainActive {
		t.Errorf("GOOG status %q, want active (still marked open)", goog.Status)
	}
	if goog.Txns != 2 {
		t.Errorf("GOOG txns=%d, want 2 (the trade and its mark)", goog.Txns)
	}
	if !goog.Last.Equal(at("2021-03-02 11:00")) {
		t.Errorf("GOOG last activity %v, want the mark's datetime", goog.Last)
	}
}
