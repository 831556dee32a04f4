package beanbuff

import (
	"reflect"
	"testing"
)

// run pushes rows through the full pipeline: match then chain.
func run(t *testing.T, txs []Transaction, now string) []Transaction {
	t.Helper()
	matched, err := Match(txs, MatchOptions{Now: at(now)})
	if err != nil {
		t.Fatal(err)
	}
	chained, err := Chains(matched, DefaultChainOptions())
	if err != nil {
		t.Fatal(err)
	}
	return chained
}

func chainsOf(txs []Transaction) map[string][]string {
	chains := make(map[string][]string)
	for _, tx := range txs {
		chains[tx.ChainID] = append(chains[tx.ChainID], tx.TransactionID)
	}
	return chains
}

func TestChains_MatchLinkage(t *testing.T) {
	// Buy, partial sell, synthetic mark: all one episode, identified by the
	// earliest transaction.
	out := run(t, []Transaction{
		trade("A", "2021-03-01 09:00", equity("AAPL"), Buy, 2, 10),
		trade("B", "2021-03-01 10:00", equity("AAPL"), Sell, 1, 12),
	}, "2021-03-01 11:00")

	want := map[string][]string{
		ChainID("A"): {"A", "B", "^mark000001"},
	}
	if got := chainsOf(out); !reflect.DeepEqual(got, want) {
		t.Errorf("chains = %v, want %v", got, want)
	}
}

func TestChains_FlattenSplitsEpisodes(t *testing.T) {
	// A full flatten ends the episode; a later position on the same
	// underlying with no shared order is a new chain.
	out := run(t, []Transaction{
		trade("A", "2021-03-01 09:00", equity("AAPL"), Buy, 1, 5),
		trade("B", "2021-03-01 10:00", equity("AAPL"), Sell, 1, 6),
		trade("C", "2021-03-04 09:00", equity("AAPL"), Buy, 1, 7),
	}, "2021-03-04 11:00")

	want := map[string][]string{
		ChainID("A"): {"A", "B"},
		ChainID("C"): {"C", "^mark000001"},
	}
	if got := chainsOf(out); !reflect.DeepEqual(got, want) {
		t.Errorf("chains = %v, want %v", got, want)
	}
}

func TestChains_OrderLinkage(t *testing.T) {
	// Two legs of one order placement on different instruments chain
	// together even though their inventories never interact.
	put := option("SPY", "P", 380, "2021-06-18")
	call := option("SPY", "C", 400, "2021-06-18")
	out := run(t, []Transaction{
		withOrder(trade("A", "2021-03-01 09:00", put, Sell, 1, 2.00), "ord-1"),
		withOrder(trade("B", "2021-03-01 09:00", call, Sell, 1, 1.50), "ord-1"),
		withOrder(trade("C", "2021-03-02 09:00", put, Buy, 1, 1.00), "ord-2"),
		withOrder(trade("D", "2021-03-02 09:00", call, Buy, 1, 0.80), "ord-2"),
	}, "2021-03-03 11:00")

	want := map[string][]string{
		ChainID("A"): {"A", "B", "C", "D"},
	}
	if got := chainsOf(out); !reflect.DeepEqual(got, want) {
		t.Errorf("chains = %v, want %v", got, want)
	}
}

func TestChains_TimeOverlap(t *testing.T) {
	// Two distinct matches on one underlying overlap in time: one episode.
	put := option("SPY", "P", 380, "2021-06-18")
	call := option("SPY", "C", 400, "2021-06-18")
	overlapping := []Transaction{
		trade("A", "2021-03-01 09:00", put, Sell, 1, 2.00),
		trade("B", "2021-03-01 10:00", call, Sell, 1, 1.50),
		trade("C", "2021-03-02 09:00", put, Buy, 1, 1.00),
		trade("D", "2021-03-02 10:00", call, Buy, 1, 0.80),
	}
	out := run(t, overlapping, "2021-03-03 11:00")

	want := map[string][]string{
		ChainID("A"): {"A", "B", "C", "D"},
	}
	if got := chainsOf(out); !reflect.DeepEqual(got, want) {
		t.Errorf("chains = %v, want %v", got, want)
	}

	// Without the time criterion the two matches stay separate episodes.
	matched, err := Match(overlapping, MatchOptions{Now: at("2021-03-03 11:00")})
	if err != nil {
		t.Fatal(err)
	}
	split, err := Chains(matched, ChainOptions{ByOrder: true, ByMatch: true})
	if err != nil {
		t.Fatal(err)
	}
	wantSplit := map[string][]string{
		ChainID("A"): {"A", "C"},
		ChainID("B"): {"B", "D"},
	}
	if got := chainsOf(split); !reflect.DeepEqual(got, wantSplit) {
		t.Errorf("chains = %v, want %v", got, wantSplit)
	}
}

func TestChains_NoOverlapAcrossGap(t *testing.T) {
	// The underlying goes flat between the two matches: two episodes even
	// with the time criterion on.
	put := option("SPY", "P", 380, "2021-06-18")
	call := option("SPY", "C", 400, "2021-06-18")
	out := run(t, []Transaction{
		trade("A", "2021-03-01 09:00", put, Sell, 1, 2.00),
		trade("B", "2021-03-02 09:00", put, Buy, 1, 1.00),
		trade("C", "2021-03-03 09:00", call, Sell, 1, 1.50),
		trade("D", "2021-03-04 09:00", call, Buy, 1, 0.80),
	}, "2021-03-05 11:00")

	want := map[string][]string{
		ChainID("A"): {"A", "B"},
		ChainID("C"): {"C", "D"},
	}
	if got := chainsOf(out); !reflect.DeepEqual(got, want) {
		t.Errorf("chains = %v, want %v", got, want)
	}
}

func TestChains_Singleton(t *testing.T) {
	// A row with no linkage at all still gets a chain of its own.
	rows := []Transaction{
		{
			Account: "x1234", TransactionID: "A", DateTime: at("2021-03-01 09:00"),
			RowType: RowTrade, Instrument: equity("AAPL"),
		},
	}
	out, err := Chains(rows, DefaultChainOptions())
	if err != nil {
		t.Fatal(err)
	}
	if out[0].ChainID != ChainID("A") {
		t.Errorf("singleton chain id %q, want %q", out[0].ChainID, ChainID("A"))
	}
}

func TestChains_UnclosedPositionRejected(t *testing.T) {
	// A matched table missing its synthetic closing rows is internally
	// inconsistent and must be rejected, not guessed at.
	rows := []Transaction{
		trade("A", "2021-03-01 09:00", equity("AAPL"), Buy, 2, 10),
	}
	rows[0].MatchID = MatchID("A")

	_, err := Chains(rows, DefaultChainOptions())
	if !IsValidation(err) {
		t.Fatalf("got %v, want a ValidationError", err)
	}
}

func TestChains_Deterministic(t *testing.T) {
	txs := []Transaction{
		withOrder(trade("A", "2021-03-01 09:00", equity("AAPL"), Buy, 2, 10), "ord-1"),
		trade("B", "2021-03-01 10:00", equity("AAPL"), Sell, 2, 12),
		trade("C", "2021-03-01 10:30", equity("GOOG"), Buy, 1, 2000),
		trade("D", "2021-03-02 09:30", equity("GOOG"), Sell, 1, 2050),
	}
	first := run(t, txs, "2021-03-02 11:00")
	second := run(t, txs, "2021-03-02 11:00")
	if !reflect.DeepEqual(first, second) {
		t.Errorf("two runs over the same input differ")
	}
}
