package beanbuff

import (
	"testing"
)

func TestInstrument_Symbol(t *testing.T) {
	testCases := []struct {
		name       string
		instrument Instrument
		want       string
	}{
		{
			name:       "equity",
			instrument: equity("AAPL"),
			want:       "AAPL",
		},
		{
			name:       "equity option",
			instrument: option("AAPL", "C", 150, "2021-07-16"),
			want:       "AAPL_210716_C150",
		},
		{
			name: "future option",
			instrument: Instrument{
				Underlying: "/CLZ21",
				ExpCode:    "LOM21",
				Expiration: MustParseDate("2021-07-16"),
				PutCall:    "P",
				Strike:     d(52.5),
				Multiplier: 1000,
			},
			want: "/CLZ21_LOM21_210716_P52.5",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.instrument.Symbol()
			if got != tc.want {
				t.Errorf("Symbol() = %q, want %q", got, tc.want)
			}

			parsed, err := ParseSymbol(got)
			if err != nil {
				t.Fatalf("ParseSymbol(%q): %v", got, err)
			}
			// The multiplier is not part of the symbol.
			parsed.Multiplier = tc.instrument.Multiplier
			if parsed.Symbol() != tc.want {
				t.Errorf("round trip = %q, want %q", parsed.Symbol(), tc.want)
			}
		})
	}
}

func TestParseSymbol_Invalid(t *testing.T) {
	for _, symbol := range []string{"AAPL_2107_C150", "AAPL_210716_X150", "A_B_C_D_E"} {
		if _, err := ParseSymbol(symbol); err == nil {
			t.Errorf("ParseSymbol(%q) accepted an invalid symbol", symbol)
		}
	}
}

func TestInstrumentKey(t *testing.T) {
	a := trade("A", "2021-03-01 09:00", option("AAPL", "C", 150, "2021-07-16"), Buy, 1, 2)
	b := trade("B", "2021-03-01 10:00", option("AAPL", "C", 150, "2021-07-16"), Sell, 1, 3)
	if a.Key() != b.Key() {
		t.Errorf("same contract, different keys: %v vs %v", a.Key(), b.Key())
	}

	c := trade("C", "2021-03-01 10:00", option("AAPL", "P", 150, "2021-07-16"), Sell, 1, 3)
	if a.Key() == c.Key() {
		t.Errorf("call and put share a key: %v", a.Key())
	}

	other := b
	other.Account = "x9999"
	if b.Key() == other.Key() {
		t.Errorf("distinct accounts share a key: %v", b.Key())
	}
}

func TestInstrumentKey_Compare(t *testing.T) {
	keys := []InstrumentKey{
		equity("GOOG").Key("x1234"),
		equity("AAPL").Key("x1234"),
		option("AAPL", "C", 150, "2021-07-16").Key("x1234"),
		equity("AAPL").Key("x0001"),
	}
	// Account orders first, then the symbol fields.
	if !(keys[3].compare(keys[1]) < 0) {
		t.Errorf("x0001 should order before x1234")
	}
	if !(keys[1].compare(keys[0]) < 0) {
		t.Errorf("AAPL should order before GOOG")
	}
	if keys[1].compare(keys[1]) != 0 {
		t.Errorf("a key should compare equal to itself")
	}
	if !(keys[1].compare(keys[2]) < 0) {
		t.Errorf("the equity should order before its option")
	}
}

func TestIDs(t *testing.T) {
	if MatchID("A") != MatchID("A") || ChainID("A") != ChainID("A") {
		t.Errorf("ids are not stable")
	}
	if MatchID("A") == MatchID("B") {
		t.Errorf("distinct transaction ids collide")
	}
	if MatchID("A")[0] != '&' {
		t.Errorf("match id %q does not carry the & prefix", MatchID("A"))
	}
	if len(ChainID("A")) != 8 {
		t.Errorf("chain id %q is not fixed-width", ChainID("A"))
	}
}
