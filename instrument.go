package beanbuff

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Instrument identifies one tradable contract: an equity, a future, or an
// option on either. Fields left at their zero value do not apply to the
// instrument type (an equity has no expiration, strike nor side).
type Instrument struct {
	// Underlying is the name of the underlying instrument, stock or future.
	// For futures this includes the leading slash and the expiration month
	// code, e.g. "/CLZ21".
	Underlying string `json:"underlying"`

	// ExpCode is the expiration sub-code for options on futures, e.g.
	// "LOM21" on /CL. Empty for equity options and outrights.
	ExpCode string `json:"expcode,omitempty"`

	// Expiration is the expiration date of the contract, when applicable.
	Expiration Date `json:"expiration,omitempty"`

	// PutCall is "P" or "C" for options, empty otherwise.
	PutCall string `json:"putcall,omitempty"`

	// Strike is the strike price for options, zero otherwise.
	Strike decimal.Decimal `json:"strike,omitempty"`

	// Multiplier is the contract multiplier applied to the price to obtain
	// the cash value of one unit. 1 for equities.
	Multiplier int64 `json:"multiplier"`
}

// IsFuture reports whether the underlying is a futures contract.
func (in Instrument) IsFuture() bool { return strings.HasPrefix(in.Underlying, "/") }

// IsOption reports whether the instrument is an option.
func (in Instrument) IsOption() bool { return in.PutCall != "" }

// Symbol renders the instrument as a normalized, round-trippable symbol:
//
//	AAPL
//	AAPL_210716_C150
//	/CLZ21_LOM21_210716_P52.5
func (in Instrument) Symbol() string {
	if !in.IsOption() {
		return in.Underlying
	}
	var b strings.Builder
	b.WriteString(in.Underlying)
	if in.ExpCode != "" {
		b.WriteString("_")
		b.WriteString(in.ExpCode)
	}
	b.WriteString("_")
	b.WriteString(in.Expiration.time().Format("060102"))
	b.WriteString("_")
	b.WriteString(in.PutCall)
	b.WriteString(in.Strike.String())
	return b.String()
}

// ParseSymbol parses a symbol produced by Symbol back into an Instrument.
// The multiplier is not part of the symbol and is left at zero.
func ParseSymbol(symbol string) (Instrument, error) {
	parts := strings.Split(symbol, "_")
	switch len(parts) {
	case 1:
		return Instrument{Underlying: parts[0]}, nil
	case 3, 4:
		in := Instrument{Underlying: parts[0]}
		rest := parts[1:]
		if len(rest) == 3 {
			in.ExpCode = rest[0]
			rest = rest[1:]
		}
		if len(rest[0]) != 6 {
			return Instrument{}, fmt.Errorf("invalid expiration in symbol %q", symbol)
		}
		expiration, err := ParseDate("20" + rest[0][0:2] + "-" + rest[0][2:4] + "-" + rest[0][4:6])
		if err != nil {
			return Instrument{}, fmt.Errorf("invalid expiration in symbol %q", symbol)
		}
		in.Expiration = expiration
		side := rest[1]
		if len(side) < 2 || (side[0] != 'P' && side[0] != 'C') {
			return Instrument{}, fmt.Errorf("invalid option side in symbol %q", symbol)
		}
		in.PutCall = string(side[0])
		strike, err := decimal.NewFromString(side[1:])
		if err != nil {
			return Instrument{}, fmt.Errorf("invalid strike in symbol %q: %w", symbol, err)
		}
		in.Strike = strike
		return in, nil
	default:
		return Instrument{}, fmt.Errorf("invalid symbol %q", symbol)
	}
}

// InstrumentKey is the identity of one fungible inventory: the account plus
// the full instrument identity. All transactions sharing a key draw from the
// same inventory; no two inventories ever interact.
//
// The strike is carried as its canonical string so the key stays comparable
// and usable as a map key.
type InstrumentKey struct {
	Account    string
	Underlying string
	ExpCode    string
	Expiration Date
	PutCall    string
	Strike     string
	Multiplier int64
}

// Key derives the InstrumentKey of an instrument within an account.
func (in Instrument) Key(account string) InstrumentKey {
	strike := ""
	if !in.Strike.IsZero() {
		strike = in.Strike.String()
	}
	return InstrumentKey{
		Account:    account,
		Underlying: in.Underlying,
		ExpCode:    in.ExpCode,
		Expiration: in.Expiration,
		PutCall:    in.PutCall,
		Strike:     strike,
		Multiplier: in.Multiplier,
	}
}

// String renders the key for error messages and logs.
func (k InstrumentKey) String() string {
	sym := Instrument{
		Underlying: k.Underlying,
		ExpCode:    k.ExpCode,
		Expiration: k.Expiration,
		PutCall:    k.PutCall,
		Multiplier: k.Multiplier,
	}
	if k.Strike != "" {
		sym.Strike, _ = decimal.NewFromString(k.Strike)
	}
	return k.Account + ":" + sym.Symbol()
}

// compare orders keys deterministically: by account, then by symbol fields.
func (k InstrumentKey) compare(o InstrumentKey) int {
	if c := strings.Compare(k.Account, o.Account); c != 0 {
		return c
	}
	if c := strings.Compare(k.Underlying, o.Underlying); c != 0 {
		return c
	}
	if c := strings.Compare(k.ExpCode, o.ExpCode); c != 0 {
		return c
	}
	if k.Expiration.Before(o.Expiration) {
		return -1
	}
	if k.Expiration.After(o.Expiration) {
		return 1
	}
	if c := strings.Compare(k.PutCall, o.PutCall); c != 0 {
		return c
	}
	if c := strings.Compare(k.Strike, o.Strike); c != 0 {
		return c
	}
	switch {
	case k.Multiplier < o.Multiplier:
		return -1
	case k.Multiplier > o.Multiplier:
		return 1
	}
	return 0
}
