package beanbuff

import (
	"github.com/shopspring/decimal"
)

// Lot is a quantity of a position acquired at one unit cost basis, tracked
// for FIFO consumption. The quantity is signed: positive lots make up a long
// position, negative lots a short one. A lot is exclusively owned by the
// inventory holding it.
type Lot struct {
	Quantity decimal.Decimal // signed
	Basis    decimal.Decimal // unit cost
}

// FifoInventory is the ledger of open lots for a single instrument key. It
// matches reducing quantity changes against the oldest open lots first,
// maintaining cost basis, and carries the match id that labels every
// transaction filling or being filled while the inventory stays non-empty.
//
// A reduction larger than the whole open position is not an error: the
// remainder opens a new lot in the opposite direction ("crossing over"), and
// the match id survives the crossing since the lot sequence never became
// empty. A single transaction may thus close a position and open the
// opposite one.
type FifoInventory struct {
	lots    []Lot
	matchID string
}

// Match applies a signed quantity change at the given unit basis against the
// inventory. It returns the magnitude actually consumed from pre-existing
// lots, the basis of that consumption, and the match id stamped on the
// transaction. Augmentations and openings consume nothing and return zero
// magnitudes.
func (inv *FifoInventory) Match(quantity, basis decimal.Decimal, transactionID string) (matched, matchedBasis decimal.Decimal, matchID string) {
	if inv.matchID == "" {
		inv.matchID = MatchID(transactionID)
	}

	if len(inv.lots) == 0 {
		// Opening a fresh position.
		inv.lots = append(inv.lots, Lot{Quantity: quantity, Basis: basis})
	} else {
		sign := decimal.NewFromInt(1)
		if inv.lots[0].Quantity.IsNegative() {
			sign = decimal.NewFromInt(-1)
		}
		if !sign.Mul(quantity).IsNegative() {
			// Augmentation on the existing position.
			inv.lots = append(inv.lots, Lot{Quantity: quantity, Basis: basis})
		} else {
			// Reduction: consume oldest lots first.
			remaining := sign.Neg().Mul(quantity) // positive
			for len(inv.lots) > 0 && remaining.IsPositive() {
				lot := inv.lots[0]
				inv.lots = inv.lots[1:]

				lotQuantity := sign.Mul(lot.Quantity) // positive
				lotMatched := decimal.Min(lotQuantity, remaining)
				matched = matched.Add(lotMatched)
				matchedBasis = matchedBasis.Add(lotMatched.Mul(lot.Basis))
				remaining = remaining.Sub(lotMatched)

				if lotMatched.LessThan(lotQuantity) {
					// Partial lot matched; reinsert the remainder in front.
					rest := Lot{Quantity: lot.Quantity.Sub(sign.Mul(lotMatched)), Basis: lot.Basis}
					inv.lots = append([]Lot{rest}, inv.lots...)
					break
				}
			}
			if !remaining.IsZero() {
				// Crossing over: the unmatched remainder opens the
				// opposite position at the reduction's basis.
				inv.lots = append(inv.lots, Lot{Quantity: sign.Neg().Mul(remaining), Basis: basis})
			}
		}
	}

	matchID = inv.matchID
	if len(inv.lots) == 0 {
		inv.matchID = ""
	}
	return matched, matchedBasis, matchID
}

// Expire force-closes the entire current position at its existing cost
// basis. It returns the signed quantity that was closed, the signed basis
// released, and the match id; a fresh id is minted when none is current,
// which covers broker logs that omit the original opening transaction. An
// empty inventory is a no-op returning zeros and no id.
func (inv *FifoInventory) Expire(transactionID string) (matched, matchedBasis decimal.Decimal, matchID string) {
	if len(inv.lots) == 0 {
		return decimal.Zero, decimal.Zero, ""
	}

	for _, lot := range inv.lots {
		matched = matched.Add(lot.Quantity)
		matchedBasis = matchedBasis.Add(lot.Quantity.Mul(lot.Basis))
	}
	inv.lots = nil

	matchID = inv.matchID
	if matchID == "" {
		matchID = MatchID(transactionID)
	}
	inv.matchID = ""
	return matched, matchedBasis, matchID
}

// Position returns the residual net quantity, the magnitude of the basis
// held, and the current match id ("" when flat).
func (inv *FifoInventory) Position() (quantity, basis decimal.Decimal, matchID string) {
	for _, lot := range inv.lots {
		quantity = quantity.Add(lot.Quantity)
		basis = basis.Add(lot.Quantity.Abs().Mul(lot.Basis))
	}
	return quantity, basis, inv.matchID
}
