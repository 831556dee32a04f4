package beanbuff

import (
	"time"

	"github.com/shopspring/decimal"
)

// d is a helper for tests to create decimals from consts.
func d(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// at parses a test timestamp like "2021-03-01 09:00".
func at(s string) time.Time {
	t, err := time.Parse("2006-01-02 15:04", s)
	if err != nil {
		panic(err)
	}
	return t
}

// equity is a plain stock instrument on the given underlying.
func equity(underlying string) Instrument {
	return Instrument{Underlying: underlying, Multiplier: 1}
}

// option is an equity option instrument.
func option(underlying, putcall string, strike float64, expiration string) Instrument {
	return Instrument{
		Underlying: underlying,
		Expiration: MustParseDate(expiration),
		PutCall:    putcall,
		Strike:     d(strike),
		Multiplier: 100,
	}
}

// trade builds a Trade row on the test account.
func trade(id, datetime string, in Instrument, instruction Instruction, quantity, price float64) Transaction {
	return Transaction{
		Account:       "x1234",
		TransactionID: id,
		DateTime:      at(datetime),
		RowType:       RowTrade,
		Instrument:    in,
		Instruction:   instruction,
		Quantity:      d(quantity),
		Price:         d(price),
		Cost:          d(-float64(instruction.Sign()) * quantity * price * float64(in.Multiplier)),
	}
}

// withOrder stamps an order id on a row.
func withOrder(tx Transaction, orderID string) Transaction {
	tx.OrderID = orderID
	return tx
}

// expiration builds an Expire row with an unresolved quantity.
func expiration(id, datetime string, in Instrument) Transaction {
	return Transaction{
		Account:       "x1234",
		TransactionID: id,
		DateTime:      at(datetime),
		RowType:       RowExpire,
		Instrument:    in,
	}
}
