package beanbuff

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2s"
)

// Match and chain ids are fixed-width content hashes of transaction ids, so
// that re-running the engine over the same input reproduces the same labels,
// regardless of processing or map iteration order.

// MatchID mints the match id anchored at the given opening transaction id.
func MatchID(transactionID string) string {
	return "&" + shortHash(transactionID)
}

// ChainID mints the chain id anchored at the earliest transaction id of a
// chain.
func ChainID(transactionID string) string {
	return shortHash(transactionID)
}

// shortHash returns the first 4 bytes of the blake2s digest as 8 hex chars.
func shortHash(s string) string {
	sum := blake2s.Sum256([]byte(s))
	return hex.EncodeToString(sum[:4])
}
