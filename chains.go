package beanbuff

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// ChainOptions selects which linkage criteria group transactions into
// chains. The zero value disables everything; DefaultChainOptions enables
// all three, which is what reporting wants.
type ChainOptions struct {
	ByOrder bool // link legs sharing an order id
	ByMatch bool // link transactions that filled against each other
	ByTime  bool // link matches overlapping in time on one underlying
}

// DefaultChainOptions links by order, by match and by time.
func DefaultChainOptions() ChainOptions {
	return ChainOptions{ByOrder: true, ByMatch: true, ByTime: true}
}

// Chains groups transactions (including the synthetic Mark and Expire rows
// appended by Match) into episodes and stamps every row with its chain id.
// Two transactions share a chain when they are connected, directly or
// transitively, through a shared order id, a shared match id, or a time
// overlap of non-flat positions on the same account and underlying.
//
// The chain id is a fixed-width hash of the earliest member transaction id,
// so membership and ids are reproducible across runs. Every row is
// assigned a chain: a transaction with no linkage at all forms a singleton.
func Chains(txs []Transaction, opts ChainOptions) ([]Transaction, error) {
	out := make([]Transaction, len(txs))
	copy(out, txs)

	uf := newNodeSet()
	for _, tx := range out {
		txn := uf.add(nodeTxn, tx.TransactionID)
		if opts.ByOrder && tx.OrderID != "" {
			uf.union(txn, uf.add(nodeOrder, tx.OrderID))
		}
		if opts.ByMatch && tx.MatchID != "" {
			uf.union(txn, uf.add(nodeMatch, tx.MatchID))
		}
	}

	if opts.ByTime {
		if err := linkOverlapping(out, uf); err != nil {
			return nil, err
		}
	}

	// Collect the member transactions of each connected component.
	members := make(map[int][]int) // root node -> indexes into out
	for i, tx := range out {
		root := uf.find(uf.add(nodeTxn, tx.TransactionID))
		members[root] = append(members[root], i)
	}

	for _, indexes := range members {
		sort.Slice(indexes, func(a, b int) bool {
			ta, tb := out[indexes[a]], out[indexes[b]]
			if !ta.DateTime.Equal(tb.DateTime) {
				return ta.DateTime.Before(tb.DateTime)
			}
			return ta.TransactionID < tb.TransactionID
		})
		chainID := ChainID(out[indexes[0]].TransactionID)
		for _, i := range indexes {
			out[i].ChainID = chainID
		}
	}
	return out, nil
}

// spanKey identifies the scope within which time overlap links matches.
type spanKey struct {
	account    string
	underlying string
}

// linkOverlapping links match ids whose positions overlap in time within one
// account and underlying. For each match it gathers the [min,max] datetime
// span of its transactions, then steps through the span boundaries in time
// order keeping a per-underlying active set: a boundary toggles its match in
// or out, and a match entering a non-empty set is linked to a match already
// active. All transactions of one uninterrupted non-flat stretch therefore
// end in one component.
func linkOverlapping(txs []Transaction, uf *nodeSet) error {
	type span struct {
		min, max time.Time
	}
	type matchRef struct {
		scope spanKey
		match string
	}
	spans := make(map[matchRef]*span)
	net := make(map[matchRef]decimal.Decimal)
	for _, tx := range txs {
		if tx.MatchID == "" {
			continue
		}
		ref := matchRef{spanKey{tx.Account, tx.Underlying}, tx.MatchID}
		net[ref] = net[ref].Add(tx.SignedQuantity())
		s, ok := spans[ref]
		if !ok {
			spans[ref] = &span{min: tx.DateTime, max: tx.DateTime}
			continue
		}
		if tx.DateTime.Before(s.min) {
			s.min = tx.DateTime
		}
		if tx.DateTime.After(s.max) {
			s.max = tx.DateTime
		}
	}

	// Terminal invariant: every position span must close by the end of the
	// table, counting the synthetic Mark and Expire rows. A non-flat match
	// means the table skipped the closing synthesis.
	refs := make([]matchRef, 0, len(net))
	for ref := range net {
		refs = append(refs, ref)
	}
	sort.Slice(refs, func(i, j int) bool {
		a, b := refs[i], refs[j]
		if a.scope != b.scope {
			if a.scope.account != b.scope.account {
				return a.scope.account < b.scope.account
			}
			return a.scope.underlying < b.scope.underlying
		}
		return a.match < b.match
	})
	for _, ref := range refs {
		if !net[ref].IsZero() {
			return Validationf("match %s on %s/%s never closes (net position %s)",
				ref.match, ref.scope.account, ref.scope.underlying, net[ref])
		}
	}

	// Each span contributes an enter and a leave boundary; both toggle.
	type boundary struct {
		at    time.Time
		scope spanKey
		match string
	}
	boundaries := make([]boundary, 0, 2*len(spans))
	for ref, s := range spans {
		boundaries = append(boundaries, boundary{s.min, ref.scope, ref.match})
		boundaries = append(boundaries, boundary{s.max, ref.scope, ref.match})
	}
	sort.Slice(boundaries, func(i, j int) bool {
		a, b := boundaries[i], boundaries[j]
		if !a.at.Equal(b.at) {
			return a.at.Before(b.at)
		}
		if a.scope != b.scope {
			if a.scope.account != b.scope.account {
				return a.scope.account < b.scope.account
			}
			return a.scope.underlying < b.scope.underlying
		}
		return a.match < b.match
	})

	active := make(map[spanKey][]string)
	for _, b := range boundaries {
		set := active[b.scope]
		if i := indexOf(set, b.match); i >= 0 {
			active[b.scope] = append(set[:i], set[i+1:]...)
			continue
		}
		if len(set) > 0 {
			// Link the entering match to one already active; actives are
			// pairwise connected already, so any member does.
			uf.union(uf.add(nodeMatch, b.match), uf.add(nodeMatch, set[0]))
		}
		active[b.scope] = append(set, b.match)
	}

	// Every enter boundary has a matching leave boundary, so a leftover
	// active span means the matched table is internally inconsistent (an
	// open position with no synthetic closing row appended).
	for scope, set := range active {
		if len(set) > 0 {
			return Validationf("underlying %s/%s has a position span that never closes",
				scope.account, scope.underlying)
		}
	}
	return nil
}

func indexOf(set []string, s string) int {
	for i, v := range set {
		if v == s {
			return i
		}
	}
	return -1
}

// nodeKind tags the closed set of node types linked by the chain builder.
type nodeKind uint8

const (
	nodeTxn nodeKind = iota
	nodeOrder
	nodeMatch
)

type nodeRef struct {
	kind nodeKind
	id   string
}

// nodeSet is a union-find (disjoint-set) structure over typed nodes, with
// path compression and union by size.
type nodeSet struct {
	index  map[nodeRef]int
	parent []int
	size   []int
}

func newNodeSet() *nodeSet {
	return &nodeSet{index: make(map[nodeRef]int)}
}

// add interns a node and returns its dense handle.
func (ns *nodeSet) add(kind nodeKind, id string) int {
	ref := nodeRef{kind, id}
	if i, ok := ns.index[ref]; ok {
		return i
	}
	i := len(ns.parent)
	ns.index[ref] = i
	ns.parent = append(ns.parent, i)
	ns.size = append(ns.size, 1)
	return i
}

func (ns *nodeSet) find(i int) int {
	for ns.parent[i] != i {
		ns.parent[i] = ns.parent[ns.parent[i]]
		i = ns.parent[i]
	}
	return i
}

func (ns *nodeSet) union(a, b int) {
	ra, rb := ns.find(a), ns.find(b)
	if ra == rb {
		return
	}
	if ns.size[ra] < ns.size[rb] {
		ra, rb = rb, ra
	}
	ns.parent[rb] = ra
	ns.size[ra] += ns.size[rb]
}
