package mvhashmap

import (
	"sync"

	"github.com/google/btree"
	cmap "github.com/orcaman/concurrent-map/v2"
)

// entryItem is the btree element stored per key: a TxnIndex and the cell
// published at it. Ordering is purely by TxnIndex — invariant (1) of the
// store guarantees at most one live entry per TxnIndex.
type entryItem struct {
	txnIdx TxnIndex
	cell   *EntryCell
}

func entryItemLess(a, b entryItem) bool { return a.txnIdx < b.txnIdx }

// keyChain is the ordered, per-key version chain: a btree guarded by its
// own mutex. Acquiring chain.mu gives exclusive access to every operation
// on this one key; other keys proceed independently — this is the lock
// striping the store's concurrency model requires.
type keyChain struct {
	mu   sync.Mutex
	tree *btree.BTreeG[entryItem]
}

func newKeyChain() *keyChain {
	return &keyChain{tree: btree.NewG(32, entryItemLess)}
}

// scanBelow walks entries strictly below txnIdx in descending TxnIndex
// order, calling visit for each. visit returns false to stop the scan early
// (on a terminal entry) or true to keep descending (to fold in another
// delta). Must be called with chain.mu held.
func (c *keyChain) scanBelow(txnIdx TxnIndex, visit func(entryItem) bool) {
	c.tree.Descend(func(item entryItem) bool {
		if item.txnIdx >= txnIdx {
			return true
		}
		return visit(item)
	})
}

func (c *keyChain) put(item entryItem) {
	c.tree.ReplaceOrInsert(item)
}

func (c *keyChain) get(txnIdx TxnIndex) (entryItem, bool) {
	return c.tree.Get(entryItem{txnIdx: txnIdx})
}

func (c *keyChain) remove(txnIdx TxnIndex) bool {
	_, ok := c.tree.Delete(entryItem{txnIdx: txnIdx})
	return ok
}

// stripeMap is the shared top-level index: a concurrent hashmap from key
// string to that key's independently-locked keyChain. Cross-key operations
// never contend; only two callers touching the same key serialize, and only
// for the duration of their chain.mu critical section.
type stripeMap struct {
	m cmap.ConcurrentMap[string, *keyChain]
}

func newStripeMap() *stripeMap {
	return &stripeMap{m: cmap.New[*keyChain]()}
}

// chainFor returns the keyChain for k, creating it on first access. Upsert
// is used so two goroutines racing to create the same chain converge on a
// single winner instead of one clobbering the other's chain.
func (s *stripeMap) chainFor(k Key) *keyChain {
	return s.m.Upsert(k.String(), nil, func(exists bool, cur, _ *keyChain) *keyChain {
		if exists {
			return cur
		}
		return newKeyChain()
	})
}
