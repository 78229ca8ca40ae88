// Package partitioner implements the dependency-aware uniform partitioner:
// a pure function that shards a block of analyzed transactions across
// execution workers so that accepted transactions have no cross-shard data
// conflicts, deferring the rest to a fallback executor.
package partitioner

import "github.com/blockstm/parallel-exec/types"

// Location is a storage location a transaction may read or write, the
// granularity at which conflicts are detected.
type Location struct {
	Addr types.Address
	Slot types.Hash
}

// Transaction is the partitioner's view of one analyzed, not-yet-executed
// transaction: its position in the block and the upper-bound read/write
// hints an analysis pass produced for it. A read or write outside the hint
// sets is caller error; the partitioner trusts them as exact.
type Transaction struct {
	Index      int
	ReadHints  []Location
	WriteHints []Location
	Sender     *types.Address
}

// Status is the accept/reject decision the partitioner reaches for a
// transaction.
type Status uint8

const (
	// Accepted means the transaction's full conflict set lies within its
	// own shard.
	Accepted Status = iota
	// Discarded means the transaction conflicts with an earlier
	// transaction in another shard (or shares a sender with one that does)
	// and must be deferred to a fallback executor.
	Discarded
)

// String implements fmt.Stringer.
func (s Status) String() string {
	if s == Accepted {
		return "accepted"
	}
	return "discarded"
}

// Result is the partitioner's output: two shard-indexed multimaps.
// Shard indices are dense [0, numShards) but an empty shard is simply
// absent from the map.
type Result struct {
	Accepted map[int][]Transaction
	Rejected map[int][]Transaction
}
