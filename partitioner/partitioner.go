package partitioner

import (
	"github.com/blockstm/parallel-exec/log"
	"github.com/blockstm/parallel-exec/metrics"
	"github.com/blockstm/parallel-exec/types"
)

var partitionLog = log.Default().Module("partitioner")

// DependencyAwareUniformPartitioner shards a block of analyzed transactions
// across a fixed number of workers by positional chunking, discarding any
// transaction whose conflict set crosses a shard boundary.
type DependencyAwareUniformPartitioner struct {
	numShards int
}

// New creates a partitioner targeting numShards workers. numShards must be
// at least 1.
func New(numShards int) *DependencyAwareUniformPartitioner {
	if numShards < 1 {
		numShards = 1
	}
	return &DependencyAwareUniformPartitioner{numShards: numShards}
}

// Partition assigns each transaction to a shard and decides accept/reject so
// that every accepted transaction's conflict set lies entirely within its
// own shard. The input must already be in final block order; Transaction.Index
// must equal the transaction's position in txs.
func (p *DependencyAwareUniformPartitioner) Partition(txs []Transaction) Result {
	metrics.PartitionRuns.Inc()
	metrics.PartitionRunRate.Mark(1)
	defer partitionLog.Timed("partition", metrics.PartitionDuration)()
	n := len(txs)
	if n == 0 {
		return Result{Accepted: map[int][]Transaction{}, Rejected: map[int][]Transaction{}}
	}

	chunk := ceilDiv(n, p.numShards)
	shardOf := func(i int) int { return i / chunk }

	graph := BuildDependencyGraph(txs)

	// Reverse-scan the block so transactions near its front are
	// preferentially kept: whenever a write crosses a shard boundary, the
	// later side of the edge yields. An already-discarded dependent needs
	// no further marking.
	status := make([]Status, n)
	for i := n - 1; i >= 0; i-- {
		for j := range graph.Dependents(txs[i].Index) {
			if status[j] == Discarded {
				continue
			}
			if shardOf(j) != shardOf(i) {
				status[j] = Discarded
			}
		}
	}

	discardedSenders := make(map[types.Address]struct{})
	quarantined := 0
	for i := 0; i < n; i++ {
		sender := txs[i].Sender
		if sender == nil {
			continue
		}
		if _, poisoned := discardedSenders[*sender]; poisoned && status[i] == Accepted {
			status[i] = Discarded
			quarantined++
		}
		if status[i] == Discarded {
			discardedSenders[*sender] = struct{}{}
		}
	}
	if quarantined > 0 {
		metrics.PartitionSenderQuarantines.Add(int64(quarantined))
	}

	result := Result{Accepted: make(map[int][]Transaction), Rejected: make(map[int][]Transaction)}
	var acceptedCount, discardedCount int64
	for i, t := range txs {
		s := shardOf(i)
		if status[i] == Accepted {
			result.Accepted[s] = append(result.Accepted[s], t)
			acceptedCount++
		} else {
			result.Rejected[s] = append(result.Rejected[s], t)
			discardedCount++
		}
	}
	metrics.PartitionAccepted.Add(acceptedCount)
	metrics.PartitionDiscarded.Add(discardedCount)
	if discardedCount > acceptedCount {
		partitionLog.Warn("partition discarded a majority of the block", "accepted", acceptedCount, "discarded", discardedCount)
	}

	return result
}

func ceilDiv(a, b int) int {
	if b <= 0 {
		return a
	}
	return (a + b - 1) / b
}
