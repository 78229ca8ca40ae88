package metrics

// Pre-defined metrics for the parallel-execution substrate. All metrics
// live in DefaultRegistry so they are globally accessible without passing a
// registry around.

var (
	// ---- MVS metrics ----

	// MVSReads counts fetch_data/fetch_code calls across both halves.
	MVSReads = DefaultRegistry.Counter("mvhashmap.reads")
	// MVSDependencyStalls counts reads that returned a Dependency error.
	MVSDependencyStalls = DefaultRegistry.Counter("mvhashmap.dependency_stalls")
	// MVSDeltaFailures counts reads that returned DeltaApplicationFailure.
	MVSDeltaFailures = DefaultRegistry.Counter("mvhashmap.delta_failures")
	// MVSEntries tracks the number of live (key, TxnIndex) entries across
	// both halves.
	MVSEntries = DefaultRegistry.Gauge("mvhashmap.entries")
	// MVSReadLatency records fetch_data/fetch_code latency in microseconds.
	MVSReadLatency = DefaultRegistry.Histogram("mvhashmap.read_latency_us")
	// MVSReadRate tracks fetch_data/fetch_code calls per second (1/5/15 min
	// EWMAs), the way a scheduler would watch for a stalled executor.
	MVSReadRate = DefaultRegistry.Meter("mvhashmap.read_rate")

	// ---- Partitioner metrics ----

	// PartitionRuns counts Partition calls.
	PartitionRuns = DefaultRegistry.Counter("partitioner.runs")
	// PartitionAccepted counts transactions accepted across all runs.
	PartitionAccepted = DefaultRegistry.Counter("partitioner.accepted")
	// PartitionDiscarded counts transactions discarded across all runs.
	PartitionDiscarded = DefaultRegistry.Counter("partitioner.discarded")
	// PartitionSenderQuarantines counts transactions discarded solely by
	// sender-quarantine propagation rather than the reverse conflict scan.
	PartitionSenderQuarantines = DefaultRegistry.Counter("partitioner.sender_quarantines")
	// PartitionDuration records Partition call duration in microseconds.
	PartitionDuration = DefaultRegistry.Histogram("partitioner.duration_us")
	// PartitionRunRate tracks Partition calls per second.
	PartitionRunRate = DefaultRegistry.Meter("partitioner.run_rate")
)

// ResetStandard zeroes every standard counter, gauge, and histogram above.
// Meters are left alone: their EWMAs are a rolling rate, not a per-run
// total, so resetting them between runs would misrepresent the rate rather
// than clear it.
func ResetStandard() {
	DefaultRegistry.Reset()
}
