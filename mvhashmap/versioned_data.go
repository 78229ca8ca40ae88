package mvhashmap

import (
	"encoding/binary"
	"fmt"

	"github.com/blockstm/parallel-exec/log"
	"github.com/blockstm/parallel-exec/metrics"
)

var dataLog = log.Default().Module("mvhashmap")

// VersionedData is the data half of the store: versioned writes and deltas
// for ordinary (non-module) state.
type VersionedData struct {
	stripes *stripeMap
}

// NewVersionedData creates an empty data half.
func NewVersionedData() *VersionedData {
	return &VersionedData{stripes: newStripeMap()}
}

// Write inserts or replaces the entry at (k, v.TxnIndex) with w, recorded
// under incarnation v.Incarnation. Re-writing the same (version, op) pair is
// idempotent: it simply replaces the cell with an identical one.
func (vd *VersionedData) Write(k Key, v Version, w Write) {
	chain := vd.stripes.chainFor(k)
	chain.mu.Lock()
	defer chain.mu.Unlock()
	chain.put(entryItem{txnIdx: v.TxnIndex, cell: &EntryCell{Incarnation: v.Incarnation, Write: w}})
	metrics.MVSEntries.Inc()
}

// AddDelta appends a delta entry at txnIdx. A Delta may only be stored on
// the data half; calling AddDelta with a module-path key is a contract
// violation and panics.
func (vd *VersionedData) AddDelta(k Key, txnIdx TxnIndex, d DeltaOp) {
	if k.IsModulePath() {
		dataLog.Error("delta written to module path", "key", k.String())
		panic(fmt.Sprintf("mvhashmap: add_delta on module path %q", k.String()))
	}
	chain := vd.stripes.chainFor(k)
	chain.mu.Lock()
	defer chain.mu.Unlock()
	chain.put(entryItem{txnIdx: txnIdx, cell: &EntryCell{Write: NewDeltaWrite(d)}})
	metrics.MVSEntries.Inc()
}

// MarkEstimate flips the flag of the entry at (k, txnIdx) to Estimate. The
// entry must already exist; its absence is a fatal contract violation.
func (vd *VersionedData) MarkEstimate(k Key, txnIdx TxnIndex) {
	chain := vd.stripes.chainFor(k)
	chain.mu.Lock()
	defer chain.mu.Unlock()
	item, ok := chain.get(txnIdx)
	if !ok {
		panic(fmt.Sprintf("mvhashmap: mark_estimate on missing entry (key=%q, txn=%d)", k.String(), txnIdx))
	}
	item.cell.Flag = FlagEstimate
	dataLog.Debug("marked estimate", "key", k.String(), "txn", txnIdx)
}

// Delete removes the entry at (k, txnIdx). Its absence is a fatal contract
// violation.
func (vd *VersionedData) Delete(k Key, txnIdx TxnIndex) {
	chain := vd.stripes.chainFor(k)
	chain.mu.Lock()
	defer chain.mu.Unlock()
	if !chain.remove(txnIdx) {
		panic(fmt.Sprintf("mvhashmap: delete on missing entry (key=%q, txn=%d)", k.String(), txnIdx))
	}
	metrics.MVSEntries.Dec()
}

// MVDataOutputKind tags the variant returned by a successful FetchData.
type MVDataOutputKind uint8

const (
	// MVDataVersioned carries a materialized value and the version that
	// produced it.
	MVDataVersioned MVDataOutputKind = iota
	// MVDataResolved carries only a resolved delta sum; the caller must
	// apply it against the storage baseline.
	MVDataResolved
)

// MVDataOutput is the successful result of FetchData.
type MVDataOutput struct {
	Kind        MVDataOutputKind
	Version     Version
	Value       []byte
	ResolvedSum int64
}

// FetchData reads the value visible to txnIdx: it scans entries with
// TxnIndex < txnIdx in descending order, folding a trailing run of deltas
// until it reaches a Value, a Deletion, or the floor of the chain.
func (vd *VersionedData) FetchData(k Key, txnIdx TxnIndex) (MVDataOutput, error) {
	metrics.MVSReads.Inc()
	metrics.MVSReadRate.Mark(1)
	defer dataLog.Timed("fetch_data", metrics.MVSReadLatency)()
	chain := vd.stripes.chainFor(k)
	chain.mu.Lock()
	defer chain.mu.Unlock()

	var acc DeltaAccumulator
	var result MVDataOutput
	var outErr error
	terminal := false

	chain.scanBelow(txnIdx, func(item entryItem) bool {
		cell := item.cell
		if cell.Flag == FlagEstimate {
			outErr = &MVDataError{Kind: MVDataDependency, BlockingTxnIdx: item.txnIdx}
			terminal = true
			return false
		}
		switch cell.Write.Kind {
		case WriteDelta:
			if err := acc.Push(cell.Write.Delta); err != nil {
				outErr = &MVDataError{Kind: MVDataDeltaApplicationFailure}
				terminal = true
				return false
			}
			return true
		case WriteValue:
			if acc.Empty() {
				result = MVDataOutput{Kind: MVDataVersioned, Version: Version{item.txnIdx, cell.Incarnation}, Value: cell.Write.Value}
				terminal = true
				return false
			}
			materialized, err := acc.ApplyTo(decodeUint64(cell.Write.Value))
			if err != nil {
				outErr = &MVDataError{Kind: MVDataDeltaApplicationFailure}
				terminal = true
				return false
			}
			result = MVDataOutput{Kind: MVDataVersioned, Version: Version{item.txnIdx, cell.Incarnation}, Value: encodeUint64(materialized)}
			terminal = true
			return false
		default: // WriteDeletion
			if !acc.Empty() {
				outErr = &MVDataError{Kind: MVDataDeltaApplicationFailure}
			} else {
				outErr = &MVDataError{Kind: MVDataNotFound}
			}
			terminal = true
			return false
		}
	})

	if terminal {
		if outErr != nil {
			if de, ok := outErr.(*MVDataError); ok {
				switch de.Kind {
				case MVDataDependency:
					metrics.MVSDependencyStalls.Inc()
				case MVDataDeltaApplicationFailure:
					metrics.MVSDeltaFailures.Inc()
				}
			}
			return MVDataOutput{}, outErr
		}
		return result, nil
	}

	// Scan exhausted the chain's floor with only deltas observed (or none).
	if acc.Empty() {
		return MVDataOutput{}, &MVDataError{Kind: MVDataNotFound}
	}
	return MVDataOutput{Kind: MVDataResolved, ResolvedSum: acc.Sum()}, nil
}

func decodeUint64(b []byte) uint64 {
	if len(b) < 8 {
		var padded [8]byte
		copy(padded[8-len(b):], b)
		return binary.BigEndian.Uint64(padded[:])
	}
	return binary.BigEndian.Uint64(b[len(b)-8:])
}

func encodeUint64(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
