package mvhashmap

import (
	"fmt"
	"sync"

	"github.com/blockstm/parallel-exec/crypto"
	"github.com/blockstm/parallel-exec/metrics"
)

var codeLog = dataLog // shares the "mvhashmap" module logger

// VersionedCode is the code half of the store: published-module writes and,
// per access path, a cache of compiled executables keyed by
// ExecutableDescriptor.
type VersionedCode struct {
	stripes *stripeMap

	execMu sync.RWMutex
	execs  map[string]map[ExecutableDescriptor]Executable
}

// NewVersionedCode creates an empty code half.
func NewVersionedCode() *VersionedCode {
	return &VersionedCode{
		stripes: newStripeMap(),
		execs:   make(map[string]map[ExecutableDescriptor]Executable),
	}
}

// Write records a module publish at (k, v.TxnIndex). Only Value and
// Deletion writes are legal on the code half; a Delta write here is a
// contract violation and panics.
func (vc *VersionedCode) Write(k Key, v Version, w Write) {
	if w.Kind == WriteDelta {
		codeLog.Error("delta written to code half", "key", k.String())
		panic(fmt.Sprintf("mvhashmap: delta write on code half key %q", k.String()))
	}
	chain := vc.stripes.chainFor(k)
	chain.mu.Lock()
	defer chain.mu.Unlock()
	chain.put(entryItem{txnIdx: v.TxnIndex, cell: &EntryCell{Incarnation: v.Incarnation, Write: w}})
	metrics.MVSEntries.Inc()
}

// MarkEstimate flips the flag of the entry at (k, txnIdx) to Estimate. The
// entry must already exist; its absence is a fatal contract violation.
func (vc *VersionedCode) MarkEstimate(k Key, txnIdx TxnIndex) {
	chain := vc.stripes.chainFor(k)
	chain.mu.Lock()
	defer chain.mu.Unlock()
	item, ok := chain.get(txnIdx)
	if !ok {
		panic(fmt.Sprintf("mvhashmap: mark_estimate on missing entry (key=%q, txn=%d)", k.String(), txnIdx))
	}
	item.cell.Flag = FlagEstimate
}

// Delete removes the entry at (k, txnIdx). Its absence is a fatal contract
// violation.
func (vc *VersionedCode) Delete(k Key, txnIdx TxnIndex) {
	chain := vc.stripes.chainFor(k)
	chain.mu.Lock()
	defer chain.mu.Unlock()
	if !chain.remove(txnIdx) {
		panic(fmt.Sprintf("mvhashmap: delete on missing entry (key=%q, txn=%d)", k.String(), txnIdx))
	}
	metrics.MVSEntries.Dec()
}

// StoreExecutable installs a compiled artifact for k under desc, so any
// caller that later resolves the same module to the same descriptor reuses
// it instead of recompiling.
func (vc *VersionedCode) StoreExecutable(k Key, desc ExecutableDescriptor, exec Executable) {
	vc.execMu.Lock()
	defer vc.execMu.Unlock()
	byDesc, ok := vc.execs[k.String()]
	if !ok {
		byDesc = make(map[ExecutableDescriptor]Executable)
		vc.execs[k.String()] = byDesc
	}
	byDesc[desc] = exec
}

// PublishedModuleDescriptor builds the content-addressed ExecutableDescriptor
// for published module bytes. The same bytecode must always yield the same
// descriptor, so the digest is derived here rather than supplied by the
// caller.
func PublishedModuleDescriptor(module []byte) ExecutableDescriptor {
	return ExecutableDescriptor{
		Kind:   DescriptorPublishedModuleHash,
		Digest: crypto.Keccak256Hash(module),
	}
}

// MVCodeOutputKind tags the variant returned by a successful FetchCode.
type MVCodeOutputKind uint8

const (
	// MVCodeExecutable carries a cached compiled artifact.
	MVCodeExecutable MVCodeOutputKind = iota
	// MVCodeModule carries raw published bytecode the caller must compile
	// (and then cache via StoreExecutable).
	MVCodeModule
)

// MVCodeOutput is the successful result of FetchCode.
type MVCodeOutput struct {
	Kind       MVCodeOutputKind
	Executable Executable
	Module     []byte
	Descriptor ExecutableDescriptor
}

// FetchCode reads the module visible to txnIdx, following the same
// descending-scan semantics as FetchData but without delta folding. The
// resolved write's bytecode determines the content-addressed descriptor; if
// an executable is already cached for it the artifact is returned directly,
// otherwise the raw module bytes are returned so the caller can compile and
// cache them via StoreExecutable.
func (vc *VersionedCode) FetchCode(k Key, txnIdx TxnIndex) (MVCodeOutput, error) {
	metrics.MVSReads.Inc()
	metrics.MVSReadRate.Mark(1)
	defer codeLog.Timed("fetch_code", metrics.MVSReadLatency)()
	chain := vc.stripes.chainFor(k)
	chain.mu.Lock()

	var found *entryItem
	var outErr error
	chain.scanBelow(txnIdx, func(item entryItem) bool {
		if item.cell.Flag == FlagEstimate {
			outErr = &MVCodeError{Kind: MVCodeDependency, BlockingTxnIdx: item.txnIdx}
			return false
		}
		it := item
		found = &it
		return false
	})
	chain.mu.Unlock()

	if outErr != nil {
		metrics.MVSDependencyStalls.Inc()
		return MVCodeOutput{}, outErr
	}
	if found == nil || found.cell.Write.Kind == WriteDeletion {
		return MVCodeOutput{}, &MVCodeError{Kind: MVCodeNotFound}
	}

	desc := PublishedModuleDescriptor(found.cell.Write.Value)

	vc.execMu.RLock()
	exec, ok := vc.execs[k.String()][desc]
	vc.execMu.RUnlock()
	if ok {
		return MVCodeOutput{Kind: MVCodeExecutable, Executable: exec, Descriptor: desc}, nil
	}
	return MVCodeOutput{Kind: MVCodeModule, Module: found.cell.Write.Value, Descriptor: desc}, nil
}
