// Package mvhashmap implements the multi-version concurrent store used by a
// parallel transaction executor: a lock-striped map keyed by access path,
// split into a data half (versioned writes and deltas) and a code half
// (published modules and their compiled executables).
package mvhashmap

import "github.com/blockstm/parallel-exec/types"

// TxnIndex denotes a transaction's position within a block.
type TxnIndex uint64

// Incarnation denotes a transaction's re-execution attempt number.
type Incarnation uint64

// Version pairs a TxnIndex with an Incarnation and is totally ordered
// lexicographically on (TxnIndex, Incarnation).
type Version struct {
	TxnIndex    TxnIndex
	Incarnation Incarnation
}

// Less reports whether v sorts before o.
func (v Version) Less(o Version) bool {
	if v.TxnIndex != o.TxnIndex {
		return v.TxnIndex < o.TxnIndex
	}
	return v.Incarnation < o.Incarnation
}

// Key is an access path. IsModulePath routes requests between the data and
// code halves of the store; String provides the canonical form used to
// shard the path across the underlying stripe map.
type Key interface {
	IsModulePath() bool
	String() string
}

// StorageLocation is the Key implementation for ordinary account state: an
// address/slot pair, optionally flagged as the account's module path (the
// location a contract's published bytecode lives under).
type StorageLocation struct {
	Addr   types.Address
	Slot   types.Hash
	Module bool
}

// IsModulePath reports whether this location addresses a published module
// rather than ordinary storage.
func (l StorageLocation) IsModulePath() bool { return l.Module }

// String returns the canonical "addr/slot" form used as the stripe-map key.
func (l StorageLocation) String() string {
	if l.Module {
		return l.Addr.Hex() + "/module"
	}
	return l.Addr.Hex() + "/" + l.Slot.Hex()
}

// WriteKind tags the variant carried by a Write.
type WriteKind uint8

const (
	// WriteValue carries a materialized value.
	WriteValue WriteKind = iota
	// WriteDeletion marks the key as removed at this version.
	WriteDeletion
	// WriteDelta carries a commutative numeric update, data half only.
	WriteDelta
)

// Write is the tagged value an incarnation publishes at a version: a
// materialized value, a deletion marker, or (data half only) a delta.
type Write struct {
	Kind  WriteKind
	Value []byte
	Delta DeltaOp
}

// NewValueWrite builds a Write carrying a materialized value.
func NewValueWrite(v []byte) Write { return Write{Kind: WriteValue, Value: v} }

// NewDeletionWrite builds a Write marking the key deleted.
func NewDeletionWrite() Write { return Write{Kind: WriteDeletion} }

// NewDeltaWrite builds a Write carrying a commutative delta.
func NewDeltaWrite(d DeltaOp) Write { return Write{Kind: WriteDelta, Delta: d} }

// Flag marks whether an entry is safe to read (Done) or was produced by an
// incarnation that has since been aborted and not yet re-run (Estimate).
type Flag uint8

const (
	// FlagDone marks a committed, readable entry.
	FlagDone Flag = iota
	// FlagEstimate marks a write from an aborted incarnation; readers must
	// treat it as a suspend point.
	FlagEstimate
)

// EntryCell is the per-(key, TxnIndex) record: the writer's incarnation,
// the write it published, and its current flag.
type EntryCell struct {
	Incarnation Incarnation
	Write       Write
	Flag        Flag
}

// Executable is an opaque compiled artifact cached alongside a published
// module. The store never inspects it; it is returned from reads as-is.
type Executable any

// DescriptorKind tags the variant carried by an ExecutableDescriptor.
type DescriptorKind uint8

const (
	// DescriptorStorageVersion identifies the artifact compiled from the
	// module as stored before the block began.
	DescriptorStorageVersion DescriptorKind = iota
	// DescriptorPublishedModuleHash identifies a compiled artifact by the
	// content hash of the published bytecode.
	DescriptorPublishedModuleHash
)

// ExecutableDescriptor identifies a cached Executable: either the artifact
// compiled from the storage-baseline module (no digest) or one compiled from
// bytecode published during the block, content-addressed by its hash.
type ExecutableDescriptor struct {
	Kind   DescriptorKind
	Digest types.Hash
}

// StorageVersionDescriptor identifies the executable compiled from the
// module as it exists in storage, before any in-block publish.
func StorageVersionDescriptor() ExecutableDescriptor {
	return ExecutableDescriptor{Kind: DescriptorStorageVersion}
}
