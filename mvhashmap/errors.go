package mvhashmap

import "fmt"

// MVDataErrorKind classifies a non-fatal error from the data half.
type MVDataErrorKind uint8

const (
	// MVDataNotFound means no prior write is visible; the caller should
	// fall back to the storage baseline.
	MVDataNotFound MVDataErrorKind = iota
	// MVDataDependency means the latest visible write is an Estimate; the
	// caller must park on the blocking TxnIndex and retry.
	MVDataDependency
	// MVDataDeltaApplicationFailure means a delta overflowed its bound, or
	// a Deletion was found beneath accumulated deltas.
	MVDataDeltaApplicationFailure
	// MVDataUnresolved means only deltas were seen; the caller must apply
	// the resolved sum against the storage baseline itself.
	MVDataUnresolved
)

// MVDataError is the data half's non-fatal error value. Only Dependency is
// transient; the rest are terminal for the caller's current incarnation.
type MVDataError struct {
	Kind           MVDataErrorKind
	BlockingTxnIdx TxnIndex
}

func (e *MVDataError) Error() string {
	switch e.Kind {
	case MVDataNotFound:
		return "mvhashmap: not found"
	case MVDataDependency:
		return fmt.Sprintf("mvhashmap: dependency on txn %d", e.BlockingTxnIdx)
	case MVDataDeltaApplicationFailure:
		return "mvhashmap: delta application failure"
	case MVDataUnresolved:
		return "mvhashmap: unresolved delta sum"
	default:
		return "mvhashmap: unknown data error"
	}
}

// MVCodeErrorKind classifies a non-fatal error from the code half.
type MVCodeErrorKind uint8

const (
	// MVCodeNotFound means no prior module write is visible.
	MVCodeNotFound MVCodeErrorKind = iota
	// MVCodeDependency means the latest visible write is an Estimate.
	MVCodeDependency
)

// MVCodeError is the code half's non-fatal error value.
type MVCodeError struct {
	Kind           MVCodeErrorKind
	BlockingTxnIdx TxnIndex
}

func (e *MVCodeError) Error() string {
	switch e.Kind {
	case MVCodeNotFound:
		return "mvhashmap: module not found"
	case MVCodeDependency:
		return fmt.Sprintf("mvhashmap: dependency on txn %d", e.BlockingTxnIdx)
	default:
		return "mvhashmap: unknown code error"
	}
}
