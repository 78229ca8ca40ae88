package mvhashmap

// MVHashMap is the thin routing facade over the two halves of the store. It
// inspects k.IsModulePath() on every call and forwards to VersionedData or
// VersionedCode accordingly, so callers never need to know which half a key
// belongs to.
type MVHashMap struct {
	data *VersionedData
	code *VersionedCode
}

// New creates an MVHashMap. A non-nil code half may be supplied to reuse a
// code cache recycled from a prior block via Take; a nil code starts fresh.
func New(code *VersionedCode) *MVHashMap {
	if code == nil {
		code = NewVersionedCode()
	}
	return &MVHashMap{data: NewVersionedData(), code: code}
}

// Write routes a versioned write to the appropriate half.
func (m *MVHashMap) Write(k Key, v Version, w Write) {
	if k.IsModulePath() {
		m.code.Write(k, v, w)
		return
	}
	m.data.Write(k, v, w)
}

// AddDelta appends a delta on the data half. Calling it with a module-path
// key is a contract violation and panics.
func (m *MVHashMap) AddDelta(k Key, txnIdx TxnIndex, d DeltaOp) {
	if k.IsModulePath() {
		panic("mvhashmap: add_delta on module path")
	}
	m.data.AddDelta(k, txnIdx, d)
}

// MarkEstimate routes an estimate flip to the appropriate half.
func (m *MVHashMap) MarkEstimate(k Key, txnIdx TxnIndex) {
	if k.IsModulePath() {
		m.code.MarkEstimate(k, txnIdx)
		return
	}
	m.data.MarkEstimate(k, txnIdx)
}

// Delete routes a deletion to the appropriate half.
func (m *MVHashMap) Delete(k Key, txnIdx TxnIndex) {
	if k.IsModulePath() {
		m.code.Delete(k, txnIdx)
		return
	}
	m.data.Delete(k, txnIdx)
}

// FetchData reads ordinary state. Calling it with a module-path key is a
// caller error and panics.
func (m *MVHashMap) FetchData(k Key, txnIdx TxnIndex) (MVDataOutput, error) {
	if k.IsModulePath() {
		panic("mvhashmap: fetch_data on module path")
	}
	return m.data.FetchData(k, txnIdx)
}

// FetchCode reads a published module. Calling it with a non-module key is a
// caller error and panics.
func (m *MVHashMap) FetchCode(k Key, txnIdx TxnIndex) (MVCodeOutput, error) {
	if !k.IsModulePath() {
		panic("mvhashmap: fetch_code on non-module path")
	}
	return m.code.FetchCode(k, txnIdx)
}

// StoreExecutable installs a compiled artifact for k in the code cache.
func (m *MVHashMap) StoreExecutable(k Key, desc ExecutableDescriptor, exec Executable) {
	m.code.StoreExecutable(k, desc, exec)
}

// Take surrenders both halves back to the caller. The returned
// *VersionedCode may be threaded into the next block's New call to reuse
// compiled artifacts across blocks.
func (m *MVHashMap) Take() (*VersionedData, *VersionedCode) {
	return m.data, m.code
}
