package mvhashmap

import (
	"testing"

	"github.com/blockstm/parallel-exec/types"
)

func moduleKey() StorageLocation {
	return StorageLocation{Addr: types.HexToAddress("0x02"), Module: true}
}

func TestFetchCodeNotFound(t *testing.T) {
	vc := NewVersionedCode()
	_, err := vc.FetchCode(moduleKey(), 5)
	codeErr, ok := err.(*MVCodeError)
	if !ok || codeErr.Kind != MVCodeNotFound {
		t.Fatalf("got %v, want NotFound", err)
	}
}

func TestFetchCodeReturnsRawModuleThenCachedExecutable(t *testing.T) {
	vc := NewVersionedCode()
	k := moduleKey()
	bytecode := []byte{0xde, 0xad, 0xbe, 0xef}

	vc.Write(k, Version{TxnIndex: 3, Incarnation: 0}, NewValueWrite(bytecode))

	out, err := vc.FetchCode(k, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Kind != MVCodeModule {
		t.Fatalf("got kind %v, want Module", out.Kind)
	}
	if out.Descriptor != PublishedModuleDescriptor(bytecode) {
		t.Fatalf("got descriptor %+v, want the content hash of the published bytecode", out.Descriptor)
	}

	compiled := struct{ ok bool }{ok: true}
	vc.StoreExecutable(k, out.Descriptor, compiled)

	out2, err := vc.FetchCode(k, 9)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out2.Kind != MVCodeExecutable {
		t.Fatalf("got kind %v, want Executable", out2.Kind)
	}
}

// TestFetchCodeReusesExecutableAcrossRepublish republishes identical
// bytecode at a later transaction and checks the artifact compiled for the
// earlier publish is still served: the descriptor depends only on the
// bytecode, not on the version that published it.
func TestFetchCodeReusesExecutableAcrossRepublish(t *testing.T) {
	vc := NewVersionedCode()
	k := moduleKey()
	bytecode := []byte{0x60, 0x0d}

	vc.Write(k, Version{TxnIndex: 1, Incarnation: 0}, NewValueWrite(bytecode))
	vc.StoreExecutable(k, PublishedModuleDescriptor(bytecode), "compiled")

	vc.Write(k, Version{TxnIndex: 4, Incarnation: 2}, NewValueWrite(bytecode))

	out, err := vc.FetchCode(k, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Kind != MVCodeExecutable {
		t.Fatalf("got kind %v, want Executable", out.Kind)
	}
	if out.Executable != Executable("compiled") {
		t.Fatalf("got executable %v, want the cached artifact", out.Executable)
	}
}

func TestFetchCodeDependency(t *testing.T) {
	vc := NewVersionedCode()
	k := moduleKey()

	vc.Write(k, Version{TxnIndex: 3, Incarnation: 0}, NewValueWrite([]byte{1}))
	vc.MarkEstimate(k, 3)

	_, err := vc.FetchCode(k, 9)
	codeErr, ok := err.(*MVCodeError)
	if !ok || codeErr.Kind != MVCodeDependency || codeErr.BlockingTxnIdx != 3 {
		t.Fatalf("got %v, want Dependency(3)", err)
	}
}

func TestVersionedCodeDeltaWritePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	vc := NewVersionedCode()
	vc.Write(moduleKey(), Version{TxnIndex: 1}, NewDeltaWrite(Plus(1, 0)))
}

func TestPublishedModuleDescriptorIsContentAddressed(t *testing.T) {
	bytecode := []byte{0x60, 0x0d, 0x80}
	a := PublishedModuleDescriptor(bytecode)
	b := PublishedModuleDescriptor(append([]byte(nil), bytecode...))
	if a != b {
		t.Fatalf("same bytecode produced different descriptors: %+v != %+v", a, b)
	}
	if a.Kind != DescriptorPublishedModuleHash {
		t.Fatalf("got kind %v, want DescriptorPublishedModuleHash", a.Kind)
	}

	other := PublishedModuleDescriptor([]byte{0x01})
	if a == other {
		t.Fatal("different bytecode produced the same descriptor")
	}
}
