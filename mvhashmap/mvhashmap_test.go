package mvhashmap

import (
	"sync"
	"testing"

	"github.com/blockstm/parallel-exec/types"
)

func TestMVHashMapRoutesByModulePath(t *testing.T) {
	m := New(nil)
	data := StorageLocation{Addr: types.HexToAddress("0x03")}
	code := StorageLocation{Addr: types.HexToAddress("0x03"), Module: true}

	m.Write(data, Version{TxnIndex: 1}, NewValueWrite(valueOf(7)))
	m.Write(code, Version{TxnIndex: 1}, NewValueWrite([]byte{0x60}))

	if _, err := m.FetchData(data, 5); err != nil {
		t.Fatalf("unexpected data fetch error: %v", err)
	}
	if _, err := m.FetchCode(code, 5); err != nil {
		t.Fatalf("unexpected code fetch error: %v", err)
	}
}

func TestMVHashMapFetchDataOnModulePathPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	m := New(nil)
	_, _ = m.FetchData(StorageLocation{Module: true}, 1)
}

// TestMVHashMapConcurrentDisjointKeys drives parallel writers over disjoint
// keys, each followed by its own read. Keys never contend, so every worker
// must observe its own final write.
func TestMVHashMapConcurrentDisjointKeys(t *testing.T) {
	m := New(nil)
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			k := StorageLocation{Addr: types.BytesToAddress([]byte{byte(w + 1)})}
			for i := 0; i < 100; i++ {
				m.Write(k, Version{TxnIndex: TxnIndex(i)}, NewValueWrite(valueOf(uint64(i))))
			}
			out, err := m.FetchData(k, 1000)
			if err != nil {
				t.Errorf("worker %d: unexpected error: %v", w, err)
				return
			}
			if got := decodeUint64(out.Value); got != 99 {
				t.Errorf("worker %d: got %d, want 99", w, got)
			}
		}(w)
	}
	wg.Wait()
}

func TestMVHashMapTakeRecyclesCodeHalf(t *testing.T) {
	m := New(nil)
	code := StorageLocation{Addr: types.HexToAddress("0x04"), Module: true}
	m.Write(code, Version{TxnIndex: 0}, NewValueWrite([]byte{0x60}))

	_, codeHalf := m.Take()

	next := New(codeHalf)
	out, err := next.FetchCode(code, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out.Kind != MVCodeModule {
		t.Fatalf("expected recycled code half to retain the module write")
	}
}
