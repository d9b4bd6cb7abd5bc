package pool

import (
	"sync"
	"testing"

	"github.com/abelbrown/lookout/internal/item"
	"github.com/abelbrown/lookout/internal/launcher"
)

func testItems(names ...string) []item.Item {
	def := &launcher.Definition{Name: "Apps", Kind: launcher.App}
	items := make([]item.Item, len(names))
	for i, n := range names {
		items[i] = item.Item{Def: def, Payload: &item.AppData{Name: n, SearchText: n}}
	}
	return items
}

func name(it item.Item) string {
	return it.Payload.(*item.AppData).Name
}

func TestSpliceIsCopyOnWrite(t *testing.T) {
	p := New(testItems("a", "b", "c"))
	before := p.Snapshot()

	v, err := p.Splice(map[int]item.Item{1: testItems("B")[0]})
	if err != nil {
		t.Fatalf("Splice: %v", err)
	}
	if v != 1 || p.Version() != 1 {
		t.Errorf("version = %d, want 1", v)
	}
	if name(before.Items[1]) != "b" {
		t.Error("old snapshot was mutated")
	}
	if got := name(p.Snapshot().Items[1]); got != "B" {
		t.Errorf("item 1 = %q, want B", got)
	}
	if p.Len() != 3 {
		t.Errorf("len = %d", p.Len())
	}
}

func TestSpliceRejectsOutOfRange(t *testing.T) {
	p := New(testItems("a"))
	if _, err := p.Splice(map[int]item.Item{0: testItems("x")[0], 5: testItems("y")[0]}); err == nil {
		t.Fatal("expected range error")
	}
	if name(p.Snapshot().Items[0]) != "a" || p.Version() != 0 {
		t.Error("failed splice must not write")
	}
}

func TestEmptySpliceKeepsVersion(t *testing.T) {
	p := New(testItems("a"))
	if v, err := p.Splice(nil); err != nil || v != 0 {
		t.Errorf("Splice(nil) = %d, %v", v, err)
	}
}

func TestReplace(t *testing.T) {
	p := New(testItems("a"))
	if v := p.Replace(testItems("x", "y")); v != 1 {
		t.Errorf("version = %d", v)
	}
	if p.Len() != 2 {
		t.Errorf("len = %d", p.Len())
	}
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	p := New(testItems("a", "b", "c", "d"))
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_, _ = p.Splice(map[int]item.Item{i % 4: testItems("w")[0]})
		}(i)
		go func() {
			defer wg.Done()
			s := p.Snapshot()
			for _, it := range s.Items {
				_ = name(it)
			}
		}()
	}
	wg.Wait()
	if p.Version() != 8 {
		t.Errorf("version = %d, want 8", p.Version())
	}
}
