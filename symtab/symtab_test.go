package symtab

import "testing"

func TestInsertLookup(t *testing.T) {
	tbl := New()
	tbl.Insert(&Symbol{Name: "X", Address: 100, Kind: Code})

	sym, ok := tbl.Lookup("X")
	if !ok || sym.Address != 100 || sym.Kind != Code {
		t.Fatalf("got sym=%+v ok=%v", sym, ok)
	}

	if !tbl.Contains("X") {
		t.Error("X should be contained")
	}
	if tbl.Contains("Y") {
		t.Error("Y should not be contained")
	}
}

func TestInsertOverwrites(t *testing.T) {
	tbl := New()
	tbl.Insert(&Symbol{Name: "X", Address: 1, Kind: Data})
	tbl.Insert(&Symbol{Name: "X", Address: 2, Kind: Data})

	sym, _ := tbl.Lookup("X")
	if sym.Address != 2 {
		t.Errorf("expected overwrite, got address %d", sym.Address)
	}
	if tbl.count != 1 {
		t.Errorf("expected count 1 after overwrite, got %d", tbl.count)
	}
}

func TestResizeGrowsAndPreservesEntries(t *testing.T) {
	tbl := New()
	const n = 50
	for i := 0; i < n; i++ {
		name := string(rune('A' + i%26))
		name += string(rune('0' + i/26))
		tbl.Insert(&Symbol{Name: name, Address: i, Kind: Code})
	}
	if len(tbl.buckets) <= initialSize {
		t.Errorf("expected table to have grown past %d buckets, got %d", initialSize, len(tbl.buckets))
	}

	seen := 0
	tbl.ForEach(func(*Symbol) { seen++ })
	if seen != n {
		t.Errorf("ForEach visited %d symbols, want %d", seen, n)
	}
}
