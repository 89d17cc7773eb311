package cart

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"

	"bmxshop/internal/catalog"
	"bmxshop/internal/localstore"
)

func newTestStore(t *testing.T) (*Store, *localstore.Store) {
	t.Helper()
	storage, err := localstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("localstore.Open: %v", err)
	}
	return NewStore(storage, nil), storage
}

func product(id, name string, price float64) catalog.Product {
	return catalog.Product{ID: id, Name: name, Price: decimal.NewFromFloat(price)}
}

func TestAdd_MergesByID(t *testing.T) {
	s, _ := newTestStore(t)

	p := product("P", "BMX Freestyle Pro", 699.99)
	s.Add(p, 2)
	s.Add(p, 3)

	entries := s.Entries()
	if len(entries) != 1 {
		t.Fatalf("len = %d, want 1", len(entries))
	}
	if entries[0].Quantity != 5 {
		t.Fatalf("quantity = %d, want 5", entries[0].Quantity)
	}
}

func TestAdd_PreservesInsertionOrder(t *testing.T) {
	s, _ := newTestStore(t)

	s.Add(product("A", "a", 1), 1)
	s.Add(product("B", "b", 2), 1)
	s.Add(product("A", "a", 1), 1) // merge must not reorder
	s.Add(product("C", "c", 3), 1)

	var got []string
	for _, e := range s.Entries() {
		got = append(got, e.ProductID)
	}
	want := []string{"A", "B", "C"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestAdd_ClampsNonPositiveQuantity(t *testing.T) {
	s, _ := newTestStore(t)

	s.Add(product("P", "p", 10), 0)
	s.Add(product("Q", "q", 10), -3)

	for _, e := range s.Entries() {
		if e.Quantity < 1 {
			t.Fatalf("entry %s quantity = %d, want >= 1", e.ProductID, e.Quantity)
		}
	}
}

func TestSetQuantity(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add(product("P", "p", 10), 2)

	s.SetQuantity("P", 7)
	if got := s.Entries()[0].Quantity; got != 7 {
		t.Fatalf("quantity = %d, want 7", got)
	}

	// Zero removes the entry entirely.
	s.SetQuantity("P", 0)
	if s.Len() != 0 {
		t.Fatalf("len = %d after SetQuantity(P, 0), want 0", s.Len())
	}

	// Absent id is a no-op, not an error.
	s.Add(product("Q", "q", 5), 1)
	s.SetQuantity("missing", 3)
	if s.Len() != 1 {
		t.Fatalf("len = %d after no-op SetQuantity, want 1", s.Len())
	}
}

func TestSetQuantity_NegativeRemoves(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add(product("P", "p", 10), 2)

	s.SetQuantity("P", -1)
	if s.Len() != 0 {
		t.Fatalf("len = %d, want 0", s.Len())
	}
}

func TestRemoveAndClear(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add(product("A", "a", 1), 1)
	s.Add(product("B", "b", 2), 1)

	s.Remove("A")
	if s.Len() != 1 || s.Entries()[0].ProductID != "B" {
		t.Fatalf("entries after Remove = %+v", s.Entries())
	}

	s.Remove("A") // no-op
	if s.Len() != 1 {
		t.Fatalf("len = %d after duplicate Remove, want 1", s.Len())
	}

	s.Clear()
	if s.Len() != 0 {
		t.Fatalf("len = %d after Clear, want 0", s.Len())
	}
}

func TestTotal(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add(product("A", "a", 10), 2)
	s.Add(product("B", "b", 5), 1)

	if got := s.Total(); !got.Equal(decimal.NewFromInt(25)) {
		t.Fatalf("Total = %s, want 25", got)
	}

	if s.Units() != 3 {
		t.Fatalf("Units = %d, want 3", s.Units())
	}
}

func TestTotal_EmptyCartIsZero(t *testing.T) {
	s, _ := newTestStore(t)
	if got := s.Total(); !got.Equal(decimal.Zero) {
		t.Fatalf("Total = %s, want 0", got)
	}
}

func TestPersistence_RoundTrip(t *testing.T) {
	storage, err := localstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("localstore.Open: %v", err)
	}

	first := NewStore(storage, nil)
	first.Add(product("A", "BMX Race Elite", 899.99), 2)
	first.Add(product("B", "BMX Pro Helmet", 89.99), 1)
	first.SetQuantity("A", 3)

	second := NewStore(storage, nil)
	if diff := cmp.Diff(first.Entries(), second.Entries()); diff != "" {
		t.Fatalf("restored cart differs (-first +second):\n%s", diff)
	}
	if !second.Total().Equal(first.Total()) {
		t.Fatalf("restored total %s != %s", second.Total(), first.Total())
	}
}

func TestRestore_SwallowsCorruptSnapshot(t *testing.T) {
	storage, err := localstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("localstore.Open: %v", err)
	}
	if err := storage.Put(localstore.KeyCart, []byte("{not json")); err != nil {
		t.Fatalf("Put: %v", err)
	}

	s := NewStore(storage, nil)
	if s.Len() != 0 {
		t.Fatalf("len = %d for corrupt snapshot, want 0", s.Len())
	}

	// Store remains usable and overwrites the bad snapshot.
	s.Add(product("A", "a", 1), 1)
	if NewStore(storage, nil).Len() != 1 {
		t.Fatal("snapshot not rewritten after corrupt restore")
	}
}

func TestRestore_DropsInvalidEntries(t *testing.T) {
	storage, err := localstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("localstore.Open: %v", err)
	}
	snapshot := `[{"productId":"A","name":"a","price":"1","quantity":2},
	              {"productId":"B","name":"b","price":"1","quantity":0},
	              {"productId":"","name":"c","price":"1","quantity":1}]`
	if err := storage.Put(localstore.KeyCart, []byte(snapshot)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	s := NewStore(storage, nil)
	entries := s.Entries()
	if len(entries) != 1 || entries[0].ProductID != "A" {
		t.Fatalf("entries = %+v, want only A", entries)
	}
}

func TestReload_PicksUpExternalWrite(t *testing.T) {
	storage, err := localstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("localstore.Open: %v", err)
	}
	s := NewStore(storage, nil)
	s.Add(product("A", "a", 1), 1)

	// Another process rewrites the snapshot.
	other := NewStore(storage, nil)
	other.SetQuantity("A", 9)

	s.Reload()
	if got := s.Entries()[0].Quantity; got != 9 {
		t.Fatalf("quantity after Reload = %d, want 9", got)
	}
}
