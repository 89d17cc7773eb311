// Package cart implements the client-side shopping cart: an ordered
// list of entries, unique by product id, mirrored to local storage
// after every mutation. Cart operations are total functions over local
// state; a persistence failure is logged and never surfaced to the
// caller.
package cart

import (
	"encoding/json"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bmxshop/internal/catalog"
	"bmxshop/internal/localstore"
)

// Entry is one cart line item, keyed by product id.
type Entry struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Quantity  int             `json:"quantity"`
	ImageURL  string          `json:"imageUrl,omitempty"`
	Category  string          `json:"category,omitempty"`
}

// Subtotal is the line total (price × quantity).
func (e Entry) Subtotal() decimal.Decimal {
	return e.Price.Mul(decimal.NewFromInt(int64(e.Quantity)))
}

// Store maintains the cart and keeps it synchronized with local
// storage under the "cart" key. Every mutation runs as a single
// locked critical section, so overlapping asynchronous completions
// cannot interleave a read-modify-write.
type Store struct {
	mu      sync.Mutex
	entries []Entry
	storage *localstore.Store
	logger  *zap.Logger
}

// NewStore restores the cart from local storage. An absent or
// unparsable snapshot yields an empty cart; restore failure is never
// fatal.
func NewStore(storage *localstore.Store, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Store{storage: storage, logger: logger}
	s.restore()
	return s
}

func (s *Store) restore() {
	data, ok, err := s.storage.Get(localstore.KeyCart)
	if err != nil {
		s.logger.Warn("cart restore failed", zap.Error(err))
		return
	}
	if !ok {
		return
	}
	var entries []Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		s.logger.Warn("discarding unparsable cart snapshot", zap.Error(err))
		return
	}
	// Drop any entry a buggy writer may have left below the floor.
	kept := entries[:0]
	for _, e := range entries {
		if e.Quantity >= 1 && e.ProductID != "" {
			kept = append(kept, e)
		}
	}
	s.entries = kept
}

// persist writes the full snapshot; called with the lock held.
func (s *Store) persist() {
	data, err := json.Marshal(s.entriesLocked())
	if err != nil {
		s.logger.Error("cart snapshot marshal failed", zap.Error(err))
		return
	}
	if err := s.storage.Put(localstore.KeyCart, data); err != nil {
		s.logger.Error("cart snapshot write failed", zap.Error(err))
	}
}

func (s *Store) entriesLocked() []Entry {
	if s.entries == nil {
		return []Entry{}
	}
	return s.entries
}

// Add merges quantity into an existing entry for the product, or
// appends a new entry. Quantities below one are treated as one.
func (s *Store) Add(p catalog.Product, quantity int) {
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ProductID == p.ID {
			s.entries[i].Quantity += quantity
			s.persist()
			return
		}
	}
	s.entries = append(s.entries, Entry{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Quantity:  quantity,
		ImageURL:  p.ImageURL,
		Category:  p.Category,
	})
	s.persist()
}

// SetQuantity replaces an entry's quantity. A quantity of zero or less
// removes the entry. Unknown product ids are a no-op.
func (s *Store) SetQuantity(productID string, quantity int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ProductID != productID {
			continue
		}
		if quantity <= 0 {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
		} else {
			s.entries[i].Quantity = quantity
		}
		s.persist()
		return
	}
}

// Remove deletes the entry for a product id; absent ids are a no-op.
func (s *Store) Remove(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.entries {
		if s.entries[i].ProductID == productID {
			s.entries = append(s.entries[:i], s.entries[i+1:]...)
			s.persist()
			return
		}
	}
}

// Clear empties the cart. Called after a successful checkout.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	s.persist()
}

// Entries returns a copy of the cart in insertion order.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of distinct products in the cart.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Units returns the total number of units across all entries.
func (s *Store) Units() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	for _, e := range s.entries {
		n += e.Quantity
	}
	return n
}

// Total recomputes the cart total on demand; it is never stored.
func (s *Store) Total() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, e := range s.entries {
		total = total.Add(e.Subtotal())
	}
	return total
}

// Reload re-reads the snapshot from local storage, replacing in-memory
// state. Used when the storage watcher reports an external write.
func (s *Store) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = nil
	s.restore()
}
