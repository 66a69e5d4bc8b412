// internal/domain/cart/store.go
package cart

import (
	"sync"
	"time"

	"github.com/your-org/storefront/internal/domain/catalog"
)

// Observer is called with the new cart contents after every mutation
type Observer func(Snapshot)

type subscription struct {
	id int
	fn Observer
}

// Store is the single mutation surface for one cart. Line items are unique
// per variant ID and keep the order in which they were first added.
type Store struct {
	mu       sync.Mutex
	items    []LineItem
	index    map[string]int
	currency string

	observers []subscription
	nextSubID int

	now func() time.Time
}

// NewStore creates an empty cart; currency is used for the zero total
func NewStore(currency string) *Store {
	return &Store{
		index:    make(map[string]int),
		currency: currency,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// NewStoreFromItems restores a cart from persisted line items. Duplicate
// variant IDs are folded into the first occurrence.
func NewStoreFromItems(currency string, items []LineItem) *Store {
	s := NewStore(currency)
	s.mergeLocked(items)
	return s
}

// Subscribe registers an observer and returns a function that removes it
func (s *Store) Subscribe(fn Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextSubID++
	id := s.nextSubID
	s.observers = append(s.observers, subscription{id: id, fn: fn})

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.observers {
			if sub.id == id {
				s.observers = append(s.observers[:i], s.observers[i+1:]...)
				return
			}
		}
	}
}

// AddItem adds quantity of a variant. An existing line keeps its snapshotted
// price and title and only has its quantity increased.
func (s *Store) AddItem(product *catalog.Product, variant *catalog.Variant, quantity int) error {
	if variant == nil {
		return catalog.ErrProductUnresolvable
	}
	if !variant.AvailableForSale {
		return ErrUnavailableVariant
	}
	if quantity <= 0 {
		return ErrInvalidQuantity
	}

	s.mu.Lock()
	if idx, ok := s.index[variant.ID]; ok {
		s.items[idx].Quantity += quantity
	} else {
		s.index[variant.ID] = len(s.items)
		s.items = append(s.items, LineItem{
			VariantID:       variant.ID,
			VariantTitle:    variant.Title,
			Product:         refFor(product),
			UnitPrice:       variant.Price,
			Quantity:        quantity,
			SelectedOptions: append([]catalog.SelectedOption(nil), variant.SelectedOptions...),
			AddedAt:         s.now(),
		})
	}
	snap, observers := s.snapshotLocked()
	s.mu.Unlock()

	notify(observers, snap)
	return nil
}

// MergeItems folds existing line items into the cart, summing quantities of
// variants already present and appending the rest with their own snapshots.
func (s *Store) MergeItems(items []LineItem) {
	s.mu.Lock()
	if !s.mergeLocked(items) {
		s.mu.Unlock()
		return
	}
	snap, observers := s.snapshotLocked()
	s.mu.Unlock()

	notify(observers, snap)
}

// RemoveItem drops the line for variantID. It reports whether anything was removed.
func (s *Store) RemoveItem(variantID string) bool {
	s.mu.Lock()
	if !s.removeLocked(variantID) {
		s.mu.Unlock()
		return false
	}
	snap, observers := s.snapshotLocked()
	s.mu.Unlock()

	notify(observers, snap)
	return true
}

// SetQuantity replaces a line's quantity; zero or less removes the line.
// It reports whether the line existed.
func (s *Store) SetQuantity(variantID string, quantity int) bool {
	s.mu.Lock()
	idx, ok := s.index[variantID]
	if !ok {
		s.mu.Unlock()
		return false
	}
	if quantity <= 0 {
		s.removeLocked(variantID)
	} else {
		s.items[idx].Quantity = quantity
	}
	snap, observers := s.snapshotLocked()
	s.mu.Unlock()

	notify(observers, snap)
	return true
}

// Clear empties the cart
func (s *Store) Clear() {
	s.mu.Lock()
	s.items = nil
	s.index = make(map[string]int)
	snap, observers := s.snapshotLocked()
	s.mu.Unlock()

	notify(observers, snap)
}

// TotalItemCount sums quantities across all lines
func (s *Store) TotalItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalItemCountLocked()
}

// TotalPrice sums unit price times quantity. Lines in different currencies
// yield ErrCurrencyMismatch rather than a meaningless number.
func (s *Store) TotalPrice() (catalog.Money, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalPriceLocked()
}

// Items returns a copy of the line items in cart order
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.itemsLocked()
}

// Get returns a copy of the line for variantID
func (s *Store) Get(variantID string) (LineItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.index[variantID]
	if !ok {
		return LineItem{}, false
	}
	return s.items[idx].clone(), true
}

// Snapshot returns the rendered view of the cart
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap, _ := s.snapshotLocked()
	return snap
}

func (s *Store) mergeLocked(items []LineItem) bool {
	merged := false
	for _, item := range items {
		if item.Quantity <= 0 {
			continue
		}
		merged = true
		if idx, ok := s.index[item.VariantID]; ok {
			s.items[idx].Quantity += item.Quantity
			continue
		}
		s.index[item.VariantID] = len(s.items)
		s.items = append(s.items, item.clone())
	}
	return merged
}

func (s *Store) removeLocked(variantID string) bool {
	idx, ok := s.index[variantID]
	if !ok {
		return false
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	delete(s.index, variantID)
	for i := idx; i < len(s.items); i++ {
		s.index[s.items[i].VariantID] = i
	}
	return true
}

func (s *Store) itemsLocked() []LineItem {
	out := make([]LineItem, len(s.items))
	for i, item := range s.items {
		out[i] = item.clone()
	}
	return out
}

func (s *Store) totalItemCountLocked() int {
	total := 0
	for _, item := range s.items {
		total += item.Quantity
	}
	return total
}

func (s *Store) totalPriceLocked() (catalog.Money, error) {
	if len(s.items) == 0 {
		return catalog.Zero(s.currency), nil
	}

	total := catalog.Zero(s.items[0].UnitPrice.CurrencyCode)
	for _, item := range s.items {
		var err error
		if total, err = total.Add(item.LineTotal()); err != nil {
			return catalog.Money{}, err
		}
	}
	return total, nil
}

// snapshotLocked builds the snapshot and copies the observer list so that
// observers can run after the lock is released
func (s *Store) snapshotLocked() (Snapshot, []Observer) {
	snap := Snapshot{
		Items:          s.itemsLocked(),
		ItemCount:      len(s.items),
		TotalItemCount: s.totalItemCountLocked(),
	}
	if total, err := s.totalPriceLocked(); err == nil {
		snap.TotalPrice = &total
	} else {
		snap.CurrencyMismatch = true
	}

	observers := make([]Observer, len(s.observers))
	for i, sub := range s.observers {
		observers[i] = sub.fn
	}
	return snap, observers
}

func notify(observers []Observer, snap Snapshot) {
	for _, fn := range observers {
		fn(snap)
	}
}

func refFor(p *catalog.Product) ProductRef {
	if p == nil {
		return ProductRef{}
	}
	ref := ProductRef{ID: p.ID, Handle: p.Handle, Title: p.Title}
	if img := p.PrimaryImage(); img != nil {
		ref.ImageURL = img.URL
	}
	return ref
}
