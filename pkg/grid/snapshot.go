package grid

import (
	iradix "github.com/hashicorp/go-immutable-radix/v2"
)

// Snapshot is an immutable layout: the items in layout order plus an id
// index. Updates return a new Snapshot and never change the receiver, so a
// snapshot can be shared with readers while a gesture builds the next one.
type Snapshot struct {
	items Layout
	index *iradix.Tree[int]
}

// NewSnapshot indexes a deep copy of l. When ids repeat, lookups resolve to
// the last occurrence.
func NewSnapshot(l Layout) *Snapshot {
	items := CloneLayout(l)
	return &Snapshot{items: items, index: buildIndex(items)}
}

func buildIndex(l Layout) *iradix.Tree[int] {
	txn := iradix.New[int]().Txn()
	for i, it := range l {
		txn.Insert([]byte(it.I), i)
	}
	return txn.Commit()
}

// Len returns the number of items.
func (s *Snapshot) Len() int { return len(s.items) }

// Get returns a copy of the item with the given id.
func (s *Snapshot) Get(id string) (Item, bool) {
	i, ok := s.index.Get([]byte(id))
	if !ok {
		return Item{}, false
	}
	return s.items[i].Clone(), true
}

// Has reports whether an item with the given id exists.
func (s *Snapshot) Has(id string) bool {
	_, ok := s.index.Get([]byte(id))
	return ok
}

// Layout returns a deep copy of the items in layout order.
func (s *Snapshot) Layout() Layout { return CloneLayout(s.items) }

// Update applies fn to a clone of the item with the given id and returns the
// resulting snapshot and item. The index is shared with the receiver since
// ids and positions do not change; fn must not change the id.
func (s *Snapshot) Update(id string, fn func(*Item)) (*Snapshot, Item, bool) {
	i, ok := s.index.Get([]byte(id))
	if !ok {
		return s, Item{}, false
	}
	items := make(Layout, len(s.items))
	copy(items, s.items)
	it := items[i].Clone()
	fn(&it)
	it.I = id
	items[i] = it
	return &Snapshot{items: items, index: s.index}, it.Clone(), true
}

// Put inserts it, replacing an existing item with the same id in place or
// appending it otherwise.
func (s *Snapshot) Put(it Item) *Snapshot {
	if i, ok := s.index.Get([]byte(it.I)); ok {
		items := make(Layout, len(s.items))
		copy(items, s.items)
		items[i] = it.Clone()
		return &Snapshot{items: items, index: s.index}
	}
	items := make(Layout, len(s.items), len(s.items)+1)
	copy(items, s.items)
	items = append(items, it.Clone())
	index, _, _ := s.index.Insert([]byte(it.I), len(items)-1)
	return &Snapshot{items: items, index: index}
}

// Delete removes the item with the given id.
func (s *Snapshot) Delete(id string) (*Snapshot, bool) {
	i, ok := s.index.Get([]byte(id))
	if !ok {
		return s, false
	}
	items := make(Layout, 0, len(s.items)-1)
	items = append(items, s.items[:i]...)
	items = append(items, s.items[i+1:]...)
	return &Snapshot{items: items, index: buildIndex(items)}, true
}
