package mztab

import "fmt"

// InvalidIDError is returned for an index that is not a positive integer.
type InvalidIDError struct {
	Kind string
	ID   int
}

func (e *InvalidIDError) Error() string {
	return fmt.Sprintf("%s index %d must be a positive integer", e.Kind, e.ID)
}

// Registry is an insertion ordered map of indexed elements of one kind.
// Elements are created on first use (Upsert) and dereferenced with Require,
// which fails for ids that were never declared.
type Registry[T any] struct {
	kind  string
	ids   []int
	items map[int]*T
	pos   map[int]int // id -> insertion index
	newFn func(id int) *T
	onAdd func(*T)
}

func newRegistry[T any](kind string, newFn func(int) *T, onAdd func(*T)) *Registry[T] {
	return &Registry[T]{
		kind:  kind,
		items: make(map[int]*T),
		pos:   make(map[int]int),
		newFn: newFn,
		onAdd: onAdd,
	}
}

// Kind returns the element name used in references, e.g. "assay".
func (r *Registry[T]) Kind() string { return r.kind }

// Len returns the number of registered elements.
func (r *Registry[T]) Len() int { return len(r.ids) }

// IDs returns the registered ids in insertion order.
func (r *Registry[T]) IDs() []int {
	out := make([]int, len(r.ids))
	copy(out, r.ids)
	return out
}

// All returns the registered elements in insertion order.
func (r *Registry[T]) All() []*T {
	out := make([]*T, 0, len(r.ids))
	for _, id := range r.ids {
		out = append(out, r.items[id])
	}
	return out
}

// Index returns the insertion position of id, which is also its position in
// the owning Metadata slice.
func (r *Registry[T]) Index(id int) (int, bool) {
	i, ok := r.pos[id]
	return i, ok
}

// Get looks up an element without creating it.
func (r *Registry[T]) Get(id int) (*T, bool) {
	item, ok := r.items[id]
	return item, ok
}

// Upsert returns the element registered under id, creating an empty one
// first when none exists.
func (r *Registry[T]) Upsert(id int) (*T, error) {
	if id <= 0 {
		return nil, &InvalidIDError{Kind: r.kind, ID: id}
	}
	if item, ok := r.items[id]; ok {
		return item, nil
	}
	item := r.newFn(id)
	r.insert(id, item)
	return item, nil
}

// Add registers a complete element under id.
func (r *Registry[T]) Add(id int, item *T) (*T, error) {
	if item == nil {
		return nil, fmt.Errorf("%s[%d]: nil element", r.kind, id)
	}
	if id <= 0 {
		return nil, &InvalidIDError{Kind: r.kind, ID: id}
	}
	if _, ok := r.items[id]; ok {
		return nil, fmt.Errorf("%s[%d] is already registered", r.kind, id)
	}
	r.insert(id, item)
	return item, nil
}

// Require returns the element registered under id or an UndefinedRefError.
func (r *Registry[T]) Require(id int) (*T, error) {
	if id <= 0 {
		return nil, &InvalidIDError{Kind: r.kind, ID: id}
	}
	item, ok := r.items[id]
	if !ok {
		return nil, &UndefinedRefError{Kind: r.kind, ID: id}
	}
	return item, nil
}

func (r *Registry[T]) insert(id int, item *T) {
	r.pos[id] = len(r.ids)
	r.ids = append(r.ids, id)
	r.items[id] = item
	if r.onAdd != nil {
		r.onAdd(item)
	}
}
