package store

import (
	"errors"
	"sync"
	"unsafe"

	"go.uber.org/zap"

	enumptr "github.com/QuarticCat/enum-ptr"
)

var (
	ErrClosed            = errors.New("store closed")
	ErrInvalidHandle     = errors.New("invalid handle")
	ErrOutstandingBorrow = errors.New("cannot remove value with outstanding borrows")
	ErrConsumed          = errors.New("compact value already consumed")
)

// Table stores compact values of the union T behind handles. It is safe for
// concurrent use. Callbacks run with the table locked and must not call back
// into it.
type Table[T any] struct {
	logger    *zap.Logger
	entries   []entry[T]
	freeList  []Handle
	observers []*subscription
	mu        sync.RWMutex
	obsMu     sync.RWMutex
	closed    bool
}

type entry[T any] struct {
	val         enumptr.Compact[T]
	borrowCount uint32
	valid       bool
}

type subscription struct {
	o Observer
}

// Option configures a Table.
type Option func(*config)

type config struct {
	logger   *zap.Logger
	capacity int
}

// WithLogger sets the logger used for table lifecycle messages.
func WithLogger(l *zap.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithCapacity preallocates room for n values.
func WithCapacity(n int) Option {
	return func(c *config) { c.capacity = n }
}

// NewTable creates an empty table. T must have a registered layout.
func NewTable[T any](opts ...Option) *Table[T] {
	cfg := config{capacity: 64}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = enumptr.Logger()
	}
	enumptr.LayoutOf[T]()
	return &Table[T]{
		logger:   cfg.logger,
		entries:  make([]entry[T], 0, cfg.capacity),
		freeList: make([]Handle, 0, 16),
	}
}

// Insert constructs v in a new slot. On error the caller keeps ownership of v.
func (t *Table[T]) Insert(v T) (Handle, error) {
	c := enumptr.New(v)
	h, err := t.InsertCompact(&c)
	if err != nil {
		c.Destruct()
	}
	return h, err
}

// InsertCompact moves c into a new slot. On error c keeps its value.
func (t *Table[T]) InsertCompact(c *enumptr.Compact[T]) (Handle, error) {
	if !c.Alive() {
		return 0, ErrConsumed
	}
	name := c.VariantName()
	h, err := t.insert(c)
	if err != nil {
		return 0, err
	}
	t.notify(Event{Type: EventCreated, Handle: h, Variant: name})
	return h, nil
}

func (t *Table[T]) insert(c *enumptr.Compact[T]) (Handle, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return 0, ErrClosed
	}

	var h Handle
	if n := len(t.freeList); n > 0 {
		h = t.freeList[n-1]
		t.freeList = t.freeList[:n-1]
	} else {
		t.entries = append(t.entries, entry[T]{})
		h = Handle(len(t.entries))
	}
	e := &t.entries[h-1]
	e.val = c.Take()
	e.valid = true
	return h, nil
}

// lookup returns the live entry for h. The caller holds t.mu.
func (t *Table[T]) lookup(h Handle) *entry[T] {
	if h == 0 || int(h) > len(t.entries) {
		return nil
	}
	e := &t.entries[h-1]
	if !e.valid {
		return nil
	}
	return e
}

// Inspect calls fn with a temporary copy of the value at h.
func (t *Table[T]) Inspect(h Handle, fn func(T)) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e := t.lookup(h)
	if e == nil {
		return false
	}
	e.val.InspectRef(fn)
	return true
}

// Project calls fn with a view of the value at h.
func (t *Table[T]) Project(h Handle, fn func(enumptr.View[T])) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e := t.lookup(h)
	if e == nil {
		return false
	}
	fn(e.val.Project())
	return true
}

// Update calls fn with a mutable temporary copy of the value at h. See
// Compact.InspectMut for the changes fn may make.
func (t *Table[T]) Update(h Handle, fn func(*T)) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.lookup(h)
	if e == nil {
		return false
	}
	e.val.InspectMut(fn)
	return true
}

// Variant returns the name of the variant stored at h.
func (t *Table[T]) Variant(h Handle) (string, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	e := t.lookup(h)
	if e == nil {
		return "", false
	}
	return e.val.VariantName(), true
}

// Replace stores v at h and returns the previous value, whose ownership
// passes to the caller. If v cannot be encoded the slot keeps its value.
func (t *Table[T]) Replace(h Handle, v T) (T, error) {
	old, name, err := t.replace(h, v)
	if err != nil {
		return old, err
	}
	t.notify(Event{Type: EventReplaced, Handle: h, Variant: name})
	return old, nil
}

func (t *Table[T]) replace(h Handle, v T) (old T, name string, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.lookup(h)
	if e == nil {
		return old, "", ErrInvalidHandle
	}
	old = e.val.Replace(v)
	return old, e.val.VariantName(), nil
}

// take releases the slot at h and moves its value out.
func (t *Table[T]) take(h Handle) (enumptr.Compact[T], error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.lookup(h)
	if e == nil {
		return enumptr.Compact[T]{}, ErrInvalidHandle
	}
	if e.borrowCount > 0 {
		return enumptr.Compact[T]{}, ErrOutstandingBorrow
	}
	e.valid = false
	t.freeList = append(t.freeList, h)
	return e.val.Take(), nil
}

// Remove frees h and returns its value. The caller takes over its teardown.
func (t *Table[T]) Remove(h Handle) (T, error) {
	c, err := t.take(h)
	if err != nil {
		var zero T
		return zero, err
	}
	name := c.VariantName()
	v := c.Destruct()
	t.notify(Event{Type: EventRemoved, Handle: h, Variant: name})
	return v, nil
}

// Drop frees h and tears its value down.
func (t *Table[T]) Drop(h Handle) error {
	c, err := t.take(h)
	if err != nil {
		return err
	}
	name := c.VariantName()
	c.Drop()
	t.notify(Event{Type: EventDropped, Handle: h, Variant: name})
	return nil
}

// Borrow marks h as borrowed. Borrowed handles cannot be removed or dropped.
func (t *Table[T]) Borrow(h Handle) bool {
	name, ok := t.borrow(h, true)
	if ok {
		t.notify(Event{Type: EventBorrowed, Handle: h, Variant: name})
	}
	return ok
}

// ReturnBorrow releases one borrow of h.
func (t *Table[T]) ReturnBorrow(h Handle) bool {
	name, ok := t.borrow(h, false)
	if ok {
		t.notify(Event{Type: EventBorrowReturned, Handle: h, Variant: name})
	}
	return ok
}

func (t *Table[T]) borrow(h Handle, acquire bool) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.lookup(h)
	if e == nil {
		return "", false
	}
	if acquire {
		e.borrowCount++
	} else {
		if e.borrowCount == 0 {
			return "", false
		}
		e.borrowCount--
	}
	return e.val.VariantName(), true
}

// Len returns the number of live values.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	count := 0
	for i := range t.entries {
		if t.entries[i].valid {
			count++
		}
	}
	return count
}

// Each calls fn with a view of every live value until fn returns false.
func (t *Table[T]) Each(fn func(Handle, enumptr.View[T]) bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for i := range t.entries {
		if t.entries[i].valid {
			if !fn(Handle(i+1), t.entries[i].val.Project()) {
				break
			}
		}
	}
}

// Footprint reports the bytes used by the slots and the bytes the same
// values would take as plain interface values.
func (t *Table[T]) Footprint() (compact, natural uintptr) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var (
		c    enumptr.Compact[T]
		zero T
	)
	n := uintptr(len(t.entries))
	return n * unsafe.Sizeof(c), n * unsafe.Sizeof(zero)
}

// Clear drops every value and keeps the table open. Borrowed values are
// kept.
func (t *Table[T]) Clear() {
	// Collect handles first to avoid holding the lock during Drop.
	var handles []Handle
	t.mu.RLock()
	for i := range t.entries {
		if t.entries[i].valid {
			handles = append(handles, Handle(i+1))
		}
	}
	t.mu.RUnlock()

	for _, h := range handles {
		t.Drop(h)
	}
}

// Close drops every value, borrowed or not, and stops accepting inserts.
func (t *Table[T]) Close() error {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	entries := t.entries
	t.entries = nil
	t.freeList = nil
	t.mu.Unlock()

	dropped := 0
	for i := range entries {
		e := &entries[i]
		if !e.valid {
			continue
		}
		name := e.val.VariantName()
		e.valid = false
		e.val.Drop()
		dropped++
		t.notify(Event{Type: EventDropped, Handle: Handle(i + 1), Variant: name})
	}
	t.logger.Debug("store closed", zap.Int("dropped", dropped))
	return nil
}

// Subscribe adds an observer for lifecycle events and returns a function
// that removes it.
func (t *Table[T]) Subscribe(o Observer) (cancel func()) {
	s := &subscription{o: o}
	t.obsMu.Lock()
	t.observers = append(t.observers, s)
	t.obsMu.Unlock()

	return func() {
		t.obsMu.Lock()
		defer t.obsMu.Unlock()
		for i, obs := range t.observers {
			if obs == s {
				t.observers = append(t.observers[:i], t.observers[i+1:]...)
				return
			}
		}
	}
}

// Unsubscribe removes an observer. o must be comparable; observers built
// from ObserverFunc are removed with the function returned by Subscribe.
func (t *Table[T]) Unsubscribe(o Observer) {
	t.obsMu.Lock()
	defer t.obsMu.Unlock()
	for i, obs := range t.observers {
		if obs.o == o {
			t.observers = append(t.observers[:i], t.observers[i+1:]...)
			return
		}
	}
}

func (t *Table[T]) notify(e Event) {
	t.obsMu.RLock()
	defer t.obsMu.RUnlock()
	for _, s := range t.observers {
		s.o.OnEvent(e)
	}
}
