package store

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	enumptr "github.com/QuarticCat/enum-ptr"
)

type node interface{ node() }

type (
	leaf   struct{ v int64 }
	branch struct {
		drops *atomic.Int32
		kids  int
	}
	hole struct{}
)

func (*leaf) node()   {}
func (*branch) node() {}
func (hole) node()    {}

func (b *branch) Drop() { b.drops.Add(1) }

var (
	leafCase   = enumptr.Ref[node, leaf]("Leaf")
	branchCase = enumptr.Ref[node, branch]("Branch", enumptr.Owning())
	holeCase   = enumptr.Unit[node, hole]("Hole")
	_          = enumptr.MustRegister[node](leafCase, branchCase, holeCase)
)

type testObserver struct {
	mu     sync.Mutex
	events []Event
}

func (o *testObserver) OnEvent(e Event) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *testObserver) types() []EventType {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]EventType, len(o.events))
	for i, e := range o.events {
		out[i] = e.Type
	}
	return out
}

func TestTable_Basic(t *testing.T) {
	table := NewTable[node]()

	h, err := table.Insert(&leaf{v: 1})
	if err != nil || h == 0 {
		t.Fatalf("Insert = %d, %v", h, err)
	}

	if name, ok := table.Variant(h); !ok || name != "Leaf" {
		t.Fatalf("Variant = %q, %v", name, ok)
	}

	ok := table.Project(h, func(v enumptr.View[node]) {
		if l, ok := leafCase.In(v); ok {
			l.v = 5
		}
	})
	if !ok {
		t.Fatal("Project failed")
	}

	table.Inspect(h, func(n node) {
		if n.(*leaf).v != 5 {
			t.Errorf("v = %d, want 5", n.(*leaf).v)
		}
	})

	v, err := table.Remove(h)
	if err != nil || v.(*leaf).v != 5 {
		t.Fatalf("Remove = %v, %v", v, err)
	}
	if table.Len() != 0 {
		t.Fatal("Expected Len() == 0 after Remove")
	}
	if _, err := table.Remove(h); err != ErrInvalidHandle {
		t.Errorf("second Remove = %v", err)
	}
}

func TestTable_InvalidHandles(t *testing.T) {
	table := NewTable[node]()
	for _, h := range []Handle{0, 1, 99} {
		if table.Inspect(h, func(node) {}) {
			t.Errorf("Inspect(%d) succeeded", h)
		}
		if err := table.Drop(h); err != ErrInvalidHandle {
			t.Errorf("Drop(%d) = %v", h, err)
		}
		if _, err := table.Replace(h, hole{}); err != ErrInvalidHandle {
			t.Errorf("Replace(%d) = %v", h, err)
		}
	}
}

func TestTable_DropRunsTeardownOnce(t *testing.T) {
	table := NewTable[node]()
	drops := new(atomic.Int32)

	h, _ := table.Insert(&branch{drops: drops})
	if err := table.Drop(h); err != nil {
		t.Fatal(err)
	}
	if err := table.Drop(h); err != ErrInvalidHandle {
		t.Errorf("second Drop = %v", err)
	}
	if drops.Load() != 1 {
		t.Errorf("drops = %d, want 1", drops.Load())
	}

	// Remove hands ownership back without teardown.
	h, _ = table.Insert(&branch{drops: drops})
	v, _ := table.Remove(h)
	if drops.Load() != 1 {
		t.Fatal("Remove ran teardown")
	}
	v.(enumptr.Dropper).Drop()
	if drops.Load() != 2 {
		t.Errorf("drops = %d, want 2", drops.Load())
	}
}

func TestTable_HandleReuse(t *testing.T) {
	table := NewTable[node]()
	h1, _ := table.Insert(hole{})
	table.Drop(h1)
	h2, _ := table.Insert(&leaf{})
	if h2 != h1 {
		t.Errorf("freed handle %d not reused, got %d", h1, h2)
	}
}

func TestTable_ReplaceAndUpdate(t *testing.T) {
	table := NewTable[node]()
	drops := new(atomic.Int32)
	h, _ := table.Insert(&branch{drops: drops, kids: 1})

	table.Update(h, func(n *node) { (*n).(*branch).kids = 2 })
	table.Project(h, func(v enumptr.View[node]) {
		if b, _ := enumptr.Borrow[branch](v); b.kids != 2 {
			t.Errorf("kids = %d", b.kids)
		}
	})

	old, err := table.Replace(h, hole{})
	if err != nil {
		t.Fatal(err)
	}
	if name, _ := table.Variant(h); name != "Hole" {
		t.Errorf("Variant = %s", name)
	}
	old.(enumptr.Dropper).Drop()
	table.Close()
	if drops.Load() != 1 {
		t.Errorf("drops = %d, want 1", drops.Load())
	}
}

func TestTable_Borrow(t *testing.T) {
	table := NewTable[node]()
	drops := new(atomic.Int32)
	h, _ := table.Insert(&branch{drops: drops})

	if !table.Borrow(h) {
		t.Fatal("Borrow failed")
	}
	if err := table.Drop(h); err != ErrOutstandingBorrow {
		t.Fatalf("Drop with borrow = %v", err)
	}
	table.Clear()
	if table.Len() != 1 {
		t.Fatal("Clear dropped a borrowed value")
	}
	if !table.ReturnBorrow(h) || table.ReturnBorrow(h) {
		t.Fatal("ReturnBorrow bookkeeping broken")
	}
	if err := table.Drop(h); err != nil {
		t.Fatal(err)
	}
	if drops.Load() != 1 {
		t.Errorf("drops = %d, want 1", drops.Load())
	}
}

func TestTable_Observer(t *testing.T) {
	table := NewTable[node]()
	obs := &testObserver{}
	table.Subscribe(obs)

	h, _ := table.Insert(&leaf{})
	table.Replace(h, hole{})
	table.Borrow(h)
	table.ReturnBorrow(h)
	table.Remove(h)

	want := []EventType{EventCreated, EventReplaced, EventBorrowed, EventBorrowReturned, EventRemoved}
	got := obs.types()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, got[i], want[i])
		}
	}
	if obs.events[0].Variant != "Leaf" || obs.events[1].Variant != "Hole" {
		t.Errorf("variants = %q, %q", obs.events[0].Variant, obs.events[1].Variant)
	}

	table.Unsubscribe(obs)
	table.Insert(hole{})
	if len(obs.types()) != len(want) {
		t.Fatal("Should not receive events after Unsubscribe")
	}

	var seen int
	cancel := table.Subscribe(ObserverFunc(func(Event) { seen++ }))
	table.Insert(hole{})
	cancel()
	table.Insert(hole{})
	if seen != 1 {
		t.Errorf("func observer saw %d events, want 1", seen)
	}
}

func TestTable_Close(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	table := NewTable[node](WithLogger(zap.New(core)), WithCapacity(4))
	drops := new(atomic.Int32)

	table.Insert(&branch{drops: drops})
	h, _ := table.Insert(&branch{drops: drops})
	table.Borrow(h)
	table.Insert(&leaf{})

	if err := table.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if drops.Load() != 2 {
		t.Errorf("drops = %d, want 2", drops.Load())
	}
	if _, err := table.Insert(hole{}); err != ErrClosed {
		t.Fatalf("Insert after Close = %v", err)
	}
	if err := table.Close(); err != nil {
		t.Fatal(err)
	}
	entries := logs.FilterMessage("store closed").All()
	if len(entries) != 1 || entries[0].ContextMap()["dropped"] != int64(3) {
		t.Errorf("log entries = %v", entries)
	}
}

// unlocked fails the test if the table lock is still held.
func unlocked[T any](t *testing.T, table *Table[T]) {
	t.Helper()
	done := make(chan int, 1)
	go func() { done <- table.Len() }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("table lock still held")
	}
}

func TestTable_ReplacePanicReleasesLock(t *testing.T) {
	table := NewTable[node]()
	h, _ := table.Insert(&leaf{v: 1})

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected nil payload panic")
			}
		}()
		table.Replace(h, (*leaf)(nil))
	}()
	unlocked(t, table)

	table.Inspect(h, func(n node) {
		if n.(*leaf).v != 1 {
			t.Errorf("slot changed after failed Replace: %v", n)
		}
	})
	if _, err := table.Replace(h, hole{}); err != nil {
		t.Fatalf("Replace after recovery: %v", err)
	}
}

func TestTable_InsertConsumed(t *testing.T) {
	table := NewTable[node]()

	var zero enumptr.Compact[node]
	if _, err := table.InsertCompact(&zero); err != ErrConsumed {
		t.Fatalf("InsertCompact(zero) = %v, want ErrConsumed", err)
	}

	c := enumptr.New[node](hole{})
	moved := c.Take()
	if _, err := table.InsertCompact(&c); err != ErrConsumed {
		t.Fatalf("InsertCompact(taken) = %v, want ErrConsumed", err)
	}
	unlocked(t, table)
	if table.Len() != 0 {
		t.Fatalf("Len = %d, want 0", table.Len())
	}

	h, err := table.InsertCompact(&moved)
	if err != nil || h != 1 || moved.Alive() {
		t.Fatalf("InsertCompact = %d, %v; alive %v", h, err, moved.Alive())
	}
	if err := table.Close(); err != nil {
		t.Fatal(err)
	}
}

func TestTable_Each(t *testing.T) {
	table := NewTable[node]()
	table.Insert(&leaf{v: 1})
	table.Insert(hole{})
	table.Insert(&leaf{v: 2})

	var sum int64
	var units int
	table.Each(func(_ Handle, v enumptr.View[node]) bool {
		if v.IsUnit() {
			units++
		}
		if l, ok := enumptr.Load[leaf](v); ok {
			sum += l.v
		}
		return true
	})
	if sum != 3 || units != 1 {
		t.Errorf("sum = %d, units = %d", sum, units)
	}

	calls := 0
	table.Each(func(Handle, enumptr.View[node]) bool {
		calls++
		return false
	})
	if calls != 1 {
		t.Errorf("Each did not stop: %d calls", calls)
	}
}

func TestTable_Footprint(t *testing.T) {
	table := NewTable[node]()
	for i := 0; i < 10; i++ {
		table.Insert(&leaf{v: int64(i)})
	}
	compact, natural := table.Footprint()
	if compact*2 != natural {
		t.Errorf("Footprint = %d, %d; want half", compact, natural)
	}
}

func TestTable_Concurrent(t *testing.T) {
	table := NewTable[node]()
	drops := new(atomic.Int32)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				h, err := table.Insert(&branch{drops: drops})
				if err != nil {
					t.Error(err)
					return
				}
				table.Update(h, func(n *node) { (*n).(*branch).kids++ })
				if err := table.Drop(h); err != nil {
					t.Error(err)
					return
				}
			}
		}()
	}
	wg.Wait()
	if drops.Load() != 800 || table.Len() != 0 {
		t.Errorf("drops = %d, len = %d", drops.Load(), table.Len())
	}
}

func TestEventTypeString(t *testing.T) {
	if EventBorrowReturned.String() != "borrow-returned" || EventType(99).String() != "unknown" {
		t.Error("EventType names")
	}
}
