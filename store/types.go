package store

// Handle identifies a value in a table.
// Handle 0 is reserved and always invalid.
type Handle uint32

// EventType names a lifecycle change of a stored value.
type EventType uint8

const (
	EventCreated EventType = iota
	EventDropped
	EventRemoved
	EventReplaced
	EventBorrowed
	EventBorrowReturned
)

var eventNames = [...]string{
	EventCreated:        "created",
	EventDropped:        "dropped",
	EventRemoved:        "removed",
	EventReplaced:       "replaced",
	EventBorrowed:       "borrowed",
	EventBorrowReturned: "borrow-returned",
}

func (e EventType) String() string {
	if int(e) < len(eventNames) {
		return eventNames[e]
	}
	return "unknown"
}

// Event describes one lifecycle change. Variant is the name of the variant
// held after the change, or before it for drops and removals.
type Event struct {
	Variant string
	Handle  Handle
	Type    EventType
}

// Observer receives notifications about lifecycle events.
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(e Event) { f(e) }
