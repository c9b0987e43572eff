package core

// Event represents a game event
type Event struct {
	Type    EventType
	Tick    uint64
	Actor   ActorID
	Payload interface{}
}

type EventType uint16

const (
	EvtBuildingPlaced EventType = iota
	EvtBuildingRemoved
	EvtUnitSpawned
	EvtUnitMoved
	EvtUnitRemoved
	EvtUnitCrushed
)

var eventNames = map[EventType]string{
	EvtBuildingPlaced:  "building_placed",
	EvtBuildingRemoved: "building_removed",
	EvtUnitSpawned:     "unit_spawned",
	EvtUnitMoved:       "unit_moved",
	EvtUnitRemoved:     "unit_removed",
	EvtUnitCrushed:     "unit_crushed",
}

func (t EventType) String() string {
	if n, ok := eventNames[t]; ok {
		return n
	}
	return "unknown"
}

// EventBus queues events and dispatches them in emission order at frame end
type EventBus struct {
	listeners map[EventType][]EventHandler
	queue     []Event
}

type EventHandler func(e Event)

func NewEventBus() *EventBus {
	return &EventBus{
		listeners: make(map[EventType][]EventHandler),
	}
}

// On registers a handler for an event type. Handlers run in registration order.
func (eb *EventBus) On(t EventType, h EventHandler) {
	eb.listeners[t] = append(eb.listeners[t], h)
}

// Emit queues an event for dispatch
func (eb *EventBus) Emit(e Event) {
	eb.queue = append(eb.queue, e)
}

// Pending returns the number of queued events
func (eb *EventBus) Pending() int {
	return len(eb.queue)
}

// Dispatch processes all queued events, including ones emitted by handlers
// while dispatching, and returns how many ran
func (eb *EventBus) Dispatch() int {
	n := 0
	for ; n < len(eb.queue); n++ {
		e := eb.queue[n]
		for _, h := range eb.listeners[e.Type] {
			h(e)
		}
	}
	eb.queue = eb.queue[:0]
	return n
}
