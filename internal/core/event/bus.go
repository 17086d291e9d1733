package event

// Bus delivers events to subscribed handlers synchronously, in subscription
// order. An event emitted from inside a handler is queued and delivered after
// the current event has reached every handler, so all handlers observe the
// same global order.
type Bus struct {
	handlers    []Handler
	pending     []Event
	dispatching bool
}

func NewBus() *Bus {
	return &Bus{
		handlers: make([]Handler, 0, 4),
		pending:  make([]Event, 0, 8),
	}
}

// Subscribe registers h. Handlers registered first see each event first.
func (b *Bus) Subscribe(h Handler) {
	if h == nil {
		return
	}
	b.handlers = append(b.handlers, h)
}

// HandleEvent lets a Bus be used wherever a Handler is expected.
func (b *Bus) HandleEvent(ev Event) { b.Emit(ev) }

// Emit delivers ev to every handler.
func (b *Bus) Emit(ev Event) {
	b.pending = append(b.pending, ev)
	if b.dispatching {
		return
	}
	b.dispatching = true
	for i := 0; i < len(b.pending); i++ {
		for _, h := range b.handlers {
			h.HandleEvent(b.pending[i])
		}
	}
	b.pending = b.pending[:0]
	b.dispatching = false
}
