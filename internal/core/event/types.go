package event

import "fmt"

// Kind is the closed set of events the core emits.
type Kind uint8

const (
	CorrectPiece Kind = iota + 1
	WrongPiece
	AssemblyComplete
	SessionTerminated
)

func (k Kind) String() string {
	switch k {
	case CorrectPiece:
		return "correct-piece"
	case WrongPiece:
		return "wrong-piece"
	case AssemblyComplete:
		return "assembly-complete"
	case SessionTerminated:
		return "session-terminated"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Event is a single emitted occurrence. Table is set for the three assembly
// kinds; Score is set for SessionTerminated.
type Event struct {
	Kind  Kind
	Table int
	Score int64
}

// Handler receives events in emission order.
type Handler interface {
	HandleEvent(Event)
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(Event)

func (f HandlerFunc) HandleEvent(ev Event) { f(ev) }
