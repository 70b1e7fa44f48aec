package platform

// EventKind identifies what happened to the window.
type EventKind int

const (
	// EventResize is sent when the framebuffer size changes, including to 0x0
	// on minimize.
	EventResize EventKind = iota
	// EventQuit is sent when the user asks to close the window.
	EventQuit
)

func (k EventKind) String() string {
	switch k {
	case EventResize:
		return "resize"
	case EventQuit:
		return "quit"
	}
	return "unknown"
}

type Event struct {
	Kind   EventKind
	Width  int
	Height int
}

// eventQueue buffers events raised by callbacks until the loop drains them.
// Callbacks run on the thread that polls, so no locking is needed.
type eventQueue struct {
	pending []Event
}

func (q *eventQueue) push(e Event) {
	// Back-to-back resizes collapse into the latest size.
	if n := len(q.pending); e.Kind == EventResize && n > 0 && q.pending[n-1].Kind == EventResize {
		q.pending[n-1] = e
		return
	}
	q.pending = append(q.pending, e)
}

func (q *eventQueue) drain() []Event {
	out := q.pending
	q.pending = nil
	return out
}
