package sandbox

import "github.com/go-gl/mathgl/mgl64"

const (
	PICK EventType = iota
	KICK
	PAUSE
	RESUME
)

type EventType uint8

// Event interface - all events implement this
type Event interface {
	Type() EventType
}

// PickEvent is emitted when a world raycast hits a body
type PickEvent struct {
	Hit Hit
}

func (e PickEvent) Type() EventType { return PICK }

// KickEvent is emitted when a kick applied a force to a body
type KickEvent struct {
	Hit   Hit
	Force mgl64.Vec3
}

func (e KickEvent) Type() EventType { return KICK }

// Pause/Resume events, detected between two steps
type PauseEvent struct{}

func (e PauseEvent) Type() EventType { return PAUSE }

type ResumeEvent struct{}

func (e ResumeEvent) Type() EventType { return RESUME }

// EventListener - callback for events
type EventListener func(event Event)

// Events buffers events during a frame and dispatches them at the end
// of World.Step. The zero value is ready to use.
type Events struct {
	// Listeners by event type
	listeners map[EventType][]EventListener

	// Event buffer to send at flush
	buffer []Event
	// spare is swapped in as buffer during a flush
	spare []Event

	pauseTracked bool
	wasPaused    bool
}

func NewEvents() Events {
	return Events{
		listeners: make(map[EventType][]EventListener),
		buffer:    make([]Event, 0, 16),
	}
}

// Subscribe adds a listener for an event type
func (e *Events) Subscribe(eventType EventType, listener EventListener) {
	if e.listeners == nil {
		e.listeners = make(map[EventType][]EventListener)
	}
	e.listeners[eventType] = append(e.listeners[eventType], listener)
}

func (e *Events) emit(event Event) {
	e.buffer = append(e.buffer, event)
}

// processPauseEvents compares the pause flag with the one seen at the
// previous step. The first observation only records the state.
func (e *Events) processPauseEvents(paused bool) {
	if !e.pauseTracked {
		e.pauseTracked = true
		e.wasPaused = paused
		return
	}

	if paused && !e.wasPaused {
		e.emit(PauseEvent{})
	} else if !paused && e.wasPaused {
		e.emit(ResumeEvent{})
	}
	e.wasPaused = paused
}

// flush sends all buffered events. Events emitted by a listener during
// the flush are kept for the next one.
func (e *Events) flush() {
	pending := e.buffer
	e.buffer = e.spare[:0]

	for _, event := range pending {
		if listeners, ok := e.listeners[event.Type()]; ok {
			for _, listener := range listeners {
				listener(event)
			}
		}
	}
	e.spare = pending[:0]
}
