package main

import "errors"

// MediaEventType identifies a notification from the media resource
type MediaEventType int

const (
	EventTimeUpdate MediaEventType = iota
	EventLoadedMetadata
	EventEnded
	EventError
)

func (t MediaEventType) String() string {
	switch t {
	case EventTimeUpdate:
		return "timeupdate"
	case EventLoadedMetadata:
		return "loadedmetadata"
	case EventEnded:
		return "ended"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// MediaEvent is delivered on MediaResource.Events
type MediaEvent struct {
	Type   MediaEventType
	Source string
	Err    error // set for EventError
}

// MediaResource is the single audio playback primitive owned by the Player.
// Implementations must be safe for use from multiple goroutines: play
// requests run inside commands while the update loop pauses and seeks.
type MediaResource interface {
	// Load binds a new source and starts loading it. The outcome is reported
	// as EventLoadedMetadata or EventError.
	Load(source string)
	// Play requests playback. It may be rejected.
	Play() error
	Pause()
	Paused() bool
	// CurrentTime and Duration are in seconds; Duration is NaN until
	// metadata has loaded.
	CurrentTime() float64
	Duration() float64
	SetCurrentTime(seconds float64)
	Events() <-chan MediaEvent
	Close() error
}

var ErrAudioUnavailable = errors.New("audio output is not available in this build")

// eventBuffer is the capacity of media event channels. Time updates are
// dropped when the buffer is full; lifecycle events are not.
const eventBuffer = 16

// emitter delivers events without blocking on time updates
type emitter struct {
	ch   chan MediaEvent
	done chan struct{}
}

func newEmitter() *emitter {
	return &emitter{
		ch:   make(chan MediaEvent, eventBuffer),
		done: make(chan struct{}),
	}
}

func (e *emitter) emit(ev MediaEvent) {
	if ev.Type == EventTimeUpdate {
		select {
		case e.ch <- ev:
		default:
		}
		return
	}
	select {
	case e.ch <- ev:
	case <-e.done:
	}
}

func (e *emitter) close() {
	select {
	case <-e.done:
	default:
		close(e.done)
	}
}
