//go:build cgo || windows || darwin

package main

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/gopxl/beep/v2"
	"go.uber.org/zap"
)

// silenceFile is 40 MPEG-1 Layer III frames at 44.1 kHz
const silenceFile = "testdata/silence.mp3"

var silenceDuration = 40 * 1152 / 44100.0

func newTestBeepMedia(t *testing.T) *beepMedia {
	t.Helper()
	m := NewMediaResource(zap.NewNop(), 0).(*beepMedia)
	t.Cleanup(func() { m.Close() })
	return m
}

// nextEvent waits for the next media event
func nextEvent(t *testing.T, events <-chan MediaEvent) MediaEvent {
	t.Helper()
	select {
	case ev := <-events:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for media event")
		return MediaEvent{}
	}
}

// assertNoEvent fails if an event arrives within a short window
func assertNoEvent(t *testing.T, events <-chan MediaEvent) {
	t.Helper()
	select {
	case ev := <-events:
		t.Errorf("Unexpected media event %s for %s", ev.Type, ev.Source)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBeepMediaBeforeLoad(t *testing.T) {
	m := newTestBeepMedia(t)

	if d := m.Duration(); !math.IsNaN(d) {
		t.Errorf("Expected NaN duration before load, got %v", d)
	}
	assertEqual(t, m.CurrentTime(), 0.0, "current time")
	assertEqual(t, m.Paused(), true, "paused")

	m.SetCurrentTime(10)
	assertEqual(t, m.CurrentTime(), 0.0, "seek without source")

	if err := m.Play(); err == nil {
		t.Error("Expected play without a source to fail")
	}
}

func TestBeepMediaLoad(t *testing.T) {
	m := newTestBeepMedia(t)

	m.Load(silenceFile)
	ev := nextEvent(t, m.Events())

	assertEqual(t, ev.Type, EventLoadedMetadata, "event")
	assertEqual(t, ev.Source, silenceFile, "source")
	if d := m.Duration(); math.Abs(d-silenceDuration) > 0.1 {
		t.Errorf("Expected duration near %v, got %v", silenceDuration, d)
	}
	assertEqual(t, m.CurrentTime(), 0.0, "current time")
}

func TestBeepMediaLoadMissingFile(t *testing.T) {
	m := newTestBeepMedia(t)
	missing := filepath.Join(t.TempDir(), "missing.mp3")

	m.Load(missing)
	ev := nextEvent(t, m.Events())

	assertEqual(t, ev.Type, EventError, "event")
	assertEqual(t, ev.Source, missing, "source")
	assertError(t, ev.Err, "missing file")
	if d := m.Duration(); !math.IsNaN(d) {
		t.Errorf("Expected NaN duration after failed load, got %v", d)
	}
}

func TestBeepMediaSetCurrentTime(t *testing.T) {
	m := newTestBeepMedia(t)
	m.Load(silenceFile)
	nextEvent(t, m.Events())

	tests := []struct {
		name    string
		seconds float64
		want    float64
	}{
		{"middle", 0.5, 0.5},
		{"negative clamps to start", -5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m.SetCurrentTime(tt.seconds)
			if got := m.CurrentTime(); math.Abs(got-tt.want) > 0.05 {
				t.Errorf("CurrentTime() = %v; want %v", got, tt.want)
			}
		})
	}

	t.Run("past the end stays within the track", func(t *testing.T) {
		m.SetCurrentTime(100)
		if got := m.CurrentTime(); got > m.Duration()+0.001 {
			t.Errorf("CurrentTime() = %v beyond duration %v", got, m.Duration())
		}
	})
}

func TestBeepMediaDropsSupersededDecode(t *testing.T) {
	m := newTestBeepMedia(t)
	m.Load(silenceFile)
	nextEvent(t, m.Events())

	m.mu.Lock()
	current := m.streamer
	stale := m.loadID - 1
	m.mu.Unlock()

	m.load(stale, silenceFile)
	m.loadFailed(stale, silenceFile, errNoSource)

	assertNoEvent(t, m.Events())
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.streamer != current {
		t.Error("Superseded decode replaced the current stream")
	}
}

func TestBeepMediaFinished(t *testing.T) {
	m := newTestBeepMedia(t)
	m.Load(silenceFile)
	nextEvent(t, m.Events())

	m.mu.Lock()
	m.ctrl = &beep.Ctrl{}
	id := m.loadID
	m.mu.Unlock()

	t.Run("stale callback", func(t *testing.T) {
		m.finished(id - 1)
		assertNoEvent(t, m.Events())
		assertEqual(t, m.Paused(), false, "controller kept")
	})

	t.Run("current callback", func(t *testing.T) {
		m.finished(id)
		ev := nextEvent(t, m.Events())
		assertEqual(t, ev.Type, EventEnded, "event")
		assertEqual(t, ev.Source, silenceFile, "source")
		assertEqual(t, m.Paused(), true, "controller released")
	})

	t.Run("repeated callback", func(t *testing.T) {
		m.finished(id)
		assertNoEvent(t, m.Events())
	})
}

func TestBeepMediaReloadReplacesSource(t *testing.T) {
	m := newTestBeepMedia(t)
	m.Load(silenceFile)
	nextEvent(t, m.Events())

	missing := filepath.Join(t.TempDir(), "2.mp3")
	m.Load(missing)

	if d := m.Duration(); !math.IsNaN(d) {
		t.Errorf("Expected NaN duration while the new source loads, got %v", d)
	}
	ev := nextEvent(t, m.Events())
	assertEqual(t, ev.Source, missing, "source")
	assertEqual(t, ev.Type, EventError, "event")
}
