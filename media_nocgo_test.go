//go:build !cgo && !windows && !darwin

package main

import (
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"
)

func nextSilentEvent(t *testing.T, m MediaResource) MediaEvent {
	t.Helper()
	select {
	case ev := <-m.Events():
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("Timed out waiting for media event")
		return MediaEvent{}
	}
}

func TestSilentMedia(t *testing.T) {
	m := NewMediaResource(zap.NewNop(), 0)
	defer m.Close()

	t.Run("play is rejected", func(t *testing.T) {
		err := m.Play()
		if !errors.Is(err, ErrAudioUnavailable) {
			t.Errorf("Expected ErrAudioUnavailable, got %v", err)
		}
		assertEqual(t, m.Paused(), true, "paused")
	})

	t.Run("duration unknown", func(t *testing.T) {
		if d := m.Duration(); !math.IsNaN(d) {
			t.Errorf("Expected NaN duration, got %v", d)
		}
		m.SetCurrentTime(5)
		assertEqual(t, m.CurrentTime(), 0.0, "current time")
	})

	t.Run("load existing file", func(t *testing.T) {
		m.Load("testdata/silence.mp3")
		ev := nextSilentEvent(t, m)
		assertEqual(t, ev.Type, EventLoadedMetadata, "event")
		assertEqual(t, ev.Source, "testdata/silence.mp3", "source")
	})

	t.Run("load missing file", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "missing.mp3")
		m.Load(missing)
		ev := nextSilentEvent(t, m)
		assertEqual(t, ev.Type, EventError, "event")
		assertError(t, ev.Err, "missing file")
	})
}

func TestSilentMediaRejectionReachesPlayer(t *testing.T) {
	m := NewMediaResource(zap.NewNop(), 0)
	defer m.Close()
	p := NewPlayer(m, zap.NewNop(), 0)
	p.SetCatalog(testCatalog(1))

	p.HandlePlayResult(runCmd(t, p.TogglePlay()).(playResultMsg))

	assertEqual(t, p.IsPlaying(), false, "isPlaying")
	assertEqual(t, userMessage(p.LastError()), "Failed to play audio.", "user message")
}
