//go:build !cgo && !windows && !darwin

package main

import (
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"
)

// AudioAvailable indicates whether this build can drive a sound device.
// Linux audio output needs cgo.
const AudioAvailable = false

// silentMedia tracks sources without a sound device. Every play request is
// rejected, which the player surfaces as a playback failure.
type silentMedia struct {
	mu     sync.Mutex
	events *emitter
	logger *zap.Logger
	source string
}

// NewMediaResource creates the media resource for this build
func NewMediaResource(logger *zap.Logger, _ time.Duration) MediaResource {
	return &silentMedia{events: newEmitter(), logger: logger}
}

func (m *silentMedia) Events() <-chan MediaEvent { return m.events.ch }

func (m *silentMedia) Load(source string) {
	m.mu.Lock()
	m.source = source
	m.mu.Unlock()

	go func() {
		if _, err := os.Stat(source); err != nil {
			m.logger.Error("media load failed", zap.String("source", source), zap.Error(err))
			m.events.emit(MediaEvent{Type: EventError, Source: source, Err: fmt.Errorf("failed to open audio: %w", err)})
			return
		}
		m.events.emit(MediaEvent{Type: EventLoadedMetadata, Source: source})
	}()
}

func (m *silentMedia) Play() error { return ErrAudioUnavailable }
func (m *silentMedia) Pause() {}
func (m *silentMedia) Paused() bool { return true }
func (m *silentMedia) CurrentTime() float64 { return 0 }
func (m *silentMedia) Duration() float64 { return math.NaN() }
func (m *silentMedia) SetCurrentTime(_ float64) {}

func (m *silentMedia) Close() error {
	m.events.close()
	return nil
}
