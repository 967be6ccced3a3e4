//go:build cgo || windows || darwin

package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"go.uber.org/zap"
)

// AudioAvailable indicates whether this build can drive a sound device
const AudioAvailable = true

var errNoSource = errors.New("no source loaded")

// beepMedia plays MP3 files through the system speaker using beep.
type beepMedia struct {
	mu     sync.Mutex
	events *emitter
	logger *zap.Logger

	updateInterval time.Duration
	sampleRate     beep.SampleRate
	speakerReady   bool

	source   string
	loadID   uint64 // incremented per Load, used to drop stale callbacks
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	ticker   chan struct{} // closed to stop time updates
}

// NewMediaResource creates the media resource for this build.
// updateInterval is the time update cadence while playing.
func NewMediaResource(logger *zap.Logger, updateInterval time.Duration) MediaResource {
	return &beepMedia{
		events:         newEmitter(),
		logger:         logger,
		updateInterval: updateInterval,
		sampleRate:     beep.SampleRate(44100),
	}
}

func (m *beepMedia) Events() <-chan MediaEvent { return m.events.ch }

func (m *beepMedia) Load(source string) {
	m.mu.Lock()
	m.closeTrackLocked()
	m.loadID++
	id := m.loadID
	m.source = source
	m.mu.Unlock()

	go m.load(id, source)
}

func (m *beepMedia) load(id uint64, source string) {
	f, err := os.Open(source)
	if err != nil {
		m.loadFailed(id, source, fmt.Errorf("failed to open audio: %w", err))
		return
	}

	streamer, format, err := mp3.Decode(f)
	if err != nil {
		f.Close()
		m.loadFailed(id, source, fmt.Errorf("failed to decode audio: %w", err))
		return
	}

	m.mu.Lock()
	if id != m.loadID {
		// Another Load superseded this one while decoding
		m.mu.Unlock()
		streamer.Close()
		return
	}
	m.streamer = streamer
	m.format = format
	m.mu.Unlock()

	m.events.emit(MediaEvent{Type: EventLoadedMetadata, Source: source})
}

func (m *beepMedia) loadFailed(id uint64, source string, err error) {
	m.mu.Lock()
	stale := id != m.loadID
	m.mu.Unlock()
	if stale {
		return
	}
	m.logger.Error("media load failed", zap.String("source", source), zap.Error(err))
	m.events.emit(MediaEvent{Type: EventError, Source: source, Err: err})
}

// initSpeakerLocked initializes the speaker on first use.
func (m *beepMedia) initSpeakerLocked() error {
	if m.speakerReady {
		return nil
	}
	if err := speaker.Init(m.sampleRate, m.sampleRate.N(time.Second/10)); err != nil {
		return err
	}
	m.speakerReady = true
	return nil
}

func (m *beepMedia) Play() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.streamer == nil {
		return errNoSource
	}
	if err := m.initSpeakerLocked(); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}

	if m.ctrl == nil {
		resampled := beep.Resample(4, m.format.SampleRate, m.sampleRate, m.streamer)
		m.ctrl = &beep.Ctrl{Streamer: resampled, Paused: false}
		id := m.loadID
		speaker.Play(beep.Seq(m.ctrl, beep.Callback(func() {
			// Run outside the speaker lock
			go m.finished(id)
		})))
	} else {
		speaker.Lock()
		m.ctrl.Paused = false
		speaker.Unlock()
	}

	m.startTickerLocked()
	return nil
}

// finished handles the end of a stream. Callbacks from replaced sources are
// ignored.
func (m *beepMedia) finished(id uint64) {
	m.mu.Lock()
	if id != m.loadID || m.ctrl == nil {
		m.mu.Unlock()
		return
	}
	m.ctrl = nil
	m.stopTickerLocked()
	source := m.source
	m.mu.Unlock()

	m.events.emit(MediaEvent{Type: EventEnded, Source: source})
}

func (m *beepMedia) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctrl != nil {
		speaker.Lock()
		m.ctrl.Paused = true
		speaker.Unlock()
	}
	m.stopTickerLocked()
}

func (m *beepMedia) Paused() bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.ctrl == nil {
		return true
	}
	speaker.Lock()
	paused := m.ctrl.Paused
	speaker.Unlock()
	return paused
}

func (m *beepMedia) CurrentTime() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.streamer == nil {
		return 0
	}
	speaker.Lock()
	pos := m.streamer.Position()
	speaker.Unlock()
	return m.format.SampleRate.D(pos).Seconds()
}

func (m *beepMedia) Duration() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.streamer == nil {
		return math.NaN()
	}
	return m.format.SampleRate.D(m.streamer.Len()).Seconds()
}

func (m *beepMedia) SetCurrentTime(seconds float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.streamer == nil {
		return
	}
	samples := m.format.SampleRate.N(time.Duration(seconds * float64(time.Second)))
	if samples < 0 {
		samples = 0
	}
	if n := m.streamer.Len(); samples > n {
		samples = n
	}

	speaker.Lock()
	err := m.streamer.Seek(samples)
	speaker.Unlock()
	if err != nil {
		m.logger.Warn("seek failed", zap.String("source", m.source), zap.Error(err))
	}
}

func (m *beepMedia) Close() error {
	m.mu.Lock()
	m.closeTrackLocked()
	m.loadID++
	m.mu.Unlock()

	m.events.close()
	return nil
}

// closeTrackLocked detaches and releases the current stream.
// Detaching the controller's streamer ends the speaker sequence; the
// resulting callback is dropped because loadID moves on.
func (m *beepMedia) closeTrackLocked() {
	m.stopTickerLocked()
	if m.ctrl != nil {
		speaker.Lock()
		m.ctrl.Paused = true
		m.ctrl.Streamer = nil
		speaker.Unlock()
		m.ctrl = nil
	}
	if m.streamer != nil {
		if err := m.streamer.Close(); err != nil {
			m.logger.Debug("closing stream", zap.Error(err))
		}
		m.streamer = nil
	}
}

func (m *beepMedia) startTickerLocked() {
	if m.ticker != nil || m.updateInterval <= 0 {
		return
	}
	stop := make(chan struct{})
	m.ticker = stop
	source := m.source

	go func() {
		t := time.NewTicker(m.updateInterval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				m.events.emit(MediaEvent{Type: EventTimeUpdate, Source: source})
			}
		}
	}()
}

func (m *beepMedia) stopTickerLocked() {
	if m.ticker != nil {
		close(m.ticker)
		m.ticker = nil
	}
}
