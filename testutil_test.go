package main

import (
	"image"
	"image/color"
	"math"
	"sync"
	"testing"

	"github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// generateTestImage creates a simple test image with specified dimensions and colors
// Useful for testing artwork processing functions
func generateTestImage(width, height int, fillColor color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// Fill image with the specified color
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, fillColor)
		}
	}

	return img
}

// generateGradientImage creates a gradient test image for color extraction testing
func generateGradientImage(width, height int, startColor, endColor color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for y := 0; y < height; y++ {
		ratio := float64(y) / float64(height)
		r := uint8(float64(startColor.R)*(1-ratio) + float64(endColor.R)*ratio)
		g := uint8(float64(startColor.G)*(1-ratio) + float64(endColor.G)*ratio)
		b := uint8(float64(startColor.B)*(1-ratio) + float64(endColor.B)*ratio)

		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{r, g, b, 255})
		}
	}

	return img
}

// assertError is a test helper that checks if an error occurred and fails the test if not
func assertError(t *testing.T, err error, msg string) {
	t.Helper()
	if err == nil {
		t.Errorf("Expected error: %s, got nil", msg)
	}
}

// assertNoError is a test helper that fails the test if an error occurred
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
}

// assertEqual is a generic test helper for comparing values
func assertEqual(t *testing.T, got, want interface{}, msg string) {
	t.Helper()
	if got != want {
		t.Errorf("%s: got %v, want %v", msg, got, want)
	}
}

// isValidHexColor checks if a string is a valid hex color (e.g., "#RRGGBB")
func isValidHexColor(color string) bool {
	if len(color) != 7 {
		return false
	}
	if color[0] != '#' {
		return false
	}
	for i := 1; i < 7; i++ {
		c := color[i]
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}

// fakeMedia is an in-memory MediaResource that records every call
type fakeMedia struct {
	mu sync.Mutex

	paused   bool
	current  float64
	duration float64
	playErr  error

	loads      []string
	plays      int
	pauses     int
	seeks      []float64
	events     chan MediaEvent
	closeCalls int
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{
		paused:   true,
		duration: math.NaN(),
		events:   make(chan MediaEvent, 8),
	}
}

func (f *fakeMedia) Load(source string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads = append(f.loads, source)
	f.paused = true
}

func (f *fakeMedia) Play() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.plays++
	if f.playErr != nil {
		return f.playErr
	}
	f.paused = false
	return nil
}

func (f *fakeMedia) Pause() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pauses++
	f.paused = true
}

func (f *fakeMedia) Paused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paused
}

func (f *fakeMedia) CurrentTime() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.current
}

func (f *fakeMedia) Duration() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duration
}

func (f *fakeMedia) SetCurrentTime(seconds float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seeks = append(f.seeks, seconds)
	f.current = seconds
}

func (f *fakeMedia) Events() <-chan MediaEvent { return f.events }

func (f *fakeMedia) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCalls++
	return nil
}

func (f *fakeMedia) lastLoad() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.loads) == 0 {
		return ""
	}
	return f.loads[len(f.loads)-1]
}

func (f *fakeMedia) playCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.plays
}

// testCatalog builds n placeholder tracks under a fixed layout
func testCatalog(n int) Catalog {
	layout := AssetLayout{Dir: "static", AudioPattern: "mp3/%d.mp3", CoverPattern: "img/%d.jpg"}
	catalog := make(Catalog, n)
	for i := range catalog {
		catalog[i] = placeholderTrack(layout, i+1)
	}
	return catalog
}

// newTestPlayer returns a player with an n-track catalog and no resume delay
func newTestPlayer(n int) (*Player, *fakeMedia) {
	media := newFakeMedia()
	p := NewPlayer(media, zap.NewNop(), 0)
	p.SetCatalog(testCatalog(n))
	return p, media
}

// runCmd executes a command synchronously and returns its message
func runCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("Expected a command, got nil")
	}
	return cmd()
}

// testConfig returns a valid configuration with the usual defaults
func testConfig() Config {
	var cfg Config
	cfg.Library.Dir = "static"
	cfg.Library.TrackCount = 9
	cfg.Library.AudioPattern = "mp3/%d.mp3"
	cfg.Library.CoverPattern = "img/%d.jpg"
	cfg.Library.Concurrency = 4
	cfg.Playback.ResumeDelayMs = 300
	cfg.Playback.TimeUpdateMs = 250
	cfg.UI.Color = "2"
	cfg.UI.ColorMode = "manual"
	cfg.UI.MaxWidth = 45
	cfg.Artwork.Enabled = true
	cfg.Artwork.Padding = 16
	cfg.Artwork.WidthPixels = 300
	cfg.Artwork.WidthColumns = 13
	cfg.Text.MaxLengthWithArt = 22
	cfg.Text.MaxLengthNoArt = 36
	cfg.Timing.UIRefreshMs = 100
	cfg.Log.Level = "info"
	return cfg
}
