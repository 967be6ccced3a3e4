package main

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/charmbracelet/bubbletea"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// PlayerState is the lifecycle state of the currently selected track
type PlayerState int

const (
	StateIdle PlayerState = iota // no catalog yet
	StateLoading
	StatePlaying
	StatePaused
	StateEnded
	StateErrored
)

func (s PlayerState) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateLoading:
		return "Loading"
	case StatePlaying:
		return "Playing"
	case StatePaused:
		return "Paused"
	case StateEnded:
		return "Ended"
	case StateErrored:
		return "Errored"
	default:
		return "Unknown"
	}
}

var (
	ErrPlaybackRequestFailed = errors.New("playback request failed")
	ErrMediaLoadFailed       = errors.New("media load failed")
)

// Fixed messages shown to the user for each failure kind
const (
	msgPlaybackRequestFailed = "Failed to play audio."
	msgMediaLoadFailed       = "Failed to load audio."
)

// Transition hints for the view; they carry no playback meaning.
const (
	transitionPrev = "scale-in"
	transitionNext = "scale-out"
)

// playResultMsg reports the outcome of a play request. gen is the track
// switch generation the request was issued under.
type playResultMsg struct {
	err error
	gen uint64
}

// resumeMsg fires after the post-switch grace period. gen identifies the
// track switch that scheduled it.
type resumeMsg struct {
	gen uint64
}

// barBox is the progress bar's layout box in screen columns
type barBox struct {
	Left  float64
	Width float64
	Row   int
}

type touchPoint struct {
	PageX float64
}

// pointerEvent is a mouse or touch activation on the progress bar
type pointerEvent struct {
	Type    string // "mousedown" or "touchstart"
	PageX   float64
	Touches []touchPoint
}

// pointerX extracts the horizontal position for both input kinds
func (e pointerEvent) pointerX() (float64, bool) {
	if e.Type == "touchstart" {
		if len(e.Touches) == 0 {
			return 0, false
		}
		return e.Touches[0].PageX, true
	}
	return e.PageX, true
}

// Player coordinates the media resource with the UI-facing playback state.
// All methods must be called from the Bubble Tea update loop; blocking media
// work is returned as commands.
type Player struct {
	media       MediaResource
	logger      *zap.Logger
	resumeDelay time.Duration

	catalog   Catalog
	index     int
	isPlaying bool // the user's intended state
	state     PlayerState

	currentTime string
	duration    string
	progress    float64 // 0..1
	transition  string
	lastError   error

	resumeGen uint64
}

// NewPlayer creates a player with an empty catalog
func NewPlayer(media MediaResource, logger *zap.Logger, resumeDelay time.Duration) *Player {
	return &Player{
		media:       media,
		logger:      logger,
		resumeDelay: resumeDelay,
		state:       StateIdle,
		currentTime: formatTime(0),
		duration:    formatTime(math.NaN()),
	}
}

// SetCatalog installs the loaded catalog, selects the first track and binds
// its source without starting playback.
func (p *Player) SetCatalog(catalog Catalog) {
	p.catalog = catalog
	p.index = 0
	if len(catalog) == 0 {
		p.state = StateIdle
		return
	}
	p.media.Load(catalog[0].Source)
	p.state = StateLoading
}

func (p *Player) Catalog() Catalog { return p.catalog }
func (p *Player) Index() int { return p.index }
func (p *Player) IsPlaying() bool { return p.isPlaying }
func (p *Player) State() PlayerState { return p.state }
func (p *Player) CurrentTime() string { return p.currentTime }
func (p *Player) DurationText() string { return p.duration }
func (p *Player) Progress() float64 { return p.progress }
func (p *Player) Transition() string { return p.transition }
func (p *Player) LastError() error { return p.lastError }
func (p *Player) SetResumeDelay(d time.Duration) { p.resumeDelay = d }

// Current returns the selected track
func (p *Player) Current() (Track, bool) {
	if len(p.catalog) == 0 {
		return Track{}, false
	}
	return p.catalog[p.index], true
}

// TogglePlay requests playback when the media is paused and pauses it
// otherwise.
func (p *Player) TogglePlay() tea.Cmd {
	if len(p.catalog) == 0 {
		return nil
	}
	if p.media.Paused() {
		return p.requestPlay()
	}
	p.media.Pause()
	p.isPlaying = false
	p.state = StatePaused
	return nil
}

// requestPlay issues an asynchronous play request
func (p *Player) requestPlay() tea.Cmd {
	media := p.media
	gen := p.resumeGen
	return func() tea.Msg {
		return playResultMsg{err: media.Play(), gen: gen}
	}
}

// HandlePlayResult applies the outcome of a play request. A successful play
// clears the last error. Results issued before the latest track switch are
// dropped.
func (p *Player) HandlePlayResult(msg playResultMsg) {
	if msg.gen != p.resumeGen {
		p.logger.Debug("dropping stale play result", zap.Uint64("gen", msg.gen), zap.Uint64("current", p.resumeGen))
		return
	}
	if msg.err != nil {
		p.logger.Error("playback failed", zap.Int("index", p.index), zap.Error(msg.err))
		p.lastError = fmt.Errorf("%w: %w", ErrPlaybackRequestFailed, msg.err)
		p.isPlaying = false
		p.state = StatePaused
		return
	}
	p.isPlaying = true
	p.state = StatePlaying
	p.lastError = nil
}

// OnTimeUpdate recomputes the time strings and progress from the media
func (p *Player) OnTimeUpdate() {
	current := p.media.CurrentTime()
	total := p.media.Duration()
	p.currentTime = formatTime(current)
	p.duration = formatTime(total)
	p.progress = progressFraction(current, total)
}

// OnMetadataLoaded refreshes the display once the new source is ready
func (p *Player) OnMetadataLoaded() {
	p.OnTimeUpdate()
	if p.state == StateLoading {
		p.state = StatePaused
	}
}

// Seek maps a pointer position on the bar to a playback position and
// resumes playback.
func (p *Player) Seek(pointerX float64, bar barBox) tea.Cmd {
	var percentage float64
	if bar.Width > 0 {
		percentage = lo.Clamp((pointerX-bar.Left)/bar.Width*100, 0, 100)
	}
	p.progress = percentage / 100

	if d := p.media.Duration(); isFinite(d) {
		p.media.SetCurrentTime(percentage / 100 * d)
	}
	return p.requestPlay()
}

// ActivateProgressBar handles a press on the progress bar: it pauses the
// stream before seeking to avoid audible glitches.
func (p *Player) ActivateProgressBar(ev pointerEvent, bar barBox) tea.Cmd {
	if len(p.catalog) == 0 {
		return nil
	}
	x, ok := ev.pointerX()
	if !ok {
		return nil
	}
	p.isPlaying = true
	p.media.Pause()
	return p.Seek(x, bar)
}

// PrevTrack selects the previous track, wrapping to the last
func (p *Player) PrevTrack() tea.Cmd {
	if len(p.catalog) == 0 {
		return nil
	}
	p.transition = transitionPrev
	p.index = (p.index - 1 + len(p.catalog)) % len(p.catalog)
	return p.resetPlayer()
}

// NextTrack selects the next track, wrapping to the first
func (p *Player) NextTrack() tea.Cmd {
	if len(p.catalog) == 0 {
		return nil
	}
	p.transition = transitionNext
	p.index = (p.index + 1) % len(p.catalog)
	return p.resetPlayer()
}

// resetPlayer rebinds the media to the selected track and schedules the
// resume decision after the grace period. Any resume scheduled by an
// earlier switch is superseded.
func (p *Player) resetPlayer() tea.Cmd {
	p.progress = 0
	p.currentTime = formatTime(0)
	p.duration = formatTime(math.NaN())
	p.media.SetCurrentTime(0)
	p.media.Load(p.catalog[p.index].Source)
	p.state = StateLoading

	p.resumeGen++
	gen := p.resumeGen
	return tea.Tick(p.resumeDelay, func(time.Time) tea.Msg {
		return resumeMsg{gen: gen}
	})
}

// HandleResume plays or holds the new track depending on the intended state
// at the time the grace period ends.
func (p *Player) HandleResume(msg resumeMsg) tea.Cmd {
	if msg.gen != p.resumeGen {
		p.logger.Debug("dropping stale resume", zap.Uint64("gen", msg.gen), zap.Uint64("current", p.resumeGen))
		return nil
	}
	if p.isPlaying {
		return p.requestPlay()
	}
	p.media.Pause()
	if p.state == StateLoading {
		p.state = StatePaused
	}
	return nil
}

// OnEnded advances to the next track and always resumes playback
func (p *Player) OnEnded() tea.Cmd {
	if len(p.catalog) == 0 {
		return nil
	}
	p.state = StateEnded
	p.logger.Info("track ended", zap.Int("index", p.index))
	cmd := p.NextTrack()
	p.isPlaying = true
	return cmd
}

// ToggleFavorite flips the favorite flag of the selected track
func (p *Player) ToggleFavorite() {
	if len(p.catalog) == 0 {
		return
	}
	p.catalog[p.index].Favorited = !p.catalog[p.index].Favorited
}

// OnError records a load or decode failure. The player keeps accepting
// commands.
func (p *Player) OnError(err error) {
	p.logger.Error("media error", zap.Int("index", p.index), zap.Error(err))
	if err != nil {
		p.lastError = fmt.Errorf("%w: %w", ErrMediaLoadFailed, err)
	} else {
		p.lastError = ErrMediaLoadFailed
	}
	p.state = StateErrored
}

// HandleMediaEvent dispatches a media resource event
func (p *Player) HandleMediaEvent(ev MediaEvent) tea.Cmd {
	if cur, ok := p.Current(); !ok || (ev.Source != "" && ev.Source != cur.Source) {
		p.logger.Debug("ignoring media event for inactive source",
			zap.Stringer("event", ev.Type),
			zap.String("source", ev.Source))
		return nil
	}

	switch ev.Type {
	case EventTimeUpdate:
		p.OnTimeUpdate()
	case EventLoadedMetadata:
		p.OnMetadataLoaded()
	case EventEnded:
		return p.OnEnded()
	case EventError:
		p.OnError(ev.Err)
	}
	return nil
}

// userMessage returns the fixed user-facing text for a player error
func userMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPlaybackRequestFailed):
		return msgPlaybackRequestFailed
	case errors.Is(err, ErrMediaLoadFailed):
		return msgMediaLoadFailed
	default:
		return err.Error()
	}
}

func progressFraction(current, total float64) float64 {
	if !isFinite(current) || !isFinite(total) || total <= 0 {
		return 0
	}
	return lo.Clamp(current/total, 0, 1)
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
