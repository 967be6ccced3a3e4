package main

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

// scrollSeparator separates the end of a scrolling title from its start
const scrollSeparator = "  •  "

// model is the Bubble Tea model for the TUI application. Playback state
// lives in the Player; the model only adds presentation state.
type model struct {
	ctx    context.Context
	player *Player
	media  MediaResource
	loader *CatalogLoader
	logger *zap.Logger

	color  string
	width  int
	height int

	loading    bool
	trackCount int

	// Album artwork support
	supportsKitty  bool
	artworkEncoded string
	artworkIndex   int                // catalog index the artwork belongs to, -1 for none
	artworkCache   map[int]artworkMsg // processed covers by catalog index

	// Text scrolling state
	scrollOffset int // Current scroll position for text animation
	scrollPause  int // Pause counter at start/end of scroll
	scrollTick   int // Tick counter for slowing scroll speed

	showHelp bool
}

func newModel(ctx context.Context, player *Player, media MediaResource, loader *CatalogLoader, logger *zap.Logger, trackCount int, supportsKitty bool) model {
	return model{
		ctx:           ctx,
		player:        player,
		media:         media,
		loader:        loader,
		logger:        logger,
		color:         config.Get().UI.Color,
		loading:       true,
		trackCount:    trackCount,
		supportsKitty: supportsKitty,
		artworkIndex:  -1,
		artworkCache:  make(map[int]artworkMsg),
	}
}

// UI refresh tick, drives text scrolling
type tickMsg time.Time

// catalogLoadedMsg carries the settled catalog
type catalogLoadedMsg struct {
	catalog Catalog
}

// mediaEventMsg wraps an event from the media resource
type mediaEventMsg struct {
	event MediaEvent
}

// artworkMsg is a processed cover for one catalog index
type artworkMsg struct {
	index   int
	encoded string
	color   string
	err     error
}

// Schedule next UI refresh tick
func tickCmd() tea.Cmd {
	cfg := config.Get()
	return tea.Tick(time.Duration(cfg.Timing.UIRefreshMs)*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// loadCatalogCmd builds the catalog in the background
func loadCatalogCmd(ctx context.Context, loader *CatalogLoader, count int) tea.Cmd {
	return func() tea.Msg {
		return catalogLoadedMsg{catalog: loader.Load(ctx, count)}
	}
}

// waitForMediaEvent delivers the next media event as a message
func waitForMediaEvent(media MediaResource) tea.Cmd {
	return func() tea.Msg {
		return mediaEventMsg{event: <-media.Events()}
	}
}

// processArtworkCmd renders a cover off the update loop
func processArtworkCmd(index int, cover Cover, opts artworkOptions) tea.Cmd {
	return func() tea.Msg {
		color, encoded, err := processCover(cover, opts)
		return artworkMsg{index: index, encoded: encoded, color: color, err: err}
	}
}

// syncArtwork makes sure the artwork matches the selected track, reusing
// already processed covers.
func (m *model) syncArtwork() tea.Cmd {
	cfg := config.Get()
	if !m.supportsKitty || !cfg.Artwork.Enabled {
		return nil
	}
	track, ok := m.player.Current()
	if !ok {
		return nil
	}
	index := m.player.Index()
	if index == m.artworkIndex {
		return nil
	}
	m.artworkIndex = index

	if cached, ok := m.artworkCache[index]; ok {
		m.applyArtwork(cached)
		return nil
	}
	m.artworkEncoded = ""

	return processArtworkCmd(index, track.Cover, artworkOptions{
		WidthPixels:  cfg.Artwork.WidthPixels,
		WidthColumns: cfg.Artwork.WidthColumns,
		ExtractColor: cfg.UI.ColorMode == "auto",
	})
}

func (m *model) applyArtwork(msg artworkMsg) {
	m.artworkEncoded = msg.encoded
	if config.Get().UI.ColorMode == "auto" && msg.color != "" {
		m.color = msg.color
	}
}

// resetScroll restarts title scrolling, used when the track changes
func (m *model) resetScroll() {
	m.scrollOffset = 0
	m.scrollPause = 30 // Pause at start for 3 seconds
	m.scrollTick = 0
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		loadCatalogCmd(m.ctx, m.loader, m.trackCount),
		waitForMediaEvent(m.media),
		tickCmd(),
		watchConfigCmd(),
	)
}

// afterTrackChange runs the presentation updates that follow a switch
func (m *model) afterTrackChange(before int, cmd tea.Cmd) tea.Cmd {
	if m.player.Index() == before {
		return cmd
	}
	m.resetScroll()
	return tea.Batch(cmd, m.syncArtwork())
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	before := m.player.Index()

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ", "p":
			return m, m.player.TogglePlay()
		case "n":
			cmd := m.player.NextTrack()
			return m, m.afterTrackChange(before, cmd)
		case "b":
			cmd := m.player.PrevTrack()
			return m, m.afterTrackChange(before, cmd)
		case "f":
			m.player.ToggleFavorite()
			return m, nil
		case "a":
			// Toggle artwork on/off
			cfg := config.Get()
			cfg.Artwork.Enabled = !cfg.Artwork.Enabled
			config.Set(cfg)
			m.artworkEncoded = ""
			m.artworkIndex = -1
			return m, m.syncArtwork()
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		}

	case tea.MouseMsg:
		if msg.Action != tea.MouseActionPress || msg.Button != tea.MouseButtonLeft {
			return m, nil
		}
		bar, ok := m.progressBarBox()
		if !ok || msg.Y != bar.Row {
			return m, nil
		}
		ev := pointerEvent{Type: "mousedown", PageX: float64(msg.X)}
		return m, m.player.ActivateProgressBar(ev, bar)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case catalogLoadedMsg:
		m.loading = false
		m.player.SetCatalog(msg.catalog)
		m.logger.Info("catalog loaded", zap.Int("tracks", len(msg.catalog)))
		m.resetScroll()
		return m, m.syncArtwork()

	case mediaEventMsg:
		cmd := m.player.HandleMediaEvent(msg.event)
		return m, tea.Batch(
			waitForMediaEvent(m.media),
			m.afterTrackChange(before, cmd),
		)

	case playResultMsg:
		m.player.HandlePlayResult(msg)
		return m, nil

	case resumeMsg:
		return m, m.player.HandleResume(msg)

	case artworkMsg:
		if msg.err != nil {
			m.logger.Debug("cover unavailable", zap.Int("index", msg.index), zap.Error(msg.err))
		}
		m.artworkCache[msg.index] = msg
		if msg.index == m.player.Index() && msg.index == m.artworkIndex {
			m.applyArtwork(msg)
		}
		return m, nil

	case configReloadMsg:
		cfg := config.Get()
		m.player.SetResumeDelay(cfg.ResumeDelay())
		if cfg.UI.ColorMode == "manual" {
			m.color = cfg.UI.Color
		}
		// Cached covers were rendered with the old settings
		m.artworkCache = make(map[int]artworkMsg)
		m.artworkEncoded = ""
		m.artworkIndex = -1
		return m, tea.Batch(watchConfigCmd(), m.syncArtwork())

	case tickMsg:
		m.advanceScroll()
		return m, tickCmd()
	}

	return m, nil
}

// advanceScroll moves long titles one step every third tick
func (m *model) advanceScroll() {
	m.scrollTick++
	if m.scrollPause > 0 {
		m.scrollPause--
		return
	}
	if m.scrollTick%3 != 0 {
		return
	}
	m.scrollOffset++

	track, ok := m.player.Current()
	if !ok {
		return
	}
	longest := max(len([]rune(track.Name)), len([]rune(track.Artist)))
	if longest > m.maxTextLen() {
		loopPoint := longest + len([]rune(scrollSeparator))
		if m.scrollOffset >= loopPoint {
			m.scrollOffset = 0
			m.scrollPause = 30 // Pause for 3 seconds when looping back
		}
	}
}

// maxTextLen is the visible title width, narrower when art is shown
func (m model) maxTextLen() int {
	cfg := config.Get()
	if m.supportsKitty && cfg.Artwork.Enabled {
		return cfg.Text.MaxLengthWithArt
	}
	return cfg.Text.MaxLengthNoArt
}
