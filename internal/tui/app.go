package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/cinelist/internal/domain"
	"github.com/mmcdole/cinelist/internal/tui/components"
	"github.com/mmcdole/cinelist/internal/tui/styles"
)

// ApplicationState represents the current state of the application
type ApplicationState int

const (
	StateBrowsing ApplicationState = iota
	StateHelp
	StateConfirmDelete
	StateRecommendations
)

// inputPurpose is what the input modal's value will be used for
type inputPurpose int

const (
	inputAdd inputPurpose = iota
	inputNotes
	inputRecommend
)

const (
	tickInterval  = 100 * time.Millisecond
	statusTimeout = 3 * time.Second

	// Detail pane is shown when the terminal is at least this wide
	minDetailWidth = 90
	detailPercent  = 40
)

// Model is the main Bubble Tea model for the application
type Model struct {
	// Application state
	State ApplicationState
	Ready bool

	wl     Watchlist
	opener Opener // nil shows links in the status bar instead

	// UI components
	InputModal  components.InputModal
	purpose     inputPurpose
	inputTitle  string // Entry the notes modal edits
	filterInput textinput.Model
	filtering   bool

	// Visible rows after the genre filter and title quick-filter
	rows   []filterRow
	cursor int
	offset int

	// Dimensions
	Width  int
	Height int

	// UI state
	Banner       string // Dismissable error
	StatusMsg    string
	Pending      int // Outstanding remote operations
	SpinnerFrame int
	confirmTitle string

	// Suggestions picker
	recQuery  string
	recs      []domain.Recommendation
	recCursor int
}

// NewModel creates a new application model
func NewModel(wl Watchlist, opener Opener) Model {
	fi := textinput.New()
	fi.Prompt = "/"
	fi.PromptStyle = styles.FilterPromptStyle
	fi.TextStyle = styles.FilterStyle
	fi.Placeholder = "filter titles"
	fi.PlaceholderStyle = styles.DimStyle

	return Model{
		State:       StateBrowsing,
		wl:          wl,
		opener:      opener,
		InputModal:  components.NewInputModal(),
		filterInput: fi,
		Pending:     1, // Initial load
	}
}

// Init initializes the application
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		ReloadCmd(m.wl),
		TickCmd(tickInterval),
	)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Ready = true
		m.clampCursor()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		return m, TickCmd(tickInterval)

	case WatchlistLoadedMsg:
		m.settle()
		m.refreshRows()
		return m, m.setStatus(fmt.Sprintf("Loaded %d movies (%s)", len(m.rows), m.wl.Mode()))

	case MovieAddedMsg:
		m.settle()
		m.refreshRows()
		m.selectTitle(msg.Entry.Title)
		return m, m.setStatus("Added " + msg.Entry.Title)

	case MovieRemovedMsg:
		m.settle()
		m.refreshRows()
		return m, m.setStatus("Removed " + msg.Title)

	case NotesSavedMsg:
		m.settle()
		m.refreshRows()
		if msg.State == domain.NoteLocalAheadOfRemote {
			return m, m.setStatus("Notes saved locally, sync pending")
		}
		return m, m.setStatus("Notes saved")

	case MarkedWatchedMsg:
		m.settle()
		m.refreshRows()
		return m, m.setStatus("Marked " + msg.Title + " watched")

	case EnrichedMsg:
		m.settle()
		m.refreshRows()
		if n := len(msg.Failed); n > 0 {
			return m, m.setStatus(fmt.Sprintf("Details unavailable for %d titles", n))
		}
		return m, m.setStatus("Details updated")

	case RecommendationsMsg:
		m.settle()
		if len(msg.Items) == 0 {
			return m, m.setStatus("No suggestions for \"" + msg.Query + "\"")
		}
		m.State = StateRecommendations
		m.recQuery = msg.Query
		m.recs = msg.Items
		m.recCursor = 0
		return m, nil

	case LinkOpenedMsg:
		m.settle()
		return m, m.setStatus("Opened " + msg.URL)

	case ErrMsg:
		m.settle()
		m.refreshRows()
		if errors.Is(msg.Err, domain.ErrBusy) {
			return m, m.setStatus(msg.Title + " is still updating")
		}
		m.Banner = msg.Error()
		return m, nil

	case ClearStatusMsg:
		m.StatusMsg = ""
		return m, nil
	}

	return m, nil
}

// settle records that one remote operation finished
func (m *Model) settle() {
	if m.Pending > 0 {
		m.Pending--
	}
}

// start records a new outstanding remote operation
func (m *Model) start(cmd tea.Cmd) tea.Cmd {
	m.Pending++
	return cmd
}

func (m *Model) setStatus(s string) tea.Cmd {
	m.StatusMsg = s
	return ClearStatusCmd(statusTimeout)
}

// refreshRows re-reads the watchlist view and reapplies the title filter
func (m *Model) refreshRows() {
	m.rows = applyTitleFilter(m.wl.Filtered(), m.filterInput.Value())
	m.clampCursor()
}

// Selected returns the entry under the cursor
func (m Model) Selected() (domain.MovieEntry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return domain.MovieEntry{}, false
	}
	return m.rows[m.cursor].Entry, true
}

func (m *Model) selectTitle(title string) {
	for i, r := range m.rows {
		if r.Entry.Title == title {
			m.cursor = i
			m.clampCursor()
			return
		}
	}
}

// listHeight is the number of rows the list pane can show
func (m Model) listHeight() int {
	h := m.Height - 3 // Header, rule, footer
	if m.Banner != "" {
		h--
	}
	if m.filtering || m.filterInput.Value() != "" {
		h--
	}
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// cycleGenre moves the genre filter by step through "all" and the genre index
func (m *Model) cycleGenre(step int) {
	options := append([]string{""}, m.wl.Genres()...)
	current := 0
	for i, g := range options {
		if g == m.wl.SelectedGenre() {
			current = i
			break
		}
	}
	next := (current + step + len(options)) % len(options)
	m.wl.SelectGenre(options[next])
	m.cursor, m.offset = 0, 0
	m.refreshRows()
}

// View renders the application
func (m Model) View() string {
	if !m.Ready {
		return "Loading..."
	}

	if m.State == StateHelp {
		return m.renderHelp()
	}

	view := m.renderMain()

	if m.State == StateRecommendations {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.renderRecommendations())
	}

	if m.InputModal.IsVisible() {
		view = lipgloss.Place(m.Width, m.Height,
			lipgloss.Center, lipgloss.Center,
			m.InputModal.View())
	}

	return view
}
