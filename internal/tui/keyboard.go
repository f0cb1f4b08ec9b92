package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mmcdole/cinelist/internal/watchlist"
)

// handleKeyMsg handles keyboard input
func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.InputModal.IsVisible() {
		return m.handleInputKey(msg)
	}
	if m.filtering {
		return m.handleFilterKey(msg)
	}

	// Handle state-specific keys
	switch m.State {
	case StateHelp:
		if key.Matches(msg, Keys.Escape, Keys.Help, Keys.Quit) {
			m.State = StateBrowsing
		}
		return m, nil

	case StateRecommendations:
		return m.handleRecommendationKey(msg)

	case StateConfirmDelete:
		switch {
		case key.Matches(msg, Keys.Confirm):
			m.State = StateBrowsing
			title := m.confirmTitle
			m.confirmTitle = ""
			return m, m.start(RemoveCmd(m.wl, title))
		case key.Matches(msg, Keys.Deny):
			m.State = StateBrowsing
			m.confirmTitle = ""
		}
		return m, nil
	}

	// Global keys
	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.State = StateHelp
		return m, nil

	case key.Matches(msg, Keys.Escape):
		// Dismiss the error first, then clear the title filter
		if m.Banner != "" {
			m.Banner = ""
			return m, nil
		}
		if m.filterInput.Value() != "" {
			m.filterInput.SetValue("")
			m.refreshRows()
		}
		return m, nil

	case key.Matches(msg, Keys.Up):
		m.cursor--
		m.clampCursor()

	case key.Matches(msg, Keys.Down):
		m.cursor++
		m.clampCursor()

	case key.Matches(msg, Keys.PageUp):
		m.cursor -= m.listHeight()
		m.clampCursor()

	case key.Matches(msg, Keys.PageDown):
		m.cursor += m.listHeight()
		m.clampCursor()

	case key.Matches(msg, Keys.Home):
		m.cursor = 0
		m.clampCursor()

	case key.Matches(msg, Keys.End):
		m.cursor = len(m.rows) - 1
		m.clampCursor()

	case key.Matches(msg, Keys.Filter):
		m.filtering = true
		m.filterInput.Focus()
		return m, textinput.Blink

	case key.Matches(msg, Keys.Add):
		m.purpose = inputAdd
		m.InputModal.Show("Add movie", "Movie title", "")
		return m, textinput.Blink

	case key.Matches(msg, Keys.Notes):
		if entry, ok := m.Selected(); ok {
			m.purpose = inputNotes
			m.inputTitle = entry.Title
			m.InputModal.Show("Notes for "+entry.Title, "Add notes", entry.NotesText())
			return m, textinput.Blink
		}

	case key.Matches(msg, Keys.Delete):
		if entry, ok := m.Selected(); ok {
			m.State = StateConfirmDelete
			m.confirmTitle = entry.Title
		}

	case key.Matches(msg, Keys.MarkWatched):
		if entry, ok := m.Selected(); ok && !entry.Watched {
			return m, m.start(MarkWatchedCmd(m.wl, entry.Title))
		}

	case key.Matches(msg, Keys.NextGenre):
		m.cycleGenre(1)

	case key.Matches(msg, Keys.PrevGenre):
		m.cycleGenre(-1)

	case key.Matches(msg, Keys.Recommend):
		url, err := watchlist.RecommendURL(m.wl.SelectedGenre())
		if err != nil {
			return m, m.setStatus("Select a genre first")
		}
		return m.openLink(url)

	case key.Matches(msg, Keys.Suggest):
		m.purpose = inputRecommend
		m.InputModal.Show("Suggest movies", "Describe a movie, e.g. boy on a boat with a tiger", m.recQuery)
		return m, textinput.Blink

	case key.Matches(msg, Keys.OpenTitle):
		entry, ok := m.Selected()
		if !ok {
			return m, nil
		}
		var id string
		if entry.Metadata != nil {
			id = entry.Metadata.IMDbID
		}
		url, err := watchlist.TitleURL(id)
		if err != nil {
			return m, m.setStatus("No IMDb page yet, press i to fetch details")
		}
		return m.openLink(url)

	case key.Matches(msg, Keys.Refresh):
		return m, m.start(ReloadCmd(m.wl))

	case key.Matches(msg, Keys.Enrich):
		return m, m.start(EnrichCmd(m.wl))
	}

	return m, nil
}

// handleInputKey routes keys to the add/notes modal
func (m Model) handleInputKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var submitted bool
	m.InputModal, cmd, submitted = m.InputModal.Update(msg)
	if !submitted {
		return m, cmd
	}

	value := m.InputModal.Value()
	m.InputModal.Hide()

	switch m.purpose {
	case inputAdd:
		title := strings.TrimSpace(value)
		if title == "" {
			return m, nil
		}
		return m, m.start(AddCmd(m.wl, title))
	case inputNotes:
		return m, m.start(SetNotesCmd(m.wl, m.inputTitle, value))
	case inputRecommend:
		query := strings.TrimSpace(value)
		if query == "" {
			return m, nil
		}
		return m, m.start(RecommendCmd(m.wl, query))
	}
	return m, nil
}

// handleFilterKey routes keys to the title quick-filter
func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.filtering = false
		m.filterInput.SetValue("")
		m.filterInput.Blur()
		m.refreshRows()
		return m, nil
	case "enter":
		m.filtering = false
		m.filterInput.Blur()
		return m, nil
	case "up", "down":
		if msg.String() == "up" {
			m.cursor--
		} else {
			m.cursor++
		}
		m.clampCursor()
		return m, nil
	}

	var cmd tea.Cmd
	m.filterInput, cmd = m.filterInput.Update(msg)
	m.cursor, m.offset = 0, 0
	m.refreshRows()
	return m, cmd
}

// openLink hands url to the opener, or shows it when there is none
func (m Model) openLink(url string) (tea.Model, tea.Cmd) {
	if m.opener == nil {
		m.StatusMsg = url
		return m, nil
	}
	return m, m.start(OpenLinkCmd(m.opener, url))
}

// handleRecommendationKey drives the suggestions picker. It stays open after
// an add so several suggestions can be kept.
func (m Model) handleRecommendationKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, Keys.Escape, Keys.Quit):
		m.State = StateBrowsing
		m.recs = nil
		return m, nil

	case key.Matches(msg, Keys.Up):
		if m.recCursor > 0 {
			m.recCursor--
		}

	case key.Matches(msg, Keys.Down):
		if m.recCursor < len(m.recs)-1 {
			m.recCursor++
		}

	case key.Matches(msg, Keys.Select):
		if m.recCursor < 0 || m.recCursor >= len(m.recs) {
			return m, nil
		}
		title := m.recs[m.recCursor].Title
		if m.wl.Listed(title) {
			return m, m.setStatus(title + " is already listed")
		}
		return m, m.start(AddCmd(m.wl, title))
	}
	return m, nil
}
