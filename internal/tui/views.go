package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/mmcdole/cinelist/internal/domain"
	"github.com/mmcdole/cinelist/internal/tui/styles"
)

// renderMain renders header, banner, list, detail pane and footer
func (m Model) renderMain() string {
	parts := []string{m.renderHeader()}
	if m.Banner != "" {
		banner := styles.Truncate(m.Banner, m.Width-4) + "  (esc)"
		parts = append(parts, styles.BannerStyle.Width(m.Width).Render(banner))
	}
	if m.filtering || m.filterInput.Value() != "" {
		parts = append(parts, m.filterInput.View())
	}

	listWidth := m.Width
	showDetail := m.Width >= minDetailWidth
	if showDetail {
		listWidth = m.Width * (100 - detailPercent) / 100
	}

	body := m.renderList(listWidth)
	if showDetail {
		detail := styles.DetailStyle.
			Width(m.Width - listWidth - 3).
			Height(m.listHeight()).
			Render(m.renderDetail())
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, detail)
	}
	parts = append(parts, body, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) renderHeader() string {
	mode := styles.DimBadgeStyle.Render(m.wl.Mode().String())
	if m.wl.Mode() == domain.ModeAuthenticated {
		mode = styles.BadgeStyle.Render(m.wl.Mode().String())
	}

	genre := m.wl.SelectedGenre()
	if genre == "" {
		genre = "All genres"
	}

	left := styles.TitleStyle.Render("Cinelist") + " " + mode
	right := styles.DimStyle.Render("[ ") + styles.AccentStyle.Render(genre) + styles.DimStyle.Render(" ]")

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	rule := styles.DimStyle.Render(strings.Repeat("─", max(m.Width, 0)))
	return left + strings.Repeat(" ", gap) + right + "\n" + rule
}

// renderList renders the visible window of rows
func (m Model) renderList(width int) string {
	h := m.listHeight()
	if len(m.rows) == 0 {
		msg := "No movies yet. Press a to add one."
		if m.filterInput.Value() != "" || m.wl.SelectedGenre() != "" {
			msg = "No movies match the current filter."
		}
		return lipgloss.NewStyle().Width(width).Height(h).Render(styles.DimStyle.Render("  " + msg))
	}

	lines := make([]string, 0, h)
	end := min(m.offset+h, len(m.rows))
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(m.rows[i], i == m.cursor, width))
	}
	for len(lines) < h {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderRow(row filterRow, selected bool, width int) string {
	e := row.Entry

	mark := styles.UnwatchedChar
	markColor := styles.Amber
	if e.Watched {
		mark = styles.WatchedChar
		markColor = styles.Green
	}

	noteMark := " "
	switch m.wl.NoteState(e.Title) {
	case domain.NoteLocalAheadOfRemote, domain.NoteLocalOnly:
		noteMark = styles.NotePending
	case domain.NoteSynced:
		if e.HasNotes() {
			noteMark = styles.NoteSynced
		}
	}
	if m.wl.Busy(e.Title) {
		noteMark = RenderSpinnerFrame(m.SpinnerFrame)
	}

	dim := styles.DimGray
	parts := []styles.RowPart{
		{Text: mark + " ", Foreground: &markColor},
	}

	titleWidth := width - 8
	genreText := ""
	if e.Genre != "" && width > 50 {
		genreText = "  " + e.Genre
		titleWidth -= min(lipgloss.Width(genreText), width/3)
	}
	parts = append(parts, highlightTitle(styles.Truncate(e.Title, titleWidth), row.Matched, selected)...)
	if genreText != "" {
		parts = append(parts, styles.RowPart{Text: styles.Truncate(genreText, width/3), Foreground: &dim})
	}
	parts = append(parts, styles.RowPart{Text: " " + noteMark})

	return styles.RenderListRow(parts, selected, width)
}

// highlightTitle splits title into row parts, emphasizing matched byte positions
func highlightTitle(title string, matched []int, selected bool) []styles.RowPart {
	if len(matched) == 0 {
		return []styles.RowPart{{Text: title}}
	}
	hit := make(map[int]bool, len(matched))
	for _, i := range matched {
		hit[i] = true
	}

	accent := styles.Amber
	var parts []styles.RowPart
	var plain strings.Builder
	for i, r := range title {
		if !hit[i] {
			plain.WriteRune(r)
			continue
		}
		if plain.Len() > 0 {
			parts = append(parts, styles.RowPart{Text: plain.String()})
			plain.Reset()
		}
		parts = append(parts, styles.RowPart{Text: string(r), Foreground: &accent, Bold: true})
	}
	if plain.Len() > 0 {
		parts = append(parts, styles.RowPart{Text: plain.String()})
	}
	return parts
}

// renderDetail renders the selected entry's metadata and notes
func (m Model) renderDetail() string {
	e, ok := m.Selected()
	if !ok {
		return ""
	}

	var b strings.Builder
	b.WriteString(styles.TitleStyle.Render(e.Title))
	b.WriteString("\n")

	meta := e.Metadata
	var facts []string
	if meta != nil && meta.Year != "" {
		facts = append(facts, meta.Year)
	}
	if e.Genre != "" {
		facts = append(facts, e.Genre)
	}
	if e.Rating > 0 {
		facts = append(facts, fmt.Sprintf("IMDb %.1f", e.Rating))
	} else if meta != nil && meta.IMDbRating != "" {
		facts = append(facts, "IMDb "+meta.IMDbRating)
	}
	b.WriteString(styles.SubtitleStyle.Render(strings.Join(facts, " · ")))
	b.WriteString("\n\n")

	if meta != nil {
		if meta.Director != "" {
			b.WriteString(styles.DimStyle.Render("Director ") + meta.Director + "\n")
		}
		if meta.Actors != "" {
			b.WriteString(styles.DimStyle.Render("Cast     ") + meta.Actors + "\n")
		}
		if meta.Director != "" || meta.Actors != "" {
			b.WriteString("\n")
		}
	}

	plot := e.Description
	if plot == "" && meta != nil {
		plot = meta.Plot
	}
	if plot != "" {
		b.WriteString(plot)
		b.WriteString("\n\n")
	}

	b.WriteString(styles.AccentStyle.Render("Notes"))
	switch m.wl.NoteState(e.Title) {
	case domain.NoteLocalAheadOfRemote, domain.NoteLocalOnly:
		b.WriteString(styles.DimStyle.Render("  (not yet synced)"))
	}
	b.WriteString("\n")
	if e.HasNotes() && e.NotesText() != "" {
		b.WriteString(e.NotesText())
	} else {
		b.WriteString(styles.DimStyle.Render("none"))
	}

	return b.String()
}

// renderFooter renders a single-line footer
func (m Model) renderFooter() string {
	var left string
	switch {
	case m.State == StateConfirmDelete:
		left = styles.ErrorStyle.Render("Remove "+m.confirmTitle+"?") + styles.DimStyle.Render(" y/n")
	case m.Pending > 0:
		left = RenderSpinnerFrame(m.SpinnerFrame) + " " + styles.DimStyle.Render("Working...")
	case m.StatusMsg != "":
		left = styles.DimStyle.Render(m.StatusMsg)
	}

	count := styles.DimStyle.Render(fmt.Sprintf("%d titles  ", len(m.rows)))
	right := count + styles.AccentStyle.Render("?") + styles.DimStyle.Render(" help")

	gap := m.Width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

// helpSection is one titled group of bindings on the help screen
type helpSection struct {
	title    string
	bindings []key.Binding
}

// renderHelp renders the help screen from the key bindings
func (m Model) renderHelp() string {
	sections := []helpSection{
		{"NAVIGATION", []key.Binding{Keys.Up, Keys.Down, Keys.Home, Keys.End, Keys.PageUp, Keys.PageDown}},
		{"LIST", []key.Binding{Keys.Add, Keys.Delete, Keys.Notes, Keys.MarkWatched, Keys.Refresh, Keys.Enrich}},
		{"FILTER", []key.Binding{Keys.Filter, Keys.NextGenre, Keys.PrevGenre, Keys.Escape}},
		{"DISCOVER", []key.Binding{Keys.Suggest, Keys.Recommend, Keys.OpenTitle}},
		{"OTHER", []key.Binding{Keys.Help, Keys.Quit}},
	}

	var b strings.Builder
	for i, sec := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(styles.SubtitleStyle.Render(sec.title))
		b.WriteString("\n")
		for _, kb := range sec.bindings {
			h := kb.Help()
			b.WriteString("  " + styles.HelpKeyStyle.Render(fmt.Sprintf("%-8s", h.Key)) + " " + styles.HelpDescStyle.Render(h.Desc) + "\n")
		}
	}

	return lipgloss.Place(m.Width, m.Height,
		lipgloss.Center, lipgloss.Center,
		styles.ModalStyle.Render(styles.ModalTitleStyle.Render("Keys")+"\n"+b.String()))
}

// renderRecommendations renders the suggestions picker
func (m Model) renderRecommendations() string {
	width := min(max(m.Width-10, 30), 80)

	var b strings.Builder
	b.WriteString(styles.ModalTitleStyle.Render("Suggestions for \"" + styles.Truncate(m.recQuery, width-20) + "\""))
	b.WriteString("\n")

	for i, r := range m.recs {
		mark := styles.UnwatchedMark
		if m.wl.Listed(r.Title) {
			mark = styles.WatchedMark
		}
		line := r.Title
		if r.Year != "" {
			line += " (" + r.Year + ")"
		}
		if r.Genre != "" {
			line += "  " + styles.DimStyle.Render(r.Genre)
		}
		line = mark + " " + line
		if i == m.recCursor {
			line = styles.AccentStyle.Render("> ") + line
		} else {
			line = "  " + line
		}
		b.WriteString(lipgloss.NewStyle().MaxWidth(width).Render(line))
		b.WriteString("\n")
	}

	if sel := m.recCursor; sel >= 0 && sel < len(m.recs) && m.recs[sel].Description != "" {
		b.WriteString("\n")
		b.WriteString(lipgloss.NewStyle().Width(width).Foreground(styles.LightGray).Render(m.recs[sel].Description))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	switch {
	case m.Banner != "":
		b.WriteString(styles.ErrorStyle.Render(styles.Truncate(m.Banner, width)))
	case m.Pending > 0:
		b.WriteString(RenderSpinnerFrame(m.SpinnerFrame) + " " + styles.DimStyle.Render("Adding..."))
	case m.StatusMsg != "":
		b.WriteString(styles.DimStyle.Render(m.StatusMsg))
	default:
		b.WriteString(styles.HelpKeyStyle.Render("enter") + styles.HelpDescStyle.Render(" add  ") +
			styles.HelpKeyStyle.Render("esc") + styles.HelpDescStyle.Render(" close"))
	}

	return styles.ModalStyle.Render(b.String())
}

// RenderSpinnerFrame renders one frame of the loading spinner
func RenderSpinnerFrame(frame int) string {
	frames := []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}
	return styles.SpinnerStyle.Render(frames[frame%len(frames)])
}
