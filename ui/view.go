package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/kikitori/internal/playback"
	runewidth "github.com/mattn/go-runewidth"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

func (m model) View() string {
	var b strings.Builder
	fmt.Fprintln(&b)
	m.listView(&b)

	if m.menu != nil {
		if r, ok := m.menuHeadword(); ok {
			spin := ""
			if m.pending > 0 {
				spin = m.spinner.View()
			}
			fmt.Fprintln(&b)
			fmt.Fprintln(&b, m.menu.view(r, m.cfg.MaxLabelWidth, spin))
		}
	}

	if m.title != "" {
		fmt.Fprintln(&b)
		fmt.Fprintln(&b, "  "+titleStyle.Render(m.title))
	}

	fmt.Fprintln(&b)
	m.statusBarView(&b)
	fmt.Fprint(&b, "\n"+helpViewStyle.Render(m.help.View(m.keys)))
	return b.String()
}

func (m model) menuHeadword() (playback.Headword, bool) {
	r := m.menu.row
	if r.entry >= len(m.entries) || r.headword >= len(m.entries[r.entry].Headwords) {
		return playback.Headword{}, false
	}
	return m.entries[r.entry].Headwords[r.headword], true
}

func (m model) listView(b *strings.Builder) {
	if len(m.rows) == 0 {
		fmt.Fprintln(b, "  "+unknownStyle.Render("Nothing to play. Pass a word list file or pipe one in."))
		return
	}

	// Pad terms to a shared column. runewidth counts wide CJK cells as two.
	termWidth := 0
	for _, r := range m.rows {
		termWidth = max(termWidth, runewidth.StringWidth(m.entries[r.entry].Headwords[r.headword].Term))
	}

	for i, r := range m.rows {
		e := m.entries[r.entry]
		hw := e.Headwords[r.headword]

		marker := "  "
		if i == m.cursor {
			marker = cursorStyle.Render("> ")
		}
		term := runewidth.FillRight(hw.Term, termWidth)

		var line string
		switch {
		case e.Kanji:
			line = marker + term + "  " + kanjiStyle.Render("kanji")
		default:
			line = marker + term + "  " + readingStyle.Render(hw.Reading)
			if badge := badgeView(m.badges[hw.Key()]); badge != "" {
				line += "  " + badge
			}
			if i == m.cursor && m.pending > 0 && m.menu == nil {
				line += " " + m.spinner.View()
			}
		}
		if m.width > 0 {
			line = truncate.StringWithTail(line, uint(m.width), ellipsis) //nolint:gosec
		}
		fmt.Fprintln(b, line)
	}
}

func badgeView(b playback.Badge) string {
	switch b {
	case playback.BadgeCross:
		return crossStyle.Render(badgeCross)
	case playback.BadgePlus:
		return plusStyle.Render(badgePlus)
	default:
		return ""
	}
}

func (m model) statusBarView(b *strings.Builder) {
	showStatusMessage := m.status != nil

	logo := logoView()

	state := statusBarStateStyle(" " + m.state.String() + " ")
	if !m.visible {
		state = statusBarStateStyle(" hidden ")
	}

	helpNote := statusBarHelpStyle(" ? Help ")

	var note string
	if showStatusMessage {
		note = m.status.message
	} else {
		note = fmt.Sprintf("%d words", len(m.entries))
		if m.cfg.watchable() {
			note = m.cfg.Path + " · " + note
		}
	}
	width := max(m.width, lipgloss.Width(logo)+lipgloss.Width(state)+lipgloss.Width(helpNote))
	note = truncate.StringWithTail(" "+note+" ", uint(max(0, //nolint:gosec
		width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(state)-
			ansi.PrintableRuneWidth(helpNote),
	)), ellipsis)

	render := statusBarNoteStyle
	if showStatusMessage {
		render = statusBarMessageStyle
		if m.status.isError {
			render = statusBarErrorStyle
		}
	}
	note = render(note)

	// Empty space
	padding := max(0,
		width-
			ansi.PrintableRuneWidth(logo)-
			ansi.PrintableRuneWidth(note)-
			ansi.PrintableRuneWidth(state)-
			ansi.PrintableRuneWidth(helpNote),
	)
	emptySpace := render(strings.Repeat(" ", padding))

	fmt.Fprintf(b, "%s%s%s%s%s",
		logo,
		note,
		emptySpace,
		state,
		helpNote,
	)
}
