package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dgnsrekt/kikitori/internal/cache"
	"github.com/dgnsrekt/kikitori/internal/playback"
	"github.com/muesli/reflow/truncate"
)

// menuRow is one selectable line of the audio menu.
type menuRow struct {
	source int
	item   playback.MenuItem
}

type menuModel struct {
	row    row
	groups []playback.MenuSource
	rows   []menuRow
	cursor int
}

func newMenuModel(r row) *menuModel {
	return &menuModel{row: r}
}

func (mm *menuModel) setGroups(groups []playback.MenuSource) {
	mm.groups = groups
	mm.rows = mm.rows[:0]
	for _, g := range groups {
		for _, it := range g.Items {
			mm.rows = append(mm.rows, menuRow{source: g.Source.Index, item: it})
		}
	}
	mm.cursor = min(mm.cursor, max(0, len(mm.rows)-1))
}

func (mm *menuModel) move(delta int) {
	if len(mm.rows) == 0 {
		return
	}
	mm.cursor = (mm.cursor + delta + len(mm.rows)) % len(mm.rows)
}

func (mm *menuModel) selected() (menuRow, bool) {
	if mm.cursor < 0 || mm.cursor >= len(mm.rows) {
		return menuRow{}, false
	}
	return mm.rows[mm.cursor], true
}

func (mm *menuModel) view(hw playback.Headword, maxLabel uint, spinner string) string {
	var b strings.Builder
	head := hw.Term
	if hw.Reading != "" && hw.Reading != hw.Term {
		head = fmt.Sprintf("%s 【%s】", hw.Term, hw.Reading)
	}
	fmt.Fprintln(&b, menuHeadStyle.Render(head)+" "+spinner)

	for i, r := range mm.rows {
		label := r.item.Label
		if maxLabel > 0 {
			label = truncate.StringWithTail(label, maxLabel, ellipsis)
		}

		marker := "  "
		if i == mm.cursor {
			marker = cursorStyle.Render("> ")
		}
		suffix := ""
		if r.item.IsPrimary {
			suffix = " " + primaryStyle.Render("★")
		}
		fmt.Fprintf(&b, "%s%s%s\n", marker, validityStyle(r.item.Valid).Render(label), suffix)
	}
	if len(mm.rows) == 0 {
		fmt.Fprintln(&b, unknownStyle.Render("No audio sources configured"))
	}
	return menuBoxStyle.Render(strings.TrimSuffix(b.String(), "\n"))
}

func validityStyle(v cache.Validity) lipgloss.Style {
	switch v {
	case cache.ValidityValid:
		return lipgloss.NewStyle()
	case cache.ValidityInvalid:
		return invalidStyle
	default:
		return unknownStyle
	}
}
