// Package ui runs the terminal front end: a word list with play buttons, a
// per-headword audio source menu and a status bar.
package ui

import (
	"context"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/dgnsrekt/kikitori/internal/cache"
	"github.com/dgnsrekt/kikitori/internal/options"
	"github.com/dgnsrekt/kikitori/internal/playback"
	"github.com/fsnotify/fsnotify"
)

const statusMessageTimeout = time.Second * 3 // how long to show status messages like "copied!"

// NewProgram returns a new Tea program showing entries. Controller updates
// are forwarded to the program.
func NewProgram(cfg Config, ctrl *playback.Controller, entries []playback.Entry) *tea.Program {
	log.Debug("Starting kikitori", "entries", len(entries))

	var opts []tea.ProgramOption
	if cfg.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	if cfg.EnableMouse {
		opts = append(opts, tea.WithMouseCellMotion())
	}
	m := newModel(cfg, ctrl, entries)
	p := tea.NewProgram(m, opts...)
	ctrl.SetOnUpdate(func(u playback.Update) { p.Send(updateMsg(u)) })
	return p
}

// OptionsChanged returns the message that applies reloaded options to a
// running program.
func OptionsChanged(opts options.Options) tea.Msg {
	return optionsMsg(opts)
}

type (
	updateMsg               playback.Update
	optionsMsg              options.Options
	reloadMsg               struct{}
	statusMessageTimeoutMsg struct{}
	entriesMsg              struct {
		entries []playback.Entry
		err     error
	}
	playedMsg struct {
		result playback.Result
		err    error
	}
	discoveredMsg struct {
		key cache.Key
		err error
	}
)

type statusMessage struct {
	message string
	isError bool
}

// row addresses one headword on screen.
type row struct {
	entry    int
	headword int
}

type model struct {
	cfg     Config
	ctrl    *playback.Controller
	entries []playback.Entry
	rows    []row
	cursor  int
	width   int
	height  int

	keys    keyMap
	help    help.Model
	spinner spinner.Model
	pending int

	title   string
	badges  map[cache.Key]playback.Badge
	state   playback.State
	visible bool
	menu    *menuModel

	status      *statusMessage
	statusTimer *time.Timer
	watcher     *fsnotify.Watcher
}

func newModel(cfg Config, ctrl *playback.Controller, entries []playback.Entry) model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = cursorStyle

	h := help.New()
	h.ShowAll = cfg.ShowHelp

	m := model{
		cfg:     cfg,
		ctrl:    ctrl,
		keys:    newKeyMap(),
		help:    h,
		spinner: sp,
		badges:  make(map[cache.Key]playback.Badge),
		visible: true,
	}
	m.setEntries(entries)
	if cfg.watchable() {
		m.initWatcher()
	}
	return m
}

func (m *model) setEntries(entries []playback.Entry) {
	m.entries = entries
	m.rows = nil
	for i, e := range entries {
		for j := range e.Headwords {
			m.rows = append(m.rows, row{entry: i, headword: j})
		}
	}
	m.cursor = min(m.cursor, max(0, len(m.rows)-1))
	m.badges = make(map[cache.Key]playback.Badge)
	m.title = ""
	m.menu = nil
	m.keys.menuOpen = false
	m.ctrl.SetContent(entries)
}

func (m model) Init() tea.Cmd {
	cmds := []tea.Cmd{contentUpdatedCmd(m.ctrl)}
	if m.watcher != nil {
		cmds = append(cmds, m.watchFile)
	}
	return tea.Batch(cmds...)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Quit) {
			m.ctrl.Stop()
			m.ctrl.ClearAutoPlayTimer()
			m.unwatchFile()
			return m, tea.Quit
		}
		if m.menu != nil {
			return m.updateMenu(msg)
		}
		return m.updateList(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case updateMsg:
		u := playback.Update(msg)
		switch u.Kind {
		case playback.UpdatePlayed:
			m.title = u.Title
			m.badges[u.Key] = u.Badge
			m.state = u.State
		case playback.UpdateCache:
			m.badges[u.Key] = u.Badge
		case playback.UpdateState:
			m.state = u.State
		}
		m.refreshMenu()

	case playedMsg:
		m.pending = max(0, m.pending-1)
		if msg.err != nil {
			log.Debug("play failed", "error", msg.err)
			cmds = append(cmds, m.showStatusMessage(statusMessage{"Play failed: " + msg.err.Error(), true}))
		} else if !msg.result.Valid {
			cmds = append(cmds, m.showStatusMessage(statusMessage{msg.result.Title, true}))
		}
		m.refreshMenu()

	case discoveredMsg:
		m.pending = max(0, m.pending-1)
		if msg.err != nil {
			log.Debug("discovery failed", "term", msg.key.Term, "error", msg.err)
		}
		m.refreshMenu()

	case optionsMsg:
		log.Info("options reloaded")
		m.ctrl.ApplyOptions(options.Options(msg))
		m.badges = make(map[cache.Key]playback.Badge)
		m.refreshMenu()
		cmds = append(cmds, m.showStatusMessage(statusMessage{"Options reloaded", false}))

	case reloadMsg:
		cmds = append(cmds, loadEntriesCmd(m.cfg.Path))
		if m.watcher != nil {
			cmds = append(cmds, m.watchFile)
		}

	case entriesMsg:
		if msg.err != nil {
			cmds = append(cmds, m.showStatusMessage(statusMessage{msg.err.Error(), true}))
			break
		}
		log.Debug("entries reloaded", "entries", len(msg.entries))
		m.setEntries(msg.entries)
		cmds = append(cmds, contentUpdatedCmd(m.ctrl))

	case statusMessageTimeoutMsg:
		m.status = nil

	case spinner.TickMsg:
		if m.pending > 0 {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	return m, tea.Batch(cmds...)
}

func (m model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Play):
		r, ok := m.playable()
		if !ok {
			return m, nil
		}
		if !m.ctrl.Options().Audio.Enabled {
			return m, m.showStatusMessage(statusMessage{"Audio is disabled", true})
		}
		return m, m.startPending(playCmd(m.ctrl, r))
	case key.Matches(msg, m.keys.Stop):
		m.ctrl.Stop()
	case key.Matches(msg, m.keys.Menu):
		r, ok := m.playable()
		if !ok || !m.ctrl.Options().Audio.Enabled {
			return m, nil
		}
		m.menu = newMenuModel(r)
		m.keys.menuOpen = true
		m.refreshMenu()
		return m, m.startPending(discoverCmd(m.ctrl, r, m.entries[r.entry].Headwords[r.headword].Key()))
	case key.Matches(msg, m.keys.Visible):
		m.visible = !m.visible
		m.ctrl.SetFrameVisible(m.visible)
		if m.visible {
			return m, m.showStatusMessage(statusMessage{"Auto-play on", false})
		}
		return m, m.showStatusMessage(statusMessage{"Auto-play paused", false})
	case key.Matches(msg, m.keys.Reload):
		if m.cfg.watchable() {
			return m, loadEntriesCmd(m.cfg.Path)
		}
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	mm := m.menu
	switch {
	case key.Matches(msg, m.keys.Close), key.Matches(msg, m.keys.Menu):
		m.menu = nil
		m.keys.menuOpen = false
	case key.Matches(msg, m.keys.Up):
		mm.move(-1)
	case key.Matches(msg, m.keys.Down):
		mm.move(1)
	case key.Matches(msg, m.keys.Play):
		it, ok := mm.selected()
		if !ok {
			return m, nil
		}
		return m, m.startPending(playFromSourceCmd(m.ctrl, mm.row, it))
	case key.Matches(msg, m.keys.Primary):
		it, ok := mm.selected()
		if !ok {
			return m, nil
		}
		if p := m.ctrl.SetPrimary(mm.row.entry, mm.row.headword, it.source, it.item.Index); p != nil {
			m.refreshMenu()
			return m, m.showStatusMessage(statusMessage{"Primary audio set", false})
		}
		m.refreshMenu()
		return m, m.showStatusMessage(statusMessage{"Primary audio cleared", false})
	case key.Matches(msg, m.keys.Copy):
		it, ok := mm.selected()
		if !ok || it.item.URL == "" {
			return m, m.showStatusMessage(statusMessage{"No URL to copy", true})
		}
		if err := clipboard.WriteAll(it.item.URL); err != nil {
			log.Debug("clipboard write failed", "error", err)
			return m, m.showStatusMessage(statusMessage{"Copy failed", true})
		}
		return m, m.showStatusMessage(statusMessage{"Copied URL", false})
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m model) selected() (row, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return row{}, false
	}
	return m.rows[m.cursor], true
}

// playable returns the selected row unless it belongs to a kanji entry.
func (m model) playable() (row, bool) {
	r, ok := m.selected()
	if !ok || m.entries[r.entry].Kanji {
		return row{}, false
	}
	return r, true
}

func (m *model) refreshMenu() {
	if m.menu == nil {
		return
	}
	m.menu.setGroups(m.ctrl.Menu(m.menu.row.entry, m.menu.row.headword))
}

// startPending counts an in-flight command and starts the spinner when it
// is the first one.
func (m *model) startPending(cmd tea.Cmd) tea.Cmd {
	m.pending++
	if m.pending == 1 {
		return tea.Batch(cmd, m.spinner.Tick)
	}
	return cmd
}

// showStatusMessage shows msg in the status bar until the timeout fires.
func (m *model) showStatusMessage(msg statusMessage) tea.Cmd {
	m.status = &msg
	if m.statusTimer != nil {
		m.statusTimer.Stop()
	}
	m.statusTimer = time.NewTimer(statusMessageTimeout)
	return waitForStatusMessageTimeout(m.statusTimer)
}

// COMMANDS

func contentUpdatedCmd(ctrl *playback.Controller) tea.Cmd {
	return func() tea.Msg {
		ctrl.ContentUpdated()
		return nil
	}
}

func playCmd(ctrl *playback.Controller, r row) tea.Cmd {
	return func() tea.Msg {
		res, err := ctrl.Play(context.Background(), r.entry, r.headword, "")
		return playedMsg{result: res, err: err}
	}
}

func playFromSourceCmd(ctrl *playback.Controller, r row, it menuRow) tea.Cmd {
	return func() tea.Msg {
		res, err := ctrl.PlayFromSource(context.Background(), r.entry, r.headword, it.source, it.item.Index)
		return playedMsg{result: res, err: err}
	}
}

func discoverCmd(ctrl *playback.Controller, r row, k cache.Key) tea.Cmd {
	return func() tea.Msg {
		err := ctrl.Discover(context.Background(), r.entry, r.headword)
		return discoveredMsg{key: k, err: err}
	}
}

func loadEntriesCmd(path string) tea.Cmd {
	return func() tea.Msg {
		entries, err := LoadEntries(path)
		return entriesMsg{entries: entries, err: err}
	}
}

func waitForStatusMessageTimeout(t *time.Timer) tea.Cmd {
	return func() tea.Msg {
		<-t.C
		return statusMessageTimeoutMsg{}
	}
}

// Run starts the program and blocks until it quits.
func Run(p *tea.Program) error {
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("unable to run tui: %w", err)
	}
	return nil
}
