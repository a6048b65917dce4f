// Package files is a directory browser. fsnotify keeps the listing in
// step with the directory being viewed; enter on a file emits the
// selected {action:"open"} payload and ends the session.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"

	"github.com/easelterm/easel/internal/config"
	"github.com/easelterm/easel/internal/registry"
	"github.com/easelterm/easel/internal/shell"
	"github.com/easelterm/easel/internal/ui"
)

// OpenPayload asks the controller to do something with a path. The
// canvas itself never opens anything.
type OpenPayload struct {
	Action string `json:"action"`
	Path   string `json:"path"`
}

type fsEventMsg struct{}

type watchErrMsg struct{ err error }

type item struct {
	name string
	dir  bool
	size int64
}

type Model struct {
	dir        string
	items      []item
	cursor     int
	showHidden bool
	watcher    *fsnotify.Watcher
	loadErr    error
}

func New(cfg config.FilesConfig) Model {
	dir, err := os.Getwd()
	if err != nil {
		dir = "."
	}
	return newAt(cfg, dir)
}

func newAt(cfg config.FilesConfig, dir string) Model {
	m := Model{dir: dir, showHidden: cfg.ShowHidden}
	if w, err := fsnotify.NewWatcher(); err == nil {
		m.watcher = w
		_ = w.Add(dir)
	}
	return m.load()
}

func (m Model) Kind() string  { return registry.KindFiles }
func (m Model) Title() string { return "Files" }

func (m Model) Bindings() []shell.KeyBinding {
	return []shell.KeyBinding{
		{Keys: []string{"j", "k"}, Action: "files.move", Description: "move", Scopes: []string{m.Kind()}},
		{Keys: []string{"enter"}, Action: "files.open", Description: "open", Scopes: []string{m.Kind()}},
		{Keys: []string{"backspace", "h"}, Action: "files.up", Description: "parent dir", Scopes: []string{m.Kind()}},
		{Keys: []string{"."}, Action: "files.hidden", Description: "hidden files", Scopes: []string{m.Kind()}},
		{Keys: []string{"q", "esc"}, Action: "files.quit", Description: "quit", Scopes: []string{m.Kind()}},
	}
}

func (m Model) Init() tea.Cmd { return watch(m.watcher) }

func watch(w *fsnotify.Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case _, ok := <-w.Events:
			if !ok {
				return nil
			}
			return fsEventMsg{}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return watchErrMsg{err: err}
		}
	}
}

func (m Model) Update(msg tea.Msg) (shell.Canvas, tea.Cmd) {
	switch msg := msg.(type) {
	case fsEventMsg:
		return m.load(), watch(m.watcher)
	case watchErrMsg:
		return m, tea.Batch(shell.Error(msg.err), watch(m.watcher))
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (shell.Canvas, tea.Cmd) {
	switch msg.String() {
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
		return m, nil
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
		return m, nil
	case "enter", "l":
		if m.cursor >= len(m.items) {
			return m, nil
		}
		it := m.items[m.cursor]
		path := filepath.Join(m.dir, it.name)
		if it.dir {
			return m.changeDir(path), nil
		}
		return m, shell.Select(OpenPayload{Action: "open", Path: path})
	case "backspace", "h", "left":
		parent := filepath.Dir(m.dir)
		if parent == m.dir {
			return m, nil
		}
		return m.changeDir(parent), nil
	case ".":
		m.showHidden = !m.showHidden
		return m.load(), nil
	case "q", "esc":
		return m, shell.Cancel("user quit")
	}
	return m, nil
}

func (m Model) changeDir(dir string) Model {
	if m.watcher != nil {
		_ = m.watcher.Remove(m.dir)
		_ = m.watcher.Add(dir)
	}
	m.dir = dir
	m.cursor = 0
	return m.load()
}

func (m Model) load() Model {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		m.loadErr = err
		m.items = nil
		return m
	}
	m.loadErr = nil
	items := make([]item, 0, len(entries))
	for _, e := range entries {
		name := e.Name()
		if !m.showHidden && strings.HasPrefix(name, ".") {
			continue
		}
		it := item{name: name, dir: e.IsDir()}
		if !it.dir {
			if info, err := e.Info(); err == nil {
				it.size = info.Size()
			}
		}
		items = append(items, it)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].dir != items[j].dir {
			return items[i].dir
		}
		return items[i].name < items[j].name
	})
	m.items = items
	if m.cursor >= len(items) {
		m.cursor = len(items) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	return m
}

func (m Model) View(width, height int) string {
	var b strings.Builder
	b.WriteString("  " + ui.TitleStyle.Render(m.dir) + "\n\n")

	if m.loadErr != nil {
		b.WriteString("  " + ui.ErrorStyle.Render(m.loadErr.Error()) + "\n")
		return ui.FitHeight(b.String(), height)
	}
	if len(m.items) == 0 {
		b.WriteString("  " + ui.DimStyle.Render("empty directory") + "\n")
		return ui.FitHeight(b.String(), height)
	}

	rows := height - 3
	if rows < 1 {
		rows = 1
	}
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := start + rows
	if end > len(m.items) {
		end = len(m.items)
	}
	for i := start; i < end; i++ {
		it := m.items[i]
		icon := ui.IconDot
		name := it.name
		meta := humanSize(it.size)
		if it.dir {
			icon = ui.IconArrow
			name += "/"
			meta = ""
		}
		line := fmt.Sprintf("  %s %-40s %8s", icon, name, meta)
		if i == m.cursor {
			line = ui.SelectedStyle.Render(line)
		} else if it.dir {
			line = ui.TitleStyle.Render(line)
		}
		b.WriteString(ui.Clip(line, width) + "\n")
	}
	return ui.FitHeight(b.String(), height)
}

func humanSize(n int64) string {
	switch {
	case n >= 1<<30:
		return fmt.Sprintf("%.1fG", float64(n)/(1<<30))
	case n >= 1<<20:
		return fmt.Sprintf("%.1fM", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1fK", float64(n)/(1<<10))
	}
	return fmt.Sprintf("%dB", n)
}
