// Package docker polls the docker CLI for container stats and renders
// them with per-container CPU gauges. A container whose CPU sits at or
// above the configured threshold for N consecutive polls raises one
// container-cpu-high alert; dropping below the threshold re-arms it.
//
// The CLI is shelled out to on purpose: the canvas degrades to an
// inline error when docker is absent instead of dragging a daemon SDK
// into every session.
package docker

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os/exec"
	"sort"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"github.com/easelterm/easel/internal/config"
	"github.com/easelterm/easel/internal/protocol"
	"github.com/easelterm/easel/internal/registry"
	"github.com/easelterm/easel/internal/shell"
	"github.com/easelterm/easel/internal/ui"
)

const alertType = "container-cpu-high"

// Container is one merged row from docker ps and docker stats. Stopped
// containers appear with zero CPU.
type Container struct {
	ID     string
	Name   string
	State  string
	Status string
	CPU    float64
	Mem    float64
}

type pollMsg struct{}

type containersMsg struct {
	list []Container
	err  error
}

type Model struct {
	cfg     config.DockerConfig
	list    []Container
	streaks map[string]int
	err     error
	polled  bool
}

func New(cfg config.DockerConfig) Model {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 5 * time.Second
	}
	if cfg.Consecutive <= 0 {
		cfg.Consecutive = 2
	}
	if cfg.Binary == "" {
		cfg.Binary = "docker"
	}
	return Model{cfg: cfg, streaks: make(map[string]int)}
}

func (m Model) Kind() string  { return registry.KindDocker }
func (m Model) Title() string { return "Docker" }

func (m Model) Bindings() []shell.KeyBinding {
	return []shell.KeyBinding{
		{Keys: []string{"q", "esc"}, Action: "docker.quit", Description: "quit", Scopes: []string{m.Kind()}},
	}
}

func (m Model) Init() tea.Cmd { return m.collect }

func (m Model) collect() tea.Msg {
	list, err := snapshot(m.cfg.Binary)
	return containersMsg{list: list, err: err}
}

func pollSoon(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return pollMsg{} })
}

func (m Model) Update(msg tea.Msg) (shell.Canvas, tea.Cmd) {
	switch msg := msg.(type) {
	case pollMsg:
		return m, m.collect
	case containersMsg:
		return m.absorb(msg)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc":
			return m, shell.Cancel("user quit")
		}
	}
	return m, nil
}

func (m Model) absorb(msg containersMsg) (shell.Canvas, tea.Cmd) {
	cmds := []tea.Cmd{pollSoon(m.cfg.PollInterval)}
	if msg.err != nil {
		m.err = msg.err
		return m, tea.Batch(cmds...)
	}
	m.err = nil
	m.list = msg.list
	m.polled = true

	seen := make(map[string]bool, len(msg.list))
	for _, c := range msg.list {
		if c.State != "running" {
			continue
		}
		seen[c.Name] = true
		id := alertType + ":" + c.Name
		if m.cfg.CPUThreshold > 0 && c.CPU >= m.cfg.CPUThreshold {
			m.streaks[c.Name]++
			if m.streaks[c.Name] == m.cfg.Consecutive {
				cmds = append(cmds, shell.Alert(id, protocol.AlertPayload{
					Type:    alertType,
					Message: fmt.Sprintf("%s at %.1f%% cpu", c.Name, c.CPU),
					Data:    map[string]any{"container": c.Name, "cpu": c.CPU},
				}))
			}
			continue
		}
		if m.streaks[c.Name] != 0 {
			m.streaks[c.Name] = 0
		}
		cmds = append(cmds, shell.ClearAlert(id))
	}
	for name := range m.streaks {
		if !seen[name] {
			delete(m.streaks, name)
			cmds = append(cmds, shell.ClearAlert(alertType+":"+name))
		}
	}
	return m, tea.Batch(cmds...)
}

type statRow struct {
	ID      string `json:"ID"`
	Name    string `json:"Name"`
	CPUPerc string `json:"CPUPerc"`
	MemPerc string `json:"MemPerc"`
}

type psRow struct {
	ID     string `json:"ID"`
	Names  string `json:"Names"`
	State  string `json:"State"`
	Status string `json:"Status"`
}

func snapshot(binary string) ([]Container, error) {
	psOut, err := exec.Command(binary, "ps", "--all", "--format", "{{json .}}").Output()
	if err != nil {
		return nil, errors.Wrap(err, "docker ps")
	}
	statsOut, err := exec.Command(binary, "stats", "--no-stream", "--format", "{{json .}}").Output()
	if err != nil {
		return nil, errors.Wrap(err, "docker stats")
	}
	return merge(parsePS(psOut), parseStats(statsOut)), nil
}

func parseStats(out []byte) []statRow {
	var rows []statRow
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		var r statRow
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil || r.ID == "" {
			continue
		}
		rows = append(rows, r)
	}
	return rows
}

func parsePS(out []byte) []psRow {
	var rows []psRow
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		var r psRow
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil || r.ID == "" {
			continue
		}
		rows = append(rows, r)
	}
	return rows
}

func merge(ps []psRow, stats []statRow) []Container {
	byID := make(map[string]statRow, len(stats))
	for _, s := range stats {
		byID[s.ID] = s
	}
	list := make([]Container, 0, len(ps))
	for _, p := range ps {
		c := Container{ID: p.ID, Name: p.Names, State: p.State, Status: p.Status}
		if s, ok := byID[p.ID]; ok {
			c.CPU = parsePercent(s.CPUPerc)
			c.Mem = parsePercent(s.MemPerc)
		}
		list = append(list, c)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Name < list[j].Name })
	return list
}

func parsePercent(s string) float64 {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "%"))
	if s == "" || s == "--" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func (m Model) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString("  " + ui.ErrorStyle.Render("docker unavailable") + "\n")
		b.WriteString("  " + ui.DimStyle.Render(m.err.Error()) + "\n")
		return ui.FitHeight(b.String(), height)
	}
	if !m.polled {
		b.WriteString("  " + ui.DimStyle.Render("polling…") + "\n")
		return ui.FitHeight(b.String(), height)
	}
	if len(m.list) == 0 {
		b.WriteString("  " + ui.DimStyle.Render("no containers") + "\n")
		return ui.FitHeight(b.String(), height)
	}

	gw := 16
	for _, c := range m.list {
		icon := ui.DimStyle.Render(ui.IconStopped)
		if c.State == "running" {
			icon = ui.SuccessStyle.Render(ui.IconRunning)
		}
		name := c.Name
		if len(name) > 20 {
			name = name[:20]
		}
		line := fmt.Sprintf("  %s %-20s %s %5.1f%%  %5.1f%%  %s",
			icon, name,
			ui.Gauge(gw, c.CPU/100, 0, m.cfg.CPUThreshold/100),
			c.CPU, c.Mem,
			ui.DimStyle.Render(c.Status))
		b.WriteString(ui.Clip(line, width) + "\n")
	}
	b.WriteString("\n")
	b.WriteString("  " + ui.DimStyle.Render(fmt.Sprintf("threshold %.0f%% · every %s", m.cfg.CPUThreshold, m.cfg.PollInterval)) + "\n")
	return ui.FitHeight(b.String(), height)
}
