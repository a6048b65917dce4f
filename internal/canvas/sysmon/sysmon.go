// Package sysmon renders load, memory, and disk gauges sampled from
// /proc and statfs. Threshold breaches raise the cpu-high, mem-high,
// and disk-high alert conditions; recovery clears them so the next
// breach alerts again.
package sysmon

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"

	"github.com/easelterm/easel/internal/config"
	"github.com/easelterm/easel/internal/protocol"
	"github.com/easelterm/easel/internal/registry"
	"github.com/easelterm/easel/internal/shell"
	"github.com/easelterm/easel/internal/ui"
)

// Stats is one sample. Memory numbers are kilobytes as /proc/meminfo
// reports them; disk numbers are bytes.
type Stats struct {
	Load1     float64
	Cores     int
	MemTotal  uint64
	MemAvail  uint64
	DiskTotal uint64
	DiskFree  uint64
}

func (s Stats) LoadRatio() float64 {
	if s.Cores == 0 {
		return 0
	}
	return s.Load1 / float64(s.Cores)
}

func (s Stats) MemRatio() float64 {
	if s.MemTotal == 0 {
		return 0
	}
	return float64(s.MemTotal-s.MemAvail) / float64(s.MemTotal)
}

func (s Stats) DiskRatio() float64 {
	if s.DiskTotal == 0 {
		return 0
	}
	return float64(s.DiskTotal-s.DiskFree) / float64(s.DiskTotal)
}

type statsMsg struct {
	s   Stats
	err error
}

type pollMsg struct{}

type Model struct {
	cfg     config.SysmonConfig
	current Stats
	sampled bool
	err     error
}

func New(cfg config.SysmonConfig) Model {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 2 * time.Second
	}
	return Model{cfg: cfg}
}

func (m Model) Kind() string  { return registry.KindSysmon }
func (m Model) Title() string { return "System Monitor" }

func (m Model) Bindings() []shell.KeyBinding {
	return []shell.KeyBinding{
		{Keys: []string{"q", "esc"}, Action: "sysmon.quit", Description: "quit", Scopes: []string{m.Kind()}},
	}
}

func (m Model) Init() tea.Cmd { return collect }

func collect() tea.Msg {
	s, err := sample()
	return statsMsg{s: s, err: err}
}

func pollSoon(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg { return pollMsg{} })
}

func (m Model) Update(msg tea.Msg) (shell.Canvas, tea.Cmd) {
	switch msg := msg.(type) {
	case pollMsg:
		return m, collect
	case statsMsg:
		return m.absorb(msg)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc":
			return m, shell.Cancel("user quit")
		}
	}
	return m, nil
}

func (m Model) absorb(msg statsMsg) (shell.Canvas, tea.Cmd) {
	cmds := []tea.Cmd{pollSoon(m.cfg.PollInterval)}
	if msg.err != nil {
		m.err = msg.err
		return m, tea.Batch(cmds...)
	}
	m.err = nil
	m.current = msg.s
	m.sampled = true

	s := msg.s
	cmds = append(cmds,
		condition("cpu-high", s.LoadRatio(), m.cfg.LoadWarn,
			fmt.Sprintf("load %.2f on %d cores", s.Load1, s.Cores),
			map[string]any{"load1": s.Load1, "cores": s.Cores}),
		condition("mem-high", s.MemRatio(), m.cfg.MemWarn,
			fmt.Sprintf("memory %.0f%% used", s.MemRatio()*100),
			map[string]any{"total_kb": s.MemTotal, "avail_kb": s.MemAvail}),
		condition("disk-high", s.DiskRatio(), m.cfg.DiskWarn,
			fmt.Sprintf("disk %.0f%% used", s.DiskRatio()*100),
			map[string]any{"total": s.DiskTotal, "free": s.DiskFree}),
	)
	return m, tea.Batch(cmds...)
}

// condition raises the alert while ratio sits at or above limit and
// clears it below. The session gate turns this stream of raises and
// clears into one alert per breach episode.
func condition(id string, ratio, limit float64, message string, data map[string]any) tea.Cmd {
	if limit > 0 && ratio >= limit {
		return shell.Alert(id, protocol.AlertPayload{Type: id, Message: message, Data: data})
	}
	return shell.ClearAlert(id)
}

func sample() (Stats, error) {
	var s Stats
	load, err := os.ReadFile("/proc/loadavg")
	if err != nil {
		return s, errors.Wrap(err, "read loadavg")
	}
	s.Load1, err = parseLoad(load)
	if err != nil {
		return s, err
	}
	s.Cores = runtime.NumCPU()

	mem, err := os.ReadFile("/proc/meminfo")
	if err != nil {
		return s, errors.Wrap(err, "read meminfo")
	}
	s.MemTotal, s.MemAvail, err = parseMem(mem)
	if err != nil {
		return s, err
	}

	var fs syscall.Statfs_t
	if err := syscall.Statfs("/", &fs); err != nil {
		return s, errors.Wrap(err, "statfs /")
	}
	s.DiskTotal = uint64(fs.Blocks) * uint64(fs.Bsize)
	s.DiskFree = uint64(fs.Bavail) * uint64(fs.Bsize)
	return s, nil
}

func parseLoad(b []byte) (float64, error) {
	fields := strings.Fields(string(b))
	if len(fields) == 0 {
		return 0, errors.New("empty loadavg")
	}
	v, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, errors.Wrap(err, "parse loadavg")
	}
	return v, nil
}

func parseMem(b []byte) (total, avail uint64, err error) {
	for _, line := range strings.Split(string(b), "\n") {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		switch fields[0] {
		case "MemTotal:":
			total, err = strconv.ParseUint(fields[1], 10, 64)
		case "MemAvailable:":
			avail, err = strconv.ParseUint(fields[1], 10, 64)
		}
		if err != nil {
			return 0, 0, errors.Wrapf(err, "parse meminfo %q", line)
		}
	}
	if total == 0 {
		return 0, 0, errors.New("meminfo missing MemTotal")
	}
	return total, avail, nil
}

func (m Model) View(width, height int) string {
	var b strings.Builder
	b.WriteString("\n")
	if m.err != nil {
		b.WriteString("  " + ui.ErrorStyle.Render(m.err.Error()) + "\n")
		return ui.FitHeight(b.String(), height)
	}
	if !m.sampled {
		b.WriteString("  " + ui.DimStyle.Render("sampling…") + "\n")
		return ui.FitHeight(b.String(), height)
	}

	s := m.current
	gw := width - 30
	if gw > 40 {
		gw = 40
	}
	if gw < 8 {
		gw = 8
	}
	row := func(label, value string, ratio, limit float64) {
		b.WriteString(fmt.Sprintf("  %s %-16s %s %3.0f%%\n",
			ui.MutedStyle.Render(fmt.Sprintf("%-8s", label)),
			value, ui.Gauge(gw, ratio, limit, limit), ratio*100))
	}
	row("load", fmt.Sprintf("%.2f / %d cores", s.Load1, s.Cores), s.LoadRatio(), m.cfg.LoadWarn)
	row("memory", fmt.Sprintf("%s / %s", kb(s.MemTotal-s.MemAvail), kb(s.MemTotal)), s.MemRatio(), m.cfg.MemWarn)
	row("disk", fmt.Sprintf("%s / %s", bytesOf(s.DiskTotal-s.DiskFree), bytesOf(s.DiskTotal)), s.DiskRatio(), m.cfg.DiskWarn)
	b.WriteString("\n")
	b.WriteString("  " + ui.DimStyle.Render(fmt.Sprintf("every %s", m.cfg.PollInterval)) + "\n")
	return ui.FitHeight(b.String(), height)
}

func kb(n uint64) string { return bytesOf(n << 10) }

func bytesOf(n uint64) string {
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
