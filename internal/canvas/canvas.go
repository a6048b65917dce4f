// Package canvas assembles the suite: one constructor per kind in the
// catalog. The shell stays ignorant of concrete canvases; this is the
// only place that knows them all.
package canvas

import (
	"github.com/pkg/errors"

	"github.com/easelterm/easel/internal/canvas/calculator"
	"github.com/easelterm/easel/internal/canvas/clock"
	"github.com/easelterm/easel/internal/canvas/colors"
	"github.com/easelterm/easel/internal/canvas/docker"
	"github.com/easelterm/easel/internal/canvas/files"
	"github.com/easelterm/easel/internal/canvas/kanban"
	"github.com/easelterm/easel/internal/canvas/notes"
	"github.com/easelterm/easel/internal/canvas/passgen"
	"github.com/easelterm/easel/internal/canvas/sysmon"
	"github.com/easelterm/easel/internal/canvas/timer"
	"github.com/easelterm/easel/internal/config"
	"github.com/easelterm/easel/internal/registry"
	"github.com/easelterm/easel/internal/shell"
)

// New builds the canvas for kind, handing it its slice of the config.
func New(kind string, cfg config.Config) (shell.Canvas, error) {
	switch kind {
	case registry.KindCalculator:
		return calculator.New(), nil
	case registry.KindTimer:
		return timer.New(cfg.Timer), nil
	case registry.KindClock:
		return clock.New(cfg.Clock), nil
	case registry.KindFiles:
		return files.New(cfg.Files), nil
	case registry.KindSysmon:
		return sysmon.New(cfg.Sysmon), nil
	case registry.KindDocker:
		return docker.New(cfg.Docker), nil
	case registry.KindNotes:
		return notes.New(), nil
	case registry.KindKanban:
		return kanban.New(), nil
	case registry.KindPassgen:
		return passgen.New(cfg.Passgen), nil
	case registry.KindColors:
		return colors.New(), nil
	}
	return nil, errors.Errorf("unknown canvas kind %q", kind)
}
