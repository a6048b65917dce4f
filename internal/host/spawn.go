package host

import (
	"context"
	"os"
	"os/exec"
	"syscall"

	"github.com/pkg/errors"
)

// SpawnSpec is everything a canvas process needs on its command line.
type SpawnSpec struct {
	ID         string
	Kind       string
	Socket     string
	Scenario   string
	ConfigJSON string
}

// Process is a running canvas as the host sees it.
type Process interface {
	Wait() error
	Kill() error
	PID() int
}

// Spawner launches canvas processes. Tests substitute one that speaks
// the protocol over the session socket without exec.
type Spawner interface {
	Spawn(ctx context.Context, spec SpawnSpec) (Process, error)
}

// ExecSpawner runs the easel binary itself with the run subcommand,
// handing it the host's terminal. Each canvas gets its own process
// group so a kill sweeps helpers too.
type ExecSpawner struct {
	// Binary defaults to the current executable.
	Binary string
}

func (s ExecSpawner) Spawn(ctx context.Context, spec SpawnSpec) (Process, error) {
	bin := s.Binary
	if bin == "" {
		var err error
		bin, err = os.Executable()
		if err != nil {
			return nil, errors.Wrap(err, "resolve executable")
		}
	}
	args := []string{
		"run",
		"--canvas", spec.Kind,
		"--channel", spec.Socket,
		"--scenario", spec.Scenario,
		"--id", spec.ID,
	}
	if spec.ConfigJSON != "" {
		args = append(args, "--config", spec.ConfigJSON)
	}
	cmd := exec.Command(bin, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	if err := cmd.Start(); err != nil {
		return nil, errors.Wrapf(err, "spawn canvas %s", spec.Kind)
	}
	_ = ctx
	return &execProcess{cmd: cmd}, nil
}

type execProcess struct {
	cmd *exec.Cmd
}

func (p *execProcess) Wait() error { return p.cmd.Wait() }

func (p *execProcess) PID() int { return p.cmd.Process.Pid }

// Kill signals the whole process group.
func (p *execProcess) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return syscall.Kill(-p.cmd.Process.Pid, syscall.SIGKILL)
}
