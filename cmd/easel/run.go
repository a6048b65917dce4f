package main

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/easelterm/easel/internal/canvas"
	"github.com/easelterm/easel/internal/config"
	"github.com/easelterm/easel/internal/logging"
	"github.com/easelterm/easel/internal/registry"
	"github.com/easelterm/easel/internal/session"
	"github.com/easelterm/easel/internal/shell"
)

// closeGrace bounds how long the process may linger after the
// controller's close order before it is killed outright.
const closeGrace = 2 * time.Second

var (
	runCanvas   string
	runChannel  string
	runScenario string
	runID       string
	runConfig   string
	runLogFile  string
	runLogLevel string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one canvas attached to a session channel",
	Long: `Run a single canvas process. The controller passes the session
socket, the scenario id and an optional JSON config overlay; the canvas
connects exactly once and exits after its terminal envelope.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runCanvasSession()
	},
}

func init() {
	runCmd.Flags().StringVar(&runCanvas, "canvas", "", "canvas kind to run")
	runCmd.Flags().StringVar(&runChannel, "channel", "", "unix socket path of the session channel")
	runCmd.Flags().StringVar(&runScenario, "scenario", "", "scenario id stamped on every envelope")
	runCmd.Flags().StringVar(&runID, "id", "", "short session id")
	runCmd.Flags().StringVar(&runConfig, "config", "", "JSON config overlay from the controller")
	runCmd.Flags().StringVar(&runLogFile, "log-file", "", "log destination (default: state dir)")
	runCmd.Flags().StringVar(&runLogLevel, "log-level", "info", "debug, info, warn or error")
	_ = runCmd.MarkFlagRequired("canvas")
	_ = runCmd.MarkFlagRequired("channel")
	rootCmd.AddCommand(runCmd)
}

func runCanvasSession() error {
	if !registry.Valid(runCanvas) {
		return errors.Errorf("unknown canvas %q%s", runCanvas, didYouMean(runCanvas))
	}

	logPath := runLogFile
	if logPath == "" {
		logPath = logging.DefaultPath()
	}
	log, closeLog, err := logging.File(logPath, runLogLevel)
	if err != nil {
		return errors.Wrap(err, "open log file")
	}
	defer func() { _ = closeLog() }()
	log = log.With().Str("canvas", runCanvas).Str("session", runID).Logger()

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	if runConfig != "" {
		if err := cfg.MergeJSON([]byte(runConfig)); err != nil {
			return errors.Wrap(err, "apply config overlay")
		}
	}

	// Fail fast: a controller that cannot be reached at startup is gone.
	// No UI comes up.
	client, err := session.Connect(runChannel, session.Options{Scenario: runScenario, Logger: log})
	if err != nil {
		log.Error().Err(err).Msg("session connect failed")
		return err
	}

	cv, err := canvas.New(runCanvas, cfg)
	if err != nil {
		_ = client.Close()
		return err
	}

	p := tea.NewProgram(shell.New(cv, client, log), tea.WithAltScreen())

	// The shell quits on the close order; if the program wedges anyway,
	// the session still ends within a bounded delay.
	go func() {
		<-client.Done()
		time.Sleep(closeGrace)
		p.Kill()
	}()

	_, runErr := p.Run()

	// Close sends the default cancelled envelope when the canvas never
	// produced an outcome of its own.
	if err := client.Close(); err != nil {
		log.Debug().Err(err).Msg("channel close")
	}
	if runErr != nil {
		log.Error().Err(runErr).Msg("program ended with error")
		return runErr
	}
	return nil
}
