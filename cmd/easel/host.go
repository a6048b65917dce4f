package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/easelterm/easel/internal/config"
	"github.com/easelterm/easel/internal/host"
	"github.com/easelterm/easel/internal/logging"
	"github.com/easelterm/easel/internal/registry"
)

var (
	hostOnce     bool
	hostJournal  string
	hostConfig   string
	hostLogLevel string
)

var hostCmd = &cobra.Command{
	Use:   "host [canvas]",
	Short: "Supervise canvas sessions as the reference controller",
	Long: `Spawn the given canvas (default files) in a fresh session, follow
navigate handoffs, and print the final outcome as JSON on stdout. Logs
go to stderr; an optional SQLite journal records every envelope.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		kind := registry.KindFiles
		if len(args) == 1 {
			kind = args[0]
		}
		return runHost(cmd, kind)
	},
}

func init() {
	hostCmd.Flags().BoolVar(&hostOnce, "once", false, "stop at the first outcome instead of following navigation")
	hostCmd.Flags().StringVar(&hostJournal, "journal", "", "SQLite file recording every envelope")
	hostCmd.Flags().StringVar(&hostConfig, "config", "", "JSON config overlay forwarded to every canvas")
	hostCmd.Flags().StringVar(&hostLogLevel, "log-level", "info", "debug, info, warn or error")
	rootCmd.AddCommand(hostCmd)
}

func runHost(cmd *cobra.Command, kind string) error {
	if !registry.Valid(kind) {
		return errors.Errorf("unknown canvas %q%s", kind, didYouMean(kind))
	}
	log := logging.Console(os.Stderr, hostLogLevel)

	cfg, err := config.Load()
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	if hostConfig != "" {
		if err := cfg.MergeJSON([]byte(hostConfig)); err != nil {
			return errors.Wrap(err, "apply config overlay")
		}
	}

	opts := host.Options{
		Config:     cfg.Host,
		Logger:     log,
		Once:       hostOnce,
		ConfigJSON: hostConfig,
	}
	journalPath := hostJournal
	if journalPath == "" {
		journalPath = cfg.Host.JournalPath
	}
	if journalPath != "" {
		j, err := host.OpenJournal(journalPath)
		if err != nil {
			return errors.Wrap(err, "open journal")
		}
		defer j.Close()
		opts.Journal = j
		log.Info().Str("path", journalPath).Msg("journaling envelopes")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := host.New(opts)
	if err := h.Start(ctx); err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		h.Shutdown()
	}()

	out, err := h.Run(ctx, kind)
	h.Shutdown()
	if err != nil {
		return err
	}

	raw, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(raw))
	return nil
}
