package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"mediasyncdel/internal/config"
	"mediasyncdel/internal/daemonctl"
	"mediasyncdel/internal/daemonrun"
	"mediasyncdel/internal/history"
)

const stopTimeout = 10 * time.Second

func newServeCommand(ctx *commandContext) *cobra.Command {
	var logLevel string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook daemon in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := ctx.resolvedConfigPath()
			if err != nil {
				return err
			}
			return daemonrun.Run(cmd.Context(), cfg, daemonrun.Options{
				ConfigPath: path,
				LogLevel:   strings.TrimSpace(logLevel),
			})
		},
	}
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Override the configured log level")
	return cmd
}

func newDaemonCommands(ctx *commandContext) []*cobra.Command {
	stopCmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the running daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			pid, err := daemonctl.Stop(cfg, stopTimeout)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(stdout, "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(stdout, "Daemon stopped (pid %d)\n", pid)
			return nil
		},
	}

	reloadCmd := &cobra.Command{
		Use:   "reload",
		Short: "Ask the running daemon to re-read its sync settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			pid, err := daemonctl.SignalReload(cfg)
			if errors.Is(err, daemonctl.ErrDaemonNotRunning) {
				fmt.Fprintln(cmd.OutOrStdout(), "Daemon is not running")
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reload requested (pid %d)\n", pid)
			return nil
		},
	}

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show daemon state and sync settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := ctx.resolvedConfigPath()
			if err != nil {
				return err
			}
			stdout := cmd.OutOrStdout()
			colorize := shouldColorize(stdout)

			renderSection(stdout, "Daemon", daemonStatusLines(cfg), colorize)
			fmt.Fprintln(stdout)
			renderSection(stdout, "Sync", syncStatusLines(cfg.Sync), colorize)
			fmt.Fprintln(stdout)
			renderSection(stdout, "Paths", pathStatusLines(cmd, cfg, path, ctx.configExists), colorize)
			return nil
		},
	}

	return []*cobra.Command{statusCmd, stopCmd, reloadCmd}
}

func daemonStatusLines(cfg *config.Config) []statusLine {
	running, pid, err := daemonctl.ProcessInfo(cfg)
	var line statusLine
	switch {
	case err != nil && running:
		line = statusLine{label: "Daemon", kind: statusWarn, message: fmt.Sprintf("running, pid unknown (%v)", err)}
	case err != nil:
		line = statusLine{label: "Daemon", kind: statusError, message: err.Error()}
	case running:
		line = statusLine{label: "Daemon", kind: statusOK, message: fmt.Sprintf("running (pid %d)", pid)}
	default:
		line = statusLine{label: "Daemon", kind: statusWarn, message: "not running"}
	}
	lines := []statusLine{line, {label: "Webhook", kind: statusInfo, message: cfg.Paths.WebhookBind}}
	if cfg.Paths.WebhookToken == "" {
		lines = append(lines, statusLine{label: "Webhook token", kind: statusWarn, message: "not set"})
	} else {
		lines = append(lines, statusLine{label: "Webhook token", kind: statusOK, message: "set"})
	}
	return lines
}

func syncStatusLines(section config.Sync) []statusLine {
	enabled := statusLine{label: "Enabled", kind: statusOK, message: yesNo(true)}
	if !section.Enable {
		enabled = statusLine{label: "Enabled", kind: statusWarn, message: yesNo(false)}
	}
	excluded := "none"
	if paths := config.SplitExcludePath(section.ExcludePath); len(paths) > 0 {
		excluded = strings.Join(paths, ", ")
	}
	return []statusLine{
		enabled,
		{label: "Delete source", kind: statusInfo, message: yesNo(section.DelSource)},
		{label: "Notify on delete", kind: statusInfo, message: yesNo(section.SendNotify)},
		{label: "Excluded paths", kind: statusInfo, message: excluded},
	}
}

func pathStatusLines(cmd *cobra.Command, cfg *config.Config, configPath string, exists bool) []statusLine {
	configLine := statusLine{label: "Config", kind: statusOK, message: configPath}
	if !exists {
		configLine = statusLine{label: "Config", kind: statusWarn, message: configPath + " (missing, defaults in use)"}
	}
	historyLine := statusLine{label: "History", kind: statusInfo, message: cfg.HistoryDBPath()}
	if store, err := history.Open(cfg); err != nil {
		historyLine = statusLine{label: "History", kind: statusError, message: err.Error()}
	} else {
		count, err := store.Count(cmd.Context())
		store.Close()
		if err != nil {
			historyLine = statusLine{label: "History", kind: statusError, message: err.Error()}
		} else {
			historyLine.message = fmt.Sprintf("%s (%d records)", cfg.HistoryDBPath(), count)
		}
	}
	roots := "none (empty folders kept)"
	if len(cfg.Paths.SourceRoots) > 0 {
		roots = strings.Join(cfg.Paths.SourceRoots, ", ")
	}
	return []statusLine{
		configLine,
		historyLine,
		{label: "Logs", kind: statusInfo, message: cfg.Paths.LogDir},
		{label: "Source roots", kind: statusInfo, message: roots},
	}
}
