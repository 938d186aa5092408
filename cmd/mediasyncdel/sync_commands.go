package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"mediasyncdel/internal/config"
	"mediasyncdel/internal/daemonctl"
)

func newSyncCommands(ctx *commandContext) []*cobra.Command {
	var (
		delSource   bool
		sendNotify  bool
		excludePath string
	)
	enableCmd := &cobra.Command{
		Use:   "enable",
		Short: "Enable deletion sync",
		Long: "Enable deletion sync. Use this to re-enable sync after the daemon disabled it\n" +
			"because the media server stopped sending item_isvirtual.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateSync(cmd, ctx, func(section *config.Sync) {
				section.Enable = true
				if cmd.Flags().Changed("del-source") {
					section.DelSource = delSource
				}
				if cmd.Flags().Changed("notify") {
					section.SendNotify = sendNotify
				}
				if cmd.Flags().Changed("exclude") {
					section.ExcludePath = config.JoinExcludePath(config.SplitExcludePath(excludePath))
				}
			})
		},
	}
	enableCmd.Flags().BoolVar(&delSource, "del-source", false, "Also delete source files recorded in history")
	enableCmd.Flags().BoolVar(&sendNotify, "notify", false, "Send a notification for each synced deletion")
	enableCmd.Flags().StringVar(&excludePath, "exclude", "", "Comma-separated path prefixes to never sync")

	disableCmd := &cobra.Command{
		Use:   "disable",
		Short: "Disable deletion sync",
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateSync(cmd, ctx, func(section *config.Sync) {
				section.Enable = false
			})
		},
	}

	return []*cobra.Command{enableCmd, disableCmd}
}

// updateSync rewrites the [sync] table and asks a running daemon to reload.
func updateSync(cmd *cobra.Command, ctx *commandContext, mutate func(*config.Sync)) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	path, err := ctx.resolvedConfigPath()
	if err != nil {
		return err
	}

	section := cfg.Sync
	mutate(&section)
	if err := config.UpdateSync(path, section); err != nil {
		return fmt.Errorf("update config: %w", err)
	}
	cfg.Sync = section

	stdout := cmd.OutOrStdout()
	state := "disabled"
	if section.Enable {
		state = "enabled"
	}
	fmt.Fprintf(stdout, "Sync %s in %s\n", state, path)

	pid, err := daemonctl.SignalReload(cfg)
	switch {
	case errors.Is(err, daemonctl.ErrDaemonNotRunning):
		fmt.Fprintln(stdout, "Daemon is not running; settings apply on next start")
	case err != nil:
		return fmt.Errorf("signal daemon: %w", err)
	default:
		fmt.Fprintf(stdout, "Daemon reloaded (pid %d)\n", pid)
	}
	if section.Enable && strings.TrimSpace(section.ExcludePath) != "" {
		fmt.Fprintf(stdout, "Excluded paths: %s\n", section.ExcludePath)
	}
	return nil
}
