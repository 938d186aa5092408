package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"mediasyncdel/internal/config"
	"mediasyncdel/internal/daemon"
	"mediasyncdel/internal/daemonctl"
	"mediasyncdel/internal/history"
	"mediasyncdel/internal/logging"
	"mediasyncdel/internal/settings"
	"mediasyncdel/internal/syncdel"
	"mediasyncdel/internal/webhook"
)

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "process <event.json|->",
		Short: "Run one webhook payload through the deletion pipeline",
		Long: "Run one webhook payload through the deletion pipeline and print the outcome.\n" +
			"Use - to read the payload from stdin. With --dry-run the pipeline runs against\n" +
			"an in-memory copy of the settings and nothing is deleted or persisted.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body, err := readPayload(cmd, args[0])
			if err != nil {
				return err
			}
			raw, err := webhook.DecodeJSON(body)
			if err != nil {
				return err
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path, err := ctx.resolvedConfigPath()
			if err != nil {
				return err
			}
			logger, err := newCLILogger(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			requestID := uuid.NewString()
			runCtx := logging.WithRequestID(cmd.Context(), requestID)

			if dryRun {
				store := syncdel.NewMemoryStore(settings.FromConfig(cfg.Sync))
				outcome := syncdel.NewHandler(store, nil, nil, logger).Handle(runCtx, raw)
				return printJSON(cmd.OutOrStdout(), webhook.NewResponse(requestID, outcome))
			}

			return ctx.withHistory(func(cfg *config.Config, store *history.Store) error {
				d, err := daemon.New(cfg, path, store, logger)
				if err != nil {
					return err
				}
				outcome := d.Process(runCtx, raw)
				if outcome.SelfDisabled {
					if _, err := daemonctl.SignalReload(cfg); err != nil && !errors.Is(err, daemonctl.ErrDaemonNotRunning) {
						logger.Warn("daemon reload after disable failed", logging.Error(err))
					}
				}
				return printJSON(cmd.OutOrStdout(), webhook.NewResponse(requestID, outcome))
			})
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Evaluate the payload without side effects")
	return cmd
}

func readPayload(cmd *cobra.Command, source string) ([]byte, error) {
	if source == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("read payload: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("read payload: %s is empty", source)
	}
	return data, nil
}

// newCLILogger keeps stdout free for command output.
func newCLILogger(cfg *config.Config) (*slog.Logger, error) {
	outputs := []string{"stderr"}
	if cfg.Paths.LogDir != "" {
		outputs = append(outputs, filepath.Join(cfg.Paths.LogDir, "mediasyncdel.log"))
	}
	return logging.New(logging.Options{
		Level:       cfg.Logging.Level,
		Format:      cfg.Logging.Format,
		OutputPaths: outputs,
	})
}
