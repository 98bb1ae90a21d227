package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/kakaosession/internal/app"
	"github.com/vovakirdan/kakaosession/internal/config"
	logpkg "github.com/vovakirdan/kakaosession/internal/log"
	"github.com/vovakirdan/kakaosession/internal/session"
)

type rootOptions struct {
	configPath string
	logLevel   string

	cfg    config.Config
	logger *zerolog.Logger
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "kakaosession",
		Short:         "Open chat session client",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			bootLogger := logpkg.NewWithWriter(opts.logLevel, cmd.ErrOrStderr())

			cfg, path, err := config.Load(bootLogger, opts.configPath)
			if err != nil {
				return err
			}
			cfg.UpdateFrom(config.Config{LogLevel: opts.logLevel})

			opts.cfg = cfg
			opts.logger = logpkg.NewWithWriter(cfg.LogLevel, cmd.ErrOrStderr())
			opts.logger.Debug().Str("config", path).Msg("configuration loaded")
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (debug, info, warn, error)")

	cmd.AddCommand(
		newRunCmd(opts),
		newLoginCmd(opts),
		newLogoutCmd(opts),
		newJoinCmd(opts),
		newSendCmd(opts),
		newLogsCmd(opts),
		newDeleteCmd(opts),
		newHideCmd(opts),
		newKickCmd(opts),
		newTokenCmd(opts),
	)

	return cmd
}

// withApp builds the application and closes it after fn returns.
func (o *rootOptions) withApp(cmd *cobra.Command, fn func(a *app.App) error) error {
	a, err := app.New(cmd.Context(), &o.cfg, o.logger)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	defer a.Close()

	return fn(a)
}

// withSession connects a session for one command and closes it afterwards.
func (o *rootOptions) withSession(cmd *cobra.Command, fn func(s *session.Session) error) error {
	return o.withApp(cmd, func(a *app.App) error {
		s, err := a.Connect(cmd.Context())
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer s.Close()

		// Keep the bounded event queue moving while the command runs.
		drainCtx, cancel := context.WithCancel(cmd.Context())
		defer cancel()
		go func() {
			if err := app.Pump(drainCtx, s, o.logger, nil); err != nil {
				o.logger.Debug().Err(err).Msg("event pump stopped")
			}
		}()

		return fn(s)
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
