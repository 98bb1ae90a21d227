package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/kakaosession/internal/app"
	"github.com/vovakirdan/kakaosession/internal/auth"
	"github.com/vovakirdan/kakaosession/internal/loco"
	"github.com/vovakirdan/kakaosession/internal/session"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Connect, log events and serve the control API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(a *app.App) error {
				err := a.Run(cmd.Context())
				if err == nil {
					opts.logger.Info().Msg("session stopped")
				}
				return err
			})
		},
	}
}

func newLoginCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Log in with the configured account and store the credential",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(a *app.App) error {
				cred, err := a.Login(cmd.Context())
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), map[string]int64{"user_id": cred.UserID})
			})
		},
	}
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored credential of the configured account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return opts.withApp(cmd, func(a *app.App) error {
				return a.Logout(cmd.Context())
			})
		},
	}
}

func newJoinCmd(opts *rootOptions) *cobra.Command {
	var (
		nickname    string
		passcode    string
		profilePath string
	)

	cmd := &cobra.Command{
		Use:   "join <link-url>",
		Short: "Join an open channel through its link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			params := session.JoinParams{LinkURL: args[0], Nickname: nickname}
			if cmd.Flags().Changed("passcode") {
				params.Passcode = &passcode
			}
			if profilePath != "" {
				params.ProfilePath = &profilePath
			}

			return opts.withSession(cmd, func(s *session.Session) error {
				res, err := s.JoinChannel(cmd.Context(), params)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), res)
			})
		},
	}

	cmd.Flags().StringVar(&nickname, "nickname", "", "anonymous profile nickname")
	cmd.Flags().StringVar(&passcode, "passcode", "", "channel passcode")
	cmd.Flags().StringVar(&profilePath, "profile-path", "", "anonymous profile image path")
	_ = cmd.MarkFlagRequired("nickname")
	return cmd
}

func newSendCmd(opts *rootOptions) *cobra.Command {
	var (
		noSeen     bool
		attachment string
		chatType   int
	)

	cmd := &cobra.Command{
		Use:   "send <chat-id> [text]",
		Short: "Send a message",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			chatID, err := parseID("chat-id", args[0])
			if err != nil {
				return err
			}
			chat := loco.Chat{Type: loco.ChatType(chatType), Attachment: attachment}
			if len(args) == 2 {
				chat.Message = args[1]
			}
			if chat.Message == "" && chat.Attachment == "" {
				return fmt.Errorf("text or --attachment required")
			}

			return opts.withSession(cmd, func(s *session.Session) error {
				chatlog, err := s.Send(cmd.Context(), chatID, chat, noSeen)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), chatlog)
			})
		},
	}

	cmd.Flags().BoolVar(&noSeen, "no-seen", false, "do not mark the channel read")
	cmd.Flags().StringVar(&attachment, "attachment", "", "JSON encoded attachment object")
	cmd.Flags().IntVar(&chatType, "type", int(loco.ChatTypeText), "chat type (1 text, 2 photo, ...)")
	return cmd
}

func newLogsCmd(opts *rootOptions) *cobra.Command {
	var since int64

	cmd := &cobra.Command{
		Use:   "logs <chat-id>",
		Short: "Print messages newer than a log id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			chatID, err := parseID("chat-id", args[0])
			if err != nil {
				return err
			}

			return opts.withSession(cmd, func(s *session.Session) error {
				logs, err := s.ChatLogs(cmd.Context(), chatID, since)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), logs)
			})
		},
	}

	cmd.Flags().Int64Var(&since, "since", 0, "log id cursor (exclusive)")
	return cmd
}

func newDeleteCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <chat-id> <log-id>",
		Short: "Delete a message for everyone",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			chatID, err := parseID("chat-id", args[0])
			if err != nil {
				return err
			}
			logID, err := parseID("log-id", args[1])
			if err != nil {
				return err
			}

			return opts.withSession(cmd, func(s *session.Session) error {
				return s.Delete(cmd.Context(), loco.DeleteMsgRequest{ChatID: chatID, LogID: logID})
			})
		},
	}
}

func newHideCmd(opts *rootOptions) *cobra.Command {
	var (
		linkID   int64
		chatType int
	)

	cmd := &cobra.Command{
		Use:   "hide <chat-id> <log-id>",
		Short: "Hide a message in an open channel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			chatID, err := parseID("chat-id", args[0])
			if err != nil {
				return err
			}
			logID, err := parseID("log-id", args[1])
			if err != nil {
				return err
			}

			return opts.withSession(cmd, func(s *session.Session) error {
				li, err := resolveLinkID(s, chatID, linkID)
				if err != nil {
					return err
				}
				return s.Hide(cmd.Context(), loco.HideMsgRequest{
					LinkID:   li,
					ChatID:   chatID,
					LogID:    logID,
					ChatType: loco.ChatType(chatType),
				})
			})
		},
	}

	cmd.Flags().Int64Var(&linkID, "link-id", 0, "open link id (defaults to the login snapshot)")
	cmd.Flags().IntVar(&chatType, "type", int(loco.ChatTypeText), "chat type of the hidden message")
	return cmd
}

func newKickCmd(opts *rootOptions) *cobra.Command {
	var linkID int64

	cmd := &cobra.Command{
		Use:   "kick <chat-id> <user-id>",
		Short: "Remove a member from an open channel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			chatID, err := parseID("chat-id", args[0])
			if err != nil {
				return err
			}
			userID, err := parseID("user-id", args[1])
			if err != nil {
				return err
			}

			return opts.withSession(cmd, func(s *session.Session) error {
				li, err := resolveLinkID(s, chatID, linkID)
				if err != nil {
					return err
				}
				return s.Kick(cmd.Context(), loco.KickMemberRequest{LinkID: li, ChatID: chatID, UserID: userID})
			})
		},
	}

	cmd.Flags().Int64Var(&linkID, "link-id", 0, "open link id (defaults to the login snapshot)")
	return cmd
}

func newTokenCmd(opts *rootOptions) *cobra.Command {
	var (
		operator string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint a control API bearer token",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.cfg.ControlJWTSecret == "" {
				return app.ErrControlDisabled
			}
			token, err := auth.GenerateToken(&auth.JWTConfig{
				Secret:   []byte(opts.cfg.ControlJWTSecret),
				Issuer:   opts.cfg.ControlJWTIssuer,
				Audience: opts.cfg.ControlJWTAudience,
				TTL:      ttl,
			}, operator)
			if err != nil {
				return fmt.Errorf("generate token: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}

	cmd.Flags().StringVar(&operator, "operator", "admin", "operator name carried in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")
	return cmd
}

func parseID(name, raw string) (int64, error) {
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, raw, err)
	}
	return v, nil
}

func resolveLinkID(s *session.Session, chatID, explicit int64) (int64, error) {
	if explicit != 0 {
		return explicit, nil
	}
	if ch, ok := s.Channel(chatID); ok && ch.LinkID != 0 {
		return ch.LinkID, nil
	}
	return 0, fmt.Errorf("chat %d has no known link id, pass --link-id", chatID)
}
