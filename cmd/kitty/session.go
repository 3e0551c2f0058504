package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/kitty/internal/cli"
	"github.com/Veraticus/kitty/internal/common"
	"github.com/Veraticus/kitty/internal/config"
	"github.com/Veraticus/kitty/internal/service"
	"github.com/Veraticus/kitty/internal/session"
	"github.com/spf13/cobra"
)

func sessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Manage the saved sign-in token",
	}

	cmd.AddCommand(sessionSetCmd())
	cmd.AddCommand(sessionShowCmd())
	cmd.AddCommand(sessionClearCmd())

	return cmd
}

// withStorage runs fn against the session database.
func withStorage(ctx context.Context, fn func(cfg *config.Config, store service.SessionStorage) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := initStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	return fn(cfg, store)
}

// saveToken stores token as the current session.
func saveToken(ctx context.Context, store service.SessionStorage, token string) (*service.Session, error) {
	sess, err := session.FromToken(token, time.Now())
	if err != nil {
		return nil, common.NewUserError("Token was not saved", err)
	}
	if err := store.SaveSession(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func sessionSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set [token]",
		Short: "Save a bearer token for later commands",
		Long: `Save the token the server issued at sign-in. Without an argument the
token is read from standard input.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var token string
			if len(args) == 1 {
				token = args[0]
			} else {
				reader := cli.NewLineReader(cmd.InOrStdin(), cmd.ErrOrStderr())
				t, err := reader.Ask(cmd.Context(), "Token: ", true)
				if err != nil {
					return err
				}
				token = t
			}

			return withStorage(cmd.Context(), func(_ *config.Config, store service.SessionStorage) error {
				sess, err := saveToken(cmd.Context(), store, token)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Session saved"+expirySuffix(sess)))
				return err
			})
		},
	}
}

func sessionShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(cmd.Context(), func(cfg *config.Config, store service.SessionStorage) error {
				sess, err := store.GetSession(cmd.Context())
				if errors.Is(err, common.ErrNotFound) {
					_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Not signed in"))
					return err
				}
				if err != nil {
					return err
				}
				_, err = fmt.Fprint(cmd.OutOrStdout(), describeSession(sess, cfg.DatabasePath, time.Now()))
				return err
			})
		},
	}
}

func sessionClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Forget the saved session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withStorage(cmd.Context(), func(_ *config.Config, store service.SessionStorage) error {
				if err := store.ClearSession(cmd.Context()); err != nil {
					return err
				}
				_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Signed out"))
				return err
			})
		},
	}
}

func describeSession(sess *service.Session, dbPath string, now time.Time) string {
	subject := sess.Subject
	if subject == "" {
		subject = "unknown"
	}

	status := cli.SuccessStyle.Render("active")
	expires := "never"
	if sess.ExpiresAt != nil {
		expires = sess.ExpiresAt.Local().Format(time.RFC1123)
	}
	if err := session.Check(sess, now); err != nil {
		status = cli.ErrorStyle.Render("expired")
	}

	lines := []string{
		"Subject:  " + subject,
		"Status:   " + status,
		"Expires:  " + expires,
		"Saved:    " + sess.SavedAt.Local().Format(time.RFC1123),
		"Token:    " + maskToken(sess.Token),
		"Database: " + dbPath,
	}
	return cli.RenderBox("Session", strings.Join(lines, "\n")) + "\n"
}

func maskToken(token string) string {
	if len(token) <= 12 {
		return strings.Repeat("*", len(token))
	}
	return token[:6] + "..." + token[len(token)-4:]
}

func expirySuffix(sess *service.Session) string {
	if sess.ExpiresAt == nil {
		return ""
	}
	return ", expires " + sess.ExpiresAt.Local().Format(time.RFC1123)
}
