package main

import (
	"context"
	"fmt"

	"github.com/Veraticus/kitty/internal/account"
	"github.com/Veraticus/kitty/internal/cli"
	"github.com/Veraticus/kitty/internal/config"
	"github.com/Veraticus/kitty/internal/service"
	"github.com/spf13/cobra"
)

func accountCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Create and verify an account",
	}

	cmd.AddCommand(accountRegisterCmd())
	cmd.AddCommand(accountVerifyCmd())
	cmd.AddCommand(accountResendCmd())

	return cmd
}

func newAccountService(ctx context.Context) (*account.Service, *env, error) {
	e, err := openEnv(ctx, false)
	if err != nil {
		return nil, nil, err
	}
	return account.NewService(e.resolver, e.cfg.Endpoints.Account, e.logger), e, nil
}

// askMissing fills *value from a prompt when the flag was left empty.
func askMissing(ctx context.Context, reader *cli.LineReader, value *string, label string, required bool) error {
	if *value != "" {
		return nil
	}
	answer, err := reader.Ask(ctx, label, required)
	if err != nil {
		return err
	}
	*value = answer
	return nil
}

func accountRegisterCmd() *cobra.Command {
	var reg account.Registration

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account",
		Long: `Create an account. Details not given as flags are asked for. The server
sends a verification code to the email address; confirm it with
'kitty account verify'.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			reader := cli.NewLineReader(cmd.InOrStdin(), cmd.ErrOrStderr())
			prompts := []struct {
				value    *string
				label    string
				required bool
			}{
				{&reg.FirstName, "First name: ", true},
				{&reg.LastName, "Last name: ", false},
				{&reg.Email, "Email: ", true},
				{&reg.Phone, "Phone: ", false},
				{&reg.Password, "Password: ", true},
			}
			for _, p := range prompts {
				if err := askMissing(ctx, reader, p.value, p.label, p.required); err != nil {
					return err
				}
			}

			svc, e, err := newAccountService(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			result, err := svc.Register(ctx, reg)
			if err != nil {
				return err
			}
			return reportAccountResult(cmd, result, "Account created. Check "+reg.Email+" for your verification code.")
		},
	}

	cmd.Flags().StringVar(&reg.FirstName, "first-name", "", "first name")
	cmd.Flags().StringVar(&reg.LastName, "last-name", "", "last name")
	cmd.Flags().StringVar(&reg.Email, "email", "", "email address")
	cmd.Flags().StringVar(&reg.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&reg.Password, "password", "", "password (asked for when omitted)")

	return cmd
}

func accountVerifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "verify <email> [code]",
		Short: "Confirm your email with the code you received",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			email := args[0]
			var code string
			if len(args) == 2 {
				code = args[1]
			}
			reader := cli.NewLineReader(cmd.InOrStdin(), cmd.ErrOrStderr())
			if err := askMissing(ctx, reader, &code, "Verification code: ", true); err != nil {
				return err
			}

			svc, e, err := newAccountService(ctx)
			if err != nil {
				return err
			}
			defer e.Close()

			result, err := svc.VerifyEmail(ctx, email, code)
			if err != nil {
				return err
			}
			return reportAccountResult(cmd, result, "Email verified.")
		},
	}
}

func accountResendCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resend-otp <email>",
		Short: "Send a new verification code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, e, err := newAccountService(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			result, err := svc.ResendOTP(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return reportAccountResult(cmd, result, "A new code is on its way to "+args[0]+".")
		},
	}
}

// reportAccountResult prints the outcome and keeps any token the server
// issued as the current session.
func reportAccountResult(cmd *cobra.Command, result *account.Result, fallback string) error {
	out := cmd.OutOrStdout()
	msg := result.Message
	if msg == "" {
		msg = fallback
	}
	if _, err := fmt.Fprintln(out, cli.FormatSuccess(msg)); err != nil {
		return err
	}

	if result.Token == "" {
		return nil
	}
	return withStorage(cmd.Context(), func(_ *config.Config, store service.SessionStorage) error {
		sess, err := saveToken(cmd.Context(), store, result.Token)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, cli.FormatInfo("Signed in"+expirySuffix(sess)))
		return err
	})
}
