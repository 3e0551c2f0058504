package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/kitty/internal/calculator"
	"github.com/Veraticus/kitty/internal/cli"
	"github.com/Veraticus/kitty/internal/common"
	"github.com/Veraticus/kitty/internal/config"
	"github.com/Veraticus/kitty/internal/groups"
	"github.com/Veraticus/kitty/internal/model"
	"github.com/Veraticus/kitty/internal/sheets"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newGroupReader(e *env) *groups.Reader {
	return groups.NewReader(e.deps(), e.cfg.Endpoints.Groups)
}

// loadGroup reads a group's settings or explains why it could not.
func loadGroup(ctx context.Context, reader *groups.Reader, groupID model.ID) (model.Group, error) {
	res := reader.Group(ctx, groupID)
	group, ok := res.Get()
	if !ok {
		return model.Group{}, common.NewUserError(fmt.Sprintf("Could not load group %s", groupID), res.Reason())
	}
	if group.ID == "" {
		group.ID = groupID
	}
	return group, nil
}

func summaryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summary <group-id>",
		Short: "Rank a group's members by what they have saved",
		Long: `Show each member's total contribution, the share of the expected amount
they have reached and their share of the group's savings, highest first.`,
		Args: cobra.ExactArgs(1),
		RunE: runSummary,
	}

	cmd.Flags().Bool("export", false, "Export the summary to Google Sheets")
	_ = viper.BindPFlag("summary.export", cmd.Flags().Lookup("export"))

	return cmd
}

func runSummary(cmd *cobra.Command, args []string) error {
	groupID := model.ID(args[0])

	e, err := openEnv(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer e.Close()

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr(), "Summary")
	ctx, stop := handler.HandleInterrupts(cmd.Context())
	defer stop()

	reader := newGroupReader(e)
	group, err := loadGroup(ctx, reader, groupID)
	if err != nil {
		return err
	}

	res := reader.Members(ctx, groupID)
	members, ok := res.Get()
	if !ok {
		return common.NewUserError("Could not load the group's members", res.Reason())
	}

	summary := calculator.Summarize(group.SavingsAmount, calculator.ContributionsFromMembers(members))
	if _, err := fmt.Fprint(cmd.OutOrStdout(), cli.RenderSummary(group, summary)); err != nil {
		return err
	}

	if !viper.GetBool("summary.export") {
		return nil
	}
	return exportSummary(ctx, cmd, sheets.Report{
		GeneratedAt: time.Now(),
		Group:       group,
		Summary:     summary,
	})
}

func exportSummary(ctx context.Context, cmd *cobra.Command, report sheets.Report) error {
	sheetsConfig, err := config.LoadSheetsConfig(viper.GetViper())
	if err != nil {
		return fmt.Errorf("failed to load sheets config: %w", err)
	}

	writer, err := sheets.NewWriter(ctx, *sheetsConfig, slog.Default())
	if err != nil {
		return common.NewUserError("Could not connect to Google Sheets", err)
	}

	spreadsheetID, err := writer.Export(ctx, report)
	if err != nil {
		return common.NewUserError("Export to Google Sheets failed", err)
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(
		"Exported to https://docs.google.com/spreadsheets/d/"+spreadsheetID))
	return err
}

func historyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history <group-id>",
		Short: "List a group's transactions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID := model.ID(args[0])

			e, err := openEnv(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer e.Close()

			reader := newGroupReader(e)
			name := groupID.String()
			if group, ok := reader.Group(cmd.Context(), groupID).Get(); ok && group.Name != "" {
				name = group.Name
			}

			res := reader.Transactions(cmd.Context(), groupID)
			txns, ok := res.Get()
			if !ok {
				return common.NewUserError("Could not load the group's transactions", res.Reason())
			}

			_, err = fmt.Fprint(cmd.OutOrStdout(), cli.RenderTransactions(name, txns))
			return err
		},
	}
}
