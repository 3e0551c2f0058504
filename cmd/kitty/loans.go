package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/kitty/internal/calculator"
	"github.com/Veraticus/kitty/internal/cli"
	"github.com/Veraticus/kitty/internal/common"
	"github.com/Veraticus/kitty/internal/loans"
	"github.com/Veraticus/kitty/internal/model"
	"github.com/spf13/cobra"
)

func loansCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loans",
		Short: "Decide loan requests in groups you lead",
	}

	cmd.AddCommand(loansApproveCmd())
	cmd.AddCommand(loansRejectCmd())

	return cmd
}

func loansApproveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approve <group-id> <loan-id>",
		Short: "Approve a pending loan request",
		Long: `Approve a loan request. The due date, interest rate and payment method
default to the group's settings; use the flags to override them.`,
		Args: cobra.ExactArgs(2),
		RunE: runLoansApprove,
	}

	cmd.Flags().Int("months", 0, "months until the loan is due (default: the group's loan duration)")
	cmd.Flags().Float64("rate", 0, "interest rate in percent (default: the group's rate)")
	cmd.Flags().String("method", "", "payment method (default: "+model.PaymentMethodGroupPool+")")
	cmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")

	return cmd
}

// approvalOverrides collects only the flags the user actually set.
func approvalOverrides(cmd *cobra.Command) (calculator.ApprovalOverrides, error) {
	var o calculator.ApprovalOverrides

	if cmd.Flags().Changed("months") {
		months, _ := cmd.Flags().GetInt("months")
		if months < model.MinLoanDurationMonths || months > model.MaxLoanDurationMonths {
			return o, fmt.Errorf("--months must be between %d and %d", model.MinLoanDurationMonths, model.MaxLoanDurationMonths)
		}
		o.DueInMonths = &months
	}
	if cmd.Flags().Changed("rate") {
		rate, _ := cmd.Flags().GetFloat64("rate")
		if rate < 0 || rate > model.MaxInterestRatePercent {
			return o, fmt.Errorf("--rate must be between 0 and %d", model.MaxInterestRatePercent)
		}
		o.InterestRate = &rate
	}
	o.PaymentMethod, _ = cmd.Flags().GetString("method")

	return o, nil
}

func runLoansApprove(cmd *cobra.Command, args []string) error {
	groupID, loanID := model.ID(args[0]), model.ID(args[1])

	overrides, err := approvalOverrides(cmd)
	if err != nil {
		return err
	}

	e, err := openEnv(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer e.Close()

	group, err := loadGroup(cmd.Context(), newGroupReader(e), groupID)
	if err != nil {
		return err
	}
	// Approval terms are derived from the group, so they must be complete.
	if err := group.Validate(); err != nil {
		return common.NewUserError(fmt.Sprintf("Group %s has incomplete loan settings", groupID), err)
	}

	loan, err := findPendingLoan(cmd.Context(), e, groupID, loanID)
	if err != nil {
		return err
	}

	params := calculator.DeriveApprovalDefaults(group, time.Now(), overrides)
	out := cmd.OutOrStdout()
	if _, err := fmt.Fprint(out, cli.RenderApproval(loanID, params)); err != nil {
		return err
	}

	if ok, err := confirm(cmd, "Approve this loan? [y/N] "); err != nil || !ok {
		return err
	}

	decision, err := loans.NewService(e.resolver, e.cfg.Endpoints.Loans, e.logger).
		Approve(cmd.Context(), groupID, loan, params)
	if err != nil {
		return err
	}
	return printDecision(cmd, loanID, decision)
}

func loansRejectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reject <group-id> <loan-id>",
		Short: "Reject a pending loan request",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			groupID, loanID := model.ID(args[0]), model.ID(args[1])

			e, err := openEnv(cmd.Context(), true)
			if err != nil {
				return err
			}
			defer e.Close()

			loan, err := findPendingLoan(cmd.Context(), e, groupID, loanID)
			if err != nil {
				return err
			}

			if ok, err := confirm(cmd, fmt.Sprintf("Reject loan %s? [y/N] ", loanID)); err != nil || !ok {
				return err
			}

			decision, err := loans.NewService(e.resolver, e.cfg.Endpoints.Loans, e.logger).
				Reject(cmd.Context(), groupID, loan)
			if err != nil {
				return err
			}
			return printDecision(cmd, loanID, decision)
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "skip the confirmation prompt")
	return cmd
}

// findPendingLoan reads the group's loan requests and returns loanID, which
// must still await a decision.
func findPendingLoan(ctx context.Context, e *env, groupID, loanID model.ID) (*model.LoanRequest, error) {
	res := newAggregator(e).LoanRequests(ctx, groupID)
	requests, ok := res.Get()
	if !ok {
		return nil, common.NewUserError(fmt.Sprintf("Could not read the loan requests of group %s", groupID), res.Reason())
	}

	loan, found := loans.Find(requests, loanID)
	if !found {
		return nil, common.NewUserError(fmt.Sprintf("Loan %s is not awaiting a decision in group %s", loanID, groupID), nil)
	}
	if !loan.IsPending() {
		return nil, common.NewUserError(fmt.Sprintf("Loan %s was already %s", loanID, loan.Status), model.ErrLoanDecided)
	}
	return loan, nil
}

// confirm asks before a decision is sent, unless --yes was given.
func confirm(cmd *cobra.Command, prompt string) (bool, error) {
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		return true, nil
	}

	reader := cli.NewLineReader(cmd.InOrStdin(), cmd.OutOrStdout())
	answer, err := reader.Ask(cmd.Context(), prompt, false)
	if err != nil {
		return false, common.NewUserError("No decision was sent", err)
	}

	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	default:
		_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No decision was sent"))
		return false, err
	}
}

func printDecision(cmd *cobra.Command, loanID model.ID, d *loans.Decision) error {
	msg := fmt.Sprintf("Loan %s %s", loanID, d.Status)
	if d.Message != "" {
		msg += ": " + d.Message
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(msg))
	return err
}
