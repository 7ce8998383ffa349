// Package commands provides CLI command implementations for the crosspay engine.
package commands

import (
	"context"
	"fmt"
	"time"

	"crosspay-engine/domain/dto"
	"crosspay-engine/domain/entities"
	"crosspay-engine/domain/interfaces"
	"github.com/spf13/cobra"
)

// NewListCommand creates the list command.
func NewListCommand(app *App) *cobra.Command {
	var (
		status       string
		limit        int
		outputFormat string
	)

	cmd := &cobra.Command{
		Use:   "list [owner]",
		Short: "List an owner's payments, newest first",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Validate output format.
			if err := ValidateFormat(outputFormat); err != nil {
				return err
			}

			container, err := app.Container()
			if err != nil {
				return err
			}

			result, err := container.ListPaymentsUseCase.Execute(context.Background(), interfaces.ListPaymentsParams{
				OwnerID: args[0],
				Status:  entities.PaymentStatus(status),
				Limit:   limit,
			})
			if err != nil {
				return fmt.Errorf("failed to list payments: %w", err)
			}

			summaries := make([]dto.PaymentSummary, 0, len(result.Payments))
			for i := range result.Payments {
				summaries = append(summaries, dto.NewPaymentSummary(&result.Payments[i]))
			}

			formatter := NewOutputFormatter(outputFormat)
			if outputFormat == OutputFormatTable {
				headers := []string{"ID", "RECIPIENT", "AMOUNT", "TOKEN", "TARGET", "STATUS", "DUE"}
				rows := make([][]string, 0, len(summaries))
				for _, s := range summaries {
					rows = append(rows, []string{
						s.ID.String(),
						s.Recipient,
						s.Amount,
						s.TokenSymbol,
						s.TargetChain,
						s.Status,
						s.ScheduledFor.Format(time.RFC3339),
					})
				}
				return formatter.PrintTable(headers, rows)
			}
			return formatter.Print(summaries)
		},
	}

	// Add flags.
	cmd.Flags().StringVarP(&status, "status", "s", "", "Filter by status (pending, claimed, processing, completed, failed, cancelled)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 50, "Maximum rows to return (0 for all)")
	cmd.Flags().StringVarP(&outputFormat, "output", "o", OutputFormatTable, "Output format (json, yaml, table)")

	return cmd
}
