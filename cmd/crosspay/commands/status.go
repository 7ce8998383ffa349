// Package commands provides CLI command implementations for the crosspay engine.
package commands

import (
	"context"
	"fmt"

	"crosspay-engine/domain/interfaces"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewStatusCommand creates the status command.
func NewStatusCommand(app *App) *cobra.Command {
	var outputFormat string

	cmd := &cobra.Command{
		Use:   "status [job-id]",
		Short: "Show a job's queue state, payment, and execution legs",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Validate output format.
			if err := ValidateFormat(outputFormat); err != nil {
				return err
			}

			jobID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid job id %q: %w", args[0], err)
			}

			container, err := app.Container()
			if err != nil {
				return err
			}

			result, err := container.GetJobStatusUseCase.Execute(context.Background(), interfaces.GetJobStatusParams{
				JobID: jobID,
			})
			if err != nil {
				return fmt.Errorf("failed to get job status: %w", err)
			}

			formatter := NewOutputFormatter(outputFormat)
			if outputFormat != OutputFormatTable {
				return formatter.Print(result)
			}

			// Table mode prints the job header lines, then one row per leg.
			fmt.Printf("Job:      %s\n", result.Job.ID)
			fmt.Printf("State:    %s (attempt %d of %d)\n", result.Job.State, result.Job.Attempts, result.Job.MaxAttempts)
			if result.Job.LastError != "" {
				fmt.Printf("Error:    %s\n", result.Job.LastError)
			}
			if result.Payment != nil {
				fmt.Printf("Payment:  %s (%s)\n", result.Payment.ID, result.Payment.Status)
				fmt.Printf("Transfer: %s %s to %s\n", result.Payment.Amount, result.Payment.TokenSymbol, result.Payment.Recipient)
			}

			if len(result.Legs) == 0 {
				fmt.Println("No legs executed yet")
				return nil
			}

			headers := []string{"KIND", "FROM", "TO", "STATUS", "CONF", "TX HANDLE"}
			rows := make([][]string, 0, len(result.Legs))
			for i := range result.Legs {
				leg := &result.Legs[i]
				rows = append(rows, []string{
					string(leg.Kind),
					leg.FromChain,
					leg.ToChain,
					string(leg.Status),
					fmt.Sprintf("%d", leg.Confirmations),
					leg.TxHandle.String(),
				})
			}
			return formatter.PrintTable(headers, rows)
		},
	}

	// Add flags.
	cmd.Flags().StringVarP(&outputFormat, "output", "o", OutputFormatTable, "Output format (json, yaml, table)")

	return cmd
}
