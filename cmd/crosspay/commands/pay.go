// Package commands provides CLI command implementations for the crosspay engine.
package commands

import (
	"context"
	"fmt"

	"crosspay-engine/domain/interfaces"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// NewPayCommand creates the pay command for immediate payments.
func NewPayCommand(app *App) *cobra.Command {
	var (
		sourceChain   string
		targetChain   string
		cheapestRoute bool
		anyChain      bool
	)

	cmd := &cobra.Command{
		Use:   "pay [owner] [recipient] [amount] [token]",
		Short: "Submit a payment for immediate execution",
		Long: `Submits a payment intent and enqueues its job in one step, bypassing the
scheduler. The command returns as soon as the job is durably queued; use
the status command to follow execution.`,
		Args: cobra.ExactArgs(4),
		RunE: func(_ *cobra.Command, args []string) error {
			// Parse arguments.
			amount, err := decimal.NewFromString(args[2])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[2], err)
			}

			container, err := app.Container()
			if err != nil {
				return err
			}

			params := interfaces.SubmitPaymentParams{
				OwnerID:             args[0],
				Recipient:           args[1],
				Amount:              amount,
				TokenSymbol:         args[3],
				SourceChain:         sourceChain,
				TargetChain:         targetChain,
				CheapestRoute:       cheapestRoute,
				AnyChainWithBalance: anyChain,
			}

			result, err := container.SubmitPaymentUseCase.Execute(context.Background(), params)
			if err != nil {
				return fmt.Errorf("failed to submit payment: %w", err)
			}

			// Print summary.
			fmt.Printf("Payment %s submitted\n", result.Payment.ID)
			fmt.Printf("  %s %s to %s\n", result.Payment.Amount, result.Payment.TokenSymbol, result.Payment.Recipient)
			fmt.Printf("  Job: %s\n", result.JobID)

			return nil
		},
	}

	// Add flags.
	cmd.Flags().StringVar(&sourceChain, "source-chain", "", "Chain to pay from (empty lets the engine choose)")
	cmd.Flags().StringVar(&targetChain, "target-chain", "", "Chain the recipient is paid on")
	cmd.Flags().BoolVar(&cheapestRoute, "cheapest-route", false, "Compare bridge quotes and take the cheapest")
	cmd.Flags().BoolVar(&anyChain, "any-chain", false, "Source from the first chain holding enough balance")

	return cmd
}
