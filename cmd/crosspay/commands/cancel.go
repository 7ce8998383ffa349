// Package commands provides CLI command implementations for the crosspay engine.
package commands

import (
	"context"
	"fmt"

	"crosspay-engine/domain/interfaces"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// NewCancelCommand creates the cancel command.
func NewCancelCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel [payment-id]",
		Short: "Cancel a payment that has not started executing",
		Long: `Cancels a pending payment. A payment already claimed by the scheduler is
executing and can no longer be cancelled; it runs to a terminal state.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			paymentID, err := uuid.Parse(args[0])
			if err != nil {
				return fmt.Errorf("invalid payment id %q: %w", args[0], err)
			}

			container, err := app.Container()
			if err != nil {
				return err
			}

			payment, err := container.CancelPaymentUseCase.Execute(context.Background(), interfaces.CancelPaymentParams{
				PaymentID: paymentID,
			})
			if err != nil {
				return fmt.Errorf("failed to cancel payment: %w", err)
			}

			fmt.Printf("Payment %s cancelled\n", payment.ID)
			return nil
		},
	}

	return cmd
}
