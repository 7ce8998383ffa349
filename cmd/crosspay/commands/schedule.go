// Package commands provides CLI command implementations for the crosspay engine.
package commands

import (
	"context"
	"fmt"
	"time"

	"crosspay-engine/domain/interfaces"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

// NewScheduleCommand creates the schedule command.
func NewScheduleCommand(app *App) *cobra.Command {
	var (
		sourceChain   string
		targetChain   string
		scheduledFor  string
		cheapestRoute bool
		anyChain      bool
	)

	cmd := &cobra.Command{
		Use:   "schedule [owner] [recipient] [amount] [token]",
		Short: "Schedule a payment for future execution",
		Long: `Registers a payment intent to be executed at a future time. The recipient
may be a plain chain address or a directory handle such as @bob. Once the
intent is due, the scheduler claims it and hands it to the worker pool.`,
		Args: cobra.ExactArgs(4),
		RunE: func(_ *cobra.Command, args []string) error {
			// Parse arguments.
			amount, err := decimal.NewFromString(args[2])
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", args[2], err)
			}

			when, err := parseScheduleTime(scheduledFor)
			if err != nil {
				return err
			}

			container, err := app.Container()
			if err != nil {
				return err
			}

			params := interfaces.SchedulePaymentParams{
				OwnerID:             args[0],
				Recipient:           args[1],
				Amount:              amount,
				TokenSymbol:         args[3],
				SourceChain:         sourceChain,
				TargetChain:         targetChain,
				ScheduledFor:        when,
				CheapestRoute:       cheapestRoute,
				AnyChainWithBalance: anyChain,
			}

			payment, err := container.SchedulePaymentUseCase.Execute(context.Background(), params)
			if err != nil {
				return fmt.Errorf("failed to schedule payment: %w", err)
			}

			// Print summary.
			fmt.Printf("Payment %s scheduled\n", payment.ID)
			fmt.Printf("  %s %s to %s\n", payment.Amount, payment.TokenSymbol, payment.Recipient)
			fmt.Printf("  Due: %s\n", payment.ScheduledFor.Format(time.RFC3339))

			return nil
		},
	}

	// Add flags.
	cmd.Flags().StringVar(&sourceChain, "source-chain", "", "Chain to pay from (empty lets the engine choose)")
	cmd.Flags().StringVar(&targetChain, "target-chain", "", "Chain the recipient is paid on")
	cmd.Flags().StringVar(&scheduledFor, "at", "", "When to execute: RFC3339 time or relative duration like 48h")
	cmd.Flags().BoolVar(&cheapestRoute, "cheapest-route", false, "Compare bridge quotes and take the cheapest")
	cmd.Flags().BoolVar(&anyChain, "any-chain", false, "Source from the first chain holding enough balance")

	return cmd
}

// parseScheduleTime accepts an absolute RFC3339 timestamp or a duration
// relative to now.
func parseScheduleTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("--at is required (RFC3339 time or duration)")
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return time.Now().UTC().Add(d), nil
	}
	return time.Time{}, fmt.Errorf("invalid --at value %q: want RFC3339 time or duration", s)
}
