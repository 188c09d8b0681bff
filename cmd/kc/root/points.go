package root

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ccpk1/kidschores-ha-sub008/internal/ui"
)

func newPointsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "points",
		Short: "Manual point adjustments",
	}
	cmd.AddCommand(newPointsDepositCmd(), newPointsWithdrawCmd())
	return cmd
}

func newPointsDepositCmd() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "add <kid> <amount>",
		Short: "Grant bonus points",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("kid and amount are required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return adjustPoints(cmd, args, reason, false)
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "bonus", "ledger reason")
	return cmd
}

func newPointsWithdrawCmd() *cobra.Command {
	var reason string
	cmd := &cobra.Command{
		Use:   "spend <kid> <amount>",
		Short: "Deduct points",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("kid and amount are required")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return adjustPoints(cmd, args, reason, true)
		},
	}
	cmd.Flags().StringVar(&reason, "reason", "spent", "ledger reason")
	return cmd
}

func adjustPoints(cmd *cobra.Command, args []string, reason string, withdraw bool) error {
	ctx := context.Background()
	a, cleanup, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	kid, err := a.svc.Registry().KidByName(args[0])
	if err != nil {
		return err
	}
	amount, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("parse amount %q: %w", args[1], err)
	}

	if withdraw {
		_, err = a.svc.Withdraw(ctx, kid.ID, amount, reason, flagActor)
	} else {
		_, err = a.svc.Deposit(ctx, kid.ID, amount, reason, flagActor)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s balance now %s\n", kid.Name, ui.Points(kid.Balance))
	return nil
}
