package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Rrens/slidecraft/internal/domain"
	"github.com/spf13/cobra"
)

var creditsCmd = &cobra.Command{
	Use:   "credits",
	Short: "Show remaining generations and credit packages",
	Args:  cobra.NoArgs,
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		status, err := a.quota.Status(ctx, localOwner)
		if err != nil {
			return err
		}
		printStatus(status)

		fmt.Println("\nPackages:")
		for _, pkg := range a.quota.Packages() {
			marker := ""
			if pkg.Popular {
				marker = " (popular)"
			}
			fmt.Printf("  %3d credits  $%s%s\n", pkg.Credits, pkg.Price.StringFixed(2), marker)
		}
		return nil
	}),
}

var purchaseCmd = &cobra.Command{
	Use:   "purchase <credits>",
	Short: "Add a credit package to the balance",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		credits, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("credits must be a number: %w", err)
		}

		status, err := a.quota.Purchase(ctx, localOwner, credits)
		if err != nil {
			return err
		}
		printStatus(status)
		return nil
	}),
}

func printStatus(s *domain.QuotaStatus) {
	fmt.Printf("Free generations: %d of %d left\n", s.FreeGenerationsLeft, s.FreeLimit)
	fmt.Printf("Credit balance:   $%s (%d paid generations at $%s)\n",
		s.CreditBalance.StringFixed(2), s.PaidGenerationsAvailable, s.UnitCost.StringFixed(2))
	if s.NeedsCredits {
		fmt.Println("Purchase credits to continue generating.")
	}
}
