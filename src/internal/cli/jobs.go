package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/api-sage/bank-ledger/src/internal/adapter/http/models"
	"github.com/api-sage/bank-ledger/src/internal/app"
	"github.com/api-sage/bank-ledger/src/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

type sweepFunc func(ctx context.Context) (domain.SweepReport, error)

func sweeps(c *app.Container) map[string]sweepFunc {
	return map[string]sweepFunc{
		"credit-interest":  c.Sweeps.RunCreditInterestSweep,
		"savings-interest": c.Sweeps.RunSavingsInterestSweep,
		"inactivity":       c.Sweeps.RunInactivityClosureSweep,
		"low-balance":      c.Sweeps.RunLowBalanceSweep,
		"suspicious":       c.Sweeps.RunSuspiciousActivityScan,
	}
}

func jobNames() []string {
	return []string{"credit-interest", "inactivity", "low-balance", "savings-interest", "suspicious"}
}

func newSweepCommand(load Loader) *cobra.Command {
	return &cobra.Command{
		Use:       "sweep <job>",
		Short:     "Run one batch job",
		Long:      "Run one batch job: " + strings.Join(jobNames(), ", "),
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: jobNames(),
		RunE: withContainer(load, func(cmd *cobra.Command, c *app.Container, args []string) error {
			run, ok := sweeps(c)[args[0]]
			if !ok {
				return fmt.Errorf("unknown job %q", args[0])
			}
			report, err := run(cmd.Context())
			if err != nil {
				return err
			}
			return printJSON(cmd, models.NewSweepResponse(report))
		}),
	}
}

func newInterestCommand(load Loader) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interest",
		Short: "Apply interest to a single account",
	}

	apply := func(kind string, fn func(*app.Container) func(context.Context, string) (decimal.Decimal, error)) *cobra.Command {
		return &cobra.Command{
			Use:   kind + " <account-number>",
			Short: "Apply " + kind + " interest",
			Args:  cobra.ExactArgs(1),
			RunE: withContainer(load, func(cmd *cobra.Command, c *app.Container, args []string) error {
				amount, err := fn(c)(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printJSON(cmd, models.NewInterestResponse(args[0], kind, amount))
			}),
		}
	}

	cmd.AddCommand(
		apply("credit", func(c *app.Container) func(context.Context, string) (decimal.Decimal, error) {
			return c.Interest.ApplyMonthlyCreditInterest
		}),
		apply("savings", func(c *app.Container) func(context.Context, string) (decimal.Decimal, error) {
			return c.Interest.ApplyAnnualSavingsInterest
		}),
	)
	return cmd
}

func printJSON(cmd *cobra.Command, payload any) error {
	encoder := json.NewEncoder(cmd.OutOrStdout())
	encoder.SetIndent("", "  ")
	return encoder.Encode(payload)
}
