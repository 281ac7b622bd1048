package main

import (
	"fmt"

	"github.com/cashflow/payment-sync/internal/core"
	"github.com/cashflow/payment-sync/internal/port/input"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

func sendCmd() *cobra.Command {
	var (
		to       string
		amount   string
		currency string
	)

	cmd := &cobra.Command{
		Use:   "send",
		Short: "Send a payment to a recipient",
		Long: `Send a payment and wait for the payment service to accept or reject it.

Examples:
  cashi send --to friend@example.com --amount 12.50
  cashi send --to friend@example.com --amount 3 --currency EUR`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			minor, err := parseMinorUnits(amount)
			if err != nil {
				return err
			}
			cur, err := core.ParseCurrency(currency)
			if err != nil {
				return err
			}

			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			resp, err := a.Payments.SubmitPayment(cmd.Context(), input.SubmitPaymentRequest{
				RecipientEmail: to,
				Amount:         minor,
				Currency:       cur,
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s to %s  %s\n",
				resp.ID, core.FormatAmount(resp.Amount, resp.Currency), resp.RecipientEmail, resp.Status)
			return nil
		},
	}

	cmd.Flags().StringVarP(&to, "to", "t", "", "recipient email")
	cmd.Flags().StringVarP(&amount, "amount", "a", "", "amount in major units, e.g. 12.50")
	cmd.Flags().StringVarP(&currency, "currency", "c", core.CurrencyUSD.Code(), "currency code")
	_ = cmd.MarkFlagRequired("to")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

// parseMinorUnits converts "12.50" into 1250. More than two decimal places is rejected.
func parseMinorUnits(s string) (int64, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	minor := d.Shift(2)
	if !minor.IsInteger() {
		return 0, fmt.Errorf("invalid amount %q: at most two decimal places", s)
	}
	return minor.IntPart(), nil
}
