package main

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/cashflow/payment-sync/internal/core"
	"github.com/cashflow/payment-sync/internal/port/input"
	"github.com/spf13/cobra"
)

func historyCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show the transaction history",
		Long: `Refresh the local history from the payment service and print it.

With --watch the history is printed again on every change until interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp()
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if watch {
				ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()
				return watchHistory(ctx, a.History, out)
			}

			if err := a.History.Sync(cmd.Context()); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", err)
			}
			txs, err := a.Store.ListAll(cmd.Context())
			if err != nil {
				return err
			}
			printTransactions(out, txs)

			totals, err := a.History.Summary(cmd.Context())
			if err != nil {
				return err
			}
			printTotals(out, totals)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep printing the history as it changes")

	return cmd
}

func watchHistory(ctx context.Context, history input.HistoryService, out io.Writer) error {
	for state := range history.Observe(ctx) {
		switch state.Kind {
		case input.HistoryLoading:
			fmt.Fprintln(out, "Loading...")
		case input.HistoryError:
			fmt.Fprintf(out, "Error: %s\n", state.Message)
		case input.HistorySuccess:
			fmt.Fprintln(out)
			printTransactions(out, state.Transactions)
		}
	}
	return nil
}

func printTransactions(out io.Writer, txs []core.Transaction) {
	if len(txs) == 0 {
		fmt.Fprintln(out, "No transactions yet")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tRECIPIENT\tAMOUNT\tSTATUS\tID")
	for _, tx := range txs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			tx.CreatedAt.Local().Format("2006-01-02 15:04"), tx.RecipientEmail, tx.DisplayAmount(), tx.Status, tx.ID)
	}
	w.Flush()
}

func printTotals(out io.Writer, totals map[core.Currency]int64) {
	fmt.Fprintln(out)
	for _, c := range core.Currencies() {
		fmt.Fprintf(out, "Total sent %s: %s\n", c.Code(), core.FormatAmount(totals[c], c))
	}
}
