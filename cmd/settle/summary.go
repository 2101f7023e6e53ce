package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mmynk/settleup/internal/calculator"
)

func newSummaryCmd() *cobra.Command {
	var groupID string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary <member-id>",
		Args:  cobra.ExactArgs(1),
		Short: "Print what a member needs to pay and is waiting for",
		RunE: func(cmd *cobra.Command, args []string) error {
			snap, err := readSnapshot(snapshotPath, cmd.InOrStdin())
			if err != nil {
				return err
			}

			expenses := snap.expenses(groupID)
			summary, agg, err := calculator.New(maxExpenses).Summary(args[0], expenses, snap.members())
			if err != nil {
				return err
			}
			for _, d := range agg.Dropped {
				slog.Warn("Contribution dropped for unknown counterparty",
					"expense_id", d.ExpenseID,
					"counterparty_id", d.CounterpartyID,
					"amount", d.Amount,
				)
			}
			calculator.OverlayPaid(&summary, snap.settlements(groupID))
			slog.Debug("Summary computed", "member_id", args[0], "expenses_count", len(expenses))

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(summary)
			}
			printSummary(cmd.OutOrStdout(), summary, agg)
			return nil
		},
	}

	cmd.Flags().StringVarP(&groupID, "group", "g", "", "Only count expenses and settlements of this group.")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the summary as JSON.")
	return cmd
}

func printSummary(w io.Writer, s calculator.MemberSettlementSummary, agg calculator.Aggregation) {
	fmt.Fprintf(w, "%s (%s)\n", s.Member.Name, s.Member.ID)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	printTransactions(tw, "Need to pay", s.NeedToPay, func(tx calculator.SettlementTransaction) calculator.Member { return tx.To })
	printTransactions(tw, "Waiting for payment", s.WaitingForPayment, func(tx calculator.SettlementTransaction) calculator.Member { return tx.From })
	tw.Flush()

	fmt.Fprintf(w, "Total to pay: %s\n", s.TotalToPay().StringFixedBank(2))
	fmt.Fprintf(w, "Total to receive: %s\n", s.TotalToReceive().StringFixedBank(2))
	if dropped := agg.DroppedTotal(); !dropped.IsZero() {
		fmt.Fprintf(w, "Unattributed: %s\n", dropped.StringFixedBank(2))
	}
}

func printTransactions(w io.Writer, title string, txs []calculator.SettlementTransaction, other func(calculator.SettlementTransaction) calculator.Member) {
	fmt.Fprintf(w, "%s:\n", title)
	if len(txs) == 0 {
		fmt.Fprintln(w, "  nothing")
		return
	}
	for _, tx := range txs {
		paid := ""
		if tx.IsPaid {
			paid = "paid"
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\n", other(tx).Name, tx.Amount.StringFixedBank(2), paid)
		for _, b := range tx.Breakdown {
			label := b.ExpenseTitle
			if b.ItemName != "" {
				label += " / " + b.ItemName
			}
			fmt.Fprintf(w, "    %s\t%s\t%s\n", label, b.Amount.StringFixedBank(2), b.ExpenseDate.Format("2006-01-02"))
		}
	}
}
