package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/mmynk/settleup/internal/calculator"
)

func newSharesCmd() *cobra.Command {
	var groupID string

	cmd := &cobra.Command{
		Use:   "shares",
		Args:  cobra.NoArgs,
		Short: "Print the resolved shares of every expense",
		RunE: func(cmd *cobra.Command, _ []string) error {
			snap, err := readSnapshot(snapshotPath, cmd.InOrStdin())
			if err != nil {
				return err
			}

			names := make(map[string]string, len(snap.Members))
			for _, m := range snap.members() {
				names[m.ID] = m.Name
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range snap.expenses(groupID) {
				shares := e.Shares()
				fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Title, e.Method, e.Total.StringFixedBank(2))
				for _, id := range e.Beneficiaries {
					name := names[id]
					if name == "" {
						name = id
					}
					fmt.Fprintf(tw, "  %s\t%s\t\n", name, shares.Of(id).StringFixedBank(2))
				}
				if unallocated := calculator.UnallocatedAmount(e.Payload); !unallocated.IsZero() {
					fmt.Fprintf(tw, "  unallocated\t%s\t\n", unallocated.StringFixedBank(2))
				}
				if !calculator.IsBalanced(e.Total, shares) {
					fmt.Fprintf(tw, "  unbalanced\t%s\t\n", shares.Total().StringFixedBank(2))
				}
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVarP(&groupID, "group", "g", "", "Only show expenses of this group.")
	return cmd
}
