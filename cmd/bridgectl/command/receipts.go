package command

import (
	"fmt"

	"coquiz/cmd/bridgectl/command/client"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var receiptsLimit int

var receiptsCmd = &cobra.Command{
	Use:   "receipts <mb_id>",
	Short: "List recorded purchases for a member",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := resolveToken()
		if err != nil {
			return err
		}

		result, err := client.NewHTTPClient(apiURL, t).Receipts(args[0], receiptsLimit)
		if err != nil {
			return err
		}
		if result.Count == 0 {
			color.Yellow("No receipts for member %s", result.MemberID)
			return nil
		}

		color.Cyan("%d receipt(s) for member %s", result.Count, result.MemberID)
		for _, r := range result.Receipts {
			fmt.Printf("  %s  %-20s %-8s %s\n",
				r.CreatedAt.Format("2006-01-02 15:04"), r.ProductID, r.Platform, r.TransactionID)
		}
		return nil
	},
}

func init() {
	receiptsCmd.Flags().IntVarP(&receiptsLimit, "limit", "n", 20, "maximum receipts to list")
	rootCmd.AddCommand(receiptsCmd)
}
