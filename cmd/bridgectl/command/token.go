package command

import (
	"fmt"

	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue an attach token from ATTACH_SECRET",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := resolveToken()
		if err != nil {
			return err
		}
		fmt.Println(t)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
}
