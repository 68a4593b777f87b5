package command

import (
	"fmt"

	"coquiz/cmd/bridgectl/command/client"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the bridge session and content address",
	RunE: func(cmd *cobra.Command, args []string) error {
		t, err := resolveToken()
		if err != nil {
			return err
		}
		api := client.NewHTTPClient(apiURL, t)

		content, err := api.Content()
		if err != nil {
			return err
		}
		status, err := api.Status()
		if err != nil {
			return err
		}

		color.Cyan("Content")
		fmt.Printf("  url:       %s\n", content.URL)
		fmt.Printf("  online:    %s\n", onOff(content.Online))
		fmt.Printf("  attached:  %s\n", onOff(status.Attached))
		color.Cyan("Session")
		fmt.Printf("  app state: %s\n", status.AppState)
		fmt.Printf("  bgm:       %s (%s)\n", status.BackgroundTrack, status.BackgroundStatus)
		fmt.Printf("  settings:  bgm=%s sound=%s vibrate=%s push=%s\n",
			status.Settings.BGM, status.Settings.Sound, status.Settings.Vibrate, status.Settings.Push)
		fmt.Printf("  push token: %s  device id: %s  wallet pending: %s\n",
			onOff(status.HasPushToken), onOff(status.HasUserID), onOff(status.WalletPending))
		return nil
	},
}

func onOff(v bool) string {
	if v {
		return color.GreenString("yes")
	}
	return color.RedString("no")
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
