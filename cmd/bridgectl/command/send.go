package command

import (
	"fmt"
	"strings"
	"time"

	"coquiz/cmd/bridgectl/command/client"

	"github.com/spf13/cobra"
)

var sendWait time.Duration

var sendCmd = &cobra.Command{
	Use:   "send <type> [json value]",
	Short: "Send one command and print the events that follow",
	Example: `  bridgectl send getVersion
  bridgectl send vibrateStart '{"pattern":"1,2"}'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		msgType, value, err := client.ParseLine(strings.Join(args, " "))
		if err != nil {
			return err
		}

		conn, err := dial()
		if err != nil {
			return err
		}
		defer conn.Close()

		if err := conn.Send(msgType, value); err != nil {
			return fmt.Errorf("send failed: %w", err)
		}

		// print whatever arrives until the connection goes quiet
		events := make(chan *client.Event)
		go func() {
			defer close(events)
			for {
				evt, err := conn.Receive()
				if err != nil {
					return
				}
				events <- evt
			}
		}()

		timer := time.NewTimer(sendWait)
		defer timer.Stop()
		for {
			select {
			case evt, ok := <-events:
				if !ok {
					return nil
				}
				client.PrintEvent(evt)
			case <-timer.C:
				return nil
			}
		}
	},
}

func init() {
	sendCmd.Flags().DurationVarP(&sendWait, "wait", "w", 2*time.Second, "how long to wait for events")
	rootCmd.AddCommand(sendCmd)
}
