package command

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"

	"coquiz/cmd/bridgectl/command/client"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Attach as the content view and send commands interactively",
	Long: `Attach to the bridge and print every event it emits.
Each input line is sent as a command: <type> [json value], e.g.

  getSetting
  saveSetting {"bgm":"0"}
  admobCall {"mb_id":"42","ad_type":"1"}

Type /quit to exit. Attaching replaces any content view already attached.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		conn, err := dial()
		if err != nil {
			return err
		}
		defer conn.Close()

		color.Green("✅ Attached over %s. Type commands (or /quit to exit)\n", transport)

		interrupt := make(chan os.Signal, 1)
		signal.Notify(interrupt, os.Interrupt)

		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				evt, err := conn.Receive()
				if err != nil {
					color.Yellow("connection closed: %v", err)
					return
				}
				client.PrintEvent(evt)
			}
		}()

		go func() {
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				text := scanner.Text()
				if text == "/quit" {
					interrupt <- os.Interrupt
					return
				}
				if text == "" {
					continue
				}

				msgType, value, err := client.ParseLine(text)
				if err != nil {
					color.Red("%v", err)
					continue
				}
				if err := conn.Send(msgType, value); err != nil {
					color.Red("send failed: %v", err)
					return
				}
			}
		}()

		select {
		case <-interrupt:
			fmt.Println("Closing connection...")
		case <-done:
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
}
