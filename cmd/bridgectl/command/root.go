package command

// root.go defines the root command for bridgectl and its global flags.

import (
	"fmt"
	"os"

	"coquiz/cmd/bridgectl/command/client"
	"coquiz/internal/attach"
	"coquiz/internal/config"

	"github.com/spf13/cobra"
)

var (
	apiURL    string // bridge HTTP base address
	tcpAddr   string // dev TCP transport address
	transport string // ws or tcp
	token     string // attach token
	deviceID  string // subject for locally issued tokens
)

var rootCmd = &cobra.Command{
	Use:   "bridgectl",
	Short: "bridgectl - drive the content bridge from a terminal",
	Long: `bridgectl attaches to a running bridge server as the content view.
Use it to send bridge commands by hand, watch the events the bridge emits,
and inspect the session and receipt ledger over the HTTP API.

Without --token, an attach token is issued locally from ATTACH_SECRET.`,
	SilenceUsage: true,
}

// Execute runs the root command. Called once by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "http://localhost:8080", "bridge HTTP address")
	rootCmd.PersistentFlags().StringVar(&tcpAddr, "tcp", "localhost:8081", "bridge TCP address")
	rootCmd.PersistentFlags().StringVar(&transport, "transport", "ws", "content transport: ws or tcp")
	rootCmd.PersistentFlags().StringVarP(&token, "token", "t", "", "attach token (issued from ATTACH_SECRET when empty)")
	rootCmd.PersistentFlags().StringVar(&deviceID, "device", "bridgectl", "device id for locally issued tokens")
}

// resolveToken returns --token, or issues one with the server's secret.
func resolveToken() (string, error) {
	if token != "" {
		return token, nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return "", fmt.Errorf("no --token given and config could not be loaded: %w", err)
	}
	return attach.NewTokenService(cfg.AttachSecret, cfg.AttachTokenTTL).IssueToken(deviceID)
}

func dial() (client.Conn, error) {
	t, err := resolveToken()
	if err != nil {
		return nil, err
	}

	switch transport {
	case "ws":
		return client.DialWS(apiURL, t)
	case "tcp":
		return client.DialTCP(tcpAddr, t)
	default:
		return nil, fmt.Errorf("unknown transport %q (want ws or tcp)", transport)
	}
}
