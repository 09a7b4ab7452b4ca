package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const banner = `
  ┌─┐┌─┐┬─┐┬  ┌─┐┬ ┬
  ├─┘├─┤├┬┘│  ├┤ └┬┘
  ┴  ┴ ┴┴└─┴─┘└─┘ ┴
`

func main() {
	rootCmd := &cobra.Command{
		Use:   "parley",
		Short: "Terminal chat over WebSocket",
		Long: `Parley is a small chat system: one room, JSON events over a
WebSocket, editable messages, and attachments.

  parley serve           run the chat server
  parley join <address>  join a room from the terminal`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		joinCmd(),
		serveCmd(),
		versionCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\033[31mError:\033[0m %s\n", err)
		os.Exit(1)
	}
}

// printBanner prints the Parley ASCII art banner.
func printBanner() {
	fmt.Print(banner)
}
