// Tsl-send is a test packet generator for TSL UMD tally displays.
//
// It builds and transmits UMD packets in protocol versions 3.1, 4.0 and
// 5.0 over UDP or TCP, either from command-line flags or from named
// presets stored in the local config registry.
//
// Usage:
//
//	tsl-send [command] [flags]
//
// See 'tsl-send --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/videojedi/TSL-UMD-Tester/internal/version"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tsl-send",
	Short: "TSL UMD test packet sender",
	Long: `A test packet generator for TSL UMD tally displays.

Builds UMD packets in protocol versions 3.1, 4.0 and 5.0 and transmits
them over UDP or TCP. Version 5.0 packets sent over TCP are wrapped in
DLE/STX framing as required by the stream transport.

Frequently used messages can be stored as named presets. Presets are
kept in a YAML registry in the user's config directory and can be sent
with 'tsl-send preset send <name>'.

Note: For receiving and analysing traffic, use the separate
'tsl-monitor' utility.`,
	Version: version.Version,
}

func init() {
	// Disable automatic completion command generation
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tsl-send %s (commit: %s)\n", version.Version, version.Commit)
	},
}
