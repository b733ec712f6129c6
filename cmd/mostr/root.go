package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is overridden at build time via -ldflags, the way the
// teacher stamps its own release builds.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "mostr",
	Short: "A collaborative, event-sourced task tracker over nostr relays",
	Long: `mostr is a terminal task tracker where every change - a new
task, a status transition, a note, a tracked interval - is a signed
event published to a set of nostr relays. There is no server and no
database beyond the event log itself; running mostr with no
subcommand starts the keystroke-driven command interpreter, same as
running "mostr run" explicitly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepl()
	},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the keystroke-driven command interpreter (default)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepl()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the mostr version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command, exiting non-zero on any error exactly
// as the teacher's FatalError helper does for its own command tree.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
