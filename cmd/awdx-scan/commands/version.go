package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pxkundu/awdx/internal/update"
)

// Version and Commit are set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "none"
)

var flagCheck bool

// updateChecker is replaced in tests.
var updateChecker = update.NewChecker()

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "awdx-scan %s (commit: %s)\n", Version, Commit)
		if !flagCheck {
			return nil
		}
		r := updateChecker.CheckLatest(cmd.Context(), Version)
		switch {
		case r == nil:
			fmt.Fprintln(w, "Could not check for updates")
		case r.NeedsUpdate():
			fmt.Fprintf(w, "A newer version is available: %s\n  %s\n", r.Latest, r.UpdateURL)
		default:
			fmt.Fprintln(w, "You are running the latest version")
		}
		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&flagCheck, "check", false, "Check GitHub for a newer release")
	rootCmd.AddCommand(versionCmd)
}
