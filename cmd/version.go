package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags.
var (
	Version   = "dev"
	CommitSHA = "none"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print indexwright version and supported PostgreSQL versions",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("indexwright %s (commit: %s)\n\n", Version, CommitSHA)
		fmt.Println("Supported PostgreSQL versions:")
		fmt.Println("  • PostgreSQL 12 – 15")
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
