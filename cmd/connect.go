package cmd

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/nethalo/indexwright/internal/core"
	"github.com/nethalo/indexwright/internal/gateway"
)

var connectCmd = &cobra.Command{
	Use:          "connect",
	Short:        "Test the Postgres connection used by indexwright",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if viper.GetString("password") == "" {
			viper.Set("password", promptPassword())
		}

		ctx := context.Background()
		gw, err := gateway.Open(ctx, buildDSN(), core.DefaultOptions())
		if err != nil {
			return fmt.Errorf("connection failed: %w", err)
		}
		defer gw.Close()

		// The pool connects lazily; Ping forces a round trip to the server.
		if err := gw.Pool().Ping(ctx); err != nil {
			return fmt.Errorf("connection failed: %w", err)
		}

		fmt.Println("connected")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(connectCmd)
}

// promptPassword reads a password from the terminal without echoing it,
// adapted from the teacher's internal/mysql/connection.go PromptPassword.
func promptPassword() string {
	fmt.Fprint(os.Stderr, "Password: ")
	b, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return ""
	}
	return string(b)
}
