package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/nethalo/indexwright/internal/core"
	"github.com/nethalo/indexwright/internal/engine"
	"github.com/nethalo/indexwright/internal/output"
)

var analyseCmd = &cobra.Command{
	Use:          "analyse [sql]",
	Short:        "Analyse a SQL statement and propose indexes",
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		sql := strings.TrimSpace(args[0])

		dsn := buildDSN()
		ctx := context.Background()

		eng, err := engine.Open(ctx, dsn)
		if err != nil {
			return fmt.Errorf("connecting: %w", err)
		}
		defer eng.Close()

		if viper.GetBool("verbose") {
			opts := core.DefaultOptions()
			opts.Verbose = true
			eng.Configure(opts)
		}

		result, err := eng.Analyse(ctx, sql)
		if err != nil {
			return fmt.Errorf("analysing: %w", err)
		}

		renderer := output.NewRenderer(viper.GetString("format"), os.Stdout)
		renderer.Render(result)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(analyseCmd)
}

func buildDSN() string {
	host := viper.GetString("host")
	if host == "" {
		host = "127.0.0.1"
	}
	port := viper.GetInt("port")
	if port == 0 {
		port = 5432
	}
	user := viper.GetString("user")
	if user == "" {
		user = "indexwright"
	}
	password := viper.GetString("password")
	database := viper.GetString("database")

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", user, password, host, port, database)
}
