// Command dbmanager inspects and edits relational databases whose tables
// are only known at runtime, from the terminal or over HTTP.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	_ "github.com/ashkelyonok/TourismAgencyDBManager/internal/database/mysql"
	_ "github.com/ashkelyonok/TourismAgencyDBManager/internal/database/postgres"
	_ "github.com/ashkelyonok/TourismAgencyDBManager/internal/database/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "dbmanager",
		Short: "Browse, edit and export relational databases discovered at runtime",
		Long: `dbmanager connects to a PostgreSQL, MySQL or SQLite database, discovers its
tables through the catalog, and lets you preview, insert, update and delete rows,
run ad-hoc SQL, and export schemas, tables or query results to xlsx workbooks.

Connection settings come from --config (YAML), a .env file and the environment
(DB_DRIVER, DB_URL, DB_USER, DB_PASSWORD, DB_SCHEMA).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd.Context())
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "path to a YAML configuration file")
	root.PersistentFlags().StringVarP(&a.schema, "schema", "s", "", "schema to operate on (overrides DB_SCHEMA)")
	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "path to a .env file (default ./.env when present)")

	root.AddCommand(
		newServeCmd(a),
		newSchemasCmd(a),
		newTablesCmd(a),
		newDescribeCmd(a),
		newPreviewCmd(a),
		newQueryCmd(a),
		newInsertCmd(a),
		newDeleteCmd(a),
		newDropCmd(a),
		newExportCmd(a),
		newSavedCmd(a),
	)
	return root
}
