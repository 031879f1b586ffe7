package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/query"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/record"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/savedquery"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/schema"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP operator API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := a.ctx(cmd.Context())
			sess, err := a.session(ctx)
			if err != nil {
				return err
			}
			saved, err := a.savedStore()
			if err != nil {
				return err
			}
			exp, err := a.exporter(ctx)
			if err != nil {
				return err
			}
			go func() {
				if err := saved.Watch(ctx); err != nil {
					a.log.WarnWith("saved queries watcher stopped", err, nil)
				}
			}()

			if addr == "" {
				addr = a.cfg.HTTP.Addr
			}
			srv := server.New(server.Deps{
				Session:  sess,
				Exporter: exp,
				Saved:    saved,
				Uploads:  a.store,
				Bucket:   a.cfg.Storage.Bucket,
				Logger:   a.log,
			})
			return srv.ListenAndServe(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from HTTP_ADDR or :8080)")
	return cmd
}

func newSchemasCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schemas",
		Short: "List schemas",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := a.ctx(cmd.Context())
			sess, err := a.session(ctx)
			if err != nil {
				return report(err)
			}
			names, err := sess.ListSchemas(ctx)
			if err != nil {
				return report(err)
			}
			renderList(cmd.OutOrStdout(), "Schema", names)
			return nil
		},
	}
}

func newTablesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tables",
		Short: "List the tables of the active schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := a.ctx(cmd.Context())
			sess, err := a.session(ctx)
			if err != nil {
				return report(err)
			}
			names, err := sess.ListTables(ctx)
			if err != nil {
				return report(err)
			}
			renderList(cmd.OutOrStdout(), "Table ("+sess.Schema()+")", names)
			return nil
		},
	}
}

func newDescribeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "describe <table>",
		Short: "Show the columns, keys and references of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := a.ctx(cmd.Context())
			sess, err := a.session(ctx)
			if err != nil {
				return report(err)
			}
			tbl, err := schema.Describe(ctx, sess, args[0])
			if err != nil {
				return report(err)
			}
			renderTable(cmd.OutOrStdout(), tbl)
			return nil
		},
	}
}

func newPreviewCmd(a *app) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "preview <table>",
		Short: "Show the first rows of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := a.ctx(cmd.Context())
			sess, err := a.session(ctx)
			if err != nil {
				return report(err)
			}
			return renderOutcome(cmd.OutOrStdout(), query.Preview(ctx, sess, args[0], limit))
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", query.DefaultPreviewLimit, "maximum number of rows")
	return cmd
}

func newQueryCmd(a *app) *cobra.Command {
	var label string
	cmd := &cobra.Command{
		Use:   "query <sql>",
		Short: "Run an SQL statement as written",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := a.ctx(cmd.Context())
			sess, err := a.session(ctx)
			if err != nil {
				return report(err)
			}
			out := query.New(sess).Execute(ctx, args[0])
			if err := renderOutcome(cmd.OutOrStdout(), out); err != nil || label == "" {
				return err
			}
			exp, err := a.exporter(ctx)
			if err != nil {
				return err
			}
			return renderExport(cmd.OutOrStdout(), exp.ExportOutcome(ctx, label, out))
		},
	}
	cmd.Flags().StringVar(&label, "export", "", "also export the result set to a workbook sheet with this label")
	return cmd
}

func newInsertCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "insert <table> column=value...",
		Short: "Insert one row; values are converted by column type",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			row, err := parseAssignments(args[1:])
			if err != nil {
				return report(err)
			}
			ctx := a.ctx(cmd.Context())
			sess, err := a.session(ctx)
			if err != nil {
				return report(err)
			}
			if err := record.New(sess).InsertText(ctx, args[0], row); err != nil {
				return report(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "inserted 1 row into %s\n", args[0])
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <table> column=value...",
		Short: "Delete the row matching the primary key, or every row matching all given columns",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := parseAssignments(args[1:])
			if err != nil {
				return report(err)
			}
			ctx := a.ctx(cmd.Context())
			sess, err := a.session(ctx)
			if err != nil {
				return report(err)
			}
			tbl, err := schema.Describe(ctx, sess, args[0])
			if err != nil {
				return report(err)
			}
			row, err := record.CoerceUpdate(tbl, raw)
			if err != nil {
				return report(err)
			}
			ok, err := record.New(sess).Delete(ctx, args[0], row)
			if err != nil {
				return report(err)
			}
			if !ok {
				fmt.Fprintln(cmd.OutOrStdout(), "no matching row")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted from %s\n", args[0])
			return nil
		},
	}
}

func newDropCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "drop <table>",
		Short: "Drop a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := a.ctx(cmd.Context())
			sess, err := a.session(ctx)
			if err != nil {
				return report(err)
			}
			if err := record.New(sess).DropTable(ctx, args[0]); err != nil {
				return report(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "dropped %s\n", args[0])
			return nil
		},
	}
}

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the schema or one table to an xlsx workbook",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "schema",
			Short: "Export every table of the active schema",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				ctx := a.ctx(cmd.Context())
				sess, err := a.session(ctx)
				if err != nil {
					return report(err)
				}
				exp, err := a.exporter(ctx)
				if err != nil {
					return err
				}
				return renderExport(cmd.OutOrStdout(), exp.ExportSchema(ctx, sess))
			},
		},
		&cobra.Command{
			Use:   "table <name>",
			Short: "Export one table",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				ctx := a.ctx(cmd.Context())
				sess, err := a.session(ctx)
				if err != nil {
					return report(err)
				}
				exp, err := a.exporter(ctx)
				if err != nil {
					return err
				}
				return renderExport(cmd.OutOrStdout(), exp.ExportTable(ctx, sess, args[0]))
			},
		},
	)
	return cmd
}

func newSavedCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saved",
		Short: "Manage saved queries",
	}

	var description string
	save := &cobra.Command{
		Use:   "save <name> <sql>",
		Short: "Save or replace a query",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := a.savedStore()
			if err != nil {
				return report(err)
			}
			if err := store.Save(savedquery.SavedQuery{Name: args[0], Query: args[1], Description: description}); err != nil {
				return report(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", args[0])
			return nil
		},
	}
	save.Flags().StringVarP(&description, "description", "d", "", "what the query is for")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List saved queries",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				store, err := a.savedStore()
				if err != nil {
					return report(err)
				}
				renderSaved(cmd.OutOrStdout(), store.List())
				return nil
			},
		},
		save,
		&cobra.Command{
			Use:   "delete <name>",
			Short: "Delete a saved query",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := a.savedStore()
				if err != nil {
					return report(err)
				}
				removed, err := store.Delete(args[0])
				if err != nil {
					return report(err)
				}
				if !removed {
					fmt.Fprintf(cmd.OutOrStdout(), "no saved query named %s\n", args[0])
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "run <name>",
			Short: "Run a saved query",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				store, err := a.savedStore()
				if err != nil {
					return report(err)
				}
				q, ok := store.Get(args[0])
				if !ok {
					return report(errs.Newf(errs.ErrKindNotFound, "saved query %q not found", args[0]))
				}
				ctx := a.ctx(cmd.Context())
				sess, err := a.session(ctx)
				if err != nil {
					return report(err)
				}
				return renderOutcome(cmd.OutOrStdout(), query.New(sess).Execute(ctx, q.Query))
			},
		},
	)
	return cmd
}

// parseAssignments turns column=value arguments into a row of text values
// in argument order.
func parseAssignments(args []string) (*database.Row, error) {
	row := database.NewRow()
	for _, arg := range args {
		col, val, ok := strings.Cut(arg, "=")
		if !ok || col == "" {
			return nil, errs.Newf(errs.ErrKindValidation, "expected column=value, got %q", arg)
		}
		row.Set(col, database.Text(val))
	}
	return row, nil
}

// report turns err into the categorised message shown to the operator.
func report(err error) error {
	return errors.New(errs.Describe(err))
}
