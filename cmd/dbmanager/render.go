package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/export"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/query"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/savedquery"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/schema"
)

func newWriter(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	return t
}

func renderList(w io.Writer, header string, names []string) {
	t := newWriter(w)
	t.AppendHeader(table.Row{header})
	for _, n := range names {
		t.AppendRow(table.Row{n})
	}
	t.AppendFooter(table.Row{fmt.Sprintf("%d total", len(names))})
	t.Render()
}

func renderTable(w io.Writer, tbl *schema.Table) {
	t := newWriter(w)
	t.SetTitle(tbl.Name)
	t.AppendHeader(table.Row{"Column", "Type", "PK", "Nullable", "Default", "References"})
	for _, c := range tbl.Columns {
		def, ref := "", ""
		if c.Default != nil {
			def = *c.Default
		}
		if c.References != nil {
			ref = c.References.Table + "." + c.References.Column
		}
		t.AppendRow(table.Row{c.Name, c.Type, mark(c.PrimaryKey), mark(c.Nullable), def, ref})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignCenter},
		{Number: 4, Align: text.AlignCenter},
	})
	if pk, ok := tbl.PrimaryKey(); ok {
		t.SetCaption("rows identified by primary key %s", pk)
	} else {
		t.SetCaption("no primary key: rows identified by all fields")
	}
	t.Render()
}

// renderOutcome prints the row set, if any, followed by the message. A
// failed outcome becomes the command's error.
func renderOutcome(w io.Writer, out query.Outcome) error {
	if !out.Success {
		return errors.New(out.Message)
	}
	if out.HasRows() {
		t := newWriter(w)
		header := make(table.Row, len(out.Columns))
		for i, c := range out.Columns {
			header[i] = c
		}
		t.AppendHeader(header)
		for _, r := range out.Rows {
			row := make(table.Row, len(out.Columns))
			for i, c := range out.Columns {
				v, _ := r.Get(c)
				if v.IsNull() {
					row[i] = text.FgHiBlack.Sprint("NULL")
				} else {
					row[i] = v.String()
				}
			}
			t.AppendRow(row)
		}
		t.Render()
	}
	fmt.Fprintln(w, out.Message)
	return nil
}

func renderExport(w io.Writer, res export.Result) error {
	if !res.Success {
		return errors.New(res.Message)
	}
	fmt.Fprintln(w, res.Message)
	if res.URL != "" {
		fmt.Fprintln(w, "download:", res.URL)
	}
	return nil
}

func renderSaved(w io.Writer, queries []savedquery.SavedQuery) {
	t := newWriter(w)
	t.AppendHeader(table.Row{"Name", "Query", "Description"})
	for _, q := range queries {
		t.AppendRow(table.Row{q.Name, q.Query, q.Description})
	}
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMax: 60}})
	t.Render()
}

func mark(b bool) string {
	if b {
		return "✓"
	}
	return ""
}
