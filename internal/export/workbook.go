package export

import (
	"bytes"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
)

// InfoSheet is the name of the first sheet of a schema export.
const InfoSheet = "Schema Info"

const (
	maxSheetName = 31
	minColWidth  = 8.0
	maxColWidth  = 60.0
)

type workbook struct {
	f           *excelize.File
	sheets      []string
	used        map[string]bool
	headerStyle int
	dateStyle   int
}

func newWorkbook() *workbook {
	return &workbook{f: excelize.NewFile(), used: map[string]bool{}, headerStyle: -1, dateStyle: -1}
}

func (w *workbook) close() { _ = w.f.Close() }

// addSheet creates a sheet with a unique, Excel-legal name derived from
// label. The default sheet of a new file is renamed for the first call.
func (w *workbook) addSheet(label string) (string, error) {
	name := w.uniqueName(SheetName(label))
	if len(w.sheets) == 0 {
		if err := w.f.SetSheetName(w.f.GetSheetName(0), name); err != nil {
			return "", err
		}
	} else if _, err := w.f.NewSheet(name); err != nil {
		return "", err
	}
	w.sheets = append(w.sheets, name)
	w.used[strings.ToLower(name)] = true
	return name, nil
}

func (w *workbook) uniqueName(name string) string {
	if !w.used[strings.ToLower(name)] {
		return name
	}
	for i := 2; ; i++ {
		suffix := "_" + strconv.Itoa(i)
		candidate := truncate(name, maxSheetName-len(suffix)) + suffix
		if !w.used[strings.ToLower(candidate)] {
			return candidate
		}
	}
}

func (w *workbook) infoSheet(schema string, at time.Time, tables []string) error {
	sheet, err := w.addSheet(InfoSheet)
	if err != nil {
		return err
	}
	rows := [][]any{
		{"Schema", schema},
		{"Exported at", at.Format("2006-01-02 15:04:05")},
		{"Table count", len(tables)},
		{},
		{"Tables"},
	}
	for _, t := range tables {
		rows = append(rows, []any{t})
	}
	for i, r := range rows {
		if len(r) == 0 {
			continue
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := w.f.SetSheetRow(sheet, cell, &r); err != nil {
			return err
		}
	}
	style, err := w.header()
	if err != nil {
		return err
	}
	for _, cell := range []string{"A1", "A2", "A3", "A5"} {
		if err := w.f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	return w.autosize(sheet, rowsText(rows))
}

// dataSheet writes a styled header row followed by one row per record. A
// result with no rows still gets its header.
func (w *workbook) dataSheet(label string, columns []string, rows []*database.Row) error {
	sheet, err := w.addSheet(label)
	if err != nil {
		return err
	}

	widths := make([]int, len(columns))
	for i, c := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := w.f.SetCellStr(sheet, cell, c); err != nil {
			return err
		}
		widths[i] = utf8.RuneCountInString(c)
	}
	if len(columns) > 0 {
		style, err := w.header()
		if err != nil {
			return err
		}
		last, _ := excelize.CoordinatesToCellName(len(columns), 1)
		if err := w.f.SetCellStyle(sheet, "A1", last, style); err != nil {
			return err
		}
	}

	for r, row := range rows {
		for c, col := range columns {
			v, _ := row.Get(col)
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := w.setCell(sheet, cell, v); err != nil {
				return err
			}
			if n := utf8.RuneCountInString(v.String()); n > widths[c] {
				widths[c] = n
			}
		}
	}
	return w.setWidths(sheet, widths)
}

// setCell maps the value kind onto the matching spreadsheet cell type.
// NULL leaves the cell empty.
func (w *workbook) setCell(sheet, cell string, v database.Value) error {
	switch v.Kind() {
	case database.KindNull:
		return nil
	case database.KindInt:
		return w.f.SetCellValue(sheet, cell, v.AsInt())
	case database.KindFloat:
		return w.f.SetCellFloat(sheet, cell, v.AsFloat(), -1, 64)
	case database.KindBool:
		return w.f.SetCellBool(sheet, cell, v.AsBool())
	case database.KindTemporal:
		if err := w.f.SetCellValue(sheet, cell, v.AsTime()); err != nil {
			return err
		}
		style, err := w.date()
		if err != nil {
			return err
		}
		return w.f.SetCellStyle(sheet, cell, cell, style)
	default:
		return w.f.SetCellStr(sheet, cell, v.String())
	}
}

func (w *workbook) header() (int, error) {
	if w.headerStyle >= 0 {
		return w.headerStyle, nil
	}
	id, err := w.f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9D9D9"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "808080", Style: 1},
		},
	})
	if err != nil {
		return 0, err
	}
	w.headerStyle = id
	return id, nil
}

func (w *workbook) date() (int, error) {
	if w.dateStyle >= 0 {
		return w.dateStyle, nil
	}
	format := "yyyy-mm-dd hh:mm:ss"
	id, err := w.f.NewStyle(&excelize.Style{CustomNumFmt: &format})
	if err != nil {
		return 0, err
	}
	w.dateStyle = id
	return id, nil
}

func (w *workbook) autosize(sheet string, rows [][]string) error {
	var widths []int
	for _, r := range rows {
		for i, s := range r {
			for len(widths) <= i {
				widths = append(widths, 0)
			}
			if n := utf8.RuneCountInString(s); n > widths[i] {
				widths[i] = n
			}
		}
	}
	return w.setWidths(sheet, widths)
}

func (w *workbook) setWidths(sheet string, widths []int) error {
	for i, n := range widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		width := float64(n) + 2
		width = max(minColWidth, min(width, maxColWidth))
		if err := w.f.SetColWidth(sheet, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

func (w *workbook) bytes() (*bytes.Buffer, error) {
	return w.f.WriteToBuffer()
}

// SheetName strips the characters Excel forbids in sheet names and trims
// the result to 31 characters. An empty result becomes "Sheet".
func SheetName(label string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, label)
	name = strings.Trim(name, "' ")
	name = truncate(name, maxSheetName)
	if name == "" {
		return "Sheet"
	}
	return name
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func safeFileID(id string) string {
	out := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return '_'
	}, id)
	if out == "" {
		return "export"
	}
	return out
}

func rowsText(rows [][]any) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		for _, v := range r {
			switch t := v.(type) {
			case string:
				out[i] = append(out[i], t)
			case int:
				out[i] = append(out[i], strconv.Itoa(t))
			}
		}
	}
	return out
}
