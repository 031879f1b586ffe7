package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCLI_EndToEnd(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_URL", filepath.Join(dir, "agency.db"))
	t.Setenv("EXPORT_DIR", filepath.Join(dir, "exports"))
	t.Setenv("SAVED_QUERIES_PATH", filepath.Join(dir, "saved.json"))
	t.Setenv("LOG_LEVEL", "disabled")

	_, err := run(t, "query", "CREATE TABLE guides (id INTEGER PRIMARY KEY, name TEXT NOT NULL, langs INTEGER)")
	require.NoError(t, err)

	out, err := run(t, "insert", "guides", "name=Marta", "langs=3")
	require.NoError(t, err)
	assert.Contains(t, out, "inserted 1 row")

	_, err = run(t, "insert", "guides", "langs=2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `required column "name" is missing`)

	out, err = run(t, "tables")
	require.NoError(t, err)
	assert.Contains(t, out, "guides")

	out, err = run(t, "describe", "guides")
	require.NoError(t, err)
	assert.Contains(t, out, "langs")
	assert.Contains(t, out, "rows identified by primary key id")

	out, err = run(t, "preview", "guides")
	require.NoError(t, err)
	assert.Contains(t, out, "Marta")
	assert.Contains(t, out, "query returned 1 row")

	out, err = run(t, "export", "table", "guides")
	require.NoError(t, err)
	assert.Contains(t, out, ".xlsx")

	_, err = run(t, "saved", "save", "all", "SELECT name FROM guides", "-d", "every guide")
	require.NoError(t, err)
	out, err = run(t, "saved", "run", "all")
	require.NoError(t, err)
	assert.Contains(t, out, "Marta")

	out, err = run(t, "delete", "guides", "id=1")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted from guides")

	_, err = run(t, "query", "SELECT * FROM nowhere")
	assert.Error(t, err)
}

func TestParseAssignments(t *testing.T) {
	row, err := parseAssignments([]string{"name=Ann", "note=a=b", "empty="})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "note", "empty"}, row.Keys())
	note, _ := row.Get("note")
	assert.Equal(t, database.Text("a=b"), note)

	_, err = parseAssignments([]string{"novalue"})
	assert.Error(t, err)
	_, err = parseAssignments([]string{"=x"})
	assert.Error(t, err)
}
