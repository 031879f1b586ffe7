package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/export"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/logger"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/savedquery"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/server"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/testutil"
)

type harness struct {
	t       *testing.T
	handler http.Handler
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	sess := testutil.SQLiteSession(t)
	dir := t.TempDir()
	saved, err := savedquery.Open(filepath.Join(dir, "saved_queries.json"))
	require.NoError(t, err)

	srv := server.New(server.Deps{
		Session:  sess,
		Exporter: export.New(filepath.Join(dir, "exports")),
		Saved:    saved,
		Logger:   logger.Nop(),
	})
	return &harness{t: t, handler: srv.Handler()}
}

func (h *harness) do(method, path, body string) (int, map[string]any) {
	h.t.Helper()
	var rd *bytes.Reader
	if body != "" {
		rd = bytes.NewReader([]byte(body))
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	out := map[string]any{}
	if rec.Body.Len() > 0 {
		require.NoError(h.t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	}
	return rec.Code, out
}

const widgets = `{"name":"widgets","columns":[
	{"name":"id","type":"INTEGER","primary_key":true},
	{"name":"name","type":"VARCHAR(64)"},
	{"name":"qty","type":"INTEGER","nullable":true}
]}`

func TestHealth(t *testing.T) {
	h := newHarness(t)
	code, body := h.do(http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "sqlite", body["driver"])
}

func TestTableLifecycle(t *testing.T) {
	h := newHarness(t)

	code, _ := h.do(http.MethodPost, "/schemas/main/tables", widgets)
	require.Equal(t, http.StatusCreated, code)

	code, body := h.do(http.MethodGet, "/schemas/main/tables", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, []any{"widgets"}, body["tables"])

	code, body = h.do(http.MethodGet, "/schemas/main/tables/widgets", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "widgets", body["name"])
	assert.Len(t, body["columns"], 3)

	code, _ = h.do(http.MethodPost, "/schemas/main/tables/widgets/rows", `{"values":{"name":"Alice","qty":"3"}}`)
	require.Equal(t, http.StatusCreated, code)

	code, body = h.do(http.MethodPost, "/schemas/main/tables/widgets/rows", `{"values":{"qty":"1"}}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation", body["kind"])
	assert.Contains(t, body["error"], "name")

	code, body = h.do(http.MethodPost, "/schemas/main/tables/widgets/rows", `{"values":{"id":1,"name":"Dup"}}`)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "unique", body["constraint"])

	code, body = h.do(http.MethodPut, "/schemas/main/tables/widgets/rows", `{"old":{"id":1},"new":{"qty":"7"}}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["updated"])

	code, body = h.do(http.MethodGet, "/schemas/main/tables/widgets/rows?limit=10", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	rows := body["rows"].([]any)
	require.Len(t, rows, 1)
	assert.EqualValues(t, 7, rows[0].(map[string]any)["qty"])

	code, _ = h.do(http.MethodGet, "/schemas/main/tables/widgets/rows?limit=ten", "")
	assert.Equal(t, http.StatusBadRequest, code)

	code, body = h.do(http.MethodDelete, "/schemas/main/tables/widgets/rows", `{"row":{"id":1}}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["deleted"])

	code, _ = h.do(http.MethodDelete, "/schemas/main/tables/widgets", "")
	assert.Equal(t, http.StatusNoContent, code)

	code, body = h.do(http.MethodGet, "/schemas/main/tables/widgets", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "schema", body["kind"])
}

func TestInvalidSchemaRejected(t *testing.T) {
	h := newHarness(t)
	code, body := h.do(http.MethodGet, "/schemas/sales%3B%20DROP/tables", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "schema", body["kind"])
}

func TestQuery_AlwaysOK(t *testing.T) {
	h := newHarness(t)

	code, body := h.do(http.MethodPost, "/schemas/main/query", `{"sql":"SELECT 1 AS one"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, []any{"one"}, body["columns"])

	code, body = h.do(http.MethodPost, "/schemas/main/query", `{"sql":"SELECT * FROM does_not_exist"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["success"])
	assert.Contains(t, body["message"], "no such table")

	code, body = h.do(http.MethodPost, "/schemas/main/query", `not json`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, false, body["success"])
}

func TestExports(t *testing.T) {
	h := newHarness(t)
	code, _ := h.do(http.MethodPost, "/schemas/main/tables", widgets)
	require.Equal(t, http.StatusCreated, code)

	code, body := h.do(http.MethodPost, "/schemas/main/exports", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"], body["message"])
	assert.True(t, strings.HasSuffix(body["path"].(string), ".xlsx"))

	code, body = h.do(http.MethodPost, "/schemas/main/tables/widgets/export", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"], body["message"])

	code, body = h.do(http.MethodPost, "/schemas/main/query/export", `{"sql":"SELECT * FROM widgets","label":"all widgets"}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"], body["message"])

	code, _ = h.do(http.MethodGet, "/exports", "")
	assert.Equal(t, http.StatusNotFound, code, "no object store configured")
}

func TestSavedQueries(t *testing.T) {
	h := newHarness(t)

	code, _ := h.do(http.MethodPut, "/saved-queries/answer", `{"query":"SELECT 42 AS answer","description":"the answer"}`)
	require.Equal(t, http.StatusOK, code)

	code, body := h.do(http.MethodGet, "/saved-queries", "")
	require.Equal(t, http.StatusOK, code)
	assert.Len(t, body["queries"], 1)

	code, body = h.do(http.MethodGet, "/saved-queries/answer", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "the answer", body["description"])

	code, body = h.do(http.MethodPost, "/schemas/main/saved-queries/answer/run", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["success"])

	code, body = h.do(http.MethodDelete, "/saved-queries/answer", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, true, body["removed"])

	code, _ = h.do(http.MethodGet, "/saved-queries/answer", "")
	assert.Equal(t, http.StatusNotFound, code)

	code, body = h.do(http.MethodPut, "/saved-queries/empty", `{"query":""}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "validation", body["kind"])
}
