package server

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ashkelyonok/TourismAgencyDBManager/internal/database"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/errs"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/filestore"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/query"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/record"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/savedquery"
	"github.com/ashkelyonok/TourismAgencyDBManager/internal/schema"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":   "ok",
		"driver":   s.deps.Session.Dialect().String(),
		"database": s.deps.Session.DatabaseName(),
	})
}

func (s *Server) handleListSchemas(w http.ResponseWriter, r *http.Request) {
	names, err := s.deps.Session.ListSchemas(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"schemas": names})
}

func (s *Server) handleListTables(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	names, err := sess.ListTables(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"schema": sess.Schema(), "tables": names})
}

type createTableRequest struct {
	Name    string          `json:"name"`
	Columns []schema.Column `json:"columns"`
}

func (s *Server) handleCreateTable(w http.ResponseWriter, r *http.Request) {
	var req createTableRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := record.New(sessionFrom(r)).CreateTable(r.Context(), req.Name, req.Columns); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"table": req.Name})
}

func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	tbl, err := schema.Describe(r.Context(), sessionFrom(r), chi.URLParam(r, "table"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tbl)
}

func (s *Server) handleDropTable(w http.ResponseWriter, r *http.Request) {
	if err := record.New(sessionFrom(r)).DropTable(r.Context(), chi.URLParam(r, "table")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, r, errs.Newf(errs.ErrKindValidation, "invalid limit %q", raw))
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, query.Preview(r.Context(), sessionFrom(r), chi.URLParam(r, "table"), limit))
}

type insertRequest struct {
	Values *database.Row `json:"values"`
}

func (s *Server) handleInsert(w http.ResponseWriter, r *http.Request) {
	var req insertRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Values == nil {
		req.Values = database.NewRow()
	}
	table := chi.URLParam(r, "table")
	if err := record.New(sessionFrom(r)).InsertText(r.Context(), table, req.Values); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"table": table, "inserted": 1})
}

type updateRequest struct {
	Old *database.Row `json:"old"`
	New *database.Row `json:"new"`
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updateRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Old == nil || req.New == nil {
		writeError(w, r, errs.New(errs.ErrKindValidation, "both old and new rows are required"))
		return
	}
	ok, err := record.New(sessionFrom(r)).UpdateText(r.Context(), chi.URLParam(r, "table"), req.Old, req.New)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": ok})
}

type deleteRequest struct {
	Row *database.Row `json:"row"`
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	var req deleteRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.Row == nil || req.Row.Len() == 0 {
		writeError(w, r, errs.New(errs.ErrKindValidation, "row is required"))
		return
	}
	ok, err := record.New(sessionFrom(r)).Delete(r.Context(), chi.URLParam(r, "table"), req.Row)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": ok})
}

type queryRequest struct {
	SQL   string `json:"sql"`
	Label string `json:"label,omitempty"`
}

// handleQuery always answers 200; success or failure is in the outcome.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decode(r, &req); err != nil {
		writeJSON(w, http.StatusOK, query.Failed(err))
		return
	}
	writeJSON(w, http.StatusOK, query.New(sessionFrom(r)).Execute(r.Context(), req.SQL))
}

func (s *Server) handleQueryExport(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	out := query.New(sessionFrom(r)).Execute(r.Context(), req.SQL)
	if !out.Success {
		writeJSON(w, http.StatusOK, out)
		return
	}
	writeJSON(w, http.StatusOK, s.deps.Exporter.ExportOutcome(r.Context(), req.Label, out))
}

func (s *Server) handleSchemaExport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Exporter.ExportSchema(r.Context(), sessionFrom(r)))
}

func (s *Server) handleTableExport(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.deps.Exporter.ExportTable(r.Context(), sessionFrom(r), chi.URLParam(r, "table")))
}

func (s *Server) handleListExports(w http.ResponseWriter, r *http.Request) {
	if s.deps.Uploads == nil {
		writeError(w, r, errs.New(errs.ErrKindNotFound, "object storage is not configured"))
		return
	}
	objects, err := s.deps.Uploads.ListObjects(r.Context(), s.deps.Bucket, filestore.ListOptions{
		Prefix: r.URL.Query().Get("prefix"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if objects == nil {
		objects = []filestore.ObjectInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"bucket": s.deps.Bucket, "objects": objects})
}

func (s *Server) handleListSaved(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"queries": s.deps.Saved.List()})
}

func (s *Server) handleGetSaved(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	q, ok := s.deps.Saved.Get(name)
	if !ok {
		writeError(w, r, errs.Newf(errs.ErrKindNotFound, "saved query %q not found", name))
		return
	}
	writeJSON(w, http.StatusOK, q)
}

type saveQueryRequest struct {
	Query       string `json:"query"`
	Description string `json:"description"`
}

func (s *Server) handleSaveQuery(w http.ResponseWriter, r *http.Request) {
	var req saveQueryRequest
	if err := decode(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	q := savedquery.SavedQuery{Name: chi.URLParam(r, "name"), Query: req.Query, Description: req.Description}
	if err := s.deps.Saved.Save(q); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, q)
}

func (s *Server) handleDeleteSaved(w http.ResponseWriter, r *http.Request) {
	removed, err := s.deps.Saved.Delete(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

func (s *Server) handleRunSaved(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	q, ok := s.deps.Saved.Get(name)
	if !ok {
		writeError(w, r, errs.Newf(errs.ErrKindNotFound, "saved query %q not found", name))
		return
	}
	writeJSON(w, http.StatusOK, query.New(sessionFrom(r)).Execute(r.Context(), q.Query))
}
