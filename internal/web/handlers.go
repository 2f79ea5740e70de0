package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"cargue/internal/core"
	"cargue/internal/logging"
)

// cellRef identifies one cell in the dataset. Field accepts either the
// canonical key ("quantity") or the spreadsheet header ("CANTIDAD").
type cellRef struct {
	Row   int    `json:"row"`
	Field string `json:"field"`
}

// resolveField maps a client-supplied field name to its canonical key.
func (s *Server) resolveField(field string) (string, error) {
	if _, err := s.cat.Describe(field); err == nil {
		return field, nil
	}
	if key, ok := s.cat.Reverse(field); ok {
		return key, nil
	}
	return "", fmt.Errorf("unknown catalog field %q", field)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleImport accepts a multipart workbook upload and loads it into the
// session, replacing any previous dataset.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		respondError(w, r, fmt.Errorf("file too large or invalid form: %w", err), http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, errors.New("no file provided"), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, fmt.Errorf("reading upload: %w", err), http.StatusInternalServerError)
		return
	}

	s.mu.Lock()
	summary, err := s.session.LoadFile(header.Filename, data)
	s.mu.Unlock()
	if err != nil {
		respondError(w, r, err, http.StatusUnprocessableEntity)
		return
	}

	log := logging.WithFields(r.Context(),
		"dataset_id", summary.DatasetID,
		"sheet", summary.Sheet,
	)
	log.Info("workbook imported", "rows", summary.Rows, "error_rows", summary.ErrorRows)
	if summary.ErrorRows > 0 {
		log.Warn("imported rows need correction", "error_rows", summary.ErrorRows)
	}
	respondJSON(w, r, http.StatusOK, summary)
}

// datasetRow is one table row as rendered for the client: display values
// keyed by header, plus that row's cell errors keyed by header.
type datasetRow struct {
	Row    int               `json:"row"`
	Values map[string]string `json:"values"`
	Errors map[string]string `json:"errors,omitempty"`
}

// handleDataset returns the full table with per-cell error annotations.
func (s *Server) handleDataset(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.Loaded() {
		respondError(w, r, core.ErrNoDataset, http.StatusConflict)
		return
	}

	rows := s.session.Rows()
	out := make([]datasetRow, len(rows))
	for i, row := range rows {
		dr := datasetRow{Row: i, Values: row.Display(s.cat)}
		if row.HasErrors() {
			dr.Errors = make(map[string]string)
			for field, msg := range row.FieldErrors() {
				dr.Errors[s.cat.Header(field)] = msg
			}
		}
		out[i] = dr
	}

	respondJSON(w, r, http.StatusOK, map[string]any{
		"summary": s.session.Summary(),
		"headers": s.cat.Headers(),
		"rows":    out,
	})
}

// handleClear drops the loaded dataset.
func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.session.Clear()
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// handleErrors returns the validation errors flat and grouped by row.
func (s *Server) handleErrors(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.session.Loaded() {
		respondError(w, r, core.ErrNoDataset, http.StatusConflict)
		return
	}

	flat := s.session.DisplayErrors()
	respondJSON(w, r, http.StatusOK, map[string]any{
		"count": len(flat),
		"flat":  flat,
		"byRow": s.session.ErrorsByRow(),
	})
}

func (s *Server) handleEditStart(w http.ResponseWriter, r *http.Request) {
	var req cellRef
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := s.resolveField(req.Field)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if err := s.session.StartEdit(req.Row, key); err != nil {
		respondError(w, r, err, editStatus(err))
		return
	}
	respondJSON(w, r, http.StatusOK, s.session.Cursor())
}

func (s *Server) handleEditValue(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.SetValue(req.Value); err != nil {
		respondError(w, r, err, editStatus(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEditFinish(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.session.FinishEdit(); err != nil {
		respondError(w, r, err, editStatus(err))
		return
	}
	respondJSON(w, r, http.StatusOK, s.session.Summary())
}

func (s *Server) handleEditCancel(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.session.CancelEdit()
	s.mu.Unlock()
	w.WriteHeader(http.StatusNoContent)
}

// handleCell is the one-shot edit path: start, write, finish in a single
// request.
func (s *Server) handleCell(w http.ResponseWriter, r *http.Request) {
	var req struct {
		cellRef
		Value string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, fmt.Errorf("invalid request body: %w", err), http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key, err := s.resolveField(req.Field)
	if err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if err := s.session.CommitCell(req.Row, key, req.Value); err != nil {
		respondError(w, r, err, editStatus(err))
		return
	}
	respondJSON(w, r, http.StatusOK, s.session.Summary())
}

// handleReferenceSets exposes the category/manufacturer/supplier lists
// clients use to build selection dropdowns.
func (s *Server) handleReferenceSets(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, s.cat.References().Sets())
}

// handleSubmit exports the validated records. Refused with 409 while
// validation errors are outstanding.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.session.Export()
	if err != nil {
		respondError(w, r, err, http.StatusConflict)
		return
	}

	logging.FromContext(r.Context()).Info("dataset submitted",
		"dataset_id", s.session.ID(),
		"records", len(records),
	)
	respondJSON(w, r, http.StatusOK, map[string]any{
		"datasetId": s.session.ID(),
		"records":   records,
	})
}

// editStatus picks the HTTP status for a session error.
func editStatus(err error) int {
	if errors.Is(err, core.ErrNoDataset) {
		return http.StatusConflict
	}
	return http.StatusBadRequest
}
