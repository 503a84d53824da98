package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"quote-service/internal/fileio"
)

// Upload parses an inquiry sheet (.xlsx/.xls/.csv) into the grid the
// frontend keeps as chat state.
func (h *Handler) Upload() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		log := h.requestLogger(r)

		if err := r.ParseMultipartForm(int64(h.cfg.MaxUploadMB) << 20); err != nil {
			http.Error(w, "bad multipart form: "+err.Error(), http.StatusBadRequest)
			return
		}
		file, header, err := r.FormFile("file")
		if err != nil {
			http.Error(w, "missing file: "+err.Error(), http.StatusBadRequest)
			return
		}
		defer file.Close()

		switch strings.ToLower(filepath.Ext(header.Filename)) {
		case ".xlsx", ".xls", ".csv":
		default:
			http.Error(w, "unsupported file format, expected .xlsx/.xls/.csv", http.StatusBadRequest)
			return
		}

		rows, err := fileio.ReadAnyGrid(file, header.Filename)
		if err != nil {
			log.Error().Err(err).Str("file", header.Filename).Msg("sheet parse failed")
			http.Error(w, "failed to process file: "+err.Error(), http.StatusBadRequest)
			return
		}

		log.Info().Str("file", header.Filename).Int("rows", len(rows)).Msg("sheet uploaded")
		writeJSON(w, map[string]any{"data": fileio.ToGrid(rows)})
	}
}

type exportRequest struct {
	SheetData [][]any `json:"sheet_data"`
	Filename  string  `json:"filename"`
}

// Export renders the current grid back into a downloadable workbook.
func (h *Handler) Export() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		log := h.requestLogger(r)

		var req exportRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request body: "+err.Error(), http.StatusBadRequest)
			return
		}
		if len(req.SheetData) == 0 {
			http.Error(w, "sheet_data is empty", http.StatusBadRequest)
			return
		}

		name := strings.TrimSpace(req.Filename)
		if name == "" {
			name = "询价表"
		}
		if !strings.HasSuffix(strings.ToLower(name), ".xlsx") {
			name += ".xlsx"
		}

		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		w.Header().Set("Content-Disposition", `attachment; filename*=UTF-8''`+url.PathEscape(name))
		if err := fileio.WriteXLSX(w, req.SheetData, "Sheet1"); err != nil {
			log.Error().Err(err).Msg("sheet export failed")
		}
	}
}
