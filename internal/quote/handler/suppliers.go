package handler

import (
	"net/http"
	"strconv"
	"strings"
)

// Suppliers lists sedimented suppliers, optionally filtered by ?q=.
func (h *Handler) Suppliers() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log := h.requestLogger(r)
		if h.suppliers == nil {
			writeJSON(w, map[string]any{"suppliers": []any{}, "enabled": false})
			return
		}

		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		q := strings.TrimSpace(r.URL.Query().Get("q"))

		var (
			recs any
			err  error
		)
		if q != "" {
			recs, err = h.suppliers.Search(r.Context(), q, limit)
		} else {
			recs, err = h.suppliers.List(r.Context(), limit)
		}
		if err != nil {
			log.Error().Err(err).Msg("supplier query failed")
			http.Error(w, "supplier query failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]any{"suppliers": recs, "enabled": true})
	}
}
