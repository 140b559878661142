package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/tahongtrung/phenomic/internal/store"
)

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /collections", s.handleCollections)
	mux.HandleFunc("GET /store/{collection}", s.handleList)
	mux.HandleFunc("GET /store/{collection}/{id}", s.handleGet)
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCollections(w http.ResponseWriter, r *http.Request) {
	names, err := s.st.Collections(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"collections": names})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	collection := r.PathValue("collection")
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeErrorMessage(w, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = n
	}
	after := r.URL.Query().Get("after")

	recs, err := s.st.List(r.Context(), collection, limit, after)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"list": recs})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	collection := r.PathValue("collection")
	id := r.PathValue("id")

	rec, err := s.st.Get(r.Context(), collection, id)
	if err != nil {
		if store.IsNotFound(err) {
			writeErrorMessage(w, http.StatusNotFound, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("write content response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeErrorMessage(w, status, err.Error())
}

func writeErrorMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
