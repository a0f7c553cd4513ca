package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/restock/internal/analytics"
	"github.com/sells-group/restock/internal/journey"
	"github.com/sells-group/restock/internal/loader"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// fail maps a service error onto a response.
func (s *server) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case eris.Is(err, analytics.ErrProfileNotFound):
		writeError(w, http.StatusNotFound, "profile not found")
	case eris.Is(err, analytics.ErrReadOnly):
		writeError(w, http.StatusNotImplemented, "imports are not enabled")
	default:
		s.log.Error("request failed",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func (s *server) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) profiles(w http.ResponseWriter, r *http.Request) {
	profiles, err := s.svc.Profiles(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

func (s *server) similar(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	if unescaped, err := url.PathUnescape(key); err == nil {
		key = unescaped
	}
	matches, err := s.svc.Similar(r.Context(), key)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *server) journey(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	view, err := journey.ParseView(q.Get("view"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tree, err := s.svc.Journey(r.Context(), view, q.Get("q"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tree)
}

func (s *server) inventory(w http.ResponseWriter, r *http.Request) {
	items, err := s.svc.Inventory(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *server) syncRecords(w http.ResponseWriter, r *http.Request) {
	records, err := s.svc.SyncRecords(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

// importOrders decodes a dataset from the body and writes it to the ledger.
// The format comes from the format query parameter, else the Content-Type,
// else JSON.
func (s *server) importOrders(w http.ResponseWriter, r *http.Request) {
	format := requestFormat(r)
	ds, err := loader.Decode(r.Context(), http.MaxBytesReader(w, r.Body, maxUploadBytes), format)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(ds.Orders) == 0 {
		writeError(w, http.StatusBadRequest, "no orders in request body")
		return
	}

	source := r.URL.Query().Get("source")
	if source == "" {
		source = "api"
	}
	batch, err := s.svc.Import(r.Context(), source, ds)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, batch)
}

func requestFormat(r *http.Request) loader.Format {
	if f := r.URL.Query().Get("format"); f != "" {
		return loader.Format(strings.ToLower(f))
	}
	ct := r.Header.Get("Content-Type")
	switch {
	case strings.Contains(ct, "yaml"):
		return loader.FormatYAML
	case strings.Contains(ct, "csv"):
		return loader.FormatCSV
	case strings.Contains(ct, "spreadsheetml"):
		return loader.FormatXLSX
	default:
		return loader.FormatJSON
	}
}
