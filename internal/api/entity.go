package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"wikitextifier/pkg/textifier"
	"wikitextifier/pkg/wikidata"
)

// EntityHandler serves GET /api/entity: it resolves one or more entity
// IDs and returns them in the requested format.
type EntityHandler struct {
	svc    *textifier.Service
	logger *slog.Logger
}

// NewEntityHandler creates an EntityHandler.
func NewEntityHandler(svc *textifier.Service, logger *slog.Logger) *EntityHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EntityHandler{svc: svc, logger: logger}
}

// Handle parses the query parameters, runs resolution, and writes the
// formatted payload.
//
// Parameters: id (required, comma-separated), lang (default "en"),
// format (json|text|triplet, default json), external_ids (default
// true), references (default false), all_ranks (default false), pid
// (comma-separated property filter), fallback_lang.
func (h *EntityHandler) Handle(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := uuid.NewString()
	logger := h.logger.With("request_id", requestID)

	q := r.URL.Query()

	ids := textifier.ParseIDs(q.Get("id"))
	if len(ids) == 0 {
		http.Error(w, "missing id parameter", http.StatusBadRequest)
		return
	}

	lang := q.Get("lang")
	if lang == "" {
		lang = "en"
	}

	format, err := textifier.ParseFormat(q.Get("format"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	opts := textifier.DefaultOptions()
	opts.Format = format
	opts.ExternalIDs = boolParam(q.Get("external_ids"), true)
	opts.References = boolParam(q.Get("references"), false)
	opts.AllRanks = boolParam(q.Get("all_ranks"), false)
	opts.Properties = textifier.ParseIDs(q.Get("pid"))
	opts.FallbackLang = q.Get("fallback_lang")

	payload, err := h.svc.Textify(r.Context(), ids, lang, opts)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, wikidata.ErrNotFound):
			status = http.StatusNotFound
		case errors.Is(err, textifier.ErrInvalidFormat):
			status = http.StatusUnprocessableEntity
		}
		logger.Warn("Entity request failed", "ids", q.Get("id"), "lang", lang, "status", status, "error", err)
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", textifier.ContentType(format))
	w.Header().Set("X-Request-ID", requestID)
	if _, err := w.Write([]byte(payload)); err != nil {
		logger.Error("Failed to write entity response", "error", err)
		return
	}

	logger.Info("Entity request served",
		"ids", q.Get("id"),
		"lang", lang,
		"format", string(format),
		"duration_ms", time.Since(start).Milliseconds())
}

// boolParam parses a query flag, falling back to def for absent or
// unparseable values.
func boolParam(s string, def bool) bool {
	if s == "" {
		return def
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return v
}
