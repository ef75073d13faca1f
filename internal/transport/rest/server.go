// Package rest serves the document API over HTTP from an in-memory repository.
// It is a stand-in for the real service, used by tests and local development.
package rest

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	logpkg "github.com/kailas-cloud/docindex/internal/logger"
	"github.com/kailas-cloud/docindex/internal/metrics"
	documentrepo "github.com/kailas-cloud/docindex/internal/repository/document"
)

// Server defaults, matching the production API.
const (
	DefaultLimit     = 20
	DefaultTopK      = 10
	DefaultThreshold = 0.0
)

// repository is the consumer interface for documents.
type repository interface {
	Insert(ctx context.Context, url, description *string, metadata map[string]any) documentrepo.Record
	List(ctx context.Context, limit, offset int) []documentrepo.Record
	Get(ctx context.Context, id int64) (documentrepo.Record, error)
	Delete(ctx context.Context, id int64) (documentrepo.Record, error)
	Rank(ctx context.Context, query string, exclude int64, threshold float64, topK int) []documentrepo.Hit
}

// Server handles the document API routes.
type Server struct {
	docs repository
}

// NewServer creates an HTTP API server over the given repository.
func NewServer(docs repository) *Server {
	return &Server{docs: docs}
}

// NewRouter wires the server, middleware chain and auxiliary routes.
func NewRouter(s *Server, apiKeys []string, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(APIKeyMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/document", s.ListDocuments)
	r.Post("/document", s.CreateDocuments)
	r.Get("/document/{id}", s.GetDocument)
	r.Delete("/document/{id}", s.DeleteDocument)
	r.Post("/document/{id}/recommend", s.Recommend)
	r.Post("/search", s.Search)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
	})
	return r
}

// documentJSON is the wire form of a document.
type documentJSON struct {
	ID          int64          `json:"id"`
	URL         *string        `json:"url"`
	Description *string        `json:"description"`
	Metadata    map[string]any `json:"metadata"`
}

type hitJSON struct {
	ID          int64          `json:"id"`
	URL         string         `json:"url"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata"`
	Timestamp   string         `json:"timestamp"`
	Score       float64        `json:"score"`
}

type createItem struct {
	URL         *string        `json:"url"`
	Description *string        `json:"description"`
	Metadata    map[string]any `json:"metadata"`
}

type createResult struct {
	Success     bool           `json:"success"`
	URL         *string        `json:"url"`
	Description *string        `json:"description"`
	Metadata    map[string]any `json:"metadata"`
}

type searchRequest struct {
	URL         *string  `json:"url"`
	Description *string  `json:"description"`
	Threshold   *float64 `json:"threshold"`
	TopK        *int     `json:"topK"`
}

type recommendRequest struct {
	TopK      *int     `json:"topK"`
	Threshold *float64 `json:"threshold"`
}

// ListDocuments handles GET /document?limit=&offset=.
func (s *Server) ListDocuments(w http.ResponseWriter, r *http.Request) {
	var is issues
	limit := is.intParam(r, "limit", DefaultLimit)
	offset := is.intParam(r, "offset", 0)
	if is.write(w) {
		return
	}

	recs := s.docs.List(r.Context(), limit, offset)
	docs := make([]documentJSON, len(recs))
	for i, rec := range recs {
		docs[i] = toDocumentJSON(rec)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"documents": docs,
		"limit":     limit,
		"offset":    offset,
		"count":     len(docs),
	})
}

// GetDocument handles GET /document/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	var is issues
	id := is.idParam(chi.URLParam(r, "id"))
	if is.write(w) {
		return
	}

	rec, err := s.docs.Get(r.Context(), id)
	if err != nil {
		handleRepoError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"document": toDocumentJSON(rec)})
}

// DeleteDocument handles DELETE /document/{id}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request) {
	var is issues
	id := is.idParam(chi.URLParam(r, "id"))
	if is.write(w) {
		return
	}

	rec, err := s.docs.Delete(r.Context(), id)
	if err != nil {
		handleRepoError(w, r, err)
		return
	}
	logpkg.FromContext(r.Context()).Debug("document deleted", zap.Int64("id", id))
	writeJSON(w, http.StatusOK, map[string]any{"document": toDocumentJSON(rec)})
}

// CreateDocuments handles POST /document. Items without url and description
// are reported with success=false; the rest are stored.
func (s *Server) CreateDocuments(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Documents *[]createItem `json:"documents"`
	}
	var is issues
	is.decodeBody(r, &req, false)
	if len(is) == 0 && req.Documents == nil {
		is.invalidType([]any{"documents"}, "array", "undefined")
	}
	if is.write(w) {
		return
	}

	results := make([]createResult, len(*req.Documents))
	for i, item := range *req.Documents {
		results[i] = createResult{
			URL:         item.URL,
			Description: item.Description,
			Metadata:    item.Metadata,
		}
		if documentrepo.Text(item.URL, item.Description) == "" {
			continue
		}
		rec := s.docs.Insert(r.Context(), item.URL, item.Description, item.Metadata)
		results[i].Success = true
		logpkg.FromContext(r.Context()).Debug("document created", zap.Int64("id", rec.ID))
	}
	writeJSON(w, http.StatusOK, results)
}

// Search handles POST /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	var is issues
	is.decodeBody(r, &req, false)
	query := documentrepo.Text(req.URL, req.Description)
	if len(is) == 0 && query == "" {
		is.add(issue{
			Code:    "custom",
			Path:    []any{},
			Message: "Either url or description is required",
		})
	}
	topK := is.topK(req.TopK, DefaultTopK)
	if is.write(w) {
		return
	}

	threshold := DefaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	hits := s.docs.Rank(r.Context(), query, -1, threshold, topK)
	writeJSON(w, http.StatusOK, toHitsResponse(hits))
}

// Recommend handles POST /document/{id}/recommend.
func (s *Server) Recommend(w http.ResponseWriter, r *http.Request) {
	var req recommendRequest
	var is issues
	id := is.idParam(chi.URLParam(r, "id"))
	is.decodeBody(r, &req, true)
	topK := is.topK(req.TopK, DefaultTopK)
	if is.write(w) {
		return
	}

	rec, err := s.docs.Get(r.Context(), id)
	if err != nil {
		handleRepoError(w, r, err)
		return
	}

	threshold := DefaultThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	hits := s.docs.Rank(r.Context(), documentrepo.Text(rec.URL, rec.Description), rec.ID, threshold, topK)
	writeJSON(w, http.StatusOK, toHitsResponse(hits))
}

func handleRepoError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, documentrepo.ErrDocumentNotFound) {
		writeError(w, http.StatusNotFound, "Document Not Found")
		return
	}
	logpkg.FromContext(r.Context()).Error("repository error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "Internal Server Error")
}

func toDocumentJSON(rec documentrepo.Record) documentJSON {
	return documentJSON{
		ID:          rec.ID,
		URL:         rec.URL,
		Description: rec.Description,
		Metadata:    rec.Metadata,
	}
}

func toHitsResponse(hits []documentrepo.Hit) map[string]any {
	out := make([]hitJSON, len(hits))
	for i, h := range hits {
		out[i] = hitJSON{
			ID:          h.ID,
			URL:         deref(h.URL),
			Description: deref(h.Description),
			Metadata:    h.Metadata,
			Timestamp:   h.CreatedAt.Format(time.RFC3339),
			Score:       h.Score,
		}
	}
	return map[string]any{"hits": out, "count": len(out)}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
