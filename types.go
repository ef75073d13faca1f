package docindex

// Document is a server-stored record. The server assigns ID.
type Document struct {
	ID          int64          `json:"id"`
	URL         *string        `json:"url,omitempty"`
	Description *string        `json:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// CreateDocumentInput is one document to index. The server requires
// at least one of URL or Description.
type CreateDocumentInput struct {
	URL         *string        `json:"url,omitempty"`
	Description *string        `json:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// CreateDocumentResult is the outcome for one CreateDocumentInput,
// in the same position as its input.
type CreateDocumentResult struct {
	Success     bool           `json:"success"`
	URL         *string        `json:"url,omitempty"`
	Description *string        `json:"description,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ListDocumentsParams pages through documents. Nil fields use server defaults
// (limit 20, offset 0).
type ListDocumentsParams struct {
	Limit  *int
	Offset *int
}

// SearchParams is a semantic search query. The server requires at least
// one of URL or Description.
type SearchParams struct {
	URL         *string  `json:"url,omitempty"`
	Description *string  `json:"description,omitempty"`
	Threshold   *float64 `json:"threshold,omitempty"`
	TopK        *int     `json:"topK,omitempty"`
}

// RecommendationParams bounds a recommendation query.
type RecommendationParams struct {
	TopK      *int     `json:"topK,omitempty"`
	Threshold *float64 `json:"threshold,omitempty"`
}

// ListDocumentsResponse is a page of documents.
type ListDocumentsResponse struct {
	Documents []Document `json:"documents"`
	Limit     int        `json:"limit"`
	Offset    int        `json:"offset"`
	Count     int        `json:"count"`
}

// DocumentResponse wraps a single document (get and delete).
type DocumentResponse struct {
	Document Document `json:"document"`
}

// SearchHit is a scored, read-only projection of a document.
type SearchHit struct {
	ID          int64          `json:"id"`
	URL         string         `json:"url"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Timestamp   string         `json:"timestamp"`
	Score       float64        `json:"score"`
}

// RecommendationHit has the same shape as SearchHit.
type RecommendationHit = SearchHit

// SearchResponse lists search hits, best first.
type SearchResponse struct {
	Hits  []SearchHit `json:"hits"`
	Count int         `json:"count"`
}

// RecommendationsResponse lists documents similar to a given one.
type RecommendationsResponse struct {
	Hits  []RecommendationHit `json:"hits"`
	Count int                 `json:"count"`
}

// Ptr returns a pointer to v. Handy for optional fields.
func Ptr[T any](v T) *T { return &v }

// Deref returns *p, or the zero value when p is nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}
