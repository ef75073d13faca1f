package docindex

import (
	"context"
	"net/http"
)

// SearchDocuments runs a semantic search.
func (c *Client) SearchDocuments(ctx context.Context, params SearchParams) Response[SearchResponse] {
	return do[SearchResponse](ctx, c, call{
		op:     "search_documents",
		method: http.MethodPost,
		path:   "/search",
		body:   params,
	})
}

// GetRecommendations returns documents similar to the one with the given id.
// params may be nil, in which case no body is sent.
func (c *Client) GetRecommendations(
	ctx context.Context, id int64, params *RecommendationParams,
) Response[RecommendationsResponse] {
	r := call{
		op:     "get_recommendations",
		method: http.MethodPost,
		path:   documentPath(id) + "/recommend",
	}
	if params != nil {
		r.body = params
	}
	return do[RecommendationsResponse](ctx, c, r)
}
