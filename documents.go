package docindex

import (
	"context"
	"net/http"
	"strconv"
)

func documentPath(id int64) string {
	return "/document/" + strconv.FormatInt(id, 10)
}

func (p *ListDocumentsParams) queryParams() []queryParam {
	if p == nil {
		return nil
	}
	return compactParams(
		optional("limit", p.Limit),
		optional("offset", p.Offset),
	)
}

// ListDocuments returns a page of documents. params may be nil.
func (c *Client) ListDocuments(
	ctx context.Context, params *ListDocumentsParams,
) Response[ListDocumentsResponse] {
	return do[ListDocumentsResponse](ctx, c, call{
		op:     "list_documents",
		method: http.MethodGet,
		path:   "/document",
		params: params.queryParams(),
	})
}

// GetDocuments is an alias for ListDocuments.
func (c *Client) GetDocuments(
	ctx context.Context, params *ListDocumentsParams,
) Response[ListDocumentsResponse] {
	return c.ListDocuments(ctx, params)
}

// GetDocumentByID fetches one document. Unknown ids yield 404 "Document Not Found".
func (c *Client) GetDocumentByID(ctx context.Context, id int64) Response[DocumentResponse] {
	return do[DocumentResponse](ctx, c, call{
		op:     "get_document",
		method: http.MethodGet,
		path:   documentPath(id),
	})
}

// DeleteDocumentByID deletes one document and returns it.
func (c *Client) DeleteDocumentByID(ctx context.Context, id int64) Response[DocumentResponse] {
	return do[DocumentResponse](ctx, c, call{
		op:     "delete_document",
		method: http.MethodDelete,
		path:   documentPath(id),
	})
}

type createDocumentsBody struct {
	Documents []CreateDocumentInput `json:"documents"`
}

// CreateDocuments indexes documents. The result has one entry per input, in order.
func (c *Client) CreateDocuments(
	ctx context.Context, docs []CreateDocumentInput,
) Response[[]CreateDocumentResult] {
	if docs == nil {
		docs = []CreateDocumentInput{}
	}
	return do[[]CreateDocumentResult](ctx, c, call{
		op:     "create_documents",
		method: http.MethodPost,
		path:   "/document",
		body:   createDocumentsBody{Documents: docs},
	})
}
