package docindex

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	zapobserver "go.uber.org/zap/zaptest/observer"
)

// captured is what the fake server saw for one request.
type captured struct {
	method string
	path   string
	query  string
	header http.Header
	body   []byte
}

// newFakeServer records the request and answers with status and body.
func newFakeServer(t *testing.T, status int, body string) (*httptest.Server, func() captured) {
	t.Helper()
	var (
		mu  sync.Mutex
		got captured
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		got = captured{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.RawQuery,
			header: r.Header.Clone(),
			body:   b,
		}
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, func() captured {
		mu.Lock()
		defer mu.Unlock()
		return got
	}
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	c, err := New(Config{APIKey: "test-key", BaseURL: baseURL}, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestNew_MissingAPIKey(t *testing.T) {
	_, err := New(Config{BaseURL: "http://localhost"})
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("err = %v, want ErrMissingAPIKey", err)
	}
}

func TestNew_MissingBaseURL(t *testing.T) {
	_, err := New(Config{APIKey: "key"})
	if !errors.Is(err, ErrMissingBaseURL) {
		t.Fatalf("err = %v, want ErrMissingBaseURL", err)
	}
}

func TestMustNew_Panics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	MustNew(Config{})
}

func TestClientOptions(t *testing.T) {
	o := &clientOptions{}
	hc := &http.Client{}
	reg := prometheus.NewRegistry()
	l := zap.NewExample()

	WithHTTPClient(hc).apply(o)
	WithUserAgent("custom/1.0").apply(o)
	WithLogger(l).apply(o)
	WithPrometheus(reg).apply(o)

	if o.httpClient != hc {
		t.Error("http client not set")
	}
	if o.userAgent != "custom/1.0" {
		t.Errorf("userAgent = %q", o.userAgent)
	}
	if o.logger != l {
		t.Error("logger not set")
	}
	if o.metricsReg != reg {
		t.Error("registerer not set")
	}
}

func TestRequest_GETHeadersAndNoBody(t *testing.T) {
	srv, last := newFakeServer(t, http.StatusOK, `{"documents":[],"limit":20,"offset":0,"count":0}`)
	c := newTestClient(t, srv.URL, WithUserAgent("docindex-test"))

	resp := c.ListDocuments(context.Background(), nil)
	if !resp.OK || resp.Status != http.StatusOK {
		t.Fatalf("resp = %+v", resp)
	}

	if last().method != http.MethodGet || last().path != "/document" {
		t.Errorf("request = %s %s", last().method, last().path)
	}
	if last().query != "" {
		t.Errorf("query = %q, want empty", last().query)
	}
	if last().header.Get("x-api-key") != "test-key" {
		t.Errorf("x-api-key = %q", last().header.Get("x-api-key"))
	}
	if last().header.Get("Accept") != "application/json" {
		t.Errorf("Accept = %q", last().header.Get("Accept"))
	}
	if last().header.Get("Content-Type") != "" {
		t.Errorf("Content-Type = %q, want none for GET", last().header.Get("Content-Type"))
	}
	if last().header.Get("User-Agent") != "docindex-test" {
		t.Errorf("User-Agent = %q", last().header.Get("User-Agent"))
	}
	if len(last().body) != 0 {
		t.Errorf("body = %q, want empty", last().body)
	}
}

func TestRequest_QueryOmitsUnsetParams(t *testing.T) {
	srv, last := newFakeServer(t, http.StatusOK, `{"documents":[],"limit":1,"offset":0,"count":0}`)
	c := newTestClient(t, srv.URL)

	c.ListDocuments(context.Background(), &ListDocumentsParams{Limit: Ptr(1)})
	if last().query != "limit=1" {
		t.Errorf("query = %q, want limit=1", last().query)
	}

	c.ListDocuments(context.Background(), &ListDocumentsParams{Limit: Ptr(-1), Offset: Ptr(-1)})
	if last().query != "limit=-1&offset=-1" {
		t.Errorf("query = %q, want limit=-1&offset=-1", last().query)
	}
}

func TestRequest_POSTBody(t *testing.T) {
	srv, last := newFakeServer(t, http.StatusOK, `[{"success":true,"url":"https://a"}]`)
	c := newTestClient(t, srv.URL)

	resp := c.CreateDocuments(context.Background(), []CreateDocumentInput{
		{URL: Ptr("https://a"), Metadata: map[string]any{"lang": "go"}},
	})
	if !resp.OK || len(resp.Data) != 1 || !resp.Data[0].Success {
		t.Fatalf("resp = %+v", resp)
	}

	if last().method != http.MethodPost || last().path != "/document" {
		t.Errorf("request = %s %s", last().method, last().path)
	}
	if last().header.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", last().header.Get("Content-Type"))
	}
	var body map[string][]map[string]any
	if err := json.Unmarshal(last().body, &body); err != nil {
		t.Fatalf("decode body %q: %v", last().body, err)
	}
	docs := body["documents"]
	if len(docs) != 1 || docs[0]["url"] != "https://a" {
		t.Errorf("documents = %v", docs)
	}
	if _, ok := docs[0]["description"]; ok {
		t.Error("unset description was serialized")
	}
}

func TestRequest_SearchBodyIsParamsObject(t *testing.T) {
	srv, last := newFakeServer(t, http.StatusOK, `{"hits":[],"count":0}`)
	c := newTestClient(t, srv.URL)

	c.SearchDocuments(context.Background(), SearchParams{Description: Ptr("go"), TopK: Ptr(3), Threshold: Ptr(0.5)})

	if last().path != "/search" {
		t.Errorf("path = %q", last().path)
	}
	want := `{"description":"go","threshold":0.5,"topK":3}`
	if string(last().body) != want {
		t.Errorf("body = %s, want %s", last().body, want)
	}
}

func TestRequest_RecommendationsPathAndBody(t *testing.T) {
	srv, last := newFakeServer(t, http.StatusOK, `{"hits":[],"count":0}`)
	c := newTestClient(t, srv.URL)

	c.GetRecommendations(context.Background(), 42, &RecommendationParams{TopK: Ptr(2)})
	if last().path != "/document/42/recommend" || last().method != http.MethodPost {
		t.Errorf("request = %s %s", last().method, last().path)
	}
	if string(last().body) != `{"topK":2}` {
		t.Errorf("body = %s", last().body)
	}

	c.GetRecommendations(context.Background(), 42, nil)
	if len(last().body) != 0 {
		t.Errorf("nil params: body = %s, want none", last().body)
	}
	if last().header.Get("Content-Type") != "" {
		t.Errorf("nil params: Content-Type = %q, want none", last().header.Get("Content-Type"))
	}
}

func TestRequest_DeletePath(t *testing.T) {
	srv, last := newFakeServer(t, http.StatusOK, `{"document":{"id":7}}`)
	c := newTestClient(t, srv.URL)

	resp := c.DeleteDocumentByID(context.Background(), 7)
	if last().method != http.MethodDelete || last().path != "/document/7" {
		t.Errorf("request = %s %s", last().method, last().path)
	}
	if !resp.OK || resp.Data.Document.ID != 7 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestRequest_ServerError(t *testing.T) {
	srv, _ := newFakeServer(t, http.StatusNotFound, `{"error":"Document Not Found"}`)
	c := newTestClient(t, srv.URL)

	resp := c.GetDocumentByID(context.Background(), 1)
	if resp.OK || resp.Status != http.StatusNotFound {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Err.Message != "Document Not Found" {
		t.Errorf("error = %q", resp.Err.Message)
	}
}

func TestRequest_ServerMessageField(t *testing.T) {
	srv, _ := newFakeServer(t, http.StatusInternalServerError, `{"message":"Internal server error"}`)
	c := newTestClient(t, srv.URL)

	resp := c.GetDocumentByID(context.Background(), 1)
	if resp.OK || resp.Status != http.StatusInternalServerError || resp.Err.Message != "Internal server error" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestRequest_ValidationErrorKeepsStatus(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantValid bool
	}{
		{
			name:      "numeric literals",
			body:      `{"error":{"name":"ZodError","issues":[{"code":"invalid_literal","expected":5,"received":7,"path":["topK"],"message":"Invalid literal value"}]}}`,
			wantValid: true,
		},
		{
			name: "unrecognized object",
			body: `{"error":{"issues":"not a list"}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newFakeServer(t, http.StatusBadRequest, tt.body)
			c := newTestClient(t, srv.URL)

			resp := c.SearchDocuments(context.Background(), SearchParams{Description: Ptr("x")})
			if resp.OK || resp.Status != http.StatusBadRequest {
				t.Fatalf("resp = %+v, want status 400", resp)
			}
			if resp.Err.IsValidation() != tt.wantValid {
				t.Fatalf("IsValidation = %v, want %v (err %q)", resp.Err.IsValidation(), tt.wantValid, resp.Err.Error())
			}
			if tt.wantValid && resp.Err.Validation.Issues[0].Expected != "5" {
				t.Errorf("expected = %q, want 5", resp.Err.Validation.Issues[0].Expected)
			}
			if !tt.wantValid && resp.Err.Message != `{"issues":"not a list"}` {
				t.Errorf("message = %q", resp.Err.Message)
			}
		})
	}
}

func TestRequest_UnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := newTestClient(t, url)
	resp := c.ListDocuments(context.Background(), nil)
	if resp.OK || resp.Status != 0 {
		t.Fatalf("resp = %+v", resp)
	}
	if resp.Err == nil || resp.Err.Message == "" {
		t.Error("expected a client error message")
	}
}

func TestRequest_MalformedBaseURL(t *testing.T) {
	c := newTestClient(t, "http://[::1")
	resp := c.ListDocuments(context.Background(), nil)
	if resp.OK || resp.Status != 0 || resp.Err == nil {
		t.Errorf("resp = %+v", resp)
	}
}

func TestRequest_InvalidJSONIsClientError(t *testing.T) {
	srv, _ := newFakeServer(t, http.StatusOK, `not json`)
	c := newTestClient(t, srv.URL)

	resp := c.ListDocuments(context.Background(), nil)
	if resp.OK || resp.Status != 0 {
		t.Fatalf("resp = %+v", resp)
	}
	if !strings.Contains(resp.Err.Message, "decode response") {
		t.Errorf("error = %q", resp.Err.Message)
	}
}

func TestRequest_CanceledContext(t *testing.T) {
	srv, _ := newFakeServer(t, http.StatusOK, `{}`)
	c := newTestClient(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resp := c.GetDocumentByID(ctx, 1)
	if resp.OK || resp.Status != 0 {
		t.Errorf("resp = %+v", resp)
	}
}

func TestObserver_Metrics(t *testing.T) {
	srv, _ := newFakeServer(t, http.StatusNotFound, `{"error":"Document Not Found"}`)
	reg := prometheus.NewRegistry()
	c := newTestClient(t, srv.URL, WithPrometheus(reg))

	c.GetDocumentByID(context.Background(), 1)
	c.GetDocumentByID(context.Background(), 2)

	got := testutil.ToFloat64(c.obs.metrics.requests.WithLabelValues("get_document", "404"))
	if got != 2 {
		t.Errorf("requests_total{get_document,404} = %f, want 2", got)
	}
	if n := testutil.CollectAndCount(c.obs.metrics.duration); n != 1 {
		t.Errorf("duration series = %d, want 1", n)
	}
}

func TestObserver_ReusesRegisteredMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	a := newTestClient(t, "http://localhost", WithPrometheus(reg))
	b := newTestClient(t, "http://localhost", WithPrometheus(reg))

	if a.obs.metrics.requests != b.obs.metrics.requests {
		t.Error("second client did not reuse the registered counter")
	}
}

func TestObserver_Logging(t *testing.T) {
	srv, _ := newFakeServer(t, http.StatusForbidden, `{"error":"Forbidden"}`)
	core, logs := zapobserver.New(zapcore.DebugLevel)
	c := newTestClient(t, srv.URL, WithLogger(zap.New(core)))

	c.ListDocuments(context.Background(), nil)

	entries := logs.FilterMessage("request failed").All()
	if len(entries) != 1 {
		t.Fatalf("warn entries = %d, want 1", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["op"] != "list_documents" || fields["status"] != int64(http.StatusForbidden) {
		t.Errorf("fields = %v", fields)
	}
	if fields["error"] != "Forbidden" {
		t.Errorf("error field = %v", fields["error"])
	}
}

func TestObserver_NilSafe(t *testing.T) {
	var o *observer
	o.observe("op", "GET", "/", time.Time{}, 200, nil)
}
