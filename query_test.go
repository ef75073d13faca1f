package docindex

import "testing"

func TestCompactParams_DropsUnsetKeepsOrder(t *testing.T) {
	limit := 5
	params := compactParams(
		optional[int]("offset", nil),
		optional("limit", &limit),
		queryParam{key: "q", value: "go"},
		queryParam{key: "skip"},
	)
	if len(params) != 2 {
		t.Fatalf("len = %d, want 2: %+v", len(params), params)
	}
	if params[0].key != "limit" || params[1].key != "q" {
		t.Errorf("order = [%s %s], want [limit q]", params[0].key, params[1].key)
	}
}

func TestEncodeQuery(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		params []queryParam
		want   string
	}{
		{
			name: "empty",
			want: "",
		},
		{
			name:   "ints in order",
			params: []queryParam{{"offset", 1}, {"limit", 20}},
			want:   "offset=1&limit=20",
		},
		{
			name:   "negative and bool values are passed through",
			params: []queryParam{{"limit", -1}, {"offset", false}},
			want:   "limit=-1&offset=false",
		},
		{
			name:   "appends to existing query",
			raw:    "tenant=a",
			params: []queryParam{{"limit", 2}},
			want:   "tenant=a&limit=2",
		},
		{
			name:   "strings are escaped",
			params: []queryParam{{"q", "a b&c"}},
			want:   "q=a+b%26c",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encodeQuery(tt.raw, tt.params)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("encodeQuery = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestListDocumentsParams_QueryParams(t *testing.T) {
	var nilParams *ListDocumentsParams
	if got := nilParams.queryParams(); len(got) != 0 {
		t.Errorf("nil params: got %+v", got)
	}

	p := &ListDocumentsParams{Offset: Ptr(3)}
	got := p.queryParams()
	if len(got) != 1 || got[0].key != "offset" || got[0].value != 3 {
		t.Errorf("offset only: got %+v", got)
	}
}
