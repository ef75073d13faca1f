// Package document is the in-memory document repository behind the stub server.
package document

import (
	"context"
	"errors"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode"
)

// ErrDocumentNotFound is returned for unknown ids.
var ErrDocumentNotFound = errors.New("document not found")

// Record is a stored document.
type Record struct {
	ID          int64
	URL         *string
	Description *string
	Metadata    map[string]any
	CreatedAt   time.Time
}

// Hit is a record scored against a query.
type Hit struct {
	Record
	Score float64
}

// Repo stores documents in memory. Safe for concurrent use.
type Repo struct {
	mu     sync.RWMutex
	nextID int64
	docs   map[int64]Record
	now    func() time.Time
}

// New creates an empty repository. Ids start at 1.
func New() *Repo {
	return &Repo{
		nextID: 1,
		docs:   make(map[int64]Record),
		now:    time.Now,
	}
}

// Insert stores a new document and assigns its id.
func (r *Repo) Insert(_ context.Context, url, description *string, metadata map[string]any) Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec := Record{
		ID:          r.nextID,
		URL:         url,
		Description: description,
		Metadata:    metadata,
		CreatedAt:   r.now().UTC(),
	}
	r.docs[rec.ID] = rec
	r.nextID++
	return rec
}

// List returns up to limit documents ordered by id, skipping offset.
func (r *Repo) List(_ context.Context, limit, offset int) []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	all := r.sortedLocked()
	if offset >= len(all) {
		return []Record{}
	}
	end := min(offset+limit, len(all))
	return all[offset:end]
}

// Get returns a document by id.
func (r *Repo) Get(_ context.Context, id int64) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.docs[id]
	if !ok {
		return Record{}, ErrDocumentNotFound
	}
	return rec, nil
}

// Delete removes a document and returns it.
func (r *Repo) Delete(_ context.Context, id int64) (Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.docs[id]
	if !ok {
		return Record{}, ErrDocumentNotFound
	}
	delete(r.docs, id)
	return rec, nil
}

// Count returns the number of stored documents.
func (r *Repo) Count(_ context.Context) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.docs)
}

// Rank scores every document except exclude against query by token overlap
// (Jaccard) and returns at most topK hits with score >= threshold, best first.
// Pass exclude < 0 to keep every document.
func (r *Repo) Rank(_ context.Context, query string, exclude int64, threshold float64, topK int) []Hit {
	q := tokens(query)

	r.mu.RLock()
	hits := make([]Hit, 0, len(r.docs))
	for _, rec := range r.docs {
		if rec.ID == exclude {
			continue
		}
		score := jaccard(q, tokens(Text(rec.URL, rec.Description)))
		if score < threshold {
			continue
		}
		hits = append(hits, Hit{Record: rec, Score: score})
	}
	r.mu.RUnlock()

	slices.SortFunc(hits, func(a, b Hit) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return int(a.ID - b.ID)
		}
	})
	if topK >= 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}

// Text joins the searchable fields of a document or query.
func Text(url, description *string) string {
	var parts []string
	if url != nil {
		parts = append(parts, *url)
	}
	if description != nil {
		parts = append(parts, *description)
	}
	return strings.Join(parts, " ")
}

func (r *Repo) sortedLocked() []Record {
	out := make([]Record, 0, len(r.docs))
	for _, rec := range r.docs {
		out = append(out, rec)
	}
	slices.SortFunc(out, func(a, b Record) int { return int(a.ID - b.ID) })
	return out
}

func tokens(s string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(s), func(c rune) bool {
		return !unicode.IsLetter(c) && !unicode.IsNumber(c)
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}
