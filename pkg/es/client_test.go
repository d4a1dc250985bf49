package es

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mindcare-go/internal/config"
	"mindcare-go/internal/model"
	"mindcare-go/pkg/events"
)

const testIndex = "records-test"

// fakeCluster answers the handful of endpoints the indexer calls.
type fakeCluster struct {
	mu           sync.Mutex
	indexExists  int // status for HEAD /{index}
	created      bool
	docs         map[string]recordDocument
	docStatus    int // forced status for document writes, 0 = normal
	searchBody   map[string]interface{}
	searchResult string
}

func newFakeCluster(t *testing.T, indexExists int) (*fakeCluster, *httptest.Server) {
	t.Helper()
	fc := &fakeCluster{indexExists: indexExists, docs: map[string]recordDocument{}}
	srv := httptest.NewServer(http.HandlerFunc(fc.serve))
	t.Cleanup(srv.Close)
	return fc, srv
}

func (fc *fakeCluster) serve(w http.ResponseWriter, r *http.Request) {
	fc.mu.Lock()
	defer fc.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	body, _ := io.ReadAll(r.Body)

	path := strings.TrimPrefix(r.URL.Path, "/")
	switch {
	case path == testIndex && r.Method == http.MethodHead:
		w.WriteHeader(fc.indexExists)
	case path == testIndex && r.Method == http.MethodPut:
		fc.created = true
		_, _ = io.WriteString(w, `{"acknowledged":true,"index":"`+testIndex+`"}`)
	case strings.HasPrefix(path, testIndex+"/_doc/"):
		id := strings.TrimPrefix(path, testIndex+"/_doc/")
		if fc.docStatus != 0 {
			w.WriteHeader(fc.docStatus)
			_, _ = io.WriteString(w, `{"error":"forced"}`)
			return
		}
		switch r.Method {
		case http.MethodPut, http.MethodPost:
			var doc recordDocument
			_ = json.Unmarshal(body, &doc)
			fc.docs[id] = doc
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, `{"result":"created"}`)
		case http.MethodDelete:
			if _, ok := fc.docs[id]; !ok {
				w.WriteHeader(http.StatusNotFound)
				_, _ = io.WriteString(w, `{"result":"not_found"}`)
				return
			}
			delete(fc.docs, id)
			_, _ = io.WriteString(w, `{"result":"deleted"}`)
		}
	case path == testIndex+"/_search":
		_ = json.Unmarshal(body, &fc.searchBody)
		_, _ = io.WriteString(w, fc.searchResult)
	default:
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"unexpected request `+r.Method+` `+r.URL.Path+`"}`)
	}
}

func (fc *fakeCluster) doc(id string) (recordDocument, bool) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	d, ok := fc.docs[id]
	return d, ok
}

func (fc *fakeCluster) docCount() int {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return len(fc.docs)
}

func (fc *fakeCluster) wasCreated() bool {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.created
}

func (fc *fakeCluster) setDocStatus(status int) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.docStatus = status
}

func (fc *fakeCluster) setSearchResult(result string) {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	fc.searchResult = result
}

func (fc *fakeCluster) lastSearch() map[string]interface{} {
	fc.mu.Lock()
	defer fc.mu.Unlock()
	return fc.searchBody
}

func newTestIndexer(t *testing.T, srv *httptest.Server) *Indexer {
	t.Helper()
	idx, err := NewIndexer(config.ElasticsearchConfig{Addresses: srv.URL, IndexName: testIndex})
	require.NoError(t, err)
	return idx
}

func TestNewIndexerCreatesMissingIndex(t *testing.T) {
	fc, srv := newFakeCluster(t, http.StatusNotFound)
	newTestIndexer(t, srv)
	assert.True(t, fc.wasCreated())
}

func TestNewIndexerKeepsExistingIndex(t *testing.T) {
	fc, srv := newFakeCluster(t, http.StatusOK)
	newTestIndexer(t, srv)
	assert.False(t, fc.wasCreated())
}

func TestNewIndexerFailsOnUnexpectedStatus(t *testing.T) {
	_, srv := newFakeCluster(t, http.StatusInternalServerError)
	_, err := NewIndexer(config.ElasticsearchConfig{Addresses: srv.URL, IndexName: testIndex})
	assert.Error(t, err)
}

func TestHandleIndexesAndDeletes(t *testing.T) {
	fc, srv := newFakeCluster(t, http.StatusOK)
	idx := newTestIndexer(t, srv)
	ctx := context.Background()
	ts := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	created := events.RecordEvent{
		EventID:      "e1",
		Type:         events.RecordCreated,
		RecordID:     "42",
		UserID:       "alice",
		AnxietyLevel: model.HighAnxiety,
		Topics:       []string{"Sleep"},
		Timestamp:    ts,
	}
	require.NoError(t, idx.Handle(ctx, created))

	doc, ok := fc.doc("42")
	require.True(t, ok)
	assert.Equal(t, "alice", doc.UserID)
	assert.Equal(t, model.HighAnxiety, doc.AnxietyLevel)
	assert.Equal(t, []string{"Sleep"}, doc.Topics)
	assert.True(t, doc.Timestamp.Equal(ts))

	deleted := events.RecordEvent{EventID: "e2", Type: events.RecordDeleted, RecordID: "42", UserID: "alice"}
	require.NoError(t, idx.Handle(ctx, deleted))
	assert.Zero(t, fc.docCount())

	// the document is already gone; a second delete is not an error
	require.NoError(t, idx.Handle(ctx, deleted))
}

func TestHandleIgnoresUnknownType(t *testing.T) {
	fc, srv := newFakeCluster(t, http.StatusOK)
	idx := newTestIndexer(t, srv)

	require.NoError(t, idx.Handle(context.Background(), events.RecordEvent{EventID: "e", Type: "record.archived", RecordID: "1"}))
	assert.Zero(t, fc.docCount())
}

func TestHandleSurfacesServerErrors(t *testing.T) {
	fc, srv := newFakeCluster(t, http.StatusOK)
	idx := newTestIndexer(t, srv)
	fc.setDocStatus(http.StatusInternalServerError)
	ctx := context.Background()

	assert.Error(t, idx.Handle(ctx, events.RecordEvent{Type: events.RecordCreated, RecordID: "1", UserID: "u"}))
	assert.Error(t, idx.Handle(ctx, events.RecordEvent{Type: events.RecordDeleted, RecordID: "1", UserID: "u"}))
}

func TestTrendDecodesTierBuckets(t *testing.T) {
	fc, srv := newFakeCluster(t, http.StatusOK)
	idx := newTestIndexer(t, srv)
	fc.setSearchResult(`{
		"hits": {"total": {"value": 6}, "hits": []},
		"aggregations": {"tiers": {"buckets": [
			{"key": "High Anxiety", "doc_count": 3},
			{"key": "Low Anxiety", "doc_count": 2},
			{"key": "Moderate Anxiety", "doc_count": 1}
		]}}
	}`)

	since := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	got, err := idx.Trend(context.Background(), "alice", since)
	require.NoError(t, err)
	assert.Equal(t, model.Insights{Low: 2, Moderate: 1, High: 3}, got)

	raw, err := json.Marshal(fc.lastSearch())
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"user_id":"alice"`)
	assert.Contains(t, string(raw), `"gte":"2024-04-01T00:00:00Z"`)
	assert.Contains(t, string(raw), `"field":"anxiety_level"`)
}

func TestTrendWithoutBuckets(t *testing.T) {
	fc, srv := newFakeCluster(t, http.StatusOK)
	idx := newTestIndexer(t, srv)
	fc.setSearchResult(`{"hits": {"hits": []}, "aggregations": {"tiers": {"buckets": []}}}`)

	got, err := idx.Trend(context.Background(), "nobody", time.Now())
	require.NoError(t, err)
	assert.Equal(t, model.Insights{}, got)
}
