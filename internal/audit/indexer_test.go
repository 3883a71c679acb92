// internal/audit/indexer_test.go
package audit

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lender-match-engine/internal/common/logger"
	"lender-match-engine/internal/match"
)

// ==========================
// Test Helper Functions
// ==========================

func createTestConfig() *Config {
	return &Config{
		IndexPrefix: "decision-records",
		Timeout:     5 * time.Second,
	}
}

// fakeElasticsearch stands in for a cluster; the v8 client checks the
// product header on every response.
func fakeElasticsearch(t *testing.T, handler http.HandlerFunc) *elasticsearch.Client {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{srv.URL},
	})
	require.NoError(t, err)
	return client
}

func testRecord() *match.DecisionRecord {
	return &match.DecisionRecord{
		ID:            "rec-0001",
		RoutingState:  match.RoutingTertiary,
		EngineVersion: match.EngineVersion,
		BuiltAt:       time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

// ==========================
// Index Naming
// ==========================

func TestIndexer_IndexName(t *testing.T) {
	ix := NewIndexer(nil, createTestConfig(), logger.NewTestLogger(t))

	tests := []struct {
		builtAt  time.Time
		expected string
	}{
		{time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), "decision-records-2026.03.01"},
		{time.Date(2025, 12, 31, 23, 59, 0, 0, time.UTC), "decision-records-2025.12.31"},
		// Non-UTC build times normalize to the UTC day.
		{time.Date(2026, 3, 1, 22, 0, 0, 0, time.FixedZone("PST", -8*3600)), "decision-records-2026.03.02"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ix.indexName(tt.builtAt))
	}
}

// ==========================
// Write Path
// ==========================

func TestIndexer_IndexRecord_Success(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}

	client := fakeElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		raw, _ := io.ReadAll(r.Body)
		json.Unmarshal(raw, &gotBody)

		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"result": "created"}`))
	})

	ix := NewIndexer(client, createTestConfig(), logger.NewTestLogger(t))
	err := ix.IndexRecord(context.Background(), testRecord())

	require.NoError(t, err)
	assert.Equal(t, "/decision-records-2026.03.01/_doc/rec-0001", gotPath)
	assert.Equal(t, string(match.RoutingTertiary), gotBody["routingState"])
	assert.Equal(t, match.EngineVersion, gotBody["engineVersion"])
}

func TestIndexer_IndexRecord_ServerError(t *testing.T) {
	client := fakeElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error": {"reason": "cluster unavailable"}}`))
	})

	ix := NewIndexer(client, createTestConfig(), logger.NewTestLogger(t))
	err := ix.IndexRecord(context.Background(), testRecord())

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "audit index write failed")
	assert.Contains(t, err.Error(), "rec-0001")
}

func TestIndexer_IndexRecord_Timeout(t *testing.T) {
	client := fakeElasticsearch(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		w.Write([]byte(`{"result": "created"}`))
	})

	config := createTestConfig()
	config.Timeout = 20 * time.Millisecond

	ix := NewIndexer(client, config, logger.NewTestLogger(t))
	err := ix.IndexRecord(context.Background(), testRecord())

	assert.Error(t, err)
}
