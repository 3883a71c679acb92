// internal/audit/indexer.go
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"lender-match-engine/internal/common/logger"
	"lender-match-engine/internal/common/metrics"
	"lender-match-engine/internal/match"
)

// Config controls the audit sink.
type Config struct {
	IndexPrefix string
	Timeout     time.Duration
}

func DefaultConfig() *Config {
	return &Config{
		IndexPrefix: "decision-records",
		Timeout:     5 * time.Second,
	}
}

// Indexer writes immutable decision records to dated Elasticsearch indices.
// One index per calendar day keeps retention policies simple and makes the
// audit trail append-only: records are written once, by ID, and never
// updated.
type Indexer struct {
	client *elasticsearch.Client
	config *Config
	logger logger.Logger
}

func NewIndexer(client *elasticsearch.Client, config *Config, log logger.Logger) *Indexer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Indexer{
		client: client,
		config: config,
		logger: log.WithFields(map[string]interface{}{"component": "audit"}),
	}
}

// indexName is derived from the record's build time, not the wall clock, so
// re-indexing an old record lands it in the day it was produced.
func (ix *Indexer) indexName(builtAt time.Time) string {
	return fmt.Sprintf("%s-%s", ix.config.IndexPrefix, builtAt.UTC().Format("2006.01.02"))
}

// IndexRecord writes one decision record. Callers treat a returned error as
// a degraded audit trail, not a failed match run.
func (ix *Indexer) IndexRecord(ctx context.Context, record *match.DecisionRecord) error {
	body, err := json.Marshal(record)
	if err != nil {
		metrics.DecisionRecordsIndexed.WithLabelValues("error").Inc()
		return fmt.Errorf("marshal decision record %s: %w", record.ID, err)
	}

	ctx, cancel := context.WithTimeout(ctx, ix.config.Timeout)
	defer cancel()

	req := esapi.IndexRequest{
		Index:      ix.indexName(record.BuiltAt),
		DocumentID: record.ID,
		Body:       bytes.NewReader(body),
	}

	res, err := req.Do(ctx, ix.client)
	if err != nil {
		metrics.DecisionRecordsIndexed.WithLabelValues("error").Inc()
		return fmt.Errorf("audit index write failed for record %s: %w", record.ID, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		metrics.DecisionRecordsIndexed.WithLabelValues("error").Inc()
		return fmt.Errorf("audit index write failed for record %s: %s", record.ID, res.String())
	}

	metrics.DecisionRecordsIndexed.WithLabelValues("success").Inc()
	ix.logger.Info("decision record indexed", map[string]interface{}{
		"recordId": record.ID,
		"index":    ix.indexName(record.BuiltAt),
	})
	return nil
}
