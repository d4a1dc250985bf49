// Package es indexes chat record events in Elasticsearch for trend reporting.
package es

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"mindcare-go/internal/config"
	"mindcare-go/internal/model"
	"mindcare-go/pkg/events"
	"mindcare-go/pkg/log"
)

const indexMapping = `{
	"mappings": {
		"properties": {
			"record_id":     { "type": "keyword" },
			"user_id":       { "type": "keyword" },
			"anxiety_level": { "type": "keyword" },
			"topics":        { "type": "keyword" },
			"timestamp":     { "type": "date" }
		}
	}
}`

// Indexer keeps one document per chat record, without message text.
type Indexer struct {
	client    *elasticsearch.Client
	indexName string
}

// recordDocument is the indexed form of a chat record.
type recordDocument struct {
	RecordID     string    `json:"record_id"`
	UserID       string    `json:"user_id"`
	AnxietyLevel string    `json:"anxiety_level"`
	Topics       []string  `json:"topics,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewIndexer connects to Elasticsearch and creates the index if it is missing.
func NewIndexer(cfg config.ElasticsearchConfig) (*Indexer, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: strings.Split(cfg.Addresses, ","),
		Username:  cfg.Username,
		Password:  cfg.Password,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		},
	})
	if err != nil {
		return nil, err
	}
	idx := &Indexer{client: client, indexName: cfg.IndexName}
	if err := idx.createIndexIfNotExists(); err != nil {
		return nil, err
	}
	return idx, nil
}

func (i *Indexer) createIndexIfNotExists() error {
	res, err := i.client.Indices.Exists([]string{i.indexName})
	if err != nil {
		return fmt.Errorf("check index %q: %w", i.indexName, err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		log.Infof("index '%s' already exists", i.indexName)
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("unexpected status %d checking index %q", res.StatusCode, i.indexName)
	}

	res, err = i.client.Indices.Create(
		i.indexName,
		i.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
	)
	if err != nil {
		return fmt.Errorf("create index %q: %w", i.indexName, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index %q: %s", i.indexName, res.String())
	}
	log.Infof("index '%s' created", i.indexName)
	return nil
}

// Handle applies a record event to the index. It implements kafka.RecordEventHandler.
func (i *Indexer) Handle(ctx context.Context, event events.RecordEvent) error {
	switch event.Type {
	case events.RecordCreated:
		return i.index(ctx, event)
	case events.RecordDeleted:
		return i.delete(ctx, event.RecordID)
	default:
		log.Warnf("ignoring record event %s with unknown type %q", event.EventID, event.Type)
		return nil
	}
}

func (i *Indexer) index(ctx context.Context, event events.RecordEvent) error {
	doc, err := json.Marshal(recordDocument{
		RecordID:     event.RecordID,
		UserID:       event.UserID,
		AnxietyLevel: event.AnxietyLevel,
		Topics:       event.Topics,
		Timestamp:    event.Timestamp,
	})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{
		Index:      i.indexName,
		DocumentID: event.RecordID,
		Body:       bytes.NewReader(doc),
	}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("index record %s: %s", event.RecordID, res.String())
	}
	return nil
}

func (i *Indexer) delete(ctx context.Context, recordID string) error {
	req := esapi.DeleteRequest{Index: i.indexName, DocumentID: recordID}
	res, err := req.Do(ctx, i.client)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	// deleting a document that was never indexed is fine
	if res.IsError() && res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("delete record %s: %s", recordID, res.String())
	}
	return nil
}

// Trend returns tier counts for userID over records timestamped at or after since.
func (i *Indexer) Trend(ctx context.Context, userID string, since time.Time) (model.Insights, error) {
	var insights model.Insights
	query := map[string]interface{}{
		"size": 0,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"filter": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"user_id": userID}},
					map[string]interface{}{"range": map[string]interface{}{
						"timestamp": map[string]interface{}{"gte": since.UTC().Format(time.RFC3339)},
					}},
				},
			},
		},
		"aggs": map[string]interface{}{
			"tiers": map[string]interface{}{
				"terms": map[string]interface{}{"field": "anxiety_level", "size": 10},
			},
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return insights, err
	}

	res, err := i.client.Search(
		i.client.Search.WithContext(ctx),
		i.client.Search.WithIndex(i.indexName),
		i.client.Search.WithBody(&buf),
	)
	if err != nil {
		return insights, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return insights, errors.New("trend search failed: " + res.String())
	}

	var body struct {
		Aggregations struct {
			Tiers struct {
				Buckets []struct {
					Key      string `json:"key"`
					DocCount int    `json:"doc_count"`
				} `json:"buckets"`
			} `json:"tiers"`
		} `json:"aggregations"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return insights, fmt.Errorf("decode trend response: %w", err)
	}
	for _, b := range body.Aggregations.Tiers.Buckets {
		for n := 0; n < b.DocCount; n++ {
			insights.Add(b.Key)
		}
	}
	return insights, nil
}
