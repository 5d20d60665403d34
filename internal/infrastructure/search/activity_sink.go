// Package search indexes audit entries in Elasticsearch.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/oksasatya/aquatech-dashboard/internal/domain/entity"
	"github.com/oksasatya/aquatech-dashboard/internal/domain/repository"
)

// ActivitySink appends one document per activity entry to Index.
type ActivitySink struct {
	ES    *elasticsearch.Client
	Index string
}

func NewActivitySink(es *elasticsearch.Client, index string) *ActivitySink {
	return &ActivitySink{ES: es, Index: index}
}

func (s *ActivitySink) Append(ctx context.Context, e entity.ActivityLogEntry) error {
	if s == nil || s.ES == nil || s.Index == "" {
		return nil
	}
	doc := map[string]any{
		"user_id":       e.UserID,
		"activity_type": string(e.ActivityType),
		"timestamp":     e.Timestamp.UTC().Format(time.RFC3339Nano),
	}
	if len(e.Details) > 0 {
		doc["details"] = e.Details
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: s.Index, Body: bytes.NewReader(b), Refresh: "false"}
	res, err := req.Do(ctx, s.ES)
	if err != nil {
		return fmt.Errorf("es index: %w", err)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return fmt.Errorf("es index: %s", res.Status())
	}
	return nil
}

var _ repository.ActivityRepository = (*ActivitySink)(nil)
