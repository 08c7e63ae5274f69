package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/kailas-cloud/pinsearch/internal/db"
)

type bulkResponse struct {
	Errors bool `json:"errors"`
	Items  []map[string]struct {
		ID     string `json:"_id"`
		Status int    `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	} `json:"items"`
}

// BulkIndex writes items with a single _bulk request (ndjson "index" actions).
// Per-item failures are reported in the result, not as an error.
func (s *Store) BulkIndex(ctx context.Context, index string, items []db.BulkItem) (*db.BulkResult, error) {
	if len(items) == 0 {
		return &db.BulkResult{}, nil
	}

	var buf bytes.Buffer
	for _, it := range items {
		action := map[string]any{"index": map[string]string{"_index": index, "_id": it.ID}}
		line, err := json.Marshal(action)
		if err != nil {
			return nil, fmt.Errorf("marshal bulk action: %w", err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
		compact := bytes.Buffer{}
		if err := json.Compact(&compact, it.Source); err != nil {
			return nil, fmt.Errorf("compact source of %s: %w", it.ID, err)
		}
		buf.Write(compact.Bytes())
		buf.WriteByte('\n')
	}

	respBody, err := s.do(ctx, db.OpBulk, http.MethodPost, "/_bulk", "application/x-ndjson", buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("bulk index: %w", err)
	}

	var resp bulkResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, &db.Error{Op: db.OpBulk, Err: fmt.Errorf("decoding response: %w", err)}
	}
	if len(resp.Items) != len(items) {
		return nil, &db.Error{Op: db.OpBulk, Err: fmt.Errorf("response has %d items, sent %d", len(resp.Items), len(items))}
	}

	result := &db.BulkResult{Items: make([]db.BulkItemResult, len(items))}
	for i, entry := range resp.Items {
		result.Items[i].ID = items[i].ID
		for _, it := range entry {
			if it.Error != nil {
				result.Items[i].Err = &db.Error{
					Op:  db.OpBulk,
					Err: errors.New(it.Error.Type + ": " + it.Error.Reason),
				}
			} else if it.Status >= 400 {
				result.Items[i].Err = &db.Error{Op: db.OpBulk, Err: &db.HTTPStatusError{StatusCode: it.Status}}
			}
		}
	}
	return result, nil
}
