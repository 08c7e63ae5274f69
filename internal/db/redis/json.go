package redis

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/pinsearch/internal/db"
)

// FetchByIDs loads documents with a single JSON.MGET. Missing keys are skipped.
func (s *Store) FetchByIDs(ctx context.Context, index string, ids []string) (map[string]db.Hit, error) {
	if len(ids) == 0 {
		return map[string]db.Hit{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(index, id)
	}

	cmd := s.b().Arbitrary("JSON.MGET").Keys(keys...).Args("$").Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		return nil, &db.Error{Op: db.OpJSONMGet, Err: err}
	}

	out := make(map[string]db.Hit, len(raw))
	for i, msg := range raw {
		if i >= len(ids) || msg.IsNil() {
			continue
		}
		str, err := msg.ToString()
		if err != nil {
			if rueidis.IsRedisNil(err) {
				continue
			}
			return nil, &db.Error{Op: db.OpJSONMGet, Err: err}
		}
		src, err := decodeDocument(str)
		if err != nil {
			return nil, &db.Error{Op: db.OpJSONMGet, Err: fmt.Errorf("decode %s: %w", ids[i], err)}
		}
		if src == nil {
			continue
		}
		out[ids[i]] = db.Hit{ID: ids[i], Source: src}
	}
	return out, nil
}

// BulkIndex stores every item with JSON.SET in one pipelined round-trip.
// The document id is injected as __id for exclusion queries.
func (s *Store) BulkIndex(ctx context.Context, index string, items []db.BulkItem) (*db.BulkResult, error) {
	result := &db.BulkResult{Items: make([]db.BulkItemResult, len(items))}
	if len(items) == 0 {
		return result, nil
	}

	cmds := make(rueidis.Commands, 0, len(items))
	slots := make([]int, 0, len(items))
	for i, it := range items {
		result.Items[i].ID = it.ID
		if strings.Contains(it.ID, idSeparator) {
			result.Items[i].Err = &db.Error{Op: db.OpJSONSet, Err: errIDSeparator}
			continue
		}
		doc, err := withID(it.Source, it.ID)
		if err != nil {
			result.Items[i].Err = &db.Error{Op: db.OpJSONSet, Err: err}
			continue
		}
		cmds = append(cmds, s.b().Arbitrary("JSON.SET").Keys(s.key(index, it.ID)).Args("$", string(doc)).Build())
		slots = append(slots, i)
	}
	if len(cmds) == 0 {
		return result, nil
	}

	for j, resp := range s.client.DoMulti(ctx, cmds...) {
		if err := resp.Error(); err != nil {
			result.Items[slots[j]].Err = &db.Error{Op: db.OpJSONSet, Err: err}
		}
	}
	return result, nil
}

var (
	errNotObject   = errors.New("document must be a JSON object")
	errIDSeparator = errors.New("document id must not contain the 0x1f control character")
)

// withID decodes source as an object and adds the __id field.
func withID(source json.RawMessage, id string) ([]byte, error) {
	dec := json.NewDecoder(bytes.NewReader(source))
	dec.UseNumber()
	var doc map[string]any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode source: %w", err)
	}
	if doc == nil {
		return nil, errNotObject
	}
	doc[idField] = id
	return json.Marshal(doc)
}

// decodeDocument parses a stored JSON document, unwrapping the single-element
// array returned for the "$" path, and strips the internal __id field.
func decodeDocument(str string) (map[string]any, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(str)))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if arr, ok := v.([]any); ok {
		if len(arr) == 0 {
			return nil, nil
		}
		v = arr[0]
	}
	doc, ok := v.(map[string]any)
	if !ok {
		return nil, errNotObject
	}
	delete(doc, idField)
	return doc, nil
}
