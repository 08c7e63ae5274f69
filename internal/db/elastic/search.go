package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kailas-cloud/pinsearch/internal/db"
)

type mgetResponse struct {
	Docs []struct {
		ID     string          `json:"_id"`
		Found  bool            `json:"found"`
		Source json.RawMessage `json:"_source"`
	} `json:"docs"`
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int `json:"value"`
		} `json:"total"`
		Hits []struct {
			ID     string          `json:"_id"`
			Score  *float64        `json:"_score"`
			Source json.RawMessage `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// FetchByIDs looks ids up with a single _mget call. Missing ids are skipped.
func (s *Store) FetchByIDs(ctx context.Context, index string, ids []string) (map[string]db.Hit, error) {
	if len(ids) == 0 {
		return map[string]db.Hit{}, nil
	}

	body, err := json.Marshal(map[string]any{"ids": ids})
	if err != nil {
		return nil, fmt.Errorf("marshal mget: %w", err)
	}
	respBody, err := s.do(ctx, db.OpMGet, http.MethodPost,
		"/"+url.PathEscape(index)+"/_mget", "application/json", body)
	if err != nil {
		return nil, fmt.Errorf("fetch by ids: %w", err)
	}

	var resp mgetResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, &db.Error{Op: db.OpMGet, Err: fmt.Errorf("decoding response: %w", err)}
	}

	out := make(map[string]db.Hit, len(resp.Docs))
	for _, d := range resp.Docs {
		if !d.Found {
			continue
		}
		src, err := decodeSource(d.Source)
		if err != nil {
			return nil, &db.Error{Op: db.OpMGet, Err: fmt.Errorf("decoding _source of %s: %w", d.ID, err)}
		}
		out[d.ID] = db.Hit{ID: d.ID, Source: src}
	}
	return out, nil
}

// SearchRanked runs a multi_match query that excludes q.ExcludeIDs, paged by from/size.
func (s *Store) SearchRanked(ctx context.Context, q *db.RankedQuery) (*db.SearchResult, error) {
	if q.Limit <= 0 {
		return &db.SearchResult{}, nil
	}

	body, err := json.Marshal(buildRankedQuery(q))
	if err != nil {
		return nil, fmt.Errorf("marshal search: %w", err)
	}
	respBody, err := s.do(ctx, db.OpQuery, http.MethodPost,
		"/"+url.PathEscape(q.Index)+"/_search", "application/json", body)
	if err != nil {
		return nil, fmt.Errorf("search ranked: %w", err)
	}

	var resp searchResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("decoding response: %w", err)}
	}

	result := &db.SearchResult{
		Total: resp.Hits.Total.Value,
		Hits:  make([]db.Hit, 0, len(resp.Hits.Hits)),
	}
	for _, h := range resp.Hits.Hits {
		src, err := decodeSource(h.Source)
		if err != nil {
			return nil, &db.Error{Op: db.OpQuery, Err: fmt.Errorf("decoding _source of %s: %w", h.ID, err)}
		}
		hit := db.Hit{ID: h.ID, Source: src}
		if h.Score != nil {
			hit.Score = *h.Score
		}
		result.Hits = append(result.Hits, hit)
	}
	return result, nil
}

// buildRankedQuery produces the _search request body.
func buildRankedQuery(q *db.RankedQuery) map[string]any {
	match := map[string]any{"query": q.Term}
	if len(q.Fields) > 0 {
		fields := make([]string, len(q.Fields))
		for i, f := range q.Fields {
			fields[i] = f.String()
		}
		match["fields"] = fields
	}

	boolQuery := map[string]any{
		"must": []any{map[string]any{"multi_match": match}},
	}
	if len(q.ExcludeIDs) > 0 {
		boolQuery["must_not"] = []any{
			map[string]any{"ids": map[string]any{"values": q.ExcludeIDs}},
		}
	}

	return map[string]any{
		"from":  max(0, q.Offset),
		"size":  q.Limit,
		"query": map[string]any{"bool": boolQuery},
	}
}

// decodeSource keeps numbers as json.Number so large integers survive the round trip.
func decodeSource(raw json.RawMessage) (map[string]any, error) {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return map[string]any{}, nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var src map[string]any
	if err := dec.Decode(&src); err != nil {
		return nil, err
	}
	return src, nil
}
