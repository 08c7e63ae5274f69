package redis

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/pinsearch/internal/db"
)

// SearchRanked runs a full-text FT.SEARCH excluding q.ExcludeIDs, paged by LIMIT.
// Field boosts come from the TEXT WEIGHTs set by EnsureIndex.
func (s *Store) SearchRanked(ctx context.Context, q *db.RankedQuery) (*db.SearchResult, error) {
	if q.Index == "" {
		return nil, fmt.Errorf("index name is required")
	}
	if q.Limit <= 0 {
		return &db.SearchResult{}, nil
	}

	args := []string{
		s.ftIndex(q.Index), buildRankedQuery(q),
		"WITHSCORES",
		"RETURN", "1", "$",
		"LIMIT", strconv.Itoa(max(0, q.Offset)), strconv.Itoa(q.Limit),
		"DIALECT", "2",
	}

	cmd := s.b().Arbitrary("FT.SEARCH").Args(args...).Build()
	raw, err := s.do(ctx, cmd).ToArray()
	if err != nil {
		if isRedisErr(err, "no such index") || isRedisErr(err, "unknown index name") {
			return nil, &db.Error{Op: db.OpSearch, Err: db.ErrIndexNotFound}
		}
		return nil, &db.Error{Op: db.OpSearch, Err: err}
	}

	return s.parseRankedResult(q.Index, raw)
}

// buildRankedQuery renders the query string: an optional text clause scoped to
// the searchable fields followed by a negated __id tag clause.
func buildRankedQuery(q *db.RankedQuery) string {
	var parts []string

	if term := strings.TrimSpace(q.Term); term != "" {
		text := "(" + escapeQuery(term) + ")"
		if len(q.Fields) > 0 {
			names := make([]string, len(q.Fields))
			for i, f := range q.Fields {
				names[i] = f.Name
			}
			text = "@" + strings.Join(names, "|") + ":" + text
		}
		parts = append(parts, text)
	}

	if len(q.ExcludeIDs) > 0 {
		escaped := make([]string, len(q.ExcludeIDs))
		for i, id := range q.ExcludeIDs {
			escaped[i] = tagEscaper.Replace(id)
		}
		parts = append(parts, "-@"+idField+":{"+strings.Join(escaped, "|")+"}")
	}

	if len(parts) == 0 {
		return "*"
	}
	return strings.Join(parts, " ")
}

// parseRankedResult reads the WITHSCORES 3-stride reply:
// [total, key1, score1, fields1, key2, score2, fields2, ...]
// Any hit that does not decode fails the query.
func (s *Store) parseRankedResult(index string, raw []rueidis.RedisMessage) (*db.SearchResult, error) {
	if len(raw) == 0 {
		return &db.SearchResult{}, nil
	}

	total, err := raw[0].AsInt64()
	if err != nil {
		return nil, malformedReply("total: %w", err)
	}
	if (len(raw)-1)%3 != 0 {
		return nil, malformedReply("%d elements is not a WITHSCORES reply", len(raw))
	}

	prefix := s.keyspace(index)
	hits := make([]db.Hit, 0, (len(raw)-1)/3)
	for i := 1; i < len(raw); i += 3 {
		key, err := raw[i].ToString()
		if err != nil {
			return nil, malformedReply("hit %d key: %w", len(hits), err)
		}
		scoreStr, err := raw[i+1].ToString()
		if err != nil {
			return nil, malformedReply("%s score: %w", key, err)
		}
		score, err := strconv.ParseFloat(scoreStr, 64)
		if err != nil {
			return nil, malformedReply("%s score: %w", key, err)
		}
		fields, err := raw[i+2].ToArray()
		if err != nil {
			return nil, malformedReply("%s fields: %w", key, err)
		}
		body, ok := parseFieldPairs(fields)["$"]
		if !ok {
			return nil, malformedReply("%s: no $ field", key)
		}
		src, err := decodeDocument(body)
		if err != nil {
			return nil, malformedReply("%s: %w", key, err)
		}
		if src == nil {
			return nil, malformedReply("%s: empty document", key)
		}

		hits = append(hits, db.Hit{
			ID:     strings.TrimPrefix(key, prefix),
			Score:  score,
			Source: src,
		})
	}

	return &db.SearchResult{Total: int(total), Hits: hits}, nil
}

// malformedReply fails the whole ranked query. Hits are never skipped.
func malformedReply(format string, args ...any) error {
	return &db.Error{Op: db.OpSearch, Err: fmt.Errorf("malformed reply: "+format, args...)}
}

func parseFieldPairs(fields []rueidis.RedisMessage) map[string]string {
	m := make(map[string]string, len(fields)/2)
	for j := 0; j+1 < len(fields); j += 2 {
		name, err := fields[j].ToString()
		if err != nil {
			continue
		}
		value, err := fields[j+1].ToString()
		if err != nil {
			continue
		}
		m[name] = value
	}
	return m
}

// Characters with meaning in the query syntax, escaped with a backslash.
// Tag values additionally escape whitespace and separators.
var (
	tagEscaper   = backslashEscaper(",.<>{}|\"':;!@#$%^&*()-+=~ ")
	queryEscaper = backslashEscaper(`\'"@{}()|-~*[]!%^$<>=;+:`)
)

func backslashEscaper(specials string) *strings.Replacer {
	pairs := make([]string, 0, 2*len(specials))
	for _, c := range specials {
		pairs = append(pairs, string(c), `\`+string(c))
	}
	return strings.NewReplacer(pairs...)
}

func escapeQuery(s string) string {
	return queryEscaper.Replace(s)
}
