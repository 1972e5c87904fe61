// Copyright (c) 2025, s0up and the autobrr contributors.
// SPDX-License-Identifier: GPL-2.0-or-later

package index

import (
	"context"
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/mediacircle/searchd/internal/query"
)

// ErrUnavailable marks a connection or handshake failure to the index, as
// opposed to a slow or empty search.
var ErrUnavailable = errors.New("index unavailable")

// Doc is one raw document returned by the index, with its relevance score.
type Doc struct {
	ID     string
	Score  float64
	Fields map[string]any
}

// Result is the outcome of executing one built query.
type Result struct {
	Docs []Doc
	// TimedOut is set when the per-source deadline fired before the index
	// answered. Docs then holds whatever arrived in time (usually nothing).
	TimedOut bool
}

// Executor runs built queries against the index.
type Executor struct {
	client *Client
}

// NewExecutor returns an executor over the shared index client.
func NewExecutor(client *Client) *Executor {
	return &Executor{client: client}
}

// Execute runs a built query under ctx. NoOp queries return an empty
// result without contacting the index. Deadline overruns yield a result
// with TimedOut set rather than an error; connection failures return
// ErrUnavailable.
func (e *Executor) Execute(ctx context.Context, q query.IndexQuery) (Result, error) {
	if q.NoOp {
		return Result{}, nil
	}

	args := []any{
		"FT.SEARCH", q.Index, q.Query,
		"WITHSCORES",
		"LIMIT", 0, q.Limit,
		"DIALECT", 2,
	}

	started := time.Now()
	raw, err := e.client.rdb.Do(ctx, args...).Result()
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			log.Debug().Str("index", q.Index).Str("source", q.Source).
				Dur("elapsed", time.Since(started)).Msg("Index search deadline exceeded")
			return Result{TimedOut: true}, nil
		case errors.Is(err, context.Canceled):
			return Result{}, context.Canceled
		case isSyntaxError(err):
			// Pathological raw queries; treat as no matches rather than an
			// index outage.
			log.Warn().Err(err).Str("query", q.Query).Msg("Index rejected query syntax")
			return Result{}, nil
		default:
			return Result{}, errors.Wrap(ErrUnavailable, err.Error())
		}
	}

	docs, err := parseSearchReply(raw)
	if err != nil {
		return Result{}, errors.Wrap(err, "parse index reply")
	}

	sortDocs(docs, q.TieBreakFields)
	return Result{Docs: docs}, nil
}

// parseSearchReply decodes the RESP2 FT.SEARCH array:
// [total, id1, score1, fields1, id2, score2, fields2, ...].
// JSON-backed indexes return fields as ["$", <json blob>].
func parseSearchReply(raw any) ([]Doc, error) {
	arr, ok := raw.([]any)
	if !ok || len(arr) == 0 {
		return nil, errors.New("unexpected reply shape")
	}

	docs := make([]Doc, 0, (len(arr)-1)/3)
	for i := 1; i+2 < len(arr); i += 3 {
		id := toString(arr[i])
		score, _ := strconv.ParseFloat(toString(arr[i+1]), 64)

		fields := map[string]any{}
		if fieldArr, ok := arr[i+2].([]any); ok {
			for j := 0; j+1 < len(fieldArr); j += 2 {
				key := toString(fieldArr[j])
				value := toString(fieldArr[j+1])
				if key == "$" || key == "json" {
					var parsed map[string]any
					if err := json.Unmarshal([]byte(value), &parsed); err == nil {
						for k, v := range parsed {
							fields[k] = v
						}
						continue
					}
				}
				fields[key] = value
			}
		}

		docs = append(docs, Doc{ID: id, Score: score, Fields: fields})
	}
	return docs, nil
}

// sortDocs applies the deterministic ordering contract: relevance first,
// then the source's tie-break fields descending.
func sortDocs(docs []Doc, tieBreakFields []string) {
	sort.SliceStable(docs, func(a, b int) bool {
		if docs[a].Score != docs[b].Score {
			return docs[a].Score > docs[b].Score
		}
		for _, field := range tieBreakFields {
			av := numericField(docs[a].Fields, field)
			bv := numericField(docs[b].Fields, field)
			if av != bv {
				return av > bv
			}
		}
		return false
	})
}

func numericField(fields map[string]any, key string) float64 {
	switch v := fields[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(v, 64)
		return f
	}
	return 0
}

func toString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case []byte:
		return string(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return ""
}

func isSyntaxError(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "syntax error") || strings.Contains(msg, "unknown argument")
}
