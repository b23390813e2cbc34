package qdrant

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/docdex/docdex"
)

// pointRecord is one exported point: one JSONL line.
type pointRecord struct {
	ID      any            `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// Export streams the whole collection to a JSONL file, one point per
// line with vector and payload, for air-gapped transfer. Returns the
// number of exported points.
func (s *Store) Export(ctx context.Context, path string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)

	count := 0
	var offset any
	for {
		body := map[string]any{
			"limit":        scrollPageSize,
			"with_payload": true,
			"with_vector":  true,
		}
		if offset != nil {
			body["offset"] = offset
		}

		var out scrollResponse
		if err := s.do(ctx, http.MethodPost, "/collections/"+s.collection+"/points/scroll", body, &out); err != nil {
			return count, err
		}

		for _, p := range out.Result.Points {
			rec := pointRecord{ID: p.ID, Vector: p.Vector, Payload: p.Payload}
			if err := enc.Encode(rec); err != nil {
				return count, err
			}
			count++
		}

		if out.Result.NextPageOffset == nil {
			break
		}
		offset = out.Result.NextPageOffset
	}

	if err := w.Flush(); err != nil {
		return count, err
	}
	s.logger.Info("exported collection", "path", path, "points", count)
	return count, nil
}

// Import loads a JSONL export into the collection, creating it from the
// first record's vector dimensionality when absent. Returns the number
// of imported points.
func (s *Store) Import(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)

	count := 0
	var batch []map[string]any
	ensured := false

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		body := map[string]any{"points": batch}
		if err := s.do(ctx, http.MethodPut, "/collections/"+s.collection+"/points", body, nil); err != nil {
			return err
		}
		count += len(batch)
		batch = batch[:0]
		return nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec pointRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return count, docdex.Errorf(docdex.EINVALID, "malformed export line: %v", err)
		}

		if !ensured {
			if len(rec.Vector) == 0 {
				return count, docdex.Errorf(docdex.EINVALID, "export record has no vector")
			}
			if err := s.EnsureCollection(ctx, len(rec.Vector)); err != nil {
				return count, err
			}
			ensured = true
		}

		batch = append(batch, map[string]any{
			"id":      rec.ID,
			"vector":  rec.Vector,
			"payload": rec.Payload,
		})
		if len(batch) >= s.batchSize {
			if err := flush(); err != nil {
				return count, err
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return count, err
	}
	if err := flush(); err != nil {
		return count, err
	}

	s.logger.Info("imported collection", "path", path, "points", count)
	return count, nil
}
