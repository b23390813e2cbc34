package docdex

import (
	"fmt"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// Chunk is the atomic unit submitted to the vector index: a bounded
// slice of a Document plus the provenance needed for filtering and
// citation. Once created, a Chunk is immutable through embedding and
// storage.
type Chunk struct {
	// ID is derived deterministically from (source, uri, section, index),
	// so re-running ingestion against unchanged content is an idempotent
	// upsert rather than a duplicate insert.
	ID   string
	Text string

	SourceID   string
	Domain     string
	SourceKind SourceKind
	Priority   int
	Version    string
	URI        string
	Title      string
	Section    string
	Index      int
	Tags       []string
	Component  string
	License    string
	Origin     string
	Engine     string
	Topic      string

	// TextHash is the dedup key: equal iff the normalized text is
	// byte-identical. Independent of ID.
	TextHash string

	IngestedAt time.Time
}

// ChunkID derives the deterministic point id for a chunk position. The
// store requires UUID point ids, so the key is hashed into a name-based
// UUID. Section is part of the key because multiple documents (e.g.
// markdown sections) may share one URI.
func ChunkID(sourceID, uri, section string, index int) string {
	key := fmt.Sprintf("%s::%s::%s::%d", sourceID, uri, section, index)
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}

// NormalizeText collapses whitespace runs to single spaces, trims, and
// lower-cases, so that formatting-only differences hash identically.
func NormalizeText(text string) string {
	return strings.ToLower(strings.Join(strings.Fields(text), " "))
}

// TextHash hashes normalized text for dedup.
func TextHash(text string) string {
	return fmt.Sprintf("%016x", xxhash.Sum64String(NormalizeText(text)))
}

// NewChunk builds a chunk at the given position of doc, inheriting all
// provenance fields and computing the id and text hash.
func NewChunk(doc *Document, text string, index int) *Chunk {
	return &Chunk{
		ID:         ChunkID(doc.SourceID, doc.URI, doc.Section, index),
		Text:       text,
		SourceID:   doc.SourceID,
		Domain:     doc.Domain,
		SourceKind: doc.SourceKind,
		Priority:   doc.Priority,
		Version:    doc.Version,
		URI:        doc.URI,
		Title:      doc.Title,
		Section:    doc.Section,
		Index:      index,
		Tags:       append([]string(nil), doc.Tags...),
		Component:  doc.Component,
		License:    doc.License,
		Origin:     doc.Origin,
		Engine:     doc.Engine,
		Topic:      doc.Topic,
		TextHash:   TextHash(text),
		IngestedAt: time.Now().UTC(),
	}
}

// Payload converts the chunk to the store payload. The text sits at a
// fixed top-level key and the metadata in a nested object; filterable
// fields are additionally copied flat to the top level so the store can
// index them. The duplication is intentional.
func (c *Chunk) Payload() map[string]any {
	meta := map[string]any{
		"source_id":   c.SourceID,
		"domain":      c.Domain,
		"source_type": string(c.SourceKind),
		"priority":    c.Priority,
		"version":     c.Version,
		"uri":         c.URI,
		"title":       c.Title,
		"section":     c.Section,
		"chunk_index": c.Index,
		"tags":        c.Tags,
		"component":   c.Component,
		"ingested_at": c.IngestedAt.Format(time.RFC3339),
		"text_hash":   c.TextHash,
		"engine":      c.Engine,
		"topic":       c.Topic,
	}
	if c.License != "" {
		meta["license"] = c.License
	}
	if c.Origin != "" {
		meta["origin"] = c.Origin
	}

	return map[string]any{
		"text":     c.Text,
		"metadata": meta,

		"source_id":   c.SourceID,
		"domain":      c.Domain,
		"source_type": string(c.SourceKind),
		"priority":    c.Priority,
		"component":   c.Component,
		"tags":        c.Tags,
		"text_hash":   c.TextHash,
		"engine":      c.Engine,
		"topic":       c.Topic,
	}
}
