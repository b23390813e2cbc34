package docdex

// Document is one semantically coherent unit extracted from a fetched
// file: a markdown section, an SQL or config block, a proto
// message/enum/service, a Q&A record, an HTML page, a PDF page, or a doc
// comment. Documents carry provenance from their source and are consumed
// by the chunker; they are never persisted.
type Document struct {
	SourceID string
	Domain   string
	URI      string
	Title    string
	Section  string
	Content  string

	SourceKind SourceKind
	Priority   int
	Version    string
	Tags       []string
	Component  string
	License    string
	Origin     string
	Engine     string
	Topic      string

	// Schema facets, set only by the proto parser.
	BlockType  string // message, enum, service
	BlockName  string
	Fields     []string
	OneOfs     []string
	Deprecated bool
}

// FromSource copies the shared provenance fields of src into a Document.
// Parsers fill in URI, Title, Section and Content on the result.
func FromSource(src *Source) Document {
	return Document{
		SourceID:   src.ID,
		Domain:     src.Domain,
		SourceKind: src.Kind,
		Priority:   src.Priority,
		Version:    src.Version,
		Tags:       append([]string(nil), src.Tags...),
		Component:  src.Component,
		License:    src.License,
		Origin:     src.Location,
		Engine:     src.Engine,
		Topic:      src.Topic,
	}
}
