package docdex

import (
	"fmt"
	"regexp"
	"strings"
)

// Separator lists in priority order. The chunker walks the list and uses
// the first separator that actually divides the text; the trailing empty
// separator forces a hard fixed-stride split as a last resort.
var (
	// ProseSeparators suit markdown-ish prose: headings first, then
	// paragraphs, lines, sentences, words.
	ProseSeparators = []string{"\n## ", "\n### ", "\n#### ", "\n\n", "\n", ". ", " ", ""}

	// SQLSeparators keep statement-plus-comment groups together.
	SQLSeparators = []string{"\nGO\n", ";\n\n", "\n-- ===", "\n## ", "\n### ", "\n\n", "\n", ". ", " ", ""}

	// ConfigSeparators split INI-style sections and divider comments.
	ConfigSeparators = []string{"\n[", "\n# ---", "\n\n", "\n", ". ", " ", ""}
)

var codeFenceRE = regexp.MustCompile("(?s)```[^\n]*\n.*?```")

// Chunker splits parsed documents into size-bounded, overlap-linked
// chunks. Splitting is deterministic given identical input and
// configuration, and never cuts inside a fenced code block.
type Chunker struct {
	Size      int
	Overlap   int
	MinLength int
}

// NewChunker returns a Chunker configured from cfg.
func NewChunker(cfg Config) *Chunker {
	return &Chunker{
		Size:      cfg.ChunkSize,
		Overlap:   cfg.ChunkOverlap,
		MinLength: cfg.MinChunkLength,
	}
}

// Chunk splits each document and returns all surviving chunks in
// document order. Chunks shorter than MinLength are dropped.
func (c *Chunker) Chunk(docs []*Document) []*Chunk {
	var all []*Chunk
	for _, doc := range docs {
		all = append(all, c.chunkDocument(doc)...)
	}
	return all
}

func (c *Chunker) chunkDocument(doc *Document) []*Chunk {
	protected, placeholders := protectCodeFences(strings.TrimSpace(doc.Content))
	separators := separatorsFor(doc.URI)

	raw := splitText(protected, c.Size, c.Overlap, separators)

	// Segments arrive trimmed with overlap prefixes already attached;
	// trimming here would strip a leading whitespace overlap character
	// and break the shared boundary window between neighbors.
	var chunks []*Chunk
	for i, segment := range raw {
		text := restoreCodeFences(segment, placeholders)
		if len(text) < c.MinLength {
			continue
		}

		// Restored fences can reinflate a placeholder-sized segment well
		// past the bound; re-split with position-stable inner indexes.
		if len(text) > c.Size*2 {
			for j, sub := range splitText(text, c.Size, c.Overlap, separators) {
				if len(sub) < c.MinLength {
					continue
				}
				chunks = append(chunks, NewChunk(doc, sub, i*1000+j))
			}
			continue
		}

		chunks = append(chunks, NewChunk(doc, text, i))
	}
	return chunks
}

// separatorsFor picks the separator list by content type, inferred from
// the document URI.
func separatorsFor(uri string) []string {
	lower := strings.ToLower(uri)
	if strings.HasSuffix(lower, ".sql") {
		return SQLSeparators
	}
	for _, ext := range []string{".conf", ".cnf", ".cfg", ".ini"} {
		if strings.HasSuffix(lower, ext) {
			return ConfigSeparators
		}
	}
	return ProseSeparators
}

// splitText recursively splits text: the first separator that divides it
// wins, parts are greedily recombined up to size, oversized parts are
// re-split with the remaining separators, and each non-first segment is
// prefixed with the trailing overlap characters of its predecessor.
func splitText(text string, size, overlap int, separators []string) []string {
	if len(text) <= size {
		return []string{text}
	}

	for si, sep := range separators {
		if sep == "" {
			return hardSplit(text, size, overlap)
		}

		parts := strings.Split(text, sep)
		if len(parts) <= 1 {
			continue
		}

		var chunks []string
		current := ""
		for _, part := range parts {
			candidate := part
			if current != "" {
				candidate = current + sep + part
			}
			if len(candidate) <= size {
				current = candidate
				continue
			}
			if strings.TrimSpace(current) != "" {
				chunks = append(chunks, current)
			}
			if len(part) > size {
				chunks = append(chunks, splitText(part, size, overlap, separators[si:])...)
				current = ""
			} else {
				current = part
			}
		}
		if strings.TrimSpace(current) != "" {
			chunks = append(chunks, current)
		}

		if len(chunks) > 0 {
			return applyOverlap(chunks, overlap)
		}
	}

	return []string{text}
}

// hardSplit is the empty-separator last resort: fixed-stride windows
// that guarantee termination.
func hardSplit(text string, size, overlap int) []string {
	stride := size - overlap
	if stride < 1 {
		stride = size
	}
	var chunks []string
	for i := 0; i < len(text); i += stride {
		end := i + size
		if end > len(text) {
			end = len(text)
		}
		if chunk := text[i:end]; strings.TrimSpace(chunk) != "" {
			chunks = append(chunks, chunk)
		}
	}
	return chunks
}

// applyOverlap trims each segment, drops empties, then prefixes every
// segment except the first with the trailing overlap characters of its
// final predecessor text. Taking the tail from the already-overlapped
// predecessor keeps the prefix exact on the stored texts; trimming must
// happen before the tails are attached, never after.
func applyOverlap(chunks []string, overlap int) []string {
	out := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		if chunk = strings.TrimSpace(chunk); chunk != "" {
			out = append(out, chunk)
		}
	}
	if overlap <= 0 || len(out) <= 1 {
		return out
	}
	for i := 1; i < len(out); i++ {
		prev := out[i-1]
		tail := prev
		if len(prev) > overlap {
			tail = prev[len(prev)-overlap:]
		}
		// A tail sliced mid-placeholder would leave an unrestorable
		// token fragment; an odd NUL count marks the cut.
		if strings.Count(tail, "\x00")%2 == 1 {
			tail = tail[strings.IndexByte(tail, 0)+1:]
		}
		out[i] = tail + out[i]
	}
	return out
}

// protectCodeFences replaces fenced code blocks with unique placeholder
// tokens so the splitter never cuts inside them.
func protectCodeFences(text string) (string, map[string]string) {
	placeholders := make(map[string]string)
	counter := 0
	protected := codeFenceRE.ReplaceAllStringFunc(text, func(match string) string {
		key := fmt.Sprintf("\x00CODEFENCE%d\x00", counter)
		placeholders[key] = match
		counter++
		return key
	})
	return protected, placeholders
}

func restoreCodeFences(text string, placeholders map[string]string) string {
	for key, value := range placeholders {
		text = strings.ReplaceAll(text, key, value)
	}
	return text
}
