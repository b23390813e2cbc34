package parse

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/docdex/docdex"
)

// protoState is the scanner state of the proto block parser. The parser
// is a line-based state machine: one forward pass, one transition per
// input line.
type protoState int

const (
	protoTop          protoState = iota // outside any block
	protoInBlock                        // inside one or more message/enum/service blocks
	protoBlockComment                   // inside a /* */ comment
)

// protoBlock is an open message, enum or service block. Depth counts
// brace nesting within the block; the block closes when it returns to
// zero.
type protoBlock struct {
	kind     string // message, enum, service
	name     string
	lines    []string
	comments []string
	fields   []string
	oneofs   []string

	deprecated bool
	depth      int
}

const (
	maxProtoFields     = 20
	minProtoFallback   = 50
	minProtoContentLen = 20
)

var protoBlockKeywords = []string{"message", "enum", "service"}

// ParseProto parses a .proto file into one document per message, enum
// or service block, including nested blocks. Leading comments attach to
// the next block opened. When the file contains no blocks at all it is
// emitted whole as a single fallback document.
func ParseProto(path string, src *docdex.Source) ([]*docdex.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	blocks := parseProtoBlocks(text)

	var docs []*docdex.Document
	for _, block := range blocks {
		content := block.render()
		if len(content) < minProtoContentLen {
			continue
		}
		doc := docdex.FromSource(src)
		doc.URI = path
		doc.Title = fmt.Sprintf("%s %s", block.kind, block.name)
		doc.Section = block.name
		doc.Content = content
		doc.BlockType = block.kind
		doc.BlockName = block.name
		doc.Fields = block.fields
		doc.OneOfs = block.oneofs
		doc.Deprecated = block.deprecated
		docs = append(docs, &doc)
	}

	if len(docs) == 0 && len(strings.TrimSpace(text)) > minProtoFallback {
		doc := docdex.FromSource(src)
		doc.URI = path
		doc.Title = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		doc.Content = text
		docs = append(docs, &doc)
	}

	return docs, nil
}

// protoScanner carries the machine's state between lines: the current
// scanner state, the stack of open blocks, and the buffer of comment
// lines pending attachment to the next block.
type protoScanner struct {
	state   protoState
	stack   []*protoBlock
	pending []string
	blocks  []*protoBlock
}

// parseProtoBlocks runs the state machine over every line of the file
// and returns closed blocks in the order they closed. Nested blocks
// close before their parents and are emitted as distinct blocks.
func parseProtoBlocks(text string) []*protoBlock {
	s := &protoScanner{}
	for _, line := range strings.Split(text, "\n") {
		s.step(strings.TrimSpace(line))
	}
	return s.blocks
}

// step processes one line and transitions the machine.
func (s *protoScanner) step(line string) {
	if s.state == protoBlockComment {
		s.pending = append(s.pending, strings.TrimLeft(line, "* "))
		if strings.Contains(line, "*/") {
			s.exitComment()
		}
		return
	}

	if strings.HasPrefix(line, "/*") {
		if !strings.Contains(line, "*/") {
			s.state = protoBlockComment
		}
		if text := strings.Trim(line, "/* "); text != "" {
			s.pending = append(s.pending, text)
		}
		return
	}

	if strings.HasPrefix(line, "//") {
		s.pending = append(s.pending, strings.TrimLeft(line, "/ "))
		return
	}

	if kind, ok := blockStart(line); ok {
		s.openBlock(kind, line)
		return
	}

	if len(s.stack) == 0 {
		// Top-level plumbing lines keep pending comments attached to
		// the next block; anything else discards them.
		if line != "" && !isProtoHeader(line) {
			s.pending = nil
		}
		return
	}

	s.blockLine(line)
}

// exitComment returns the machine to the state implied by the block
// stack.
func (s *protoScanner) exitComment() {
	if len(s.stack) > 0 {
		s.state = protoInBlock
	} else {
		s.state = protoTop
	}
}

// openBlock pushes a new block, attaching pending comments. A nested
// block's declaration line also appears in its parent's body.
func (s *protoScanner) openBlock(kind, line string) {
	name := "unknown"
	rest := strings.TrimSpace(strings.TrimPrefix(line, kind))
	if head := strings.Fields(strings.SplitN(rest, "{", 2)[0]); len(head) > 0 {
		name = head[0]
	}

	block := &protoBlock{
		kind:     kind,
		name:     name,
		comments: s.pending,
	}
	s.pending = nil

	if len(s.stack) > 0 {
		s.stack[len(s.stack)-1].lines = append(s.stack[len(s.stack)-1].lines, line)
	}

	s.stack = append(s.stack, block)
	s.state = protoInBlock

	block.depth += strings.Count(line, "{") - strings.Count(line, "}")
	if block.depth <= 0 {
		// Single-line block.
		s.closeBlock()
	}
}

// blockLine records a body line on the innermost open block, extracting
// field names, oneof group names and the deprecated marker.
func (s *protoScanner) blockLine(line string) {
	current := s.stack[len(s.stack)-1]
	current.lines = append(current.lines, line)
	current.depth += strings.Count(line, "{") - strings.Count(line, "}")

	if strings.Contains(strings.ToLower(line), "deprecated") {
		current.deprecated = true
	}

	if strings.HasPrefix(line, "oneof ") {
		if fields := strings.Fields(line); len(fields) > 1 {
			current.oneofs = append(current.oneofs, strings.TrimRight(fields[1], "{"))
		}
	}

	// Field lines have the shape "type name = number;".
	if strings.Contains(line, "=") && strings.HasSuffix(line, ";") {
		lhs := strings.Fields(strings.SplitN(line, "=", 2)[0])
		if len(lhs) >= 2 && len(current.fields) < maxProtoFields {
			current.fields = append(current.fields, lhs[len(lhs)-1])
		}
	}

	if current.depth <= 0 {
		s.closeBlock()
	}
}

// closeBlock pops the innermost block and emits it.
func (s *protoScanner) closeBlock() {
	block := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	s.blocks = append(s.blocks, block)
	if len(s.stack) == 0 {
		s.state = protoTop
	}
}

// render builds the block's document content: leading comments followed
// by the reconstructed block source.
func (b *protoBlock) render() string {
	var sb strings.Builder
	if len(b.comments) > 0 {
		sb.WriteString(strings.Join(b.comments, "\n"))
		sb.WriteString("\n\n")
	}
	sb.WriteString(fmt.Sprintf("%s %s {\n", b.kind, b.name))
	for _, line := range b.lines {
		sb.WriteString("  ")
		sb.WriteString(line)
		sb.WriteString("\n")
	}
	sb.WriteString("}")
	return sb.String()
}

// blockStart reports whether a line opens a message, enum or service
// block.
func blockStart(line string) (string, bool) {
	for _, kw := range protoBlockKeywords {
		if strings.HasPrefix(line, kw+" ") {
			return kw, true
		}
	}
	return "", false
}

// isProtoHeader reports whether a top-level line is file plumbing
// (syntax, package, import, option) rather than content.
func isProtoHeader(line string) bool {
	for _, prefix := range []string{"syntax", "package", "import", "option"} {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}
