package docdex

// Parser turns one fetched file into parsed documents.
type Parser interface {
	// Parse reads the file at path and returns its documents. Returning
	// zero documents is not an error.
	Parse(path string, src *Source) ([]*Document, error)
}

// ParserFunc adapts a function to the Parser interface.
type ParserFunc func(path string, src *Source) ([]*Document, error)

// Parse implements Parser.
func (f ParserFunc) Parse(path string, src *Source) ([]*Document, error) {
	return f(path, src)
}
