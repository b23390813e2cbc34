package parse

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/docdex/docdex"
)

// jsonlRecord is one line of a Q&A dataset file.
type jsonlRecord struct {
	Instruction string `json:"instruction"`
	Output      string `json:"output"`
	Resource    string `json:"resource"`
	Category    string `json:"category"`
}

// ParseJSONL turns each line of a JSONL dataset into one Q&A document.
// Malformed lines are skipped. A record's category merges into the tag
// set and its resource becomes the title.
func ParseJSONL(path string, src *docdex.Source) ([]*docdex.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	var docs []*docdex.Document
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for i := 0; scanner.Scan(); i++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var rec jsonlRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue
		}

		doc := docdex.FromSource(src)
		doc.URI = fmt.Sprintf("%s#%d", path, i)
		doc.Title = rec.Resource
		if doc.Title == "" {
			doc.Title = stem
		}
		doc.Section = rec.Category
		doc.Content = fmt.Sprintf("Question: %s\n\nAnswer: %s", rec.Instruction, rec.Output)

		if rec.Category != "" && !containsString(doc.Tags, rec.Category) {
			doc.Tags = append(doc.Tags, rec.Category)
		}
		if doc.Component == "" {
			doc.Component = strings.ToLower(rec.Resource)
		}

		docs = append(docs, &doc)
	}
	if err := scanner.Err(); err != nil {
		return docs, err
	}
	return docs, nil
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
