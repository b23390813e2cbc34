package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/docdex/docdex"
)

const systemPrompt = `You are DocDex, an expert AI assistant for database monitoring and operations.
You specialize in PostgreSQL, MongoDB, MySQL, MSSQL, ClickHouse, Elasticsearch, Linux performance,
systemd services, and networking troubleshooting.

Rules:
- Answer directly and concisely based ONLY on the context below.
- Do NOT show your reasoning or thinking process.
- Do NOT speculate or make things up.
- If the context does not contain the answer, say "I don't have information about that."
- When applicable, include specific commands, queries, or configuration examples.

Context:
%s

Question: %s

Answer:`

// thinkRE strips <think>...</think> blocks emitted by reasoning models.
var thinkRE = regexp.MustCompile(`(?s)<think>.*?</think>`)

// priorityBoostFactor scales the rerank boost per priority level below
// the neutral midpoint of 5.
const priorityBoostFactor = 0.1

// DefaultGenerateTimeout bounds one completion request.
const DefaultGenerateTimeout = 300 * time.Second

// Ensure Asker implements docdex.Asker at compile time.
var _ docdex.Asker = (*Asker)(nil)

// Asker answers questions over the indexed documentation: it embeds the
// question, retrieves nearest chunks, dedups and priority-reranks them,
// and renders a grounded prompt for the completion model.
type Asker struct {
	baseURL  string
	model    string
	embedder docdex.Embedder
	store    docdex.VectorStore
	topK     int
	client   *http.Client
	logger   *slog.Logger
}

// AskerOption configures an Asker.
type AskerOption func(*Asker)

// WithTopK sets the number of chunks retrieved per question.
func WithTopK(k int) AskerOption {
	return func(a *Asker) {
		if k > 0 {
			a.topK = k
		}
	}
}

// WithAskerLogger sets the logger.
func WithAskerLogger(logger *slog.Logger) AskerOption {
	return func(a *Asker) {
		a.logger = logger
	}
}

// NewAsker creates an Asker backed by the given embedder, store, and
// Ollama completion model.
func NewAsker(baseURL, model string, embedder docdex.Embedder, store docdex.VectorStore, opts ...AskerOption) *Asker {
	a := &Asker{
		baseURL:  baseURL,
		model:    model,
		embedder: embedder,
		store:    store,
		topK:     docdex.DefaultTopK,
		client:   &http.Client{Timeout: DefaultGenerateTimeout},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Ask answers a question with retrieved context and cited sources.
func (a *Asker) Ask(ctx context.Context, question string) (*docdex.Answer, error) {
	start := time.Now()

	vector, err := a.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, err
	}

	matches, err := a.store.Search(ctx, vector, a.topK)
	if err != nil {
		return nil, err
	}
	matches = dedupAndRerank(matches)

	prompt := fmt.Sprintf(systemPrompt, formatContext(matches), question)
	raw, err := a.generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	answer := &docdex.Answer{
		Answer:   stripThinkTags(raw),
		Sources:  sourceRefs(matches),
		TimingMS: time.Since(start).Milliseconds(),
	}
	return answer, nil
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// generate performs one non-streaming /api/generate call.
func (a *Asker) generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{Model: a.model, Prompt: prompt})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("generate request failed: HTTP %d: %s", resp.StatusCode, msg)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Response, nil
}

// dedupAndRerank removes chunks repeating an already-seen text hash,
// then stably reorders by a priority boost so higher-priority sources
// surface first.
func dedupAndRerank(matches []docdex.ScoredChunk) []docdex.ScoredChunk {
	seen := make(map[string]bool)
	unique := matches[:0]
	for _, m := range matches {
		hash := payloadString(m.Payload, "text_hash")
		if hash != "" && seen[hash] {
			continue
		}
		if hash != "" {
			seen[hash] = true
		}
		unique = append(unique, m)
	}

	sort.SliceStable(unique, func(i, j int) bool {
		return priorityBoost(unique[i].Payload) > priorityBoost(unique[j].Payload)
	})
	return unique
}

// priorityBoost maps priority 1..5 to a boost above 1.0, higher for
// higher-priority (lower-numbered) sources.
func priorityBoost(payload map[string]any) float64 {
	priority := 3.0
	switch v := payload["priority"].(type) {
	case float64:
		priority = v
	case int:
		priority = float64(v)
	}
	return 1 + priorityBoostFactor*(5-priority)
}

// formatContext joins chunk texts for prompt rendering.
func formatContext(matches []docdex.ScoredChunk) string {
	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		if text := payloadString(m.Payload, "text"); text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, "\n\n")
}

// sourceRefs extracts citation metadata from match payloads.
func sourceRefs(matches []docdex.ScoredChunk) []docdex.SourceRef {
	refs := make([]docdex.SourceRef, 0, len(matches))
	for _, m := range matches {
		meta, _ := m.Payload["metadata"].(map[string]any)
		refs = append(refs, docdex.SourceRef{
			URI:     payloadString(meta, "uri"),
			Title:   payloadString(meta, "title"),
			Section: payloadString(meta, "section"),
			Engine:  payloadString(meta, "engine"),
			Topic:   payloadString(meta, "topic"),
		})
	}
	return refs
}

// stripThinkTags removes reasoning blocks from model output.
func stripThinkTags(text string) string {
	return strings.TrimSpace(thinkRE.ReplaceAllString(text, ""))
}

func payloadString(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	s, _ := payload[key].(string)
	return s
}
