// Package inference adapts an Ollama-style LLM endpoint into a header
// detection engine. The model's reasoning is opaque to this system; only the
// request/response contract matters.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rpattn/rentroll/internal/domain"
)

const (
	defaultBaseURL = "http://localhost:11434"
	defaultModel   = "llama3.2"
	defaultTimeout = 120 * time.Second
)

// Client calls the LLM generate API to locate the header row of a rent roll
// sample and map its columns onto the canonical field set.
type Client struct {
	baseURL string
	model   string
	client  *http.Client
	logger  *zap.Logger
}

// NewClient builds an engine client. Empty arguments fall back to local
// defaults; a nil logger is replaced with a no-op one.
func NewClient(baseURL, model string, timeout time.Duration, logger *zap.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if model == "" {
		model = defaultModel
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.Named("inference"),
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

// detectionPayload mirrors the JSON shape the model is asked to produce.
type detectionPayload struct {
	HeaderRowIndex    int            `json:"header_row_index"`
	DataStartRowIndex int            `json:"data_start_row_index"`
	Headers           map[int]string `json:"headers"`
	ColumnMapping     map[string]int `json:"column_mapping"`
	Confidence        float64        `json:"confidence"`
}

// Infer asks the model where the header row sits in the sampled rows and how
// the raw columns map onto canonical fields. The caller's context carries the
// timeout/cancellation budget; cancellation abandons the wait cleanly.
func (c *Client) Infer(ctx context.Context, sampleRows [][]string) (domain.HeaderDetection, error) {
	reqBody := generateRequest{
		Model:  c.model,
		Prompt: buildPrompt(sampleRows),
		Stream: false,
		Format: "json",
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return domain.HeaderDetection{}, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(jsonData))
	if err != nil {
		return domain.HeaderDetection{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return domain.HeaderDetection{}, fmt.Errorf("calling inference engine: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.HeaderDetection{}, fmt.Errorf("inference engine returned status %d", resp.StatusCode)
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return domain.HeaderDetection{}, fmt.Errorf("decoding response: %w", err)
	}

	detection, err := parseDetection(genResp.Response)
	if err != nil {
		return domain.HeaderDetection{}, err
	}

	c.logger.Debug("header detection complete",
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("header_row", detection.HeaderRowIndex),
		zap.Float64("confidence", detection.Confidence),
	)

	return detection, nil
}

// buildPrompt renders the sample as "index<TAB>cells" lines and states the
// exact JSON contract the model must answer with.
func buildPrompt(sampleRows [][]string) string {
	var b strings.Builder
	b.WriteString("You are given the first rows of a rent roll spreadsheet, one row per line as index<TAB>cells joined by '|'.\n")
	b.WriteString("Identify the header row and map columns to these canonical fields: ")
	for i, field := range domain.CanonicalFields() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(string(field))
	}
	b.WriteString(".\nAnswer with JSON only: {\"header_row_index\": int, \"data_start_row_index\": int, ")
	b.WriteString("\"headers\": {columnIndex: label}, \"column_mapping\": {canonicalField: columnIndex}, \"confidence\": float}. ")
	b.WriteString("Use -1 for canonical fields with no matching column. Row indexes are 0-based.\n\nRows:\n")

	for i, row := range sampleRows {
		fmt.Fprintf(&b, "%d\t%s\n", i, strings.Join(row, "|"))
	}
	return b.String()
}

// parseDetection extracts the JSON object from the model output, which may be
// wrapped in prose or code fences, and validates it.
func parseDetection(raw string) (domain.HeaderDetection, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start < 0 || end <= start {
		return domain.HeaderDetection{}, fmt.Errorf("no JSON object in engine output")
	}

	var payload detectionPayload
	if err := json.Unmarshal([]byte(raw[start:end+1]), &payload); err != nil {
		return domain.HeaderDetection{}, fmt.Errorf("invalid detection payload: %w", err)
	}

	mapping := make(map[domain.CanonicalField]int, len(payload.ColumnMapping))
	for field, col := range payload.ColumnMapping {
		mapping[domain.CanonicalField(field)] = col
	}

	detection := domain.HeaderDetection{
		HeaderRowIndex:    payload.HeaderRowIndex,
		DataStartRowIndex: payload.DataStartRowIndex,
		Headers:           payload.Headers,
		ColumnMapping:     mapping,
		Confidence:        payload.Confidence,
	}

	if err := detection.Validate(); err != nil {
		return domain.HeaderDetection{}, fmt.Errorf("engine produced unusable detection: %w", err)
	}
	return detection, nil
}
