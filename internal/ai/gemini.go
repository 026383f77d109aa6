package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/meucofre/cofre/internal/common"
	"github.com/meucofre/cofre/internal/model"
	"github.com/meucofre/cofre/internal/service"
)

const defaultGeminiModel = "gemini-2.0-flash"

// geminiClient implements the Analyzer and ReceiptExtractor interfaces
// against the Gemini API.
type geminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// newGeminiClient creates a Gemini-backed AI client.
func newGeminiClient(ctx context.Context, cfg Config) (*geminiClient, error) {
	clientCfg := &genai.ClientConfig{
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	}
	if cfg.APIKey != "" {
		clientCfg.APIKey = cfg.APIKey
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	geminiModel := cfg.Model
	if geminiModel == "" {
		geminiModel = defaultGeminiModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &geminiClient{
		client:  client,
		model:   geminiModel,
		timeout: timeout,
	}, nil
}

const analysisPrompt = `You are a personal finance advisor reviewing a family's recent transactions.

Task:
- Read the transaction list below.
- Output STRICT JSON only (no comments, no extra text, no Markdown fences).
- Output a single JSON object with these fields:
  - "summary": string, 2-3 sentences describing overall financial health
  - "tips": array of exactly 3 short actionable strings
  - "anomalies": array of strings naming unusual transactions or patterns (may be empty)

Transactions:
`

// Analyze sends recent records to Gemini and parses the structured verdict.
func (c *geminiClient) Analyze(ctx context.Context, records []service.AnalysisRecord) (*service.FinancialAnalysis, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records to analyze", common.ErrAIUnavailable)
	}

	var sb strings.Builder
	sb.WriteString(analysisPrompt)
	for _, r := range records {
		fmt.Fprintf(&sb, "- %s | %s | %s | %s | %s\n",
			r.Date.Format("2006-01-02"), r.Title, r.Kind, r.Category, r.Amount)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.generate(ctx, []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: sb.String()}},
	}})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Summary   string   `json:"summary"`
		Tips      []string `json:"tips"`
		Anomalies []string `json:"anomalies"`
	}
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed analysis response: %v", common.ErrAIUnavailable, err)
	}
	if parsed.Summary == "" {
		return nil, fmt.Errorf("%w: empty analysis summary", common.ErrAIUnavailable)
	}

	return &service.FinancialAnalysis{
		Summary:   parsed.Summary,
		Tips:      parsed.Tips,
		Anomalies: parsed.Anomalies,
	}, nil
}

const receiptPrompt = `You are a receipt reader for a personal finance tracker.

Task:
- Extract the purchase from the attached receipt image.
- Output STRICT JSON only (no comments, no extra text, no Markdown fences).
- Output a single JSON object with these fields:
  - "title": string, short merchant or purchase description
  - "amount": string, total paid as a decimal like "123.45"
  - "date": string, ISO format "YYYY-MM-DD", or null if unreadable
  - "observation": string or null, any useful detail (items, payment method)
  - "no_data": boolean, true ONLY if the image contains no readable receipt
`

// Extract pulls structured purchase fields out of a receipt image.
func (c *geminiClient) Extract(ctx context.Context, image []byte, mimeType string) (*service.ReceiptData, error) {
	if len(image) == 0 {
		return nil, fmt.Errorf("%w: empty image", common.ErrNoReceiptData)
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.generate(ctx, []*genai.Content{{
		Role: "user",
		Parts: []*genai.Part{
			{Text: receiptPrompt},
			{InlineData: &genai.Blob{MIMEType: mimeType, Data: image}},
		},
	}})
	if err != nil {
		return nil, err
	}

	var parsed struct {
		Title       string `json:"title"`
		Amount      string `json:"amount"`
		Date        string `json:"date"`
		Observation string `json:"observation"`
		NoData      bool   `json:"no_data"`
	}
	if err := json.Unmarshal([]byte(cleanModelJSON(raw)), &parsed); err != nil {
		return nil, fmt.Errorf("%w: malformed receipt response: %v", common.ErrNoReceiptData, err)
	}
	if parsed.NoData || parsed.Title == "" || parsed.Amount == "" {
		return nil, common.ErrNoReceiptData
	}

	amount, err := model.ParseCents(parsed.Amount)
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable amount %q", common.ErrNoReceiptData, parsed.Amount)
	}

	data := &service.ReceiptData{
		Title:       parsed.Title,
		Amount:      amount,
		Observation: parsed.Observation,
	}
	if parsed.Date != "" {
		if date, err := time.Parse("2006-01-02", parsed.Date); err == nil {
			data.Date = date
		}
	}

	return data, nil
}

// generate runs one request with retry on transient failures.
func (c *geminiClient) generate(ctx context.Context, contents []*genai.Content) (string, error) {
	var text string

	err := common.WithRetry(ctx, func() error {
		resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, nil)
		if err != nil {
			return &common.RetryableError{Err: fmt.Errorf("generate content: %w", err), Retryable: true}
		}
		text = resp.Text()
		if text == "" {
			return &common.RetryableError{Err: fmt.Errorf("empty model response"), Retryable: true}
		}
		return nil
	}, service.RetryOptions{MaxAttempts: 2, InitialDelay: 500 * time.Millisecond})

	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrAIUnavailable, err)
	}
	return text, nil
}
