package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/meucofre/cofre/internal/common"
	"github.com/meucofre/cofre/internal/service"
)

// Clients bundles the AI collaborators behind one construction point.
type Clients struct {
	Analyzer  service.Analyzer
	Extractor service.ReceiptExtractor
}

// NewClients creates AI clients for the configured provider. Provider
// "none" (or empty) yields disabled clients whose calls fail softly, which
// keeps the rest of the application oblivious to whether AI is configured.
func NewClients(ctx context.Context, cfg Config) (*Clients, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "none":
		return &Clients{Analyzer: disabled{}, Extractor: disabled{}}, nil
	case "gemini":
		client, err := newGeminiClient(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &Clients{Analyzer: client, Extractor: client}, nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}

// disabled satisfies the AI interfaces when no provider is configured.
type disabled struct{}

func (disabled) Analyze(context.Context, []service.AnalysisRecord) (*service.FinancialAnalysis, error) {
	return nil, fmt.Errorf("%w: no AI provider configured", common.ErrAIUnavailable)
}

func (disabled) Extract(context.Context, []byte, string) (*service.ReceiptData, error) {
	return nil, fmt.Errorf("%w: no AI provider configured", common.ErrNoReceiptData)
}
