// Package ai talks to the AI collaborators: financial analysis over recent
// activity and structured extraction from receipt images. Both are
// stateless request/response helpers; failures degrade gracefully instead
// of reaching the user as hard errors.
package ai

import (
	"context"
	"log/slog"
	"time"

	"github.com/meucofre/cofre/internal/common"
	"github.com/meucofre/cofre/internal/service"
)

// MaxAnalysisRecords caps how many recent records are sent for analysis.
const MaxAnalysisRecords = 50

// Config holds provider settings for the AI clients.
type Config struct {
	Provider string
	Model    string
	APIKey   string
	Timeout  time.Duration
}

// FallbackAnalysis is the neutral result used whenever the provider fails.
func FallbackAnalysis() *service.FinancialAnalysis {
	return &service.FinancialAnalysis{
		Summary: "Could not generate the analysis right now. Your data is unaffected; try again in a moment.",
	}
}

// SafeAnalyze runs the analyzer and absorbs any failure into the neutral
// fallback result. The error is logged, never propagated.
func SafeAnalyze(ctx context.Context, analyzer service.Analyzer, records []service.AnalysisRecord) *service.FinancialAnalysis {
	if analyzer == nil {
		return FallbackAnalysis()
	}
	if len(records) > MaxAnalysisRecords {
		records = records[:MaxAnalysisRecords]
	}

	analysis, err := analyzer.Analyze(ctx, records)
	if err != nil {
		common.LogError(err, "financial analysis failed, degrading", common.Fields{
			"records": len(records),
		})
		return FallbackAnalysis()
	}

	slog.Debug("financial analysis generated", "tips", len(analysis.Tips), "anomalies", len(analysis.Anomalies))
	return analysis
}
