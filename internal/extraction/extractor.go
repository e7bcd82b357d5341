// Package extraction turns the free-form report produced by the generator
// into a validated ShortlistResult. Extraction never fails: each tier of the
// cascade degrades to the next, and the last tier always produces a record.
package extraction

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fmuoria/resume-shortlisting/internal/metrics"
	"github.com/fmuoria/resume-shortlisting/internal/models"
)

const (
	// FallbackJobAnalysis is reported when extraction itself broke down
	FallbackJobAnalysis = "Analysis completed with parsing issues."
	// FallbackReasoning marks the record returned when extraction broke down
	FallbackReasoning = "Parsing error occurred - manual review needed"

	codeFence = "```"
)

// Extractor runs the parsing strategies in order; the first one returning
// candidates wins and the rest are not consulted.
type Extractor struct {
	strategies []Strategy
	logger     *zap.Logger
}

// New creates an Extractor with the default cascade: strict table, loose table, placeholder.
func New(logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("extraction")
	return NewWithStrategies(logger, NewStrictTable(logger), LooseTable{}, Placeholder{})
}

// NewWithStrategies creates an Extractor with a custom cascade
func NewWithStrategies(logger *zap.Logger, strategies ...Strategy) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{strategies: strategies, logger: logger}
}

// Extract converts the raw report into a ShortlistResult. totalCandidates is
// echoed back unchanged and is not tied to the number of parsed records.
func (e *Extractor) Extract(raw string, totalCandidates int) (result models.ShortlistResult) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("extraction failed, returning fallback result",
				zap.String("panic", fmt.Sprint(r)),
			)
			metrics.ExtractionTier.WithLabelValues("fallback").Inc()
			result = FallbackResult(totalCandidates)
		}
	}()

	analysis := JobAnalysis(raw)

	for _, strategy := range e.strategies {
		candidates := strategy.Parse(raw)
		if len(candidates) == 0 {
			e.logger.Debug("strategy produced no candidates", zap.String("tier", strategy.Name()))
			continue
		}

		e.logger.Info("extracted candidates",
			zap.String("tier", strategy.Name()),
			zap.Int("candidates", len(candidates)),
			zap.Int("total_candidates", totalCandidates),
		)
		metrics.ExtractionTier.WithLabelValues(strategy.Name()).Inc()

		result = models.ShortlistResult{
			JobAnalysis:     analysis,
			Candidates:      candidates,
			TotalCandidates: totalCandidates,
		}
		if err := result.Validate(); err != nil {
			e.logger.Warn("extracted result violates invariants", zap.Error(err))
		}
		return result
	}

	e.logger.Warn("no strategy produced candidates")
	metrics.ExtractionTier.WithLabelValues("fallback").Inc()
	return models.ShortlistResult{
		JobAnalysis:     analysis,
		Candidates:      []models.CandidateRecord{placeholderCandidate(PlaceholderReasoning)},
		TotalCandidates: totalCandidates,
	}
}

// FallbackResult is returned when the report could not be processed at all
func FallbackResult(totalCandidates int) models.ShortlistResult {
	return models.ShortlistResult{
		JobAnalysis:     FallbackJobAnalysis,
		Candidates:      []models.CandidateRecord{placeholderCandidate(FallbackReasoning)},
		TotalCandidates: totalCandidates,
	}
}

// JobAnalysis collects the text preceding the candidate table. Without a
// recognised header, the text before the first pipe-delimited line is used.
// Code fence markers are dropped.
func JobAnalysis(report string) string {
	lines := splitLines(report)

	end := len(lines)
	for i, line := range lines {
		if isStrictHeader(strings.TrimSpace(line)) {
			end = i
			break
		}
	}
	if end == len(lines) {
		for i, line := range lines {
			if strings.Contains(line, tableDelimiter) {
				end = i
				break
			}
		}
	}

	kept := make([]string, 0, end)
	for _, line := range lines[:end] {
		if strings.HasPrefix(strings.TrimSpace(line), codeFence) {
			continue
		}
		kept = append(kept, line)
	}

	analysis := strings.TrimSpace(strings.Join(kept, "\n"))
	if analysis == "" {
		return DefaultJobAnalysis
	}
	return analysis
}
