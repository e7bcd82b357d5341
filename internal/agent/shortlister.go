package agent

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fmuoria/resume-shortlisting/internal/extraction"
	"github.com/fmuoria/resume-shortlisting/internal/logger"
	"github.com/fmuoria/resume-shortlisting/internal/models"
)

// Shortlister produces a structured result from a job description and resume files
type Shortlister struct {
	generator Generator
	extractor *extraction.Extractor
	logger    *zap.Logger
}

// NewShortlister wires a generator to an extractor
func NewShortlister(generator Generator, extractor *extraction.Extractor, log *zap.Logger) *Shortlister {
	if extractor == nil {
		extractor = extraction.New(log)
	}
	return &Shortlister{
		generator: generator,
		extractor: extractor,
		logger:    logger.OrNop(log).Named("shortlister"),
	}
}

// Shortlist generates the report and extracts the candidates from it.
// TotalCandidates is the number of files supplied.
func (s *Shortlister) Shortlist(ctx context.Context, jobDescription string, paths []string) (models.ShortlistResult, error) {
	raw, err := s.generator.Generate(ctx, jobDescription, paths)
	if err != nil {
		s.logger.Error("report generation failed", zap.Error(err))
		return models.ShortlistResult{}, fmt.Errorf("generate report: %w", err)
	}

	return s.extractor.Extract(raw, len(paths)), nil
}
