package agent

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmuoria/resume-shortlisting/internal/extraction"
)

type stubGenerator struct {
	report string
	err    error
}

func (s stubGenerator) Generate(context.Context, string, []string) (string, error) {
	return s.report, s.err
}

func TestShortlist(t *testing.T) {
	s := NewShortlister(stubGenerator{report: "## Job Analysis\nGo\n\n" + screenerTable}, nil, nil)

	result, err := s.Shortlist(context.Background(), "jd", []string{"a.pdf", "b.pdf", "c.pdf"})
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalCandidates)
	require.Len(t, result.Candidates, 1)
	assert.Equal(t, "Jane Doe", result.Candidates[0].Name)
	assert.Equal(t, 9.0, result.Candidates[0].Score)
	assert.Equal(t, "## Job Analysis\nGo", result.JobAnalysis)
}

func TestShortlist_UnparseableReportStillSucceeds(t *testing.T) {
	s := NewShortlister(stubGenerator{report: "I could not produce a table."}, extraction.New(nil), nil)

	result, err := s.Shortlist(context.Background(), "jd", []string{"a.pdf"})
	require.NoError(t, err)

	require.Len(t, result.Candidates, 1)
	assert.Equal(t, extraction.PlaceholderReasoning, result.Candidates[0].Reasoning)
}

func TestShortlist_GeneratorError(t *testing.T) {
	s := NewShortlister(stubGenerator{err: errors.New("boom")}, nil, nil)

	_, err := s.Shortlist(context.Background(), "jd", []string{"a.pdf"})
	assert.ErrorContains(t, err, "generate report: boom")
}

func TestPrompts(t *testing.T) {
	analysis := buildAnalysisPrompt("  Backend engineer  ")
	assert.Contains(t, analysis, "## JOB DESCRIPTION\nBackend engineer\n")
	assert.Contains(t, analysis, "Nice-to-have skills")

	report := composeReport(" analysis ", "\ntable\n")
	assert.Equal(t, "## Job Analysis\nanalysis\n\n## Candidate Evaluation\ntable\n", report)
}
