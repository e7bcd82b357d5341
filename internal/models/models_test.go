package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCandidate() CandidateRecord {
	return CandidateRecord{
		Name:      "Jane Doe",
		Mobile:    "555-1234",
		Score:     8.0,
		Questions: []string{"Tell me about X?"},
		Reasoning: "Strong fit",
	}
}

func TestCandidateRecordValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *CandidateRecord)
		wantErr bool
	}{
		{name: "valid record", mutate: func(c *CandidateRecord) {}},
		{name: "score at lower bound", mutate: func(c *CandidateRecord) { c.Score = 1 }},
		{name: "score at upper bound", mutate: func(c *CandidateRecord) { c.Score = 10 }},
		{name: "score below range", mutate: func(c *CandidateRecord) { c.Score = 0.5 }, wantErr: true},
		{name: "score above range", mutate: func(c *CandidateRecord) { c.Score = 10.5 }, wantErr: true},
		{name: "empty name", mutate: func(c *CandidateRecord) { c.Name = "" }, wantErr: true},
		{name: "no questions", mutate: func(c *CandidateRecord) { c.Questions = nil }, wantErr: true},
		{name: "question without mark", mutate: func(c *CandidateRecord) { c.Questions = []string{"Tell me"} }, wantErr: true},
		{name: "empty reasoning", mutate: func(c *CandidateRecord) { c.Reasoning = "" }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validCandidate()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestShortlistResultValidation(t *testing.T) {
	result := ShortlistResult{
		JobAnalysis:     "Go developer",
		Candidates:      []CandidateRecord{validCandidate()},
		TotalCandidates: 3,
	}
	require.NoError(t, result.Validate())

	result.Candidates = nil
	assert.Error(t, result.Validate(), "empty candidate list must be rejected")

	bad := validCandidate()
	bad.Score = 42
	result.Candidates = []CandidateRecord{bad}
	assert.Error(t, result.Validate(), "nested candidates must be validated")
}

func TestShortlistResultJSONShape(t *testing.T) {
	result := ShortlistResult{
		JobAnalysis:     "analysis",
		Candidates:      []CandidateRecord{validCandidate()},
		TotalCandidates: 1,
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Contains(t, raw, "job_analysis")
	assert.Contains(t, raw, "candidates")
	assert.Contains(t, raw, "total_candidates")

	candidate := raw["candidates"].([]any)[0].(map[string]any)
	for _, key := range []string{"name", "mobile", "score", "questions", "reasoning"} {
		assert.Contains(t, candidate, key)
	}
}

func TestShortlistRequestValidation(t *testing.T) {
	assert.NoError(t, (&ShortlistRequest{JobDescription: "Go dev", FileCount: 1}).Validate())
	assert.Error(t, (&ShortlistRequest{JobDescription: "", FileCount: 1}).Validate())
	assert.Error(t, (&ShortlistRequest{JobDescription: "Go dev", FileCount: 0}).Validate())
}
