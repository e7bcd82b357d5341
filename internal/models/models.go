package models

import (
	"github.com/go-playground/validator/v10"
)

// CandidateRecord represents the evaluation of one applicant
type CandidateRecord struct {
	Name      string   `json:"name" validate:"required"`
	Mobile    string   `json:"mobile" validate:"required"`
	Score     float64  `json:"score" validate:"gte=1,lte=10"` // 1-10
	Questions []string `json:"questions" validate:"min=1,dive,required,endswith=?"`
	Reasoning string   `json:"reasoning" validate:"required"`
}

// ShortlistResult is the structured outcome of one shortlisting request.
// TotalCandidates echoes the number of uploaded files and may differ from len(Candidates).
type ShortlistResult struct {
	JobAnalysis     string            `json:"job_analysis"`
	Candidates      []CandidateRecord `json:"candidates" validate:"min=1,dive"`
	TotalCandidates int               `json:"total_candidates" validate:"gte=0"`
}

// ShortlistRequest holds the non-file inputs of a shortlisting request
type ShortlistRequest struct {
	JobDescription string `validate:"required"`
	FileCount      int    `validate:"gte=1"`
}

// ErrorResponse is the JSON body returned for failed requests
type ErrorResponse struct {
	Error      string `json:"error"`
	Detail     string `json:"detail"`
	StatusCode int    `json:"status_code"`
}

// HealthResponse is returned by the health endpoint
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Version string `json:"version"`
}

// InfoResponse describes the service capabilities and upload limits
type InfoResponse struct {
	Service          string   `json:"service"`
	Version          string   `json:"version"`
	MaxFiles         int      `json:"max_files"`
	MaxFileSizeBytes int64    `json:"max_file_size_bytes"`
	MaxFileSizeMB    int64    `json:"max_file_size_mb"`
	AllowedTypes     []string `json:"allowed_types"`
	Features         []string `json:"features"`
}

var validate = validator.New()

// Validate checks the record invariants
func (c *CandidateRecord) Validate() error {
	return validate.Struct(c)
}

// Validate checks the result invariants, including every candidate
func (r *ShortlistResult) Validate() error {
	return validate.Struct(r)
}

// Validate checks the request inputs
func (r *ShortlistRequest) Validate() error {
	return validate.Struct(r)
}
