package extraction

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/fmuoria/resume-shortlisting/internal/models"
)

const tableDelimiter = "|"

// Strategy is one tier of the extraction cascade. Parse returns the
// candidates it recognised in the report, or none.
type Strategy interface {
	Name() string
	Parse(report string) []models.CandidateRecord
}

var headerMarkers = []string{"| Name |", "| Mobile |", "| Score |"}

func isStrictHeader(line string) bool {
	for _, marker := range headerMarkers {
		if !strings.Contains(line, marker) {
			return false
		}
	}
	return true
}

func isStrictSeparator(line string) bool {
	return strings.HasPrefix(line, tableDelimiter) && strings.Contains(line, "---")
}

func isTableRow(line string) bool {
	return len(line) > 1 && strings.HasPrefix(line, tableDelimiter) && strings.HasSuffix(line, tableDelimiter)
}

func splitLines(report string) []string {
	report = strings.ReplaceAll(report, "\r\n", "\n")
	return strings.Split(report, "\n")
}

// StrictTable reads the markdown table introduced by a "| Name | Mobile | Score |" header.
type StrictTable struct {
	logger *zap.Logger
}

// NewStrictTable creates the first-tier parser
func NewStrictTable(logger *zap.Logger) *StrictTable {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StrictTable{logger: logger}
}

func (s *StrictTable) Name() string { return "strict_table" }

func (s *StrictTable) Parse(report string) []models.CandidateRecord {
	var candidates []models.CandidateRecord
	headerFound := false
	separatorChecked := false

	for i, raw := range splitLines(report) {
		line := strings.TrimSpace(raw)

		if !headerFound {
			headerFound = isStrictHeader(line)
			continue
		}

		if !separatorChecked {
			separatorChecked = true
			if isStrictSeparator(line) {
				continue
			}
		}

		if !isTableRow(line) || isStrictHeader(line) || isStrictSeparator(line) {
			continue
		}

		candidate, err := parseStrictRow(line, len(candidates)+1)
		if err != nil {
			s.logger.Warn("skipping table row",
				zap.Int("line", i+1),
				zap.Error(err),
			)
			continue
		}
		candidates = append(candidates, candidate)
	}

	return candidates
}

func parseStrictRow(line string, ordinal int) (models.CandidateRecord, error) {
	cells := strings.Split(line, tableDelimiter)
	// a row "| a | b |" splits into ["", " a ", " b ", ""]
	cells = cells[1 : len(cells)-1]
	if len(cells) < 5 {
		return models.CandidateRecord{}, fmt.Errorf("expected at least 5 cells, got %d", len(cells))
	}

	return models.CandidateRecord{
		Name:      candidateName(cells[0], ordinal),
		Mobile:    candidateMobile(cells[1]),
		Score:     parseScore(cells[2]),
		Questions: parseQuestions(cells[3]),
		Reasoning: parseReasoning(cells[4]),
	}, nil
}

// LooseTable accepts any pipe-separated line with enough cells, for reports
// whose header does not match the expected markers exactly.
type LooseTable struct{}

func (LooseTable) Name() string { return "loose_table" }

func (LooseTable) Parse(report string) []models.CandidateRecord {
	if !strings.Contains(report, tableDelimiter) {
		return nil
	}

	var candidates []models.CandidateRecord
	for _, raw := range splitLines(report) {
		line := strings.TrimSpace(raw)
		if !strings.Contains(line, tableDelimiter) {
			continue
		}

		parts := strings.Split(line, tableDelimiter)
		if len(parts) < 6 {
			continue
		}
		if strings.Contains(line, "Name") && strings.Contains(line, "Mobile") {
			continue
		}
		if strings.Contains(line, "---") || strings.Contains(line, "===") {
			continue
		}

		ordinal := len(candidates) + 1
		cell := func(i int, fallback string) string {
			if v := cleanCell(parts[i]); v != "" {
				return v
			}
			return fallback
		}

		candidates = append(candidates, models.CandidateRecord{
			Name:      candidateName(cell(1, fmt.Sprintf("Candidate %d", ordinal)), ordinal),
			Mobile:    candidateMobile(cell(2, DefaultMobile)),
			Score:     parseScore(cell(3, "5")),
			Questions: parseQuestionLines(cell(4, "")),
			Reasoning: parseReasoning(cell(5, DefaultReasoning)),
		})
	}

	return candidates
}

// PlaceholderReasoning marks a record synthesised because nothing could be parsed
const PlaceholderReasoning = "Unable to parse detailed analysis. Please review the raw output."

// Placeholder is the terminal tier. It always yields exactly one record.
type Placeholder struct{}

func (Placeholder) Name() string { return "placeholder" }

func (Placeholder) Parse(string) []models.CandidateRecord {
	return []models.CandidateRecord{placeholderCandidate(PlaceholderReasoning)}
}

func placeholderCandidate(reasoning string) models.CandidateRecord {
	return models.CandidateRecord{
		Name:   "Candidate 1",
		Mobile: DefaultMobile,
		Score:  DefaultScore,
		Questions: []string{
			"Can you walk us through your most relevant experience for this role?",
			"What interests you most about this position?",
		},
		Reasoning: reasoning,
	}
}
