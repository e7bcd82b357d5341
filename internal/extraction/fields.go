package extraction

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultJobAnalysis replaces an empty job analysis section
	DefaultJobAnalysis = "Job requirements analysis completed."
	// DefaultMobile replaces a missing mobile number
	DefaultMobile = "Not available"
	// DefaultReasoning replaces an empty reasoning cell
	DefaultReasoning = "Analysis completed"
	// DefaultScore is used when the score cell carries no number
	DefaultScore = 5.0

	minScore = 1.0
	maxScore = 10.0

	// minQuestionLength drops list debris such as "a)" or stray punctuation
	minQuestionLength = 6
)

// DefaultQuestions is used when no usable question survives parsing
var DefaultQuestions = []string{"Can you tell us about your relevant experience for this role?"}

var (
	numberPattern    = regexp.MustCompile(`\d+(?:\.\d+)?`)
	breakTagPattern  = regexp.MustCompile(`(?i)<br\s*/?>`)
	questionSplitter = regexp.MustCompile(`\d+\.\s+|\n`)
)

// missingSentinels are placeholder values the generator writes instead of leaving a cell empty
var missingSentinels = map[string]struct{}{
	"":          {},
	"not found": {},
	"n/a":       {},
}

func isMissing(value string) bool {
	_, ok := missingSentinels[strings.ToLower(strings.TrimSpace(value))]
	return ok
}

// cleanCell trims whitespace and markdown emphasis around a table cell
func cleanCell(cell string) string {
	cell = strings.TrimSpace(cell)
	cell = strings.Trim(cell, "*_`")
	return strings.TrimSpace(cell)
}

func normalizeBreaks(s string) string {
	return breakTagPattern.ReplaceAllString(s, "\n")
}

func candidateName(raw string, ordinal int) string {
	name := cleanCell(raw)
	if isMissing(name) {
		return fmt.Sprintf("Candidate %d", ordinal)
	}
	return name
}

func candidateMobile(raw string) string {
	mobile := cleanCell(raw)
	if isMissing(mobile) {
		return DefaultMobile
	}
	return mobile
}

// parseScore takes the first number in the cell, treats values above 10 as
// percentages and clamps the result to [1, 10].
func parseScore(raw string) float64 {
	match := numberPattern.FindString(raw)
	if match == "" {
		return DefaultScore
	}

	score, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return DefaultScore
	}

	if score > maxScore {
		score /= 10
	}

	return clampScore(score)
}

func clampScore(score float64) float64 {
	if score < minScore {
		return minScore
	}
	if score > maxScore {
		return maxScore
	}
	return score
}

func ensureQuestionMark(q string) string {
	if strings.HasSuffix(q, "?") {
		return q
	}
	return q + "?"
}

// parseQuestions splits a questions cell on numbered list markers and line
// breaks, dropping fragments that are too short to be a question.
func parseQuestions(raw string) []string {
	parts := questionSplitter.Split(normalizeBreaks(raw), -1)

	questions := make([]string, 0, len(parts))
	for _, part := range parts {
		q := strings.TrimSpace(part)
		q = strings.TrimSpace(strings.TrimLeft(q, "-*•"))
		if len([]rune(q)) < minQuestionLength {
			continue
		}
		questions = append(questions, ensureQuestionMark(q))
	}

	if len(questions) == 0 {
		return defaultQuestions()
	}
	return questions
}

// parseQuestionLines is the simpler splitter used by the loose scan: one question per line
func parseQuestionLines(raw string) []string {
	var questions []string
	for _, line := range strings.Split(normalizeBreaks(raw), "\n") {
		q := strings.TrimSpace(line)
		if q == "" {
			continue
		}
		questions = append(questions, ensureQuestionMark(q))
	}

	if len(questions) == 0 {
		return defaultQuestions()
	}
	return questions
}

func parseReasoning(raw string) string {
	reasoning := strings.TrimSpace(normalizeBreaks(raw))
	if reasoning == "" {
		return DefaultReasoning
	}
	return reasoning
}

func defaultQuestions() []string {
	out := make([]string, len(DefaultQuestions))
	copy(out, DefaultQuestions)
	return out
}
