package ingestion

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// NotFound is written for contact details the heuristics could not locate
const NotFound = "Not found"

// ResumeProfile is the text of one resume plus the contact details found in it
type ResumeProfile struct {
	FileName string
	Name     string
	Mobile   string
	Email    string
	Content  string
}

var (
	namePattern        = regexp.MustCompile(`^[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*$`)
	initialNamePattern = regexp.MustCompile(`^[A-Z]\.?\s*[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*$`)
	emailPattern       = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	disallowedChars    = regexp.MustCompile(`[^\w\s.,\-@()+/:]`)
	whitespaceRuns     = regexp.MustCompile(`\s+`)
	phoneSeparators    = regexp.MustCompile(`[-\s]`)

	// ordered from most to least specific
	mobilePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?:\+91|91)[-\s]?[6-9]\d{9}`),
		regexp.MustCompile(`[6-9]\d{9}`),
		regexp.MustCompile(`\+\d{1,3}[-\s]?\d{3}[-\s]?\d{3}[-\s]?\d{4}`),
		regexp.MustCompile(`\(\d{3}\)[-\s]?\d{3}[-\s]?\d{4}`),
		regexp.MustCompile(`\d{3}[-\s]?\d{3}[-\s]?\d{4}`),
		regexp.MustCompile(`\d{10}`),
	}

	nameSkipKeywords = []string{
		"email", "phone", "mobile", "address", "resume", "cv", "objective",
		"summary", "profile", "contact", "linkedin", "github",
	}
)

// BuildResumeProfile extracts the contact details from raw resume text
func BuildResumeProfile(fileName, text string) ResumeProfile {
	cleaned := cleanText(text)
	return ResumeProfile{
		FileName: fileName,
		Name:     extractName(text),
		Mobile:   extractMobile(cleaned),
		Email:    extractEmail(cleaned),
		Content:  cleaned,
	}
}

// String renders the profile in the block format the screening prompt expects
func (p ResumeProfile) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("FILE: %s\n", p.FileName))
	sb.WriteString("CANDIDATE INFORMATION:\n")
	sb.WriteString(fmt.Sprintf("Name: %s\n", p.Name))
	sb.WriteString(fmt.Sprintf("Mobile: %s\n", p.Mobile))
	sb.WriteString(fmt.Sprintf("Email: %s\n\n", p.Email))
	sb.WriteString("RESUME CONTENT:\n")
	sb.WriteString(p.Content)
	sb.WriteString("\n")
	return sb.String()
}

// cleanText collapses whitespace and strips characters that only add noise to prompts
func cleanText(text string) string {
	text = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, text)
	text = disallowedChars.ReplaceAllString(text, " ")
	text = whitespaceRuns.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

func extractName(text string) string {
	checked := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if checked++; checked > 10 {
			break
		}
		if len(line) <= 2 || containsAny(strings.ToLower(line), nameSkipKeywords) {
			continue
		}
		if namePattern.MatchString(line) && len(strings.Fields(line)) <= 4 {
			return line
		}
		if initialNamePattern.MatchString(line) {
			return line
		}
	}

	words := strings.Fields(text)
	if len(words) > 20 {
		words = words[:20]
	}

	var potential []string
	for _, word := range words {
		if len(word) > 1 && isTitleAlpha(word) {
			potential = append(potential, word)
			if len(potential) >= 2 {
				break
			}
		}
	}
	if len(potential) > 0 {
		return strings.Join(potential, " ")
	}

	return NotFound
}

func extractMobile(text string) string {
	for _, pattern := range mobilePatterns {
		if match := pattern.FindString(text); match != "" {
			return phoneSeparators.ReplaceAllString(match, "")
		}
	}
	return NotFound
}

func extractEmail(text string) string {
	if match := emailPattern.FindString(text); match != "" {
		return match
	}
	return NotFound
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// isTitleAlpha reports whether word is letters only, capitalised, rest lower case
func isTitleAlpha(word string) bool {
	for i, r := range word {
		if !unicode.IsLetter(r) {
			return false
		}
		if i == 0 && !unicode.IsUpper(r) {
			return false
		}
		if i > 0 && !unicode.IsLower(r) {
			return false
		}
	}
	return true
}
