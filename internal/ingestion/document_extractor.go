package ingestion

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

const (
	// MinExtractedTextLength is the minimum text length required for successful extraction
	MinExtractedTextLength = 50
	// BinarySampleSize is the number of bytes to sample for binary detection
	BinarySampleSize = 1000
	// BinaryThreshold is the proportion of non-printable characters that indicates binary data
	BinaryThreshold = 0.3
)

var (
	xmlTagPattern    = regexp.MustCompile(`<[^>]+>`)
	blankRunsPattern = regexp.MustCompile(`[ \t]+`)
	newlineRuns      = regexp.MustCompile(`\n{3,}`)
)

// ExtractText extracts text from PDF, DOCX, DOC, or TXT files
func ExtractText(filePath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case ".txt":
		return extractPlain(filePath)
	case ".pdf":
		return extractPDF(filePath)
	case ".docx":
		return extractDOCX(filePath)
	case ".doc":
		return extractDOC(filePath)
	default:
		return "", fmt.Errorf("unsupported file type: %s", ext)
	}
}

func extractPlain(filePath string) (string, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", filePath, err)
	}

	content := string(data)
	if IsBinaryData(content) {
		return "", fmt.Errorf("file %s looks like binary data", filePath)
	}
	return normalizeText(content), nil
}

// extractPDF reads the text layer with the pure-Go reader and falls back to
// pdftotext when that yields too little text (common with unusual encodings).
func extractPDF(filePath string) (string, error) {
	text, readErr := readPDF(filePath)
	if readErr == nil && len(text) >= MinExtractedTextLength {
		return text, nil
	}

	fallback, err := pdfToText(filePath)
	if err != nil {
		if readErr != nil {
			return "", fmt.Errorf("failed to extract PDF text from %s: %v; %w", filePath, readErr, err)
		}
		if text != "" {
			return text, nil
		}
		return "", err
	}

	return fallback, nil
}

func readPDF(filePath string) (string, error) {
	f, r, err := pdf.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}
	defer f.Close()

	plain, err := r.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, plain); err != nil {
		return "", fmt.Errorf("failed to read PDF text: %w", err)
	}

	return normalizeText(buf.String()), nil
}

// pdfToText shells out to pdftotext (poppler-utils)
func pdfToText(filePath string) (string, error) {
	cmd := exec.Command("pdftotext", "-layout", filePath, "-")
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("PDF extraction requires 'pdftotext' (install poppler-utils): %w", err)
	}

	text := normalizeText(string(output))
	if len(text) < MinExtractedTextLength {
		return "", fmt.Errorf("extracted text is too short (likely a scanned document) from: %s", filePath)
	}

	return text, nil
}

// extractDOCX pulls the paragraphs out of word/document.xml
func extractDOCX(filePath string) (string, error) {
	zr, err := zip.OpenReader(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open DOCX %s: %w", filePath, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.Name != "word/document.xml" {
			continue
		}

		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("failed to open document.xml: %w", err)
		}
		defer rc.Close()

		data, err := io.ReadAll(rc)
		if err != nil {
			return "", fmt.Errorf("failed to read document.xml: %w", err)
		}

		xml := strings.ReplaceAll(string(data), "</w:p>", "\n")
		xml = strings.ReplaceAll(xml, "<w:tab/>", "\t")
		return normalizeText(xmlTagPattern.ReplaceAllString(xml, "")), nil
	}

	return "", fmt.Errorf("no word/document.xml found in %s", filePath)
}

// extractDOC uses antiword for legacy Word documents
func extractDOC(filePath string) (string, error) {
	cmd := exec.Command("antiword", filePath)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("DOC extraction requires 'antiword': %w", err)
	}
	return normalizeText(string(output)), nil
}

func normalizeText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = blankRunsPattern.ReplaceAllString(s, " ")
	s = newlineRuns.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// IsBinaryData checks if content appears to be binary (PDF/ZIP markers)
func IsBinaryData(content string) bool {
	if len(content) == 0 {
		return false
	}

	if strings.HasPrefix(content, "%PDF-") {
		return true
	}

	if len(content) >= 2 && content[:2] == "PK" {
		return true
	}

	sampleSize := min(BinarySampleSize, len(content))
	nonPrintable := 0
	for i := 0; i < sampleSize; i++ {
		ch := content[i]
		if ch < 32 && ch != '\n' && ch != '\r' && ch != '\t' {
			nonPrintable++
		}
	}

	return float64(nonPrintable)/float64(sampleSize) > BinaryThreshold
}
