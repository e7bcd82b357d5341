package export

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/fmuoria/resume-shortlisting/internal/models"
)

const (
	summarySheet    = "Summary"
	candidatesSheet = "Shortlisted Candidates"
)

// score bands used for row colouring
var bands = []struct {
	min   float64
	label string
	color string
}{
	{min: 8, label: "Excellent (8-10)", color: "C6EFCE"},
	{min: 6, label: "Good (6-7.9)", color: "FFEB9C"},
	{min: 4, label: "Fair (4-5.9)", color: "FFC7CE"},
	{min: 0, label: "Poor (<4)", color: "FF9999"},
}

func bandFor(score float64) int {
	for i, b := range bands {
		if score >= b.min {
			return i
		}
	}
	return len(bands) - 1
}

var thinBorder = []excelize.Border{
	{Type: "left", Color: "000000", Style: 1},
	{Type: "right", Color: "000000", Style: 1},
	{Type: "top", Color: "000000", Style: 1},
	{Type: "bottom", Color: "000000", Style: 1},
}

// SaveXLSX writes the workbook to outputPath, adding the .xlsx extension if missing
func SaveXLSX(result models.ShortlistResult, outputPath string) (string, error) {
	if !strings.HasSuffix(strings.ToLower(outputPath), ".xlsx") {
		outputPath = outputPath + ".xlsx"
	}
	outputPath = filepath.Clean(outputPath)

	var buf bytes.Buffer
	if err := WriteXLSX(&buf, result); err != nil {
		return "", err
	}
	if err := os.WriteFile(outputPath, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to save Excel file: %w", err)
	}
	return outputPath, nil
}

// WriteXLSX renders the result as a workbook with a summary and a candidates sheet
func WriteXLSX(w io.Writer, result models.ShortlistResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return fmt.Errorf("failed to rename sheet: %w", err)
	}
	if _, err := f.NewSheet(candidatesSheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := createSummarySheet(f, result); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}
	if err := createCandidatesSheet(f, result.Candidates); err != nil {
		return fmt.Errorf("failed to create candidates sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write Excel file: %w", err)
	}
	return nil
}

func createSummarySheet(f *excelize.File, result models.ShortlistResult) error {
	sheet := summarySheet
	f.SetColWidth(sheet, "A", "A", 30)
	f.SetColWidth(sheet, "B", "B", 80)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
	})
	if err != nil {
		return err
	}
	labelStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	wrapStyle, err := f.NewStyle(&excelize.Style{Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"}})
	if err != nil {
		return err
	}

	row := 1
	heading := func(title string) {
		f.SetCellValue(sheet, cell("A", row), title)
		f.SetCellStyle(sheet, cell("A", row), cell("B", row), headerStyle)
		f.MergeCell(sheet, cell("A", row), cell("B", row))
		row++
	}
	field := func(label string, value any) {
		f.SetCellValue(sheet, cell("A", row), label)
		f.SetCellStyle(sheet, cell("A", row), cell("A", row), labelStyle)
		f.SetCellValue(sheet, cell("B", row), value)
		row++
	}

	heading("Resume Shortlisting Report")
	row++

	stats := Summarize(result.Candidates)
	field("Generated:", time.Now().Format("2006-01-02 15:04:05"))
	field("Total Resumes:", result.TotalCandidates)
	field("Candidates Listed:", stats.Shortlisted)
	if stats.Shortlisted > 0 {
		field("Average Score:", fmt.Sprintf("%.1f", stats.AverageScore))
		field("Highest Score:", fmt.Sprintf("%.1f", stats.HighestScore))
		field("Lowest Score:", fmt.Sprintf("%.1f", stats.LowestScore))
	}
	row++

	heading("Score Distribution")
	counts := make([]int, len(bands))
	for _, c := range result.Candidates {
		counts[bandFor(c.Score)]++
	}
	for i, b := range bands {
		field(b.label+":", counts[i])
	}
	row++

	heading("Job Analysis")
	f.SetCellValue(sheet, cell("A", row), result.JobAnalysis)
	f.SetCellStyle(sheet, cell("A", row), cell("B", row), wrapStyle)
	f.MergeCell(sheet, cell("A", row), cell("B", row))
	f.SetRowHeight(sheet, row, 200)

	return nil
}

func createCandidatesSheet(f *excelize.File, candidates []models.CandidateRecord) error {
	sheet := candidatesSheet
	widths := map[string]float64{"A": 8, "B": 25, "C": 18, "D": 10, "E": 60, "F": 60}
	for col, width := range widths {
		f.SetColWidth(sheet, col, col, width)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder,
	})
	if err != nil {
		return err
	}

	bandStyles := make([]int, len(bands))
	for i, b := range bands {
		style, err := f.NewStyle(&excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{b.color}, Pattern: 1},
			Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
			Border:    thinBorder,
		})
		if err != nil {
			return err
		}
		bandStyles[i] = style
	}

	for col, header := range csvHeader {
		c := fmt.Sprintf("%s1", string(rune('A'+col)))
		f.SetCellValue(sheet, c, header)
		f.SetCellStyle(sheet, c, c, headerStyle)
	}

	for i, candidate := range candidates {
		row := i + 2
		f.SetCellValue(sheet, cell("A", row), i+1)
		f.SetCellValue(sheet, cell("B", row), candidate.Name)
		f.SetCellValue(sheet, cell("C", row), candidate.Mobile)
		f.SetCellValue(sheet, cell("D", row), candidate.Score)
		f.SetCellValue(sheet, cell("E", row), strings.Join(candidate.Questions, "\n"))
		f.SetCellValue(sheet, cell("F", row), candidate.Reasoning)
		f.SetCellStyle(sheet, cell("A", row), cell("F", row), bandStyles[bandFor(candidate.Score)])
	}

	if len(candidates) > 0 {
		if err := f.AutoFilter(sheet, fmt.Sprintf("A1:F%d", len(candidates)+1), []excelize.AutoFilterOptions{}); err != nil {
			return err
		}
	}

	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		XSplit:      0,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
