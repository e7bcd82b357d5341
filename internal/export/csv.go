package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fmuoria/resume-shortlisting/internal/models"
)

var csvHeader = []string{"Rank", "Name", "Mobile", "Score", "Questions for Interview", "Reasoning"}

// WriteCSV writes one row per candidate in the order given
func WriteCSV(w io.Writer, result models.ShortlistResult) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}

	for i, c := range result.Candidates {
		record := []string{
			strconv.Itoa(i + 1),
			c.Name,
			c.Mobile,
			strconv.FormatFloat(c.Score, 'f', 1, 64),
			strings.Join(c.Questions, "\n"),
			c.Reasoning,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
