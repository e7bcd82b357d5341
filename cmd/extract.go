package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/fmuoria/resume-shortlisting/internal/export"
	"github.com/fmuoria/resume-shortlisting/internal/extraction"
	"github.com/fmuoria/resume-shortlisting/internal/logger"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Parse a saved shortlisting report into structured JSON",
	Long: `Runs the result extractor over a report file produced by the LLM crew and
prints the structured shortlist. Useful for replaying reports offline.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return extract(cmd)
	},
}

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringP("report", "r", "", "path to the report text (required)")
	extractCmd.Flags().IntP("total", "t", 0, "number of resumes the report was generated from")
	extractCmd.Flags().String("xlsx", "", "also write the result as an Excel workbook")
	extractCmd.MarkFlagRequired("report")
}

func extract(cmd *cobra.Command) error {
	logger, err := logger.New(viper.GetBool("log.json"), viper.GetBool("log.debug"))
	if err != nil {
		return fmt.Errorf("creating a logger: %w", err)
	}
	defer logger.Sync()

	reportPath, _ := cmd.Flags().GetString("report")
	total, _ := cmd.Flags().GetInt("total")
	xlsxPath, _ := cmd.Flags().GetString("xlsx")

	raw, err := os.ReadFile(reportPath)
	if err != nil {
		return fmt.Errorf("reading report: %w", err)
	}

	result := extraction.New(logger).Extract(string(raw), total)

	if xlsxPath != "" {
		saved, err := export.SaveXLSX(result, xlsxPath)
		if err != nil {
			return err
		}
		logger.Info("workbook saved", zap.String("path", saved))
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}
