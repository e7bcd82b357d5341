package api

import (
	"bytes"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fmuoria/resume-shortlisting/internal/export"
	"github.com/fmuoria/resume-shortlisting/internal/models"
)

const (
	serviceName = "Resume Shortlisting API"

	fieldJobDescription = "job_description"
	fieldResumeFiles    = "resume_files"

	multipartMemory   = 32 << 20
	multipartOverhead = 1 << 20

	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// handleRoot provides API information
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]any{
		"service":     serviceName,
		"version":     s.opts.Version,
		"description": "Shortlist resumes against a job description using a two-agent LLM workflow",
		"endpoints": map[string]string{
			"GET /health":                    "Health check",
			"GET /api/info":                  "Upload limits and capabilities",
			"POST /shortlist-resumes":        "Shortlist uploaded resumes (multipart: job_description, resume_files)",
			"POST /shortlist-resumes/export": "Shortlist and download as xlsx or csv",
			"GET /metrics":                   "Prometheus metrics",
		},
	})
}

// handleHealth provides a health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, models.HealthResponse{
		Status:  "healthy",
		Message: serviceName + " is running",
		Version: s.opts.Version,
	})
}

// handleInfo describes the upload limits
func (s *Server) handleInfo(w http.ResponseWriter, r *http.Request) {
	limits := s.opts.Limits
	s.respondJSON(w, http.StatusOK, models.InfoResponse{
		Service:          serviceName,
		Version:          s.opts.Version,
		MaxFiles:         limits.MaxFiles,
		MaxFileSizeBytes: limits.MaxFileSize,
		MaxFileSizeMB:    limits.MaxFileSize / (1024 * 1024),
		AllowedTypes:     limits.AllowedTypes,
		Features: []string{
			"Job description analysis",
			"Resume scoring (1-10)",
			"Tailored interview questions",
			"Excel and CSV export",
		},
	})
}

// handleShortlist returns the shortlist as JSON
func (s *Server) handleShortlist(w http.ResponseWriter, r *http.Request) {
	result, err := s.shortlist(w, r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respondJSON(w, http.StatusOK, result)
}

// handleExport returns the shortlist as a file download
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	format, opts, err := parseExportQuery(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	result, err := s.shortlist(w, r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	result = export.Apply(result, opts)

	var buf bytes.Buffer
	var contentType string
	switch format {
	case "csv":
		contentType = "text/csv"
		err = export.WriteCSV(&buf, result)
	default:
		contentType = xlsxContentType
		err = export.WriteXLSX(&buf, result)
	}
	if err != nil {
		s.respondError(w, fmt.Errorf("export %s: %w", format, err))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="shortlisted_resumes.%s"`, format))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Warn("failed to write export", zap.Error(err))
	}
}

// shortlist validates the upload, stores the files for this request and runs the shortlister.
// The request directory is removed after the response regardless of the outcome.
func (s *Server) shortlist(w http.ResponseWriter, r *http.Request) (models.ShortlistResult, error) {
	files, jobDescription, err := s.parseUpload(w, r)
	if err != nil {
		return models.ShortlistResult{}, err
	}

	if s.shortlister == nil {
		return models.ShortlistResult{}, &ErrConfiguration{Message: "LLM credentials are not configured on the server"}
	}

	dir, err := s.store.NewRequestDir()
	if err != nil {
		return models.ShortlistResult{}, err
	}
	if !AfterResponse(r.Context(), func() { s.cleanup(dir) }) {
		defer s.cleanup(dir)
	}

	paths := make([]string, 0, len(files))
	for _, fh := range files {
		path, err := s.saveFile(dir, fh)
		if err != nil {
			return models.ShortlistResult{}, err
		}
		paths = append(paths, path)
	}

	s.logger.Info("shortlisting resumes", zap.Int("files", len(paths)))
	return s.shortlister.Shortlist(r.Context(), jobDescription, paths)
}

// parseUpload reads the multipart form and enforces the upload limits
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) ([]*multipart.FileHeader, string, error) {
	limits := s.opts.Limits
	r.Body = http.MaxBytesReader(w, r.Body, int64(limits.MaxFiles)*limits.MaxFileSize+multipartOverhead)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, "", validationError("request", "Request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, "", validationError("request", "Failed to parse multipart form: %v", err)
	}
	if r.MultipartForm != nil {
		form := r.MultipartForm
		AfterResponse(r.Context(), func() { form.RemoveAll() })
	}

	req := models.ShortlistRequest{
		JobDescription: strings.TrimSpace(r.FormValue(fieldJobDescription)),
		FileCount:      len(r.MultipartForm.File[fieldResumeFiles]),
	}
	if err := req.Validate(); err != nil {
		return nil, "", requestValidationError(err)
	}

	files := r.MultipartForm.File[fieldResumeFiles]
	if len(files) > limits.MaxFiles {
		return nil, "", validationError(fieldResumeFiles, "Maximum %d files allowed per request, got %d", limits.MaxFiles, len(files))
	}

	for _, fh := range files {
		ext := strings.ToLower(filepath.Ext(fh.Filename))
		if !slices.Contains(limits.AllowedTypes, ext) {
			return nil, "", validationError(fieldResumeFiles, "File '%s' is not a supported type. Allowed types: %s",
				fh.Filename, strings.Join(limits.AllowedTypes, ", "))
		}
		if fh.Size > limits.MaxFileSize {
			return nil, "", validationError(fieldResumeFiles, "File '%s' exceeds the maximum size of %.1f MB",
				fh.Filename, float64(limits.MaxFileSize)/(1024*1024))
		}
	}

	return files, req.JobDescription, nil
}

func (s *Server) saveFile(dir string, fh *multipart.FileHeader) (string, error) {
	file, err := fh.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	path, err := s.store.SaveUploadedFile(dir, fh.Filename, file)
	if err != nil {
		return "", fmt.Errorf("failed to save file %s: %w", fh.Filename, err)
	}
	s.logger.Debug("saved upload", zap.String("file", fh.Filename), zap.Int64("size", fh.Size))
	return path, nil
}

func (s *Server) cleanup(dir string) {
	if err := s.store.Remove(dir); err != nil {
		s.logger.Warn("failed to clean up request directory", zap.String("dir", dir), zap.Error(err))
	}
}

// parseExportQuery reads format, min_score, sort and order
func parseExportQuery(r *http.Request) (string, export.Options, error) {
	q := r.URL.Query()

	format := strings.ToLower(q.Get("format"))
	if format == "" {
		format = "xlsx"
	}
	if format != "xlsx" && format != "csv" {
		return "", export.Options{}, validationError("format", "format must be 'xlsx' or 'csv'")
	}

	var opts export.Options
	if v := q.Get("min_score"); v != "" {
		score, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return "", export.Options{}, validationError("min_score", "min_score must be a number")
		}
		opts.MinScore = score
	}
	opts.SortBy = strings.ToLower(q.Get("sort"))
	opts.Order = strings.ToLower(q.Get("order"))

	if err := opts.Validate(); err != nil {
		return "", export.Options{}, validationError("query", "%v", err)
	}
	return format, opts, nil
}

// requestValidationError reports the first failed ShortlistRequest rule with a client-facing message
func requestValidationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		switch fieldErrs[0].Field() {
		case "JobDescription":
			return validationError(fieldJobDescription, "Job description cannot be empty")
		case "FileCount":
			return validationError(fieldResumeFiles, "At least one resume file is required")
		}
	}
	return validationError("request", "%v", err)
}
