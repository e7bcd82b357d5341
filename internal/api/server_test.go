package api

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xeipuuv/gojsonschema"

	"github.com/fmuoria/resume-shortlisting/internal/ingestion"
	"github.com/fmuoria/resume-shortlisting/internal/metrics"
	"github.com/fmuoria/resume-shortlisting/internal/models"
)

type fakeShortlister struct {
	mu      sync.Mutex
	result  models.ShortlistResult
	err     error
	jd      string
	paths   []string
	existed []bool
}

func (f *fakeShortlister) Shortlist(ctx context.Context, jobDescription string, paths []string) (models.ShortlistResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jd = jobDescription
	f.paths = paths
	for _, p := range paths {
		_, err := os.Stat(p)
		f.existed = append(f.existed, err == nil)
	}
	if f.err != nil {
		return models.ShortlistResult{}, f.err
	}
	result := f.result
	result.TotalCandidates = len(paths)
	return result, nil
}

func sampleResult() models.ShortlistResult {
	return models.ShortlistResult{
		JobAnalysis: "Senior Go engineer with Kubernetes experience.",
		Candidates: []models.CandidateRecord{
			{Name: "Jane Doe", Mobile: "+15550001", Score: 6.5, Questions: []string{"How do you profile Go code?"}, Reasoning: "Good fit"},
			{Name: "John Smith", Mobile: "+15550002", Score: 8.5, Questions: []string{"Describe a k8s outage?", "Why Go?"}, Reasoning: "Strong fit"},
			{Name: "Emily Chen", Mobile: "+15550003", Score: 3, Questions: []string{"What is a goroutine?"}, Reasoning: "Junior"},
		},
	}
}

type upload struct {
	name    string
	content []byte
}

func multipartBody(t *testing.T, jobDescription string, files ...upload) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField(fieldJobDescription, jobDescription))
	for _, f := range files {
		part, err := mw.CreateFormFile(fieldResumeFiles, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func newTestServer(t *testing.T, shortlister Shortlister, opts Options) (*Server, *ingestion.Store) {
	t.Helper()
	store, err := ingestion.NewStore(t.TempDir(), nil)
	require.NoError(t, err)

	if opts.Limits.MaxFiles == 0 {
		opts.Limits = Limits{MaxFiles: 20, MaxFileSize: 5 << 20, AllowedTypes: []string{".pdf"}}
	}
	if opts.Version == "" {
		opts.Version = "test"
	}
	return NewServer(shortlister, store, opts, nil), store
}

func do(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func postShortlist(t *testing.T, s *Server, path, jobDescription string, files ...upload) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartBody(t, jobDescription, files...)
	req := httptest.NewRequest(http.MethodPost, path, body)
	req.Header.Set("Content-Type", contentType)
	return do(s, req)
}

func schemaPath(t *testing.T, name string) string {
	t.Helper()
	path, err := filepath.Abs(filepath.Join("..", "..", "schemas", name))
	require.NoError(t, err)
	return path
}

func assertMatchesSchema(t *testing.T, schema string, body []byte) {
	t.Helper()
	result, err := gojsonschema.Validate(
		gojsonschema.NewReferenceLoader("file://"+schemaPath(t, schema)),
		gojsonschema.NewBytesLoader(body),
	)
	require.NoError(t, err)
	for _, e := range result.Errors() {
		t.Errorf("schema violation: %s", e)
	}
	assert.True(t, result.Valid())
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	assertMatchesSchema(t, "error_response.schema.json", rec.Body.Bytes())
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, rec.Code, resp.StatusCode)
	return resp
}

func requestDirs(t *testing.T, store *ingestion.Store) []os.DirEntry {
	t.Helper()
	entries, err := os.ReadDir(store.Root())
	require.NoError(t, err)
	return entries
}

func pdf(name string) upload {
	return upload{name: name, content: []byte("%PDF-1.4 resume")}
}

func TestHealth(t *testing.T) {
	s, _ := newTestServer(t, nil, Options{Version: "1.2.3"})

	rec := do(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "Resume Shortlisting API is running", resp.Message)
	assert.Equal(t, "1.2.3", resp.Version)
}

func TestInfoAndRoot(t *testing.T) {
	s, _ := newTestServer(t, nil, Options{})

	rec := do(s, httptest.NewRequest(http.MethodGet, "/api/info", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var info models.InfoResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &info))
	assert.Equal(t, 20, info.MaxFiles)
	assert.Equal(t, int64(5<<20), info.MaxFileSizeBytes)
	assert.Equal(t, int64(5), info.MaxFileSizeMB)
	assert.Equal(t, []string{".pdf"}, info.AllowedTypes)

	rec = do(s, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "POST /shortlist-resumes")

	rec = do(s, httptest.NewRequest(http.MethodGet, "/unknown", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestShortlist_Success(t *testing.T) {
	fake := &fakeShortlister{result: sampleResult()}
	s, store := newTestServer(t, fake, Options{})

	rec := postShortlist(t, s, "/shortlist-resumes", "  Go engineer  ", pdf("jane.pdf"), pdf("John Smith CV.PDF"))
	s.Wait()

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assertMatchesSchema(t, "shortlist_result.schema.json", rec.Body.Bytes())

	var result models.ShortlistResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, 2, result.TotalCandidates)
	assert.Len(t, result.Candidates, 3)

	assert.Equal(t, "Go engineer", fake.jd)
	require.Len(t, fake.paths, 2)
	assert.Equal(t, []bool{true, true}, fake.existed)
	assert.Equal(t, ".pdf", filepath.Ext(fake.paths[1]))

	assert.Empty(t, requestDirs(t, store), "request directory must be removed after the response")
}

func TestShortlist_ValidationErrors(t *testing.T) {
	many := make([]upload, 21)
	for i := range many {
		many[i] = pdf(fmt.Sprintf("resume_%d.pdf", i))
	}

	tests := []struct {
		name   string
		jd     string
		files  []upload
		detail string
	}{
		{name: "empty job description", jd: "   ", files: []upload{pdf("a.pdf")}, detail: "Job description cannot be empty"},
		{name: "no files", jd: "Go engineer", detail: "At least one resume file is required"},
		{name: "empty description reported before missing files", jd: "", detail: "Job description cannot be empty"},
		{name: "too many files", jd: "Go engineer", files: many, detail: "Maximum 20 files allowed per request, got 21"},
		{name: "unsupported type", jd: "Go engineer", files: []upload{pdf("a.pdf"), {name: "b.docx", content: []byte("x")}}, detail: "File 'b.docx' is not a supported type"},
		{name: "file too large", jd: "Go engineer", files: []upload{{name: "big.pdf", content: bytes.Repeat([]byte("a"), 5<<20+1)}}, detail: "File 'big.pdf' exceeds the maximum size of 5.0 MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeShortlister{result: sampleResult()}
			s, store := newTestServer(t, fake, Options{})

			rec := postShortlist(t, s, "/shortlist-resumes", tt.jd, tt.files...)
			s.Wait()

			require.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, "validation_error", resp.Error)
			assert.Contains(t, resp.Detail, tt.detail)

			assert.Nil(t, fake.paths, "shortlister must not run")
			assert.Empty(t, requestDirs(t, store))
		})
	}
}

func TestShortlist_NotConfigured(t *testing.T) {
	s, store := newTestServer(t, nil, Options{})

	rec := postShortlist(t, s, "/shortlist-resumes", "Go engineer", pdf("a.pdf"))
	s.Wait()

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "configuration_error", resp.Error)
	assert.Contains(t, resp.Detail, "credentials")
	assert.Empty(t, requestDirs(t, store))
}

func TestShortlist_InternalErrorHidesDetails(t *testing.T) {
	fake := &fakeShortlister{err: errors.New("generate report: upstream quota exceeded for key abc")}
	s, store := newTestServer(t, fake, Options{})

	rec := postShortlist(t, s, "/shortlist-resumes", "Go engineer", pdf("a.pdf"))
	s.Wait()

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "internal_error", resp.Error)
	assert.Equal(t, internalErrorDetail, resp.Detail)
	assert.NotContains(t, rec.Body.String(), "quota")

	assert.Equal(t, []bool{true}, fake.existed)
	assert.Empty(t, requestDirs(t, store))
}

type panickingShortlister struct{}

func (panickingShortlister) Shortlist(context.Context, string, []string) (models.ShortlistResult, error) {
	panic("extractor blew up")
}

func TestShortlist_PanicStillCleansUp(t *testing.T) {
	s, store := newTestServer(t, panickingShortlister{}, Options{})

	assert.Panics(t, func() {
		postShortlist(t, s, "/shortlist-resumes", "Go engineer", pdf("a.pdf"))
	})
	s.Wait()

	assert.Empty(t, requestDirs(t, store))
}

func TestExport_CSV(t *testing.T) {
	fake := &fakeShortlister{result: sampleResult()}
	s, _ := newTestServer(t, fake, Options{})

	rec := postShortlist(t, s, "/shortlist-resumes/export?format=csv&min_score=5&sort=name&order=asc", "Go engineer", pdf("a.pdf"))
	s.Wait()

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="shortlisted_resumes.csv"`, rec.Header().Get("Content-Disposition"))

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Jane Doe", records[1][1])
	assert.Equal(t, "John Smith", records[2][1])
}

func TestExport_XLSXDefault(t *testing.T) {
	fake := &fakeShortlister{result: sampleResult()}
	s, _ := newTestServer(t, fake, Options{})

	rec := postShortlist(t, s, "/shortlist-resumes/export", "Go engineer", pdf("a.pdf"))
	s.Wait()

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")), "xlsx is a zip archive")
}

func TestExport_InvalidQuery(t *testing.T) {
	tests := []struct {
		query string
		field string
	}{
		{query: "format=pdf", field: "format must be"},
		{query: "min_score=high", field: "min_score must be a number"},
		{query: "sort=mobile", field: "sort"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			fake := &fakeShortlister{result: sampleResult()}
			s, _ := newTestServer(t, fake, Options{})

			rec := postShortlist(t, s, "/shortlist-resumes/export?"+tt.query, "Go engineer", pdf("a.pdf"))
			s.Wait()

			require.Equal(t, http.StatusBadRequest, rec.Code)
			resp := decodeError(t, rec)
			assert.Contains(t, resp.Detail, tt.field)
			assert.Nil(t, fake.paths)
		})
	}
}

func TestCORSAndRequestID(t *testing.T) {
	s, _ := newTestServer(t, nil, Options{})

	rec := do(s, httptest.NewRequest(http.MethodOptions, "/shortlist-resumes", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(requestIDHeader, "req-42")
	rec = do(s, req)
	assert.Equal(t, "req-42", rec.Header().Get(requestIDHeader))
}

func TestRateLimit(t *testing.T) {
	s, _ := newTestServer(t, nil, Options{RateLimit: 1, RateBurst: 1})
	router := s.Router()

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	assert.Equal(t, http.StatusOK, get("/api/info").Code)

	rejected := metrics.HTTPRequests.WithLabelValues("/api/info", "429")
	before := testutil.ToFloat64(rejected)

	rec := get("/api/info")
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "1", rec.Header().Get("Retry-After"))
	assert.Equal(t, "rate_limited", decodeError(t, rec).Error)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))
	assert.Equal(t, before+1, testutil.ToFloat64(rejected))

	assert.Equal(t, http.StatusOK, get("/health").Code)
}

func TestMetricsEndpoint(t *testing.T) {
	s, _ := newTestServer(t, nil, Options{})

	do(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	rec := do(s, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `shortlist_http_requests_total{code="200",route="/health"}`)
}

func TestAfterResponse_WithoutHookList(t *testing.T) {
	assert.False(t, AfterResponse(context.Background(), func() {}))
}

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "/health", routeLabel(httptest.NewRequest(http.MethodGet, "/health", nil)))
	assert.Equal(t, "other", routeLabel(httptest.NewRequest(http.MethodGet, "/wp-admin", nil)))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(fmt.Errorf("wrapped: %w", &ErrValidation{Field: "f", Message: "m"})))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(&ErrConfiguration{Message: "m"}))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
	assert.True(t, strings.HasPrefix((&ErrValidation{Field: "f", Message: "m"}).Error(), "validation error"))
}
