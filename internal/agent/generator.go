// Package agent produces shortlisting reports with a two-step crew of LLM
// agents and turns them into structured results.
package agent

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fmuoria/resume-shortlisting/internal/cache"
	"github.com/fmuoria/resume-shortlisting/internal/ingestion"
	"github.com/fmuoria/resume-shortlisting/internal/llm"
	"github.com/fmuoria/resume-shortlisting/internal/logger"
	"github.com/fmuoria/resume-shortlisting/internal/metrics"
)

const (
	tracerName        = "github.com/fmuoria/resume-shortlisting/internal/agent"
	extractionWorkers = 4
)

// Generator writes the free-form shortlisting report for a job description and resume files
type Generator interface {
	Generate(ctx context.Context, jobDescription string, paths []string) (string, error)
}

// ReportCache stores finished reports between requests
type ReportCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, report string) error
}

// TextExtractor reads the text of one resume file
type TextExtractor func(path string) (string, error)

// Option configures a CrewGenerator
type Option func(*CrewGenerator)

// WithCache enables report caching
func WithCache(c ReportCache) Option {
	return func(g *CrewGenerator) { g.cache = c }
}

// WithTextExtractor replaces the document reader
func WithTextExtractor(fn TextExtractor) Option {
	return func(g *CrewGenerator) { g.extractText = fn }
}

// CrewGenerator runs the job analyst and then the resume screener over one LLM client
type CrewGenerator struct {
	client      llm.Client
	cache       ReportCache
	extractText TextExtractor
	logger      *zap.Logger
	tracer      trace.Tracer
}

// NewCrewGenerator creates a generator backed by client
func NewCrewGenerator(client llm.Client, log *zap.Logger, opts ...Option) *CrewGenerator {
	g := &CrewGenerator{
		client:      client,
		extractText: ingestion.ExtractText,
		logger:      logger.OrNop(log).Named("generator"),
		tracer:      otel.Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate reads the resumes, runs both tasks in sequence and returns the combined report.
// Model errors are returned as-is; there is no retry.
func (g *CrewGenerator) Generate(ctx context.Context, jobDescription string, paths []string) (report string, err error) {
	if g.client == nil {
		return "", errors.New("generator has no llm client")
	}

	ctx, span := g.tracer.Start(ctx, "GenerateReport", trace.WithAttributes(
		attribute.Int("resumes", len(paths)),
		attribute.String("model", g.client.Model()),
	))
	defer span.End()

	start := time.Now()
	defer func() {
		metrics.GenerationDuration.Observe(time.Since(start).Seconds())
		if err != nil {
			metrics.GenerationFailures.Inc()
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	texts, err := g.readResumes(ctx, paths)
	if err != nil {
		return "", err
	}

	key := cache.Key(g.client.Model(), jobDescription, texts)
	if cached, ok := g.lookup(ctx, key); ok {
		return cached, nil
	}

	profiles := make([]ingestion.ResumeProfile, len(paths))
	for i, path := range paths {
		profiles[i] = ingestion.BuildResumeProfile(filepath.Base(path), texts[i])
	}

	analysis, err := g.runTask(ctx, "analyze_job_description", buildAnalysisPrompt(jobDescription))
	if err != nil {
		return "", err
	}

	screening, err := g.runTask(ctx, "shortlist_resumes", buildScreeningPrompt(analysis, profiles))
	if err != nil {
		return "", err
	}

	report = composeReport(analysis, screening)
	g.logger.Debug("report generated",
		zap.Int("resumes", len(paths)),
		zap.String("preview", logger.TruncateForLog(report, 200)),
	)

	g.store(ctx, key, report)
	return report, nil
}

// readResumes extracts every file concurrently. Unreadable files become an inline note
// so the screener still sees one entry per upload.
func (g *CrewGenerator) readResumes(ctx context.Context, paths []string) ([]string, error) {
	texts := make([]string, len(paths))

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(extractionWorkers)

	for i, path := range paths {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			text, err := g.extractText(path)
			if err != nil {
				g.logger.Warn("failed to extract resume text",
					zap.String("file", filepath.Base(path)),
					zap.Error(err),
				)
				texts[i] = fmt.Sprintf("[Could not extract text from this file: %s]", extractionFailure(path, err))
				return nil
			}
			texts[i] = text
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("read resumes: %w", err)
	}
	return texts, nil
}

// extractionFailure strips the stored upload path from err. The profile header already names
// the file, and the note must not vary with the per-request directory.
func extractionFailure(path string, err error) string {
	msg := strings.ReplaceAll(err.Error(), path, filepath.Ext(path)+" file")
	return strings.ReplaceAll(msg, filepath.Dir(path)+string(filepath.Separator), "")
}

func (g *CrewGenerator) runTask(ctx context.Context, name, prompt string) (string, error) {
	ctx, span := g.tracer.Start(ctx, name)
	defer span.End()

	g.logger.Info("running task", zap.String("task", name), zap.Int("prompt_chars", len(prompt)))

	out, err := g.client.GenerateContent(ctx, prompt)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("task %s: %w", name, err)
	}
	return out, nil
}

func (g *CrewGenerator) lookup(ctx context.Context, key string) (string, bool) {
	if g.cache == nil {
		return "", false
	}

	report, ok, err := g.cache.Get(ctx, key)
	if err != nil {
		g.logger.Warn("report cache lookup failed", zap.Error(err))
		return "", false
	}
	if !ok {
		metrics.CacheMisses.Inc()
		return "", false
	}

	metrics.CacheHits.Inc()
	g.logger.Info("report served from cache")
	return report, true
}

func (g *CrewGenerator) store(ctx context.Context, key, report string) {
	if g.cache == nil {
		return
	}
	if err := g.cache.Set(ctx, key, report); err != nil {
		g.logger.Warn("failed to cache report", zap.Error(err))
	}
}
