package invoice

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/zombor/invoice-extractor/internal/extraction"
)

// Processor turns a staged file into an extraction result
type Processor interface {
	Process(ctx context.Context, path string) extraction.Result
}

// IDGenerator generates unique IDs for extractions
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Service stages uploads, runs them through the processor and cleans up
type Service struct {
	staging     Staging
	processor   Processor
	history     History
	idGenerator IDGenerator
	timeSource  TimeSource
}

// NewService creates a new Service. history may be nil to disable recording.
func NewService(staging Staging, processor Processor, history History) *Service {
	return NewServiceWithDeps(staging, processor, history, &uuidGenerator{}, &defaultTimeSource{})
}

// NewServiceWithDeps creates a new Service with custom dependencies for testing
func NewServiceWithDeps(staging Staging, processor Processor, history History, idGen IDGenerator, timeSrc TimeSource) *Service {
	return &Service{
		staging:     staging,
		processor:   processor,
		history:     history,
		idGenerator: idGen,
		timeSource:  timeSrc,
	}
}

// Extract stages the upload, extracts it and removes the staged file before
// returning, whatever the outcome. The returned error covers only failures
// around the extraction (bad filename, staging); extraction failures are in
// the Outcome's Result.
func (s *Service) Extract(ctx context.Context, filename string, content io.Reader) (*Outcome, error) {
	cleanFilename, err := SanitizeFilename(filename)
	if err != nil {
		return nil, err
	}

	id := s.idGenerator.Generate()
	start := s.timeSource.Now()

	staged, err := s.staging.Save(cleanFilename, content)
	if err != nil {
		return nil, fmt.Errorf("staging upload: %w", err)
	}
	defer func() {
		if err := s.staging.Delete(staged.Path); err != nil {
			slog.WarnContext(ctx, "Failed to delete staged file", "path", staged.Path, "error", err)
		}
	}()

	result := s.processor.Process(ctx, staged.Path)
	elapsed := s.timeSource.Now().Sub(start)

	slog.InfoContext(ctx, "Extraction result",
		"id", id,
		"filename", cleanFilename,
		"size", staged.Size,
		"kind", result.Kind,
		"duration_ms", elapsed.Milliseconds(),
		"result", result.Message(),
	)

	s.record(ctx, &Record{
		ID:         id,
		Filename:   filename,
		StoredAs:   cleanFilename,
		MIMEType:   result.MIMEType,
		Size:       staged.Size,
		Outcome:    result.Kind,
		JSONValid:  hasJSON(result),
		Error:      errorText(result),
		DurationMS: elapsed.Milliseconds(),
		CreatedAt:  start,
	})

	return &Outcome{
		ID:       id,
		Filename: cleanFilename,
		Result:   result,
	}, nil
}

// record saves to history when enabled; failures never fail the extraction
func (s *Service) record(ctx context.Context, record *Record) {
	if s.history == nil {
		return
	}
	if err := s.history.SaveRecord(record); err != nil {
		slog.ErrorContext(ctx, "Failed to save extraction record", "id", record.ID, "error", err)
	}
}

func hasJSON(result extraction.Result) bool {
	if !result.OK() {
		return false
	}
	_, err := extraction.ExtractJSON(result.Text)
	return err == nil
}

func errorText(result extraction.Result) string {
	if result.OK() {
		return ""
	}
	return result.Message()
}

// GetRecord retrieves an extraction record by ID
func (s *Service) GetRecord(id string) (*Record, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	record, err := s.history.GetRecord(id)
	if err != nil {
		return nil, fmt.Errorf("getting record: %w", err)
	}
	return record, nil
}

// ListRecords returns all extraction records, newest first
func (s *Service) ListRecords() ([]*Record, error) {
	if s.history == nil {
		return nil, ErrHistoryDisabled
	}
	records, err := s.history.ListRecords()
	if err != nil {
		return nil, fmt.Errorf("listing records: %w", err)
	}
	return records, nil
}
