package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"

	"daily-report/internal/domain"
	"daily-report/internal/observability"
)

// DefaultPageSize is the number of reports on one index page.
const DefaultPageSize = 15

// EventPublisher receives report lifecycle notifications
type EventPublisher interface {
	PublishReportEvent(ctx context.Context, eventType string, report *domain.Report) error
}

// Report event types
const (
	EventReportCreated = "report.created"
	EventReportUpdated = "report.updated"
)

// RepositoryOpener reserves a repository handle for one unit of work
type RepositoryOpener interface {
	Open(ctx context.Context) (domain.ReportRepository, io.Closer, error)
}

// Provider opens ReportService handles. It is shared by all requests.
type Provider struct {
	opener    RepositoryOpener
	publisher EventPublisher
	pageSize  int
}

// NewProvider creates a service provider. A nil publisher disables events and
// a non-positive page size falls back to DefaultPageSize.
func NewProvider(opener RepositoryOpener, publisher EventPublisher, pageSize int) *Provider {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &Provider{
		opener:    opener,
		publisher: publisher,
		pageSize:  pageSize,
	}
}

// Open acquires a handle. The caller must Close it.
func (p *Provider) Open(ctx context.Context) (*ReportService, error) {
	repo, closer, err := p.opener.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open report service: %w", err)
	}
	return &ReportService{
		repo:      repo,
		closer:    closer,
		publisher: p.publisher,
		pageSize:  p.pageSize,
	}, nil
}

// ReportService implements report queries and commands for one request
type ReportService struct {
	repo      domain.ReportRepository
	closer    io.Closer
	publisher EventPublisher
	pageSize  int
}

// PageSize returns the fixed number of reports per page
func (s *ReportService) PageSize() int {
	return s.pageSize
}

// PageOf returns the reports of a 1-based page, most recent report date first.
// A page whose offset does not fit in an int is past any stored report and
// yields an empty slice without a query.
func (s *ReportService) PageOf(ctx context.Context, page int) ([]*domain.Report, error) {
	if page < 1 {
		page = 1
	}
	if page-1 > math.MaxInt/s.pageSize {
		return []*domain.Report{}, nil
	}
	return s.repo.ListPage(ctx, s.pageSize, (page-1)*s.pageSize)
}

// CountAll returns the number of persisted reports
func (s *ReportService) CountAll(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// FindByID returns domain.ErrReportNotFound when no report has the id
func (s *ReportService) FindByID(ctx context.Context, id int64) (*domain.Report, error) {
	if id <= 0 {
		return nil, domain.ErrReportNotFound
	}
	return s.repo.GetByID(ctx, id)
}

// Create validates and persists a new report. A non-empty message list means
// nothing was written.
func (s *ReportService) Create(ctx context.Context, report *domain.Report) ([]string, error) {
	if errs := ValidateReport(report); len(errs) > 0 {
		return errs, nil
	}

	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}

	s.publish(ctx, EventReportCreated, report)
	return nil, nil
}

// Update validates and persists the mutable fields of a report
func (s *ReportService) Update(ctx context.Context, report *domain.Report) ([]string, error) {
	if errs := ValidateReport(report); len(errs) > 0 {
		return errs, nil
	}

	if err := s.repo.Update(ctx, report); err != nil {
		return nil, err
	}

	s.publish(ctx, EventReportUpdated, report)
	return nil, nil
}

// Close releases the repository handle
func (s *ReportService) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

func (s *ReportService) publish(ctx context.Context, eventType string, report *domain.Report) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishReportEvent(ctx, eventType, report); err != nil {
		observability.FromContext(ctx).Warn("failed to publish report event",
			slog.String("type", eventType),
			slog.Int64("report_id", report.ID),
			slog.String("error", err.Error()))
	}
}
