// Package testutil provides shared test utilities, mocks, and fixtures
// for testing the daily-report application.
package testutil

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"daily-report/internal/domain"
)

// Common test errors
var (
	ErrMockNotImplemented = errors.New("mock function not implemented")
)

// MockReportRepository implements domain.ReportRepository for testing.
// Without overrides it behaves like an in-memory table.
type MockReportRepository struct {
	mu sync.RWMutex

	// Function overrides - set these to customize behavior
	CreateFunc   func(ctx context.Context, report *domain.Report) error
	UpdateFunc   func(ctx context.Context, report *domain.Report) error
	GetByIDFunc  func(ctx context.Context, id int64) (*domain.Report, error)
	ListPageFunc func(ctx context.Context, limit, offset int) ([]*domain.Report, error)
	CountFunc    func(ctx context.Context) (int64, error)

	// In-memory storage for simple tests
	Reports map[int64]*domain.Report
	nextID  int64

	// Call tracking
	CreateCalls int
	UpdateCalls int
}

// NewMockReportRepository creates a new MockReportRepository with initialized maps
func NewMockReportRepository() *MockReportRepository {
	return &MockReportRepository{
		Reports: make(map[int64]*domain.Report),
	}
}

// Seed stores reports as if they had been persisted, assigning ids to
// reports that have none.
func (m *MockReportRepository) Seed(reports ...*domain.Report) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, r := range reports {
		if r.ID == 0 {
			m.nextID++
			r.ID = m.nextID
		} else if r.ID > m.nextID {
			m.nextID = r.ID
		}
		m.Reports[r.ID] = clone(r)
	}
}

func (m *MockReportRepository) Create(ctx context.Context, report *domain.Report) error {
	m.mu.Lock()
	m.CreateCalls++
	m.mu.Unlock()

	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, report)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	now := time.Now()
	report.ID = m.nextID
	report.CreatedAt = now
	report.UpdatedAt = now
	m.Reports[report.ID] = clone(report)
	return nil
}

func (m *MockReportRepository) Update(ctx context.Context, report *domain.Report) error {
	m.mu.Lock()
	m.UpdateCalls++
	m.mu.Unlock()

	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, report)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.Reports[report.ID]
	if !ok {
		return domain.ErrReportNotFound
	}
	stored.ReportDate = report.ReportDate
	stored.Title = report.Title
	stored.Content = report.Content
	stored.UpdatedAt = time.Now()
	report.UpdatedAt = stored.UpdatedAt
	return nil
}

func (m *MockReportRepository) GetByID(ctx context.Context, id int64) (*domain.Report, error) {
	if m.GetByIDFunc != nil {
		return m.GetByIDFunc(ctx, id)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	if report, ok := m.Reports[id]; ok {
		return clone(report), nil
	}
	return nil, domain.ErrReportNotFound
}

func (m *MockReportRepository) ListPage(ctx context.Context, limit, offset int) ([]*domain.Report, error) {
	if m.ListPageFunc != nil {
		return m.ListPageFunc(ctx, limit, offset)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	all := make([]*domain.Report, 0, len(m.Reports))
	for _, r := range m.Reports {
		all = append(all, r)
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].ReportDate.Equal(all[j].ReportDate) {
			return all[i].ReportDate.After(all[j].ReportDate)
		}
		return all[i].ID > all[j].ID
	})

	if offset >= len(all) {
		return []*domain.Report{}, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}

	page := make([]*domain.Report, 0, end-offset)
	for _, r := range all[offset:end] {
		page = append(page, clone(r))
	}
	return page, nil
}

func (m *MockReportRepository) Count(ctx context.Context) (int64, error) {
	if m.CountFunc != nil {
		return m.CountFunc(ctx)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	return int64(len(m.Reports)), nil
}

// Opener returns a service.RepositoryOpener handing out this repository
func (m *MockReportRepository) Opener() *MockOpener {
	return &MockOpener{Repo: m}
}

// MockOpener hands out one repository and counts open and close calls
type MockOpener struct {
	mu sync.Mutex

	Repo    domain.ReportRepository
	OpenErr error

	Opened int
	Closed int
}

func (o *MockOpener) Open(ctx context.Context) (domain.ReportRepository, io.Closer, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.OpenErr != nil {
		return nil, nil, o.OpenErr
	}
	o.Opened++
	return o.Repo, closerFunc(func() error {
		o.mu.Lock()
		defer o.mu.Unlock()
		o.Closed++
		return nil
	}), nil
}

// Balanced reports whether every opened handle was closed
func (o *MockOpener) Balanced() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.Opened == o.Closed
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// PublishedEvent records one call to MockEventPublisher
type PublishedEvent struct {
	Type     string
	ReportID int64
}

// MockEventPublisher implements service.EventPublisher for testing
type MockEventPublisher struct {
	mu sync.Mutex

	PublishFunc func(ctx context.Context, eventType string, report *domain.Report) error
	Events      []PublishedEvent
}

func (p *MockEventPublisher) PublishReportEvent(ctx context.Context, eventType string, report *domain.Report) error {
	if p.PublishFunc != nil {
		return p.PublishFunc(ctx, eventType, report)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, PublishedEvent{Type: eventType, ReportID: report.ID})
	return nil
}

func clone(r *domain.Report) *domain.Report {
	c := *r
	return &c
}
