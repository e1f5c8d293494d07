package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"daily-report/internal/domain"
)

// Counter for generating unique titles
var idCounter atomic.Int64

// ReportOptions allows customizing report fixture creation
type ReportOptions struct {
	ID         int64
	EmployeeID int64
	Name       string
	ReportDate time.Time
	Title      string
	Content    string
}

// NewTestReport creates an unsaved report with sensible defaults
// Pass options to override specific fields
func NewTestReport(opts ...func(*ReportOptions)) *domain.Report {
	n := idCounter.Add(1)
	o := &ReportOptions{
		EmployeeID: 1,
		Name:       "Test Employee",
		ReportDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		Title:      fmt.Sprintf("Report %d", n),
		Content:    "Nothing special happened.",
	}

	for _, opt := range opts {
		opt(o)
	}

	return &domain.Report{
		ID:           o.ID,
		EmployeeID:   o.EmployeeID,
		EmployeeName: o.Name,
		ReportDate:   o.ReportDate,
		Title:        o.Title,
		Content:      o.Content,
	}
}

// WithReportID sets the report id
func WithReportID(id int64) func(*ReportOptions) {
	return func(o *ReportOptions) {
		o.ID = id
	}
}

// WithOwner sets the authoring employee
func WithOwner(id int64, name string) func(*ReportOptions) {
	return func(o *ReportOptions) {
		o.EmployeeID = id
		o.Name = name
	}
}

// WithReportDate sets the report date
func WithReportDate(t time.Time) func(*ReportOptions) {
	return func(o *ReportOptions) {
		o.ReportDate = t
	}
}

// WithTitle sets the title
func WithTitle(title string) func(*ReportOptions) {
	return func(o *ReportOptions) {
		o.Title = title
	}
}

// NewTestReports creates count reports owned by one employee on consecutive days
func NewTestReports(ownerID int64, count int) []*domain.Report {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	reports := make([]*domain.Report, count)
	for i := 0; i < count; i++ {
		reports[i] = NewTestReport(
			WithOwner(ownerID, "Test Employee"),
			WithReportDate(base.AddDate(0, 0, i)),
			WithTitle(fmt.Sprintf("Report %d", i)),
		)
	}
	return reports
}
