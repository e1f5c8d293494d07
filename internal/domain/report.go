package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrReportNotFound   = errors.New("report not found")
	ErrUnknownEmployee  = errors.New("employee does not exist")
	ErrReportNotCreated = errors.New("report has not been persisted")
)

// DateLayout is the wire format of report dates (ISO 8601 calendar date).
const DateLayout = "2006-01-02"

// Report represents one daily report written by an employee
type Report struct {
	ID           int64     `json:"id"`
	EmployeeID   int64     `json:"employee_id"`
	EmployeeName string    `json:"employee_name"`
	ReportDate   time.Time `json:"report_date"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewReport returns an unsaved report owned by the employee.
func NewReport(owner Employee, date time.Time, title, content string) *Report {
	return &Report{
		EmployeeID:   owner.ID,
		EmployeeName: owner.Name,
		ReportDate:   date,
		Title:        title,
		Content:      content,
	}
}

// IsPersisted reports whether the report has been assigned an identifier.
func (r *Report) IsPersisted() bool {
	return r.ID > 0
}

// OwnedBy reports whether the employee wrote the report.
func (r *Report) OwnedBy(e *Employee) bool {
	return e != nil && e.ID == r.EmployeeID
}

// FormattedDate returns the report date in DateLayout, or "" when unset.
func (r *Report) FormattedDate() string {
	if r.ReportDate.IsZero() {
		return ""
	}
	return r.ReportDate.Format(DateLayout)
}

// ApplyEdit overwrites the mutable fields. Identifier, owner and
// timestamps are left untouched.
func (r *Report) ApplyEdit(date time.Time, title, content string) {
	r.ReportDate = date
	r.Title = title
	r.Content = content
}

// ReportRepository defines the interface for report data access
type ReportRepository interface {
	Create(ctx context.Context, report *Report) error
	Update(ctx context.Context, report *Report) error
	GetByID(ctx context.Context, id int64) (*Report, error)
	ListPage(ctx context.Context, limit, offset int) ([]*Report, error)
	Count(ctx context.Context) (int64, error)
}
