package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"daily-report/internal/domain"
	"daily-report/internal/observability"
)

// Querier is the subset of database/sql shared by *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const reportColumns = `r.id, r.employee_id, e.name, r.report_date, r.title, r.content, r.created_at, r.updated_at`

// ReportRepository implements domain.ReportRepository for PostgreSQL
type ReportRepository struct {
	db Querier
}

// NewReportRepository creates a new PostgreSQL report repository
func NewReportRepository(db Querier) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a new report and fills in its identifier and timestamps
func (r *ReportRepository) Create(ctx context.Context, report *domain.Report) error {
	defer observeQuery("insert", time.Now())

	query := `
		INSERT INTO reports (employee_id, report_date, title, content)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		report.EmployeeID,
		report.ReportDate,
		report.Title,
		report.Content,
	).Scan(&report.ID, &report.CreatedAt, &report.UpdatedAt)
	if IsForeignKeyViolation(err, "reports_employee_id_fkey") {
		return domain.ErrUnknownEmployee
	}
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// Update persists the mutable fields of an existing report
func (r *ReportRepository) Update(ctx context.Context, report *domain.Report) error {
	if !report.IsPersisted() {
		return domain.ErrReportNotCreated
	}
	defer observeQuery("update", time.Now())

	query := `
		UPDATE reports
		SET report_date = $1, title = $2, content = $3, updated_at = NOW()
		WHERE id = $4
		RETURNING updated_at
	`
	err := r.db.QueryRowContext(ctx, query,
		report.ReportDate,
		report.Title,
		report.Content,
		report.ID,
	).Scan(&report.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ErrReportNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}
	return nil
}

// GetByID retrieves a report with its author's name
func (r *ReportRepository) GetByID(ctx context.Context, id int64) (*domain.Report, error) {
	defer observeQuery("select", time.Now())

	query := `
		SELECT ` + reportColumns + `
		FROM reports r
		JOIN employees e ON e.id = r.employee_id
		WHERE r.id = $1
	`
	report, err := scanReport(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrReportNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}
	return report, nil
}

// ListPage retrieves one page of reports, newest report date first
func (r *ReportRepository) ListPage(ctx context.Context, limit, offset int) ([]*domain.Report, error) {
	defer observeQuery("select", time.Now())

	query := `
		SELECT ` + reportColumns + `
		FROM reports r
		JOIN employees e ON e.id = r.employee_id
		ORDER BY r.report_date DESC, r.id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	reports := make([]*domain.Report, 0, limit)
	for rows.Next() {
		report, err := scanReport(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, report)
	}

	return reports, rows.Err()
}

// Count returns the total number of reports
func (r *ReportRepository) Count(ctx context.Context) (int64, error) {
	defer observeQuery("count", time.Now())

	var count int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM reports`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count reports: %w", err)
	}
	return count, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (*domain.Report, error) {
	report := &domain.Report{}
	err := row.Scan(
		&report.ID,
		&report.EmployeeID,
		&report.EmployeeName,
		&report.ReportDate,
		&report.Title,
		&report.Content,
		&report.CreatedAt,
		&report.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return report, nil
}

func observeQuery(operation string, start time.Time) {
	observability.DBQueryDuration.WithLabelValues(operation, "reports").Observe(time.Since(start).Seconds())
}
