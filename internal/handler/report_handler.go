package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"daily-report/internal/domain"
	"daily-report/internal/web"
)

// ReportHandlerName is the action name the report workflow is registered under.
const ReportHandlerName = "Report"

// Request parameters of the report forms
const (
	paramID      = "id"
	paramDate    = "report_date"
	paramTitle   = "title"
	paramContent = "content"
)

// Flash messages shown on the index after a successful change
const (
	FlashRegistered = "Report registered."
	FlashUpdated    = "Report updated."
)

// View attribute keys
const (
	attrFlash       = "flush"
	attrReports     = "reports"
	attrCount       = "reports_count"
	attrPage        = "page"
	attrPageSize    = "page_size"
	attrPageNumbers = "page_numbers"
	attrReport      = "report"
	attrErrors      = "errors"
	attrEditable    = "editable"
	attrDateInput   = "submitted_date"
)

// ReportService is the per-request service handle used by the workflow
type ReportService interface {
	PageSize() int
	PageOf(ctx context.Context, page int) ([]*domain.Report, error)
	CountAll(ctx context.Context) (int64, error)
	FindByID(ctx context.Context, id int64) (*domain.Report, error)
	Create(ctx context.Context, report *domain.Report) ([]string, error)
	Update(ctx context.Context, report *domain.Report) ([]string, error)
	Close() error
}

// OpenReportService acquires a service handle for one request
type OpenReportService func(ctx context.Context) (ReportService, error)

type reportCommand int

const (
	cmdIndex reportCommand = iota
	cmdEntryNew
	cmdCreate
	cmdShow
	cmdEdit
	cmdUpdate
)

var reportCommands = map[string]reportCommand{
	"index":    cmdIndex,
	"entryNew": cmdEntryNew,
	"create":   cmdCreate,
	"show":     cmdShow,
	"edit":     cmdEdit,
	"update":   cmdUpdate,
}

func parseReportCommand(name string) (reportCommand, error) {
	cmd, ok := reportCommands[name]
	if !ok {
		return 0, fmt.Errorf("report command %q: %w", name, web.ErrRoutingFailed)
	}
	return cmd, nil
}

// changesState reports whether the command requires a valid CSRF token
func (c reportCommand) changesState() bool {
	return c == cmdCreate || c == cmdUpdate
}

// ReportHandler drives the list, create, show and edit workflow of daily reports.
type ReportHandler struct {
	open OpenReportService
}

// NewReportHandler creates a report handler
func NewReportHandler(open OpenReportService) *ReportHandler {
	return &ReportHandler{open: open}
}

// ReportHandlerFactory returns a factory building one handler per request
func ReportHandlerFactory(open OpenReportService) web.HandlerFactory {
	return func() web.Handler {
		return NewReportHandler(open)
	}
}

// Process executes the command named by the request. The service handle is
// opened once and released on every exit path.
func (h *ReportHandler) Process(a *web.Action) error {
	cmd, err := parseReportCommand(a.Route().Command)
	if err != nil {
		return err
	}
	a.MarkRouted()

	if cmd.changesState() && !a.CheckToken() {
		return web.ErrTokenInvalid
	}

	svc, err := h.open(a.Context())
	if err != nil {
		return fmt.Errorf("failed to open report service: %w", err)
	}
	defer func() {
		if cerr := svc.Close(); cerr != nil {
			a.Logger().Warn("failed to release report service", slog.String("error", cerr.Error()))
		}
	}()

	switch cmd {
	case cmdIndex:
		return h.index(a, svc)
	case cmdEntryNew:
		return h.entryNew(a)
	case cmdCreate:
		return h.create(a, svc)
	case cmdShow:
		return h.show(a, svc)
	case cmdEdit:
		return h.edit(a, svc)
	case cmdUpdate:
		return h.update(a, svc)
	default:
		return web.ErrRoutingFailed
	}
}

func (h *ReportHandler) index(a *web.Action, svc ReportService) error {
	ctx := a.Context()
	page := a.ResolvePage()

	reports, err := svc.PageOf(ctx, page)
	if err != nil {
		return fmt.Errorf("failed to list reports: %w", err)
	}
	total, err := svc.CountAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to count reports: %w", err)
	}

	flash, hadFlash := a.Session().TakeFlash()
	if hadFlash {
		a.Request().Put(attrFlash, flash)
	}
	a.Request().Put(attrReports, reports)
	a.Request().Put(attrCount, total)
	a.Request().Put(attrPage, page)
	a.Request().Put(attrPageSize, svc.PageSize())
	a.Request().Put(attrPageNumbers, pageNumbers(total, svc.PageSize()))

	if err := a.Forward(web.ViewReportIndex); err != nil {
		// the flash survives until an index is actually shown
		if hadFlash {
			a.Session().SetFlash(flash)
		}
		return err
	}
	return nil
}

func (h *ReportHandler) entryNew(a *web.Action) error {
	if _, err := a.IssueToken(); err != nil {
		return err
	}
	a.Request().Put(attrReport, &domain.Report{ReportDate: a.Today()})
	return a.Forward(web.ViewReportNew)
}

func (h *ReportHandler) create(a *web.Action, svc ReportService) error {
	employee, ok := a.Employee()
	if !ok {
		return fmt.Errorf("create report without login: %w", web.ErrUnauthorized)
	}

	date, rawDate := reportDate(a)
	report := domain.NewReport(*employee, date, a.Param(paramTitle), a.Param(paramContent))
	messages, err := svc.Create(a.Context(), report)
	if err != nil {
		if errors.Is(err, domain.ErrUnknownEmployee) {
			return fmt.Errorf("%w: %w", web.ErrUnauthorized, err)
		}
		return fmt.Errorf("failed to create report: %w", err)
	}

	if len(messages) > 0 {
		if _, err := a.IssueToken(); err != nil {
			return err
		}
		a.Request().Put(attrReport, report)
		a.Request().Put(attrErrors, messages)
		putDateInput(a, rawDate)
		return a.Forward(web.ViewReportNew)
	}

	a.Logger().Info("report created", slog.Int64("report_id", report.ID))
	a.Session().SetFlash(FlashRegistered)
	return a.Redirect(ReportHandlerName, "index")
}

func (h *ReportHandler) show(a *web.Action, svc ReportService) error {
	report, err := svc.FindByID(a.Context(), reportID(a))
	if err != nil {
		return fmt.Errorf("failed to load report: %w", err)
	}

	employee, _ := a.Employee()
	a.Request().Put(attrReport, report)
	a.Request().Put(attrEditable, report.OwnedBy(employee))
	return a.Forward(web.ViewReportShow)
}

func (h *ReportHandler) edit(a *web.Action, svc ReportService) error {
	report, err := h.ownedReport(a, svc)
	if err != nil {
		return err
	}

	if _, err := a.IssueToken(); err != nil {
		return err
	}
	a.Request().Put(attrReport, report)
	return a.Forward(web.ViewReportEdit)
}

func (h *ReportHandler) update(a *web.Action, svc ReportService) error {
	report, err := h.ownedReport(a, svc)
	if err != nil {
		return err
	}

	date, rawDate := reportDate(a)
	report.ApplyEdit(date, a.Param(paramTitle), a.Param(paramContent))
	messages, err := svc.Update(a.Context(), report)
	if err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}

	if len(messages) > 0 {
		if _, err := a.IssueToken(); err != nil {
			return err
		}
		a.Request().Put(attrReport, report)
		a.Request().Put(attrErrors, messages)
		putDateInput(a, rawDate)
		return a.Forward(web.ViewReportEdit)
	}

	a.Logger().Info("report updated", slog.Int64("report_id", report.ID))
	a.Session().SetFlash(FlashUpdated)
	return a.Redirect(ReportHandlerName, "index")
}

// ownedReport loads the requested report and checks that the logged-in
// employee wrote it. A missing report and a foreign report both end on the
// generic error view.
func (h *ReportHandler) ownedReport(a *web.Action, svc ReportService) (*domain.Report, error) {
	report, err := svc.FindByID(a.Context(), reportID(a))
	if err != nil {
		return nil, fmt.Errorf("failed to load report: %w", err)
	}

	employee, _ := a.Employee()
	if !report.OwnedBy(employee) {
		return nil, fmt.Errorf("report %d: %w", report.ID, web.ErrUnauthorized)
	}
	return report, nil
}

// reportID returns 0 for a missing or malformed id, which no report has.
func reportID(a *web.Action) int64 {
	id, err := strconv.ParseInt(strings.TrimSpace(a.Param(paramID)), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// reportDate returns today for an empty parameter and the zero time for an
// unparsable one, which validation rejects. The trimmed input is returned
// alongside so a rejected form can show what was typed.
func reportDate(a *web.Action) (time.Time, string) {
	raw := strings.TrimSpace(a.Param(paramDate))
	if raw == "" {
		return a.Today(), ""
	}
	date, err := time.Parse(domain.DateLayout, raw)
	if err != nil {
		return time.Time{}, raw
	}
	return date, raw
}

// putDateInput re-exposes a submitted date to a form rendered again after
// validation failed.
func putDateInput(a *web.Action, raw string) {
	if raw != "" {
		a.Request().Put(attrDateInput, raw)
	}
}

// pageNumbers lists the pages of the index, always at least one.
func pageNumbers(total int64, pageSize int) []int {
	pages := 1
	if pageSize > 0 && total > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	numbers := make([]int, pages)
	for i := range numbers {
		numbers[i] = i + 1
	}
	return numbers
}
