package service

import (
	"strings"
	"unicode/utf8"

	"daily-report/internal/domain"
)

const maxTitleLength = 255

// Validation messages, in the order they are reported.
const (
	MsgDateInvalid   = "report date must be a valid date (YYYY-MM-DD)"
	MsgTitleRequired = "title is required"
	MsgTitleTooLong  = "title must be at most 255 characters"
	MsgContentEmpty  = "content is required"
)

// ValidateReport returns the human-readable problems with a report, in a
// stable order. An empty result means the report can be persisted.
func ValidateReport(r *domain.Report) []string {
	errs := make([]string, 0)

	if r.ReportDate.IsZero() {
		errs = append(errs, MsgDateInvalid)
	}

	title := strings.TrimSpace(r.Title)
	if title == "" {
		errs = append(errs, MsgTitleRequired)
	} else if utf8.RuneCountInString(r.Title) > maxTitleLength {
		errs = append(errs, MsgTitleTooLong)
	}

	if strings.TrimSpace(r.Content) == "" {
		errs = append(errs, MsgContentEmpty)
	}

	return errs
}
