package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReport_OwnedBy(t *testing.T) {
	report := &Report{ID: 1, EmployeeID: 9}

	assert.True(t, report.OwnedBy(&Employee{ID: 9}))
	assert.False(t, report.OwnedBy(&Employee{ID: 5}))
	assert.False(t, report.OwnedBy(nil))
}

func TestReport_ApplyEdit(t *testing.T) {
	created := time.Date(2024, 4, 1, 9, 0, 0, 0, time.UTC)
	report := &Report{
		ID:         3,
		EmployeeID: 7,
		ReportDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC),
		Title:      "Old",
		Content:    "Old content",
		CreatedAt:  created,
	}

	newDate := time.Date(2024, 4, 2, 0, 0, 0, 0, time.UTC)
	report.ApplyEdit(newDate, "New", "New content")

	assert.Equal(t, int64(3), report.ID)
	assert.Equal(t, int64(7), report.EmployeeID)
	assert.Equal(t, created, report.CreatedAt)
	assert.Equal(t, newDate, report.ReportDate)
	assert.Equal(t, "New", report.Title)
	assert.Equal(t, "New content", report.Content)
}

func TestReport_FormattedDate(t *testing.T) {
	report := &Report{}
	assert.Equal(t, "", report.FormattedDate())

	report.ReportDate = time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-12-31", report.FormattedDate())
}

func TestNewReport(t *testing.T) {
	date := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	report := NewReport(Employee{ID: 7, Name: "Sato"}, date, "Daily", "All good")

	assert.False(t, report.IsPersisted())
	assert.Equal(t, int64(7), report.EmployeeID)
	assert.Equal(t, "Sato", report.EmployeeName)
	assert.Equal(t, date, report.ReportDate)
}
