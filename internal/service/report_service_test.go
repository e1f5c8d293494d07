package service

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"daily-report/internal/domain"
	"daily-report/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openService(t *testing.T, repo *testutil.MockReportRepository, pub EventPublisher, pageSize int) (*ReportService, *testutil.MockOpener) {
	t.Helper()
	opener := repo.Opener()
	svc, err := NewProvider(opener, pub, pageSize).Open(context.Background())
	require.NoError(t, err)
	t.Cleanup(func() { _ = svc.Close() })
	return svc, opener
}

func TestProvider_Open(t *testing.T) {
	t.Run("open_and_close_are_balanced", func(t *testing.T) {
		repo := testutil.NewMockReportRepository()
		opener := repo.Opener()

		svc, err := NewProvider(opener, nil, 0).Open(context.Background())
		require.NoError(t, err)
		assert.Equal(t, DefaultPageSize, svc.PageSize())
		assert.False(t, opener.Balanced())

		require.NoError(t, svc.Close())
		assert.True(t, opener.Balanced())
	})

	t.Run("open_error_is_wrapped", func(t *testing.T) {
		opener := &testutil.MockOpener{OpenErr: errors.New("pool exhausted")}

		svc, err := NewProvider(opener, nil, 10).Open(context.Background())
		assert.Nil(t, svc)
		assert.ErrorContains(t, err, "failed to open report service")
	})
}

func TestReportService_PageOf(t *testing.T) {
	repo := testutil.NewMockReportRepository()
	repo.Seed(testutil.NewTestReports(1, 23)...)
	svc, _ := openService(t, repo, nil, 10)
	ctx := context.Background()

	t.Run("third_page_holds_remainder", func(t *testing.T) {
		reports, err := svc.PageOf(ctx, 3)
		require.NoError(t, err)
		assert.Len(t, reports, 3)

		count, err := svc.CountAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(23), count)
	})

	t.Run("first_page_is_most_recent", func(t *testing.T) {
		reports, err := svc.PageOf(ctx, 1)
		require.NoError(t, err)
		require.Len(t, reports, 10)
		assert.Equal(t, "Report 22", reports[0].Title)
		assert.True(t, reports[0].ReportDate.After(reports[9].ReportDate))
	})

	t.Run("non_positive_page_is_first_page", func(t *testing.T) {
		first, err := svc.PageOf(ctx, 1)
		require.NoError(t, err)
		zero, err := svc.PageOf(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, first, zero)
	})

	t.Run("page_past_end_is_empty", func(t *testing.T) {
		reports, err := svc.PageOf(ctx, 4)
		require.NoError(t, err)
		assert.Empty(t, reports)
	})

	t.Run("huge_page_does_not_overflow_offset", func(t *testing.T) {
		var offsets []int
		capture := testutil.NewMockReportRepository()
		capture.ListPageFunc = func(_ context.Context, limit, offset int) ([]*domain.Report, error) {
			offsets = append(offsets, offset)
			return []*domain.Report{}, nil
		}
		bounded, _ := openService(t, capture, nil, 10)

		for _, page := range []int{math.MaxInt, math.MaxInt/10 + 2} {
			reports, err := bounded.PageOf(ctx, page)
			require.NoError(t, err)
			assert.Empty(t, reports)
		}

		_, err := bounded.PageOf(ctx, math.MaxInt/10+1)
		require.NoError(t, err)
		require.Len(t, offsets, 1)
		assert.GreaterOrEqual(t, offsets[0], 0)
	})
}

func TestReportService_FindByID(t *testing.T) {
	repo := testutil.NewMockReportRepository()
	repo.Seed(testutil.NewTestReport(testutil.WithReportID(5)))
	svc, _ := openService(t, repo, nil, 10)

	report, err := svc.FindByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, int64(5), report.ID)

	_, err = svc.FindByID(context.Background(), 6)
	assert.ErrorIs(t, err, domain.ErrReportNotFound)

	_, err = svc.FindByID(context.Background(), 0)
	assert.ErrorIs(t, err, domain.ErrReportNotFound)
}

func TestReportService_Create(t *testing.T) {
	t.Run("valid_report_is_persisted_and_published", func(t *testing.T) {
		repo := testutil.NewMockReportRepository()
		pub := &testutil.MockEventPublisher{}
		svc, _ := openService(t, repo, pub, 10)

		report := domain.NewReport(domain.Employee{ID: 7}, time.Now(), "Daily", "All good")
		errs, err := svc.Create(context.Background(), report)
		require.NoError(t, err)
		assert.Empty(t, errs)
		assert.True(t, report.IsPersisted())
		assert.Equal(t, []testutil.PublishedEvent{{Type: EventReportCreated, ReportID: report.ID}}, pub.Events)
	})

	t.Run("invalid_report_is_not_persisted", func(t *testing.T) {
		repo := testutil.NewMockReportRepository()
		pub := &testutil.MockEventPublisher{}
		svc, _ := openService(t, repo, pub, 10)

		report := domain.NewReport(domain.Employee{ID: 7}, time.Now(), "", "All good")
		errs, err := svc.Create(context.Background(), report)
		require.NoError(t, err)
		assert.Equal(t, []string{MsgTitleRequired}, errs)
		assert.Equal(t, 0, repo.CreateCalls)
		assert.Empty(t, pub.Events)
	})

	t.Run("repository_error_is_returned", func(t *testing.T) {
		repo := testutil.NewMockReportRepository()
		repo.CreateFunc = func(ctx context.Context, report *domain.Report) error {
			return domain.ErrUnknownEmployee
		}
		svc, _ := openService(t, repo, nil, 10)

		report := domain.NewReport(domain.Employee{ID: 99}, time.Now(), "Daily", "All good")
		errs, err := svc.Create(context.Background(), report)
		assert.Nil(t, errs)
		assert.ErrorIs(t, err, domain.ErrUnknownEmployee)
	})

	t.Run("publish_failure_does_not_fail_create", func(t *testing.T) {
		repo := testutil.NewMockReportRepository()
		pub := &testutil.MockEventPublisher{
			PublishFunc: func(ctx context.Context, eventType string, report *domain.Report) error {
				return errors.New("broker down")
			},
		}
		svc, _ := openService(t, repo, pub, 10)

		report := domain.NewReport(domain.Employee{ID: 7}, time.Now(), "Daily", "All good")
		errs, err := svc.Create(context.Background(), report)
		require.NoError(t, err)
		assert.Empty(t, errs)
		assert.Equal(t, 1, repo.CreateCalls)
	})
}

func TestReportService_Update(t *testing.T) {
	t.Run("valid_update", func(t *testing.T) {
		repo := testutil.NewMockReportRepository()
		repo.Seed(testutil.NewTestReport(testutil.WithReportID(3), testutil.WithOwner(9, "Suzuki")))
		pub := &testutil.MockEventPublisher{}
		svc, _ := openService(t, repo, pub, 10)
		ctx := context.Background()

		report, err := svc.FindByID(ctx, 3)
		require.NoError(t, err)
		report.ApplyEdit(time.Date(2024, 2, 2, 0, 0, 0, 0, time.UTC), "Edited", "Edited body")

		errs, err := svc.Update(ctx, report)
		require.NoError(t, err)
		assert.Empty(t, errs)

		stored, err := svc.FindByID(ctx, 3)
		require.NoError(t, err)
		assert.Equal(t, "Edited", stored.Title)
		assert.Equal(t, int64(9), stored.EmployeeID)
		assert.Equal(t, []testutil.PublishedEvent{{Type: EventReportUpdated, ReportID: 3}}, pub.Events)
	})

	t.Run("invalid_update_is_not_persisted", func(t *testing.T) {
		repo := testutil.NewMockReportRepository()
		repo.Seed(testutil.NewTestReport(testutil.WithReportID(3)))
		svc, _ := openService(t, repo, nil, 10)

		report, err := svc.FindByID(context.Background(), 3)
		require.NoError(t, err)
		report.ApplyEdit(time.Time{}, "Edited", "")

		errs, err := svc.Update(context.Background(), report)
		require.NoError(t, err)
		assert.Equal(t, []string{MsgDateInvalid, MsgContentEmpty}, errs)
		assert.Equal(t, 0, repo.UpdateCalls)
	})
}
