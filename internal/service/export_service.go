package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/bible-studies-api/internal/models"
	appErrors "github.com/noah-isme/bible-studies-api/pkg/errors"
	"github.com/noah-isme/bible-studies-api/pkg/export"
)

var upcomingHeaders = []string{"Date", "Start", "End", "Class", "Lecturer", "Email", "Location", "Status"}

type upcomingLister interface {
	ListUpcoming(ctx context.Context, filter models.UpcomingScheduleFilter) ([]models.UpcomingSchedule, bool, error)
}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders the upcoming schedule table as a file.
type ExportService struct {
	schedules upcomingLister
	renderers map[export.Format]export.Renderer
	logger    *zap.Logger
	now       func() time.Time
}

// NewExportService constructs an ExportService. Nil renderers fall back to the defaults.
func NewExportService(schedules upcomingLister, logger *zap.Logger, csv, pdf export.Renderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		schedules: schedules,
		renderers: map[export.Format]export.Renderer{export.FormatCSV: csv, export.FormatPDF: pdf},
		logger:    logger,
		now:       time.Now,
	}
}

// ExportUpcoming renders upcoming schedules matching filter in the requested format.
func (s *ExportService) ExportUpcoming(ctx context.Context, filter models.UpcomingScheduleFilter, format export.Format) (*ExportFile, error) {
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}

	items, _, err := s.schedules.ListUpcoming(ctx, filter)
	if err != nil {
		return nil, err
	}

	body, err := renderer.Render(upcomingDataset(items))
	if err != nil {
		s.logger.Error("failed to render upcoming schedules", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("upcoming_schedules_%s.%s", s.now().UTC().Format("20060102_150405"), format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

func upcomingDataset(items []models.UpcomingSchedule) export.Dataset {
	rows := make([]map[string]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, map[string]string{
			"Date":     item.ScheduledDate.String(),
			"Start":    item.StartTime.String(),
			"End":      item.EndTime.String(),
			"Class":    item.ClassName,
			"Lecturer": item.LecturerName,
			"Email":    item.LecturerEmail,
			"Location": deref(item.Location),
			"Status":   string(item.Status),
		})
	}
	return export.Dataset{Title: "Upcoming Schedules", Headers: upcomingHeaders, Rows: rows}
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}
