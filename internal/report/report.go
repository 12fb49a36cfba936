package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/frahmantamala/attendance-management/internal/attendance"
	attendanceDatamodel "github.com/frahmantamala/attendance-management/internal/core/datamodel/attendance"
)

// previewLimit caps the chat preview; platforms reject messages much
// beyond this.
const previewLimit = 3800

const truncationMarker = "\n(content truncated)"

// HoursCalculator measures the worked span of one attendance row, break
// time already deducted.
type HoursCalculator interface {
	WorkedHoursWithBreak(row *attendanceDatamodel.Record) float64
}

// Service renders attendance exports: a capped text preview for chat and a
// full xlsx workbook for download.
type Service struct {
	repo   attendance.Repository
	hours  HoursCalculator
	logger *slog.Logger
}

func NewService(repo attendance.Repository, hours HoursCalculator, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		hours:  hours,
		logger: logger,
	}
}

// TextPreview renders every attendance row as one line, truncating past the
// preview limit with an explicit marker.
func (s *Service) TextPreview(ctx context.Context) (string, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to load attendance rows for preview", "error", err)
		return "", err
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, formatRow(row))
	}
	body := strings.Join(lines, "\n")

	if len(body) > previewLimit {
		cut := previewLimit
		// Names are multi-byte; never cut inside a rune.
		for cut > 0 && !utf8.RuneStart(body[cut]) {
			cut--
		}
		body = body[:cut] + truncationMarker
	}
	return "Attendance report preview:\n" + body, nil
}

func formatRow(row *attendanceDatamodel.Record) string {
	in, out := "-", "-"
	if row.ClockIn != nil {
		in = row.ClockIn.Format("15:04")
	}
	if row.ClockOut != nil {
		out = row.ClockOut.Format("15:04")
	}

	line := fmt.Sprintf("%s %s: %s ~ %s", row.DisplayName, row.WorkDate, in, out)
	if row.OnLeave {
		line += fmt.Sprintf(" (leave %s: %s)", row.LeaveTypeNote, row.LeaveStatus)
	}
	return line
}

var xlsxHeaders = []string{"User ID", "Name", "Date", "Clock In", "Clock Out", "Worked Hours", "On Leave", "Leave Type", "Leave Status", "Leave Description", "Off-site Note"}

// ExportXLSX builds a workbook with one row per attendance record.
func (s *Service) ExportXLSX(ctx context.Context) ([]byte, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		s.logger.Error("failed to load attendance rows for export", "error", err)
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Attendance"
	f.SetSheetName("Sheet1", sheet)

	for i, header := range xlsxHeaders {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return nil, err
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, err
		}
	}

	for i, row := range rows {
		values := []interface{}{
			row.UserID,
			row.DisplayName,
			row.WorkDate,
			formatClock(row.ClockIn),
			formatClock(row.ClockOut),
			s.formatWorkedHours(row),
			row.OnLeave,
			row.LeaveTypeNote,
			row.LeaveStatus,
			row.LeaveDescription,
			row.OffSiteNote,
		}
		for j, value := range values {
			cell, err := excelize.CoordinatesToCellName(j+1, i+2)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		s.logger.Error("failed to serialize xlsx report", "error", err)
		return nil, err
	}

	s.logger.Info("xlsx report generated", "rows", len(rows))

	return buf.Bytes(), nil
}

func formatClock(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02 15:04")
}

func (s *Service) formatWorkedHours(row *attendanceDatamodel.Record) string {
	if row.ClockIn == nil || row.ClockOut == nil {
		return ""
	}
	return fmt.Sprintf("%.2f", s.hours.WorkedHoursWithBreak(row))
}
