package report

import (
	"fmt"
	"net/http"
	"time"

	"github.com/frahmantamala/attendance-management/internal"
	"github.com/frahmantamala/attendance-management/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	service *Service
}

func NewHandler(baseHandler *transport.BaseHandler, service *Service) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		service:     service,
	}
}

// DownloadAttendance handles GET /reports/attendance, streaming the xlsx
// workbook.
func (h *Handler) DownloadAttendance(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.ExportXLSX(r.Context())
	if err != nil {
		h.WriteError(w, http.StatusInternalServerError, "failed to generate report")
		return
	}

	h.Logger.Info("attendance report exported",
		"requested_by", internal.UserIDFromContext(r.Context()),
		"bytes", len(data))

	filename := fmt.Sprintf("attendance-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.Logger.Error("failed to write report response", "error", err)
	}
}
