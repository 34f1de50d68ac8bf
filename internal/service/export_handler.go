package service

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"connectrpc.com/connect"

	"github.com/raaksss/Monies/internal/export"
	"github.com/raaksss/Monies/internal/storage"
)

// ExportPattern is the route of the workbook download.
const ExportPattern = "GET /export/groups/{id}"

// ExportHandler serves a group's xlsx workbook. It expects the caller identity set
// by middleware.RequireAuthHTTP.
type ExportHandler struct {
	store  storage.GroupStore
	logger *slog.Logger
}

func NewExportHandler(store storage.GroupStore, logger *slog.Logger) *ExportHandler {
	return &ExportHandler{store: store, logger: logger}
}

func (h *ExportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	groupID := r.PathValue("id")
	group, err := ownedGroup(r.Context(), h.store, groupID)
	if err != nil {
		h.fail(w, groupID, err)
		return
	}

	summary := summarize(group)
	var buf bytes.Buffer
	err = export.Write(&buf, export.Report{
		Group:       group,
		Balances:    summary.balances,
		Settlements: summary.plan,
	})
	if err != nil {
		h.fail(w, groupID, err)
		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename(group)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.Warn("Export write interrupted", "group_id", groupID, "error", err)
	}
}

func (h *ExportHandler) fail(w http.ResponseWriter, groupID string, err error) {
	status := http.StatusInternalServerError
	switch connect.CodeOf(connectError(err)) {
	case connect.CodeNotFound:
		status = http.StatusNotFound
	case connect.CodePermissionDenied:
		status = http.StatusForbidden
	case connect.CodeUnauthenticated:
		status = http.StatusUnauthorized
	}
	if status == http.StatusInternalServerError {
		h.logger.Error("Export failed", "group_id", groupID, "error", err)
	}
	http.Error(w, http.StatusText(status), status)
}
