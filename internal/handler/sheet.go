package handler

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"

	"github.com/dukerupert/pointlog/internal/progress"
	"github.com/dukerupert/pointlog/internal/sheet"
)

const maxUploadBytes = 10 << 20

// Export downloads the ledger as an xlsx workbook for offline editing.
func (h *TaskHandler) Export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	if err := sheet.Export(&buf, h.engine.ListTasks(r.Context())); err != nil {
		h.logger.Error("export workbook", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export workbook")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="pointlog-%s.xlsx"`, h.engine.Today()))
	w.Write(buf.Bytes())
}

// Import applies a workbook produced by Export and edited by the user.
func (h *TaskHandler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, _, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	prior, edited, err := sheet.Import(file)
	if err != nil {
		var verr *progress.ValidationError
		switch {
		case errors.Is(err, sheet.ErrNoSnapshot):
			writeError(w, http.StatusBadRequest, "workbook was not exported by pointlog")
		case errors.As(err, &verr):
			writeError(w, http.StatusBadRequest, err.Error())
		default:
			writeError(w, http.StatusBadRequest, "invalid workbook")
		}
		return
	}
	h.applyBulkEdit(w, r, prior, edited)
}
