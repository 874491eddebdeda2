package export

import (
	"encoding/json"
	"net/http"

	"github.com/rabbitt-learning/certgen/internal/generate"
	"github.com/rabbitt-learning/certgen/pkg/logging"
)

// Handler serves the export endpoints. Both take a bulk result list and
// stream back a downloadable file.
type Handler struct {
	archiver *Archiver
	logger   *logging.Logger
}

// NewHandler creates a new export handler.
func NewHandler(archiver *Archiver, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{archiver: archiver, logger: logger}
}

type exportRequest struct {
	Results []generate.RowResult `json:"results"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// CSV handles POST /api/export/csv requests.
func (h *Handler) CSV(w http.ResponseWriter, r *http.Request) {
	results, ok := h.decode(w, r)
	if !ok {
		return
	}

	body := CSV(results)
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="certificates.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

// Archive handles POST /api/export/archive requests.
func (h *Handler) Archive(w http.ResponseWriter, r *http.Request) {
	results, ok := h.decode(w, r)
	if !ok {
		return
	}

	body, err := h.archiver.Build(r.Context(), results)
	if err != nil {
		h.logger.Error("archive export failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to build archive")
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="certificates.zip"`)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) ([]generate.RowResult, bool) {
	var req exportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	if len(req.Results) == 0 {
		writeError(w, http.StatusBadRequest, "No results to export")
		return nil, false
	}
	return req.Results, true
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorResponse{Success: false, Error: message})
}
