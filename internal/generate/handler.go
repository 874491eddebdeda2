package generate

import (
	"encoding/json"
	"net/http"

	"github.com/rabbitt-learning/certgen/pkg/logging"
)

// Handler handles HTTP requests for certificate generation.
type Handler struct {
	svc    *Service
	logger *logging.Logger
}

// NewHandler creates a new generate handler.
func NewHandler(svc *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

type generateRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	TestName     string `json:"testName"`
	Template     string `json:"template"`
	EmailSubject string `json:"emailSubject"`
	EmailContent string `json:"emailContent"`
}

type generateResponse struct {
	Success  bool   `json:"success"`
	ImageURL string `json:"imageUrl,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Generate handles POST /api/generate requests.
func (h *Handler) Generate(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, generateResponse{Success: false, Error: "Invalid request body"})
		return
	}

	result, err := h.svc.Generate(r.Context(), GenerateRequest{
		Name:     req.Name,
		TestName: req.TestName,
	})
	if err != nil {
		h.writeFailure(w, err, "")
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{Success: true, ImageURL: result.Artifact.ImageURL})
}

// GenerateEmail handles POST /api/generate-email requests.
func (h *Handler) GenerateEmail(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, generateResponse{Success: false, Error: "Invalid request body"})
		return
	}

	result, err := h.svc.GenerateAndEmail(r.Context(), EmailRequest{
		Name:     req.Name,
		Email:    req.Email,
		TestName: req.TestName,
		Template: req.Template,
		Subject:  req.EmailSubject,
		Content:  req.EmailContent,
	})
	if err != nil {
		// The artifact survives a delivery failure; report its URL so the
		// caller can still hand out the certificate.
		imageURL := ""
		if result != nil && result.Artifact != nil {
			imageURL = result.Artifact.ImageURL
		}
		h.writeFailure(w, err, imageURL)
		return
	}

	writeJSON(w, http.StatusOK, generateResponse{Success: true, ImageURL: result.Artifact.ImageURL})
}

type bulkRequest struct {
	Rows         []BulkRow `json:"rows"`
	SendEmail    bool      `json:"sendEmail"`
	Template     string    `json:"template"`
	EmailSubject string    `json:"emailSubject"`
	EmailContent string    `json:"emailContent"`
}

type bulkResponse struct {
	Success   bool        `json:"success"`
	Results   []RowResult `json:"results"`
	Succeeded int         `json:"succeeded"`
	Failed    int         `json:"failed"`
	Error     string      `json:"error,omitempty"`
}

// GenerateBulk handles POST /api/generate-bulk requests.
func (h *Handler) GenerateBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, bulkResponse{Success: false, Error: "Invalid request body"})
		return
	}
	if len(req.Rows) == 0 {
		writeJSON(w, http.StatusBadRequest, bulkResponse{Success: false, Error: "No rows to process"})
		return
	}

	results := h.svc.Bulk(r.Context(), BulkRequest{
		Rows:      req.Rows,
		SendEmail: req.SendEmail,
		Template:  req.Template,
		Subject:   req.EmailSubject,
		Content:   req.EmailContent,
	})

	succeeded := 0
	for _, res := range results {
		if res.Success {
			succeeded++
		}
	}

	writeJSON(w, http.StatusOK, bulkResponse{
		Success:   true,
		Results:   results,
		Succeeded: succeeded,
		Failed:    len(results) - succeeded,
	})
}

// writeFailure translates a pipeline error into a structured response.
// Internal causes are logged server-side only.
func (h *Handler) writeFailure(w http.ResponseWriter, err error, imageURL string) {
	failure := AsFailure(err)
	if failure.Kind != KindValidation {
		h.logger.Error("request failed", "kind", string(failure.Kind), "error", failure.Error())
	}
	writeJSON(w, failure.HTTPStatus(), generateResponse{
		Success:  false,
		Error:    failure.Message,
		ImageURL: imageURL,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
