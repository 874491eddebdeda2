package generate

import (
	"context"
	"strings"
	"time"

	"github.com/rabbitt-learning/certgen/internal/certificate"
	"github.com/rabbitt-learning/certgen/internal/notify"
	"github.com/rabbitt-learning/certgen/internal/observability/metrics"
	"github.com/rabbitt-learning/certgen/internal/template"
	"github.com/rabbitt-learning/certgen/pkg/logging"
)

// CertificateRenderer renders and persists one certificate.
// certificate.Renderer satisfies this.
type CertificateRenderer interface {
	Render(ctx context.Context, name, testName string) (*certificate.Artifact, error)
}

// Service orchestrates the per-request pipeline:
// Validating -> Rendering -> (Emailing) -> Done, with early exit to a typed
// Failure from any state. Everything runs sequentially; there is no retry
// and no cancellation once a step has started.
type Service struct {
	renderer CertificateRenderer
	email    notify.EmailSender
	metrics  *metrics.CertificateMetrics
	logger   *logging.Logger
	now      func() time.Time
}

// NewService creates the orchestration service.
func NewService(renderer CertificateRenderer, email notify.EmailSender, m *metrics.CertificateMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		renderer: renderer,
		email:    email,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// GenerateRequest is a single generate-only request.
type GenerateRequest struct {
	Name     string
	TestName string
}

// GenerateResult carries the persisted artifact.
type GenerateResult struct {
	Artifact *certificate.Artifact
}

// Generate validates and renders one certificate. The renderer is never
// invoked when validation fails.
func (s *Service) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		s.metrics.ObserveRender("validation_error", 0)
		return nil, validationFailure("Name is required")
	}

	artifact, err := s.render(ctx, name, req.TestName)
	if err != nil {
		return nil, err
	}
	return &GenerateResult{Artifact: artifact}, nil
}

// EmailRequest is a generate-and-email request. Subject and Content override
// the built-in template when non-empty; Template selects a built-in set by
// name.
type EmailRequest struct {
	Name     string
	Email    string
	TestName string
	Template string
	Subject  string
	Content  string
}

// EmailResult carries the artifact and whether delivery succeeded. The
// artifact is persisted before emailing, so on a delivery failure the result
// is returned alongside the error: the caller can still report the URL.
type EmailResult struct {
	Artifact  *certificate.Artifact
	Delivered bool
}

// GenerateAndEmail validates, renders, then emails the certificate with the
// PNG attached. A delivery failure does not invalidate the already-persisted
// artifact; both the result and a delivery Failure are returned.
func (s *Service) GenerateAndEmail(ctx context.Context, req EmailRequest) (*EmailResult, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" {
		s.metrics.ObserveRender("validation_error", 0)
		return nil, validationFailure("Name and Email are required")
	}

	artifact, err := s.render(ctx, name, req.TestName)
	if err != nil {
		return nil, err
	}

	now := s.now()
	vars := map[string]string{
		"name":            name,
		"certificateLink": artifact.ImageURL,
		"date":            now.Format("January 2, 2006"),
		"time":            now.Format("3:04 PM"),
	}

	tmpl := template.Builtin(req.Template)
	subjectTmpl := req.Subject
	if subjectTmpl == "" {
		subjectTmpl = tmpl.Subject
	}
	contentTmpl := req.Content
	if contentTmpl == "" {
		contentTmpl = tmpl.Body
	}

	msg := notify.EmailMessage{
		To:      email,
		ToName:  name,
		Subject: template.Render(subjectTmpl, vars),
		Body:    template.Render(contentTmpl, vars),
		HTML:    template.HTMLBody(contentTmpl, vars),
		Attachments: []notify.Attachment{
			{
				Filename:    certificate.AttachmentFilename(name),
				ContentType: "image/png",
				Data:        artifact.ImageBytes,
			},
		},
	}

	if err := s.email.Send(ctx, msg); err != nil {
		s.metrics.ObserveEmail("delivery_error")
		s.logger.Error("certificate email failed",
			"error", err,
			"to", email,
			"certificate_id", artifact.ID,
		)
		return &EmailResult{Artifact: artifact, Delivered: false}, deliveryFailure(err)
	}

	s.metrics.ObserveEmail("sent")
	s.logger.Info("certificate emailed", "to", email, "certificate_id", artifact.ID)
	return &EmailResult{Artifact: artifact, Delivered: true}, nil
}

// BulkRow is one recipient record from an uploaded tabular input.
type BulkRow struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	TestName string `json:"testName,omitempty"`
}

// BulkRequest processes rows strictly in input order, one at a time.
type BulkRequest struct {
	Rows      []BulkRow
	SendEmail bool
	Template  string
	Subject   string
	Content   string
}

// RowResult is the per-row outcome, in input order.
type RowResult struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	TestName  string `json:"testName,omitempty"`
	ImageURL  string `json:"imageUrl,omitempty"`
	Delivered bool   `json:"delivered"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// Bulk runs the full per-row pipeline over every row sequentially. A row
// failure is recorded and the batch continues; the returned slice preserves
// input order.
func (s *Service) Bulk(ctx context.Context, req BulkRequest) []RowResult {
	results := make([]RowResult, 0, len(req.Rows))

	for i, row := range req.Rows {
		result := RowResult{
			Name:     strings.TrimSpace(row.Name),
			Email:    strings.TrimSpace(row.Email),
			TestName: strings.TrimSpace(row.TestName),
		}

		if req.SendEmail {
			emailResult, err := s.GenerateAndEmail(ctx, EmailRequest{
				Name:     row.Name,
				Email:    row.Email,
				TestName: row.TestName,
				Template: req.Template,
				Subject:  req.Subject,
				Content:  req.Content,
			})
			if emailResult != nil && emailResult.Artifact != nil {
				result.ImageURL = emailResult.Artifact.ImageURL
				result.Delivered = emailResult.Delivered
			}
			if err != nil {
				result.Error = AsFailure(err).Message
			} else {
				result.Success = true
			}
		} else {
			genResult, err := s.Generate(ctx, GenerateRequest{Name: row.Name, TestName: row.TestName})
			if err != nil {
				result.Error = AsFailure(err).Message
			} else {
				result.Success = true
				result.ImageURL = genResult.Artifact.ImageURL
			}
		}

		outcome := "ok"
		if !result.Success {
			outcome = "failed"
			s.logger.Warn("bulk row failed", "row", i, "name", row.Name, "error", result.Error)
		}
		s.metrics.ObserveBulkRow(outcome)

		results = append(results, result)
	}

	return results
}

// render invokes the renderer and classifies failures, observing latency.
func (s *Service) render(ctx context.Context, name, testName string) (*certificate.Artifact, error) {
	start := s.now()
	artifact, err := s.renderer.Render(ctx, name, testName)
	elapsed := s.now().Sub(start).Seconds()
	if err != nil {
		s.metrics.ObserveRender("render_error", elapsed)
		s.logger.Error("certificate render failed", "error", err, "name", name)
		return nil, renderFailure(err)
	}
	s.metrics.ObserveRender("ok", elapsed)
	return artifact, nil
}
