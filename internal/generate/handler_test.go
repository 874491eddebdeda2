package generate

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func postJSON(t *testing.T, handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) generateResponse {
	t.Helper()
	var resp generateResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return resp
}

func TestHandlerGenerateSuccess(t *testing.T) {
	h := NewHandler(newTestService(&spyRenderer{}, &spySender{}), nil)

	rec := postJSON(t, h.Generate, `{"name":"Alice"}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	resp := decodeResponse(t, rec)
	if !resp.Success || resp.ImageURL == "" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("unexpected content type: %s", ct)
	}
}

func TestHandlerGenerateMissingName(t *testing.T) {
	renderer := &spyRenderer{}
	h := NewHandler(newTestService(renderer, &spySender{}), nil)

	rec := postJSON(t, h.Generate, `{"testName":"Go Course"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Success || resp.Error != "Name is required" {
		t.Errorf("unexpected response: %+v", resp)
	}
	if renderer.calls != 0 {
		t.Error("renderer must not run on a rejected request")
	}
}

func TestHandlerGenerateInvalidBody(t *testing.T) {
	h := NewHandler(newTestService(&spyRenderer{}, &spySender{}), nil)

	rec := postJSON(t, h.Generate, `{"name": `)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandlerGenerateRenderFailure(t *testing.T) {
	h := NewHandler(newTestService(&spyRenderer{fail: errors.New("boom")}, &spySender{}), nil)

	rec := postJSON(t, h.Generate, `{"name":"Alice"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Error != "Failed to generate certificate" {
		t.Errorf("unexpected error message: %q", resp.Error)
	}
	if strings.Contains(rec.Body.String(), "boom") {
		t.Error("internal cause leaked into the response body")
	}
}

func TestHandlerGenerateEmailMissingEmail(t *testing.T) {
	h := NewHandler(newTestService(&spyRenderer{}, &spySender{}), nil)

	rec := postJSON(t, h.GenerateEmail, `{"name":"Alice"}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Error != "Name and Email are required" {
		t.Errorf("unexpected error message: %q", resp.Error)
	}
}

func TestHandlerGenerateEmailDeliveryFailureReportsURL(t *testing.T) {
	h := NewHandler(newTestService(&spyRenderer{}, &spySender{fail: errors.New("relay down")}), nil)

	rec := postJSON(t, h.GenerateEmail, `{"name":"Alice","email":"a@x.com"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp.Success {
		t.Error("expected success=false")
	}
	if resp.Error != "Failed to send email" {
		t.Errorf("unexpected error message: %q", resp.Error)
	}
	// The certificate was persisted before the send; the URL must come back.
	if resp.ImageURL == "" {
		t.Error("expected the persisted certificate URL in the failure body")
	}
}

func TestHandlerGenerateBulk(t *testing.T) {
	h := NewHandler(newTestService(&spyRenderer{}, &spySender{}), nil)

	rec := postJSON(t, h.GenerateBulk, `{
		"sendEmail": true,
		"rows": [
			{"name":"A","email":"a@x.com"},
			{"name":"","email":"b@x.com"},
			{"name":"C","email":"c@x.com"}
		]
	}`)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp bulkResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if !resp.Success || resp.Succeeded != 2 || resp.Failed != 1 {
		t.Errorf("unexpected counts: %+v", resp)
	}
	if len(resp.Results) != 3 || resp.Results[1].Success {
		t.Errorf("unexpected results: %+v", resp.Results)
	}
}

func TestHandlerGenerateBulkEmptyRows(t *testing.T) {
	h := NewHandler(newTestService(&spyRenderer{}, &spySender{}), nil)

	rec := postJSON(t, h.GenerateBulk, `{"rows":[]}`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
