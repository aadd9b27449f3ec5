package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/radgen/radgen/internal/classifier"
	"github.com/radgen/radgen/internal/models"
	"github.com/radgen/radgen/internal/report"
)

type stubClassifier struct {
	result *models.Classification
	err    error
}

func (s *stubClassifier) Classify([]float32) (*models.Classification, error) {
	return s.result, s.err
}

type stubReports struct {
	text string
	err  error
}

func (s *stubReports) Generate(context.Context, report.Request) (string, string, error) {
	if s.err != nil {
		return "", "", s.err
	}
	return s.text, "stub", nil
}

func newTestHandler(t *testing.T, c Classifier, r ReportGenerator) *Handler {
	t.Helper()
	return New(c, r, t.TempDir(), t.TempDir())
}

func newDefaultHandler(t *testing.T) *Handler {
	t.Helper()
	cls, reports := defaultStubs()
	return newTestHandler(t, cls, reports)
}

func defaultStubs() (*stubClassifier, *stubReports) {
	return &stubClassifier{
			result: &models.Classification{
				Label:      models.LabelNormal,
				Confidence: 0.91,
				Scores:     map[string]float32{models.LabelNormal: 0.91},
			},
		}, &stubReports{
			text: "IMPRESSION: normal chest radiograph.",
		}
}

func pngUpload(t *testing.T, fieldName string) (*bytes.Buffer, string) {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 320, 320))
	for y := 0; y < 320; y++ {
		for x := 0; x < 320; x++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 100, A: 255})
		}
	}
	var imgBuf bytes.Buffer
	if err := png.Encode(&imgBuf, img); err != nil {
		t.Fatal(err)
	}

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile(fieldName, "xray.png")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(imgBuf.Bytes()); err != nil {
		t.Fatal(err)
	}
	if err := writer.WriteField("patient_id", "PX-9"); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}

	return &body, writer.FormDataContentType()
}

func TestHandleAnalyzeUpload(t *testing.T) {
	h := newDefaultHandler(t)

	body, contentType := pngUpload(t, "image")
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.HandleAnalyze(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var session models.AnalysisSession
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	if session.ID == "" {
		t.Error("Expected a session ID")
	}
	if session.Classification == nil || session.Classification.Label != models.LabelNormal {
		t.Errorf("Unexpected classification: %+v", session.Classification)
	}
	if session.ReportText == "" {
		t.Error("Expected report text")
	}
	if session.Patient.PatientID != "PX-9" {
		t.Errorf("Expected patient ID from form, got %q", session.Patient.PatientID)
	}
	if session.ImageWidth != 320 || session.ImageHeight != 320 {
		t.Errorf("Unexpected dimensions %dx%d", session.ImageWidth, session.ImageHeight)
	}
}

func TestHandleAnalyzeAcceptsFileField(t *testing.T) {
	h := newDefaultHandler(t)

	body, contentType := pngUpload(t, "file")
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.HandleAnalyze(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200 for 'file' field, got %d", rec.Code)
	}
}

func TestHandleAnalyzeCorruptImage(t *testing.T) {
	h := newDefaultHandler(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, _ := writer.CreateFormFile("image", "broken.png")
	fmt.Fprint(part, "this is not an image")
	writer.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()

	h.HandleAnalyze(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for corrupt image, got %d", rec.Code)
	}
}

func TestHandleAnalyzeModelUnavailable(t *testing.T) {
	_, reports := defaultStubs()
	h := newTestHandler(t, &stubClassifier{
		err: fmt.Errorf("%w: weight file missing", classifier.ErrModelUnavailable),
	}, reports)

	body, contentType := pngUpload(t, "image")
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.HandleAnalyze(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("Expected 503 for unavailable model, got %d", rec.Code)
	}
}

func TestHandleAnalyzeRemoteServiceError(t *testing.T) {
	cls, _ := defaultStubs()
	h := newTestHandler(t, cls, &stubReports{
		err: fmt.Errorf("%w: HTTP 429", report.ErrRemoteService),
	})

	body, contentType := pngUpload(t, "image")
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.HandleAnalyze(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Errorf("Expected 502 for remote service failure, got %d", rec.Code)
	}
}

func TestHandleAnalyzeMethodNotAllowed(t *testing.T) {
	h := newDefaultHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/api/analyze", nil)
	rec := httptest.NewRecorder()

	h.HandleAnalyze(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("Expected 405, got %d", rec.Code)
	}
}

func TestHandleAnalyzeURLMissing(t *testing.T) {
	h := newDefaultHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(`{"image_url":""}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	h.HandleAnalyze(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("Expected 400 for empty image_url, got %d", rec.Code)
	}
}

func analyzeSession(t *testing.T, h *Handler) models.AnalysisSession {
	t.Helper()

	body, contentType := pngUpload(t, "image")
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	h.HandleAnalyze(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("Analyze failed: %d %s", rec.Code, rec.Body.String())
	}

	var session models.AnalysisSession
	if err := json.Unmarshal(rec.Body.Bytes(), &session); err != nil {
		t.Fatal(err)
	}
	return session
}

func TestHandleSessions(t *testing.T) {
	h := newDefaultHandler(t)
	created := analyzeSession(t, h)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions", nil)
	rec := httptest.NewRecorder()
	h.HandleSessions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	var sessions []models.AnalysisSession
	if err := json.Unmarshal(rec.Body.Bytes(), &sessions); err != nil {
		t.Fatal(err)
	}
	if len(sessions) != 1 || sessions[0].ID != created.ID {
		t.Errorf("Expected the created session in the list, got %+v", sessions)
	}
}

func TestHandleSessionDetail(t *testing.T) {
	h := newDefaultHandler(t)
	created := analyzeSession(t, h)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+created.ID, nil)
	rec := httptest.NewRecorder()
	h.HandleSessionDetail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rec.Code)
	}

	notFound := httptest.NewRequest(http.MethodGet, "/api/sessions/nope", nil)
	rec = httptest.NewRecorder()
	h.HandleSessionDetail(rec, notFound)

	if rec.Code != http.StatusNotFound {
		t.Errorf("Expected 404 for unknown session, got %d", rec.Code)
	}
}

func TestHandleSessionDelete(t *testing.T) {
	h := newDefaultHandler(t)
	created := analyzeSession(t, h)

	req := httptest.NewRequest(http.MethodDelete, "/api/sessions/"+created.ID, nil)
	rec := httptest.NewRecorder()
	h.HandleSessionDetail(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("Expected 204, got %d", rec.Code)
	}

	if _, exists := h.store.Get(created.ID); exists {
		t.Error("Expected session to be deleted")
	}
}

func TestHandleSessionPDF(t *testing.T) {
	h := newDefaultHandler(t)
	created := analyzeSession(t, h)

	req := httptest.NewRequest(http.MethodGet, "/api/sessions/"+created.ID+"/pdf", nil)
	rec := httptest.NewRecorder()
	h.HandleSessionDetail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Expected application/pdf, got %s", ct)
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), "radgen_report_") {
		t.Errorf("Unexpected disposition: %s", rec.Header().Get("Content-Disposition"))
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Error("Expected PDF header bytes in response")
	}
}
