package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"docqa/models"
	"docqa/services"
)

type stubRAGService struct {
	ingestDocID string
	ingestErr   error
	answer      *models.AnswerResult
	answerErr   error
	documents   []models.DocumentInfo
	chunks      int

	gotQuestion string
	gotDocID    string
	gotContent  []byte
}

func (s *stubRAGService) IngestPDF(_ context.Context, content []byte) (string, int, error) {
	s.gotContent = content
	if s.ingestErr != nil {
		return "", 0, s.ingestErr
	}
	return s.ingestDocID, 5, nil
}

func (s *stubRAGService) IngestPDFFile(context.Context, string, string) (int, error) {
	return 0, nil
}

func (s *stubRAGService) Answer(_ context.Context, question, docID string) (*models.AnswerResult, error) {
	s.gotQuestion = question
	s.gotDocID = docID
	return s.answer, s.answerErr
}

func (s *stubRAGService) ListDocuments(context.Context) ([]models.DocumentInfo, error) {
	return s.documents, nil
}

func (s *stubRAGService) TotalChunks(context.Context) (int, error) {
	return s.chunks, nil
}

func newTestRouter(svc services.RAGService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ctrl := NewRAGController(svc)
	router := gin.New()
	router.POST("/upload-pdf", ctrl.UploadPDF)
	router.POST("/ask-question", ctrl.AskQuestion)
	router.GET("/documents", ctrl.ListDocuments)
	router.GET("/health", ctrl.Health)
	return router
}

func multipartPDF(t *testing.T, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "document.pdf")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
	return body, writer.FormDataContentType()
}

func TestUploadPDFSuccess(t *testing.T) {
	svc := &stubRAGService{ingestDocID: "abc-123"}
	router := newTestRouter(svc)

	body, contentType := multipartPDF(t, []byte("%PDF-1.4 fake"))
	req := httptest.NewRequest(http.MethodPost, "/upload-pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp models.UploadPDFResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.PDFID != "abc-123" {
		t.Errorf("expected pdf_id in response, got %q", resp.PDFID)
	}
	if string(svc.gotContent) != "%PDF-1.4 fake" {
		t.Error("service did not receive the uploaded bytes")
	}
}

func TestUploadPDFMissingFile(t *testing.T) {
	router := newTestRouter(&stubRAGService{})

	req := httptest.NewRequest(http.MethodPost, "/upload-pdf", strings.NewReader("not multipart"))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestUploadPDFFailureMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "extraction failure is caller error",
			err:        &services.ExtractionError{Err: errors.New("not a pdf")},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "indexing failure is server error",
			err:        &services.IndexingError{Err: errors.New("store down")},
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(&stubRAGService{ingestErr: tt.err})

			body, contentType := multipartPDF(t, []byte("content"))
			req := httptest.NewRequest(http.MethodPost, "/upload-pdf", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, rec.Code, rec.Body.String())
			}
			var resp models.UploadPDFResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatal(err)
			}
			if resp.Error == "" {
				t.Error("expected an error message in the envelope")
			}
			if resp.PDFID != "" {
				t.Error("failed ingest must not return a pdf_id")
			}
		})
	}
}

func TestAskQuestionScoped(t *testing.T) {
	svc := &stubRAGService{answer: &models.AnswerResult{Answer: "42"}}
	router := newTestRouter(svc)

	payload := `{"question": "what is the answer?", "pdf_id": "doc-7"}`
	req := httptest.NewRequest(http.MethodPost, "/ask-question", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotQuestion != "what is the answer?" || svc.gotDocID != "doc-7" {
		t.Errorf("service called with (%q, %q)", svc.gotQuestion, svc.gotDocID)
	}
	var resp models.AnswerResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Answer != "42" {
		t.Errorf("expected answer in response, got %q", resp.Answer)
	}
}

func TestAskQuestionDocIDFromQueryParam(t *testing.T) {
	svc := &stubRAGService{answer: &models.AnswerResult{Answer: "ok"}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/ask-question?pdf_id=doc-9", strings.NewReader(`{"question": "hi"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.gotDocID != "doc-9" {
		t.Errorf("expected query param doc id, got %q", svc.gotDocID)
	}
}

func TestAskQuestionMissingQuestion(t *testing.T) {
	router := newTestRouter(&stubRAGService{})

	req := httptest.NewRequest(http.MethodPost, "/ask-question", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAskQuestionRetrievalFailure(t *testing.T) {
	svc := &stubRAGService{answerErr: &services.RetrievalError{Err: errors.New("store unreachable")}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/ask-question", strings.NewReader(`{"question": "hi"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestListDocuments(t *testing.T) {
	svc := &stubRAGService{documents: []models.DocumentInfo{
		{PDFID: "a", Chunks: 3},
		{PDFID: "b", Chunks: 7},
	}}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/documents", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var resp models.DocumentsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 2 || len(resp.Documents) != 2 {
		t.Errorf("unexpected listing: %+v", resp)
	}
}

func TestHealth(t *testing.T) {
	router := newTestRouter(&stubRAGService{chunks: 11})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"healthy"`) {
		t.Errorf("unexpected health body: %s", rec.Body.String())
	}
}
