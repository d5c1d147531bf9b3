package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/docqa/docqa-be/database"
	"github.com/docqa/docqa-be/service"
	"github.com/docqa/docqa-be/types"
)

// samplePDF is malformed on purpose so extraction exercises the fallback
// heuristics instead of requiring a real rendered document.
const samplePDF = `%PDF-1.4
1 0 obj
<< /Type /Catalog /Pages 2 0 R >>
endobj
4 0 obj
<< /Length 62 >>
stream
BT
/F1 12 Tf
72 720 Td
(Company: TechCorp) Tj
(Annual revenue figures attached) Tj
ET
endstream
endobj
%%EOF`

// cannedProvider satisfies service.AIService with a fixed answer.
type cannedProvider struct {
	answer string
}

func (p *cannedProvider) Name() string { return "canned" }

func (p *cannedProvider) Chat(ctx context.Context, systemPrompt string, messages []types.Message) (string, error) {
	return p.answer, nil
}

func newTestRouter(provider service.AIService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	store := database.NewMemoryStore()
	var providers []service.AIService
	if provider != nil {
		providers = append(providers, provider)
	}
	gateway := service.NewGateway(service.GatewayConfig{}, providers...)
	documents := service.NewDocumentService(
		service.NewPDFService(types.DefaultExtractionConfig),
		nil,
		gateway,
		store,
		store,
		types.DefaultExtractionConfig,
	)

	documentHandler := NewDocumentHandler(documents, "")
	askHandler := NewAskHandler(documents)

	router := gin.New()
	api := router.Group("/api")
	{
		api.POST("/documents", documentHandler.Upload)
		api.POST("/documents/base64", documentHandler.UploadBase64)
		api.GET("/documents", documentHandler.List)
		api.GET("/documents/:id", documentHandler.Get)
		api.GET("/documents/:id/analysis", documentHandler.Analysis)
		api.GET("/documents/:id/chunks", documentHandler.Chunks)
		api.POST("/documents/:id/restructure", documentHandler.Restructure)
		api.DELETE("/documents/:id", documentHandler.Delete)
		api.POST("/ask", askHandler.Ask)
	}
	return router
}

func multipartUpload(t *testing.T, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile failed: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("writing form file failed: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("closing multipart writer failed: %v", err)
	}
	return body, writer.FormDataContentType()
}

func uploadSample(t *testing.T, router *gin.Engine) string {
	t.Helper()
	body, contentType := multipartUpload(t, "contract.pdf", []byte(samplePDF))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("upload status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Status bool                 `json:"status"`
		Data   types.UploadResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding upload response failed: %v", err)
	}
	if resp.Data.DocumentID == "" {
		t.Fatal("upload response has no document_id")
	}
	return resp.Data.DocumentID
}

func TestUpload_Success(t *testing.T) {
	router := newTestRouter(nil)

	body, contentType := multipartUpload(t, "contract.pdf", []byte(samplePDF))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "document_id") {
		t.Errorf("body = %q, missing document_id", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "contract.pdf") {
		t.Errorf("body = %q, missing title", w.Body.String())
	}
}

func TestUpload_RejectsBadRequests(t *testing.T) {
	router := newTestRouter(nil)

	tests := []struct {
		name     string
		filename string
		data     []byte
		want     int
	}{
		{"wrong extension", "notes.txt", []byte(samplePDF), http.StatusBadRequest},
		{"not a pdf", "fake.pdf", []byte("just text"), http.StatusBadRequest},
		{"unextractable", "scan.pdf", []byte("%PDF-1.4\n(ab)\n"), http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartUpload(t, tt.filename, tt.data)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
			req.Header.Set("Content-Type", contentType)
			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestUpload_NoFileField(t *testing.T) {
	router := newTestRouter(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/documents", strings.NewReader("{}"))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUploadBase64(t *testing.T) {
	router := newTestRouter(nil)

	validURI := "data:application/pdf;base64," + base64.StdEncoding.EncodeToString([]byte(samplePDF))
	tests := []struct {
		name string
		body string
		want int
	}{
		{"valid", `{"title":"b64.pdf","data":"` + validURI + `"}`, http.StatusOK},
		{"invalid json", `{"title":`, http.StatusBadRequest},
		{"bad base64", `{"title":"x","data":"data:application/pdf;base64,!!!"}`, http.StatusBadRequest},
		{"missing payload", `{"title":"x","data":"data:application/pdf"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/documents/base64", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestGetDocument(t *testing.T) {
	router := newTestRouter(nil)
	id := uploadSample(t, router)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/documents/"+id, nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "TechCorp") {
		t.Errorf("body = %q, missing extracted text", w.Body.String())
	}
}

func TestGetDocument_NotFound(t *testing.T) {
	router := newTestRouter(nil)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/documents/no-such-id", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDocumentAnalysis(t *testing.T) {
	router := newTestRouter(nil)
	id := uploadSample(t, router)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/documents/"+id+"/analysis", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "document_type") {
		t.Errorf("body = %q, missing document_type", w.Body.String())
	}
}

func TestDeleteDocument(t *testing.T) {
	router := newTestRouter(nil)
	id := uploadSample(t, router)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/api/documents/"+id, nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("delete status = %d, body = %s", w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/documents/"+id, nil)
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete = %d, want 404", w.Code)
	}
}

func TestAsk(t *testing.T) {
	router := newTestRouter(&cannedProvider{answer: "TechCorp signed the contract."})
	id := uploadSample(t, router)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ask",
		strings.NewReader(`{"document_id":"`+id+`","question":"Which company signed?"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "TechCorp signed the contract.") {
		t.Errorf("body = %q, missing answer", w.Body.String())
	}
}

func TestAsk_Validation(t *testing.T) {
	router := newTestRouter(&cannedProvider{answer: "x"})

	tests := []struct {
		name string
		body string
		want int
	}{
		{"invalid json", `{`, http.StatusBadRequest},
		{"missing question", `{"document_id":"abc"}`, http.StatusBadRequest},
		{"missing document id", `{"question":"hi"}`, http.StatusBadRequest},
		{"unknown document", `{"document_id":"nope","question":"hi"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/ask", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			router.ServeHTTP(w, req)

			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestAsk_NoProviderConfigured(t *testing.T) {
	router := newTestRouter(nil)
	id := uploadSample(t, router)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ask",
		strings.NewReader(`{"document_id":"`+id+`","question":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503 (body %s)", w.Code, w.Body.String())
	}
}

func TestRestructureDocument(t *testing.T) {
	router := newTestRouter(&cannedProvider{answer: "CONTRACT SUMMARY\n\nTechCorp agrees to the attached terms."})
	id := uploadSample(t, router)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/documents/"+id+"/restructure", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "CONTRACT SUMMARY") {
		t.Errorf("body = %q, missing restructured text", w.Body.String())
	}
}

func TestListDocuments(t *testing.T) {
	router := newTestRouter(nil)
	uploadSample(t, router)
	uploadSample(t, router)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/documents", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Data []types.ExtractionResult `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding list response failed: %v", err)
	}
	if len(resp.Data) != 2 {
		t.Errorf("listed %d documents, want 2", len(resp.Data))
	}
}

func TestDocumentChunks(t *testing.T) {
	router := newTestRouter(nil)
	id := uploadSample(t, router)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/documents/"+id+"/chunks", nil)
	router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
}
