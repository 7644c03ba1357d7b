package controller

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"docqa/models"
	"docqa/services"
)

// RAGController handles the HTTP requests for the document Q&A API. It
// depends on the RAGService to perform the actual pipeline work.
type RAGController struct {
	ragService services.RAGService
}

func NewRAGController(service services.RAGService) *RAGController {
	return &RAGController{
		ragService: service,
	}
}

// UploadPDF is the handler for POST /upload-pdf. It accepts a multipart
// "file" field, runs the ingest pipeline, and returns the generated
// document id.
func (c *RAGController) UploadPDF(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.JSON(http.StatusBadRequest, models.UploadPDFResponse{Error: "missing 'file' field: " + err.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		ctx.JSON(http.StatusBadRequest, models.UploadPDFResponse{Error: "could not open uploaded file"})
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, models.UploadPDFResponse{Error: "could not read uploaded file"})
		return
	}

	docID, chunks, err := c.ragService.IngestPDF(ctx.Request.Context(), content)
	if err != nil {
		status, message := ingestFailure(err)
		ctx.JSON(status, models.UploadPDFResponse{Error: message})
		return
	}

	ctx.JSON(http.StatusOK, models.UploadPDFResponse{
		Message: "PDF successfully processed and stored in vector DB",
		PDFID:   docID,
		Chunks:  chunks,
	})
}

// AskQuestion is the handler for POST /ask-question. The optional document
// id scoping retrieval may come from the body or, as the original API
// allowed, from a pdf_id query parameter.
func (c *RAGController) AskQuestion(ctx *gin.Context) {
	var req models.QuestionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if req.PDFID == "" {
		req.PDFID = ctx.Query("pdf_id")
	}

	result, err := c.ragService.Answer(ctx.Request.Context(), req.Question, req.PDFID)
	if err != nil {
		log.Error().Err(err).Msg("answer pipeline failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve answer"})
		return
	}

	ctx.JSON(http.StatusOK, models.AnswerResponse{
		Answer:     result.Answer,
		SourceDocs: result.SourceDocs,
	})
}

// ListDocuments is the handler for GET /documents.
func (c *RAGController) ListDocuments(ctx *gin.Context) {
	documents, err := c.ragService.ListDocuments(ctx.Request.Context())
	if err != nil {
		log.Error().Err(err).Msg("listing documents failed")
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list documents"})
		return
	}

	ctx.JSON(http.StatusOK, models.DocumentsResponse{
		Count:     len(documents),
		Documents: documents,
	})
}

// Health is the handler for GET /health.
func (c *RAGController) Health(ctx *gin.Context) {
	chunks, err := c.ragService.TotalChunks(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "docqa",
		"chunks":  chunks,
	})
}

// ingestFailure maps pipeline error kinds to a status and caller-facing
// message. Unreadable uploads are the caller's problem; everything else is
// an internal failure with a uniform message.
func ingestFailure(err error) (int, string) {
	var extractionErr *services.ExtractionError
	if errors.As(err, &extractionErr) {
		log.Warn().Err(err).Msg("pdf extraction failed")
		return http.StatusBadRequest, "Failed to process PDF: file is not a readable PDF"
	}
	log.Error().Err(err).Msg("ingest pipeline failed")
	return http.StatusInternalServerError, "Failed to store PDF in vector DB"
}
