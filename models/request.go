package models

// QuestionRequest is the body of POST /ask-question. PDFID is optional;
// when set, retrieval is scoped to that document's chunks only.
type QuestionRequest struct {
	Question string `json:"question" binding:"required"`
	PDFID    string `json:"pdf_id,omitempty"`
}
