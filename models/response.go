package models

// UploadPDFResponse mirrors the upload endpoint's wire format.
type UploadPDFResponse struct {
	Message string `json:"message"`
	PDFID   string `json:"pdf_id,omitempty"`
	Chunks  int    `json:"chunks,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AnswerResponse is the body returned by POST /ask-question.
type AnswerResponse struct {
	Answer     string           `json:"answer"`
	SourceDocs []SourceDocument `json:"source_docs,omitempty"`
}

// DocumentsResponse lists every document currently indexed in the collection.
type DocumentsResponse struct {
	Count     int            `json:"count"`
	Documents []DocumentInfo `json:"documents"`
}
