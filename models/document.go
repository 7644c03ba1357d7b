package models

// Chunk is a contiguous slice of a document's text, the unit of embedding
// and retrieval. Metadata is always non-nil so later merges are safe.
type Chunk struct {
	Index    int
	Text     string
	Metadata map[string]string
}

// SourceDocument represents a retrieved chunk and its origin metadata.
type SourceDocument struct {
	Text     string                 `json:"text"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

// DocumentInfo summarizes one ingested document in the shared collection.
type DocumentInfo struct {
	PDFID  string `json:"pdf_id"`
	Chunks int    `json:"chunks"`
}

// AnswerResult is what the query pipeline produces before it is shaped
// into an HTTP response.
type AnswerResult struct {
	Answer     string
	SourceDocs []SourceDocument
}
