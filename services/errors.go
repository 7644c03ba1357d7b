package services

import "fmt"

// The pipeline surfaces every failure as one of the error kinds below so the
// HTTP boundary can map them to a uniform caller-facing envelope while logs
// keep the underlying cause.

// ConfigurationError reports invalid chunking parameters or missing service
// credentials. It should fail fast at startup or first use.
type ConfigurationError struct {
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Reason
}

// ExtractionError reports a source file that could not be read or parsed as
// a PDF.
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed: %v", e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// IndexingError reports an embedding or store-write failure during ingest.
type IndexingError struct {
	Err error
}

func (e *IndexingError) Error() string {
	return fmt.Sprintf("indexing failed: %v", e.Err)
}

func (e *IndexingError) Unwrap() error { return e.Err }

// RetrievalError reports a store-query failure on the answer path.
type RetrievalError struct {
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval failed: %v", e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

// GenerationError reports a language-model invocation failure. The
// orchestrator degrades it to an in-band answer string so the answer
// endpoint always responds.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed: %v", e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
