package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"docqa/config"
	"docqa/models"
)

// RAGService is the pipeline orchestrator behind the HTTP boundary. It owns
// no persistent state; the vector store collection is the only long-lived
// owner of chunk and embedding data.
type RAGService interface {
	// IngestPDF processes uploaded PDF content under a freshly generated
	// document id and returns that id with the number of indexed chunks.
	IngestPDF(ctx context.Context, content []byte) (string, int, error)
	// IngestPDFFile ingests a PDF already on disk under the given document
	// id. Used by the drop-directory watcher, which derives deterministic
	// ids so re-dropped files replace their old records.
	IngestPDFFile(ctx context.Context, path, docID string) (int, error)
	// Answer retrieves context for the question (scoped to docID when
	// non-empty) and generates an answer from it.
	Answer(ctx context.Context, question, docID string) (*models.AnswerResult, error)
	// ListDocuments reports every document id present in the collection
	// with its chunk count.
	ListDocuments(ctx context.Context) ([]models.DocumentInfo, error)
	// TotalChunks counts all records in the collection.
	TotalChunks(ctx context.Context) (int, error)
}

// Narrow views of the pipeline components, so the orchestrator depends only
// on the operations it composes.
type chunkIndexer interface {
	Index(ctx context.Context, chunks []models.Chunk, docID string) error
}

type chunkRetriever interface {
	Retrieve(ctx context.Context, query, docID string, k int) ([]models.SourceDocument, error)
}

type answerComposer interface {
	Compose(ctx context.Context, question string, contextChunks []string) (string, error)
}

type ragServiceImpl struct {
	collection   chromago.Collection
	indexer      chunkIndexer
	retriever    chunkRetriever
	composer     answerComposer
	chunkSize    int
	chunkOverlap int
	retrievalK   int
}

// NewRAGService wires the pipeline components together with the configured
// chunking and retrieval parameters.
func NewRAGService(cfg *config.Config, collection chromago.Collection, indexer *IndexingService, retriever *Retriever, composer *AnswerComposer) RAGService {
	return &ragServiceImpl{
		collection:   collection,
		indexer:      indexer,
		retriever:    retriever,
		composer:     composer,
		chunkSize:    cfg.ChunkSize,
		chunkOverlap: cfg.ChunkOverlap,
		retrievalK:   cfg.RetrievalK,
	}
}

func (r *ragServiceImpl) IngestPDF(ctx context.Context, content []byte) (string, int, error) {
	// The upload is transient: written to a temp file for extraction and
	// removed afterwards, never persisted.
	tmpFile, err := os.CreateTemp("", "upload-*.pdf")
	if err != nil {
		return "", 0, &ExtractionError{Err: fmt.Errorf("creating temp file: %w", err)}
	}
	tmpPath := tmpFile.Name()
	defer os.Remove(tmpPath)

	if _, err := tmpFile.Write(content); err != nil {
		tmpFile.Close()
		return "", 0, &ExtractionError{Err: fmt.Errorf("writing temp file: %w", err)}
	}
	if err := tmpFile.Close(); err != nil {
		return "", 0, &ExtractionError{Err: fmt.Errorf("closing temp file: %w", err)}
	}

	docID := uuid.New().String()
	count, err := r.IngestPDFFile(ctx, tmpPath, docID)
	if err != nil {
		return "", 0, err
	}
	return docID, count, nil
}

func (r *ragServiceImpl) IngestPDFFile(ctx context.Context, path, docID string) (int, error) {
	text, err := ExtractPDFText(path)
	if err != nil {
		return 0, err
	}

	chunks, err := ChunkText(text, r.chunkSize, r.chunkOverlap)
	if err != nil {
		return 0, err
	}

	// The only place the document identifier enters the data model.
	stampChunks(chunks, docID)

	if err := r.indexer.Index(ctx, chunks, docID); err != nil {
		return 0, err
	}
	return len(chunks), nil
}

func (r *ragServiceImpl) Answer(ctx context.Context, question, docID string) (*models.AnswerResult, error) {
	retrieved, err := r.retriever.Retrieve(ctx, question, docID, r.retrievalK)
	if err != nil {
		return nil, err
	}

	// Zero retrieved chunks is not a failure: composition proceeds with an
	// empty context block and the template's insufficiency instruction
	// governs the output.
	contextChunks := make([]string, len(retrieved))
	for i, doc := range retrieved {
		contextChunks[i] = doc.Text
	}

	answer, err := r.composer.Compose(ctx, question, contextChunks)
	if err != nil {
		var genErr *GenerationError
		if errors.As(err, &genErr) {
			// The answer endpoint always returns an answer string; model
			// failures are folded into it.
			log.Error().Err(genErr.Unwrap()).Msg("answer generation failed")
			return &models.AnswerResult{
				Answer:     fmt.Sprintf("Error: %v", genErr.Unwrap()),
				SourceDocs: retrieved,
			}, nil
		}
		return nil, err
	}

	return &models.AnswerResult{
		Answer:     answer,
		SourceDocs: retrieved,
	}, nil
}

func (r *ragServiceImpl) ListDocuments(ctx context.Context) ([]models.DocumentInfo, error) {
	results, err := r.collection.Get(ctx)
	if err != nil {
		return nil, &RetrievalError{Err: fmt.Errorf("listing collection records: %w", err)}
	}

	counts := make(map[string]int)
	for _, metadata := range results.GetMetadatas() {
		metadataMap := metadataToMap(metadata)
		if id, ok := metadataMap[MetadataPDFID].(string); ok && id != "" {
			counts[id]++
		}
	}

	documents := make([]models.DocumentInfo, 0, len(counts))
	for id, n := range counts {
		documents = append(documents, models.DocumentInfo{PDFID: id, Chunks: n})
	}
	sort.Slice(documents, func(i, j int) bool { return documents[i].PDFID < documents[j].PDFID })
	return documents, nil
}

func (r *ragServiceImpl) TotalChunks(ctx context.Context) (int, error) {
	count, err := r.collection.Count(ctx)
	if err != nil {
		return 0, &RetrievalError{Err: fmt.Errorf("counting collection records: %w", err)}
	}
	return int(count), nil
}

// stampChunks tags every chunk's metadata with the owning document id.
func stampChunks(chunks []models.Chunk, docID string) {
	for i := range chunks {
		chunks[i].Metadata[MetadataPDFID] = docID
	}
}
