package services

import (
	"context"
	"fmt"
	"sync"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	chromaembed "github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/rs/zerolog/log"
	lcembeddings "github.com/tmc/langchaingo/embeddings"

	"docqa/models"
)

// MetadataPDFID is the metadata key every indexed record carries so
// retrieval can be scoped to a single document. The orchestrator stamps it
// into chunk metadata before indexing; nothing else writes it.
const MetadataPDFID = "pdf_id"

// IndexingService embeds chunks and persists them in the shared collection.
// Indexing a document is an idempotent replace: existing records for the
// same pdf_id are deleted first, so re-ingesting a document refreshes its
// chunks without touching other documents. The mutex serializes writers on
// the one shared collection.
type IndexingService struct {
	collection chromago.Collection
	embedder   lcembeddings.Embedder
	mu         sync.Mutex
}

func NewIndexingService(collection chromago.Collection, embedder lcembeddings.Embedder) *IndexingService {
	return &IndexingService{
		collection: collection,
		embedder:   embedder,
	}
}

// Index embeds every chunk and writes (text, metadata, embedding) records
// under the given document id. All chunks succeed or the whole ingest fails
// with IndexingError; there is no per-chunk partial-success reporting.
func (s *IndexingService) Index(ctx context.Context, chunks []models.Chunk, docID string) error {
	if len(chunks) == 0 {
		log.Warn().Str("pdf_id", docID).Msg("no chunks to index")
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := s.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return &IndexingError{Err: fmt.Errorf("embedding %d chunks: %w", len(chunks), err)}
	}
	if len(vectors) != len(chunks) {
		return &IndexingError{Err: fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(chunks))}
	}

	ids := make([]chromago.DocumentID, len(chunks))
	embs := make([]chromaembed.Embedding, len(chunks))
	metas := make([]chromago.DocumentMetadata, len(chunks))
	for i, chunk := range chunks {
		ids[i] = chromago.DocumentID(fmt.Sprintf("%s-chunk%d", docID, chunk.Index))
		embs[i] = chromaembed.NewEmbeddingFromFloat32(vectors[i])
		metas[i] = chunkMetadata(chunk)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Replace any previous version of this document before adding the new
	// records, keeping re-ingest idempotent.
	if err := s.deleteDocumentLocked(ctx, docID); err != nil {
		return &IndexingError{Err: err}
	}

	err = s.collection.Add(ctx,
		chromago.WithIDs(ids...),
		chromago.WithTexts(texts...),
		chromago.WithEmbeddings(embs...),
		chromago.WithMetadatas(metas...),
	)
	if err != nil {
		return &IndexingError{Err: fmt.Errorf("adding records to collection: %w", err)}
	}

	log.Info().Str("pdf_id", docID).Int("chunks", len(chunks)).Msg("indexed document")
	return nil
}

// DeleteDocument removes every record belonging to docID.
func (s *IndexingService) DeleteDocument(ctx context.Context, docID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.deleteDocumentLocked(ctx, docID); err != nil {
		return &IndexingError{Err: err}
	}
	return nil
}

func (s *IndexingService) deleteDocumentLocked(ctx context.Context, docID string) error {
	where := chromago.EqString(MetadataPDFID, docID)
	if err := s.collection.Delete(ctx, chromago.WithWhereDelete(where)); err != nil {
		return fmt.Errorf("deleting existing records for %s: %w", docID, err)
	}
	return nil
}

func chunkMetadata(chunk models.Chunk) chromago.DocumentMetadata {
	attrs := make([]*chromago.MetaAttribute, 0, len(chunk.Metadata)+1)
	for key, value := range chunk.Metadata {
		attrs = append(attrs, chromago.NewStringAttribute(key, value))
	}
	attrs = append(attrs, chromago.NewIntAttribute("chunk_num", int64(chunk.Index)))
	return chromago.NewDocumentMetadata(attrs...)
}
