package services

import (
	"context"
	"encoding/json"
	"fmt"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	chromaembed "github.com/amikos-tech/chroma-go/pkg/embeddings"
	"github.com/rs/zerolog/log"
	lcembeddings "github.com/tmc/langchaingo/embeddings"

	"docqa/models"
)

// Retriever performs similarity search against the shared collection. When a
// document id is given, results are restricted to that document's records by
// an equality filter on the pdf_id metadata field; otherwise the whole
// collection is searched (cross-document retrieval is a deliberate
// capability, useful for questions spanning uploads).
type Retriever struct {
	collection chromago.Collection
	embedder   lcembeddings.Embedder
}

func NewRetriever(collection chromago.Collection, embedder lcembeddings.Embedder) *Retriever {
	return &Retriever{
		collection: collection,
		embedder:   embedder,
	}
}

// Retrieve returns up to k records ranked by the store's similarity
// ordering. No matches (empty collection, or a pdf_id matching nothing)
// yields an empty slice, not an error.
func (r *Retriever) Retrieve(ctx context.Context, query, docID string, k int) ([]models.SourceDocument, error) {
	queryVector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, &RetrievalError{Err: fmt.Errorf("embedding query: %w", err)}
	}

	opts := []chromago.CollectionQueryOption{
		chromago.WithQueryEmbeddings(chromaembed.NewEmbeddingFromFloat32(queryVector)),
		chromago.WithNResults(k),
	}
	if docID != "" {
		opts = append(opts, chromago.WithWhereQuery(chromago.EqString(MetadataPDFID, docID)))
	}

	results, err := r.collection.Query(ctx, opts...)
	if err != nil {
		return nil, &RetrievalError{Err: fmt.Errorf("querying collection: %w", err)}
	}

	documents := []models.SourceDocument{}
	documentGroups := results.GetDocumentsGroups()
	metadataGroups := results.GetMetadatasGroups()
	if len(documentGroups) == 0 {
		return documents, nil
	}

	for i, doc := range documentGroups[0] {
		if doc.ContentString() == "" {
			continue
		}
		var metadataMap map[string]interface{}
		if len(metadataGroups) > 0 && i < len(metadataGroups[0]) {
			metadataMap = metadataToMap(metadataGroups[0][i])
		}
		documents = append(documents, models.SourceDocument{
			Text:     doc.ContentString(),
			Metadata: metadataMap,
		})
	}

	log.Debug().Str("pdf_id", docID).Int("k", k).Int("results", len(documents)).Msg("retrieved chunks")
	return documents, nil
}

// metadataToMap converts chroma's DocumentMetadata to a plain map. The
// metadata type exposes no accessor for its values, so a JSON round trip is
// the supported conversion.
func metadataToMap(metadata chromago.DocumentMetadata) map[string]interface{} {
	if metadata == nil {
		return nil
	}
	jsonBytes, err := json.Marshal(metadata)
	if err != nil {
		log.Warn().Err(err).Msg("could not marshal record metadata")
		return map[string]interface{}{}
	}
	var metadataMap map[string]interface{}
	if err := json.Unmarshal(jsonBytes, &metadataMap); err != nil {
		log.Warn().Err(err).Msg("could not unmarshal record metadata")
		return map[string]interface{}{}
	}
	return metadataMap
}
