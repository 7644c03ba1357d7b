package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// WatchService ingests PDF files dropped into a watched directory. Each file
// is indexed under a document id derived from its content hash, so dropping
// the same file again replaces its records instead of duplicating them.
// documentDeleter is the slice of the indexer the watcher needs to drop
// records for files removed from the directory.
type documentDeleter interface {
	DeleteDocument(ctx context.Context, docID string) error
}

type WatchService struct {
	ragService RAGService
	indexer    documentDeleter

	mu     sync.Mutex
	docIDs map[string]string // file path -> document id of last ingest
}

func NewWatchService(ragService RAGService, indexer *IndexingService) *WatchService {
	return &WatchService{
		ragService: ragService,
		indexer:    indexer,
		docIDs:     make(map[string]string),
	}
}

// Watch blocks until ctx is cancelled, ingesting new or modified PDFs in
// dirPath and removing records for deleted ones.
func (s *WatchService) Watch(ctx context.Context, dirPath string) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Error().Err(err).Msg("failed to create file watcher")
		return
	}
	defer watcher.Close()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !isPDFFile(event.Name) {
					continue
				}

				// Editors often write via create+rename, so Create and
				// Write are handled the same.
				if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
					s.ingestFile(ctx, event.Name)
				} else if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
					s.removeFile(ctx, event.Name)
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Error().Err(err).Msg("watcher error")

			case <-ctx.Done():
				return
			}
		}
	}()

	if err := watcher.Add(dirPath); err != nil {
		log.Error().Err(err).Str("dir", dirPath).Msg("failed to watch directory")
		return
	}
	log.Info().Str("dir", dirPath).Msg("watching directory for pdf drops")

	<-ctx.Done()
	log.Info().Msg("watcher shutting down")
}

func (s *WatchService) ingestFile(ctx context.Context, path string) {
	docID, err := fileDocumentID(path)
	if err != nil {
		log.Warn().Err(err).Str("file", path).Msg("could not hash dropped file")
		return
	}

	count, err := s.ragService.IngestPDFFile(ctx, path, docID)
	if err != nil {
		log.Error().Err(err).Str("file", path).Msg("failed to ingest dropped file")
		return
	}

	s.mu.Lock()
	s.docIDs[path] = docID
	s.mu.Unlock()

	log.Info().Str("file", path).Str("pdf_id", docID).Int("chunks", count).Msg("ingested dropped file")
}

func (s *WatchService) removeFile(ctx context.Context, path string) {
	s.mu.Lock()
	docID, ok := s.docIDs[path]
	delete(s.docIDs, path)
	s.mu.Unlock()
	if !ok {
		return
	}

	if err := s.indexer.DeleteDocument(ctx, docID); err != nil {
		log.Error().Err(err).Str("file", path).Msg("failed to remove records for deleted file")
		return
	}
	log.Info().Str("file", path).Str("pdf_id", docID).Msg("removed records for deleted file")
}

func isPDFFile(path string) bool {
	return strings.ToLower(filepath.Ext(path)) == ".pdf"
}

// fileDocumentID derives a stable document id from the file's content.
func fileDocumentID(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}
