package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	chromago "github.com/amikos-tech/chroma-go/pkg/api/v2"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"docqa/config"
	"docqa/controller"
	"docqa/services"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	services.InitPDFLicense(cfg.UnidocLicenseKey)

	// Chroma client and the single shared collection. The collection name is
	// explicit configuration, not a module-level constant.
	chromaClient, err := chromago.NewHTTPClient(chromago.WithBaseURL(cfg.ChromaURL))
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create chroma client")
	}
	defer func() {
		if err := chromaClient.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close chroma client")
		}
	}()

	collection, err := getOrCreateCollection(chromaClient, cfg.CollectionName)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to get or create collection")
	}

	embedder, err := services.NewEmbedder(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create embedder")
	}

	generator, err := services.NewGenerator(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create llm generator")
	}

	indexer := services.NewIndexingService(collection, embedder)
	retriever := services.NewRetriever(collection, embedder)
	composer := services.NewAnswerComposer(generator)
	ragService := services.NewRAGService(cfg, collection, indexer, retriever, composer)
	ragController := controller.NewRAGController(ragService)

	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	if cfg.WatchDir != "" {
		watcher := services.NewWatchService(ragService, indexer)
		go watcher.Watch(watchCtx, cfg.WatchDir)
	}

	if cfg.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.CORSOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept"}
	corsConfig.AllowCredentials = true
	router.Use(cors.New(corsConfig))

	router.GET("/health", ragController.Health)
	router.POST("/upload-pdf", ragController.UploadPDF)
	router.POST("/ask-question", ragController.AskQuestion)
	router.GET("/documents", ragController.ListDocuments)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")
	cancelWatch()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}

// getOrCreateCollection ensures the shared collection exists before the
// server accepts requests.
func getOrCreateCollection(client chromago.Client, name string) (chromago.Collection, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return client.GetOrCreateCollection(
		ctx,
		name,
		chromago.WithCollectionMetadataCreate(
			chromago.NewMetadata(
				chromago.NewStringAttribute("description", "pdf question answering collection"),
				chromago.NewStringAttribute("created_by", "docqa"),
			),
		),
	)
}
