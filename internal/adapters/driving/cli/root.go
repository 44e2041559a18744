// Package cli implements the cnteval command-line interface.
//
// The root command wires the driven adapters (config, prompts, vector
// store, AI providers, literature gateway) into the core services once
// per invocation. Commands guard against services that could not be
// wired, so a partially configured installation still runs the
// commands it can.
package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/cnt-labs/cnteval-cli/internal/adapters/driven/ai"
	archivefs "github.com/cnt-labs/cnteval-cli/internal/adapters/driven/archive/fs"
	"github.com/cnt-labs/cnteval-cli/internal/adapters/driven/config/file"
	"github.com/cnt-labs/cnteval-cli/internal/adapters/driven/vectorstore/memory"
	"github.com/cnt-labs/cnteval-cli/internal/adapters/driven/vectorstore/sqlite"
	"github.com/cnt-labs/cnteval-cli/internal/chunker"
	"github.com/cnt-labs/cnteval-cli/internal/connectors/scienceon"
	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
	"github.com/cnt-labs/cnteval-cli/internal/core/ports/driven"
	"github.com/cnt-labs/cnteval-cli/internal/core/ports/driving"
	"github.com/cnt-labs/cnteval-cli/internal/core/services"
	"github.com/cnt-labs/cnteval-cli/internal/logger"
)

// version is set from the build via Execute.
var version = "dev"

// Persistent flags.
var (
	verbose   bool
	configDir string
)

// Services wired by initServices. Commands must nil-check before use.
var (
	configStore       *file.ConfigStore
	promptStore       *file.PromptStore
	vectorStore       driven.VectorStore
	storeCloser       io.Closer
	ingestService     driving.IngestService
	retrievalService  driving.RetrievalService
	evaluationService driving.EvaluationService
	literatureService driven.LiteratureService
)

var rootCmd = &cobra.Command{
	Use:   "cnteval",
	Short: "Construction technology certification evaluator",
	Long: `cnteval evaluates new construction technology submissions for
certification. It indexes parsed submission documents into a local
vector store and runs a two-stage LLM-judged review: stage 1 scores
novelty and progressiveness, stage 2 scores field applicability.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		logger.SetVerbose(verbose)
		return initServices()
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		closeServices()
	},
}

// Execute runs the root command with the given build version.
func Execute(v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "configuration directory (default ~/.cnteval)")
}

// initServices wires the adapter stack into the core services.
// Only the config and prompt stores are mandatory; anything else that
// cannot be wired is logged and left nil for commands to guard.
func initServices() error {
	var err error

	configStore, err = file.NewConfigStore(configDir)
	if err != nil {
		return err
	}
	promptStore, err = file.NewPromptStore(configStore.GetString("prompts.dir"))
	if err != nil {
		return err
	}

	initVectorStore()
	initLiterature()
	initCoreServices()
	return nil
}

// initVectorStore opens the SQLite chunk index, falling back to an
// in-memory store when the database cannot be opened.
func initVectorStore() {
	store, err := sqlite.NewStore(configStore.GetString("storage.data_dir"))
	if err != nil {
		logger.Warn("SQLite store unavailable (%v), using in-memory store", err)
		vectorStore = memory.NewStore()
		return
	}
	vectorStore = store
	storeCloser = store
}

// initCoreServices builds the ingest, retrieval and evaluation
// services from the configured AI providers.
func initCoreServices() {
	embedSettings := loadEmbeddingSettings()
	embedSvc, err := ai.CreateEmbeddingService(embedSettings)
	if err != nil {
		logger.Warn("Embedding provider not usable: %v", err)
	}
	if embedSvc == nil {
		logger.Debug("No embedding provider configured")
		return
	}

	embedder := services.NewBatchEmbedder(embedSvc)
	retrieval := services.NewRetrievalService(embedder, vectorStore)
	retrievalService = retrieval

	ck, err := chunker.New(chunkerOptions()...)
	if err != nil {
		logger.Warn("Invalid chunking configuration: %v", err)
		return
	}

	ingestOpts := []services.IngestOption{}
	if archive, err := archivefs.NewStore(configStore.GetString("archive.dir")); err == nil {
		ingestOpts = append(ingestOpts, services.WithArchive(archive))
	} else {
		logger.Warn("Archive unavailable: %v", err)
	}
	ingestService = services.NewIngestService(ck, embedder, vectorStore, ingestOpts...)

	llmSvc, err := ai.CreateLLMService(loadLLMSettings())
	if err != nil {
		logger.Warn("Judgment provider not usable: %v", err)
		return
	}
	if llmSvc == nil {
		logger.Debug("No judgment provider configured")
		return
	}

	evalOpts := []services.EvaluatorOption{}
	if k := configStore.GetInt("evaluation.retrieval_k"); k > 0 {
		evalOpts = append(evalOpts, services.WithRetrievalK(k))
	}
	if threshold := configStore.GetFloat("evaluation.pass_threshold"); threshold > 0 {
		evalOpts = append(evalOpts, services.WithPassThreshold(threshold))
	}
	if literatureService != nil {
		evalOpts = append(evalOpts, services.WithLiterature(literatureService))
	}

	evaluator := services.NewCriterionEvaluator(retrieval, llmSvc, promptStore, evalOpts...)

	runnerOpts := []services.RunnerOption{}
	if cutoff := configStore.GetFloat("evaluation.overall_cutoff"); cutoff > 0 {
		runnerOpts = append(runnerOpts, services.WithOverallCutoff(cutoff))
	}
	evaluationService = services.NewEvaluationRunner(evaluator, runnerOpts...)
}

// initLiterature wires the prior-art gateway when credentials exist.
// The evaluator tolerates its absence, so failures only log.
func initLiterature() {
	cfg := scienceon.Config{
		APIKey:     configStore.GetString("literature.api_key"),
		ClientID:   configStore.GetString("literature.client_id"),
		MACAddress: configStore.GetString("literature.mac_address"),
		BaseURL:    configStore.GetString("literature.base_url"),
	}

	var tokens driven.TokenProvider
	if static := configStore.GetString("literature.token"); static != "" {
		tokens = scienceon.NewStaticTokenProvider(static)
	} else if cfg.ClientID != "" {
		provider, err := scienceon.NewGatewayTokenProvider(cfg)
		if err != nil {
			logger.Debug("Literature gateway not configured: %v", err)
			return
		}
		tokens = provider
	} else {
		logger.Debug("Literature gateway not configured")
		return
	}

	client, err := scienceon.NewClient(cfg, tokens)
	if err != nil {
		logger.Warn("Literature gateway unavailable: %v", err)
		return
	}
	literatureService = client
}

// chunkerOptions reads chunking overrides from config.
func chunkerOptions() []chunker.Option {
	var opts []chunker.Option
	if size := configStore.GetInt("chunking.size"); size > 0 {
		opts = append(opts, chunker.WithSize(size))
	}
	if overlap := configStore.GetInt("chunking.overlap"); overlap > 0 {
		opts = append(opts, chunker.WithOverlap(overlap))
	}
	if pages := configStore.GetInt("chunking.toc_tail_pages"); pages > 0 {
		opts = append(opts, chunker.WithTOCTailPages(pages))
	}
	if mult := configStore.GetInt("chunking.resplit_multiplier"); mult > 0 {
		opts = append(opts, chunker.WithResplitMultiplier(mult))
	}
	return opts
}

// loadEmbeddingSettings reads the embedding provider settings.
func loadEmbeddingSettings() *domain.EmbeddingSettings {
	return &domain.EmbeddingSettings{
		Provider: domain.AIProvider(configStore.GetString("embedding.provider")),
		Model:    configStore.GetString("embedding.model"),
		BaseURL:  configStore.GetString("embedding.base_url"),
		APIKey:   configStore.GetString("embedding.api_key"),
	}
}

// loadLLMSettings reads the judgment provider settings.
func loadLLMSettings() *domain.LLMSettings {
	return &domain.LLMSettings{
		Provider: domain.AIProvider(configStore.GetString("llm.provider")),
		Model:    configStore.GetString("llm.model"),
		BaseURL:  configStore.GetString("llm.base_url"),
		APIKey:   configStore.GetString("llm.api_key"),
	}
}

// closeServices releases adapter resources.
func closeServices() {
	if storeCloser != nil {
		if err := storeCloser.Close(); err != nil {
			logger.Debug("Closing vector store: %v", err)
		}
		storeCloser = nil
	}
}
