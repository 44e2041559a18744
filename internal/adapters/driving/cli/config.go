package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/cnt-labs/cnteval-cli/internal/adapters/driven/ai"
	"github.com/cnt-labs/cnteval-cli/internal/core/domain"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage cnteval configuration",
	Long: `View and configure AI providers, the literature gateway, and
evaluation thresholds. Run without a subcommand to show the current
configuration.`,
	RunE: runConfigShow,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE:  runConfigShow,
}

var configEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure the embedding provider",
	Long:  `Configure the provider used to embed submission chunks and queries.`,
	RunE:  runConfigEmbedding,
}

var configLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure the judgment LLM provider",
	Long:  `Configure the LLM that judges each evaluation criterion.`,
	RunE:  runConfigLLM,
}

var configLiteratureCmd = &cobra.Command{
	Use:   "literature",
	Short: "Configure the literature gateway credentials",
	RunE:  runConfigLiterature,
}

var configSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a configuration value",
	Long: `Sets a raw configuration key. Numeric values are stored as numbers.

Useful keys:
  evaluation.retrieval_k      chunks retrieved per evidence query
  evaluation.pass_threshold   per-criterion pass mark (0-5)
  evaluation.overall_cutoff   overall pass mark (0-100)
  chunking.size               sliding window size in characters
  chunking.overlap            window overlap in characters
  chunking.toc_tail_pages     page span assumed for the last TOC entry
  chunking.resplit_multiplier re-split sections longer than this multiple of the window
  storage.data_dir            chunk database directory
  archive.dir                 processed document archive directory`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEmbeddingCmd)
	configCmd.AddCommand(configLLMCmd)
	configCmd.AddCommand(configLiteratureCmd)
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not initialised")
	}

	embedding := loadEmbeddingSettings()
	llm := loadLLMSettings()

	cmd.Println("Current Configuration")
	cmd.Println("=====================")
	cmd.Println()

	cmd.Println("[Embedding]")
	printProviderSettings(cmd, string(embedding.Provider), embedding.Model,
		embedding.BaseURL, embedding.APIKey, embedding.IsConfigured())

	cmd.Println("[LLM]")
	printProviderSettings(cmd, string(llm.Provider), llm.Model,
		llm.BaseURL, llm.APIKey, llm.IsConfigured())

	cmd.Println("[Literature]")
	if configStore.GetString("literature.token") != "" {
		cmd.Println("  Auth: static token")
	} else if configStore.GetString("literature.client_id") != "" {
		cmd.Printf("  Client ID: %s\n", configStore.GetString("literature.client_id"))
		cmd.Println("  Auth: gateway handshake")
	} else {
		cmd.Println("  Status: not configured")
	}
	cmd.Println()

	cmd.Println("[Evaluation]")
	printThreshold(cmd, "Retrieval k", "evaluation.retrieval_k", "10")
	printThreshold(cmd, "Pass threshold", "evaluation.pass_threshold", "3.0")
	printThreshold(cmd, "Overall cutoff", "evaluation.overall_cutoff", "70.0")
	cmd.Println()

	cmd.Printf("Config file: %s\n", configStore.Path())
	return nil
}

func printProviderSettings(cmd *cobra.Command, provider, model, baseURL, apiKey string, configured bool) {
	if provider == "" {
		cmd.Println("  Status: not configured")
		cmd.Println()
		return
	}

	cmd.Printf("  Provider: %s\n", provider)
	cmd.Printf("  Model: %s\n", model)
	if baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if apiKey != "" {
		cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()
}

func printThreshold(cmd *cobra.Command, label, key, fallback string) {
	if val, ok := configStore.Get(key); ok {
		cmd.Printf("  %s: %v\n", label, val)
		return
	}
	cmd.Printf("  %s: %s (default)\n", label, fallback)
}

//nolint:dupl // Similar to runConfigLLM but for embeddings - intentional for CLI flow clarity
func runConfigEmbedding(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not initialised")
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Select Embedding Provider")
	providers := domain.AllEmbeddingProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider := providers[idx-1]

	defaultModel := domain.DefaultEmbeddingModels()[provider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	for key, value := range map[string]string{
		"embedding.provider": string(provider),
		"embedding.model":    model,
		"embedding.api_key":  apiKey,
	} {
		if err := configStore.Set(key, value); err != nil {
			return fmt.Errorf("failed to save configuration: %w", err)
		}
	}

	cmd.Print("Validating configuration... ")
	if _, err := ai.CreateAndValidateEmbeddingService(loadEmbeddingSettings()); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("embedding configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("Embedding provider configured: %s (%s)\n", provider.Description(), model)
	return nil
}

//nolint:dupl // Similar to runConfigEmbedding but for LLM - intentional for CLI flow clarity
func runConfigLLM(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not initialised")
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Select LLM Provider")
	providers := domain.AllLLMProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	provider := providers[idx-1]

	defaultModel := domain.DefaultLLMModels()[provider]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	var apiKey string
	if provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readPassword()
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	for key, value := range map[string]string{
		"llm.provider": string(provider),
		"llm.model":    model,
		"llm.api_key":  apiKey,
	} {
		if err := configStore.Set(key, value); err != nil {
			return fmt.Errorf("failed to save configuration: %w", err)
		}
	}

	cmd.Print("Validating configuration... ")
	if _, err := ai.CreateAndValidateLLMService(loadLLMSettings()); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("LLM configuration validation failed: %w", err)
	}
	cmd.Println("OK")

	cmd.Printf("LLM provider configured: %s (%s)\n", provider.Description(), model)
	return nil
}

func runConfigLiterature(cmd *cobra.Command, _ []string) error {
	if configStore == nil {
		return errors.New("config store not initialised")
	}

	reader := bufio.NewReader(os.Stdin)

	cmd.Println("Configure Literature Gateway")
	cmd.Println("  1. Gateway handshake (client ID + API key + MAC address)")
	cmd.Println("  2. Static token")
	cmd.Print("\nEnter choice [1]: ")
	choice := parseChoice(readLine(reader), 2, 1)

	if choice == 2 {
		cmd.Print("Enter access token: ")
		token := readPassword()
		cmd.Println()
		if token == "" {
			return errors.New("token must not be empty")
		}
		if err := configStore.Set("literature.token", token); err != nil {
			return fmt.Errorf("failed to save configuration: %w", err)
		}
		cmd.Println("Literature gateway configured with a static token.")
		return nil
	}

	cmd.Print("Enter client ID: ")
	clientID := readLine(reader)
	cmd.Print("Enter API key (32 characters): ")
	apiKey := readPassword()
	cmd.Println()
	cmd.Print("Enter MAC address (XX-XX-XX-XX-XX-XX): ")
	mac := readLine(reader)

	for key, value := range map[string]string{
		"literature.client_id":   clientID,
		"literature.api_key":     apiKey,
		"literature.mac_address": mac,
	} {
		if err := configStore.Set(key, value); err != nil {
			return fmt.Errorf("failed to save configuration: %w", err)
		}
	}

	cmd.Println("Literature gateway credentials saved.")
	return nil
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	if configStore == nil {
		return errors.New("config store not initialised")
	}

	key, raw := args[0], args[1]

	// Store numbers as numbers so typed getters work.
	var value any = raw
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		value = i
	} else if f, err := strconv.ParseFloat(raw, 64); err == nil {
		value = f
	} else if b, err := strconv.ParseBool(raw); err == nil {
		value = b
	}

	if err := configStore.Set(key, value); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	cmd.Printf("Set %s = %v\n", key, value)
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

//nolint:errcheck // CLI helper, error ignored for UX
func readPassword() string {
	// Try to read password without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(password)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
