package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driving"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure providers, retrieval parameters and storage.

Settings are stored in ~/.docqa/config.toml. Environment variables such as
OPENAI_API_KEY, TOP_K or UPLOADS_DIR override the file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set a single setting",
	Long: `Set a single setting by its dotted key, for example:

  docqa settings set retrieval.top_k 8
  docqa settings set index.distance cosine

Run 'docqa settings keys' for the full list. The value is rejected if the
resulting settings are invalid.`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List the settable keys",
	Args:  cobra.NoArgs,
	RunE:  runSettingsKeys,
}

var settingsAPIKeyCmd = &cobra.Command{
	Use:   "apikey [provider]",
	Short: "Store a provider API key",
	Long: `Prompts for the API key of a cloud provider (openai or anthropic) without
echoing it, and stores it in the config file.`,
	Args: cobra.ExactArgs(1),
	RunE: runSettingsAPIKey,
}

var settingsEmbeddingCmd = &cobra.Command{
	Use:   "embedding",
	Short: "Configure embedding provider",
	Long: `Choose the embedding provider and model. Changing the embedding model
requires reindexing: 'docqa docs reindex --all'.`,
	Args: cobra.NoArgs,
	RunE: runSettingsEmbedding,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure LLM provider",
	Long:  `Choose the LLM provider and model used to compose answers.`,
	Args:  cobra.NoArgs,
	RunE:  runSettingsLLM,
}

// settingsInput is where the wizards read answers from.
var settingsInput io.Reader = os.Stdin

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsAPIKeyCmd)
	settingsCmd.AddCommand(settingsEmbeddingCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettingsService()
	if err != nil {
		return err
	}

	settings, err := svc.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Embedding]")
	printProvider(cmd, settings.Embedding.Provider, settings.Embedding.Model,
		settings.Embedding.BaseURL, settings.Embedding.APIKey, settings.Embedding.IsConfigured())
	cmd.Println()

	cmd.Println("[LLM]")
	printProvider(cmd, settings.LLM.Provider, settings.LLM.Model,
		settings.LLM.BaseURL, settings.LLM.APIKey, settings.LLM.IsConfigured())
	cmd.Println()

	cmd.Println("[Retrieval]")
	cmd.Printf("  Top K: %d\n", settings.Retrieval.TopK)
	cmd.Printf("  Chunk size: %d\n", settings.Retrieval.ChunkSize)
	cmd.Printf("  Chunk overlap: %d\n", settings.Retrieval.ChunkOverlap)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Uploads: %s\n", settings.Storage.UploadsDir)
	cmd.Printf("  Index: %s\n", settings.Storage.IndexDir)
	cmd.Println()

	cmd.Println("[Index]")
	cmd.Printf("  Backend: %s\n", settings.Index.Backend)
	cmd.Printf("  Collection: %s\n", settings.Index.Collection)
	cmd.Printf("  Distance: %s\n", settings.Index.Distance.Description())
	if settings.Index.Backend == domain.IndexBackendPostgres {
		dsn := "(not set)"
		if settings.Index.PostgresDSN != "" {
			dsn = "(set)"
		}
		cmd.Printf("  Postgres DSN: %s\n", dsn)
	}
	cmd.Println()

	cmd.Println("[Grounding]")
	cmd.Printf("  Verify evidence: %t\n", settings.Grounding.VerifyEvidence)
	cmd.Println()

	if err := svc.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'docqa settings set' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}
	return nil
}

func printProvider(cmd *cobra.Command, provider domain.AIProvider, model, baseURL, apiKey string, configured bool) {
	cmd.Printf("  Provider: %s\n", provider.Description())
	cmd.Printf("  Model: %s\n", model)
	if provider.IsLocal() && baseURL != "" {
		cmd.Printf("  Base URL: %s\n", baseURL)
	}
	if provider.RequiresAPIKey() {
		if apiKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(apiKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !configured {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	svc, err := requireSettingsService()
	if err != nil {
		return err
	}

	if err := svc.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s = %s\n", args[0], args[1])

	switch args[0] {
	case "retrieval.chunk_size", "retrieval.chunk_overlap", "embedding.provider", "embedding.model":
		cmd.Println("Run 'docqa docs reindex --all' to apply this to indexed documents.")
	}
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettingsService()
	if err != nil {
		return err
	}
	for _, key := range svc.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsAPIKey(cmd *cobra.Command, args []string) error {
	svc, err := requireSettingsService()
	if err != nil {
		return err
	}

	provider := domain.AIProvider(strings.ToLower(args[0]))
	if !provider.RequiresAPIKey() {
		return fmt.Errorf("%w: %s does not use an API key", domain.ErrInvalidInput, args[0])
	}

	cmd.Printf("Enter %s API key: ", provider.Description())
	apiKey := readPassword(bufio.NewReader(settingsInput))
	cmd.Println()
	if apiKey == "" {
		return errors.New("API key is required")
	}

	if err := svc.SetAPIKey(provider, apiKey); err != nil {
		return fmt.Errorf("failed to store API key: %w", err)
	}
	cmd.Printf("Stored API key for %s: %s\n", provider, maskAPIKey(apiKey))
	return nil
}

func runSettingsEmbedding(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettingsService()
	if err != nil {
		return err
	}
	return configureProvider(cmd, svc, bufio.NewReader(settingsInput), providerStep{
		title:     "Embedding",
		providers: domain.AllEmbeddingProviders(),
		defaults:  domain.DefaultEmbeddingModels(),
		set:       svc.SetEmbeddingProvider,
		validate:  svc.ValidateEmbeddingConfig,
	})
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	svc, err := requireSettingsService()
	if err != nil {
		return err
	}
	return configureProvider(cmd, svc, bufio.NewReader(settingsInput), providerStep{
		title:     "LLM",
		providers: domain.AllLLMProviders(),
		defaults:  domain.DefaultLLMModels(),
		set:       svc.SetLLMProvider,
		validate:  svc.ValidateLLMConfig,
	})
}

// providerStep describes one provider wizard.
type providerStep struct {
	title     string
	providers []domain.AIProvider
	defaults  map[domain.AIProvider]string
	set       func(domain.AIProvider, string) error
	validate  func() error
}

func configureProvider(cmd *cobra.Command, svc driving.SettingsService, reader *bufio.Reader, step providerStep) error {
	cmd.Printf("Select %s Provider\n", step.title)
	for i, p := range step.providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(step.providers), 1)
	selected := step.providers[idx-1]

	defaultModel := step.defaults[selected]
	cmd.Printf("Enter model name [%s]: ", defaultModel)
	model := readLine(reader)
	if model == "" {
		model = defaultModel
	}

	if selected.RequiresAPIKey() {
		cmd.Print("Enter API key (leave empty to keep the stored one): ")
		apiKey := readPassword(reader)
		cmd.Println()
		if apiKey != "" {
			if err := svc.SetAPIKey(selected, apiKey); err != nil {
				return fmt.Errorf("failed to store API key: %w", err)
			}
		}
	}

	if err := step.set(selected, model); err != nil {
		return fmt.Errorf("failed to configure %s provider: %w", step.title, err)
	}

	// Validate the configuration by pinging the service
	cmd.Print("Validating configuration... ")
	if err := step.validate(); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("%s configuration validation failed: %w", step.title, err)
	}
	cmd.Println("OK")

	cmd.Printf("%s provider configured: %s (%s)\n", step.title, selected.Description(), model)
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

// readPassword reads without echo from a terminal, otherwise a plain line from reader.
func readPassword(reader *bufio.Reader) string {
	if settingsInput == os.Stdin && term.IsTerminal(int(os.Stdin.Fd())) {
		password, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return strings.TrimSpace(string(password))
		}
	}
	return readLine(reader)
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
