package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/neo/rapbattle_backend/internal/audio"
	"github.com/neo/rapbattle_backend/internal/config"
	"github.com/neo/rapbattle_backend/internal/debate"
	"github.com/neo/rapbattle_backend/internal/llm"
	"github.com/neo/rapbattle_backend/internal/logging"
	"github.com/neo/rapbattle_backend/internal/news"
	"github.com/neo/rapbattle_backend/internal/persona"
	"github.com/neo/rapbattle_backend/internal/server"
	"github.com/spf13/cobra"
)

var (
	port       int
	sessionTTL time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the RapBattle server",
	Long: `Start the RapBattle server with the specified configuration.
This will open the persona store, seed it if empty, wire the LLM and TTS
clients, and begin accepting debate sessions.`,
	PreRun: func(cmd *cobra.Command, args []string) {
		if _, err := os.Stat(".env"); os.IsNotExist(err) {
			fmt.Println("Warning: .env file not found. Make sure to create it with your OPENAI_API_KEY")
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := logging.InitDefaultLogger(logging.Config{
			Level:   logging.INFO,
			Prefix:  "RapBattle",
			Colored: true,
		}); err != nil {
			return fmt.Errorf("failed to init logger: %v", err)
		}

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		store, err := persona.NewSQLStore(cfg.StoreDir)
		if err != nil {
			return fmt.Errorf("failed to open persona store: %v", err)
		}
		defer store.Close()

		if err := store.SeedIfEmpty(cfg.SeedPersonas); err != nil {
			return fmt.Errorf("failed to seed personas: %v", err)
		}

		llmClient, err := llm.NewOpenAIClient(llm.ClientConfig{
			APIKey:   cfg.LLMAPIKey,
			Endpoint: cfg.LLMEndpoint,
			Model:    cfg.LLMDeployment,
		})
		if err != nil {
			return fmt.Errorf("failed to create LLM client: %v", err)
		}

		tts, err := audio.NewTTSService(cfg.TTSAPIKey)
		if err != nil {
			return fmt.Errorf("failed to create TTS service: %v", err)
		}

		voices := audio.NewVoiceTable(cfg.VoiceMap, cfg.DefaultMaleVoice, cfg.DefaultFemaleVoice)

		registry := debate.NewRegistry(llmClient, tts, store, voices, debate.DefaultConfig(), sessionTTL)
		registry.StartPeriodicCleanup(time.Minute)
		defer registry.Close()

		headlines := news.NewHTTPProvider(cfg.NewsEndpoint, cfg.NewsAPIKey)

		srv := server.NewServer(registry, store, headlines)

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		errChan := make(chan error, 1)
		go func() {
			addr := fmt.Sprintf(":%d", port)
			logging.Info("Starting server", map[string]interface{}{"addr": addr})
			if err := srv.Run(addr, cfg.CertFile, cfg.KeyFile); err != nil {
				errChan <- fmt.Errorf("server error: %v", err)
			}
		}()

		select {
		case err := <-errChan:
			return err
		case sig := <-sigChan:
			logging.Info("Shutting down", map[string]interface{}{"signal": sig.String()})
			// Registry close cancels live debates so their channels
			// publish terminal snapshots before the process exits.
			registry.Close()
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntVarP(&port, "port", "p", 3000, "Port to run the server on")
	serveCmd.Flags().DurationVar(&sessionTTL, "session-ttl", 10*time.Minute, "How long finished debates stay queryable")
}
