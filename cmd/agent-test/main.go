package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vominhhuy13101999/agent-test/agents"
	"github.com/vominhhuy13101999/agent-test/app/chat/tui"
	"github.com/vominhhuy13101999/agent-test/framework"
	"github.com/vominhhuy13101999/agent-test/llm"
	"github.com/vominhhuy13101999/agent-test/persistence"
	"github.com/vominhhuy13101999/agent-test/server"
	"github.com/vominhhuy13101999/agent-test/tools"
)

var (
	flagModel     string
	flagEndpoint  string
	flagWorkspace string
	flagConfig    string
	flagDebug     bool
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "agent-test",
		Short: "Multi-agent document analysis orchestrator",
	}
	root.PersistentFlags().StringVar(&flagModel, "model", envOrDefault("OLLAMA_MODEL", ""), "Override the configured model name")
	root.PersistentFlags().StringVar(&flagEndpoint, "ollama", envOrDefault("OLLAMA_ENDPOINT", ""), "Override the configured Ollama endpoint")
	root.PersistentFlags().StringVar(&flagWorkspace, "workspace", ".", "Workspace root (configuration and persona manifests)")
	root.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config.yaml (defaults to the workspace config)")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Log model request/response previews")

	root.AddCommand(newServeCmd(), newAskCmd(), newCompareCmd(), newChatCmd())
	return root
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// buildOrchestrator assembles the component graph from config plus flag
// overrides. The returned cleanup closes telemetry and transcript handles.
func buildOrchestrator() (*agents.Orchestrator, func(), error) {
	configPath := flagConfig
	if configPath == "" {
		configPath = agents.DefaultConfigPath(flagWorkspace)
	}
	cfg, err := agents.LoadGlobalConfig(configPath, flagWorkspace)
	if err != nil {
		return nil, nil, err
	}
	if flagEndpoint != "" {
		cfg.Model.Endpoint = flagEndpoint
	}
	if flagModel != "" {
		cfg.Model.Name = flagModel
	}

	var closers []func()
	var telemetry framework.Telemetry = framework.LoggerTelemetry{
		Logger: log.New(os.Stderr, "agent ", log.LstdFlags),
	}
	if cfg.Logging.EventFile != "" {
		jsonSink, err := framework.NewJSONFileTelemetry(cfg.Logging.EventFile)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { _ = jsonSink.Close() })
		telemetry = framework.MultiplexTelemetry{Sinks: []framework.Telemetry{telemetry, jsonSink}}
	}

	client := llm.NewClient(cfg.Model.Endpoint, cfg.Model.Name)
	client.APIKey = cfg.Model.APIKey
	client.Debug = flagDebug || cfg.Model.Debug

	orch := agents.NewOrchestrator(llm.NewInstrumentedModel(client, telemetry), telemetry)
	orch.Invoker.Timeout = cfg.Model.CallTimeout()
	orch.Questions.MaxQuestions = cfg.Limits.MaxQuestions
	orch.Extractor.MaxContentLength = cfg.Limits.MaxContentLength
	orch.Extractor.Workers = cfg.Limits.ExtractWorkers

	for _, dir := range cfg.PersonaSearchPaths(flagWorkspace) {
		if err := orch.Registry.LoadDir(dir); err != nil {
			return nil, nil, err
		}
	}

	if cfg.Transcript != "" {
		store, err := persistence.NewTranscriptStore(cfg.Transcript)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { _ = store.Close() })
		orch.Transcript = store
	}

	cleanup := func() {
		for _, fn := range closers {
			fn()
		}
	}
	return orch, cleanup, nil
}

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, cleanup, err := buildOrchestrator()
			if err != nil {
				return err
			}
			defer cleanup()

			api := &server.APIServer{
				Orchestrator: orch,
				Logger:       log.New(os.Stdout, "api ", log.LstdFlags),
			}
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			cmd.Printf("Starting API server on %s\n", addr)
			err = api.ServeContext(ctx, addr)
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", envOrDefault("AGENT_SERVER_ADDR", ":8080"), "address for HTTP API server")
	return cmd
}

func newAskCmd() *cobra.Command {
	var sessionID string
	var files []string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Process a single message and print the routed response",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, cleanup, err := buildOrchestrator()
			if err != nil {
				return err
			}
			defer cleanup()

			outcome := orch.Process(cmd.Context(), agents.Request{
				Message:   args[0],
				SessionID: sessionFor(sessionID),
				Documents: tools.BuildCorpus(files),
			})
			return printOutcome(cmd, outcome, asJSON)
		},
	}
	cmd.Flags().StringVar(&sessionID, "session", "", "Session id (defaults to a fresh session)")
	cmd.Flags().StringSliceVar(&files, "file", nil, "Document file to attach (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full outcome as JSON")
	return cmd
}

func newCompareCmd() *cobra.Command {
	var message string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "compare [file...]",
		Short: "Compare two or more documents",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, cleanup, err := buildOrchestrator()
			if err != nil {
				return err
			}
			defer cleanup()

			outcome := orch.Process(cmd.Context(), agents.Request{
				Message:   message,
				SessionID: sessionFor(""),
				Documents: tools.BuildCorpus(args),
			})
			return printOutcome(cmd, outcome, asJSON)
		},
	}
	cmd.Flags().StringVar(&message, "message", "Compare these documents", "Comparison request text")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full outcome as JSON")
	return cmd
}

func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start the interactive chat UI",
		RunE: func(cmd *cobra.Command, args []string) error {
			orch, cleanup, err := buildOrchestrator()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return tui.Run(ctx, orch)
		},
	}
}

func sessionFor(id string) string {
	if id != "" {
		return id
	}
	return fmt.Sprintf("cli-%d", os.Getpid())
}

func printOutcome(cmd *cobra.Command, outcome framework.Outcome, asJSON bool) error {
	if asJSON {
		data, err := json.MarshalIndent(outcome, "", "  ")
		if err != nil {
			return err
		}
		cmd.Println(string(data))
		return nil
	}
	cmd.Printf("[%s, %s confidence] %s\n\n", outcome.Routing.AgentType, outcome.Routing.Confidence, outcome.Routing.Reasoning)
	cmd.Println(outcome.Response)
	if outcome.Status == framework.StatusError {
		return errors.New(outcome.ErrorMessage)
	}
	return nil
}
