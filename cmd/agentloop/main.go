// Package main provides a command-line front end for the agent loop.
// It runs a single prompt through the iteration engine, streaming progress
// to stderr and rendering the final answer as markdown.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"google.golang.org/genai"

	"github.com/driftlock/agentloop/internal/agent"
	"github.com/driftlock/agentloop/internal/agent/models"
	"github.com/driftlock/agentloop/internal/config"
	"github.com/driftlock/agentloop/internal/mcp"
	"github.com/driftlock/agentloop/internal/provider/gemini"
)

var (
	thinkingStyle = lipgloss.NewStyle().Faint(true).Italic(true)
	toolStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	stepStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("5")).Bold(true)
)

var (
	flagModel         string
	flagMaxIterations int
	flagQuiet         bool
)

var rootCmd = &cobra.Command{
	Use:   "agentloop [prompt]",
	Short: "Run a prompt through the agentic tool-use loop",
	Args:  cobra.MinimumNArgs(1),
	RunE:  run,
}

func init() {
	rootCmd.Flags().StringVar(&flagModel, "model", "", "override the configured model")
	rootCmd.Flags().IntVar(&flagMaxIterations, "max-iterations", 0, "override the configured iteration budget")
	rootCmd.Flags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress progress output")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if flagModel != "" {
		cfg.Model.Name = flagModel
	}
	if flagMaxIterations > 0 {
		cfg.Agent.MaxIterations = flagMaxIterations
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return fmt.Errorf("GEMINI_API_KEY environment variable is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return fmt.Errorf("create Gemini client: %w", err)
	}

	pool := mcp.NewPool()
	defer func() {
		if err := pool.Close(); err != nil {
			slog.Warn("closing provider pool", "error", err)
		}
	}()

	toolset := mcp.BuildToolset(ctx, pool, mcp.ParseProviderConfigs(cfg.Providers))

	sink := agent.NewChannelSink(64)
	var wg sync.WaitGroup
	if !flagQuiet {
		wg.Add(1)
		go func() {
			defer wg.Done()
			printProgress(sink.Events())
		}()
	}

	engine := agent.New(
		gemini.New(gemini.NewRealGeminiClient(genaiClient), cfg.Model.Name),
		agent.Options{
			MaxIterations:   cfg.Agent.MaxIterations,
			ToolTimeout:     time.Duration(cfg.Agent.ToolTimeoutSeconds) * time.Second,
			Persona:         cfg.Agent.Persona,
			SearchStore:     cfg.Agent.SearchStore,
			Temperature:     cfg.Model.Temperature,
			MaxOutputTokens: cfg.Model.MaxOutputTokens,
			Sink:            sink,
		},
	)

	prompt := strings.Join(args, " ")
	result := engine.Run(ctx, []models.Message{{Role: "user", Content: prompt}}, toolset)

	sink.Close()
	wg.Wait()

	rendered, err := glamour.Render(result.FinalResponse, "auto")
	if err != nil {
		// Fall back to plain text if the terminal renderer chokes.
		rendered = result.FinalResponse + "\n"
	}
	fmt.Print(rendered)

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "%s\n", stepStyle.Render(
			fmt.Sprintf("done in %d iteration(s), %d tool call(s)", result.TotalIterations, len(result.ToolCalls))))
	}
	return nil
}

func printProgress(events <-chan agent.ProgressEvent) {
	for ev := range events {
		switch ev.Type {
		case agent.ProgressIterationStart:
			fmt.Fprintln(os.Stderr, stepStyle.Render(fmt.Sprintf("— iteration %d —", ev.Iteration)))
		case agent.ProgressThinking:
			fmt.Fprintln(os.Stderr, thinkingStyle.Render(strings.TrimSpace(ev.Content)))
		case agent.ProgressToolStart:
			fmt.Fprintln(os.Stderr, toolStyle.Render(fmt.Sprintf("→ %s", ev.ToolName)))
		case agent.ProgressToolEnd:
			fmt.Fprintln(os.Stderr, toolStyle.Render(fmt.Sprintf("← %s", ev.ToolName)))
		}
	}
}
