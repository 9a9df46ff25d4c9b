// World generation CLI: runs the content pipeline against OpenAI and writes
// the generated world artifact consumed by the game and the MCP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"airogue/internal/config"
	"airogue/internal/debug"
	"airogue/internal/llm"
	"airogue/internal/logging"
	"airogue/internal/observability"
	"airogue/internal/worldgen"
)

func main() {
	os.Exit(run())
}

func run() int {
	apiKey := flag.String("api-key", "", "OpenAI API key (falls back to OPENAI_API_KEY)")
	temperature := flag.Float64("temperature", -1, "generation temperature 0.0-2.0 (default from env)")
	userContext := flag.String("context", "", "optional free-text preferences for theme generation")
	output := flag.String("output", "world_model.json", "output path for the generated world")
	concurrency := flag.Int("concurrency", 0, "parallel per-mechanic item calls (default from env)")
	settingsPath := flag.String("settings", "", "optional YAML settings file")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if *settingsPath != "" {
		settings, err := config.LoadSettings(*settingsPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		cfg.Apply(settings)
	}

	if *apiKey != "" {
		cfg.OpenAIAPIKey = *apiKey
	}
	if *temperature >= 0 {
		cfg.Temperature = *temperature
	}
	if *concurrency > 0 {
		cfg.Concurrency = *concurrency
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// The credential check happens before the first stage ever runs.
	if err := cfg.RequireAPIKey(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\nSet the OPENAI_API_KEY environment variable or use -api-key.\n", err)
		return 1
	}

	debugLogger := debug.NewLogger(cfg.Debug)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tracerProvider, err := observability.InitTracing(ctx, observability.LoadConfigFromEnv())
	if err != nil {
		debugLogger.Printf("Failed to initialize tracing: %v", err)
	} else {
		defer tracerProvider.Shutdown(context.Background())
	}

	genLog, err := logging.NewGenerationLogger("./generations.db")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize generation logger: %v\n", err)
		return 1
	}
	defer genLog.Close()

	service := llm.NewService(cfg.OpenAIAPIKey, cfg.Model, time.Duration(cfg.TimeoutSecs)*time.Second, debugLogger)

	sessionID := uuid.NewString()
	ctx = llm.WithSessionID(ctx, sessionID)

	var span trace.Span
	if tracerProvider != nil && tracerProvider.IsEnabled() {
		tracer := tracerProvider.GetTracer("generate-world")
		ctx, span = tracer.Start(ctx, "generate_world",
			trace.WithAttributes(observability.CreateLangfuseAttributes("generate_world", sessionID, "", nil)...),
		)
		defer span.End()
	}

	pipeline := worldgen.NewPipeline(service, worldgen.PipelineConfig{
		Model:       cfg.Model,
		Temperature: cfg.Temperature,
		Concurrency: cfg.Concurrency,
		Debug:       debugLogger,
		Log:         genLog,
	})

	fmt.Println("Generating world...")

	world, err := pipeline.Generate(ctx, *userContext)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating world: %v\n", err)
		return 1
	}

	fmt.Println("\n===== GENERATED WORLD =====")
	fmt.Println()
	fmt.Println(world.Summary())

	if err := worldgen.Save(*output, world); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	fmt.Printf("World saved to %s\n", *output)

	return 0
}
