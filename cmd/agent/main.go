// Command agent runs one research query end-to-end and prints the answer.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/ZanzyTHEbar/questscale"
	"github.com/ZanzyTHEbar/questscale/internal/executor"
	"github.com/ZanzyTHEbar/questscale/internal/gateway"
	"github.com/ZanzyTHEbar/questscale/internal/tools"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	// .env is optional; real environments set variables directly.
	_ = godotenv.Load()

	query := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: agent [-config file] <query>")
		os.Exit(2)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := questscale.DefaultConfig()
	if *configPath != "" {
		cfg, err = questscale.LoadConfig(*configPath)
		if err != nil {
			logger.Fatal("failed to load config", zap.String("path", *configPath), zap.Error(err))
		}
	}
	applyEnv(&cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gw, err := gateway.New(ctx, cfg.Gateway, logger)
	if err != nil {
		logger.Fatal("failed to create gateway", zap.Error(err))
	}
	defer gw.Close()

	toolSet := tools.Setup(tools.Config{
		TavilyAPIKey:  os.Getenv("TAVILY_API_KEY"),
		SearchQuota:   tools.NewQuota(cfg.SearchQuota),
		QuoteCacheTTL: cfg.QuoteCacheTTL,
	})
	registry, err := questscale.NewToolRegistry(toolSet, logger)
	if err != nil {
		logger.Fatal("failed to build tool registry", zap.Error(err))
	}

	agent, err := questscale.New(
		questscale.WithConfig(cfg),
		questscale.WithGateway(gw),
		questscale.WithRegistry(registry),
		questscale.WithExecutor(executor.New(gw, registry, cfg.MaxStepsPerTask, logger)),
		questscale.WithLogger(logger),
	)
	if err != nil {
		logger.Fatal("failed to create agent", zap.Error(err))
	}
	defer agent.Close()

	answer, err := agent.Run(ctx, query)
	if err != nil {
		logger.Fatal("run failed", zap.Error(err))
	}
	fmt.Println(answer)
}

// applyEnv overlays secrets and runtime knobs that never belong in the
// config file.
func applyEnv(cfg *questscale.Config) {
	switch cfg.Gateway.Provider {
	case "gemini":
		cfg.Gateway.APIKey = os.Getenv("GOOGLE_API_KEY")
	default:
		cfg.Gateway.APIKey = os.Getenv("OPENAI_API_KEY")
		if cfg.Gateway.BaseURL == "" {
			cfg.Gateway.BaseURL = os.Getenv("OPENAI_API_BASE")
		}
	}
	if v := os.Getenv("QUESTSCALE_MAX_SEARCHES_PER_SESSION"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.SearchQuota = n
		}
	}
}
