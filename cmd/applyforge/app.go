package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/applyforge/internal/agents"
	"github.com/jonathan/applyforge/internal/config"
	"github.com/jonathan/applyforge/internal/db"
	"github.com/jonathan/applyforge/internal/observability"
	"github.com/jonathan/applyforge/internal/render"
	"github.com/jonathan/applyforge/internal/workflow"
)

// Flags shared by every subcommand that touches the engine.
var (
	flagConfigPath  string
	flagDatabaseURL string
	flagAgentsPath  string
	flagArtifactDir string
	flagVerbose     bool
)

func addEngineFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagConfigPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	cmd.Flags().StringVar(&flagDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	cmd.Flags().StringVar(&flagAgentsPath, "agents", "", "Path to agents.json (defaults to ./agents.json)")
	cmd.Flags().StringVar(&flagArtifactDir, "artifact-dir", "", "Directory for rendered artifacts (defaults to ./artifacts)")
	cmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Print detailed progress information")
}

// app bundles everything a subcommand needs: config, store, engine, ledger.
type app struct {
	cfg     config.Config
	db      *db.DB
	engine  *workflow.Engine
	ledger  *agents.Ledger
	printer *observability.Printer
}

// newApp loads configuration, applies flag overrides, and assembles the
// engine. The caller must Close the app when done.
func newApp(ctx context.Context, cmd *cobra.Command) (*app, error) {
	var cfg config.Config
	if flagConfigPath != "" {
		loaded, err := config.LoadConfig(flagConfigPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loaded.Validate(); err != nil {
			return nil, err
		}
		cfg = *loaded
	}

	// Command-line args take priority; only override if explicitly set.
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = flagDatabaseURL
	}
	if cmd.Flags().Changed("agents") {
		cfg.AgentsPath = flagAgentsPath
	}
	if cmd.Flags().Changed("artifact-dir") {
		cfg.ArtifactDir = flagArtifactDir
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = flagVerbose
	}

	cfg = cfg.MergeWithDefaults(config.Config{
		DatabaseURL: os.Getenv("DATABASE_URL"),
		AgentsPath:  "agents.json",
		ArtifactDir: "artifacts",
	})
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database URL required: set --db-url or DATABASE_URL")
	}

	agentsCfg, err := config.LoadAgents(cfg.AgentsPath)
	if err != nil {
		return nil, err
	}

	store, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	agentIDs := make([]string, 0, len(agentsCfg.Agents))
	for id := range agentsCfg.Agents {
		agentIDs = append(agentIDs, id)
	}
	ledger, err := agents.NewLedger(ctx, store, agentIDs)
	if err != nil {
		store.Close()
		return nil, err
	}

	backends, err := agents.BuildBackends(agentsCfg, cfg.CallTimeout())
	if err != nil {
		store.Close()
		return nil, err
	}
	orch := agents.New(agentsCfg, ledger, backends)

	renderer, err := render.NewLocalRenderer(cfg.ArtifactDir)
	if err != nil {
		store.Close()
		return nil, err
	}

	return &app{
		cfg:     cfg,
		db:      store,
		engine:  workflow.NewEngine(store, store, store, renderer, orch),
		ledger:  ledger,
		printer: observability.NewPrinter(os.Stdout),
	}, nil
}

// Close releases the app's database pool.
func (a *app) Close() {
	a.db.Close()
}
