// ABOUTME: Publisher CLI for sigil agents: publish, inspect, and drive lifecycle
// ABOUTME: Talks to a hub over its HTTP API using the sigil.yaml config

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/joho/godotenv"

	"github.com/2389/sigil/internal/blueprint"
	"github.com/2389/sigil/internal/catalog"
	"github.com/2389/sigil/internal/config"
	"github.com/2389/sigil/internal/hub"
	"github.com/2389/sigil/internal/marketplace"
	"github.com/2389/sigil/internal/reconcile"
)

const banner = `
     _       _ _
 ___(_) __ _(_) |
/ __| |/ _' | | |
\__ \ | (_| | | |
|___/_|\__, |_|_|
       |___/
`

func main() {
	// .env is optional; config and blueprint ${VAR} references read the
	// process environment either way
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "publish":
		err = cmdPublish(ctx)
	case "agents":
		err = cmdAgents(ctx)
	case "info":
		err = cmdInfo(ctx, args)
	case "pause":
		err = cmdSetState(ctx, args, hub.StatePaused)
	case "resume":
		err = cmdSetState(ctx, args, hub.StateRunning)
	case "delete":
		err = cmdDelete(ctx, args)
	case "logs":
		err = cmdLogs(ctx, args)
	case "webhook":
		err = cmdWebhook(ctx, args)
	case "tools":
		err = cmdTools(ctx)
	case "strategies":
		err = cmdStrategies(ctx)
	case "validate":
		err = cmdValidate(args)
	case "package":
		err = cmdPackage(args)
	case "init":
		err = cmdInit()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	fmt.Println()
	fmt.Println("Usage: sigil <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  publish                 Publish the configured agent to the hub")
	fmt.Println("  agents                  List agents on the hub")
	fmt.Println("  info <id>               Show one agent's details")
	fmt.Println("  pause <id>              Pause a running agent")
	fmt.Println("  resume <id>             Resume a paused agent")
	fmt.Println("  delete <id>             Delete an agent and its logs")
	fmt.Println("  logs <id>               Show an agent's execution log")
	fmt.Println("  webhook <id> [json]     Invoke a webhook-triggered agent")
	fmt.Println("  tools                   List the hub's tool catalog")
	fmt.Println("  strategies              List the hub's strategy catalog")
	fmt.Println("  validate [path]         Check a blueprint against the builtin catalog")
	fmt.Println("  package [out.json]      Build a marketplace record from the listing file")
	fmt.Println("  init                    Write starter config, blueprint, and listing files")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  SIGIL_CONFIG            Config file path (default: ~/.config/sigil/sigil.yaml)")
	fmt.Println()
	yellow.Println("Examples:")
	fmt.Println("  sigil init")
	fmt.Println("  sigil validate")
	fmt.Println("  sigil publish")
	fmt.Println("  sigil webhook juliaxbt-investigator '{\"task\": \"trace wallet 7xKq...\"}'")
	fmt.Println()
}

// getConfigPath returns the path to the publisher config file.
// Priority: SIGIL_CONFIG env var > XDG_CONFIG_HOME/sigil/sigil.yaml > ~/.config/sigil/sigil.yaml
func getConfigPath() string {
	if envPath := os.Getenv("SIGIL_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "sigil.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "sigil", "sigil.yaml")
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// setupLogger builds the CLI logger. Logs go to stderr so stdout stays
// clean for tables and JSON output.
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}

func openConn(ctx context.Context, cfg *config.Config) (*hub.Connection, error) {
	var opts []hub.Option
	if cfg.Hub.RequestTimeout > 0 {
		opts = append(opts, hub.WithTimeout(cfg.Hub.RequestTimeout))
	}
	conn, err := hub.Open(ctx, cfg.Hub.Endpoint, opts...)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Hub.Endpoint, err)
	}
	return conn, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func cmdPublish(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	bp, err := blueprint.Load(cfg.Agent.Blueprint)
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.Logging)

	rc := reconcile.Config{
		Endpoint: cfg.Hub.Endpoint,
		Identity: hub.AgentIdentity{
			ID:          cfg.Agent.ID,
			DisplayName: cfg.Agent.DisplayName,
			Description: cfg.Agent.Description,
		},
		Blueprint: *bp,
		Timeout:   cfg.Hub.RequestTimeout,
	}

	info, err := reconcile.Run(ctx, rc, logger)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)

	fmt.Println()
	green.Print("  ✓ Published ")
	cyan.Println(info.ID)
	fmt.Println()
	printAgentInfo(info)

	return nil
}

func printAgentInfo(info *hub.AgentInfo) {
	fmt.Printf("  ID:          %s\n", info.ID)
	fmt.Printf("  Name:        %s\n", info.Name)
	if info.Description != "" {
		fmt.Printf("  Description: %s\n", info.Description)
	}
	fmt.Printf("  State:       %s\n", info.State)
	fmt.Printf("  Tools:       %d\n", info.ToolCount)
	fmt.Printf("  Strategy:    %s\n", info.StrategyName)
	fmt.Printf("  Trigger:     %s\n", info.TriggerType)
	fmt.Printf("  Created:     %s\n", info.CreatedAt.Local().Format("Jan 02 15:04:05"))
	fmt.Printf("  Updated:     %s\n", info.UpdatedAt.Local().Format("Jan 02 15:04:05"))
}

func cmdAgents(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	conn, err := openConn(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	agents, err := conn.ListAgents(ctx)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Agents")
	cyan.Println("  ------")

	if len(agents) == 0 {
		fmt.Println("  (no agents published)")
		fmt.Println()
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  ID\tNAME\tSTATE\tDESCRIPTION")
	fmt.Fprintln(w, "  --\t----\t-----\t-----------")
	for _, a := range agents {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n",
			truncate(a.ID, 28), truncate(a.Name, 24), a.State, truncate(a.Description, 40))
	}
	w.Flush()
	fmt.Println()

	return nil
}

func cmdInfo(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: sigil info <agent-id>")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	conn, err := openConn(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	agent, err := hub.LoadAgent(ctx, conn, args[0])
	if err != nil {
		return err
	}
	info, err := agent.GetInfo(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	printAgentInfo(info)
	fmt.Println()

	return nil
}

func cmdSetState(ctx context.Context, args []string, target hub.AgentState) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: sigil %s <agent-id>", map[hub.AgentState]string{
			hub.StatePaused:  "pause",
			hub.StateRunning: "resume",
		}[target])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	conn, err := openConn(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	agent, err := hub.LoadAgent(ctx, conn, args[0])
	if err != nil {
		return err
	}
	if err := agent.SetState(ctx, target); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("  ✓ %s is now %s\n", agent.ID(), target)
	return nil
}

func cmdDelete(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: sigil delete <agent-id>")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	conn, err := openConn(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	agent, err := hub.LoadAgent(ctx, conn, args[0])
	if err != nil {
		return err
	}
	if err := agent.Delete(ctx); err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("  ✓ Deleted %s\n", args[0])
	return nil
}

func cmdLogs(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: sigil logs <agent-id>")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	conn, err := openConn(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	agent, err := hub.LoadAgent(ctx, conn, args[0])
	if err != nil {
		return err
	}
	logs, err := agent.Logs(ctx)
	if err != nil {
		return err
	}

	if len(logs) == 0 {
		fmt.Println("  (no log entries)")
		return nil
	}

	gray := color.New(color.FgHiBlack)
	for _, entry := range logs {
		gray.Printf("%s  ", entry.CreatedAt.Local().Format("Jan 02 15:04:05"))
		fmt.Println(entry.Message)
	}

	return nil
}

func cmdWebhook(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: sigil webhook <agent-id> [json-payload]")
	}

	payload := map[string]any{}
	if len(args) > 1 {
		if err := json.Unmarshal([]byte(args[1]), &payload); err != nil {
			return fmt.Errorf("parsing payload: %w", err)
		}
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	conn, err := openConn(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	agent, err := hub.LoadAgent(ctx, conn, args[0])
	if err != nil {
		return err
	}
	resp, err := agent.Webhook(ctx, payload)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding response: %w", err)
	}
	fmt.Println(string(out))

	return nil
}

func cmdTools(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	conn, err := openConn(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	tools, err := conn.ListTools(ctx)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Tools")
	cyan.Println("  -----")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, tool := range tools {
		fmt.Fprintf(w, "  %s\t%s\n", tool.Name, truncate(tool.Description, 60))
	}
	w.Flush()
	fmt.Println()

	return nil
}

func cmdStrategies(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	conn, err := openConn(ctx, cfg)
	if err != nil {
		return err
	}
	defer conn.Close()

	strategies, err := conn.ListStrategies(ctx)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Strategies")
	cyan.Println("  ----------")

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, st := range strategies {
		fmt.Fprintf(w, "  %s\t%s\n", st.Name, truncate(st.Description, 60))
	}
	w.Flush()
	fmt.Println()

	return nil
}

// cmdValidate checks a blueprint locally: structure first, then tool and
// strategy resolution against the builtin catalog. A hub may carry more
// tools than the builtins, so catalog rejections are advisory there.
func cmdValidate(args []string) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
	} else {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path = cfg.Agent.Blueprint
	}

	bp, err := blueprint.Load(path)
	if err != nil {
		return err
	}

	registry, err := catalog.Builtins()
	if err != nil {
		return fmt.Errorf("building catalog: %w", err)
	}
	if err := registry.ValidateBlueprint(*bp); err != nil {
		return fmt.Errorf("blueprint rejected: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("  ✓ %s is valid\n", path)
	fmt.Printf("    tools:    %v\n", bp.ToolNames())
	fmt.Printf("    strategy: %s\n", bp.Strategy.Name)
	fmt.Printf("    trigger:  %s\n", bp.Trigger.Type)

	return nil
}

func cmdPackage(args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if cfg.Listing.Path == "" {
		return fmt.Errorf("listing.path is not configured in %s", getConfigPath())
	}

	bp, err := blueprint.Load(cfg.Agent.Blueprint)
	if err != nil {
		return err
	}

	listing, err := marketplace.LoadListing(cfg.Listing.Path)
	if err != nil {
		return err
	}

	identity := hub.AgentIdentity{
		ID:          cfg.Agent.ID,
		DisplayName: cfg.Agent.DisplayName,
		Description: cfg.Agent.Description,
	}

	record, err := marketplace.Package(identity, *bp, *listing)
	if err != nil {
		return err
	}

	out, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}

	if len(args) > 0 {
		if err := os.WriteFile(args[0], append(out, '\n'), 0644); err != nil {
			return fmt.Errorf("writing record: %w", err)
		}
		green := color.New(color.FgGreen)
		green.Printf("  ✓ Wrote %s\n", args[0])
		return nil
	}

	fmt.Println(string(out))
	return nil
}

const starterConfig = `# sigil configuration
# Generated by sigil init

hub:
  endpoint: "http://localhost:8787"
  request_timeout: "30s"

agent:
  id: "juliaxbt-investigator"
  display_name: "JuliaXBT Investigator"
  description: "Traces fund flows and researches on-chain activity"
  blueprint: "%s"

listing:
  path: "%s"

logging:
  level: "info"
  format: "text"
`

const starterBlueprint = `# Agent blueprint
# Tool configs may reference secrets as ${VAR_NAME}; values come from the
# environment (or a .env file) at load time.

tools:
  - name: ping
    config: {}
  - name: llm_chat
    config:
      temperature: 0.2

strategy:
  name: plan_execute
  config: {}

trigger:
  type: webhook
  params:
    path: /webhook
    method: POST
`

const starterListing = `# Marketplace listing
# Used by "sigil package" to assemble a submission record.

category = "Blockchain Analytics"
tags = ["investigation", "on-chain"]
pricing_model = "free"
price_amount = 0.0
currency = "USD"

documentation = """
# Investigator

Traces fund flows across chains and drafts findings.
"""

example_usage = """
sigil webhook juliaxbt-investigator '{"task": "trace wallet 7xKq..."}'
"""
`

func cmdInit() error {
	configPath := getConfigPath()
	configDir := filepath.Dir(configPath)

	blueprintPath := filepath.Join(configDir, "blueprint.yaml")
	listingPath := filepath.Join(configDir, "listing.toml")

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	green := color.New(color.FgGreen)
	gray := color.New(color.FgHiBlack)

	writeStarter := func(path, content string) error {
		if _, err := os.Stat(path); err == nil {
			gray.Printf("  - %s exists, skipping\n", path)
			return nil
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		green.Printf("  ✓ Created %s\n", path)
		return nil
	}

	if err := writeStarter(configPath, fmt.Sprintf(starterConfig, blueprintPath, listingPath)); err != nil {
		return err
	}
	if err := writeStarter(blueprintPath, starterBlueprint); err != nil {
		return err
	}
	if err := writeStarter(listingPath, starterListing); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Edit the files above, start a hub with 'sigil-hub serve', then:")
	fmt.Println("  sigil publish")

	return nil
}
