package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/devinlabs/devin/internal/agent"
	"github.com/devinlabs/devin/internal/bus"
	"github.com/devinlabs/devin/internal/config"
	"github.com/devinlabs/devin/internal/memory"
	"github.com/spf13/cobra"
)

// AgentOptions for running the agent loop with custom dependencies
type AgentOptions struct {
	RuntimeFactory agent.RuntimeFactory
	Stdin          io.Reader
	Stdout         io.Writer
	Stderr         io.Writer
}

var rootCmd = &cobra.Command{
	Use:   "devin",
	Short: "devin - personal AI assistant with persistent memory",
}

var agentCmd = &cobra.Command{
	Use:   "agent",
	Short: "Run the assistant in single message or REPL mode",
	RunE:  runAgent,
}

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize config and workspace",
	RunE:  runOnboard,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show devin status",
	RunE:  runStatus,
}

var toolCmd = &cobra.Command{
	Use:   "tool <name> [json-input]",
	Short: "Invoke a single tool directly",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runTool,
}

var messageFlag string

func init() {
	agentCmd.Flags().StringVarP(&messageFlag, "message", "m", "", "Single message to send")
	rootCmd.AddCommand(agentCmd, onboardCmd, statusCmd, toolCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// runAgent is the command handler that uses default options
func runAgent(cmd *cobra.Command, args []string) error {
	return runAgentWithOptions(AgentOptions{})
}

// runAgentWithOptions runs the agent loop with injectable dependencies for testing
func runAgentWithOptions(opts AgentOptions) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a, err := agent.NewWithOptions(cfg, agent.Options{RuntimeFactory: opts.RuntimeFactory})
	if err != nil {
		return err
	}
	defer a.Shutdown()

	stdin := opts.Stdin
	if stdin == nil {
		stdin = os.Stdin
	}
	stdout := opts.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}
	stderr := opts.Stderr
	if stderr == nil {
		stderr = os.Stderr
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Reminders and other async replies arrive on the bus
	a.Bus().SubscribeOutbound("cli", func(msg bus.OutboundMessage) {
		fmt.Fprintf(stdout, "\n%s\n> ", msg.Content)
	})
	if err := a.Start(ctx); err != nil {
		return err
	}

	// Single message mode
	if messageFlag != "" {
		reply, err := a.Respond(ctx, "cli", messageFlag)
		if err != nil {
			return fmt.Errorf("agent error: %w", err)
		}
		fmt.Fprintln(stdout, reply)
		return nil
	}

	// REPL mode
	mode := "LLM"
	if a.Offline() {
		mode = "offline"
	}
	fmt.Fprintf(stdout, "devin (%s mode, type 'exit' to quit)\n", mode)
	scanner := bufio.NewScanner(stdin)
	for {
		fmt.Fprint(stdout, "\n> ")
		if !scanner.Scan() {
			break
		}
		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}
		if input == "exit" || input == "quit" {
			break
		}

		reply, err := a.Respond(ctx, "cli:repl", input)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			continue
		}
		fmt.Fprintln(stdout, reply)
	}
	return nil
}

func runOnboard(cmd *cobra.Command, args []string) error {
	cfgDir := config.ConfigDir()
	cfgPath := config.ConfigPath()

	if err := os.MkdirAll(cfgDir, 0755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	if _, err := os.Stat(cfgPath); os.IsNotExist(err) {
		if err := config.SaveConfig(config.DefaultConfig()); err != nil {
			return fmt.Errorf("write config: %w", err)
		}
		fmt.Printf("Created config: %s\n", cfgPath)
	} else {
		fmt.Printf("Config already exists: %s\n", cfgPath)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	ws := cfg.Agent.Workspace
	if err := os.MkdirAll(ws, 0755); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.Memory.Path), 0755); err != nil {
		return fmt.Errorf("create memory dir: %w", err)
	}

	writeIfNotExists(filepath.Join(ws, "PERSONA.md"), defaultPersonaMD)

	fmt.Printf("Workspace ready: %s\n", ws)
	fmt.Println("\nNext steps:")
	fmt.Printf("  1. Edit %s to set your API key\n", cfgPath)
	fmt.Println("  2. Or set DEVIN_API_KEY / ANTHROPIC_API_KEY")
	fmt.Println("  3. Run 'devin agent -m \"Hello\"' to test (works offline too)")

	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Config: error (%v)\n", err)
		return nil
	}

	fmt.Printf("Config: %s\n", config.ConfigPath())
	fmt.Printf("Workspace: %s\n", cfg.Agent.Workspace)
	fmt.Printf("Model: %s\n", cfg.Agent.Model)
	fmt.Printf("Provider: %s\n", providerDisplay(cfg))
	if cfg.Provider.APIKey != "" && len(cfg.Provider.APIKey) > 8 {
		masked := cfg.Provider.APIKey[:4] + "..." + cfg.Provider.APIKey[len(cfg.Provider.APIKey)-4:]
		fmt.Printf("API Key: %s\n", masked)
	} else if cfg.Provider.APIKey != "" {
		fmt.Println("API Key: set")
	} else {
		fmt.Println("API Key: not set (offline mode)")
	}

	store, err := memory.Open(cfg.Memory.Path)
	if err != nil {
		fmt.Printf("Memory: error (%v)\n", err)
		return nil
	}
	sum := store.Summarize(0)
	fmt.Printf("Memory: %d entries, %d preferences (%s)\n", sum.TotalEntries, sum.TotalPreferences, cfg.Memory.Path)
	if !sum.Oldest.IsZero() {
		fmt.Printf("Memory range: %s to %s\n", sum.Oldest.Format("2006-01-02"), sum.Newest.Format("2006-01-02"))
	}

	return nil
}

func runTool(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a, err := agent.New(cfg)
	if err != nil {
		return err
	}
	defer a.Shutdown()

	input := "{}"
	if len(args) == 2 {
		input = args[1]
	}
	out, err := a.Tools().Dispatch(cmd.Context(), args[0], []byte(input))
	if err != nil {
		return err
	}
	fmt.Println(out)
	return nil
}

func providerDisplay(cfg *config.Config) string {
	if cfg.Offline() {
		return "offline (rule-based)"
	}
	if cfg.Provider.Type == "" {
		return "anthropic (default)"
	}
	return cfg.Provider.Type
}

func writeIfNotExists(path, content string) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		_ = os.WriteFile(path, []byte(content), 0644)
		fmt.Printf("  Created: %s\n", path)
	}
}

const defaultPersonaMD = `# Devin

You are Devin, a personal AI assistant with a persistent memory.

You have tools for memories and preferences, reminders, weather, web search,
calculation, text analysis, passwords, URL shortening and system info.
Use them to give real answers instead of guessing.

## Guidelines
- Be concise and helpful
- Store facts the user tells you with the manage_memory tool
- Check stored memories before asking the user to repeat themselves
`
