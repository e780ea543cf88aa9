package agent

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cexll/agentsdk-go/pkg/api"
	"github.com/cexll/agentsdk-go/pkg/model"
	"github.com/devinlabs/devin/internal/bus"
	"github.com/devinlabs/devin/internal/config"
	"github.com/devinlabs/devin/internal/memory"
	"github.com/devinlabs/devin/internal/reminder"
	"github.com/devinlabs/devin/internal/tools"
)

// Runtime interface for the LLM runtime (allows mocking in tests)
type Runtime interface {
	Run(ctx context.Context, req api.Request) (*api.Response, error)
	Close()
}

// runtimeAdapter wraps api.Runtime to implement Runtime interface
type runtimeAdapter struct {
	rt *api.Runtime
}

func (r *runtimeAdapter) Run(ctx context.Context, req api.Request) (*api.Response, error) {
	return r.rt.Run(ctx, req)
}

func (r *runtimeAdapter) Close() {
	r.rt.Close()
}

// RuntimeFactory creates a Runtime instance
type RuntimeFactory func(cfg *config.Config, sysPrompt string) (Runtime, error)

// Options for creating an Agent
type Options struct {
	RuntimeFactory RuntimeFactory
}

// DefaultRuntimeFactory creates the default agentsdk-go runtime
func DefaultRuntimeFactory(cfg *config.Config, sysPrompt string) (Runtime, error) {
	return newRuntime(cfg, sysPrompt)
}

func newRuntime(cfg *config.Config, sysPrompt string) (Runtime, error) {
	var provider api.ModelFactory
	switch cfg.Provider.Type {
	case config.ProviderOpenAI:
		provider = &model.OpenAIProvider{
			APIKey:    cfg.Provider.APIKey,
			BaseURL:   cfg.Provider.BaseURL,
			ModelName: cfg.Agent.Model,
			MaxTokens: cfg.Agent.MaxTokens,
		}
	default: // "anthropic" or empty
		provider = &model.AnthropicProvider{
			APIKey:    cfg.Provider.APIKey,
			BaseURL:   cfg.Provider.BaseURL,
			ModelName: cfg.Agent.Model,
			MaxTokens: cfg.Agent.MaxTokens,
		}
	}

	rt, err := api.New(context.Background(), api.Options{
		ProjectRoot:   cfg.Agent.Workspace,
		ModelFactory:  provider,
		SystemPrompt:  sysPrompt,
		MaxIterations: cfg.Agent.MaxToolIterations,
	})
	if err != nil {
		return nil, fmt.Errorf("create runtime: %w", err)
	}
	return &runtimeAdapter{rt: rt}, nil
}

// Agent ties the memory store, the tool dispatcher, the reminder service and
// an optional LLM runtime together behind the message bus. Without an API key
// it answers through the rule-based router instead.
type Agent struct {
	cfg       *config.Config
	bus       *bus.MessageBus
	store     *memory.Store
	tools     *tools.Dispatcher
	reminders *reminder.Service
	runtime   Runtime
	router    *Router
}

// New creates an Agent with default options
func New(cfg *config.Config) (*Agent, error) {
	return NewWithOptions(cfg, Options{})
}

// NewWithOptions creates an Agent with custom options for testing
func NewWithOptions(cfg *config.Config, opts Options) (*Agent, error) {
	a := &Agent{cfg: cfg}

	a.bus = bus.NewMessageBus(config.DefaultBufSize)

	store, err := memory.Open(cfg.Memory.Path)
	if err != nil {
		return nil, fmt.Errorf("open memory store: %w", err)
	}
	a.store = store

	a.reminders = reminder.NewService(cfg.Reminder.Path)
	a.reminders.OnRemind = func(rem reminder.Reminder) {
		a.bus.Outbound <- bus.OutboundMessage{
			Channel: rem.Delivery.Channel,
			ChatID:  rem.Delivery.ChatID,
			Content: "Reminder: " + rem.Text,
		}
	}

	a.tools = tools.NewDispatcher(cfg, store, a.reminders)

	if cfg.Offline() {
		a.router = NewRouter(a.tools)
		log.Printf("[agent] no API key configured, using rule-based responses")
		return a, nil
	}

	sysPrompt := a.buildSystemPrompt()

	factory := opts.RuntimeFactory
	if factory == nil {
		factory = DefaultRuntimeFactory
	}
	rt, err := factory(cfg, sysPrompt)
	if err != nil {
		return nil, err
	}
	a.runtime = rt

	return a, nil
}

// Bus exposes the message bus so callers can subscribe channels.
func (a *Agent) Bus() *bus.MessageBus { return a.bus }

// Store exposes the memory store for status reporting.
func (a *Agent) Store() *memory.Store { return a.store }

// Tools exposes the tool dispatcher for direct invocation.
func (a *Agent) Tools() *tools.Dispatcher { return a.tools }

// Offline reports whether the agent answers through the rule-based router.
func (a *Agent) Offline() bool { return a.runtime == nil }

// Start launches the outbound dispatcher, the reminder service and the
// inbound processing loop. It returns immediately; stop via ctx cancel
// followed by Shutdown.
func (a *Agent) Start(ctx context.Context) error {
	go a.bus.DispatchOutbound(ctx)

	if err := a.reminders.Start(ctx); err != nil {
		log.Printf("[agent] reminder start warning: %v", err)
	}

	go a.processLoop(ctx)
	return nil
}

func (a *Agent) processLoop(ctx context.Context) {
	for {
		select {
		case msg := <-a.bus.Inbound:
			log.Printf("[agent] inbound from %s/%s: %s", msg.Channel, msg.SenderID, truncate(msg.Content, 80))

			result, err := a.Respond(ctx, msg.SessionKey(), msg.Content)
			if err != nil {
				log.Printf("[agent] respond error: %v", err)
				result = "Sorry, I encountered an error processing your message."
			}

			if result != "" {
				a.bus.Outbound <- bus.OutboundMessage{
					Channel: msg.Channel,
					ChatID:  msg.ChatID,
					Content: result,
				}
			}
		case <-ctx.Done():
			return
		}
	}
}

// Respond answers a single user message. The exchange is recorded in the
// memory store; a failed write never fails the response.
func (a *Agent) Respond(ctx context.Context, sessionID, content string) (string, error) {
	if _, err := a.store.AddEntry(memory.RoleUser, content); err != nil {
		log.Printf("[agent] record user message warning: %v", err)
	}

	var result string
	var err error
	if a.runtime != nil {
		result, err = a.runLLM(ctx, sessionID, content)
	} else {
		result, err = a.router.Route(ctx, content)
	}
	if err != nil {
		return "", err
	}

	if strings.TrimSpace(result) != "" {
		if _, err := a.store.AddEntry(memory.RoleAssistant, result); err != nil {
			log.Printf("[agent] record reply warning: %v", err)
		}
	}
	return result, nil
}

func (a *Agent) runLLM(ctx context.Context, sessionID, prompt string) (string, error) {
	resp, err := a.runtime.Run(ctx, api.Request{
		Prompt:    prompt,
		SessionID: sessionID,
	})
	if err != nil {
		return "", err
	}
	if resp == nil || resp.Result == nil {
		return "", nil
	}
	return resp.Result.Output, nil
}

// buildSystemPrompt assembles the persona file, the memory summary and the
// stored preferences into the runtime system prompt.
func (a *Agent) buildSystemPrompt() string {
	var sb strings.Builder

	if data, err := os.ReadFile(filepath.Join(a.cfg.Agent.Workspace, "PERSONA.md")); err == nil {
		sb.Write(data)
		sb.WriteString("\n\n")
	} else {
		sb.WriteString("You are Devin, a helpful personal assistant.\n\n")
	}

	sum := a.store.Summarize(memory.DefaultSummaryEntries)
	if sum.TotalEntries > 0 {
		fmt.Fprintf(&sb, "# Memory\nYou have %d stored memories. Recent:\n", sum.TotalEntries)
		for _, e := range sum.Recent {
			fmt.Fprintf(&sb, "- [%s] %s\n", e.Role, e.Content)
		}
		sb.WriteString("\n")
	}

	if prefs := a.store.Preferences(); len(prefs) > 0 {
		keys := make([]string, 0, len(prefs))
		for k := range prefs {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		sb.WriteString("# User Preferences\n")
		for _, k := range keys {
			fmt.Fprintf(&sb, "- %s: %s\n", k, prefs[k])
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

// Shutdown stops the reminder service and closes the runtime.
func (a *Agent) Shutdown() error {
	a.reminders.Stop()
	if a.runtime != nil {
		a.runtime.Close()
	}
	log.Printf("[agent] shutdown complete")
	return nil
}

// truncate shortens s to n runes for log output. Slicing on runes keeps
// multi-byte characters intact.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
