package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/invopop/jsonschema"

	"github.com/devinlabs/devin/internal/config"
	"github.com/devinlabs/devin/internal/memory"
	"github.com/devinlabs/devin/internal/reminder"
)

// ToolDefinition describes one callable tool: a name, a human-readable
// description, a JSON schema for its input and the handler itself.
type ToolDefinition struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
	Run         func(ctx context.Context, input json.RawMessage) (string, error)
}

// GenerateSchema derives a JSON schema from a Go input struct.
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	return reflector.Reflect(v)
}

// Dispatcher holds the tool catalog and the collaborators the tools need.
// Dependencies are passed in explicitly; there is no package-level state.
type Dispatcher struct {
	defs  map[string]ToolDefinition
	order []string
}

// NewDispatcher wires the full catalog against one memory store and one
// reminder service.
func NewDispatcher(cfg *config.Config, store *memory.Store, reminders *reminder.Service) *Dispatcher {
	httpClient := &http.Client{Timeout: time.Duration(cfg.Tools.SearchTimeoutSec) * time.Second}

	d := &Dispatcher{defs: make(map[string]ToolDefinition)}
	d.register(
		manageMemoryTool(store),
		currentTimeTool(),
		calculateTool(),
		analyzeTextTool(),
		generatePasswordTool(),
		shortenURLTool(),
		weatherTool(cfg.Tools.OpenWeatherAPIKey, httpClient, openWeatherBaseURL),
		searchWebTool(httpClient, duckDuckGoBaseURL),
		systemInfoTool(),
		remindTool(reminders, reminder.Delivery{Channel: "cli", ChatID: "local"}),
	)
	return d
}

func (d *Dispatcher) register(defs ...ToolDefinition) {
	for _, def := range defs {
		if _, exists := d.defs[def.Name]; !exists {
			d.order = append(d.order, def.Name)
		}
		d.defs[def.Name] = def
	}
}

// Dispatch runs the named tool. Unknown names return an error listing the
// available tools.
func (d *Dispatcher) Dispatch(ctx context.Context, name string, input json.RawMessage) (string, error) {
	def, ok := d.defs[name]
	if !ok {
		return "", fmt.Errorf("unknown tool %q (available: %s)", name, strings.Join(d.Names(), ", "))
	}
	if len(input) == 0 {
		input = json.RawMessage(`{}`)
	}
	return def.Run(ctx, input)
}

// Definitions returns the catalog in registration order.
func (d *Dispatcher) Definitions() []ToolDefinition {
	out := make([]ToolDefinition, 0, len(d.order))
	for _, name := range d.order {
		out = append(out, d.defs[name])
	}
	return out
}

// Names returns the sorted tool names.
func (d *Dispatcher) Names() []string {
	names := make([]string, 0, len(d.defs))
	for name := range d.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
