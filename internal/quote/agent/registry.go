package agent

import (
	"context"
	"fmt"
)

// ToolFunc executes one named tool against a flat argument map and
// returns a flat result map.
type ToolFunc func(ctx context.Context, args map[string]any) (map[string]any, error)

type tool struct {
	name string
	desc string
	args map[string]string
	fn   ToolFunc
}

// Registry is a per-request map of named tools the planner may invoke.
// Each request builds its own instance with whatever state (sheet, DB
// handle) the tools need closed over; no ambient globals.
type Registry struct {
	order []string
	tools map[string]tool
}

func NewRegistry() *Registry {
	return &Registry{tools: map[string]tool{}}
}

func (r *Registry) Register(name, desc string, args map[string]string, fn ToolFunc) {
	if _, exists := r.tools[name]; !exists {
		r.order = append(r.order, name)
	}
	r.tools[name] = tool{name: name, desc: desc, args: args, fn: fn}
}

// Describe renders the tool catalog for the planner prompt, in
// registration order.
func (r *Registry) Describe() []map[string]any {
	out := make([]map[string]any, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		out = append(out, map[string]any{
			"name":        t.name,
			"description": t.desc,
			"args":        t.args,
		})
	}
	return out
}

// Execute runs a tool and wraps the outcome in an {ok, tool, result|error}
// envelope. Failures (unknown names, tool errors, panics) never
// propagate; they become error results fed back into the loop's context.
func (r *Registry) Execute(ctx context.Context, name string, args map[string]any) (res map[string]any) {
	t, ok := r.tools[name]
	if !ok {
		return map[string]any{"ok": false, "tool": name, "error": fmt.Sprintf("unknown tool: %s", name)}
	}
	defer func() {
		if rec := recover(); rec != nil {
			res = map[string]any{"ok": false, "tool": name, "error": fmt.Sprintf("tool panic: %v", rec)}
		}
	}()
	if args == nil {
		args = map[string]any{}
	}
	result, err := t.fn(ctx, args)
	if err != nil {
		return map[string]any{"ok": false, "tool": name, "error": err.Error()}
	}
	return map[string]any{"ok": true, "tool": name, "result": result}
}
