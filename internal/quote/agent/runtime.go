package agent

import (
	"context"
	"encoding/json"

	"quote-service/internal/quote/model"
)

// Oracle is the pluggable decision function: prompt + user message +
// history in, raw response text out. The response is expected to parse
// as JSON with an "action" discriminator; anything else is treated as a
// protocol violation and mapped to a safe ASK, never a panic.
type Oracle func(ctx context.Context, systemPrompt, userMessage string, history []model.ChatMessage) string

// Context is the precomputed bundle injected into both prompts.
type Context struct {
	SheetStateSummary   string
	PendingItemsSummary string
	HeadersPreviewJSON  string
	WritableFieldsJSON  string
	RequiredFieldsJSON  string
	BrandContext        string
	RelevantRowsJSON    string
	TotalRelevantRows   int
}

// Result is the orchestrator outcome: ASK with Content, or WRITE with a
// single Data payload or an Updates batch, plus the accumulated draft
// and tool results for the caller's follow-up validation.
type Result struct {
	Action      string
	Content     string
	Data        map[string]any
	Updates     []map[string]any
	Draft       map[string]any
	ToolResults []map[string]any
}

func ask(content string) Result { return Result{Action: "ASK", Content: content} }

// RunTwoStage drives the planner/writer decision loop. The planner may
// call tools at most maxToolSteps times; exceeding the bound falls
// through to the writer with whatever draft exists rather than failing.
func RunTwoStage(ctx context.Context, oracle Oracle, userMessage string, history []model.ChatMessage, bundle Context, tools *Registry, maxToolSteps int) Result {
	if maxToolSteps < 0 {
		maxToolSteps = 0
	}
	toolsCatalog := marshal(tools.Describe())
	var toolResults []map[string]any
	draft := map[string]any{}

	for step := 0; step <= maxToolSteps; step++ {
		prompt := BuildPlannerPrompt(bundle, toolsCatalog, marshalToolResults(toolResults))
		out := safeJSONMap(oracle(ctx, prompt, userMessage, history))

		switch action, _ := out["action"].(string); action {
		case "ASK":
			return ask(model.CoerceString(out["content"]))
		case "CALL_TOOL":
			name := model.CoerceString(out["tool"])
			if name == "" {
				return ask("Planner未提供有效的tool名称")
			}
			args, _ := out["args"].(map[string]any)
			toolResults = append(toolResults, tools.Execute(ctx, name, args))
			continue
		case "DONE":
			if d, ok := out["draft"].(map[string]any); ok {
				draft = d
			}
		default:
			return ask("Planner返回了未知指令")
		}
		break
	}

	prompt := BuildWriterPrompt(bundle, marshalToolResults(toolResults), marshal(draft))
	out := safeJSONMap(oracle(ctx, prompt, userMessage, history))

	switch action, _ := out["action"].(string); action {
	case "ASK":
		return ask(model.CoerceString(out["content"]))
	case "WRITE":
		res := Result{Action: "WRITE", Draft: draft, ToolResults: toolResults}
		if raw, ok := out["updates"].([]any); ok {
			for _, item := range raw {
				if m, ok := item.(map[string]any); ok {
					res.Updates = append(res.Updates, m)
				}
			}
			if res.Updates == nil {
				res.Updates = []map[string]any{}
			}
			return res
		}
		if data, ok := out["data"].(map[string]any); ok {
			res.Data = data
		} else {
			res.Data = map[string]any{}
		}
		return res
	}
	return ask("Writer返回了未知指令")
}

// safeJSONMap parses oracle output, tolerating only a JSON object.
func safeJSONMap(text string) map[string]any {
	var out map[string]any
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		return map[string]any{}
	}
	return out
}

func marshal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

func marshalToolResults(results []map[string]any) string {
	if len(results) == 0 {
		return "[]"
	}
	return marshal(results)
}
