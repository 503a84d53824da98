package llm

import (
	"context"
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"quote-service/internal/config"
	"quote-service/internal/quote/model"
)

// Client calls an OpenAI-compatible chat endpoint and guarantees the
// returned text is a JSON decision object: transport errors and
// non-JSON completions are mapped to ASK payloads, never surfaced raw.
// Without an API key it runs in mock mode for local development.
type Client struct {
	api     *openai.Client
	model   string
	limiter *rate.Limiter
	log     zerolog.Logger
}

func New(cfg config.Config, logger zerolog.Logger) *Client {
	c := &Client{
		model:   cfg.OpenAIModel,
		limiter: rate.NewLimiter(rate.Limit(3), 5),
		log:     logger,
	}
	if cfg.OpenAIKey == "" || strings.Contains(cfg.OpenAIKey, "placeholder") {
		logger.Warn().Msg("no oracle API key configured, running in mock mode")
		return c
	}
	oc := openai.DefaultConfig(cfg.OpenAIKey)
	if cfg.OpenAIBaseURL != "" {
		oc.BaseURL = cfg.OpenAIBaseURL
	}
	c.api = openai.NewClientWithConfig(oc)
	return c
}

// Call satisfies agent.Oracle.
func (c *Client) Call(ctx context.Context, systemPrompt, userMessage string, history []model.ChatMessage) string {
	if c.api == nil {
		return mockResponse(combineForMock(history, userMessage))
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return askJSON("LLM调用失败: " + err.Error())
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: systemPrompt})
	for _, m := range history {
		if (m.Role == "user" || m.Role == "assistant") && strings.TrimSpace(m.Content) != "" {
			messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
		}
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: userMessage})

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		c.log.Error().Err(err).Msg("oracle call failed")
		return askJSON("LLM调用失败: " + err.Error())
	}
	if len(resp.Choices) == 0 {
		return askJSON("LLM返回格式错误: 空响应")
	}

	content := stripFences(resp.Choices[0].Message.Content)
	if json.Valid([]byte(content)) {
		return content
	}
	if extracted := ExtractFirstJSON(content); extracted != "" {
		return extracted
	}
	c.log.Warn().Int("len", len(content)).Msg("oracle returned non-JSON content")
	return askJSON("LLM返回格式错误: 无法提取JSON")
}

func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// ExtractFirstJSON returns the first complete JSON value embedded in
// free text, "" when there is none.
func ExtractFirstJSON(text string) string {
	cleaned := stripFences(text)
	for i, ch := range cleaned {
		if ch != '{' && ch != '[' {
			continue
		}
		dec := json.NewDecoder(strings.NewReader(cleaned[i:]))
		var raw json.RawMessage
		if err := dec.Decode(&raw); err == nil {
			return string(raw)
		}
	}
	return ""
}

func askJSON(content string) string {
	b, _ := json.Marshal(map[string]any{"action": "ASK", "content": content})
	return string(b)
}

func combineForMock(history []model.ChatMessage, userMessage string) string {
	var parts []string
	for _, m := range history {
		if m.Role == "user" {
			parts = append(parts, m.Content)
		}
	}
	parts = append(parts, userMessage)
	return strings.TrimSpace(strings.Join(parts, " "))
}

var mockQuoteRe = regexp.MustCompile(`(\d+)\s*(?:行|号)\D*?(\d+(?:\.\d+)?)\s*(?:元|块)`)

// mockResponse is a keyless stand-in: "2行 100元" style messages become a
// WRITE, "张三" triggers a supplier lookup, anything else asks for input.
func mockResponse(message string) string {
	if m := mockQuoteRe.FindStringSubmatch(message); m != nil {
		data := map[string]any{
			"target_row":    mustAtoi(m[1]),
			"price":         mustFloat(m[2]),
			"tax":           strings.Contains(message, "含税"),
			"shipping":      strings.Contains(message, "含运"),
			"delivery_time": "3天",
			"remarks":       "Mock Data",
		}
		b, _ := json.Marshal(map[string]any{"action": "WRITE", "data": data})
		return string(b)
	}
	if strings.Contains(message, "张三") {
		data := map[string]any{
			"target_row":      2,
			"price":           8800,
			"delivery_time":   "现货",
			"lookup_supplier": "张三",
		}
		b, _ := json.Marshal(map[string]any{"action": "WRITE", "data": data})
		return string(b)
	}
	return askJSON("（Mock模式）未检测到API Key。请提供报价，例如：'2行 100元' 或 '找张三'。")
}

func mustAtoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func mustFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
