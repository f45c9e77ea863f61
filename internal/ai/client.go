// Package ai wraps an OpenAI-compatible chat-completion provider with the
// prompt templates used by the notes endpoints. All intelligence is hosted
// remotely; this layer only ships text out and parses text back.
package ai

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	openai "github.com/sashabaranov/go-openai"
)

var aiRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "notely_ai_requests_total",
	Help: "Completion requests by operation and outcome.",
}, []string{"op", "outcome"})

// NoteRef is the slice of a note the AI endpoints operate on.
type NoteRef struct {
	ID      uuid.UUID
	Title   string
	Content string
}

// Client talks to a Groq (or any OpenAI-compatible) completion endpoint.
type Client struct {
	api   *openai.Client
	model string
}

// New builds a Client against the given base URL and model.
func New(apiKey, baseURL, model string) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{
		api:   openai.NewClientWithConfig(cfg),
		model: model,
	}
}

func (c *Client) complete(ctx context.Context, op, system, user string, temperature float32, maxTokens int) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		aiRequests.WithLabelValues(op, "error").Inc()
		return "", fmt.Errorf("%s: %w", op, err)
	}
	aiRequests.WithLabelValues(op, "ok").Inc()

	if len(resp.Choices) == 0 {
		return "", nil
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// Summarize condenses note content into two to three sentences.
func (c *Client) Summarize(ctx context.Context, content string) (string, error) {
	out, err := c.complete(ctx, "summarize",
		"You are a helpful assistant that summarizes notes concisely.",
		fmt.Sprintf("Summarize the following note in 2-3 concise sentences. Keep it clear and informative:\n\n%s", content),
		0.7, 150)
	if err != nil {
		return "", err
	}
	if out == "" {
		out = "Summary not available"
	}
	return out, nil
}

// GenerateTags asks for comma-separated tags and returns at most five,
// lowercased, dropping anything empty or implausibly long.
func (c *Client) GenerateTags(ctx context.Context, content string) ([]string, error) {
	out, err := c.complete(ctx, "tags",
		"You are a helpful assistant that generates relevant tags. Return ONLY comma-separated tags, no additional text.",
		fmt.Sprintf("Generate 3-5 relevant tags for the following note content. Return ONLY comma-separated tags:\n\n%s", content),
		0.5, 50)
	if err != nil {
		return nil, err
	}

	tags := make([]string, 0, 5)
	for _, raw := range strings.Split(out, ",") {
		tag := strings.ToLower(strings.TrimSpace(raw))
		if tag == "" || len(tag) >= 30 {
			continue
		}
		tags = append(tags, tag)
		if len(tags) == 5 {
			break
		}
	}
	return tags, nil
}

// GenerateTitle produces a short descriptive title for the content.
func (c *Client) GenerateTitle(ctx context.Context, content string) (string, error) {
	out, err := c.complete(ctx, "title",
		"You are a helpful assistant that generates concise titles. Return ONLY the title, no quotes or additional text.",
		fmt.Sprintf("Generate a concise, descriptive title (max 10 words) for this note. Return ONLY the title:\n\n%s", truncate(content, 500)),
		0.7, 30)
	if err != nil {
		return "", err
	}
	out = strings.Trim(out, `"'`)
	if out == "" {
		out = "Untitled Note"
	}
	return out, nil
}

// ChatWithNotes answers a question against the full text of the supplied
// notes.
func (c *Client) ChatWithNotes(ctx context.Context, question string, notes []NoteRef) (string, error) {
	parts := make([]string, 0, len(notes))
	for _, note := range notes {
		parts = append(parts, fmt.Sprintf("Title: %s\n%s", note.Title, note.Content))
	}

	out, err := c.complete(ctx, "chat",
		"You are a helpful assistant that answers questions based on provided notes. Be concise and accurate.",
		fmt.Sprintf("Based on the following notes, answer this question: %q\n\nNotes:\n%s\n\nProvide a clear, helpful answer based on the notes.",
			question, strings.Join(parts, "\n\n---\n\n")),
		0.7, 500)
	if err != nil {
		return "", err
	}
	if out == "" {
		out = "I could not generate an answer."
	}
	return out, nil
}

// SemanticSearch asks the model for the indices of the notes most relevant
// to the query and maps them back to note ids. Unparseable output yields
// an empty result rather than an error.
func (c *Client) SemanticSearch(ctx context.Context, query string, notes []NoteRef) ([]uuid.UUID, error) {
	// Nothing to rank; skip the provider round-trip.
	if len(notes) == 0 {
		return nil, nil
	}

	lines := make([]string, 0, len(notes))
	for i, note := range notes {
		lines = append(lines, fmt.Sprintf("[%d] %s: %s", i, note.Title, truncate(note.Content, 200)))
	}

	out, err := c.complete(ctx, "search",
		"You are a search assistant. Return ONLY comma-separated numbers (indices) of the most relevant notes.",
		fmt.Sprintf("Given this search query: %q\n\nFind the most relevant note indices from these notes (return only comma-separated numbers):\n\n%s",
			query, strings.Join(lines, "\n\n")),
		0.3, 50)
	if err != nil {
		return nil, err
	}

	ids := make([]uuid.UUID, 0, len(notes))
	for _, raw := range strings.Split(out, ",") {
		idx, err := strconv.Atoi(strings.TrimSpace(raw))
		if err != nil || idx < 0 || idx >= len(notes) {
			continue
		}
		ids = append(ids, notes[idx].ID)
	}
	return ids, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
