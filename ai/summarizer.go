package ai

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
)

// Summarizer provides journal entry summarization.
type Summarizer interface {
	// Summarize generates a summary for an entry.
	Summarize(ctx context.Context, req *SummarizeRequest) (*SummarizeResponse, error)
}

// SummarizeRequest is a summarization request.
type SummarizeRequest struct {
	Title       string
	Content     string
	MoodContext string // optional, e.g. "mood: anxious (7/10)"
	MaxLen      int    // summary max length in runes, default 200
}

// SummarizeResponse is a summarization response.
type SummarizeResponse struct {
	Summary   string
	Insights  []string
	Sentiment string // "positive" | "neutral" | "negative"
	Latency   time.Duration
}

const summarizeSystemPrompt = `You summarize personal journal entries.
Respond with a JSON object only: {"summary": string, "insights": [string], "sentiment": "positive"|"neutral"|"negative"}.
Keep the summary under the requested length and write it in the journal author's language.`

type llmSummarizer struct {
	client *openai.Client
	cfg    LLMConfig
}

// NewSummarizer creates a Summarizer backed by an OpenAI-compatible chat model.
func NewSummarizer(cfg *LLMConfig) (Summarizer, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("summarizer requires an API key")
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}
	return &llmSummarizer{
		client: openai.NewClientWithConfig(clientConfig),
		cfg:    *cfg,
	}, nil
}

func (s *llmSummarizer) Summarize(ctx context.Context, req *SummarizeRequest) (*SummarizeResponse, error) {
	if strings.TrimSpace(req.Content) == "" {
		return nil, errors.New("nothing to summarize")
	}
	maxLen := req.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}

	timeout := s.cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var sb strings.Builder
	if req.Title != "" {
		sb.WriteString("Title: " + req.Title + "\n")
	}
	if req.MoodContext != "" {
		sb.WriteString("Mood: " + req.MoodContext + "\n")
	}
	sb.WriteString("Max summary length: " + strconv.Itoa(maxLen) + " characters\n\n")
	sb.WriteString(req.Content)

	start := time.Now()
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.cfg.Model,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: summarizeSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: sb.String()},
		},
	})
	if err != nil {
		return nil, errors.Wrap(err, "summarize chat completion failed")
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("empty summarize response")
	}

	parsed, err := parseSummaryJSON(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}
	parsed.Latency = time.Since(start)
	return parsed, nil
}

// parseSummaryJSON extracts the response object, tolerating markdown code
// fences some models insist on emitting.
func parseSummaryJSON(raw string) (*SummarizeResponse, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var payload struct {
		Summary   string   `json:"summary"`
		Insights  []string `json:"insights"`
		Sentiment string   `json:"sentiment"`
	}
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, errors.Wrap(err, "failed to parse summarize response")
	}
	if payload.Summary == "" {
		return nil, errors.New("summarize response missing summary")
	}
	switch payload.Sentiment {
	case "positive", "neutral", "negative":
	default:
		payload.Sentiment = "neutral"
	}
	return &SummarizeResponse{
		Summary:   payload.Summary,
		Insights:  payload.Insights,
		Sentiment: payload.Sentiment,
	}, nil
}
