package ai

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/pkoukk/tiktoken-go"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"grimoire-server/internal/models"
)

var log = zerolog.New(zerolog.NewConsoleWriter()).With().Timestamp().Logger()

// Config holds the settings of the model client.
type Config struct {
	APIKey      string
	ModelName   string
	BaseURL     string
	Timeout     time.Duration
	MaxRetries  int
	TokenBudget int
	MaxTurns    int
}

// Client wraps the OpenAI-compatible API behind the three calls the
// service makes: plain chat completion, RPG turn and emotion
// classification. Every call gets a bounded timeout and a small jittered
// retry budget for transient transport errors.
type Client struct {
	client      *openai.Client
	modelName   string
	timeout     time.Duration
	maxRetries  int
	tokenBudget int
	maxTurns    int
	encoder     *tiktoken.Tiktoken
}

// New creates the client. The API key is required.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("model API key is not configured")
	}
	if cfg.ModelName == "" {
		cfg.ModelName = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.TokenBudget <= 0 {
		cfg.TokenBudget = 6000
	}
	if cfg.MaxTurns <= 0 {
		cfg.MaxTurns = 10
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	encoder, err := tiktoken.EncodingForModel(cfg.ModelName)
	if err != nil {
		log.Warn().Str("model", cfg.ModelName).Err(err).Msg("No tokenizer for model, falling back to cl100k_base")
		encoder, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("failed to load tokenizer: %w", err)
		}
	}

	return &Client{
		client:      openai.NewClientWithConfig(clientConfig),
		modelName:   cfg.ModelName,
		timeout:     cfg.Timeout,
		maxRetries:  cfg.MaxRetries,
		tokenBudget: cfg.TokenBudget,
		maxTurns:    cfg.MaxTurns,
		encoder:     encoder,
	}, nil
}

// MaxTurns returns the configured user-turn limit of a play session.
func (c *Client) MaxTurns() int {
	return c.maxTurns
}

// Chat sends a plain completion request over the given transcript and
// returns the assistant reply text (assistant mode, no game contract).
func (c *Client) Chat(ctx context.Context, transcript []models.ChatMessage) (string, error) {
	if len(transcript) == 0 {
		return "", fmt.Errorf("%w: empty transcript", models.ErrInvalidInput)
	}
	req := openai.ChatCompletionRequest{
		Model:    c.modelName,
		Messages: c.toAPIMessages("", transcript),
	}
	resp, err := c.completeWithRetry(ctx, req)
	if err != nil {
		return "", err
	}
	return resp, nil
}

// PlayTurn runs one RPG turn: the full transcript plus the level's
// scenario context go out, a strict-JSON game state comes back.
func (c *Client) PlayTurn(ctx context.Context, level *models.Level, transcript []models.ChatMessage, userTurns int) (*models.GameState, error) {
	systemPrompt := buildGamePrompt(level, userTurns, c.maxTurns)
	req := openai.ChatCompletionRequest{
		Model:       c.modelName,
		Messages:    c.toAPIMessages(systemPrompt, transcript),
		Temperature: 0.8,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	content, err := c.completeWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}
	state, err := ParseGameState(content)
	if err != nil {
		log.Warn().Err(err).Msg("Game turn reply failed to parse")
		return nil, err
	}
	return state, nil
}

// AnalyzeEmotion classifies the emotion of a text. A reply that cannot
// be parsed degrades to the neutral fallback instead of failing.
func (c *Client) AnalyzeEmotion(ctx context.Context, text string) (*models.EmotionAnalysis, error) {
	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: emotionSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf("Classify the emotion in this text: %q", text)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}
	content, err := c.completeWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}
	analysis := ParseEmotion(content)
	return &analysis, nil
}

// completeWithRetry issues the request with a per-attempt timeout and
// jittered backoff between attempts. Only transport-level failures are
// retried; an empty reply body counts as a failure.
func (c *Client) completeWithRetry(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		resp, err := c.client.CreateChatCompletion(attemptCtx, req)
		cancel()

		if err == nil {
			if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
				lastErr = errors.New("received empty response from API")
			} else {
				return resp.Choices[0].Message.Content, nil
			}
		} else {
			lastErr = err
		}

		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", models.ErrAIUnavailable, ctx.Err())
		}
		if attempt < c.maxRetries {
			backoff := time.Duration(attempt) * 500 * time.Millisecond
			backoff += time.Duration(rand.Int63n(int64(250 * time.Millisecond)))
			log.Warn().
				Int("attempt", attempt).
				Int("max_retries", c.maxRetries).
				Dur("backoff", backoff).
				Err(lastErr).
				Msg("Model call failed, retrying")
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", models.ErrAIUnavailable, ctx.Err())
			}
		}
	}
	log.Error().Err(lastErr).Msg("Model call failed after all retries")
	return "", fmt.Errorf("%w: %v", models.ErrAIUnavailable, lastErr)
}

// toAPIMessages converts the transcript, prepending the system prompt
// when present and trimming oldest messages to the token budget.
func (c *Client) toAPIMessages(systemPrompt string, transcript []models.ChatMessage) []openai.ChatCompletionMessage {
	trimmed := c.trimToBudget(systemPrompt, transcript)
	messages := make([]openai.ChatCompletionMessage, 0, len(trimmed)+1)
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	for _, m := range trimmed {
		messages = append(messages, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return messages
}

// trimToBudget drops the oldest transcript entries until the prompt plus
// transcript fit the token budget. The most recent message always stays.
func (c *Client) trimToBudget(systemPrompt string, transcript []models.ChatMessage) []models.ChatMessage {
	budget := c.tokenBudget - len(c.encoder.Encode(systemPrompt, nil, nil))
	total := 0
	counts := make([]int, len(transcript))
	for i, m := range transcript {
		counts[i] = len(c.encoder.Encode(m.Content, nil, nil))
		total += counts[i]
	}

	start := 0
	for start < len(transcript)-1 && total > budget {
		total -= counts[start]
		start++
	}
	if start > 0 {
		log.Debug().
			Int("dropped", start).
			Int("kept", len(transcript)-start).
			Msg("Transcript trimmed to token budget")
	}
	return transcript[start:]
}
