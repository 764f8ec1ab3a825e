package oracle

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/civicpulse/civic-server/internal/models"
)

// Claude implements Oracle on the Anthropic Messages API.
type Claude struct {
	api   *anthropic.Client
	model anthropic.Model
}

// NewClaude creates an oracle client. Requests are single-shot (no SDK
// retries) and bounded by timeout; extra options are appended last.
func NewClaude(apiKey, model string, timeout time.Duration, extra ...option.RequestOption) *Claude {
	opts := []option.RequestOption{option.WithMaxRetries(0)}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(timeout))
	}
	opts = append(opts, extra...)

	client := anthropic.NewClient(opts...)
	return &Claude{
		api:   &client,
		model: anthropic.Model(model),
	}
}

func imageBlock(img models.Image) anthropic.ContentBlockParamUnion {
	return anthropic.NewImageBlockBase64(img.MIME, base64.StdEncoding.EncodeToString(img.Data))
}

// complete sends one request and returns the first text block.
func (c *Claude) complete(ctx context.Context, params anthropic.MessageNewParams) (string, error) {
	params.Model = c.model

	msg, err := c.api.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropic API call: %w", err)
	}

	for _, block := range msg.Content {
		if block.Type == "text" && strings.TrimSpace(block.Text) != "" {
			return block.Text, nil
		}
	}
	return "", ErrEmptyResponse
}

// Classify returns the oracle's classification of a single image.
func (c *Claude) Classify(ctx context.Context, img models.Image, titleHint string) (*RawClassification, error) {
	text, err := c.complete(ctx, anthropic.MessageNewParams{
		MaxTokens: 1024,
		System:    []anthropic.TextBlockParam{{Text: classifySystem}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(imageBlock(img), anthropic.NewTextBlock(buildClassifyPrompt(titleHint))),
		},
	})
	if err != nil {
		return nil, err
	}
	return parseClassification(text)
}

// Suggest returns several candidate interpretations of one image.
func (c *Claude) Suggest(ctx context.Context, img models.Image) ([]Suggestion, error) {
	text, err := c.complete(ctx, anthropic.MessageNewParams{
		MaxTokens: 1024,
		System:    []anthropic.TextBlockParam{{Text: suggestSystem}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(imageBlock(img), anthropic.NewTextBlock("Identify 3 to 4 distinct potential civic issues visible in this image.")),
		},
	})
	if err != nil {
		return nil, err
	}
	return parseSuggestions(text)
}

// Verify compares before (first) and after (second) images.
func (c *Claude) Verify(ctx context.Context, before, after models.Image) (*Verdict, error) {
	text, err := c.complete(ctx, anthropic.MessageNewParams{
		MaxTokens: 512,
		System:    []anthropic.TextBlockParam{{Text: verifySystem}},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock("First image (reported issue):"),
				imageBlock(before),
				anthropic.NewTextBlock("Second image (claimed resolution):"),
				imageBlock(after),
				anthropic.NewTextBlock("Has the civic issue in the first image been fully resolved in the second image?"),
			),
		},
	})
	if err != nil {
		return nil, err
	}
	return parseVerdict(text)
}

// chatMessages converts history plus the new message into API turns. The
// conversation must open with a user turn, so leading assistant turns are
// dropped, as are empty turns.
func chatMessages(message string, history []ChatTurn) []anthropic.MessageParam {
	var msgs []anthropic.MessageParam
	for _, turn := range history {
		text := strings.TrimSpace(turn.Message)
		if text == "" {
			continue
		}
		if turn.Role == ChatRoleCitizen {
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(text)))
			continue
		}
		if len(msgs) == 0 {
			continue
		}
		msgs = append(msgs, anthropic.NewAssistantMessage(anthropic.NewTextBlock(text)))
	}
	return append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(message)))
}

// Chat answers one conversational turn.
func (c *Claude) Chat(ctx context.Context, message string, history []ChatTurn) (string, error) {
	return c.complete(ctx, anthropic.MessageNewParams{
		MaxTokens:   1024,
		Temperature: anthropic.Float(0.7),
		System:      []anthropic.TextBlockParam{{Text: chatSystem}},
		Messages:    chatMessages(message, history),
	})
}
