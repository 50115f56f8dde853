package coach

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rs/zerolog"
)

// Anthropic streams advice from the Anthropic Messages API.
type Anthropic struct {
	client anthropic.Client
	model  string
	logger zerolog.Logger

	// Out, when set, receives the text as it streams in.
	Out io.Writer
}

// NewAnthropic returns a generator authenticated with apiKey.
func NewAnthropic(apiKey, model string, logger zerolog.Logger, opts ...option.RequestOption) *Anthropic {
	opts = append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)
	return &Anthropic{
		client: anthropic.NewClient(opts...),
		model:  model,
		logger: logger.With().Str("component", "anthropic").Logger(),
	}
}

func (a *Anthropic) Name() string { return "anthropic:" + a.model }

func (a *Anthropic) Advise(ctx context.Context, c Context) (string, error) {
	msg, err := userMessage(c)
	if err != nil {
		return "", err
	}

	stream := a.client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(a.model),
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: systemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(msg)),
		},
	})

	var b strings.Builder
	for stream.Next() {
		evt := stream.Current()
		if evt.Type == "content_block_delta" {
			delta := evt.AsContentBlockDelta()
			if delta.Delta.Type == "text_delta" {
				text := delta.Delta.AsTextDelta().Text
				b.WriteString(text)
				if a.Out != nil {
					fmt.Fprint(a.Out, text)
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		errStr := err.Error()
		if strings.Contains(errStr, "401") || strings.Contains(errStr, "authentication") {
			return "", fmt.Errorf("anthropic authentication failed: check your API key")
		}
		return "", fmt.Errorf("streaming error: %w", err)
	}
	a.logger.Debug().Int("chars", b.Len()).Msg("advice streamed")
	return b.String(), nil
}
