package assistant

import (
	"context"
	"errors"
	"fmt"
	"iter"

	"google.golang.org/genai"
)

type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: %w: missing api key", ErrUnavailable)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (g *Gemini) NewChat(ctx context.Context, persona string) (Chat, error) {
	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(persona, genai.RoleUser),
	}
	c, err := g.client.Chats.Create(ctx, g.model, cfg, nil)
	if err != nil {
		return nil, err
	}
	return &geminiChat{chat: c}, nil
}

type geminiChat struct {
	chat *genai.Chat
}

func (c *geminiChat) Send(ctx context.Context, text string) (string, error) {
	resp, err := c.chat.SendMessage(ctx, genai.Part{Text: text})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}

func (c *geminiChat) Stream(ctx context.Context, text string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for resp, err := range c.chat.SendMessageStream(ctx, genai.Part{Text: text}) {
			if cerr := ctx.Err(); cerr != nil {
				err = cerr
			}
			if err != nil {
				if !errors.Is(err, context.Canceled) {
					yield("", err)
				}
				return
			}
			if frag := resp.Text(); frag != "" {
				if !yield(frag, nil) {
					return
				}
			}
		}
	}
}
