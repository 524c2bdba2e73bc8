// Package assistanttest provides scripted generators for tests.
package assistanttest

import (
	"context"
	"iter"
	"sync"

	"noiressence/internal/assistant"
)

// Generator replays canned output. Err, when set, fails every call.
type Generator struct {
	mu sync.Mutex

	Text      string
	Fragments []string
	Err       error
	// StreamErrAfter fails the stream after this many fragments when > 0.
	StreamErrAfter int
	StreamErr      error
	// Hang makes Stream wait for its context to end and then stop without
	// yielding, as a remote stream does when its deadline passes.
	Hang bool

	Prompts  []string
	Personas []string
	Sent     []string
}

func (g *Generator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Prompts = append(g.Prompts, prompt)
	if g.Err != nil {
		return "", g.Err
	}
	return g.Text, nil
}

func (g *Generator) NewChat(_ context.Context, persona string) (assistant.Chat, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.Err != nil {
		return nil, g.Err
	}
	g.Personas = append(g.Personas, persona)
	return &chat{g: g}, nil
}

func (g *Generator) record(text string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.Sent = append(g.Sent, text)
}

type chat struct{ g *Generator }

func (c *chat) Send(_ context.Context, text string) (string, error) {
	c.g.record(text)
	if c.g.Err != nil {
		return "", c.g.Err
	}
	return c.g.Text, nil
}

func (c *chat) Stream(ctx context.Context, text string) iter.Seq2[string, error] {
	c.g.record(text)
	return func(yield func(string, error) bool) {
		if c.g.Hang {
			<-ctx.Done()
			return
		}
		for i, f := range c.g.Fragments {
			if ctx.Err() != nil {
				return
			}
			if c.g.StreamErrAfter > 0 && i == c.g.StreamErrAfter {
				yield("", c.g.StreamErr)
				return
			}
			if !yield(f, nil) {
				return
			}
		}
	}
}

var _ assistant.Generator = (*Generator)(nil)
