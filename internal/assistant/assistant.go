// Package assistant is the boundary to the generative-text service used for
// product copy and the Scent Sommelier chat.
package assistant

import (
	"context"
	"errors"
	"iter"
)

var ErrUnavailable = errors.New("assistant unavailable")

type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
	NewChat(ctx context.Context, persona string) (Chat, error)
}

// Chat is one conversation with its own history.
type Chat interface {
	Send(ctx context.Context, text string) (string, error)
	// Stream yields reply fragments in arrival order. It stops without an
	// error once ctx is done or the consumer breaks out of the loop.
	Stream(ctx context.Context, text string) iter.Seq2[string, error]
}

// Unavailable fails every call; used when no credential is configured.
type Unavailable struct{}

func (Unavailable) Generate(context.Context, string) (string, error) { return "", ErrUnavailable }
func (Unavailable) NewChat(context.Context, string) (Chat, error)    { return nil, ErrUnavailable }
