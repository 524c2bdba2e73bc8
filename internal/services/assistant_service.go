package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"noiressence/internal/assistant"
	applog "noiressence/internal/log"
)

const (
	DescriptionEmpty    = "Description unavailable."
	DescriptionFailed   = "Could not generate description at this time. Please try again."
	SommelierGreeting   = "Bonjour. I am your personal Scent Sommelier. What kind of fragrance are you looking for today?"
	SommelierApology    = "Apologies, I seem to have lost the scent trail. Please try again."
	sommelierPersona    = "You are the Scent Sommelier for Noir Essence, a luxury perfume house. Speak with elegance and warmth. Keep every answer under 80 words. Never mention competitor brands. Guide the customer toward scent families such as Oud, Rose, Citrus, Woods and Leather, and suggest what to try next."
	descriptionTemplate = "Write a luxurious, elegant and sensory-rich product description of no more than 50 words for a perfume named %q with the notes: %s. The tone should be mysterious, sophisticated and expensive."
)

var ErrDraftNeedsNotes = errors.New("a name and at least one note are required")

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

type Message struct {
	Role Role      `json:"role"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Conversation is one session's Sommelier chat. The remote chat is created on
// the first send; sends are serialized.
type Conversation struct {
	send sync.Mutex

	mu         sync.Mutex
	transcript []Message
	chat       assistant.Chat
}

func newConversation() *Conversation {
	return &Conversation{transcript: []Message{{Role: RoleModel, Text: SommelierGreeting, At: time.Now()}}}
}

func (c *Conversation) Transcript() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.transcript))
	copy(out, c.transcript)
	return out
}

func (c *Conversation) append(role Role, text string) Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := Message{Role: role, Text: text, At: time.Now()}
	c.transcript = append(c.transcript, m)
	return m
}

type AssistantService struct {
	Gen     assistant.Generator
	Timeout time.Duration
}

func NewAssistantService(gen assistant.Generator, timeout time.Duration) *AssistantService {
	if gen == nil {
		gen = assistant.Unavailable{}
	}
	return &AssistantService{Gen: gen, Timeout: timeout}
}

func (s *AssistantService) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.Timeout)
}

// DraftDescription asks the generator for product copy. Generator failures
// never surface as errors; the returned text is a fallback instead.
func (s *AssistantService) DraftDescription(ctx context.Context, name string, notes []string) (string, error) {
	name = strings.TrimSpace(name)
	notes = cleanNotes(notes)
	if name == "" || len(notes) == 0 {
		return "", ErrDraftNeedsNotes
	}
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	text, err := s.Gen.Generate(ctx, fmt.Sprintf(descriptionTemplate, name, strings.Join(notes, ", ")))
	if err != nil {
		applog.L().Error("assistant.describe", zap.String("product", name), zap.Error(err))
		return DescriptionFailed, nil
	}
	if text = strings.TrimSpace(text); text == "" {
		return DescriptionEmpty, nil
	}
	return text, nil
}

func (s *AssistantService) chatFor(ctx context.Context, c *Conversation) (assistant.Chat, error) {
	if c.chat != nil {
		return c.chat, nil
	}
	ch, err := s.Gen.NewChat(ctx, sommelierPersona)
	if err != nil {
		return nil, err
	}
	c.chat = ch
	return ch, nil
}

// Ask sends one message and returns the Sommelier's reply. Blank input is
// ignored and reported with ok=false.
func (s *AssistantService) Ask(ctx context.Context, c *Conversation, text string) (reply Message, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Message{}, false
	}
	c.send.Lock()
	defer c.send.Unlock()

	c.append(RoleUser, text)
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	ch, err := s.chatFor(ctx, c)
	if err == nil {
		var out string
		if out, err = ch.Send(ctx, text); err == nil {
			return c.append(RoleModel, out), true
		}
	}
	applog.L().Error("assistant.chat", zap.Error(err))
	return c.append(RoleModel, SommelierApology), true
}

// Fragment is one piece of a streamed reply. Fallback marks the apology.
type Fragment struct {
	Text     string `json:"text"`
	Fallback bool   `json:"fallback,omitempty"`
}

// Stream sends text and yields the reply as it arrives. The full reply is
// recorded in the transcript once the stream ends. A failure, including the
// assistant timeout running out, yields the apology as a final fragment;
// cancelling ctx just stops.
func (s *AssistantService) Stream(ctx context.Context, c *Conversation, text string) iter.Seq[Fragment] {
	text = strings.TrimSpace(text)
	return func(yield func(Fragment) bool) {
		if text == "" {
			return
		}
		c.send.Lock()
		defer c.send.Unlock()

		c.append(RoleUser, text)
		tctx, cancel := s.withTimeout(ctx)
		defer cancel()

		var sb strings.Builder
		fail := func(err error) {
			applog.L().Error("assistant.stream", zap.Error(err))
			if sb.Len() > 0 {
				c.append(RoleModel, sb.String())
			}
			c.append(RoleModel, SommelierApology)
			yield(Fragment{Text: SommelierApology, Fallback: true})
		}

		ch, err := s.chatFor(tctx, c)
		if err != nil {
			fail(err)
			return
		}
		for frag, err := range ch.Stream(tctx, text) {
			if ctx.Err() != nil {
				break
			}
			if err != nil {
				fail(err)
				return
			}
			if frag == "" {
				continue
			}
			sb.WriteString(frag)
			if !yield(Fragment{Text: frag}) {
				break
			}
		}
		// the generator may end quietly when its own deadline passes
		if ctx.Err() == nil && tctx.Err() != nil {
			fail(tctx.Err())
			return
		}
		if sb.Len() > 0 {
			c.append(RoleModel, sb.String())
		}
	}
}
