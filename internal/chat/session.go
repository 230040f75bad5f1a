package chat

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Role is the author kind of a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Message is one transcript entry. The transcript is append-only; nothing
// rewrites a stored message except a full Clear.
type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// Asker sends one question to the assistant backend and returns the raw
// answer payload.
type Asker interface {
	Ask(ctx context.Context, question string) (json.RawMessage, error)
}

// IdentitySource yields the durable per-profile session identity.
type IdentitySource interface {
	SessionID() (string, error)
}

const greeting = "Hi, I'm the EnsuraX assistant. Ask me natural questions about GWP, loss ratio, claims, or operations.\n\nExamples:\n• \"What's our loss ratio trend YTD?\"\n• \"Top products by claims frequency last 6 months\"\n• \"Why did LR increase in August?\""

const clearedGreeting = "Conversation cleared. How can I help next?"

// Session owns one conversation: the ordered transcript, the in-flight
// send guard, and the durable session identity. It is driven from the UI
// event loop and is not safe for concurrent use; the turn itself runs
// asynchronously via the Asker and reports back through Complete or Fail.
type Session struct {
	asker    Asker
	identity IdentitySource
	logger   *zap.Logger

	messages  []Message
	sending   bool
	sessionID string
}

func NewSession(asker Asker, identity IdentitySource, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		asker:    asker,
		identity: identity,
		logger:   logger,
		messages: []Message{newMessage(RoleAssistant, greeting)},
	}
}

func newMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// Messages exposes the transcript for rendering. Callers must not mutate
// the returned slice.
func (s *Session) Messages() []Message {
	return s.messages
}

// Sending reports whether a turn is in flight. The composer disables while
// true; concurrent sends are rejected, not queued.
func (s *Session) Sending() bool {
	return s.sending
}

// Begin starts a turn: it validates the question, appends the user message
// and arms the in-flight guard. It returns false without touching the
// transcript when the question is blank or a turn is already in flight.
func (s *Session) Begin(text string) (Message, bool) {
	text = strings.TrimSpace(text)
	if text == "" || s.sending {
		return Message{}, false
	}
	msg := newMessage(RoleUser, text)
	s.messages = append(s.messages, msg)
	s.sending = true
	return msg, true
}

// Ask runs the backend call for a begun turn. It is the blocking half of a
// turn and is called off the UI loop.
func (s *Session) Ask(ctx context.Context, question string) (json.RawMessage, error) {
	return s.asker.Ask(ctx, question)
}

// Complete finishes a turn with the interpreted reply appended as an
// assistant message.
func (s *Session) Complete(raw json.RawMessage) Reply {
	reply := Interpret(raw)
	s.messages = append(s.messages, newMessage(RoleAssistant, reply.Content()))
	s.sending = false
	return reply
}

// Fail finishes a turn with a user-visible error appended as an assistant
// message. The transcript always acknowledges a failed turn; errors never
// escape to the UI tree.
func (s *Session) Fail(err error) {
	text := "Chat error"
	if err != nil && strings.TrimSpace(err.Error()) != "" {
		text = err.Error()
	}
	s.logger.Warn("chat turn failed", zap.String("error", text))
	s.messages = append(s.messages, newMessage(RoleAssistant, "⚠ "+text))
	s.sending = false
}

// Clear replaces the transcript with a fresh greeting. The session identity
// is deliberately untouched: continuity belongs to the browser-profile
// analogue, not the visible conversation.
func (s *Session) Clear() {
	s.messages = []Message{newMessage(RoleAssistant, clearedGreeting)}
	s.sending = false
}

// SessionID returns the durable conversation identity, creating and
// persisting it on first use. Failures fall back to a process-lifetime
// identity so a broken state dir degrades continuity, not the chat.
func (s *Session) SessionID() string {
	if s.sessionID != "" {
		return s.sessionID
	}
	if s.identity != nil {
		id, err := s.identity.SessionID()
		if err == nil && strings.TrimSpace(id) != "" {
			s.sessionID = id
			return s.sessionID
		}
		if err != nil {
			s.logger.Warn("session identity unavailable", zap.Error(err))
		}
	}
	s.sessionID = uuid.NewString()
	return s.sessionID
}
