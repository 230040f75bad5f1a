package chat

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAsker struct {
	answer json.RawMessage
	err    error
	calls  int
}

func (s *stubAsker) Ask(ctx context.Context, question string) (json.RawMessage, error) {
	s.calls++
	return s.answer, s.err
}

type stubIdentity struct {
	id  string
	err error
}

func (s stubIdentity) SessionID() (string, error) { return s.id, s.err }

func TestSessionStartsWithGreeting(t *testing.T) {
	t.Parallel()

	s := NewSession(&stubAsker{}, nil, nil)
	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, RoleAssistant, msgs[0].Role)
	assert.Contains(t, msgs[0].Content, "EnsuraX assistant")
}

func TestBeginRejectsBlankQuestion(t *testing.T) {
	t.Parallel()

	s := NewSession(&stubAsker{}, nil, nil)
	_, ok := s.Begin("   \n\t ")
	assert.False(t, ok)
	assert.Len(t, s.Messages(), 1)
	assert.False(t, s.Sending())
}

func TestBeginRejectsWhileSending(t *testing.T) {
	t.Parallel()

	s := NewSession(&stubAsker{}, nil, nil)
	first, ok := s.Begin("what is our loss ratio?")
	require.True(t, ok)
	assert.Equal(t, RoleUser, first.Role)
	require.True(t, s.Sending())

	_, ok = s.Begin("second question")
	assert.False(t, ok)
	// Only greeting + first user message.
	assert.Len(t, s.Messages(), 2)
}

func TestCompletedTurnAppendsExactlyTwoMessages(t *testing.T) {
	t.Parallel()

	s := NewSession(&stubAsker{}, nil, nil)
	before := len(s.Messages())

	_, ok := s.Begin("how is GWP trending?")
	require.True(t, ok)
	reply := s.Complete(json.RawMessage(`{"summary":"GWP is up 4% QoQ"}`))

	assert.Equal(t, ReplyPlainText, reply.Kind)
	msgs := s.Messages()
	require.Len(t, msgs, before+2)
	assert.Equal(t, RoleUser, msgs[len(msgs)-2].Role)
	assert.Equal(t, RoleAssistant, msgs[len(msgs)-1].Role)
	assert.Equal(t, "GWP is up 4% QoQ", msgs[len(msgs)-1].Content)
	assert.False(t, s.Sending())
}

func TestCompleteStoresForecastAsMarkerString(t *testing.T) {
	t.Parallel()

	s := NewSession(&stubAsker{}, nil, nil)
	_, ok := s.Begin("forecast retention")
	require.True(t, ok)

	payload := `{"type":"forecast","rows":[{"month":"2024-03","retention":0.81}]}`
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	s.Complete(raw)

	msgs := s.Messages()
	stored := msgs[len(msgs)-1].Content
	assert.Equal(t, payload, stored)
	assert.Equal(t, ReplyForecast, InterpretContent(stored).Kind)
}

func TestFailedTurnKeepsUserMessageAndAppendsError(t *testing.T) {
	t.Parallel()

	s := NewSession(&stubAsker{}, nil, nil)
	_, ok := s.Begin("why did LR spike?")
	require.True(t, ok)
	s.Fail(errors.New("api POST /api/rag/ask: Could not answer the question."))

	msgs := s.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, RoleUser, msgs[1].Role)
	assert.Equal(t, RoleAssistant, msgs[2].Role)
	assert.Contains(t, msgs[2].Content, "Could not answer the question.")
	assert.False(t, s.Sending())
}

func TestClearResetsTranscriptNotIdentity(t *testing.T) {
	t.Parallel()

	s := NewSession(&stubAsker{}, stubIdentity{id: "profile-42"}, nil)
	id := s.SessionID()
	require.Equal(t, "profile-42", id)

	_, ok := s.Begin("first")
	require.True(t, ok)
	s.Complete(json.RawMessage(`"answer"`))
	s.Clear()

	msgs := s.Messages()
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Content, "Conversation cleared")
	assert.Equal(t, "profile-42", s.SessionID())
}

func TestSessionIDFallsBackWhenIdentityBroken(t *testing.T) {
	t.Parallel()

	s := NewSession(&stubAsker{}, stubIdentity{err: errors.New("disk gone")}, nil)
	id := s.SessionID()
	assert.NotEmpty(t, id)
	// Stable within the process even though persistence failed.
	assert.Equal(t, id, s.SessionID())
}

func TestMessageIDsAreUnique(t *testing.T) {
	t.Parallel()

	s := NewSession(&stubAsker{}, nil, nil)
	_, ok := s.Begin("q1")
	require.True(t, ok)
	s.Complete(json.RawMessage(`"a1"`))
	_, ok = s.Begin("q2")
	require.True(t, ok)
	s.Complete(json.RawMessage(`"a2"`))

	seen := map[string]bool{}
	for _, m := range s.Messages() {
		require.False(t, seen[m.ID], "duplicate message id %s", m.ID)
		seen[m.ID] = true
	}
}
