package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// MockAsker answers offline with a canned summary, for development without
// a backend.
type MockAsker struct {
	Delay time.Duration
}

func (m MockAsker) Ask(ctx context.Context, question string) (json.RawMessage, error) {
	delay := m.Delay
	if delay <= 0 {
		delay = 300 * time.Millisecond
	}
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(delay):
	}
	blob, err := json.Marshal(map[string]any{
		"type":    "text",
		"summary": fmt.Sprintf("Mock summary for: %s", question),
	})
	if err != nil {
		return nil, fmt.Errorf("marshal mock answer: %w", err)
	}
	return blob, nil
}
