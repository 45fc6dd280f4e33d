package chat

import (
	"sync"

	"postcraft/pkg/prompts"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Turn struct {
	Role Role
	Text string
}

// DefaultMaxTurns keeps the last five exchanges.
const DefaultMaxTurns = 10

// History is a bounded, ordered list of turns. Adding past the bound evicts
// the oldest turns. The bound is rounded up to an even number and the
// history never starts with an assistant turn, so it always opens on a
// user message.
type History struct {
	mu    sync.Mutex
	max   int
	turns []Turn
}

func NewHistory(maxTurns int) *History {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	if maxTurns%2 != 0 {
		maxTurns++
	}
	return &History{max: maxTurns}
}

func (h *History) Add(turns ...Turn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = append(h.turns, turns...)
	start := 0
	if over := len(h.turns) - h.max; over > 0 {
		start = over
	}
	for start < len(h.turns) && h.turns[start].Role == RoleAssistant {
		start++
	}
	if start > 0 {
		h.turns = append([]Turn(nil), h.turns[start:]...)
	}
}

// AddExchange records a user message and the assistant's answer.
func (h *History) AddExchange(user, assistant string) {
	h.Add(Turn{Role: RoleUser, Text: user}, Turn{Role: RoleAssistant, Text: assistant})
}

func (h *History) Turns() []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

func (h *History) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.turns)
}

func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.turns = nil
}

func (h *History) promptTurns() []prompts.Turn {
	turns := h.Turns()
	out := make([]prompts.Turn, len(turns))
	for i, t := range turns {
		speaker := "Human"
		if t.Role == RoleAssistant {
			speaker = "AI"
		}
		out[i] = prompts.Turn{Speaker: speaker, Text: t.Text}
	}
	return out
}
