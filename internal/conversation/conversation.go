package conversation

import (
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	ErrEmptyContent = errors.New("empty message content")
	ErrTurnOrder    = errors.New("message breaks turn order")
)

// Conversation is an append-only message history that always starts with a
// single system message.
type Conversation struct {
	mu       sync.RWMutex
	messages []Message
	now      func() time.Time
}

func New(persona string) *Conversation {
	c := &Conversation{now: time.Now}
	c.messages = []Message{{Role: RoleSystem, Content: persona, CreatedAt: c.now()}}
	return c
}

// Mark identifies a point in the history that Restore can return to.
type Mark int

func (c *Conversation) AppendUser(content string) error {
	if strings.TrimSpace(content) == "" {
		return ErrEmptyContent
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.last().Role == RoleUser {
		return ErrTurnOrder
	}
	c.messages = append(c.messages, Message{Role: RoleUser, Content: content, CreatedAt: c.now()})
	return nil
}

func (c *Conversation) AppendAssistant(content string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.last().Role != RoleUser {
		return ErrTurnOrder
	}
	c.messages = append(c.messages, Message{Role: RoleAssistant, Content: content, CreatedAt: c.now()})
	return nil
}

// Messages returns a copy of the history, system message first.
func (c *Conversation) Messages() []Message {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

func (c *Conversation) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.messages)
}

func (c *Conversation) Mark() Mark {
	return Mark(c.Len())
}

// Restore drops everything appended after m. The system message always stays.
func (c *Conversation) Restore(m Mark) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n := int(m)
	if n < 1 {
		n = 1
	}
	if n >= len(c.messages) {
		return
	}
	clear(c.messages[n:])
	c.messages = c.messages[:n]
}

func (c *Conversation) Transcript() string {
	return Render(c.Messages())
}

// CommittedTranscript renders completed exchanges only. A trailing user
// message belongs to a turn still in flight and may yet be rolled back.
func (c *Conversation) CommittedTranscript() string {
	msgs := c.Messages()
	if n := len(msgs); n > 0 && msgs[n-1].Role == RoleUser {
		msgs = msgs[:n-1]
	}
	return Render(msgs)
}

func (c *Conversation) last() Message {
	return c.messages[len(c.messages)-1]
}
