package conversation

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session owns one learner's conversation. Turns on a session are serialized
// through Lock/Unlock so a user message and its reply are never interleaved
// with another turn.
type Session struct {
	ID           string
	Conversation *Conversation
	CreatedAt    time.Time

	turn sync.Mutex
}

func NewSession(persona string) *Session {
	return &Session{
		ID:           uuid.NewString(),
		Conversation: New(persona),
		CreatedAt:    time.Now(),
	}
}

func (s *Session) Lock()   { s.turn.Lock() }
func (s *Session) Unlock() { s.turn.Unlock() }
