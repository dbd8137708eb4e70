package memory

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/petasbytes/expense-agent/internal/expense"
)

// Session is one conversation over a shared, read-only record store.
type Session struct {
	id        string
	refDate   expense.Date
	store     *expense.Store
	createdAt time.Time

	// ask serialises questions; conv guards its own turns.
	ask  sync.Mutex
	conv Conversation
}

// NewSession starts an empty conversation. refDate is the fixed "today" used
// to resolve relative month references.
func NewSession(store *expense.Store, refDate expense.Date) *Session {
	return &Session{
		id:        uuid.NewString(),
		refDate:   refDate,
		store:     store,
		createdAt: time.Now().UTC(),
	}
}

func (s *Session) ID() string                  { return s.id }
func (s *Session) ReferenceDate() expense.Date { return s.refDate }
func (s *Session) Store() *expense.Store       { return s.store }
func (s *Session) Conversation() *Conversation { return &s.conv }

// Acquire blocks until no other question is in flight on this session and
// returns the matching release func.
func (s *Session) Acquire() (release func()) {
	s.ask.Lock()
	return s.ask.Unlock
}

// Transcript is the JSON view of a session used for display.
type Transcript struct {
	SessionID     string `json:"session_id"`
	ReferenceDate string `json:"reference_date"`
	CreatedAt     string `json:"created_at"`
	Turns         []Turn `json:"turns"`
}

// Transcript returns the session history as compact JSON.
func (s *Session) Transcript() ([]byte, error) {
	return json.Marshal(Transcript{
		SessionID:     s.id,
		ReferenceDate: s.refDate.String(),
		CreatedAt:     s.createdAt.Format(time.RFC3339),
		Turns:         s.conv.Turns(),
	})
}
