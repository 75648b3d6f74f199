// Package session keeps per-browser state (signed-in customer, cart lines,
// flash messages) server-side in Redis. The browser only holds a signed id.
package session

import (
	"github.com/google/uuid"
)

// Message levels, rendered as Bootstrap alerts.
const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelWarning = "warning"
	LevelError   = "error"
)

type Message struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

// CartLine is one cart entry as stored in the session. Price is kept as a
// string so the stored document stays exact.
type CartLine struct {
	Quantity int    `json:"quantity"`
	Price    string `json:"price"`
}

type Session struct {
	ID       string              `json:"-"`
	UserID   string              `json:"user_id,omitempty"`
	Cart     map[string]CartLine `json:"cart,omitempty"`
	Messages []Message           `json:"messages,omitempty"`

	modified bool
	staleID  string
}

func New() *Session {
	return &Session{ID: uuid.NewString()}
}

func (s *Session) MarkModified() { s.modified = true }

func (s *Session) Modified() bool { return s.modified }

// StaleID is the id replaced by the last Login or Flush, if any.
func (s *Session) StaleID() string { return s.staleID }

func (s *Session) IsAuthenticated() bool { return s.UserID != "" }

// Login binds the customer and rotates the id so a pre-login id cannot be
// reused. Cart and messages survive.
func (s *Session) Login(userID string) {
	s.rotate()
	s.UserID = userID
	s.modified = true
}

// Flush drops everything, cart included, and rotates the id.
func (s *Session) Flush() {
	s.rotate()
	s.UserID = ""
	s.Cart = nil
	s.Messages = nil
	s.modified = true
}

func (s *Session) rotate() {
	if s.staleID == "" {
		s.staleID = s.ID
	}
	s.ID = uuid.NewString()
}

func (s *Session) AddMessage(level, text string) {
	s.Messages = append(s.Messages, Message{Level: level, Text: text})
	s.modified = true
}

// PopMessages returns and clears the pending flash messages.
func (s *Session) PopMessages() []Message {
	if len(s.Messages) == 0 {
		return nil
	}
	out := s.Messages
	s.Messages = nil
	s.modified = true
	return out
}
