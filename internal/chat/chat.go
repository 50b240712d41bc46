// Package chat holds the ordered transcript of a coaching conversation.
package chat

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Apology replaces an answer the provider failed to produce.
const Apology = "I apologize, but I encountered an error. Please try asking your question again."

var (
	ErrUnknownMessage = errors.New("unknown message")
	ErrNotPrefix      = errors.New("displayed text is not a prefix of the message")
)

// Message is one transcript entry. Content is what is currently shown; for
// an assistant message still revealing it is a prefix of Full.
type Message struct {
	ID        string
	Role      Role
	Content   string
	Full      string
	Revealing bool
	// Failed marks an assistant message standing in for an answer that
	// could not be generated.
	Failed    bool
	CreatedAt time.Time
}

// Conversation is owned by a single UI loop and is not safe for concurrent
// use.
type Conversation struct {
	msgs []Message
	now  func() time.Time
}

func New() *Conversation {
	return &Conversation{now: time.Now}
}

func (c *Conversation) AddUser(text string) Message {
	return c.add(Message{
		Role:    RoleUser,
		Content: text,
		Full:    text,
	})
}

// BeginAssistant appends an assistant message that starts empty and is
// filled in by SetDisplayed.
func (c *Conversation) BeginAssistant(full string) Message {
	return c.add(Message{
		Role:      RoleAssistant,
		Full:      full,
		Revealing: true,
	})
}

// AddError appends a finished assistant message shown in place of a failed
// answer.
func (c *Conversation) AddError(text string) Message {
	return c.add(Message{
		Role:    RoleAssistant,
		Content: text,
		Full:    text,
		Failed:  true,
	})
}

// Append adds a finished message, such as one restored from history.
func (c *Conversation) Append(m Message) Message {
	if m.Full == "" {
		m.Full = m.Content
	}
	m.Content = m.Full
	m.Revealing = false

	return c.add(m)
}

func (c *Conversation) SetDisplayed(id string, text string) error {
	i := c.index(id)
	if i < 0 {
		return ErrUnknownMessage
	}
	if !strings.HasPrefix(c.msgs[i].Full, text) {
		return ErrNotPrefix
	}

	c.msgs[i].Content = text
	return nil
}

func (c *Conversation) Finish(id string) error {
	i := c.index(id)
	if i < 0 {
		return ErrUnknownMessage
	}

	c.msgs[i].Content = c.msgs[i].Full
	c.msgs[i].Revealing = false
	return nil
}

func (c *Conversation) Messages() []Message {
	out := make([]Message, len(c.msgs))
	copy(out, c.msgs)
	return out
}

func (c *Conversation) Last() (Message, bool) {
	if len(c.msgs) == 0 {
		return Message{}, false
	}
	return c.msgs[len(c.msgs)-1], true
}

func (c *Conversation) Len() int {
	return len(c.msgs)
}

// Revealing reports whether any message is still being revealed.
func (c *Conversation) Revealing() bool {
	for _, m := range c.msgs {
		if m.Revealing {
			return true
		}
	}
	return false
}

func (c *Conversation) add(m Message) Message {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = c.now()
	}

	c.msgs = append(c.msgs, m)
	return m
}

func (c *Conversation) index(id string) int {
	// Recent messages are the ones that change
	for i := len(c.msgs) - 1; i >= 0; i-- {
		if c.msgs[i].ID == id {
			return i
		}
	}
	return -1
}
