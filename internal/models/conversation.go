package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidRole = errors.New("invalid message role")

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleUser, RoleAssistant, RoleSystem:
		return r, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

type Message struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"` // user, assistant, or system
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// NewID returns an opaque identifier for messages and mood entries.
func NewID() string {
	return uuid.NewString()
}
