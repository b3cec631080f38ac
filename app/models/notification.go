package models

import (
	"fmt"
	"time"
)

type Notification struct {
	ID        ID        `json:"id"`
	UserID    ID        `json:"user_id"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Type      string    `json:"type,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

func (n *Notification) Validate() error {
	if n.ID == "" {
		return fmt.Errorf("%w: notification id is empty", ErrMalformedResponse)
	}
	return nil
}
