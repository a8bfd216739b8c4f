package model

import "time"

// Message is one chat message. Histories are ordered oldest to newest.
type Message struct {
	ID       string    `json:"id,omitempty"`
	Name     string    `json:"name"`
	Text     string    `json:"text"`
	IsUser   bool      `json:"is_user"`
	SendDate time.Time `json:"send_date"`
}
