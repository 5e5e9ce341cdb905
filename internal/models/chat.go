package models

import "time"

// Chat represents a Telegram conversation the bot participates in.
// ActiveListID points at the list targeted by unqualified item commands;
// it is nil until the first list is created and after the active list is
// deleted.
type Chat struct {
	ChatID       int64     `json:"chat_id" db:"chat_id"`
	Title        string    `json:"title" db:"title"`
	ActiveListID *int64    `json:"active_list_id" db:"active_list_id"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

// HasActiveList returns true if the chat currently has an active list.
func (c *Chat) HasActiveList() bool {
	return c.ActiveListID != nil
}
