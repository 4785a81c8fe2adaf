package models

import "encoding/json"

type Notification struct {
	ID        ID              `json:"id"`
	IsRead    bool            `json:"is_read"`
	Title     string          `json:"title,omitempty"`
	Message   string          `json:"message,omitempty"`
	Type      string          `json:"type,omitempty"`
	CreatedAt string          `json:"created_at,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

func (n Notification) Key() ID { return n.ID }

type NotificationsResponse struct {
	Notifications []Notification `json:"notifications"`
}

// UnreadCount counts entries with IsRead == false. It never modifies ns.
func UnreadCount(ns []Notification) int {
	n := 0
	for i := range ns {
		if !ns[i].IsRead {
			n++
		}
	}
	return n
}
