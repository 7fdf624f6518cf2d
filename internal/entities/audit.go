package entities

import "time"

// ChangeEvent describes one delivered change notification.
type ChangeEvent struct {
	ID        string    `json:"id"`
	URI       string    `json:"uri"`
	CreatedAt time.Time `json:"created_at"`
}
