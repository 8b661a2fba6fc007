package models

import "time"

// ConsentStatus gates the inbound conversation. Paused users are silently
// ignored until they say "resume".
type ConsentStatus string

const (
	ConsentActive ConsentStatus = "active"
	ConsentPaused ConsentStatus = "paused"
)

type User struct {
	Handle    string        `json:"handle"`
	Consent   ConsentStatus `json:"consent"`
	CreatedAt time.Time     `json:"created_at"`
}
